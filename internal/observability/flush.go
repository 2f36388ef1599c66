package observability

import (
	"context"
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus/push"
	"go.uber.org/zap"
)

const pushJobName = "weather_emailer"

// FlushTelemetry pushes metrics to the Pushgateway (when pushgatewayURL is
// set) and flushes logs. A short-lived job is never scraped, so this is the
// only way its metrics leave the process. Call once before exit.
func FlushTelemetry(ctx context.Context, logger *zap.Logger, pushgatewayURL string) error {
	var errs []error
	if pushgatewayURL != "" {
		err := push.New(pushgatewayURL, pushJobName).
			Gatherer(Gatherer()).
			PushContext(ctx)
		if err != nil {
			errs = append(errs, fmt.Errorf("push metrics: %w", err))
		} else if logger != nil {
			logger.Debug("metrics pushed", zap.String("pushgateway", pushgatewayURL))
		}
	}
	if logger != nil {
		if err := logger.Sync(); err != nil {
			errs = append(errs, fmt.Errorf("flush logs: %w", err))
		}
	}
	return errors.Join(errs...)
}
