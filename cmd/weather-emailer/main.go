package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kjstillabower/weather-emailer/internal/client"
	"github.com/kjstillabower/weather-emailer/internal/config"
	"github.com/kjstillabower/weather-emailer/internal/lifecycle"
	"github.com/kjstillabower/weather-emailer/internal/mailer"
	"github.com/kjstillabower/weather-emailer/internal/observability"
	"github.com/kjstillabower/weather-emailer/internal/service"
)

func main() {
	logger, err := observability.NewLogger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	os.Exit(run(logger))
}

// run returns the process exit code so telemetry is flushed on every path.
func run(logger *zap.Logger) int {
	cfg, err := config.Load()
	if err != nil {
		logger.Error("config", zap.Error(err))
		_ = logger.Sync()
		return 1
	}

	code := execute(logger, cfg)

	flushCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := observability.FlushTelemetry(flushCtx, logger, cfg.PushgatewayURL); err != nil {
		logger.Warn("telemetry flush", zap.Error(err))
	}
	return code
}

func execute(logger *zap.Logger, cfg *config.Config) int {
	weatherClient, err := client.NewOpenWeatherClientWithRetry(
		cfg.WeatherAPIKey,
		cfg.WeatherAPIURL,
		cfg.WeatherAPITimeout,
		cfg.RetryAttempts,
		cfg.RetryBaseDelay,
		cfg.RetryMaxDelay,
	)
	if err != nil {
		logger.Error("weather client", zap.Error(err))
		return 1
	}

	var sender mailer.Sender
	if cfg.DryRun {
		sender = &mailer.DryRunMailer{W: os.Stdout}
		logger.Warn("dry run enabled; email will be printed, not sent")
	} else {
		smtpMailer, err := mailer.NewSMTPMailer(mailer.Config{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SenderEmail,
			Password: cfg.SenderPassword,
			AuthType: cfg.SMTPAuth,
			Timeout:  cfg.SMTPTimeout,
		})
		if err != nil {
			logger.Error("smtp mailer", zap.Error(err))
			return 1
		}
		sender = smtpMailer
	}

	emailer := service.NewEmailer(weatherClient, sender, logger, cfg.Location, cfg.SenderEmail, cfg.Recipients)

	ctx, stop := lifecycle.SignalContext(context.Background())
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, cfg.RunTimeout)
	defer cancel()

	runID := uuid.NewString()
	if err := emailer.Run(ctx, runID); err != nil {
		logger.Error("run failed",
			zap.String("run_id", runID),
			zap.Bool("interrupted", lifecycle.Interrupted()),
			zap.Error(err))
		return 1
	}
	return 0
}
