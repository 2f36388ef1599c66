package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kjstillabower/weather-emailer/internal/client"
	"github.com/kjstillabower/weather-emailer/internal/mailer"
	"github.com/kjstillabower/weather-emailer/internal/models"
	"github.com/kjstillabower/weather-emailer/internal/observability"
	"github.com/kjstillabower/weather-emailer/internal/recommend"
	"github.com/kjstillabower/weather-emailer/internal/report"
)

// Emailer runs the daily job: fetch the forecast, pick clothing advice,
// render the email and send it. One Run makes one weather request and
// submits one message.
type Emailer struct {
	client     client.WeatherClient
	sender     mailer.Sender
	logger     *zap.Logger
	location   models.Coordinates
	from       string
	recipients []string
	now        func() time.Time
}

// NewEmailer creates an Emailer with the provided dependencies.
func NewEmailer(c client.WeatherClient, s mailer.Sender, logger *zap.Logger, location models.Coordinates, from string, recipients []string) *Emailer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Emailer{
		client:     c,
		sender:     s,
		logger:     logger,
		location:   location,
		from:       from,
		recipients: recipients,
		now:        time.Now,
	}
}

// Run executes one fetch, format, send cycle under runID. The first failing
// step aborts the run; nothing is retried here.
func (e *Emailer) Run(ctx context.Context, runID string) error {
	start := e.now()
	err := e.run(ctx, runID)
	observability.RecordRun(start, e.now(), err == nil)
	return err
}

func (e *Emailer) run(ctx context.Context, runID string) error {
	logger := observability.ForRun(e.logger, runID)
	ctx = client.WithCorrelationID(ctx, runID)

	logger.Info("fetching weather",
		zap.Float64("lat", e.location.Latitude),
		zap.Float64("lon", e.location.Longitude))

	forecast, err := e.client.GetForecast(ctx, e.location)
	if err != nil {
		logger.Error("weather fetch failed", zap.Error(err), zap.String("category", string(client.CategorizeError(err))))
		return fmt.Errorf("fetch forecast: %w", err)
	}

	summary, err := report.NewSummary(forecast)
	if err != nil {
		return fmt.Errorf("summarize forecast: %w", err)
	}

	recs := recommend.ClothingRecommendations(summary.High, summary.Low, summary.Main, summary.PrecipitationPct)
	observability.RecommendationsCount.Set(float64(len(recs)))
	logger.Debug("recommendations",
		zap.Int("high", summary.High),
		zap.Int("low", summary.Low),
		zap.Int("precip_pct", summary.PrecipitationPct),
		zap.String("condition", summary.Main),
		zap.Strings("recommendations", recs))

	now := e.now().In(report.Location(forecast))
	email, err := report.Render(summary, recs, now)
	if err != nil {
		return fmt.Errorf("render email: %w", err)
	}

	err = e.sender.Send(ctx, mailer.Message{
		From:    e.from,
		To:      e.recipients,
		Subject: email.Subject,
		Text:    email.Text,
		HTML:    email.HTML,
		RunID:   runID,
	})
	if err != nil {
		logger.Error("email send failed", zap.Error(err))
		return fmt.Errorf("send email: %w", err)
	}

	logger.Info("email sent",
		zap.Strings("recipients", e.recipients),
		zap.String("subject", email.Subject),
		zap.Int("recommendations", len(recs)))
	return nil
}
