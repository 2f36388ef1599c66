//go:build integration
// +build integration

package testhelpers

import (
	"io"
	"os"
	"testing"
	"time"

	"github.com/kjstillabower/weather-emailer/internal/client"
	"github.com/kjstillabower/weather-emailer/internal/mailer"
	"github.com/kjstillabower/weather-emailer/internal/models"
	"github.com/kjstillabower/weather-emailer/internal/observability"
	"github.com/kjstillabower/weather-emailer/internal/service"
	"github.com/kjstillabower/weather-emailer/internal/validation"
)

// IntegrationTestConfig holds configuration for integration tests.
type IntegrationTestConfig struct {
	APIKey   string
	APIURL   string
	Location models.Coordinates
}

// GetIntegrationConfig loads integration test configuration from environment.
// Skips test if OPENWEATHER_API_KEY is not set.
func GetIntegrationConfig(t *testing.T) IntegrationTestConfig {
	apiKey := os.Getenv("OPENWEATHER_API_KEY")
	if apiKey == "" {
		t.Skip("OPENWEATHER_API_KEY not set, skipping integration test")
	}

	apiURL := os.Getenv("OPENWEATHER_API_URL")
	if apiURL == "" {
		apiURL = client.DefaultAPIURL
	}

	lat, lon := os.Getenv("LATITUDE"), os.Getenv("LONGITUDE")
	if lat == "" || lon == "" {
		lat, lon = "40.7128", "-74.0060"
	}
	coords, err := validation.ValidateCoordinates(lat, lon)
	if err != nil {
		t.Fatalf("integration coordinates: %v", err)
	}

	return IntegrationTestConfig{
		APIKey:   apiKey,
		APIURL:   apiURL,
		Location: coords,
	}
}

// SetupIntegrationClient creates a weather client for integration tests.
func SetupIntegrationClient(t *testing.T, cfg IntegrationTestConfig) client.WeatherClient {
	c, err := client.NewOpenWeatherClient(cfg.APIKey, cfg.APIURL, 5*time.Second)
	if err != nil {
		t.Fatalf("NewOpenWeatherClient() error = %v", err)
	}
	return c
}

// SetupDryRunEmailer wires a live weather client to a dry-run mailer writing to w,
// so the full job runs without an SMTP server.
func SetupDryRunEmailer(t *testing.T, cfg IntegrationTestConfig, w io.Writer) *service.Emailer {
	logger, err := observability.NewLogger()
	if err != nil {
		t.Fatalf("NewLogger() error = %v", err)
	}
	return service.NewEmailer(
		SetupIntegrationClient(t, cfg),
		&mailer.DryRunMailer{W: w},
		logger,
		cfg.Location,
		"integration@example.com",
		[]string{"integration@example.com"},
	)
}
