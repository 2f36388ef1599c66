package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"github.com/kjstillabower/weather-emailer/internal/client"
	"github.com/kjstillabower/weather-emailer/internal/models"
	"github.com/kjstillabower/weather-emailer/internal/validation"
)

const (
	defaultLatitude  = "40.7128"
	defaultLongitude = "-74.0060"
	defaultSMTPHost  = "smtp.gmail.com"
	defaultSMTPPort  = 587
)

// Config holds job configuration loaded from YAML, secrets and env.
type Config struct {
	WeatherAPIKey     string
	WeatherAPIURL     string
	WeatherAPITimeout time.Duration

	RetryAttempts  int
	RetryBaseDelay time.Duration
	RetryMaxDelay  time.Duration

	Location models.Coordinates

	SenderEmail    string
	SenderPassword string
	Recipients     []string

	SMTPHost    string
	SMTPPort    int
	SMTPAuth    string
	SMTPTimeout time.Duration

	RunTimeout     time.Duration
	DryRun         bool
	PushgatewayURL string
}

type fileConfig struct {
	WeatherAPI struct {
		URL     string `yaml:"url"`
		Timeout string `yaml:"timeout"`
	} `yaml:"weather_api"`

	Location struct {
		Latitude  string `yaml:"latitude"`
		Longitude string `yaml:"longitude"`
	} `yaml:"location"`

	Email struct {
		Sender     string   `yaml:"sender"`
		Recipients []string `yaml:"recipients"`
	} `yaml:"email"`

	SMTP struct {
		Host    string `yaml:"host"`
		Port    int    `yaml:"port"`
		Auth    string `yaml:"auth"`
		Timeout string `yaml:"timeout"`
	} `yaml:"smtp"`

	Reliability struct {
		RetryMaxAttempts int    `yaml:"retry_max_attempts"`
		RetryBaseDelay   string `yaml:"retry_base_delay"`
		RetryMaxDelay    string `yaml:"retry_max_delay"`
	} `yaml:"reliability"`

	Run struct {
		Timeout string `yaml:"timeout"`
		DryRun  *bool  `yaml:"dry_run"`
	} `yaml:"run"`

	Metrics struct {
		PushgatewayURL string `yaml:"pushgateway_url"`
	} `yaml:"metrics"`
}

type secretsFile struct {
	OpenWeatherAPIKey string `yaml:"openweather_api_key"`
	SenderPassword    string `yaml:"sender_password"`
}

// envOverrides mirrors the variables the scheduled job sets. Empty means unset.
type envOverrides struct {
	APIKey         string `envconfig:"OPENWEATHER_API_KEY"`
	APIURL         string `envconfig:"OPENWEATHER_API_URL"`
	Latitude       string `envconfig:"LATITUDE"`
	Longitude      string `envconfig:"LONGITUDE"`
	SenderEmail    string `envconfig:"SENDER_EMAIL"`
	SenderPassword string `envconfig:"SENDER_PASSWORD"`
	RecipientEmail string `envconfig:"RECIPIENT_EMAIL"`
	SMTPServer     string `envconfig:"SMTP_SERVER"`
	SMTPPort       string `envconfig:"SMTP_PORT"`
	SMTPAuth       string `envconfig:"SMTP_AUTH"`
	DryRun         string `envconfig:"DRY_RUN"`
	PushgatewayURL string `envconfig:"PUSHGATEWAY_URL"`
}

// Load reads config/{ENV_NAME}.yaml and config/secrets.yaml relative to the
// working directory, then applies environment overrides. The YAML file is
// optional unless ENV_NAME is set, so a bare CI job can run on env alone.
func Load() (*Config, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("config: get working directory: %w", err)
	}

	var fc fileConfig
	env := os.Getenv("ENV_NAME")
	envRequired := env != ""
	if env == "" {
		env = "prod"
	}
	configPath := filepath.Join(cwd, "config", env+".yaml")
	if err := readYAML(configPath, &fc); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
		if envRequired {
			return nil, fmt.Errorf("config file not found: %s", configPath)
		}
	}

	var sec secretsFile
	if err := readYAML(filepath.Join(cwd, "config", "secrets.yaml"), &sec); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}

	var ev envOverrides
	if err := envconfig.Process("", &ev); err != nil {
		return nil, fmt.Errorf("read environment: %w", err)
	}

	return build(fc, sec, ev)
}

func readYAML(path string, out interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return err
		}
		return fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}
	return nil
}

// build applies precedence default < file < secrets < env and validates.
func build(fc fileConfig, sec secretsFile, ev envOverrides) (*Config, error) {
	cfg := &Config{}

	cfg.WeatherAPIKey = firstNonEmpty(ev.APIKey, sec.OpenWeatherAPIKey)
	if cfg.WeatherAPIKey == "" {
		return nil, fmt.Errorf("OPENWEATHER_API_KEY required (set env or config/secrets.yaml openweather_api_key)")
	}
	cfg.WeatherAPIURL = firstNonEmpty(ev.APIURL, fc.WeatherAPI.URL, client.DefaultAPIURL)
	cfg.WeatherAPITimeout = parseDurationOrZero(fc.WeatherAPI.Timeout, 10*time.Second)

	cfg.RetryAttempts = fc.Reliability.RetryMaxAttempts
	if cfg.RetryAttempts <= 0 {
		cfg.RetryAttempts = 1
	}
	cfg.RetryBaseDelay = parseDuration(fc.Reliability.RetryBaseDelay, 500*time.Millisecond)
	cfg.RetryMaxDelay = parseDuration(fc.Reliability.RetryMaxDelay, 5*time.Second)

	coords, err := validation.ValidateCoordinates(
		firstNonEmpty(ev.Latitude, fc.Location.Latitude, defaultLatitude),
		firstNonEmpty(ev.Longitude, fc.Location.Longitude, defaultLongitude),
	)
	if err != nil {
		return nil, fmt.Errorf("location: %w", err)
	}
	cfg.Location = coords

	sender := firstNonEmpty(ev.SenderEmail, fc.Email.Sender)
	cfg.SenderPassword = firstNonEmpty(ev.SenderPassword, sec.SenderPassword)
	if sender == "" || cfg.SenderPassword == "" {
		return nil, fmt.Errorf("SENDER_EMAIL and SENDER_PASSWORD required")
	}
	cfg.SenderEmail, err = validation.ValidateEmail(sender)
	if err != nil {
		return nil, fmt.Errorf("sender: %w", err)
	}

	recipients := firstNonEmpty(ev.RecipientEmail, strings.Join(fc.Email.Recipients, ","), cfg.SenderEmail)
	cfg.Recipients, err = validation.ValidateRecipients(recipients)
	if err != nil {
		return nil, fmt.Errorf("recipients: %w", err)
	}

	cfg.SMTPHost = firstNonEmpty(ev.SMTPServer, fc.SMTP.Host, defaultSMTPHost)
	cfg.SMTPPort = fc.SMTP.Port
	if p := strings.TrimSpace(ev.SMTPPort); p != "" {
		cfg.SMTPPort, err = strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("SMTP_PORT %q: not a number", p)
		}
	}
	if cfg.SMTPPort == 0 {
		cfg.SMTPPort = defaultSMTPPort
	}
	cfg.SMTPAuth = strings.ToLower(firstNonEmpty(ev.SMTPAuth, fc.SMTP.Auth, "plain"))
	cfg.SMTPTimeout = parseDuration(fc.SMTP.Timeout, 30*time.Second)

	cfg.RunTimeout = parseDuration(fc.Run.Timeout, 2*time.Minute)
	if fc.Run.DryRun != nil {
		cfg.DryRun = *fc.Run.DryRun
	}
	if v := strings.TrimSpace(ev.DryRun); v != "" {
		cfg.DryRun, err = strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("DRY_RUN %q: not a boolean", v)
		}
	}
	cfg.PushgatewayURL = firstNonEmpty(ev.PushgatewayURL, fc.Metrics.PushgatewayURL)

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// firstNonEmpty returns the first value that is non-empty after trimming.
func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}

// parseDuration parses a duration string and returns defaultVal if parsing fails or result is <= 0.
func parseDuration(s string, defaultVal time.Duration) time.Duration {
	d := parseDurationOrZero(s, defaultVal)
	if d <= 0 {
		return defaultVal
	}
	return d
}

// parseDurationOrZero parses a duration string, returning defaultVal on empty string or parse error.
// Returns zero or negative durations as-is (caller should handle fallback).
func parseDurationOrZero(s string, defaultVal time.Duration) time.Duration {
	s = strings.TrimSpace(s)
	if s == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return defaultVal
	}
	return d
}

// validate checks cross-field constraints. RunTimeout is raised to cover the
// weather call plus SMTP submission when configured too low.
func validate(cfg *Config) error {
	if cfg.WeatherAPITimeout <= 0 {
		return fmt.Errorf("weather_api.timeout must be positive")
	}
	if cfg.SMTPPort < 1 || cfg.SMTPPort > 65535 {
		return fmt.Errorf("SMTP port must be between 1 and 65535, got %d", cfg.SMTPPort)
	}
	switch cfg.SMTPAuth {
	case "plain", "login", "cram-md5":
	default:
		return fmt.Errorf("smtp.auth must be plain, login or cram-md5, got %q", cfg.SMTPAuth)
	}
	if floor := cfg.WeatherAPITimeout + cfg.SMTPTimeout; cfg.RunTimeout < floor {
		cfg.RunTimeout = floor
	}
	return nil
}
