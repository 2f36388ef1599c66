package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"math/rand"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/kjstillabower/weather-emailer/internal/models"
	"github.com/kjstillabower/weather-emailer/internal/observability"
)

// DefaultAPIURL is the OpenWeather One Call 3.0 endpoint.
const DefaultAPIURL = "https://api.openweathermap.org/data/3.0/onecall"

type WeatherClient interface {
	GetForecast(ctx context.Context, coords models.Coordinates) (models.Forecast, error)
}

var (
	ErrInvalidAPIKey      = errors.New("invalid API key")
	ErrLocationNotFound   = errors.New("location not found")
	ErrUpstreamFailure    = errors.New("upstream failure")
	ErrRateLimited        = errors.New("rate limited")
	ErrIncompleteForecast = errors.New("incomplete forecast")
	ErrUnexpectedStatus   = errors.New("unexpected status")
)

type correlationIDKey struct{}

// WithCorrelationID attaches id to ctx; outgoing requests send it as X-Correlation-ID.
func WithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, correlationIDKey{}, id)
}

type OpenWeatherClient struct {
	apiKey         string
	apiURL         string
	timeout        time.Duration
	client         *http.Client
	retryAttempts  int
	retryBaseDelay time.Duration
	retryMaxDelay  time.Duration
}

// NewOpenWeatherClient returns a client that makes exactly one request per lookup.
func NewOpenWeatherClient(apiKey, apiURL string, timeout time.Duration) (*OpenWeatherClient, error) {
	return NewOpenWeatherClientWithRetry(apiKey, apiURL, timeout, 1, 100*time.Millisecond, 2*time.Second)
}

func NewOpenWeatherClientWithRetry(apiKey, apiURL string, timeout time.Duration, retryAttempts int, retryBaseDelay, retryMaxDelay time.Duration) (*OpenWeatherClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%w: API key is required", ErrInvalidAPIKey)
	}
	if len(apiKey) < 10 {
		return nil, fmt.Errorf("%w: API key appears invalid (too short)", ErrInvalidAPIKey)
	}
	if apiURL == "" {
		apiURL = DefaultAPIURL
	}
	if retryAttempts <= 0 {
		retryAttempts = 1
	}

	return &OpenWeatherClient{
		apiKey:         apiKey,
		apiURL:         apiURL,
		timeout:        timeout,
		retryAttempts:  retryAttempts,
		retryBaseDelay: retryBaseDelay,
		retryMaxDelay:  retryMaxDelay,
		client: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

type conditionJSON struct {
	Main        string `json:"main"`
	Description string `json:"description"`
}

type oneCallResponse struct {
	Timezone string `json:"timezone"`
	Current  struct {
		Temp      float64         `json:"temp"`
		FeelsLike float64         `json:"feels_like"`
		Humidity  int             `json:"humidity"`
		WindSpeed float64         `json:"wind_speed"`
		Weather   []conditionJSON `json:"weather"`
	} `json:"current"`
	Daily []struct {
		Temp struct {
			Min float64 `json:"min"`
			Max float64 `json:"max"`
		} `json:"temp"`
		Pop       float64         `json:"pop"`
		Humidity  *int            `json:"humidity"`
		WindSpeed *float64        `json:"wind_speed"`
		Weather   []conditionJSON `json:"weather"`
	} `json:"daily"`
}

func (c *OpenWeatherClient) GetForecast(ctx context.Context, coords models.Coordinates) (models.Forecast, error) {
	var lastErr error

	for attempt := 0; attempt < c.retryAttempts; attempt++ {
		if attempt > 0 {
			observability.WeatherAPIRetriesTotal.Inc()
			delay := c.calculateBackoff(attempt)
			select {
			case <-ctx.Done():
				return models.Forecast{}, ctx.Err()
			case <-time.After(delay):
			}
		}

		result, err := c.callAPI(ctx, coords)
		if err == nil {
			return result, nil
		}

		lastErr = err
		if !c.isRetryable(err) {
			observability.WeatherAPIErrorsTotal.WithLabelValues(string(CategorizeError(err))).Inc()
			return models.Forecast{}, err
		}
	}

	observability.WeatherAPIErrorsTotal.WithLabelValues(string(CategorizeError(lastErr))).Inc()
	if c.retryAttempts == 1 {
		return models.Forecast{}, lastErr
	}
	return models.Forecast{}, fmt.Errorf("exhausted retries: %w", lastErr)
}

func (c *OpenWeatherClient) callAPI(ctx context.Context, coords models.Coordinates) (models.Forecast, error) {
	start := time.Now()

	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := c.buildRequest(reqCtx, coords)
	if err != nil {
		observability.WeatherAPICallsTotal.WithLabelValues("error").Inc()
		return models.Forecast{}, fmt.Errorf("build request: %w", err)
	}

	if corrID := extractCorrelationID(ctx); corrID != "" {
		req.Header.Set("X-Correlation-ID", corrID)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		duration := time.Since(start).Seconds()
		observability.WeatherAPICallsTotal.WithLabelValues("error").Inc()
		observability.WeatherAPIDuration.WithLabelValues("error").Observe(duration)

		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return models.Forecast{}, fmt.Errorf("request timeout: %w", err)
		}
		return models.Forecast{}, fmt.Errorf("http request failed: %w", err)
	}
	defer resp.Body.Close()

	duration := time.Since(start).Seconds()
	status := statusLabel(resp.StatusCode)
	observability.WeatherAPICallsTotal.WithLabelValues(status).Inc()
	observability.WeatherAPIDuration.WithLabelValues(status).Observe(duration)

	if err := c.handleErrorResponse(resp); err != nil {
		return models.Forecast{}, err
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return models.Forecast{}, fmt.Errorf("read response body: %w", err)
	}

	var apiResp oneCallResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return models.Forecast{}, fmt.Errorf("parse response: %w", err)
	}

	return mapResponse(apiResp)
}

func (c *OpenWeatherClient) isRetryable(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, ErrRateLimited) {
		return true
	}
	if errors.Is(err, ErrUpstreamFailure) {
		return true
	}

	errStr := err.Error()
	if strings.Contains(errStr, "timeout") || strings.Contains(errStr, "context deadline exceeded") {
		return true
	}

	return false
}

func (c *OpenWeatherClient) calculateBackoff(attempt int) time.Duration {
	delay := float64(c.retryBaseDelay) * math.Pow(2, float64(attempt-1))
	if delay > float64(c.retryMaxDelay) {
		delay = float64(c.retryMaxDelay)
	}

	jitter := delay * 0.1 * rand.Float64()
	return time.Duration(delay + jitter)
}

func (c *OpenWeatherClient) buildRequest(ctx context.Context, coords models.Coordinates) (*http.Request, error) {
	baseURL, err := url.Parse(c.apiURL)
	if err != nil {
		return nil, fmt.Errorf("invalid API URL: %w", err)
	}

	params := url.Values{}
	params.Set("lat", strconv.FormatFloat(coords.Latitude, 'f', -1, 64))
	params.Set("lon", strconv.FormatFloat(coords.Longitude, 'f', -1, 64))
	params.Set("appid", c.apiKey)
	params.Set("units", "imperial")
	params.Set("exclude", "minutely,hourly,alerts")
	baseURL.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	return req, nil
}

func (c *OpenWeatherClient) handleErrorResponse(resp *http.Response) error {
	switch resp.StatusCode {
	case http.StatusUnauthorized:
		return fmt.Errorf("%w: invalid API key or One Call subscription not active", ErrInvalidAPIKey)
	case http.StatusNotFound:
		return fmt.Errorf("%w", ErrLocationNotFound)
	case http.StatusTooManyRequests:
		return fmt.Errorf("%w", ErrRateLimited)
	}

	if resp.StatusCode >= 500 {
		return fmt.Errorf("%w: HTTP %d", ErrUpstreamFailure, resp.StatusCode)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: HTTP %d", ErrUnexpectedStatus, resp.StatusCode)
	}

	return nil
}

// mapResponse converts the wire format. Today's entry and its first weather
// condition must be present.
func mapResponse(apiResp oneCallResponse) (models.Forecast, error) {
	if len(apiResp.Daily) == 0 {
		return models.Forecast{}, fmt.Errorf("%w: no daily entries", ErrIncompleteForecast)
	}
	if len(apiResp.Daily[0].Weather) == 0 {
		return models.Forecast{}, fmt.Errorf("%w: no weather condition for today", ErrIncompleteForecast)
	}

	out := models.Forecast{
		Timezone: apiResp.Timezone,
		Current: models.CurrentConditions{
			Temp:      apiResp.Current.Temp,
			FeelsLike: apiResp.Current.FeelsLike,
			Humidity:  apiResp.Current.Humidity,
			WindSpeed: apiResp.Current.WindSpeed,
			Weather:   mapConditions(apiResp.Current.Weather),
		},
		Daily: make([]models.DailyForecast, 0, len(apiResp.Daily)),
	}
	for _, d := range apiResp.Daily {
		out.Daily = append(out.Daily, models.DailyForecast{
			TempMax:   d.Temp.Max,
			TempMin:   d.Temp.Min,
			Pop:       d.Pop,
			Humidity:  d.Humidity,
			WindSpeed: d.WindSpeed,
			Weather:   mapConditions(d.Weather),
		})
	}
	return out, nil
}

func mapConditions(in []conditionJSON) []models.Condition {
	out := make([]models.Condition, 0, len(in))
	for _, w := range in {
		out = append(out, models.Condition{Main: w.Main, Description: w.Description})
	}
	return out
}

func extractCorrelationID(ctx context.Context) string {
	if id, ok := ctx.Value(correlationIDKey{}).(string); ok {
		return id
	}
	return ""
}

func statusLabel(statusCode int) string {
	if statusCode >= 200 && statusCode < 300 {
		return "success"
	}
	if statusCode == 429 {
		return "rate_limited"
	}
	if statusCode >= 400 && statusCode < 500 {
		return "client_error"
	}
	if statusCode >= 500 {
		return "server_error"
	}
	return "error"
}
