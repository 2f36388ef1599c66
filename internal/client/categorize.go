package client

import (
	"context"
	"errors"
	"strings"
)

// ErrorCategory is a stable label for error classification in metrics and logs.
type ErrorCategory string

const (
	ErrorCategoryTimeout            ErrorCategory = "timeout"
	ErrorCategoryNetwork            ErrorCategory = "network"
	ErrorCategoryInvalidAPIKey      ErrorCategory = "invalid_api_key"
	ErrorCategoryLocationNotFound   ErrorCategory = "location_not_found"
	ErrorCategoryRateLimited        ErrorCategory = "rate_limited"
	ErrorCategoryUpstream5xx        ErrorCategory = "upstream_5xx"
	ErrorCategoryIncompleteForecast ErrorCategory = "incomplete_forecast"
	ErrorCategoryUnexpectedStatus   ErrorCategory = "unexpected_status"
	ErrorCategoryParsing            ErrorCategory = "parsing"
	ErrorCategoryValidation         ErrorCategory = "validation"
	ErrorCategoryUnknown            ErrorCategory = "unknown"
)

// CategorizeError maps an error to a stable ErrorCategory for metrics.
func CategorizeError(err error) ErrorCategory {
	if err == nil {
		return ""
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return ErrorCategoryTimeout
	}

	errStr := err.Error()
	if strings.Contains(errStr, "network") || strings.Contains(errStr, "connection") {
		return ErrorCategoryNetwork
	}

	switch {
	case errors.Is(err, ErrInvalidAPIKey):
		return ErrorCategoryInvalidAPIKey
	case errors.Is(err, ErrLocationNotFound):
		return ErrorCategoryLocationNotFound
	case errors.Is(err, ErrRateLimited):
		return ErrorCategoryRateLimited
	case errors.Is(err, ErrUpstreamFailure):
		return ErrorCategoryUpstream5xx
	case errors.Is(err, ErrIncompleteForecast):
		return ErrorCategoryIncompleteForecast
	case errors.Is(err, ErrUnexpectedStatus):
		return ErrorCategoryUnexpectedStatus
	}

	if strings.Contains(errStr, "timeout") || strings.Contains(errStr, "context deadline exceeded") {
		return ErrorCategoryTimeout
	}

	if strings.Contains(errStr, "parse") || strings.Contains(errStr, "unmarshal") {
		return ErrorCategoryParsing
	}

	if strings.Contains(errStr, "invalid") || strings.Contains(errStr, "validation") {
		return ErrorCategoryValidation
	}

	return ErrorCategoryUnknown
}
