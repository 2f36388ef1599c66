package validation

import (
	"errors"
	"fmt"
	"net/mail"
	"strconv"
	"strings"

	"github.com/kjstillabower/weather-emailer/internal/models"
)

// ErrCoordinateEmpty is returned when latitude or longitude is empty after trim.
var ErrCoordinateEmpty = errors.New("coordinate is required")

// ErrCoordinateInvalid is returned when a coordinate is not a finite number.
var ErrCoordinateInvalid = errors.New("coordinate is not a number")

// ErrCoordinateOutOfRange is returned when latitude is outside [-90, 90]
// or longitude is outside [-180, 180].
var ErrCoordinateOutOfRange = errors.New("coordinate out of range")

// ErrEmailInvalid is returned for an address net/mail cannot parse.
var ErrEmailInvalid = errors.New("invalid email address")

// ErrNoRecipients is returned when a recipient list has no addresses.
var ErrNoRecipients = errors.New("at least one recipient is required")

// ValidateCoordinates trims and parses latitude and longitude.
func ValidateCoordinates(lat, lon string) (models.Coordinates, error) {
	latitude, err := parseCoordinate("latitude", lat, 90)
	if err != nil {
		return models.Coordinates{}, err
	}
	longitude, err := parseCoordinate("longitude", lon, 180)
	if err != nil {
		return models.Coordinates{}, err
	}
	return models.Coordinates{Latitude: latitude, Longitude: longitude}, nil
}

func parseCoordinate(name, input string, limit float64) (float64, error) {
	s := strings.TrimSpace(input)
	if s == "" {
		return 0, fmt.Errorf("%s: %w", name, ErrCoordinateEmpty)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v != v { // NaN
		return 0, fmt.Errorf("%s %q: %w", name, s, ErrCoordinateInvalid)
	}
	if v < -limit || v > limit {
		return 0, fmt.Errorf("%s %v: %w", name, v, ErrCoordinateOutOfRange)
	}
	return v, nil
}

// ValidateEmail trims addr and returns the bare address (no display name).
func ValidateEmail(addr string) (string, error) {
	s := strings.TrimSpace(addr)
	if s == "" {
		return "", fmt.Errorf("%w: empty", ErrEmailInvalid)
	}
	parsed, err := mail.ParseAddress(s)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrEmailInvalid, s)
	}
	return parsed.Address, nil
}

// ValidateRecipients splits a comma-separated list, validating each entry.
// Empty entries (e.g. a trailing comma) are skipped.
func ValidateRecipients(list string) ([]string, error) {
	var out []string
	for _, part := range strings.Split(list, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		addr, err := ValidateEmail(part)
		if err != nil {
			return nil, err
		}
		out = append(out, addr)
	}
	if len(out) == 0 {
		return nil, ErrNoRecipients
	}
	return out, nil
}
