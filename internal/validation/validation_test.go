package validation

import (
	"errors"
	"testing"
)

func TestValidateCoordinates_Valid(t *testing.T) {
	tests := []struct {
		name     string
		lat, lon string
		wantLat  float64
		wantLon  float64
	}{
		{"new york default", "40.7128", "-74.0060", 40.7128, -74.006},
		{"whitespace trimmed", "  51.5 ", "\t-0.12\n", 51.5, -0.12},
		{"poles and antimeridian", "-90", "180", -90, 180},
		{"integer", "0", "0", 0, 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ValidateCoordinates(tc.lat, tc.lon)
			if err != nil {
				t.Fatalf("ValidateCoordinates() error = %v", err)
			}
			if got.Latitude != tc.wantLat || got.Longitude != tc.wantLon {
				t.Errorf("got (%v, %v), want (%v, %v)", got.Latitude, got.Longitude, tc.wantLat, tc.wantLon)
			}
		})
	}
}

func TestValidateCoordinates_Errors(t *testing.T) {
	tests := []struct {
		name     string
		lat, lon string
		wantErr  error
	}{
		{"empty latitude", "", "10", ErrCoordinateEmpty},
		{"blank longitude", "10", "   ", ErrCoordinateEmpty},
		{"not a number", "north", "10", ErrCoordinateInvalid},
		{"NaN", "NaN", "10", ErrCoordinateInvalid},
		{"latitude too large", "90.01", "0", ErrCoordinateOutOfRange},
		{"longitude too small", "0", "-180.5", ErrCoordinateOutOfRange},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ValidateCoordinates(tc.lat, tc.lon)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !errors.Is(err, tc.wantErr) {
				t.Errorf("error = %v, want %v", err, tc.wantErr)
			}
		})
	}
}

func TestValidateEmail(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"plain", "me@example.com", "me@example.com", false},
		{"trimmed", "  me@example.com ", "me@example.com", false},
		{"display name stripped", "Me <me@example.com>", "me@example.com", false},
		{"empty", "", "", true},
		{"missing at", "me.example.com", "", true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ValidateEmail(tc.input)
			if tc.wantErr {
				if !errors.Is(err, ErrEmailInvalid) {
					t.Errorf("error = %v, want ErrEmailInvalid", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ValidateEmail() error = %v", err)
			}
			if got != tc.want {
				t.Errorf("ValidateEmail() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestValidateRecipients(t *testing.T) {
	got, err := ValidateRecipients("a@example.com, b@example.com,")
	if err != nil {
		t.Fatalf("ValidateRecipients() error = %v", err)
	}
	if len(got) != 2 || got[0] != "a@example.com" || got[1] != "b@example.com" {
		t.Errorf("ValidateRecipients() = %v", got)
	}

	if _, err := ValidateRecipients(" , "); !errors.Is(err, ErrNoRecipients) {
		t.Errorf("error = %v, want ErrNoRecipients", err)
	}
	if _, err := ValidateRecipients("a@example.com, nope"); !errors.Is(err, ErrEmailInvalid) {
		t.Errorf("error = %v, want ErrEmailInvalid", err)
	}
}
