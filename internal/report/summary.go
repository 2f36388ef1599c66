package report

import (
	"errors"
	"math"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	// Forecast timezones must resolve on minimal CI images without zoneinfo.
	_ "time/tzdata"

	"github.com/kjstillabower/weather-emailer/internal/models"
)

// ErrNoToday is returned when a forecast has no entry or condition for today.
var ErrNoToday = errors.New("forecast has no data for today")

// NewSummary rounds today's forecast into display values. Daily humidity and
// wind fall back to current conditions when the provider omits them.
func NewSummary(f models.Forecast) (models.Summary, error) {
	if len(f.Daily) == 0 || len(f.Daily[0].Weather) == 0 {
		return models.Summary{}, ErrNoToday
	}
	today := f.Daily[0]

	humidity := f.Current.Humidity
	if today.Humidity != nil {
		humidity = *today.Humidity
	}
	wind := f.Current.WindSpeed
	if today.WindSpeed != nil {
		wind = *today.WindSpeed
	}

	return models.Summary{
		CurrentTemp:      round(f.Current.Temp),
		FeelsLike:        round(f.Current.FeelsLike),
		High:             round(today.TempMax),
		Low:              round(today.TempMin),
		PrecipitationPct: round(today.Pop * 100),
		Humidity:         humidity,
		WindSpeed:        round(wind),
		Main:             today.Weather[0].Main,
		Description:      capitalize(today.Weather[0].Description),
	}, nil
}

// Location returns the forecast's timezone, or time.Local if it is empty or unknown.
func Location(f models.Forecast) *time.Location {
	if f.Timezone == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(f.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// round is half-to-even so 72.5 and 73.5 both land on even degrees.
func round(v float64) int {
	return int(math.RoundToEven(v))
}

// capitalize upper-cases the first letter and lower-cases the rest.
func capitalize(s string) string {
	if s == "" {
		return s
	}
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + strings.ToLower(s[size:])
}
