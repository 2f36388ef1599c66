package models

// Coordinates identifies the forecast location.
type Coordinates struct {
	Latitude  float64
	Longitude float64
}

type Condition struct {
	Main        string
	Description string
}

type CurrentConditions struct {
	Temp      float64
	FeelsLike float64
	Humidity  int
	WindSpeed float64
	Weather   []Condition
}

// DailyForecast is one day of the forecast. Humidity and WindSpeed are nil
// when the provider omits them. The client maps the wire shape
// (temp.max, temp.min) into these fields.
type DailyForecast struct {
	TempMax   float64
	TempMin   float64
	Pop       float64 // probability of precipitation, 0..1
	Humidity  *int
	WindSpeed *float64
	Weather   []Condition
}

// Forecast is current conditions plus a multi-day forecast; Daily[0] is today.
type Forecast struct {
	Timezone string
	Current  CurrentConditions
	Daily    []DailyForecast
}

// Summary is the rounded view of today that goes into the email.
type Summary struct {
	CurrentTemp      int
	FeelsLike        int
	High             int
	Low              int
	PrecipitationPct int
	Humidity         int
	WindSpeed        int
	Main             string
	Description      string
}
