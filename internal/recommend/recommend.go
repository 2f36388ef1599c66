// Package recommend turns a day's forecast into clothing advice.
package recommend

import "strings"

// Fahrenheit thresholds for the temperature line, checked top to bottom.
var temperatureBands = []struct {
	minHigh int
	advice  string
}{
	{75, "Light clothing (t-shirt, shorts/skirt)"},
	{65, "Light layers (t-shirt with light jacket)"},
	{50, "Medium layers (long sleeves, sweater or light jacket)"},
	{40, "Warm layers (sweater, jacket)"},
}

const (
	heavyWinter     = "Heavy winter clothing (coat, warm layers)"
	coldEnds        = "Bring extra layers for cold mornings/evenings"
	umbrellaNeeded  = "Bring an umbrella or rain jacket"
	umbrellaMaybe   = "Consider bringing an umbrella"
	waterproofShoes = "Waterproof shoes recommended"
	winterBoots     = "Winter boots and warm accessories (hat, gloves)"
	layersForSwing  = "Temperature varies significantly - dress in layers"

	coldLowF        = 40
	rainLikelyPct   = 50
	rainPossiblePct = 30
	largeSwingF     = 20
)

// ClothingRecommendations returns advice in a fixed order: exactly one
// temperature line, then any of cold ends, umbrella, shoes, boots and swing.
// high and low are °F, precipPct is 0..100, condition is the provider's
// main condition (e.g. "Rain").
func ClothingRecommendations(high, low int, condition string, precipPct int) []string {
	recs := []string{temperatureAdvice(high)}

	if low < coldLowF {
		recs = append(recs, coldEnds)
	}

	if precipPct > rainLikelyPct {
		recs = append(recs, umbrellaNeeded)
	} else if precipPct > rainPossiblePct {
		recs = append(recs, umbrellaMaybe)
	}

	cond := strings.ToLower(condition)
	if strings.Contains(cond, "rain") || strings.Contains(cond, "drizzle") {
		recs = append(recs, waterproofShoes)
	}
	if strings.Contains(cond, "snow") {
		recs = append(recs, winterBoots)
	}

	if high-low > largeSwingF {
		recs = append(recs, layersForSwing)
	}
	return recs
}

func temperatureAdvice(high int) string {
	for _, band := range temperatureBands {
		if high >= band.minHigh {
			return band.advice
		}
	}
	return heavyWinter
}
