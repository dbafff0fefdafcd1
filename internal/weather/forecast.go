package weather

import "github.com/kisanbazaar/kisan-bazaar/internal/models"

// forecastDeltas defines the six-day outlook relative to the current
// temperature. The deltas are fixed so the outlook stays stable for a given
// snapshot.
var forecastDeltas = []struct {
	day        string
	highDelta  float64
	lowDelta   float64
	condition  string
	rainfallMm float64
}{
	{"Tomorrow", 2, -3, "Partly Cloudy", 1.2},
	{"+2 Days", 1, -5, "Sunny", 0},
	{"+3 Days", 3, -2, "Cloudy", 3.5},
	{"+4 Days", 0, -4, "Light Rain", 2.1},
	{"+5 Days", -1, -6, "Rainy", 6.0},
	{"+6 Days", 2, -3, "Clear", 0.5},
}

// Forecast derives a seven-day outlook from current conditions. The first
// entry is today: the current condition and rainfall, with the low pinned
// four degrees under the current reading. Deltas apply to the raw
// temperature, fractional readings included.
func Forecast(snap models.WeatherSnapshot) []models.ForecastDay {
	temp := snap.Temperature
	out := make([]models.ForecastDay, 0, len(forecastDeltas)+1)
	out = append(out, models.ForecastDay{
		Day:        "Today",
		High:       temp,
		Low:        temp - 4,
		Condition:  snap.Condition,
		RainfallMm: snap.RainfallMm,
	})
	for _, d := range forecastDeltas {
		out = append(out, models.ForecastDay{
			Day:        d.day,
			High:       temp + d.highDelta,
			Low:        temp + d.lowDelta,
			Condition:  d.condition,
			RainfallMm: d.rainfallMm,
		})
	}
	return out
}
