package weather

import "github.com/kisanbazaar/kisan-bazaar/internal/models"

// Tips evaluates the condition thresholds for a snapshot and returns the
// matching farming tips, in threshold order. Multiple tips can apply at once.
func Tips(snap models.WeatherSnapshot) []string {
	var tips []string
	if snap.Humidity > 70 {
		tips = append(tips, "High humidity alert: Monitor crops for fungal diseases and ensure good air circulation.")
	}
	if snap.RainfallMm > 5 {
		tips = append(tips, "Significant rainfall expected: Check field drainage and delay any planned spraying.")
	}
	if snap.WindSpeedKmh > 10 {
		tips = append(tips, "Strong winds: Secure young plants and greenhouse covers, postpone pesticide application.")
	}
	if snap.Temperature > 32 {
		tips = append(tips, "High temperature: Increase irrigation frequency and provide shade for sensitive crops.")
	}
	if snap.Temperature < 15 {
		tips = append(tips, "Low temperature: Protect frost-sensitive crops with covers and delay early morning irrigation.")
	}
	if snap.Humidity <= 40 {
		tips = append(tips, "Dry conditions: Water crops in early morning or evening to reduce evaporation loss.")
	}
	return tips
}
