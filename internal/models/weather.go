package models

// ForecastDay is one derived entry of the 7-day outlook.
type ForecastDay struct {
	Day        string  `json:"day"`
	High       float64 `json:"high"`
	Low        float64 `json:"low"`
	Condition  string  `json:"condition"`
	RainfallMm float64 `json:"rainfallMm"`
}

// WeatherSnapshot holds current conditions for a city plus the derived
// forecast. Snapshots are never persisted; they are refreshed per request.
type WeatherSnapshot struct {
	City         string        `json:"city"`
	Region       string        `json:"region"`
	Temperature  float64       `json:"temperature"`
	Humidity     float64       `json:"humidity"`
	RainfallMm   float64       `json:"rainfallMm"`
	WindSpeedKmh float64       `json:"windSpeedKmh"`
	VisibilityKm float64       `json:"visibilityKm"`
	Condition    string        `json:"condition"`
	Icon         string        `json:"icon"`
	Forecast     []ForecastDay `json:"forecast"`
}
