package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/kisanbazaar/kisan-bazaar/internal/models"
)

// HTTPFetcher pulls live conditions from a JSON endpoint. The endpoint takes
// the city as a query parameter and responds with a snapshot payload.
type HTTPFetcher struct {
	baseURL string
	client  *http.Client
}

// NewHTTPFetcher builds a fetcher against baseURL with the given per-request
// timeout.
func NewHTTPFetcher(baseURL string, timeout time.Duration) *HTTPFetcher {
	return &HTTPFetcher{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

type livePayload struct {
	Temperature  float64 `json:"temperature"`
	Humidity     float64 `json:"humidity"`
	RainfallMm   float64 `json:"rainfallMm"`
	WindSpeedKmh float64 `json:"windSpeedKmh"`
	VisibilityKm float64 `json:"visibilityKm"`
	Condition    string  `json:"condition"`
	Icon         string  `json:"icon"`
}

// Fetch requests current conditions for city. A single attempt, no retry;
// the provider treats any error as a signal to use the baseline.
func (f *HTTPFetcher) Fetch(ctx context.Context, city string) (models.WeatherSnapshot, error) {
	u := fmt.Sprintf("%s?city=%s", f.baseURL, url.QueryEscape(city))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return models.WeatherSnapshot{}, fmt.Errorf("failed to build weather request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return models.WeatherSnapshot{}, fmt.Errorf("weather request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return models.WeatherSnapshot{}, fmt.Errorf("weather endpoint returned status %d", resp.StatusCode)
	}

	var payload livePayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return models.WeatherSnapshot{}, fmt.Errorf("failed to decode weather response: %w", err)
	}
	if payload.Condition == "" {
		return models.WeatherSnapshot{}, fmt.Errorf("weather response missing condition")
	}

	return models.WeatherSnapshot{
		Temperature:  payload.Temperature,
		Humidity:     payload.Humidity,
		RainfallMm:   payload.RainfallMm,
		WindSpeedKmh: payload.WindSpeedKmh,
		VisibilityKm: payload.VisibilityKm,
		Condition:    payload.Condition,
		Icon:         payload.Icon,
	}, nil
}
