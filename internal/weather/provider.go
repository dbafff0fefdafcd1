package weather

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/kisanbazaar/kisan-bazaar/internal/models"
)

// Fetcher retrieves a live weather snapshot for a city. Implementations
// return an error on any transport or decoding failure; the provider falls
// back to the built-in table.
type Fetcher interface {
	Fetch(ctx context.Context, city string) (models.WeatherSnapshot, error)
}

// baseline holds the built-in conditions for the covered cities. It doubles
// as the city roster and as the fallback when live fetching fails.
var baseline = []models.WeatherSnapshot{
	{City: "Lahore", Region: "Punjab", Temperature: 32, Humidity: 65, RainfallMm: 2.5, WindSpeedKmh: 8, VisibilityKm: 10, Condition: "Sunny with Clouds", Icon: "⛅"},
	{City: "Karachi", Region: "Sindh", Temperature: 28, Humidity: 72, RainfallMm: 0, WindSpeedKmh: 12, VisibilityKm: 8, Condition: "Partly Cloudy", Icon: "🌤️"},
	{City: "Islamabad", Region: "Federal Capital", Temperature: 24, Humidity: 55, RainfallMm: 5.2, WindSpeedKmh: 6, VisibilityKm: 12, Condition: "Clear & Pleasant", Icon: "🌤️"},
	{City: "Multan", Region: "Punjab", Temperature: 34, Humidity: 58, RainfallMm: 0, WindSpeedKmh: 10, VisibilityKm: 11, Condition: "Hot & Sunny", Icon: "☀️"},
	{City: "Peshawar", Region: "Khyber Pakhtunkhwa", Temperature: 26, Humidity: 68, RainfallMm: 8.5, WindSpeedKmh: 5, VisibilityKm: 7, Condition: "Rainy", Icon: "🌧️"},
}

// Provider serves weather snapshots for the covered cities. With no fetcher
// configured it serves the baseline table directly.
type Provider struct {
	fetcher Fetcher
	limiter *rate.Limiter
}

// NewProvider builds a Provider. fetcher may be nil, which disables live
// fetching entirely.
func NewProvider(fetcher Fetcher) *Provider {
	return &Provider{
		fetcher: fetcher,
		// One upstream call per second with a burst covering all cities.
		limiter: rate.NewLimiter(rate.Limit(1), len(baseline)),
	}
}

// Cities returns the covered city names in roster order.
func (p *Provider) Cities() []string {
	names := make([]string, len(baseline))
	for i, b := range baseline {
		names[i] = b.City
	}
	return names
}

// Snapshots returns current conditions with forecasts for every covered city,
// in roster order. Cities whose live fetch fails fall back to the baseline
// entry; a nil fetcher means all cities use the baseline.
func (p *Provider) Snapshots(ctx context.Context) []models.WeatherSnapshot {
	out := make([]models.WeatherSnapshot, len(baseline))
	copy(out, baseline)

	if p.fetcher != nil {
		g, gctx := errgroup.WithContext(ctx)
		for i := range out {
			g.Go(func() error {
				if err := p.limiter.Wait(gctx); err != nil {
					return nil
				}
				snap, err := p.fetcher.Fetch(gctx, out[i].City)
				if err != nil {
					slog.Warn("Live weather fetch failed, using baseline", "city", out[i].City, "error", err)
					return nil
				}
				snap.City = out[i].City
				snap.Region = out[i].Region
				out[i] = snap
				return nil
			})
		}
		_ = g.Wait()
	}

	for i := range out {
		out[i].Forecast = Forecast(out[i])
	}
	return out
}

// Snapshot returns the snapshot for a single covered city.
func (p *Provider) Snapshot(ctx context.Context, city string) (models.WeatherSnapshot, bool) {
	for _, snap := range p.Snapshots(ctx) {
		if snap.City == city {
			return snap, true
		}
	}
	return models.WeatherSnapshot{}, false
}

// ConditionsSummary joins every city's condition into a single line for the
// advisory prompt, e.g. "Lahore: Sunny with Clouds; Karachi: Partly Cloudy".
func (p *Provider) ConditionsSummary(ctx context.Context) string {
	snaps := p.Snapshots(ctx)
	summary := ""
	for i, s := range snaps {
		if i > 0 {
			summary += "; "
		}
		summary += s.City + ": " + s.Condition
	}
	return summary
}
