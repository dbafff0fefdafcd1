package analytics

import (
	"math"
	"strings"

	"github.com/kisanbazaar/kisan-bazaar/internal/models"
)

// Stats are aggregate figures over a filtered catalog view. All fields are
// zero for an empty view; an empty filter result is an empty state, never an
// error.
type Stats struct {
	Average float64 `json:"average"`
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
	Count   int     `json:"count"`
}

// Filter narrows records by a case-insensitive substring match of query
// against name or region, and an optional exact region. Region "all" or ""
// disables the region filter.
func Filter(records []models.PriceRecord, query, region string) []models.PriceRecord {
	q := strings.ToLower(query)
	filtered := make([]models.PriceRecord, 0, len(records))
	for _, r := range records {
		matchesQuery := q == "" ||
			strings.Contains(strings.ToLower(r.Name), q) ||
			strings.Contains(strings.ToLower(r.Region), q)
		matchesRegion := region == "" || region == "all" || r.Region == region
		if matchesQuery && matchesRegion {
			filtered = append(filtered, r)
		}
	}
	return filtered
}

// Compute aggregates the filtered view.
func Compute(filtered []models.PriceRecord) Stats {
	if len(filtered) == 0 {
		return Stats{}
	}
	sum := 0.0
	min := filtered[0].Price
	max := filtered[0].Price
	for _, r := range filtered {
		sum += r.Price
		min = math.Min(min, r.Price)
		max = math.Max(max, r.Price)
	}
	return Stats{
		Average: round2(sum / float64(len(filtered))),
		Min:     min,
		Max:     max,
		Count:   len(filtered),
	}
}

// GroupAverages returns the mean price per item name over the FULL catalog,
// not the filtered view.
func GroupAverages(records []models.PriceRecord) map[string]float64 {
	sums := make(map[string]float64)
	counts := make(map[string]int)
	for _, r := range records {
		sums[r.Name] += r.Price
		counts[r.Name]++
	}
	averages := make(map[string]float64, len(sums))
	for name, sum := range sums {
		averages[name] = sum / float64(counts[name])
	}
	return averages
}

// Classify labels a record "above" when its price strictly exceeds its
// name's global average, "below" otherwise.
func Classify(r models.PriceRecord, groupAverages map[string]float64) string {
	avg, ok := groupAverages[r.Name]
	if !ok {
		avg = r.Price
	}
	if r.Price > avg {
		return "above"
	}
	return "below"
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
