package analytics

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"
	"time"

	"github.com/kisanbazaar/kisan-bazaar/internal/models"
	"github.com/kisanbazaar/kisan-bazaar/internal/storage"
)

// Rand is the randomness source for synthetic history generation. Injected
// so tests can supply a fixed sequence and assert exact output.
type Rand interface {
	Float64() float64
	IntN(n int) int
}

// DefaultRand is the process-wide PCG source.
func DefaultRand() Rand {
	return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
}

const historyDays = 7

// HistoryEngine derives and caches the synthetic 7-day price series per
// (item name, region) pair. Repeated views of the same pair must return the
// cached sequence unchanged.
type HistoryEngine struct {
	store storage.Store
	rnd   Rand
	now   func() time.Time
}

func NewHistory(store storage.Store, rnd Rand) *HistoryEngine {
	return &HistoryEngine{store: store, rnd: rnd, now: time.Now}
}

// Derive returns the history for (name, region), generating and persisting
// it on first view. basePrice anchors a freshly generated series.
func (e *HistoryEngine) Derive(ctx context.Context, name, region string, basePrice float64) ([]models.PriceHistoryPoint, error) {
	key := storage.HistoryKey(name, region)

	raw, err := e.store.Get(ctx, key)
	if err == nil {
		var cached []models.PriceHistoryPoint
		if jsonErr := json.Unmarshal(raw, &cached); jsonErr != nil {
			return nil, &storage.DecodeError{Key: key, Err: jsonErr}
		}
		return cached, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return nil, err
	}

	points := e.generate(basePrice)

	encoded, err := json.Marshal(points)
	if err != nil {
		return nil, fmt.Errorf("encode history: %w", err)
	}
	if err := e.store.Set(ctx, key, encoded); err != nil {
		// The series is still usable for this view; it just won't be
		// stable across restarts.
		slog.Warn("Failed to cache price history", "key", key, "error", err)
	}
	return points, nil
}

func (e *HistoryEngine) generate(basePrice float64) []models.PriceHistoryPoint {
	today := e.now()
	points := make([]models.PriceHistoryPoint, 0, historyDays)
	for i := historyDays - 1; i >= 0; i-- {
		date := today.AddDate(0, 0, -i)
		trend := float64(historyDays-1-i) * 0.5
		noise := (e.rnd.Float64() - 0.5) * 12
		price := math.Max(round2(basePrice+trend+noise), basePrice*0.8)
		points = append(points, models.PriceHistoryPoint{
			Label:   date.Format("Jan 2"),
			ISODate: date,
			Price:   price,
			Volume:  e.rnd.IntN(101) + 50,
		})
	}
	return points
}

// TrendSummary condenses a history sequence for display.
type TrendSummary struct {
	Trend         string  `json:"trend"`
	Change        float64 `json:"change"`
	ChangePercent float64 `json:"changePercent"`
	Average       float64 `json:"average"`
	Min           float64 `json:"min"`
	Max           float64 `json:"max"`
	Insight       string  `json:"insight"`
}

// Summarize classifies the trend of a history sequence. Sequences shorter
// than 2 points report a stable trend with zero change.
func Summarize(name string, history []models.PriceHistoryPoint) TrendSummary {
	summary := TrendSummary{Trend: "stable"}
	if len(history) > 0 {
		sum := 0.0
		summary.Min = history[0].Price
		summary.Max = history[0].Price
		for _, p := range history {
			sum += p.Price
			summary.Min = math.Min(summary.Min, p.Price)
			summary.Max = math.Max(summary.Max, p.Price)
		}
		summary.Average = round2(sum / float64(len(history)))
	}
	if len(history) >= 2 {
		first := history[0].Price
		last := history[len(history)-1].Price
		summary.Change = round2(last - first)
		if first != 0 {
			summary.ChangePercent = round2((last - first) / first * 100)
		}
		switch {
		case last > first:
			summary.Trend = "rising"
		case last < first:
			summary.Trend = "falling"
		}
	}
	summary.Insight = insight(name, summary)
	return summary
}

func insight(name string, s TrendSummary) string {
	switch s.Trend {
	case "rising":
		return fmt.Sprintf("Prices for %s are trending upward with a %.2f%% increase over the last week. This might be a good time to sell if you have stock.", name, s.ChangePercent)
	case "falling":
		return fmt.Sprintf("Prices for %s are declining with a %.2f%% decrease. Consider waiting for stabilization before selling.", name, math.Abs(s.ChangePercent))
	default:
		return fmt.Sprintf("Prices for %s have remained stable around %.2f. Market conditions are consistent.", name, s.Average)
	}
}
