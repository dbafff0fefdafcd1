package analytics

import (
	"context"
	"testing"
	"time"

	"github.com/kisanbazaar/kisan-bazaar/internal/models"
	"github.com/kisanbazaar/kisan-bazaar/internal/storage"
)

// fixedRand yields a deterministic sequence so generated series are exactly
// reproducible in assertions.
type fixedRand struct {
	floats []float64
	ints   []int
	fi, ii int
}

func (r *fixedRand) Float64() float64 {
	v := r.floats[r.fi%len(r.floats)]
	r.fi++
	return v
}

func (r *fixedRand) IntN(n int) int {
	v := r.ints[r.ii%len(r.ints)] % n
	r.ii++
	return v
}

func newTestEngine(rnd Rand) (*HistoryEngine, *storage.MemoryStore) {
	store := storage.NewMemory()
	engine := NewHistory(store, rnd)
	engine.now = func() time.Time { return time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC) }
	return engine, store
}

func TestDerive_LengthAndFloor(t *testing.T) {
	// Worst-case negative noise forces the 80% floor on every point.
	engine, _ := newTestEngine(&fixedRand{floats: []float64{0}, ints: []int{25}})

	points, err := engine.Derive(context.Background(), "Tomato", "Lahore", 45)
	if err != nil {
		t.Fatalf("Derive() returned unexpected error: %v", err)
	}
	if len(points) != 7 {
		t.Fatalf("Expected exactly 7 points, got %d", len(points))
	}
	for i, p := range points {
		if p.Price < 45*0.8 {
			t.Errorf("Point %d price %v below floor %v", i, p.Price, 45*0.8)
		}
		if p.Volume < 50 || p.Volume > 150 {
			t.Errorf("Point %d volume %d outside [50,150]", i, p.Volume)
		}
		if i > 0 && points[i].ISODate.Before(points[i-1].ISODate) {
			t.Errorf("Points not oldest-first at index %d", i)
		}
	}
	if !points[6].ISODate.Equal(engine.now()) {
		t.Errorf("Expected last point to be today, got %v", points[6].ISODate)
	}
}

func TestDerive_Idempotent(t *testing.T) {
	engine, _ := newTestEngine(&fixedRand{floats: []float64{0.1, 0.9, 0.4}, ints: []int{7, 63, 19}})

	first, err := engine.Derive(context.Background(), "Tomato", "Lahore", 45)
	if err != nil {
		t.Fatalf("First Derive() returned unexpected error: %v", err)
	}
	second, err := engine.Derive(context.Background(), "Tomato", "Lahore", 45)
	if err != nil {
		t.Fatalf("Second Derive() returned unexpected error: %v", err)
	}

	if len(first) != len(second) {
		t.Fatalf("Cached series length changed: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].Price != second[i].Price || first[i].Volume != second[i].Volume ||
			!first[i].ISODate.Equal(second[i].ISODate) || first[i].Label != second[i].Label {
			t.Errorf("Point %d differs between views: %+v vs %+v", i, first[i], second[i])
		}
	}
}

func TestDerive_DistinctPairsGetDistinctSeries(t *testing.T) {
	engine, store := newTestEngine(&fixedRand{floats: []float64{0.5}, ints: []int{10}})

	if _, err := engine.Derive(context.Background(), "Tomato", "Lahore", 45); err != nil {
		t.Fatalf("Derive() returned unexpected error: %v", err)
	}
	if _, err := engine.Derive(context.Background(), "Tomato", "Karachi", 50); err != nil {
		t.Fatalf("Derive() returned unexpected error: %v", err)
	}

	keys, err := store.Keys(context.Background(), "priceHistory_")
	if err != nil {
		t.Fatalf("Keys() returned unexpected error: %v", err)
	}
	if len(keys) != 2 {
		t.Errorf("Expected one cached series per pair, got keys %v", keys)
	}
}

func TestDerive_ExactSeriesWithFixedSource(t *testing.T) {
	// Float64 always 0.5 makes noise (0.5-0.5)*12 = 0, so prices follow the
	// pure linear drift: base + (6-i)*0.5.
	engine, _ := newTestEngine(&fixedRand{floats: []float64{0.5}, ints: []int{0}})

	points, err := engine.Derive(context.Background(), "Onion", "Islamabad", 55)
	if err != nil {
		t.Fatalf("Derive() returned unexpected error: %v", err)
	}
	want := []float64{55, 55.5, 56, 56.5, 57, 57.5, 58}
	for i, p := range points {
		if p.Price != want[i] {
			t.Errorf("Point %d price = %v, want %v", i, p.Price, want[i])
		}
		if p.Volume != 50 {
			t.Errorf("Point %d volume = %d, want 50", i, p.Volume)
		}
	}
	if points[0].Label != "Aug 22" || points[6].Label != "Aug 28" {
		t.Errorf("Unexpected labels %q .. %q", points[0].Label, points[6].Label)
	}
}

func TestSummarize(t *testing.T) {
	mk := func(prices ...float64) []models.PriceHistoryPoint {
		points := make([]models.PriceHistoryPoint, len(prices))
		for i, p := range prices {
			points[i] = models.PriceHistoryPoint{Price: p}
		}
		return points
	}

	tests := []struct {
		name        string
		history     []models.PriceHistoryPoint
		wantTrend   string
		wantPercent float64
	}{
		{"Rising", mk(40, 42, 44), "rising", 10},
		{"Falling", mk(50, 48, 45), "falling", -10},
		{"Stable", mk(40, 45, 40), "stable", 0},
		{"Single Point", mk(40), "stable", 0},
		{"Empty", nil, "stable", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Summarize("Tomato", tt.history)
			if got.Trend != tt.wantTrend {
				t.Errorf("Trend = %s, want %s", got.Trend, tt.wantTrend)
			}
			if got.ChangePercent != tt.wantPercent {
				t.Errorf("ChangePercent = %v, want %v", got.ChangePercent, tt.wantPercent)
			}
			if got.Insight == "" {
				t.Error("Expected a non-empty insight line")
			}
		})
	}
}

func TestSummarize_Aggregates(t *testing.T) {
	history := []models.PriceHistoryPoint{{Price: 40}, {Price: 50}, {Price: 45}}
	got := Summarize("Potato", history)
	if got.Min != 40 || got.Max != 50 {
		t.Errorf("Expected min 40 max 50, got %v %v", got.Min, got.Max)
	}
	if got.Average != 45 {
		t.Errorf("Expected average 45, got %v", got.Average)
	}
}
