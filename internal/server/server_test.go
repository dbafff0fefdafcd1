package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/kisanbazaar/kisan-bazaar/internal/advisory"
	"github.com/kisanbazaar/kisan-bazaar/internal/analytics"
	"github.com/kisanbazaar/kisan-bazaar/internal/catalog"
	"github.com/kisanbazaar/kisan-bazaar/internal/forum"
	"github.com/kisanbazaar/kisan-bazaar/internal/models"
	"github.com/kisanbazaar/kisan-bazaar/internal/session"
	"github.com/kisanbazaar/kisan-bazaar/internal/storage"
	"github.com/kisanbazaar/kisan-bazaar/internal/validator"
	"github.com/kisanbazaar/kisan-bazaar/internal/weather"
)

// fixedRand drives deterministic history generation.
type fixedRand struct{}

func (fixedRand) Float64() float64 { return 0.5 }
func (fixedRand) IntN(n int) int   { return 0 }

func newTestHandler(t *testing.T) http.Handler {
	t.Helper()
	store := storage.NewMemory()
	v := validator.New()
	srv := New(
		catalog.New(store, v, true),
		analytics.NewHistory(store, fixedRand{}),
		advisory.NewEngine(nil),
		weather.NewProvider(nil),
		forum.NewService(store, v, true),
		session.NewManager(store),
	)
	return srv.Routes()
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func login(t *testing.T, h http.Handler, role string) {
	t.Helper()
	rec := doJSON(t, h, "POST", "/api/login", map[string]string{
		"name": "Asha", "email": "asha@example.com", "password": "pw", "role": role,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("Login failed: %d %s", rec.Code, rec.Body.String())
	}
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("Failed to decode response %q: %v", rec.Body.String(), err)
	}
	return out
}

func TestHealthAndMetrics_Open(t *testing.T) {
	h := newTestHandler(t)

	if rec := doJSON(t, h, "GET", "/health", nil); rec.Code != http.StatusOK {
		t.Errorf("Expected /health open, got %d", rec.Code)
	}
	if rec := doJSON(t, h, "GET", "/metrics", nil); rec.Code != http.StatusOK {
		t.Errorf("Expected /metrics open, got %d", rec.Code)
	}
}

func TestSessionLifecycle(t *testing.T) {
	h := newTestHandler(t)

	if rec := doJSON(t, h, "GET", "/api/session", nil); rec.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401 before login, got %d", rec.Code)
	}

	login(t, h, "farmer")

	rec := doJSON(t, h, "GET", "/api/session", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected session after login, got %d", rec.Code)
	}
	sess := decode[models.Session](t, rec)
	if sess.Role != models.RoleFarmer || sess.Name != "Asha" {
		t.Errorf("Unexpected session: %+v", sess)
	}

	if rec := doJSON(t, h, "POST", "/api/logout", nil); rec.Code != http.StatusOK {
		t.Fatalf("Logout failed: %d", rec.Code)
	}
	if rec := doJSON(t, h, "GET", "/api/session", nil); rec.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401 after logout, got %d", rec.Code)
	}
}

func TestLogin_RejectsBadInput(t *testing.T) {
	h := newTestHandler(t)

	rec := doJSON(t, h, "POST", "/api/login", map[string]string{"name": "x", "role": "farmer"})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for incomplete login, got %d", rec.Code)
	}
}

func TestMarket_RequiresSession(t *testing.T) {
	h := newTestHandler(t)

	if rec := doJSON(t, h, "GET", "/api/market", nil); rec.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401 without session, got %d", rec.Code)
	}
}

func TestMarketList_SeededWithStats(t *testing.T) {
	h := newTestHandler(t)
	login(t, h, "farmer")

	rec := doJSON(t, h, "GET", "/api/market", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	resp := decode[marketResponse](t, rec)
	if len(resp.Records) != 3 {
		t.Fatalf("Expected 3 seeded records, got %d", len(resp.Records))
	}
	if resp.Stats.Count != 3 || resp.Stats.Min != 35 || resp.Stats.Max != 55 || resp.Stats.Average != 45 {
		t.Errorf("Unexpected stats: %+v", resp.Stats)
	}
	// Single listing per item means nothing strictly exceeds its own average.
	for _, r := range resp.Records {
		if r.Position != "below" {
			t.Errorf("Expected position below for %s, got %s", r.Name, r.Position)
		}
	}
}

func TestMarketList_Filters(t *testing.T) {
	h := newTestHandler(t)
	login(t, h, "farmer")

	rec := doJSON(t, h, "GET", "/api/market?query=tom", nil)
	resp := decode[marketResponse](t, rec)
	if len(resp.Records) != 1 || resp.Records[0].Name != "Tomato" {
		t.Errorf("Expected only the tomato listing, got %+v", resp.Records)
	}

	rec = doJSON(t, h, "GET", "/api/market?region=Karachi", nil)
	resp = decode[marketResponse](t, rec)
	if len(resp.Records) != 1 || resp.Records[0].Region != "Karachi" {
		t.Errorf("Expected only the Karachi listing, got %+v", resp.Records)
	}

	rec = doJSON(t, h, "GET", "/api/market?query=zz", nil)
	resp = decode[marketResponse](t, rec)
	if len(resp.Records) != 0 || resp.Stats.Count != 0 {
		t.Errorf("Expected empty view with zero stats, got %+v", resp)
	}
}

func TestMarketMutations_AdminOnly(t *testing.T) {
	h := newTestHandler(t)
	login(t, h, "farmer")

	input := map[string]any{"name": "Carrot", "region": "Lahore", "price": 25, "unit": "kg"}
	if rec := doJSON(t, h, "POST", "/api/market", input); rec.Code != http.StatusForbidden {
		t.Errorf("Expected 403 for farmer create, got %d", rec.Code)
	}

	login(t, h, "admin")
	rec := doJSON(t, h, "POST", "/api/market", input)
	if rec.Code != http.StatusCreated {
		t.Fatalf("Expected 201 for admin create, got %d: %s", rec.Code, rec.Body.String())
	}
	created := decode[models.PriceRecord](t, rec)
	if created.ID == "" || created.Name != "Carrot" {
		t.Errorf("Unexpected created record: %+v", created)
	}

	update := map[string]any{"name": "Carrot", "region": "Lahore", "price": 28, "unit": "kg"}
	rec = doJSON(t, h, "PUT", "/api/market/"+created.ID, update)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200 for update, got %d: %s", rec.Code, rec.Body.String())
	}
	updated := decode[models.PriceRecord](t, rec)
	if updated.Price != 28 || updated.ID != created.ID {
		t.Errorf("Unexpected updated record: %+v", updated)
	}

	if rec := doJSON(t, h, "DELETE", "/api/market/"+created.ID, nil); rec.Code != http.StatusOK {
		t.Errorf("Expected 200 for delete, got %d", rec.Code)
	}
	if rec := doJSON(t, h, "DELETE", "/api/market/"+created.ID, nil); rec.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for repeated delete, got %d", rec.Code)
	}
}

func TestMarketCreate_Validation(t *testing.T) {
	h := newTestHandler(t)
	login(t, h, "admin")

	tests := []struct {
		name  string
		input map[string]any
	}{
		{"Unknown Item", map[string]any{"name": "Durian", "region": "Lahore", "price": 10}},
		{"Unknown Region", map[string]any{"name": "Tomato", "region": "Atlantis", "price": 10}},
		{"Negative Price", map[string]any{"name": "Tomato", "region": "Lahore", "price": -1}},
		{"Missing Name", map[string]any{"region": "Lahore", "price": 10}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if rec := doJSON(t, h, "POST", "/api/market", tt.input); rec.Code != http.StatusBadRequest {
				t.Errorf("Expected 400, got %d: %s", rec.Code, rec.Body.String())
			}
		})
	}
}

func TestHistory(t *testing.T) {
	h := newTestHandler(t)
	login(t, h, "farmer")

	rec := doJSON(t, h, "GET", "/api/history?name=Tomato&region=Lahore", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	resp := decode[historyResponse](t, rec)
	if len(resp.History) != 7 {
		t.Errorf("Expected a 7-day series, got %d points", len(resp.History))
	}
	if resp.Summary.Trend == "" || resp.Summary.Insight == "" {
		t.Errorf("Expected a populated summary, got %+v", resp.Summary)
	}

	// Stable across repeated views.
	again := decode[historyResponse](t, doJSON(t, h, "GET", "/api/history?name=Tomato&region=Lahore", nil))
	for i := range resp.History {
		if resp.History[i].Price != again.History[i].Price {
			t.Fatalf("History changed between views at point %d", i)
		}
	}

	if rec := doJSON(t, h, "GET", "/api/history?name=Tomato&region=Multan", nil); rec.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for unlisted pair, got %d", rec.Code)
	}
	if rec := doJSON(t, h, "GET", "/api/history?name=Tomato", nil); rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for missing region, got %d", rec.Code)
	}
}

func TestAdvice(t *testing.T) {
	h := newTestHandler(t)
	login(t, h, "farmer")

	rec := doJSON(t, h, "GET", "/api/advice", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	items := decode[[]models.AdviceItem](t, rec)
	// Seeded catalog: Tomato at 45 and Potato at 35 trip no price rules,
	// leaving the three static advisories.
	if len(items) != 3 {
		t.Fatalf("Expected 3 advisories for the seeded catalog, got %d", len(items))
	}
	if items[0].Priority != models.PriorityHigh {
		t.Errorf("Expected high-priority advisory first, got %+v", items[0])
	}
}

func TestWeather(t *testing.T) {
	h := newTestHandler(t)
	login(t, h, "farmer")

	rec := doJSON(t, h, "GET", "/api/weather", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	snaps := decode[[]models.WeatherSnapshot](t, rec)
	if len(snaps) != 5 {
		t.Errorf("Expected 5 cities, got %d", len(snaps))
	}

	rec = doJSON(t, h, "GET", "/api/weather/Karachi", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	detail := decode[weatherDetail](t, rec)
	if detail.City != "Karachi" || len(detail.Forecast) != 7 {
		t.Errorf("Unexpected detail: %+v", detail)
	}
	// Karachi baseline: humidity 72 and wind 12 trip two tips.
	if len(detail.Tips) != 2 {
		t.Errorf("Expected 2 tips for Karachi, got %v", detail.Tips)
	}

	if rec := doJSON(t, h, "GET", "/api/weather/Quetta", nil); rec.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for uncovered city, got %d", rec.Code)
	}
}

func TestForumEndpoints(t *testing.T) {
	h := newTestHandler(t)
	login(t, h, "farmer")

	posts := decode[[]models.ForumPost](t, doJSON(t, h, "GET", "/api/forum", nil))
	if len(posts) != 2 {
		t.Fatalf("Expected 2 starter posts, got %d", len(posts))
	}

	rec := doJSON(t, h, "POST", "/api/forum", map[string]string{
		"title": "Drip irrigation", "body": "Worth the cost?", "category": "techniques",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	created := decode[models.ForumPost](t, rec)
	if created.Author != "Asha" {
		t.Errorf("Expected author from session, got %q", created.Author)
	}

	rec = doJSON(t, h, "POST", fmt.Sprintf("/api/forum/%s/comments", created.ID), map[string]string{
		"text": "Yes, saves water.",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("Expected 201 for comment, got %d: %s", rec.Code, rec.Body.String())
	}
	comment := decode[models.Comment](t, rec)
	if comment.Author != "Asha" {
		t.Errorf("Expected comment author from session, got %q", comment.Author)
	}

	likes := decode[likeResponse](t, doJSON(t, h, "POST", fmt.Sprintf("/api/forum/%s/like", created.ID), nil))
	if likes.Likes != 1 {
		t.Errorf("Expected 1 like, got %d", likes.Likes)
	}

	likes = decode[likeResponse](t, doJSON(t, h, "POST",
		fmt.Sprintf("/api/forum/%s/comments/%s/like", created.ID, comment.ID), nil))
	if likes.Likes != 1 {
		t.Errorf("Expected 1 comment like, got %d", likes.Likes)
	}

	rec = doJSON(t, h, "PUT", "/api/forum/"+created.ID, map[string]string{
		"title": "Drip irrigation ROI", "body": "Updated question.",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200 for edit, got %d: %s", rec.Code, rec.Body.String())
	}

	if rec := doJSON(t, h, "DELETE",
		fmt.Sprintf("/api/forum/%s/comments/%s", created.ID, comment.ID), nil); rec.Code != http.StatusOK {
		t.Errorf("Expected 200 for comment delete, got %d", rec.Code)
	}
	if rec := doJSON(t, h, "DELETE", "/api/forum/"+created.ID, nil); rec.Code != http.StatusOK {
		t.Errorf("Expected 200 for post delete, got %d", rec.Code)
	}
	if rec := doJSON(t, h, "PUT", "/api/forum/"+created.ID, map[string]string{
		"title": "t", "body": "b",
	}); rec.Code != http.StatusNotFound {
		t.Errorf("Expected 404 editing a deleted post, got %d", rec.Code)
	}
}

func TestForumCreate_Validation(t *testing.T) {
	h := newTestHandler(t)
	login(t, h, "farmer")

	rec := doJSON(t, h, "POST", "/api/forum", map[string]string{"body": "no title", "category": "general"})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for missing title, got %d: %s", rec.Code, rec.Body.String())
	}
}
