package server

import (
	"encoding/json"
	"net/http"

	"github.com/kisanbazaar/kisan-bazaar/internal/analytics"
	"github.com/kisanbazaar/kisan-bazaar/internal/catalog"
	"github.com/kisanbazaar/kisan-bazaar/internal/forum"
	"github.com/kisanbazaar/kisan-bazaar/internal/models"
	"github.com/kisanbazaar/kisan-bazaar/internal/session"
	"github.com/kisanbazaar/kisan-bazaar/internal/weather"
)

// --- Session ---

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var in session.LoginInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	sess, err := s.sessions.Login(r.Context(), in)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := s.sessions.Logout(r.Context()); err != nil {
		writeLoadError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "logged out"})
}

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.currentSession(w, r)
	if err != nil {
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

// --- Market catalog ---

// marketRecord is a catalog record annotated with its position against the
// item's global average.
type marketRecord struct {
	models.PriceRecord
	Position string `json:"position"`
}

type marketResponse struct {
	Records []marketRecord  `json:"records"`
	Stats   analytics.Stats `json:"stats"`
}

func (s *Server) handleMarketList(w http.ResponseWriter, r *http.Request) {
	records, err := s.catalog.List(r.Context())
	if err != nil {
		writeLoadError(w, err)
		return
	}

	query := r.URL.Query().Get("query")
	region := r.URL.Query().Get("region")
	filtered := analytics.Filter(records, query, region)
	// Position compares against the full catalog, not the filtered view.
	averages := analytics.GroupAverages(records)

	annotated := make([]marketRecord, 0, len(filtered))
	for _, rec := range filtered {
		annotated = append(annotated, marketRecord{
			PriceRecord: rec,
			Position:    analytics.Classify(rec, averages),
		})
	}

	writeJSON(w, http.StatusOK, marketResponse{
		Records: annotated,
		Stats:   analytics.Compute(filtered),
	})
}

func (s *Server) handleMarketCreate(w http.ResponseWriter, r *http.Request) {
	var in catalog.Input
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	record, err := s.catalog.Add(r.Context(), in)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, record)
}

func (s *Server) handleMarketUpdate(w http.ResponseWriter, r *http.Request) {
	var in catalog.Input
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	record, err := s.catalog.Update(r.Context(), r.PathValue("id"), in)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

func (s *Server) handleMarketDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.catalog.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// --- Price history ---

type historyResponse struct {
	Name    string                     `json:"name"`
	Region  string                     `json:"region"`
	History []models.PriceHistoryPoint `json:"history"`
	Summary analytics.TrendSummary     `json:"summary"`
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	region := r.URL.Query().Get("region")
	if name == "" || region == "" {
		writeError(w, http.StatusBadRequest, "name and region are required")
		return
	}

	records, err := s.catalog.List(r.Context())
	if err != nil {
		writeLoadError(w, err)
		return
	}
	base, ok := findRecord(records, name, region)
	if !ok {
		writeError(w, http.StatusNotFound, "no listing for that item and region")
		return
	}

	points, err := s.history.Derive(r.Context(), name, region, base.Price)
	if err != nil {
		writeLoadError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, historyResponse{
		Name:    name,
		Region:  region,
		History: points,
		Summary: analytics.Summarize(name, points),
	})
}

func findRecord(records []models.PriceRecord, name, region string) (models.PriceRecord, bool) {
	for _, r := range records {
		if r.Name == name && r.Region == region {
			return r, true
		}
	}
	return models.PriceRecord{}, false
}

// --- Advisory ---

func (s *Server) handleAdvice(w http.ResponseWriter, r *http.Request) {
	records, err := s.catalog.List(r.Context())
	if err != nil {
		writeLoadError(w, err)
		return
	}
	conditions := s.weather.ConditionsSummary(r.Context())
	items := s.advisory.Advise(r.Context(), records, conditions)
	if items == nil {
		items = []models.AdviceItem{}
	}
	writeJSON(w, http.StatusOK, items)
}

// --- Weather ---

type weatherDetail struct {
	models.WeatherSnapshot
	Tips []string `json:"tips"`
}

func (s *Server) handleWeatherList(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.weather.Snapshots(r.Context()))
}

func (s *Server) handleWeatherDetail(w http.ResponseWriter, r *http.Request) {
	city := r.PathValue("city")
	snap, ok := s.weather.Snapshot(r.Context(), city)
	if !ok {
		writeError(w, http.StatusNotFound, "city not covered")
		return
	}
	tips := weather.Tips(snap)
	if tips == nil {
		tips = []string{}
	}
	writeJSON(w, http.StatusOK, weatherDetail{WeatherSnapshot: snap, Tips: tips})
}

// --- Forum ---

func (s *Server) handleForumList(w http.ResponseWriter, r *http.Request) {
	posts, err := s.forum.List(r.Context(), r.URL.Query().Get("category"))
	if err != nil {
		writeLoadError(w, err)
		return
	}
	if posts == nil {
		posts = []models.ForumPost{}
	}
	writeJSON(w, http.StatusOK, posts)
}

func (s *Server) handleForumCreate(w http.ResponseWriter, r *http.Request) {
	var in forum.PostInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if in.Author == "" {
		if sess, err := s.sessions.Current(r.Context()); err == nil {
			in.Author = sess.Name
		}
	}
	post, err := s.forum.Create(r.Context(), in)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, post)
}

func (s *Server) handleForumEdit(w http.ResponseWriter, r *http.Request) {
	var in forum.EditInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	post, err := s.forum.Edit(r.Context(), r.PathValue("id"), in)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, post)
}

func (s *Server) handleForumDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.forum.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

type commentInput struct {
	Author string `json:"author"`
	Text   string `json:"text"`
}

func (s *Server) handleForumAddComment(w http.ResponseWriter, r *http.Request) {
	var in commentInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if in.Author == "" {
		if sess, err := s.sessions.Current(r.Context()); err == nil {
			in.Author = sess.Name
		}
	}
	comment, err := s.forum.AddComment(r.Context(), r.PathValue("id"), in.Author, in.Text)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, comment)
}

func (s *Server) handleForumDeleteComment(w http.ResponseWriter, r *http.Request) {
	if err := s.forum.DeleteComment(r.Context(), r.PathValue("id"), r.PathValue("commentID")); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

type likeResponse struct {
	Likes int `json:"likes"`
}

func (s *Server) handleForumLikePost(w http.ResponseWriter, r *http.Request) {
	count, err := s.forum.LikePost(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, likeResponse{Likes: count})
}

func (s *Server) handleForumLikeComment(w http.ResponseWriter, r *http.Request) {
	count, err := s.forum.LikeComment(r.Context(), r.PathValue("id"), r.PathValue("commentID"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, likeResponse{Likes: count})
}

// --- Health ---

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
