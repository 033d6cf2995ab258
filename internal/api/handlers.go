// Package api exposes the mood pipeline as JSON over HTTP.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/moodlens/aura-tracker/internal/models"
	"github.com/sirupsen/logrus"
)

// scrapeTimeout bounds a scrape started over HTTP
const scrapeTimeout = 30 * time.Minute

// Pipeline is the set of operations served by the router
type Pipeline interface {
	FetchUser(ctx context.Context, username string, limit int) models.FetchResult
	MoodTrend(username string, days int) models.MoodTrend
	ScoredPosts(username string) []models.ScoredPost
	Alerts(username string, threshold float64) []models.Alert
	Aura(ctx context.Context, username string) (*models.AuraResult, error)
	Emotions(ctx context.Context, username string) (models.EmotionDistribution, error)
	Personality(ctx context.Context, username string) (models.PersonalityProfile, error)
	PatientSearch(ctx context.Context, query string, limit int) ([]models.PatientSummary, error)
	RunScrape(ctx context.Context) (*models.ScrapeSnapshot, error)
	Invalidate(username string)
	GetMetrics() string
}

// Defaults fill in query parameters a request leaves out
type Defaults struct {
	AlertThreshold float64
	TrendDays      int
}

// Handler serves the pipeline routes
type Handler struct {
	pipeline Pipeline
	metrics  http.Handler
	defaults Defaults
}

// NewRouter builds the route table. metrics serves /metrics.
func NewRouter(pipeline Pipeline, metrics http.Handler, defaults Defaults) *mux.Router {
	h := &Handler{
		pipeline: pipeline,
		metrics:  metrics,
		defaults: defaults,
	}

	router := mux.NewRouter()
	router.HandleFunc("/health", h.health).Methods("GET")
	router.Handle("/metrics", h.metrics).Methods("GET")

	api := router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/stats", h.stats).Methods("GET")
	api.HandleFunc("/fetch/{username}", h.fetch).Methods("GET")
	api.HandleFunc("/mood_trend/{username}", h.moodTrend).Methods("GET")
	api.HandleFunc("/alerts/{username}", h.alerts).Methods("GET")
	api.HandleFunc("/posts/{username}", h.posts).Methods("GET")
	api.HandleFunc("/aura/{username}", h.aura).Methods("GET")
	api.HandleFunc("/emotions/{username}", h.emotions).Methods("GET")
	api.HandleFunc("/personality/{username}", h.personality).Methods("GET")
	api.HandleFunc("/patients", h.patients).Methods("GET")
	api.HandleFunc("/scrape", h.scrape).Methods("POST")
	api.HandleFunc("/cache/{username}", h.invalidate).Methods("DELETE")

	return router
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

func (h *Handler) stats(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(h.pipeline.GetMetrics()))
}

func (h *Handler) fetch(w http.ResponseWriter, r *http.Request) {
	limit, ok := intParam(w, r, "limit", 0)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, h.pipeline.FetchUser(r.Context(), mux.Vars(r)["username"], limit))
}

func (h *Handler) moodTrend(w http.ResponseWriter, r *http.Request) {
	days, ok := intParam(w, r, "days", h.defaults.TrendDays)
	if !ok {
		return
	}
	if days < 0 {
		writeError(w, http.StatusBadRequest, "days must not be negative")
		return
	}
	writeJSON(w, http.StatusOK, h.pipeline.MoodTrend(mux.Vars(r)["username"], days))
}

func (h *Handler) posts(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]models.ScoredPost{
		"posts": h.pipeline.ScoredPosts(mux.Vars(r)["username"]),
	})
}

func (h *Handler) alerts(w http.ResponseWriter, r *http.Request) {
	threshold := h.defaults.AlertThreshold
	if raw := r.URL.Query().Get("threshold"); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "threshold must be a number")
			return
		}
		threshold = parsed
	}
	writeJSON(w, http.StatusOK, map[string][]models.Alert{
		"alerts": h.pipeline.Alerts(mux.Vars(r)["username"], threshold),
	})
}

// Analysis failures are reported as {"error": ...} with status 200 so dashboards can
// render partial results.
func (h *Handler) aura(w http.ResponseWriter, r *http.Request) {
	result, err := h.pipeline.Aura(r.Context(), mux.Vars(r)["username"])
	if err != nil {
		writeError(w, http.StatusOK, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) emotions(w http.ResponseWriter, r *http.Request) {
	dist, err := h.pipeline.Emotions(r.Context(), mux.Vars(r)["username"])
	if err != nil {
		writeError(w, http.StatusOK, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, dist)
}

func (h *Handler) personality(w http.ResponseWriter, r *http.Request) {
	profile, err := h.pipeline.Personality(r.Context(), mux.Vars(r)["username"])
	if err != nil {
		writeError(w, http.StatusOK, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

func (h *Handler) patients(w http.ResponseWriter, r *http.Request) {
	limit, ok := intParam(w, r, "limit", 50)
	if !ok {
		return
	}
	patients, err := h.pipeline.PatientSearch(r.Context(), r.URL.Query().Get("q"), limit)
	if err != nil {
		logrus.Errorf("Patient search failed: %v", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string][]models.PatientSummary{"patients": patients})
}

func (h *Handler) scrape(w http.ResponseWriter, r *http.Request) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), scrapeTimeout)
		defer cancel()
		if _, err := h.pipeline.RunScrape(ctx); err != nil {
			logrus.Errorf("Manual scrape trigger failed: %v", err)
		}
	}()

	writeJSON(w, http.StatusAccepted, map[string]string{"message": "Scrape triggered successfully"})
}

func (h *Handler) invalidate(w http.ResponseWriter, r *http.Request) {
	username := mux.Vars(r)["username"]
	h.pipeline.Invalidate(username)
	writeJSON(w, http.StatusOK, map[string]string{"message": "Cache cleared for " + username})
}

func intParam(w http.ResponseWriter, r *http.Request, name string, fallback int) (int, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, name+" must be an integer")
		return 0, false
	}
	return v, true
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logrus.Errorf("Failed to write response: %v", err)
	}
}
