package monitoring

import (
	"context"
	"time"

	"github.com/moodlens/aura-tracker/internal/models"
)

// MoodTrend returns the daily trend over the trailing days (zero keeps only posts from now
// on) and the alerts of the fixed lookback window at the default threshold. It never fetches.
func (s *Service) MoodTrend(username string, days int) models.MoodTrend {
	defer s.observe("trend", time.Now())

	posts := s.cachedPosts(username)
	return models.MoodTrend{
		Trend:  s.aggregator.DailyMood(posts, days),
		Alerts: s.emitAlerts(posts, s.analysis.AlertThreshold),
	}
}

// Alerts returns the low-mood days of the fixed lookback window below threshold
func (s *Service) Alerts(username string, threshold float64) []models.Alert {
	defer s.observe("alerts", time.Now())
	return s.emitAlerts(s.cachedPosts(username), threshold)
}

func (s *Service) emitAlerts(posts []models.Post, threshold float64) []models.Alert {
	alerts := s.alerts.Alerts(posts, threshold)
	s.recorder.AlertsEmitted(len(alerts))
	return alerts
}

// ScoredPosts returns per-post sentiment for the stored posts. It never fetches.
func (s *Service) ScoredPosts(username string) []models.ScoredPost {
	defer s.observe("posts", time.Now())
	return s.scorer.ScorePosts(s.cachedPosts(username))
}

// Aura clusters the user's posts into an aura, fetching first when nothing is stored.
// A nil result means the user has no posts.
func (s *Service) Aura(ctx context.Context, username string) (*models.AuraResult, error) {
	defer s.observe("aura", time.Now())

	posts, err := s.postsOrFetch(ctx, username)
	if err != nil {
		return nil, err
	}

	result, err := s.auraEngine.Analyze(ctx, posts)
	if err != nil {
		s.recorder.ExternalError("embedder")
		s.countError()
		return nil, err
	}
	return result, nil
}

// Emotions averages classifier output over the user's posts, fetching first when nothing is stored
func (s *Service) Emotions(ctx context.Context, username string) (models.EmotionDistribution, error) {
	defer s.observe("emotions", time.Now())

	posts, err := s.postsOrFetch(ctx, username)
	if err != nil {
		return nil, err
	}

	dist, err := s.emotions.Analyze(ctx, posts)
	if err != nil {
		s.recorder.ExternalError("classifier")
		s.countError()
		return nil, err
	}
	return dist, nil
}

// Personality estimates Big-Five scores from the user's posts, fetching first when nothing is stored
func (s *Service) Personality(ctx context.Context, username string) (models.PersonalityProfile, error) {
	defer s.observe("personality", time.Now())

	posts, err := s.postsOrFetch(ctx, username)
	if err != nil {
		return models.PersonalityProfile{}, err
	}

	texts := make([]string, 0, len(posts))
	for _, p := range posts {
		texts = append(texts, p.Text)
	}
	return s.personality.Big5(texts), nil
}

func (s *Service) observe(kind string, start time.Time) {
	s.recorder.ObserveAnalysis(kind, time.Since(start))
}

func (s *Service) countError() {
	s.updateMetrics(func(m *Metrics) { m.ErrorCount++ })
}
