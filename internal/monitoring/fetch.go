package monitoring

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/moodlens/aura-tracker/internal/metrics"
	"github.com/moodlens/aura-tracker/internal/models"
	"github.com/moodlens/aura-tracker/internal/nlp"
	"github.com/moodlens/aura-tracker/internal/poststore"
	"github.com/sirupsen/logrus"
)

// FetchUser pulls the user's newest posts and replaces whatever was stored for them.
// Failures are reported in the result, never as an error.
func (s *Service) FetchUser(ctx context.Context, username string, limit int) models.FetchResult {
	if limit <= 0 {
		limit = s.config.FetchLimit
	}

	posts, err := s.fetch(ctx, username, limit)
	if err != nil {
		return models.FetchResult{Fetched: 0, Error: err.Error()}
	}
	return models.FetchResult{Fetched: len(posts)}
}

func (s *Service) fetch(ctx context.Context, username string, limit int) ([]models.Post, error) {
	source := s.userSource.GetName()
	logrus.Infof("Fetching up to %d posts for %s from %s", limit, username, source)

	raw, err := s.userSource.FetchUserPosts(ctx, username, limit)
	if err != nil {
		logrus.Errorf("Failed to fetch posts for %s from %s: %v", username, source, err)
		s.recorder.ObserveFetch(source, metrics.OutcomeError, 0)
		s.recorder.ExternalError(source)
		s.updateMetrics(func(m *Metrics) {
			m.FailedFetches++
			m.ErrorCount++
		})
		return nil, err
	}

	posts := make([]models.Post, 0, len(raw))
	for _, p := range raw {
		posts = append(posts, models.Post{
			ID:      p.ID,
			Title:   p.Title,
			Created: p.CreatedAt.UTC(),
			Text:    nlp.PostText(p.Title, p.Body),
		})
	}
	s.store.Put(username, posts)

	s.recorder.ObserveFetch(source, metrics.OutcomeSuccess, len(posts))
	s.updateMetrics(func(m *Metrics) {
		m.TotalFetches++
		m.LastFetch = time.Now()
	})
	logrus.Infof("Stored %d posts for %s", len(posts), username)

	return posts, nil
}

// cachedPosts returns the stored posts, or nil when the user was never fetched
func (s *Service) cachedPosts(username string) []models.Post {
	posts, err := s.store.Get(username)
	if err != nil {
		if !errors.Is(err, poststore.ErrNotFound) {
			logrus.Errorf("Failed to read posts for %s: %v", username, err)
		}
		return nil
	}
	return posts
}

// postsOrFetch returns the stored posts, fetching a smaller batch when there are none
func (s *Service) postsOrFetch(ctx context.Context, username string) ([]models.Post, error) {
	if posts := s.cachedPosts(username); len(posts) > 0 {
		return posts, nil
	}

	posts, err := s.fetch(ctx, username, s.config.LazyFetchLimit)
	if err != nil {
		return nil, fmt.Errorf("unable to fetch posts: %w", err)
	}
	return posts, nil
}

// Invalidate drops the user's stored posts
func (s *Service) Invalidate(username string) {
	s.store.Invalidate(username)
	logrus.Infof("Invalidated cached posts for %s", username)
}
