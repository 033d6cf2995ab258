package monitoring

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/moodlens/aura-tracker/internal/models"
	"github.com/sirupsen/logrus"
)

// RunScrape scrapes the configured subreddits and caches the snapshot
func (s *Service) RunScrape(ctx context.Context) (*models.ScrapeSnapshot, error) {
	start := time.Now()
	logrus.Infof("Starting scrape of %d subreddits via %s", len(s.config.Subreddits), s.subredditSource.GetName())

	snapshot, err := s.scraper.Scrape(ctx, s.config.Subreddits, s.config.PostsPerSub)
	if err != nil {
		s.recorder.ExternalError(s.subredditSource.GetName())
		s.countError()
		return nil, fmt.Errorf("scrape failed: %w", err)
	}

	s.recorder.ObserveScrape(len(snapshot.Posts), snapshot.GeneratedAt)
	s.updateMetrics(func(m *Metrics) {
		m.LastScrape = snapshot.GeneratedAt
		m.LastScrapeDuration = time.Since(start).String()
		m.SnapshotPosts = len(snapshot.Posts)
	})

	logrus.Infof("Scrape completed in %v with %d posts", time.Since(start), len(snapshot.Posts))
	return snapshot, nil
}

// LoadSnapshot returns the cached scrape snapshot
func (s *Service) LoadSnapshot(ctx context.Context) (*models.ScrapeSnapshot, error) {
	return s.scraper.LoadCached(ctx)
}

// RunAlertCheck refetches every watched user and sends a digest for each one with alerts.
// A failed fetch skips that user; delivery failures are collected and returned.
func (s *Service) RunAlertCheck(ctx context.Context) error {
	start := time.Now()
	logrus.Infof("Starting alert check for %d watched users", len(s.config.WatchedUsers))

	var errs []error
	sent := 0
	for _, username := range s.config.WatchedUsers {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		posts, err := s.fetch(ctx, username, s.config.FetchLimit)
		if err != nil {
			continue
		}

		alerts := s.emitAlerts(posts, s.analysis.AlertThreshold)
		if len(alerts) == 0 {
			logrus.Debugf("No alerts for %s", username)
			continue
		}

		digest := &models.AlertDigest{
			Username:    username,
			GeneratedAt: s.now().UTC(),
			Threshold:   s.analysis.AlertThreshold,
			Alerts:      alerts,
		}
		if err := s.notificationService.SendDigest(digest); err != nil {
			logrus.Errorf("Failed to send alert digest for %s: %v", username, err)
			s.recorder.ExternalError("notifications")
			errs = append(errs, fmt.Errorf("%s: %w", username, err))
			continue
		}
		sent += len(alerts)
	}

	s.updateMetrics(func(m *Metrics) {
		m.LastAlertCheck = time.Now()
		m.AlertsSent += sent
		m.ErrorCount += len(errs)
	})

	logrus.Infof("Alert check completed in %v, sent %d alerts", time.Since(start), sent)
	return errors.Join(errs...)
}
