package scheduler

import (
	"context"
	"time"

	"github.com/moodlens/aura-tracker/internal/config"
	"github.com/moodlens/aura-tracker/internal/models"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// jobTimeout bounds a single scheduled run
const jobTimeout = 30 * time.Minute

// Jobs is the work the scheduler triggers
type Jobs interface {
	RunScrape(ctx context.Context) (*models.ScrapeSnapshot, error)
	RunAlertCheck(ctx context.Context) error
}

// Service handles scheduling of the scrape and watch-list jobs
type Service struct {
	config *config.Config
	jobs   Jobs
	cron   *cron.Cron
}

// NewService creates a new scheduler service
func NewService(cfg *config.Config, jobs Jobs) *Service {
	return &Service{
		config: cfg,
		jobs:   jobs,
		cron:   cron.New(cron.WithSeconds()),
	}
}

// Start registers the configured jobs and starts the cron loop. An empty scrape schedule
// disables the scrape; the alert check only runs when users are watched.
func (s *Service) Start() error {
	if s.config.ScrapeSchedule != "" {
		_, err := s.cron.AddFunc(s.config.ScrapeSchedule, s.scrape)
		if err != nil {
			return err
		}
		logrus.Infof("Scheduled subreddit scrape with %q", s.config.ScrapeSchedule)
	}

	if len(s.config.WatchedUsers) > 0 && s.config.AlertCheckSchedule != "" {
		_, err := s.cron.AddFunc(s.config.AlertCheckSchedule, s.alertCheck)
		if err != nil {
			return err
		}
		logrus.Infof("Scheduled alert check for %d users with %q", len(s.config.WatchedUsers), s.config.AlertCheckSchedule)
	}

	s.cron.Start()
	logrus.Infof("Scheduler started with %d jobs", len(s.cron.Entries()))
	return nil
}

func (s *Service) scrape() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	logrus.Info("Starting scheduled subreddit scrape")
	if _, err := s.jobs.RunScrape(ctx); err != nil {
		logrus.Errorf("Scheduled scrape failed: %v", err)
	}
}

func (s *Service) alertCheck() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	logrus.Info("Starting scheduled alert check")
	if err := s.jobs.RunAlertCheck(ctx); err != nil {
		logrus.Errorf("Scheduled alert check failed: %v", err)
	}
}

// Stop stops the scheduler and waits for running jobs
func (s *Service) Stop() {
	if s.cron != nil {
		<-s.cron.Stop().Done()
		logrus.Info("Scheduler stopped")
	}
}
