package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/moodlens/aura-tracker/internal/config"
	"github.com/moodlens/aura-tracker/internal/models"
	"github.com/moodlens/aura-tracker/internal/monitoring"
	"github.com/moodlens/aura-tracker/internal/notifications"
	"github.com/moodlens/aura-tracker/internal/storage"
)

// consoleNotifier prints digests instead of delivering them
type consoleNotifier struct {
	out io.Writer
}

var _ notifications.NotificationInterface = (*consoleNotifier)(nil)

func (c *consoleNotifier) SendDigest(digest *models.AlertDigest) error {
	if digest == nil || len(digest.Alerts) == 0 {
		return nil
	}
	fmt.Fprintln(c.out, strings.Repeat("=", 50))
	fmt.Fprintf(c.out, "Mood alerts for %s (threshold %.2f)\n", digest.Username, digest.Threshold)
	fmt.Fprintln(c.out, strings.Repeat("=", 50))
	for _, alert := range digest.Alerts {
		fmt.Fprintf(c.out, "  %s  %+.3f  %s\n", alert.Date, alert.AvgCompound, alert.Message)
	}
	return nil
}

func newService(notifier notifications.NotificationInterface) (*monitoring.Service, *config.Analysis, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	analysis, err := config.LoadAnalysis(cfg.AnalysisConfigPath)
	if err != nil {
		return nil, nil, err
	}
	cache, err := storage.New(cfg.CacheBackend, cfg.CacheDir, cfg.StorageAccount, cfg.StorageContainer)
	if err != nil {
		return nil, nil, err
	}
	if notifier == nil {
		notifier = notifications.NewService(cfg)
	}
	return monitoring.NewService(cfg, analysis, cache, notifier), analysis, nil
}

func runFetch(ctx context.Context, username string, limit int, out io.Writer) error {
	svc, _, err := newService(&consoleNotifier{out: out})
	if err != nil {
		return err
	}
	return printJSON(out, svc.FetchUser(ctx, username, limit))
}

// runTrend uses the configured trend window when days is negative
func runTrend(ctx context.Context, username string, limit, days int, out io.Writer) error {
	svc, analysis, err := newService(&consoleNotifier{out: out})
	if err != nil {
		return err
	}
	if result := svc.FetchUser(ctx, username, limit); result.Error != "" {
		return fmt.Errorf("fetch %s: %s", username, result.Error)
	}
	if days < 0 {
		days = analysis.TrendDays
	}
	return printJSON(out, svc.MoodTrend(username, days))
}

func runPosts(ctx context.Context, username string, limit int, out io.Writer) error {
	svc, _, err := newService(&consoleNotifier{out: out})
	if err != nil {
		return err
	}
	if result := svc.FetchUser(ctx, username, limit); result.Error != "" {
		return fmt.Errorf("fetch %s: %s", username, result.Error)
	}
	return printJSON(out, map[string][]models.ScoredPost{"posts": svc.ScoredPosts(username)})
}

func runAnalysis(ctx context.Context, kind, username string, out io.Writer) error {
	svc, _, err := newService(&consoleNotifier{out: out})
	if err != nil {
		return err
	}

	var result interface{}
	switch kind {
	case "aura":
		result, err = svc.Aura(ctx, username)
	case "emotions":
		result, err = svc.Emotions(ctx, username)
	case "personality":
		result, err = svc.Personality(ctx, username)
	default:
		return fmt.Errorf("unknown analysis %q", kind)
	}
	if err != nil {
		return err
	}
	return printJSON(out, result)
}

func runScrape(ctx context.Context, out io.Writer) error {
	svc, _, err := newService(&consoleNotifier{out: out})
	if err != nil {
		return err
	}
	snapshot, err := svc.RunScrape(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Scraped %d posts from %s\n", len(snapshot.Posts), strings.Join(snapshot.Subreddits, ", "))
	return nil
}

func runPatients(ctx context.Context, query string, limit int, out io.Writer) error {
	svc, _, err := newService(&consoleNotifier{out: out})
	if err != nil {
		return err
	}
	patients, err := svc.PatientSearch(ctx, query, limit)
	if err != nil {
		return err
	}
	return printJSON(out, map[string][]models.PatientSummary{"patients": patients})
}

func runCheck(ctx context.Context, notify bool, out io.Writer) error {
	var notifier notifications.NotificationInterface = &consoleNotifier{out: out}
	if notify {
		notifier = nil
	}
	svc, _, err := newService(notifier)
	if err != nil {
		return err
	}
	return svc.RunAlertCheck(ctx)
}

func printJSON(out io.Writer, v interface{}) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
