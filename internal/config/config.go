package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/robfig/cron/v3"
)

// Config holds all configuration for the application
type Config struct {
	// Server configuration
	Port  string
	Debug bool

	// Reddit API credentials
	RedditClientID     string
	RedditClientSecret string
	RedditUserAgent    string

	// User post source: "reddit", "reddit-rss" or "hackernews". Empty picks
	// reddit when credentials are set and reddit-rss otherwise.
	ContentSource string

	// Fetch limits
	FetchLimit     int // posts pulled by an explicit fetch
	LazyFetchLimit int // posts pulled when an analysis finds an empty cache

	// External model services
	EmbedURL        string
	EmbedModel      string
	ClassifierURL   string
	ClassifierToken string

	// Content cache
	CacheBackend     string // "file" or "azure"
	CacheDir         string
	StorageAccount   string
	StorageContainer string

	// Bulk subreddit scrape
	Subreddits     []string
	PostsPerSub    int
	ScrapeSchedule string

	// Watch-list alerting
	WatchedUsers       []string
	AlertCheckSchedule string

	// Notification configuration
	TeamsWebhookURL   string
	NotificationEmail string
	SMTPHost          string
	SMTPPort          int
	SMTPUsername      string
	SMTPPassword      string

	// Optional YAML file with analysis tunables
	AnalysisConfigPath string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Port:  getEnv("PORT", "8080"),
		Debug: getBoolEnv("DEBUG", false),

		RedditClientID:     getEnv("REDDIT_CLIENT_ID", ""),
		RedditClientSecret: getEnv("REDDIT_CLIENT_SECRET", ""),
		RedditUserAgent:    getEnv("REDDIT_USER_AGENT", "wellness-tracker/1.0"),

		ContentSource: getEnv("CONTENT_SOURCE", ""),

		FetchLimit:     getIntEnv("FETCH_LIMIT", 100),
		LazyFetchLimit: getIntEnv("LAZY_FETCH_LIMIT", 50),

		EmbedURL:        getEnv("EMBED_URL", "http://localhost:11434"),
		EmbedModel:      getEnv("EMBED_MODEL", "all-minilm"),
		ClassifierURL:   getEnv("CLASSIFIER_URL", "https://api-inference.huggingface.co/models/j-hartmann/emotion-english-distilroberta-base"),
		ClassifierToken: getEnv("CLASSIFIER_TOKEN", ""),

		CacheBackend:     getEnv("CACHE_BACKEND", "file"),
		CacheDir:         getEnv("CACHE_DIR", "uploads"),
		StorageAccount:   getEnv("AZURE_STORAGE_ACCOUNT", ""),
		StorageContainer: getEnv("AZURE_STORAGE_CONTAINER", "reddit-cache"),

		Subreddits: getSliceEnv("SUBREDDITS", []string{
			"mentalhealth", "selfimprovement", "college",
			"happiness", "Anxiety", "Depression", "relationships",
		}),
		PostsPerSub:    getIntEnv("POSTS_PER_SUB", 1000),
		ScrapeSchedule: getEnv("SCRAPE_SCHEDULE", ""),

		WatchedUsers:       getSliceEnv("WATCHED_USERS", nil),
		AlertCheckSchedule: getEnv("ALERT_CHECK_SCHEDULE", "0 0 */6 * * *"),

		TeamsWebhookURL:   getEnv("TEAMS_WEBHOOK_URL", ""),
		NotificationEmail: getEnv("NOTIFICATION_EMAIL", ""),
		SMTPHost:          getEnv("SMTP_HOST", ""),
		SMTPPort:          getIntEnv("SMTP_PORT", 587),
		SMTPUsername:      getEnv("SMTP_USERNAME", ""),
		SMTPPassword:      getEnv("SMTP_PASSWORD", ""),

		AnalysisConfigPath: getEnv("ANALYSIS_CONFIG", ""),
	}

	// Validate required configuration
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.CacheBackend != "file" && c.CacheBackend != "azure" {
		return fmt.Errorf("CACHE_BACKEND must be 'file' or 'azure'")
	}

	if c.CacheBackend == "azure" && c.StorageAccount == "" {
		return fmt.Errorf("AZURE_STORAGE_ACCOUNT is required when CACHE_BACKEND is 'azure'")
	}

	switch c.ContentSource {
	case "", "reddit-rss", "hackernews":
	case "reddit":
		if c.RedditClientID == "" || c.RedditClientSecret == "" {
			return fmt.Errorf("CONTENT_SOURCE 'reddit' requires REDDIT_CLIENT_ID and REDDIT_CLIENT_SECRET")
		}
	default:
		return fmt.Errorf("CONTENT_SOURCE must be 'reddit', 'reddit-rss' or 'hackernews'")
	}

	if c.FetchLimit <= 0 || c.LazyFetchLimit <= 0 {
		return fmt.Errorf("FETCH_LIMIT and LAZY_FETCH_LIMIT must be positive")
	}

	if c.PostsPerSub < 4 {
		return fmt.Errorf("POSTS_PER_SUB must be at least 4 (one per listing)")
	}

	parser := cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	for name, expr := range map[string]string{
		"SCRAPE_SCHEDULE":      c.ScrapeSchedule,
		"ALERT_CHECK_SCHEDULE": c.AlertCheckSchedule,
	} {
		if expr == "" {
			continue
		}
		if _, err := parser.Parse(expr); err != nil {
			return fmt.Errorf("%s is not a valid cron expression: %w", name, err)
		}
	}

	if len(c.WatchedUsers) > 0 && c.TeamsWebhookURL == "" && c.NotificationEmail == "" {
		return fmt.Errorf("WATCHED_USERS requires a notification method (TEAMS_WEBHOOK_URL or NOTIFICATION_EMAIL)")
	}

	if c.NotificationEmail != "" {
		if c.SMTPHost == "" || c.SMTPUsername == "" || c.SMTPPassword == "" {
			return fmt.Errorf("SMTP configuration is required when NOTIFICATION_EMAIL is set")
		}
	}

	return nil
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getSliceEnv(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		var out []string
		for _, part := range strings.Split(value, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
		return out
	}
	return defaultValue
}
