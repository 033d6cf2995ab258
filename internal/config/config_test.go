package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 100, cfg.FetchLimit)
	assert.Equal(t, 50, cfg.LazyFetchLimit)
	assert.Equal(t, "file", cfg.CacheBackend)
	assert.Equal(t, 1000, cfg.PostsPerSub)
	assert.Contains(t, cfg.Subreddits, "Anxiety")
	assert.Empty(t, cfg.WatchedUsers)
}

func TestLoad_Environment(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("DEBUG", "true")
	t.Setenv("SUBREDDITS", "college, happiness ,")
	t.Setenv("WATCHED_USERS", "alice,bob")
	t.Setenv("TEAMS_WEBHOOK_URL", "https://example.com/hook")
	t.Setenv("FETCH_LIMIT", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.True(t, cfg.Debug)
	assert.Equal(t, []string{"college", "happiness"}, cfg.Subreddits)
	assert.Equal(t, []string{"alice", "bob"}, cfg.WatchedUsers)
	assert.Equal(t, 100, cfg.FetchLimit, "unparsable values fall back to the default")
}

func TestConfig_Validate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			CacheBackend:       "file",
			FetchLimit:         100,
			LazyFetchLimit:     50,
			PostsPerSub:        1000,
			AlertCheckSchedule: "0 0 */6 * * *",
		}
	}

	tests := []struct {
		name        string
		mutate      func(c *Config)
		expectError string
	}{
		{
			name:   "Valid configuration",
			mutate: func(c *Config) {},
		},
		{
			name:        "Unknown cache backend",
			mutate:      func(c *Config) { c.CacheBackend = "s3" },
			expectError: "CACHE_BACKEND",
		},
		{
			name:        "Azure without account",
			mutate:      func(c *Config) { c.CacheBackend = "azure" },
			expectError: "AZURE_STORAGE_ACCOUNT",
		},
		{
			name:        "Reddit source without credentials",
			mutate:      func(c *Config) { c.ContentSource = "reddit" },
			expectError: "REDDIT_CLIENT_ID",
		},
		{
			name: "Reddit source with credentials",
			mutate: func(c *Config) {
				c.ContentSource = "reddit"
				c.RedditClientID = "id"
				c.RedditClientSecret = "secret"
			},
		},
		{
			name:        "Unknown content source",
			mutate:      func(c *Config) { c.ContentSource = "twitter" },
			expectError: "CONTENT_SOURCE",
		},
		{
			name:        "Too few posts per subreddit",
			mutate:      func(c *Config) { c.PostsPerSub = 3 },
			expectError: "POSTS_PER_SUB",
		},
		{
			name:        "Invalid cron expression",
			mutate:      func(c *Config) { c.ScrapeSchedule = "0 3 * * *" },
			expectError: "SCRAPE_SCHEDULE",
		},
		{
			name:        "Watched users without notifications",
			mutate:      func(c *Config) { c.WatchedUsers = []string{"alice"} },
			expectError: "WATCHED_USERS",
		},
		{
			name: "Email without SMTP",
			mutate: func(c *Config) {
				c.WatchedUsers = []string{"alice"}
				c.NotificationEmail = "care@example.com"
			},
			expectError: "SMTP",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			err := c.validate()
			if tt.expectError == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.expectError)
		})
	}
}

func TestDefaultAnalysis(t *testing.T) {
	a := DefaultAnalysis()

	assert.Equal(t, 6, a.ClusterCount)
	assert.Equal(t, int64(42), a.ClusterSeed)
	assert.Equal(t, -0.5, a.AlertThreshold)
	assert.Equal(t, 60, a.AlertLookbackDays)
	assert.Equal(t, 512, a.EmotionMaxChars)
	require.Len(t, a.Topics, 6)
	assert.Equal(t, "work", a.Topics[0].Name)
	assert.Len(t, a.Traits, 5)
	assert.Equal(t, 0.7, a.Traits[4].Weights["worry"])
	require.NoError(t, a.validate())
}

func TestLoadAnalysis(t *testing.T) {
	t.Run("Defaults only", func(t *testing.T) {
		a, err := LoadAnalysis("")
		require.NoError(t, err)
		assert.Equal(t, DefaultAnalysis(), a)
	})

	t.Run("YAML file and env overrides", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "analysis.yaml")
		require.NoError(t, os.WriteFile(path, []byte(`
alert_threshold: -0.3
topics:
  - name: sleep
    keywords: [sleep, insomnia]
`), 0644))
		t.Setenv("AURA_TREND_DAYS", "14")

		a, err := LoadAnalysis(path)
		require.NoError(t, err)

		assert.Equal(t, -0.3, a.AlertThreshold)
		assert.Equal(t, 14, a.TrendDays)
		require.Len(t, a.Topics, 1)
		assert.Equal(t, []string{"sleep", "insomnia"}, a.Topics[0].Keywords)
		assert.Equal(t, 6, a.ClusterCount)
	})

	t.Run("Missing file", func(t *testing.T) {
		_, err := LoadAnalysis(filepath.Join(t.TempDir(), "missing.yaml"))
		assert.Error(t, err)
	})

	t.Run("Invalid values", func(t *testing.T) {
		t.Setenv("AURA_CLUSTER_COUNT", "0")
		_, err := LoadAnalysis("")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "cluster_count")
	})
}
