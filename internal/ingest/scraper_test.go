package ingest

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/moodlens/aura-tracker/internal/models"
	"github.com/moodlens/aura-tracker/internal/sources"
	"github.com/moodlens/aura-tracker/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockSource is a mock implementation of sources.SubredditSource
type MockSource struct {
	mock.Mock
}

func (m *MockSource) GetName() string { return "mock" }

func (m *MockSource) IsEnabled() bool { return true }

func (m *MockSource) FetchUserPosts(ctx context.Context, username string, limit int) ([]models.RawPost, error) {
	args := m.Called(ctx, username, limit)
	return args.Get(0).([]models.RawPost), args.Error(1)
}

func (m *MockSource) FetchListing(ctx context.Context, subreddit string, listing sources.Listing, limit int) ([]models.RawPost, error) {
	args := m.Called(ctx, subreddit, listing, limit)
	return args.Get(0).([]models.RawPost), args.Error(1)
}

type stubScorer struct{}

func (stubScorer) Score(text string) models.SentimentScore {
	if strings.Contains(text, "sad") {
		return models.SentimentScore{Compound: -0.5}
	}
	return models.SentimentScore{Compound: 0.25}
}

var created = time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)

func post(id, title, author string) models.RawPost {
	return models.RawPost{ID: id, Title: title, Body: "  body   text ", Author: author, URL: "https://x/" + id, CreatedAt: created}
}

func newScraper(t *testing.T, source *MockSource) (*Scraper, storage.ContentCache) {
	cache, err := storage.NewFileStorage(t.TempDir())
	require.NoError(t, err)
	s := NewScraper(source, stubScorer{}, cache, 0)
	s.now = func() time.Time { return time.Date(2024, 6, 2, 0, 0, 0, 0, time.UTC) }
	return s, cache
}

func TestScraper_Scrape(t *testing.T) {
	ctx := context.Background()

	t.Run("Collects every listing and dedupes", func(t *testing.T) {
		source := &MockSource{}
		source.On("FetchListing", ctx, "Anxiety", sources.ListingTop, 2).Return([]models.RawPost{post("1", "a sad day", "alice"), post("2", "good", "")}, nil)
		source.On("FetchListing", ctx, "Anxiety", sources.ListingHot, 2).Return([]models.RawPost{post("1", "a sad day", "alice")}, nil)
		source.On("FetchListing", ctx, "Anxiety", sources.ListingNew, 2).Return([]models.RawPost{post("3", "new one", "bob")}, nil)
		source.On("FetchListing", ctx, "Anxiety", sources.ListingRising, 2).Return([]models.RawPost{}, errors.New("rising unavailable"))

		s, cache := newScraper(t, source)
		snapshot, err := s.Scrape(ctx, []string{"Anxiety"}, 8)

		require.NoError(t, err)
		require.Len(t, snapshot.Posts, 3)
		source.AssertExpectations(t)

		first := snapshot.Posts[0]
		assert.Equal(t, "Anxiety", first.Subreddit)
		assert.Equal(t, "a sad day body text", first.Content)
		assert.Equal(t, -0.5, first.VaderCompound)
		assert.Equal(t, float64(created.Unix()), first.CreatedUTC)
		assert.Equal(t, sources.DeletedAuthor, snapshot.Posts[1].Author)

		names, err := cache.List(ctx, "reddit_posts")
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"reddit_posts.csv", "reddit_posts.json", "reddit_posts_20240602T000000Z.json"}, names)

		table, err := cache.Retrieve(ctx, TableName)
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(string(table), "subreddit,title,score,author"))
	})

	t.Run("Failed subreddit is skipped", func(t *testing.T) {
		source := &MockSource{}
		source.On("FetchListing", ctx, "broken", sources.ListingTop, 1).Return([]models.RawPost{}, errors.New("403"))
		source.On("FetchListing", ctx, "fine", mock.Anything, 1).Return([]models.RawPost{post("9", "ok", "carol")}, nil)

		s, _ := newScraper(t, source)
		snapshot, err := s.Scrape(ctx, []string{"broken", "fine"}, 4)

		require.NoError(t, err)
		assert.Len(t, snapshot.Posts, 1, "the same post from four listings dedupes to one")
		assert.Equal(t, "fine", snapshot.Posts[0].Subreddit)
	})

	t.Run("All subreddits failing is an error", func(t *testing.T) {
		source := &MockSource{}
		source.On("FetchListing", ctx, mock.Anything, sources.ListingTop, 1).Return([]models.RawPost{}, errors.New("rate limited"))

		s, _ := newScraper(t, source)
		_, err := s.Scrape(ctx, []string{"a", "b"}, 4)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "rate limited")
	})

	t.Run("Too few posts per subreddit", func(t *testing.T) {
		s, _ := newScraper(t, &MockSource{})
		_, err := s.Scrape(ctx, []string{"a"}, 3)
		assert.Error(t, err)
	})
}

func TestScraper_LoadCached(t *testing.T) {
	ctx := context.Background()

	t.Run("Nothing cached yet", func(t *testing.T) {
		s, _ := newScraper(t, &MockSource{})
		snapshot, err := s.LoadCached(ctx)
		require.NoError(t, err)
		assert.NotNil(t, snapshot.Posts)
		assert.Empty(t, snapshot.Posts)
	})

	t.Run("Round trip", func(t *testing.T) {
		source := &MockSource{}
		source.On("FetchListing", ctx, "college", mock.Anything, 1).Return([]models.RawPost{post("1", "exam stress", "dave")}, nil)

		s, _ := newScraper(t, source)
		scraped, err := s.Scrape(ctx, []string{"college"}, 4)
		require.NoError(t, err)

		loaded, err := s.LoadCached(ctx)
		require.NoError(t, err)
		assert.Equal(t, scraped.Subreddits, loaded.Subreddits)
		require.Len(t, loaded.Posts, 1)
		assert.Equal(t, scraped.Posts[0].Content, loaded.Posts[0].Content)
		assert.True(t, scraped.Posts[0].CreatedAt.Equal(loaded.Posts[0].CreatedAt))
	})
}

func TestContent(t *testing.T) {
	tests := []struct {
		title, body, expected string
	}{
		{"Title", "Body", "Title Body"},
		{"  spaced\ttitle ", "\n\nmulti\n line ", "spaced title multi line"},
		{"", "", ""},
		{"only title", "", "only title"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, Content(tt.title, tt.body))
	}
}
