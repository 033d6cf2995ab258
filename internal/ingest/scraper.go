// Package ingest bulk-scrapes subreddit listings into a cached, sentiment-scored snapshot.
package ingest

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/moodlens/aura-tracker/internal/models"
	"github.com/moodlens/aura-tracker/internal/sources"
	"github.com/moodlens/aura-tracker/internal/storage"
	"github.com/sirupsen/logrus"
)

const (
	// SnapshotName is the cache object holding the latest scrape
	SnapshotName = "reddit_posts.json"
	// TableName is a flat CSV export of the latest scrape
	TableName = "reddit_posts.csv"

	snapshotPrefix = "reddit_posts_"
)

var whitespace = regexp.MustCompile(`\s+`)

// Scorer maps text to sentiment scores
type Scorer interface {
	Score(text string) models.SentimentScore
}

// Scraper pulls top, hot, new and rising listings for a set of subreddits
type Scraper struct {
	source sources.SubredditSource
	scorer Scorer
	cache  storage.ContentCache
	pause  time.Duration
	now    func() time.Time
}

// NewScraper creates a scraper. pause is slept between subreddits to stay under rate limits.
func NewScraper(source sources.SubredditSource, scorer Scorer, cache storage.ContentCache, pause time.Duration) *Scraper {
	return &Scraper{
		source: source,
		scorer: scorer,
		cache:  cache,
		pause:  pause,
		now:    time.Now,
	}
}

// Scrape collects postsPerSub/4 posts from each listing of every subreddit, dedupes them,
// scores them and caches the snapshot. Rising failures are ignored; a failed subreddit is
// logged and skipped. It errors only when every subreddit failed.
func (s *Scraper) Scrape(ctx context.Context, subreddits []string, postsPerSub int) (*models.ScrapeSnapshot, error) {
	perListing := postsPerSub / 4
	if perListing < 1 {
		return nil, fmt.Errorf("posts per subreddit must be at least 4, got %d", postsPerSub)
	}

	var raw []models.RawPost
	var failures []error
	for i, sub := range subreddits {
		if i > 0 && s.pause > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(s.pause):
			}
		}

		logrus.Infof("Scraping subreddit r/%s", sub)
		posts, err := s.scrapeSubreddit(ctx, sub, perListing)
		if err != nil {
			logrus.Errorf("Failed to scrape subreddit r/%s: %v", sub, err)
			failures = append(failures, fmt.Errorf("r/%s: %w", sub, err))
			continue
		}
		raw = append(raw, posts...)
	}

	if len(subreddits) > 0 && len(failures) == len(subreddits) {
		return nil, fmt.Errorf("all subreddits failed: %w", errors.Join(failures...))
	}

	logrus.Infof("Collected %d posts from %d subreddits", len(raw), len(subreddits)-len(failures))

	snapshot := &models.ScrapeSnapshot{
		GeneratedAt: s.now().UTC(),
		Subreddits:  subreddits,
		Posts:       s.toRows(raw),
	}

	if err := s.save(ctx, snapshot); err != nil {
		return snapshot, err
	}

	return snapshot, nil
}

func (s *Scraper) scrapeSubreddit(ctx context.Context, sub string, perListing int) ([]models.RawPost, error) {
	var posts []models.RawPost
	for _, listing := range []sources.Listing{sources.ListingTop, sources.ListingHot, sources.ListingNew, sources.ListingRising} {
		batch, err := s.source.FetchListing(ctx, sub, listing, perListing)
		if err != nil {
			if listing == sources.ListingRising {
				logrus.Debugf("Ignoring rising listing failure for r/%s: %v", sub, err)
				continue
			}
			return nil, fmt.Errorf("%s listing: %w", listing, err)
		}
		for i := range batch {
			if batch[i].Subreddit == "" {
				batch[i].Subreddit = sub
			}
		}
		posts = append(posts, batch...)
	}
	return posts, nil
}

type dedupeKey struct {
	title, url, author string
	created            int64
}

// toRows dedupes on title, url, author and creation time, keeping the first occurrence
func (s *Scraper) toRows(raw []models.RawPost) []models.ScrapedPost {
	seen := make(map[dedupeKey]bool, len(raw))
	rows := make([]models.ScrapedPost, 0, len(raw))

	for _, p := range raw {
		author := p.Author
		if author == "" {
			author = sources.DeletedAuthor
		}

		key := dedupeKey{title: p.Title, url: p.URL, author: author, created: p.CreatedAt.Unix()}
		if seen[key] {
			continue
		}
		seen[key] = true

		content := Content(p.Title, p.Body)
		rows = append(rows, models.ScrapedPost{
			Subreddit:     p.Subreddit,
			Title:         p.Title,
			Score:         p.Score,
			Author:        author,
			NumComments:   p.CommentCount,
			CreatedUTC:    float64(p.CreatedAt.Unix()),
			URL:           p.URL,
			Text:          p.Body,
			CreatedAt:     p.CreatedAt.UTC(),
			Content:       content,
			VaderCompound: s.scorer.Score(content).Compound,
		})
	}
	return rows
}

// Content joins title and body and collapses whitespace runs
func Content(title, body string) string {
	joined := strings.TrimSpace(title) + " " + strings.TrimSpace(body)
	return strings.TrimSpace(whitespace.ReplaceAllString(joined, " "))
}

func (s *Scraper) save(ctx context.Context, snapshot *models.ScrapeSnapshot) error {
	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}

	if err := s.cache.Store(ctx, SnapshotName, data); err != nil {
		return fmt.Errorf("failed to cache snapshot: %w", err)
	}

	archive := snapshotPrefix + snapshot.GeneratedAt.Format("20060102T150405Z") + ".json"
	if err := s.cache.Store(ctx, archive, data); err != nil {
		logrus.Warnf("Failed to archive snapshot as %s: %v", archive, err)
	}

	table, err := encodeCSV(snapshot.Posts)
	if err != nil {
		return fmt.Errorf("failed to encode CSV export: %w", err)
	}
	if err := s.cache.Store(ctx, TableName, table); err != nil {
		logrus.Warnf("Failed to cache CSV export: %v", err)
	}

	return nil
}

func encodeCSV(rows []models.ScrapedPost) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := []string{"subreddit", "title", "score", "author", "num_comments", "created_utc", "url", "text", "created_dt_utc", "content", "vader_compound"}
	if err := w.Write(header); err != nil {
		return nil, err
	}
	for _, r := range rows {
		record := []string{
			r.Subreddit,
			r.Title,
			strconv.Itoa(r.Score),
			r.Author,
			strconv.Itoa(r.NumComments),
			strconv.FormatFloat(r.CreatedUTC, 'f', -1, 64),
			r.URL,
			r.Text,
			r.CreatedAt.Format(time.RFC3339),
			r.Content,
			strconv.FormatFloat(r.VaderCompound, 'f', 4, 64),
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

// LoadCached returns the last cached snapshot, or an empty one if nothing was scraped yet
func (s *Scraper) LoadCached(ctx context.Context) (*models.ScrapeSnapshot, error) {
	data, err := s.cache.Retrieve(ctx, SnapshotName)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return &models.ScrapeSnapshot{Posts: []models.ScrapedPost{}}, nil
		}
		return nil, fmt.Errorf("failed to read cached snapshot: %w", err)
	}

	var snapshot models.ScrapeSnapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("failed to decode cached snapshot: %w", err)
	}
	if snapshot.Posts == nil {
		snapshot.Posts = []models.ScrapedPost{}
	}
	return &snapshot, nil
}
