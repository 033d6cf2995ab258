package sources

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"
	"github.com/moodlens/aura-tracker/internal/models"
	"github.com/sirupsen/logrus"
)

const redditWebURL = "https://www.reddit.com"

// feedFooter matches the "submitted by /u/x [to r/y] [link] [comments]" trailer Reddit
// appends to every feed entry
var feedFooter = regexp.MustCompile(`\s*submitted by\s+\S+(\s+to\s+\S+)?\s*\[link\]\s*\[comments\]$`)

// RedditRSSSource reads public Reddit Atom feeds and needs no credentials.
// Feeds are capped by Reddit at roughly 100 entries.
type RedditRSSSource struct {
	baseURL string
	parser  *gofeed.Parser
}

// Ensure RedditRSSSource implements SubredditSource
var _ SubredditSource = (*RedditRSSSource)(nil)

// NewRedditRSSSource creates an RSS source; an empty baseURL means reddit.com
func NewRedditRSSSource(baseURL, userAgent string) *RedditRSSSource {
	if baseURL == "" {
		baseURL = redditWebURL
	}
	parser := gofeed.NewParser()
	if userAgent != "" {
		parser.UserAgent = userAgent
	}
	return &RedditRSSSource{
		baseURL: strings.TrimRight(baseURL, "/"),
		parser:  parser,
	}
}

func (r *RedditRSSSource) GetName() string {
	return "reddit-rss"
}

func (r *RedditRSSSource) IsEnabled() bool {
	return true
}

// FetchUserPosts reads the user's submitted feed
func (r *RedditRSSSource) FetchUserPosts(ctx context.Context, username string, limit int) ([]models.RawPost, error) {
	feedURL := fmt.Sprintf("%s/user/%s/submitted.rss?limit=%d", r.baseURL, url.PathEscape(username), limit)
	return r.fetch(ctx, feedURL, "", limit)
}

// FetchListing reads a subreddit listing feed
func (r *RedditRSSSource) FetchListing(ctx context.Context, subreddit string, listing Listing, limit int) ([]models.RawPost, error) {
	feedURL := fmt.Sprintf("%s/r/%s/%s.rss?limit=%d", r.baseURL, url.PathEscape(subreddit), listing, limit)
	if listing == ListingTop {
		feedURL += "&t=all"
	}
	return r.fetch(ctx, feedURL, subreddit, limit)
}

func (r *RedditRSSSource) fetch(ctx context.Context, feedURL, subreddit string, limit int) ([]models.RawPost, error) {
	feed, err := r.parser.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to parse RSS %s: %w", feedURL, err)
	}

	posts := make([]models.RawPost, 0, len(feed.Items))
	for _, entry := range feed.Items {
		if len(posts) == limit {
			break
		}

		created := time.Now().UTC()
		if entry.PublishedParsed != nil {
			created = entry.PublishedParsed.UTC()
		} else if entry.UpdatedParsed != nil {
			created = entry.UpdatedParsed.UTC()
		}

		author := ""
		if len(entry.Authors) > 0 {
			author = strings.TrimPrefix(entry.Authors[0].Name, "/u/")
		}

		sub := subreddit
		if sub == "" && len(entry.Categories) > 0 {
			sub = strings.TrimPrefix(entry.Categories[0], "r/")
		}

		body := entry.Content
		if body == "" {
			body = entry.Description
		}

		posts = append(posts, models.RawPost{
			ID:        entry.GUID,
			Source:    "reddit-rss",
			Subreddit: sub,
			Title:     entry.Title,
			Body:      htmlText(body),
			Author:    authorOrDeleted(author),
			URL:       entry.Link,
			CreatedAt: created,
		})
	}

	logrus.Debugf("Parsed %d entries from %s", len(posts), feedURL)
	return posts, nil
}

// htmlText extracts the post text of a feed entry. Self posts carry their body in
// div.md; otherwise the whole fragment is flattened and the submission footer dropped.
func htmlText(fragment string) string {
	if !strings.Contains(fragment, "<") {
		return strings.TrimSpace(fragment)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return strings.TrimSpace(fragment)
	}

	if md := doc.Find("div.md").First(); md.Length() > 0 {
		return collapse(md.Text())
	}
	return strings.TrimSpace(feedFooter.ReplaceAllString(collapse(doc.Text()), ""))
}

func collapse(text string) string {
	return strings.Join(strings.Fields(text), " ")
}
