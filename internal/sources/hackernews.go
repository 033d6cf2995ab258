package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/moodlens/aura-tracker/internal/models"
)

const hackerNewsSearchURL = "https://hn.algolia.com/api/v1"

// HackerNewsSource reads a user's stories and comments through the Algolia HN search API
type HackerNewsSource struct {
	baseURL string
	client  *resty.Client
}

// Ensure HackerNewsSource implements Source
var _ Source = (*HackerNewsSource)(nil)

type hackerNewsSearchResponse struct {
	Hits []hackerNewsHit `json:"hits"`
}

type hackerNewsHit struct {
	ObjectID    string `json:"objectID"`
	Author      string `json:"author"`
	CreatedAtI  int64  `json:"created_at_i"`
	Title       string `json:"title"`
	StoryTitle  string `json:"story_title"`
	StoryText   string `json:"story_text"`
	CommentText string `json:"comment_text"`
	URL         string `json:"url"`
	Points      int    `json:"points"`
	NumComments int    `json:"num_comments"`
}

// NewHackerNewsSource creates a Hacker News source; an empty baseURL means the public API
func NewHackerNewsSource(baseURL string) *HackerNewsSource {
	if baseURL == "" {
		baseURL = hackerNewsSearchURL
	}
	return &HackerNewsSource{
		baseURL: baseURL,
		client: resty.New().
			SetTimeout(30 * time.Second).
			SetHeader("User-Agent", "wellness-tracker/1.0"),
	}
}

func (h *HackerNewsSource) GetName() string {
	return "hackernews"
}

func (h *HackerNewsSource) IsEnabled() bool {
	return true // the search API needs no authentication
}

// FetchUserPosts returns up to limit of the user's newest stories and comments
func (h *HackerNewsSource) FetchUserPosts(ctx context.Context, username string, limit int) ([]models.RawPost, error) {
	resp, err := h.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"tags":        "author_" + username,
			"hitsPerPage": strconv.Itoa(limit),
		}).
		Get(h.baseURL + "/search_by_date")
	if err != nil {
		return nil, err
	}

	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("hacker news API returned status %d", resp.StatusCode())
	}

	var search hackerNewsSearchResponse
	if err := json.Unmarshal(resp.Body(), &search); err != nil {
		return nil, fmt.Errorf("failed to decode hacker news response: %w", err)
	}

	posts := make([]models.RawPost, 0, len(search.Hits))
	for _, hit := range search.Hits {
		if len(posts) == limit {
			break
		}

		title := hit.Title
		if title == "" {
			title = hit.StoryTitle
		}
		body := hit.StoryText
		if hit.CommentText != "" {
			body = hit.CommentText
		}

		post := models.RawPost{
			ID:           hit.ObjectID,
			Source:       "hackernews",
			Title:        title,
			Body:         htmlText(body),
			Author:       authorOrDeleted(hit.Author),
			URL:          fmt.Sprintf("https://news.ycombinator.com/item?id=%s", hit.ObjectID),
			CreatedAt:    time.Unix(hit.CreatedAtI, 0).UTC(),
			Score:        hit.Points,
			CommentCount: hit.NumComments,
		}
		if hit.URL != "" {
			post.URL = hit.URL
		}

		posts = append(posts, post)
	}

	return posts, nil
}
