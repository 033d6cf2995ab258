package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/moodlens/aura-tracker/internal/models"
	"github.com/sirupsen/logrus"
)

const (
	redditAuthURL = "https://www.reddit.com/api/v1/access_token"
	redditAPIURL  = "https://oauth.reddit.com"

	// Reddit caps a listing page at 100 items
	redditPageSize = 100
)

// RedditSource reads the Reddit API with an application-only OAuth token
type RedditSource struct {
	clientID     string
	clientSecret string
	userAgent    string
	authURL      string
	apiURL       string
	client       *resty.Client

	mu          sync.Mutex
	accessToken string
	expiresAt   time.Time
}

// Ensure RedditSource implements SubredditSource
var _ SubredditSource = (*RedditSource)(nil)

type redditAuthResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

type redditListingResponse struct {
	Data struct {
		After    string `json:"after"`
		Children []struct {
			Data redditPost `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

type redditPost struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Selftext    string  `json:"selftext"`
	Author      string  `json:"author"`
	Subreddit   string  `json:"subreddit"`
	URL         string  `json:"url"`
	Permalink   string  `json:"permalink"`
	Created     float64 `json:"created_utc"`
	Score       int     `json:"score"`
	NumComments int     `json:"num_comments"`
}

// NewRedditSource creates a Reddit source against the public API endpoints
func NewRedditSource(clientID, clientSecret, userAgent string) *RedditSource {
	return NewRedditSourceWithEndpoints(clientID, clientSecret, userAgent, redditAuthURL, redditAPIURL)
}

// NewRedditSourceWithEndpoints creates a Reddit source with explicit token and API endpoints
func NewRedditSourceWithEndpoints(clientID, clientSecret, userAgent, authURL, apiURL string) *RedditSource {
	return &RedditSource{
		clientID:     clientID,
		clientSecret: clientSecret,
		userAgent:    userAgent,
		authURL:      authURL,
		apiURL:       apiURL,
		client: resty.New().
			SetTimeout(30 * time.Second).
			SetHeader("User-Agent", userAgent),
	}
}

func (r *RedditSource) GetName() string {
	return "reddit"
}

func (r *RedditSource) IsEnabled() bool {
	return r.clientID != "" && r.clientSecret != ""
}

// FetchUserPosts returns up to limit of the user's newest submissions
func (r *RedditSource) FetchUserPosts(ctx context.Context, username string, limit int) ([]models.RawPost, error) {
	path := fmt.Sprintf("/user/%s/submitted", url.PathEscape(username))
	return r.paginate(ctx, path, url.Values{"sort": {"new"}}, limit)
}

// FetchListing returns up to limit posts of a subreddit listing. Top is taken over all time.
func (r *RedditSource) FetchListing(ctx context.Context, subreddit string, listing Listing, limit int) ([]models.RawPost, error) {
	params := url.Values{}
	if listing == ListingTop {
		params.Set("t", "all")
	}
	path := fmt.Sprintf("/r/%s/%s", url.PathEscape(subreddit), listing)
	return r.paginate(ctx, path, params, limit)
}

func (r *RedditSource) paginate(ctx context.Context, path string, params url.Values, limit int) ([]models.RawPost, error) {
	if !r.IsEnabled() {
		logrus.Debug("Reddit source disabled - missing credentials")
		return nil, ErrSourceDisabled
	}

	token, err := r.token(ctx)
	if err != nil {
		return nil, fmt.Errorf("reddit authentication failed: %w", err)
	}

	var posts []models.RawPost
	after := ""
	for len(posts) < limit {
		pageSize := limit - len(posts)
		if pageSize > redditPageSize {
			pageSize = redditPageSize
		}

		query := url.Values{}
		for k, v := range params {
			query[k] = v
		}
		query.Set("limit", strconv.Itoa(pageSize))
		query.Set("raw_json", "1")
		if after != "" {
			query.Set("after", after)
		}

		resp, err := r.client.R().
			SetContext(ctx).
			SetAuthToken(token).
			SetQueryParamsFromValues(query).
			Get(r.apiURL + path)
		if err != nil {
			return nil, err
		}

		if resp.StatusCode() != http.StatusOK {
			return nil, fmt.Errorf("reddit API returned status %d for %s", resp.StatusCode(), path)
		}

		var listing redditListingResponse
		if err := json.Unmarshal(resp.Body(), &listing); err != nil {
			return nil, fmt.Errorf("failed to decode reddit listing: %w", err)
		}

		for _, child := range listing.Data.Children {
			posts = append(posts, child.Data.toRawPost())
			if len(posts) == limit {
				break
			}
		}

		after = listing.Data.After
		if after == "" || len(listing.Data.Children) == 0 {
			break
		}
	}

	return posts, nil
}

// token returns a cached access token, refreshing it a minute before expiry
func (r *RedditSource) token(ctx context.Context) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.accessToken != "" && time.Now().Before(r.expiresAt) {
		return r.accessToken, nil
	}

	resp, err := r.client.R().
		SetContext(ctx).
		SetBasicAuth(r.clientID, r.clientSecret).
		SetFormData(map[string]string{
			"grant_type": "client_credentials",
		}).
		Post(r.authURL)
	if err != nil {
		return "", err
	}

	if resp.StatusCode() != http.StatusOK {
		return "", fmt.Errorf("token endpoint returned status %d", resp.StatusCode())
	}

	var authResp redditAuthResponse
	if err := json.Unmarshal(resp.Body(), &authResp); err != nil {
		return "", err
	}
	if authResp.AccessToken == "" {
		return "", fmt.Errorf("token endpoint returned no access token")
	}

	r.accessToken = authResp.AccessToken
	r.expiresAt = time.Now().Add(time.Duration(authResp.ExpiresIn)*time.Second - time.Minute)
	return r.accessToken, nil
}

func (p redditPost) toRawPost() models.RawPost {
	return models.RawPost{
		ID:           p.ID,
		Source:       "reddit",
		Subreddit:    p.Subreddit,
		Title:        p.Title,
		Body:         p.Selftext,
		Author:       authorOrDeleted(p.Author),
		URL:          p.URL,
		CreatedAt:    time.Unix(int64(p.Created), 0).UTC(),
		Score:        p.Score,
		CommentCount: p.NumComments,
	}
}
