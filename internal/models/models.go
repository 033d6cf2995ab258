package models

import (
	"bytes"
	"encoding/json"
	"strconv"
	"time"
)

// RawPost is one item as returned by a content source, before normalization
type RawPost struct {
	ID           string    `json:"id"`
	Source       string    `json:"source"`    // "reddit", "reddit-rss", "hackernews"
	Subreddit    string    `json:"subreddit"` // empty for non-reddit sources
	Title        string    `json:"title"`
	Body         string    `json:"body"`
	Author       string    `json:"author"`
	URL          string    `json:"url"`
	CreatedAt    time.Time `json:"created_at"`
	Score        int       `json:"score"`
	CommentCount int       `json:"num_comments"`
}

// Post is a normalized content item held in the post store.
// Text is always the normalizer output for title + body.
type Post struct {
	ID      string    `json:"id"`
	Title   string    `json:"title"`
	Created time.Time `json:"created"`
	Text    string    `json:"text"`
}

// SentimentScore holds VADER-style polarity scores for one text
type SentimentScore struct {
	Compound float64 `json:"compound"`
	Pos      float64 `json:"pos"`
	Neg      float64 `json:"neg"`
	Neu      float64 `json:"neu"`
}

// ScoredPost pairs a post with its sentiment scores
type ScoredPost struct {
	ID      string    `json:"id"`
	Title   string    `json:"title"`
	Created time.Time `json:"created"`
	SentimentScore
}

// TrendPoint is one calendar day's average compound sentiment
type TrendPoint struct {
	Date        string  `json:"date"` // ISO date, UTC
	AvgCompound float64 `json:"avg_compound"`
	Count       int     `json:"count"`
}

// Alert flags a day whose average mood fell below the configured threshold
type Alert struct {
	ID          string  `json:"id"`
	Date        string  `json:"date"`
	Message     string  `json:"message"`
	AvgCompound float64 `json:"avg_compound"`
}

// TopicShare is the percentage of texts mentioning one topic
type TopicShare struct {
	Topic   string  `json:"topic"`
	Percent float64 `json:"percent"`
}

// TopicDistribution keeps taxonomy order; it encodes as a JSON object.
type TopicDistribution []TopicShare

// Top returns the first topic reaching the maximum percentage.
func (d TopicDistribution) Top() (TopicShare, bool) {
	if len(d) == 0 {
		return TopicShare{}, false
	}
	best := d[0]
	for _, share := range d[1:] {
		if share.Percent > best.Percent {
			best = share
		}
	}
	return best, true
}

// Get returns the percentage for a topic, zero when absent
func (d TopicDistribution) Get(topic string) float64 {
	for _, share := range d {
		if share.Topic == topic {
			return share.Percent
		}
	}
	return 0
}

// MarshalJSON writes the distribution as an object in taxonomy order.
func (d TopicDistribution) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, share := range d {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(share.Topic)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.WriteString(strconv.FormatFloat(share.Percent, 'f', -1, 64))
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// AuraResult summarizes a user's dominant mood archetype
type AuraResult struct {
	Aura        string            `json:"aura"`
	Emoji       string            `json:"emoji"`
	Description string            `json:"description"`
	Topics      TopicDistribution `json:"topics"`
	Comment     string            `json:"comment"`
	Cluster     int               `json:"cluster"`
	PostCount   int               `json:"post_count"`
}

// EmotionDistribution maps emotion label to its average probability across posts
type EmotionDistribution map[string]float64

// PersonalityProfile holds heuristic Big-Five trait scores in [0,100]
type PersonalityProfile struct {
	Openness          int `json:"openness"`
	Conscientiousness int `json:"conscientiousness"`
	Extraversion      int `json:"extraversion"`
	Agreeableness     int `json:"agreeableness"`
	Neuroticism       int `json:"neuroticism"`
}

// FetchResult reports the outcome of a user fetch. Failures are carried in Error
// with Fetched set to zero instead of failing the request.
type FetchResult struct {
	Fetched int    `json:"fetched"`
	Error   string `json:"error,omitempty"`
}

// MoodTrend is the dashboard payload: the requested trend window plus fixed-window alerts
type MoodTrend struct {
	Trend  []TrendPoint `json:"trend"`
	Alerts []Alert      `json:"alerts"`
}

// AlertDigest groups the alerts found for one watched user
type AlertDigest struct {
	Username    string    `json:"username"`
	GeneratedAt time.Time `json:"generated_at"`
	Threshold   float64   `json:"threshold"`
	Alerts      []Alert   `json:"alerts"`
}

// ScrapedPost is one row of a bulk subreddit scrape
type ScrapedPost struct {
	Subreddit     string    `json:"subreddit"`
	Title         string    `json:"title"`
	Score         int       `json:"score"`
	Author        string    `json:"author"`
	NumComments   int       `json:"num_comments"`
	CreatedUTC    float64   `json:"created_utc"`
	URL           string    `json:"url"`
	Text          string    `json:"text"`
	CreatedAt     time.Time `json:"created_dt_utc"`
	Content       string    `json:"content"`
	VaderCompound float64   `json:"vader_compound"`
}

// ScrapeSnapshot is the cached result of the last bulk scrape
type ScrapeSnapshot struct {
	GeneratedAt time.Time     `json:"generated_at"`
	Subreddits  []string      `json:"subreddits"`
	Posts       []ScrapedPost `json:"posts"`
}

// PatientSummary is one author row in the therapist-facing browser
type PatientSummary struct {
	Author          string    `json:"author"`
	PostCount       int       `json:"post_count"`
	AvgCompound     float64   `json:"avg_compound"`
	DominantEmotion string    `json:"dominant_emotion"`
	LastPostAt      time.Time `json:"last_post_at"`
	Subreddits      []string  `json:"subreddits"`
}
