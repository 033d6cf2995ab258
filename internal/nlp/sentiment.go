package nlp

import (
	"strings"

	"github.com/jonreiter/govader"
	"github.com/moodlens/aura-tracker/internal/models"
)

// SentimentScorer scores text with the VADER lexicon
type SentimentScorer struct {
	analyzer *govader.SentimentIntensityAnalyzer
}

// NewSentimentScorer loads the VADER lexicon. Construct once and share; scoring is read-only.
func NewSentimentScorer() *SentimentScorer {
	return &SentimentScorer{
		analyzer: govader.NewSentimentIntensityAnalyzer(),
	}
}

// Score returns polarity scores for normalized text. Empty text is neutral.
func (s *SentimentScorer) Score(text string) models.SentimentScore {
	if strings.TrimSpace(text) == "" {
		return models.SentimentScore{Neu: 1}
	}

	sentiment := s.analyzer.PolarityScores(text)
	return models.SentimentScore{
		Compound: sentiment.Compound,
		Pos:      sentiment.Positive,
		Neg:      sentiment.Negative,
		Neu:      sentiment.Neutral,
	}
}

// ScorePosts scores every post
func (s *SentimentScorer) ScorePosts(posts []models.Post) []models.ScoredPost {
	scored := make([]models.ScoredPost, 0, len(posts))
	for _, p := range posts {
		scored = append(scored, models.ScoredPost{
			ID:             p.ID,
			Title:          p.Title,
			Created:        p.Created,
			SentimentScore: s.Score(p.Text),
		})
	}
	return scored
}
