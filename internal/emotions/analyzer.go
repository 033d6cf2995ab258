// Package emotions aggregates per-post emotion classifier output into one
// distribution per user.
package emotions

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/moodlens/aura-tracker/internal/models"
)

// Analyzer averages classifier distributions across posts
type Analyzer struct {
	classifier Classifier
	maxChars   int
}

// NewAnalyzer creates an analyzer that truncates texts to maxChars before classification
func NewAnalyzer(classifier Classifier, maxChars int) *Analyzer {
	return &Analyzer{
		classifier: classifier,
		maxChars:   maxChars,
	}
}

// Analyze classifies every post with non-empty text and returns the mean probability per
// lower-cased label. Labels never observed are absent from the result.
func (a *Analyzer) Analyze(ctx context.Context, posts []models.Post) (models.EmotionDistribution, error) {
	observed := make(map[string][]float64)

	for _, p := range posts {
		text := strings.TrimSpace(p.Text)
		if text == "" {
			continue
		}

		scores, err := a.classifier.Classify(ctx, truncate(text, a.maxChars))
		if err != nil {
			return nil, fmt.Errorf("classify post %s: %w", p.ID, err)
		}

		for _, s := range scores {
			label := strings.ToLower(s.Label)
			observed[label] = append(observed[label], s.Score)
		}
	}

	dist := make(models.EmotionDistribution, len(observed))
	for label, values := range observed {
		if len(values) == 0 {
			continue
		}
		sum := 0.0
		for _, v := range values {
			sum += v
		}
		dist[label] = math.Round(sum/float64(len(values))*1000) / 1000
	}

	return dist, nil
}

// Dominant returns the label with the highest average. Ties go to the
// alphabetically first label so the result does not depend on map order.
func Dominant(dist models.EmotionDistribution) (string, bool) {
	if len(dist) == 0 {
		return "", false
	}

	labels := make([]string, 0, len(dist))
	for label := range dist {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	best := labels[0]
	for _, label := range labels[1:] {
		if dist[label] > dist[best] {
			best = label
		}
	}
	return best, true
}

func truncate(text string, maxChars int) string {
	if maxChars <= 0 {
		return text
	}
	runes := []rune(text)
	if len(runes) <= maxChars {
		return text
	}
	return string(runes[:maxChars])
}
