package nlp

import (
	"math"
	"strings"

	"github.com/moodlens/aura-tracker/internal/config"
	"github.com/moodlens/aura-tracker/internal/models"
)

// TopicDetector measures how often texts mention each topic of a fixed taxonomy
type TopicDetector struct {
	topics []config.Topic
}

// NewTopicDetector creates a detector over the given taxonomy, keeping its order
func NewTopicDetector(topics []config.Topic) *TopicDetector {
	lowered := make([]config.Topic, len(topics))
	for i, t := range topics {
		keywords := make([]string, len(t.Keywords))
		for j, k := range t.Keywords {
			keywords[j] = strings.ToLower(k)
		}
		lowered[i] = config.Topic{Name: t.Name, Keywords: keywords}
	}
	return &TopicDetector{topics: lowered}
}

// Distribution returns, per topic, the percentage of texts containing at least one of
// its keywords as a substring, rounded to one decimal. Topics are counted independently.
func (d *TopicDetector) Distribution(texts []string) models.TopicDistribution {
	counts := make([]int, len(d.topics))
	for _, raw := range texts {
		text := stripURLs(raw)
		for i, topic := range d.topics {
			if containsAny(text, topic.Keywords) {
				counts[i]++
			}
		}
	}

	dist := make(models.TopicDistribution, len(d.topics))
	for i, topic := range d.topics {
		dist[i] = models.TopicShare{Topic: topic.Name}
		if len(texts) > 0 {
			dist[i].Percent = roundTo(float64(counts[i])/float64(len(texts))*100, 1)
		}
	}
	return dist
}

func containsAny(text string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(text, k) {
			return true
		}
	}
	return false
}

func roundTo(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
