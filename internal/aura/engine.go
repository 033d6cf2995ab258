// Package aura clusters a user's post embeddings into a closed set of mood
// archetypes and describes the dominant one.
package aura

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/moodlens/aura-tracker/internal/models"
	"github.com/moodlens/aura-tracker/internal/nlp"
)

// Aura is one entry of the archetype taxonomy
type Aura struct {
	Emoji       string
	Label       string
	Description string
}

var auras = []Aura{
	{Emoji: "🌿", Label: "Calm Green", Description: "Reflective and grounded: you often express thoughtfulness."},
	{Emoji: "🔥", Label: "Radiant Orange", Description: "Energetic and expressive: your posts show high engagement."},
	{Emoji: "🌊", Label: "Tranquil Blue", Description: "Balanced and introspective: calm tone with positive reflections."},
	{Emoji: "🌪️", Label: "Stormy Gray", Description: "You've shared signs of stress or emotional intensity recently."},
	{Emoji: "🌸", Label: "Blossom Pink", Description: "Compassionate and emotionally aware: empathetic tone detected."},
	{Emoji: "🌞", Label: "Bright Yellow", Description: "Optimistic and uplifting: your tone reflects positivity."},
}

// defaultAura is returned for cluster indexes outside the taxonomy.
var defaultAura = Aura{Emoji: "🌊", Label: "Tranquil Blue", Description: "Balanced mood."}

const insufficientDataComment = "Not enough posts for a full analysis yet."

// AuraFor maps a cluster index onto the taxonomy
func AuraFor(cluster int) Aura {
	if cluster < 0 || cluster >= len(auras) {
		return defaultAura
	}
	return auras[cluster]
}

// Engine computes AuraResults from a user's posts
type Engine struct {
	embedder Embedder
	topics   *nlp.TopicDetector
	kmeans   KMeans
}

// NewEngine creates an aura engine
func NewEngine(embedder Embedder, topics *nlp.TopicDetector, kmeans KMeans) *Engine {
	return &Engine{
		embedder: embedder,
		topics:   topics,
		kmeans:   kmeans,
	}
}

// Analyze returns nil when there are no posts, a fixed fallback when no post has text,
// and otherwise the aura of the dominant embedding cluster with a topic summary.
func (e *Engine) Analyze(ctx context.Context, posts []models.Post) (*models.AuraResult, error) {
	if len(posts) == 0 {
		return nil, nil
	}

	var texts []string
	for _, p := range posts {
		if strings.TrimSpace(p.Text) != "" {
			texts = append(texts, p.Text)
		}
	}

	if len(texts) < 1 {
		fallback := auras[2]
		return &models.AuraResult{
			Aura:        fallback.Label,
			Emoji:       fallback.Emoji,
			Description: fallback.Description,
			Topics:      models.TopicDistribution{},
			Comment:     insufficientDataComment,
			Cluster:     2,
		}, nil
	}

	embeddings, err := e.embedder.Embed(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embed posts: %w", err)
	}

	labels, err := e.kmeans.Fit(embeddings)
	if err != nil {
		return nil, fmt.Errorf("cluster posts: %w", err)
	}

	cluster := DominantCluster(labels, e.kmeans.K)
	aura := AuraFor(cluster)

	topics := e.topics.Distribution(texts)
	result := &models.AuraResult{
		Aura:        aura.Label,
		Emoji:       aura.Emoji,
		Description: aura.Description,
		Topics:      topics,
		Cluster:     cluster,
		PostCount:   len(texts),
	}
	if top, ok := topics.Top(); ok {
		result.Comment = fmt.Sprintf("You talk about %s %s%% of the time.",
			top.Topic, strconv.FormatFloat(top.Percent, 'f', 1, 64))
	}

	return result, nil
}
