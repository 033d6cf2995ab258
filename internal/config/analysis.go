package config

import (
	"fmt"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Topic is one entry of the topic taxonomy. Order in the taxonomy is significant:
// ties on the most discussed topic resolve to the earliest entry.
type Topic struct {
	Name     string   `koanf:"name"`
	Keywords []string `koanf:"keywords"`
}

// Trait is a linear combination of lexicon hit rates mapped from [Min,Max] onto [0,100].
type Trait struct {
	Name    string             `koanf:"name"`
	Weights map[string]float64 `koanf:"weights"`
	Min     float64            `koanf:"min"`
	Max     float64            `koanf:"max"`
}

// Analysis holds the tunable constants of the mood pipeline
type Analysis struct {
	// Aura clustering. Seed and cluster count are part of the observable contract:
	// identical embeddings produce identical auras only when both are unchanged.
	ClusterCount    int   `koanf:"cluster_count"`
	ClusterSeed     int64 `koanf:"cluster_seed"`
	ClusterRestarts int   `koanf:"cluster_restarts"`
	ClusterMaxIter  int   `koanf:"cluster_max_iter"`

	// Trend and alerting
	TrendDays         int     `koanf:"trend_days"`
	AlertThreshold    float64 `koanf:"alert_threshold"`
	AlertLookbackDays int     `koanf:"alert_lookback_days"`

	// Emotion classifier context limit, in characters
	EmotionMaxChars int `koanf:"emotion_max_chars"`

	Topics   []Topic             `koanf:"topics"`
	Lexicons map[string][]string `koanf:"lexicons"`
	Traits   []Trait             `koanf:"traits"`
}

func defaultAnalysisMap() map[string]interface{} {
	return map[string]interface{}{
		"cluster_count":       6,
		"cluster_seed":        42,
		"cluster_restarts":    10,
		"cluster_max_iter":    300,
		"trend_days":          60,
		"alert_threshold":     -0.5,
		"alert_lookback_days": 60,
		"emotion_max_chars":   512,
		"topics": []interface{}{
			topicMap("work", "job", "office", "manager", "project", "work"),
			topicMap("relationships", "friend", "love", "partner", "family", "relationship"),
			topicMap("health", "doctor", "tired", "sleep", "health", "pain", "exercise"),
			topicMap("study", "school", "college", "study", "exam", "assignment"),
			topicMap("gratitude", "thank", "grateful", "blessed", "appreciate"),
			topicMap("self-image", "confidence", "anxiety", "feel", "myself", "mental"),
		},
		"lexicons": map[string]interface{}{
			"pos":     []interface{}{"grateful", "curious", "excited", "learn", "explore", "create", "together", "helpful"},
			"neg":     []interface{}{"tired", "alone", "hopeless", "angry", "guilty", "worthless", "fail", "panic"},
			"social":  []interface{}{"friends", "party", "talk", "team", "community", "meet", "hangout", "club"},
			"planful": []interface{}{"schedule", "plan", "routine", "goal", "deadline", "organize", "checklist", "task"},
			"kind":    []interface{}{"support", "empathy", "kind", "care", "thanks", "sorry", "appreciate", "help"},
			"worry":   []interface{}{"anxious", "anxiety", "worry", "overthink", "stressed", "panic", "afraid", "nervous"},
		},
		"traits": []interface{}{
			traitMap("openness", 0, 0.02, "pos", 0.6, "social", 0.4),
			traitMap("conscientiousness", -0.005, 0.02, "planful", 0.8, "neg", -0.2),
			traitMap("extraversion", 0, 0.02, "social", 0.7, "pos", 0.3),
			traitMap("agreeableness", -0.005, 0.02, "kind", 0.8, "neg", -0.2),
			traitMap("neuroticism", 0, 0.02, "worry", 0.7, "neg", 0.3),
		},
	}
}

func topicMap(name string, keywords ...string) map[string]interface{} {
	kw := make([]interface{}, len(keywords))
	for i, k := range keywords {
		kw[i] = k
	}
	return map[string]interface{}{"name": name, "keywords": kw}
}

// traitMap takes weights as alternating lexicon name / weight pairs.
func traitMap(name string, min, max float64, weights ...interface{}) map[string]interface{} {
	w := make(map[string]interface{}, len(weights)/2)
	for i := 0; i+1 < len(weights); i += 2 {
		w[weights[i].(string)] = weights[i+1]
	}
	return map[string]interface{}{"name": name, "min": min, "max": max, "weights": w}
}

// DefaultAnalysis returns the built-in tunables without consulting files or the environment.
func DefaultAnalysis() *Analysis {
	k := koanf.New(".")
	// confmap over a static map cannot fail
	_ = k.Load(confmap.Provider(defaultAnalysisMap(), "."), nil)

	var a Analysis
	_ = k.UnmarshalWithConf("", &a, koanf.UnmarshalConf{Tag: "koanf"})
	return &a
}

// LoadAnalysis builds the analysis tunables by layering, low -> high:
//  1. built-in defaults
//  2. YAML file at path, if path is non-empty
//  3. env vars prefixed AURA_ (scalar keys only, e.g. AURA_ALERT_THRESHOLD)
func LoadAnalysis(path string) (*Analysis, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaultAnalysisMap(), "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load analysis defaults: %w", err)
	}

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load analysis config %s: %w", path, err)
		}
	}

	envProvider := env.Provider("AURA_", ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, "AURA_"))
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("failed to load analysis env overrides: %w", err)
	}

	var a Analysis
	if err := k.UnmarshalWithConf("", &a, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("failed to decode analysis config: %w", err)
	}

	if err := a.validate(); err != nil {
		return nil, fmt.Errorf("analysis config validation failed: %w", err)
	}

	return &a, nil
}

func (a *Analysis) validate() error {
	if a.ClusterCount <= 0 {
		return fmt.Errorf("cluster_count must be positive")
	}
	if a.ClusterRestarts <= 0 || a.ClusterMaxIter <= 0 {
		return fmt.Errorf("cluster_restarts and cluster_max_iter must be positive")
	}
	if a.TrendDays <= 0 || a.AlertLookbackDays <= 0 {
		return fmt.Errorf("trend_days and alert_lookback_days must be positive")
	}
	if a.EmotionMaxChars <= 0 {
		return fmt.Errorf("emotion_max_chars must be positive")
	}
	if len(a.Topics) == 0 {
		return fmt.Errorf("at least one topic is required")
	}
	for _, t := range a.Traits {
		for lexicon := range t.Weights {
			if _, ok := a.Lexicons[lexicon]; !ok {
				return fmt.Errorf("trait %s references unknown lexicon %s", t.Name, lexicon)
			}
		}
	}
	return nil
}
