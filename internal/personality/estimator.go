// Package personality derives a heuristic Big-Five profile from lexicon hit rates.
// It is not a validated psychometric instrument.
package personality

import (
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/moodlens/aura-tracker/internal/config"
	"github.com/moodlens/aura-tracker/internal/models"
)

// Estimator scores texts against fixed lexicons and linear trait formulas
type Estimator struct {
	lexicons map[string][]*regexp.Regexp
	traits   []config.Trait
}

// NewEstimator compiles a whole-word pattern for every lexicon entry
func NewEstimator(lexicons map[string][]string, traits []config.Trait) *Estimator {
	compiled := make(map[string][]*regexp.Regexp, len(lexicons))
	for name, words := range lexicons {
		seen := make(map[string]bool, len(words))
		for _, w := range words {
			w = strings.ToLower(strings.TrimSpace(w))
			if w == "" || seen[w] {
				continue
			}
			seen[w] = true
			compiled[name] = append(compiled[name], regexp.MustCompile(`\b`+regexp.QuoteMeta(w)+`\b`))
		}
	}
	return &Estimator{lexicons: compiled, traits: traits}
}

// Rates returns, per lexicon, the number of its distinct words present in the lowercased
// corpus divided by the corpus word count (at least 1).
func (e *Estimator) Rates(texts []string) map[string]float64 {
	text := strings.ToLower(strings.Join(texts, " "))
	words := len(strings.Fields(text))
	if words < 1 {
		words = 1
	}

	rates := make(map[string]float64, len(e.lexicons))
	for name, patterns := range e.lexicons {
		hits := 0
		for _, p := range patterns {
			if p.MatchString(text) {
				hits++
			}
		}
		rates[name] = float64(hits) / float64(words)
	}
	return rates
}

// Big5 maps lexicon rates onto five trait scores in [0,100]
func (e *Estimator) Big5(texts []string) models.PersonalityProfile {
	rates := e.Rates(texts)

	var profile models.PersonalityProfile
	for _, trait := range e.traits {
		score := scale(combine(trait.Weights, rates), trait.Min, trait.Max)
		switch strings.ToLower(trait.Name) {
		case "openness":
			profile.Openness = score
		case "conscientiousness":
			profile.Conscientiousness = score
		case "extraversion":
			profile.Extraversion = score
		case "agreeableness":
			profile.Agreeableness = score
		case "neuroticism":
			profile.Neuroticism = score
		}
	}
	return profile
}

// combine sums weight*rate in lexicon name order so results do not depend on map iteration.
func combine(weights map[string]float64, rates map[string]float64) float64 {
	names := make([]string, 0, len(weights))
	for name := range weights {
		names = append(names, name)
	}
	sort.Strings(names)

	var sum float64
	for _, name := range names {
		sum += weights[name] * rates[name]
	}
	return sum
}

// scale maps x from [lo,hi] onto [0,100], rounding half to even. hi <= lo yields 0.
func scale(x, lo, hi float64) int {
	if hi <= lo {
		return 0
	}
	x = math.Max(lo, math.Min(hi, x))
	v := int(math.RoundToEven(100 * (x - lo) / (hi - lo)))
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
