package personality

import (
	"strings"
	"testing"

	"github.com/moodlens/aura-tracker/internal/config"
	"github.com/moodlens/aura-tracker/internal/models"
	"github.com/stretchr/testify/assert"
)

func newDefaultEstimator() *Estimator {
	a := config.DefaultAnalysis()
	return NewEstimator(a.Lexicons, a.Traits)
}

func filler(n int) []string {
	words := make([]string, n)
	for i := range words {
		words[i] = "x"
	}
	return words
}

func TestEstimator_Big5(t *testing.T) {
	tests := []struct {
		name     string
		texts    []string
		expected models.PersonalityProfile
	}{
		{
			name:     "Empty input",
			texts:    nil,
			expected: models.PersonalityProfile{Conscientiousness: 20, Agreeableness: 20},
		},
		{
			name:     "Saturated worry",
			texts:    []string{"i feel anxious and nervous"},
			expected: models.PersonalityProfile{Conscientiousness: 20, Agreeableness: 20, Neuroticism: 100},
		},
		{
			name:     "Repeated word counts once",
			texts:    []string{"plan plan plan plan"},
			expected: models.PersonalityProfile{Conscientiousness: 100, Agreeableness: 20},
		},
		{
			name:     "Whole words only",
			texts:    []string{"planning"},
			expected: models.PersonalityProfile{Conscientiousness: 20, Agreeableness: 20},
		},
		{
			name:     "Diluted social word",
			texts:    []string{strings.Join(append([]string{"Team"}, filler(99)...), " ")},
			expected: models.PersonalityProfile{Openness: 20, Conscientiousness: 20, Extraversion: 35, Agreeableness: 20},
		},
		{
			name:     "Negative words pull conscientiousness down",
			texts:    []string{"tired", "alone"},
			expected: models.PersonalityProfile{Conscientiousness: 0, Agreeableness: 0, Neuroticism: 100},
		},
	}

	e := newDefaultEstimator()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, e.Big5(tt.texts))
		})
	}
}

func TestEstimator_Big5Bounds(t *testing.T) {
	e := newDefaultEstimator()
	inputs := [][]string{
		{""},
		{"grateful curious excited learn explore create together helpful friends party talk team"},
		{"hopeless worthless guilty angry fail panic tired alone"},
		{"support empathy kind care thanks sorry appreciate help", "schedule plan routine goal"},
		{"ünïcödé text 🤯 with no lexicon words"},
	}

	for _, in := range inputs {
		p := e.Big5(in)
		for _, v := range []int{p.Openness, p.Conscientiousness, p.Extraversion, p.Agreeableness, p.Neuroticism} {
			assert.GreaterOrEqual(t, v, 0)
			assert.LessOrEqual(t, v, 100)
		}
	}
}

func TestEstimator_Rates(t *testing.T) {
	e := newDefaultEstimator()
	rates := e.Rates([]string{"I want to learn and explore", "with friends"})

	assert.InDelta(t, 2.0/8.0, rates["pos"], 1e-9)
	assert.InDelta(t, 1.0/8.0, rates["social"], 1e-9)
	assert.Zero(t, rates["worry"])
}

func TestScale(t *testing.T) {
	tests := []struct {
		x, lo, hi float64
		expected  int
	}{
		{0, 0, 0.02, 0},
		{0.01, 0, 0.02, 50},
		{0.5, 0, 0.02, 100},
		{-1, -0.005, 0.02, 0},
		{0, -0.005, 0.02, 20},
		{0.3, 0.02, 0.02, 0},
		{0.3, 0.05, 0.02, 0},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, scale(tt.x, tt.lo, tt.hi))
	}
}
