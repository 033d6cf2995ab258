package nlp

import (
	"strings"
	"testing"

	"github.com/moodlens/aura-tracker/internal/config"
	"github.com/moodlens/aura-tracker/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "Empty input", input: "", expected: ""},
		{name: "Lowercases", input: "Feeling GREAT Today", expected: "feeling great today"},
		{name: "Strips URLs", input: "read this https://example.com/a?b=c now", expected: "read this now"},
		{name: "URL glued to a word", input: "see:http://x.io/y ok", expected: "see ok"},
		{name: "URL ends at a no-break space", input: "see http://x.com\u00a0great day", expected: "see great day"},
		{name: "URL ends at an em space", input: "see http://x.com\u2003great day", expected: "see great day"},
		{name: "Keeps allowed punctuation", input: "Wait... what?! It's fine, really.", expected: "wait... what?! it's fine, really."},
		{name: "Replaces other characters with spaces", input: "happy#sad@work", expected: "happy sad work"},
		{name: "Drops non-ASCII letters", input: "café naïve 😀 déjà", expected: "caf na ve d j"},
		{name: "Collapses whitespace", input: "  lots \t of\n\n space  ", expected: "lots of space"},
		{name: "Only junk", input: "### *** ~~~", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Normalize(tt.input))
		})
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := []string{
		"",
		"Hello World",
		"Check http://example.com/x and HTTPS://Foo.bar!!",
		"ünïcödé — dashes – and “quotes”",
		"tabs\tand\nnewlines\r\n",
		"hthttp://x tp",
		"it's 5 o'clock, ok?",
	}

	for _, in := range inputs {
		once := Normalize(in)
		assert.Equal(t, once, Normalize(once), "input %q", in)
	}
}

func TestNormalize_RemovesAllURLs(t *testing.T) {
	inputs := []string{
		"http://example.com/x",
		"prefix http://example.com/x suffix",
		"prefixhttp://example.com/x",
		"two http://example.com/x http://example.com/x links",
	}

	for _, in := range inputs {
		assert.NotContains(t, Normalize(in), "http", "input %q", in)
	}
}

func TestPostText(t *testing.T) {
	assert.Equal(t, "bad day at work", PostText("Bad Day", "at work"))
	assert.Equal(t, "title only", PostText("Title only", ""))
	assert.Equal(t, "", PostText("", ""))
}

func TestSentimentScorer_Score(t *testing.T) {
	scorer := NewSentimentScorer()

	t.Run("Empty text is neutral", func(t *testing.T) {
		assert.Equal(t, models.SentimentScore{Compound: 0, Pos: 0, Neg: 0, Neu: 1}, scorer.Score(""))
		assert.Equal(t, models.SentimentScore{Neu: 1}, scorer.Score("   "))
	})

	t.Run("Positive text", func(t *testing.T) {
		score := scorer.Score("i love this, it is great and wonderful!")
		assert.Greater(t, score.Compound, 0.0)
		assert.Greater(t, score.Pos, score.Neg)
	})

	t.Run("Negative text", func(t *testing.T) {
		score := scorer.Score("i hate this, it is terrible and awful")
		assert.Less(t, score.Compound, 0.0)
		assert.Greater(t, score.Neg, score.Pos)
	})

	t.Run("Scores are bounded", func(t *testing.T) {
		for _, text := range []string{"good", "bad", "the table is brown", "great great great!!!"} {
			s := scorer.Score(text)
			assert.GreaterOrEqual(t, s.Compound, -1.0)
			assert.LessOrEqual(t, s.Compound, 1.0)
			assert.InDelta(t, 1.0, s.Pos+s.Neg+s.Neu, 0.01, "text %q", text)
		}
	})

	t.Run("Deterministic", func(t *testing.T) {
		text := "not the worst day, but not great either"
		assert.Equal(t, scorer.Score(text), scorer.Score(text))
	})
}

func TestSentimentScorer_ScorePosts(t *testing.T) {
	scorer := NewSentimentScorer()
	posts := []models.Post{
		{ID: "a", Title: "A", Text: "i am so happy"},
		{ID: "b", Title: "B", Text: ""},
	}

	scored := scorer.ScorePosts(posts)
	require.Len(t, scored, 2)
	assert.Equal(t, "a", scored[0].ID)
	assert.Greater(t, scored[0].Compound, 0.0)
	assert.Equal(t, 1.0, scored[1].Neu)
}

func TestTopicDetector_Distribution(t *testing.T) {
	detector := NewTopicDetector(config.DefaultAnalysis().Topics)

	t.Run("Empty input yields zero for every topic", func(t *testing.T) {
		dist := detector.Distribution(nil)
		require.Len(t, dist, 6)
		for _, share := range dist {
			assert.Equal(t, 0.0, share.Percent, share.Topic)
		}
	})

	t.Run("Counts substring containment", func(t *testing.T) {
		dist := detector.Distribution([]string{
			"homework is piling up",   // "work" inside homework
			"my friend and my family", // relationships
			"exam stress at school",   // study
		})
		assert.Equal(t, 33.3, dist.Get("work"))
		assert.Equal(t, 33.3, dist.Get("relationships"))
		assert.Equal(t, 33.3, dist.Get("study"))
		assert.Equal(t, 0.0, dist.Get("health"))
	})

	t.Run("One text may count toward several topics", func(t *testing.T) {
		dist := detector.Distribution([]string{"tired of my job, thank you doctor"})
		assert.Equal(t, 100.0, dist.Get("work"))
		assert.Equal(t, 100.0, dist.Get("health"))
		assert.Equal(t, 100.0, dist.Get("gratitude"))
	})

	t.Run("Ignores URLs and case", func(t *testing.T) {
		dist := detector.Distribution([]string{"see http://work.example.com", "My JOB"})
		assert.Equal(t, 50.0, dist.Get("work"))
	})

	t.Run("Words after a URL and a no-break space still count", func(t *testing.T) {
		dist := detector.Distribution([]string{"http://x.com\u00a0my job"})
		assert.Equal(t, 100.0, dist.Get("work"))
	})

	t.Run("Percentages stay within bounds", func(t *testing.T) {
		texts := []string{"work work", "love", "", "random words", strings.Repeat("sleep ", 50)}
		for _, share := range detector.Distribution(texts) {
			assert.GreaterOrEqual(t, share.Percent, 0.0)
			assert.LessOrEqual(t, share.Percent, 100.0)
		}
	})

	t.Run("Keeps taxonomy order", func(t *testing.T) {
		dist := detector.Distribution([]string{"x"})
		names := make([]string, len(dist))
		for i, share := range dist {
			names[i] = share.Topic
		}
		assert.Equal(t, []string{"work", "relationships", "health", "study", "gratitude", "self-image"}, names)
	})
}

func TestTopicDistribution_Top(t *testing.T) {
	dist := models.TopicDistribution{
		{Topic: "work", Percent: 20},
		{Topic: "health", Percent: 40},
		{Topic: "study", Percent: 40},
	}
	top, ok := dist.Top()
	require.True(t, ok)
	assert.Equal(t, "health", top.Topic)

	_, ok = models.TopicDistribution{}.Top()
	assert.False(t, ok)
}
