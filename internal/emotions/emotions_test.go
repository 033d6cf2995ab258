package emotions

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/moodlens/aura-tracker/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockClassifier is a mock implementation of the Classifier interface
type MockClassifier struct {
	mock.Mock
}

func (m *MockClassifier) Classify(ctx context.Context, text string) ([]LabelScore, error) {
	args := m.Called(ctx, text)
	if scores := args.Get(0); scores != nil {
		return scores.([]LabelScore), args.Error(1)
	}
	return nil, args.Error(1)
}

func TestAnalyzer_Analyze(t *testing.T) {
	ctx := context.Background()

	t.Run("Averages per label and lowercases labels", func(t *testing.T) {
		classifier := &MockClassifier{}
		classifier.On("Classify", ctx, "first post").Return([]LabelScore{
			{Label: "Joy", Score: 0.8}, {Label: "Sadness", Score: 0.2},
		}, nil)
		classifier.On("Classify", ctx, "second post").Return([]LabelScore{
			{Label: "joy", Score: 0.4}, {Label: "sadness", Score: 0.6},
		}, nil)

		analyzer := NewAnalyzer(classifier, 512)
		dist, err := analyzer.Analyze(ctx, []models.Post{
			{ID: "1", Text: "first post"},
			{ID: "2", Text: "second post"},
		})

		require.NoError(t, err)
		assert.InDelta(t, 0.6, dist["joy"], 1e-9)
		assert.InDelta(t, 0.4, dist["sadness"], 1e-9)
		classifier.AssertExpectations(t)
	})

	t.Run("Skips empty posts instead of scoring them as zero", func(t *testing.T) {
		classifier := &MockClassifier{}
		classifier.On("Classify", ctx, "only text").Return([]LabelScore{{Label: "fear", Score: 0.9}}, nil)

		dist, err := NewAnalyzer(classifier, 512).Analyze(ctx, []models.Post{
			{ID: "1", Text: ""},
			{ID: "2", Text: "   "},
			{ID: "3", Text: "only text"},
		})

		require.NoError(t, err)
		assert.Equal(t, models.EmotionDistribution{"fear": 0.9}, dist)
		classifier.AssertNumberOfCalls(t, "Classify", 1)
	})

	t.Run("Labels never observed are absent", func(t *testing.T) {
		classifier := &MockClassifier{}
		classifier.On("Classify", ctx, "a").Return([]LabelScore{{Label: "joy", Score: 1}}, nil)
		classifier.On("Classify", ctx, "b").Return([]LabelScore{{Label: "anger", Score: 0.5}}, nil)

		dist, err := NewAnalyzer(classifier, 512).Analyze(ctx, []models.Post{{Text: "a"}, {Text: "b"}})

		require.NoError(t, err)
		assert.Len(t, dist, 2)
		_, hasSurprise := dist["surprise"]
		assert.False(t, hasSurprise)
		assert.Equal(t, 0.5, dist["anger"], "mean over posts that produced the label")
	})

	t.Run("Truncates to the character limit", func(t *testing.T) {
		long := strings.Repeat("a", 600)
		classifier := &MockClassifier{}
		classifier.On("Classify", ctx, strings.Repeat("a", 512)).Return([]LabelScore{{Label: "neutral", Score: 1}}, nil)

		_, err := NewAnalyzer(classifier, 512).Analyze(ctx, []models.Post{{Text: long}})

		require.NoError(t, err)
		classifier.AssertExpectations(t)
	})

	t.Run("No posts gives an empty distribution", func(t *testing.T) {
		dist, err := NewAnalyzer(&MockClassifier{}, 512).Analyze(ctx, nil)
		require.NoError(t, err)
		assert.Empty(t, dist)
	})

	t.Run("Classifier failure is returned", func(t *testing.T) {
		classifier := &MockClassifier{}
		classifier.On("Classify", ctx, "x").Return(nil, errors.New("rate limited"))

		_, err := NewAnalyzer(classifier, 512).Analyze(ctx, []models.Post{{ID: "p1", Text: "x"}})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "rate limited")
	})
}

func TestDominant(t *testing.T) {
	label, ok := Dominant(models.EmotionDistribution{"joy": 0.2, "sadness": 0.5, "fear": 0.3})
	require.True(t, ok)
	assert.Equal(t, "sadness", label)

	label, ok = Dominant(models.EmotionDistribution{"sadness": 0.4, "anger": 0.4})
	require.True(t, ok)
	assert.Equal(t, "anger", label)

	_, ok = Dominant(nil)
	assert.False(t, ok)
}

func TestHFClassifier_Classify(t *testing.T) {
	t.Run("Nested response", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))

			var body map[string]interface{}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "hello", body["inputs"])

			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`[[{"label":"joy","score":0.7},{"label":"anger","score":0.3}]]`))
		}))
		defer server.Close()

		scores, err := NewHFClassifier(server.URL, "secret").Classify(context.Background(), "hello")
		require.NoError(t, err)
		assert.Equal(t, []LabelScore{{Label: "joy", Score: 0.7}, {Label: "anger", Score: 0.3}}, scores)
	})

	t.Run("Flat response", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`[{"label":"fear","score":1}]`))
		}))
		defer server.Close()

		scores, err := NewHFClassifier(server.URL, "").Classify(context.Background(), "hello")
		require.NoError(t, err)
		assert.Equal(t, []LabelScore{{Label: "fear", Score: 1}}, scores)
	})

	t.Run("Non-200 status", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"error":"model loading"}`))
		}))
		defer server.Close()

		_, err := NewHFClassifier(server.URL, "").Classify(context.Background(), "hello")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "503")
	})
}
