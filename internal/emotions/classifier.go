package emotions

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
)

// LabelScore is one entry of a classifier's probability distribution
type LabelScore struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// Classifier returns the full emotion distribution for one text
type Classifier interface {
	Classify(ctx context.Context, text string) ([]LabelScore, error)
}

// HFClassifier calls a Hugging Face text-classification inference endpoint
type HFClassifier struct {
	client   *resty.Client
	endpoint string
}

// Ensure HFClassifier implements Classifier
var _ Classifier = (*HFClassifier)(nil)

type hfRequest struct {
	Inputs     string       `json:"inputs"`
	Parameters hfParameters `json:"parameters"`
}

type hfParameters struct {
	// nil asks the endpoint for every label rather than the top one
	TopK *int `json:"top_k"`
}

// NewHFClassifier creates a classifier for the given model endpoint. The token may be empty
// for self-hosted endpoints.
func NewHFClassifier(endpoint, token string) *HFClassifier {
	client := resty.New().
		SetTimeout(60*time.Second).
		SetHeader("Content-Type", "application/json")
	if token != "" {
		client.SetAuthToken(token)
	}

	return &HFClassifier{
		client:   client,
		endpoint: endpoint,
	}
}

// Classify sends one text and returns every label with its probability.
func (c *HFClassifier) Classify(ctx context.Context, text string) ([]LabelScore, error) {
	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(hfRequest{Inputs: text}).
		Post(c.endpoint)
	if err != nil {
		return nil, fmt.Errorf("classifier request: %w", err)
	}

	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("classifier returned status %d: %s", resp.StatusCode(), resp.String())
	}

	return decodeScores(resp.Body())
}

// decodeScores accepts both the batched [[...]] and flat [...] response shapes.
func decodeScores(body []byte) ([]LabelScore, error) {
	var nested [][]LabelScore
	if err := json.Unmarshal(body, &nested); err == nil {
		if len(nested) == 0 {
			return nil, fmt.Errorf("empty classifier response")
		}
		return nested[0], nil
	}

	var flat []LabelScore
	if err := json.Unmarshal(body, &flat); err != nil {
		return nil, fmt.Errorf("decode classifier response: %w", err)
	}
	return flat, nil
}
