// Package sentiment is the HTTP client for the external sentiment
// classification service. The classifier scores a session summary with a
// distress label ("normal", "low", "medium", "high") and a confidence.
package sentiment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

const requestTimeout = 10 * time.Second

// Result is the classifier's verdict for one piece of text.
type Result struct {
	Label      string  `json:"predicted_label"`
	Confidence float64 `json:"confidence"`
}

// Neutral is the fallback used when the classifier is unreachable. The
// summarization pipeline must complete even without sentiment scoring.
func Neutral() Result {
	return Result{Label: "neutral", Confidence: 0}
}

type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: requestTimeout},
	}
}

type analyzeRequest struct {
	Text string `json:"text"`
}

// Analyze submits text to POST /analyze. Timeouts, connection errors and
// non-2xx statuses are returned as errors; the caller substitutes Neutral().
func (c *Client) Analyze(ctx context.Context, text string) (Result, error) {
	body, err := json.Marshal(analyzeRequest{Text: text})
	if err != nil {
		return Result{}, fmt.Errorf("failed to encode analyze request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/analyze", bytes.NewReader(body))
	if err != nil {
		return Result{}, fmt.Errorf("failed to build analyze request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("sentiment request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Result{}, fmt.Errorf("sentiment service returned status %d", resp.StatusCode)
	}

	var result Result
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return Result{}, fmt.Errorf("failed to decode sentiment response: %w", err)
	}
	return result, nil
}
