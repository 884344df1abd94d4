package sentiment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"postpilot/internal/config"
)

const userAgent = "Postpilot/0.1.0"

// HTTPClassifier scores text against an external service. The service takes
// {"text": "..."} and answers {"polarity": -1..1}.
type HTTPClassifier struct {
	endpoint string
	client   *http.Client
}

// NewHTTP builds a classifier for the configured endpoint.
func NewHTTP(cfg config.Sentiment) *HTTPClassifier {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &HTTPClassifier{
		endpoint: cfg.Endpoint,
		client:   &http.Client{Timeout: timeout},
	}
}

// NewFromConfig selects the HTTP classifier when an endpoint is configured
// and falls back to the built-in lexicon otherwise.
func NewFromConfig(cfg config.Sentiment) Classifier {
	if cfg.Endpoint != "" {
		return NewHTTP(cfg)
	}
	return NewLexicon()
}

type scoreRequest struct {
	Text string `json:"text"`
}

type scoreResponse struct {
	Polarity float64 `json:"polarity"`
}

// Classify posts the text to the scoring service and maps the polarity.
func (c *HTTPClassifier) Classify(ctx context.Context, text string) (Label, error) {
	body, err := json.Marshal(scoreRequest{Text: text})
	if err != nil {
		return Neutral, fmt.Errorf("encode sentiment request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return Neutral, fmt.Errorf("build sentiment request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return Neutral, fmt.Errorf("score text: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return Neutral, fmt.Errorf("sentiment service returned %d: %s", resp.StatusCode, detail)
	}

	var score scoreResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<16)).Decode(&score); err != nil {
		return Neutral, fmt.Errorf("decode sentiment response: %w", err)
	}
	return LabelForPolarity(score.Polarity), nil
}
