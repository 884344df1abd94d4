package platform

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const userAgent = "Postpilot/0.1.0"

// defaultHTTPTimeout bounds a single adapter HTTP exchange. The dispatcher
// applies its own per-attempt deadline on top via context.
const defaultHTTPTimeout = 30 * time.Second

func newHTTPClient(client *http.Client) *http.Client {
	if client != nil {
		return client
	}
	return &http.Client{Timeout: defaultHTTPTimeout}
}

// postJSON sends a JSON payload and returns the status code and body.
// Transport failures come back already classified; status handling is left
// to the caller because some platforms bury errors in 200 responses.
func postJSON(ctx context.Context, client *http.Client, p Platform, operation, url string, headers map[string]string, payload any) (int, []byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return 0, nil, Wrap(ErrPermanent, p, operation, "encode request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return 0, nil, Wrap(ErrPermanent, p, operation, "build request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", userAgent)
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	resp, err := client.Do(req)
	if err != nil {
		return 0, nil, classifyTransport(p, operation, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return resp.StatusCode, nil, Wrap(ErrTransient, p, operation, "read response", err)
	}
	return resp.StatusCode, data, nil
}

func bearerHeader(token string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + token}
}

func extractStringField(data []byte, path ...string) string {
	var current any
	if err := json.Unmarshal(data, &current); err != nil {
		return ""
	}
	for _, key := range path {
		obj, ok := current.(map[string]any)
		if !ok {
			return ""
		}
		current = obj[key]
	}
	switch value := current.(type) {
	case string:
		return value
	case float64:
		return fmt.Sprintf("%.0f", value)
	default:
		return ""
	}
}
