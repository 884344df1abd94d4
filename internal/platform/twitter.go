package platform

import (
	"context"
	"net/http"
	"strings"
)

// TwitterAdapter publishes tweets through the X API v2.
type TwitterAdapter struct {
	baseURL string
	client  *http.Client
}

// NewTwitterAdapter builds an X API v2 adapter. baseURL should point at the
// API root (e.g. https://api.twitter.com/2).
func NewTwitterAdapter(baseURL string, client *http.Client) *TwitterAdapter {
	return &TwitterAdapter{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  newHTTPClient(client),
	}
}

func (a *TwitterAdapter) Platform() Platform { return Twitter }

// Publish creates a tweet. Media must already be uploaded; the media id is
// carried in the request's MediaPath.
func (a *TwitterAdapter) Publish(ctx context.Context, req PublishRequest) (*Response, error) {
	if req.Credentials.AccessToken == "" {
		return nil, Wrap(ErrPermanent, Twitter, "publish", "missing access token", nil)
	}

	payload := map[string]any{"text": req.Content}
	if req.MediaPath != "" {
		payload["media"] = map[string]any{"media_ids": []string{req.MediaPath}}
	}

	status, body, err := postJSON(ctx, a.client, Twitter, "publish", a.baseURL+"/tweets",
		bearerHeader(req.Credentials.AccessToken), payload)
	if err != nil {
		return nil, err
	}
	if status != http.StatusCreated && status != http.StatusOK {
		return nil, classifyStatus(Twitter, "publish", status, string(body))
	}

	return &Response{
		RemoteID: extractStringField(body, "data", "id"),
		Raw:      string(body),
	}, nil
}
