package platform

import (
	"context"
	"fmt"
	"net/http"
	"strings"
)

// FacebookAdapter publishes feed posts through the Facebook Graph API.
type FacebookAdapter struct {
	baseURL string
	client  *http.Client
}

// NewFacebookAdapter builds a Graph API adapter. baseURL should point at a
// versioned Graph root (e.g. https://graph.facebook.com/v19.0).
func NewFacebookAdapter(baseURL string, client *http.Client) *FacebookAdapter {
	return &FacebookAdapter{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  newHTTPClient(client),
	}
}

func (a *FacebookAdapter) Platform() Platform { return Facebook }

// Publish posts to the page/profile feed. The page id defaults to "me" and
// may be overridden via the "page_id" credential extra.
func (a *FacebookAdapter) Publish(ctx context.Context, req PublishRequest) (*Response, error) {
	if req.Credentials.AccessToken == "" {
		return nil, Wrap(ErrPermanent, Facebook, "publish", "missing access token", nil)
	}

	page := req.Credentials.Extra["page_id"]
	if page == "" {
		page = "me"
	}

	payload := map[string]any{
		"message":      req.Content,
		"access_token": req.Credentials.AccessToken,
	}
	if req.MediaPath != "" {
		// Graph photo posts reference previously uploaded media; the asset
		// path doubles as the upload reference in this deployment.
		payload["attached_media"] = []map[string]string{{"media_fbid": req.MediaPath}}
	}

	url := fmt.Sprintf("%s/%s/feed", a.baseURL, page)
	status, body, err := postJSON(ctx, a.client, Facebook, "publish", url, nil, payload)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, classifyStatus(Facebook, "publish", status, string(body))
	}

	return &Response{
		RemoteID: extractStringField(body, "id"),
		Raw:      string(body),
	}, nil
}
