package platform

import (
	"context"
	"net/http"
	"strings"
)

// TikTokAdapter publishes text posts through the TikTok content API.
type TikTokAdapter struct {
	baseURL string
	client  *http.Client
}

// NewTikTokAdapter builds a TikTok adapter. baseURL should point at the
// open API root (e.g. https://open.tiktokapis.com/v2).
func NewTikTokAdapter(baseURL string, client *http.Client) *TikTokAdapter {
	return &TikTokAdapter{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  newHTTPClient(client),
	}
}

func (a *TikTokAdapter) Platform() Platform { return TikTok }

// Publish creates a text post. TikTok video upload is out of scope; posts
// with media attached are rejected at creation time for this platform.
func (a *TikTokAdapter) Publish(ctx context.Context, req PublishRequest) (*Response, error) {
	if req.Credentials.AccessToken == "" {
		return nil, Wrap(ErrPermanent, TikTok, "publish", "missing access token", nil)
	}

	payload := map[string]any{
		"post_info": map[string]any{
			"title":         req.Content,
			"privacy_level": "PUBLIC_TO_EVERYONE",
		},
	}

	status, body, err := postJSON(ctx, a.client, TikTok, "publish", a.baseURL+"/post/publish/content/init/",
		bearerHeader(req.Credentials.AccessToken), payload)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, classifyStatus(TikTok, "publish", status, string(body))
	}

	// TikTok reports application errors inside a 200 envelope.
	if code := extractStringField(body, "error", "code"); code != "" && code != "ok" {
		return nil, classifyTikTokError(code, string(body))
	}

	return &Response{
		RemoteID: extractStringField(body, "data", "publish_id"),
		Raw:      string(body),
	}, nil
}

func classifyTikTokError(code, body string) error {
	switch code {
	case "rate_limit_exceeded", "internal_error", "service_unavailable":
		return Wrap(ErrTransient, TikTok, "publish", "error code "+code, nil)
	case "access_token_invalid", "scope_not_authorized":
		return Wrap(ErrPermanent, TikTok, "publish", "credentials rejected: "+code, nil)
	default:
		return Wrap(ErrPermanent, TikTok, "publish", "error code "+code, nil)
	}
}
