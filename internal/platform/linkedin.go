package platform

import (
	"context"
	"net/http"
	"strings"
)

// LinkedInAdapter publishes UGC posts through the LinkedIn REST API.
type LinkedInAdapter struct {
	baseURL string
	client  *http.Client
}

// NewLinkedInAdapter builds a LinkedIn adapter. baseURL should point at the
// v2 API root (e.g. https://api.linkedin.com/v2).
func NewLinkedInAdapter(baseURL string, client *http.Client) *LinkedInAdapter {
	return &LinkedInAdapter{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  newHTTPClient(client),
	}
}

func (a *LinkedInAdapter) Platform() Platform { return LinkedIn }

// Publish creates a UGC share. The author URN comes from the "author_urn"
// credential extra (e.g. urn:li:person:xxxx).
func (a *LinkedInAdapter) Publish(ctx context.Context, req PublishRequest) (*Response, error) {
	if req.Credentials.AccessToken == "" {
		return nil, Wrap(ErrPermanent, LinkedIn, "publish", "missing access token", nil)
	}
	author := req.Credentials.Extra["author_urn"]
	if author == "" {
		return nil, Wrap(ErrPermanent, LinkedIn, "publish", "missing author_urn credential", nil)
	}

	media := "NONE"
	if req.MediaPath != "" {
		media = "IMAGE"
	}
	payload := map[string]any{
		"author":         author,
		"lifecycleState": "PUBLISHED",
		"specificContent": map[string]any{
			"com.linkedin.ugc.ShareContent": map[string]any{
				"shareCommentary":    map[string]string{"text": req.Content},
				"shareMediaCategory": media,
			},
		},
		"visibility": map[string]string{
			"com.linkedin.ugc.MemberNetworkVisibility": "PUBLIC",
		},
	}

	headers := bearerHeader(req.Credentials.AccessToken)
	headers["X-Restli-Protocol-Version"] = "2.0.0"

	status, body, err := postJSON(ctx, a.client, LinkedIn, "publish", a.baseURL+"/ugcPosts", headers, payload)
	if err != nil {
		return nil, err
	}
	if status != http.StatusCreated && status != http.StatusOK {
		return nil, classifyStatus(LinkedIn, "publish", status, string(body))
	}

	return &Response{
		RemoteID: extractStringField(body, "id"),
		Raw:      string(body),
	}, nil
}
