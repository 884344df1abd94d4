package credentials

import (
	"context"
	"errors"
)

// ErrNotFound indicates no credentials are stored for the requested platform.
var ErrNotFound = errors.New("credentials not found")

// Token is the capability material an adapter needs to publish. AccessToken
// carries the primary bearer credential; Extra holds platform-specific keys
// (consumer secrets, page ids) under names the adapter understands.
type Token struct {
	AccessToken string            `json:"access_token"`
	Extra       map[string]string `json:"extra,omitempty"`
}

// IsZero reports whether the token carries no usable material.
func (t Token) IsZero() bool {
	return t.AccessToken == "" && len(t.Extra) == 0
}

// Provider resolves credentials for a platform key (e.g. "twitter").
type Provider interface {
	Get(ctx context.Context, platform string) (Token, error)
}

// Static is a fixed in-memory provider, used by tests and one-shot tools.
type Static map[string]Token

// Get returns the stored token or ErrNotFound.
func (s Static) Get(_ context.Context, platform string) (Token, error) {
	token, ok := s[platform]
	if !ok || token.IsZero() {
		return Token{}, ErrNotFound
	}
	return token, nil
}
