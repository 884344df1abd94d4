package platform

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"postpilot/internal/credentials"
)

func testToken() credentials.Token {
	return credentials.Token{AccessToken: "test-token"}
}

func TestTwitterAdapterPublish(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-token" {
			t.Errorf("authorization header = %q", got)
		}
		if r.URL.Path != "/tweets" {
			t.Errorf("path = %q", r.URL.Path)
		}
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"data":{"id":"1790","text":"hello"}}`))
	}))
	defer server.Close()

	adapter := NewTwitterAdapter(server.URL, server.Client())
	resp, err := adapter.Publish(context.Background(), PublishRequest{
		Content:     "hello",
		Credentials: testToken(),
	})
	if err != nil {
		t.Fatalf("publish: %v", err)
	}
	if resp.RemoteID != "1790" {
		t.Fatalf("remote id = %q", resp.RemoteID)
	}
}

func TestFacebookAdapterPublish(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/me/feed" {
			t.Errorf("path = %q", r.URL.Path)
		}
		w.Write([]byte(`{"id":"12345_67890"}`))
	}))
	defer server.Close()

	adapter := NewFacebookAdapter(server.URL, server.Client())
	resp, err := adapter.Publish(context.Background(), PublishRequest{
		Content:     "hello",
		Credentials: testToken(),
	})
	if err != nil {
		t.Fatalf("publish: %v", err)
	}
	if resp.RemoteID != "12345_67890" {
		t.Fatalf("remote id = %q", resp.RemoteID)
	}
}

func TestLinkedInAdapterRequiresAuthorURN(t *testing.T) {
	adapter := NewLinkedInAdapter("http://unused", nil)
	_, err := adapter.Publish(context.Background(), PublishRequest{
		Content:     "hello",
		Credentials: testToken(),
	})
	if !errors.Is(err, ErrPermanent) {
		t.Fatalf("missing author_urn classified as %v, want ErrPermanent", err)
	}
}

func TestAdapterClassifiesRateLimit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"title":"Too Many Requests"}`))
	}))
	defer server.Close()

	adapter := NewTwitterAdapter(server.URL, server.Client())
	_, err := adapter.Publish(context.Background(), PublishRequest{Content: "x", Credentials: testToken()})
	if !errors.Is(err, ErrTransient) {
		t.Fatalf("429 classified as %v, want ErrTransient", err)
	}
}

func TestAdapterClassifiesBadCredentials(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	adapter := NewTwitterAdapter(server.URL, server.Client())
	_, err := adapter.Publish(context.Background(), PublishRequest{Content: "x", Credentials: testToken()})
	if !errors.Is(err, ErrPermanent) {
		t.Fatalf("401 classified as %v, want ErrPermanent", err)
	}
}

func TestAdapterClassifiesTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer server.Close()

	adapter := NewTwitterAdapter(server.URL, server.Client())
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := adapter.Publish(ctx, PublishRequest{Content: "x", Credentials: testToken()})
	if !IsRetryable(err) {
		t.Fatalf("timeout classified as %v, want retryable", err)
	}
}

func TestTikTokEnvelopeErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"error":{"code":"rate_limit_exceeded","message":"slow down"}}`))
	}))
	defer server.Close()

	adapter := NewTikTokAdapter(server.URL, server.Client())
	_, err := adapter.Publish(context.Background(), PublishRequest{Content: "x", Credentials: testToken()})
	if !errors.Is(err, ErrTransient) {
		t.Fatalf("envelope rate limit classified as %v, want ErrTransient", err)
	}
}

func TestTikTokPublishSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":{"publish_id":"pub.77"},"error":{"code":"ok"}}`))
	}))
	defer server.Close()

	adapter := NewTikTokAdapter(server.URL, server.Client())
	resp, err := adapter.Publish(context.Background(), PublishRequest{Content: "x", Credentials: testToken()})
	if err != nil {
		t.Fatalf("publish: %v", err)
	}
	if resp.RemoteID != "pub.77" {
		t.Fatalf("remote id = %q", resp.RemoteID)
	}
}

type stubAdapter struct {
	platform Platform
	calls    int
}

func (s *stubAdapter) Platform() Platform { return s.platform }

func (s *stubAdapter) Publish(ctx context.Context, req PublishRequest) (*Response, error) {
	s.calls++
	return &Response{RemoteID: "stub-1"}, nil
}

func TestRegistryPublish(t *testing.T) {
	registry := NewRegistry()
	stub := &stubAdapter{platform: Twitter}
	if err := registry.Register(stub, 0); err != nil {
		t.Fatalf("register: %v", err)
	}

	resp, err := registry.Publish(context.Background(), Twitter, PublishRequest{Content: "x"})
	if err != nil {
		t.Fatalf("publish: %v", err)
	}
	if resp.RemoteID != "stub-1" || stub.calls != 1 {
		t.Fatalf("unexpected response %+v calls=%d", resp, stub.calls)
	}
}

func TestRegistryMissingAdapterIsPermanent(t *testing.T) {
	registry := NewRegistry()
	_, err := registry.Publish(context.Background(), Snapchat, PublishRequest{Content: "x"})
	if !errors.Is(err, ErrPermanent) {
		t.Fatalf("missing adapter classified as %v, want ErrPermanent", err)
	}
}

func TestRegistryRejectsDuplicate(t *testing.T) {
	registry := NewRegistry()
	if err := registry.Register(&stubAdapter{platform: Twitter}, 0); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := registry.Register(&stubAdapter{platform: Twitter}, 0); err == nil {
		t.Fatal("duplicate registration should fail")
	}
}

func TestRegistryPlatformsSorted(t *testing.T) {
	registry := NewRegistry()
	for _, p := range []Platform{Twitter, Facebook, LinkedIn} {
		if err := registry.Register(&stubAdapter{platform: p}, 0); err != nil {
			t.Fatalf("register %s: %v", p, err)
		}
	}
	got := registry.Platforms()
	want := []Platform{Facebook, LinkedIn, Twitter}
	if len(got) != len(want) {
		t.Fatalf("platforms = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("platforms = %v, want %v", got, want)
		}
	}
}
