package platform

import (
	"context"
	"fmt"
	"sort"
	"time"

	"golang.org/x/time/rate"

	"postpilot/internal/credentials"
)

// PublishRequest carries everything an adapter needs for one publish call.
type PublishRequest struct {
	Content     string
	MediaPath   string
	Credentials credentials.Token
}

// Response is the opaque outcome of a successful publish. RemoteID is the
// platform-assigned identifier when one could be extracted; Raw preserves the
// response body for the delivery log and the analytics views.
type Response struct {
	RemoteID string
	Raw      string
}

// Adapter publishes content to one social network.
type Adapter interface {
	Platform() Platform
	Publish(ctx context.Context, req PublishRequest) (*Response, error)
}

// Registry resolves adapters by platform. It is built once at startup; the
// dispatcher never mutates it.
type Registry struct {
	adapters map[Platform]Adapter
	limiters map[Platform]*rate.Limiter
}

// NewRegistry builds a registry over the provided adapters. ratePerMinute
// bounds publish calls per platform; zero or negative disables limiting.
func NewRegistry() *Registry {
	return &Registry{
		adapters: make(map[Platform]Adapter),
		limiters: make(map[Platform]*rate.Limiter),
	}
}

// Register adds an adapter with an optional per-minute rate limit.
// Registering the same platform twice is a programming error.
func (r *Registry) Register(adapter Adapter, ratePerMinute int) error {
	if adapter == nil {
		return fmt.Errorf("register adapter: adapter is nil")
	}
	key := adapter.Platform()
	if _, exists := r.adapters[key]; exists {
		return fmt.Errorf("register adapter: %s already registered", key)
	}
	r.adapters[key] = adapter
	if ratePerMinute > 0 {
		interval := time.Minute / time.Duration(ratePerMinute)
		r.limiters[key] = rate.NewLimiter(rate.Every(interval), 1)
	}
	return nil
}

// Lookup returns the adapter for a platform.
func (r *Registry) Lookup(p Platform) (Adapter, bool) {
	adapter, ok := r.adapters[p]
	return adapter, ok
}

// Publish resolves the adapter, honors the platform rate limit, and invokes
// the publish call. A missing adapter is a permanent failure: retrying will
// not make one appear.
func (r *Registry) Publish(ctx context.Context, p Platform, req PublishRequest) (*Response, error) {
	adapter, ok := r.adapters[p]
	if !ok {
		return nil, Wrap(ErrPermanent, p, "publish", "no adapter registered", nil)
	}
	if limiter, ok := r.limiters[p]; ok {
		if err := limiter.Wait(ctx); err != nil {
			return nil, classifyTransport(p, "rate limit", err)
		}
	}
	return adapter.Publish(ctx, req)
}

// Platforms lists the registered platforms in stable order.
func (r *Registry) Platforms() []Platform {
	keys := make([]Platform, 0, len(r.adapters))
	for key := range r.adapters {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}
