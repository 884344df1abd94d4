package api

import (
	"context"
	"fmt"

	"postpilot/internal/notifications"
	"postpilot/internal/platform"
	"postpilot/internal/poststore"
)

// PostService exposes post lifecycle operations returning API DTOs.
type PostService struct {
	store           *poststore.Store
	notifier        notifications.Service
	defaultTimezone string
}

// NewPostService constructs a PostService around the store. A nil notifier
// disables notifications.
func NewPostService(store *poststore.Store, notifier notifications.Service, defaultTimezone string) *PostService {
	if notifier == nil {
		notifier = notifications.Noop()
	}
	return &PostService{store: store, notifier: notifier, defaultTimezone: defaultTimezone}
}

// Create validates the request and stores the post. Scheduled posts trigger
// a notification; drafts stay silent until scheduled.
func (s *PostService) Create(ctx context.Context, req CreatePostRequest) (Post, error) {
	record, err := ValidatePost(req, s.defaultTimezone)
	if err != nil {
		return Post{}, err
	}
	created, err := s.store.Create(ctx, record)
	if err != nil {
		return Post{}, fmt.Errorf("create post: %w", err)
	}
	if created.State == poststore.StateScheduled {
		_ = s.notifier.NotifyPostScheduled(ctx, created.Platform.DisplayName(), created.Content, created.ScheduledAt)
	}
	return FromPost(created), nil
}

// Schedule promotes a draft into the scheduler.
func (s *PostService) Schedule(ctx context.Context, id int64) (Post, error) {
	if err := s.store.Transition(ctx, id, poststore.StateDraft, poststore.StateScheduled, poststore.TransitionUpdate{}); err != nil {
		return Post{}, err
	}
	post, err := s.store.GetByID(ctx, id)
	if err != nil {
		return Post{}, err
	}
	_ = s.notifier.NotifyPostScheduled(ctx, post.Platform.DisplayName(), post.Content, post.ScheduledAt)
	return FromPost(post), nil
}

// List returns posts matching the filters.
func (s *PostService) List(ctx context.Context, req ListPostsRequest) ([]Post, error) {
	query := poststore.Query{Limit: req.Limit}
	for _, raw := range req.States {
		state, ok := poststore.ParseState(raw)
		if !ok {
			return nil, validationErrorf("unknown state %q", raw)
		}
		query.States = append(query.States, state)
	}
	if req.Platform != "" {
		name, ok := platform.Parse(req.Platform)
		if !ok {
			return nil, validationErrorf("unknown platform %q (choices: %s)", req.Platform, platformChoices())
		}
		query.Platform = name
	}
	posts, err := s.store.List(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	return FromPosts(posts), nil
}

// Describe fetches a post together with its delivery history.
func (s *PostService) Describe(ctx context.Context, id int64) (PostDetail, error) {
	post, err := s.store.GetByID(ctx, id)
	if err != nil {
		return PostDetail{}, err
	}
	results, err := s.store.ResultsForPost(ctx, id)
	if err != nil {
		return PostDetail{}, fmt.Errorf("describe post %d: %w", id, err)
	}
	detail := PostDetail{Post: FromPost(post), Results: make([]DeliveryResult, 0, len(results))}
	for _, result := range results {
		detail.Results = append(detail.Results, FromResult(result))
	}
	return detail, nil
}

// Cancel moves a draft or scheduled post to the canceled state.
func (s *PostService) Cancel(ctx context.Context, id int64) (Post, error) {
	if err := s.store.Cancel(ctx, id); err != nil {
		return Post{}, err
	}
	post, err := s.store.GetByID(ctx, id)
	if err != nil {
		return Post{}, err
	}
	return FromPost(post), nil
}

// Retry reschedules a failed post with a fresh attempt budget.
func (s *PostService) Retry(ctx context.Context, id int64) (Post, error) {
	if err := s.store.RetryFailed(ctx, id); err != nil {
		return Post{}, err
	}
	post, err := s.store.GetByID(ctx, id)
	if err != nil {
		return Post{}, err
	}
	_ = s.notifier.NotifyPostScheduled(ctx, post.Platform.DisplayName(), post.Content, post.ScheduledAt)
	return FromPost(post), nil
}

// Remove deletes a post and its delivery history.
func (s *PostService) Remove(ctx context.Context, id int64) (bool, error) {
	return s.store.Remove(ctx, id)
}

// ClearDelivered removes delivered posts, returning how many were deleted.
func (s *PostService) ClearDelivered(ctx context.Context) (int64, error) {
	return s.store.ClearDelivered(ctx)
}

// Stats returns post counts keyed by state string.
func (s *PostService) Stats(ctx context.Context) (map[string]int, error) {
	stats, err := s.store.Stats(ctx)
	if err != nil {
		return nil, err
	}
	return MergeStats(stats), nil
}

// Health returns database diagnostics.
func (s *PostService) Health(ctx context.Context) (DatabaseHealth, error) {
	health, err := s.store.CheckHealth(ctx)
	if err != nil && health.Error == "" {
		health.Error = err.Error()
	}
	return FromHealth(health), nil
}
