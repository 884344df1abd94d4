package dispatch

import (
	"context"
	"log/slog"
	"time"

	"postpilot/internal/credentials"
	"postpilot/internal/logging"
	"postpilot/internal/notifications"
	"postpilot/internal/platform"
	"postpilot/internal/poststore"
)

// Dispatcher executes one publish attempt for a claimed post and settles the
// outcome: delivered, rescheduled with backoff, or failed.
type Dispatcher struct {
	store    *poststore.Store
	registry *platform.Registry
	creds    credentials.Provider
	notifier notifications.Service
	policy   Policy
	logger   *slog.Logger
}

// New builds a dispatcher. The post passed to Dispatch must already be in
// the dispatching state; the scheduler claims posts before handing them over.
func New(store *poststore.Store, registry *platform.Registry, creds credentials.Provider, notifier notifications.Service, policy Policy, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = logging.NewNop()
	}
	if notifier == nil {
		notifier = notifications.Noop()
	}
	return &Dispatcher{
		store:    store,
		registry: registry,
		creds:    creds,
		notifier: notifier,
		policy:   policy,
		logger:   logging.NewComponentLogger(logger, "dispatcher"),
	}
}

// Dispatch publishes a claimed post. Exactly one delivery result row is
// appended per call regardless of outcome. Transient failures inside the
// attempt budget push the post back to scheduled with backoff; permanent
// failures and exhausted budgets settle it as failed.
func (d *Dispatcher) Dispatch(ctx context.Context, post *poststore.Post) error {
	attempt := post.AttemptCount + 1
	log := d.logger.With(
		logging.Int64(logging.FieldPostID, post.ID),
		logging.String(logging.FieldPlatform, post.Platform.Key()),
		logging.Int(logging.FieldAttempt, attempt),
	)
	log.Info("dispatching post")

	resp, err := d.publish(ctx, post)

	result := &poststore.DeliveryResult{
		PostID:  post.ID,
		Attempt: attempt,
		Success: err == nil,
	}
	if resp != nil {
		result.RemoteID = resp.RemoteID
		result.PlatformResponse = resp.Raw
	}
	if err != nil {
		result.ErrorMessage = err.Error()
	}
	if appendErr := d.store.AppendResult(ctx, result); appendErr != nil {
		log.Error("record delivery result", logging.Error(appendErr))
	}

	if err == nil {
		return d.settleDelivered(ctx, post, attempt, resp, log)
	}
	if platform.IsRetryable(err) && !d.policy.Exhausted(attempt) {
		return d.settleRetry(ctx, post, attempt, err, log)
	}
	return d.settleFailed(ctx, post, attempt, err, log)
}

func (d *Dispatcher) publish(ctx context.Context, post *poststore.Post) (*platform.Response, error) {
	token, err := d.creds.Get(ctx, post.Platform.Key())
	if err != nil {
		// No token means no amount of retrying will help.
		return nil, platform.Wrap(platform.ErrPermanent, post.Platform, "credentials", "lookup token", err)
	}

	timeout := d.policy.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	attemptCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	return d.registry.Publish(attemptCtx, post.Platform, platform.PublishRequest{
		Content:     post.Content,
		MediaPath:   post.MediaPath,
		Credentials: token,
	})
}

func (d *Dispatcher) settleDelivered(ctx context.Context, post *poststore.Post, attempt int, resp *platform.Response, log *slog.Logger) error {
	empty := ""
	remoteID := ""
	if resp != nil {
		remoteID = resp.RemoteID
	}
	err := d.store.Transition(ctx, post.ID, poststore.StateDispatching, poststore.StateDelivered, poststore.TransitionUpdate{
		AttemptCount: &attempt,
		LastError:    &empty,
		ClearBackoff: true,
		RemoteID:     &remoteID,
	})
	if err != nil {
		return err
	}
	log.Info("post delivered", logging.String("remote_id", remoteID))
	if notifyErr := d.notifier.NotifyPostDelivered(ctx, post.Platform.DisplayName(), post.Content); notifyErr != nil {
		log.Warn("delivery notification", logging.Error(notifyErr))
	}
	return nil
}

func (d *Dispatcher) settleRetry(ctx context.Context, post *poststore.Post, attempt int, cause error, log *slog.Logger) error {
	delay := d.policy.Backoff(attempt)
	nextAt := time.Now().UTC().Add(delay)
	message := cause.Error()
	err := d.store.Transition(ctx, post.ID, poststore.StateDispatching, poststore.StateScheduled, poststore.TransitionUpdate{
		AttemptCount:  &attempt,
		LastError:     &message,
		NextAttemptAt: &nextAt,
	})
	if err != nil {
		return err
	}
	log.Warn("transient failure, retry scheduled",
		logging.Duration("backoff", delay),
		logging.Time("next_attempt_at", nextAt),
		logging.Error(cause),
	)
	if notifyErr := d.notifier.NotifyRetryScheduled(ctx, post.Platform.DisplayName(), attempt, nextAt); notifyErr != nil {
		log.Warn("retry notification", logging.Error(notifyErr))
	}
	return nil
}

func (d *Dispatcher) settleFailed(ctx context.Context, post *poststore.Post, attempt int, cause error, log *slog.Logger) error {
	message := cause.Error()
	err := d.store.Transition(ctx, post.ID, poststore.StateDispatching, poststore.StateFailed, poststore.TransitionUpdate{
		AttemptCount: &attempt,
		LastError:    &message,
		ClearBackoff: true,
	})
	if err != nil {
		return err
	}
	log.Error("post failed", logging.Error(cause))
	if notifyErr := d.notifier.NotifyPostFailed(ctx, post.Platform.DisplayName(), post.Content, message); notifyErr != nil {
		log.Warn("failure notification", logging.Error(notifyErr))
	}
	return nil
}
