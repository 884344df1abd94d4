package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"postpilot/internal/config"
	"postpilot/internal/logging"
	"postpilot/internal/notifications"
	"postpilot/internal/platform"
	"postpilot/internal/poststore"
)

// RecurringScheduler turns cron templates from the config into concrete
// scheduled posts. Each firing enqueues one post that the delivery loop picks
// up like any other.
type RecurringScheduler struct {
	store    *poststore.Store
	notifier notifications.Service
	logger   *slog.Logger
	cron     *cron.Cron
	entries  []recurringEntry
}

type recurringEntry struct {
	template config.Recurring
	platform platform.Platform
	schedule string
}

// NewRecurring validates the configured templates and prepares the cron
// runner. Template platforms must parse; cron specs were already validated
// at config load.
func NewRecurring(cfg *config.Config, store *poststore.Store, notifier notifications.Service, logger *slog.Logger) (*RecurringScheduler, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	if notifier == nil {
		notifier = notifications.Noop()
	}

	entries := make([]recurringEntry, 0, len(cfg.Recurring))
	for _, template := range cfg.Recurring {
		p, ok := platform.Parse(template.Platform)
		if !ok {
			return nil, fmt.Errorf("recurring template %q: unknown platform %q", template.Name, template.Platform)
		}
		schedule := template.Schedule
		if template.Timezone != "" {
			// The standard parser honors a CRON_TZ prefix per entry.
			schedule = "CRON_TZ=" + template.Timezone + " " + schedule
		}
		entries = append(entries, recurringEntry{
			template: template,
			platform: p,
			schedule: schedule,
		})
	}

	return &RecurringScheduler{
		store:    store,
		notifier: notifier,
		logger:   logging.NewComponentLogger(logger, "recurring"),
		cron:     cron.New(),
		entries:  entries,
	}, nil
}

// Start registers the templates and begins the cron runner. A scheduler with
// no templates is a no-op.
func (r *RecurringScheduler) Start(ctx context.Context) error {
	for _, entry := range r.entries {
		entry := entry
		if _, err := r.cron.AddFunc(entry.schedule, func() {
			r.fire(ctx, entry)
		}); err != nil {
			return fmt.Errorf("register recurring template %q: %w", entry.template.Name, err)
		}
	}
	r.cron.Start()
	if len(r.entries) > 0 {
		r.logger.Info("recurring templates active", logging.Int("count", len(r.entries)))
	}
	return nil
}

// Stop halts the cron runner and waits for in-flight firings.
func (r *RecurringScheduler) Stop() {
	stopCtx := r.cron.Stop()
	<-stopCtx.Done()
}

// Templates reports how many recurring templates are registered.
func (r *RecurringScheduler) Templates() int {
	return len(r.entries)
}

func (r *RecurringScheduler) fire(ctx context.Context, entry recurringEntry) {
	if err := r.enqueue(ctx, entry, time.Now().UTC()); err != nil {
		r.logger.Error("enqueue recurring post",
			logging.String("template", entry.template.Name),
			logging.Error(err),
		)
	}
}

// enqueue creates one scheduled post from a template, due immediately.
func (r *RecurringScheduler) enqueue(ctx context.Context, entry recurringEntry, at time.Time) error {
	timezone := entry.template.Timezone
	if timezone == "" {
		timezone = "UTC"
	}
	post, err := r.store.Create(ctx, &poststore.Post{
		Platform:      entry.platform,
		Content:       entry.template.Content,
		ScheduledAt:   at,
		Timezone:      timezone,
		State:         poststore.StateScheduled,
		RecurringName: entry.template.Name,
	})
	if err != nil {
		return err
	}
	r.logger.Info("recurring post enqueued",
		logging.String("template", entry.template.Name),
		logging.Int64(logging.FieldPostID, post.ID),
		logging.String(logging.FieldPlatform, post.Platform.Key()),
	)
	if notifyErr := r.notifier.NotifyPostScheduled(ctx, post.Platform.DisplayName(), post.Content, post.ScheduledAt); notifyErr != nil {
		r.logger.Warn("schedule notification", logging.Error(notifyErr))
	}
	return nil
}
