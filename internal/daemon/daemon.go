package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/gofrs/flock"

	"postpilot/internal/api"
	"postpilot/internal/config"
	"postpilot/internal/inbox"
	"postpilot/internal/logging"
	"postpilot/internal/notifications"
	"postpilot/internal/poststore"
	"postpilot/internal/scheduler"
	"postpilot/internal/sentiment"
)

// Daemon coordinates the background services and enforces single-instance
// execution via a file lock in the log directory.
type Daemon struct {
	cfg       *config.Config
	logger    *slog.Logger
	store     *poststore.Store
	scheduler *scheduler.Manager
	recurring *scheduler.RecurringScheduler
	inbox     *inbox.Watcher
	notifier  notifications.Service

	posts *api.PostService
	views *api.ViewService

	logPath  string
	lockPath string
	lock     *flock.Flock

	running atomic.Bool
	cancel  context.CancelFunc
}

// New constructs a daemon from initialized services. The inbox watcher may
// be nil when the inbox is disabled.
func New(cfg *config.Config, store *poststore.Store, logger *slog.Logger, sched *scheduler.Manager, recurring *scheduler.RecurringScheduler, watcher *inbox.Watcher, notifier notifications.Service) (*Daemon, error) {
	if cfg == nil || store == nil || sched == nil {
		return nil, errors.New("daemon requires config, store, and scheduler")
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	if notifier == nil {
		notifier = notifications.Noop()
	}

	lockPath := filepath.Join(cfg.Paths.LogDir, "postpilotd.lock")
	return &Daemon{
		cfg:       cfg,
		logger:    logger,
		store:     store,
		scheduler: sched,
		recurring: recurring,
		inbox:     watcher,
		notifier:  notifier,
		posts:     api.NewPostService(store, notifier, cfg.Scheduler.DisplayTimezone),
		views:     api.NewViewService(store, sentiment.NewFromConfig(cfg.Sentiment), cfg.Scheduler.DisplayTimezone),
		logPath:   filepath.Join(cfg.Paths.LogDir, "postpilot.log"),
		lockPath:  lockPath,
		lock:      flock.New(lockPath),
	}, nil
}

// Start acquires the daemon lock and launches the background services.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another postpilot daemon instance is already running")
	}

	runCtx, cancel := context.WithCancel(ctx)
	if err := d.scheduler.Start(runCtx); err != nil {
		cancel()
		_ = d.lock.Unlock()
		return fmt.Errorf("start scheduler: %w", err)
	}
	if d.recurring != nil {
		if err := d.recurring.Start(runCtx); err != nil {
			d.scheduler.Stop()
			cancel()
			_ = d.lock.Unlock()
			return fmt.Errorf("start recurring templates: %w", err)
		}
	}
	if d.inbox != nil {
		if err := d.inbox.Start(runCtx); err != nil {
			if d.recurring != nil {
				d.recurring.Stop()
			}
			d.scheduler.Stop()
			cancel()
			_ = d.lock.Unlock()
			return fmt.Errorf("start inbox watcher: %w", err)
		}
	}

	d.cancel = cancel
	d.running.Store(true)
	d.logger.Info("postpilot daemon started", logging.String("lock", d.lockPath))
	_ = d.notifier.NotifyDaemonStarted(ctx)
	return nil
}

// Stop halts background services and releases the daemon lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}

	if d.inbox != nil {
		d.inbox.Stop()
	}
	if d.recurring != nil {
		d.recurring.Stop()
	}
	d.scheduler.Stop()
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.running.Store(false)
	d.logger.Info("postpilot daemon stopped")
	_ = d.notifier.NotifyDaemonStopped(context.Background())
}

// Close stops the daemon and closes the post store.
func (d *Daemon) Close() error {
	d.Stop()
	if d.store != nil {
		return d.store.Close()
	}
	return nil
}

// Posts exposes the post lifecycle service.
func (d *Daemon) Posts() *api.PostService {
	return d.posts
}

// Views exposes the calendar, analytics, and export service.
func (d *Daemon) Views() *api.ViewService {
	return d.views
}

// LogPath returns the daemon log file location.
func (d *Daemon) LogPath() string {
	return d.logPath
}

// SetLogPath overrides the reported log file location.
func (d *Daemon) SetLogPath(path string) {
	if path != "" {
		d.logPath = path
	}
}

// Status reports aggregated daemon runtime information.
func (d *Daemon) Status(ctx context.Context) api.DaemonStatus {
	status := api.DaemonStatus{
		Running:      d.running.Load(),
		PID:          os.Getpid(),
		DBPath:       d.store.Path(),
		LockFilePath: d.lockPath,
	}
	loop := d.scheduler.Status()
	status.Scheduler = api.SchedulerStatus{Running: loop.Running, LastErr: loop.LastErr}
	if !loop.LastPoll.IsZero() {
		status.Scheduler.LastPoll = loop.LastPoll.UTC().Format("2006-01-02T15:04:05Z07:00")
	}
	if stats, err := d.posts.Stats(ctx); err == nil {
		status.PostStats = stats
	} else {
		d.logger.Warn("post stats unavailable", logging.Error(err))
	}
	if d.inbox != nil {
		status.InboxActive = d.inbox.Active()
	}
	if d.recurring != nil {
		status.Recurring = d.recurring.Templates()
	}
	return status
}

// DatabaseHealth returns detailed post database diagnostics.
func (d *Daemon) DatabaseHealth(ctx context.Context) (api.DatabaseHealth, error) {
	return d.posts.Health(ctx)
}

// TestNotification sends a test message through the notifier.
func (d *Daemon) TestNotification(ctx context.Context) (bool, string, error) {
	if err := d.notifier.TestNotification(ctx); err != nil {
		return false, err.Error(), err
	}
	if d.cfg.Notifications.NtfyTopic == "" {
		return false, "notifications are not configured (set notifications.ntfy_topic)", nil
	}
	return true, "test notification sent", nil
}
