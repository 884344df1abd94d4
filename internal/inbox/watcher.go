package inbox

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"postpilot/internal/api"
	"postpilot/internal/config"
	"postpilot/internal/logging"
	"postpilot/internal/notifications"
	"postpilot/internal/poststore"
)

const defaultSettle = 500 * time.Millisecond

// draft is the JSON shape accepted in the drop directory.
type draft struct {
	Platform      string `json:"platform"`
	Content       string `json:"content"`
	ScheduledTime string `json:"scheduled_time"`
	Timezone      string `json:"timezone,omitempty"`
	Media         string `json:"media,omitempty"`
	Draft         bool   `json:"draft,omitempty"`
}

// Watcher ingests draft files dropped into the inbox directory.
type Watcher struct {
	cfg      *config.Config
	store    *poststore.Store
	notifier notifications.Service
	logger   *slog.Logger
	settle   time.Duration

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup

	timersMu sync.Mutex
	timers   map[string]*time.Timer
}

// New constructs the inbox watcher. Nil notifier and logger fall back to
// no-op implementations.
func New(cfg *config.Config, store *poststore.Store, notifier notifications.Service, logger *slog.Logger) *Watcher {
	if notifier == nil {
		notifier = notifications.Noop()
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	settle := defaultSettle
	if cfg.Inbox.SettleMillis > 0 {
		settle = time.Duration(cfg.Inbox.SettleMillis) * time.Millisecond
	}
	return &Watcher{
		cfg:      cfg,
		store:    store,
		notifier: notifier,
		logger:   logging.NewComponentLogger(logger, "inbox"),
		settle:   settle,
		timers:   make(map[string]*time.Timer),
	}
}

// Start begins watching the inbox directory. Drafts already present are
// ingested immediately.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		return errors.New("inbox watcher already running")
	}

	dir := w.cfg.Paths.InboxDir
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create inbox dir: %w", err)
	}
	notify, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	if err := notify.Add(dir); err != nil {
		notify.Close()
		return fmt.Errorf("watch %s: %w", dir, err)
	}

	runCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel
	w.running = true

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		defer notify.Close()
		w.drainExisting(runCtx, dir)
		w.loop(runCtx, notify)
	}()

	w.logger.Info("inbox watcher started", logging.String("dir", dir))
	return nil
}

// Stop halts the watcher and waits for in-flight ingests.
func (w *Watcher) Stop() {
	w.mu.Lock()
	cancel := w.cancel
	w.cancel = nil
	w.running = false
	w.mu.Unlock()
	w.timersMu.Lock()
	for path, timer := range w.timers {
		timer.Stop()
		delete(w.timers, path)
	}
	w.timersMu.Unlock()

	if cancel != nil {
		cancel()
	}
	w.wg.Wait()
}

// Active reports whether the watcher is running.
func (w *Watcher) Active() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

func (w *Watcher) loop(ctx context.Context, notify *fsnotify.Watcher) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-notify.Events:
			if !ok {
				return
			}
			if !isDraftFile(event.Name) {
				continue
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
				continue
			}
			w.scheduleIngest(ctx, event.Name)
		case err, ok := <-notify.Errors:
			if !ok {
				return
			}
			w.logger.Warn("inbox watch error", logging.Error(err))
		}
	}
}

// scheduleIngest debounces per file so drafts written in several chunks are
// read once, after they settle.
func (w *Watcher) scheduleIngest(ctx context.Context, path string) {
	w.timersMu.Lock()
	defer w.timersMu.Unlock()
	if timer, ok := w.timers[path]; ok {
		timer.Stop()
	}
	w.timers[path] = time.AfterFunc(w.settle, func() {
		w.timersMu.Lock()
		delete(w.timers, path)
		w.timersMu.Unlock()
		if ctx.Err() != nil {
			return
		}
		w.wg.Add(1)
		defer w.wg.Done()
		w.ingest(ctx, path)
	})
}

func (w *Watcher) drainExisting(ctx context.Context, dir string) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		w.logger.Warn("inbox scan failed", logging.Error(err))
		return
	}
	for _, entry := range entries {
		if entry.IsDir() || !isDraftFile(entry.Name()) {
			continue
		}
		w.ingest(ctx, filepath.Join(dir, entry.Name()))
	}
}

func (w *Watcher) ingest(ctx context.Context, path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return
		}
		w.logger.Warn("inbox read failed", logging.String("path", path), logging.Error(err))
		return
	}

	var parsed draft
	if err := json.Unmarshal(data, &parsed); err != nil {
		w.reject(path, fmt.Errorf("parse draft: %w", err))
		return
	}

	record, err := api.ValidatePost(api.CreatePostRequest{
		Platform:      parsed.Platform,
		Content:       parsed.Content,
		MediaPath:     w.resolveMedia(parsed.Media),
		ScheduledTime: parsed.ScheduledTime,
		Timezone:      parsed.Timezone,
		Draft:         parsed.Draft,
	}, w.cfg.Scheduler.DisplayTimezone)
	if err != nil {
		w.reject(path, err)
		return
	}

	created, err := w.store.Create(ctx, record)
	if err != nil {
		w.logger.Error("inbox create failed", logging.String("path", path), logging.Error(err))
		return
	}
	w.logger.Info("draft ingested",
		logging.String("path", filepath.Base(path)),
		logging.Int64(logging.FieldPostID, created.ID),
		logging.String(logging.FieldPlatform, created.Platform.Key()))
	if created.State == poststore.StateScheduled {
		_ = w.notifier.NotifyPostScheduled(ctx, created.Platform.DisplayName(), created.Content, created.ScheduledAt)
	}
	w.finish(path)
}

// resolveMedia joins bare file names onto the media directory.
func (w *Watcher) resolveMedia(media string) string {
	media = strings.TrimSpace(media)
	if media == "" || filepath.IsAbs(media) {
		return media
	}
	return filepath.Join(w.cfg.Paths.MediaDir, media)
}

func (w *Watcher) reject(path string, cause error) {
	w.logger.Warn("draft rejected",
		logging.String("path", filepath.Base(path)),
		logging.Error(cause))
	dest := filepath.Join(filepath.Dir(path), "rejected", filepath.Base(path))
	if err := moveFile(path, dest); err != nil {
		w.logger.Warn("draft move failed", logging.String("path", path), logging.Error(err))
	}
}

func (w *Watcher) finish(path string) {
	if w.cfg.Inbox.KeepProcessed {
		dest := filepath.Join(filepath.Dir(path), "processed", filepath.Base(path))
		if err := moveFile(path, dest); err != nil {
			w.logger.Warn("draft archive failed", logging.String("path", path), logging.Error(err))
		}
		return
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		w.logger.Warn("draft cleanup failed", logging.String("path", path), logging.Error(err))
	}
}

func moveFile(src, dest string) error {
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return err
	}
	return os.Rename(src, dest)
}

func isDraftFile(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".json")
}
