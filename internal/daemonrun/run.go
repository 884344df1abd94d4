// Package daemonrun wires the daemon process runtime: logging, pid file,
// store, platform registry, scheduler, and the IPC server.
package daemonrun

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"postpilot/internal/config"
	"postpilot/internal/credentials"
	"postpilot/internal/daemon"
	"postpilot/internal/dispatch"
	"postpilot/internal/inbox"
	"postpilot/internal/ipc"
	"postpilot/internal/logging"
	"postpilot/internal/notifications"
	"postpilot/internal/platform"
	"postpilot/internal/poststore"
	"postpilot/internal/scheduler"
)

// Options configures daemon process runtime behavior.
type Options struct {
	LogLevel string
}

// Run starts the postpilot daemon runtime loop and blocks until the process
// receives SIGINT or SIGTERM.
func Run(cmdCtx context.Context, cfg *config.Config, opts Options) error {
	if cfg == nil {
		return fmt.Errorf("config is required")
	}

	signalCtx, cancel := signal.NotifyContext(cmdCtx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := cfg.EnsureDirectories(); err != nil {
		return fmt.Errorf("ensure directories: %w", err)
	}

	runID := time.Now().UTC().Format("20060102T150405.000Z")
	logPath := filepath.Join(cfg.Paths.LogDir, fmt.Sprintf("postpilot-%s.log", runID))
	level := opts.LogLevel
	if level == "" {
		level = cfg.Logging.Level
	}
	logger, err := logging.New(logging.Options{
		Level:       level,
		Format:      cfg.Logging.Format,
		OutputPaths: []string{"stdout", logPath},
	})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	if err := ensureCurrentLogPointer(cfg.Paths.LogDir, logPath); err != nil {
		fmt.Fprintf(os.Stderr, "warn: unable to update postpilot.log link: %v\n", err)
	}
	logging.CleanupOldLogs(logger, cfg.Logging.RetentionDays,
		logging.RetentionTarget{Dir: cfg.Paths.LogDir, Pattern: "postpilot-*.log", Exclude: []string{logPath}},
	)

	pidPath := filepath.Join(cfg.Paths.LogDir, "postpilot.pid")
	if err := writePIDFile(pidPath); err != nil {
		return fmt.Errorf("write pid file: %w", err)
	}
	defer os.Remove(pidPath)

	store, err := poststore.Open(cfg)
	if err != nil {
		logger.Error("open post store", logging.Error(err))
		return err
	}
	defer store.Close()

	notifier := notifications.NewService(cfg)
	creds := credentials.NewFileStore(cfg.Credentials.Path)
	registry := BuildRegistry(cfg, logger)

	dispatcher := dispatch.New(store, registry, creds, notifier, policyFromConfig(cfg), logger)
	manager := scheduler.NewManager(cfg, store, dispatcher, logger)
	recurring, err := scheduler.NewRecurring(cfg, store, notifier, logger)
	if err != nil {
		return fmt.Errorf("configure recurring templates: %w", err)
	}

	var watcher *inbox.Watcher
	if cfg.Inbox.Enabled {
		watcher = inbox.New(cfg, store, notifier, logger)
	}

	d, err := daemon.New(cfg, store, logger, manager, recurring, watcher, notifier)
	if err != nil {
		return fmt.Errorf("create daemon: %w", err)
	}
	d.SetLogPath(logPath)
	defer d.Close()

	ipcServer, err := ipc.NewServer(signalCtx, cfg.SocketPath(), d, logger)
	if err != nil {
		return fmt.Errorf("start IPC server: %w", err)
	}
	defer ipcServer.Close()
	ipcServer.Serve()

	if err := d.Start(signalCtx); err != nil {
		logger.Warn("daemon start failed",
			logging.Error(err),
			logging.String(logging.FieldEventType, "daemon_start_failed"),
			logging.String(logging.FieldErrorHint, "check configuration and post database access"))
	}

	<-signalCtx.Done()
	logger.Info("postpilot daemon shutting down")
	return nil
}

// BuildRegistry constructs platform adapters for every enabled platform
// that has one. Platforms without adapters (Instagram, Snapchat) are logged
// and skipped; posts targeting them fail permanently at dispatch.
func BuildRegistry(cfg *config.Config, logger *slog.Logger) *platform.Registry {
	if logger == nil {
		logger = logging.NewNop()
	}
	registry := platform.NewRegistry()
	client := &http.Client{Timeout: 30 * time.Second}

	for key, settings := range cfg.Platforms {
		if !settings.Enabled {
			continue
		}
		name, ok := platform.Parse(key)
		if !ok {
			logger.Warn("unknown platform in config", logging.String(logging.FieldPlatform, key))
			continue
		}
		var adapter platform.Adapter
		switch name {
		case platform.Facebook:
			adapter = platform.NewFacebookAdapter(settings.BaseURL, client)
		case platform.Twitter:
			adapter = platform.NewTwitterAdapter(settings.BaseURL, client)
		case platform.LinkedIn:
			adapter = platform.NewLinkedInAdapter(settings.BaseURL, client)
		case platform.TikTok:
			adapter = platform.NewTikTokAdapter(settings.BaseURL, client)
		default:
			logger.Warn("platform has no delivery adapter",
				logging.String(logging.FieldPlatform, name.Key()))
			continue
		}
		if err := registry.Register(adapter, settings.RatePerMinute); err != nil {
			logger.Warn("adapter registration failed",
				logging.String(logging.FieldPlatform, name.Key()),
				logging.Error(err))
		}
	}
	return registry
}

func policyFromConfig(cfg *config.Config) dispatch.Policy {
	policy := dispatch.DefaultPolicy()
	if cfg.Scheduler.MaxAttempts > 0 {
		policy.MaxAttempts = cfg.Scheduler.MaxAttempts
	}
	if cfg.Scheduler.RetryBackoffBase > 0 {
		policy.BackoffBase = time.Duration(cfg.Scheduler.RetryBackoffBase) * time.Second
	}
	if cfg.Scheduler.RetryBackoffCap > 0 {
		policy.BackoffCap = time.Duration(cfg.Scheduler.RetryBackoffCap) * time.Second
	}
	if cfg.Scheduler.DispatchTimeout > 0 {
		policy.Timeout = time.Duration(cfg.Scheduler.DispatchTimeout) * time.Second
	}
	return policy
}

func ensureCurrentLogPointer(logDir, target string) error {
	if logDir == "" || target == "" {
		return nil
	}
	current := filepath.Join(logDir, "postpilot.log")
	if err := os.Remove(current); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove existing log pointer: %w", err)
	}
	if err := os.Symlink(target, current); err == nil {
		return nil
	}
	if err := os.Link(target, current); err != nil {
		return fmt.Errorf("link log pointer: %w", err)
	}
	return nil
}

func writePIDFile(path string) error {
	if path == "" {
		return nil
	}
	value := strconv.Itoa(os.Getpid()) + "\n"
	return os.WriteFile(path, []byte(value), 0o644)
}
