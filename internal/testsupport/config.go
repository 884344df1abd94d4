package testsupport

import (
	"path/filepath"
	"testing"

	"postpilot/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.DataDir = filepath.Join(base, "data")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.MediaDir = filepath.Join(base, "media")
	cfgVal.Paths.InboxDir = filepath.Join(base, "inbox")
	cfgVal.Credentials.Path = filepath.Join(base, "credentials.json")
	cfgVal.Scheduler.DisplayTimezone = "UTC"
	cfgVal.Notifications.NtfyTopic = ""

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithPollInterval overrides the scheduler poll interval in seconds.
func WithPollInterval(seconds int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Scheduler.PollInterval = seconds
	}
}

// WithMaxAttempts overrides the dispatch attempt budget.
func WithMaxAttempts(attempts int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Scheduler.MaxAttempts = attempts
	}
}

// WithInbox enables the inbox watcher on the test config.
func WithInbox() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Inbox.Enabled = true
	}
}

// WithPlatformBaseURL points a platform adapter at a test server.
func WithPlatformBaseURL(name, baseURL string) ConfigOption {
	return func(b *configBuilder) {
		entry := b.cfg.Platforms[name]
		entry.Enabled = true
		entry.BaseURL = baseURL
		b.cfg.Platforms[name] = entry
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.DataDir)
}
