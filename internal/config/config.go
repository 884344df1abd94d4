package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	DataDir  string `toml:"data_dir"`
	LogDir   string `toml:"log_dir"`
	MediaDir string `toml:"media_dir"`
	InboxDir string `toml:"inbox_dir"`
}

// Scheduler contains timing and retry policy for the delivery engine.
type Scheduler struct {
	PollInterval            int    `toml:"poll_interval"`
	MaxAttempts             int    `toml:"max_attempts"`
	RetryBackoffBase        int    `toml:"retry_backoff_base"`
	RetryBackoffCap         int    `toml:"retry_backoff_cap"`
	MaxConcurrentDispatches int    `toml:"max_concurrent_dispatches"`
	DispatchTimeout         int    `toml:"dispatch_timeout"`
	StaleDispatchTimeout    int    `toml:"stale_dispatch_timeout"`
	DisplayTimezone         string `toml:"display_timezone"`
}

// Platform contains per-network adapter settings.
type Platform struct {
	Enabled       bool   `toml:"enabled"`
	BaseURL       string `toml:"base_url"`
	RatePerMinute int    `toml:"rate_per_minute"`
}

// Credentials locates the capability-token store consumed by adapters.
type Credentials struct {
	Path string `toml:"path"`
}

// Captions contains connection settings for the advisory caption generator.
type Captions struct {
	APIKey         string `toml:"api_key"`
	BaseURL        string `toml:"base_url"`
	Model          string `toml:"model"`
	Referer        string `toml:"referer"`
	Title          string `toml:"title"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Sentiment contains connection settings for the sentiment classifier.
// An empty endpoint selects the built-in lexicon classifier.
type Sentiment struct {
	Endpoint       string `toml:"endpoint"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Notifications contains configuration for ntfy push notifications.
type Notifications struct {
	NtfyTopic      string `toml:"ntfy_topic"`
	RequestTimeout int    `toml:"request_timeout"`
	Scheduled      bool   `toml:"scheduled"`
	Delivered      bool   `toml:"delivered"`
	Failed         bool   `toml:"failed"`
	Retries        bool   `toml:"retries"`
	Daemon         bool   `toml:"daemon"`
}

// Inbox controls the draft drop-directory watcher.
type Inbox struct {
	Enabled       bool `toml:"enabled"`
	SettleMillis  int  `toml:"settle_millis"`
	KeepProcessed bool `toml:"keep_processed"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format        string `toml:"format"`
	Level         string `toml:"level"`
	RetentionDays int    `toml:"retention_days"`
}

// Recurring defines a cron-driven post template. Each firing enqueues a
// concrete scheduled post for the named platform.
type Recurring struct {
	Name     string `toml:"name"`
	Schedule string `toml:"schedule"`
	Platform string `toml:"platform"`
	Content  string `toml:"content"`
	Timezone string `toml:"timezone"`
}

// Config encapsulates all configuration values for Postpilot.
//
// Configuration sections by subsystem:
//   - Paths: data, log, media, and inbox directories
//   - Scheduler: poll interval, retry policy, dispatch concurrency
//   - Platforms: per-network adapter endpoints and rate limits
//   - Credentials: capability-token store location
//   - Captions: caption/hashtag suggestion service
//   - Sentiment: sentiment classifier endpoint
//   - Notifications: ntfy push notification settings
//   - Inbox: draft drop-directory watcher
//   - Logging: log format, level, and retention
//   - Recurring: cron-driven post templates
type Config struct {
	Paths         Paths               `toml:"paths"`
	Scheduler     Scheduler           `toml:"scheduler"`
	Platforms     map[string]Platform `toml:"platforms"`
	Credentials   Credentials         `toml:"credentials"`
	Captions      Captions            `toml:"captions"`
	Sentiment     Sentiment           `toml:"sentiment"`
	Notifications Notifications       `toml:"notifications"`
	Inbox         Inbox               `toml:"inbox"`
	Logging       Logging             `toml:"logging"`
	Recurring     []Recurring         `toml:"recurring"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/postpilot/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("postpilot.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates required directories for daemon operation.
func (c *Config) EnsureDirectories() error {
	dirs := []string{c.Paths.DataDir, c.Paths.LogDir, c.Paths.MediaDir}
	if c.Inbox.Enabled {
		dirs = append(dirs, c.Paths.InboxDir)
	}
	for _, dir := range dirs {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// DatabasePath returns the post store location inside the data directory.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.Paths.DataDir, "posts.db")
}

// SocketPath returns the daemon control socket location.
func (c *Config) SocketPath() string {
	return filepath.Join(c.Paths.LogDir, "postpilot.sock")
}

// WriteSample writes the embedded sample configuration to the given path.
func WriteSample(path string) error {
	expanded, err := expandPath(path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(expanded), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	if _, err := os.Stat(expanded); err == nil {
		return fmt.Errorf("config file already exists at %s", expanded)
	}
	if err := os.WriteFile(expanded, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}
