package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeScheduler()
	c.normalizePlatforms()
	if err := c.normalizeCredentials(); err != nil {
		return err
	}
	c.normalizeCaptions()
	c.normalizeSentiment()
	c.normalizeNotifications()
	c.normalizeInbox()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.MediaDir) == "" {
		c.Paths.MediaDir = defaultMediaDir
	}
	if c.Paths.MediaDir, err = expandPath(c.Paths.MediaDir); err != nil {
		return fmt.Errorf("paths.media_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.InboxDir) == "" {
		c.Paths.InboxDir = defaultInboxDir
	}
	if c.Paths.InboxDir, err = expandPath(c.Paths.InboxDir); err != nil {
		return fmt.Errorf("paths.inbox_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeScheduler() {
	if c.Scheduler.PollInterval <= 0 {
		c.Scheduler.PollInterval = defaultPollInterval
	}
	if c.Scheduler.MaxAttempts <= 0 {
		c.Scheduler.MaxAttempts = defaultMaxAttempts
	}
	if c.Scheduler.RetryBackoffBase <= 0 {
		c.Scheduler.RetryBackoffBase = defaultRetryBackoffBase
	}
	if c.Scheduler.RetryBackoffCap <= 0 {
		c.Scheduler.RetryBackoffCap = defaultRetryBackoffCap
	}
	if c.Scheduler.MaxConcurrentDispatches <= 0 {
		c.Scheduler.MaxConcurrentDispatches = defaultMaxConcurrent
	}
	if c.Scheduler.DispatchTimeout <= 0 {
		c.Scheduler.DispatchTimeout = defaultDispatchTimeout
	}
	if c.Scheduler.StaleDispatchTimeout <= 0 {
		c.Scheduler.StaleDispatchTimeout = defaultStaleDispatchTimeout
	}
	c.Scheduler.DisplayTimezone = strings.TrimSpace(c.Scheduler.DisplayTimezone)
	if c.Scheduler.DisplayTimezone == "" {
		c.Scheduler.DisplayTimezone = defaultDisplayTimezone
	}
}

func (c *Config) normalizePlatforms() {
	if c.Platforms == nil {
		c.Platforms = make(map[string]Platform)
	}
	normalized := make(map[string]Platform, len(c.Platforms))
	for name, settings := range c.Platforms {
		key := strings.ToLower(strings.TrimSpace(name))
		settings.BaseURL = strings.TrimRight(strings.TrimSpace(settings.BaseURL), "/")
		if settings.BaseURL == "" {
			settings.BaseURL = defaultPlatformBaseURLs[key]
		}
		if settings.RatePerMinute <= 0 {
			settings.RatePerMinute = defaultRatePerMinute
		}
		normalized[key] = settings
	}
	for name, baseURL := range defaultPlatformBaseURLs {
		if _, ok := normalized[name]; !ok {
			normalized[name] = Platform{Enabled: true, BaseURL: baseURL, RatePerMinute: defaultRatePerMinute}
		}
	}
	c.Platforms = normalized
}

func (c *Config) normalizeCredentials() error {
	if strings.TrimSpace(c.Credentials.Path) == "" {
		c.Credentials.Path = defaultCredentialsPath
	}
	expanded, err := expandPath(c.Credentials.Path)
	if err != nil {
		return fmt.Errorf("credentials.path: %w", err)
	}
	c.Credentials.Path = expanded
	return nil
}

func (c *Config) normalizeCaptions() {
	if c.Captions.APIKey == "" {
		if value, ok := os.LookupEnv("POSTPILOT_CAPTIONS_API_KEY"); ok {
			c.Captions.APIKey = value
		}
	}
	c.Captions.BaseURL = strings.TrimSpace(c.Captions.BaseURL)
	if c.Captions.BaseURL == "" {
		c.Captions.BaseURL = defaultCaptionsBaseURL
	}
	if strings.TrimSpace(c.Captions.Model) == "" {
		c.Captions.Model = defaultCaptionsModel
	}
	if c.Captions.TimeoutSeconds <= 0 {
		c.Captions.TimeoutSeconds = defaultCaptionsTimeout
	}
}

func (c *Config) normalizeSentiment() {
	c.Sentiment.Endpoint = strings.TrimSpace(c.Sentiment.Endpoint)
	if c.Sentiment.TimeoutSeconds <= 0 {
		c.Sentiment.TimeoutSeconds = defaultSentimentTimeout
	}
}

func (c *Config) normalizeNotifications() {
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	if c.Notifications.RequestTimeout <= 0 {
		c.Notifications.RequestTimeout = defaultNtfyRequestTimeout
	}
}

func (c *Config) normalizeInbox() {
	if c.Inbox.SettleMillis <= 0 {
		c.Inbox.SettleMillis = defaultInboxSettleMillis
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.Logging.RetentionDays <= 0 {
		c.Logging.RetentionDays = defaultLogRetentionDays
	}
}
