package config

const (
	defaultDataDir              = "~/.local/share/postpilot"
	defaultLogDir               = "~/.local/share/postpilot/logs"
	defaultMediaDir             = "~/.local/share/postpilot/media"
	defaultInboxDir             = "~/.local/share/postpilot/inbox"
	defaultCredentialsPath      = "~/.config/postpilot/credentials.json"
	defaultLogFormat            = "console"
	defaultLogLevel             = "info"
	defaultLogRetentionDays     = 60
	defaultPollInterval         = 60
	defaultMaxAttempts          = 3
	defaultRetryBackoffBase     = 60
	defaultRetryBackoffCap      = 3600
	defaultMaxConcurrent        = 4
	defaultDispatchTimeout      = 30
	defaultStaleDispatchTimeout = 300
	defaultDisplayTimezone      = "Local"
	defaultNtfyRequestTimeout   = 10
	defaultInboxSettleMillis    = 500
	defaultCaptionsBaseURL      = "https://openrouter.ai/api/v1/chat/completions"
	defaultCaptionsModel        = "google/gemini-3-flash-preview"
	defaultCaptionsTitle        = "Postpilot Caption Suggestions"
	defaultCaptionsTimeout      = 30
	defaultSentimentTimeout     = 15
	defaultRatePerMinute        = 30
)

var defaultPlatformBaseURLs = map[string]string{
	"facebook": "https://graph.facebook.com/v19.0",
	"twitter":  "https://api.twitter.com/2",
	"linkedin": "https://api.linkedin.com/v2",
	"tiktok":   "https://open.tiktokapis.com/v2",
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	platforms := make(map[string]Platform, len(defaultPlatformBaseURLs))
	for name, baseURL := range defaultPlatformBaseURLs {
		platforms[name] = Platform{
			Enabled:       true,
			BaseURL:       baseURL,
			RatePerMinute: defaultRatePerMinute,
		}
	}

	return Config{
		Paths: Paths{
			DataDir:  defaultDataDir,
			LogDir:   defaultLogDir,
			MediaDir: defaultMediaDir,
			InboxDir: defaultInboxDir,
		},
		Scheduler: Scheduler{
			PollInterval:            defaultPollInterval,
			MaxAttempts:             defaultMaxAttempts,
			RetryBackoffBase:        defaultRetryBackoffBase,
			RetryBackoffCap:         defaultRetryBackoffCap,
			MaxConcurrentDispatches: defaultMaxConcurrent,
			DispatchTimeout:         defaultDispatchTimeout,
			StaleDispatchTimeout:    defaultStaleDispatchTimeout,
			DisplayTimezone:         defaultDisplayTimezone,
		},
		Platforms: platforms,
		Credentials: Credentials{
			Path: defaultCredentialsPath,
		},
		Captions: Captions{
			BaseURL:        defaultCaptionsBaseURL,
			Model:          defaultCaptionsModel,
			Title:          defaultCaptionsTitle,
			TimeoutSeconds: defaultCaptionsTimeout,
		},
		Sentiment: Sentiment{
			TimeoutSeconds: defaultSentimentTimeout,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNtfyRequestTimeout,
			Scheduled:      false,
			Delivered:      true,
			Failed:         true,
			Retries:        false,
			Daemon:         true,
		},
		Inbox: Inbox{
			Enabled:      false,
			SettleMillis: defaultInboxSettleMillis,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetentionDays,
		},
	}
}
