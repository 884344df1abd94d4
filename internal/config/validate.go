package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateScheduler(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	if err := c.validateRecurring(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		return errors.New("paths.data_dir must be set")
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		return errors.New("paths.log_dir must be set")
	}
	return nil
}

func (c *Config) validateScheduler() error {
	if c.Scheduler.RetryBackoffCap < c.Scheduler.RetryBackoffBase {
		return errors.New("scheduler.retry_backoff_cap must be >= scheduler.retry_backoff_base")
	}
	if !strings.EqualFold(c.Scheduler.DisplayTimezone, "Local") {
		if _, err := time.LoadLocation(c.Scheduler.DisplayTimezone); err != nil {
			return fmt.Errorf("scheduler.display_timezone: unknown timezone %q", c.Scheduler.DisplayTimezone)
		}
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}
	return nil
}

func (c *Config) validateRecurring() error {
	seen := make(map[string]struct{}, len(c.Recurring))
	for i, tpl := range c.Recurring {
		name := strings.TrimSpace(tpl.Name)
		if name == "" {
			return fmt.Errorf("recurring[%d].name must be set", i)
		}
		if _, dup := seen[name]; dup {
			return fmt.Errorf("recurring template %q defined twice", name)
		}
		seen[name] = struct{}{}
		if strings.TrimSpace(tpl.Platform) == "" {
			return fmt.Errorf("recurring template %q: platform must be set", name)
		}
		if strings.TrimSpace(tpl.Content) == "" {
			return fmt.Errorf("recurring template %q: content must be set", name)
		}
		if _, err := cron.ParseStandard(tpl.Schedule); err != nil {
			return fmt.Errorf("recurring template %q: invalid schedule %q: %w", name, tpl.Schedule, err)
		}
		if tz := strings.TrimSpace(tpl.Timezone); tz != "" && !strings.EqualFold(tz, "Local") {
			if _, err := time.LoadLocation(tz); err != nil {
				return fmt.Errorf("recurring template %q: unknown timezone %q", name, tz)
			}
		}
	}
	return nil
}
