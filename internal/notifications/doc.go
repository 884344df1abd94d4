// Package notifications delivers post lifecycle events via pluggable notifiers.
//
// The default implementation publishes to ntfy using the topic configured in
// config.toml and gracefully degrades to a no-op when notifications are
// disabled. Per-event flags in the config suppress individual milestones so a
// busy schedule does not flood the topic.
//
// Extend this package if you need alternative transports; all scheduler and
// dispatcher code depends only on the simple Service interface.
package notifications
