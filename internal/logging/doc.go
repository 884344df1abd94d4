// Package logging constructs the slog loggers used across postpilot and
// provides typed attribute helpers plus standardized field names so log
// output stays greppable across components.
package logging
