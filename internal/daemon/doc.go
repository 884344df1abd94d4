// Package daemon composes the post store, the delivery scheduler, the
// recurring templates, and the inbox watcher into one background service
// guarded by a file lock so only a single instance runs per data directory.
package daemon
