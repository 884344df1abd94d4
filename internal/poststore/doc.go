// Package poststore persists scheduled posts and their delivery history in
// SQLite and exposes helpers for driving the post lifecycle.
//
// The Store manages database connections, schema initialization, stats
// queries, stale-dispatch recovery, and the state transitions the scheduler
// and dispatcher rely on. Every mutation that moves a post between states is
// a compare-and-swap against the current state, so concurrent workers can
// never double-claim a post.
//
// Timestamps are stored as UTC RFC3339Nano strings; display-timezone
// conversion happens in the view layer, never here.
//
// Treat this package as the single source of truth for lifecycle semantics;
// when you add new states or columns, update schema.sql and bump
// schemaVersion.
package poststore
