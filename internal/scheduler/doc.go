// Package scheduler drives the delivery loop: it polls the post store for
// due posts, claims them, and hands each to the dispatcher under a bounded
// concurrency budget.
//
// The Manager owns the poll cadence and stale-dispatch recovery; the
// RecurringScheduler turns cron-style templates from the config into
// concrete scheduled posts. Both are started and stopped by the daemon and
// share the store as their only coordination point.
package scheduler
