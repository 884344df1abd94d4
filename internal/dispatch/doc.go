// Package dispatch publishes claimed posts through platform adapters and
// settles the outcome in the post store.
//
// Each Dispatch call makes exactly one publish attempt under a deadline and
// appends exactly one delivery result. Transient failures within the attempt
// budget reschedule the post with exponential backoff; permanent failures and
// exhausted budgets mark it failed. Classification comes from the sentinel
// errors in the platform package.
package dispatch
