// Package platform defines the social network enumeration, per-network
// content rules, and the publish adapters the dispatcher invokes.
//
// Adapters are thin HTTP clients. They classify every failure with one of
// the sentinel errors in errors.go so the dispatcher can decide between
// retrying and failing terminally without knowing network specifics.
package platform
