// Package api exposes transport-friendly DTOs and services over the post
// store. The IPC server, the CLI, and the inbox watcher all go through this
// layer: it owns creation validation (platform, character limits, media
// extensions, schedule parsing) and the store-to-DTO conversions.
package api
