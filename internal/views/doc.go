// Package views builds read-only projections over the post store.
//
// The calendar groups posts by day in the display timezone, the analytics
// views aggregate delivery outcomes and sentiment, and the CSV exporter
// serializes post history. Every view recomputes from the store on each
// call; nothing here caches or mutates.
package views
