// Package sentiment classifies post and comment text into positive, neutral,
// or negative labels for the analytics views.
//
// The built-in lexicon classifier needs no network and is the default; an
// HTTP classifier can be pointed at an external scoring service via the
// config. Both score text to a polarity in [-1, 1] and label it with the
// same thresholds, so the views never care which backend produced a label.
package sentiment
