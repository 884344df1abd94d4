// Package captions produces advisory caption and hashtag suggestions.
//
// The Client talks to an OpenRouter-compatible chat completion endpoint and
// retries transient failures with backoff. When no API key is configured the
// fallback generator serves canned captions and keyword hashtags, so the
// suggestion surface always answers. Suggestions are advisory only; nothing
// in the delivery path depends on this package.
package captions
