package captions

import (
	"context"
	"math/rand"
	"strings"
	"sync"
)

// hashtagKeywords back the canned hashtag suggestions.
var hashtagKeywords = []string{"socialmedia", "marketing", "tech", "business", "innovation"}

// cannedCaptions rotate through the fallback suggestions.
var cannedCaptions = []string{
	"Elevate your social presence with cutting-edge content! 💡",
	"Where innovation meets social engagement 🚀",
	"Crafting digital experiences that matter 🌐",
}

// Fallback serves canned captions and keyword hashtags without any network
// dependency. It stands in whenever no caption API key is configured.
type Fallback struct {
	mu   sync.Mutex
	rand *rand.Rand
}

// NewFallback returns the canned suggestion generator.
func NewFallback() *Fallback {
	return &Fallback{rand: rand.New(rand.NewSource(rand.Int63()))}
}

// Suggest picks a canned caption and the keyword hashtags. The topic biases
// nothing; this generator exists so the CLI verb keeps working offline.
func (f *Fallback) Suggest(_ context.Context, topic, _ string) (Suggestion, error) {
	f.mu.Lock()
	caption := cannedCaptions[f.rand.Intn(len(cannedCaptions))]
	f.mu.Unlock()

	return Suggestion{
		Caption:  caption,
		Hashtags: Hashtags(topic, 5),
	}, nil
}

// Hashtags returns up to n keyword hashtags, skipping any already present in
// the text.
func Hashtags(text string, n int) []string {
	if n <= 0 || n > len(hashtagKeywords) {
		n = len(hashtagKeywords)
	}
	lowered := strings.ToLower(text)
	out := make([]string, 0, n)
	for _, keyword := range hashtagKeywords {
		if len(out) == n {
			break
		}
		if strings.Contains(lowered, "#"+keyword) {
			continue
		}
		out = append(out, keyword)
	}
	return out
}
