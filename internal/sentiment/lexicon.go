package sentiment

import (
	"context"
	"strings"
)

// LexiconClassifier scores text with a small built-in word and emoji
// lexicon. It never fails and needs no network, which makes it the default
// backend.
type LexiconClassifier struct{}

// NewLexicon returns the built-in classifier.
func NewLexicon() *LexiconClassifier {
	return &LexiconClassifier{}
}

var positiveWords = map[string]struct{}{
	"love": {}, "great": {}, "awesome": {}, "amazing": {}, "excellent": {},
	"good": {}, "best": {}, "fantastic": {}, "wonderful": {}, "happy": {},
	"excited": {}, "beautiful": {}, "perfect": {}, "brilliant": {}, "win": {},
	"thanks": {}, "thank": {}, "congrats": {}, "congratulations": {}, "nice": {},
	"cool": {}, "fun": {}, "inspiring": {}, "success": {}, "proud": {},
}

var negativeWords = map[string]struct{}{
	"hate": {}, "bad": {}, "terrible": {}, "awful": {}, "horrible": {},
	"worst": {}, "disappointed": {}, "disappointing": {}, "sad": {}, "angry": {},
	"fail": {}, "failure": {}, "broken": {}, "useless": {}, "annoying": {},
	"boring": {}, "wrong": {}, "problem": {}, "poor": {}, "ugly": {},
	"slow": {}, "waste": {}, "scam": {}, "spam": {}, "never": {},
}

var positiveEmoji = []string{"😀", "😃", "😄", "😊", "😍", "🎉", "👍", "❤️", "🔥", "✨", "🚀", "💯"}
var negativeEmoji = []string{"😞", "😠", "😡", "😢", "😭", "👎", "💔", "🤮"}

// Classify scores the text and buckets it. The polarity is the signed word
// balance normalized by the number of sentiment-bearing tokens.
func (c *LexiconClassifier) Classify(_ context.Context, text string) (Label, error) {
	return LabelForPolarity(c.Polarity(text)), nil
}

// Polarity returns the raw score in [-1, 1].
func (c *LexiconClassifier) Polarity(text string) float64 {
	var positive, negative int

	for _, emoji := range positiveEmoji {
		positive += strings.Count(text, emoji)
	}
	for _, emoji := range negativeEmoji {
		negative += strings.Count(text, emoji)
	}

	for _, token := range tokenize(text) {
		if _, ok := positiveWords[token]; ok {
			positive++
			continue
		}
		if _, ok := negativeWords[token]; ok {
			negative++
		}
	}

	total := positive + negative
	if total == 0 {
		return 0
	}
	return float64(positive-negative) / float64(total)
}

func tokenize(text string) []string {
	lowered := strings.ToLower(text)
	return strings.FieldsFunc(lowered, func(r rune) bool {
		return !((r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '\'')
	})
}
