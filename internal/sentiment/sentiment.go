package sentiment

import "context"

// Label is the classification bucket for a piece of text.
type Label string

const (
	Positive Label = "positive"
	Neutral  Label = "neutral"
	Negative Label = "negative"
)

// Polarity thresholds: text scoring inside (-0.1, 0.1) is neutral.
const (
	positiveThreshold = 0.1
	negativeThreshold = -0.1
)

// Classifier scores text and returns a label.
type Classifier interface {
	Classify(ctx context.Context, text string) (Label, error)
}

// LabelForPolarity maps a polarity score in [-1, 1] to a label.
func LabelForPolarity(polarity float64) Label {
	switch {
	case polarity > positiveThreshold:
		return Positive
	case polarity < negativeThreshold:
		return Negative
	default:
		return Neutral
	}
}
