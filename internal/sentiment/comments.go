package sentiment

// SampleComments returns a small canned audience-comment set for running the
// sentiment breakdown before any platform responses have been collected.
func SampleComments() []string {
	return []string{
		"Fantastic content! Keep it up! 👍",
		"This could be improved",
		"Not my favorite post 😕",
		"Extremely useful information!",
		"Poor quality content 👎",
	}
}
