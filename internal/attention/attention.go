// Package attention estimates a learner's engagement from a camera frame.
package attention

import (
	"strings"
	"time"
)

// Mood is the coarse affect label attached to a sample.
type Mood string

const (
	MoodFocused    Mood = "focused"
	MoodConfused   Mood = "confused"
	MoodDistracted Mood = "distracted"
	MoodFrustrated Mood = "frustrated"
	MoodBored      Mood = "bored"
	MoodAbsent     Mood = "absent"
	MoodNeutral    Mood = "neutral"
)

var knownMoods = []Mood{MoodFocused, MoodConfused, MoodDistracted, MoodFrustrated, MoodBored, MoodAbsent, MoodNeutral}

// ParseMood maps a label to a known mood, falling back to neutral.
func ParseMood(s string) Mood {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, m := range knownMoods {
		if string(m) == s {
			return m
		}
	}
	return MoodNeutral
}

// Sample is one analyzed frame.
type Sample struct {
	ConfusionScore int // 0-100
	Mood           Mood
	Summary        string
	CapturedAt     time.Time
}

// ClampScore bounds a confusion score to [0,100].
func ClampScore(v int) int {
	switch {
	case v < 0:
		return 0
	case v > 100:
		return 100
	}
	return v
}
