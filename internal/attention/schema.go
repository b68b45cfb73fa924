package attention

import "github.com/abhisek/quizwatch/internal/llm"

// SampleSchema defines the JSON returned for a frame analysis.
var SampleSchema = &llm.Schema{
	Name:        "attention-sample",
	Description: "Engagement estimate for one webcam frame of a learner answering a question",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"confusion_score": map[string]any{
				"type":        "integer",
				"minimum":     0,
				"maximum":     100,
				"description": "0 means clearly comfortable, 100 means clearly lost or struggling",
			},
			"mood": map[string]any{
				"type":        "string",
				"enum":        []any{"focused", "confused", "distracted", "frustrated", "bored", "absent", "neutral"},
				"description": "Dominant visible state; absent when no face is visible",
			},
			"summary": map[string]any{
				"type":        "string",
				"description": "One short sentence describing the visible cues",
			},
		},
		"required":             []any{"confusion_score", "mood", "summary"},
		"additionalProperties": false,
	},
}
