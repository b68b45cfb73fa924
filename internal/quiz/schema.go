package quiz

import "github.com/abhisek/quizwatch/internal/llm"

// QuestionSchema defines the JSON returned for question generation.
var QuestionSchema = &llm.Schema{
	Name:        "quiz-question",
	Description: "A single multiple-choice practice question",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"prompt": map[string]any{
				"type":        "string",
				"description": "The question shown to the learner, self-contained, plain text",
			},
			"options": map[string]any{
				"type":        "array",
				"items":       map[string]any{"type": "string"},
				"description": "Between 2 and 6 answer options; exactly one is correct",
			},
			"correct_index": map[string]any{
				"type":        "integer",
				"minimum":     0,
				"description": "Zero-based index of the correct option",
			},
			"difficulty": map[string]any{
				"type":        "string",
				"enum":        []any{"easy", "medium", "hard"},
				"description": "The difficulty the question was written at",
			},
		},
		"required":             []any{"prompt", "options", "correct_index", "difficulty"},
		"additionalProperties": false,
	},
}

// ExplanationSchema defines the JSON returned for explanations.
var ExplanationSchema = &llm.Schema{
	Name:        "quiz-explanation",
	Description: "A short explanation of a multiple-choice question's answer",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"summary": map[string]any{
				"type":        "string",
				"description": "One or two sentences stating why the correct answer is right",
			},
			"steps": map[string]any{
				"type":        "array",
				"items":       map[string]any{"type": "string"},
				"description": "Reasoning steps, at most 5",
			},
			"takeaway": map[string]any{
				"type":        "string",
				"description": "One sentence the learner should remember",
			},
		},
		"required":             []any{"summary", "steps", "takeaway"},
		"additionalProperties": false,
	},
}
