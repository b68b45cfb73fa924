package quiz

// Config controls the behavior of the LLMGenerator.
type Config struct {
	// Validators run in order on every generated question; the first
	// failure stops the pipeline.
	Validators []Validator

	// MaxTokens is the token budget for a question response.
	MaxTokens int

	// ExplanationMaxTokens is the token budget for an explanation.
	ExplanationMaxTokens int

	// Temperature controls LLM output randomness (0.0-1.0).
	Temperature float64

	// MaxPriorQuestions caps the dedup list included in the prompt.
	MaxPriorQuestions int
}

// DefaultConfig returns a Config with the standard validator chain.
func DefaultConfig() Config {
	return Config{
		Validators: []Validator{
			&StructuralValidator{},
			&OptionsValidator{},
			&RepeatValidator{},
		},
		MaxTokens:            600,
		ExplanationMaxTokens: 800,
		Temperature:          0.7,
		MaxPriorQuestions:    10,
	}
}
