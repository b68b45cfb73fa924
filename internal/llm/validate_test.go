package llm

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

func questionTestSchema() *Schema {
	return &Schema{
		Name:        "test-question",
		Description: "A multiple-choice question",
		Definition: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"prompt": map[string]any{"type": "string"},
				"options": map[string]any{
					"type":     "array",
					"items":    map[string]any{"type": "string"},
					"minItems": 2,
				},
				"correct_index": map[string]any{"type": "integer", "minimum": 0},
				"difficulty":    map[string]any{"type": "string", "enum": []any{"easy", "medium", "hard"}},
			},
			"required": []any{"prompt", "options", "correct_index"},
		},
	}
}

func TestValidateResponse(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr bool
	}{
		{"valid", `{"prompt":"2+2?","options":["3","4"],"correct_index":1,"difficulty":"easy"}`, false},
		{"optional field omitted", `{"prompt":"2+2?","options":["3","4"],"correct_index":1}`, false},
		{"missing required", `{"prompt":"2+2?","options":["3","4"]}`, true},
		{"wrong type", `{"prompt":"2+2?","options":["3","4"],"correct_index":"one"}`, true},
		{"enum violation", `{"prompt":"2+2?","options":["3","4"],"correct_index":1,"difficulty":"brutal"}`, true},
		{"too few options", `{"prompt":"2+2?","options":["4"],"correct_index":0}`, true},
		{"negative index", `{"prompt":"2+2?","options":["3","4"],"correct_index":-1}`, true},
		{"wrong item type", `{"prompt":"2+2?","options":[3,4],"correct_index":1}`, true},
		{"malformed JSON", `{not json}`, true},
		{"empty body", ``, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateResponse(questionTestSchema(), json.RawMessage(tt.raw))
			if (err != nil) != tt.wantErr {
				t.Fatalf("validateResponse() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				var invErr *ErrInvalidResponse
				if !errors.As(err, &invErr) {
					t.Fatalf("expected ErrInvalidResponse, got %T", err)
				}
			}
		})
	}
}

func TestValidateResponse_NilSchema(t *testing.T) {
	if err := validateResponse(nil, json.RawMessage(`{"anything":"goes"}`)); err != nil {
		t.Fatalf("expected no error with nil schema, got: %v", err)
	}
}

func TestSchemaSet_ReusesCompiled(t *testing.T) {
	set := &schemaSet{compiled: map[string]*jsonschema.Schema{}}
	first, err := set.get(questionTestSchema())
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	second, err := set.get(questionTestSchema())
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	if first != second || set.size() != 1 {
		t.Fatalf("expected one reused compile, have %d", set.size())
	}
}

func TestSchemaSet_SameNameNewDefinition(t *testing.T) {
	loose := &Schema{Name: "attention", Definition: map[string]any{"type": "object"}}
	strict := &Schema{Name: "attention", Definition: map[string]any{
		"type":     "object",
		"required": []any{"confusion_score"},
	}}
	raw := json.RawMessage(`{"mood":"focused"}`)

	if err := validateResponse(loose, raw); err != nil {
		t.Fatalf("loose schema rejected: %v", err)
	}
	if err := validateResponse(strict, raw); err == nil {
		t.Fatal("strict schema accepted a response missing confusion_score")
	}
}
