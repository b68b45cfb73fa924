package llm

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// schemaSet memoizes compiled schemas. Entries are keyed by name and a
// digest of the definition, so a prompt that reuses a name with a new
// definition (the attention schema varies with the session mode) never
// validates against a stale compile.
type schemaSet struct {
	mu       sync.Mutex
	compiled map[string]*jsonschema.Schema
}

var schemas = &schemaSet{compiled: map[string]*jsonschema.Schema{}}

// validateResponse checks raw JSON against schema. A nil schema accepts
// anything. Failures are *ErrInvalidResponse so the retry layer can tell
// them apart from transport errors.
func validateResponse(schema *Schema, raw json.RawMessage) error {
	if schema == nil {
		return nil
	}

	var parsed any
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return &ErrInvalidResponse{Content: raw, Err: fmt.Errorf("invalid JSON: %w", err)}
	}

	compiled, err := schemas.get(schema)
	if err != nil {
		return &ErrInvalidResponse{Content: raw, Err: fmt.Errorf("compile schema %q: %w", schema.Name, err)}
	}

	if err := compiled.Validate(parsed); err != nil {
		return &ErrInvalidResponse{Content: raw, Err: fmt.Errorf("schema validation failed: %w", err)}
	}
	return nil
}

func (s *schemaSet) get(schema *Schema) (*jsonschema.Schema, error) {
	def, err := json.Marshal(schema.Definition)
	if err != nil {
		return nil, fmt.Errorf("marshal schema definition: %w", err)
	}
	sum := sha256.Sum256(def)
	key := schema.Name + "@" + hex.EncodeToString(sum[:8])

	s.mu.Lock()
	defer s.mu.Unlock()

	if c, ok := s.compiled[key]; ok {
		return c, nil
	}

	// The compiler wants a decoded JSON value, not the Go map as given.
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(def))
	if err != nil {
		return nil, fmt.Errorf("parse schema definition: %w", err)
	}

	url := fmt.Sprintf("schema://%s.json", key)
	c := jsonschema.NewCompiler()
	if err := c.AddResource(url, doc); err != nil {
		return nil, fmt.Errorf("add resource: %w", err)
	}
	compiled, err := c.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("compile: %w", err)
	}

	s.compiled[key] = compiled
	return compiled, nil
}

// size reports how many compiled schemas are memoized.
func (s *schemaSet) size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.compiled)
}
