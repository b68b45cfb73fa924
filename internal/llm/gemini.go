package llm

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"
)

// geminiModels maps friendly names to Gemini model IDs.
var geminiModels = map[string]string{
	"gemini-flash": "gemini-2.5-flash",
	"gemini-pro":   "gemini-2.5-pro",
}

// geminiSafetyStops are candidate finish reasons that mean the answer
// was withheld rather than completed.
var geminiSafetyStops = map[genai.FinishReason]bool{
	"SAFETY":             true,
	"PROHIBITED_CONTENT": true,
	"BLOCKLIST":          true,
	"SPII":               true,
	"IMAGE_SAFETY":       true,
}

// GeminiProvider implements Provider using the Google Gemini SDK.
type GeminiProvider struct {
	client *genai.Client
	model  string
}

// NewGeminiProvider creates a new Gemini provider.
func NewGeminiProvider(ctx context.Context, cfg GeminiConfig) (*GeminiProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create Gemini client: %w", err)
	}
	return &GeminiProvider{client: client, model: resolveModel(cfg.Model, geminiModels)}, nil
}

func (p *GeminiProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	config := &genai.GenerateContentConfig{MaxOutputTokens: int32(req.MaxTokens)}
	if req.Temperature > 0 {
		config.Temperature = genai.Ptr(float32(req.Temperature))
	}
	if req.System != "" {
		config.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: req.System}}}
	}
	if req.Schema != nil {
		config.ResponseMIMEType = "application/json"
		config.ResponseSchema = buildGeminiSchema(req.Schema.Definition)
	}

	result, err := p.client.Models.GenerateContent(ctx, p.model, buildGeminiContents(req.Messages), config)
	if err != nil {
		var apiErr *genai.APIError
		if errors.As(err, &apiErr) {
			return nil, classifyStatus(apiErr.Code, 0, err)
		}
		return nil, &ErrProviderUnavailable{Err: err}
	}

	c := completion{model: p.model, stop: stopEnd}
	if reason := geminiBlockReason(result); reason != "" {
		c.stop, c.reason = stopRefused, reason
	} else {
		c.text = result.Text()
		if len(result.Candidates) > 0 && result.Candidates[0].FinishReason == genai.FinishReasonMaxTokens {
			c.stop = stopMaxTokens
		}
	}
	if u := result.UsageMetadata; u != nil {
		c.usage = Usage{
			InputTokens:  int(u.PromptTokenCount),
			OutputTokens: int(u.CandidatesTokenCount),
			TotalTokens:  int(u.TotalTokenCount),
		}
	}
	return finish(req, c)
}

func (p *GeminiProvider) ModelID() string {
	return p.model
}

// buildGeminiContents inlines images on user turns. Gemini calls the
// assistant role "model".
func buildGeminiContents(msgs []Message) []*genai.Content {
	out := make([]*genai.Content, len(msgs))
	for i, m := range msgs {
		parts := []*genai.Part{{Text: m.Content}}
		if m.Role == RoleAssistant {
			out[i] = &genai.Content{Role: "model", Parts: parts}
			continue
		}
		for _, img := range m.Images {
			parts = append(parts, &genai.Part{InlineData: &genai.Blob{MIMEType: img.MIMEType, Data: img.Data}})
		}
		out[i] = &genai.Content{Role: "user", Parts: parts}
	}
	return out
}

var geminiTypes = map[string]genai.Type{
	"string":  genai.TypeString,
	"number":  genai.TypeNumber,
	"integer": genai.TypeInteger,
	"boolean": genai.TypeBoolean,
	"array":   genai.TypeArray,
	"object":  genai.TypeObject,
}

// buildGeminiSchema converts the JSON Schema subset used by our prompts
// into a genai.Schema, including numeric and array bounds.
func buildGeminiSchema(def map[string]any) *genai.Schema {
	schema := &genai.Schema{Type: genai.TypeString}
	if t, ok := geminiTypes[stringField(def, "type")]; ok {
		schema.Type = t
	}
	schema.Description = stringField(def, "description")

	if props, ok := def["properties"].(map[string]any); ok {
		schema.Properties = make(map[string]*genai.Schema, len(props))
		for k, v := range props {
			if sub, ok := v.(map[string]any); ok {
				schema.Properties[k] = buildGeminiSchema(sub)
			}
		}
	}
	if items, ok := def["items"].(map[string]any); ok {
		schema.Items = buildGeminiSchema(items)
	}
	schema.Required = stringList(def["required"])
	schema.Enum = stringList(def["enum"])

	if v, ok := numberField(def, "minimum"); ok {
		schema.Minimum = genai.Ptr(v)
	}
	if v, ok := numberField(def, "maximum"); ok {
		schema.Maximum = genai.Ptr(v)
	}
	if v, ok := numberField(def, "minItems"); ok {
		schema.MinItems = genai.Ptr(int64(v))
	}
	if v, ok := numberField(def, "maxItems"); ok {
		schema.MaxItems = genai.Ptr(int64(v))
	}
	return schema
}

func stringField(def map[string]any, key string) string {
	s, _ := def[key].(string)
	return s
}

func stringList(v any) []string {
	list, _ := v.([]any)
	var out []string
	for _, e := range list {
		if s, ok := e.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// numberField reads a numeric keyword whether it was written as a Go int
// or decoded from JSON as float64.
func numberField(def map[string]any, key string) (float64, bool) {
	switch n := def[key].(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

// geminiBlockReason returns the safety reason when the prompt or the
// answer was blocked, or "" otherwise.
func geminiBlockReason(result *genai.GenerateContentResponse) string {
	if fb := result.PromptFeedback; fb != nil && fb.BlockReason != "" {
		return string(fb.BlockReason)
	}
	if len(result.Candidates) > 0 && geminiSafetyStops[result.Candidates[0].FinishReason] {
		return string(result.Candidates[0].FinishReason)
	}
	return ""
}
