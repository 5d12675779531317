// Package llm is a thin provider-neutral layer over hosted language models.
// Callers build a Request, optionally with a JSON schema, and get back
// validated JSON content plus token usage.
package llm

import (
	"context"
	"encoding/json"
	"fmt"
)

// Provider generates a response for a request.
type Provider interface {
	// Generate sends req to the model. When req.Schema is set the returned
	// Content is JSON that validates against it.
	Generate(ctx context.Context, req Request) (*Response, error)

	// ModelID returns the model identifier requests are sent to.
	ModelID() string
}

// Named is implemented by providers that report a vendor name
// ("anthropic", "openai", ...) for event logging.
type Named interface {
	ProviderName() string
}

// ProviderName returns p's vendor name, or its model ID when p does not
// implement Named.
func ProviderName(p Provider) string {
	if n, ok := p.(Named); ok {
		return n.ProviderName()
	}
	return p.ModelID()
}

// Request describes one generation call.
type Request struct {
	System   string
	Messages []Message

	// Schema asks for structured JSON output. Nil means free text.
	Schema *Schema

	MaxTokens int

	// Temperature in [0, 1]. Zero leaves the provider default.
	Temperature float64
}

// Message is a single conversation turn.
type Message struct {
	Role    Role
	Content string
}

// Role is the sender of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// UserPrompt builds the common single-turn request.
func UserPrompt(system, prompt string) Request {
	return Request{
		System:   system,
		Messages: []Message{{Role: RoleUser, Content: prompt}},
	}
}

// Schema names a JSON Schema the response must satisfy.
type Schema struct {
	// Name is a kebab-case identifier, e.g. "level-up-message". It doubles
	// as the cache key for the compiled schema.
	Name        string
	Description string
	Definition  map[string]any
}

// Response is a model's output.
type Response struct {
	Content    json.RawMessage
	Usage      Usage
	Model      string
	StopReason string // "end" or "max_tokens"
}

// Decode unmarshals the response content into v.
func (r *Response) Decode(v any) error {
	if err := json.Unmarshal(r.Content, v); err != nil {
		return fmt.Errorf("decode LLM response: %w", err)
	}
	return nil
}

// Usage counts tokens for a single call.
type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}

// Stop reasons normalized across providers.
const (
	StopEnd       = "end"
	StopMaxTokens = "max_tokens"
)

// resolveModel maps a short alias to a full model ID. Unknown names pass
// through so any model the vendor serves can be configured directly.
func resolveModel(name string, aliases map[string]string) string {
	if id, ok := aliases[name]; ok {
		return id
	}
	return name
}
