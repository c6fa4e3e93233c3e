package types

import (
	"fmt"
	"net/url"
)

// NodeType identifies the kind of a workflow node. The values match the
// backend engine's type discriminators and appear verbatim on the wire.
type NodeType string

const (
	NodeStart NodeType = "START"
	NodeEnd   NodeType = "END"
	NodeLLM   NodeType = "LLMNode"
	NodeTool  NodeType = "ToolNode"
	NodeA2A   NodeType = "A2ANode"
)

// Valid reports whether t is one of the known node types.
func (t NodeType) Valid() bool {
	switch t {
	case NodeStart, NodeEnd, NodeLLM, NodeTool, NodeA2A:
		return true
	}
	return false
}

// Handle names the input slots a node exposes. LLM nodes accept one edge
// on each handle; every other node type has only the default handle.
type Handle string

const (
	HandleDirect Handle = "direct"
	HandleTool   Handle = "tool"
)

// ModelProvider identifies the upstream LLM vendor for an LLM node.
type ModelProvider string

const (
	ProviderOpenAI     ModelProvider = "openai"
	ProviderGoogle     ModelProvider = "google_genai"
	ProviderSelfHosted ModelProvider = "self-hosted"
)

// Params is the closed set of per-type node parameter records. Each node
// type with configuration carries exactly one variant; Start and End nodes
// carry none (a nil Params).
type Params interface {
	// NodeType returns the node type the variant belongs to.
	NodeType() NodeType
	// Validate checks the variant's fields against the backend's schema.
	Validate() error
}

// LLMParams configures an LLM node.
type LLMParams struct {
	Provider     ModelProvider `json:"provider" yaml:"provider"`
	Model        string        `json:"model" yaml:"model"`
	APIKeyName   string        `json:"api_key_name,omitempty" yaml:"api_key_name,omitempty"`
	BaseURL      string        `json:"base_url,omitempty" yaml:"base_url,omitempty"`
	Temperature  float64       `json:"temperature" yaml:"temperature"`
	MaxTokens    int           `json:"max_tokens,omitempty" yaml:"max_tokens,omitempty"`
	SystemPrompt string        `json:"system_prompt,omitempty" yaml:"system_prompt,omitempty"`
}

func (p LLMParams) NodeType() NodeType { return NodeLLM }

func (p LLMParams) Validate() error {
	switch p.Provider {
	case ProviderOpenAI, ProviderGoogle, ProviderSelfHosted:
	default:
		return fmt.Errorf("unknown model provider %q", p.Provider)
	}
	if p.Model == "" {
		return fmt.Errorf("model is required")
	}
	if p.Temperature < 0 || p.Temperature > 2 {
		return fmt.Errorf("temperature must be between 0 and 2, got %g", p.Temperature)
	}
	if p.MaxTokens < 0 {
		return fmt.Errorf("max_tokens must be non-negative, got %d", p.MaxTokens)
	}
	// Self-hosted models are reached through an explicit endpoint; hosted
	// providers resolve their key from the environment by name.
	if p.Provider == ProviderSelfHosted {
		if err := validateHTTPURL(p.BaseURL); err != nil {
			return fmt.Errorf("base_url: %w", err)
		}
	} else if p.APIKeyName == "" {
		return fmt.Errorf("api_key_name is required for provider %q", p.Provider)
	}
	return nil
}

// ToolParams configures a Tool node.
type ToolParams struct {
	Endpoint string `json:"tool_endpoint" yaml:"tool_endpoint"`
}

func (p ToolParams) NodeType() NodeType { return NodeTool }

func (p ToolParams) Validate() error {
	if err := validateHTTPURL(p.Endpoint); err != nil {
		return fmt.Errorf("tool_endpoint: %w", err)
	}
	return nil
}

// A2AParams configures an agent-to-agent node.
type A2AParams struct {
	BaseURL string `json:"api_base_url" yaml:"api_base_url"`
}

func (p A2AParams) NodeType() NodeType { return NodeA2A }

func (p A2AParams) Validate() error {
	if err := validateHTTPURL(p.BaseURL); err != nil {
		return fmt.Errorf("api_base_url: %w", err)
	}
	return nil
}

func validateHTTPURL(raw string) error {
	if raw == "" {
		return fmt.Errorf("url is required")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid url %q: %w", raw, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("url %q must use http or https", raw)
	}
	if u.Host == "" {
		return fmt.Errorf("url %q has no host", raw)
	}
	return nil
}
