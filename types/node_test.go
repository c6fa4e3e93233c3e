package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLLMParams_Validate(t *testing.T) {
	valid := LLMParams{
		Provider:    ProviderOpenAI,
		Model:       "gpt-4o-mini",
		APIKeyName:  "OPENAI_API_KEY",
		Temperature: 0.7,
	}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(*LLMParams)
	}{
		{"unknown provider", func(p *LLMParams) { p.Provider = "azure" }},
		{"missing model", func(p *LLMParams) { p.Model = "" }},
		{"temperature too high", func(p *LLMParams) { p.Temperature = 2.5 }},
		{"temperature negative", func(p *LLMParams) { p.Temperature = -0.1 }},
		{"negative max tokens", func(p *LLMParams) { p.MaxTokens = -1 }},
		{"missing api key name", func(p *LLMParams) { p.APIKeyName = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := valid
			tt.mutate(&p)
			assert.Error(t, p.Validate())
		})
	}
}

func TestLLMParams_Validate_SelfHosted(t *testing.T) {
	p := LLMParams{
		Provider:    ProviderSelfHosted,
		Model:       "llama3",
		BaseURL:     "http://localhost:11434/v1",
		Temperature: 1.0,
	}
	// Self-hosted providers need a base URL but no key name.
	require.NoError(t, p.Validate())

	p.BaseURL = ""
	assert.Error(t, p.Validate())

	p.BaseURL = "ftp://example.com"
	assert.Error(t, p.Validate())
}

func TestToolParams_Validate(t *testing.T) {
	assert.NoError(t, ToolParams{Endpoint: "https://tools.example.com/mcp"}.Validate())
	assert.Error(t, ToolParams{}.Validate())
	assert.Error(t, ToolParams{Endpoint: "not a url"}.Validate())
	assert.Error(t, ToolParams{Endpoint: "/relative/path"}.Validate())
}

func TestA2AParams_Validate(t *testing.T) {
	assert.NoError(t, A2AParams{BaseURL: "http://agent.internal:9000"}.Validate())
	assert.Error(t, A2AParams{BaseURL: "agent.internal"}.Validate())
}

func TestParams_NodeType(t *testing.T) {
	assert.Equal(t, NodeLLM, LLMParams{}.NodeType())
	assert.Equal(t, NodeTool, ToolParams{}.NodeType())
	assert.Equal(t, NodeA2A, A2AParams{}.NodeType())
}

func TestNodeType_Valid(t *testing.T) {
	for _, nt := range []NodeType{NodeStart, NodeEnd, NodeLLM, NodeTool, NodeA2A} {
		assert.True(t, nt.Valid(), string(nt))
	}
	assert.False(t, NodeType("ConditionNode").Valid())
	assert.False(t, NodeType("").Valid())
}
