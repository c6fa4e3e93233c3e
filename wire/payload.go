// Package wire builds the backend engine's invocation payload from a
// workflow graph. The field names follow the engine's schema exactly and
// must not drift.
package wire

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/flowcanvas/flowcanvas/graph"
	"github.com/flowcanvas/flowcanvas/types"
)

// ConnectionType is the engine-side discriminator for an edge.
type ConnectionType string

const (
	// ConnectionDirect is a plain uni-directional hop between nodes.
	ConnectionDirect ConnectionType = "direct"
	// ConnectionTool links a tool node into an LLM node's tool slot.
	ConnectionTool ConnectionType = "tool-connection"
)

// Payload is the workflow blueprint the engine accepts for invocation.
type Payload struct {
	WorkflowID  string       `json:"workflow_id"`
	Name        string       `json:"name"`
	Nodes       []Node       `json:"nodes"`
	Connections []Connection `json:"connections"`
}

// Node is one node entry in the payload. ParamDict is omitted entirely for
// Start and End nodes; the engine rejects an empty or null param_dict.
type Node struct {
	Type      types.NodeType `json:"type"`
	NodeID    string         `json:"node_id"`
	Name      string         `json:"name"`
	ParamDict any            `json:"param_dict,omitempty"`
}

// Connection is one edge entry in the payload.
type Connection struct {
	Type              ConnectionType `json:"type"`
	ConnectionID      string         `json:"connection_id"`
	SourceNodeID      string         `json:"source_node_id"`
	DestinationNodeID string         `json:"destination_node_id"`
}

// LLMParamDict carries an LLM node's model selection and sampling
// parameters.
type LLMParamDict struct {
	Model      ModelWrapper  `json:"model"`
	Parameters LLMParameters `json:"parameters"`
}

// ModelWrapper nests the provider config one level deep, matching the
// engine's discriminated-union envelope.
type ModelWrapper struct {
	Config ModelConfig `json:"config"`
}

// ModelConfig selects the provider, model, and credential for an LLM node.
type ModelConfig struct {
	ModelProvider types.ModelProvider `json:"model_provider"`
	Model         string              `json:"model"`
	APIKeyName    string              `json:"api_key_name,omitempty"`
	BaseURL       string              `json:"base_url,omitempty"`
}

// LLMParameters are the sampling parameters for an LLM node.
type LLMParameters struct {
	Temperature  float64 `json:"temperature"`
	MaxTokens    int     `json:"max_tokens,omitempty"`
	SystemPrompt string  `json:"system_prompt,omitempty"`
}

// ToolParamDict carries a tool node's endpoint.
type ToolParamDict struct {
	ToolEndpoint string `json:"tool_endpoint"`
}

// A2AParamDict carries an agent-to-agent node's base URL.
type A2AParamDict struct {
	APIBaseURL string `json:"api_base_url"`
}

// InvokeRequest is the body POSTed to the engine's invoke endpoint.
type InvokeRequest struct {
	Workflow *Payload `json:"workflow"`
	Query    string   `json:"query"`
}

// Serialize transforms a graph into the engine's invocation payload. The
// transform is pure and deterministic except for the freshly minted
// workflow id. The graph is expected to have passed graph.Validate; nodes
// with missing or mismatched params are reported as errors rather than
// silently serialized.
func Serialize(g *graph.Graph) (*Payload, error) {
	p := &Payload{
		WorkflowID:  uuid.NewString(),
		Name:        g.Name,
		Nodes:       make([]Node, 0, len(g.Nodes)),
		Connections: make([]Connection, 0, len(g.Edges)),
	}

	for _, n := range g.Nodes {
		out := Node{Type: n.Type, NodeID: n.ID, Name: n.Name}
		switch n.Type {
		case types.NodeStart, types.NodeEnd:
			// param_dict stays absent.
		case types.NodeLLM:
			params, ok := n.Params.(types.LLMParams)
			if !ok {
				return nil, fmt.Errorf("node %s: LLM node without LLM params", n.ID)
			}
			out.ParamDict = LLMParamDict{
				Model: ModelWrapper{Config: ModelConfig{
					ModelProvider: params.Provider,
					Model:         params.Model,
					APIKeyName:    params.APIKeyName,
					BaseURL:       params.BaseURL,
				}},
				Parameters: LLMParameters{
					Temperature:  params.Temperature,
					MaxTokens:    params.MaxTokens,
					SystemPrompt: params.SystemPrompt,
				},
			}
		case types.NodeTool:
			params, ok := n.Params.(types.ToolParams)
			if !ok {
				return nil, fmt.Errorf("node %s: Tool node without tool params", n.ID)
			}
			out.ParamDict = ToolParamDict{ToolEndpoint: params.Endpoint}
		case types.NodeA2A:
			params, ok := n.Params.(types.A2AParams)
			if !ok {
				return nil, fmt.Errorf("node %s: A2A node without A2A params", n.ID)
			}
			out.ParamDict = A2AParamDict{APIBaseURL: params.BaseURL}
		default:
			return nil, fmt.Errorf("node %s: unknown type %q", n.ID, n.Type)
		}
		p.Nodes = append(p.Nodes, out)
	}

	for _, e := range g.Edges {
		connType := ConnectionDirect
		if src, ok := g.NodeByID(e.Source); ok && src.Type == types.NodeTool {
			connType = ConnectionTool
		}
		p.Connections = append(p.Connections, Connection{
			Type:              connType,
			ConnectionID:      e.ID,
			SourceNodeID:      e.Source,
			DestinationNodeID: e.Target,
		})
	}

	return p, nil
}
