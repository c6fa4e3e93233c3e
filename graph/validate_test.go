package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowcanvas/flowcanvas/types"
)

// rig builds the standard test graph: Start, two LLMs, a Tool, an A2A node,
// and an End node, with no edges.
func rig() *Graph {
	return &Graph{
		Name: "test-workflow",
		Nodes: []Node{
			{ID: "start", Type: types.NodeStart, Name: "Start"},
			{ID: "llm-1", Type: types.NodeLLM, Name: "Assistant", Params: types.LLMParams{
				Provider: types.ProviderOpenAI, Model: "gpt-4o-mini", APIKeyName: "OPENAI_API_KEY", Temperature: 0.7,
			}},
			{ID: "llm-2", Type: types.NodeLLM, Name: "Critic", Params: types.LLMParams{
				Provider: types.ProviderGoogle, Model: "gemini-2.5-flash", APIKeyName: "GOOGLE_API_KEY", Temperature: 0.2,
			}},
			{ID: "tool-1", Type: types.NodeTool, Name: "Search", Params: types.ToolParams{
				Endpoint: "https://tools.example.com/mcp",
			}},
			{ID: "a2a-1", Type: types.NodeA2A, Name: "Remote Agent", Params: types.A2AParams{
				BaseURL: "https://agent.example.com",
			}},
			{ID: "end", Type: types.NodeEnd, Name: "End"},
		},
	}
}

func TestCanConnect_RuleOrder(t *testing.T) {
	g := rig()

	tests := []struct {
		name string
		c    Candidate
		want bool
	}{
		{"self loop", Candidate{Source: "llm-1", Target: "llm-1"}, false},
		{"missing source", Candidate{Source: "ghost", Target: "llm-1"}, false},
		{"missing target", Candidate{Source: "llm-1", Target: "ghost"}, false},
		{"start as target", Candidate{Source: "llm-1", Target: "start"}, false},
		{"end as source", Candidate{Source: "end", Target: "llm-1"}, false},
		{"tool as target", Candidate{Source: "llm-1", Target: "tool-1"}, false},
		{"tool into llm tool handle", Candidate{Source: "tool-1", Target: "llm-1", TargetHandle: types.HandleTool}, true},
		{"tool into llm direct handle", Candidate{Source: "tool-1", Target: "llm-1", TargetHandle: types.HandleDirect}, false},
		{"tool into a2a", Candidate{Source: "tool-1", Target: "a2a-1"}, false},
		{"tool into end", Candidate{Source: "tool-1", Target: "end"}, false},
		{"llm into llm tool handle", Candidate{Source: "llm-2", Target: "llm-1", TargetHandle: types.HandleTool}, false},
		{"start into llm direct", Candidate{Source: "start", Target: "llm-1", TargetHandle: types.HandleDirect}, true},
		{"llm into end", Candidate{Source: "llm-1", Target: "end"}, true},
		{"llm into a2a", Candidate{Source: "llm-1", Target: "a2a-1"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanConnect(g, tt.c))
		})
	}
}

func TestCanConnect_HandleOccupancy(t *testing.T) {
	g := rig()
	g.Edges = []Edge{
		{ID: "e1", Source: "start", Target: "llm-1", TargetHandle: types.HandleDirect},
		{ID: "e2", Source: "tool-1", Target: "llm-1", TargetHandle: types.HandleTool},
	}

	// Both LLM handles are taken.
	assert.False(t, CanConnect(g, Candidate{Source: "a2a-1", Target: "llm-1", TargetHandle: types.HandleDirect}))
	assert.False(t, CanConnect(g, Candidate{Source: "tool-1", Target: "llm-1", TargetHandle: types.HandleTool}))

	// The second LLM's handles are still free.
	assert.True(t, CanConnect(g, Candidate{Source: "llm-1", Target: "llm-2", TargetHandle: types.HandleDirect}))
	assert.True(t, CanConnect(g, Candidate{Source: "tool-1", Target: "llm-2", TargetHandle: types.HandleTool}))
}

func TestCanConnect_UnboundedDefaultFanIn(t *testing.T) {
	// End and A2A default handles accept any number of predecessors.
	g := rig()
	g.Edges = []Edge{
		{ID: "e1", Source: "llm-1", Target: "end"},
		{ID: "e2", Source: "llm-2", Target: "end"},
	}
	assert.True(t, CanConnect(g, Candidate{Source: "a2a-1", Target: "end"}))
}

func TestCanConnect_IsPure(t *testing.T) {
	g := rig()
	g.Edges = []Edge{{ID: "e1", Source: "start", Target: "llm-1", TargetHandle: types.HandleDirect}}
	before := g.Clone()

	c := Candidate{Source: "llm-1", Target: "end"}
	first := CanConnect(g, c)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, CanConnect(g, c))
	}
	assert.Equal(t, before, *g)
}

func TestValidate(t *testing.T) {
	g := rig()
	g.Edges = []Edge{
		{ID: "e1", Source: "start", Target: "llm-1", TargetHandle: types.HandleDirect},
		{ID: "e2", Source: "tool-1", Target: "llm-1", TargetHandle: types.HandleTool},
		{ID: "e3", Source: "llm-1", Target: "end"},
	}
	require.NoError(t, Validate(g))
}

func TestValidate_Rejections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Graph)
	}{
		{"duplicate node id", func(g *Graph) { g.Nodes = append(g.Nodes, Node{ID: "llm-1", Type: types.NodeEnd, Name: "dup"}) }},
		{"unknown node type", func(g *Graph) { g.Nodes[1].Type = "ConditionNode" }},
		{"params on start node", func(g *Graph) { g.Nodes[0].Params = types.ToolParams{Endpoint: "https://x.example"} }},
		{"missing llm params", func(g *Graph) { g.Nodes[1].Params = nil }},
		{"mismatched params variant", func(g *Graph) { g.Nodes[1].Params = types.A2AParams{BaseURL: "https://x.example"} }},
		{"invalid llm params", func(g *Graph) {
			p := g.Nodes[1].Params.(types.LLMParams)
			p.Temperature = 9
			g.Nodes[1].Params = p
		}},
		{"edge to missing node", func(g *Graph) { g.Edges = append(g.Edges, Edge{ID: "bad", Source: "start", Target: "ghost"}) }},
		{"edge into tool node", func(g *Graph) { g.Edges = append(g.Edges, Edge{ID: "bad", Source: "start", Target: "tool-1"}) }},
		{"duplicate edge id", func(g *Graph) {
			g.Edges = append(g.Edges, Edge{ID: "dup", Source: "start", Target: "llm-1", TargetHandle: types.HandleDirect})
			g.Edges = append(g.Edges, Edge{ID: "dup", Source: "llm-1", Target: "end"})
		}},
		{"double direct handle", func(g *Graph) {
			g.Edges = append(g.Edges,
				Edge{ID: "e1", Source: "start", Target: "llm-1", TargetHandle: types.HandleDirect},
				Edge{ID: "e2", Source: "a2a-1", Target: "llm-1", TargetHandle: types.HandleDirect},
			)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := rig()
			tt.mutate(g)
			err := Validate(g)
			require.Error(t, err)
			assert.Equal(t, types.ErrInvalidGraph, types.GetErrorCode(err))
		})
	}
}
