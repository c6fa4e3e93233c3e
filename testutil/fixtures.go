package testutil

import (
	"github.com/flowcanvas/flowcanvas/graph"
	"github.com/flowcanvas/flowcanvas/types"
)

// MinimalGraph returns the smallest valid workflow: Start wired straight
// to End.
func MinimalGraph() *graph.Graph {
	return &graph.Graph{
		Name: "minimal",
		Nodes: []graph.Node{
			{ID: "start", Type: types.NodeStart, Name: "Start"},
			{ID: "end", Type: types.NodeEnd, Name: "End"},
		},
		Edges: []graph.Edge{
			{ID: "e1", Source: "start", Target: "end"},
		},
	}
}

// LinearGraph returns a Start -> LLM -> End workflow with a configured
// OpenAI model.
func LinearGraph() *graph.Graph {
	return &graph.Graph{
		Name: "linear",
		Nodes: []graph.Node{
			{ID: "start", Type: types.NodeStart, Name: "Start"},
			{ID: "llm", Type: types.NodeLLM, Name: "Assistant", Params: types.LLMParams{
				Provider:    types.ProviderOpenAI,
				Model:       "gpt-4o-mini",
				APIKeyName:  "OPENAI_API_KEY",
				Temperature: 0.7,
			}},
			{ID: "end", Type: types.NodeEnd, Name: "End"},
		},
		Edges: []graph.Edge{
			{ID: "e1", Source: "start", Target: "llm", TargetHandle: types.HandleDirect},
			{ID: "e2", Source: "llm", Target: "end"},
		},
	}
}

// ToolGraph extends LinearGraph with a Tool node feeding the LLM's tool
// handle.
func ToolGraph() *graph.Graph {
	g := LinearGraph()
	g.Name = "with-tool"
	g.Nodes = append(g.Nodes, graph.Node{
		ID: "search", Type: types.NodeTool, Name: "Search",
		Params: types.ToolParams{Endpoint: "https://tools.example.com/search"},
	})
	g.Edges = append(g.Edges, graph.Edge{
		ID: "e3", Source: "search", Target: "llm",
		SourceHandle: types.HandleTool, TargetHandle: types.HandleTool,
	})
	return g
}
