// Package graph defines the workflow graph assembled in the visual builder
// and the connection rules that keep it well-formed.
package graph

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/flowcanvas/flowcanvas/types"
)

// Node is a single workflow unit on the canvas. Params is nil for Start and
// End nodes and holds the type-matching variant for LLM, Tool, and A2A
// nodes.
type Node struct {
	ID     string         `json:"id" yaml:"id"`
	Type   types.NodeType `json:"type" yaml:"type"`
	Name   string         `json:"name" yaml:"name"`
	Params types.Params   `json:"params,omitempty" yaml:"params,omitempty"`
}

// Edge is a directed link from a node's output to another node's input
// handle.
type Edge struct {
	ID           string       `json:"id" yaml:"id"`
	Source       string       `json:"source" yaml:"source"`
	Target       string       `json:"target" yaml:"target"`
	SourceHandle types.Handle `json:"source_handle,omitempty" yaml:"source_handle,omitempty"`
	TargetHandle types.Handle `json:"target_handle,omitempty" yaml:"target_handle,omitempty"`
}

// Graph is the canonical workflow document: a named node set plus edge set.
type Graph struct {
	Name  string `json:"name" yaml:"name"`
	Nodes []Node `json:"nodes" yaml:"nodes"`
	Edges []Edge `json:"edges" yaml:"edges"`
}

// NodeByID returns the node with the given id.
func (g *Graph) NodeByID(id string) (Node, bool) {
	for _, n := range g.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return Node{}, false
}

// HasNode reports whether a node with the given id exists.
func (g *Graph) HasNode(id string) bool {
	_, ok := g.NodeByID(id)
	return ok
}

// EdgesTouching returns every edge with the given node as either endpoint.
func (g *Graph) EdgesTouching(nodeID string) []Edge {
	var out []Edge
	for _, e := range g.Edges {
		if e.Source == nodeID || e.Target == nodeID {
			out = append(out, e)
		}
	}
	return out
}

// HandleOccupied reports whether some edge already terminates at the given
// target node on the given input handle.
func (g *Graph) HandleOccupied(targetID string, handle types.Handle) bool {
	for _, e := range g.Edges {
		if e.Target == targetID && e.TargetHandle == handle {
			return true
		}
	}
	return false
}

// Clone returns a deep copy of the graph. Params variants are value types,
// so copying the node slice copies them too.
func (g *Graph) Clone() Graph {
	out := Graph{Name: g.Name}
	out.Nodes = make([]Node, len(g.Nodes))
	copy(out.Nodes, g.Nodes)
	out.Edges = make([]Edge, len(g.Edges))
	copy(out.Edges, g.Edges)
	return out
}

// nodeAlias mirrors Node with the params field left raw so the variant can
// be picked by node type during decoding.
type nodeAlias struct {
	ID     string          `json:"id" yaml:"id"`
	Type   types.NodeType  `json:"type" yaml:"type"`
	Name   string          `json:"name" yaml:"name"`
	Params json.RawMessage `json:"params,omitempty" yaml:"-"`
}

// UnmarshalJSON decodes a node, selecting the params variant by node type.
func (n *Node) UnmarshalJSON(data []byte) error {
	var aux nodeAlias
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	n.ID = aux.ID
	n.Type = aux.Type
	n.Name = aux.Name
	n.Params = nil

	if !aux.Type.Valid() {
		return fmt.Errorf("node %s: unknown type %q", aux.ID, aux.Type)
	}
	if len(aux.Params) == 0 || string(aux.Params) == "null" {
		return nil
	}

	decode := func(v any) error {
		return json.Unmarshal(aux.Params, v)
	}
	return n.assignParams(decode)
}

// UnmarshalYAML decodes a node from YAML with the same variant selection.
func (n *Node) UnmarshalYAML(value *yaml.Node) error {
	var aux struct {
		ID     string         `yaml:"id"`
		Type   types.NodeType `yaml:"type"`
		Name   string         `yaml:"name"`
		Params yaml.Node      `yaml:"params"`
	}
	if err := value.Decode(&aux); err != nil {
		return err
	}
	n.ID = aux.ID
	n.Type = aux.Type
	n.Name = aux.Name
	n.Params = nil

	if !aux.Type.Valid() {
		return fmt.Errorf("node %s: unknown type %q", aux.ID, aux.Type)
	}
	if aux.Params.IsZero() {
		return nil
	}

	decode := func(v any) error {
		return aux.Params.Decode(v)
	}
	return n.assignParams(decode)
}

func (n *Node) assignParams(decode func(any) error) error {
	switch n.Type {
	case types.NodeLLM:
		var p types.LLMParams
		if err := decode(&p); err != nil {
			return fmt.Errorf("node %s: %w", n.ID, err)
		}
		n.Params = p
	case types.NodeTool:
		var p types.ToolParams
		if err := decode(&p); err != nil {
			return fmt.Errorf("node %s: %w", n.ID, err)
		}
		n.Params = p
	case types.NodeA2A:
		var p types.A2AParams
		if err := decode(&p); err != nil {
			return fmt.Errorf("node %s: %w", n.ID, err)
		}
		n.Params = p
	case types.NodeStart, types.NodeEnd:
		return fmt.Errorf("node %s: %s nodes take no params", n.ID, n.Type)
	}
	return nil
}
