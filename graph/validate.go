package graph

import (
	"fmt"

	"github.com/flowcanvas/flowcanvas/types"
)

// Candidate is a proposed edge before it is materialized.
type Candidate struct {
	Source       string
	Target       string
	SourceHandle types.Handle
	TargetHandle types.Handle
}

// RejectRule labels which connection rule refused a candidate edge. Used
// for metrics only; callers of CanConnect see a plain boolean.
type RejectRule string

const (
	RejectSelfLoop       RejectRule = "self_loop"
	RejectMissingNode    RejectRule = "missing_node"
	RejectStartTarget    RejectRule = "start_target"
	RejectEndSource      RejectRule = "end_source"
	RejectToolTarget     RejectRule = "tool_target"
	RejectToolWiring     RejectRule = "tool_wiring"
	RejectHandleMismatch RejectRule = "handle_mismatch"
	RejectToolOccupied   RejectRule = "tool_handle_occupied"
	RejectDirectOccupied RejectRule = "direct_handle_occupied"
)

// CanConnect reports whether the candidate edge is topologically legal
// given the current graph. It is a pure predicate: the graph is never
// mutated and identical inputs always yield identical results.
func CanConnect(g *Graph, c Candidate) bool {
	_, ok := checkConnect(g, c)
	return ok
}

// ExplainConnect is CanConnect with the refusing rule exposed, so callers
// can count rejections without the predicate losing its boolean contract.
func ExplainConnect(g *Graph, c Candidate) (RejectRule, bool) {
	return checkConnect(g, c)
}

// checkConnect evaluates the connection rules in order; the first failing
// rule is returned for observability.
func checkConnect(g *Graph, c Candidate) (RejectRule, bool) {
	if c.Source == c.Target {
		return RejectSelfLoop, false
	}

	source, ok := g.NodeByID(c.Source)
	if !ok {
		return RejectMissingNode, false
	}
	target, ok := g.NodeByID(c.Target)
	if !ok {
		return RejectMissingNode, false
	}

	if target.Type == types.NodeStart {
		return RejectStartTarget, false
	}
	if source.Type == types.NodeEnd {
		return RejectEndSource, false
	}
	if target.Type == types.NodeTool {
		return RejectToolTarget, false
	}

	// Tool nodes feed exclusively into an LLM's tool handle, and only Tool
	// nodes may fill that slot.
	if source.Type == types.NodeTool {
		if target.Type != types.NodeLLM || c.TargetHandle != types.HandleTool {
			return RejectToolWiring, false
		}
	} else if c.TargetHandle == types.HandleTool {
		return RejectHandleMismatch, false
	}

	if c.TargetHandle == types.HandleTool && g.HandleOccupied(c.Target, types.HandleTool) {
		return RejectToolOccupied, false
	}
	if target.Type == types.NodeLLM && c.TargetHandle == types.HandleDirect &&
		g.HandleOccupied(c.Target, types.HandleDirect) {
		return RejectDirectOccupied, false
	}

	return "", true
}

// Validate lints a whole graph document, typically after loading it from a
// file: ids must be unique, params must pass per-type validation, and every
// edge must satisfy the connection rules it would have been gated by in the
// builder.
func Validate(g *Graph) error {
	nodeIDs := make(map[string]struct{}, len(g.Nodes))
	for _, n := range g.Nodes {
		if n.ID == "" {
			return types.NewError(types.ErrInvalidGraph, "node with empty id")
		}
		if _, dup := nodeIDs[n.ID]; dup {
			return types.NewError(types.ErrInvalidGraph, fmt.Sprintf("duplicate node id %q", n.ID))
		}
		nodeIDs[n.ID] = struct{}{}

		if !n.Type.Valid() {
			return types.NewError(types.ErrInvalidGraph, fmt.Sprintf("node %s: unknown type %q", n.ID, n.Type))
		}
		switch n.Type {
		case types.NodeStart, types.NodeEnd:
			if n.Params != nil {
				return types.NewError(types.ErrInvalidGraph, fmt.Sprintf("node %s: %s nodes take no params", n.ID, n.Type))
			}
		default:
			if n.Params == nil {
				return types.NewError(types.ErrInvalidGraph, fmt.Sprintf("node %s: %s node missing params", n.ID, n.Type))
			}
			if n.Params.NodeType() != n.Type {
				return types.NewError(types.ErrInvalidGraph, fmt.Sprintf("node %s: params are for %s, node is %s", n.ID, n.Params.NodeType(), n.Type))
			}
			if err := n.Params.Validate(); err != nil {
				return types.NewError(types.ErrInvalidGraph, fmt.Sprintf("node %s: %v", n.ID, err))
			}
		}
	}

	edgeIDs := make(map[string]struct{}, len(g.Edges))
	// Edges are re-checked against an incrementally grown graph so the
	// handle-occupancy rules see exactly the edges admitted before them.
	staging := Graph{Name: g.Name, Nodes: g.Nodes}
	for _, e := range g.Edges {
		if e.ID == "" {
			return types.NewError(types.ErrInvalidGraph, "edge with empty id")
		}
		if _, dup := edgeIDs[e.ID]; dup {
			return types.NewError(types.ErrInvalidGraph, fmt.Sprintf("duplicate edge id %q", e.ID))
		}
		edgeIDs[e.ID] = struct{}{}

		c := Candidate{Source: e.Source, Target: e.Target, SourceHandle: e.SourceHandle, TargetHandle: e.TargetHandle}
		if rule, ok := checkConnect(&staging, c); !ok {
			return types.NewError(types.ErrInvalidGraph, fmt.Sprintf("edge %s (%s -> %s): rejected by %s rule", e.ID, e.Source, e.Target, rule))
		}
		staging.Edges = append(staging.Edges, e)
	}

	return nil
}
