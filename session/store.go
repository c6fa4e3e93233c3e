// Package session owns the canonical state of one builder session: the
// workflow graph, the node selection, and the chat transcript. All
// mutation goes through a small set of named transactions; collaborators
// hold a *Store reference instead of reaching into shared globals.
package session

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/flowcanvas/flowcanvas/graph"
	"github.com/flowcanvas/flowcanvas/internal/metrics"
	"github.com/flowcanvas/flowcanvas/types"
)

// Store is the single mutation surface for a session. Transactions are
// synchronous and atomic: no intermediate graph or transcript state is
// ever observable.
type Store struct {
	mu       sync.RWMutex
	graph    graph.Graph
	selected string
	history  []types.ChatMessage

	logger  *zap.Logger
	metrics *metrics.Collector
}

// NewStore creates an empty session. logger may be nil; collector may be
// nil to disable metrics.
func NewStore(name string, logger *zap.Logger, collector *metrics.Collector) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		graph:   graph.Graph{Name: name},
		logger:  logger.With(zap.String("component", "session")),
		metrics: collector,
	}
}

// LoadGraph replaces the session graph with a validated document, e.g. a
// file loaded through the CLI. The transcript is left untouched.
func (s *Store) LoadGraph(g *graph.Graph) error {
	if err := graph.Validate(g); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.graph = g.Clone()
	s.selected = ""
	s.metrics.SetGraphSize(len(s.graph.Nodes), len(s.graph.Edges))
	return nil
}

// AddNode adds a node to the graph. An empty id is minted; a duplicate id
// or invalid params reject the transaction.
func (s *Store) AddNode(n graph.Node) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if s.graph.HasNode(n.ID) {
		return "", fmt.Errorf("node %s already exists", n.ID)
	}
	if !n.Type.Valid() {
		return "", fmt.Errorf("unknown node type %q", n.Type)
	}
	switch n.Type {
	case types.NodeStart, types.NodeEnd:
		if n.Params != nil {
			return "", fmt.Errorf("%s nodes take no params", n.Type)
		}
	default:
		if n.Params == nil || n.Params.NodeType() != n.Type {
			return "", fmt.Errorf("node params do not match type %s", n.Type)
		}
		if err := n.Params.Validate(); err != nil {
			return "", err
		}
	}

	s.graph.Nodes = append(s.graph.Nodes, n)
	s.metrics.SetGraphSize(len(s.graph.Nodes), len(s.graph.Edges))
	s.logger.Debug("node added", zap.String("node_id", n.ID), zap.String("type", string(n.Type)))
	return n.ID, nil
}

// RemoveNode deletes a node and every edge touching it. Removing an
// absent node is a no-op.
func (s *Store) RemoveNode(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.graph.HasNode(id) {
		return
	}

	nodes := s.graph.Nodes[:0]
	for _, n := range s.graph.Nodes {
		if n.ID != id {
			nodes = append(nodes, n)
		}
	}
	s.graph.Nodes = nodes

	edges := s.graph.Edges[:0]
	for _, e := range s.graph.Edges {
		if e.Source != id && e.Target != id {
			edges = append(edges, e)
		}
	}
	s.graph.Edges = edges

	if s.selected == id {
		s.selected = ""
	}
	s.metrics.SetGraphSize(len(s.graph.Nodes), len(s.graph.Edges))
	s.logger.Debug("node removed", zap.String("node_id", id))
}

// Connect materializes the candidate edge if the connection rules allow
// it. A rejection is not an error: the edge simply is not added and the
// second return is false.
func (s *Store) Connect(c graph.Candidate) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if rule, ok := graph.ExplainConnect(&s.graph, c); !ok {
		s.metrics.RecordConnectionRejected(string(rule))
		s.logger.Debug("connection rejected",
			zap.String("source", c.Source),
			zap.String("target", c.Target),
			zap.String("rule", string(rule)),
		)
		return "", false
	}

	edge := graph.Edge{
		ID:           uuid.NewString(),
		Source:       c.Source,
		Target:       c.Target,
		SourceHandle: c.SourceHandle,
		TargetHandle: c.TargetHandle,
	}
	s.graph.Edges = append(s.graph.Edges, edge)
	s.metrics.RecordConnectionAccepted()
	s.metrics.SetGraphSize(len(s.graph.Nodes), len(s.graph.Edges))
	return edge.ID, true
}

// RemoveEdge deletes one edge by id; absent ids are a no-op.
func (s *Store) RemoveEdge(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	edges := s.graph.Edges[:0]
	for _, e := range s.graph.Edges {
		if e.ID != id {
			edges = append(edges, e)
		}
	}
	s.graph.Edges = edges
	s.metrics.SetGraphSize(len(s.graph.Nodes), len(s.graph.Edges))
}

// UpdateParams replaces a node's params after validating them against the
// node's type. The graph topology is never touched.
func (s *Store) UpdateParams(nodeID string, params types.Params) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, n := range s.graph.Nodes {
		if n.ID != nodeID {
			continue
		}
		if params == nil || params.NodeType() != n.Type {
			return fmt.Errorf("params do not match node type %s", n.Type)
		}
		if err := params.Validate(); err != nil {
			return err
		}
		s.graph.Nodes[i].Params = params
		return nil
	}
	return fmt.Errorf("node %s not found", nodeID)
}

// Rename sets the workflow name.
func (s *Store) Rename(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.graph.Name = name
}

// Select marks a node as selected; an empty id clears the selection.
func (s *Store) Select(nodeID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selected = nodeID
}

// Selected returns the currently selected node id.
func (s *Store) Selected() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selected
}

// Snapshot returns a deep copy of the current graph for validation or
// serialization.
func (s *Store) Snapshot() graph.Graph {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.graph.Clone()
}

// AppendMessage appends one message to the transcript.
func (s *Store) AppendMessage(msg types.ChatMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = append(s.history, msg)
}

// ExtendLastMessage appends content to the last transcript entry in
// place. Only the stream ingestor's coalescing rule calls this.
func (s *Store) ExtendLastMessage(content string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.history) == 0 {
		return
	}
	s.history[len(s.history)-1].Content += content
}

// LastMessage returns the most recent transcript entry, if any.
func (s *Store) LastMessage() (types.ChatMessage, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.history) == 0 {
		return types.ChatMessage{}, false
	}
	return s.history[len(s.history)-1], true
}

// History returns a copy of the transcript.
func (s *Store) History() []types.ChatMessage {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]types.ChatMessage, len(s.history))
	copy(out, s.history)
	return out
}

// ResetChat clears the transcript. The graph is untouched.
func (s *Store) ResetChat() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = nil
}
