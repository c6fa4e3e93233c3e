// Package mockbackend is a scripted stand-in for the workflow execution
// engine, used for local development and end-to-end tests. It validates
// the invocation payload the way the engine's schema layer would and
// replays a configurable list of stream records; it executes nothing.
package mockbackend

import (
	"encoding/json"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/flowcanvas/flowcanvas/session"
	"github.com/flowcanvas/flowcanvas/types"
	"github.com/flowcanvas/flowcanvas/wire"
)

// Handler serves the engine's invoke route with scripted responses.
type Handler struct {
	script Script
	logger *zap.Logger
}

// NewHandler creates a mock backend handler. An empty script falls back
// to DefaultScript.
func NewHandler(script Script, logger *zap.Logger) *Handler {
	if len(script.Records) == 0 {
		script = DefaultScript()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{script: script, logger: logger.With(zap.String("component", "mockbackend"))}
}

// Mux returns the handler mounted on the engine's route.
func (h *Handler) Mux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("POST "+session.DefaultInvokePath, h.handleInvoke)
	return mux
}

func (h *Handler) handleInvoke(w http.ResponseWriter, r *http.Request) {
	var req wire.InvokeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.reject(w, fmt.Sprintf("malformed request body: %v", err))
		return
	}
	if err := validatePayload(req.Workflow); err != nil {
		h.logger.Warn("rejecting workflow", zap.Error(err))
		h.reject(w, err.Error())
		return
	}

	h.logger.Info("invoking workflow",
		zap.String("workflow_id", req.Workflow.WorkflowID),
		zap.String("query", req.Query),
		zap.Int("nodes", len(req.Workflow.Nodes)),
	)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}

	node := replyNode(req.Workflow)
	for _, rec := range h.script.Records {
		for _, frame := range rec.frames(node) {
			payload, err := json.Marshal(frame)
			if err != nil {
				h.logger.Error("failed to encode frame", zap.Error(err))
				continue
			}
			fmt.Fprintf(w, "data: %s\n\n", payload)
			flusher.Flush()
		}
	}

	fmt.Fprint(w, "data: [DONE]\n\n")
	flusher.Flush()
}

// reject mirrors the engine's schema-rejection shape: 422 with a detail
// field.
func (h *Handler) reject(w http.ResponseWriter, detail string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnprocessableEntity)
	json.NewEncoder(w).Encode(map[string]string{"detail": detail}) //nolint:errcheck
}

// validatePayload applies the checks the engine's schema layer performs on
// an invocation payload.
func validatePayload(p *wire.Payload) error {
	if p == nil {
		return fmt.Errorf("workflow is required")
	}
	if p.WorkflowID == "" {
		return fmt.Errorf("workflow_id is required")
	}
	if len(p.Nodes) == 0 {
		return fmt.Errorf("workflow has no nodes")
	}

	nodeIDs := make(map[string]struct{}, len(p.Nodes))
	for _, n := range p.Nodes {
		if n.NodeID == "" {
			return fmt.Errorf("node with empty node_id")
		}
		nodeIDs[n.NodeID] = struct{}{}
		switch n.Type {
		case types.NodeStart, types.NodeEnd:
			if n.ParamDict != nil {
				return fmt.Errorf("node %s: %s nodes must not carry param_dict", n.NodeID, n.Type)
			}
		case types.NodeLLM, types.NodeTool, types.NodeA2A:
			if n.ParamDict == nil {
				return fmt.Errorf("node %s: %s nodes require param_dict", n.NodeID, n.Type)
			}
		default:
			return fmt.Errorf("node %s: unknown type %q", n.NodeID, n.Type)
		}
	}

	for _, c := range p.Connections {
		if c.Type != wire.ConnectionDirect && c.Type != wire.ConnectionTool {
			return fmt.Errorf("connection %s: unknown type %q", c.ConnectionID, c.Type)
		}
		if _, ok := nodeIDs[c.SourceNodeID]; !ok {
			return fmt.Errorf("connection %s: unknown source node %s", c.ConnectionID, c.SourceNodeID)
		}
		if _, ok := nodeIDs[c.DestinationNodeID]; !ok {
			return fmt.Errorf("connection %s: unknown destination node %s", c.ConnectionID, c.DestinationNodeID)
		}
	}
	return nil
}

// replyNode picks the node the scripted reply claims to come from: the
// first LLM node when there is one.
func replyNode(p *wire.Payload) types.NodeRef {
	for _, n := range p.Nodes {
		if n.Type == types.NodeLLM {
			return types.NodeRef{ID: n.NodeID, Name: n.Name}
		}
	}
	if len(p.Nodes) > 0 {
		return types.NodeRef{ID: p.Nodes[0].NodeID, Name: p.Nodes[0].Name}
	}
	return types.NodeRef{}
}
