package stream

import (
	"encoding/json"

	"github.com/flowcanvas/flowcanvas/types"
)

// record is the JSON object carried by one event record.
type record struct {
	Type       string           `json:"type"`
	Content    string           `json:"content"`
	Node       *nodeRef         `json:"node"`
	StreamType types.StreamType `json:"stream_type"`
	ToolCalls  []types.ToolCall `json:"tool_calls"`
}

// nodeRef accepts both the compact {id, name} shape and the engine's full
// node object, which names the id field node_id.
type nodeRef struct {
	types.NodeRef
}

func (n *nodeRef) UnmarshalJSON(data []byte) error {
	var aux struct {
		ID     string `json:"id"`
		NodeID string `json:"node_id"`
		Name   string `json:"name"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	n.ID = aux.ID
	if n.ID == "" {
		n.ID = aux.NodeID
	}
	n.Name = aux.Name
	return nil
}

// toMessage converts the parsed record into a transcript entry. The
// engine's "human" role maps onto the transcript's user type; anything
// unrecognized is kept verbatim so new backend roles degrade gracefully.
func (r record) toMessage() types.ChatMessage {
	msgType := types.MessageType(r.Type)
	if r.Type == "human" {
		msgType = types.MessageUser
	}

	msg := types.ChatMessage{
		Type:       msgType,
		Content:    r.Content,
		StreamType: r.StreamType,
		ToolCalls:  r.ToolCalls,
	}
	if r.Node != nil {
		ref := r.Node.NodeRef
		msg.Node = &ref
	}
	return msg
}
