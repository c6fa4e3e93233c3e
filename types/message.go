package types

import "encoding/json"

// MessageType is the role of a chat message as shown in the session
// transcript.
type MessageType string

const (
	MessageUser  MessageType = "user"
	MessageAI    MessageType = "ai"
	MessageTool  MessageType = "tool"
	MessageError MessageType = "error"
)

// StreamType distinguishes incremental token fragments from complete
// messages inside the event stream.
type StreamType string

const (
	StreamToken   StreamType = "token"
	StreamMessage StreamType = "message"
)

// NodeRef identifies the workflow node a streamed message originated from.
type NodeRef struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

// ToolCall represents a tool invocation request emitted by the LLM.
type ToolCall struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"args,omitempty"`
}

// ChatMessage is one entry in the session transcript. Messages are
// immutable once appended, with one exception: consecutive token fragments
// from the same origin extend the last message's content in place.
type ChatMessage struct {
	Type       MessageType `json:"type"`
	Content    string      `json:"content,omitempty"`
	Node       *NodeRef    `json:"node,omitempty"`
	StreamType StreamType  `json:"stream_type,omitempty"`
	ToolCalls  []ToolCall  `json:"tool_calls,omitempty"`
}

// NewUserMessage creates a user-authored message.
func NewUserMessage(content string) ChatMessage {
	return ChatMessage{Type: MessageUser, Content: content}
}

// NewErrorMessage creates an error message shown in the transcript when an
// exchange fails.
func NewErrorMessage(content string) ChatMessage {
	return ChatMessage{Type: MessageError, Content: content}
}

// SameOrigin reports whether two messages share the (node, type,
// stream type) triple used by the coalescing rule.
func (m ChatMessage) SameOrigin(other ChatMessage) bool {
	if m.Type != other.Type || m.StreamType != other.StreamType {
		return false
	}
	switch {
	case m.Node == nil && other.Node == nil:
		return true
	case m.Node == nil || other.Node == nil:
		return false
	}
	return m.Node.ID == other.Node.ID
}
