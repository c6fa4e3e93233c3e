package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChatMessage_SameOrigin(t *testing.T) {
	tokenFrom := func(nodeID string) ChatMessage {
		return ChatMessage{
			Type:       MessageAI,
			StreamType: StreamToken,
			Node:       &NodeRef{ID: nodeID, Name: "Assistant"},
		}
	}

	a := tokenFrom("node-a")
	assert.True(t, a.SameOrigin(tokenFrom("node-a")))
	assert.False(t, a.SameOrigin(tokenFrom("node-b")))

	differentType := tokenFrom("node-a")
	differentType.Type = MessageTool
	assert.False(t, a.SameOrigin(differentType))

	discrete := tokenFrom("node-a")
	discrete.StreamType = StreamMessage
	assert.False(t, a.SameOrigin(discrete))

	noNode := ChatMessage{Type: MessageAI, StreamType: StreamToken}
	assert.False(t, a.SameOrigin(noNode))
	assert.True(t, noNode.SameOrigin(ChatMessage{Type: MessageAI, StreamType: StreamToken}))
}

func TestErrorHelpers(t *testing.T) {
	err := NewError(ErrTransportFailure, "backend unreachable").WithHTTPStatus(502)
	assert.Equal(t, ErrTransportFailure, GetErrorCode(err))
	assert.Contains(t, err.Error(), "TRANSPORT_FAILURE")
	assert.Equal(t, 502, err.HTTPStatus)

	wrapped := NewError(ErrMalformedRecord, "bad record").WithCause(assert.AnError)
	assert.ErrorIs(t, wrapped, assert.AnError)
}
