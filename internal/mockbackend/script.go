package mockbackend

import (
	"encoding/json"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/flowcanvas/flowcanvas/types"
)

// tokenChunkRunes is how many runes each emitted token fragment carries
// when a scripted token record is split for streaming.
const tokenChunkRunes = 4

// Script is the list of records the mock backend replays per invocation.
type Script struct {
	Records []ScriptRecord `yaml:"records"`
}

// ScriptRecord is one scripted stream record. Token records are split
// into small fragments on the way out to simulate real model streaming;
// message records are sent whole.
type ScriptRecord struct {
	Type       string `yaml:"type"`
	StreamType string `yaml:"stream_type"`
	Content    string `yaml:"content"`
	// NodeID/NodeName override the reply node for this record.
	NodeID   string `yaml:"node_id,omitempty"`
	NodeName string `yaml:"node_name,omitempty"`
	// ToolCalls is raw JSON attached to the record verbatim.
	ToolCalls json.RawMessage `yaml:"-"`
}

// frame is the wire shape of one emitted record.
type frame struct {
	Type       string          `json:"type"`
	StreamType string          `json:"stream_type"`
	Content    string          `json:"content"`
	Node       types.NodeRef   `json:"node"`
	ToolCalls  json.RawMessage `json:"tool_calls,omitempty"`
}

// frames expands the scripted record into the frames actually emitted.
func (r ScriptRecord) frames(defaultNode types.NodeRef) []frame {
	node := defaultNode
	if r.NodeID != "" {
		node = types.NodeRef{ID: r.NodeID, Name: r.NodeName}
	}

	base := frame{Type: r.Type, StreamType: r.StreamType, Node: node, ToolCalls: r.ToolCalls}
	if r.StreamType != string(types.StreamToken) {
		base.Content = r.Content
		return []frame{base}
	}

	var out []frame
	runes := []rune(r.Content)
	for start := 0; start < len(runes); start += tokenChunkRunes {
		end := start + tokenChunkRunes
		if end > len(runes) {
			end = len(runes)
		}
		f := base
		f.Content = string(runes[start:end])
		out = append(out, f)
	}
	return out
}

// DefaultScript is the canned reply used when no script file is given.
func DefaultScript() Script {
	return Script{Records: []ScriptRecord{
		{Type: string(types.MessageAI), StreamType: string(types.StreamToken),
			Content: "This is a scripted reply from the flowcanvas mock backend."},
		{Type: string(types.MessageAI), StreamType: string(types.StreamMessage), Content: ""},
	}}
}

// LoadScript reads a replay script from a YAML file.
func LoadScript(path string) (Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Script{}, fmt.Errorf("failed to read script file: %w", err)
	}
	var s Script
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Script{}, fmt.Errorf("failed to parse script file: %w", err)
	}
	if len(s.Records) == 0 {
		return Script{}, fmt.Errorf("script %s has no records", path)
	}
	return s, nil
}
