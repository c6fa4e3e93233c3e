// Package stream reconstructs chat messages from the engine's chunked
// event stream. Records arrive as text blocks terminated by a blank line,
// each carrying one JSON object behind a "data:" prefix; read boundaries
// are arbitrary and may split records or multi-byte characters.
package stream

import (
	"context"
	"encoding/json"
	"io"
	"strings"

	"github.com/kaptinlin/jsonrepair"
	"go.uber.org/zap"

	"github.com/flowcanvas/flowcanvas/types"
)

const dataPrefix = "data:"

// doneSentinel optionally marks the end of a stream. Its absence is not an
// error; end-of-data from the transport terminates ingestion too.
const doneSentinel = "[DONE]"

// Sink receives the reconstructed messages. The session store implements
// it; tests use an in-memory transcript.
type Sink interface {
	// LastMessage returns the most recently appended message, if any.
	LastMessage() (types.ChatMessage, bool)
	// AppendMessage appends a new message to the transcript.
	AppendMessage(msg types.ChatMessage)
	// ExtendLastMessage appends content to the last message in place.
	ExtendLastMessage(content string)
}

// Stats counts what one ingestion run saw.
type Stats struct {
	Records   int // complete records processed
	Tokens    int // token fragments (coalesced or appended)
	Discrete  int // discrete messages appended
	Malformed int // records dropped after a failed parse
	Repaired  int // records salvaged by JSON repair
}

// Ingestor drives one event stream to completion.
type Ingestor struct {
	logger  *zap.Logger
	bufSize int
}

// NewIngestor creates an ingestor. A nil logger disables logging.
func NewIngestor(logger *zap.Logger) *Ingestor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Ingestor{logger: logger, bufSize: 4096}
}

// Ingest reads r until end-of-data, feeding reconstructed messages into
// sink. Malformed records are dropped and counted, never fatal. A read
// error or context cancellation ends ingestion with that error; the caller
// owns converting it into a transcript entry.
func (in *Ingestor) Ingest(ctx context.Context, r io.Reader, sink Sink) (Stats, error) {
	var (
		stats   Stats
		decoder utf8Decoder
	)

	buf := make([]byte, in.bufSize)
	text := ""
	for {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		n, err := r.Read(buf)
		if n > 0 {
			text += decoder.Decode(buf[:n])
			var done bool
			text, done = in.drain(text, sink, &stats)
			if done {
				return stats, nil
			}
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return stats, err
		}
	}

	// The transport may end without a trailing blank line; whatever is
	// buffered still forms one final record.
	text += decoder.Flush()
	if rest := strings.TrimSpace(text); rest != "" {
		in.processRecord(rest, sink, &stats)
	}
	return stats, nil
}

// drain splits off every complete record in text and processes it. It
// returns the unconsumed tail and whether the done sentinel was seen.
func (in *Ingestor) drain(text string, sink Sink, stats *Stats) (string, bool) {
	for {
		idx, sepLen := nextDelimiter(text)
		if idx < 0 {
			return text, false
		}
		record := text[:idx]
		text = text[idx+sepLen:]
		if in.processRecord(record, sink, stats) {
			return text, true
		}
	}
}

// nextDelimiter locates the earliest blank-line record terminator,
// tolerating CRLF framing.
func nextDelimiter(text string) (idx, length int) {
	lf := strings.Index(text, "\n\n")
	crlf := strings.Index(text, "\r\n\r\n")
	switch {
	case lf < 0 && crlf < 0:
		return -1, 0
	case crlf < 0 || (lf >= 0 && lf < crlf):
		return lf, 2
	default:
		return crlf, 4
	}
}

// processRecord parses one record and delivers its message. Returns true
// when the record is the done sentinel.
func (in *Ingestor) processRecord(raw string, sink Sink, stats *Stats) bool {
	payload, ok := payloadLine(raw)
	if !ok {
		// Comment lines, bare "event:" frames, keep-alives.
		return false
	}
	if payload == doneSentinel {
		return true
	}

	stats.Records++

	var rec record
	if err := json.Unmarshal([]byte(payload), &rec); err != nil {
		repaired, repairErr := jsonrepair.JSONRepair(payload)
		if repairErr != nil || json.Unmarshal([]byte(repaired), &rec) != nil {
			stats.Malformed++
			in.logger.Warn("dropping malformed stream record",
				zap.String("payload", truncate(payload, 256)),
				zap.Error(err),
			)
			return false
		}
		stats.Repaired++
		in.logger.Debug("repaired malformed stream record",
			zap.String("payload", truncate(payload, 256)),
		)
	}

	in.deliver(rec, sink, stats)
	return false
}

// payloadLine extracts the JSON payload from the record's data line.
func payloadLine(raw string) (string, bool) {
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSuffix(line, "\r")
		if strings.HasPrefix(line, dataPrefix) {
			return strings.TrimSpace(strings.TrimPrefix(line, dataPrefix)), true
		}
	}
	return "", false
}

// deliver classifies the record and applies the coalescing rule: a token
// fragment whose (node, type, stream type) triple matches the last message
// extends it in place; everything else appends.
func (in *Ingestor) deliver(rec record, sink Sink, stats *Stats) {
	msg := rec.toMessage()

	if msg.StreamType == types.StreamToken {
		stats.Tokens++
		if last, ok := sink.LastMessage(); ok && last.SameOrigin(msg) {
			sink.ExtendLastMessage(msg.Content)
			return
		}
		sink.AppendMessage(msg)
		return
	}

	stats.Discrete++
	sink.AppendMessage(msg)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
