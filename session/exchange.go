package session

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/flowcanvas/flowcanvas/internal/metrics"
	"github.com/flowcanvas/flowcanvas/stream"
	"github.com/flowcanvas/flowcanvas/types"
	"github.com/flowcanvas/flowcanvas/wire"
)

// DefaultInvokePath is the engine's invocation route.
const DefaultInvokePath = "/api/app"

const eventStreamContentType = "text/event-stream"

// ClientConfig configures the exchange client.
type ClientConfig struct {
	// BaseURL of the backend engine, e.g. "http://localhost:8000".
	BaseURL string `yaml:"base_url" json:"base_url"`
	// InvokePath is the invocation route; DefaultInvokePath when empty.
	InvokePath string `yaml:"invoke_path" json:"invoke_path"`
	// Timeout bounds one whole exchange including streaming. Zero means
	// no timeout: the stream ends when the transport does.
	Timeout time.Duration `yaml:"timeout" json:"timeout"`
}

// Client runs chat exchanges against the backend engine. Every failure
// mode ends inside the client as exactly one error transcript entry;
// nothing escapes to the caller as a Go error.
type Client struct {
	cfg        ClientConfig
	httpClient *http.Client
	ingestor   *stream.Ingestor
	logger     *zap.Logger
	metrics    *metrics.Collector
}

// NewClient creates an exchange client. logger may be nil; collector may
// be nil to disable metrics.
func NewClient(cfg ClientConfig, logger *zap.Logger, collector *metrics.Collector) *Client {
	if cfg.InvokePath == "" {
		cfg.InvokePath = DefaultInvokePath
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{}, // per-exchange deadline comes from the context
		ingestor:   stream.NewIngestor(logger),
		logger:     logger.With(zap.String("component", "exchange")),
		metrics:    collector,
	}
}

// Exchange appends the user's query to the transcript, serializes the
// current graph, invokes the backend, and ingests the streamed reply into
// the store. Callers are expected to run one exchange at a time per
// session; the client does not queue.
func (c *Client) Exchange(ctx context.Context, store *Store, query string) stream.Stats {
	start := time.Now()
	store.AppendMessage(types.NewUserMessage(query))

	outcome, stats := c.run(ctx, store, query)
	c.metrics.RecordExchange(outcome, time.Since(start))
	c.metrics.RecordStreamRecords(metrics.RecordToken, stats.Tokens)
	c.metrics.RecordStreamRecords(metrics.RecordDiscrete, stats.Discrete)
	c.metrics.RecordStreamRecords(metrics.RecordMalformed, stats.Malformed)
	c.metrics.RecordStreamRecords(metrics.RecordRepaired, stats.Repaired)
	return stats
}

func (c *Client) run(ctx context.Context, store *Store, query string) (string, stream.Stats) {
	var stats stream.Stats

	if c.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.Timeout)
		defer cancel()
	}

	snapshot := store.Snapshot()
	payload, err := wire.Serialize(&snapshot)
	if err != nil {
		c.logger.Error("failed to serialize workflow", zap.Error(err))
		store.AppendMessage(types.NewErrorMessage("Failed to prepare the workflow for execution."))
		return metrics.OutcomeTransportFailure, stats
	}

	body, err := json.Marshal(wire.InvokeRequest{Workflow: payload, Query: query})
	if err != nil {
		c.logger.Error("failed to encode invoke request", zap.Error(err))
		store.AppendMessage(types.NewErrorMessage("Failed to prepare the workflow for execution."))
		return metrics.OutcomeTransportFailure, stats
	}

	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + c.cfg.InvokePath
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		store.AppendMessage(types.NewErrorMessage("Failed to reach the backend."))
		return metrics.OutcomeTransportFailure, stats
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", eventStreamContentType)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("invoke request failed", zap.String("endpoint", endpoint), zap.Error(err))
		store.AppendMessage(types.NewErrorMessage("Failed to reach the backend. Please check your connection and try again."))
		return metrics.OutcomeTransportFailure, stats
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnprocessableEntity:
		// Schema rejection. The body is diagnostic only; log it, never
		// show it raw in the transcript.
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		c.logger.Warn("backend rejected workflow configuration",
			zap.Int("status", resp.StatusCode),
			zap.ByteString("detail", detail),
		)
		store.AppendMessage(types.NewErrorMessage("The backend rejected the workflow configuration. Check each node's settings."))
		return metrics.OutcomeConfigInvalid, stats

	case resp.StatusCode != http.StatusOK:
		c.logger.Error("invoke returned non-OK status",
			zap.Int("status", resp.StatusCode),
		)
		store.AppendMessage(types.NewErrorMessage(fmt.Sprintf("The backend returned an unexpected status (%d).", resp.StatusCode)))
		return metrics.OutcomeTransportFailure, stats
	}

	if ct, _, _ := mime.ParseMediaType(resp.Header.Get("Content-Type")); ct != eventStreamContentType {
		c.logger.Error("invoke returned non-streaming response",
			zap.String("content_type", resp.Header.Get("Content-Type")),
		)
		store.AppendMessage(types.NewErrorMessage("The backend returned a non-streaming response."))
		return metrics.OutcomeTransportFailure, stats
	}

	stats, err = c.ingestor.Ingest(ctx, resp.Body, store)
	if err != nil {
		if ctx.Err() != nil {
			c.logger.Warn("exchange cancelled", zap.Error(err))
			store.AppendMessage(types.NewErrorMessage("The exchange was cancelled."))
			return metrics.OutcomeCancelled, stats
		}
		c.logger.Error("stream ended with transport error", zap.Error(err))
		store.AppendMessage(types.NewErrorMessage("The connection to the backend was interrupted."))
		return metrics.OutcomeTransportFailure, stats
	}

	return metrics.OutcomeOK, stats
}
