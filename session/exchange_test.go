package session

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/flowcanvas/flowcanvas/testutil"
	"github.com/flowcanvas/flowcanvas/types"
	"github.com/flowcanvas/flowcanvas/wire"
)

func startEndStore(t *testing.T) *Store {
	t.Helper()
	s := newTestStore(t)
	require.NoError(t, s.LoadGraph(testutil.MinimalGraph()))
	return s
}

func newExchangeClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	return NewClient(ClientConfig{BaseURL: baseURL}, zaptest.NewLogger(t), nil)
}

func TestExchange_StreamedReply(t *testing.T) {
	var gotReq wire.InvokeRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, DefaultInvokePath, r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))

		w.Header().Set("Content-Type", "text/event-stream")
		flusher := w.(http.Flusher)
		for _, chunk := range []string{"Hel", "lo", " there"} {
			fmt.Fprintf(w, "data: {\"type\":\"ai\",\"stream_type\":\"token\",\"content\":%q,\"node\":{\"id\":\"llm\",\"name\":\"A\"}}\n\n", chunk)
			flusher.Flush()
		}
		fmt.Fprint(w, "data: [DONE]\n\n")
	}))
	defer srv.Close()

	store := startEndStore(t)
	newExchangeClient(t, srv.URL).Exchange(context.Background(), store, "hi")

	require.NotNil(t, gotReq.Workflow)
	assert.NotEmpty(t, gotReq.Workflow.WorkflowID)
	assert.Equal(t, "hi", gotReq.Query)
	assert.Len(t, gotReq.Workflow.Nodes, 2)

	history := store.History()
	require.Len(t, history, 2, "user message plus one coalesced reply")
	assert.Equal(t, types.MessageUser, history[0].Type)
	assert.Equal(t, "hi", history[0].Content)
	assert.Equal(t, types.MessageAI, history[1].Type)
	assert.Equal(t, "Hello there", history[1].Content)
}

func TestExchange_ConfigInvalid(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		fmt.Fprint(w, `{"detail":"invalid"}`)
	}))
	defer srv.Close()

	store := startEndStore(t)
	store.AppendMessage(types.NewUserMessage("earlier"))
	before := store.Snapshot()

	newExchangeClient(t, srv.URL).Exchange(context.Background(), store, "run it")

	history := store.History()
	// prior message + new user message + exactly one error entry
	require.Len(t, history, 3)
	assert.Equal(t, "earlier", history[0].Content)
	assert.Equal(t, types.MessageUser, history[1].Type)
	assert.Equal(t, types.MessageError, history[2].Type)

	// The rejection body is logged, never shown.
	assert.NotContains(t, history[2].Content, "invalid")

	// Graph state is untouched.
	assert.Equal(t, before, store.Snapshot())
}

func TestExchange_TransportFailure_NonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	store := startEndStore(t)
	newExchangeClient(t, srv.URL).Exchange(context.Background(), store, "hi")

	history := store.History()
	require.Len(t, history, 2)
	assert.Equal(t, types.MessageError, history[1].Type)
}

func TestExchange_TransportFailure_ConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close() // nothing listens anymore

	store := startEndStore(t)
	newExchangeClient(t, srv.URL).Exchange(context.Background(), store, "hi")

	history := store.History()
	require.Len(t, history, 2)
	assert.Equal(t, types.MessageError, history[1].Type)
}

func TestExchange_NonStreamingResponseIsFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"answer":"not a stream"}`)
	}))
	defer srv.Close()

	store := startEndStore(t)
	newExchangeClient(t, srv.URL).Exchange(context.Background(), store, "hi")

	history := store.History()
	require.Len(t, history, 2)
	assert.Equal(t, types.MessageError, history[1].Type)
}

func TestExchange_MalformedRecordsDoNotAbort(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, "data: &&& garbage &&&\n\n")
		fmt.Fprint(w, `data: {"type":"ai","stream_type":"message","content":"survived"}`+"\n\n")
	}))
	defer srv.Close()

	store := startEndStore(t)
	stats := newExchangeClient(t, srv.URL).Exchange(context.Background(), store, "hi")

	assert.Equal(t, 1, stats.Malformed)
	history := store.History()
	require.Len(t, history, 2)
	assert.Equal(t, "survived", history[1].Content)
}

func TestExchange_Cancellation(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		w.(http.Flusher).Flush()
		<-release
	}))
	defer srv.Close()
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	store := startEndStore(t)

	done := make(chan struct{})
	go func() {
		newExchangeClient(t, srv.URL).Exchange(ctx, store, "hi")
		close(done)
	}()

	cancel()
	<-done

	history := store.History()
	require.Len(t, history, 2)
	assert.Equal(t, types.MessageError, history[1].Type)
}
