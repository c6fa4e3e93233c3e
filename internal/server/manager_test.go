package server

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestManager_StartAndShutdown(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "ok")
	})
	m := NewManager(handler, DefaultConfig("127.0.0.1:0"), zaptest.NewLogger(t))

	require.NoError(t, m.Start())
	assert.True(t, m.IsRunning())
	assert.Error(t, m.Start(), "double start")

	resp, err := http.Get("http://" + m.Addr())
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, "ok", string(body))

	require.NoError(t, m.Shutdown(context.Background()))
	assert.False(t, m.IsRunning())
	// Shutdown is idempotent.
	require.NoError(t, m.Shutdown(context.Background()))
	assert.Error(t, m.Start(), "closed servers do not restart")
}

func TestManager_ListenFailure(t *testing.T) {
	first := NewManager(http.NewServeMux(), DefaultConfig("127.0.0.1:0"), zaptest.NewLogger(t))
	require.NoError(t, first.Start())
	defer first.Shutdown(context.Background()) //nolint:errcheck

	second := NewManager(http.NewServeMux(), DefaultConfig(first.Addr()), zaptest.NewLogger(t))
	assert.Error(t, second.Start())
}
