// Package testutil provides shared helpers and workflow fixtures for
// tests.
//
// Usage:
//
//	ctx := testutil.TestContext(t)
//	store.LoadGraph(testutil.LinearGraph())
package testutil

import (
	"context"
	"testing"
	"time"
)

// TestContext returns a context with a 30 second timeout, cancelled when
// the test finishes.
func TestContext(t *testing.T) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	t.Cleanup(cancel)
	return ctx
}

// TestContextWithTimeout returns a test context with a custom timeout.
func TestContextWithTimeout(t *testing.T, timeout time.Duration) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	t.Cleanup(cancel)
	return ctx
}

// CancelledContext returns a context that is already cancelled.
func CancelledContext() context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	return ctx
}
