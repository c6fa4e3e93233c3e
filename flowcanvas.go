// Package flowcanvas provides a top-level convenience entry point for
// running a workflow chat session with minimal boilerplate.
//
// Usage:
//
//	import "github.com/flowcanvas/flowcanvas"
//
//	s, err := flowcanvas.New(
//	    flowcanvas.WithBackend("http://localhost:8000"),
//	    flowcanvas.WithGraphFile("workflow.yaml"),
//	)
//	stats := s.Exchange(ctx, "hello")
//
// This is a thin wrapper around the session package; use the packages
// directly when you need metrics, custom stores, or finer control.
package flowcanvas

import (
	"context"

	"go.uber.org/zap"

	"github.com/flowcanvas/flowcanvas/graph"
	"github.com/flowcanvas/flowcanvas/session"
	"github.com/flowcanvas/flowcanvas/stream"
)

// Session bundles a graph store with an exchange client for one workflow.
type Session struct {
	Store  *session.Store
	Client *session.Client
}

type options struct {
	name      string
	backend   session.ClientConfig
	logger    *zap.Logger
	graph     *graph.Graph
	graphPath string
}

// Option configures the session created by [New].
type Option func(*options)

// WithName sets the workflow name.
func WithName(name string) Option {
	return func(o *options) { o.name = name }
}

// WithBackend sets the backend engine base URL.
func WithBackend(baseURL string) Option {
	return func(o *options) { o.backend.BaseURL = baseURL }
}

// WithClientConfig replaces the whole backend client configuration.
func WithClientConfig(cfg session.ClientConfig) Option {
	return func(o *options) { o.backend = cfg }
}

// WithLogger sets a custom zap logger.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithGraph loads an in-memory workflow graph into the session.
func WithGraph(g *graph.Graph) Option {
	return func(o *options) { o.graph = g }
}

// WithGraphFile loads the workflow graph from a JSON or YAML file.
func WithGraphFile(path string) Option {
	return func(o *options) { o.graphPath = path }
}

// New creates a workflow session with minimal configuration. Without a
// graph option the session starts empty and nodes are added through the
// store.
func New(opts ...Option) (*Session, error) {
	o := options{
		name:    "workflow",
		backend: session.ClientConfig{BaseURL: "http://localhost:8000"},
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = zap.NewNop()
	}

	g := o.graph
	if o.graphPath != "" {
		loaded, err := graph.LoadFromFile(o.graphPath)
		if err != nil {
			return nil, err
		}
		g = loaded
	}
	if g != nil && o.name == "workflow" && g.Name != "" {
		o.name = g.Name
	}

	store := session.NewStore(o.name, o.logger, nil)
	if g != nil {
		if err := store.LoadGraph(g); err != nil {
			return nil, err
		}
	}

	return &Session{
		Store:  store,
		Client: session.NewClient(o.backend, o.logger, nil),
	}, nil
}

// Exchange sends one query to the backend and streams the reply into the
// session transcript.
func (s *Session) Exchange(ctx context.Context, query string) stream.Stats {
	return s.Client.Exchange(ctx, s.Store, query)
}
