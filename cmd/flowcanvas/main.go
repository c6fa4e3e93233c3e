// flowcanvas is the command-line entry point for the visual workflow
// session core: validate and export workflow graphs, chat against a
// backend engine, or run the scripted mock backend locally.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/flowcanvas/flowcanvas/config"
	"github.com/flowcanvas/flowcanvas/graph"
	"github.com/flowcanvas/flowcanvas/internal/metrics"
	"github.com/flowcanvas/flowcanvas/internal/mockbackend"
	"github.com/flowcanvas/flowcanvas/internal/server"
	"github.com/flowcanvas/flowcanvas/session"
	"github.com/flowcanvas/flowcanvas/types"
	"github.com/flowcanvas/flowcanvas/wire"
)

// Build information, injected via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	// Mirrors the backend's own startup: a .env next to the binary is
	// loaded when present, silently skipped otherwise.
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "chat":
		runChat(os.Args[2:])
	case "validate":
		runValidate(os.Args[2:])
	case "export":
		runExport(os.Args[2:])
	case "serve-mock":
		runServeMock(os.Args[2:])
	case "version":
		printVersion()
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Printf(`flowcanvas - visual workflow session core

Usage:
  flowcanvas <command> [flags]

Commands:
  chat        Run a chat session for a workflow against the backend
  validate    Check a workflow graph file for connection rule violations
  export      Print the backend invocation payload for a workflow graph
  serve-mock  Run the scripted mock backend engine
  version     Print version information
  help        Print this help

Run "flowcanvas <command> -h" for command flags.
`)
}

func printVersion() {
	fmt.Printf("flowcanvas %s\n", Version)
	fmt.Printf("  build time: %s\n", BuildTime)
	fmt.Printf("  git commit: %s\n", GitCommit)
}

// loadConfig resolves configuration and builds the logger shared by the
// commands that need one.
func loadConfig(path string) (*config.Config, *zap.Logger) {
	loader := config.NewLoader()
	if path != "" {
		loader = loader.WithConfigPath(path)
	}
	cfg, err := loader.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger, err := cfg.BuildLogger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	return cfg, logger
}

func runChat(args []string) {
	fs := flag.NewFlagSet("chat", flag.ExitOnError)
	configPath := fs.String("config", "", "path to config file")
	graphPath := fs.String("graph", "", "path to workflow graph file (json or yaml)")
	query := fs.String("query", "", "single query to send; omit for an interactive session")
	fs.Parse(args) //nolint:errcheck

	if *graphPath == "" {
		fmt.Fprintln(os.Stderr, "chat: --graph is required")
		os.Exit(1)
	}

	cfg, logger := loadConfig(*configPath)
	defer logger.Sync() //nolint:errcheck

	g, err := graph.LoadFromFile(*graphPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load workflow: %v\n", err)
		os.Exit(1)
	}

	var collector *metrics.Collector
	if cfg.Metrics.Enabled {
		collector = metrics.NewCollector(cfg.Metrics.Namespace, prometheus.DefaultRegisterer, logger)
	}

	store := session.NewStore(g.Name, logger, collector)
	if err := store.LoadGraph(g); err != nil {
		fmt.Fprintf(os.Stderr, "workflow failed validation: %v\n", err)
		os.Exit(1)
	}
	client := session.NewClient(cfg.Backend, logger, collector)

	if *query != "" {
		exchange(client, store, *query)
		return
	}

	fmt.Printf("Workflow %q loaded, backend %s. Empty line quits.\n", g.Name, cfg.Backend.BaseURL)
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			break
		}
		exchange(client, store, line)
	}
}

// exchange runs one query and prints every transcript entry it produced.
func exchange(client *session.Client, store *session.Store, query string) {
	before := len(store.History())
	client.Exchange(context.Background(), store, query)
	for _, msg := range store.History()[before:] {
		printMessage(msg)
	}
}

func printMessage(msg types.ChatMessage) {
	label := string(msg.Type)
	if msg.Node != nil && msg.Node.Name != "" {
		label = fmt.Sprintf("%s (%s)", msg.Type, msg.Node.Name)
	}
	fmt.Printf("[%s] %s\n", label, msg.Content)
	for _, call := range msg.ToolCalls {
		fmt.Printf("  tool call: %s %s\n", call.Name, string(call.Arguments))
	}
}

func runValidate(args []string) {
	fs := flag.NewFlagSet("validate", flag.ExitOnError)
	graphPath := fs.String("graph", "", "path to workflow graph file (json or yaml)")
	fs.Parse(args) //nolint:errcheck

	if *graphPath == "" {
		fmt.Fprintln(os.Stderr, "validate: --graph is required")
		os.Exit(1)
	}

	// LoadFromFile validates on load; reaching here means the graph passed
	// every connection rule.
	g, err := graph.LoadFromFile(*graphPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("ok: %q (%d nodes, %d edges)\n", g.Name, len(g.Nodes), len(g.Edges))
}

func runExport(args []string) {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	graphPath := fs.String("graph", "", "path to workflow graph file (json or yaml)")
	queryStr := fs.String("query", "", "wrap the payload in a full invoke request with this query")
	fs.Parse(args) //nolint:errcheck

	if *graphPath == "" {
		fmt.Fprintln(os.Stderr, "export: --graph is required")
		os.Exit(1)
	}

	g, err := graph.LoadFromFile(*graphPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load workflow: %v\n", err)
		os.Exit(1)
	}
	payload, err := wire.Serialize(g)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to serialize workflow: %v\n", err)
		os.Exit(1)
	}

	var out any = payload
	if *queryStr != "" {
		out = wire.InvokeRequest{Workflow: payload, Query: *queryStr}
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		fmt.Fprintf(os.Stderr, "failed to encode payload: %v\n", err)
		os.Exit(1)
	}
}

func runServeMock(args []string) {
	fs := flag.NewFlagSet("serve-mock", flag.ExitOnError)
	configPath := fs.String("config", "", "path to config file")
	addr := fs.String("addr", "", "listen address (overrides config)")
	scriptPath := fs.String("script", "", "replay script file (overrides config)")
	fs.Parse(args) //nolint:errcheck

	cfg, logger := loadConfig(*configPath)
	defer logger.Sync() //nolint:errcheck

	if *addr != "" {
		cfg.Mock.Addr = *addr
	}
	if *scriptPath != "" {
		cfg.Mock.ScriptPath = *scriptPath
	}

	var script mockbackend.Script
	if cfg.Mock.ScriptPath != "" {
		var err error
		script, err = mockbackend.LoadScript(cfg.Mock.ScriptPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to load script: %v\n", err)
			os.Exit(1)
		}
	}

	var metricsServer *server.Manager
	if cfg.Metrics.Enabled {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		metricsServer = server.NewManager(mux, server.DefaultConfig(cfg.Metrics.Addr), logger)
		if err := metricsServer.Start(); err != nil {
			logger.Error("failed to start metrics server", zap.Error(err))
			os.Exit(1)
		}
	}

	handler := mockbackend.NewHandler(script, logger)
	mock := server.NewManager(handler.Mux(), server.DefaultConfig(cfg.Mock.Addr), logger)
	if err := mock.Start(); err != nil {
		logger.Error("failed to start mock backend", zap.Error(err))
		os.Exit(1)
	}
	logger.Info("mock backend listening",
		zap.String("addr", mock.Addr()),
		zap.String("invoke_path", session.DefaultInvokePath),
	)

	mock.WaitForShutdown()
	if metricsServer != nil {
		if err := metricsServer.Shutdown(context.Background()); err != nil {
			logger.Error("metrics server shutdown failed", zap.Error(err))
		}
	}
}
