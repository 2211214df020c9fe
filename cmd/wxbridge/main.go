package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/wxbridge/wxbridge/internal/config"
	"github.com/wxbridge/wxbridge/internal/weather"
	"github.com/wxbridge/wxbridge/mcp"
)

var rootCmd = &cobra.Command{
	Use:   "wxbridge",
	Short: "An MCP stdio bridge for the weather HTTP backend",
	Long: `wxbridge terminates a line-framed JSON-RPC session on stdin/stdout and
forwards tool calls to the weather backend over HTTP. It reads one request
per line, makes the corresponding API call, and writes a JSON-RPC response
to stdout. Diagnostics go to stderr only.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("backend") {
			cfg.BackendURL = backendURL
		}
		if cmd.Flags().Changed("timeout") {
			cfg.Timeout = timeout
		}
		if verbose {
			cfg.Verbose = true
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		level := slog.LevelWarn
		if cfg.Verbose {
			level = slog.LevelDebug
		}
		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: level,
		}))

		retryClient := retryablehttp.NewClient()
		// The MCP client owns retry policy; every backend call is a single attempt.
		retryClient.RetryMax = 0
		retryClient.HTTPClient.Timeout = cfg.Timeout
		retryClient.Logger = logger

		client := weather.NewClient(cfg.BackendURL,
			weather.WithHTTPClient(retryClient.StandardClient()),
			weather.WithLogger(logger),
		)

		logger.Info("bridge started", "session", uuid.NewString(), "backend", cfg.BackendURL)

		// One-time liveness probe; failure is advisory, never fatal.
		probeCtx, probeCancel := context.WithTimeout(ctx, cfg.ProbeTimeout)
		if err := client.Probe(probeCtx); err != nil {
			logger.Warn("weather backend is not responding", "error", err)
			logger.Warn("start the backend server before issuing tool calls", "backend", cfg.BackendURL)
		} else {
			logger.Info("connected to weather backend", "backend", cfg.BackendURL)
		}
		probeCancel()

		server, err := mcp.NewServer(
			mcp.WithClient(client),
			mcp.WithLogger(logger),
			mcp.WithTimeout(cfg.Timeout),
		)
		if err != nil {
			return fmt.Errorf("creating server: %w", err)
		}

		g, ctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			transport := mcp.NewStdioTransport(server, os.Stdin, os.Stdout, logger)
			return transport.Run(ctx)
		})
		return g.Wait()
	},
}

var (
	backendURL string
	configPath string
	timeout    time.Duration
	verbose    bool

	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func init() {
	rootCmd.Flags().StringVarP(&backendURL, "backend", "b", config.DefaultBackendURL, "Base URL of the weather backend")
	rootCmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to a YAML config file")
	rootCmd.Flags().DurationVar(&timeout, "timeout", config.DefaultTimeout, "Backend call timeout")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging to stderr")

	rootCmd.Version = fmt.Sprintf("%s (commit: %s, built at: %s)", version, commit, date)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
