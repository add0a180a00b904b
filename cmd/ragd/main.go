// Package main implements the ragd CLI: one subcommand per RAG
// operation, emitting JSON results on stdout.
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/ragd/internal/config"
	"github.com/fyrsmithlabs/ragd/internal/document"
	"github.com/fyrsmithlabs/ragd/internal/embeddings"
	"github.com/fyrsmithlabs/ragd/internal/llm"
	"github.com/fyrsmithlabs/ragd/internal/logging"
	"github.com/fyrsmithlabs/ragd/internal/ops"
	"github.com/fyrsmithlabs/ragd/internal/vectorstore"
)

var (
	// configPath points at an optional YAML config file.
	configPath string
	// logLevel overrides the configured log level when set.
	logLevel string
	// version information (set via ldflags during build)
	version = "dev"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "ragd",
	Short: "Retrieval-augmented generation over embedded file stores",
	Long: `ragd ingests documents into embedded vector stores and answers
questions grounded on them, with optional persistent chat memory.

Configuration comes from a YAML file (--config), overridden by
RAGD_-prefixed environment variables.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to YAML config file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	rootCmd.AddCommand(operationsCmd)
}

// operationsCmd lists the registered operation names.
var operationsCmd = &cobra.Command{
	Use:   "operations",
	Short: "List available operations",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp()
		if err != nil {
			return err
		}
		defer app.close()
		return printJSON(cmd, app.registry.Operations())
	},
}

// app bundles the wired dependencies behind the operation registry.
type app struct {
	registry *ops.Registry
	logger   *zap.Logger
}

// newApp loads configuration and wires the full dependency graph.
func newApp() (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}

	logger, err := logging.New(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("initializing logger: %w", err)
	}

	embedder, err := embeddings.NewService(cfg.Embeddings)
	if err != nil {
		logger.Sync()
		return nil, err
	}
	backend, err := llm.NewOpenAI(cfg.LLM, logger)
	if err != nil {
		logger.Sync()
		return nil, err
	}

	registry := ops.NewRegistry(ops.Deps{
		Loader:   document.NewLoader(nil, logger),
		Embedder: embedder,
		Backend:  backend,
		Cache:    vectorstore.NewCache(logger),
		Ingest:   cfg.Ingest,
		Logger:   logger,
	})
	return &app{registry: registry, logger: logger}, nil
}

func (a *app) close() {
	a.logger.Sync()
}

// runOperation wires dependencies, dispatches one operation, and prints
// the JSON result.
func runOperation(cmd *cobra.Command, name string, req any) error {
	app, err := newApp()
	if err != nil {
		return err
	}
	defer app.close()

	raw, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("encoding %s request: %w", name, err)
	}

	result, err := app.registry.Dispatch(cmd.Context(), name, raw)
	if err != nil {
		app.logger.Error("operation failed", zap.String("operation", name), zap.Error(err))
		return err
	}
	return printJSON(cmd, result)
}

func printJSON(cmd *cobra.Command, v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding result: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return nil
}
