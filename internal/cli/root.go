// Package cli implements the salesingest command tree.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rpattn/salesingest/internal/config"

	"github.com/spf13/cobra"
)

// app carries what PersistentPreRunE resolved for the subcommands.
type app struct {
	configPath string
	output     string
	cfg        config.Config
	logger     *slog.Logger
}

// Execute runs the CLI and returns the process exit code.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(os.Stdout, os.Stderr).ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:           "salesingest",
		Short:         "Sales transaction file ingestion",
		Long:          "Validates, coerces and stores sales transaction exports (.csv, .xlsx, .xls) and serves the stored records.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if a.output != "table" && a.output != "json" {
				return fmt.Errorf("unsupported output format %q: use 'table' or 'json'", a.output)
			}
			cfg, err := config.Load(a.configPath)
			if err != nil {
				return err
			}
			a.cfg = cfg
			a.logger = newLogger(stderr, cfg)
			slog.SetDefault(a.logger)
			return nil
		},
	}
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	rootCmd.PersistentFlags().StringVar(&a.configPath, "config", ".", "Directory containing config.yaml")
	rootCmd.PersistentFlags().StringVarP(&a.output, "output", "o", "table", "Output format (table, json)")

	rootCmd.AddCommand(
		newServeCmd(a),
		newIngestCmd(a),
		newMigrateCmd(a),
		newRunsCmd(a),
	)
	return rootCmd
}

func newLogger(w io.Writer, cfg config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.SlogLevel()}
	if strings.EqualFold(cfg.Log.Format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
