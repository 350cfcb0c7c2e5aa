// Package cmd implements the CLI commands for senseiharvest using Cobra.
package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/gaurav-prasanna/senseiharvest/config"
	"github.com/spf13/cobra"
)

var (
	flagConfig  string
	flagVerbose bool
)

var rootCmd = &cobra.Command{
	Use:   "senseiharvest",
	Short: "senseiharvest: harvest JLPT vocabulary and grammar lists into study data",
	Long: `senseiharvest walks the JLPT vocabulary and grammar lists of jlptsensei.com,
normalizes every table row into a record, enriches vocabulary with an example
sentence and grammar with its flashcard image, and writes per-level CSV files
plus JSON, Markdown or PDF exports.

Usage:
  senseiharvest harvest [levels...] [flags]
  senseiharvest render <level> <kind> [flags]`,
	SilenceUsage:      true,
	PersistentPreRunE: setupLogging,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Config file (default: ./"+config.DefaultFile+" if present)")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Enable debug logging")
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func setupLogging(cmd *cobra.Command, args []string) error {
	level := slog.LevelInfo
	if flagVerbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	return nil
}
