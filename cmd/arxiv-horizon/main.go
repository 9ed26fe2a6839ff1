// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the arxiv-horizon CLI.
// It counts how many results of a date-sorted arXiv query fall after a
// cutoff date, fetches single pages of normalized records, and lists the
// history of past searches.
package main

import (
	"context"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// version is set at build time via ldflags.
var version = "dev"

// rootCmd is the base command for the arxiv-horizon CLI.
var rootCmd = &cobra.Command{
	Use:   "arxiv-horizon",
	Short: "Count arXiv papers published since a cutoff date",
	Long: `arxiv-horizon answers "how many results of this arXiv query were published
after a given date?" The arXiv API only offers offset/limit pagination, so the
boundary command bisects over single-record probes, then scans a final window
to find the exact offset where the date-sorted result set crosses the cutoff.

Requests are spaced by a politeness delay (3s by default). Every search is
recorded in a local history so later runs can be compared.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// A missing .env is fine.
		_ = godotenv.Load()
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./arxiv-horizon.yaml or ~/.config/arxiv-horizon/arxiv-horizon.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error (default info)")
	rootCmd.PersistentFlags().String("log-format", "", "log format: text or json (default text)")
	_ = viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("log.format", rootCmd.PersistentFlags().Lookup("log-format"))
}

func main() {
	if err := fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithVersion(version),
		fang.WithNotifySignal(os.Interrupt, os.Kill),
	); err != nil {
		os.Exit(1)
	}
}
