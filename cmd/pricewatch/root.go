// Package main provides the entry point for the pricewatch CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for pricewatch.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pricewatch",
		Short: "Track prices of product pages across online shops",
		Long: `Pricewatch tracks product pages on supported online shops and records
their prices over time.

Pages are identified by the SHA-1 of their canonical URL, so the same
product tracked through different URL spellings stays one item. Every
check classifies what it observed (new, drop, rise, unchanged) and the
price history is kept in a local SQLite store.

Run 'pricewatch hosts' to see which shops the rule table supports.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	// Add subcommands
	cmd.AddCommand(NewTrackCmd())
	cmd.AddCommand(NewUntrackCmd())
	cmd.AddCommand(NewListCmd())
	cmd.AddCommand(NewCheckCmd())
	cmd.AddCommand(NewHostsCmd())
	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
