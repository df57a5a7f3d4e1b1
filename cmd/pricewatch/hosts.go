package main

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/pricewatch/pricewatch/internal/config"
	"github.com/spf13/cobra"
)

// NewHostsCmd creates the hosts command.
func NewHostsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hosts",
		Short: "List hosts the rule table supports",
		Long: `Hosts lists every shop the rule table knows how to scrape, with the
parser each host uses and its display color.

Pages on hosts not listed here cannot be tracked. Add entries to a
custom rules file and pass it with --rules (or set PRICEWATCH_RULES)
to support more shops.

Examples:
  # Show the embedded rule table
  pricewatch hosts

  # Show a custom rules file
  pricewatch hosts -r myrules.yaml`,
		Args: cobra.NoArgs,
		RunE: runHostsCmd,
	}

	cmd.Flags().StringP("rules", "r", "",
		"Scrape rules file path (default: embedded rule table)")

	return cmd
}

// runHostsCmd executes the hosts command.
func runHostsCmd(cmd *cobra.Command, _ []string) error {
	cfg := config.NewConfig()
	if err := config.ApplyEnv(cfg); err != nil {
		return err
	}

	rulesPath, err := cmd.Flags().GetString("rules")
	if err != nil {
		return err
	}
	if rulesPath != "" {
		cfg.RulesPath = rulesPath
	}

	table, err := loadRuleTable(cfg)
	if err != nil {
		return err
	}

	fmt.Printf("Supported hosts (%d):\n\n", table.Len())
	fmt.Printf("  %-30s  %-10s  %s\n", "HOST", "PARSER", "COLOR")
	fmt.Println("  " + strings.Repeat("-", 52))

	for _, host := range table.SupportedHosts() {
		entry, ok := table.Lookup(host)
		if !ok {
			continue
		}

		display := fmt.Sprintf("%-30s", host)
		if attr, colored := hostColors[entry.Color.String()]; colored {
			display = color.New(attr).Sprint(display)
		}

		fmt.Printf("  %s  %-10s  %s\n", display, entry.Parser, entry.Color)
	}

	fmt.Println("\nUse 'pricewatch track <url>' to track a page on a supported host.")
	return nil
}
