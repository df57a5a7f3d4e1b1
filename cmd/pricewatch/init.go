package main

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pricewatch/pricewatch/internal/rules"
	"github.com/spf13/cobra"
)

//go:embed templates/pricewatch.yaml
var configTemplate embed.FS

// Default file names written by init.
const (
	configFileName = ".pricewatch"
	rulesFileName  = "pricewatch-rules.yaml"
)

// NewInitCmd creates the init command.
func NewInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize pricewatch configuration files",
		Long: `Init creates a .pricewatch configuration file and a starter scrape
rules file in the current directory.

The configuration file covers:
- Per-shop fetch settings (cookies, extra headers)
- Serve-mode settings for the HTTP API (address, hosting regions)

The rules file is a copy of the embedded rule table: the price and
name selectors per supported shop, ready to extend with your own
entries.

Examples:
  # Create .pricewatch and pricewatch-rules.yaml in the current directory
  pricewatch init

  # Create the files at specific paths
  pricewatch init -o config/pricewatch.yaml --rules-output config/rules.yaml

  # Force overwrite existing files
  pricewatch init -f`,
		RunE: runInitCmd,
	}

	cmd.Flags().StringP("output", "o", configFileName,
		"Output file path for the configuration")
	cmd.Flags().String("rules-output", rulesFileName,
		"Output file path for the scrape rules starter")
	cmd.Flags().BoolP("force", "f", false,
		"Overwrite existing files")

	return cmd
}

// runInitCmd executes the init command.
func runInitCmd(cmd *cobra.Command, _ []string) error {
	outputPath, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}

	rulesPath, err := cmd.Flags().GetString("rules-output")
	if err != nil {
		return err
	}

	force, err := cmd.Flags().GetBool("force")
	if err != nil {
		return err
	}

	// Check if either file already exists
	if !force {
		for _, path := range []string{outputPath, rulesPath} {
			if _, err := os.Stat(path); err == nil {
				return fmt.Errorf("file already exists: %s (use -f to overwrite)", path)
			}
		}
	}

	// Read template from embedded filesystem
	content, err := configTemplate.ReadFile("templates/pricewatch.yaml")
	if err != nil {
		return fmt.Errorf("failed to read config template: %w", err)
	}

	if err := writeInitFile(outputPath, content); err != nil {
		return err
	}
	if err := writeInitFile(rulesPath, rules.DefaultSource()); err != nil {
		return err
	}

	fmt.Printf("Created configuration file: %s\n", outputPath)
	fmt.Printf("Created scrape rules file:  %s\n", rulesPath)
	fmt.Println("\nEdit these files to configure:")
	fmt.Println("  - Consent cookies and headers per shop")
	fmt.Println("  - The serve address and hosting regions")
	fmt.Println("  - Price selectors for additional shops")
	fmt.Println("\nThen start tracking pages with 'pricewatch track <url>'.")

	return nil
}

// writeInitFile writes one init output file with owner-only permissions,
// creating parent directories as needed.
func writeInitFile(path string, content []byte) error {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	if err := os.WriteFile(path, content, 0600); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
