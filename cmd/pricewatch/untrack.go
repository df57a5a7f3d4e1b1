package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/pricewatch/pricewatch/internal/config"
	"github.com/pricewatch/pricewatch/internal/store"
	"github.com/pricewatch/pricewatch/internal/urlkey"
	"github.com/spf13/cobra"
)

// NewUntrackCmd creates the untrack command.
func NewUntrackCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "untrack <url-or-id>...",
		Short: "Stop tracking product pages",
		Long: `Untrack removes items and their price history from the store.

Arguments may be product URLs or document IDs. URLs are canonicalized
first, so any spelling of a tracked page's URL removes the same item.

Examples:
  # Untrack by URL
  pricewatch untrack https://books.toscrape.com/catalogue/a-light-in-the-attic_1000/index.html

  # Untrack by document ID
  pricewatch untrack 2f7d6a1f0f590ed0d2c0f49555e9f76847641a33`,
		Args: cobra.MinimumNArgs(1),
		RunE: runUntrackCmd,
	}
}

// runUntrackCmd executes the untrack command.
func runUntrackCmd(_ *cobra.Command, args []string) error {
	cfg := config.NewConfig()
	if err := config.ApplyEnv(cfg); err != nil {
		return err
	}

	st, err := store.Open(cfg.DBDir, store.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer st.Close()

	ctx := context.Background()

	var failed int
	for _, target := range args {
		id, err := urlkey.ResolveID(target)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Skipping %s: %v\n", target, err)
			failed++
			continue
		}
		id = strings.ToLower(id)

		if err := st.DeleteItem(ctx, id); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				fmt.Fprintf(os.Stderr, "Not tracked: %s\n", target)
			} else {
				fmt.Fprintf(os.Stderr, "Failed to untrack %s: %v\n", target, err)
			}
			failed++
			continue
		}

		fmt.Printf("Untracked %s\n", id)
	}

	if failed > 0 {
		return fmt.Errorf("failed to untrack %d of %d items", failed, len(args))
	}
	return nil
}
