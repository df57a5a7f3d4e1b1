package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/pricewatch/pricewatch/internal/config"
	"github.com/pricewatch/pricewatch/internal/model"
	"github.com/pricewatch/pricewatch/internal/store"
	"github.com/spf13/cobra"
)

// NewListCmd creates the list command.
func NewListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tracked items with their latest prices",
		Long: `List shows every tracked item with its latest price and check time.

Items are grouped by host. Hostnames are rendered in the display color
their rule table entry declares. Use --json for machine-readable
output including full price metadata.

Examples:
  # Show tracked items
  pricewatch list

  # Machine-readable output
  pricewatch list --json`,
		Args: cobra.NoArgs,
		RunE: runListCmd,
	}

	cmd.Flags().BoolP("json", "j", false, "Output the item list as JSON")

	return cmd
}

// runListCmd executes the list command.
func runListCmd(cmd *cobra.Command, _ []string) error {
	jsonOutput, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}

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

	items, err := st.ListItems(ctx)
	if err != nil {
		return fmt.Errorf("failed to list tracked items: %w", err)
	}

	if jsonOutput {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(items)
	}

	if len(items) == 0 {
		fmt.Println("No tracked items.")
		fmt.Println("\nUse 'pricewatch track <url>' to start tracking a product page.")
		return nil
	}

	printItemTable(items)
	return nil
}

// hostColors maps rule table color names onto terminal attributes.
var hostColors = map[string]color.Attribute{
	"red":     color.FgRed,
	"green":   color.FgGreen,
	"yellow":  color.FgYellow,
	"blue":    color.FgBlue,
	"magenta": color.FgMagenta,
	"cyan":    color.FgCyan,
	"white":   color.FgWhite,
}

// printItemTable renders tracked items as an aligned text table.
func printItemTable(items []*model.Item) {
	fmt.Printf("Tracked items (%d):\n\n", len(items))
	fmt.Printf("  %-12s  %-26s  %-10s  %-16s  %s\n", "ID", "HOST", "PRICE", "CHECKED", "NAME")
	fmt.Println("  " + strings.Repeat("-", 90))

	for _, item := range items {
		fmt.Printf("  %-12s  %s  %-10s  %-16s  %s\n",
			shortID(item.ID),
			colorHost(item),
			itemPrice(item),
			itemChecked(item),
			itemName(item),
		)
	}

	fmt.Println("\nUse 'pricewatch check' to refresh prices.")
	fmt.Println("Use 'pricewatch untrack <url-or-id>' to stop tracking an item.")
}

// shortID abbreviates a document ID for table display.
func shortID(id string) string {
	if len(id) > 12 {
		return id[:12]
	}
	return id
}

// colorHost pads the hostname to its column width and renders it in the
// item's display color. Padding happens before coloring so the escape
// codes do not throw off column alignment.
func colorHost(item *model.Item) string {
	host := fmt.Sprintf("%-26s", item.Host)
	attr, ok := hostColors[item.Color]
	if !ok {
		return host
	}
	return color.New(attr).Sprint(host)
}

// itemPrice formats the latest price for table display.
func itemPrice(item *model.Item) string {
	if item.LatestPrice == nil {
		return "-"
	}
	return item.LatestPrice.Format()
}

// itemChecked formats the last check time for table display.
func itemChecked(item *model.Item) string {
	if !item.Checked() {
		return "never"
	}
	return item.CheckedAt.Format("2006-01-02 15:04")
}

// itemName returns the product name, falling back to the canonical URL
// before the first successful check has named the item.
func itemName(item *model.Item) string {
	if item.Name == "" {
		return item.URL
	}
	return item.Name
}
