package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/pricewatch/pricewatch/internal/model"
	"github.com/pricewatch/pricewatch/internal/rules"
)

// SimpleWriter outputs human-readable text reports.
// This format is designed for terminal display with clear section
// formatting and per-host display colors taken from the rule table.
//
// Design decision: Output stays plain ASCII unless a rule table is
// provided because:
// 1. It works in all terminals without compatibility issues
// 2. It's easier to pipe to files or other tools
// 3. Host colors only carry meaning when the rule table defines them
type SimpleWriter struct {
	baseWriter

	// colors supplies per-host display colors, nil for plain output.
	colors *rules.Table

	// showAll lists unchanged and skipped checks and keeps section
	// headers even when a section is empty.
	showAll bool

	// verbose enables additional detail in the output.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithColorTable colors host names with the display color their rule
// table entry declares.
func WithColorTable(table *rules.Table) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.colors = table
	}
}

// WithShowAll configures the writer to list unchanged and skipped
// checks and to show empty sections.
func WithShowAll(show bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.showAll = show
	}
}

// WithVerbose enables verbose output with additional details.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
		showAll:    false,
		verbose:    false,
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// colorAttrs maps rule table display colors onto terminal attributes.
var colorAttrs = map[rules.Color]color.Attribute{
	rules.ColorRed:     color.FgRed,
	rules.ColorGreen:   color.FgGreen,
	rules.ColorYellow:  color.FgYellow,
	rules.ColorBlue:    color.FgBlue,
	rules.ColorMagenta: color.FgMagenta,
	rules.ColorCyan:    color.FgCyan,
	rules.ColorWhite:   color.FgWhite,
}

// Write outputs the full report in human-readable format.
func (w *SimpleWriter) Write(report *model.CheckReport) (int, error) {
	var sb strings.Builder

	// Header
	w.writeHeader(&sb, report)

	// Summary
	w.writeSummary(&sb, report)

	// Results grouped by outcome
	w.writeSection(&sb, "PRICE DROPS", report.ResultsByOutcome(model.OutcomeDrop))
	w.writeSection(&sb, "PRICE RISES", report.ResultsByOutcome(model.OutcomeRise))
	w.writeSection(&sb, "NEW ITEMS", report.ResultsByOutcome(model.OutcomeFirst))
	w.writeSection(&sb, "FAILED CHECKS", report.ResultsByOutcome(model.OutcomeFailed))

	if w.showAll {
		w.writeSection(&sb, "UNCHANGED", report.ResultsByOutcome(model.OutcomeUnchanged))
		w.writeSection(&sb, "SKIPPED", report.ResultsByOutcome(model.OutcomeSkipped))
	}

	// Footer
	w.writeFooter(&sb)

	// Write to output
	return w.output.Write([]byte(sb.String()))
}

// WriteResult outputs a single check result in human-readable format.
func (w *SimpleWriter) WriteResult(result *model.CheckResult) (int, error) {
	var sb strings.Builder
	w.writeResultEntry(&sb, result)
	return w.output.Write([]byte(sb.String()))
}

// writeHeader writes the report header with run information.
func (w *SimpleWriter) writeHeader(sb *strings.Builder, report *model.CheckReport) {
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("                       PRICEWATCH CHECK REPORT\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("Run Date:       %s\n", report.GeneratedAt.Format("2006-01-02 15:04:05 MST")))
	sb.WriteString(fmt.Sprintf("Items Checked:  %d\n", report.TotalChecks()))
	if report.Duration > 0 {
		sb.WriteString(fmt.Sprintf("Duration:       %s\n", report.Duration.Round(time.Millisecond)))
	}

	if report.HasFailures() {
		sb.WriteString(fmt.Sprintf("Status:         %d check(s) failed\n", report.FailedCount))
	} else {
		sb.WriteString("Status:         Complete\n")
	}

	sb.WriteString("\n")
}

// writeSummary writes the outcome summary section.
func (w *SimpleWriter) writeSummary(sb *strings.Builder, report *model.CheckReport) {
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("OUTCOME SUMMARY\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("  DROPS:      %d\n", report.DropCount))
	sb.WriteString(fmt.Sprintf("  RISES:      %d\n", report.RiseCount))
	sb.WriteString(fmt.Sprintf("  NEW:        %d\n", report.FirstCount))
	sb.WriteString(fmt.Sprintf("  UNCHANGED:  %d\n", report.UnchangedCount))
	sb.WriteString(fmt.Sprintf("  SKIPPED:    %d\n", report.SkippedCount))
	sb.WriteString(fmt.Sprintf("  FAILED:     %d\n", report.FailedCount))
	sb.WriteString("\n")

	sb.WriteString(fmt.Sprintf("  TOTAL:      %d checks\n", report.TotalChecks()))
	sb.WriteString("\n")
}

// writeSection writes one outcome group. Empty groups are omitted
// unless showAll is set.
func (w *SimpleWriter) writeSection(sb *strings.Builder, title string, results []*model.CheckResult) {
	if len(results) == 0 && !w.showAll {
		return
	}

	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString(title)
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	if len(results) == 0 {
		sb.WriteString("  (none)\n\n")
		return
	}

	for _, result := range results {
		w.writeResultEntry(sb, result)
	}
	sb.WriteString("\n")
}

// writeResultEntry writes one check result with its outcome indicator.
func (w *SimpleWriter) writeResultEntry(sb *strings.Builder, result *model.CheckResult) {
	indicator := w.getOutcomeIndicator(result.Outcome())

	title := result.Input
	if result.Item != nil {
		title = w.colorizeHost(result.Item.Host)
		if label := itemLabel(result); label != "" {
			title += "  " + label
		}
	}
	sb.WriteString(fmt.Sprintf("  [%s] %s\n", indicator, title))

	switch result.Outcome() {
	case model.OutcomeDrop, model.OutcomeRise:
		sb.WriteString(fmt.Sprintf("      %s -> %s (%s)\n",
			result.PreviousPrice.Format(), formatPrice(result.Price), formatDelta(result)))
	case model.OutcomeFirst:
		sb.WriteString(fmt.Sprintf("      %s (first observation)\n", formatPrice(result.Price)))
	case model.OutcomeUnchanged:
		sb.WriteString(fmt.Sprintf("      %s\n", formatPrice(result.Price)))
	case model.OutcomeSkipped:
		if result.SkipReason != "" {
			sb.WriteString(fmt.Sprintf("      skipped: %s\n", result.SkipReason))
		}
	case model.OutcomeFailed:
		sb.WriteString(fmt.Sprintf("      error: %s\n", result.ErrorMessage))
	}

	if w.verbose {
		if result.Item != nil {
			sb.WriteString(fmt.Sprintf("      URL: %s\n", result.Item.URL))
		}
		if result.Duration > 0 {
			sb.WriteString(fmt.Sprintf("      Took: %s\n", result.Duration.Round(time.Millisecond)))
		}
	}
}

// getOutcomeIndicator returns a visual indicator for the outcome.
func (w *SimpleWriter) getOutcomeIndicator(outcome model.Outcome) string {
	switch outcome {
	case model.OutcomeDrop:
		return "v"
	case model.OutcomeRise:
		return "^"
	case model.OutcomeFirst:
		return "+"
	case model.OutcomeUnchanged:
		return "="
	case model.OutcomeSkipped:
		return "~"
	case model.OutcomeFailed:
		return "x"
	default:
		return "?"
	}
}

// colorizeHost renders a host name in its rule table display color.
func (w *SimpleWriter) colorizeHost(host string) string {
	if w.colors == nil {
		return host
	}
	c, ok := w.colors.ColorOf(host)
	if !ok {
		return host
	}
	attr, ok := colorAttrs[c]
	if !ok {
		return host
	}
	return color.New(attr).Sprint(host)
}

// writeFooter writes the report footer.
func (w *SimpleWriter) writeFooter(sb *strings.Builder) {
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("Report generated by pricewatch\n")
	sb.WriteString("https://github.com/pricewatch/pricewatch\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
}

// itemLabel picks the best display name for a result's item.
func itemLabel(result *model.CheckResult) string {
	if result.Product != nil && result.Product.Name != "" {
		return result.Product.Name
	}
	if result.Item != nil {
		return result.Item.Name
	}
	return ""
}

// formatPrice renders a price point, marking unavailable items.
func formatPrice(p *model.PricePoint) string {
	if p == nil {
		return "-"
	}
	if !p.Available {
		return p.Format() + " (out of stock)"
	}
	return p.Format()
}

// formatDelta renders the signed price movement of a result.
func formatDelta(result *model.CheckResult) string {
	delta := result.PriceDelta()
	if delta == 0 || result.Price == nil {
		return ""
	}

	sign := "+"
	abs := delta
	if delta < 0 {
		sign = "-"
		abs = -delta
	}
	p := model.PricePoint{Amount: abs, Currency: result.Price.Currency}
	return sign + p.Format()
}
