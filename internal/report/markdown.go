package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"
	"github.com/pricewatch/pricewatch/internal/model"
)

// MarkdownWriter outputs reports in Markdown format.
// This format is designed for documentation and sharing.
//
// Design decision: We use the nao1215/markdown library for fluent markdown
// generation which provides:
// 1. Type-safe markdown generation
// 2. Support for tables, lists, and code blocks
// 3. GitHub-flavored markdown alerts
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the full report in Markdown format.
func (w *MarkdownWriter) Write(report *model.CheckReport) (int, error) {
	md := markdown.NewMarkdown(w.output)

	// Header
	w.writeHeader(md, report)

	// Summary
	w.writeSummary(md, report)

	// Price changes grouped by outcome
	w.writeChanges(md, report)

	// Price history tables
	w.writeHistory(md, report)

	// Failures
	w.writeFailures(md, report)

	// Footer
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// WriteResult outputs a single check result in Markdown format.
func (w *MarkdownWriter) WriteResult(result *model.CheckResult) (int, error) {
	md := markdown.NewMarkdown(w.output)

	title := result.Input
	if label := itemLabel(result); label != "" {
		title = label
	}
	md.H2(title)
	md.PlainText("")

	rows := [][]string{
		{"Outcome", result.Outcome().String()},
	}
	if result.Item != nil {
		rows = append(rows,
			[]string{"Host", result.Item.Host},
			[]string{"URL", result.Item.URL},
		)
	}
	if result.Price != nil {
		rows = append(rows, []string{"Price", formatPrice(result.Price)})
	}
	if result.PreviousPrice != nil {
		rows = append(rows, []string{"Previous", result.PreviousPrice.Format()})
		if delta := formatDelta(result); delta != "" {
			rows = append(rows, []string{"Change", delta})
		}
	}
	if result.ErrorMessage != "" {
		rows = append(rows, []string{"Error", result.ErrorMessage})
	}

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows:   rows,
	})
	md.PlainText("")

	return len(md.String()), md.Build()
}

// writeHeader writes the report header with run information.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, report *model.CheckReport) {
	md.H1("Pricewatch Check Report")
	md.PlainText("")

	// Basic info table
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Run Date", report.GeneratedAt.Format("2006-01-02 15:04:05 MST")},
			{"Items Checked", strconv.Itoa(report.TotalChecks())},
			{"Status", w.getStatusText(report)},
		},
	})
	md.PlainText("")
}

// getStatusText returns the status text based on report state.
func (w *MarkdownWriter) getStatusText(report *model.CheckReport) string {
	if report.HasFailures() {
		return fmt.Sprintf("❌ %d check(s) failed", report.FailedCount)
	}
	return "✅ Complete"
}

// writeSummary writes the outcome summary section.
func (w *MarkdownWriter) writeSummary(md *markdown.Markdown, report *model.CheckReport) {
	md.H2("Outcome Summary")
	md.PlainText("")

	// Summary table
	md.Table(markdown.TableSet{
		Header: []string{"Outcome", "Count"},
		Rows: [][]string{
			{"📉 Drops", strconv.Itoa(report.DropCount)},
			{"📈 Rises", strconv.Itoa(report.RiseCount)},
			{"🆕 New", strconv.Itoa(report.FirstCount)},
			{"➖ Unchanged", strconv.Itoa(report.UnchangedCount)},
			{"💤 Skipped", strconv.Itoa(report.SkippedCount)},
			{"❌ Failed", strconv.Itoa(report.FailedCount)},
			{"**Total**", "**" + strconv.Itoa(report.TotalChecks()) + "**"},
		},
	})
	md.PlainText("")

	// Add pie chart if anything ran
	if report.TotalChecks() > 0 {
		w.writePieChart(md, report)
	}

	// Add alert based on the run's headline outcome
	w.writeAlert(md, report)
}

// writePieChart writes a mermaid pie chart for the outcome distribution.
func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, report *model.CheckReport) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Check Outcome Distribution"),
		piechart.WithShowData(true),
	)

	if report.DropCount > 0 {
		chart.LabelAndIntValue("Drops", uint64(report.DropCount))
	}
	if report.RiseCount > 0 {
		chart.LabelAndIntValue("Rises", uint64(report.RiseCount))
	}
	if report.FirstCount > 0 {
		chart.LabelAndIntValue("New", uint64(report.FirstCount))
	}
	if report.UnchangedCount > 0 {
		chart.LabelAndIntValue("Unchanged", uint64(report.UnchangedCount))
	}
	if report.SkippedCount > 0 {
		chart.LabelAndIntValue("Skipped", uint64(report.SkippedCount))
	}
	if report.FailedCount > 0 {
		chart.LabelAndIntValue("Failed", uint64(report.FailedCount))
	}

	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writeAlert writes an appropriate alert based on the run's outcome.
func (w *MarkdownWriter) writeAlert(md *markdown.Markdown, report *model.CheckReport) {
	switch {
	case report.HasDrops():
		md.Importantf(
			"%d price drop(s) detected. See the price changes below.",
			report.DropCount,
		)
	case report.HasFailures():
		md.Warningf(
			"%d check(s) failed. See the failures section for details.",
			report.FailedCount,
		)
	case report.RiseCount > 0:
		md.Note(fmt.Sprintf("%d price rise(s) observed, no drops this run.", report.RiseCount))
	default:
		md.Tip("No price drops this run.")
	}
	md.PlainText("")
}

// writeChanges writes price movements grouped by outcome.
func (w *MarkdownWriter) writeChanges(md *markdown.Markdown, report *model.CheckReport) {
	md.H2("Price Changes")
	md.PlainText("")

	if !report.HasChanges() {
		md.PlainText("No price changes observed.")
		md.PlainText("")
		return
	}

	groups := []struct {
		outcome model.Outcome
		header  string
	}{
		{model.OutcomeDrop, "### 📉 Price Drops"},
		{model.OutcomeRise, "### 📈 Price Rises"},
		{model.OutcomeFirst, "### 🆕 First Observations"},
	}

	for _, group := range groups {
		results := report.ResultsByOutcome(group.outcome)
		if len(results) == 0 {
			continue
		}

		md.PlainText(group.header)
		md.PlainText("")
		w.writeChangesTable(md, results)
	}
}

// writeChangesTable writes a table of price movements.
func (w *MarkdownWriter) writeChangesTable(md *markdown.Markdown, results []*model.CheckResult) {
	headers := []string{"Host", "Item", "Previous", "Current", "Change"}

	rows := make([][]string, len(results))
	for i, result := range results {
		host := "-"
		if result.Item != nil {
			host = result.Item.Host
		}

		label := itemLabel(result)
		if label == "" {
			label = result.Input
		}

		previous := "-"
		if result.PreviousPrice != nil {
			previous = result.PreviousPrice.Format()
		}

		change := formatDelta(result)
		if change == "" {
			change = "-"
		}

		rows[i] = []string{
			host,
			truncateString(label, 50),
			previous,
			formatPrice(result.Price),
			change,
		}
	}

	md.Table(markdown.TableSet{
		Header: headers,
		Rows:   rows,
	})
	md.PlainText("")
}

// writeHistory writes recent price history tables for items that
// carry attached history.
func (w *MarkdownWriter) writeHistory(md *markdown.Markdown, report *model.CheckReport) {
	if len(report.History) == 0 {
		return
	}

	md.H2("Price History")
	md.PlainText("")

	// Walk results rather than the map to keep item order stable.
	for _, result := range report.Results {
		if result == nil || result.Item == nil {
			continue
		}
		points, ok := report.History[result.Item.ID]
		if !ok {
			continue
		}

		label := itemLabel(result)
		if label == "" {
			label = result.Item.Host
		}
		md.PlainText("### " + truncateString(label, 60))
		md.PlainText("")

		rows := make([][]string, len(points))
		for i, point := range points {
			available := "yes"
			if !point.Available {
				available = "no"
			}
			rows[i] = []string{
				point.ObservedAt.Format("2006-01-02 15:04"),
				point.Format(),
				available,
			}
		}

		md.Table(markdown.TableSet{
			Header: []string{"Observed", "Price", "In Stock"},
			Rows:   rows,
		})
		md.PlainText("")
	}
}

// writeFailures writes a table of failed checks.
func (w *MarkdownWriter) writeFailures(md *markdown.Markdown, report *model.CheckReport) {
	failures := report.ResultsByOutcome(model.OutcomeFailed)
	if len(failures) == 0 {
		return
	}

	md.H2("Failures")
	md.PlainText("")

	rows := make([][]string, len(failures))
	for i, result := range failures {
		rows[i] = []string{
			truncateString(result.Input, 60),
			truncateString(result.ErrorMessage, 80),
		}
	}

	md.Table(markdown.TableSet{
		Header: []string{"Input", "Error"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [pricewatch](https://github.com/pricewatch/pricewatch)*")
}

// truncateString truncates a string to maxLen characters with ellipsis.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
