package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/pricewatch/pricewatch/internal/model"
	"github.com/pricewatch/pricewatch/internal/rules"
)

// testResult builds one check result for writer tests.
func testResult(input string, item *model.Item, price, previous *model.PricePoint) *model.CheckResult {
	r := model.NewCheckResult(input)
	r.Item = item
	r.Price = price
	r.PreviousPrice = previous
	r.Duration = 230 * time.Millisecond
	return r
}

func testPrice(amount int64, cur string) *model.PricePoint {
	return &model.PricePoint{
		Amount:     amount,
		Currency:   cur,
		Available:  true,
		ObservedAt: time.Date(2026, 8, 20, 10, 30, 0, 0, time.UTC),
	}
}

// createTestReport creates a report with one result per outcome.
func createTestReport() *model.CheckReport {
	book := &model.Item{
		ID:   "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa",
		URL:  "https://books.toscrape.com/catalogue/a-light-in-the-attic_1000/index.html",
		Host: "books.toscrape.com",
		Name: "A Light in the Attic",
	}
	keyboard := &model.Item{
		ID:   "bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb",
		URL:  "https://shop.example.com/keyboards/mk-87",
		Host: "shop.example.com",
		Name: "Mechanical Keyboard",
	}
	cable := &model.Item{
		ID:   "cccccccccccccccccccccccccccccccccccccccc",
		URL:  "https://shop.example.com/cables/usb-c",
		Host: "shop.example.com",
		Name: "USB-C Cable",
	}
	novel := &model.Item{
		ID:   "dddddddddddddddddddddddddddddddddddddddd",
		URL:  "https://books.toscrape.com/catalogue/sapiens_99/index.html",
		Host: "books.toscrape.com",
		Name: "Sapiens",
	}

	drop := testResult(book.URL, book, testPrice(4520, "GBP"), testPrice(5177, "GBP"))
	rise := testResult(keyboard.URL, keyboard, testPrice(12999, "USD"), testPrice(10999, "USD"))
	first := testResult(cable.URL, cable, testPrice(599, "USD"), nil)
	unchanged := testResult(novel.URL, novel, testPrice(1899, "GBP"), testPrice(1899, "GBP"))

	skipped := model.NewCheckResult("https://books.toscrape.com/catalogue/recent_5/index.html")
	skipped.Skipped = true
	skipped.SkipReason = "checked within the last 1h0m0s"

	failed := model.NewCheckResult("https://shop.example.com/gone/404")
	failed.SetError(errors.New("fetch https://shop.example.com/gone/404: status 404"))

	report := model.NewCheckReport([]*model.CheckResult{drop, rise, first, unchanged, skipped, failed})
	report.Duration = 1200 * time.Millisecond
	return report
}

// colorTestTable builds a rule table for host color tests.
func colorTestTable(t *testing.T) *rules.Table {
	t.Helper()

	table, err := rules.New([]rules.Entry{
		{
			Host:   "books.toscrape.com",
			Parser: rules.ParserSelectors,
			Color:  rules.ColorGreen,
			Selectors: rules.Selectors{
				Price: "p.price_color",
			},
		},
		{
			Host:   "shop.example.com",
			Parser: rules.ParserSelectors,
			Color:  rules.ColorCyan,
			Selectors: rules.Selectors{
				Price: ".price",
			},
		},
	})
	if err != nil {
		t.Fatalf("failed to build rule table: %v", err)
	}
	return table
}

// TestSimpleWriter tests the human-readable report writer.
func TestSimpleWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes report header", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewSimpleWriter(&buf)
		report := createTestReport()

		_, err := w.Write(report)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "PRICEWATCH CHECK REPORT") {
			t.Error("expected output to contain header")
		}
		if !strings.Contains(output, "Items Checked:  6") {
			t.Error("expected output to contain item count")
		}
	})

	t.Run("writes outcome summary", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewSimpleWriter(&buf)
		report := createTestReport()

		_, err := w.Write(report)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "OUTCOME SUMMARY") {
			t.Error("expected output to contain outcome summary")
		}
		if !strings.Contains(output, "DROPS:      1") {
			t.Error("expected output to contain drop count")
		}
		if !strings.Contains(output, "TOTAL:      6 checks") {
			t.Error("expected output to contain total count")
		}
	})

	t.Run("writes price drops", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewSimpleWriter(&buf)
		report := createTestReport()

		_, err := w.Write(report)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "PRICE DROPS") {
			t.Error("expected output to contain drops section")
		}
		if !strings.Contains(output, "A Light in the Attic") {
			t.Error("expected output to contain dropped item name")
		}
		if !strings.Contains(output, "->") {
			t.Error("expected output to contain price movement")
		}
	})

	t.Run("lists failures", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewSimpleWriter(&buf)
		report := createTestReport()

		_, err := w.Write(report)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "FAILED CHECKS") {
			t.Error("expected output to contain failures section")
		}
		if !strings.Contains(output, "status 404") {
			t.Error("expected output to contain the error message")
		}
	})

	t.Run("shows failure status in header", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewSimpleWriter(&buf)
		report := createTestReport()

		_, err := w.Write(report)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if !strings.Contains(buf.String(), "1 check(s) failed") {
			t.Error("expected header status to report failures")
		}
	})

	t.Run("hides unchanged and skipped by default", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewSimpleWriter(&buf)
		report := createTestReport()

		_, err := w.Write(report)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if strings.Contains(output, "UNCHANGED\n") {
			t.Error("expected no unchanged section by default")
		}
		if strings.Contains(output, "Sapiens") {
			t.Error("expected unchanged item to be omitted by default")
		}
	})

	t.Run("shows unchanged and skipped with showAll", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewSimpleWriter(&buf, WithShowAll(true))
		report := createTestReport()

		_, err := w.Write(report)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "UNCHANGED") {
			t.Error("expected unchanged section with showAll")
		}
		if !strings.Contains(output, "Sapiens") {
			t.Error("expected unchanged item with showAll")
		}
		if !strings.Contains(output, "SKIPPED") {
			t.Error("expected skipped section with showAll")
		}
		if !strings.Contains(output, "checked within the last") {
			t.Error("expected skip reason with showAll")
		}
	})

	t.Run("shows empty sections with showAll", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewSimpleWriter(&buf, WithShowAll(true))
		ok := testResult("https://shop.example.com/a",
			&model.Item{Host: "shop.example.com", Name: "Widget"},
			testPrice(1099, "USD"), testPrice(1099, "USD"))

		_, err := w.Write(model.NewCheckReport([]*model.CheckResult{ok}))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if !strings.Contains(buf.String(), "(none)") {
			t.Error("expected empty sections to be marked")
		}
	})

	t.Run("verbose mode includes URLs and timing", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewSimpleWriter(&buf, WithVerbose(true))
		report := createTestReport()

		_, err := w.Write(report)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "URL: https://books.toscrape.com") {
			t.Error("expected verbose output to contain item URLs")
		}
		if !strings.Contains(output, "Took:") {
			t.Error("expected verbose output to contain durations")
		}
	})

	t.Run("renders hosts from the rule table", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewSimpleWriter(&buf, WithColorTable(colorTestTable(t)))
		report := createTestReport()

		_, err := w.Write(report)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		// Color codes depend on the terminal, but the host text always
		// survives the colorize step.
		if !strings.Contains(buf.String(), "books.toscrape.com") {
			t.Error("expected colored host names to keep their text")
		}
	})
}

// TestSimpleWriterWriteResult tests per-item output.
func TestSimpleWriterWriteResult(t *testing.T) {
	t.Parallel()

	t.Run("writes a drop entry", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewSimpleWriter(&buf)
		item := &model.Item{Host: "books.toscrape.com", Name: "A Light in the Attic"}
		result := testResult("https://books.toscrape.com/x", item,
			testPrice(4520, "GBP"), testPrice(5177, "GBP"))

		_, err := w.WriteResult(result)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "[v]") {
			t.Error("expected drop indicator [v]")
		}
		if !strings.Contains(output, "A Light in the Attic") {
			t.Error("expected item name in output")
		}
		if !strings.Contains(output, "->") {
			t.Error("expected price movement in output")
		}
	})

	t.Run("writes a failed entry", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewSimpleWriter(&buf)
		result := model.NewCheckResult("https://unknown.example.com/p")
		result.SetError(errors.New("unsupported host: unknown.example.com"))

		_, err := w.WriteResult(result)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "[x]") {
			t.Error("expected failure indicator [x]")
		}
		if !strings.Contains(output, "error: unsupported host") {
			t.Error("expected error detail in output")
		}
	})

	t.Run("falls back to input when unresolved", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewSimpleWriter(&buf)
		result := model.NewCheckResult("https://shop.example.com/no-item")
		result.Skipped = true

		_, err := w.WriteResult(result)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if !strings.Contains(buf.String(), "https://shop.example.com/no-item") {
			t.Error("expected raw input in output")
		}
	})

	t.Run("marks out of stock prices", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewSimpleWriter(&buf)
		price := testPrice(4520, "GBP")
		price.Available = false
		item := &model.Item{Host: "books.toscrape.com", Name: "A Light in the Attic"}
		result := testResult("https://books.toscrape.com/x", item, price, nil)

		_, err := w.WriteResult(result)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if !strings.Contains(buf.String(), "(out of stock)") {
			t.Error("expected out of stock marker")
		}
	})
}

// TestJSONWriter tests the JSON report writer.
func TestJSONWriter(t *testing.T) {
	t.Parallel()

	t.Run("outputs valid JSON", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewJSONWriter(&buf)
		report := createTestReport()

		_, err := w.Write(report)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var parsed model.CheckReport
		if err := json.Unmarshal(buf.Bytes(), &parsed); err != nil {
			t.Fatalf("output is not valid JSON: %v", err)
		}

		if parsed.DropCount != 1 {
			t.Errorf("expected drop count 1, got %d", parsed.DropCount)
		}
		if len(parsed.Results) != 6 {
			t.Errorf("expected 6 results, got %d", len(parsed.Results))
		}
	})

	t.Run("compact output by default", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewJSONWriter(&buf)
		report := createTestReport()

		_, err := w.Write(report)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		// Compact JSON should be on fewer lines
		lines := strings.Split(strings.TrimSpace(output), "\n")
		if len(lines) > 1 {
			t.Errorf("expected compact output (1 line), got %d lines", len(lines))
		}
	})

	t.Run("pretty print with indent", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewJSONWriter(&buf, WithPrettyPrint())
		report := createTestReport()

		_, err := w.Write(report)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		// Pretty printed JSON should have multiple lines
		lines := strings.Split(strings.TrimSpace(output), "\n")
		if len(lines) < 5 {
			t.Errorf("expected multi-line output, got %d lines", len(lines))
		}
	})

	t.Run("WriteResult outputs a single result", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewJSONWriter(&buf)
		result := model.NewCheckResult("https://shop.example.com/p")
		result.SetError(errors.New("fetch failed"))

		_, err := w.WriteResult(result)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var parsed model.CheckResult
		if err := json.Unmarshal(buf.Bytes(), &parsed); err != nil {
			t.Fatalf("output is not valid JSON: %v", err)
		}

		if parsed.Input != "https://shop.example.com/p" {
			t.Errorf("unexpected input: %q", parsed.Input)
		}
		if parsed.ErrorMessage != "fetch failed" {
			t.Errorf("unexpected error message: %q", parsed.ErrorMessage)
		}
	})

	t.Run("uses custom prefix and indent", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewJSONWriter(&buf, WithIndent(">>", "\t"))
		report := createTestReport()

		_, err := w.Write(report)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, ">>") {
			t.Error("expected custom prefix '>>' in output")
		}
		if !strings.Contains(output, "\t") {
			t.Error("expected tab indentation in output")
		}
	})
}

// TestFullJSONWriter tests the full JSON writer with metadata.
func TestFullJSONWriter(t *testing.T) {
	t.Parallel()

	t.Run("includes version in output", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewFullJSONWriter(&buf, "1.2.0", WithPrettyPrint())
		report := createTestReport()

		_, err := w.Write(report)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var parsed JSONReport
		if err := json.Unmarshal(buf.Bytes(), &parsed); err != nil {
			t.Fatalf("output is not valid JSON: %v", err)
		}

		if parsed.Version != "1.2.0" {
			t.Errorf("expected version %q, got %q", "1.2.0", parsed.Version)
		}
		if parsed.Report == nil || parsed.Report.TotalChecks() != 6 {
			t.Error("expected wrapped report with results")
		}
	})
}

// TestMultiWriter tests writing to multiple outputs.
func TestMultiWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes to all writers", func(t *testing.T) {
		t.Parallel()

		var buf1, buf2 bytes.Buffer
		w1 := NewSimpleWriter(&buf1)
		w2 := NewJSONWriter(&buf2)

		multi := NewMultiWriter(w1, w2)
		report := createTestReport()

		_, err := multi.Write(report)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		// Check both buffers have content
		if buf1.Len() == 0 {
			t.Error("expected buf1 to have content")
		}
		if buf2.Len() == 0 {
			t.Error("expected buf2 to have content")
		}

		// Verify formats are different
		if strings.Contains(buf1.String(), "{") {
			t.Error("expected buf1 (simple) to not be JSON")
		}
		if !strings.Contains(buf2.String(), "{") {
			t.Error("expected buf2 (JSON) to contain JSON")
		}
	})

	t.Run("writes single results to all writers", func(t *testing.T) {
		t.Parallel()

		var buf1, buf2 bytes.Buffer
		multi := NewMultiWriter(NewSimpleWriter(&buf1), NewJSONWriter(&buf2))
		item := &model.Item{Host: "shop.example.com", Name: "Widget"}
		result := testResult("https://shop.example.com/w", item, testPrice(1099, "USD"), nil)

		n, err := multi.WriteResult(result)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if n == 0 {
			t.Error("expected non-zero bytes written")
		}
		if buf1.Len() == 0 || buf2.Len() == 0 {
			t.Error("expected both buffers to have content")
		}
	})

	t.Run("handles empty writers list", func(t *testing.T) {
		t.Parallel()

		multi := NewMultiWriter()
		report := createTestReport()

		n, err := multi.Write(report)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if n != 0 {
			t.Errorf("expected 0 bytes written for empty writers, got %d", n)
		}
	})
}

// TestMarkdownWriter tests the Markdown report writer.
func TestMarkdownWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes report header", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewMarkdownWriter(&buf)
		report := createTestReport()

		_, err := w.Write(report)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "# Pricewatch Check Report") {
			t.Error("expected output to contain H1 header")
		}
		if !strings.Contains(output, "Items Checked") {
			t.Error("expected output to contain item count row")
		}
	})

	t.Run("writes outcome summary", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewMarkdownWriter(&buf)
		report := createTestReport()

		_, err := w.Write(report)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "## Outcome Summary") {
			t.Error("expected output to contain summary header")
		}
		if !strings.Contains(output, "📉 Drops") {
			t.Error("expected output to contain drop row")
		}
	})

	t.Run("writes price changes tables", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewMarkdownWriter(&buf)
		report := createTestReport()

		_, err := w.Write(report)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "## Price Changes") {
			t.Error("expected output to contain changes header")
		}
		if !strings.Contains(output, "### 📉 Price Drops") {
			t.Error("expected output to contain drops group")
		}
		if !strings.Contains(output, "A Light in the Attic") {
			t.Error("expected output to contain dropped item")
		}
		if !strings.Contains(output, "### 🆕 First Observations") {
			t.Error("expected output to contain first observations group")
		}
	})

	t.Run("includes GitHub alert for price drops", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewMarkdownWriter(&buf)
		report := createTestReport()

		_, err := w.Write(report)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if !strings.Contains(buf.String(), "[!IMPORTANT]") {
			t.Error("expected IMPORTANT alert for price drops")
		}
	})

	t.Run("includes warning when only failures", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewMarkdownWriter(&buf)
		failed := model.NewCheckResult("https://shop.example.com/gone")
		failed.SetError(errors.New("fetch failed"))
		report := model.NewCheckReport([]*model.CheckResult{failed})

		_, err := w.Write(report)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if !strings.Contains(buf.String(), "[!WARNING]") {
			t.Error("expected WARNING alert for failures")
		}
	})

	t.Run("includes tip when nothing changed", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewMarkdownWriter(&buf)
		item := &model.Item{Host: "shop.example.com", Name: "Widget"}
		unchanged := testResult("https://shop.example.com/w", item,
			testPrice(1099, "USD"), testPrice(1099, "USD"))
		report := model.NewCheckReport([]*model.CheckResult{unchanged})

		_, err := w.Write(report)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "[!TIP]") {
			t.Error("expected TIP alert when nothing changed")
		}
		if !strings.Contains(output, "No price changes observed") {
			t.Error("expected no-changes message")
		}
	})

	t.Run("includes pie chart", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewMarkdownWriter(&buf)
		report := createTestReport()

		_, err := w.Write(report)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if !strings.Contains(buf.String(), "pie") {
			t.Error("expected output to contain mermaid pie chart")
		}
	})

	t.Run("includes price history tables", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewMarkdownWriter(&buf)
		report := createTestReport()
		report.AttachHistory("aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa", []model.PricePoint{
			*testPrice(5177, "GBP"),
			*testPrice(4520, "GBP"),
		})

		_, err := w.Write(report)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "## Price History") {
			t.Error("expected price history section")
		}
		if !strings.Contains(output, "2026-08-20") {
			t.Error("expected observation dates in history table")
		}
		if !strings.Contains(output, "In Stock") {
			t.Error("expected availability column")
		}
	})

	t.Run("omits history section without attached history", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewMarkdownWriter(&buf)
		report := createTestReport()

		_, err := w.Write(report)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if strings.Contains(buf.String(), "## Price History") {
			t.Error("expected no history section without attached history")
		}
	})

	t.Run("lists failures", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewMarkdownWriter(&buf)
		report := createTestReport()

		_, err := w.Write(report)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "## Failures") {
			t.Error("expected failures section")
		}
		if !strings.Contains(output, "status 404") {
			t.Error("expected failure detail")
		}
	})

	t.Run("writes footer with link", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewMarkdownWriter(&buf)
		report := createTestReport()

		_, err := w.Write(report)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if !strings.Contains(buf.String(), "https://github.com/pricewatch/pricewatch") {
			t.Error("expected footer with repository link")
		}
	})

	t.Run("WriteResult renders a single item", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewMarkdownWriter(&buf)
		item := &model.Item{Host: "books.toscrape.com", URL: "https://books.toscrape.com/x", Name: "A Light in the Attic"}
		result := testResult(item.URL, item, testPrice(4520, "GBP"), testPrice(5177, "GBP"))

		_, err := w.WriteResult(result)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "## A Light in the Attic") {
			t.Error("expected item heading")
		}
		if !strings.Contains(output, "DROP") {
			t.Error("expected outcome row")
		}
		if !strings.Contains(output, "books.toscrape.com") {
			t.Error("expected host row")
		}
	})
}

// TestTruncateString tests the string truncation helper.
func TestTruncateString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input    string
		maxLen   int
		expected string
	}{
		{"short", 10, "short"},
		{"exactly10!", 10, "exactly10!"},
		{"this is a longer string", 10, "this is..."},
		{"abc", 3, "abc"},
		{"abcd", 3, "abc"},
		{"ab", 5, "ab"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()
			result := truncateString(tt.input, tt.maxLen)
			if result != tt.expected {
				t.Errorf("truncateString(%q, %d) = %q, want %q",
					tt.input, tt.maxLen, result, tt.expected)
			}
		})
	}
}
