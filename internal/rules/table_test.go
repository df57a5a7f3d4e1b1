package rules

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

// testEntries returns a minimal valid rule set.
// Tests can modify individual entries to exercise validation rules.
func testEntries() []Entry {
	return []Entry{
		{
			Host:   "shop.example.com",
			Parser: ParserSelectors,
			Color:  ColorGreen,
			Selectors: Selectors{
				Name:  "h1.product",
				Price: "span.price",
			},
		},
		{
			Host:   "books.example.org",
			Parser: ParserAuto,
			Color:  ColorBlue,
		},
	}
}

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("valid entries build a table", func(t *testing.T) {
		t.Parallel()

		table, err := New(testEntries())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if table.Len() != 2 {
			t.Errorf("expected 2 entries, got %d", table.Len())
		}
	})

	t.Run("hosts are stored canonically", func(t *testing.T) {
		t.Parallel()

		table, err := New([]Entry{
			{Host: "WWW.Shop.Example.COM", Parser: ParserAuto},
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		entry, ok := table.Lookup("shop.example.com")
		if !ok {
			t.Fatal("expected canonical host to be present")
		}
		if entry.Host != "shop.example.com" {
			t.Errorf("expected canonical host, got %q", entry.Host)
		}
	})

	t.Run("empty entry list returns ErrRuleSource", func(t *testing.T) {
		t.Parallel()

		_, err := New(nil)
		if !errors.Is(err, ErrRuleSource) {
			t.Errorf("expected ErrRuleSource, got %v", err)
		}
	})

	t.Run("missing host returns ErrRuleSource", func(t *testing.T) {
		t.Parallel()

		entries := testEntries()
		entries[0].Host = "   "

		_, err := New(entries)
		if !errors.Is(err, ErrRuleSource) {
			t.Errorf("expected ErrRuleSource, got %v", err)
		}
	})

	t.Run("unknown parser returns ErrRuleSource", func(t *testing.T) {
		t.Parallel()

		entries := testEntries()
		entries[0].Parser = "regex"

		_, err := New(entries)
		if !errors.Is(err, ErrRuleSource) {
			t.Errorf("expected ErrRuleSource, got %v", err)
		}
	})

	t.Run("script parser without script returns ErrRuleSource", func(t *testing.T) {
		t.Parallel()

		_, err := New([]Entry{
			{Host: "shop.example.com", Parser: ParserScript},
		})
		if !errors.Is(err, ErrRuleSource) {
			t.Errorf("expected ErrRuleSource, got %v", err)
		}
	})

	t.Run("selectors parser without price selector returns ErrRuleSource", func(t *testing.T) {
		t.Parallel()

		_, err := New([]Entry{
			{Host: "shop.example.com", Parser: ParserSelectors},
		})
		if !errors.Is(err, ErrRuleSource) {
			t.Errorf("expected ErrRuleSource, got %v", err)
		}
	})

	t.Run("duplicate host returns ErrRuleSource", func(t *testing.T) {
		t.Parallel()

		_, err := New([]Entry{
			{Host: "shop.example.com", Parser: ParserAuto},
			{Host: "www.SHOP.example.com", Parser: ParserAuto},
		})
		if !errors.Is(err, ErrRuleSource) {
			t.Errorf("expected ErrRuleSource for hosts that collide canonically, got %v", err)
		}
	})
}

func TestParse(t *testing.T) {
	t.Parallel()

	t.Run("valid YAML", func(t *testing.T) {
		t.Parallel()

		source := `rules:
  - host: shop.example.com
    parser: selectors
    color: green
    currency: USD
    selectors:
      name: "h1.product"
      price: "span.price"
  - host: books.example.org
    parser: auto
    color: blue
`
		table, err := Parse([]byte(source))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		entry, ok := table.Lookup("shop.example.com")
		if !ok {
			t.Fatal("expected shop.example.com in table")
		}
		if entry.Parser != ParserSelectors {
			t.Errorf("expected selectors parser, got %q", entry.Parser)
		}
		if entry.Color != ColorGreen {
			t.Errorf("expected green, got %q", entry.Color)
		}
		if entry.Currency != "USD" {
			t.Errorf("expected USD, got %q", entry.Currency)
		}
		if entry.Selectors.Price != "span.price" {
			t.Errorf("expected price selector, got %q", entry.Selectors.Price)
		}
	})

	t.Run("malformed YAML returns ErrRuleSource", func(t *testing.T) {
		t.Parallel()

		_, err := Parse([]byte("rules: [}"))
		if !errors.Is(err, ErrRuleSource) {
			t.Errorf("expected ErrRuleSource, got %v", err)
		}
	})

	t.Run("empty document returns ErrRuleSource", func(t *testing.T) {
		t.Parallel()

		_, err := Parse([]byte(""))
		if !errors.Is(err, ErrRuleSource) {
			t.Errorf("expected ErrRuleSource, got %v", err)
		}
	})
}

func TestLoad(t *testing.T) {
	t.Parallel()

	t.Run("loads a rules file", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "rules.yaml")
		source := `rules:
  - host: shop.example.com
    parser: auto
    color: red
`
		if err := os.WriteFile(path, []byte(source), 0600); err != nil {
			t.Fatalf("failed to write rules file: %v", err)
		}

		table, err := Load(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !table.IsSupportedURL("https://shop.example.com/item/1") {
			t.Error("expected loaded host to be supported")
		}
	})

	t.Run("missing file returns ErrRuleSource", func(t *testing.T) {
		t.Parallel()

		_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
		if !errors.Is(err, ErrRuleSource) {
			t.Errorf("expected ErrRuleSource, got %v", err)
		}
	})
}

func TestDefault(t *testing.T) {
	t.Parallel()

	table := Default()
	if table.Len() == 0 {
		t.Fatal("expected embedded rules to contain entries")
	}

	// The embedded table must always include the practice shop used in
	// documentation examples.
	if _, ok := table.Lookup("books.toscrape.com"); !ok {
		t.Error("expected books.toscrape.com in embedded rules")
	}

	for _, host := range table.SupportedHosts() {
		entry, ok := table.Lookup(host)
		if !ok {
			t.Errorf("host %q listed but not resolvable", host)
			continue
		}
		if !knownParsers[entry.Parser] {
			t.Errorf("host %q has unknown parser %q", host, entry.Parser)
		}
	}
}

func TestDefaultSource(t *testing.T) {
	t.Parallel()

	src := DefaultSource()
	if len(src) == 0 {
		t.Fatal("expected non-empty default source")
	}

	// Mutating the copy must not affect what Default parses.
	src[0] = '#'
	if _, err := Parse(DefaultSource()); err != nil {
		t.Errorf("default source no longer parses after copy mutation: %v", err)
	}
}

func TestTableViews(t *testing.T) {
	t.Parallel()

	table, err := New(testEntries())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	t.Run("SupportedHosts is sorted", func(t *testing.T) {
		t.Parallel()

		hosts := table.SupportedHosts()
		want := []string{"books.example.org", "shop.example.com"}
		if len(hosts) != len(want) {
			t.Fatalf("expected %d hosts, got %d", len(want), len(hosts))
		}
		for i := range want {
			if hosts[i] != want[i] {
				t.Errorf("expected hosts[%d]=%q, got %q", i, want[i], hosts[i])
			}
		}
	})

	t.Run("SupportedHosts returns a copy", func(t *testing.T) {
		t.Parallel()

		hosts := table.SupportedHosts()
		hosts[0] = "mutated"
		if table.SupportedHosts()[0] == "mutated" {
			t.Error("expected internal host list to be unaffected")
		}
	})

	t.Run("ColorOf known host", func(t *testing.T) {
		t.Parallel()

		c, ok := table.ColorOf("shop.example.com")
		if !ok {
			t.Fatal("expected color for shop.example.com")
		}
		if c != ColorGreen {
			t.Errorf("expected green, got %q", c)
		}
	})

	t.Run("ColorOf unknown host", func(t *testing.T) {
		t.Parallel()

		if _, ok := table.ColorOf("other.com"); ok {
			t.Error("expected no color for unknown host")
		}
	})

	t.Run("Lookup unknown host", func(t *testing.T) {
		t.Parallel()

		if _, ok := table.Lookup("other.com"); ok {
			t.Error("expected no entry for unknown host")
		}
	})
}

func TestIsSupportedURL(t *testing.T) {
	t.Parallel()

	table, err := New([]Entry{
		{Host: "shop.example.com", Parser: ParserAuto},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tests := []struct {
		name string
		raw  string
		want bool
	}{
		{
			name: "supported host",
			raw:  "https://shop.example.com/item/1",
			want: true,
		},
		{
			name: "supported host with noise",
			raw:  "HTTP://WWW.Shop.Example.com/item/1/?utm_source=x#frag",
			want: true,
		},
		{
			name: "unsupported host",
			raw:  "https://other.com/item/1",
			want: false,
		},
		{
			name: "subdomain of supported host is not supported",
			raw:  "https://deep.shop.example.com/item/1",
			want: false,
		},
		{
			name: "unparseable input",
			raw:  "not a url",
			want: false,
		},
		{
			name: "empty input",
			raw:  "",
			want: false,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := table.IsSupportedURL(tt.raw); got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}
