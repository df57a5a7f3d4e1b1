package rules

// Parser identifiers recognized in rule entries. The scrape package
// registers one implementation per identifier.
const (
	// ParserSelectors extracts fields with CSS selectors.
	ParserSelectors = "selectors"
	// ParserXPath extracts fields with XPath expressions.
	ParserXPath = "xpath"
	// ParserScript runs a per-site JavaScript extraction snippet.
	ParserScript = "script"
	// ParserAuto uses heuristics for hosts without tailored rules.
	ParserAuto = "auto"
)

// knownParsers is the set of valid parser identifiers.
var knownParsers = map[string]bool{
	ParserSelectors: true,
	ParserXPath:     true,
	ParserScript:    true,
	ParserAuto:      true,
}

// Color names the display color a host's items are rendered with.
// Unknown values are carried through and rendered unstyled.
type Color string

// Display colors understood by the report writers.
const (
	ColorRed     Color = "red"
	ColorGreen   Color = "green"
	ColorYellow  Color = "yellow"
	ColorBlue    Color = "blue"
	ColorMagenta Color = "magenta"
	ColorCyan    Color = "cyan"
	ColorWhite   Color = "white"
)

// String returns the color name.
func (c Color) String() string {
	return string(c)
}

// Selectors configures field extraction for the selectors and xpath
// parsers. Each field holds a CSS selector or XPath expression,
// depending on the entry's parser.
type Selectors struct {
	// Name locates the product name.
	Name string `yaml:"name,omitempty"`

	// Price locates the price text.
	Price string `yaml:"price,omitempty"`

	// Availability locates the stock or availability text.
	Availability string `yaml:"availability,omitempty"`

	// Image locates the main product image element.
	Image string `yaml:"image,omitempty"`
}

// Entry describes how pages on a single host are parsed and displayed.
// Entries are static after load.
type Entry struct {
	// Host is the canonical hostname the entry applies to, stored
	// lowercase without a leading "www.".
	Host string `yaml:"host"`

	// Parser names the extraction strategy for this host. Must be one
	// of the parser identifier constants.
	Parser string `yaml:"parser"`

	// Color is the display color used when rendering this host's items.
	Color Color `yaml:"color,omitempty"`

	// Selectors configures the selectors and xpath parsers.
	Selectors Selectors `yaml:"selectors,omitempty"`

	// Currency is an optional ISO 4217 hint used when the page shows a
	// bare number or an ambiguous symbol.
	Currency string `yaml:"currency,omitempty"`

	// Script is the JavaScript snippet run by the script parser. It
	// receives the page and must return the extracted fields.
	Script string `yaml:"script,omitempty"`
}

// file is the YAML shape of a rules source.
type file struct {
	Rules []Entry `yaml:"rules"`
}
