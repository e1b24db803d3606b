package art

import (
	"fmt"
	"strings"
)

type Style string

const (
	StyleRealistic     Style = "realistic"
	StyleAbstract      Style = "abstract"
	StyleImpressionist Style = "impressionist"
	StylePixel         Style = "pixel"
)

// Styles lists every supported style in presentation order.
var Styles = []Style{StyleRealistic, StyleAbstract, StyleImpressionist, StylePixel}

type StyleEntry struct {
	Style         Style
	Suffix        string
	Description   string
	ExamplePrompt string
}

// StyleTable maps each style to the text appended to user prompts. It is
// read-only once constructed and safe for concurrent use.
type StyleTable struct {
	entries map[Style]StyleEntry
}

func NewStyleTable(entries []StyleEntry) (*StyleTable, error) {
	table := &StyleTable{
		entries: make(map[Style]StyleEntry, len(entries)),
	}

	for _, entry := range entries {
		if _, ok := table.entries[entry.Style]; ok {
			return nil, fmt.Errorf("duplicate style entry: %s", entry.Style)
		}
		if strings.TrimSpace(entry.Suffix) == "" {
			return nil, fmt.Errorf("empty suffix for style: %s", entry.Style)
		}
		table.entries[entry.Style] = entry
	}

	for _, style := range Styles {
		if _, ok := table.entries[style]; !ok {
			return nil, fmt.Errorf("missing style entry: %s", style)
		}
	}

	if len(table.entries) != len(Styles) {
		return nil, fmt.Errorf("unknown style entries: got %d, want %d", len(table.entries), len(Styles))
	}

	return table, nil
}

func DefaultStyleTable() *StyleTable {
	table, err := NewStyleTable(defaultStyleEntries)
	if err != nil {
		panic(err)
	}
	return table
}

var defaultStyleEntries = []StyleEntry{
	{
		Style:         StyleRealistic,
		Suffix:        "highly detailed, photorealistic, 8k",
		Description:   "Photorealistic images with fine detail",
		ExamplePrompt: "a lighthouse on a rocky coast at sunset",
	},
	{
		Style:         StyleAbstract,
		Suffix:        "abstract art style, bold colors, geometric shapes",
		Description:   "Bold colors and geometric shapes",
		ExamplePrompt: "the feeling of a busy city morning",
	},
	{
		Style:         StyleImpressionist,
		Suffix:        "impressionist painting style, loose brushstrokes",
		Description:   "Impressionist painting with loose brushstrokes",
		ExamplePrompt: "a garden full of water lilies",
	},
	{
		Style:         StylePixel,
		Suffix:        "pixel art style, 16-bit, retro gaming",
		Description:   "16-bit retro pixel art",
		ExamplePrompt: "a knight standing in front of a castle",
	},
}

func (t *StyleTable) Suffix(style Style) (string, bool) {
	entry, ok := t.entries[style]
	return entry.Suffix, ok
}

func (t *StyleTable) Entry(style Style) (StyleEntry, bool) {
	entry, ok := t.entries[style]
	return entry, ok
}

func (t *StyleTable) Contains(style Style) bool {
	_, ok := t.entries[style]
	return ok
}

// Names returns the style names in presentation order.
func (t *StyleTable) Names() []string {
	names := make([]string, 0, len(Styles))
	for _, style := range Styles {
		names = append(names, string(style))
	}
	return names
}

// Enhance appends the style suffix to the prompt. Styles are validated before
// enhancement, so every style reaching here has an entry.
func (t *StyleTable) Enhance(prompt string, style Style) string {
	return fmt.Sprintf("%s, %s", prompt, t.entries[style].Suffix)
}
