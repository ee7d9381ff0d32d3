// Package markdown scans Markdown source once into an immutable list of
// blocks. The template builder and the parameter collector both consume the
// same list, so placeholder ordinals always agree.
package markdown

import (
	"fmt"
	"strings"
)

// Kind identifies a block type.
type Kind int

const (
	KindParagraph Kind = iota
	KindHeading
	KindListItem
	KindTable
	KindChart
	KindMermaid
	KindImage
	KindCode
)

func (k Kind) String() string {
	switch k {
	case KindHeading:
		return "heading"
	case KindListItem:
		return "list_item"
	case KindTable:
		return "table"
	case KindChart:
		return "chart"
	case KindMermaid:
		return "mermaid"
	case KindImage:
		return "image"
	case KindCode:
		return "code"
	}
	return "paragraph"
}

// MaxListDepth is the deepest list nesting level kept; deeper items are clamped.
const MaxListDepth = 8

// Run is an inline span with its emphasis flags.
type Run struct {
	Text   string
	Bold   bool
	Italic bool
	Code   bool
}

// Block is one body element in document order.
type Block struct {
	Kind Kind

	Level   int // heading level 1-6
	Depth   int // list nesting 0-8
	Ordered bool
	ListID  int // items of one Markdown list share an id

	Runs   []Run
	Rows   [][]string // table cells, header first
	Source string     // chart config, mermaid or code text
	Alt    string
	Src    string

	// Index is the 1-based ordinal among blocks of the same kind. Only set
	// for charts, tables, images and mermaid diagrams.
	Index int
}

// Text returns the concatenated run text.
func (b Block) Text() string {
	var sb strings.Builder
	for _, r := range b.Runs {
		sb.WriteString(r.Text)
	}
	return sb.String()
}

// Key returns the placeholder name of a keyed block, or "".
func (b Block) Key() string {
	switch b.Kind {
	case KindChart:
		return fmt.Sprintf("chart%d", b.Index)
	case KindTable:
		return fmt.Sprintf("table%d", b.Index)
	case KindImage:
		return fmt.Sprintf("image%d", b.Index)
	case KindMermaid:
		return fmt.Sprintf("mermaid%d", b.Index)
	}
	return ""
}

// Document is the scanned source.
type Document struct {
	Title  string // from front matter, "" when absent
	Blocks []Block
}

// Headings returns the heading blocks in order.
func (d *Document) Headings() []Block {
	var out []Block
	for _, b := range d.Blocks {
		if b.Kind == KindHeading {
			out = append(out, b)
		}
	}
	return out
}
