// Package wordml is a small WordprocessingML document model: body blocks,
// paragraphs made of formatting runs, tables, inline images and chart parts,
// read from and written to .docx packages.
package wordml

import (
	"strconv"
	"strings"

	"github.com/beevik/etree"
)

// Block is a body-level element: *Paragraph, *Table or *RawBlock.
type Block interface {
	block()
}

// Paragraph is an ordered sequence of runs sharing paragraph properties.
type Paragraph struct {
	Props *etree.Element // w:pPr, nil when the paragraph has none
	Runs  []Run
}

// Run is a contiguous span of text with one set of run properties.
//
// A run with Raw set is an opaque paragraph child (drawing, field, bookmark,
// hyperlink) written back verbatim; its Text is always empty.
type Run struct {
	Props *etree.Element // w:rPr
	Text  string
	Image *Image // drawn after Text
	Raw   *etree.Element
}

// Image is picture data embedded at a run position.
type Image struct {
	Data   []byte
	Ext    string // file extension without dot: png, jpeg, gif, bmp
	Width  int64  // display width in EMU
	Height int64  // display height in EMU
	Name   string
}

// Table is a w:tbl whose cells hold blocks.
type Table struct {
	Props *etree.Element // w:tblPr
	Grid  *etree.Element // w:tblGrid, generated on write when nil
	Rows  []*TableRow
}

type TableRow struct {
	Props *etree.Element // w:trPr
	Cells []*TableCell
}

type TableCell struct {
	Props  *etree.Element // w:tcPr
	Blocks []Block
}

// RawBlock is a body child the model does not interpret.
type RawBlock struct {
	El *etree.Element
}

func (*Paragraph) block() {}
func (*Table) block()     {}
func (*RawBlock) block()  {}

// Text returns the concatenated text of all runs.
func (p *Paragraph) Text() string {
	var sb strings.Builder
	for _, r := range p.Runs {
		sb.WriteString(r.Text)
	}
	return sb.String()
}

// StyleID returns the paragraph style id, or "" when unset.
func (p *Paragraph) StyleID() string {
	return childVal(p.Props, "w:pStyle")
}

// Alignment returns the w:jc value, or "" when unset.
func (p *Paragraph) Alignment() string {
	return childVal(p.Props, "w:jc")
}

// NumID returns the numbering id and level of a list paragraph; ok is false
// when the paragraph is not bound to a numbering definition.
func (p *Paragraph) NumID() (numID, level string, ok bool) {
	if p.Props == nil {
		return "", "", false
	}
	numPr := p.Props.SelectElement("w:numPr")
	if numPr == nil {
		return "", "", false
	}
	return childVal(numPr, "w:numId"), childVal(numPr, "w:ilvl"), true
}

// Bold reports whether the run carries direct bold formatting.
func (r Run) Bold() bool { return onOff(r.Props, "w:b") }

// Italic reports whether the run carries direct italic formatting.
func (r Run) Italic() bool { return onOff(r.Props, "w:i") }

// Font returns the ascii font of the run, or "" when unset.
func (r Run) Font() string {
	if r.Props == nil {
		return ""
	}
	if f := r.Props.SelectElement("w:rFonts"); f != nil {
		return f.SelectAttrValue("w:ascii", f.SelectAttrValue("w:eastAsia", ""))
	}
	return ""
}

// Size returns the run font size in half-points, or 0 when unset.
func (r Run) Size() int {
	n, _ := strconv.Atoi(childVal(r.Props, "w:sz"))
	return n
}

// Text returns the concatenated text of every paragraph in the cell.
func (c *TableCell) Text() string {
	var parts []string
	for _, b := range c.Blocks {
		if p, ok := b.(*Paragraph); ok {
			parts = append(parts, p.Text())
		}
	}
	return strings.Join(parts, "\n")
}

// Paragraphs returns all top-level paragraphs in body order.
func Paragraphs(blocks []Block) []*Paragraph {
	var out []*Paragraph
	for _, b := range blocks {
		if p, ok := b.(*Paragraph); ok {
			out = append(out, p)
		}
	}
	return out
}

// Tables returns all top-level tables in body order.
func Tables(blocks []Block) []*Table {
	var out []*Table
	for _, b := range blocks {
		if t, ok := b.(*Table); ok {
			out = append(out, t)
		}
	}
	return out
}

func childVal(parent *etree.Element, tag string) string {
	if parent == nil {
		return ""
	}
	if el := parent.SelectElement(tag); el != nil {
		return el.SelectAttrValue("w:val", "")
	}
	return ""
}

func onOff(parent *etree.Element, tag string) bool {
	if parent == nil {
		return false
	}
	el := parent.SelectElement(tag)
	if el == nil {
		return false
	}
	switch el.SelectAttrValue("w:val", "true") {
	case "0", "false", "off":
		return false
	}
	return true
}
