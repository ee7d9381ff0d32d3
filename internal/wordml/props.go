package wordml

import "github.com/beevik/etree"

// Paragraph alignment values for w:jc.
const (
	AlignLeft   = "left"
	AlignCenter = "center"
	AlignRight  = "right"
	AlignBoth   = "both"
)

// ParagraphStyle describes direct paragraph formatting. Zero fields are
// omitted from the generated w:pPr.
type ParagraphStyle struct {
	StyleID        string
	Align          string
	Line           int // line spacing in 240ths of a line, auto rule
	Before, After  int // spacing in twips, only written when SetSpacing is true
	SetSpacing     bool
	FirstLine      int // first-line indent in twips
	FirstLineChars int // first-line indent in hundredths of a character
	Left, Hanging  int // twips
	NumID          int
	Level          int
	KeepNext       bool
	OutlineLevel   int // 1-based, 0 means unset
}

// Element builds the w:pPr element. Child order follows the schema.
func (s ParagraphStyle) Element() *etree.Element {
	ppr := etree.NewElement("w:pPr")
	if s.StyleID != "" {
		setVal(ppr.CreateElement("w:pStyle"), s.StyleID)
	}
	if s.KeepNext {
		ppr.CreateElement("w:keepNext")
	}
	if s.NumID > 0 {
		numPr := ppr.CreateElement("w:numPr")
		setVal(numPr.CreateElement("w:ilvl"), itoa(s.Level))
		setVal(numPr.CreateElement("w:numId"), itoa(s.NumID))
	}
	if s.Line > 0 || s.SetSpacing {
		sp := ppr.CreateElement("w:spacing")
		if s.SetSpacing {
			sp.CreateAttr("w:before", itoa(s.Before))
			sp.CreateAttr("w:after", itoa(s.After))
		}
		if s.Line > 0 {
			sp.CreateAttr("w:line", itoa(s.Line))
			sp.CreateAttr("w:lineRule", "auto")
		}
	}
	if s.FirstLine > 0 || s.FirstLineChars > 0 || s.Left > 0 || s.Hanging > 0 {
		ind := ppr.CreateElement("w:ind")
		if s.Left > 0 {
			ind.CreateAttr("w:left", itoa(s.Left))
		}
		if s.Hanging > 0 {
			ind.CreateAttr("w:hanging", itoa(s.Hanging))
		}
		if s.FirstLineChars > 0 {
			ind.CreateAttr("w:firstLineChars", itoa(s.FirstLineChars))
		}
		if s.FirstLine > 0 {
			ind.CreateAttr("w:firstLine", itoa(s.FirstLine))
		}
	}
	if s.Align != "" {
		setVal(ppr.CreateElement("w:jc"), s.Align)
	}
	if s.OutlineLevel > 0 {
		setVal(ppr.CreateElement("w:outlineLvl"), itoa(s.OutlineLevel-1))
	}
	return ppr
}

// RunStyle describes direct run formatting.
type RunStyle struct {
	Font   string
	Size   float64 // points; written as half-points
	Bold   bool
	Italic bool
	Color  string
	Shade  string // background fill, hex without '#'
}

// Element builds the w:rPr element.
func (s RunStyle) Element() *etree.Element {
	rpr := etree.NewElement("w:rPr")
	if s.Font != "" {
		f := rpr.CreateElement("w:rFonts")
		f.CreateAttr("w:ascii", s.Font)
		f.CreateAttr("w:eastAsia", s.Font)
		f.CreateAttr("w:hAnsi", s.Font)
		f.CreateAttr("w:cs", s.Font)
	}
	if s.Bold {
		rpr.CreateElement("w:b")
		rpr.CreateElement("w:bCs")
	}
	if s.Italic {
		rpr.CreateElement("w:i")
		rpr.CreateElement("w:iCs")
	}
	if s.Color != "" {
		setVal(rpr.CreateElement("w:color"), s.Color)
	}
	if s.Size > 0 {
		half := itoa(int(s.Size * 2))
		setVal(rpr.CreateElement("w:sz"), half)
		setVal(rpr.CreateElement("w:szCs"), half)
	}
	if s.Shade != "" {
		shd := rpr.CreateElement("w:shd")
		shd.CreateAttr("w:val", "clear")
		shd.CreateAttr("w:color", "auto")
		shd.CreateAttr("w:fill", s.Shade)
	}
	return rpr
}

// CellStyle describes w:tcPr content.
type CellStyle struct {
	Fill   string // hex background
	VAlign string // top, center, bottom
}

func (s CellStyle) Element() *etree.Element {
	tcPr := etree.NewElement("w:tcPr")
	w := tcPr.CreateElement("w:tcW")
	w.CreateAttr("w:w", "0")
	w.CreateAttr("w:type", "auto")
	if s.Fill != "" {
		shd := tcPr.CreateElement("w:shd")
		shd.CreateAttr("w:val", "clear")
		shd.CreateAttr("w:color", "auto")
		shd.CreateAttr("w:fill", s.Fill)
	}
	if s.VAlign != "" {
		setVal(tcPr.CreateElement("w:vAlign"), s.VAlign)
	}
	return tcPr
}

// TableStyle describes w:tblPr content.
type TableStyle struct {
	Align        string
	WidthPercent int // 100 means full page width
	Borders      bool
	CellMargins  [4]int // top, left, bottom, right in twips
}

func (s TableStyle) Element() *etree.Element {
	tblPr := etree.NewElement("w:tblPr")
	if s.WidthPercent > 0 {
		w := tblPr.CreateElement("w:tblW")
		// pct width is expressed in fiftieths of a percent.
		w.CreateAttr("w:w", itoa(s.WidthPercent*50))
		w.CreateAttr("w:type", "pct")
	}
	if s.Align != "" {
		setVal(tblPr.CreateElement("w:jc"), s.Align)
	}
	if s.Borders {
		b := tblPr.CreateElement("w:tblBorders")
		for _, side := range []string{"w:top", "w:left", "w:bottom", "w:right", "w:insideH", "w:insideV"} {
			e := b.CreateElement(side)
			e.CreateAttr("w:val", "single")
			e.CreateAttr("w:sz", "4")
			e.CreateAttr("w:space", "0")
			e.CreateAttr("w:color", "auto")
		}
	}
	if s.CellMargins != [4]int{} {
		m := tblPr.CreateElement("w:tblCellMar")
		for i, side := range []string{"w:top", "w:left", "w:bottom", "w:right"} {
			e := m.CreateElement(side)
			e.CreateAttr("w:w", itoa(s.CellMargins[i]))
			e.CreateAttr("w:type", "dxa")
		}
	}
	look := tblPr.CreateElement("w:tblLook")
	look.CreateAttr("w:val", "04A0")
	return tblPr
}

func setVal(el *etree.Element, v string) {
	el.CreateAttr("w:val", v)
}
