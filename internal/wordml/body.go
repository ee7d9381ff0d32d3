package wordml

import (
	"strings"

	"github.com/beevik/etree"
)

func parseBlocks(parent *etree.Element) []Block {
	var blocks []Block
	for _, el := range parent.ChildElements() {
		switch el.FullTag() {
		case "w:p":
			blocks = append(blocks, parseParagraph(el))
		case "w:tbl":
			blocks = append(blocks, parseTable(el))
		case "w:sectPr", "w:tcPr":
		default:
			blocks = append(blocks, &RawBlock{El: el.Copy()})
		}
	}
	return blocks
}

func parseParagraph(el *etree.Element) *Paragraph {
	p := &Paragraph{}
	for _, child := range el.ChildElements() {
		switch child.FullTag() {
		case "w:pPr":
			p.Props = child.Copy()
		case "w:r":
			p.Runs = append(p.Runs, parseRun(child)...)
		default:
			p.Runs = append(p.Runs, Run{Raw: child.Copy()})
		}
	}
	return p
}

// parseRun maps w:t, w:tab and w:br to text. Any other run content splits
// the run and is kept as a raw run carrying the same properties.
func parseRun(el *etree.Element) []Run {
	var props *etree.Element
	if rpr := el.SelectElement("w:rPr"); rpr != nil {
		props = rpr
	}
	var (
		runs    []Run
		sb      strings.Builder
		hasText bool
	)
	flush := func() {
		if hasText {
			runs = append(runs, Run{Props: copyOrNil(props), Text: sb.String()})
			sb.Reset()
			hasText = false
		}
	}
	for _, child := range el.ChildElements() {
		switch child.FullTag() {
		case "w:rPr":
		case "w:t":
			sb.WriteString(child.Text())
			hasText = true
		case "w:tab":
			sb.WriteByte('\t')
			hasText = true
		case "w:cr":
			sb.WriteByte('\n')
			hasText = true
		case "w:br":
			if child.SelectAttrValue("w:type", "textWrapping") == "textWrapping" {
				sb.WriteByte('\n')
				hasText = true
				continue
			}
			fallthrough
		default:
			flush()
			raw := etree.NewElement("w:r")
			if props != nil {
				raw.AddChild(props.Copy())
			}
			raw.AddChild(child.Copy())
			runs = append(runs, Run{Raw: raw})
		}
	}
	flush()
	if len(runs) == 0 {
		runs = append(runs, Run{Props: copyOrNil(props)})
	}
	return runs
}

func parseTable(el *etree.Element) *Table {
	t := &Table{}
	for _, child := range el.ChildElements() {
		switch child.FullTag() {
		case "w:tblPr":
			t.Props = child.Copy()
		case "w:tblGrid":
			t.Grid = child.Copy()
		case "w:tr":
			row := &TableRow{}
			for _, c := range child.ChildElements() {
				switch c.FullTag() {
				case "w:trPr":
					row.Props = c.Copy()
				case "w:tc":
					cell := &TableCell{Blocks: parseBlocks(c)}
					if tcPr := c.SelectElement("w:tcPr"); tcPr != nil {
						cell.Props = tcPr.Copy()
					}
					row.Cells = append(row.Cells, cell)
				}
			}
			t.Rows = append(t.Rows, row)
		}
	}
	return t
}

func (d *Document) writeBlock(b Block) *etree.Element {
	switch b := b.(type) {
	case *Paragraph:
		return d.writeParagraph(b)
	case *Table:
		return d.writeTable(b)
	case *RawBlock:
		return b.El.Copy()
	}
	return etree.NewElement("w:p")
}

func (d *Document) writeParagraph(p *Paragraph) *etree.Element {
	el := etree.NewElement("w:p")
	if p.Props != nil {
		el.AddChild(p.Props.Copy())
	}
	for _, r := range p.Runs {
		if r.Raw != nil {
			el.AddChild(r.Raw.Copy())
			continue
		}
		if r.Text != "" || r.Image == nil {
			re := el.CreateElement("w:r")
			if r.Props != nil {
				re.AddChild(r.Props.Copy())
			}
			writeText(re, r.Text)
		}
		if r.Image != nil {
			ref := d.imageRef(r.Image)
			re := el.CreateElement("w:r")
			if r.Props != nil {
				re.AddChild(r.Props.Copy())
			}
			re.AddChild(imageDrawing(ref.rID, ref.id, r.Image))
		}
	}
	return el
}

// writeText emits w:t segments, turning tabs and newlines into w:tab and w:br.
func writeText(r *etree.Element, text string) {
	start := 0
	emit := func(s string) {
		if s == "" {
			return
		}
		t := r.CreateElement("w:t")
		t.CreateAttr("xml:space", "preserve")
		t.SetText(s)
	}
	for i := 0; i < len(text); i++ {
		switch text[i] {
		case '\t':
			emit(text[start:i])
			r.CreateElement("w:tab")
			start = i + 1
		case '\n':
			emit(text[start:i])
			r.CreateElement("w:br")
			start = i + 1
		}
	}
	emit(text[start:])
}

func (d *Document) writeTable(t *Table) *etree.Element {
	el := etree.NewElement("w:tbl")
	if t.Props != nil {
		el.AddChild(t.Props.Copy())
	} else {
		el.AddChild(TableStyle{WidthPercent: 100, Borders: true}.Element())
	}
	if t.Grid != nil {
		el.AddChild(t.Grid.Copy())
	} else {
		el.AddChild(tableGrid(t))
	}
	for _, row := range t.Rows {
		tr := el.CreateElement("w:tr")
		if row.Props != nil {
			tr.AddChild(row.Props.Copy())
		}
		for _, cell := range row.Cells {
			tc := tr.CreateElement("w:tc")
			if cell.Props != nil {
				tc.AddChild(cell.Props.Copy())
			}
			for _, b := range cell.Blocks {
				tc.AddChild(d.writeBlock(b))
			}
			// A cell must end with a paragraph.
			if n := len(cell.Blocks); n == 0 {
				tc.CreateElement("w:p")
			} else if _, ok := cell.Blocks[n-1].(*Paragraph); !ok {
				tc.CreateElement("w:p")
			}
		}
	}
	return el
}

// textWidth is the printable width of an A4 page with default margins, in twips.
const textWidth = 8306

func tableGrid(t *Table) *etree.Element {
	cols := 0
	for _, row := range t.Rows {
		cols = max(cols, len(row.Cells))
	}
	grid := etree.NewElement("w:tblGrid")
	if cols == 0 {
		return grid
	}
	for range cols {
		gc := grid.CreateElement("w:gridCol")
		gc.CreateAttr("w:w", itoa(textWidth/cols))
	}
	return grid
}

// walkElements calls fn for every raw element reachable from blocks.
func walkElements(blocks []Block, fn func(*etree.Element)) {
	for _, b := range blocks {
		switch b := b.(type) {
		case *Paragraph:
			for _, r := range b.Runs {
				if r.Raw != nil {
					fn(r.Raw)
				}
			}
		case *Table:
			for _, row := range b.Rows {
				for _, cell := range row.Cells {
					walkElements(cell.Blocks, fn)
				}
			}
		case *RawBlock:
			fn(b.El)
		}
	}
}

func copyOrNil(el *etree.Element) *etree.Element {
	if el == nil {
		return nil
	}
	return el.Copy()
}
