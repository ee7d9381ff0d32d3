package substitute

import (
	"github.com/413232903/markdown2word-mcp/internal/wordml"
)

const (
	cellFont   = "仿宋"
	cellSize   = 11
	headerFill = "B4C6E7"
)

// BuildTable lays out rows as a bordered full-width table. The first row is
// the header; each row has as many cells as it has values.
func BuildTable(rows [][]string) *wordml.Table {
	t := &wordml.Table{
		Props: wordml.TableStyle{
			Align:        wordml.AlignCenter,
			WidthPercent: 100,
			Borders:      true,
			CellMargins:  [4]int{0, 108, 0, 108},
		}.Element(),
	}
	for i, row := range rows {
		header := i == 0
		tr := &wordml.TableRow{}
		for _, v := range row {
			tr.Cells = append(tr.Cells, cell(FormatNumber(v), header))
		}
		t.Rows = append(t.Rows, tr)
	}
	return t
}

func cell(text string, header bool) *wordml.TableCell {
	cs := wordml.CellStyle{VAlign: "center"}
	align := wordml.AlignLeft
	if header {
		cs.Fill = headerFill
		align = wordml.AlignCenter
	}
	return &wordml.TableCell{
		Props: cs.Element(),
		Blocks: []wordml.Block{&wordml.Paragraph{
			Props: wordml.ParagraphStyle{Align: align, SetSpacing: true}.Element(),
			Runs: []wordml.Run{{
				Props: wordml.RunStyle{Font: cellFont, Size: cellSize, Bold: header}.Element(),
				Text:  text,
			}},
		}},
	}
}
