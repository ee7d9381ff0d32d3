package substitute

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/413232903/markdown2word-mcp/internal/wordml"
)

func TestFormatNumber(t *testing.T) {
	cases := map[string]string{
		"1000.56":    "1,000.6",
		"1234.789":   "1,234.8",
		"1":          "1.0",
		"2.5":        "2.5",
		" 1234567 ":  "1,234,567.0",
		"-1500":      "-1,500.0",
		"abc":        "abc",
		"12%":        "12%",
		"2024年":      "2024年",
		"1,000":      "1,000",
		"":           "",
		"3.14 units": "3.14 units",
	}
	for in, want := range cases {
		assert.Equal(t, want, FormatNumber(in), "input %q", in)
	}
}

func TestBuildTable_Styling(t *testing.T) {
	tbl := BuildTable([][]string{{"Name", "Value"}, {"a", "1000.56", "extra"}})
	require.Len(t, tbl.Rows, 2)
	assert.Len(t, tbl.Rows[0].Cells, 2)
	assert.Len(t, tbl.Rows[1].Cells, 3)

	head := tbl.Rows[0].Cells[0]
	assert.Equal(t, headerFill, head.Props.FindElement("w:shd").SelectAttrValue("w:fill", ""))
	assert.Equal(t, "center", head.Props.FindElement("w:vAlign").SelectAttrValue("w:val", ""))
	hp := head.Blocks[0].(*wordml.Paragraph)
	assert.Equal(t, wordml.AlignCenter, hp.Alignment())
	assert.True(t, hp.Runs[0].Bold())
	assert.Equal(t, cellFont, hp.Runs[0].Font())
	assert.Equal(t, 22, hp.Runs[0].Size())

	body := tbl.Rows[1].Cells[1]
	assert.Nil(t, body.Props.FindElement("w:shd"))
	bp := body.Blocks[0].(*wordml.Paragraph)
	assert.Equal(t, wordml.AlignLeft, bp.Alignment())
	assert.False(t, bp.Runs[0].Bold())
	assert.Equal(t, "1,000.6", bp.Text())

	sp := bp.Props.FindElement("w:spacing")
	require.NotNil(t, sp)
	assert.Equal(t, "0", sp.SelectAttrValue("w:before", ""))
	assert.Equal(t, "0", sp.SelectAttrValue("w:after", ""))

	assert.Equal(t, "center", tbl.Props.FindElement("w:jc").SelectAttrValue("w:val", ""))
	assert.Equal(t, "pct", tbl.Props.FindElement("w:tblW").SelectAttrValue("w:type", ""))
}
