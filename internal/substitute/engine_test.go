package substitute

import (
	"strings"
	"testing"

	"github.com/beevik/etree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/413232903/markdown2word-mcp/internal/params"
	"github.com/413232903/markdown2word-mcp/internal/wordml"
)

func runs(texts ...string) []wordml.Run {
	out := make([]wordml.Run, len(texts))
	for i, t := range texts {
		out[i] = wordml.Run{Props: wordml.RunStyle{Bold: i%2 == 1}.Element(), Text: t}
	}
	return out
}

func joined(rs []wordml.Run) string {
	var sb strings.Builder
	for _, r := range rs {
		sb.WriteString(r.Text)
	}
	return sb.String()
}

func table() *params.Table {
	p := params.New()
	p.Set("name", params.TextValue("World"))
	p.Set("title", params.TextValue("Report"))
	p.Set("empty", params.TextValue(""))
	p.Set("image1", params.ImageValue(&wordml.Image{Data: []byte{1}, Ext: "png", Width: 10, Height: 10}))
	p.Set("table1", params.TableValue([][]string{{"A", "B"}, {"1", "2.5"}}))
	return p
}

func TestScan(t *testing.T) {
	cases := []struct {
		in   string
		want []string
	}{
		{"plain", nil},
		{"${a}", []string{"a"}},
		{"${a}${b}", []string{"a", "b"}},
		{"$5 and ${a}", []string{"a"}},
		{"$${a}", []string{"a"}},
		{"${a${b}", []string{"a${b"}},
		{"${open", nil},
		{"${}", []string{""}},
		{"end $", nil},
	}
	for _, tc := range cases {
		var keys []string
		for _, tk := range scan(tc.in) {
			keys = append(keys, tk.key)
		}
		assert.Equal(t, tc.want, keys, tc.in)
	}
}

func TestParagraph_RunBoundaryInvariance(t *testing.T) {
	src := "Hello ${name}, see ${title}!"
	want := "Hello World, see Report!"

	// Every way of cutting the text into three runs yields the same text.
	for i := 0; i <= len(src); i++ {
		for j := i; j <= len(src); j++ {
			e := New(table(), nil)
			out, tables := e.Paragraph(runs(src[:i], src[i:j], src[j:]))
			assert.Empty(t, tables)
			assert.Equal(t, want, joined(out), "cut at %d,%d", i, j)
		}
	}
}

func TestParagraph_SplitTokenDropsConsumedRuns(t *testing.T) {
	in := runs("Dear $", "{na", "me} and friends")
	out, _ := New(table(), nil).Paragraph(in)
	require.Len(t, out, 2)
	assert.Equal(t, "Dear World", out[0].Text)
	assert.Same(t, in[0].Props, out[0].Props)
	assert.Equal(t, " and friends", out[1].Text)
	assert.Same(t, in[2].Props, out[1].Props)
}

func TestParagraph_UnresolvedKeyIsIdentical(t *testing.T) {
	for _, in := range [][]wordml.Run{
		runs("a ${missing} b"),
		runs("a $", "{miss", "ing}", " b"),
	} {
		e := New(table(), nil)
		out, _ := e.Paragraph(in)
		assert.Equal(t, "a ${missing} b", joined(out))
	}

	e := New(params.New(), nil)
	doc := wordml.New()
	doc.Body = []wordml.Block{&wordml.Paragraph{Runs: runs("${x}")}}
	res := e.Apply(doc)
	assert.Equal(t, []string{"x"}, res.Unresolved)
	assert.Zero(t, res.Replaced)
}

func TestParagraph_ImageKeepsAdjacentText(t *testing.T) {
	in := runs("prefix ${image1} suffix")
	out, tables := New(table(), nil).Paragraph(in)
	assert.Empty(t, tables)
	require.Len(t, out, 2)
	assert.Equal(t, "prefix ", out[0].Text)
	require.NotNil(t, out[0].Image)
	assert.Equal(t, "png", out[0].Image.Ext)
	assert.Equal(t, " suffix", out[1].Text)
	assert.Nil(t, out[1].Image)
	assert.Same(t, in[0].Props, out[1].Props)
}

func TestParagraph_ImageCopiesPerInsertion(t *testing.T) {
	out, _ := New(table(), nil).Paragraph(runs("${image1}${image1}"))
	require.Len(t, out, 2)
	assert.NotSame(t, out[0].Image, out[1].Image)
}

func TestParagraph_BackToBackAndEmptyValues(t *testing.T) {
	out, _ := New(table(), nil).Paragraph(runs("${name}${empty}${title}"))
	require.Len(t, out, 1)
	assert.Equal(t, "WorldReport", out[0].Text)

	// An anchor run whose value is empty stays as an empty run.
	out, _ = New(table(), nil).Paragraph(runs("${empty}"))
	require.Len(t, out, 1)
	assert.Equal(t, "", out[0].Text)
}

func TestParagraph_DollarWithoutBrace(t *testing.T) {
	out, _ := New(table(), nil).Paragraph(runs("cost $", "5 for ${name}"))
	assert.Equal(t, "cost $5 for World", joined(out))
}

func TestParagraph_UnterminatedKeepsText(t *testing.T) {
	in := runs("a ${name", " tail")
	out, _ := New(table(), nil).Paragraph(in)
	assert.Equal(t, in, out)
}

func TestParagraph_RawRunsSplitSegments(t *testing.T) {
	raw := wordml.Run{Raw: etree.NewElement("w:r")}
	in := []wordml.Run{{Text: "x $"}, raw, {Text: "{name}"}}
	out, _ := New(table(), nil).Paragraph(in)
	require.Len(t, out, 3)
	assert.Equal(t, "x $", out[0].Text)
	assert.Same(t, raw.Raw, out[1].Raw)
	assert.Equal(t, "{name}", out[2].Text)
}

func TestApply_TableInsertedAfterParagraph(t *testing.T) {
	doc := wordml.New()
	doc.Body = []wordml.Block{
		&wordml.Paragraph{Runs: runs("${table1}")},
		&wordml.Paragraph{Runs: runs("after")},
	}
	res := New(table(), nil).Apply(doc)
	assert.Equal(t, 1, res.Tables)

	require.Len(t, doc.Body, 3)
	tbl, ok := doc.Body[1].(*wordml.Table)
	require.True(t, ok)
	require.Len(t, tbl.Rows, 2)
	assert.Equal(t, "A", tbl.Rows[0].Cells[0].Text())
	assert.Equal(t, "1.0", tbl.Rows[1].Cells[0].Text())
	assert.Equal(t, "2.5", tbl.Rows[1].Cells[1].Text())
	assert.Equal(t, "after", doc.Body[2].(*wordml.Paragraph).Text())
}

func TestApply_WalksTableCells(t *testing.T) {
	doc := wordml.New()
	doc.Body = []wordml.Block{&wordml.Table{Rows: []*wordml.TableRow{{
		Cells: []*wordml.TableCell{{Blocks: []wordml.Block{&wordml.Paragraph{Runs: runs("Hi ${name}")}}}},
	}}}}
	res := New(table(), nil).Apply(doc)
	assert.Equal(t, 1, res.Replaced)
	assert.Equal(t, "Hi World", doc.Body[0].(*wordml.Table).Rows[0].Cells[0].Text())
}
