package rebind

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/413232903/markdown2word-mcp/internal/params"
	"github.com/413232903/markdown2word-mcp/internal/wordml"
)

func docWithChart(t *testing.T, title string) *wordml.Document {
	t.Helper()
	doc := wordml.New()
	run := doc.AddChart(wordml.NewChart(wordml.ChartSpec{
		Type:       wordml.ChartBar,
		Title:      title,
		Categories: []string{"a", "b"},
		Series: []wordml.SeriesSpec{
			{Name: "Revenue", Values: []float64{1, 2}},
			{Name: "Cost", Values: []float64{3, 4}},
		},
	}), wordml.ChartWidthEMU, wordml.ChartHeightEMU)
	doc.Body = append(doc.Body, &wordml.Paragraph{Runs: []wordml.Run{run}})
	return doc
}

func revenueTable() *params.Table {
	p := params.New()
	p.SetChart("chart1", &params.ChartData{
		Title:      "季度收入",
		Categories: []string{"Q1", "Q2", "Q3"},
		Columns:    []params.Column{{Name: "Revenue", Values: []float64{10, 20, 30}}},
	})
	return p
}

func TestApply_MatchesSeriesByName(t *testing.T) {
	doc := docWithChart(t, "chart1")
	res := New(revenueTable(), nil).Apply(doc)
	assert.Equal(t, Result{Charts: 1, Series: 1}, res)

	c := doc.Charts()[0]
	assert.Equal(t, "季度收入", c.Title())
	series := c.Series()
	require.Len(t, series, 2)
	assert.Equal(t, []string{"Q1", "Q2", "Q3"}, series[0].Categories())
	assert.Equal(t, []float64{10, 20, 30}, series[0].Values())
	assert.Equal(t, "Revenue", series[0].Name())

	// No column for Cost: untouched.
	assert.Equal(t, "Cost", series[1].Name())
	assert.Equal(t, []string{"a", "b"}, series[1].Categories())
	assert.Equal(t, []float64{3, 4}, series[1].Values())
}

func TestApply_LookupByDataTitle(t *testing.T) {
	doc := docWithChart(t, "季度收入")
	res := New(revenueTable(), nil).Apply(doc)
	assert.Equal(t, 1, res.Charts)
	assert.Equal(t, []float64{10, 20, 30}, doc.Charts()[0].Series()[0].Values())
}

func TestApply_UnmatchedChartUntouched(t *testing.T) {
	for _, title := range []string{"other", "  "} {
		doc := docWithChart(t, title)
		res := New(revenueTable(), nil).Apply(doc)
		assert.Equal(t, Result{Unmatched: 1}, res, title)
		assert.Equal(t, []float64{1, 2}, doc.Charts()[0].Series()[0].Values())
	}
}

func TestLookup_FirstTitleMatchWins(t *testing.T) {
	p := params.New()
	first := &params.ChartData{Title: "same"}
	p.SetChart("chart1", first)
	p.SetChart("chart2", &params.ChartData{Title: "same"})

	got, ok := New(p, nil).Lookup("same")
	require.True(t, ok)
	assert.Same(t, first, got)

	_, ok = New(p, nil).Lookup("")
	assert.False(t, ok)
}

func TestChart_RenamesToColumnTitle(t *testing.T) {
	doc := docWithChart(t, "chart1")
	data := &params.ChartData{
		Title:      "销售",
		Categories: []string{"Q1"},
		Columns:    []params.Column{{Name: "Revenue", Title: "万元", Values: []float64{5}}},
	}
	n := New(params.New(), nil).Chart(doc.Charts()[0], data)
	assert.Equal(t, 1, n)
	assert.Equal(t, "万元", doc.Charts()[0].Series()[0].Name())
}

func TestApply_RegeneratesWorkbook(t *testing.T) {
	doc := docWithChart(t, "chart1")
	New(revenueTable(), nil).Apply(doc)

	var buf bytes.Buffer
	require.NoError(t, doc.Save(&buf))
	reopened, err := wordml.Open(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)
	data, ok := reopened.Part("word/embeddings/Microsoft_Excel_Sheet1.xlsx")
	require.True(t, ok)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	get := func(cell string) string {
		v, err := f.GetCellValue("Sheet1", cell)
		require.NoError(t, err)
		return v
	}
	assert.Equal(t, "Revenue", get("B1"))
	assert.Equal(t, "Q3", get("A4"))
	assert.Equal(t, "30", get("B4"))
	assert.Equal(t, "Cost", get("C1"))
}
