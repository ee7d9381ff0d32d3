package echarts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{`{title:{text:'销售'}}`, `{"title":{"text":"销售"}}`},
		{`{a: [1, 2, 3,], b: {c: 1,},}`, `{"a": [1, 2, 3], "b": {"c": 1}}`},
		{`{"quoted": 1}`, `{"quoted": 1}`},
		{"{\n  $key_1 : 'x'\n}", "{\n  \"$key_1\": \"x\"\n}"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Normalize(tt.in))
	}
}

func TestParse_Bar(t *testing.T) {
	src := `{
  title: { text: '季度销售' },
  xAxis: { name: '季度', data: ['Q1', 'Q2', 'Q3'] },
  yAxis: { name: '金额' },
  series: [
    { name: 'Revenue', type: 'bar', data: [10, 20, 30] },
    { type: 'bar', data: [1, 'x', '2.5'] },
  ],
}`
	cfg, err := Parse(src)
	require.NoError(t, err)
	assert.Equal(t, "季度销售", cfg.Title)
	assert.Equal(t, TypeBar, cfg.Type)
	assert.Equal(t, []string{"Q1", "Q2", "Q3"}, cfg.Categories)
	assert.Equal(t, "季度", cfg.XName)
	assert.Equal(t, "金额", cfg.YName)
	require.Len(t, cfg.Series, 2)
	assert.Equal(t, "Revenue", cfg.Series[0].Name)
	assert.Equal(t, []float64{10, 20, 30}, cfg.Series[0].Values)
	assert.Equal(t, "", cfg.Series[1].Name)
	assert.Equal(t, []float64{1, 0, 2.5}, cfg.Series[1].Values)
}

func TestParse_AxisArrays(t *testing.T) {
	cfg, err := Parse(`{xAxis: [{data: ['a','b']}, {data: ['z']}], yAxis: [{name: 'y1'}], series: [{type: 'line', data: [1,2]}]}`)
	require.NoError(t, err)
	assert.Equal(t, TypeLine, cfg.Type)
	assert.Equal(t, []string{"a", "b"}, cfg.Categories)
	assert.Equal(t, "y1", cfg.YName)
}

func TestParse_Pie(t *testing.T) {
	cfg, err := Parse(`{series: [{name: '占比', type: 'pie', data: [{name: '甲', value: 3}, {value: 5}]}]}`)
	require.NoError(t, err)
	assert.Equal(t, TypePie, cfg.Type)
	require.Len(t, cfg.Series, 1)
	assert.True(t, cfg.Series[0].IsPie)
	assert.Equal(t, []float64{3, 5}, cfg.Series[0].Values)
	assert.Equal(t, []string{"甲", "类别2"}, cfg.PieCategories())
}

func TestParse_PieRawNumbers(t *testing.T) {
	cfg, err := Parse(`{series: [{type: 'pie', data: [4, 6]}]}`)
	require.NoError(t, err)
	assert.Equal(t, []string{"类别1", "类别2"}, cfg.PieCategories())
	assert.Equal(t, []float64{4, 6}, cfg.Series[0].Values)
}

func TestParse_UnknownTypeIsBar(t *testing.T) {
	cfg, err := Parse(`{series: [{type: 'scatter', data: [1]}]}`)
	require.NoError(t, err)
	assert.Equal(t, TypeBar, cfg.Type)
}

func TestParse_SeriesWithoutDataSkipped(t *testing.T) {
	cfg, err := Parse(`{series: [{name: 'a'}, {name: 'b', data: [1]}]}`)
	require.NoError(t, err)
	require.Len(t, cfg.Series, 1)
	assert.Equal(t, "b", cfg.Series[0].Name)
}

func TestParse_Invalid(t *testing.T) {
	for _, src := range []string{"", "{title:", "[1,2]", "not a chart"} {
		_, err := Parse(src)
		assert.ErrorIs(t, err, ErrInvalid, "src %q", src)
	}
}
