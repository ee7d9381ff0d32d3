// Package params holds the values placeholders resolve to.
package params

import "github.com/413232903/markdown2word-mcp/internal/wordml"

// Kind tags a parameter value.
type Kind int

const (
	Text Kind = iota
	Image
	Table
)

// Value is one parameter: text, an image or table rows.
type Value struct {
	Kind  Kind
	Text  string
	Image *wordml.Image
	Rows  [][]string
}

func TextValue(s string) Value           { return Value{Kind: Text, Text: s} }
func ImageValue(img *wordml.Image) Value { return Value{Kind: Image, Image: img} }
func TableValue(rows [][]string) Value   { return Value{Kind: Table, Rows: rows} }

// Column is a named numeric series of a chart data table. Title, when set,
// is the name the series is displayed under after rebinding.
type Column struct {
	Name   string
	Title  string
	Values []float64
}

// ChartData is the intended content of one chart.
type ChartData struct {
	Title      string
	Categories []string
	Columns    []Column
}

// Column returns the column named name.
func (c *ChartData) Column(name string) (Column, bool) {
	for _, col := range c.Columns {
		if col.Name == name {
			return col, true
		}
	}
	return Column{}, false
}

// Table maps placeholder keys to values. Keys are unique; Set overwrites.
type Table struct {
	values map[string]Value
	charts map[string]*ChartData
	order  []string // chart keys in insertion order
}

func New() *Table {
	return &Table{
		values: make(map[string]Value),
		charts: make(map[string]*ChartData),
	}
}

func (t *Table) Set(key string, v Value) { t.values[key] = v }

func (t *Table) Get(key string) (Value, bool) {
	v, ok := t.values[key]
	return v, ok
}

// Len returns the number of placeholder values, not counting charts.
func (t *Table) Len() int { return len(t.values) }

func (t *Table) SetChart(key string, c *ChartData) {
	if _, ok := t.charts[key]; !ok {
		t.order = append(t.order, key)
	}
	t.charts[key] = c
}

func (t *Table) Chart(key string) (*ChartData, bool) {
	c, ok := t.charts[key]
	return c, ok
}

// ChartKeys returns chart keys in the order they were added.
func (t *Table) ChartKeys() []string {
	return t.order
}
