// Package rebind rewrites embedded chart data from collected chart tables.
package rebind

import (
	"log/slog"
	"strings"

	"github.com/413232903/markdown2word-mcp/internal/params"
	"github.com/413232903/markdown2word-mcp/internal/wordml"
)

// Result counts the charts and series a pass rewrote.
type Result struct {
	Charts    int
	Unmatched int
	Series    int
}

// Rebinder binds charts to the chart tables of one parameter table.
type Rebinder struct {
	params *params.Table
	log    *slog.Logger
}

func New(p *params.Table, log *slog.Logger) *Rebinder {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Rebinder{params: p, log: log}
}

// Apply rebinds every chart of doc. Charts without matching data are left
// as they are.
func (r *Rebinder) Apply(doc *wordml.Document) Result {
	var res Result
	for _, c := range doc.Charts() {
		title := c.Title()
		data, ok := r.Lookup(title)
		if !ok {
			res.Unmatched++
			r.log.Debug("chart left unbound", "chart", c.Name, "title", title)
			continue
		}
		res.Charts++
		res.Series += r.Chart(c, data)
	}
	return res
}

// Lookup finds the chart table for a displayed chart title: the title is
// first tried as a chart key, then compared with each table's own title in
// collection order. Blank titles never match.
func (r *Rebinder) Lookup(title string) (*params.ChartData, bool) {
	if strings.TrimSpace(title) == "" {
		return nil, false
	}
	if data, ok := r.params.Chart(title); ok {
		return data, true
	}
	var found *params.ChartData
	matches := 0
	for _, key := range r.params.ChartKeys() {
		data, _ := r.params.Chart(key)
		if data.Title != title {
			continue
		}
		if found == nil {
			found = data
		}
		matches++
	}
	if matches > 1 {
		r.log.Warn("chart title matches several data tables, binding the first", "title", title, "matches", matches)
	}
	return found, found != nil
}

// Chart overwrites the categories and values of every series whose name
// matches a column, renames it to the column title when they differ, and
// sets the chart title. It returns the number of series rewritten.
func (r *Rebinder) Chart(c *wordml.Chart, data *params.ChartData) int {
	if data.Title != "" && data.Title != c.Title() {
		c.SetTitle(data.Title)
	}
	n := 0
	for _, s := range c.Series() {
		name := s.Name()
		col, ok := data.Column(name)
		if !ok {
			continue
		}
		s.SetCategories(data.Categories)
		s.SetValues(col.Values)
		if col.Title != "" && col.Title != name {
			s.SetName(col.Title)
		}
		n++
	}
	c.MarkModified()
	return n
}
