// Package substitute replaces ${key} placeholders in a document with
// parameter values. A placeholder may be split across any number of
// adjacent text runs; runs are rebuilt rather than edited in place.
package substitute

import (
	"log/slog"
	"strings"

	"github.com/413232903/markdown2word-mcp/internal/params"
	"github.com/413232903/markdown2word-mcp/internal/wordml"
)

// Result counts what a substitution pass did.
type Result struct {
	Replaced   int
	Unresolved []string // keys left as literal text, in document order
	Tables     int
	Images     int
}

// Engine resolves placeholders against one parameter table.
type Engine struct {
	params *params.Table
	log    *slog.Logger
	result Result
}

func New(p *params.Table, log *slog.Logger) *Engine {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Engine{params: p, log: log}
}

// Apply substitutes every paragraph of doc, including paragraphs nested in
// table cells.
func (e *Engine) Apply(doc *wordml.Document) Result {
	e.result = Result{}
	doc.Body = e.blocks(doc.Body)
	if n := len(e.result.Unresolved); n > 0 {
		e.log.Debug("placeholders left unresolved", "count", n, "keys", e.result.Unresolved)
	}
	return e.result
}

func (e *Engine) blocks(in []wordml.Block) []wordml.Block {
	out := make([]wordml.Block, 0, len(in))
	for _, b := range in {
		switch b := b.(type) {
		case *wordml.Paragraph:
			runs, tables := e.Paragraph(b.Runs)
			b.Runs = runs
			out = append(out, b)
			for _, t := range tables {
				out = append(out, t)
			}
		case *wordml.Table:
			for _, row := range b.Rows {
				for _, cell := range row.Cells {
					cell.Blocks = e.blocks(cell.Blocks)
				}
			}
			out = append(out, b)
		default:
			out = append(out, b)
		}
	}
	return out
}

// Paragraph returns the runs of one paragraph with placeholders resolved
// and the tables to insert after it. Runs that are not plain text (fields,
// drawings, existing images) split the paragraph into independent segments.
func (e *Engine) Paragraph(runs []wordml.Run) ([]wordml.Run, []*wordml.Table) {
	var (
		out    []wordml.Run
		tables []*wordml.Table
		seg    []wordml.Run
	)
	flush := func() {
		if len(seg) == 0 {
			return
		}
		r, t := e.segment(seg)
		out = append(out, r...)
		tables = append(tables, t...)
		seg = seg[:0]
	}
	for _, r := range runs {
		if r.Raw != nil || r.Image != nil {
			flush()
			out = append(out, r)
			continue
		}
		seg = append(seg, r)
	}
	flush()
	return out, tables
}

// token is a complete ${key} span in segment text.
type token struct {
	start, end int // byte offsets, end exclusive
	key        string
}

// scan finds complete placeholders in s. A "$" not followed by "{" is plain
// text. An opened placeholder runs to the next "}"; one that never closes is
// left as text.
func scan(s string) []token {
	var toks []token
	for i := 0; i < len(s); {
		if s[i] != '$' || i+1 >= len(s) || s[i+1] != '{' {
			i++
			continue
		}
		j := strings.IndexByte(s[i+2:], '}')
		if j < 0 {
			break
		}
		end := i + 2 + j + 1
		toks = append(toks, token{start: i, end: end, key: s[i+2 : end-1]})
		i = end
	}
	return toks
}

// segment rebuilds a run of adjacent text runs. Each token's value is
// attached to the run where its "$" sits; text of other runs that a token
// swallows is dropped, and runs left with no text are removed.
func (e *Engine) segment(runs []wordml.Run) ([]wordml.Run, []*wordml.Table) {
	var sb strings.Builder
	offsets := make([]int, len(runs)+1)
	for i, r := range runs {
		offsets[i] = sb.Len()
		sb.WriteString(r.Text)
	}
	offsets[len(runs)] = sb.Len()
	text := sb.String()

	toks := scan(text)
	if len(toks) == 0 {
		return runs, nil
	}

	var (
		out    []wordml.Run
		tables []*wordml.Table
		t      int
	)
	for i, r := range runs {
		start, end := offsets[i], offsets[i+1]
		var cur strings.Builder
		var anchored, touched, emitted bool
		emit := func(img *wordml.Image) {
			out = append(out, wordml.Run{Props: r.Props, Text: cur.String(), Image: img})
			cur.Reset()
			emitted = true
		}

		pos := start
		for pos < end {
			if t >= len(toks) || toks[t].start >= end {
				cur.WriteString(text[pos:end])
				break
			}
			tk := toks[t]
			if tk.start >= pos {
				cur.WriteString(text[pos:tk.start])
				anchored = true
				if tb, img := e.resolve(tk, text, &cur); img != nil {
					emit(img)
				} else if tb != nil {
					tables = append(tables, tb)
				}
			} else {
				touched = true
			}
			if tk.end > end {
				pos = end
				break
			}
			pos = tk.end
			t++
		}

		switch {
		case cur.Len() > 0, anchored && !emitted:
			emit(nil)
		case !anchored && !touched && start == end:
			out = append(out, r) // empty run untouched by any token
		}
	}
	return out, tables
}

// resolve writes the replacement text for tk into cur. Image and table
// values are returned for the caller to place.
func (e *Engine) resolve(tk token, text string, cur *strings.Builder) (*wordml.Table, *wordml.Image) {
	v, ok := e.params.Get(tk.key)
	if !ok {
		cur.WriteString(text[tk.start:tk.end])
		e.result.Unresolved = append(e.result.Unresolved, tk.key)
		return nil, nil
	}
	e.result.Replaced++
	switch v.Kind {
	case params.Image:
		if v.Image == nil {
			return nil, nil
		}
		e.result.Images++
		img := *v.Image
		return nil, &img
	case params.Table:
		e.result.Tables++
		return BuildTable(v.Rows), nil
	default:
		cur.WriteString(v.Text)
		return nil, nil
	}
}
