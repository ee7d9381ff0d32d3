package markdown

import (
	"github.com/yuin/goldmark/ast"
)

// inline is one item of a flattened inline sequence: a text run, a line
// break, or an image.
type inline struct {
	run       Run
	lineBreak bool
	image     *imageRef
}

type imageRef struct {
	alt string
	src string
}

// inlines flattens the inline children of n. Nested emphasis is merged so
// each run carries the union of its enclosing flags.
func (s *scanner) inlines(n ast.Node) []inline {
	var out []inline
	var walk func(n ast.Node, style Run)
	walk = func(n ast.Node, style Run) {
		for c := n.FirstChild(); c != nil; c = c.NextSibling() {
			switch node := c.(type) {
			case *ast.Text:
				r := style
				r.Text = string(node.Segment.Value(s.src))
				out = append(out, inline{run: r})
				if node.SoftLineBreak() || node.HardLineBreak() {
					out = append(out, inline{lineBreak: true})
				}
			case *ast.String:
				r := style
				r.Text = string(node.Value)
				out = append(out, inline{run: r})
			case *ast.Emphasis:
				next := style
				if node.Level >= 2 {
					next.Bold = true
				} else {
					next.Italic = true
				}
				walk(node, next)
			case *ast.CodeSpan:
				next := style
				next.Code = true
				walk(node, next)
			case *ast.AutoLink:
				r := style
				r.Text = string(node.Label(s.src))
				out = append(out, inline{run: r})
			case *ast.Image:
				alt := runsText(flattenRuns(s.inlines(node)))
				out = append(out, inline{image: &imageRef{alt: alt, src: string(node.Destination)}})
			case *ast.RawHTML:
				// Inline tags carry no text of their own.
			default:
				walk(c, style)
			}
		}
	}
	walk(n, Run{})
	return out
}

// flattenRuns keeps the text of an inline sequence, turning line breaks into
// spaces and dropping images.
func flattenRuns(items []inline) []Run {
	var runs []Run
	for _, in := range items {
		switch {
		case in.image != nil:
		case in.lineBreak:
			runs = append(runs, Run{Text: " "})
		default:
			runs = append(runs, in.run)
		}
	}
	return mergeRuns(runs)
}

// mergeRuns joins adjacent runs with identical flags and drops empty ones.
func mergeRuns(runs []Run) []Run {
	var out []Run
	for _, r := range runs {
		if r.Text == "" {
			continue
		}
		if n := len(out); n > 0 && sameStyle(out[n-1], r) {
			out[n-1].Text += r.Text
			continue
		}
		out = append(out, r)
	}
	return out
}

func sameStyle(a, b Run) bool {
	return a.Bold == b.Bold && a.Italic == b.Italic && a.Code == b.Code
}
