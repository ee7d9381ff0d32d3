package markdown

import (
	"bytes"
	"io"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	extast "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
)

// Read scans Markdown from r.
func Read(r io.Reader) (*Document, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return Parse(src)
}

// Parse scans Markdown source into blocks.
func Parse(src []byte) (*Document, error) {
	meta, body := splitFrontMatter(src)

	md := goldmark.New(goldmark.WithExtensions(extension.GFM))
	root := md.Parser().Parse(text.NewReader(body))

	s := &scanner{src: body, counters: make(map[Kind]int)}
	for n := root.FirstChild(); n != nil; n = n.NextSibling() {
		s.block(n)
	}
	return &Document{Title: meta.Title, Blocks: s.blocks}, nil
}

type scanner struct {
	src      []byte
	blocks   []Block
	counters map[Kind]int
	lists    int
}

func (s *scanner) emit(b Block) {
	switch b.Kind {
	case KindChart, KindTable, KindImage, KindMermaid:
		s.counters[b.Kind]++
		b.Index = s.counters[b.Kind]
	}
	s.blocks = append(s.blocks, b)
}

func (s *scanner) block(n ast.Node) {
	switch node := n.(type) {
	case *ast.Heading:
		runs := flattenRuns(s.inlines(node))
		s.emit(Block{Kind: KindHeading, Level: node.Level, Runs: trimRuns(runs)})

	case *ast.Paragraph, *ast.TextBlock:
		s.paragraph(node, nil)

	case *ast.List:
		s.list(node, 0)

	case *extast.Table:
		s.table(node)

	case *ast.FencedCodeBlock:
		code := s.lines(node)
		switch strings.ToLower(string(node.Language(s.src))) {
		case "echarts":
			s.emit(Block{Kind: KindChart, Source: code})
		case "mermaid":
			s.emit(Block{Kind: KindMermaid, Source: code})
		default:
			s.emit(Block{Kind: KindCode, Source: code})
		}

	case *ast.CodeBlock:
		s.emit(Block{Kind: KindCode, Source: s.lines(node)})

	case *ast.HTMLBlock:
		if t := flattenHTML(s.lines(node)); t != "" {
			s.emit(Block{Kind: KindParagraph, Runs: []Run{{Text: t}}})
		}

	case *ast.ThematicBreak:

	default:
		// Blockquotes and anything unrecognised contribute their children.
		for c := n.FirstChild(); c != nil; c = c.NextSibling() {
			s.block(c)
		}
	}
}

// paragraph splits inline content at line breaks and images. With item set,
// text lines become list items carrying the item's nesting.
func (s *scanner) paragraph(n ast.Node, item *Block) {
	var line []Run
	flush := func() {
		runs := trimRuns(mergeRuns(line))
		line = nil
		if len(runs) == 0 {
			return
		}
		if item != nil {
			b := *item
			b.Runs = runs
			s.emit(b)
			item = nil
			return
		}
		s.emit(Block{Kind: KindParagraph, Runs: runs})
	}

	for _, in := range s.inlines(n) {
		switch {
		case in.image != nil:
			flush()
			s.emit(Block{Kind: KindImage, Alt: in.image.alt, Src: in.image.src})
		case in.lineBreak:
			if item != nil && len(line) > 0 {
				line = append(line, Run{Text: " "})
				continue
			}
			flush()
		default:
			line = append(line, in.run)
		}
	}
	flush()
}

func (s *scanner) list(l *ast.List, depth int) {
	s.lists++
	id := s.lists
	depth = min(depth, MaxListDepth)
	for li := l.FirstChild(); li != nil; li = li.NextSibling() {
		item := Block{Kind: KindListItem, Depth: depth, Ordered: l.IsOrdered(), ListID: id}
		emitted := false
		for c := li.FirstChild(); c != nil; c = c.NextSibling() {
			switch child := c.(type) {
			case *ast.Paragraph, *ast.TextBlock:
				if !emitted {
					s.paragraph(child, &item)
					emitted = true
					continue
				}
				s.paragraph(child, nil)
			case *ast.List:
				s.list(child, depth+1)
			default:
				s.block(child)
			}
		}
		if !emitted {
			s.emit(item)
		}
	}
}

func (s *scanner) table(t *extast.Table) {
	var rows [][]string
	for r := t.FirstChild(); r != nil; r = r.NextSibling() {
		var row []string
		empty := true
		for c := r.FirstChild(); c != nil; c = c.NextSibling() {
			cell := strings.TrimSpace(runsText(flattenRuns(s.inlines(c))))
			if cell != "" {
				empty = false
			}
			row = append(row, cell)
		}
		if !empty {
			rows = append(rows, row)
		}
	}
	if len(rows) > 0 {
		s.emit(Block{Kind: KindTable, Rows: rows})
	}
}

// lines returns the raw text of a block node without its trailing newline.
func (s *scanner) lines(n ast.Node) string {
	var buf bytes.Buffer
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		buf.Write(seg.Value(s.src))
	}
	return strings.TrimRight(buf.String(), "\n")
}

func runsText(runs []Run) string {
	var sb strings.Builder
	for _, r := range runs {
		sb.WriteString(r.Text)
	}
	return sb.String()
}

// trimRuns strips leading and trailing whitespace across the run list and
// drops runs left empty.
func trimRuns(runs []Run) []Run {
	for len(runs) > 0 {
		runs[0].Text = strings.TrimLeft(runs[0].Text, " \t")
		if runs[0].Text != "" {
			break
		}
		runs = runs[1:]
	}
	for len(runs) > 0 {
		last := len(runs) - 1
		runs[last].Text = strings.TrimRight(runs[last].Text, " \t")
		if runs[last].Text != "" {
			break
		}
		runs = runs[:last]
	}
	return runs
}
