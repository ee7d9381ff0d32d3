package outline

import (
	"fmt"
	"strings"

	"github.com/413232903/markdown2word-mcp/internal/markdown"
	"github.com/413232903/markdown2word-mcp/internal/template"
)

// FromMarkdown lists the headings of src numbered the way the generated
// document numbers them.
func FromMarkdown(src []byte) (*Outline, error) {
	doc, err := markdown.Parse(src)
	if err != nil {
		return nil, fmt.Errorf("parse markdown: %w", err)
	}
	var (
		t       tree
		numbers template.HeadingNumbers
	)
	for _, h := range doc.Headings() {
		t.add(h.Level, strings.TrimSpace(numbers.Next(h.Level)+" "+h.Text()))
	}
	return &Outline{Title: doc.Title, Headings: nonNil(t.root)}, nil
}

func nonNil(nodes []*Node) []*Node {
	if nodes == nil {
		return []*Node{}
	}
	return nodes
}
