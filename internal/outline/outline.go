// Package outline extracts the heading tree of a Markdown source or a
// Word document.
package outline

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// Outline is the root of a heading tree.
type Outline struct {
	Title    string  `json:"title"`
	Headings []*Node `json:"headings"`
}

// Node is one heading and the headings nested beneath it.
type Node struct {
	Level    int     `json:"level"`
	Text     string  `json:"text"`
	Children []*Node `json:"children,omitempty"`
}

// Count returns the number of headings in the tree.
func (o *Outline) Count() int {
	var walk func([]*Node) int
	walk = func(nodes []*Node) int {
		n := len(nodes)
		for _, c := range nodes {
			n += walk(c.Children)
		}
		return n
	}
	return walk(o.Headings)
}

// Write prints the tree with two spaces of indent per nesting level.
func (o *Outline) Write(w io.Writer) error {
	if o.Title != "" {
		if _, err := fmt.Fprintln(w, o.Title); err != nil {
			return err
		}
	}
	var walk func([]*Node, int) error
	walk = func(nodes []*Node, depth int) error {
		for _, n := range nodes {
			if _, err := fmt.Fprintf(w, "%s%s\n", strings.Repeat("  ", depth), n.Text); err != nil {
				return err
			}
			if err := walk(n.Children, depth+1); err != nil {
				return err
			}
		}
		return nil
	}
	return walk(o.Headings, 0)
}

// Supported reports whether name has an extension Read understands.
func Supported(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".md", ".markdown", ".docx":
		return true
	}
	return false
}

// Read dispatches on the extension of name.
func Read(r io.Reader, name string) (*Outline, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".md", ".markdown":
		src, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("read markdown: %w", err)
		}
		return FromMarkdown(src)
	case ".docx":
		return FromDocx(r, name)
	default:
		return nil, fmt.Errorf("unsupported file extension: %s", filepath.Ext(name))
	}
}

// tree nests headings by level. A heading attaches to the nearest earlier
// heading with a smaller level.
type tree struct {
	root  []*Node
	stack []*Node
}

func (t *tree) add(level int, text string) {
	n := &Node{Level: level, Text: text}
	for len(t.stack) > 0 && t.stack[len(t.stack)-1].Level >= level {
		t.stack = t.stack[:len(t.stack)-1]
	}
	if len(t.stack) == 0 {
		t.root = append(t.root, n)
	} else {
		parent := t.stack[len(t.stack)-1]
		parent.Children = append(parent.Children, n)
	}
	t.stack = append(t.stack, n)
}
