package markdown

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// flattenHTML reduces a raw HTML block to its visible text. Script and style
// content is dropped; block-level elements separate their text with spaces.
func flattenHTML(src string) string {
	nodes, err := html.ParseFragment(strings.NewReader(src), &html.Node{
		Type:     html.ElementNode,
		Data:     "body",
		DataAtom: atom.Body,
	})
	if err != nil {
		return ""
	}
	var buf strings.Builder
	for _, n := range nodes {
		textContent(n, &buf)
	}
	return strings.Join(strings.Fields(buf.String()), " ")
}

func textContent(n *html.Node, buf *strings.Builder) {
	switch n.Type {
	case html.TextNode:
		buf.WriteString(n.Data)
		return
	case html.CommentNode:
		return
	case html.ElementNode:
		switch n.Data {
		case "script", "style":
			return
		case "br", "p", "div", "li", "td", "th", "tr":
			buf.WriteByte(' ')
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		textContent(c, buf)
	}
}
