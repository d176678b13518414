package dom

import (
	"bytes"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Markup serializes the subtree rooted at n as HTML and truncates the
// result to at most limit characters. A limit <= 0 disables truncation.
func Markup(n *Node, limit int) string {
	if n == nil {
		return ""
	}
	var buf bytes.Buffer
	if err := html.Render(&buf, toHTML(n)); err != nil {
		return ""
	}
	return Truncate(buf.String(), limit)
}

// Truncate cuts s to at most limit characters.
func Truncate(s string, limit int) string {
	if limit <= 0 {
		return s
	}
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit])
}

func toHTML(n *Node) *html.Node {
	if n.IsText() {
		return &html.Node{Type: html.TextNode, Data: n.Text}
	}
	h := &html.Node{
		Type:     html.ElementNode,
		Data:     n.Tag,
		DataAtom: atom.Lookup([]byte(n.Tag)),
	}
	for _, a := range n.Attrs {
		h.Attr = append(h.Attr, html.Attribute{Key: a.Name, Val: a.Value})
	}
	for _, c := range n.Children {
		h.AppendChild(toHTML(c))
	}
	return h
}

// Preview renders a compact one-element summary of n: its opening tag
// with attribute values cut at 30 characters and up to 100 characters of
// its text content.
func Preview(n *Node) string {
	if n == nil || n.IsText() {
		return ""
	}
	var b strings.Builder
	b.WriteString("<" + n.Tag)
	for _, a := range n.Attrs {
		v := a.Value
		if len([]rune(v)) > 30 {
			v = string([]rune(v)[:30]) + "..."
		}
		b.WriteString(" " + a.Name + `="` + v + `"`)
	}
	text := strings.TrimSpace(TextContent(n))
	if len([]rune(text)) > 100 {
		text = string([]rune(text)[:100]) + "..."
	}
	if text == "" {
		b.WriteString(" />")
		return b.String()
	}
	b.WriteString(">\n  " + text + "\n</" + n.Tag + ">")
	return b.String()
}

// TextContent concatenates the text nodes below n in document order.
func TextContent(n *Node) string {
	if n.IsText() {
		return n.Text
	}
	var b strings.Builder
	for _, c := range n.Children {
		b.WriteString(TextContent(c))
	}
	return b.String()
}
