package verses

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// CleanText trims s and collapses runs of whitespace. Markup such as
// footnote tags or <span class="wj"> is reduced to its text, and <sup>
// elements (footnote callers) are dropped.
func CleanText(s string) string {
	if strings.ContainsAny(s, "<&") {
		s = stripMarkup(s)
	}
	return strings.Join(strings.Fields(s), " ")
}

func stripMarkup(s string) string {
	nodes, err := html.ParseFragment(strings.NewReader(s), &html.Node{
		Type:     html.ElementNode,
		Data:     "body",
		DataAtom: atom.Body,
	})
	if err != nil {
		return s
	}

	var sb strings.Builder
	for _, n := range nodes {
		appendText(&sb, n)
	}
	return sb.String()
}

func appendText(sb *strings.Builder, n *html.Node) {
	switch n.Type {
	case html.TextNode:
		sb.WriteString(n.Data)
		return
	case html.ElementNode:
		switch n.DataAtom {
		case atom.Sup, atom.Script, atom.Style:
			return
		case atom.Br, atom.P, atom.Div:
			sb.WriteByte(' ')
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		appendText(sb, c)
	}
}
