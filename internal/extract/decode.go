package extract

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// ErrUnparseable is returned by Decode when no JSON document can be
// recovered from a response body.
var ErrUnparseable = errors.New("response is not JSON")

const snippetLen = 120

var (
	xssiPrefixes = []string{")]}',", ")]}'"}
	jsonpRegex   = regexp.MustCompile(`(?s)^[A-Za-z_$][\w$.]*\s*\((.*)\)\s*;?$`)
)

// Decode parses a response body that is JSON or wraps JSON. Besides plain
// documents it accepts a leading BOM or anti-XSSI guard, a JSONP callback,
// and an HTML page whose <pre> or <body> text is the document.
func Decode(body string) (any, error) {
	text := strings.TrimSpace(strings.TrimPrefix(body, "\ufeff"))
	for _, p := range xssiPrefixes {
		if strings.HasPrefix(text, p) {
			text = strings.TrimSpace(text[len(p):])
			break
		}
	}

	v, firstErr := Parse([]byte(text))
	if firstErr == nil {
		return v, nil
	}

	if m := jsonpRegex.FindStringSubmatch(text); m != nil {
		if v, err := Parse([]byte(m[1])); err == nil {
			return v, nil
		}
	}

	if strings.HasPrefix(text, "<") {
		if inner, ok := htmlPayload(text); ok {
			if v, err := Parse([]byte(inner)); err == nil {
				return v, nil
			}
		}
	}

	return nil, fmt.Errorf("%w: %v (body starts with %q)", ErrUnparseable, firstErr, Snippet(body))
}

// Snippet shortens s to a single line of at most 120 runes for log and
// error messages.
func Snippet(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= snippetLen {
		return s
	}
	return string(r[:snippetLen]) + "..."
}

// htmlPayload returns the text of the first <pre> element, or of <body>
// when the page has none.
func htmlPayload(page string) (string, bool) {
	doc, err := html.Parse(strings.NewReader(page))
	if err != nil {
		return "", false
	}

	if pre := findElement(doc, atom.Pre); pre != nil {
		return strings.TrimSpace(textContent(pre)), true
	}
	if body := findElement(doc, atom.Body); body != nil {
		return strings.TrimSpace(textContent(body)), true
	}
	return "", false
}

func findElement(n *html.Node, a atom.Atom) *html.Node {
	if n.Type == html.ElementNode && n.DataAtom == a {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, a); found != nil {
			return found
		}
	}
	return nil
}

func textContent(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var sb strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		sb.WriteString(textContent(c))
	}
	return sb.String()
}
