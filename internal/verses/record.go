package verses

import (
	"encoding/json"
	"strconv"
	"strings"

	"derrclan.com/study-desk/internal/extract"
)

// Field names seen for the verse number and text across API versions.
var (
	numberFields = []string{"verse", "verse_number", "verseNumber", "number", "verse_nr", "v"}
	textFields   = []string{"text", "content", "verse_text", "verseText", "t"}
)

// VerseNumber returns the verse number of rec as a string.
func VerseNumber(rec any) (string, bool) {
	obj, ok := rec.(extract.Object)
	if !ok {
		return "", false
	}
	for _, f := range numberFields {
		v, ok := obj.Get(f)
		if !ok {
			continue
		}
		if s := scalarString(v); s != "" {
			return s, true
		}
	}
	return "", false
}

// VerseText returns the cleaned text of rec, or "" when no text field is
// present. Text given as a list of fragments is joined.
func VerseText(rec any) string {
	obj, ok := rec.(extract.Object)
	if !ok {
		return ""
	}
	for _, f := range textFields {
		v, ok := obj.Get(f)
		if !ok {
			continue
		}
		if s := CleanText(flatten(v)); s != "" {
			return s
		}
	}
	return ""
}

func scalarString(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case json.Number:
		if n, err := t.Int64(); err == nil {
			return strconv.FormatInt(n, 10)
		}
		return t.String()
	}
	return ""
}

// flatten joins the string parts of a text value. Objects inside a
// fragment list contribute their own "text" member.
func flatten(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case []any:
		parts := make([]string, 0, len(t))
		for _, el := range t {
			if s := flatten(el); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, " ")
	case extract.Object:
		if text, ok := t.Get("text"); ok {
			return flatten(text)
		}
	}
	return ""
}
