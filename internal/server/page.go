package server

import (
	"embed"
	"sort"

	"derrclan.com/study-desk/internal/verses"
)

//go:embed web
var web embed.FS

// VerseView is one verse as rendered on a page or returned by the API.
type VerseView struct {
	Reference string     `json:"reference"`
	Texts     []TextView `json:"texts"`
}

type TextView struct {
	Lang string `json:"lang"`
	Text string `json:"text"`
}

// languageOrder puts the harvested languages first, in harvest order.
var languageOrder = func() map[string]int {
	m := make(map[string]int, len(verses.Languages))
	for i, l := range verses.Languages {
		m[l.Code] = i
	}
	return m
}()

func newVerseView(ref string, texts map[string]string) VerseView {
	v := VerseView{Reference: ref}
	for lang, text := range texts {
		v.Texts = append(v.Texts, TextView{Lang: lang, Text: text})
	}
	sort.Slice(v.Texts, func(i, j int) bool {
		a, b := v.Texts[i].Lang, v.Texts[j].Lang
		ai, aok := languageOrder[a]
		bi, bok := languageOrder[b]
		switch {
		case aok && bok:
			return ai < bi
		case aok != bok:
			return aok
		}
		return a < b
	})
	return v
}
