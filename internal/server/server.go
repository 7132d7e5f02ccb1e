package server

import (
	"encoding/json"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"sort"
	"strconv"

	"derrclan.com/study-desk/internal/verses"
)

const (
	indexSample = 5
	maxSample   = 50
)

// Server serves a harvested verse collection.
type Server struct {
	coll verses.Collection
	refs []string // sorted keys of coll
	tmpl *template.Template
}

// New prepares a server over coll. The collection is not modified.
func New(coll verses.Collection) (*Server, error) {
	tmpl, err := template.New("").ParseFS(web, "web/*.html", "web/*.gotmpl")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	refs := make([]string, 0, len(coll))
	for ref := range coll {
		refs = append(refs, ref)
	}
	sort.Strings(refs)

	return &Server{coll: coll, refs: refs, tmpl: tmpl}, nil
}

func (s *Server) Muxer() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/api/verse", s.handleVerse)
	mux.HandleFunc("/api/random", s.handleRandom)
	mux.HandleFunc("/healthz", handleHealth)

	webFS, err := fs.Sub(web, "web")
	if err != nil {
		slog.Error("failed to create web subdirectory filesystem", "error", err)
	} else {
		mux.Handle("/web/", http.StripPrefix("/web/", http.FileServer(http.FS(webFS))))
	}

	return mux
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	data := map[string]any{
		"verses": s.sample(indexSample, ""),
		"total":  len(s.refs),
	}
	if err := s.tmpl.ExecuteTemplate(w, "index.html", data); err != nil {
		slog.Error("failed to execute template", "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

// handleVerse returns every language of one reference, e.g.
// /api/verse?ref=Psalm+23:1
func (s *Server) handleVerse(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	ref := r.URL.Query().Get("ref")
	if ref == "" {
		http.Error(w, "Missing ref parameter", http.StatusBadRequest)
		return
	}

	texts, ok := s.coll[ref]
	if !ok {
		http.Error(w, fmt.Sprintf("No verse found for reference: %s", ref), http.StatusNotFound)
		return
	}

	writeJSON(w, newVerseView(ref, texts))
}

// handleRandom returns n distinct random verses, optionally only those
// that have text in lang.
func (s *Server) handleRandom(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	n := 1
	if v := r.URL.Query().Get("n"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 1 {
			http.Error(w, "n must be a positive integer", http.StatusBadRequest)
			return
		}
		n = min(parsed, maxSample)
	}

	writeJSON(w, s.sample(n, r.URL.Query().Get("lang")))
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprint(w, "ok")
}

// sample draws up to n distinct verses. When lang is set only verses with
// text in lang are drawn, and only that language is included.
func (s *Server) sample(n int, lang string) []VerseView {
	candidates := s.refs
	if lang != "" {
		candidates = nil
		for _, ref := range s.refs {
			if _, ok := s.coll[ref][lang]; ok {
				candidates = append(candidates, ref)
			}
		}
	}

	picked := make([]string, len(candidates))
	copy(picked, candidates)
	rand.Shuffle(len(picked), func(i, j int) { picked[i], picked[j] = picked[j], picked[i] })
	if len(picked) > n {
		picked = picked[:n]
	}

	views := make([]VerseView, 0, len(picked))
	for _, ref := range picked {
		texts := s.coll[ref]
		if lang != "" {
			texts = map[string]string{lang: texts[lang]}
		}
		views = append(views, newVerseView(ref, texts))
	}
	return views
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
