package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"derrclan.com/study-desk/internal/verses"
)

func testServer(t *testing.T) *Server {
	t.Helper()
	s, err := New(verses.Collection{
		"Psalm 23:1": {"EN": "The LORD is my shepherd", "KO": "여호와는 나의 목자시니", "CN": "耶和华是我的牧者"},
		"John 3:16":  {"EN": "For God so loved the world"},
		"John 11:35": {"TH": "พระเยซูทรงกันแสง", "EN": "Jesus wept."},
	})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return s
}

func get(t *testing.T, s *Server, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	s.Muxer().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestHandleVerse(t *testing.T) {
	rec := get(t, testServer(t), "/api/verse?ref=Psalm+23:1")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var got VerseView
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	want := VerseView{
		Reference: "Psalm 23:1",
		Texts: []TextView{
			{Lang: "EN", Text: "The LORD is my shepherd"},
			{Lang: "CN", Text: "耶和华是我的牧者"},
			{Lang: "KO", Text: "여호와는 나의 목자시니"},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("verse mismatch (-want +got):\n%s", diff)
	}
}

func TestHandleVerse_Errors(t *testing.T) {
	s := testServer(t)
	if rec := get(t, s, "/api/verse"); rec.Code != http.StatusBadRequest {
		t.Errorf("missing ref: expected 400, got %d", rec.Code)
	}
	if rec := get(t, s, "/api/verse?ref=Jude+1:99"); rec.Code != http.StatusNotFound {
		t.Errorf("unknown ref: expected 404, got %d", rec.Code)
	}
}

func TestHandleRandom(t *testing.T) {
	s := testServer(t)

	tests := []struct {
		target string
		want   int
	}{
		{"/api/random", 1},
		{"/api/random?n=2", 2},
		{"/api/random?n=10", 3},
		{"/api/random?n=10&lang=TH", 1},
		{"/api/random?n=10&lang=JA", 0},
	}
	for _, tt := range tests {
		rec := get(t, s, tt.target)
		if rec.Code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d", tt.target, rec.Code)
		}
		var got []VerseView
		if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
			t.Fatalf("%s: failed to decode response: %v", tt.target, err)
		}
		if len(got) != tt.want {
			t.Errorf("%s: expected %d verses, got %d", tt.target, tt.want, len(got))
		}

		seen := map[string]bool{}
		for _, v := range got {
			if seen[v.Reference] {
				t.Errorf("%s: %s drawn twice", tt.target, v.Reference)
			}
			seen[v.Reference] = true
		}
	}
}

func TestHandleRandom_FiltersLanguage(t *testing.T) {
	rec := get(t, testServer(t), "/api/random?n=5&lang=KO")

	var got []VerseView
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	want := []VerseView{{Reference: "Psalm 23:1", Texts: []TextView{{Lang: "KO", Text: "여호와는 나의 목자시니"}}}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("random mismatch (-want +got):\n%s", diff)
	}
}

func TestHandleRandom_BadCount(t *testing.T) {
	s := testServer(t)
	for _, target := range []string{"/api/random?n=0", "/api/random?n=-1", "/api/random?n=many"} {
		if rec := get(t, s, target); rec.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", target, rec.Code)
		}
	}
}

func TestHandleIndex(t *testing.T) {
	rec := get(t, testServer(t), "/")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	output := rec.Body.String()
	if !strings.Contains(output, "3 verses harvested") {
		t.Errorf("expected output to contain the verse count")
	}
	for _, ref := range []string{"Psalm 23:1", "John 3:16", "John 11:35"} {
		if !strings.Contains(output, ref) {
			t.Errorf("expected output to contain %q", ref)
		}
	}
	if !strings.Contains(output, "class=\"passage-content\"") {
		t.Errorf("expected output to contain class 'passage-content'")
	}
}

func TestHandleIndex_EmptyCollection(t *testing.T) {
	s, err := New(verses.Collection{})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	rec := get(t, s, "/")
	if !strings.Contains(rec.Body.String(), "No verses available.") {
		t.Errorf("expected empty-state message, got %s", rec.Body.String())
	}
}

func TestUnknownPathAndHealth(t *testing.T) {
	s := testServer(t)
	if rec := get(t, s, "/nope"); rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
	if rec := get(t, s, "/healthz"); rec.Code != http.StatusOK || rec.Body.String() != "ok" {
		t.Errorf("unexpected health response %d %q", rec.Code, rec.Body.String())
	}
	if rec := get(t, s, "/web/style.css"); rec.Code != http.StatusOK {
		t.Errorf("expected static file, got %d", rec.Code)
	}
}
