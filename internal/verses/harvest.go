package verses

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"net/url"
	"strings"
	"time"

	"derrclan.com/study-desk/internal/extract"
)

// Fetcher returns the body served at a URL.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// ChapterCache keeps chapter bodies between runs.
type ChapterCache interface {
	Get(ctx context.Context, url string) (string, bool, error)
	Put(ctx context.Context, url, body string) error
}

// Summary counts what happened during a run.
type Summary struct {
	Fetches int // network fetches attempted
	Cached  int // chapters served from the cache
	Failed  int // chapters that could not be fetched or decoded
	Empty   int // chapters that decoded but held no verses
	Verses  int // verse texts merged into the collection
}

func (s Summary) String() string {
	return fmt.Sprintf("%d fetches, %d cached, %d failed, %d empty, %d verse texts",
		s.Fetches, s.Cached, s.Failed, s.Empty, s.Verses)
}

// Harvester walks every chapter in every language and gathers the verse
// texts into one Collection.
type Harvester struct {
	BaseURL   string
	Fetcher   Fetcher
	Cache     ChapterCache // optional
	Chapters  []Chapter
	Languages []Language

	// Pause runs after every network fetch.
	Pause func(ctx context.Context) error
}

// NewHarvester returns a harvester over DefaultChapters and Languages that
// pauses 400-600ms after each fetch.
func NewHarvester(baseURL string, f Fetcher) *Harvester {
	return &Harvester{
		BaseURL:   baseURL,
		Fetcher:   f,
		Chapters:  DefaultChapters,
		Languages: Languages,
		Pause:     JitterPause(400*time.Millisecond, 600*time.Millisecond),
	}
}

// JitterPause sleeps for a random duration in [low, high).
func JitterPause(low, high time.Duration) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		d := low
		if high > low {
			d += rand.N(high - low)
		}
		t := time.NewTimer(d)
		defer t.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			return nil
		}
	}
}

// ChapterURL returns {base}/{lang}/{book}/{chapter}.
func (h *Harvester) ChapterURL(ch Chapter, lang Language) string {
	return fmt.Sprintf("%s/%s/%s/%d",
		strings.TrimRight(h.BaseURL, "/"), lang.APICode, url.PathEscape(ch.Book), ch.Number)
}

// Run harvests every chapter. A chapter that fails in one language is
// logged and skipped; Run itself only fails when ctx ends, in which case
// the partial collection is returned with the error.
func (h *Harvester) Run(ctx context.Context) (Collection, Summary, error) {
	coll := make(Collection)
	var sum Summary

	for _, ch := range h.Chapters {
		for _, lang := range h.Languages {
			if err := ctx.Err(); err != nil {
				return coll, sum, err
			}

			log := slog.With("book", ch.Book, "chapter", ch.Number, "lang", lang.Code)
			chapterURL := h.ChapterURL(ch, lang)

			body, ok := h.lookup(ctx, chapterURL)
			if ok {
				sum.Cached++
			} else {
				sum.Fetches++
				var err error
				body, err = h.Fetcher.Fetch(ctx, chapterURL)
				if h.Pause != nil {
					if perr := h.Pause(ctx); perr != nil {
						return coll, sum, perr
					}
				}
				if err != nil {
					if ctx.Err() != nil {
						return coll, sum, ctx.Err()
					}
					log.Error("failed to fetch chapter", "url", chapterURL, "error", err)
					sum.Failed++
					continue
				}
			}

			payload, err := extract.Decode(body)
			if err != nil {
				log.Error("failed to decode chapter", "url", chapterURL, "error", err)
				sum.Failed++
				continue
			}

			records := extract.FindVerses(payload)
			if len(records) == 0 {
				log.Warn("no verses found", "url", chapterURL, "body", extract.Snippet(body))
				sum.Empty++
				continue
			}

			if !ok {
				h.store(ctx, chapterURL, body)
			}

			n := mergeRecords(coll, ch, lang, records)
			sum.Verses += n
			log.Info("harvested chapter", "verses", n)
		}
	}

	return coll, sum, nil
}

func mergeRecords(coll Collection, ch Chapter, lang Language, records []any) int {
	merged := 0
	for _, rec := range records {
		num, ok := VerseNumber(rec)
		if !ok {
			slog.Debug("skipping record without verse number", "book", ch.Book, "chapter", ch.Number, "lang", lang.Code)
			continue
		}
		text := VerseText(rec)
		// An empty text would create a key with no readable language.
		if text == "" {
			slog.Debug("skipping record without text", "book", ch.Book, "chapter", ch.Number, "verse", num, "lang", lang.Code)
			continue
		}
		coll.Merge(Reference(ch.Book, ch.Number, num), lang.Code, text)
		merged++
	}
	return merged
}

func (h *Harvester) lookup(ctx context.Context, chapterURL string) (string, bool) {
	if h.Cache == nil {
		return "", false
	}
	body, ok, err := h.Cache.Get(ctx, chapterURL)
	if err != nil {
		slog.Warn("failed to read chapter cache", "url", chapterURL, "error", err)
		return "", false
	}
	return body, ok
}

func (h *Harvester) store(ctx context.Context, chapterURL, body string) {
	if h.Cache == nil {
		return
	}
	if err := h.Cache.Put(ctx, chapterURL, body); err != nil {
		slog.Warn("failed to write chapter cache", "url", chapterURL, "error", err)
	}
}
