package verses

import (
	"fmt"
	"strconv"
	"strings"
)

// Language pairs the short code used as a key in the output document with
// the code the chapter API expects in its path.
type Language struct {
	Code    string
	APICode string
}

// Languages lists every language a chapter is fetched in, in fetch order.
var Languages = []Language{
	{Code: "EN", APICode: "eng"},
	{Code: "CN", APICode: "cmn"},
	{Code: "JA", APICode: "jpn"},
	{Code: "KO", APICode: "kor"},
	{Code: "TH", APICode: "tha"},
}

// Chapter names one chapter of one book as the API spells the book.
type Chapter struct {
	Book   string
	Number int
}

func (c Chapter) String() string {
	return fmt.Sprintf("%s %d", c.Book, c.Number)
}

// DefaultChapters is the reading list harvested when no override is set.
var DefaultChapters = []Chapter{
	{Book: "Genesis", Number: 1},
	{Book: "Psalms", Number: 1},
	{Book: "Psalms", Number: 23},
	{Book: "Psalms", Number: 119},
	{Book: "Proverbs", Number: 3},
	{Book: "Isaiah", Number: 40},
	{Book: "Matthew", Number: 5},
	{Book: "John", Number: 1},
	{Book: "John", Number: 3},
	{Book: "Romans", Number: 8},
	{Book: "1 Corinthians", Number: 13},
	{Book: "Philippians", Number: 4},
	{Book: "Hebrews", Number: 11},
	{Book: "1 John", Number: 4},
}

// bookAliases maps API book names to the names used in references. Psalms
// is cited one psalm at a time, so references read "Psalm 23:1".
var bookAliases = map[string]string{
	"Psalms": "Psalm",
}

// DisplayName returns the name book is cited by.
func DisplayName(book string) string {
	if alias, ok := bookAliases[book]; ok {
		return alias
	}
	return book
}

// Reference composes the output key for one verse, e.g. "Psalm 1:3".
func Reference(book string, chapter int, verse string) string {
	return fmt.Sprintf("%s %d:%s", DisplayName(book), chapter, verse)
}

// ParseChapters reads a semicolon separated list such as
// "Psalms 23; 1 John 4". The chapter number is the last field of each item.
func ParseChapters(s string) ([]Chapter, error) {
	var chapters []Chapter
	for _, item := range strings.Split(s, ";") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}

		i := strings.LastIndexAny(item, " \t")
		if i < 0 {
			return nil, fmt.Errorf("invalid chapter %q: expected \"<book> <chapter>\"", item)
		}
		book := strings.Join(strings.Fields(item[:i]), " ")
		n, err := strconv.Atoi(item[i+1:])
		if err != nil || n < 1 || book == "" {
			return nil, fmt.Errorf("invalid chapter %q: expected \"<book> <chapter>\"", item)
		}
		chapters = append(chapters, Chapter{Book: book, Number: n})
	}
	if len(chapters) == 0 {
		return nil, fmt.Errorf("no chapters in %q", s)
	}
	return chapters, nil
}
