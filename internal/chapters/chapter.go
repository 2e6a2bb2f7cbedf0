package chapters

import (
	"strconv"
	"strings"

	"github.com/brogergvhs/ebangla2epub/internal/providers"
)

// Result is the outcome of fetching one chapter.
type Result struct {
	providers.Chapter
	Err   error
	Bytes int64
}

// Missing reports whether the chapter has nothing to put in the book.
func (r Result) Missing() bool {
	return r.Err != nil || strings.TrimSpace(r.Content) == ""
}

// FileName is the chapter's file name inside the book.
func (r Result) FileName() string {
	return FileName(r.Chapter)
}

func FileName(ch providers.Chapter) string {
	return "chapter_" + strconv.Itoa(ch.Index) + ".xhtml"
}

// MissingTitles lists the titles of missing results in order.
func MissingTitles(results []Result) []string {
	var out []string
	for _, r := range results {
		if r.Missing() {
			out = append(out, r.Title)
		}
	}
	return out
}
