package ebangla

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/brogergvhs/ebangla2epub/internal/providers"
)

const unknownTitle = "Unknown Book"

var (
	reTabContent = regexp.MustCompile(`ld-tab-content-\d+`)

	editorMarkers = []string{"সম্পাদনা", "সঙ্কলন"}
	thanksMarker  = "কৃতজ্ঞতা"
)

// ExtractMetadata reads the book fields from a listing page. It never fails:
// fields it cannot locate are left empty, and the title falls back to the
// page heading, the document title and finally "Unknown Book".
func ExtractMetadata(doc *goquery.Document, pageURL string) providers.Book {
	book := providers.Book{SourceURL: pageURL}

	region := findByID(doc.Selection, "div", reTabContent)
	if region.Length() > 0 {
		intro := region.Clone()
		intro.Find("button.simplefavorite-button, script, style").Remove()

		if out, err := renderClean(intro); err == nil {
			book.IntroHTML = out
		}

		lines := textLines(intro)
		if len(lines) > 0 {
			book.Title = lines[0]
		}
		if len(lines) > 1 {
			book.Subtitle = lines[1]
		}

		for _, line := range lines {
			if containsAny(line, editorMarkers) {
				book.Editors = append(book.Editors, line)
			}
			if strings.Contains(line, thanksMarker) {
				book.Acknowledgments = line
			}
		}
	}

	if book.Title == "" {
		book.Title = fallbackTitle(doc)
	}

	if img := doc.Find("img.entry-image").First(); img.Length() > 0 {
		src := strings.TrimSpace(img.AttrOr("data-src", ""))
		if src == "" {
			src = strings.TrimSpace(img.AttrOr("src", ""))
		}
		if src != "" {
			book.CoverURL = resolveURL(pageURL, src)
		}
	}

	return book
}

func fallbackTitle(doc *goquery.Document) string {
	if h1 := strings.TrimSpace(doc.Find("h1").First().Text()); h1 != "" {
		return h1
	}
	if t := strings.TrimSpace(doc.Find("title").First().Text()); t != "" {
		return t
	}

	return unknownTitle
}

// findByID returns the first tag element whose id matches re.
func findByID(root *goquery.Selection, tag string, re *regexp.Regexp) *goquery.Selection {
	return root.Find(tag + "[id]").FilterFunction(func(_ int, s *goquery.Selection) bool {
		return re.MatchString(s.AttrOr("id", ""))
	}).First()
}

// textLines returns every non-blank line of every text node under sel, in
// document order, trimmed.
func textLines(sel *goquery.Selection) []string {
	var lines []string

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			for l := range strings.SplitSeq(n.Data, "\n") {
				if l = strings.TrimSpace(l); l != "" {
					lines = append(lines, l)
				}
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	for _, n := range sel.Nodes {
		walk(n)
	}

	return lines
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
