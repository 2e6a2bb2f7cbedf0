package ebangla

import (
	"errors"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/brogergvhs/ebangla2epub/internal/providers"
)

var ErrNoChapters = errors.New("no chapters found")

var (
	reLearndashPost = regexp.MustCompile(`learndash_post_\d+`)

	// "Chapter" in Bengali, with য় both decomposed and precomposed.
	chapterMarkers = []string{"অধ্যা\u09af\u09bc", "অধ্যা\u09df"}

	nonChapterHeadings = map[string]bool{
		"Book Information":    true,
		"সারাংশ":              true,
		"Reader Interactions": true,
	}
)

// DiscoverChapters returns the chapters of a listing page in site order,
// numbered from 1. Pages that embed their chapters are preferred; otherwise
// the LearnDash topic links are used. A page with neither yields
// ErrNoChapters.
func DiscoverChapters(doc *goquery.Document, pageURL string) ([]providers.Chapter, error) {
	out := directChapters(doc, pageURL)
	if len(out) == 0 {
		out = linkedChapters(doc, pageURL)
	}
	if len(out) == 0 {
		return nil, ErrNoChapters
	}

	for i := range out {
		out[i].Index = i + 1
	}

	return out, nil
}

func isChapterHeading(text string) bool {
	return containsAny(text, chapterMarkers) || strings.HasPrefix(text, "Chapter")
}

func directChapters(doc *goquery.Document, pageURL string) []providers.Chapter {
	article := doc.Find("article").First()
	if article.Length() == 0 {
		return nil
	}

	headings := article.Find("h2")

	found := false
	headings.EachWithBreak(func(_ int, h *goquery.Selection) bool {
		found = isChapterHeading(strings.TrimSpace(h.Text()))
		return !found
	})
	if !found {
		return nil
	}

	var out []providers.Chapter
	headings.Each(func(_ int, h *goquery.Selection) {
		title := strings.TrimSpace(h.Text())
		if title == "" || nonChapterHeadings[title] {
			return
		}

		paras := h.NextUntil("h2").Filter("p")
		if paras.Length() == 0 {
			return
		}

		content, err := CleanContent(paras)
		if err != nil {
			return
		}

		out = append(out, providers.Chapter{
			Title:   title,
			URL:     pageURL,
			Kind:    providers.KindDirect,
			Content: content,
		})
	})

	return out
}

func linkedChapters(doc *goquery.Document, pageURL string) []providers.Chapter {
	container := findByID(doc.Selection, "div", reLearndashPost)
	if container.Length() == 0 {
		return nil
	}

	out := collectLinks(container.Find("a[href]"), pageURL, func(href string) bool {
		return strings.Contains(href, "/topics/")
	})
	if len(out) == 0 {
		out = collectLinks(container.Find("a[class*='ld-item-name']"), pageURL, nil)
	}

	return out
}

func collectLinks(links *goquery.Selection, pageURL string, keep func(href string) bool) []providers.Chapter {
	var out []providers.Chapter
	seen := map[string]bool{}

	links.Each(func(_ int, a *goquery.Selection) {
		href := strings.TrimSpace(a.AttrOr("href", ""))
		title := strings.TrimSpace(a.Text())
		if href == "" || title == "" {
			return
		}
		if keep != nil && !keep(href) {
			return
		}

		u := resolveURL(pageURL, href)
		if seen[u] {
			return
		}
		seen[u] = true

		out = append(out, providers.Chapter{
			Title: strings.Join(strings.Fields(title), " "),
			URL:   u,
			Kind:  providers.KindLinked,
		})
	})

	return out
}

func resolveURL(baseURL, href string) string {
	u, err := url.Parse(href)
	if err != nil {
		return href
	}
	if u.IsAbs() {
		return u.String()
	}

	b, err := url.Parse(baseURL)
	if err != nil {
		return href
	}

	return b.ResolveReference(u).String()
}
