package ebangla

import (
	"errors"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

var ErrNoContent = errors.New("chapter content region not found")

var reContentClass = regexp.MustCompile(`ld-tab-content.*entry-content`)

// unwantedSelector lists markup that never belongs in the book: scripts,
// embeds, share/favourite widgets and ad slots.
const unwantedSelector = "script, style, noscript, iframe, object, embed, form, button, " +
	"img, picture, svg, video, audio, " +
	"ins.adsbygoogle, .code-block, [class*='advert'], .sharedaddy, .simplefavorite-button, " +
	".ld-navigation, .ld-content-actions"

var keptAttrs = map[string]bool{
	"href":    true,
	"title":   true,
	"class":   true,
	"lang":    true,
	"dir":     true,
	"alt":     true,
	"cite":    true,
	"colspan": true,
	"rowspan": true,
}

// ExtractContent returns the cleaned XHTML of a chapter page's content region.
func ExtractContent(doc *goquery.Document) (string, error) {
	region := doc.Find("div.entry-content").First()
	if region.Length() == 0 {
		region = doc.Find("div[class]").FilterFunction(func(_ int, s *goquery.Selection) bool {
			return reContentClass.MatchString(s.AttrOr("class", ""))
		}).First()
	}
	if region.Length() == 0 {
		return "", ErrNoContent
	}

	return CleanContent(region)
}

// CleanContent serializes a copy of sel as an XHTML fragment with unwanted
// elements and attributes removed. A selection without readable text yields
// ErrNoContent.
func CleanContent(sel *goquery.Selection) (string, error) {
	clean := sel.Clone()
	clean.Find(unwantedSelector).Remove()
	if strings.TrimSpace(clean.Text()) == "" {
		return "", ErrNoContent
	}

	out, err := renderClean(clean)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(out) == "" {
		return "", ErrNoContent
	}

	return out, nil
}

// renderClean strips sel in place and renders each of its nodes. Void
// elements come out self-closed, which keeps the fragment valid XHTML.
func renderClean(sel *goquery.Selection) (string, error) {
	sel.Find(unwantedSelector).Remove()

	var b strings.Builder
	for i, n := range sel.Nodes {
		if n.Type == html.ElementNode {
			n.Attr = filterAttrs(n.Attr)
		}
		sanitizeChildren(n)

		if i > 0 {
			b.WriteString("\n")
		}
		if err := html.Render(&b, n); err != nil {
			return "", err
		}
	}

	return b.String(), nil
}

// sanitizeChildren drops comments, unwraps namespaced elements such as
// Word's <o:p> and filters attributes on the whole subtree of n.
func sanitizeChildren(n *html.Node) {
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling

		switch {
		case c.Type == html.CommentNode:
			n.RemoveChild(c)

		case c.Type == html.ElementNode && strings.Contains(c.Data, ":"):
			sanitizeChildren(c)
			for gc := c.FirstChild; gc != nil; {
				gnext := gc.NextSibling
				c.RemoveChild(gc)
				n.InsertBefore(gc, c)
				gc = gnext
			}
			n.RemoveChild(c)

		case c.Type == html.ElementNode:
			c.Attr = filterAttrs(c.Attr)
			sanitizeChildren(c)
		}

		c = next
	}
}

func filterAttrs(attrs []html.Attribute) []html.Attribute {
	out := attrs[:0]
	for _, a := range attrs {
		if a.Namespace != "" || !keptAttrs[a.Key] {
			continue
		}
		if a.Key == "href" && strings.HasPrefix(strings.ToLower(strings.TrimSpace(a.Val)), "javascript:") {
			continue
		}
		out = append(out, a)
	}

	return out
}
