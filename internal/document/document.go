// Package document turns a scraped book into an EPUB file.
package document

import (
	"bytes"
	"html/template"
	"path/filepath"
	"strings"

	"github.com/brogergvhs/ebangla2epub/internal/chapters"
	"github.com/brogergvhs/ebangla2epub/internal/providers"
	"github.com/brogergvhs/ebangla2epub/internal/util"
)

const (
	DefaultLanguage = "bn"
	IntroTitle      = "Book Information"
	IntroFileName   = "intro.xhtml"
)

type Section struct {
	Title    string
	FileName string
	Body     string
}

type OutputDocument struct {
	Title       string
	Subtitle    string
	Authors     []string
	Language    string
	Identifier  string
	Description string

	// Cover holds raw image bytes; nil means no cover.
	Cover []byte
	Intro *Section

	Sections []Section
}

type Options struct {
	Language     string
	IncludeIntro bool
	Cover        []byte
}

var introTmpl = template.Must(template.New("intro").Parse(
	`{{if .IntroHTML}}{{.IntroHTML}}{{else}}<h1>{{.Title}}</h1>
{{with .Subtitle}}<h2>{{.}}</h2>
{{end}}{{range .Editors}}<p>{{.}}</p>
{{end}}{{with .Acknowledgments}}<p>{{.}}</p>
{{end}}{{end}}
<hr/>
<p class="credit"><em>Converted from <a href="{{.SourceURL}}">{{.SourceURL}}</a> with ebangla2epub.</em></p>
`))

var chapterTmpl = template.Must(template.New("chapter").Parse(
	`<h1>{{.Title}}</h1>
{{.Content}}
`))

// FromBook assembles the document for book. Only results that are not
// missing become sections, in the order given.
func FromBook(book *providers.Book, results []chapters.Result, opts Options) (OutputDocument, error) {
	lang := strings.TrimSpace(opts.Language)
	if lang == "" {
		lang = DefaultLanguage
	}

	doc := OutputDocument{
		Title:       book.Title,
		Subtitle:    book.Subtitle,
		Authors:     book.Editors,
		Language:    lang,
		Identifier:  book.SourceURL,
		Description: book.Subtitle,
		Cover:       opts.Cover,
	}

	if opts.IncludeIntro {
		body, err := renderIntro(book)
		if err != nil {
			return doc, err
		}
		doc.Intro = &Section{Title: IntroTitle, FileName: IntroFileName, Body: body}
	}

	for _, r := range results {
		if r.Missing() {
			continue
		}

		var b bytes.Buffer
		err := chapterTmpl.Execute(&b, struct {
			Title   string
			Content template.HTML
		}{r.Title, template.HTML(r.Content)})
		if err != nil {
			return doc, err
		}

		doc.Sections = append(doc.Sections, Section{
			Title:    r.Title,
			FileName: r.FileName(),
			Body:     b.String(),
		})
	}

	return doc, nil
}

func renderIntro(book *providers.Book) (string, error) {
	var b bytes.Buffer
	err := introTmpl.Execute(&b, struct {
		IntroHTML       template.HTML
		Title           string
		Subtitle        string
		Editors         []string
		Acknowledgments string
		SourceURL       string
	}{
		IntroHTML:       template.HTML(book.IntroHTML),
		Title:           book.Title,
		Subtitle:        book.Subtitle,
		Editors:         book.Editors,
		Acknowledgments: book.Acknowledgments,
		SourceURL:       book.SourceURL,
	})

	return b.String(), err
}

// OutputPath returns override unchanged when set, otherwise the sanitized
// title with an .epub extension inside dir.
func OutputPath(title, override, dir string) string {
	if override != "" {
		return override
	}

	return filepath.Join(dir, util.SanitizeFilename(title)+".epub")
}
