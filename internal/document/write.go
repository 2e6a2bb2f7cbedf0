package document

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	epub "github.com/go-shiori/go-epub"
	"github.com/vincent-petithory/dataurl"

	"github.com/brogergvhs/ebangla2epub/internal/util"
)

var ErrNoSections = errors.New("document has no chapters")

const stylesheet = `body {
  font-family: 'Noto Sans Bengali', 'Kalpurush', sans-serif;
  line-height: 1.6;
  margin: 2em;
}
h1 {
  text-align: center;
  margin-bottom: 1em;
}
p {
  text-align: justify;
  margin-bottom: 0.5em;
}
p.credit {
  text-align: center;
  font-size: 0.9em;
  margin-top: 2em;
}
`

// Write renders doc as an EPUB at path. The file is written next to path
// with a .part suffix and renamed into place once complete, so path never
// holds a truncated book.
func Write(doc OutputDocument, path string) error {
	if len(doc.Sections) == 0 {
		return ErrNoSections
	}

	e, err := build(doc)
	if err != nil {
		return err
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating output directory: %w", err)
		}
	}

	part := path + util.PartialSuffix
	if err := e.Write(part); err != nil {
		_ = os.Remove(part)
		return fmt.Errorf("writing %s: %w", path, err)
	}

	if err := os.Rename(part, path); err != nil {
		_ = os.Remove(part)
		return fmt.Errorf("writing %s: %w", path, err)
	}

	return nil
}

func build(doc OutputDocument) (*epub.Epub, error) {
	e, err := epub.NewEpub(doc.Title)
	if err != nil {
		return nil, err
	}

	e.SetLang(doc.Language)
	e.SetIdentifier(doc.Identifier)
	if doc.Description != "" {
		e.SetDescription(doc.Description)
	}
	if len(doc.Authors) > 0 {
		e.SetAuthor(strings.Join(doc.Authors, ", "))
	}

	css, err := e.AddCSS(dataurl.New([]byte(stylesheet), "text/css").String(), "book.css")
	if err != nil {
		return nil, fmt.Errorf("adding stylesheet: %w", err)
	}

	if len(doc.Cover) > 0 {
		if err := addCover(e, doc.Cover); err != nil {
			return nil, err
		}
	}

	if doc.Intro != nil {
		if _, err := e.AddSection(doc.Intro.Body, doc.Intro.Title, doc.Intro.FileName, css); err != nil {
			return nil, fmt.Errorf("adding intro: %w", err)
		}
	}

	for _, s := range doc.Sections {
		if _, err := e.AddSection(s.Body, s.Title, s.FileName, css); err != nil {
			return nil, fmt.Errorf("adding %q: %w", s.Title, err)
		}
	}

	return e, nil
}

// CoverType sniffs data and fails unless it is an image.
func CoverType(data []byte) (*mimetype.MIME, error) {
	mt := mimetype.Detect(data)
	if !strings.HasPrefix(mt.String(), "image/") {
		return nil, fmt.Errorf("cover is %s, not an image", mt.String())
	}

	return mt, nil
}

func addCover(e *epub.Epub, data []byte) error {
	mt, err := CoverType(data)
	if err != nil {
		return err
	}

	img, err := e.AddImage(dataurl.New(data, mt.String()).String(), "cover"+mt.Extension())
	if err != nil {
		return fmt.Errorf("adding cover: %w", err)
	}
	e.SetCover(img, "")

	return nil
}
