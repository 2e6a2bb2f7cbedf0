package providers

import "context"

type ChapterKind string

const (
	// KindLinked chapters live on their own page and must be fetched.
	KindLinked ChapterKind = "linked"
	// KindDirect chapters were embedded in the listing page itself.
	KindDirect ChapterKind = "direct"
)

type Chapter struct {
	Index   int
	Title   string
	URL     string
	Kind    ChapterKind
	Content string
}

type Book struct {
	SourceURL       string
	Title           string
	Subtitle        string
	Editors         []string
	Acknowledgments string
	IntroHTML       string
	CoverURL        string
	Chapters        []Chapter
}

// Scraper turns a site's pages into a Book. GetBook reads the listing page;
// FetchChapter fills in Content for one chapter; FetchCover returns the raw
// cover image bytes.
type Scraper interface {
	GetBook(ctx context.Context, url string) (*Book, error)
	FetchChapter(ctx context.Context, ch Chapter) (Chapter, error)
	FetchCover(ctx context.Context, url string) ([]byte, error)
}
