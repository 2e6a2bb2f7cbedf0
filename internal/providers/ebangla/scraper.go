package ebangla

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/brogergvhs/ebangla2epub/internal/providers"
)

const DefaultHost = "ebanglalibrary.com"

var ErrForeignHost = errors.New("URL is not on the supported site")

// PageFetcher is the part of fetcher.Fetcher the scraper needs.
type PageFetcher interface {
	Image(ctx context.Context, url string) ([]byte, error)
	Document(ctx context.Context, url string) (*goquery.Document, error)
}

type Scraper struct {
	fetch PageFetcher
	log   interface{ Debugf(string, ...any) }
}

var _ providers.Scraper = (*Scraper)(nil)

func NewScraper(f PageFetcher, log interface{ Debugf(string, ...any) }) *Scraper {
	return &Scraper{fetch: f, log: log}
}

// GetBook fetches a listing page and returns its metadata and chapters. The
// returned error wraps the fetch error or ErrNoChapters; on ErrNoChapters the
// metadata is still returned.
func (s *Scraper) GetBook(ctx context.Context, pageURL string) (*providers.Book, error) {
	doc, err := s.fetch.Document(ctx, pageURL)
	if err != nil {
		return nil, fmt.Errorf("fetching book page: %w", err)
	}

	book := ExtractMetadata(doc, pageURL)
	s.debugf("metadata: title=%q subtitle=%q editors=%d cover=%q", book.Title, book.Subtitle, len(book.Editors), book.CoverURL)

	chs, err := DiscoverChapters(doc, pageURL)
	if err != nil {
		return &book, err
	}
	book.Chapters = chs

	s.debugf("discovered %d chapters (%s layout)", len(chs), chs[0].Kind)

	return &book, nil
}

// FetchChapter fills in the content of ch. Direct chapters already carry it.
func (s *Scraper) FetchChapter(ctx context.Context, ch providers.Chapter) (providers.Chapter, error) {
	if ch.Kind == providers.KindDirect {
		if strings.TrimSpace(ch.Content) == "" {
			return ch, ErrNoContent
		}
		return ch, nil
	}

	doc, err := s.fetch.Document(ctx, ch.URL)
	if err != nil {
		return ch, err
	}

	content, err := ExtractContent(doc)
	if err != nil {
		return ch, err
	}
	ch.Content = content

	return ch, nil
}

func (s *Scraper) FetchCover(ctx context.Context, coverURL string) ([]byte, error) {
	if coverURL == "" {
		return nil, errors.New("no cover URL")
	}

	return s.fetch.Image(ctx, coverURL)
}

func (s *Scraper) debugf(format string, args ...any) {
	if s.log != nil {
		s.log.Debugf(format, args...)
	}
}

// ValidateURL checks that raw is an absolute http(s) URL on host or one of
// its subdomains.
func ValidateURL(raw, host string) error {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return fmt.Errorf("invalid URL %q: %w", raw, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid URL %q: scheme must be http or https", raw)
	}

	h := strings.ToLower(u.Hostname())
	host = strings.ToLower(strings.TrimSpace(host))
	if h == "" {
		return fmt.Errorf("invalid URL %q: missing host", raw)
	}
	if host != "" && h != host && !strings.HasSuffix(h, "."+host) {
		return fmt.Errorf("%w: %s (expected %s)", ErrForeignHost, h, host)
	}

	return nil
}
