package ebangla_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/brogergvhs/ebangla2epub/internal/fetcher"
	"github.com/brogergvhs/ebangla2epub/internal/providers"
	"github.com/brogergvhs/ebangla2epub/internal/providers/ebangla"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSite(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/books/test/", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html><body>
<img class="entry-image" src="/cover.png">
<div id="ld-tab-content-1"><p>বই</p><p>উপশিরোনাম</p></div>
<div id="learndash_post_1">
  <a href="/topics/one/">এক</a>
  <a href="/topics/broken/">ভাঙা</a>
  <a href="/topics/empty/">খালি</a>
</div></body></html>`))
	})
	mux.HandleFunc("/topics/one/", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html><body><div class="entry-content"><p>প্রথম</p></div></body></html>`))
	})
	mux.HandleFunc("/topics/broken/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	mux.HandleFunc("/topics/empty/", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html><body><div class="comments">nothing</div></body></html>`))
	})
	mux.HandleFunc("/cover.png", func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.Header.Get("Accept"), "image/") {
			http.Error(w, "not acceptable", http.StatusNotAcceptable)
			return
		}
		_, _ = w.Write([]byte("\x89PNG\r\n\x1a\n"))
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newScraper(srv *httptest.Server) *ebangla.Scraper {
	f := fetcher.New(srv.Client(), fetcher.Options{Attempts: 1, Timeout: time.Second})
	return ebangla.NewScraper(f, nil)
}

func TestScraper_GetBook(t *testing.T) {
	srv := newSite(t)
	s := newScraper(srv)

	book, err := s.GetBook(context.Background(), srv.URL+"/books/test/")
	require.NoError(t, err)

	assert.Equal(t, "বই", book.Title)
	assert.Equal(t, "উপশিরোনাম", book.Subtitle)
	assert.Equal(t, srv.URL+"/cover.png", book.CoverURL)
	require.Len(t, book.Chapters, 3)
	assert.Equal(t, srv.URL+"/topics/one/", book.Chapters[0].URL)
}

func TestScraper_GetBook_FetchFailure(t *testing.T) {
	srv := newSite(t)

	_, err := newScraper(srv).GetBook(context.Background(), srv.URL+"/missing/")
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), "fetching book page"))

	var httpErr *fetcher.HTTPError
	assert.True(t, errors.As(err, &httpErr))
}

func TestScraper_GetBook_NoChapters(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html><head><title>খালি</title></head><body></body></html>`))
	}))
	defer srv.Close()

	book, err := newScraper(srv).GetBook(context.Background(), srv.URL)
	assert.ErrorIs(t, err, ebangla.ErrNoChapters)
	require.NotNil(t, book)
	assert.Equal(t, "খালি", book.Title)
}

func TestScraper_FetchChapter(t *testing.T) {
	srv := newSite(t)
	s := newScraper(srv)
	ctx := context.Background()

	ch, err := s.FetchChapter(ctx, providers.Chapter{Index: 1, URL: srv.URL + "/topics/one/", Kind: providers.KindLinked})
	require.NoError(t, err)
	assert.Contains(t, ch.Content, "<p>প্রথম</p>")

	_, err = s.FetchChapter(ctx, providers.Chapter{Index: 2, URL: srv.URL + "/topics/broken/", Kind: providers.KindLinked})
	var httpErr *fetcher.HTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, http.StatusNotFound, httpErr.StatusCode)

	_, err = s.FetchChapter(ctx, providers.Chapter{Index: 3, URL: srv.URL + "/topics/empty/", Kind: providers.KindLinked})
	assert.ErrorIs(t, err, ebangla.ErrNoContent)
}

func TestScraper_FetchChapter_Direct(t *testing.T) {
	s := ebangla.NewScraper(nil, nil)

	ch, err := s.FetchChapter(context.Background(), providers.Chapter{Kind: providers.KindDirect, Content: "<p>x</p>"})
	require.NoError(t, err)
	assert.Equal(t, "<p>x</p>", ch.Content)

	_, err = s.FetchChapter(context.Background(), providers.Chapter{Kind: providers.KindDirect})
	assert.ErrorIs(t, err, ebangla.ErrNoContent)
}

func TestScraper_FetchCover(t *testing.T) {
	srv := newSite(t)

	data, err := newScraper(srv).FetchCover(context.Background(), srv.URL+"/cover.png")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "\x89PNG"))
}

func TestValidateURL(t *testing.T) {
	ok := []string{
		"https://www.ebanglalibrary.com/books/x/",
		"http://ebanglalibrary.com/books/x/",
		" https://EBANGLALIBRARY.com/topics/y/ ",
	}
	for _, u := range ok {
		assert.NoError(t, ebangla.ValidateURL(u, ebangla.DefaultHost), u)
	}

	assert.ErrorIs(t, ebangla.ValidateURL("https://example.com/books/x/", ebangla.DefaultHost), ebangla.ErrForeignHost)
	assert.ErrorIs(t, ebangla.ValidateURL("https://notebanglalibrary.com/", ebangla.DefaultHost), ebangla.ErrForeignHost)
	assert.Error(t, ebangla.ValidateURL("ftp://www.ebanglalibrary.com/", ebangla.DefaultHost))
	assert.Error(t, ebangla.ValidateURL("books/x", ebangla.DefaultHost))
	assert.NoError(t, ebangla.ValidateURL("https://example.com/", ""))
}
