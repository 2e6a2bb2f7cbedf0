package cmd

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	simpepub "github.com/simp-lee/epub"

	"github.com/brogergvhs/ebangla2epub/internal/config"
	"github.com/brogergvhs/ebangla2epub/internal/downloader"
	"github.com/brogergvhs/ebangla2epub/internal/fetcher"
	"github.com/brogergvhs/ebangla2epub/internal/providers/ebangla"
	"github.com/brogergvhs/ebangla2epub/internal/ui"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const listing = `<html><head><title>বই – ইবাংলা</title></head><body>
<div id="ld-tab-content-11"><p>ছোট বই</p><p>গল্পসংকলন</p><p>সম্পাদনা: কেউ</p></div>
<div id="learndash_post_11">
  <a href="/topics/one/">এক</a>
  <a href="/topics/two/">দুই</a>
  <a href="/topics/three/">তিন</a>
</div></body></html>`

func newLibrary(t *testing.T, broken ...string) *httptest.Server {
	t.Helper()

	down := map[string]bool{}
	for _, b := range broken {
		down[b] = true
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/books/small/", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(listing))
	})
	mux.HandleFunc("/topics/", func(w http.ResponseWriter, r *http.Request) {
		slug := strings.Trim(strings.TrimPrefix(r.URL.Path, "/topics/"), "/")
		if down[slug] {
			http.Error(w, "gone", http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte(`<html><body><div class="entry-content"><p>` + slug + `</p></div></body></html>`))
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.OutputDir = t.TempDir()
	cfg.Retries = 1
	cfg.TimeoutSeconds = 5
	return cfg
}

func quietLogger() *ui.Logger {
	return ui.NewLoggerTo(io.Discard, false)
}

func TestConvertBook_WritesEPUB(t *testing.T) {
	srv := newLibrary(t, "two")
	cfg := testConfig(t)

	var out bytes.Buffer
	path, err := convertBook(context.Background(), &out, cfg, quietLogger(), run{URL: srv.URL + "/books/small/"})
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(cfg.OutputDir, "ছোট বই.epub"), path)
	assert.Contains(t, out.String(), "Chapters: 2/3")
	assert.Contains(t, out.String(), "  - দুই")

	book, err := simpepub.Open(path)
	require.NoError(t, err)
	defer func() { _ = book.Close() }()

	var toc []string
	for _, item := range book.TOC() {
		toc = append(toc, item.Title)
	}
	assert.Contains(t, toc, "Book Information")
	assert.Contains(t, toc, "এক")
	assert.Contains(t, toc, "তিন")
	assert.NotContains(t, toc, "দুই")
}

func TestConvertBook_CustomOutput(t *testing.T) {
	srv := newLibrary(t)
	cfg := testConfig(t)
	cfg.DefaultRange = "1-2"

	want := filepath.Join(t.TempDir(), "custom name.epub")
	path, err := convertBook(context.Background(), io.Discard, cfg, quietLogger(), run{URL: srv.URL + "/books/small/", Output: want})
	require.NoError(t, err)
	assert.Equal(t, want, path)

	_, err = os.Stat(want)
	require.NoError(t, err)

	entries, err := os.ReadDir(cfg.OutputDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestConvertBook_DryRun(t *testing.T) {
	srv := newLibrary(t)
	cfg := testConfig(t)

	var out bytes.Buffer
	path, err := convertBook(context.Background(), &out, cfg, quietLogger(), run{URL: srv.URL + "/books/small/", DryRun: true})
	require.NoError(t, err)
	assert.Empty(t, path)
	assert.Contains(t, out.String(), "Dry-run: 3 chapters selected")

	entries, err := os.ReadDir(cfg.OutputDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestConvertBook_AllChaptersMissing(t *testing.T) {
	srv := newLibrary(t, "one", "two", "three")
	cfg := testConfig(t)

	_, err := convertBook(context.Background(), io.Discard, cfg, quietLogger(), run{URL: srv.URL + "/books/small/"})
	assert.ErrorIs(t, err, downloader.ErrAllMissing)

	entries, err := os.ReadDir(cfg.OutputDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestConvertBook_ListingFailure(t *testing.T) {
	srv := newLibrary(t)
	cfg := testConfig(t)

	_, err := convertBook(context.Background(), io.Discard, cfg, quietLogger(), run{URL: srv.URL + "/books/missing/"})

	var httpErr *fetcher.HTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, http.StatusNotFound, httpErr.StatusCode)
}

func TestConvertBook_NoChapters(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html><body><h1>খালি</h1></body></html>`))
	}))
	defer srv.Close()

	_, err := convertBook(context.Background(), io.Discard, testConfig(t), quietLogger(), run{URL: srv.URL})
	assert.ErrorIs(t, err, ebangla.ErrNoChapters)
}
