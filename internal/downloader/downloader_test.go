package downloader_test

import (
	"context"
	"errors"
	"testing"

	"github.com/brogergvhs/ebangla2epub/internal/downloader"
	"github.com/brogergvhs/ebangla2epub/internal/providers"
	"github.com/brogergvhs/ebangla2epub/internal/ui"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeScraper struct {
	fail  map[int]bool
	calls []int
}

func (f *fakeScraper) GetBook(context.Context, string) (*providers.Book, error) {
	return nil, errors.New("not used")
}

func (f *fakeScraper) FetchCover(context.Context, string) ([]byte, error) {
	return nil, errors.New("not used")
}

func (f *fakeScraper) FetchChapter(_ context.Context, ch providers.Chapter) (providers.Chapter, error) {
	f.calls = append(f.calls, ch.Index)
	if f.fail[ch.Index] {
		return ch, errors.New("HTTP 500")
	}
	ch.Content = "<p>" + ch.Title + "</p>"
	return ch, nil
}

type recorder struct {
	updates []int
	missing int
	done    bool
}

func (r *recorder) Update(done, _ int, _ int64) { r.updates = append(r.updates, done) }
func (r *recorder) SetMissing(n int)             { r.missing = n }
func (r *recorder) MarkDone()                    { r.done = true }

func book(n int) []providers.Chapter {
	out := make([]providers.Chapter, n)
	for i := range out {
		out[i] = providers.Chapter{Index: i + 1, Title: string(rune('A' + i)), Kind: providers.KindLinked}
	}
	return out
}

func TestRun_SkipsFailedChapter(t *testing.T) {
	s := &fakeScraper{fail: map[int]bool{2: true}}
	rec := &recorder{}
	stats := &ui.Stats{}

	res, err := downloader.New(s, ui.NewLogger(false), stats, rec).Run(context.Background(), book(3))
	require.NoError(t, err)

	require.Len(t, res, 3)
	assert.Equal(t, []int{1, 2, 3}, s.calls)
	assert.False(t, res[0].Missing())
	assert.True(t, res[1].Missing())
	assert.False(t, res[2].Missing())
	assert.Equal(t, int64(len("<p>A</p>")), res[0].Bytes)

	assert.Equal(t, int64(3), stats.TotalChapters.Load())
	assert.Equal(t, int64(1), stats.MissingChapters.Load())
	assert.Equal(t, 1, rec.missing)
	assert.Equal(t, []int{0, 1, 2, 3}, rec.updates)
	assert.True(t, rec.done)
}

func TestRun_AllMissing(t *testing.T) {
	s := &fakeScraper{fail: map[int]bool{1: true, 2: true}}

	res, err := downloader.New(s, nil, nil, nil).Run(context.Background(), book(2))
	assert.ErrorIs(t, err, downloader.ErrAllMissing)
	assert.Len(t, res, 2)
}

func TestRun_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := &fakeScraper{}
	res, err := downloader.New(s, nil, nil, nil).Run(ctx, book(2))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, res)
	assert.Empty(t, s.calls)
}
