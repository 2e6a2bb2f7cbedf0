package downloader

import (
	"context"
	"errors"

	"github.com/brogergvhs/ebangla2epub/internal/chapters"
	"github.com/brogergvhs/ebangla2epub/internal/providers"
	"github.com/brogergvhs/ebangla2epub/internal/ui"
)

// ErrAllMissing is returned when not a single selected chapter has content.
var ErrAllMissing = errors.New("no chapter content could be fetched")

// Progress receives updates after every chapter. *ui.ProgressHandle
// implements it.
type Progress interface {
	Update(done, total int, bytes int64)
	SetMissing(n int)
	MarkDone()
}

type Logger interface {
	Debugf(string, ...any)
	Warnf(string, ...any)
}

type Downloader struct {
	scraper  providers.Scraper
	log      Logger
	stats    *ui.Stats
	progress Progress
}

func New(s providers.Scraper, log Logger, stats *ui.Stats, p Progress) *Downloader {
	if stats == nil {
		stats = &ui.Stats{}
	}
	if p == nil {
		p = noopProgress{}
	}

	return &Downloader{
		scraper:  s,
		log:      log,
		stats:    stats,
		progress: p,
	}
}

// Run fetches chs one after another, in order. A chapter that fails is logged,
// recorded as missing and skipped. Run stops early only when ctx is cancelled,
// returning the results gathered so far. If every chapter is missing the
// results are returned together with ErrAllMissing.
func (d *Downloader) Run(ctx context.Context, chs []providers.Chapter) ([]chapters.Result, error) {
	total := len(chs)
	results := make([]chapters.Result, 0, total)
	missing := 0

	d.stats.TotalChapters.Store(int64(total))
	d.progress.Update(0, total, d.stats.TotalBytes.Load())
	defer d.progress.MarkDone()

	for i, ch := range chs {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		d.debugf("fetching chapter %d/%d: %s", i+1, total, ch.Title)

		got, err := d.scraper.FetchChapter(ctx, ch)
		if err != nil && ctx.Err() != nil {
			return results, ctx.Err()
		}

		res := chapters.Result{Chapter: got, Err: err}
		if err == nil {
			res.Bytes = int64(len(got.Content))
		}

		if res.Missing() {
			if res.Err == nil {
				res.Err = errors.New("empty content")
			}
			missing++
			d.stats.MissingChapters.Add(1)
			d.progress.SetMissing(missing)
			d.warnf("skipping chapter %d %q: %v", ch.Index, ch.Title, res.Err)
		}

		results = append(results, res)
		d.progress.Update(i+1, total, d.stats.TotalBytes.Load())
	}

	if total > 0 && missing == total {
		return results, ErrAllMissing
	}

	return results, nil
}

func (d *Downloader) debugf(format string, args ...any) {
	if d.log != nil {
		d.log.Debugf(format, args...)
	}
}

func (d *Downloader) warnf(format string, args ...any) {
	if d.log != nil {
		d.log.Warnf(format, args...)
	}
}

type noopProgress struct{}

func (noopProgress) Update(int, int, int64) {}
func (noopProgress) SetMissing(int)         {}
func (noopProgress) MarkDone()              {}
