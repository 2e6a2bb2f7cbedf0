package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/brogergvhs/ebangla2epub/internal/chapters"
	"github.com/brogergvhs/ebangla2epub/internal/config"
	"github.com/brogergvhs/ebangla2epub/internal/document"
	"github.com/brogergvhs/ebangla2epub/internal/downloader"
	"github.com/brogergvhs/ebangla2epub/internal/fetcher"
	"github.com/brogergvhs/ebangla2epub/internal/providers/ebangla"
	"github.com/brogergvhs/ebangla2epub/internal/ui"
	"github.com/brogergvhs/ebangla2epub/internal/util"

	"github.com/spf13/cobra"
)

var (
	// output
	flagOutput    string
	flagOutputDir string
	flagLang      string
	flagNoCover   bool
	flagNoIntro   bool

	// selection
	flagRange  string
	flagList   string
	flagDryRun bool

	// network
	flagTimeout    int
	flagRetries    int
	flagUserAgent  string
	flagCookie     string
	flagCookieFile string
	flagCloudflare bool
	flagAnyHost    bool
)

func init() {
	f := rootCmd.Flags()

	// output
	f.StringVarP(&flagOutput, "output", "o", "", "output EPUB file (default: <title>.epub in the output dir)")
	f.StringVar(&flagOutputDir, "output-dir", "", "folder for the generated EPUB")
	f.StringVar(&flagLang, "lang", "", "EPUB language code (default bn)")
	f.BoolVar(&flagNoCover, "no-cover", false, "do not download the cover image")
	f.BoolVar(&flagNoIntro, "no-intro", false, "leave out the Book Information page")

	// selection
	f.StringVar(&flagRange, "range", "", "convert a range of chapters by index (e.g. 5-12)")
	f.StringVar(&flagList, "list", "", "convert specific chapter indices (e.g. 1,3,5)")
	f.BoolVar(&flagDryRun, "dry-run", false, "list the chapters that would be converted and exit")

	// network
	f.IntVar(&flagTimeout, "timeout", 0, "per-request timeout in seconds (default 30)")
	f.IntVar(&flagRetries, "retries", 0, "attempts per request (default 3)")
	f.StringVar(&flagUserAgent, "user-agent", "", "override User-Agent")
	f.StringVar(&flagCookie, "cookie", "", "cookie string, e.g. \"key=value; other=123\"")
	f.StringVar(&flagCookieFile, "cookie-file", "", "path to a text file with cookies (one header line)")
	f.BoolVar(&flagCloudflare, "cloudflare", false, "send browser-like TLS and headers to get past Cloudflare")
	f.BoolVar(&flagAnyHost, "any-host", false, "accept URLs outside the configured site host")
}

func runConvert(cmd *cobra.Command, args []string) error {
	cfg, usedPath, err := config.LoadMerged(config.Options{
		IgnoreConfig:     flagIgnoreConfig,
		Debug:            flagDebug,
		OutputDir:        flagOutputDir,
		Language:         flagLang,
		TimeoutSeconds:   flagTimeout,
		Retries:          flagRetries,
		NoCover:          flagNoCover,
		NoIntro:          flagNoIntro,
		DefaultRange:     flagRange,
		DefaultList:      flagList,
		Cookie:           flagCookie,
		CookieFile:       flagCookieFile,
		UserAgent:        flagUserAgent,
		CloudflareBypass: flagCloudflare,
	})
	if err != nil {
		return err
	}

	log := ui.NewLogger(cfg.Debug)
	log.Debugf("config: %s", strings.TrimSpace(usedPath))

	bookURL := strings.TrimSpace(args[0])
	host := cfg.SiteHost
	if flagAnyHost {
		host = ""
	}
	if err := ebangla.ValidateURL(bookURL, host); err != nil {
		return err
	}

	ctx, cancel := util.SetupInterruptHandler(cmd.Context(), outputDirFor(cfg))
	defer cancel()

	_, err = convertBook(ctx, os.Stdout, cfg, log, run{
		URL:      bookURL,
		Output:   flagOutput,
		DryRun:   flagDryRun,
		Progress: true,
	})

	return err
}

func outputDirFor(cfg *config.Config) string {
	if flagOutput != "" {
		return filepath.Dir(flagOutput)
	}
	return cfg.OutputDir
}

type run struct {
	URL      string
	Output   string
	DryRun   bool
	Progress bool
}

// convertBook runs the whole pipeline for one book and returns the path of
// the written EPUB. Status lines and the summary go to out.
func convertBook(ctx context.Context, out io.Writer, cfg *config.Config, log *ui.Logger, r run) (string, error) {
	start := time.Now()
	stats := &ui.Stats{}

	client, err := util.NewHTTPClient(util.HTTPClientOptions{
		UserAgent:        util.PickUserAgent(cfg.UserAgent),
		Cookie:           cfg.Cookie,
		CookieFile:       cfg.CookieFile,
		CloudflareBypass: cfg.CloudflareBypass,
		DebugLogger:      log,
	})
	if err != nil {
		return "", err
	}

	f := fetcher.New(client, fetcher.Options{
		Attempts:    cfg.Retries,
		Backoff:     fetcher.DefaultBackoff,
		Timeout:     time.Duration(cfg.TimeoutSeconds) * time.Second,
		OnBytes:     func(n int64) { stats.TotalBytes.Add(n) },
		DebugLogger: log,
	})
	scr := ebangla.NewScraper(f, log)

	_, _ = fmt.Fprintf(out, "Fetching %s\n", r.URL)
	book, err := scr.GetBook(ctx, r.URL)
	if err != nil {
		return "", err
	}

	_, _ = fmt.Fprintf(out, "Title:    %s\n", book.Title)
	if book.Subtitle != "" {
		_, _ = fmt.Fprintf(out, "Subtitle: %s\n", book.Subtitle)
	}
	_, _ = fmt.Fprintf(out, "Found %s (%s layout).\n\n", util.Plural(len(book.Chapters), "chapter"), book.Chapters[0].Kind)

	selected, err := chapters.Filter(book.Chapters, cfg.DefaultRange, cfg.DefaultList)
	if err != nil {
		return "", err
	}
	if len(selected) == 0 {
		return "", errors.New("no chapters selected")
	}

	outPath := document.OutputPath(book.Title, r.Output, cfg.OutputDir)

	if r.DryRun {
		_, _ = fmt.Fprintf(out, "Dry-run: %s selected, would write %s\n\n", util.Plural(len(selected), "chapter"), outPath)
		for _, ch := range selected {
			_, _ = fmt.Fprintf(out, "%3d) %s\n    %s\n", ch.Index, ch.Title, ch.URL)
		}
		return "", nil
	}

	var cover []byte
	if cfg.IncludeCover && book.CoverURL != "" {
		cover = fetchCover(ctx, scr, book.CoverURL, log)
	}

	var progress downloader.Progress
	var pm *ui.MPBProgressManager
	if r.Progress {
		pm = ui.NewProgressManager()
		progress = pm.Register("Chapters")
	}

	results, err := downloader.New(scr, log, stats, progress).Run(ctx, selected)
	if pm != nil {
		pm.Close()
	}
	if err != nil {
		return "", err
	}

	doc, err := document.FromBook(book, results, document.Options{
		Language:     cfg.Language,
		IncludeIntro: cfg.IncludeIntro,
		Cover:        cover,
	})
	if err != nil {
		return "", err
	}

	if err := document.Write(doc, outPath); err != nil {
		return "", err
	}

	printSummary(out, stats, results, outPath, time.Since(start))

	return outPath, nil
}

func fetchCover(ctx context.Context, scr *ebangla.Scraper, coverURL string, log *ui.Logger) []byte {
	data, err := scr.FetchCover(ctx, coverURL)
	if err != nil {
		log.With("url", coverURL).Warnf("cover download failed: %v", err)
		return nil
	}

	mt, err := document.CoverType(data)
	if err != nil {
		log.With("url", coverURL).Warnf("skipping cover: %v", err)
		return nil
	}

	log.Infof("cover: %s, %s", mt.String(), util.Human(int64(len(data))))
	return data
}

func printSummary(out io.Writer, stats *ui.Stats, results []chapters.Result, path string, took time.Duration) {
	total := int(stats.TotalChapters.Load())
	missing := chapters.MissingTitles(results)

	_, _ = fmt.Fprintln(out)
	_, _ = fmt.Fprintln(out, "Conversion Summary:")
	_, _ = fmt.Fprintf(out, "Chapters: %d/%d\n", total-len(missing), total)
	if len(missing) > 0 {
		_, _ = fmt.Fprintf(out, "Missing:  %s\n", util.Plural(len(missing), "chapter"))
		for _, title := range missing {
			_, _ = fmt.Fprintf(out, "  - %s\n", title)
		}
	}
	_, _ = fmt.Fprintf(out, "Data:     %s\n", util.Human(stats.TotalBytes.Load()))
	_, _ = fmt.Fprintf(out, "Time:     %s\n", took.Round(time.Second))
	_, _ = fmt.Fprintf(out, "Output:   %s\n", path)
}
