package corpus

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-shiori/go-readability"
	"github.com/gocolly/colly/v2"
)

// ErrCorpusFetch indicates the documentation corpus could not be fetched.
// Fatal at startup when an index build is required.
var ErrCorpusFetch = errors.New("corpus fetch failed")

// FetcherConfig configures the documentation fetcher.
type FetcherConfig struct {
	// BaseURL is the documentation site root (e.g., "https://laravel.com").
	BaseURL string
	// Version is the docs version segment (e.g., "12.x").
	Version string
	// Paths overrides the default page list. Paths are relative to BaseURL.
	Paths []string
	// Parallelism is max concurrent requests per domain (default: 2).
	Parallelism int
	// Delay is the politeness delay between requests (default: 1s).
	Delay time.Duration
	// Timeout is the per-request timeout (default: 30s).
	Timeout time.Duration
	// Logger for progress reporting (nil = default).
	Logger *slog.Logger
}

// Fetcher scrapes documentation pages into raw Documents.
type Fetcher struct {
	baseURL     *url.URL
	paths       []string
	parallelism int
	delay       time.Duration
	timeout     time.Duration
	logger      *slog.Logger
}

// NewFetcher creates a fetcher for the configured documentation site.
func NewFetcher(cfg FetcherConfig) (*Fetcher, error) {
	base, err := url.Parse(cfg.BaseURL)
	if err != nil || base.Host == "" {
		return nil, fmt.Errorf("invalid base URL %q: %w", cfg.BaseURL, err)
	}

	paths := cfg.Paths
	if len(paths) == 0 {
		paths = DefaultDocPaths(cfg.Version)
	}

	parallelism := cfg.Parallelism
	if parallelism <= 0 {
		parallelism = 2
	}
	delay := cfg.Delay
	if delay <= 0 {
		delay = time.Second
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Fetcher{
		baseURL:     base,
		paths:       paths,
		parallelism: parallelism,
		delay:       delay,
		timeout:     timeout,
		logger:      logger,
	}, nil
}

// Fetch scrapes all configured pages and returns the extracted documents.
// Individual page failures are logged and skipped; Fetch fails only when
// no page could be retrieved at all.
func (f *Fetcher) Fetch() ([]Document, error) {
	collector := colly.NewCollector(
		colly.AllowedDomains(f.baseURL.Host),
		colly.UserAgent("ai-laravel-docs/1.0 (+https://github.com/ramdanisyaputra/ai-laravel-docs)"),
	)
	collector.SetRequestTimeout(f.timeout)

	if err := collector.Limit(&colly.LimitRule{
		DomainGlob:  "*",
		Parallelism: f.parallelism,
		Delay:       f.delay,
	}); err != nil {
		return nil, fmt.Errorf("configuring scraper limits: %w", err)
	}

	var (
		mu   sync.Mutex
		docs []Document
	)

	collector.OnResponse(func(r *colly.Response) {
		source := r.Request.URL.Path
		doc, err := extractDocument(r.Body, r.Request.URL, source)
		if err != nil {
			f.logger.Warn("extracting page content", "source", source, "error", err)
			return
		}

		mu.Lock()
		docs = append(docs, doc)
		mu.Unlock()

		f.logger.Debug("fetched page", "source", source, "chars", len(doc.Content))
	})

	collector.OnError(func(r *colly.Response, err error) {
		f.logger.Warn("fetching page failed",
			"url", r.Request.URL.String(),
			"status", r.StatusCode,
			"error", err,
		)
	})

	for _, path := range f.paths {
		pageURL := f.baseURL.ResolveReference(&url.URL{Path: path}).String()
		if err := collector.Visit(pageURL); err != nil {
			f.logger.Warn("scheduling page visit", "url", pageURL, "error", err)
		}
	}
	collector.Wait()

	if len(docs) == 0 {
		return nil, fmt.Errorf("%w: no pages could be retrieved from %s", ErrCorpusFetch, f.baseURL)
	}

	f.logger.Info("corpus fetched", "pages", len(docs), "requested", len(f.paths))
	return docs, nil
}

// extractDocument pulls the main article text out of a documentation page.
// Readability strips navigation and chrome; when it cannot identify an
// article, the raw body text is used as a fallback.
func extractDocument(body []byte, pageURL *url.URL, source string) (Document, error) {
	article, err := readability.FromReader(bytes.NewReader(body), pageURL)
	if err == nil && strings.TrimSpace(article.TextContent) != "" {
		return Document{
			Source:  source,
			Title:   article.Title,
			Content: normalizeWhitespace(article.TextContent),
		}, nil
	}

	gq, gqErr := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if gqErr != nil {
		return Document{}, fmt.Errorf("parsing page: %w", gqErr)
	}
	gq.Find("script, style, nav, header, footer").Remove()

	text := normalizeWhitespace(gq.Find("body").Text())
	if text == "" {
		return Document{}, errors.New("no text content found")
	}
	return Document{
		Source:  source,
		Title:   strings.TrimSpace(gq.Find("title").First().Text()),
		Content: text,
	}, nil
}

// normalizeWhitespace collapses runs of blank lines and trims each line.
func normalizeWhitespace(s string) string {
	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	blank := false
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			if !blank && len(out) > 0 {
				out = append(out, "")
			}
			blank = true
			continue
		}
		blank = false
		out = append(out, line)
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}
