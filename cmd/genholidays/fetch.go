package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/buger/jsonparser"
	"go.uber.org/zap"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/transform"
	"golang.org/x/time/rate"

	cnholiday "github.com/rabitt1ove/cn-holidays"
)

const (
	// Maximum response sizes to prevent memory exhaustion.
	maxSearchResponseSize = 1 * 1024 * 1024 // 1 MB for the search API response
	maxPageResponseSize   = 5 * 1024 * 1024 // 5 MB for a notice page
)

// retryBaseDelay is the base delay between retry attempts (variable for testing).
var retryBaseDelay = 2 * time.Second

var (
	errNoNotice = errors.New("no matching notice found")

	reTitleYear   = regexp.MustCompile(`(\d{4})年`)
	reTag         = regexp.MustCompile(`<[^>]*>`)
	reMetaCharset = regexp.MustCompile(`(?i)<meta[^>]+charset=["']?([\w-]+)`)
)

// fetcher locates the holiday notice of a year and extracts its paragraphs.
type fetcher struct {
	cfg     *config
	client  *http.Client
	limiter *rate.Limiter
	log     *zap.Logger
}

func newFetcher(cfg *config, client *http.Client, log *zap.Logger) *fetcher {
	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}
	return &fetcher{
		cfg:     cfg,
		client:  client,
		limiter: rate.NewLimiter(limit, 1),
		log:     log,
	}
}

// fetchYears fetches the notices of years concurrently and returns their
// paragraphs in the order of years.
func (f *fetcher) fetchYears(ctx context.Context, years []int) ([]cnholiday.Paragraph, error) {
	perYear := make([][]cnholiday.Paragraph, len(years))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(f.cfg.Workers)
	for i, year := range years {
		i, year := i, year
		g.Go(func() error {
			ps, err := f.noticeParagraphs(gctx, year)
			if err != nil {
				return fmt.Errorf("year %d: %w", year, err)
			}
			perYear[i] = ps
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var out []cnholiday.Paragraph
	for _, ps := range perYear {
		out = append(out, ps...)
	}
	return out, nil
}

// noticeParagraphs returns the <p> texts of the notice published for year.
func (f *fetcher) noticeParagraphs(ctx context.Context, year int) ([]cnholiday.Paragraph, error) {
	noticeURL, err := f.findNotice(ctx, year)
	if err != nil {
		return nil, err
	}
	body, contentType, err := f.fetchWithRetry(ctx, noticeURL, maxPageResponseSize)
	if err != nil {
		return nil, err
	}
	texts, err := extractParagraphs(decodeBody(body, contentType))
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", noticeURL, err)
	}
	f.log.Info("fetched notice",
		zap.Int("year", year),
		zap.String("url", noticeURL),
		zap.Int("paragraphs", len(texts)))

	ps := make([]cnholiday.Paragraph, len(texts))
	for i, text := range texts {
		ps[i] = cnholiday.Paragraph{Text: text, Year: year}
	}
	return ps, nil
}

// findNotice queries the search API and returns the URL of the first result
// whose title matches the title pattern and names year.
func (f *fetcher) findNotice(ctx context.Context, year int) (string, error) {
	searchURL := strings.ReplaceAll(f.cfg.SearchURL, "{year}", strconv.Itoa(year))
	if err := validateURL(searchURL, f.cfg.AllowedHosts); err != nil {
		return "", err
	}
	body, _, err := f.fetchWithRetry(ctx, searchURL, maxSearchResponseSize)
	if err != nil {
		return "", err
	}

	var (
		found   string
		seen    int
		itemErr error
	)
	_, err = jsonparser.ArrayEach(body, func(value []byte, _ jsonparser.ValueType, _ int, _ error) {
		if found != "" || itemErr != nil {
			return
		}
		seen++
		title, err := jsonparser.GetString(value, "title")
		if err != nil {
			return
		}
		title = cleanTitle(title)
		if !f.cfg.Title.Match(title) || titleYear(title) != year {
			f.log.Debug("skipping search result", zap.String("title", title))
			return
		}
		link, err := jsonparser.GetString(value, "url")
		if err != nil {
			return
		}
		resolved, err := resolveURL(searchURL, link)
		if err != nil {
			itemErr = err
			return
		}
		if err := validateURL(resolved, f.cfg.AllowedHosts); err != nil {
			itemErr = fmt.Errorf("search returned invalid URL: %w", err)
			return
		}
		found = resolved
	}, f.cfg.ResultPath...)
	if err != nil {
		return "", fmt.Errorf("search response: %w", err)
	}
	if itemErr != nil {
		return "", itemErr
	}
	if found == "" {
		return "", fmt.Errorf("%w among %d results for %d", errNoNotice, seen, year)
	}
	f.log.Debug("resolved notice", zap.Int("year", year), zap.String("url", found))
	return found, nil
}

// fetchWithRetry fetches a URL with exponential backoff retries. It returns
// at most maxSize bytes of the body and the response Content-Type.
func (f *fetcher) fetchWithRetry(ctx context.Context, rawURL string, maxSize int64) ([]byte, string, error) {
	var lastErr error
	for attempt := 0; attempt < f.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := retryBaseDelay * time.Duration(1<<(attempt-1))
			f.log.Warn("retrying",
				zap.String("url", rawURL),
				zap.Duration("delay", delay),
				zap.Int("attempt", attempt+1),
				zap.Int("max", f.cfg.MaxRetries))
			select {
			case <-ctx.Done():
				return nil, "", ctx.Err()
			case <-time.After(delay):
			}
		}
		if err := f.limiter.Wait(ctx); err != nil {
			return nil, "", err
		}

		f.log.Debug("fetching", zap.String("url", rawURL))
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return nil, "", fmt.Errorf("creating request: %w", err)
		}
		req.Header.Set("User-Agent", f.cfg.UserAgent)

		resp, err := f.client.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, "", ctx.Err()
			}
			lastErr = fmt.Errorf("GET %s: %w", rawURL, err)
			continue
		}

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			resp.Body.Close()
			lastErr = fmt.Errorf("GET %s: status %d", rawURL, resp.StatusCode)
			continue
		}
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			return nil, "", fmt.Errorf("GET %s: status %d", rawURL, resp.StatusCode)
		}

		body, err := io.ReadAll(io.LimitReader(resp.Body, maxSize))
		resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("GET %s: reading body: %w", rawURL, err)
			continue
		}
		return body, resp.Header.Get("Content-Type"), nil
	}
	return nil, "", lastErr
}

// validateURL checks that a URL is https and points to an allowed host
// (SSRF prevention).
func validateURL(rawURL string, allowed map[string]bool) error {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid URL %q: %w", rawURL, err)
	}
	if parsed.Scheme != "https" {
		return fmt.Errorf("URL %q: only HTTPS is allowed", rawURL)
	}
	if !allowed[strings.ToLower(parsed.Hostname())] {
		return fmt.Errorf("URL %q: host %q is not in the allowed list", rawURL, parsed.Hostname())
	}
	return nil
}

func resolveURL(base, ref string) (string, error) {
	b, err := url.Parse(base)
	if err != nil {
		return "", err
	}
	r, err := url.Parse(strings.TrimSpace(ref))
	if err != nil {
		return "", fmt.Errorf("invalid URL %q: %w", ref, err)
	}
	return b.ResolveReference(r).String(), nil
}

// cleanTitle removes highlight markup and entities from a search result title.
func cleanTitle(s string) string {
	return strings.TrimSpace(html.UnescapeString(reTag.ReplaceAllString(s, "")))
}

// titleYear returns the first four-digit year named in title, or 0.
func titleYear(title string) int {
	m := reTitleYear.FindStringSubmatch(title)
	if m == nil {
		return 0
	}
	y, _ := strconv.Atoi(m[1])
	return y
}

// decodeBody converts a GBK-family page to UTF-8. The charset comes from the
// Content-Type header, else from a <meta> tag.
func decodeBody(body []byte, contentType string) io.Reader {
	charset := ""
	if _, params, err := mime.ParseMediaType(contentType); err == nil {
		charset = params["charset"]
	}
	if charset == "" {
		head := body[:min(len(body), 1024)]
		if m := reMetaCharset.FindSubmatch(head); m != nil {
			charset = string(m[1])
		}
	}
	switch strings.ToLower(charset) {
	case "gbk", "gb2312", "gb18030":
		return transform.NewReader(bytes.NewReader(body), simplifiedchinese.GB18030.NewDecoder())
	}
	return bytes.NewReader(body)
}

// extractParagraphs returns the trimmed text of every non-empty <p> element.
func extractParagraphs(r io.Reader) ([]string, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, err
	}
	var out []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.DataAtom == atom.P {
			if text := strings.TrimSpace(nodeText(n)); text != "" {
				out = append(out, text)
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return out, nil
}

func nodeText(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}
