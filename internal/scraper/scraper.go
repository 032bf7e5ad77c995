// Package scraper extracts competitor prices from product pages. It is the
// only component touching an uncontrolled remote resource, so requests are
// rate-limited by a fixed delay, bounded by a per-request timeout, and
// retried with exponential backoff on transport failure.
package scraper

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/cenkalti/backoff/v4"
	"golang.org/x/time/rate"
)

// Options configures a Scraper. Zero values fall back to defaults.
type Options struct {
	Timeout         time.Duration // per-request timeout
	RequestDelay    time.Duration // fixed delay between requests
	RetryInterval   time.Duration // initial backoff interval
	MaxRetryElapsed time.Duration // total backoff budget per URL
	UserAgent       string
}

// Scraper fetches competitor pages and extracts a numeric price.
type Scraper struct {
	client        *http.Client
	limiter       *rate.Limiter
	retryInterval time.Duration
	maxRetry      time.Duration
	userAgent     string
}

// New creates a Scraper.
func New(opts Options) *Scraper {
	if opts.Timeout == 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.RequestDelay == 0 {
		opts.RequestDelay = 2 * time.Second
	}
	if opts.RetryInterval == 0 {
		opts.RetryInterval = 500 * time.Millisecond
	}
	if opts.MaxRetryElapsed == 0 {
		opts.MaxRetryElapsed = 30 * time.Second
	}
	if opts.UserAgent == "" {
		opts.UserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"
	}
	return &Scraper{
		client:        &http.Client{Timeout: opts.Timeout},
		limiter:       rate.NewLimiter(rate.Every(opts.RequestDelay), 1),
		retryInterval: opts.RetryInterval,
		maxRetry:      opts.MaxRetryElapsed,
		userAgent:     opts.UserAgent,
	}
}

// priceSelectors are tried in order against the fetched document.
var priceSelectors = []string{
	"span.price",
	"div.price",
	"p.price",
	"span[itemprop='price']",
	"meta[itemprop='price']",
	"span[class*='price']",
	"div[class*='price']",
	"p[class*='price']",
	"span[class*='amount']",
	"div[class*='amount']",
}

// pricePattern is the last-resort match: any number with two decimals.
var pricePattern = regexp.MustCompile(`\d+[.,]\d{2}`)

// nonNumeric strips currency symbols and everything else around the digits.
var nonNumeric = regexp.MustCompile(`[^\d.,]`)

// FetchPrice fetches the URL and extracts a price. Returns (price, true, nil)
// when one is found, (0, false, nil) for a well-formed page without a
// recognizable price, and an error only for transport failure after retries.
func (s *Scraper) FetchPrice(ctx context.Context, url string) (float64, bool, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return 0, false, err
	}

	var body string
	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("User-Agent", s.userAgent)

		resp, err := s.client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("fetch %s: status %d", url, resp.StatusCode)
		}

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return err
		}
		body = string(data)
		return nil
	}

	strategy := backoff.NewExponentialBackOff()
	strategy.InitialInterval = s.retryInterval
	strategy.MaxElapsedTime = s.maxRetry
	if err := backoff.Retry(operation, backoff.WithContext(strategy, ctx)); err != nil {
		return 0, false, fmt.Errorf("fetch %s: %w", url, err)
	}

	price, found := ExtractPrice(body)
	return price, found, nil
}

// ExtractPrice pulls a price out of an HTML document: CSS selectors first,
// then the two-decimal regex over the raw markup.
func ExtractPrice(html string) (float64, bool) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err == nil {
		for _, selector := range priceSelectors {
			sel := doc.Find(selector).First()
			if sel.Length() == 0 {
				continue
			}
			text := sel.Text()
			if text == "" {
				// meta tags carry the price in content=
				text, _ = sel.Attr("content")
			}
			if price, ok := parsePriceText(text); ok {
				return price, true
			}
		}
	}

	if m := pricePattern.FindString(html); m != "" {
		if price, ok := parsePriceText(m); ok {
			return price, true
		}
	}
	return 0, false
}

// parsePriceText normalizes a scraped price string: strip everything but
// digits and separators, treat comma as a decimal point.
func parsePriceText(text string) (float64, bool) {
	cleaned := nonNumeric.ReplaceAllString(strings.TrimSpace(text), "")
	cleaned = strings.ReplaceAll(cleaned, ",", ".")
	if cleaned == "" {
		return 0, false
	}
	price, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, false
	}
	return price, true
}
