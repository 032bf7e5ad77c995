package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"dynamic-price-optimizer/internal/domain"
	"dynamic-price-optimizer/internal/observability"
	"dynamic-price-optimizer/internal/storage"
)

// PriceFetcher fetches a competitor page and extracts a price.
// Implemented by scraper.Scraper.
type PriceFetcher interface {
	FetchPrice(ctx context.Context, url string) (price float64, found bool, err error)
}

// Collector walks all active competitor URLs and refreshes stored prices.
// A failing URL is logged and skipped; one broken competitor page must not
// block the rest of the collection run.
type Collector struct {
	urls    storage.CompetitorURLStore
	prices  storage.CompetitorPriceStore
	fetcher PriceFetcher

	now     func() time.Time
	metrics *observability.Metrics
	log     zerolog.Logger
}

// CollectorOptions for creating a Collector.
type CollectorOptions struct {
	URLStore   storage.CompetitorURLStore
	PriceStore storage.CompetitorPriceStore
	Fetcher    PriceFetcher

	// Metrics is optional; nil disables instrumentation.
	Metrics *observability.Metrics
	Logger  zerolog.Logger
}

// NewCollector creates a new Collector.
func NewCollector(opts CollectorOptions) *Collector {
	return &Collector{
		urls:    opts.URLStore,
		prices:  opts.PriceStore,
		fetcher: opts.Fetcher,
		now:     time.Now,
		metrics: opts.Metrics,
		log:     opts.Logger,
	}
}

// CollectResult contains counts from a collection run.
type CollectResult struct {
	URLsVisited   int
	PricesStored  int
	PricesMissing int
	FetchFailures int
}

// Run visits every active competitor URL and upserts the extracted price.
func (c *Collector) Run(ctx context.Context) (*CollectResult, error) {
	urls, err := c.urls.GetActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("load competitor urls: %w", err)
	}

	result := &CollectResult{}
	for _, u := range urls {
		if ctx.Err() != nil {
			return result, ctx.Err()
		}
		result.URLsVisited++

		started := time.Now()
		price, found, err := c.fetcher.FetchPrice(ctx, u.CompetitorURL)
		if c.metrics != nil {
			c.metrics.ScrapeDuration.Observe(time.Since(started).Seconds())
		}

		switch {
		case err != nil:
			result.FetchFailures++
			if c.metrics != nil {
				c.metrics.PagesFetched.WithLabelValues("error").Inc()
				c.metrics.ScrapeErrors.Inc()
			}
			c.log.Warn().Err(err).
				Str("product_id", u.ProductID).
				Str("url", u.CompetitorURL).
				Msg("fetch failed, skipping url")
			continue

		case !found:
			result.PricesMissing++
			if c.metrics != nil {
				c.metrics.PagesFetched.WithLabelValues("no_price").Inc()
			}
			c.log.Warn().
				Str("product_id", u.ProductID).
				Str("url", u.CompetitorURL).
				Msg("no recognizable price on page")
			continue
		}

		sample := &domain.CompetitorPrice{
			ProductID:     u.ProductID,
			CompetitorURL: u.CompetitorURL,
			Price:         price,
			ObservedAt:    c.now().UTC(),
		}
		if err := c.prices.Upsert(ctx, sample); err != nil {
			return result, fmt.Errorf("store competitor price: %w", err)
		}

		result.PricesStored++
		if c.metrics != nil {
			c.metrics.PagesFetched.WithLabelValues("ok").Inc()
			c.metrics.PricesExtracted.Inc()
		}
	}

	if c.metrics != nil && result.FetchFailures == 0 {
		c.metrics.LastSuccessfulCollect.SetToCurrentTime()
	}

	c.log.Info().
		Int("visited", result.URLsVisited).
		Int("stored", result.PricesStored).
		Int("missing", result.PricesMissing).
		Int("failed", result.FetchFailures).
		Msg("collection run complete")

	return result, nil
}
