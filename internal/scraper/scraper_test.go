package scraper

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testScraper() *Scraper {
	return New(Options{
		Timeout:         2 * time.Second,
		RequestDelay:    time.Millisecond,
		RetryInterval:   5 * time.Millisecond,
		MaxRetryElapsed: 200 * time.Millisecond,
	})
}

func TestFetchPriceFromSelector(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body><span class="price">$49.99</span></body></html>`))
	}))
	defer srv.Close()

	price, found, err := testScraper().FetchPrice(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.True(t, found)
	assert.InDelta(t, 49.99, price, 1e-9)
}

func TestFetchPriceRegexFallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body><p>Special offer: only 19,95 today</p></body></html>`))
	}))
	defer srv.Close()

	price, found, err := testScraper().FetchPrice(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.True(t, found)
	assert.InDelta(t, 19.95, price, 1e-9)
}

func TestFetchPriceNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body><h1>Out of stock</h1></body></html>`))
	}))
	defer srv.Close()

	price, found, err := testScraper().FetchPrice(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.False(t, found)
	assert.Zero(t, price)
}

func TestFetchPriceRetriesServerErrors(t *testing.T) {
	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(`<div class="price">12.50</div>`))
	}))
	defer srv.Close()

	price, found, err := testScraper().FetchPrice(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.True(t, found)
	assert.InDelta(t, 12.50, price, 1e-9)
	assert.GreaterOrEqual(t, calls.Load(), int64(3))
}

func TestFetchPriceExhaustsRetries(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, _, err := testScraper().FetchPrice(context.Background(), srv.URL)
	assert.Error(t, err)
}

func TestExtractPrice(t *testing.T) {
	tests := []struct {
		name  string
		html  string
		price float64
		found bool
	}{
		{"itemprop meta", `<meta itemprop="price" content="99.00">`, 99.00, true},
		{"amount class", `<div class="woocommerce-amount">€7,25</div>`, 7.25, true},
		{"selector wins over regex", `<span class="price">10.00</span><p>was 20.00</p>`, 10.00, true},
		{"plain integer ignored", `<p>Rated 5 stars by 1000 buyers</p>`, 0, false},
		{"empty", ``, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			price, found := ExtractPrice(tt.html)
			assert.Equal(t, tt.found, found)
			if tt.found {
				assert.InDelta(t, tt.price, price, 1e-9)
			}
		})
	}
}

func TestParsePriceText(t *testing.T) {
	tests := []struct {
		in    string
		price float64
		ok    bool
	}{
		{"$49.99", 49.99, true},
		{" 19,95 € ", 19.95, true},
		{"USD 100.00", 100.00, true},
		{"free", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		price, ok := parsePriceText(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		if tt.ok {
			assert.InDelta(t, tt.price, price, 1e-9, tt.in)
		}
	}
}
