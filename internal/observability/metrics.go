// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Analysis pipeline metrics
	ObservationsProcessed prometheus.Counter
	FeatureRowsStored     prometheus.Counter
	RiskScoresStored      prometheus.Counter
	MarketRowsStored      prometheus.Counter
	PipelineRunsTotal     *prometheus.CounterVec
	PipelineDuration      prometheus.Histogram

	// Model metrics
	TrainingRuns       *prometheus.CounterVec
	PredictionsServed  prometheus.Counter
	PredictionDuration prometheus.Histogram

	// Scraper metrics
	PagesFetched    *prometheus.CounterVec
	PricesExtracted prometheus.Counter
	ScrapeErrors    prometheus.Counter
	ScrapeDuration  prometheus.Histogram

	// Database metrics
	DBQueryDuration *prometheus.HistogramVec
	DBQueryErrors   *prometheus.CounterVec

	// Health metrics
	LastSuccessfulAnalysis prometheus.Gauge
	LastSuccessfulCollect  prometheus.Gauge
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "price_optimizer"
	}

	return &Metrics{
		ObservationsProcessed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "observations_processed_total",
			Help:      "Total number of observations read by the analysis pipeline",
		}),
		FeatureRowsStored: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "feature_rows_stored_total",
			Help:      "Total number of derived feature vectors stored",
		}),
		RiskScoresStored: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "risk_scores_stored_total",
			Help:      "Total number of risk score rows stored",
		}),
		MarketRowsStored: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "market_rows_stored_total",
			Help:      "Total number of market analysis rows stored",
		}),
		PipelineRunsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "runs_total",
			Help:      "Total number of pipeline runs by status",
		}, []string{"status"}),
		PipelineDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "run_duration_seconds",
			Help:      "Analysis pipeline run duration in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12),
		}),

		TrainingRuns: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "model",
			Name:      "training_runs_total",
			Help:      "Total number of model training runs by status",
		}, []string{"status"}),
		PredictionsServed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "model",
			Name:      "predictions_served_total",
			Help:      "Total number of price predictions served",
		}),
		PredictionDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "model",
			Name:      "prediction_duration_seconds",
			Help:      "Prediction latency in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 2, 12),
		}),

		PagesFetched: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scraper",
			Name:      "pages_fetched_total",
			Help:      "Total number of competitor pages fetched by outcome",
		}, []string{"outcome"}),
		PricesExtracted: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scraper",
			Name:      "prices_extracted_total",
			Help:      "Total number of prices successfully extracted",
		}),
		ScrapeErrors: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scraper",
			Name:      "errors_total",
			Help:      "Total number of scrape failures after retries",
		}),
		ScrapeDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "scraper",
			Name:      "fetch_duration_seconds",
			Help:      "Competitor page fetch duration in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 10),
		}),

		DBQueryDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_duration_seconds",
			Help:      "Database query duration in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12),
		}, []string{"database", "operation"}),
		DBQueryErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_errors_total",
			Help:      "Total number of database query errors",
		}, []string{"database", "operation"}),

		LastSuccessfulAnalysis: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "last_successful_analysis_timestamp",
			Help:      "Unix timestamp of last successful analysis run",
		}),
		LastSuccessfulCollect: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "last_successful_collect_timestamp",
			Help:      "Unix timestamp of last successful competitor price collection",
		}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
