package metrics

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"yuvai/internal/db"
)

// Search call outcomes
const (
	SearchOK          = "ok"
	SearchEmpty       = "empty"
	SearchUnavailable = "unavailable"
	SearchBadResponse = "bad_response"
)

// Email delivery outcomes
const (
	EmailSent     = "sent"
	EmailFailed   = "failed"
	EmailDisabled = "disabled"
	EmailDropped  = "dropped"
)

var (
	verdictsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "yuvai_verdicts_total",
		Help: "Claim analyses completed, by verdict label",
	}, []string{"verdict"})

	searchRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "yuvai_search_requests_total",
		Help: "Outbound search API calls by outcome",
	}, []string{"outcome"})

	searchDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "yuvai_search_duration_seconds",
		Help:    "Latency of outbound search API calls",
		Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10},
	})

	emailDeliveries = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "yuvai_otp_emails_total",
		Help: "OTP email deliveries by outcome",
	}, []string{"outcome"})

	accountsDesc = prometheus.NewDesc(
		"yuvai_accounts",
		"Number of registered accounts",
		nil,
		nil,
	)
)

// AccountCollector is a custom Prometheus collector that reads the account
// count from the store on each scrape.
type AccountCollector struct {
	store db.AccountStore
}

// Describe sends the metric descriptor to the channel.
func (c *AccountCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- accountsDesc
}

// Collect queries the store for the account count.
func (c *AccountCollector) Collect(ch chan<- prometheus.Metric) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	n, err := c.store.CountAccounts(ctx)
	if err != nil {
		slog.Error("failed to collect account metrics", "error", err)
		return
	}
	ch <- prometheus.MustNewConstMetric(accountsDesc, prometheus.GaugeValue, float64(n))
}

var initOnce sync.Once

// Init registers all collectors with the default registry.
// Must be called once at startup; recording before Init is a no-op for scrapes.
func Init(store db.AccountStore) {
	initOnce.Do(func() {
		prometheus.MustRegister(verdictsTotal, searchRequests, searchDuration, emailDeliveries)
		prometheus.MustRegister(&AccountCollector{store: store})
	})
}

// RecordVerdict counts a completed analysis.
func RecordVerdict(label string) {
	verdictsTotal.WithLabelValues(label).Inc()
}

// ObserveSearch records one outbound search call.
func ObserveSearch(outcome string, elapsed time.Duration) {
	searchRequests.WithLabelValues(outcome).Inc()
	searchDuration.Observe(elapsed.Seconds())
}

// RecordEmail counts an OTP delivery attempt.
func RecordEmail(outcome string) {
	emailDeliveries.WithLabelValues(outcome).Inc()
}
