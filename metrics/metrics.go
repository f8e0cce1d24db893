package metrics

import (
	"fmt"
	"net"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	APIRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "optionometer_api_requests_total", Help: "Option chain API requests by HTTP status"},
		[]string{"status"},
	)
	ChainsFetchedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "optionometer_chains_fetched_total", Help: "Option chains imported"},
		[]string{"ticker"},
	)
	CacheLookupsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "optionometer_cache_lookups_total", Help: "Option chain cache lookups"},
		[]string{"result"},
	)
	TradesScoredTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "optionometer_trades_scored_total", Help: "Candidate trades passed to a scorer"},
		[]string{"mode"},
	)
	RateLimitRemaining = prometheus.NewGauge(
		prometheus.GaugeOpts{Name: "optionometer_ratelimit_remaining", Help: "Daily API requests remaining"},
	)
	ScreenDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "optionometer_screen_duration_seconds",
			Help:    "Wall time of a full screen",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
		},
		[]string{"mode"},
	)
)

func init() {
	prometheus.MustRegister(
		APIRequestsTotal,
		ChainsFetchedTotal,
		CacheLookupsTotal,
		TradesScoredTotal,
		RateLimitRemaining,
		ScreenDuration,
	)
}

// Serve exposes /metrics on addr in the background. The listener is bound
// before Serve returns, so a busy port is reported to the caller.
func Serve(addr string) (*http.Server, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen %s: %w", addr, err)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: ln.Addr().String(), Handler: mux}
	go func() { _ = srv.Serve(ln) }()
	return srv, nil
}
