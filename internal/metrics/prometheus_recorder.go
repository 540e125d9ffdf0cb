package metrics

import (
	"net/http"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	registry      *prom.Registry
	stageDuration *prom.HistogramVec
	buildDuration prom.Histogram
	buildOutcome  *prom.CounterVec
	cards         prom.Gauge
}

// NewPrometheusRecorder constructs and registers Prometheus metrics.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{registry: reg}
	pr.stageDuration = prom.NewHistogramVec(prom.HistogramOpts{
		Namespace: "gurupack",
		Name:      "stage_duration_seconds",
		Help:      "Duration of individual build stages",
		Buckets:   prom.DefBuckets,
	}, []string{"stage"})
	pr.buildDuration = prom.NewHistogram(prom.HistogramOpts{
		Namespace: "gurupack",
		Name:      "build_duration_seconds",
		Help:      "Total packaging build duration",
		Buckets:   prom.DefBuckets,
	})
	pr.buildOutcome = prom.NewCounterVec(prom.CounterOpts{
		Namespace: "gurupack",
		Name:      "build_outcomes_total",
		Help:      "Build outcomes by final status",
	}, []string{"outcome"})
	pr.cards = prom.NewGauge(prom.GaugeOpts{
		Namespace: "gurupack",
		Name:      "archive_cards",
		Help:      "Cards packaged into the most recent archive",
	})
	reg.MustRegister(pr.stageDuration, pr.buildDuration, pr.buildOutcome, pr.cards)
	return pr
}

func (pr *PrometheusRecorder) ObserveStageDuration(stage string, d time.Duration) {
	pr.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

func (pr *PrometheusRecorder) ObserveBuildDuration(d time.Duration) {
	pr.buildDuration.Observe(d.Seconds())
}

func (pr *PrometheusRecorder) IncBuildOutcome(outcome string) {
	pr.buildOutcome.WithLabelValues(outcome).Inc()
}

func (pr *PrometheusRecorder) SetCards(n int) { pr.cards.Set(float64(n)) }

// Handler returns an HTTP handler exposing the recorder's registry.
func (pr *PrometheusRecorder) Handler() http.Handler {
	return promhttp.HandlerFor(pr.registry, promhttp.HandlerOpts{})
}
