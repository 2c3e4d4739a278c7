package prometheus

import (
	"net/http"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"partobjaverse-viewer/internal/core/domain"
	ports "partobjaverse-viewer/internal/core/ports/output"
)

const namespace = "partviewer"

// Recorder exports viewer metrics on its own registry
type Recorder struct {
	registry   *prom.Registry
	colorized  *prom.CounterVec
	duration   prom.Histogram
	downloads  *prom.CounterVec
	samples    prom.Gauge
	categories prom.Gauge
	requests   *prom.CounterVec
}

var _ ports.MetricsRecorder = (*Recorder)(nil)

// NewRecorder creates a Recorder with process and Go runtime collectors
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prom.NewRegistry(),
		colorized: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "colorize_samples_total",
			Help:      "Samples processed by the colorizer, by outcome.",
		}, []string{"status"}),
		duration: prom.NewHistogram(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "colorize_duration_seconds",
			Help:      "Time spent colorizing one sample.",
			Buckets:   prom.ExponentialBuckets(0.01, 2, 12),
		}),
		downloads: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "hub_downloads_total",
			Help:      "Dataset hub file requests, by cache result.",
		}, []string{"file", "cached"}),
		samples: prom.NewGauge(prom.GaugeOpts{
			Namespace: namespace,
			Name:      "dataset_samples",
			Help:      "Samples in the loaded label set.",
		}),
		categories: prom.NewGauge(prom.GaugeOpts{
			Namespace: namespace,
			Name:      "dataset_categories",
			Help:      "Categories in the loaded label set.",
		}),
		requests: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests served, by route and status.",
		}, []string{"route", "status"}),
	}

	r.registry.MustRegister(
		r.colorized, r.duration, r.downloads, r.samples, r.categories, r.requests,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return r
}

func (r *Recorder) ObserveColorize(status domain.ColorizeStatus, d time.Duration) {
	r.colorized.WithLabelValues(string(status)).Inc()
	if status == domain.ColorizeStatusDone {
		r.duration.Observe(d.Seconds())
	}
}

func (r *Recorder) ObserveDownload(filename string, cached bool) {
	c := "false"
	if cached {
		c = "true"
	}
	r.downloads.WithLabelValues(filename, c).Inc()
}

func (r *Recorder) SetDatasetSize(summary domain.DatasetSummary) {
	r.samples.Set(float64(summary.SampleCount))
	r.categories.Set(float64(summary.CategoryCount))
}

// ObserveRequest counts one served request; route is the matched pattern.
func (r *Recorder) ObserveRequest(route, status string) {
	r.requests.WithLabelValues(route, status).Inc()
}

// Handler serves the registry in the Prometheus exposition format
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
