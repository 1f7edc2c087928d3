package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Upload outcomes
const (
	OutcomeCreated     = "created"
	OutcomeInvalid     = "invalid"
	OutcomeUnsupported = "unsupported"
	OutcomeFailed      = "failed"
)

// Expiring fetch outcomes
const (
	FetchServed   = "served"
	FetchExpired  = "expired"
	FetchNotFound = "not_found"
)

// Metrics records the image pipeline's counters.
type Metrics interface {
	IncUpload(tier, outcome string)
	IncThumbnail(height int)
	IncExpiringCreated()
	IncExpiringFetch(outcome string)
	AddExpiringReaped(n int)
}

// Noop implements Metrics without emitting anything.
type Noop struct{}

func (Noop) IncUpload(string, string) {}
func (Noop) IncThumbnail(int)         {}
func (Noop) IncExpiringCreated()      {}
func (Noop) IncExpiringFetch(string)  {}
func (Noop) AddExpiringReaped(int)    {}

// Prom implements Metrics backed by Prometheus counters on its own registry.
type Prom struct {
	registry        *prometheus.Registry
	uploads         *prometheus.CounterVec
	thumbnails      *prometheus.CounterVec
	expiringCreated prometheus.Counter
	expiringFetches *prometheus.CounterVec
	expiringReaped  prometheus.Counter
}

func NewProm(namespace string) *Prom {
	p := &Prom{
		registry: prometheus.NewRegistry(),
		uploads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "uploads_total",
			Help:      "Image uploads by tier and outcome",
		}, []string{"tier", "outcome"}),
		thumbnails: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "thumbnails_generated_total",
			Help:      "Thumbnails written by height",
		}, []string{"height"}),
		expiringCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "expiring_links_created_total",
			Help:      "Expiring links created",
		}),
		expiringFetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "expiring_fetches_total",
			Help:      "Expiring link fetches by outcome",
		}, []string{"outcome"}),
		expiringReaped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "expiring_links_reaped_total",
			Help:      "Expired links removed by the reaper",
		}),
	}
	p.registry.MustRegister(
		p.uploads,
		p.thumbnails,
		p.expiringCreated,
		p.expiringFetches,
		p.expiringReaped,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return p
}

func (p *Prom) IncUpload(tier, outcome string) {
	p.uploads.WithLabelValues(tier, outcome).Inc()
}

func (p *Prom) IncThumbnail(height int) {
	p.thumbnails.WithLabelValues(strconv.Itoa(height)).Inc()
}

func (p *Prom) IncExpiringCreated() {
	p.expiringCreated.Inc()
}

func (p *Prom) IncExpiringFetch(outcome string) {
	p.expiringFetches.WithLabelValues(outcome).Inc()
}

func (p *Prom) AddExpiringReaped(n int) {
	p.expiringReaped.Add(float64(n))
}

// Handler serves the registry in the Prometheus text format.
func (p *Prom) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{})
}
