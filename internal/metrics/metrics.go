// Package metrics records run outcomes in a private prometheus registry that
// can be written out in text exposition format at the end of a run.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/ramkansal/leadercrawl/pkg/plugin"
)

// Recorder holds the run's collectors.
type Recorder struct {
	registry    *prometheus.Registry
	countries   *prometheus.CounterVec
	leaders     prometheus.Counter
	renewals    prometheus.Counter
	enrichment  *prometheus.CounterVec
	fetchEnrich prometheus.Histogram
}

// New creates a Recorder with its own registry.
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		countries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "leadercrawl_countries_total",
			Help: "Countries processed, by outcome.",
		}, []string{"outcome"}),
		leaders: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "leadercrawl_leaders_total",
			Help: "Leader records kept in the aggregate.",
		}),
		renewals: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "leadercrawl_token_renewals_total",
			Help: "Session token renewals that reached the token endpoint.",
		}),
		enrichment: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "leadercrawl_enrichment_total",
			Help: "Leader enrichment attempts, by result.",
		}, []string{"result"}),
		fetchEnrich: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "leadercrawl_fetch_enrich_seconds",
			Help:    "Wall-clock duration of the fetch-and-enrich phase.",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 12),
		}),
	}
	r.registry.MustRegister(r.countries, r.leaders, r.renewals, r.enrichment, r.fetchEnrich)
	for _, o := range plugin.Outcomes {
		r.countries.WithLabelValues(string(o))
	}
	return r
}

// ObserveCountry records one per-country pipeline result.
func (r *Recorder) ObserveCountry(res plugin.CountryResult) {
	r.countries.WithLabelValues(string(res.Outcome)).Inc()
	if res.Outcome != plugin.OutcomeOK {
		return
	}
	r.leaders.Add(float64(len(res.Leaders)))
	r.enrichment.WithLabelValues("enriched").Add(float64(res.Enriched.Enriched))
	r.enrichment.WithLabelValues("failed").Add(float64(res.Enriched.Failed))
	r.enrichment.WithLabelValues("skipped").Add(float64(res.Enriched.Skipped))
	r.enrichment.WithLabelValues("cached").Add(float64(res.Enriched.Cached))
}

// ObserveRun records the run-level figures of summary.
func (r *Recorder) ObserveRun(summary *plugin.RunSummary) {
	r.renewals.Add(float64(summary.Renewals))
	r.fetchEnrich.Observe(summary.Duration.Seconds())
}

// Registry exposes the underlying registry, e.g. for tests.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// WriteFile writes all metrics to path in text exposition format.
func (r *Recorder) WriteFile(path string) error {
	return prometheus.WriteToTextfile(path, r.registry)
}
