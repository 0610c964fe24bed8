package metrics

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/ramkansal/leadercrawl/pkg/plugin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorder(t *testing.T) {
	r := New()

	r.ObserveCountry(plugin.CountryResult{
		Country:  "be",
		Outcome:  plugin.OutcomeOK,
		Leaders:  make([]plugin.Leader, 3),
		Enriched: plugin.EnrichStats{Enriched: 2, Skipped: 1, Cached: 1},
	})
	r.ObserveCountry(plugin.CountryResult{Country: "fr", Outcome: plugin.OutcomeAuthExhausted, Leaders: make([]plugin.Leader, 5)})
	r.ObserveRun(&plugin.RunSummary{Renewals: 2, Duration: 3 * time.Second})

	assert.Equal(t, 1.0, testutil.ToFloat64(r.countries.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.countries.WithLabelValues("auth_exhausted")))
	assert.Equal(t, 0.0, testutil.ToFloat64(r.countries.WithLabelValues("bad_response")))
	assert.Equal(t, 3.0, testutil.ToFloat64(r.leaders), "failed countries contribute no leaders")
	assert.Equal(t, 2.0, testutil.ToFloat64(r.enrichment.WithLabelValues("enriched")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.enrichment.WithLabelValues("cached")))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.renewals))

	n, err := testutil.GatherAndCount(r.Registry(), "leadercrawl_fetch_enrich_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestRecorder_WriteFile(t *testing.T) {
	r := New()
	r.ObserveRun(&plugin.RunSummary{Renewals: 1, Duration: time.Second})

	path := filepath.Join(t.TempDir(), "leadercrawl.prom")
	require.NoError(t, r.WriteFile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "leadercrawl_token_renewals_total 1")
	assert.Contains(t, string(data), `leadercrawl_countries_total{outcome="transport_failed"} 0`)
}
