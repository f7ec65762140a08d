// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Observe(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ObserveFile("cpp", false)
	m.ObserveFile("cpp", true)
	m.ObserveFile("rust", false)
	m.ObserveSkipped()
	m.ObserveMap(12, 300, 40*time.Millisecond)
	m.ObserveOutcome("invalid")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.FilesExtracted.WithLabelValues("cpp")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.FilesExtracted.WithLabelValues("rust")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.FilesSkipped))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheHits))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.CacheMisses))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.MapsGenerated.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.MapsGenerated.WithLabelValues("invalid")))
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveFile("go", true)
		m.ObserveSkipped()
		m.ObserveMap(1, 1, time.Millisecond)
		m.ObserveOutcome("cancelled")
	})
}

func TestHandler_ServesRegisteredMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)
	m.ObserveFile("go", false)

	rec := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `repomap_files_extracted_total{language="go"} 1`)
}
