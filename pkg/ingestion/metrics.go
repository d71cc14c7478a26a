// Copyright 2025 KrakLabs
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.
//
// For commercial licensing, contact: licensing@kraklabs.com
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package ingestion

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds Prometheus metrics for one pipeline.
//
// Each pipeline registers on its own registry so runs (and tests) never
// collide on the global default registerer. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	registry *prometheus.Registry

	filesDiscovered prometheus.Counter
	filesSkipped    *prometheus.CounterVec
	filesLoaded     *prometheus.CounterVec
	filesFailed     prometheus.Counter
	filesEmpty      prometheus.Counter
	missingColumns  *prometheus.CounterVec
	rowsCombined    prometheus.Gauge
	columnsCombined prometheus.Gauge
	stageDuration   *prometheus.HistogramVec
}

// NewMetrics creates and registers the ingestion metrics on a fresh registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry:        prometheus.NewRegistry(),
		filesDiscovered: prometheus.NewCounter(prometheus.CounterOpts{Name: "lmi_ingest_files_discovered_total", Help: "Source files found by discovery"}),
		filesSkipped:    prometheus.NewCounterVec(prometheus.CounterOpts{Name: "lmi_ingest_files_skipped_total", Help: "Files skipped during discovery, by reason"}, []string{"reason"}),
		filesLoaded:     prometheus.NewCounterVec(prometheus.CounterOpts{Name: "lmi_ingest_files_loaded_total", Help: "Files decoded, by encoding"}, []string{"encoding"}),
		filesFailed:     prometheus.NewCounter(prometheus.CounterOpts{Name: "lmi_ingest_files_failed_total", Help: "Files no candidate encoding could parse"}),
		filesEmpty:      prometheus.NewCounter(prometheus.CounterOpts{Name: "lmi_ingest_files_empty_total", Help: "Decoded files without rows"}),
		missingColumns:  prometheus.NewCounterVec(prometheus.CounterOpts{Name: "lmi_ingest_missing_columns_total", Help: "Required columns filled with null, by column"}, []string{"column"}),
		rowsCombined:    prometheus.NewGauge(prometheus.GaugeOpts{Name: "lmi_ingest_rows_combined", Help: "Rows in the combined dataset of the last run"}),
		columnsCombined: prometheus.NewGauge(prometheus.GaugeOpts{Name: "lmi_ingest_columns_combined", Help: "Columns in the combined dataset of the last run"}),
		stageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "lmi_ingest_stage_seconds",
			Help:    "Duration of pipeline stages",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"stage"}),
	}

	m.registry.MustRegister(
		m.filesDiscovered, m.filesSkipped,
		m.filesLoaded, m.filesFailed, m.filesEmpty,
		m.missingColumns,
		m.rowsCombined, m.columnsCombined,
		m.stageDuration,
	)
	return m
}

// Gatherer exposes the registry, e.g. for prometheus.WriteToTextfile.
func (m *Metrics) Gatherer() prometheus.Gatherer {
	if m == nil {
		return prometheus.NewRegistry()
	}
	return m.registry
}

// WriteTextfile writes the current metrics in the node exporter textfile format.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.Gatherer())
}

func (m *Metrics) discovered(n int) {
	if m != nil {
		m.filesDiscovered.Add(float64(n))
	}
}

func (m *Metrics) skipped(reason string) {
	if m != nil {
		m.filesSkipped.WithLabelValues(reason).Inc()
	}
}

func (m *Metrics) loaded(encoding string) {
	if m != nil {
		m.filesLoaded.WithLabelValues(encoding).Inc()
	}
}

func (m *Metrics) failed() {
	if m != nil {
		m.filesFailed.Inc()
	}
}

func (m *Metrics) empty() {
	if m != nil {
		m.filesEmpty.Inc()
	}
}

func (m *Metrics) missingColumn(column string) {
	if m != nil {
		m.missingColumns.WithLabelValues(column).Inc()
	}
}

func (m *Metrics) combined(rows, cols int) {
	if m != nil {
		m.rowsCombined.Set(float64(rows))
		m.columnsCombined.Set(float64(cols))
	}
}

func (m *Metrics) observe(stage string, d time.Duration) {
	if m != nil {
		m.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
	}
}
