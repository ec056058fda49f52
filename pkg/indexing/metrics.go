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

package indexing

import "github.com/prometheus/client_golang/prometheus"

// Metrics are the indexing run counters/histograms exposed on an optional
// Prometheus endpoint by the CLI's --metrics-addr flag.
type Metrics struct {
	FilesIndexed   prometheus.Counter
	ParseErrors    prometheus.Counter
	CommitDuration prometheus.Histogram
}

// NewMetrics registers and returns a fresh Metrics set against reg. Pass
// prometheus.NewRegistry() in tests to avoid colliding with the default
// global registry across runs.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		FilesIndexed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bspidx_indexing_files_total",
			Help: "Total number of files committed by the index controller.",
		}),
		ParseErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bspidx_indexing_parse_errors_total",
			Help: "Total number of per-file parse errors encountered.",
		}),
		CommitDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "bspidx_indexing_commit_duration_seconds",
			Help:    "Latency of a single file's record-batch commit.",
			Buckets: prometheus.DefBuckets,
		}),
	}
	reg.MustRegister(m.FilesIndexed, m.ParseErrors, m.CommitDuration)
	return m
}
