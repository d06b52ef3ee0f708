// Copyright 2023 Paolo Fabio Zaino
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package metrics exposes Prometheus counters for the scrape loop.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	cmn "github.com/tassfersilva2026/buscasmilhas-scraper/pkg/common"
)

var (
	ScrapesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "buscasmilhas_scrapes_total",
			Help: "Searches performed, by site and outcome",
		},
		[]string{"site", "outcome"},
	)

	RowsAppendedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "buscasmilhas_rows_appended_total",
			Help: "Fare rows written, by sink",
		},
		[]string{"sink"},
	)

	ScrapeDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "buscasmilhas_scrape_duration_seconds",
			Help:    "Wall time of one search, navigation through extraction",
			Buckets: []float64{1, 2.5, 5, 10, 20, 30, 60, 120},
		},
		[]string{"site"},
	)
)

func init() {
	prometheus.MustRegister(
		ScrapesTotal,
		RowsAppendedTotal,
		ScrapeDuration,
	)
}

// Serve starts the /metrics endpoint on addr. It never returns unless
// the listener fails, so callers run it in a goroutine.
func Serve(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	if err := http.ListenAndServe(addr, mux); err != nil {
		cmn.DebugMsg(cmn.DbgLvlError, "Metrics endpoint stopped: %v", err)
	}
}
