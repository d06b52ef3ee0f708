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

// Package sink persists fare records. The primary sink is an Excel
// workbook laid out exactly like the spreadsheets the analysts already
// consume; a Postgres sink can run alongside it.
package sink

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/tassfersilva2026/buscasmilhas-scraper/pkg/fare"
	"github.com/tassfersilva2026/buscasmilhas-scraper/pkg/normalize"
)

// Sink receives fare records one at a time. Append must leave the
// destination readable even if the process dies right after it returns.
type Sink interface {
	Append(rec fare.FareRecord) error
	Close() error
}

// Headers is the fixed column set of the output spreadsheet. The double
// space in "TX DE  EMISSÃO" is intentional: downstream tooling matches
// the header verbatim.
var Headers = []string{
	"DATA DA BUSCA", "HORA DA BUSCA", "TRECHO",
	"DATA DO VOO", "HR IDA", "HR VOLTA",
	"TARIFA", "DESCONTO", "TX DE EMBARQUE", "VALOR COM TAXA",
	"TX DE  EMISSÃO", "TOTAL", "CIA DO VOO", "TIPO (A/C)",
}

var columnWidths = []float64{14, 12, 12, 14, 12, 12, 14, 14, 16, 16, 16, 14, 22, 12}

// Filename builds the per-run workbook name, e.g. MAXMILHAS_20260831_153000.xlsx.
func Filename(dir, site string, now time.Time) string {
	name := fmt.Sprintf("%s_%s.xlsx", strings.ToUpper(site), now.Format("20060102_150405"))
	return filepath.Join(dir, name)
}

// rowValues flattens a record into the 14 spreadsheet columns. Nil
// pointers become empty cells, so a sentinel row carries only the search
// metadata and the airline column.
func rowValues(rec fare.FareRecord) []interface{} {
	return []interface{}{
		rec.SearchDate,
		clockValue(&rec.SearchTime),
		rec.Route,
		dateValue(rec.DepartureDate),
		clockValue(rec.DepartureTime),
		clockValue(rec.ArrivalTime),
		floatValue(rec.Fare),
		floatValue(rec.Discount),
		floatValue(rec.BoardingTax),
		valueWithTax(rec),
		floatValue(rec.ServiceTax),
		floatValue(rec.Total),
		rec.Airline,
		rec.FareClass,
	}
}

// valueWithTax is fare plus boarding tax, the column analysts compare
// across sites that price those separately.
func valueWithTax(rec fare.FareRecord) interface{} {
	if rec.Fare == nil || rec.BoardingTax == nil {
		return nil
	}
	return normalize.Round2(*rec.Fare + *rec.BoardingTax)
}

func floatValue(p *float64) interface{} {
	if p == nil {
		return nil
	}
	return *p
}

func dateValue(p *time.Time) interface{} {
	if p == nil {
		return nil
	}
	return *p
}

// clockValue converts a wall-clock time to an Excel day fraction so the
// HH:MM:SS number format renders it.
func clockValue(c *normalize.Clock) interface{} {
	if c == nil {
		return nil
	}
	return float64(c.Seconds()) / 86400.0
}
