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

package dashboard

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tassfersilva2026/buscasmilhas-scraper/pkg/fare"
	"github.com/tassfersilva2026/buscasmilhas-scraper/pkg/normalize"
	"github.com/tassfersilva2026/buscasmilhas-scraper/pkg/sink"
)

func writeTestWorkbook(t *testing.T, dir string) {
	t.Helper()
	s := sink.NewExcel(filepath.Join(dir, "MAXMILHAS_20260831_143000.xlsx"), "BUSCAS")

	dep := time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)
	total := 380.26
	fareV := 345.90
	require.NoError(t, s.Append(fare.FareRecord{
		Site:          "maxmilhas",
		SearchDate:    time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC),
		SearchTime:    normalize.Clock{Hour: 14, Minute: 30, Second: 45},
		Route:         "CGH-SDU",
		AdvanceDays:   7,
		DepartureDate: &dep,
		DepartureTime: &normalize.Clock{Hour: 8, Minute: 35},
		Fare:          &fareV,
		Total:         &total,
		Airline:       "GOL",
	}))
	require.NoError(t, s.Append(fare.FareRecord{
		Site:        "maxmilhas",
		SearchDate:  time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC),
		SearchTime:  normalize.Clock{Hour: 14, Minute: 31, Second: 0},
		Route:       "SDU-CGH",
		AdvanceDays: 1,
		Airline:     fare.NoOffersSentinel,
	}))
}

func writeTestCapoCSV(t *testing.T, dir string) {
	t.Helper()
	csv := "captura_data;captura_hora;trecho;antecedencia;data_voo;hr_ida;cia;por_adulto;taxa_embarque;valor_total\n" +
		"2026/08/31;15:00:00;CGH-SDU;7;2026/09/07;08:15;AZUL;345,90;34,36;380,26\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "CAPOVIAGENS_20260831_150000.csv"), []byte(csv), 0o644))
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()
	writeTestWorkbook(t, dir)
	writeTestCapoCSV(t, dir)

	recs, err := LoadDir(dir)
	require.NoError(t, err)
	require.Len(t, recs, 3)

	// Newest search first: the CSV capture ran at 15:00.
	capo := recs[0]
	assert.Equal(t, CompanyCapoViagens, capo.Company)
	assert.Equal(t, "CGH-SDU", capo.Route)
	assert.Equal(t, 7, capo.AdvanceDays)
	assert.Equal(t, 15, capo.HourBucket)
	require.NotNil(t, capo.Total)
	assert.InDelta(t, 380.26, *capo.Total, 0.001)

	priced := recs[2]
	assert.Equal(t, CompanyMaxMilhas, priced.Company)
	assert.Equal(t, 14, priced.HourBucket)
	assert.Equal(t, 7, priced.AdvanceDays, "window derived from flight minus search date")
	require.NotNil(t, priced.Total)
	assert.InDelta(t, 380.26, *priced.Total, 0.001)

	sentinel := recs[1]
	assert.False(t, sentinel.HasTotal())
	assert.Equal(t, fare.NoOffersSentinel, sentinel.Airline)
	assert.Equal(t, -1, sentinel.AdvanceDays)
}

func TestLoadDirSkipsUnreadableFiles(t *testing.T) {
	dir := t.TempDir()
	writeTestCapoCSV(t, dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "BROKEN_20260831.xlsx"), []byte("garbage"), 0o644))

	recs, err := LoadDir(dir)
	require.NoError(t, err)
	assert.Len(t, recs, 1, "the broken workbook is skipped, not fatal")
}

func TestDetectCompany(t *testing.T) {
	testCases := []struct {
		file     string
		expected string
	}{
		{"MAXMILHAS_20260831_150000.xlsx", CompanyMaxMilhas},
		{"FLIPMILHAS_20260831_150000.xlsx", CompanyFlipMilhas},
		{"CAPOVIAGENS_20260831.csv", CompanyCapoViagens},
		{"123MILHAS_20260831.xlsx", Company123Milhas},
		{"notes.xlsx", CompanyUnknown},
	}
	for _, tc := range testCases {
		if got := DetectCompany(tc.file); got != tc.expected {
			t.Errorf("DetectCompany(%q) = %q, want %q", tc.file, got, tc.expected)
		}
	}
}

func recordsFixture() []Record {
	mk := func(route string, hour, advp int, total float64, airline string) Record {
		return Record{
			Route:       route,
			HourBucket:  hour,
			AdvanceDays: advp,
			Total:       &total,
			Airline:     airline,
			Company:     CompanyMaxMilhas,
		}
	}
	noOffer := Record{Route: "CGH-SDU", HourBucket: 9, AdvanceDays: 1, Airline: fare.NoOffersSentinel}

	return []Record{
		mk("CGH-SDU", 9, 1, 400, "GOL Linhas Aéreas"),
		mk("CGH-SDU", 9, 7, 300, "AZUL"),
		mk("CGH-SDU", 10, 14, 250, "LATAM AIRLINES"),
		mk("CGH-SDU", 10, 30, 350, "GOL"),
		mk("SDU-CGH", 9, 7, 500, "AZUL"),
		noOffer,
	}
}

func TestSummarize(t *testing.T) {
	recs := recordsFixture()

	min := Summarize(recs, AggMin)
	assert.Equal(t, 6, min.Searches, "sentinel rows still count as searches")
	assert.True(t, min.HasPrice)
	assert.Equal(t, 250.0, min.Price)

	mean := Summarize(recs, AggMean)
	assert.InDelta(t, 360.0, mean.Price, 0.001)

	empty := Summarize(nil, AggMin)
	assert.False(t, empty.HasPrice)
}

func TestPriceByHour(t *testing.T) {
	byHour := PriceByHour(recordsFixture(), AggMin)
	require.Len(t, byHour, 2)
	assert.Equal(t, HourPrice{Hour: 9, Price: 300}, byHour[0])
	assert.Equal(t, HourPrice{Hour: 10, Price: 250}, byHour[1])
}

func TestPriceByAdvance(t *testing.T) {
	byAdvp := PriceByAdvance(recordsFixture(), AggMin)
	require.Len(t, byAdvp, 4)
	assert.Equal(t, AdvancePrice{AdvanceDays: 1, Price: 400}, byAdvp[0])
	assert.Equal(t, AdvancePrice{AdvanceDays: 7, Price: 300}, byAdvp[1])
	assert.Equal(t, AdvancePrice{AdvanceDays: 30, Price: 350}, byAdvp[3])
}

func TestPriceByRoute(t *testing.T) {
	byRoute := PriceByRoute(recordsFixture(), AggMin, 20)
	require.Len(t, byRoute, 2)
	assert.Equal(t, RoutePrice{Route: "SDU-CGH", Price: 500}, byRoute[0], "most expensive first")

	limited := PriceByRoute(recordsFixture(), AggMin, 1)
	assert.Len(t, limited, 1)
}

func TestTopThreeByRoute(t *testing.T) {
	tops := TopThreeByRoute(recordsFixture(), AggMin)
	require.Len(t, tops, 2)

	cgh := tops[0]
	assert.Equal(t, "CGH-SDU", cgh.Route)
	require.Len(t, cgh.Offers, 3, "four windows collapse to the three cheapest")
	assert.Equal(t, TopOffer{Price: 250, AdvanceDays: 14}, cgh.Offers[0])
	assert.Equal(t, TopOffer{Price: 300, AdvanceDays: 7}, cgh.Offers[1])
	assert.Equal(t, TopOffer{Price: 350, AdvanceDays: 30}, cgh.Offers[2])

	sdu := tops[1]
	assert.Len(t, sdu.Offers, 1)
}

func TestAirlineShare(t *testing.T) {
	shares := AirlineShare(recordsFixture())
	require.Len(t, shares, 2)

	cgh := shares[0]
	assert.Equal(t, "CGH-SDU", cgh.Route)
	assert.InDelta(t, 0.5, cgh.Share[CarrierGol], 0.001)
	assert.InDelta(t, 0.25, cgh.Share[CarrierAzul], 0.001)
	assert.InDelta(t, 0.25, cgh.Share[CarrierLatam], 0.001)

	sdu := shares[1]
	assert.InDelta(t, 1.0, sdu.Share[CarrierAzul], 0.001)
}
