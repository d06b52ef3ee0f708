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

package fare

import (
	"testing"
	"time"

	"github.com/tassfersilva2026/buscasmilhas-scraper/pkg/engine"
	"github.com/tassfersilva2026/buscasmilhas-scraper/pkg/sites"
)

func testSite(hasTotal bool) *sites.SiteRules {
	return &sites.SiteRules{
		Site: "testsite",
		URL:  "https://example.com/{origin}/{destination}/{date}",
		Signals: []sites.Selector{
			{Type: sites.SelectorCSS, Value: ".results"},
		},
		Quirks: sites.Quirks{HasTotal: hasTotal},
	}
}

func testNow() time.Time {
	return time.Date(2026, 8, 31, 14, 30, 45, 0, Location())
}

func TestMatrix(t *testing.T) {
	routes := []string{"CGH-SDU", "bogus", "SDU-CGH"}
	advps := []int{1, 7, 30}

	reqs := Matrix(routes, advps)
	if len(reqs) != 6 {
		t.Errorf("Expected 6 requests (malformed route skipped), got %d", len(reqs))
	}
	if reqs[0].Origin != "CGH" || reqs[0].Destination != "SDU" || reqs[0].AdvanceDays != 1 {
		t.Errorf("Unexpected first request: %+v", reqs[0])
	}
	// Advance days iterate fastest.
	if reqs[2].AdvanceDays != 30 || reqs[3].Route() != "SDU-CGH" {
		t.Errorf("Unexpected iteration order: %+v %+v", reqs[2], reqs[3])
	}
}

func TestSplitRoute(t *testing.T) {
	testCases := []struct {
		route string
		ok    bool
	}{
		{"CGH-SDU", true},
		{"GIG-REC", true},
		{"CGHSDU", false},
		{"CGH_SDU", false},
		{"CGH-SDU-EXTRA", false},
		{"", false},
	}
	for _, tc := range testCases {
		if _, _, ok := SplitRoute(tc.route); ok != tc.ok {
			t.Errorf("SplitRoute(%q) ok = %v, want %v", tc.route, ok, tc.ok)
		}
	}
}

func TestBuildSentinelOnFailure(t *testing.T) {
	req := SearchRequest{Origin: "CGH", Destination: "SDU", AdvanceDays: 7}

	for _, status := range []engine.Status{engine.StatusNoOffers, engine.StatusTimeout, engine.StatusError} {
		rec := Build(req, engine.Result{Status: status}, testSite(true), testNow())

		if !rec.IsSentinel() {
			t.Errorf("Status %v should produce a sentinel record", status)
		}
		if rec.Airline != NoOffersSentinel {
			t.Errorf("Expected %q, got %q", NoOffersSentinel, rec.Airline)
		}
		if rec.Fare != nil || rec.Total != nil || rec.BoardingTax != nil ||
			rec.DepartureDate != nil || rec.DepartureTime != nil || rec.ArrivalTime != nil {
			t.Errorf("Sentinel record must not carry partial values: %+v", rec)
		}
		if rec.Route != "CGH-SDU" || rec.AdvanceDays != 7 {
			t.Errorf("Sentinel record lost search metadata: %+v", rec)
		}
	}
}

func TestBuildSuccess(t *testing.T) {
	req := SearchRequest{Origin: "CGH", Destination: "SDU", AdvanceDays: 7}
	res := engine.Result{
		Status: engine.StatusSuccess,
		Fields: map[string]string{
			sites.FieldDepartureTime: "08:35",
			sites.FieldArrivalTime:   "09:40",
			sites.FieldFare:          "R$ 345,90",
			sites.FieldBoardingTax:   "R$ 34,36",
			sites.FieldTotal:         "R$ 380,26",
			sites.FieldAirline:       "GOL Linhas Aéreas",
			sites.FieldFareClass:     "Tarifa A",
		},
	}

	rec := Build(req, res, testSite(true), testNow())

	if rec.IsSentinel() {
		t.Fatalf("Expected a priced record, got sentinel")
	}
	if rec.Airline != "GOL" {
		t.Errorf("Expected GOL, got %q", rec.Airline)
	}
	if rec.FareClass != "A" {
		t.Errorf("Expected fare class A, got %q", rec.FareClass)
	}
	if rec.Fare == nil || *rec.Fare != 345.90 {
		t.Errorf("Unexpected fare: %v", rec.Fare)
	}
	if rec.Total == nil || *rec.Total != 380.26 {
		t.Errorf("Unexpected total: %v", rec.Total)
	}
	if rec.DepartureTime == nil || rec.DepartureTime.Hour != 8 || rec.DepartureTime.Minute != 35 {
		t.Errorf("Unexpected departure time: %v", rec.DepartureTime)
	}
	if rec.DepartureDate == nil {
		t.Fatalf("Expected a departure date")
	}
	wantDep := time.Date(2026, 9, 7, 0, 0, 0, 0, Location())
	if !rec.DepartureDate.Equal(wantDep) {
		t.Errorf("Departure date = %v, want %v", rec.DepartureDate, wantDep)
	}
	if !rec.SearchDate.Equal(time.Date(2026, 8, 31, 0, 0, 0, 0, Location())) {
		t.Errorf("Unexpected search date: %v", rec.SearchDate)
	}
	if rec.SearchTime.String() != "14:30:45" {
		t.Errorf("Unexpected search time: %v", rec.SearchTime)
	}
}

func TestBuildComputesTotalWithoutTotalField(t *testing.T) {
	req := SearchRequest{Origin: "GIG", Destination: "REC", AdvanceDays: 14}
	res := engine.Result{
		Status: engine.StatusSuccess,
		Fields: map[string]string{
			sites.FieldFare:        "R$ 300,00",
			sites.FieldBoardingTax: "R$ 34,36",
			sites.FieldAirline:     "Azul",
		},
	}

	rec := Build(req, res, testSite(false), testNow())
	if rec.Total == nil || *rec.Total != 334.36 {
		t.Errorf("Expected computed total 334.36, got %v", rec.Total)
	}
}

func TestBuildCollapsesEmptySuccess(t *testing.T) {
	req := SearchRequest{Origin: "CGH", Destination: "SDU", AdvanceDays: 1}
	res := engine.Result{
		Status: engine.StatusSuccess,
		Fields: map[string]string{
			sites.FieldDepartureTime: "10:00",
		},
	}

	rec := Build(req, res, testSite(true), testNow())
	if !rec.IsSentinel() {
		t.Errorf("A success without carrier or price should collapse to the sentinel")
	}
	if rec.DepartureTime != nil {
		t.Errorf("Collapsed record must not keep partial fields: %+v", rec)
	}
}
