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

// Package fare defines the search and record types and builds one
// normalized FareRecord out of the raw text an extraction produced.
package fare

import (
	"time"

	"github.com/tassfersilva2026/buscasmilhas-scraper/pkg/engine"
	"github.com/tassfersilva2026/buscasmilhas-scraper/pkg/normalize"
	"github.com/tassfersilva2026/buscasmilhas-scraper/pkg/sites"
)

// Location returns the fixed reporting timezone. Every date and clock in
// the workbooks is America/Sao_Paulo regardless of where the scraper runs.
func Location() *time.Location {
	loc, err := time.LoadLocation("America/Sao_Paulo")
	if err != nil {
		return time.FixedZone("-03", -3*60*60)
	}
	return loc
}

// NoOffersSentinel marks a record carrying no usable fare data. The
// invariant is all-or-nothing: a sentinel record never carries partial
// monetary or time values.
const NoOffersSentinel = "Sem Ofertas"

// SearchRequest is one (route, advance-window) combination. Immutable,
// produced by Matrix and discarded after the iteration.
type SearchRequest struct {
	Origin      string
	Destination string
	AdvanceDays int
}

// Route renders the request's route as "CGH-SDU".
func (r SearchRequest) Route() string {
	return r.Origin + "-" + r.Destination
}

// Matrix expands routes × advance-day windows into the sequential list of
// requests for one cycle. Routes are "XXX-YYY" strings; malformed entries
// are skipped.
func Matrix(routes []string, advanceDays []int) []SearchRequest {
	var out []SearchRequest
	for _, route := range routes {
		origin, destination, ok := SplitRoute(route)
		if !ok {
			continue
		}
		for _, advp := range advanceDays {
			out = append(out, SearchRequest{
				Origin:      origin,
				Destination: destination,
				AdvanceDays: advp,
			})
		}
	}
	return out
}

// SplitRoute splits "CGH-SDU" into its airport codes.
func SplitRoute(route string) (origin, destination string, ok bool) {
	if len(route) != 7 || route[3] != '-' {
		return "", "", false
	}
	return route[:3], route[4:], true
}

// FareRecord is one persisted observation. Monetary values carry two
// decimals; time values are wall clock in America/Sao_Paulo. Nil pointers
// mean the site did not yield the field.
type FareRecord struct {
	RunID         string
	Site          string
	SearchDate    time.Time
	SearchTime    normalize.Clock
	Route         string
	AdvanceDays   int
	DepartureDate *time.Time
	DepartureTime *normalize.Clock
	ArrivalTime   *normalize.Clock
	Fare          *float64
	Discount      *float64
	BoardingTax   *float64
	ServiceTax    *float64
	Total         *float64
	Airline       string
	FareClass     string
}

// IsSentinel reports whether the record represents "no usable fare data".
func (r *FareRecord) IsSentinel() bool {
	return r.Airline == NoOffersSentinel
}

// Build assembles the FareRecord for one request out of an extraction
// result. On anything but success it emits the sentinel record: airline
// forced to NoOffersSentinel and every monetary/time field nil, so a
// failed search can never masquerade as a priced one.
func Build(req SearchRequest, res engine.Result, site *sites.SiteRules, now time.Time) FareRecord {
	rec := FareRecord{
		Site:        site.Site,
		SearchDate:  time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()),
		SearchTime:  normalize.Clock{Hour: now.Hour(), Minute: now.Minute(), Second: now.Second()},
		Route:       req.Route(),
		AdvanceDays: req.AdvanceDays,
	}

	if res.Status != engine.StatusSuccess {
		rec.Airline = NoOffersSentinel
		return rec
	}

	// None of the sites expose a distinct departure date field; the flight
	// date is always the searched one.
	dep := now.AddDate(0, 0, req.AdvanceDays)
	dep = time.Date(dep.Year(), dep.Month(), dep.Day(), 0, 0, 0, 0, now.Location())
	rec.DepartureDate = &dep

	if t, ok := normalize.TimeOfDay(res.Fields[sites.FieldDepartureTime]); ok {
		rec.DepartureTime = &t
	}
	if t, ok := normalize.TimeOfDay(res.Fields[sites.FieldArrivalTime]); ok {
		rec.ArrivalTime = &t
	}

	rec.Fare = money(res.Fields[sites.FieldFare])
	rec.Discount = money(res.Fields[sites.FieldDiscount])
	rec.BoardingTax = money(res.Fields[sites.FieldBoardingTax])
	rec.ServiceTax = money(res.Fields[sites.FieldServiceTax])
	rec.Total = money(res.Fields[sites.FieldTotal])

	if rec.Total == nil && !site.Quirks.HasTotal && (rec.Fare != nil || rec.BoardingTax != nil) {
		total := normalize.Round2(deref(rec.Fare) + deref(rec.BoardingTax))
		rec.Total = &total
	}

	rec.Airline = normalize.Airline(res.Fields[sites.FieldAirline])
	if letter, ok := normalize.FareClassLetter(res.Fields[sites.FieldFareClass]); ok {
		rec.FareClass = string(letter)
	}

	// A "success" that produced neither a price nor a carrier is no offer
	// at all; collapse it to the sentinel so the invariant holds.
	if rec.Airline == "" && rec.Fare == nil && rec.Total == nil {
		return Build(req, engine.Result{Status: engine.StatusNoOffers}, site, now)
	}

	return rec
}

func money(raw string) *float64 {
	v, ok := normalize.Money(raw)
	if !ok {
		return nil
	}
	return &v
}

func deref(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}
