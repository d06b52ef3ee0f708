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
	"sort"
	"strings"
)

// FilterCompany keeps only the records of one company.
func FilterCompany(recs []Record, company string) []Record {
	var out []Record
	for _, r := range recs {
		if r.Company == company {
			out = append(out, r)
		}
	}
	return out
}

// Summary is the header block of one company tab.
type Summary struct {
	Searches int
	Price    float64
	HasPrice bool
}

// Summarize counts searches and collapses all priced totals with agg.
func Summarize(recs []Record, agg Aggregation) Summary {
	s := Summary{Searches: len(recs)}
	s.Price, s.HasPrice = reduce(totals(recs), agg)
	return s
}

// HourPrice is the aggregated price of one search-hour bucket. Buckets
// without priced records are omitted.
type HourPrice struct {
	Hour  int
	Price float64
}

// PriceByHour groups priced totals by the hour the search ran.
func PriceByHour(recs []Record, agg Aggregation) []HourPrice {
	groups := map[int][]float64{}
	for _, r := range recs {
		if r.HasTotal() {
			groups[r.HourBucket] = append(groups[r.HourBucket], *r.Total)
		}
	}

	out := make([]HourPrice, 0, len(groups))
	for hour, vals := range groups {
		price, _ := reduce(vals, agg)
		out = append(out, HourPrice{Hour: hour, Price: price})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Hour < out[j].Hour })
	return out
}

// AdvancePrice is the aggregated price of one advance-purchase window.
type AdvancePrice struct {
	AdvanceDays int
	Price       float64
}

// PriceByAdvance groups priced totals by advance-purchase days,
// ascending. Records whose window is unknown are skipped.
func PriceByAdvance(recs []Record, agg Aggregation) []AdvancePrice {
	groups := map[int][]float64{}
	for _, r := range recs {
		if r.HasTotal() && r.AdvanceDays >= 0 {
			groups[r.AdvanceDays] = append(groups[r.AdvanceDays], *r.Total)
		}
	}

	out := make([]AdvancePrice, 0, len(groups))
	for days, vals := range groups {
		price, _ := reduce(vals, agg)
		out = append(out, AdvancePrice{AdvanceDays: days, Price: price})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AdvanceDays < out[j].AdvanceDays })
	return out
}

// RoutePrice is the aggregated price of one route.
type RoutePrice struct {
	Route string
	Price float64
}

// PriceByRoute returns up to limit routes, most expensive first.
func PriceByRoute(recs []Record, agg Aggregation, limit int) []RoutePrice {
	groups := map[string][]float64{}
	for _, r := range recs {
		if r.HasTotal() && r.Route != "" {
			groups[r.Route] = append(groups[r.Route], *r.Total)
		}
	}

	out := make([]RoutePrice, 0, len(groups))
	for route, vals := range groups {
		price, _ := reduce(vals, agg)
		out = append(out, RoutePrice{Route: route, Price: price})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Price != out[j].Price {
			return out[i].Price > out[j].Price
		}
		return out[i].Route < out[j].Route
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// TopOffer pairs a price with the advance window it was seen at.
type TopOffer struct {
	Price       float64
	AdvanceDays int
}

// RouteTop holds the up-to-three cheapest windows of one route.
type RouteTop struct {
	Route  string
	Offers []TopOffer
}

// TopThreeByRoute aggregates per route and advance window, then keeps
// the three cheapest windows of each route, routes alphabetical.
func TopThreeByRoute(recs []Record, agg Aggregation) []RouteTop {
	type key struct {
		route string
		days  int
	}
	groups := map[key][]float64{}
	for _, r := range recs {
		if r.HasTotal() && r.Route != "" && r.AdvanceDays >= 0 {
			k := key{route: r.Route, days: r.AdvanceDays}
			groups[k] = append(groups[k], *r.Total)
		}
	}

	perRoute := map[string][]TopOffer{}
	for k, vals := range groups {
		price, _ := reduce(vals, agg)
		perRoute[k.route] = append(perRoute[k.route], TopOffer{Price: price, AdvanceDays: k.days})
	}

	out := make([]RouteTop, 0, len(perRoute))
	for route, offers := range perRoute {
		sort.Slice(offers, func(i, j int) bool { return offers[i].Price < offers[j].Price })
		if len(offers) > 3 {
			offers = offers[:3]
		}
		out = append(out, RouteTop{Route: route, Offers: offers})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Route < out[j].Route })
	return out
}

// Carrier buckets for the share view. Anything that is not one of the
// three majors is dropped, matching how the analysts read the chart.
const (
	CarrierAzul  = "AZUL"
	CarrierGol   = "GOL"
	CarrierLatam = "LATAM"
)

// RouteShare is the carrier mix of one route, as fractions of the
// classified searches summing to 1.
type RouteShare struct {
	Route string
	Share map[string]float64
}

// AirlineShare classifies each record's airline into the three majors
// and returns the per-route mix, routes alphabetical.
func AirlineShare(recs []Record) []RouteShare {
	counts := map[string]map[string]int{}
	for _, r := range recs {
		carrier := classifyCarrier(r.Airline)
		if carrier == "" || r.Route == "" {
			continue
		}
		if counts[r.Route] == nil {
			counts[r.Route] = map[string]int{}
		}
		counts[r.Route][carrier]++
	}

	out := make([]RouteShare, 0, len(counts))
	for route, byCarrier := range counts {
		total := 0
		for _, n := range byCarrier {
			total += n
		}
		share := map[string]float64{}
		for carrier, n := range byCarrier {
			share[carrier] = float64(n) / float64(total)
		}
		out = append(out, RouteShare{Route: route, Share: share})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Route < out[j].Route })
	return out
}

func classifyCarrier(airline string) string {
	u := strings.ToUpper(airline)
	switch {
	case strings.Contains(u, CarrierAzul):
		return CarrierAzul
	case strings.Contains(u, CarrierGol):
		return CarrierGol
	case strings.Contains(u, CarrierLatam):
		return CarrierLatam
	}
	return ""
}

func totals(recs []Record) []float64 {
	var vals []float64
	for _, r := range recs {
		if r.HasTotal() {
			vals = append(vals, *r.Total)
		}
	}
	return vals
}

func reduce(vals []float64, agg Aggregation) (float64, bool) {
	if len(vals) == 0 {
		return 0, false
	}
	if agg == AggMean {
		sum := 0.0
		for _, v := range vals {
			sum += v
		}
		return sum / float64(len(vals)), true
	}
	min := vals[0]
	for _, v := range vals[1:] {
		if v < min {
			min = v
		}
	}
	return min, true
}
