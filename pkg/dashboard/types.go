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

// Package dashboard reads the workbooks a scrape campaign accumulated
// and reduces them to the comparison views the analysts look at: price
// by search hour, price by advance-purchase window, top routes and
// airline share.
package dashboard

import "time"

// Company labels, derived from workbook filenames.
const (
	CompanyFlipMilhas  = "FLIPMILHAS"
	CompanyCapoViagens = "CAPO VIAGENS"
	CompanyMaxMilhas   = "MAXMILHAS"
	Company123Milhas   = "123MILHAS"
	CompanyUnknown     = "N/A"
)

// Companies lists the known labels in tab order.
var Companies = []string{
	CompanyFlipMilhas, CompanyCapoViagens, CompanyMaxMilhas, Company123Milhas,
}

// Record is one search observation after schema reconciliation. Files
// from different scrapers name and order their columns differently;
// loading flattens them all into this shape.
type Record struct {
	SearchAt    time.Time
	HourBucket  int // hour of SearchAt, 0-23
	Route       string
	Airline     string
	AdvanceDays int // -1 when neither given nor derivable
	DepartureAt time.Time
	Fare        *float64
	BoardingTax *float64
	ServiceTax  *float64
	Total       *float64
	Company     string
	File        string
}

// HasTotal reports whether the record carries a priced total; sentinel
// rows do not.
func (r *Record) HasTotal() bool {
	return r.Total != nil
}

// Aggregation selects how a group of totals collapses to one price.
type Aggregation string

const (
	AggMin  Aggregation = "min"
	AggMean Aggregation = "mean"
)
