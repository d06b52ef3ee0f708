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

package sites

// Canonical field keys shared by all site rule files. A site that does not
// expose a field simply omits its rule.
const (
	FieldDepartureTime = "departure_time"
	FieldArrivalTime   = "arrival_time"
	FieldFare          = "fare"
	FieldDiscount      = "discount"
	FieldBoardingTax   = "boarding_tax"
	FieldServiceTax    = "service_tax"
	FieldTotal         = "total"
	FieldAirline       = "airline"
	FieldFareClass     = "fare_class"
)

// Selector types. "text" matches a case-insensitive substring of the page
// text and is only meaningful for signal/no-offers checks; "regex" is only
// applied to the rendered page source during fallback extraction.
const (
	SelectorCSS   = "css"
	SelectorXPath = "xpath"
	SelectorRegex = "regex"
	SelectorText  = "text"
)

// Selector is one way of locating a piece of the page.
type Selector struct {
	Type  string `yaml:"type"`
	Value string `yaml:"value"`
}

// FieldRule is the ordered fallback chain for one extracted field: the
// first selector that yields non-empty text wins.
type FieldRule struct {
	Key       string     `yaml:"key"`
	Selectors []Selector `yaml:"selectors"`
}

// Quirks captures the per-site behavioral differences that are not plain
// locator variance.
type Quirks struct {
	// SecondPage means fare details live behind the first card's buy
	// button, possibly in a new tab.
	SecondPage bool `yaml:"second_page"`
	// HasTotal is false when the site exposes no total field and the
	// record total must be computed as fare + boarding tax.
	HasTotal bool `yaml:"has_total"`
	// CookieBanner lists accept-button selectors clicked right after
	// navigation, before any polling.
	CookieBanner []Selector `yaml:"cookie_banner"`
}

// SiteRules represents one entry of the site rules YAML file.
type SiteRules struct {
	Site     string      `yaml:"site"`
	URL      string      `yaml:"url"` // template with {origin} {destination} {date}
	Signals  []Selector  `yaml:"signals"`
	NoOffers []Selector  `yaml:"no_offers"`
	// NoOffersAfter delays the no-offers checks by a grace period in
	// seconds; zero checks from the first tick.
	NoOffersAfter int         `yaml:"no_offers_after"`
	BuyButton     []Selector  `yaml:"buy_button"`
	Fields        []FieldRule `yaml:"fields"`
	Quirks        Quirks      `yaml:"quirks"`
}

// RuleEngine holds the parsed rules for every known site.
type RuleEngine struct {
	SiteRules []SiteRules
}
