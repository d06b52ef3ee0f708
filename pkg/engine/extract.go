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

package engine

import (
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/antchfx/htmlquery"

	"github.com/tassfersilva2026/buscasmilhas-scraper/pkg/sites"
)

var (
	currencyPattern = regexp.MustCompile(`R\$\s*[\d.]+,\d{2}`)
	clockPattern    = regexp.MustCompile(`\d{1,2}:\d{2}(?::\d{2})?`)
)

// extractFields pulls every target field through its fallback chain:
// live locator lookups with bounded retries first, then the same XPaths
// against a parsed snapshot of the page source, and as a last resort a
// regex scan of the page's rendered text for a time and a currency value.
func extractFields(page Page, site *sites.SiteRules, opts Options) map[string]string {
	fields := make(map[string]string, len(site.Fields))

	var source string
	for _, rule := range site.Fields {
		val := extractField(page, rule, opts)
		if val == "" {
			if source == "" {
				source, _ = page.Source()
			}
			val = extractFromSource(source, rule)
		}
		fields[rule.Key] = val
	}

	fallbackScan(fields, site, func() string {
		if source == "" {
			source, _ = page.Source()
		}
		return source
	})
	return fields
}

// extractField walks the selector chain against the live page. Empty
// results are retried a few times with a delay between attempts: detail
// panes keep rendering after the signal element appears.
func extractField(page Page, rule sites.FieldRule, opts Options) string {
	for attempt := 0; attempt < opts.FieldRetries; attempt++ {
		if attempt > 0 {
			time.Sleep(opts.FieldRetryDelay)
		}
		for _, sel := range rule.Selectors {
			if sel.Type != sites.SelectorCSS && sel.Type != sites.SelectorXPath {
				continue
			}
			if txt, err := page.Text(sel); err == nil {
				if txt = strings.TrimSpace(txt); txt != "" {
					return txt
				}
			}
		}
	}
	return ""
}

// extractFromSource retries the chain against a parsed page-source
// snapshot, and applies the chain's regex selectors, which only operate
// here.
func extractFromSource(source string, rule sites.FieldRule) string {
	if source == "" {
		return ""
	}
	var doc = func() *goquery.Document {
		d, err := goquery.NewDocumentFromReader(strings.NewReader(source))
		if err != nil {
			return nil
		}
		return d
	}()
	node, nodeErr := htmlquery.Parse(strings.NewReader(source))

	for _, sel := range rule.Selectors {
		var extracted string
		switch sel.Type {
		case sites.SelectorCSS:
			if doc != nil {
				extracted = doc.Find(sel.Value).First().Text()
			}
		case sites.SelectorXPath:
			if nodeErr == nil {
				if found, err := htmlquery.Query(node, sel.Value); err == nil && found != nil {
					extracted = htmlquery.InnerText(found)
				}
			}
		case sites.SelectorRegex:
			re, err := regexp.Compile(sel.Value)
			if err != nil {
				continue
			}
			if m := re.FindStringSubmatch(source); m != nil {
				if len(m) > 1 {
					extracted = m[1]
				} else {
					extracted = m[0]
				}
			}
		}
		if extracted = strings.TrimSpace(extracted); extracted != "" {
			return extracted
		}
	}
	return ""
}

// fallbackScan recovers a time and a currency value from the rendered
// body text when every locator for those fields came back empty. DOM and
// class-name churn on these sites is routine; a visible "R$ 123,45" is
// still better than losing the observation.
func fallbackScan(fields map[string]string, site *sites.SiteRules, sourceFn func() string) {
	needTime := fieldEmpty(fields, site, sites.FieldDepartureTime)
	moneyKey := ""
	if site.Quirks.HasTotal {
		if fieldEmpty(fields, site, sites.FieldTotal) && fieldEmpty(fields, site, sites.FieldFare) {
			moneyKey = sites.FieldTotal
		}
	} else if fieldEmpty(fields, site, sites.FieldFare) {
		moneyKey = sites.FieldFare
	}
	if !needTime && moneyKey == "" {
		return
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(sourceFn()))
	if err != nil {
		return
	}
	text := doc.Find("body").Text()

	if needTime {
		if m := clockPattern.FindString(text); m != "" {
			fields[sites.FieldDepartureTime] = m
		}
	}
	if moneyKey != "" {
		if m := currencyPattern.FindString(text); m != "" {
			fields[moneyKey] = m
		}
	}
}

// fieldEmpty is true when the site defines the field but extraction got
// nothing. Fields a site never exposes are not recovered.
func fieldEmpty(fields map[string]string, site *sites.SiteRules, key string) bool {
	return site.Field(key) != nil && strings.TrimSpace(fields[key]) == ""
}
