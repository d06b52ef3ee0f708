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

// Package engine implements the wait-and-extract protocol shared by every
// site scraper: poll the rendered page until a signal element carries text
// or a no-offers marker shows up, then pull each target field through its
// ordered fallback chain. The target sites are client-rendered SPAs with
// non-deterministic render timing, so a single fixed wait is unreliable;
// polling against several alternative signal conditions is what the
// production scrapers converged on.
package engine

import (
	"strings"
	"time"

	cmn "github.com/tassfersilva2026/buscasmilhas-scraper/pkg/common"
	"github.com/tassfersilva2026/buscasmilhas-scraper/pkg/sites"
)

// WaitAndExtract navigates the page to url and runs the protocol for the
// given site rules. The returned error is reserved for browser-level
// faults (navigation failure, dead session); "the page never showed a
// price" comes back as a Result, not an error. The call always returns
// within Timeout + PollInterval of wall clock plus the extraction budget.
func WaitAndExtract(page Page, site *sites.SiteRules, url string, opts Options) (Result, error) {
	opts = opts.withDefaults()

	// NAVIGATING
	if err := page.Navigate(url); err != nil {
		return Result{Status: StatusError}, err
	}
	dismissCookieBanner(page, site)

	// POLLING
	switch waitForSignal(page, site, opts) {
	case StatusNoOffers:
		return Result{Status: StatusNoOffers}, nil
	case StatusTimeout:
		return Result{Status: StatusTimeout}, nil
	}

	// Offer details behind the first card's buy button: open them before
	// extracting, and restore the original tab afterwards.
	if site.Quirks.SecondPage {
		restore, ok := openOfferPage(page, site, opts)
		if !ok {
			return Result{Status: StatusNoOffers}, nil
		}
		defer restore()
	}

	// EXTRACTING
	fields := extractFields(page, site, opts)
	return Result{Status: StatusSuccess, Fields: fields}, nil
}

// waitForSignal runs the bounded poll loop. Each tick checks every signal
// selector for non-empty text (or a displayed element), and once past the
// site's grace period the no-offers markers as well.
func waitForSignal(page Page, site *sites.SiteRules, opts Options) Status {
	grace := opts.NoOffersAfter
	if site.NoOffersAfter > 0 {
		grace = time.Duration(site.NoOffersAfter) * time.Second
	}

	start := time.Now()
	for time.Since(start) < opts.Timeout {
		for _, sel := range site.Signals {
			if selectorLive(page, sel) {
				return StatusSuccess
			}
		}
		if time.Since(start) >= grace {
			if noOffersShown(page, site.NoOffers) {
				return StatusNoOffers
			}
		}
		time.Sleep(opts.PollInterval)
	}
	return StatusTimeout
}

// selectorLive reports whether the selector matches an element that is
// either displayed or already carries text.
func selectorLive(page Page, sel sites.Selector) bool {
	if sel.Type == sites.SelectorText || sel.Type == sites.SelectorRegex {
		return false
	}
	if txt, err := page.Text(sel); err == nil && strings.TrimSpace(txt) != "" {
		return true
	}
	if visible, err := page.Visible(sel); err == nil && visible {
		return true
	}
	return false
}

// noOffersShown checks the explicit "no results" markers: text selectors
// against the page source, element selectors for presence.
func noOffersShown(page Page, markers []sites.Selector) bool {
	var source string
	for _, sel := range markers {
		switch sel.Type {
		case sites.SelectorText:
			if source == "" {
				src, err := page.Source()
				if err != nil {
					continue
				}
				source = strings.ToLower(src)
			}
			if strings.Contains(source, strings.ToLower(sel.Value)) {
				return true
			}
		default:
			if selectorLive(page, sel) {
				return true
			}
		}
	}
	return false
}

func dismissCookieBanner(page Page, site *sites.SiteRules) {
	for _, sel := range site.Quirks.CookieBanner {
		if err := page.ClickJS(sel); err == nil {
			time.Sleep(500 * time.Millisecond)
			return
		}
	}
}

// openOfferPage clicks the first buy button and, when the site opens the
// details in a new tab, switches to it. The returned restore func closes
// that tab and goes back to the search tab. ok is false when no buy button
// could be clicked, which the caller records as no offer.
func openOfferPage(page Page, site *sites.SiteRules, opts Options) (restore func(), ok bool) {
	before, err := page.Handles()
	if err != nil {
		return nil, false
	}

	clicked := false
	for _, sel := range site.BuyButton {
		if err := page.ClickJS(sel); err == nil {
			clicked = true
			break
		}
	}
	if !clicked {
		return nil, false
	}

	// The buy click sometimes opens a new tab, sometimes navigates in
	// place. Wait a bounded moment for a new handle to show up.
	var opened string
	deadline := time.Now().Add(newWindowWait)
	for time.Now().Before(deadline) {
		after, err := page.Handles()
		if err != nil {
			break
		}
		if h := newHandle(before, after); h != "" {
			opened = h
			break
		}
		time.Sleep(opts.PollInterval)
	}

	if opened == "" {
		return func() {}, true
	}

	if err := page.SwitchWindow(opened); err != nil {
		cmn.DebugMsg(cmn.DbgLvlError, "Failed to switch to offer tab: %v", err)
		return func() {}, true
	}
	base := ""
	if len(before) > 0 {
		base = before[0]
	}
	return func() {
		if err := page.CloseWindow(); err != nil {
			cmn.DebugMsg(cmn.DbgLvlDebug, "Failed to close offer tab: %v", err)
		}
		if base != "" {
			if err := page.SwitchWindow(base); err != nil {
				cmn.DebugMsg(cmn.DbgLvlError, "Failed to restore search tab: %v", err)
			}
		}
	}, true
}

func newHandle(before, after []string) string {
	known := make(map[string]bool, len(before))
	for _, h := range before {
		known[h] = true
	}
	for i := len(after) - 1; i >= 0; i-- {
		if !known[after[i]] {
			return after[i]
		}
	}
	return ""
}
