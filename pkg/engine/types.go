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
	"time"

	"github.com/tassfersilva2026/buscasmilhas-scraper/pkg/sites"
)

// Status is the terminal state of one wait-and-extract run.
type Status int

const (
	// StatusError is the zero value: the browser itself failed before a
	// verdict on the page was possible. It always travels with an error.
	StatusError Status = iota
	// StatusSuccess means a signal element rendered and extraction ran.
	StatusSuccess
	// StatusNoOffers means the page showed an explicit no-results marker,
	// or the offer could not be opened.
	StatusNoOffers
	// StatusTimeout means the poll budget elapsed with neither signal nor
	// no-results marker.
	StatusTimeout
)

// String returns the status name for logs.
func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusNoOffers:
		return "no_offers"
	case StatusTimeout:
		return "timeout"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// Result is the tagged outcome of WaitAndExtract. Fields is only populated
// on StatusSuccess and maps canonical field keys to raw page text.
type Result struct {
	Status Status
	Fields map[string]string
}

// Page is the slice of browser behavior the engine needs. pkg/vdi adapts a
// Selenium session to it; tests script it.
type Page interface {
	// Navigate loads the URL in the current tab.
	Navigate(url string) error
	// Text returns the trimmed text of the first element the selector
	// matches. An error means no such element right now.
	Text(sel sites.Selector) (string, error)
	// Visible reports whether the selector matches a displayed element.
	Visible(sel sites.Selector) (bool, error)
	// ClickJS scrolls the first match into view and clicks it via
	// JavaScript, which survives overlay-covered buttons.
	ClickJS(sel sites.Selector) error
	// Source returns the rendered page source.
	Source() (string, error)
	// Handles lists the open window handles.
	Handles() ([]string, error)
	// SwitchWindow activates the given window handle.
	SwitchWindow(handle string) error
	// CloseWindow closes the current window.
	CloseWindow() error
}

// Options bounds one wait-and-extract run. Zero values fall back to the
// defaults below.
type Options struct {
	Timeout         time.Duration // total poll budget
	PollInterval    time.Duration // tick between signal checks
	NoOffersAfter   time.Duration // grace before no-offers checks; the site rule wins when set
	FieldRetries    int           // attempts per field during extraction
	FieldRetryDelay time.Duration // pause between field attempts
}

const (
	defaultTimeout         = 20 * time.Second
	defaultPollInterval    = time.Second
	defaultFieldRetries    = 3
	defaultFieldRetryDelay = 3 * time.Second
	newWindowWait          = 6 * time.Second
)

func (o Options) withDefaults() Options {
	if o.Timeout <= 0 {
		o.Timeout = defaultTimeout
	}
	if o.PollInterval <= 0 {
		o.PollInterval = defaultPollInterval
	}
	if o.FieldRetries <= 0 {
		o.FieldRetries = defaultFieldRetries
	}
	if o.FieldRetryDelay <= 0 {
		o.FieldRetryDelay = defaultFieldRetryDelay
	}
	return o
}
