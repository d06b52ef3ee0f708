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

package vdi

import (
	"fmt"
	"strings"

	selenium "github.com/go-auxiliaries/selenium"

	"github.com/tassfersilva2026/buscasmilhas-scraper/pkg/sites"
)

// Page adapts a live WebDriver to the locator-level operations the
// extraction engine needs.
type Page struct {
	wd selenium.WebDriver
}

// NewPage wraps a WebDriver.
func NewPage(wd selenium.WebDriver) *Page {
	return &Page{wd: wd}
}

// Navigate loads the URL via window.location.assign, which some of the
// fare sites handle more gracefully than a top-level navigation command,
// falling back to a plain Get.
func (p *Page) Navigate(url string) error {
	script := fmt.Sprintf("window.location.assign(%q);", url)
	if _, err := p.wd.ExecuteScript(script, nil); err == nil {
		return nil
	}
	return p.wd.Get(url)
}

// Text returns the trimmed text of the first element matching sel.
func (p *Page) Text(sel sites.Selector) (string, error) {
	elem, err := p.find(sel)
	if err != nil {
		return "", err
	}
	text, err := elem.Text()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

// Visible reports whether sel matches a displayed element.
func (p *Page) Visible(sel sites.Selector) (bool, error) {
	elem, err := p.find(sel)
	if err != nil {
		return false, err
	}
	return elem.IsDisplayed()
}

// ClickJS scrolls the first match into view and clicks it from script, so
// the click lands even when a floating banner overlaps the button.
func (p *Page) ClickJS(sel sites.Selector) error {
	elem, err := p.find(sel)
	if err != nil {
		return err
	}
	args := []interface{}{elem}
	if _, err := p.wd.ExecuteScript("arguments[0].scrollIntoView({block: 'center'});", args); err != nil {
		return err
	}
	_, err = p.wd.ExecuteScript("arguments[0].click();", args)
	return err
}

// Source returns the rendered page source.
func (p *Page) Source() (string, error) {
	return p.wd.PageSource()
}

// Handles lists the open window handles.
func (p *Page) Handles() ([]string, error) {
	return p.wd.WindowHandles()
}

// SwitchWindow activates the given window handle.
func (p *Page) SwitchWindow(handle string) error {
	return p.wd.SwitchWindow(handle)
}

// CloseWindow closes the current window. The caller switches back to a
// surviving handle afterwards.
func (p *Page) CloseWindow() error {
	return p.wd.Close()
}

func (p *Page) find(sel sites.Selector) (selenium.WebElement, error) {
	switch sel.Type {
	case sites.SelectorCSS:
		return p.wd.FindElement(selenium.ByCSSSelector, sel.Value)
	case sites.SelectorXPath:
		return p.wd.FindElement(selenium.ByXPATH, sel.Value)
	default:
		return nil, fmt.Errorf("selector type %q has no live-page lookup", sel.Type)
	}
}
