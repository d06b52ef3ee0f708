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

// Package vdi manages the browser session: it starts (or attaches to) a
// WebDriver endpoint, builds the Chrome profile the fare sites tolerate,
// and adapts the Selenium session to the engine's Page interface.
package vdi

import (
	"fmt"
	"strings"

	selenium "github.com/go-auxiliaries/selenium"
	"github.com/go-auxiliaries/selenium/chrome"

	cmn "github.com/tassfersilva2026/buscasmilhas-scraper/pkg/common"
	cfg "github.com/tassfersilva2026/buscasmilhas-scraper/pkg/config"
)

// Session owns one driver service (when locally started) and one WebDriver.
type Session struct {
	service *selenium.Service
	wd      selenium.WebDriver
}

// Driver exposes the underlying WebDriver.
func (s *Session) Driver() selenium.WebDriver {
	return s.wd
}

// NewSession starts a local chromedriver (unless a remote Selenium host is
// configured) and opens a Chrome session with the settings the original
// scrapers converged on: new headless mode, fixed window, pt-BR locale and
// the automation-fingerprint switches disabled.
func NewSession(c cfg.Selenium) (*Session, error) {
	s := &Session{}

	urlPrefix := fmt.Sprintf("http://localhost:%d/wd/hub", c.Port)
	if c.Host != "" {
		urlPrefix = fmt.Sprintf("http://%s:%d/wd/hub", c.Host, c.Port)
	} else {
		driverPath := c.DriverPath
		if driverPath == "" {
			driverPath = "chromedriver"
		}
		service, err := selenium.NewChromeDriverService(driverPath, c.Port)
		if err != nil {
			return nil, fmt.Errorf("starting chromedriver: %w", err)
		}
		s.service = service
	}

	caps := selenium.Capabilities{"browserName": browserName(c.Type)}
	caps.AddChrome(chromeCaps(c))

	wd, err := selenium.NewRemote(caps, urlPrefix)
	if err != nil {
		if s.service != nil {
			_ = s.service.Stop()
		}
		return nil, fmt.Errorf("opening browser session: %w", err)
	}
	s.wd = wd

	cmn.DebugMsg(cmn.DbgLvlInfo, "Browser session ready (headless: %v)", c.Headless)
	return s, nil
}

func browserName(t string) string {
	t = strings.ToLower(strings.TrimSpace(t))
	if t == "" {
		return "chrome"
	}
	return t
}

func chromeCaps(c cfg.Selenium) chrome.Capabilities {
	args := []string{
		"--window-size=1920,1080",
		"--lang=pt-BR",
		"--disable-blink-features=AutomationControlled",
		"--disable-extensions",
		"--disable-dev-shm-usage",
		"--no-sandbox",
		"--log-level=3",
		"--mute-audio",
		"--no-default-browser-check",
		"--no-first-run",
		"--disable-notifications",
		"--use-gl=swiftshader",
		"--enable-unsafe-swiftshader",
	}
	if c.Headless {
		args = append(args, "--headless=new", "--hide-scrollbars")
	}

	return chrome.Capabilities{
		Path:            c.Path,
		Args:            args,
		ExcludeSwitches: []string{"enable-automation", "enable-logging"},
		W3C:             true,
	}
}

// Close tears down the WebDriver and the local driver service, tolerating
// an already-dead browser.
func (s *Session) Close() {
	if s.wd != nil {
		if err := s.wd.Quit(); err != nil {
			cmn.DebugMsg(cmn.DbgLvlDebug, "Quitting browser session: %v", err)
		}
	}
	if s.service != nil {
		if err := s.service.Stop(); err != nil {
			cmn.DebugMsg(cmn.DbgLvlDebug, "Stopping driver service: %v", err)
		}
	}
}
