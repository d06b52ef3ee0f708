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

// Package main runs the fare scraper: one browser session, the whole
// routes × advance-days matrix per cycle, one row per search appended
// to the output sinks.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	cmn "github.com/tassfersilva2026/buscasmilhas-scraper/pkg/common"
	cfg "github.com/tassfersilva2026/buscasmilhas-scraper/pkg/config"
	"github.com/tassfersilva2026/buscasmilhas-scraper/pkg/engine"
	"github.com/tassfersilva2026/buscasmilhas-scraper/pkg/fare"
	"github.com/tassfersilva2026/buscasmilhas-scraper/pkg/metrics"
	"github.com/tassfersilva2026/buscasmilhas-scraper/pkg/sink"
	"github.com/tassfersilva2026/buscasmilhas-scraper/pkg/sites"
	"github.com/tassfersilva2026/buscasmilhas-scraper/pkg/vdi"
)

var config cfg.Config

func main() {
	configFile := flag.String("config", "", "Path to the YAML configuration file")
	site := flag.String("site", "", "Site rules entry to scrape")
	rules := flag.String("rules", "", "Site rules YAML file (empty uses the built-in rules)")
	saida := flag.String("saida", "", "Directory for the output workbook")
	file := flag.String("file", "", "Pin the workbook filename instead of per-run naming")
	espera := flag.Int("espera", 0, "Max seconds to wait for offers or the empty-result banner")
	headless := flag.Bool("headless", true, "Run the browser headless")
	gui := flag.Bool("gui", false, "Open a visible browser window (overrides -headless)")
	once := flag.Bool("once", false, "Run a single cycle and exit")
	trechos := flag.String("trechos", "", "Comma-separated routes, e.g. CGH-SDU,SDU-CGH")
	advps := flag.String("advps", "", "Comma-separated advance-purchase days")
	metricsAddr := flag.String("metrics", "", "Listen address for /metrics (empty disables)")
	debugLevel := flag.Int("debug", 0, "Debug level (0-3)")
	flag.Parse()

	cmn.InitLogger("BuscasMilhas")

	var err error
	if *configFile != "" {
		config, err = cfg.LoadConfig(*configFile)
		if err != nil {
			cmn.DebugMsg(cmn.DbgLvlFatal, "Error reading the configuration file: %v", err)
		}
	} else {
		config = cfg.NewConfig()
	}
	applyFlags(*site, *rules, *saida, *file, *espera, *headless && !*gui, *debugLevel)
	cmn.SetDebugLevel(cmn.DbgLevel(config.DebugLevel))

	if *trechos != "" {
		config.Routes = cmn.SplitCSV(*trechos)
	}
	if *advps != "" {
		if days := parseDays(cmn.SplitCSV(*advps)); len(days) != 0 {
			config.AdvanceDays = days
		}
	}

	library, err := sites.InitializeLibrary(config.RulesFile)
	if err != nil {
		cmn.DebugMsg(cmn.DbgLvlFatal, "Error loading site rules: %v", err)
	}
	siteRules, err := library.FindSite(config.Site)
	if err != nil {
		cmn.DebugMsg(cmn.DbgLvlFatal, "Unknown site %q (have: %v)", config.Site, library.Names())
	}

	if *metricsAddr != "" {
		go metrics.Serve(*metricsAddr)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, siteRules, *once); err != nil {
		cmn.DebugMsg(cmn.DbgLvlFatal, "Scraper stopped: %v", err)
	}
	cmn.DebugMsg(cmn.DbgLvlInfo, "Done.")
}

func applyFlags(site, rules, saida, file string, espera int, headless bool, debugLevel int) {
	if site != "" {
		config.Site = site
	}
	if rules != "" {
		config.RulesFile = rules
	}
	if saida != "" {
		config.Output.Dir = saida
	}
	if file != "" {
		config.Output.File = file
	}
	if espera > 0 {
		config.Scraper.Timeout = espera
	}
	if debugLevel > 0 {
		config.DebugLevel = debugLevel
	}
	config.Selenium.Headless = headless || cfg.RunningInCI()
}

// parseDays keeps only positive day counts, the same filter the
// ADVPS_CSV environment override applies.
func parseDays(fields []string) []int {
	var days []int
	for _, f := range fields {
		if n := cmn.StringToInt(f); n > 0 {
			days = append(days, n)
		}
	}
	return days
}

func run(ctx context.Context, siteRules *sites.SiteRules, once bool) error {
	runStart := time.Now().In(fare.Location())
	runID := uuid.New().String()

	out, err := buildSinks(runStart)
	if err != nil {
		return err
	}
	defer out.Close()

	session, err := vdi.NewSession(config.Selenium)
	if err != nil {
		return err
	}
	defer session.Close()

	page := vdi.NewPage(session.Driver())
	opts := engineOptions(config.Scraper)
	requests := fare.Matrix(config.Routes, config.AdvanceDays)
	limiter := rate.NewLimiter(rate.Every(time.Duration(config.Scraper.IterationPace)*time.Second), 1)

	cmn.DebugMsg(cmn.DbgLvlInfo, "Run %s: site %s, %d routes x %d windows",
		runID, siteRules.Site, len(config.Routes), len(config.AdvanceDays))

	for {
		runCycle(ctx, page, siteRules, requests, opts, out, limiter, runID)
		if once || ctx.Err() != nil {
			return nil
		}
		cmn.DebugMsg(cmn.DbgLvlInfo, "Cycle finished. Resting %d seconds.", config.Scraper.CycleRest)
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(time.Duration(config.Scraper.CycleRest) * time.Second):
		}
	}
}

func buildSinks(runStart time.Time) (sink.Sink, error) {
	path := sink.Filename(config.Output.Dir, config.Site, runStart)
	if config.Output.File != "" {
		path = filepath.Join(config.Output.Dir, config.Output.File)
	}
	cmn.DebugMsg(cmn.DbgLvlInfo, "Workbook: %s (sheet %s)", path, config.Output.Sheet)

	sinks := sink.Multi{sink.NewExcel(path, config.Output.Sheet)}
	if config.Output.PgDSN != "" {
		pg, err := sink.NewPostgres(config.Output.PgDSN, config.Output.PgTable)
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, pg)
	}
	return sinks, nil
}

func engineOptions(s cfg.Scraper) engine.Options {
	return engine.Options{
		Timeout:         time.Duration(s.Timeout) * time.Second,
		PollInterval:    time.Duration(s.PollInterval) * time.Second,
		NoOffersAfter:   time.Duration(s.NoOffersAfter) * time.Second,
		FieldRetries:    s.FieldRetries,
		FieldRetryDelay: time.Duration(s.FieldRetryDelay) * time.Second,
	}
}

func runCycle(ctx context.Context, page engine.Page, siteRules *sites.SiteRules,
	requests []fare.SearchRequest, opts engine.Options, out sink.Sink,
	limiter *rate.Limiter, runID string) {
	for _, req := range requests {
		if err := limiter.Wait(ctx); err != nil {
			return
		}
		scrapeOne(page, siteRules, req, opts, out, runID)
	}
}

// scrapeOne performs one search and appends its row. A panic inside the
// driver bindings only costs this iteration.
func scrapeOne(page engine.Page, siteRules *sites.SiteRules, req fare.SearchRequest,
	opts engine.Options, out sink.Sink, runID string) {
	defer func() {
		if r := recover(); r != nil {
			cmn.DebugMsg(cmn.DbgLvlError, "Recovered while searching %s ADVP %d: %v",
				req.Route(), req.AdvanceDays, r)
		}
	}()

	now := time.Now().In(fare.Location())
	departure := now.AddDate(0, 0, req.AdvanceDays)
	url := siteRules.BuildURL(req.Origin, req.Destination, departure)

	cmn.DebugMsg(cmn.DbgLvlInfo, "Searching %s ADVP %d", req.Route(), req.AdvanceDays)

	start := time.Now()
	res, err := engine.WaitAndExtract(page, siteRules, url, opts)
	metrics.ScrapeDuration.WithLabelValues(siteRules.Site).Observe(time.Since(start).Seconds())
	metrics.ScrapesTotal.WithLabelValues(siteRules.Site, res.Status.String()).Inc()
	if err != nil {
		// A browser-level fault is not a verdict on the offers; no row.
		cmn.DebugMsg(cmn.DbgLvlError, "Search %s ADVP %d: %v", req.Route(), req.AdvanceDays, err)
		return
	}

	rec := fare.Build(req, res, siteRules, time.Now().In(fare.Location()))
	rec.RunID = runID
	if err := out.Append(rec); err != nil {
		cmn.DebugMsg(cmn.DbgLvlError, "Appending row for %s: %v", req.Route(), err)
	}
}
