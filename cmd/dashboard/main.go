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

// The dashboard command reads the workbooks a scrape campaign produced
// and prints the comparison views per company, or serves them as JSON.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	cmn "github.com/tassfersilva2026/buscasmilhas-scraper/pkg/common"
	"github.com/tassfersilva2026/buscasmilhas-scraper/pkg/dashboard"
)

func main() {
	dataDir := flag.String("data", "data", "Directory holding the workbooks")
	agg := flag.String("agg", "min", "Price aggregation: min or mean")
	company := flag.String("company", "", "Only this company (default all)")
	httpAddr := flag.String("http", "", "Serve JSON on this address instead of printing")
	debugLevel := flag.Int("debug", 0, "Debug level (0-3)")
	flag.Parse()

	cmn.InitLogger("BuscasMilhasPanel")
	cmn.SetDebugLevel(cmn.DbgLevel(*debugLevel))

	aggregation := dashboard.AggMin
	if strings.EqualFold(*agg, string(dashboard.AggMean)) {
		aggregation = dashboard.AggMean
	}

	records, err := dashboard.LoadDir(*dataDir)
	if err != nil {
		cmn.DebugMsg(cmn.DbgLvlFatal, "Error loading %s: %v", *dataDir, err)
	}
	if len(records) == 0 {
		cmn.DebugMsg(cmn.DbgLvlFatal, "No readable workbooks in %s", *dataDir)
	}

	companies := dashboard.Companies
	if *company != "" {
		companies = []string{strings.ToUpper(*company)}
	}

	if *httpAddr != "" {
		serve(*httpAddr, records, companies, aggregation)
		return
	}

	for _, c := range companies {
		printCompany(c, dashboard.FilterCompany(records, c), aggregation)
	}
}

func printCompany(company string, recs []dashboard.Record, agg dashboard.Aggregation) {
	fmt.Printf("\n=== %s ===\n", company)
	if len(recs) == 0 {
		fmt.Println("no data")
		return
	}

	sum := dashboard.Summarize(recs, agg)
	fmt.Printf("searches: %d", sum.Searches)
	if sum.HasPrice {
		fmt.Printf("  price (%s): R$ %.0f", agg, sum.Price)
	}
	fmt.Println()

	byHour := table.NewWriter()
	byHour.SetOutputMirror(os.Stdout)
	byHour.SetTitle("Price by search hour")
	byHour.AppendHeader(table.Row{"HOUR", "PRICE"})
	for _, h := range dashboard.PriceByHour(recs, agg) {
		byHour.AppendRow(table.Row{fmt.Sprintf("%02d", h.Hour), money(h.Price)})
	}
	byHour.SetStyle(table.StyleLight)
	byHour.Render()

	byAdvp := table.NewWriter()
	byAdvp.SetOutputMirror(os.Stdout)
	byAdvp.SetTitle("Price by advance-purchase days")
	byAdvp.AppendHeader(table.Row{"ADVP", "PRICE"})
	for _, a := range dashboard.PriceByAdvance(recs, agg) {
		byAdvp.AppendRow(table.Row{a.AdvanceDays, money(a.Price)})
	}
	byAdvp.SetStyle(table.StyleLight)
	byAdvp.Render()

	byRoute := table.NewWriter()
	byRoute.SetOutputMirror(os.Stdout)
	byRoute.SetTitle("Top 20 routes by price")
	byRoute.AppendHeader(table.Row{"ROUTE", "PRICE"})
	for _, r := range dashboard.PriceByRoute(recs, agg, 20) {
		byRoute.AppendRow(table.Row{r.Route, money(r.Price)})
	}
	byRoute.SetStyle(table.StyleLight)
	byRoute.Render()

	top3 := table.NewWriter()
	top3.SetOutputMirror(os.Stdout)
	top3.SetTitle("Top 3 windows per route")
	top3.AppendHeader(table.Row{"ROUTE", "TOP 1", "ADVP", "TOP 2", "ADVP", "TOP 3", "ADVP"})
	for _, rt := range dashboard.TopThreeByRoute(recs, agg) {
		row := table.Row{rt.Route}
		for i := 0; i < 3; i++ {
			if i < len(rt.Offers) {
				row = append(row, money(rt.Offers[i].Price), rt.Offers[i].AdvanceDays)
			} else {
				row = append(row, "-", "-")
			}
		}
		top3.AppendRow(row)
	}
	top3.SetStyle(table.StyleLight)
	top3.Render()

	share := table.NewWriter()
	share.SetOutputMirror(os.Stdout)
	share.SetTitle("Carrier share")
	share.AppendHeader(table.Row{"ROUTE", "AZUL", "GOL", "LATAM"})
	for _, rs := range dashboard.AirlineShare(recs) {
		share.AppendRow(table.Row{
			rs.Route,
			percent(rs.Share[dashboard.CarrierAzul]),
			percent(rs.Share[dashboard.CarrierGol]),
			percent(rs.Share[dashboard.CarrierLatam]),
		})
	}
	share.SetStyle(table.StyleLight)
	share.Render()
}

func money(v float64) string {
	return fmt.Sprintf("R$ %.0f", v)
}

func percent(v float64) string {
	if v == 0 {
		return "-"
	}
	return fmt.Sprintf("%.0f%%", v*100)
}

// companyView is the JSON shape of one company tab.
type companyView struct {
	Company   string                  `json:"company"`
	Searches  int                     `json:"searches"`
	Price     *float64                `json:"price,omitempty"`
	ByHour    []dashboard.HourPrice   `json:"by_hour"`
	ByAdvance []dashboard.AdvancePrice `json:"by_advance"`
	ByRoute   []dashboard.RoutePrice  `json:"by_route"`
	TopThree  []dashboard.RouteTop    `json:"top_three"`
	Share     []dashboard.RouteShare  `json:"carrier_share"`
}

func buildView(company string, recs []dashboard.Record, agg dashboard.Aggregation) companyView {
	v := companyView{
		Company:   company,
		Searches:  len(recs),
		ByHour:    dashboard.PriceByHour(recs, agg),
		ByAdvance: dashboard.PriceByAdvance(recs, agg),
		ByRoute:   dashboard.PriceByRoute(recs, agg, 20),
		TopThree:  dashboard.TopThreeByRoute(recs, agg),
		Share:     dashboard.AirlineShare(recs),
	}
	if sum := dashboard.Summarize(recs, agg); sum.HasPrice {
		v.Price = &sum.Price
	}
	return v
}

func serve(addr string, records []dashboard.Record, companies []string, agg dashboard.Aggregation) {
	views := make([]companyView, 0, len(companies))
	for _, c := range companies {
		views = append(views, buildView(c, dashboard.FilterCompany(records, c), agg))
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/api/v1/panel", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(views); err != nil {
			cmn.DebugMsg(cmn.DbgLvlError, "Encoding panel: %v", err)
		}
	})

	cmn.DebugMsg(cmn.DbgLvlInfo, "Panel listening on %s", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		cmn.DebugMsg(cmn.DbgLvlFatal, "Panel stopped: %v", err)
	}
}
