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
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	cmn "github.com/tassfersilva2026/buscasmilhas-scraper/pkg/common"
	"github.com/tassfersilva2026/buscasmilhas-scraper/pkg/normalize"
)

// LoadDir reads every workbook and CSV in dir, reconciles their schemas
// and returns the records newest-search-first. A file that fails to
// parse is logged and skipped; one bad export must not blank the panel.
func LoadDir(dir string) ([]Record, error) {
	files, err := listFiles(dir)
	if err != nil {
		return nil, err
	}

	var all []Record
	for _, path := range files {
		recs, err := loadFile(path)
		if err != nil {
			cmn.DebugMsg(cmn.DbgLvlError, "Skipping %s: %v", filepath.Base(path), err)
			continue
		}
		all = append(all, recs...)
	}

	sort.SliceStable(all, func(i, j int) bool {
		return all[i].SearchAt.After(all[j].SearchAt)
	})
	return all, nil
}

func listFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading data dir %s: %w", dir, err)
	}

	var out []string
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), "~$") {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".xlsx", ".csv":
			out = append(out, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(out)
	return out, nil
}

// DetectCompany maps a workbook filename to its company label, by the
// prefix the scrapers use when naming per-run files.
func DetectCompany(name string) string {
	u := strings.ToUpper(filepath.Base(name))
	switch {
	case strings.HasPrefix(u, "CAPOVIAGENS_"), strings.Contains(u, "CAPO"):
		return CompanyCapoViagens
	case strings.HasPrefix(u, "FLIPMILHAS_"), strings.Contains(u, "FLIP"):
		return CompanyFlipMilhas
	case strings.HasPrefix(u, "MAXMILHAS_"),
		strings.Contains(u, "MAX") && strings.Contains(u, "MILHAS"):
		return CompanyMaxMilhas
	case strings.HasPrefix(u, "123MILHAS_"),
		strings.Contains(u, "123") && strings.Contains(u, "MILHAS"):
		return Company123Milhas
	}
	return CompanyUnknown
}

func loadFile(path string) ([]Record, error) {
	var rows [][]string
	var err error
	if strings.EqualFold(filepath.Ext(path), ".csv") {
		rows, err = readCSV(path)
	} else {
		rows, err = readXLSX(path)
	}
	if err != nil {
		return nil, err
	}
	if len(rows) < 2 {
		return nil, nil
	}

	cols := resolveColumns(rows[0])
	company := DetectCompany(path)
	file := filepath.Base(path)

	var recs []Record
	for _, row := range rows[1:] {
		rec, ok := buildRecord(row, cols, company, file)
		if !ok {
			continue
		}
		recs = append(recs, rec)
	}
	return recs, nil
}

// readXLSX pulls raw cell values from the first sheet, so dates and
// times arrive as Excel serial numbers instead of locale-formatted text.
func readXLSX(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	return f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
}

// readCSV tries semicolon first, the separator the Brazilian Excel
// exports use, then comma.
func readCSV(path string) ([][]string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	for _, sep := range []rune{';', ','} {
		r := csv.NewReader(strings.NewReader(string(raw)))
		r.Comma = sep
		r.FieldsPerRecord = -1
		rows, err := r.ReadAll()
		if err == nil && len(rows) > 0 && len(rows[0]) > 1 {
			return rows, nil
		}
	}
	return nil, fmt.Errorf("unable to parse CSV %s", filepath.Base(path))
}

// columnIndex holds the resolved position of each logical column, -1
// when the file does not carry it.
type columnIndex struct {
	searchDate  int
	searchTime  int
	route       int
	advp        int
	depDate     int
	depTime     int
	arrTime     int
	airline     int
	fare        int
	boardingTax int
	serviceTax  int
	total       int
}

var wsPattern = regexp.MustCompile(`\s+`)

func canonical(name string) string {
	return strings.ToUpper(strings.TrimSpace(wsPattern.ReplaceAllString(name, " ")))
}

// resolveColumns matches a header row against the two schema families
// in the wild: the lowercase snake_case one the CapoViagens scraper
// writes, and the uppercase Portuguese one the others share.
func resolveColumns(header []string) columnIndex {
	cols := columnIndex{
		searchDate: -1, searchTime: -1, route: -1, advp: -1,
		depDate: -1, depTime: -1, arrTime: -1, airline: -1,
		fare: -1, boardingTax: -1, serviceTax: -1, total: -1,
	}

	lower := make(map[string]int, len(header))
	for i, h := range header {
		lower[strings.ToLower(strings.TrimSpace(h))] = i
	}
	if _, hasCapture := lower["captura_data"]; hasCapture {
		if _, hasTotal := lower["valor_total"]; hasTotal {
			set := func(dst *int, name string) {
				if i, ok := lower[name]; ok {
					*dst = i
				}
			}
			set(&cols.searchDate, "captura_data")
			set(&cols.searchTime, "captura_hora")
			set(&cols.route, "trecho")
			set(&cols.advp, "antecedencia")
			set(&cols.depDate, "data_voo")
			set(&cols.depTime, "hr_ida")
			set(&cols.arrTime, "hr_volta")
			set(&cols.airline, "cia")
			set(&cols.fare, "por_adulto")
			set(&cols.boardingTax, "taxa_embarque")
			set(&cols.serviceTax, "taxa_servico")
			set(&cols.total, "valor_total")
			return cols
		}
	}

	for i, h := range header {
		switch canonical(h) {
		case "DATA DA BUSCA":
			cols.searchDate = i
		case "HORA DA BUSCA":
			cols.searchTime = i
		case "TRECHO":
			cols.route = i
		case "ADVP":
			cols.advp = i
		case "DATA DO VOO", "DATA PARTIDA":
			cols.depDate = i
		case "HR IDA", "HORA DA PARTIDA":
			cols.depTime = i
		case "HR VOLTA", "HORA DA CHEGADA":
			cols.arrTime = i
		case "CIA DO VOO", "CIA", "CIA DO VÔO":
			cols.airline = i
		case "TARIFA":
			cols.fare = i
		case "TX DE EMBARQUE", "TX EMBARQUE", "TAXA DE EMBARQUE":
			cols.boardingTax = i
		case "TX DE EMISSÃO", "TX DE SERVIÇO":
			cols.serviceTax = i
		case "TOTAL", "VALOR TOTAL", "VALOR":
			cols.total = i
		}
	}
	return cols
}

func buildRecord(row []string, cols columnIndex, company, file string) (Record, bool) {
	rec := Record{Company: company, File: file, AdvanceDays: -1}

	searchDate, okDate := parseDate(cell(row, cols.searchDate))
	route := strings.ToUpper(strings.TrimSpace(cell(row, cols.route)))
	if !okDate && route == "" {
		return rec, false
	}
	rec.Route = route

	rec.SearchAt = searchDate
	if clock, ok := parseClock(cell(row, cols.searchTime)); ok {
		rec.SearchAt = searchDate.Add(time.Duration(clock.Seconds()) * time.Second)
	}
	rec.HourBucket = rec.SearchAt.Hour()

	if dep, ok := parseDate(cell(row, cols.depDate)); ok {
		rec.DepartureAt = dep
		if clock, ok := parseClock(cell(row, cols.depTime)); ok {
			rec.DepartureAt = dep.Add(time.Duration(clock.Seconds()) * time.Second)
		}
	}

	rec.Airline = strings.TrimSpace(cell(row, cols.airline))
	rec.Fare = parsePrice(cell(row, cols.fare))
	rec.BoardingTax = parsePrice(cell(row, cols.boardingTax))
	rec.ServiceTax = parsePrice(cell(row, cols.serviceTax))
	rec.Total = parsePrice(cell(row, cols.total))

	if v := strings.TrimSpace(cell(row, cols.advp)); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			rec.AdvanceDays = n
		} else if f, err := strconv.ParseFloat(v, 64); err == nil {
			rec.AdvanceDays = int(f)
		}
	}
	if rec.AdvanceDays < 0 && okDate && !rec.DepartureAt.IsZero() {
		days := int(midnight(rec.DepartureAt).Sub(midnight(searchDate)).Hours() / 24)
		if days >= 0 {
			rec.AdvanceDays = days
		}
	}
	return rec, true
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// parseDate accepts an Excel serial number or the date spellings the
// exports use: DD/MM/YYYY everywhere except CapoViagens, which writes
// YYYY/MM/DD.
func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if v, err := strconv.ParseFloat(s, 64); err == nil && v > 1 {
		if t, err := excelize.ExcelDateToTime(v, false); err == nil {
			return t, true
		}
	}
	for _, layout := range []string{"02/01/2006", "2006-01-02", "2006/01/02", "02/01/06"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// parseClock accepts an Excel day fraction or HH:MM[:SS] text.
func parseClock(s string) (normalize.Clock, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return normalize.Clock{}, false
	}
	if v, err := strconv.ParseFloat(s, 64); err == nil && v >= 0 && v < 2 {
		secs := int(v*86400+0.5) % 86400
		return normalize.Clock{
			Hour:   secs / 3600,
			Minute: (secs % 3600) / 60,
			Second: secs % 60,
		}, true
	}
	return normalize.TimeOfDay(s)
}

// parsePrice accepts a plain float (raw xlsx cell) or Brazilian
// currency text (CSV exports).
func parsePrice(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		v = normalize.Round2(v)
		return &v
	}
	if v, ok := normalize.Money(s); ok {
		return &v
	}
	return nil
}
