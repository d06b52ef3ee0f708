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

package sink

import (
	"archive/zip"
	"fmt"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"github.com/tassfersilva2026/buscasmilhas-scraper/pkg/fare"
	"github.com/tassfersilva2026/buscasmilhas-scraper/pkg/metrics"
)

// Excel appends records to one sheet of an .xlsx workbook. Every Append
// opens, writes and saves the file, so a crash mid-run loses at most the
// row in flight.
type Excel struct {
	path  string
	sheet string
}

// NewExcel returns an Excel sink writing to sheet inside path. The
// workbook is created lazily on the first Append.
func NewExcel(path, sheet string) *Excel {
	return &Excel{path: path, sheet: sheet}
}

// Path returns the workbook location.
func (s *Excel) Path() string {
	return s.path
}

// Append writes one record as the next row and saves the workbook.
func (s *Excel) Append(rec fare.FareRecord) error {
	if err := s.Ensure(); err != nil {
		return err
	}

	f, err := excelize.OpenFile(s.path)
	if err != nil {
		return fmt.Errorf("opening workbook %s: %w", s.path, err)
	}
	defer f.Close()

	rows, err := f.GetRows(s.sheet)
	if err != nil {
		return fmt.Errorf("reading sheet %s: %w", s.sheet, err)
	}
	rowIdx := len(rows) + 1

	values := rowValues(rec)
	start, err := excelize.CoordinatesToCellName(1, rowIdx)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(s.sheet, start, &values); err != nil {
		return fmt.Errorf("writing row %d: %w", rowIdx, err)
	}

	styles, err := newCellStyles(f)
	if err != nil {
		return err
	}
	for col := 1; col <= len(Headers); col++ {
		cell, err := excelize.CoordinatesToCellName(col, rowIdx)
		if err != nil {
			return err
		}
		style := styles.center
		if values[col-1] != nil {
			switch col {
			case 1, 4:
				style = styles.date
			case 2, 5, 6:
				style = styles.clock
			case 7, 8, 9, 10, 11, 12:
				style = styles.money
			}
		}
		if err := f.SetCellStyle(s.sheet, cell, cell, style); err != nil {
			return err
		}
	}

	if err := f.Save(); err != nil {
		return fmt.Errorf("saving workbook %s: %w", s.path, err)
	}
	metrics.RowsAppendedTotal.WithLabelValues("excel").Inc()
	return nil
}

// Close is a no-op: Append leaves nothing buffered.
func (s *Excel) Close() error {
	return nil
}

// Ensure guarantees the workbook exists, is a readable xlsx and carries
// the target sheet with its header row. A corrupt file (usually a run
// killed mid-save) is replaced rather than appended to.
func (s *Excel) Ensure() error {
	if !validWorkbook(s.path) {
		return s.create()
	}

	f, err := excelize.OpenFile(s.path)
	if err != nil {
		return s.create()
	}
	defer f.Close()

	idx, err := f.GetSheetIndex(s.sheet)
	if err != nil {
		return err
	}
	if idx >= 0 {
		return nil
	}
	if _, err := f.NewSheet(s.sheet); err != nil {
		return err
	}
	if err := writeHeader(f, s.sheet); err != nil {
		return err
	}
	return f.Save()
}

func (s *Excel) create() error {
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", s.sheet); err != nil {
		return err
	}
	if err := writeHeader(f, s.sheet); err != nil {
		return err
	}
	return f.SaveAs(s.path)
}

func writeHeader(f *excelize.File, sheet string) error {
	hdr := make([]interface{}, len(Headers))
	for i, h := range Headers {
		hdr[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &hdr); err != nil {
		return err
	}

	styles, err := newCellStyles(f)
	if err != nil {
		return err
	}
	for i, w := range columnWidths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(sheet, col, col, w); err != nil {
			return err
		}
		cell := col + "1"
		if err := f.SetCellStyle(sheet, cell, cell, styles.center); err != nil {
			return err
		}
	}
	return nil
}

// validWorkbook checks the xlsx zip container for its content-types
// part, the cheapest way to tell a truncated save from a real workbook.
func validWorkbook(path string) bool {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return false
	}
	defer zr.Close()
	for _, zf := range zr.File {
		if zf.Name == "[Content_Types].xml" {
			return true
		}
	}
	return false
}

type cellStyles struct {
	date   int
	clock  int
	money  int
	center int
}

func newCellStyles(f *excelize.File) (cellStyles, error) {
	center := &excelize.Alignment{Horizontal: "center", Vertical: "center"}
	dateFmt := "DD/MM/YYYY"
	clockFmt := "HH:MM:SS"
	moneyFmt := "#,##0.00"

	var cs cellStyles
	var err error
	if cs.date, err = f.NewStyle(&excelize.Style{CustomNumFmt: &dateFmt, Alignment: center}); err != nil {
		return cs, err
	}
	if cs.clock, err = f.NewStyle(&excelize.Style{CustomNumFmt: &clockFmt, Alignment: center}); err != nil {
		return cs, err
	}
	if cs.money, err = f.NewStyle(&excelize.Style{CustomNumFmt: &moneyFmt, Alignment: center}); err != nil {
		return cs, err
	}
	if cs.center, err = f.NewStyle(&excelize.Style{Alignment: center}); err != nil {
		return cs, err
	}
	return cs, nil
}
