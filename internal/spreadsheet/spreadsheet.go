// Package spreadsheet reads asset and vehicle rows from .xlsx workbooks. The
// first sheet is used; its first row names the columns.
package spreadsheet

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// ErrEmpty is returned for a workbook without sheets or without data rows.
var ErrEmpty = errors.New("spreadsheet is empty")

// record is one data row keyed by header name.
type record struct {
	line   int
	values map[string]string
}

func (r record) get(key string) string {
	return strings.TrimSpace(r.values[key])
}

// readRecords returns the data rows of the first sheet. Blank rows are dropped.
func readRecords(r io.Reader) ([]record, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("opening workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrEmpty
	}

	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("reading sheet %s: %w", sheets[0], err)
	}
	if len(rows) < 2 {
		return nil, ErrEmpty
	}

	header := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		header[i] = strings.TrimSpace(h)
	}

	var records []record
	for i, row := range rows[1:] {
		rec := record{line: i + 2, values: make(map[string]string, len(header))}
		blank := true
		for j, cell := range row {
			if j >= len(header) || header[j] == "" {
				continue
			}
			if strings.TrimSpace(cell) != "" {
				blank = false
			}
			rec.values[header[j]] = cell
		}
		if !blank {
			records = append(records, rec)
		}
	}
	if len(records) == 0 {
		return nil, ErrEmpty
	}
	return records, nil
}

// dateLayouts are tried in order for date cells stored as text.
var dateLayouts = []string{
	"2006-01-02",
	"02/01/2006",
	"2/1/2006",
	"2006/01/02",
	time.RFC3339,
	"2006-01-02 15:04:05",
}

// parseDate accepts an Excel serial date or one of dateLayouts. Empty cells
// give nil.
func parseDate(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	if serial, err := strconv.ParseFloat(s, 64); err == nil {
		t, err := excelize.ExcelDateToTime(serial, false)
		if err != nil {
			return nil, fmt.Errorf("invalid date %q: %w", s, err)
		}
		t = t.UTC()
		return &t, nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			t = t.UTC()
			return &t, nil
		}
	}
	return nil, fmt.Errorf("invalid date %q", s)
}

// parseInt accepts whole numbers, also when written as "10.0" or with
// thousands separators. Empty cells give 0.
func parseInt(s string) (int, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return 0, nil
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != float64(int(f)) {
		return 0, fmt.Errorf("invalid whole number %q", s)
	}
	return int(f), nil
}

// parseLeadingInt reads the number at the start of values like "12 tháng".
func parseLeadingInt(s string) (int, error) {
	s = strings.TrimSpace(s)
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == 0 {
		if s == "" {
			return 0, nil
		}
		return 0, fmt.Errorf("invalid number %q", s)
	}
	return strconv.Atoi(s[:end])
}

// parseMoney reads an amount, ignoring spaces and thousands commas.
func parseMoney(s string) (decimal.Decimal, error) {
	s = strings.NewReplacer(" ", "", ",", "", "₫", "", "đ", "").Replace(strings.TrimSpace(s))
	if s == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q", s)
	}
	return d, nil
}
