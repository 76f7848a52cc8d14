// Package excel imports market price observations from the xlsx books
// the market-data pipeline distributes, one sheet per product plus a
// combined sheet.
package excel

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"oiltrading/core/marketdata"
	"oiltrading/internal/errors"
)

// Required columns; header names follow the market-data book layout.
const (
	colProductCode = "ProductCode"
	colProductName = "ProductName"
	colPriceDate   = "PriceDate"
	colPrice       = "Price"
	colCurrency    = "Currency"
	colUnit        = "Unit"
	colSource      = "Source"
)

var dateLayouts = []string{"2006-01-02", "01-02-06", time.RFC3339}

// Load reads every sheet of the workbook and returns the observations
// grouped by product code, each series sorted chronologically. Sheets
// without the expected header are skipped; malformed rows fail the load.
func Load(path string) (map[string]marketdata.Series, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.TypeValidation, "open workbook "+path, err)
	}
	defer f.Close()

	out := make(map[string]marketdata.Series)
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, errors.Wrap(errors.TypeInternal, "read sheet "+sheet, err)
		}
		if len(rows) < 2 {
			continue
		}

		columns := headerIndex(rows[0])
		if !hasRequired(columns) {
			continue
		}

		for i, row := range rows[1:] {
			price, err := parseRow(columns, row)
			if err != nil {
				return nil, err.WithContext("sheet", sheet).WithContext("row", i+2)
			}
			if price == nil {
				continue
			}
			out[price.ProductCode] = append(out[price.ProductCode], *price)
		}
	}

	for code := range out {
		out[code].SortByDate()
	}
	return out, nil
}

func headerIndex(header []string) map[string]int {
	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.TrimSpace(name)] = i
	}
	return columns
}

func hasRequired(columns map[string]int) bool {
	for _, name := range []string{colProductCode, colPriceDate, colPrice, colCurrency} {
		if _, ok := columns[name]; !ok {
			return false
		}
	}
	return true
}

func cell(columns map[string]int, row []string, name string) string {
	i, ok := columns[name]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// parseRow converts one sheet row to an observation. Fully empty rows
// return nil without error.
func parseRow(columns map[string]int, row []string) (*marketdata.Price, *errors.Error) {
	code := cell(columns, row, colProductCode)
	dateText := cell(columns, row, colPriceDate)
	priceText := cell(columns, row, colPrice)
	if code == "" && dateText == "" && priceText == "" {
		return nil, nil
	}
	if code == "" {
		return nil, errors.Validation("row missing product code")
	}

	date, ok := parseDate(dateText)
	if !ok {
		return nil, errors.Validationf("unparseable price date %q", dateText)
	}

	value, err := decimal.NewFromString(priceText)
	if err != nil {
		return nil, errors.Validationf("unparseable price %q", priceText)
	}

	return &marketdata.Price{
		ProductCode: strings.ToUpper(code),
		ProductName: cell(columns, row, colProductName),
		Date:        date,
		Value:       value,
		Currency:    strings.ToUpper(cell(columns, row, colCurrency)),
		Unit:        strings.ToUpper(cell(columns, row, colUnit)),
		Source:      cell(columns, row, colSource),
	}, nil
}

func parseDate(text string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, text); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
