package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/shakinm/xlsReader/xls"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"RevBridge/internal/bridge"
	"RevBridge/internal/config"
)

// LoadFile reads and parses the revenue file at path, dispatching on the
// file extension.
func LoadFile(path string, cfg *config.Config) (*bridge.RowSet, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}
	defer f.Close()
	return Parse(f, strings.ToLower(filepath.Ext(path)), cfg)
}

// Parse turns a raw revenue file into a normalized, gap-filled row set ready
// for a bridge run. Strict on shape (missing columns, bad dates and bad
// amounts are errors), lenient on quality (negative amounts are clamped with
// a warning, non-recurring rows are dropped).
func Parse(r io.Reader, ext string, cfg *config.Config) (*bridge.RowSet, error) {
	table, err := readTable(r, ext)
	if err != nil {
		return nil, err
	}
	if len(table) < 2 {
		return nil, &bridge.SchemaError{Column: "file", Reason: "input needs a header row and at least one data row"}
	}

	colIdx, err := mapHeaders(table[0], cfg)
	if err != nil {
		return nil, err
	}

	dimCanonical := make([]string, 0, len(cfg.Columns.DimensionColumns))
	for raw := range cfg.Columns.DimensionColumns {
		if _, ok := colIdx[raw]; ok {
			dimCanonical = append(dimCanonical, raw)
		}
	}
	sort.Strings(dimCanonical)

	rs := &bridge.RowSet{Dimensions: make(map[string]map[string]string)}
	for _, raw := range dimCanonical {
		rs.DimensionColumns = append(rs.DimensionColumns, cfg.Columns.DimensionColumns[raw])
	}

	recurringIdx, hasRecurring := colIdx[config.ColIsRecurring]
	negatives := 0
	nonRecurring := 0

	for i, line := range table[1:] {
		rowNum := i + 1
		cell := func(col string) string {
			idx, ok := colIdx[col]
			if !ok || idx >= len(line) {
				return ""
			}
			return strings.TrimSpace(line[idx])
		}
		if isBlankLine(line) {
			continue
		}
		if hasRecurring && isFalsy(cellAt(line, recurringIdx)) {
			nonRecurring++
			continue
		}

		month, err := parseMonth(cell(config.ColMonth), cfg.Columns.DateFormat)
		if err != nil {
			return nil, &bridge.SchemaError{Column: config.ColMonth, Row: rowNum, Reason: err.Error()}
		}
		arr, err := parseAmount(cell(config.ColARR))
		if err != nil {
			return nil, &bridge.SchemaError{Column: config.ColARR, Row: rowNum, Reason: err.Error()}
		}
		if arr.Sign() < 0 {
			arr = decimal.Zero
			negatives++
		}

		customer := cell(config.ColCustomerID)
		product := cell(config.ColProductID)
		if customer == "" {
			return nil, &bridge.SchemaError{Column: config.ColCustomerID, Row: rowNum, Reason: "empty customer id"}
		}

		keyParts := make([]string, 0, len(cfg.Columns.PrimaryKeyColumns))
		for _, col := range cfg.Columns.PrimaryKeyColumns {
			keyParts = append(keyParts, cell(col))
		}
		key := bridge.MakeKey(keyParts)

		if _, seen := rs.Dimensions[key]; !seen {
			dims := make(map[string]string, len(dimCanonical))
			for _, raw := range dimCanonical {
				dims[cfg.Columns.DimensionColumns[raw]] = cell(raw)
			}
			rs.Dimensions[key] = dims
		}

		rs.Rows = append(rs.Rows, bridge.Row{
			Key:        key,
			CustomerID: customer,
			ProductID:  product,
			Month:      month,
			ARR:        arr,
		})
	}

	if negatives > 0 {
		rs.Warn(bridge.WarnNegativeARR, "%d negative ARR value(s) clamped to zero", negatives)
	}
	if nonRecurring > 0 {
		rs.Warn(bridge.WarnNonRecurring, "%d non-recurring row(s) removed", nonRecurring)
	}
	if len(rs.Rows) == 0 {
		return nil, &bridge.SchemaError{Column: "file", Reason: "no usable data rows after filtering"}
	}

	rs.Sort()
	if err := rs.CheckKeyUniqueness(); err != nil {
		return nil, err
	}
	FillMonthGaps(rs)
	return rs, nil
}

// mapHeaders normalizes the header row, applies the configured renames and
// verifies the required and primary key columns are present.
func mapHeaders(headers []string, cfg *config.Config) (map[string]int, error) {
	mapping := make(map[string]string, len(cfg.Columns.InitialMapping))
	for raw, canonical := range cfg.Columns.InitialMapping {
		mapping[normalizeHeader(raw)] = canonical
	}

	colIdx := make(map[string]int, len(headers))
	for i, h := range headers {
		name := normalizeHeader(h)
		if renamed, ok := mapping[name]; ok {
			name = renamed
		}
		if name == "" {
			continue
		}
		if _, dup := colIdx[name]; !dup {
			colIdx[name] = i
		}
	}

	missingSet := make(map[string]struct{})
	for _, col := range append(append([]string{}, cfg.Columns.RequiredColumns...), cfg.Columns.PrimaryKeyColumns...) {
		if _, ok := colIdx[col]; !ok {
			missingSet[col] = struct{}{}
		}
	}
	missing := make([]string, 0, len(missingSet))
	for col := range missingSet {
		missing = append(missing, col)
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, &bridge.SchemaError{
			Column: strings.Join(missing, ", "),
			Reason: "required column(s) not found after header mapping",
		}
	}
	return colIdx, nil
}

// readTable reads the whole file into rows of cells. CSV straight through,
// .xlsx via excelize, legacy .xls via a temp file (the reader there only
// takes a path).
func readTable(r io.Reader, ext string) ([][]string, error) {
	switch ext {
	case ".csv", "":
		cr := csv.NewReader(r)
		cr.FieldsPerRecord = -1
		rows, err := cr.ReadAll()
		if err != nil {
			return nil, &bridge.SchemaError{Column: "file", Reason: fmt.Sprintf("csv parse failed: %v", err)}
		}
		return rows, nil
	case ".xlsx":
		f, err := excelize.OpenReader(r)
		if err != nil {
			return nil, &bridge.SchemaError{Column: "file", Reason: fmt.Sprintf("xlsx open failed: %v", err)}
		}
		defer f.Close()
		sheet := f.GetSheetName(0)
		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, &bridge.SchemaError{Column: "file", Reason: fmt.Sprintf("xlsx read failed: %v", err)}
		}
		return rows, nil
	case ".xls":
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("read xls: %w", err)
		}
		tmp, err := os.CreateTemp("", "revbridge_*.xls")
		if err != nil {
			return nil, fmt.Errorf("temp xls: %w", err)
		}
		defer os.Remove(tmp.Name())
		if _, err := tmp.Write(data); err != nil {
			tmp.Close()
			return nil, fmt.Errorf("temp xls write: %w", err)
		}
		tmp.Close()
		book, err := xls.OpenFile(tmp.Name())
		if err != nil {
			return nil, &bridge.SchemaError{Column: "file", Reason: fmt.Sprintf("xls open failed: %v", err)}
		}
		sheet, err := book.GetSheet(0)
		if err != nil || sheet == nil {
			return nil, &bridge.SchemaError{Column: "file", Reason: "xls has no readable sheet"}
		}
		var rows [][]string
		for _, xlsRow := range sheet.GetRows() {
			var vals []string
			for _, col := range xlsRow.GetCols() {
				vals = append(vals, col.GetString())
			}
			rows = append(rows, vals)
		}
		return rows, nil
	default:
		return nil, &bridge.SchemaError{Column: "file", Reason: fmt.Sprintf("unsupported file type %q", ext)}
	}
}

// Helper: lower-case, trim, spaces to underscores.
func normalizeHeader(h string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(h)), " ", "_")
}

func cellAt(line []string, idx int) string {
	if idx >= len(line) {
		return ""
	}
	return strings.TrimSpace(line[idx])
}

func isBlankLine(line []string) bool {
	for _, v := range line {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

func isFalsy(v string) bool {
	switch strings.ToLower(v) {
	case "0", "false", "no", "n", "f":
		return true
	}
	return false
}

// parseMonth parses a date in the configured convention and truncates it to
// the first of the month. ISO dates are always accepted.
func parseMonth(v, format string) (time.Time, error) {
	if v == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	layouts := []string{"2006-01-02", "2006-01"}
	if format == config.DateFormatUS {
		layouts = append(layouts, "01/02/2006", "01-02-2006")
	} else {
		layouts = append(layouts, "02/01/2006", "02-01-2006")
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, v); err == nil {
			return bridge.Month(t.Year(), int(t.Month())), nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable date %q for %s format", v, format)
}

// parseAmount parses an ARR cell. Thousands separators are stripped; an
// empty cell counts as zero.
func parseAmount(v string) (decimal.Decimal, error) {
	if v == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(strings.ReplaceAll(v, ",", ""))
	if err != nil {
		return decimal.Zero, fmt.Errorf("unparseable amount %q", v)
	}
	return d, nil
}
