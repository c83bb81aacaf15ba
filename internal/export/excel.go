package export

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/xuri/excelize/v2"

	"RevBridge/internal/bridge"
)

// WriteWorkbook writes the run into a single spreadsheet: the waterfall on
// one sheet, the flat table on another, and a small summary sheet. Amounts
// go in as numbers so the sheets pivot cleanly.
func WriteWorkbook(path string, res *bridge.Result, dimensionColumns []string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	const wfSheet = "Waterfall"
	f.SetSheetName("Sheet1", wfSheet)
	if err := writeRow(f, wfSheet, 1, toAny(waterfallHeader)); err != nil {
		return err
	}
	for i, r := range res.Waterfall {
		row := []interface{}{
			r.Key, r.CustomerID, r.ProductID,
			r.Month.Format(monthLayout), r.ValueType, r.Value.InexactFloat64(),
		}
		if err := writeRow(f, wfSheet, i+2, row); err != nil {
			return err
		}
	}

	const flatSheet = "Flat"
	if _, err := f.NewSheet(flatSheet); err != nil {
		return err
	}
	header := append(append([]string{}, flatHeader...), dimensionColumns...)
	if err := writeRow(f, flatSheet, 1, toAny(header)); err != nil {
		return err
	}
	for i, r := range res.Flat {
		row := []interface{}{
			r.Key, r.CustomerID, r.CustomerName, r.ProductID, r.ProductFamily,
			r.Month.Format(monthLayout),
			r.ARR.InexactFloat64(), r.ARRBoP.InexactFloat64(), r.Delta.InexactFloat64(),
			r.Buckets.NewCustomer.InexactFloat64(), r.Buckets.Churn.InexactFloat64(),
			r.Buckets.CrossSell.InexactFloat64(), r.Buckets.Downgrade.InexactFloat64(),
			r.Buckets.Upsell.InexactFloat64(), r.Buckets.Downsell.InexactFloat64(),
			boolFlag(r.Flags.ExistingCustomer), boolFlag(r.Flags.ExistingProduct),
			r.CohortMonth.Format(monthLayout), r.CohortYear, r.TenureMonths,
		}
		for _, d := range r.Dimensions {
			row = append(row, d)
		}
		if err := writeRow(f, flatSheet, i+2, row); err != nil {
			return err
		}
	}

	const sumSheet = "Summary"
	if _, err := f.NewSheet(sumSheet); err != nil {
		return err
	}
	s := res.Summary
	lines := [][]interface{}{
		{"Customers", s.Customers},
		{"Products", s.Products},
		{"Segments", s.Segments},
		{"First month", s.FirstMonth.Format(monthLayout)},
		{"Last month", s.LastMonth.Format(monthLayout)},
		{"Active customers, trailing 12m", s.ActiveTrailing12M},
	}
	years := make([]int, 0, len(s.RevenueByYear))
	for y := range s.RevenueByYear {
		years = append(years, y)
	}
	sort.Ints(years)
	for _, y := range years {
		lines = append(lines, []interface{}{fmt.Sprintf("Revenue %d", y), s.RevenueByYear[y].InexactFloat64()})
	}
	for i, line := range lines {
		if err := writeRow(f, sumSheet, i+1, line); err != nil {
			return err
		}
	}

	return f.SaveAs(path)
}

func writeRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheet, cell, &values)
}

func toAny(ss []string) []interface{} {
	out := make([]interface{}, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}
