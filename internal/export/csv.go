package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"RevBridge/internal/bridge"
)

const monthLayout = "2006-01-02"

// flatHeader is the fixed part of the flat output; configured dimension
// columns are appended after it.
var flatHeader = []string{
	"Primary_Key", "Customer_ID", "Customer_name", "Product_ID", "Product_family",
	"Month", "ARR", "ARR_BOP", "ARR_Delta",
	"Delta_New_Customer", "Delta_Churn", "Delta_Cross_Sell", "Delta_Downgrade",
	"Delta_Upsell", "Delta_Downsell",
	"Existing_Customer", "Existing_Product",
	"Customer_Cohort", "Customer_Cohort_Year", "Customer_Tenure",
}

var waterfallHeader = []string{
	"Primary_Key", "Customer_ID", "Product_ID", "Month", "Value_Type", "Value",
}

// WriteFlatCSV writes the flattened bridge table.
func WriteFlatCSV(path string, flat []bridge.FlatRow, dimensionColumns []string) error {
	return writeCSV(path, append(append([]string{}, flatHeader...), dimensionColumns...), len(flat), func(i int) []string {
		r := flat[i]
		rec := []string{
			r.Key, r.CustomerID, r.CustomerName, r.ProductID, r.ProductFamily,
			r.Month.Format(monthLayout),
			r.ARR.String(), r.ARRBoP.String(), r.Delta.String(),
			r.Buckets.NewCustomer.String(), r.Buckets.Churn.String(), r.Buckets.CrossSell.String(),
			r.Buckets.Downgrade.String(), r.Buckets.Upsell.String(), r.Buckets.Downsell.String(),
			boolFlag(r.Flags.ExistingCustomer), boolFlag(r.Flags.ExistingProduct),
			r.CohortMonth.Format(monthLayout), fmt.Sprintf("%d", r.CohortYear), fmt.Sprintf("%d", r.TenureMonths),
		}
		return append(rec, r.Dimensions...)
	})
}

// WriteWaterfallCSV writes the long-format waterfall table.
func WriteWaterfallCSV(path string, wf []bridge.WaterfallRow) error {
	return writeCSV(path, waterfallHeader, len(wf), func(i int) []string {
		r := wf[i]
		return []string{
			r.Key, r.CustomerID, r.ProductID,
			r.Month.Format(monthLayout), r.ValueType, r.Value.String(),
		}
	})
}

func writeCSV(path string, header []string, n int, record func(int) []string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		if err := w.Write(record(i)); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func boolFlag(b bool) string {
	if b {
		return "1"
	}
	return "0"
}
