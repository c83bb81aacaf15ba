package bridge

import (
	"time"

	"github.com/shopspring/decimal"
)

// Waterfall value types, in the order they appear in the long-format output.
// The reversed variants carry the negated amount so stacked visualizations
// can render retention both ways from a single table.
const (
	ValueBoP         = "BoP ARR"
	ValueChurn       = "Churn"
	ValueDownsell    = "Downsell"
	ValueDowngrade   = "Downgrade"
	ValueUpsell      = "Upsell"
	ValueNewCustomer = "New Customers"
	ValueCrossSell   = "Cross-sell"
	ValueEoP         = "EoP ARR"
	ValueNRR         = "NRR"
	ValueGRR         = "GRR"
	ValueNRRReversed = "NRR_reversed"
	ValueGRRReversed = "GRR_reversed"
	ValueEoPReversed = "EoP_reversed"
)

// FlatRow is one line of the flattened reporting table: the enriched bridge
// row plus cohort columns and the descriptive dimensions joined back on.
type FlatRow struct {
	Key           string
	CustomerID    string
	ProductID     string
	Month         time.Time
	ARR           decimal.Decimal
	ARRBoP        decimal.Decimal
	Delta         decimal.Decimal
	Buckets       BucketAmounts
	Flags         FlagSet
	CohortMonth   time.Time
	CohortYear    int
	TenureMonths  int
	CustomerName  string
	ProductFamily string
	Dimensions    []string // aligned with RowSet.DimensionColumns
}

// WaterfallRow is one line of the long-format waterfall table.
type WaterfallRow struct {
	Key        string
	CustomerID string
	ProductID  string
	Month      time.Time
	ValueType  string
	Value      decimal.Decimal
}

// BuildFlat assembles the flattened output. Cohort columns come from the
// customer lifespan; Customer_name and Product_family fall back to the raw
// IDs when the input carried no such columns.
func BuildFlat(rows []BridgeRow, rs *RowSet, ls Lifespans) []FlatRow {
	out := make([]FlatRow, 0, len(rows))
	for _, r := range rows {
		cust := ls.Customer[r.CustomerID]
		fr := FlatRow{
			Key:          r.Key,
			CustomerID:   r.CustomerID,
			ProductID:    r.ProductID,
			Month:        r.Month,
			ARR:          r.ARR,
			ARRBoP:       r.ARRBoP,
			Delta:        r.Delta,
			Buckets:      r.Buckets,
			Flags:        r.Flags,
			CohortMonth:  cust.Start,
			CohortYear:   cust.Start.Year(),
			TenureMonths: MonthsBetween(cust.Start, r.Month),
		}
		fr.CustomerName = r.CustomerID
		fr.ProductFamily = r.ProductID
		dims := rs.Dimensions[r.Key]
		fr.Dimensions = make([]string, len(rs.DimensionColumns))
		for i, col := range rs.DimensionColumns {
			fr.Dimensions[i] = dims[col]
			switch col {
			case "Customer_name":
				if dims[col] != "" {
					fr.CustomerName = dims[col]
				}
			case "Product_family":
				if dims[col] != "" {
					fr.ProductFamily = dims[col]
				}
			}
		}
		out = append(out, fr)
	}
	return out
}

// BuildWaterfall melts the bridge rows into the long format: one line per
// non-zero value type per (key, month). NRR sums every bucket over BoP; GRR
// excludes the expansion buckets.
func BuildWaterfall(rows []BridgeRow) []WaterfallRow {
	out := make([]WaterfallRow, 0, len(rows)*4)
	for _, r := range rows {
		grr := r.ARRBoP.Add(r.Buckets.Churn).Add(r.Buckets.Downsell).Add(r.Buckets.Downgrade)
		nrr := grr.Add(r.Buckets.Upsell).Add(r.Buckets.CrossSell)

		emit := func(valueType string, v decimal.Decimal) {
			if v.IsZero() {
				return
			}
			out = append(out, WaterfallRow{
				Key:        r.Key,
				CustomerID: r.CustomerID,
				ProductID:  r.ProductID,
				Month:      r.Month,
				ValueType:  valueType,
				Value:      v,
			})
		}
		emit(ValueBoP, r.ARRBoP)
		emit(ValueChurn, r.Buckets.Churn)
		emit(ValueDownsell, r.Buckets.Downsell)
		emit(ValueDowngrade, r.Buckets.Downgrade)
		emit(ValueUpsell, r.Buckets.Upsell)
		emit(ValueNewCustomer, r.Buckets.NewCustomer)
		emit(ValueCrossSell, r.Buckets.CrossSell)
		emit(ValueEoP, r.ARR)
		emit(ValueNRR, nrr)
		emit(ValueGRR, grr)
		emit(ValueNRRReversed, nrr.Neg())
		emit(ValueGRRReversed, grr.Neg())
		emit(ValueEoPReversed, r.ARR.Neg())
	}
	return out
}
