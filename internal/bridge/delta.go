package bridge

import (
	"github.com/shopspring/decimal"
)

// FlagSet carries the mutually exclusive movement flags plus the two
// auxiliary existing flags. At most one of the six movement flags is set on
// any row; the existing flags are descriptive and may coexist with anything.
type FlagSet struct {
	NewCustomer   bool
	CustomerChurn bool
	CrossSell     bool
	ProductChurn  bool
	Upsell        bool
	Downsell      bool

	ExistingCustomer bool
	ExistingProduct  bool
}

// BucketAmounts is the ARR delta split into the named waterfall buckets.
// Exactly one bucket carries the row's delta (or none, when the delta is
// zero or the row is in no window). Downgrade is the reporting name for
// product churn.
type BucketAmounts struct {
	NewCustomer decimal.Decimal
	Churn       decimal.Decimal
	CrossSell   decimal.Decimal
	Downgrade   decimal.Decimal
	Upsell      decimal.Decimal
	Downsell    decimal.Decimal
}

// BridgeRow is a trimmed input row enriched with its beginning-of-period
// ARR, the delta against it, and the classified movement.
type BridgeRow struct {
	Row
	ARRBoP  decimal.Decimal
	Delta   decimal.Decimal
	Flags   FlagSet
	Buckets BucketAmounts
}

// ComputeDeltas attaches beginning-of-period ARR and the delta to every row.
// Fixed windows look up the same key N months earlier; calendar windows look
// up the key at the start month of the current period. Missing months (before
// the segment existed) count as zero.
func ComputeDeltas(rs *RowSet, policy PeriodPolicy) []BridgeRow {
	idx := arrIndex(rs.Rows)
	out := make([]BridgeRow, 0, len(rs.Rows))
	for _, r := range rs.Rows {
		var anchor = policy.StartOfCurrentPeriod(r.Month)
		var bop decimal.Decimal
		if byMonth, ok := idx[r.Key]; ok {
			bop = byMonth[anchor]
		}
		out = append(out, BridgeRow{
			Row:    r,
			ARRBoP: bop,
			Delta:  r.ARR.Sub(bop),
		})
	}
	return out
}

// ApplyBuckets multiplies each movement flag into its bucket amount.
func ApplyBuckets(rows []BridgeRow) {
	for i := range rows {
		r := &rows[i]
		r.Buckets = BucketAmounts{}
		switch {
		case r.Flags.NewCustomer:
			r.Buckets.NewCustomer = r.Delta
		case r.Flags.CustomerChurn:
			r.Buckets.Churn = r.Delta
		case r.Flags.CrossSell:
			r.Buckets.CrossSell = r.Delta
		case r.Flags.ProductChurn:
			r.Buckets.Downgrade = r.Delta
		case r.Flags.Upsell:
			r.Buckets.Upsell = r.Delta
		case r.Flags.Downsell:
			r.Buckets.Downsell = r.Delta
		}
	}
}
