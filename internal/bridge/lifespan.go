package bridge

import (
	"time"

	"github.com/shopspring/decimal"
)

// Lifespan is the active revenue span of one entity. Start and End are the
// first and last month with non-zero netted ARR; Churn is the month after
// End. An entity still active at the end of the data simply churns in the
// month after its last observed revenue, which is what materializes churn
// rows at the data edge.
type Lifespan struct {
	Start time.Time
	End   time.Time
	Churn time.Time
}

// Lifespans holds spans at the three granularities the classifier needs:
// whole customer, customer x product, and the segment (primary key) grain.
type Lifespans struct {
	Customer map[string]Lifespan
	Product  map[string]Lifespan
	Segment  map[string]Lifespan
}

// productKey identifies a product within one customer.
func productKey(customerID, productID string) string {
	return customerID + KeySeparator + productID
}

// ComputeLifespans derives entity spans from netted non-zero revenue months.
// Netting first sums ARR per entity and month so that a booking and its
// correction (e.g. +100 and -100 on two rows) cancel instead of counting as
// an active month.
func ComputeLifespans(rs *RowSet) Lifespans {
	ls := Lifespans{
		Customer: spansFor(rs, func(r Row) string { return r.CustomerID }),
		Product:  spansFor(rs, func(r Row) string { return productKey(r.CustomerID, r.ProductID) }),
		Segment:  spansFor(rs, func(r Row) string { return r.Key }),
	}
	return ls
}

func spansFor(rs *RowSet, entity func(Row) string) map[string]Lifespan {
	type monthKey struct {
		id    string
		month time.Time
	}
	netted := make(map[monthKey]decimal.Decimal)
	for _, r := range rs.Rows {
		k := monthKey{id: entity(r), month: r.Month}
		netted[k] = netted[k].Add(r.ARR)
	}

	spans := make(map[string]Lifespan)
	for k, sum := range netted {
		if sum.IsZero() {
			continue
		}
		span, ok := spans[k.id]
		if !ok {
			spans[k.id] = Lifespan{Start: k.month, End: k.month}
			continue
		}
		if k.month.Before(span.Start) {
			span.Start = k.month
		}
		if k.month.After(span.End) {
			span.End = k.month
		}
		spans[k.id] = span
	}
	for id, span := range spans {
		span.Churn = span.End.AddDate(0, 1, 0)
		spans[id] = span
	}
	return spans
}

// TrimToLifespan drops rows outside each segment's reporting window: before
// the segment's first revenue month, or beyond the point where its churn can
// still appear in the bridge (one full window past the last revenue month).
// Keys that never had revenue disappear entirely.
func TrimToLifespan(rs *RowSet, ls Lifespans, policy PeriodPolicy) *RowSet {
	kept := make([]Row, 0, len(rs.Rows))
	for _, r := range rs.Rows {
		seg, ok := ls.Segment[r.Key]
		if !ok {
			continue
		}
		if r.Month.Before(seg.Start) {
			continue
		}
		if policy.Static() {
			if r.Month.After(seg.End.AddDate(0, policy.Lookback(), 0)) {
				continue
			}
		} else if !r.Month.Before(policy.StartOfNextPeriod(seg.End)) {
			continue
		}
		kept = append(kept, r)
	}
	out := &RowSet{
		Rows:             kept,
		DimensionColumns: rs.DimensionColumns,
		Dimensions:       rs.Dimensions,
		Warnings:         rs.Warnings,
	}
	return out
}
