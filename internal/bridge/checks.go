package bridge

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

// Reconciliation tolerances. Sums are compared at two decimal places; the
// per-customer drilldown only reports differences above ten cents to keep
// rounding noise out of the diagnostics.
var (
	reconTolerance    = decimal.NewFromFloat(0.01)
	customerThreshold = decimal.NewFromFloat(0.1)
)

// CheckDirectionality verifies every bucket only carries amounts of its
// expected sign: acquisition and expansion buckets non-negative, contraction
// and churn buckets non-positive.
func CheckDirectionality(rows []BridgeRow) error {
	type bucketCheck struct {
		name     string
		amount   func(BridgeRow) decimal.Decimal
		positive bool
	}
	checks := []bucketCheck{
		{ValueNewCustomer, func(r BridgeRow) decimal.Decimal { return r.Buckets.NewCustomer }, true},
		{ValueCrossSell, func(r BridgeRow) decimal.Decimal { return r.Buckets.CrossSell }, true},
		{ValueUpsell, func(r BridgeRow) decimal.Decimal { return r.Buckets.Upsell }, true},
		{ValueChurn, func(r BridgeRow) decimal.Decimal { return r.Buckets.Churn }, false},
		{ValueDowngrade, func(r BridgeRow) decimal.Decimal { return r.Buckets.Downgrade }, false},
		{ValueDownsell, func(r BridgeRow) decimal.Decimal { return r.Buckets.Downsell }, false},
	}
	for _, c := range checks {
		var bad *DirectionalityError
		for _, r := range rows {
			v := c.amount(r)
			wrong := (c.positive && v.Sign() < 0) || (!c.positive && v.Sign() > 0)
			if !wrong {
				continue
			}
			if bad == nil {
				bad = &DirectionalityError{Bucket: c.name, SampleKey: r.Key, SampleMonth: r.Month}
			}
			bad.Count++
		}
		if bad != nil {
			return bad
		}
	}
	return nil
}

// CheckWaterfallSums verifies the long table is internally consistent: for
// each key, everything except the EoP lines must cancel out. BoP plus the
// bucket deltas equals EoP (which EoP_reversed negates), and the retention
// lines cancel against their reversed twins.
func CheckWaterfallSums(wf []WaterfallRow) error {
	sums := make(map[string]decimal.Decimal)
	for _, w := range wf {
		if w.ValueType == ValueEoP {
			continue
		}
		sums[w.Key] = sums[w.Key].Add(w.Value)
	}
	var offenders []string
	for key, sum := range sums {
		if sum.Round(2).Abs().GreaterThan(reconTolerance) {
			offenders = append(offenders, fmt.Sprintf("%s (%s)", key, sum.Round(2)))
		}
	}
	if len(offenders) > 0 {
		sort.Strings(offenders)
		return &ReconciliationError{
			Check:     "waterfall_sums",
			Detail:    "waterfall rows do not cancel out per key",
			Offenders: offenders,
		}
	}
	return nil
}

// CheckAnnualTotals verifies the waterfall EoP lines add back to the raw
// input revenue year by year. On a mismatch the error carries the customers
// whose totals moved, which is almost always where the bad data is.
func CheckAnnualTotals(input *RowSet, wf []WaterfallRow, warnings *[]Warning) error {
	inYear := make(map[int]decimal.Decimal)
	inCustYear := make(map[string]decimal.Decimal)
	for _, r := range input.Rows {
		y := r.Month.Year()
		inYear[y] = inYear[y].Add(r.ARR)
		ck := fmt.Sprintf("%s/%d", r.CustomerID, y)
		inCustYear[ck] = inCustYear[ck].Add(r.ARR)
	}

	outYear := make(map[int]decimal.Decimal)
	outCustYear := make(map[string]decimal.Decimal)
	for _, w := range wf {
		if w.ValueType != ValueEoP {
			continue
		}
		y := w.Month.Year()
		outYear[y] = outYear[y].Add(w.Value)
		ck := fmt.Sprintf("%s/%d", w.CustomerID, y)
		outCustYear[ck] = outCustYear[ck].Add(w.Value)
	}

	var badYears []string
	for y, total := range inYear {
		if total.Round(2).Sub(outYear[y].Round(2)).Abs().GreaterThan(reconTolerance) {
			badYears = append(badYears, fmt.Sprintf("%d (input %s vs bridge %s)", y, total.Round(2), outYear[y].Round(2)))
		}
	}
	for y, total := range outYear {
		if _, ok := inYear[y]; !ok && !total.Round(2).IsZero() {
			badYears = append(badYears, fmt.Sprintf("%d (input 0 vs bridge %s)", y, total.Round(2)))
		}
	}
	if len(badYears) == 0 {
		return nil
	}
	sort.Strings(badYears)

	var drill []string
	for ck, total := range inCustYear {
		diff := total.Sub(outCustYear[ck])
		if diff.Abs().GreaterThan(customerThreshold) {
			drill = append(drill, fmt.Sprintf("%s diff %s", ck, diff.Round(2)))
		}
	}
	sort.Strings(drill)
	if warnings != nil {
		for _, d := range drill {
			*warnings = append(*warnings, Warning{Kind: WarnCustomerTotals, Detail: d})
		}
	}
	return &ReconciliationError{
		Check:     "annual_totals",
		Detail:    fmt.Sprintf("yearly revenue does not match the bridge: %v", badYears),
		Offenders: drill,
	}
}
