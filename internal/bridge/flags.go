package bridge

import "time"

// inWindow reports whether month falls inside the comparison window opened
// by an event at anchor: the event month itself and every month until the
// window rolls past it. Anchors outside the data (zero time) never match.
func inWindow(policy PeriodPolicy, anchor, month time.Time) bool {
	if anchor.IsZero() {
		return false
	}
	d := MonthsBetween(anchor, month)
	return d >= 0 && d < policy.WindowFrom(anchor)
}

// Classify assigns the movement flags row by row. Order matters and is what
// guarantees mutual exclusivity:
//
//  1. customer churn, then new customer for rows not already churn
//  2. product churn, then cross-sell, both only for rows that carry no
//     customer-level flag
//  3. upsell/downsell for rows with no flag at all, gated on both existing
//     flags, split on the delta sign
//
// Churn is evaluated before the corresponding acquisition flag at each level
// so a short-lived entity whose start and churn windows overlap lands in the
// churn bucket, keeping the bucket signs meaningful.
func Classify(rows []BridgeRow, ls Lifespans, policy PeriodPolicy) {
	for i := range rows {
		r := &rows[i]
		cust := ls.Customer[r.CustomerID]
		prod := ls.Product[productKey(r.CustomerID, r.ProductID)]

		f := FlagSet{}
		f.CustomerChurn = inWindow(policy, cust.Churn, r.Month)
		f.NewCustomer = !f.CustomerChurn && inWindow(policy, cust.Start, r.Month)

		if !f.CustomerChurn && !f.NewCustomer {
			f.ProductChurn = inWindow(policy, prod.Churn, r.Month)
			f.CrossSell = !f.ProductChurn && inWindow(policy, prod.Start, r.Month)
		}

		f.ExistingCustomer = existedBefore(policy, cust.Start, r.Month)
		f.ExistingProduct = existedBefore(policy, prod.Start, r.Month)

		if !f.CustomerChurn && !f.NewCustomer && !f.ProductChurn && !f.CrossSell &&
			f.ExistingCustomer && f.ExistingProduct {
			switch r.Delta.Sign() {
			case 1:
				f.Upsell = true
			case -1:
				f.Downsell = true
			}
		}
		r.Flags = f
	}
}

// existedBefore reports whether the entity started long enough ago that its
// start no longer falls in the comparison window, i.e. it is "existing" for
// upsell/downsell purposes.
func existedBefore(policy PeriodPolicy, start, month time.Time) bool {
	if start.IsZero() {
		return false
	}
	return MonthsBetween(start, month) >= policy.WindowFrom(start)
}
