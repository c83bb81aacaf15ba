package ingest

import (
	"time"

	"github.com/shopspring/decimal"

	"RevBridge/internal/bridge"
)

// FillMonthGaps appends zero-ARR rows so every segment key carries a row for
// every month from the first input month through twelve months past the
// last. The twelve-month tail is what lets churn appear in the bridge for
// entities still active at the data edge; in-span gaps are what make the
// fixed-month BoP shift land on a real row.
func FillMonthGaps(rs *bridge.RowSet) {
	if len(rs.Rows) == 0 {
		return
	}
	type keyMonth struct {
		key   string
		month time.Time
	}
	present := make(map[keyMonth]struct{}, len(rs.Rows))
	sample := make(map[string]bridge.Row)
	for _, r := range rs.Rows {
		present[keyMonth{r.Key, r.Month}] = struct{}{}
		if _, ok := sample[r.Key]; !ok {
			sample[r.Key] = r
		}
	}

	min, max := rs.MonthSpan()
	horizon := max.AddDate(0, 12, 0)
	for _, key := range rs.Keys() {
		ref := sample[key]
		for m := min; !m.After(horizon); m = m.AddDate(0, 1, 0) {
			if _, ok := present[keyMonth{key, m}]; ok {
				continue
			}
			rs.Rows = append(rs.Rows, bridge.Row{
				Key:        key,
				CustomerID: ref.CustomerID,
				ProductID:  ref.ProductID,
				Month:      m,
				ARR:        decimal.Zero,
			})
		}
	}
	rs.Sort()
}
