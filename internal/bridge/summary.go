package bridge

import (
	"log"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// InputSummary is a quick profile of the input set, logged before the run so
// a surprising bridge can be sanity-checked against what went in.
type InputSummary struct {
	Customers         int
	Products          int
	Segments          int
	FirstMonth        time.Time
	LastMonth         time.Time
	RevenueByYear     map[int]decimal.Decimal
	ActiveTrailing12M int
}

// Summarize profiles the input rows. "Active" counts customers with revenue
// in the twelve months up to the last input month.
func Summarize(rs *RowSet) InputSummary {
	s := InputSummary{RevenueByYear: make(map[int]decimal.Decimal)}
	customers := make(map[string]struct{})
	products := make(map[string]struct{})
	segments := make(map[string]struct{})
	active := make(map[string]struct{})

	s.FirstMonth, s.LastMonth = rs.MonthSpan()
	cutoff := s.LastMonth.AddDate(0, -11, 0)
	for _, r := range rs.Rows {
		customers[r.CustomerID] = struct{}{}
		products[r.ProductID] = struct{}{}
		segments[r.Key] = struct{}{}
		y := r.Month.Year()
		s.RevenueByYear[y] = s.RevenueByYear[y].Add(r.ARR)
		if !r.ARR.IsZero() && !r.Month.Before(cutoff) {
			active[r.CustomerID] = struct{}{}
		}
	}
	s.Customers = len(customers)
	s.Products = len(products)
	s.Segments = len(segments)
	s.ActiveTrailing12M = len(active)
	return s
}

// Log writes the summary through the standard logger.
func (s InputSummary) Log() {
	log.Printf("[Bridge] input: %d customers, %d products, %d segments, %s to %s, %d active in trailing 12m",
		s.Customers, s.Products, s.Segments,
		s.FirstMonth.Format("2006-01"), s.LastMonth.Format("2006-01"), s.ActiveTrailing12M)
	years := make([]int, 0, len(s.RevenueByYear))
	for y := range s.RevenueByYear {
		years = append(years, y)
	}
	sort.Ints(years)
	for _, y := range years {
		log.Printf("[Bridge] revenue %d: %s", y, s.RevenueByYear[y].Round(2))
	}
}
