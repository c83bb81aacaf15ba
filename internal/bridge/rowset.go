package bridge

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// KeySeparator joins primary key column values into a single segment key.
const KeySeparator = "|"

// Row is one (segment, month) revenue observation. Key is the concatenation
// of the configured primary key columns and identifies the finest reporting
// grain of the bridge.
type Row struct {
	Key        string
	CustomerID string
	ProductID  string
	Month      time.Time
	ARR        decimal.Decimal
}

// RowSet is the normalized input to a bridge run: rows at segment grain plus
// the descriptive columns split off into a per-key dimension table so the
// heavy pipeline stages only carry the numeric core.
type RowSet struct {
	Rows []Row

	// DimensionColumns holds the display names in output order; Dimensions
	// maps segment key -> display name -> value.
	DimensionColumns []string
	Dimensions       map[string]map[string]string

	// Warnings collected while the set was built (clamped amounts, removed
	// non-recurring rows). Carried through onto the run result.
	Warnings []Warning
}

// MakeKey joins primary key values in column order.
func MakeKey(values []string) string {
	return strings.Join(values, KeySeparator)
}

// Sort orders rows by (key, month). Every stage assumes this order, and it is
// what makes outputs deterministic for identical inputs.
func (rs *RowSet) Sort() {
	sort.SliceStable(rs.Rows, func(i, j int) bool {
		if rs.Rows[i].Key != rs.Rows[j].Key {
			return rs.Rows[i].Key < rs.Rows[j].Key
		}
		return rs.Rows[i].Month.Before(rs.Rows[j].Month)
	})
}

// CheckKeyUniqueness verifies there is at most one row per (key, month).
// Duplicates mean the configured primary key columns do not identify the
// data grain and every downstream number would silently double count.
func (rs *RowSet) CheckKeyUniqueness() error {
	seen := make(map[string]struct{}, len(rs.Rows))
	for _, r := range rs.Rows {
		k := r.Key + KeySeparator + r.Month.Format("2006-01")
		if _, dup := seen[k]; dup {
			return &SchemaError{
				Column: "primary_key",
				Reason: fmt.Sprintf("duplicate row for key %s in %s; primary_key_columns do not match the data grain", r.Key, r.Month.Format("2006-01")),
			}
		}
		seen[k] = struct{}{}
	}
	return nil
}

// MonthSpan returns the earliest and latest month present.
func (rs *RowSet) MonthSpan() (min, max time.Time) {
	for i, r := range rs.Rows {
		if i == 0 || r.Month.Before(min) {
			min = r.Month
		}
		if i == 0 || r.Month.After(max) {
			max = r.Month
		}
	}
	return min, max
}

// Keys returns the distinct segment keys in sorted order.
func (rs *RowSet) Keys() []string {
	set := make(map[string]struct{})
	for _, r := range rs.Rows {
		set[r.Key] = struct{}{}
	}
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Warn appends a data quality warning.
func (rs *RowSet) Warn(kind, format string, args ...interface{}) {
	rs.Warnings = append(rs.Warnings, Warning{Kind: kind, Detail: fmt.Sprintf(format, args...)})
}

// arrIndex builds a key -> month -> ARR lookup used by the BoP stage.
func arrIndex(rows []Row) map[string]map[time.Time]decimal.Decimal {
	idx := make(map[string]map[time.Time]decimal.Decimal)
	for _, r := range rows {
		byMonth, ok := idx[r.Key]
		if !ok {
			byMonth = make(map[time.Time]decimal.Decimal)
			idx[r.Key] = byMonth
		}
		byMonth[r.Month] = r.ARR
	}
	return idx
}
