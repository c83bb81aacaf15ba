package bridge

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func classify(t *testing.T, rs *RowSet, policy PeriodPolicy) []BridgeRow {
	t.Helper()
	rs.Sort()
	ls := ComputeLifespans(rs)
	trimmed := TrimToLifespan(rs, ls, policy)
	rows := ComputeDeltas(trimmed, policy)
	Classify(rows, ls, policy)
	ApplyBuckets(rows)
	return rows
}

func flagsAt(t *testing.T, rows []BridgeRow, key string, m time.Time) FlagSet {
	t.Helper()
	for _, r := range rows {
		if r.Key == key && r.Month.Equal(m) {
			return r.Flags
		}
	}
	t.Fatalf("no row for %s at %s", key, m.Format("2006-01"))
	return FlagSet{}
}

// Customer starts January 2020 with a 3-month window: the new-customer flag
// holds for the first three months and hands over to the existing flag.
func TestNewCustomerWindowFixed(t *testing.T) {
	policy, err := NewFixedWindow(3)
	require.NoError(t, err)

	rs := &RowSet{Rows: run("C1", "P1", Month(2020, 1), []float64{100, 100, 100, 100, 100, 100}, 3)}
	rows := classify(t, rs, policy)
	key := MakeKey([]string{"C1", "P1"})

	assert.True(t, flagsAt(t, rows, key, Month(2020, 1)).NewCustomer)
	assert.True(t, flagsAt(t, rows, key, Month(2020, 2)).NewCustomer)
	assert.True(t, flagsAt(t, rows, key, Month(2020, 3)).NewCustomer)

	apr := flagsAt(t, rows, key, Month(2020, 4))
	assert.False(t, apr.NewCustomer)
	assert.True(t, apr.ExistingCustomer)
	assert.True(t, apr.ExistingProduct)
}

func TestCustomerChurnWindowFixed(t *testing.T) {
	policy, err := NewFixedWindow(3)
	require.NoError(t, err)

	rs := &RowSet{Rows: run("C1", "P1", Month(2020, 1), []float64{100, 100, 100, 100, 100, 100}, 6)}
	rows := classify(t, rs, policy)
	key := MakeKey([]string{"C1", "P1"})

	// last revenue June 2020, churn July: flagged for three months
	for _, m := range []time.Time{Month(2020, 7), Month(2020, 8), Month(2020, 9)} {
		f := flagsAt(t, rows, key, m)
		assert.True(t, f.CustomerChurn, "%s", m.Format("2006-01"))
		assert.False(t, f.NewCustomer)
	}
}

// A customer whose start and churn windows overlap gets the churn flag, not
// the new flag, on the overlapping months.
func TestChurnBeatsNewOnOverlap(t *testing.T) {
	policy, err := NewFixedWindow(6)
	require.NoError(t, err)

	rs := &RowSet{Rows: run("C1", "P1", Month(2020, 1), []float64{100, 100}, 6)}
	rows := classify(t, rs, policy)
	key := MakeKey([]string{"C1", "P1"})

	// churn date is March 2020, inside the 6-month start window
	mar := flagsAt(t, rows, key, Month(2020, 3))
	assert.True(t, mar.CustomerChurn)
	assert.False(t, mar.NewCustomer)
}

func TestCrossSellAndProductChurn(t *testing.T) {
	policy, err := NewFixedWindow(3)
	require.NoError(t, err)

	rows := append(
		// P1 carries the customer the whole time
		run("C1", "P1", Month(2020, 1), []float64{100, 100, 100, 100, 100, 100, 100, 100, 100, 100, 100, 100}, 3),
		// P2 added in June, dropped after September
		run("C1", "P2", Month(2020, 6), []float64{40, 40, 40, 40}, 3)...,
	)
	bridged := classify(t, &RowSet{Rows: rows}, policy)
	p2 := MakeKey([]string{"C1", "P2"})

	jun := flagsAt(t, bridged, p2, Month(2020, 6))
	assert.True(t, jun.CrossSell)
	assert.False(t, jun.NewCustomer)

	// P2's churn in October lands in the downgrade bucket, not customer churn
	oct := flagsAt(t, bridged, p2, Month(2020, 10))
	assert.True(t, oct.ProductChurn)
	assert.False(t, oct.CustomerChurn)
}

func TestUpsellDownsell(t *testing.T) {
	policy, err := NewFixedWindow(3)
	require.NoError(t, err)

	rs := &RowSet{Rows: run("C1", "P1", Month(2020, 1), []float64{100, 100, 100, 100, 150, 150, 120}, 3)}
	rows := classify(t, rs, policy)
	key := MakeKey([]string{"C1", "P1"})

	// May vs Feb: 150 - 100, established customer and product
	may := flagsAt(t, rows, key, Month(2020, 5))
	assert.True(t, may.Upsell)
	assert.False(t, may.Downsell)

	// Jul vs Apr: 120 - 100 is still up
	jul := flagsAt(t, rows, key, Month(2020, 7))
	assert.True(t, jul.Upsell)

	// Jun vs Mar: 150 - 100 up; no downsell until the dip clears the window
	jun := flagsAt(t, rows, key, Month(2020, 6))
	assert.True(t, jun.Upsell)
}

func TestDownsellOnDecline(t *testing.T) {
	policy, err := NewFixedWindow(1)
	require.NoError(t, err)

	rs := &RowSet{Rows: run("C1", "P1", Month(2020, 1), []float64{100, 100, 60, 60}, 1)}
	rows := classify(t, rs, policy)
	key := MakeKey([]string{"C1", "P1"})

	mar := flagsAt(t, rows, key, Month(2020, 3))
	assert.True(t, mar.Downsell)
	assert.False(t, mar.Upsell)
	assert.False(t, mar.CustomerChurn)
}

// Calendar windows include the event month itself, so a mid-period start is
// classified the month it happens.
func TestCalendarWindowIncludesEventMonth(t *testing.T) {
	policy, err := NewCalendarWindow(TypeYTD, 0)
	require.NoError(t, err)

	rs := &RowSet{Rows: run("C1", "P1", Month(2020, 7), []float64{100, 100, 100}, 6)}
	rows := classify(t, rs, policy)
	key := MakeKey([]string{"C1", "P1"})

	jul := flagsAt(t, rows, key, Month(2020, 7))
	assert.True(t, jul.NewCustomer)

	// new through December, then existing once 2021 starts... but the data
	// churns in October, and churn wins
	oct := flagsAt(t, rows, key, Month(2020, 10))
	assert.True(t, oct.CustomerChurn)
	assert.False(t, oct.NewCustomer)
}
