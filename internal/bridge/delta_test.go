package bridge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func deltaFor(t *testing.T, rows []BridgeRow, m int) BridgeRow {
	t.Helper()
	for _, r := range rows {
		if r.Month.Equal(Month(2020, m)) {
			return r
		}
	}
	t.Fatalf("no row for month %d", m)
	return BridgeRow{}
}

func TestComputeDeltasFixedWindow(t *testing.T) {
	policy, err := NewFixedWindow(1)
	require.NoError(t, err)

	rs := &RowSet{Rows: run("C1", "P1", Month(2020, 1), []float64{100, 110, 95}, 0)}
	rows := ComputeDeltas(rs, policy)

	jan := deltaFor(t, rows, 1)
	assert.True(t, jan.ARRBoP.IsZero())
	assert.Equal(t, "100", jan.Delta.String())

	feb := deltaFor(t, rows, 2)
	assert.Equal(t, "100", feb.ARRBoP.String())
	assert.Equal(t, "10", feb.Delta.String())

	mar := deltaFor(t, rows, 3)
	assert.Equal(t, "110", mar.ARRBoP.String())
	assert.Equal(t, "-15", mar.Delta.String())
}

func TestComputeDeltasCalendarWindow(t *testing.T) {
	policy, err := NewCalendarWindow(TypeYTD, 0)
	require.NoError(t, err)

	rs := &RowSet{Rows: run("C1", "P1", Month(2020, 1), []float64{100, 110, 130}, 0)}
	rows := ComputeDeltas(rs, policy)

	// every month in 2020 compares against January 2020
	assert.Equal(t, "100", deltaFor(t, rows, 1).ARRBoP.String())
	assert.True(t, deltaFor(t, rows, 1).Delta.IsZero())
	assert.Equal(t, "100", deltaFor(t, rows, 2).ARRBoP.String())
	assert.Equal(t, "30", deltaFor(t, rows, 3).Delta.String())
}

func TestComputeDeltasMidPeriodStart(t *testing.T) {
	policy, err := NewCalendarWindow(TypeYTD, 0)
	require.NoError(t, err)

	// starts in March: no row at the January anchor, BoP is zero
	rs := &RowSet{Rows: run("C1", "P1", Month(2020, 3), []float64{100, 110}, 0)}
	rows := ComputeDeltas(rs, policy)
	assert.True(t, deltaFor(t, rows, 3).ARRBoP.IsZero())
	assert.Equal(t, "100", deltaFor(t, rows, 3).Delta.String())
	assert.Equal(t, "110", deltaFor(t, rows, 4).Delta.String())
}

func TestApplyBucketsExclusive(t *testing.T) {
	policy, err := NewFixedWindow(2)
	require.NoError(t, err)

	rs := &RowSet{Rows: run("C1", "P1", Month(2020, 1), []float64{100, 100, 100, 100}, 2)}
	ls := ComputeLifespans(rs)
	rows := ComputeDeltas(rs, policy)
	Classify(rows, ls, policy)
	ApplyBuckets(rows)

	for _, r := range rows {
		nonZero := 0
		for _, b := range []string{
			r.Buckets.NewCustomer.String(), r.Buckets.Churn.String(),
			r.Buckets.CrossSell.String(), r.Buckets.Downgrade.String(),
			r.Buckets.Upsell.String(), r.Buckets.Downsell.String(),
		} {
			if b != "0" {
				nonZero++
			}
		}
		assert.LessOrEqual(t, nonZero, 1, "month %s", r.Month.Format("2006-01"))
	}
}
