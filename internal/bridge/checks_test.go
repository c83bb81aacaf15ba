package bridge

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckDirectionality(t *testing.T) {
	good := BridgeRow{Row: Row{Key: "C1|P1", Month: Month(2020, 1)}}
	good.Buckets.NewCustomer = decimal.NewFromInt(100)
	bad := BridgeRow{Row: Row{Key: "C2|P1", Month: Month(2020, 2)}}
	bad.Buckets.Churn = decimal.NewFromInt(50) // churn must not be positive

	require.NoError(t, CheckDirectionality([]BridgeRow{good}))

	err := CheckDirectionality([]BridgeRow{good, bad})
	var dirErr *DirectionalityError
	require.ErrorAs(t, err, &dirErr)
	assert.Equal(t, ValueChurn, dirErr.Bucket)
	assert.Equal(t, 1, dirErr.Count)
	assert.Equal(t, "C2|P1", dirErr.SampleKey)
}

func TestCheckDirectionalityNegativeExpansion(t *testing.T) {
	bad := BridgeRow{Row: Row{Key: "C1|P1", Month: Month(2020, 3)}}
	bad.Buckets.Upsell = decimal.NewFromInt(-10)

	err := CheckDirectionality([]BridgeRow{bad})
	var dirErr *DirectionalityError
	require.ErrorAs(t, err, &dirErr)
	assert.Equal(t, ValueUpsell, dirErr.Bucket)
}

func TestCheckAnnualTotalsMatch(t *testing.T) {
	rs := &RowSet{Rows: run("C1", "P1", Month(2020, 1), []float64{100, 100}, 0)}
	wf := []WaterfallRow{
		{Key: "C1|P1", CustomerID: "C1", Month: Month(2020, 1), ValueType: ValueEoP, Value: decimal.NewFromInt(100)},
		{Key: "C1|P1", CustomerID: "C1", Month: Month(2020, 2), ValueType: ValueEoP, Value: decimal.NewFromInt(100)},
	}
	var warnings []Warning
	require.NoError(t, CheckAnnualTotals(rs, wf, &warnings))
	assert.Empty(t, warnings)
}

func TestCheckAnnualTotalsMismatch(t *testing.T) {
	rs := &RowSet{Rows: run("C1", "P1", Month(2020, 1), []float64{100, 100}, 0)}
	wf := []WaterfallRow{
		{Key: "C1|P1", CustomerID: "C1", Month: Month(2020, 1), ValueType: ValueEoP, Value: decimal.NewFromInt(100)},
	}
	var warnings []Warning
	err := CheckAnnualTotals(rs, wf, &warnings)
	var recErr *ReconciliationError
	require.ErrorAs(t, err, &recErr)
	assert.Equal(t, "annual_totals", recErr.Check)
	// the drilldown names the customer that moved
	require.NotEmpty(t, recErr.Offenders)
	assert.Contains(t, recErr.Offenders[0], "C1/2020")
	assert.NotEmpty(t, warnings)
}

func TestCheckKeyUniqueness(t *testing.T) {
	rs := &RowSet{Rows: []Row{
		row("C1", "P1", Month(2020, 1), 100),
		row("C1", "P1", Month(2020, 2), 100),
	}}
	require.NoError(t, rs.CheckKeyUniqueness())

	rs.Rows = append(rs.Rows, row("C1", "P1", Month(2020, 2), 50))
	err := rs.CheckKeyUniqueness()
	var schemaErr *SchemaError
	require.ErrorAs(t, err, &schemaErr)
}
