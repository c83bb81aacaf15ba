package bridge

import (
	"fmt"
	"strings"
	"time"
)

// ConfigurationError reports an invalid or inconsistent configuration value.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %s: %s", e.Field, e.Reason)
}

// SchemaError reports input data that does not match the expected shape:
// missing columns, unparseable dates or amounts, duplicate keys.
type SchemaError struct {
	Column string
	Row    int // 1-based data row, 0 when not row-specific
	Reason string
}

func (e *SchemaError) Error() string {
	if e.Row > 0 {
		return fmt.Sprintf("schema error: column %s, row %d: %s", e.Column, e.Row, e.Reason)
	}
	return fmt.Sprintf("schema error: column %s: %s", e.Column, e.Reason)
}

// ReconciliationError means the produced waterfall does not add back up to the
// input revenue. The run aborts: publishing a bridge that does not reconcile
// is worse than publishing nothing.
type ReconciliationError struct {
	Check     string
	Detail    string
	Offenders []string
}

func (e *ReconciliationError) Error() string {
	msg := fmt.Sprintf("reconciliation failed (%s): %s", e.Check, e.Detail)
	if len(e.Offenders) > 0 {
		n := len(e.Offenders)
		sample := e.Offenders
		if n > 5 {
			sample = sample[:5]
		}
		msg += fmt.Sprintf(" [%d offenders, e.g. %s]", n, strings.Join(sample, ", "))
	}
	return msg
}

// DirectionalityError means a bucket carries amounts of the wrong sign,
// e.g. a negative new-customer amount or a positive churn amount.
type DirectionalityError struct {
	Bucket      string
	Count       int
	SampleKey   string
	SampleMonth time.Time
}

func (e *DirectionalityError) Error() string {
	return fmt.Sprintf("directionality check failed: bucket %s has %d row(s) with the wrong sign (e.g. key %s, month %s)",
		e.Bucket, e.Count, e.SampleKey, e.SampleMonth.Format("2006-01"))
}

// Warning kinds collected during ingest and checks. Warnings never abort a
// run; they are logged and carried on the result.
const (
	WarnNegativeARR    = "negative_arr"
	WarnNonRecurring   = "non_recurring_removed"
	WarnMissingColumn  = "optional_column_missing"
	WarnCustomerTotals = "customer_totals_diff"
)

// Warning is a non-fatal data quality finding.
type Warning struct {
	Kind   string
	Detail string
}

func (w Warning) String() string {
	return fmt.Sprintf("[%s] %s", w.Kind, w.Detail)
}
