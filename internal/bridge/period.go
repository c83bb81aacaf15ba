package bridge

import (
	"fmt"
	"time"
)

// Supported bridge window types.
const (
	TypeNumberOfMonths = "number_of_months"
	TypeYTD            = "YTD"
	TypeQTD            = "QTD"
	TypeFYTD           = "FYTD"
	TypeFQTD           = "FQTD"
)

// PeriodPolicy decides how far back the bridge looks when comparing ARR.
// Fixed windows always look back a constant number of months; calendar
// windows compare against the start of the current (fiscal) year or quarter,
// so the lookback shrinks as the period progresses.
//
// Everything downstream (trimming, BoP lookup, classification windows) goes
// through this interface and never branches on the window type directly,
// except via Static for the two lookup strategies.
type PeriodPolicy interface {
	// Static reports whether the lookback length is constant.
	Static() bool
	// Lookback is the fixed month count. Zero for calendar windows.
	Lookback() int
	// StartOfCurrentPeriod returns the first month of the period containing m.
	StartOfCurrentPeriod(m time.Time) time.Time
	// StartOfNextPeriod returns the first month of the period after the one
	// containing m.
	StartOfNextPeriod(m time.Time) time.Time
	// WindowFrom is how many months an event anchored at m (a customer start,
	// a churn) stays inside the comparison window.
	WindowFrom(m time.Time) int
	Label() string
}

// Month builds a normalized month value: first of month, midnight UTC.
func Month(year, month int) time.Time {
	return time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
}

// TruncateToMonth drops the day and time components.
func TruncateToMonth(t time.Time) time.Time {
	return Month(t.Year(), int(t.Month()))
}

// MonthsBetween returns the signed whole-month distance from a to b.
func MonthsBetween(a, b time.Time) int {
	return (b.Year()-a.Year())*12 + int(b.Month()) - int(a.Month())
}

// FixedWindow compares every month against the month N months earlier.
type FixedWindow struct {
	months int
}

func NewFixedWindow(months int) (FixedWindow, error) {
	if months < 1 {
		return FixedWindow{}, &ConfigurationError{Field: "month_period", Reason: fmt.Sprintf("must be >= 1, got %d", months)}
	}
	return FixedWindow{months: months}, nil
}

func (w FixedWindow) Static() bool  { return true }
func (w FixedWindow) Lookback() int { return w.months }

func (w FixedWindow) StartOfCurrentPeriod(m time.Time) time.Time {
	return m.AddDate(0, -w.months, 0)
}

func (w FixedWindow) StartOfNextPeriod(m time.Time) time.Time {
	return m.AddDate(0, w.months, 0)
}

func (w FixedWindow) WindowFrom(time.Time) int { return w.months }

func (w FixedWindow) Label() string {
	return fmt.Sprintf("%d-month window", w.months)
}

// CalendarWindow compares every month against the start of its year-to-date
// or quarter-to-date period. For the fiscal variants the year starts at
// fyStart; for plain YTD/QTD it starts in January.
type CalendarWindow struct {
	kind    string
	fyStart int
}

func NewCalendarWindow(kind string, fyStartMonth int) (CalendarWindow, error) {
	switch kind {
	case TypeYTD, TypeQTD:
		fyStartMonth = 1
	case TypeFYTD, TypeFQTD:
		if fyStartMonth < 1 || fyStartMonth > 12 {
			return CalendarWindow{}, &ConfigurationError{Field: "fy_start_month", Reason: fmt.Sprintf("must be 1-12, got %d", fyStartMonth)}
		}
	default:
		return CalendarWindow{}, &ConfigurationError{Field: "crb_type", Reason: fmt.Sprintf("unknown calendar window type %q", kind)}
	}
	return CalendarWindow{kind: kind, fyStart: fyStartMonth}, nil
}

func (w CalendarWindow) Static() bool  { return false }
func (w CalendarWindow) Lookback() int { return 0 }

func (w CalendarWindow) quarterly() bool {
	return w.kind == TypeQTD || w.kind == TypeFQTD
}

func (w CalendarWindow) StartOfCurrentPeriod(m time.Time) time.Time {
	mm := int(m.Month())
	if !w.quarterly() {
		year := m.Year()
		if mm < w.fyStart {
			year--
		}
		return Month(year, w.fyStart)
	}
	// Quarter starts cycle at (fyStart + 3k) mod 12. A quarter whose start
	// month is later in the calendar than m belongs to the previous calendar
	// year (e.g. fiscal Nov quarter covering Nov, Dec, Jan).
	for k := 0; k < 4; k++ {
		soq := (w.fyStart-1+3*k)%12 + 1
		if (mm-soq+12)%12 < 3 {
			year := m.Year()
			if soq > mm {
				year--
			}
			return Month(year, soq)
		}
	}
	// Unreachable: the four quarters cover all twelve months.
	return TruncateToMonth(m)
}

// StartOfNextPeriod is derived from the current period start so the two are
// always one period apart, including across year wraparounds.
func (w CalendarWindow) StartOfNextPeriod(m time.Time) time.Time {
	cur := w.StartOfCurrentPeriod(m)
	if w.quarterly() {
		return cur.AddDate(0, 3, 0)
	}
	return cur.AddDate(1, 0, 0)
}

func (w CalendarWindow) WindowFrom(m time.Time) int {
	return MonthsBetween(m, w.StartOfNextPeriod(m))
}

func (w CalendarWindow) Label() string {
	if w.kind == TypeFYTD || w.kind == TypeFQTD {
		return fmt.Sprintf("%s (fiscal year starts month %d)", w.kind, w.fyStart)
	}
	return w.kind
}
