package bridge

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMonthsBetween(t *testing.T) {
	assert.Equal(t, 0, MonthsBetween(Month(2021, 3), Month(2021, 3)))
	assert.Equal(t, 1, MonthsBetween(Month(2021, 3), Month(2021, 4)))
	assert.Equal(t, 12, MonthsBetween(Month(2020, 7), Month(2021, 7)))
	assert.Equal(t, -3, MonthsBetween(Month(2021, 3), Month(2020, 12)))
	assert.Equal(t, 2, MonthsBetween(Month(2020, 11), Month(2021, 1)))
}

func TestFixedWindow(t *testing.T) {
	_, err := NewFixedWindow(0)
	var cfgErr *ConfigurationError
	require.ErrorAs(t, err, &cfgErr)

	w, err := NewFixedWindow(3)
	require.NoError(t, err)
	assert.True(t, w.Static())
	assert.Equal(t, 3, w.Lookback())
	assert.Equal(t, Month(2021, 4), w.StartOfNextPeriod(Month(2021, 1)))
	assert.Equal(t, Month(2020, 10), w.StartOfCurrentPeriod(Month(2021, 1)))
	assert.Equal(t, 3, w.WindowFrom(Month(2021, 6)))
}

func TestCalendarWindowYTD(t *testing.T) {
	w, err := NewCalendarWindow(TypeYTD, 0)
	require.NoError(t, err)
	assert.False(t, w.Static())

	assert.Equal(t, Month(2021, 1), w.StartOfCurrentPeriod(Month(2021, 7)))
	assert.Equal(t, Month(2022, 1), w.StartOfNextPeriod(Month(2021, 7)))
	assert.Equal(t, Month(2021, 1), w.StartOfCurrentPeriod(Month(2021, 1)))
	assert.Equal(t, Month(2022, 1), w.StartOfNextPeriod(Month(2021, 12)))

	// window shrinks as the year progresses
	assert.Equal(t, 12, w.WindowFrom(Month(2021, 1)))
	assert.Equal(t, 6, w.WindowFrom(Month(2021, 7)))
	assert.Equal(t, 1, w.WindowFrom(Month(2021, 12)))
}

func TestCalendarWindowFYTD(t *testing.T) {
	w, err := NewCalendarWindow(TypeFYTD, 4)
	require.NoError(t, err)

	assert.Equal(t, Month(2020, 4), w.StartOfCurrentPeriod(Month(2021, 2)))
	assert.Equal(t, Month(2021, 4), w.StartOfNextPeriod(Month(2021, 2)))
	assert.Equal(t, Month(2021, 4), w.StartOfCurrentPeriod(Month(2021, 4)))
	assert.Equal(t, Month(2022, 4), w.StartOfNextPeriod(Month(2021, 4)))

	_, err = NewCalendarWindow(TypeFYTD, 13)
	var cfgErr *ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
}

func TestCalendarWindowQTD(t *testing.T) {
	w, err := NewCalendarWindow(TypeQTD, 0)
	require.NoError(t, err)

	assert.Equal(t, Month(2021, 7), w.StartOfCurrentPeriod(Month(2021, 7)))
	assert.Equal(t, Month(2021, 7), w.StartOfCurrentPeriod(Month(2021, 9)))
	assert.Equal(t, Month(2021, 10), w.StartOfNextPeriod(Month(2021, 9)))
	assert.Equal(t, Month(2021, 1), w.StartOfCurrentPeriod(Month(2021, 2)))
}

func TestCalendarWindowFQTDQuarterBoundaries(t *testing.T) {
	// fiscal year starting February: quarters begin in Feb, May, Aug, Nov
	w, err := NewCalendarWindow(TypeFQTD, 2)
	require.NoError(t, err)

	assert.Equal(t, Month(2021, 5), w.StartOfCurrentPeriod(Month(2021, 6)))
	assert.Equal(t, Month(2021, 8), w.StartOfNextPeriod(Month(2021, 6)))
	assert.Equal(t, Month(2021, 2), w.StartOfCurrentPeriod(Month(2021, 4)))

	// the November quarter wraps the year end: Nov, Dec, Jan
	assert.Equal(t, Month(2020, 11), w.StartOfCurrentPeriod(Month(2021, 1)))
	assert.Equal(t, Month(2021, 2), w.StartOfNextPeriod(Month(2021, 1)))
	assert.Equal(t, Month(2021, 11), w.StartOfCurrentPeriod(Month(2021, 12)))
	assert.Equal(t, Month(2022, 2), w.StartOfNextPeriod(Month(2021, 12)))
}

func TestCalendarWindowFQTDDecemberStart(t *testing.T) {
	w, err := NewCalendarWindow(TypeFQTD, 12)
	require.NoError(t, err)

	assert.Equal(t, Month(2020, 12), w.StartOfCurrentPeriod(Month(2021, 1)))
	assert.Equal(t, Month(2021, 3), w.StartOfNextPeriod(Month(2021, 2)))
	assert.Equal(t, Month(2021, 12), w.StartOfCurrentPeriod(Month(2021, 12)))
}

// Current and next period starts must always be exactly one period apart,
// for every month and every fiscal offset.
func TestCalendarWindowSymmetry(t *testing.T) {
	for _, kind := range []string{TypeYTD, TypeQTD, TypeFYTD, TypeFQTD} {
		for fy := 1; fy <= 12; fy++ {
			w, err := NewCalendarWindow(kind, fy)
			require.NoError(t, err)
			step := 12
			if kind == TypeQTD || kind == TypeFQTD {
				step = 3
			}
			for m := Month(2019, 1); m.Before(Month(2022, 1)); m = m.AddDate(0, 1, 0) {
				cur := w.StartOfCurrentPeriod(m)
				next := w.StartOfNextPeriod(m)
				assert.Equal(t, step, MonthsBetween(cur, next), "%s fy=%d m=%s", kind, fy, m)
				assert.False(t, m.Before(cur), "%s fy=%d m=%s: current start after m", kind, fy, m)
				assert.True(t, m.Before(next), "%s fy=%d m=%s: next start not after m", kind, fy, m)
				// period starts are fixed points
				assert.Equal(t, cur, w.StartOfCurrentPeriod(cur), "%s fy=%d", kind, fy)
			}
		}
	}
}

func TestTruncateToMonth(t *testing.T) {
	d := time.Date(2021, 3, 17, 14, 30, 0, 0, time.UTC)
	assert.Equal(t, Month(2021, 3), TruncateToMonth(d))
}
