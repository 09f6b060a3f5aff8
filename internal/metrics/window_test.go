package metrics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildDateWindowsNoYear(t *testing.T) {
	assert.Nil(t, BuildDateWindows([]int{1, 2}, 0))
}

func TestBuildDateWindowsFullYearCollapse(t *testing.T) {
	all := []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12}

	forAll := BuildDateWindows(all, 2025)
	forNone := BuildDateWindows(nil, 2025)

	require.Len(t, forAll, 1)
	assert.Equal(t, forNone, forAll)

	w := forAll[0]
	assert.Equal(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), w.Start)
	assert.True(t, w.Contains(time.Date(2025, 12, 31, 23, 59, 59, 0, time.UTC)))
	assert.False(t, w.Contains(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)))
}

func TestBuildDateWindowsOnePerMonth(t *testing.T) {
	windows := BuildDateWindows([]int{3, 7, 11}, 2024)
	require.Len(t, windows, 3)

	// One window per selected month, in calendar order, disjoint.
	assert.Equal(t, time.March, windows[0].Start.Month())
	assert.Equal(t, time.July, windows[1].Start.Month())
	assert.Equal(t, time.November, windows[2].Start.Month())

	for i := 0; i < len(windows)-1; i++ {
		assert.True(t, windows[i].End.Before(windows[i+1].Start),
			"windows %d and %d overlap", i, i+1)
	}

	// Each window covers exactly its own month.
	march := windows[0]
	assert.True(t, march.Contains(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)))
	assert.True(t, march.Contains(time.Date(2024, 3, 31, 23, 59, 59, 0, time.UTC)))
	assert.False(t, march.Contains(time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)))
	assert.False(t, march.Contains(time.Date(2024, 2, 29, 12, 0, 0, 0, time.UTC)))
}

func TestBuildDateWindowsIgnoresInvalidAndDuplicateMonths(t *testing.T) {
	windows := BuildDateWindows([]int{5, 5, 0, 13, -1}, 2024)
	require.Len(t, windows, 1)
	assert.Equal(t, time.May, windows[0].Start.Month())
}

func TestWindowEndSurvivesTimestamptzRounding(t *testing.T) {
	windows := BuildDateWindows([]int{3}, 2024)
	require.Len(t, windows, 1)
	end := windows[0].End

	// Postgres stores timestamptz at microsecond resolution. The end bound
	// must already sit on a microsecond, or the driver-side value rounds up
	// to April 1st and the SQL range admits next-month rows this predicate
	// rejects.
	assert.Equal(t, end, end.Truncate(time.Microsecond))
	assert.Equal(t, time.Date(2024, 3, 31, 23, 59, 59, 999999000, time.UTC), end)
	assert.True(t, end.Before(time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)))

	yearWindows := BuildDateWindows(nil, 2024)
	require.Len(t, yearWindows, 1)
	assert.Equal(t, time.Date(2024, 12, 31, 23, 59, 59, 999999000, time.UTC), yearWindows[0].End)
}

func TestInWindowsEmptyAdmitsAll(t *testing.T) {
	assert.True(t, InWindows(nil, time.Date(1999, 6, 1, 0, 0, 0, 0, time.UTC)))
}

func TestInWindowsRespectsRanges(t *testing.T) {
	windows := BuildDateWindows([]int{2}, 2024)
	assert.True(t, InWindows(windows, time.Date(2024, 2, 15, 9, 30, 0, 0, time.UTC)))
	assert.False(t, InWindows(windows, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)))
	assert.False(t, InWindows(windows, time.Date(2023, 2, 15, 0, 0, 0, 0, time.UTC)))
}
