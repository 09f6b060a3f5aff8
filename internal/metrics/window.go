package metrics

import (
	"sort"
	"time"
)

// DateWindow is a closed timestamp range covering one or more whole calendar
// months: Start is the first instant of the first month, End the last
// timestamptz-representable instant of the last month. End stays at
// microsecond resolution because Postgres rounds finer fractions — a
// nanosecond-precision end would round up past the month boundary and make
// the SQL predicate wider than this one.
type DateWindow struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Contains reports whether t falls inside the window (inclusive both ends).
func (w DateWindow) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}

// BuildDateWindows turns a month selection into disjoint date windows for
// the given year.
//
//   - year == 0: no date filter at all; returns nil.
//   - no months selected, or all twelve: one window spanning the whole year.
//   - otherwise: one window per selected month, in calendar order.
//
// Adjacent months are deliberately not merged into one window; the storage
// layer emits one OR-clause per window either way. Months outside 1..12 and
// duplicates are ignored.
func BuildDateWindows(selectedMonths []int, year int) []DateWindow {
	if year == 0 {
		return nil
	}

	seen := make(map[int]bool)
	var months []int
	for _, m := range selectedMonths {
		if m < 1 || m > 12 || seen[m] {
			continue
		}
		seen[m] = true
		months = append(months, m)
	}
	sort.Ints(months)

	if len(months) == 0 || len(months) == 12 {
		start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
		end := start.AddDate(1, 0, 0).Add(-time.Microsecond)
		return []DateWindow{{Start: start, End: end}}
	}

	windows := make([]DateWindow, 0, len(months))
	for _, m := range months {
		start := time.Date(year, time.Month(m), 1, 0, 0, 0, 0, time.UTC)
		end := start.AddDate(0, 1, 0).Add(-time.Microsecond)
		windows = append(windows, DateWindow{Start: start, End: end})
	}
	return windows
}

// InWindows reports whether t falls inside any of the windows. An empty
// window list means no date filter is active, which admits every timestamp.
func InWindows(windows []DateWindow, t time.Time) bool {
	if len(windows) == 0 {
		return true
	}
	for _, w := range windows {
		if w.Contains(t) {
			return true
		}
	}
	return false
}
