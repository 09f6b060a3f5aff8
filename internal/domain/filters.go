package domain

import (
	"sort"
	"strconv"
	"strings"
	"time"
)

// DashboardFilters is the ephemeral query spec the dashboard holds per
// session. It is never persisted; handlers rebuild it from query parameters
// on every request.
//
// An empty ClinicIDs set means "all clinics visible to the caller". A zero
// Year disables date filtering entirely. SelectedMonths empty or covering all
// twelve months means "the whole year".
type DashboardFilters struct {
	ClinicIDs      []string   `json:"clinic_ids"`
	SelectedMonths []int      `json:"selected_months"`
	Year           int        `json:"year"`
	BookingFrom    *time.Time `json:"booking_from,omitempty"`
	BookingTo      *time.Time `json:"booking_to,omitempty"`
}

// CacheKey returns a canonical string for the filter set, stable under
// reordering of clinics and months. Used to key the Redis metrics cache.
func (f DashboardFilters) CacheKey() string {
	clinics := append([]string(nil), f.ClinicIDs...)
	sort.Strings(clinics)
	months := append([]int(nil), f.SelectedMonths...)
	sort.Ints(months)

	var b strings.Builder
	b.WriteString("metrics:y=")
	b.WriteString(strconv.Itoa(f.Year))
	b.WriteString(":m=")
	for i, m := range months {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.Itoa(m))
	}
	b.WriteString(":c=")
	for i, c := range clinics {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(c)
	}
	if f.BookingFrom != nil {
		b.WriteString(":bf=" + f.BookingFrom.UTC().Format(time.RFC3339))
	}
	if f.BookingTo != nil {
		b.WriteString(":bt=" + f.BookingTo.UTC().Format(time.RFC3339))
	}
	return b.String()
}

// HasClinic reports whether id passes the clinic filter. An empty filter
// admits every clinic.
func (f DashboardFilters) HasClinic(id string) bool {
	if len(f.ClinicIDs) == 0 {
		return true
	}
	for _, c := range f.ClinicIDs {
		if c == id {
			return true
		}
	}
	return false
}
