package api

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/clinichq/admin-api/internal/domain"
)

// parseFilters rebuilds the dashboard filter set from query parameters.
// Filters are never persisted server-side; every request carries its own.
//
//	clinic_ids  comma-separated clinic UUIDs (empty: all visible clinics)
//	months      comma-separated month numbers 1-12 (empty: whole year)
//	year        four-digit year (0 or absent: no date filtering)
//	from, to    RFC 3339 bounds on the reservation start time
func parseFilters(r *http.Request) (domain.DashboardFilters, error) {
	var f domain.DashboardFilters
	q := r.URL.Query()

	if v := strings.TrimSpace(q.Get("clinic_ids")); v != "" {
		for _, id := range strings.Split(v, ",") {
			if id = strings.TrimSpace(id); id != "" {
				f.ClinicIDs = append(f.ClinicIDs, id)
			}
		}
	}

	if v := strings.TrimSpace(q.Get("months")); v != "" {
		for _, part := range strings.Split(v, ",") {
			m, err := strconv.Atoi(strings.TrimSpace(part))
			if err != nil {
				return f, fmt.Errorf("invalid month %q", part)
			}
			if m < 1 || m > 12 {
				return f, fmt.Errorf("month %d out of range", m)
			}
			f.SelectedMonths = append(f.SelectedMonths, m)
		}
	}

	if v := strings.TrimSpace(q.Get("year")); v != "" {
		y, err := strconv.Atoi(v)
		if err != nil || y < 0 {
			return f, fmt.Errorf("invalid year %q", v)
		}
		f.Year = y
	}

	if v := strings.TrimSpace(q.Get("from")); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return f, fmt.Errorf("invalid from time %q", v)
		}
		f.BookingFrom = &t
	}
	if v := strings.TrimSpace(q.Get("to")); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return f, fmt.Errorf("invalid to time %q", v)
		}
		f.BookingTo = &t
	}

	return f, nil
}
