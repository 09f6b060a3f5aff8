package metrics

import (
	"github.com/clinichq/admin-api/internal/domain"
)

// ProductMetrics holds per-product counts for the active selection.
type ProductMetrics struct {
	ProductID    string `json:"product_id"`
	ClinicID     string `json:"clinic_id"`
	CategoryName string `json:"category_name"`
	LeadCount    int    `json:"lead_count"`
	EngagedCount int    `json:"engaged_count"`
	BookingCount int    `json:"booking_count"`
}

// Totals holds whole-selection counts and derived spend metrics.
// CostPerBooking and CostPerLead are exactly 0 when their denominator is 0.
type Totals struct {
	TotalLeads     int     `json:"total_leads"`
	TotalEngaged   int     `json:"total_engaged"`
	TotalBookings  int     `json:"total_bookings"`
	TotalRevenue   float64 `json:"total_revenue"`
	TotalCost      float64 `json:"total_cost"`
	CostPerBooking float64 `json:"cost_per_booking"`
	CostPerLead    float64 `json:"cost_per_lead"`
}

// Report is the aggregator's output for one filter selection.
type Report struct {
	Products []ProductMetrics `json:"products"`
	Totals   Totals           `json:"totals"`
}

// ApplyFiltersToLeads restricts rows to the active clinic set and date
// windows. The repositories already filter at the SQL layer with the same
// windows; this second pass re-applies the identical predicate in memory so
// a storage-layer filter bug cannot silently widen the selection.
func ApplyFiltersToLeads(leads []domain.Lead, f domain.DashboardFilters) []domain.Lead {
	windows := BuildDateWindows(f.SelectedMonths, f.Year)
	out := make([]domain.Lead, 0, len(leads))
	for _, l := range leads {
		if !f.HasClinic(l.ClinicID) {
			continue
		}
		if !InWindows(windows, l.CreatedAt) {
			continue
		}
		out = append(out, l)
	}
	return out
}

// Aggregate classifies already-fetched rows into per-product metrics and
// whole-selection totals. Pure: no I/O, no clock reads; the filter's year is
// threaded into product matching explicitly.
func Aggregate(
	leads []domain.Lead,
	sales []domain.Sale,
	costs []domain.Cost,
	products []domain.Product,
	f domain.DashboardFilters,
) Report {
	leads = ApplyFiltersToLeads(leads, f)

	perProduct := make([]ProductMetrics, 0, len(products))
	for i := range products {
		p := &products[i]
		pm := ProductMetrics{
			ProductID:    p.ID,
			ClinicID:     p.ClinicID,
			CategoryName: p.CategoryName,
		}
		for j := range leads {
			l := &leads[j]
			ok, _ := MatchProduct(l, p, f.Year)
			if !ok {
				continue
			}
			if IsActualLead(l) {
				pm.LeadCount++
			}
			if IsEngagedConversation(l) {
				pm.EngagedCount++
			}
			if IsActualBooking(l) {
				pm.BookingCount++
			}
		}
		perProduct = append(perProduct, pm)
	}

	var t Totals
	for i := range leads {
		l := &leads[i]
		if IsActualLead(l) {
			t.TotalLeads++
		}
		if IsEngagedConversation(l) {
			t.TotalEngaged++
		}
		if IsActualBooking(l) {
			t.TotalBookings++
		}
	}

	windows := BuildDateWindows(f.SelectedMonths, f.Year)
	for _, s := range sales {
		if !f.HasClinic(s.ClinicID) || !InWindows(windows, s.CreatedAt) {
			continue
		}
		t.TotalRevenue += s.Amount
	}
	for _, c := range costs {
		if !f.HasClinic(c.ClinicID) || !InWindows(windows, c.CreatedAt) {
			continue
		}
		t.TotalCost += c.Amount
	}

	if t.TotalBookings > 0 {
		t.CostPerBooking = t.TotalCost / float64(t.TotalBookings)
	}
	if t.TotalLeads > 0 {
		t.CostPerLead = t.TotalCost / float64(t.TotalLeads)
	}

	return Report{Products: perProduct, Totals: t}
}
