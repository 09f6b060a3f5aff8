package metrics

import "github.com/clinichq/admin-api/internal/domain"

// IsActualLead reports whether the row counts as a qualified lead.
func IsActualLead(l *domain.Lead) bool {
	return l.IsLead
}

// IsEngagedConversation reports whether the row counts as an engaged
// conversation. Independent of the lead and booked flags.
func IsEngagedConversation(l *domain.Lead) bool {
	return l.Engaged
}

// IsActualBooking reports whether the row counts as a real booking
// conversion. A booked row that is not also a qualified lead does NOT
// count; the bare booked flag alone is never a conversion.
func IsActualBooking(l *domain.Lead) bool {
	return l.Booked && l.IsLead
}
