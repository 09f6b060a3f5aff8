package domain

import (
	"strings"
	"time"
)

// Lead is a raw prospective-customer event row.
//
// The three booleans are independent flags set by the acquisition channel:
// IsLead marks a qualified lead, Engaged marks that a conversation happened,
// Booked marks a booking conversion. Whether a row counts toward dashboard
// totals is decided by the metrics package, not here — in particular a booked
// row only counts as a real booking when it is also a qualified lead.
//
// ProductID may reference either a current product id or an identifier from
// the previous product schema; OldUserID is the row's identity in the legacy
// system and, when present, the strongest dedup key.
type Lead struct {
	ID         string    `json:"id" db:"id"`
	ClinicID   string    `json:"clinic_id" db:"clinic_id"`
	ProductID  string    `json:"product_id" db:"product_id"`
	ClientName string    `json:"client_name" db:"client_name"`
	Email      string    `json:"email" db:"email"`
	Phone      string    `json:"phone" db:"phone"`
	IsLead     bool      `json:"lead" db:"lead"`
	Engaged    bool      `json:"engaged" db:"engaged"`
	Booked     bool      `json:"booked" db:"booked"`
	Automation string    `json:"automation" db:"automation"`
	OldUserID  string    `json:"old_user_id" db:"old_user_id"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

// Completeness counts the lead's populated columns. Used as the second level
// of the dedup survivor comparator: a row carrying more data wins over a
// sparser duplicate.
func (l *Lead) Completeness() int {
	n := 0
	for _, v := range []string{
		l.ClinicID, l.ProductID, l.ClientName, l.Email, l.Phone,
		l.Automation, l.OldUserID,
	} {
		if strings.TrimSpace(v) != "" {
			n++
		}
	}
	// Boolean flags count when set; an unset flag is indistinguishable from
	// an explicit false, so only true adds information.
	if l.IsLead {
		n++
	}
	if l.Engaged {
		n++
	}
	if l.Booked {
		n++
	}
	if !l.CreatedAt.IsZero() {
		n++
	}
	return n
}
