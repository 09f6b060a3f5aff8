package leadimport

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/clinichq/admin-api/internal/domain"
)

// Record is one externally supplied lead-like record as it arrives on the
// import webhook. Boolean flags are pointers so "absent" can be told apart
// from an explicit false; absent normalizes to false.
type Record struct {
	Name       string     `json:"name"`
	Email      string     `json:"email"`
	Phone      string     `json:"phone"`
	ClinicID   string     `json:"clinic_id"`
	ProductID  string     `json:"product_id"`
	Automation string     `json:"automation"`
	OldUserID  string     `json:"old_user_id"`
	Lead       *bool      `json:"lead"`
	Engaged    *bool      `json:"engaged"`
	Booked     *bool      `json:"booked"`
	CreatedAt  *time.Time `json:"created_at"`
}

// Validate checks the record in isolation. Identity first: a record needs a
// name plus at least one of legacy id, email, or phone, or it can neither be
// matched nor deduplicated later. Then referential fields: clinic_id is
// required and must be a well-formed UUID; product_id, when present, must be
// too. A validation error rejects this record only, never the batch.
func (r *Record) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return fmt.Errorf("missing required field: name")
	}
	if strings.TrimSpace(r.OldUserID) == "" &&
		strings.TrimSpace(r.Email) == "" &&
		strings.TrimSpace(r.Phone) == "" {
		return fmt.Errorf("record has no identity field (old_user_id, email, or phone)")
	}
	if strings.TrimSpace(r.ClinicID) == "" {
		return fmt.Errorf("missing required field: clinic_id")
	}
	if _, err := uuid.Parse(r.ClinicID); err != nil {
		return fmt.Errorf("malformed clinic_id %q", r.ClinicID)
	}
	if r.ProductID != "" {
		if _, err := uuid.Parse(r.ProductID); err != nil {
			return fmt.Errorf("malformed product_id %q", r.ProductID)
		}
	}
	return nil
}

// ToLead maps the record onto a domain lead. A zero id is assigned for
// inserts; updates overwrite the existing row's fields and keep its id.
func (r *Record) ToLead(id string, now time.Time) domain.Lead {
	if id == "" {
		id = uuid.New().String()
	}
	createdAt := now
	if r.CreatedAt != nil && !r.CreatedAt.IsZero() {
		createdAt = r.CreatedAt.UTC()
	}
	return domain.Lead{
		ID:         id,
		ClinicID:   strings.TrimSpace(r.ClinicID),
		ProductID:  strings.TrimSpace(r.ProductID),
		ClientName: strings.TrimSpace(r.Name),
		Email:      strings.TrimSpace(r.Email),
		Phone:      strings.TrimSpace(r.Phone),
		Automation: strings.TrimSpace(r.Automation),
		OldUserID:  strings.TrimSpace(r.OldUserID),
		IsLead:     boolVal(r.Lead),
		Engaged:    boolVal(r.Engaged),
		Booked:     boolVal(r.Booked),
		CreatedAt:  createdAt,
	}
}

func boolVal(b *bool) bool {
	return b != nil && *b
}
