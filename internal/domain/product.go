package domain

import "time"

// Product is a clinic-scoped sellable service category with monthly pricing.
// The same category may appear once per calendar month with a different price;
// at most one row should exist per (clinic, category, month) triple.
//
// Month is 1-12, or 0 when the product is not priced for a specific month. A
// zero Month means the product matches leads from any month.
//
// LegacyIDs holds identifiers this category carried in the previous product
// schema (matched there by equal name + clinic). AutomationCodes holds the
// acquisition-channel codes (e.g. "IB", "WB") whose leads belong to this
// category when no product id is present on the lead.
type Product struct {
	ID              string    `json:"id" db:"id"`
	ClinicID        string    `json:"clinic_id" db:"clinic_id"`
	CategoryName    string    `json:"category_name" db:"category_name"`
	Price           float64   `json:"price" db:"price"`
	Month           int       `json:"month" db:"month"`
	LegacyIDs       []string  `json:"legacy_ids" db:"legacy_ids"`
	AutomationCodes []string  `json:"automation_codes" db:"automation_codes"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time `json:"updated_at" db:"updated_at"`
}

// HasLegacyID reports whether id is one of the product's legacy identifiers.
func (p *Product) HasLegacyID(id string) bool {
	for _, l := range p.LegacyIDs {
		if l == id {
			return true
		}
	}
	return false
}

// HasAutomationCode reports whether code is one of the product's channel codes.
func (p *Product) HasAutomationCode(code string) bool {
	for _, c := range p.AutomationCodes {
		if c == code {
			return true
		}
	}
	return false
}
