package metrics

import (
	"github.com/clinichq/admin-api/internal/domain"
)

// MatchReason says which step of the fallback chain accepted a lead for a
// product. Exposed so callers (and tests) can see which identifier scheme a
// row matched under.
type MatchReason string

const (
	MatchNone       MatchReason = ""
	MatchDirect     MatchReason = "direct"
	MatchLegacyID   MatchReason = "legacy_id"
	MatchAutomation MatchReason = "automation"
)

// MatchProduct decides whether a lead row belongs to a product, using a
// short-circuit fallback chain over the identifier schemes the system has
// migrated through:
//
//  1. clinic must match, always;
//  2. if the product is priced for a specific month, the lead must have been
//     created in that calendar month of the given year (year == 0 disables
//     the year restriction and checks the month alone);
//  3. direct product-id match;
//  4. legacy product-id match (identifiers from the prior product schema);
//  5. automation-code match (the channel/bot that produced the lead).
//
// The year is an explicit parameter threaded from the caller's filter
// context; leads from a different year than the one being viewed never
// match a month-priced product.
func MatchProduct(l *domain.Lead, p *domain.Product, year int) (bool, MatchReason) {
	if l.ClinicID != p.ClinicID {
		return false, MatchNone
	}

	if p.Month != 0 {
		if int(l.CreatedAt.Month()) != p.Month {
			return false, MatchNone
		}
		if year != 0 && l.CreatedAt.Year() != year {
			return false, MatchNone
		}
	}

	if l.ProductID != "" && l.ProductID == p.ID {
		return true, MatchDirect
	}
	if l.ProductID != "" && p.HasLegacyID(l.ProductID) {
		return true, MatchLegacyID
	}
	if l.Automation != "" && p.HasAutomationCode(l.Automation) {
		return true, MatchAutomation
	}
	return false, MatchNone
}
