package dedup

import (
	"strings"

	"github.com/clinichq/admin-api/internal/domain"
)

// DeriveKey derives the identity key used to group potentially duplicate
// lead rows. Priority order, first applicable wins:
//
//  1. old_id:<old_user_id>          legacy-system identity
//  2. email:<lowercased email>
//  3. name_phone:<name>:<phone>     requires both fields
//
// Rows with none of these cannot be grouped; DeriveKey returns ok=false and
// the deduplicator leaves them untouched.
func DeriveKey(l *domain.Lead) (string, bool) {
	if v := strings.TrimSpace(l.OldUserID); v != "" {
		return "old_id:" + v, true
	}
	if v := strings.ToLower(strings.TrimSpace(l.Email)); v != "" {
		return "email:" + v, true
	}
	name := strings.ToLower(strings.TrimSpace(l.ClientName))
	phone := strings.TrimSpace(l.Phone)
	if name != "" && phone != "" {
		return "name_phone:" + name + ":" + phone, true
	}
	return "", false
}

// Better reports whether a outranks b for survivor selection. Three levels,
// in order: presence of the legacy identity, field completeness, recency.
// Ties fall back to the smaller id so runs are deterministic.
func Better(a, b *domain.Lead) bool {
	aOld := strings.TrimSpace(a.OldUserID) != ""
	bOld := strings.TrimSpace(b.OldUserID) != ""
	if aOld != bOld {
		return aOld
	}

	ac, bc := a.Completeness(), b.Completeness()
	if ac != bc {
		return ac > bc
	}

	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}

	return a.ID < b.ID
}
