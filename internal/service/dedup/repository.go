package dedup

import (
	"context"

	"github.com/clinichq/admin-api/internal/domain"
)

// Repository defines the data access contract for dedup runs.
// Implementations must be safe for concurrent use.
type Repository interface {
	// ListLeads returns every lead row in the tenant scope. An empty scope
	// means the whole store (super-admin run). The fetch is unbounded; very
	// large tenants should be deduplicated scope by scope.
	ListLeads(ctx context.Context, scope string) ([]domain.Lead, error)

	// DeleteLead removes a single lead row by id.
	DeleteLead(ctx context.Context, id string) error
}
