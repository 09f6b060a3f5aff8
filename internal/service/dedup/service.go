package dedup

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/clinichq/admin-api/internal/domain"
	"github.com/clinichq/admin-api/internal/pkg/distlock"
	"github.com/clinichq/admin-api/internal/pkg/logger"
)

// GroupDetail reports the outcome for one duplicate group.
type GroupDetail struct {
	Key            string   `json:"key"`
	DuplicateCount int      `json:"duplicateCount"`
	KeptRecord     string   `json:"keptRecord"`
	RemovedRecords []string `json:"removedRecords"`
}

// Result is the outcome of one dedup run. Success is true iff no per-row
// delete error occurred.
type Result struct {
	Success           bool          `json:"success"`
	DuplicatesFound   int           `json:"duplicatesFound"`
	DuplicatesRemoved int           `json:"duplicatesRemoved"`
	Errors            []string      `json:"errors"`
	Details           []GroupDetail `json:"details"`
}

// LockFactory builds the tenant serialization lock for a scope. nil disables
// locking (single-process deployments that serialize runs themselves).
type LockFactory func(scope string) distlock.DistLock

// Service runs lead deduplication against a repository.
type Service struct {
	repo    Repository
	lockFor LockFactory
	lockTTL time.Duration
}

// NewService creates a dedup service. lockFor may be nil.
func NewService(repo Repository, lockFor LockFactory) *Service {
	return &Service{
		repo:    repo,
		lockFor: lockFor,
		lockTTL: 10 * time.Minute,
	}
}

// Run deduplicates every lead in the tenant scope.
//
// Failing to fetch the leads aborts the run (there is nothing to group).
// Individual delete failures are recorded and do not abort: remaining groups
// are still processed, and partial results are always returned.
func (s *Service) Run(ctx context.Context, scope string) (*Result, error) {
	if s.lockFor != nil {
		lock := s.lockFor(distlock.TenantKey(scope))
		ok, err := lock.Acquire(ctx)
		if err != nil {
			return nil, fmt.Errorf("acquire tenant lock: %w", err)
		}
		if !ok {
			return nil, ErrLocked
		}
		defer lock.Release(ctx)
	}

	leads, err := s.repo.ListLeads(ctx, scope)
	if err != nil {
		return nil, fmt.Errorf("fetch leads: %w", err)
	}

	groups := make(map[string][]*domain.Lead)
	for i := range leads {
		l := &leads[i]
		key, ok := DeriveKey(l)
		if !ok {
			continue
		}
		groups[key] = append(groups[key], l)
	}

	// Stable report ordering regardless of map iteration.
	keys := make([]string, 0, len(groups))
	for k, members := range groups {
		if len(members) > 1 {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	result := &Result{Errors: []string{}, Details: []GroupDetail{}}
	for _, key := range keys {
		members := groups[key]
		sort.Slice(members, func(i, j int) bool { return Better(members[i], members[j]) })

		survivor := members[0]
		detail := GroupDetail{
			Key:            key,
			DuplicateCount: len(members) - 1,
			KeptRecord:     survivor.ID,
			RemovedRecords: []string{},
		}
		result.DuplicatesFound += len(members) - 1

		for _, loser := range members[1:] {
			if err := s.repo.DeleteLead(ctx, loser.ID); err != nil {
				result.Errors = append(result.Errors,
					fmt.Sprintf("delete lead %s (key %s): %v", loser.ID, key, err))
				continue
			}
			detail.RemovedRecords = append(detail.RemovedRecords, loser.ID)
			result.DuplicatesRemoved++
		}
		result.Details = append(result.Details, detail)
	}

	result.Success = len(result.Errors) == 0
	logger.Info("dedup run finished",
		"scope", scope,
		"groups", len(result.Details),
		"found", result.DuplicatesFound,
		"removed", result.DuplicatesRemoved,
		"errors", len(result.Errors),
	)
	return result, nil
}
