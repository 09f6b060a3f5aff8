package leadimport

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/clinichq/admin-api/internal/domain"
	"github.com/clinichq/admin-api/internal/pkg/distlock"
	"github.com/clinichq/admin-api/internal/pkg/logger"
)

// RecordStatus is the per-record outcome of a reconciliation run.
type RecordStatus string

const (
	StatusCreated RecordStatus = "created"
	StatusUpdated RecordStatus = "updated"
	StatusError   RecordStatus = "error"
)

// RecordDetail reports the outcome for one imported record.
type RecordDetail struct {
	Name    string       `json:"name"`
	Status  RecordStatus `json:"status"`
	Message string       `json:"message,omitempty"`
}

// Result is the outcome of one import run. Success is true iff no record
// failed validation or persistence.
type Result struct {
	Success      bool           `json:"success"`
	NewLeads     int            `json:"newLeads"`
	UpdatedLeads int            `json:"updatedLeads"`
	Errors       []string       `json:"errors"`
	Details      []RecordDetail `json:"details"`
}

// LockFactory builds the tenant serialization lock for a scope. nil disables
// locking.
type LockFactory func(scope string) distlock.DistLock

// Service reconciles external lead records against the store.
type Service struct {
	repo       Repository
	lockFor    LockFactory
	batchSize  int
	batchDelay time.Duration
	now        func() time.Time
}

// NewService creates an import service. lockFor may be nil. batchSize
// defaults to 25 and batchDelay to 200ms when non-positive.
func NewService(repo Repository, lockFor LockFactory, batchSize int, batchDelay time.Duration) *Service {
	if batchSize <= 0 {
		batchSize = 25
	}
	if batchDelay <= 0 {
		batchDelay = 200 * time.Millisecond
	}
	return &Service{
		repo:       repo,
		lockFor:    lockFor,
		batchSize:  batchSize,
		batchDelay: batchDelay,
		now:        time.Now,
	}
}

// lookupIndex maps identity fields to existing lead ids. Built once per run;
// the legacy-id lookup always takes priority over the email lookup.
type lookupIndex struct {
	byOldID map[string]string
	byEmail map[string]string
}

func buildIndex(leads []domain.Lead) *lookupIndex {
	idx := &lookupIndex{
		byOldID: make(map[string]string, len(leads)),
		byEmail: make(map[string]string, len(leads)),
	}
	for _, l := range leads {
		if v := strings.TrimSpace(l.OldUserID); v != "" {
			idx.byOldID[v] = l.ID
		}
		if v := strings.ToLower(strings.TrimSpace(l.Email)); v != "" {
			idx.byEmail[v] = l.ID
		}
	}
	return idx
}

func (idx *lookupIndex) match(r *Record) (string, bool) {
	if v := strings.TrimSpace(r.OldUserID); v != "" {
		if id, ok := idx.byOldID[v]; ok {
			return id, true
		}
	}
	if v := strings.ToLower(strings.TrimSpace(r.Email)); v != "" {
		if id, ok := idx.byEmail[v]; ok {
			return id, true
		}
	}
	return "", false
}

// Run reconciles the records against the store.
//
// The identity index is built from one scope-wide fetch before the first
// batch. Records are then processed in fixed-size batches: inserts are
// collected and written as one bulk write per batch, updates fan out
// concurrently within the batch, and the run sleeps briefly between batches.
// Per-record failures are recorded and never abort the run.
func (s *Service) Run(ctx context.Context, scope string, records []Record) (*Result, error) {
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

	existing, err := s.repo.ListLeads(ctx, scope)
	if err != nil {
		return nil, fmt.Errorf("build identity index: %w", err)
	}
	idx := buildIndex(existing)

	result := &Result{Errors: []string{}, Details: []RecordDetail{}}
	for start := 0; start < len(records); start += s.batchSize {
		end := start + s.batchSize
		if end > len(records) {
			end = len(records)
		}
		s.processBatch(ctx, idx, records[start:end], result)

		if end < len(records) {
			select {
			case <-time.After(s.batchDelay):
			case <-ctx.Done():
				result.Errors = append(result.Errors, fmt.Sprintf("run interrupted: %v", ctx.Err()))
				result.Success = false
				return result, nil
			}
		}
	}

	result.Success = len(result.Errors) == 0
	logger.Info("import run finished",
		"scope", scope,
		"records", len(records),
		"created", result.NewLeads,
		"updated", result.UpdatedLeads,
		"errors", len(result.Errors),
	)
	return result, nil
}

type pendingUpdate struct {
	name string
	id   string
	lead domain.Lead
}

func (s *Service) processBatch(ctx context.Context, idx *lookupIndex, batch []Record, result *Result) {
	now := s.now().UTC()

	var inserts []domain.Lead
	var insertNames []string
	var updates []pendingUpdate

	for i := range batch {
		r := &batch[i]
		if err := r.Validate(); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", r.Name, err))
			result.Details = append(result.Details, RecordDetail{
				Name: r.Name, Status: StatusError, Message: err.Error(),
			})
			continue
		}
		if id, ok := idx.match(r); ok {
			updates = append(updates, pendingUpdate{name: r.Name, id: id, lead: r.ToLead(id, now)})
		} else {
			inserts = append(inserts, r.ToLead("", now))
			insertNames = append(insertNames, r.Name)
		}
	}

	// Updates fan out concurrently within the batch; the batch boundary is
	// the concurrency bound.
	var (
		wg sync.WaitGroup
		mu sync.Mutex
	)
	for _, u := range updates {
		wg.Add(1)
		go func(u pendingUpdate) {
			defer wg.Done()
			err := s.repo.UpdateLead(ctx, u.id, u.lead)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				result.Errors = append(result.Errors, fmt.Sprintf("%s: update: %v", u.name, err))
				result.Details = append(result.Details, RecordDetail{
					Name: u.name, Status: StatusError, Message: err.Error(),
				})
				return
			}
			result.UpdatedLeads++
			result.Details = append(result.Details, RecordDetail{Name: u.name, Status: StatusUpdated})
		}(u)
	}
	wg.Wait()

	if len(inserts) > 0 {
		if err := s.repo.BulkInsertLeads(ctx, inserts); err != nil {
			for _, name := range insertNames {
				result.Errors = append(result.Errors, fmt.Sprintf("%s: insert: %v", name, err))
				result.Details = append(result.Details, RecordDetail{
					Name: name, Status: StatusError, Message: err.Error(),
				})
			}
			return
		}
		result.NewLeads += len(inserts)
		for _, name := range insertNames {
			result.Details = append(result.Details, RecordDetail{Name: name, Status: StatusCreated})
		}
	}
}
