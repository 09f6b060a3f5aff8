package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/clinichq/admin-api/internal/auth"
	"github.com/clinichq/admin-api/internal/pkg/httputil"
	"github.com/clinichq/admin-api/internal/service/dedup"
	"github.com/clinichq/admin-api/internal/service/leadimport"
)

// importWebhookPayload is the body the external automation posts. The shared
// secret rides inside the payload because the upstream tool cannot set
// request headers.
type importWebhookPayload struct {
	AirtableData  []leadimport.Record `json:"airtableData"`
	WebhookSecret string              `json:"webhookSecret"`
	ClinicID      string              `json:"clinicId"`
}

// handleImportWebhook receives pushed lead records. A payload carrying a
// webhook secret authenticates by that secret alone; otherwise a bearer
// service token with the super-admin role is required. Per-record failures
// come back in a 200 body, not as an HTTP error.
func (s *Server) handleImportWebhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, 16<<20))
	if err != nil {
		httputil.BadRequest(w, "unreadable body")
		return
	}

	var payload importWebhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		httputil.BadRequest(w, "invalid JSON: "+err.Error())
		return
	}

	if payload.WebhookSecret != "" {
		if !s.auth.CheckImportSecret(payload.WebhookSecret) {
			httputil.Unauthorized(w, "invalid webhook secret")
			return
		}
	} else {
		role, ok := s.auth.ResolveToken(auth.BearerToken(r))
		if !ok {
			httputil.Unauthorized(w, "authentication required")
			return
		}
		if role != auth.RoleSuperAdmin {
			httputil.Forbidden(w, "insufficient privileges")
			return
		}
	}

	if len(payload.AirtableData) == 0 {
		httputil.BadRequest(w, "airtableData is empty")
		return
	}

	s.archiver.SavePayload(r.Context(), "webhook", body)

	result, err := s.importer.Run(r.Context(), payload.ClinicID, payload.AirtableData)
	if err != nil {
		if errors.Is(err, leadimport.ErrLocked) {
			httputil.Conflict(w, "an import or dedup run is already in progress")
			return
		}
		httputil.InternalError(w, err)
		return
	}

	s.cache.Invalidate(r.Context())
	httputil.OK(w, result)
}

// pullRequest optionally scopes a pull import to one clinic.
type pullRequest struct {
	ClinicID string `json:"clinicId"`
}

// handleImportPull fetches the external feed and reconciles it. Privileged:
// routed behind the super-admin role.
func (s *Server) handleImportPull(w http.ResponseWriter, r *http.Request) {
	if s.puller == nil {
		httputil.Error(w, http.StatusServiceUnavailable, "pull feed not configured")
		return
	}

	var req pullRequest
	if r.ContentLength > 0 {
		if !httputil.Decode(w, r, &req) {
			return
		}
	}

	records, err := s.puller.FetchLeads(r.Context())
	if err != nil {
		httputil.InternalError(w, err)
		return
	}
	if len(records) == 0 {
		httputil.OK(w, &leadimport.Result{Success: true, Errors: []string{}, Details: []leadimport.RecordDetail{}})
		return
	}

	if raw, err := json.Marshal(records); err == nil {
		s.archiver.SavePayload(r.Context(), "pull", raw)
	}

	result, err := s.importer.Run(r.Context(), req.ClinicID, records)
	if err != nil {
		if errors.Is(err, leadimport.ErrLocked) {
			httputil.Conflict(w, "an import or dedup run is already in progress")
			return
		}
		httputil.InternalError(w, err)
		return
	}

	s.cache.Invalidate(r.Context())
	httputil.OK(w, result)
}

// dedupRequest optionally scopes a dedup run to one clinic.
type dedupRequest struct {
	ClinicID string `json:"clinicId"`
}

// handleDedupRun triggers deduplication. Privileged: routed behind the
// super-admin role. Lock contention maps to 409; per-row delete failures come
// back in a 200 body.
func (s *Server) handleDedupRun(w http.ResponseWriter, r *http.Request) {
	var req dedupRequest
	if r.ContentLength > 0 {
		if !httputil.Decode(w, r, &req) {
			return
		}
	}

	result, err := s.deduper.Run(r.Context(), req.ClinicID)
	if err != nil {
		if errors.Is(err, dedup.ErrLocked) {
			httputil.Conflict(w, "an import or dedup run is already in progress")
			return
		}
		httputil.InternalError(w, err)
		return
	}

	s.cache.Invalidate(r.Context())
	httputil.OK(w, result)
}
