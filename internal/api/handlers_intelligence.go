package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/setal/compliance-intel/internal/enrichment"
)

func decodeBody(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	return nil
}

// POST /api/intelligence/enrich
func (h *Handlers) Enrich(w http.ResponseWriter, r *http.Request) {
	started := time.Now()
	var req enrichment.EnrichmentRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, started, http.StatusBadRequest, err.Error())
		return
	}
	resp, err := h.intel.Enrich(r.Context(), req)
	if err != nil {
		respondError(w, started, http.StatusBadRequest, err.Error())
		return
	}
	respond(w, started, resp)
}

// POST /api/intelligence/verify
func (h *Handlers) Verify(w http.ResponseWriter, r *http.Request) {
	started := time.Now()
	var req enrichment.VerificationRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, started, http.StatusBadRequest, err.Error())
		return
	}
	resp, err := h.intel.Verify(r.Context(), req)
	if err != nil {
		respondError(w, started, http.StatusBadRequest, err.Error())
		return
	}
	respond(w, started, resp)
}

// POST /api/intelligence/batch-verify
func (h *Handlers) BatchVerify(w http.ResponseWriter, r *http.Request) {
	started := time.Now()
	var req struct {
		Persons []enrichment.VerificationRequest `json:"persons"`
	}
	if err := decodeBody(r, &req); err != nil {
		respondError(w, started, http.StatusBadRequest, err.Error())
		return
	}
	if len(req.Persons) == 0 {
		respondError(w, started, http.StatusBadRequest, "persons array is required")
		return
	}
	if len(req.Persons) > enrichment.MaxBatchSize {
		respondError(w, started, http.StatusBadRequest,
			fmt.Sprintf("Maximum %d persons per batch request", enrichment.MaxBatchSize))
		return
	}
	results, summary := h.intel.BatchVerify(r.Context(), req.Persons)
	respond(w, started, map[string]any{"results": results, "summary": summary})
}

// POST /api/intelligence/phone-lookup
func (h *Handlers) PhoneLookup(w http.ResponseWriter, r *http.Request) {
	started := time.Now()
	var req struct {
		Phone string `json:"phone"`
	}
	if err := decodeBody(r, &req); err != nil {
		respondError(w, started, http.StatusBadRequest, err.Error())
		return
	}
	if req.Phone == "" {
		respondError(w, started, http.StatusBadRequest, "phone is required")
		return
	}
	respond(w, started, map[string]any{"results": h.intel.PhoneLookup(r.Context(), req.Phone)})
}

// POST /api/intelligence/email-lookup
func (h *Handlers) EmailLookup(w http.ResponseWriter, r *http.Request) {
	started := time.Now()
	var req struct {
		Email string `json:"email"`
	}
	if err := decodeBody(r, &req); err != nil {
		respondError(w, started, http.StatusBadRequest, err.Error())
		return
	}
	if req.Email == "" {
		respondError(w, started, http.StatusBadRequest, "email is required")
		return
	}
	respond(w, started, map[string]any{"results": h.intel.EmailLookup(r.Context(), req.Email)})
}

type screeningRequest struct {
	Name        string `json:"name"`
	DateOfBirth string `json:"dateOfBirth,omitempty"`
	Nationality string `json:"nationality,omitempty"`
}

func (h *Handlers) decodeScreening(w http.ResponseWriter, r *http.Request, started time.Time) (screeningRequest, bool) {
	var req screeningRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, started, http.StatusBadRequest, err.Error())
		return req, false
	}
	if req.Name == "" {
		respondError(w, started, http.StatusBadRequest, "name is required")
		return req, false
	}
	return req, true
}

// POST /api/intelligence/sanctions-check
func (h *Handlers) SanctionsCheck(w http.ResponseWriter, r *http.Request) {
	started := time.Now()
	req, ok := h.decodeScreening(w, r, started)
	if !ok {
		return
	}
	q := enrichment.SanctionsQuery{Name: req.Name, DateOfBirth: req.DateOfBirth, Nationality: req.Nationality}
	respond(w, started, map[string]any{"results": h.intel.SanctionsCheck(r.Context(), q)})
}

// POST /api/intelligence/watchlist-check
func (h *Handlers) WatchlistCheck(w http.ResponseWriter, r *http.Request) {
	started := time.Now()
	req, ok := h.decodeScreening(w, r, started)
	if !ok {
		return
	}
	respond(w, started, map[string]any{"results": h.intel.WatchlistCheck(r.Context(), req.Name, req.Nationality)})
}

// POST /api/intelligence/pep-check
func (h *Handlers) PEPCheck(w http.ResponseWriter, r *http.Request) {
	started := time.Now()
	req, ok := h.decodeScreening(w, r, started)
	if !ok {
		return
	}
	q := enrichment.SanctionsQuery{Name: req.Name, DateOfBirth: req.DateOfBirth, Nationality: req.Nationality}
	respond(w, started, map[string]any{"results": h.intel.PEPCheck(r.Context(), q)})
}

// GET /api/intelligence/interpol/{entityId}
func (h *Handlers) GetInterpolNotice(w http.ResponseWriter, r *http.Request) {
	started := time.Now()
	entityID := chi.URLParam(r, "entityId")
	detail, err := h.intel.Interpol().Notice(r.Context(), entityID)
	if err != nil {
		if errors.Is(err, enrichment.ErrNoticeNotFound) {
			respondError(w, started, http.StatusNotFound, err.Error())
			return
		}
		respondError(w, started, http.StatusBadGateway, err.Error())
		return
	}
	respond(w, started, detail)
}
