package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/setal/compliance-intel/internal/domain"
	"github.com/setal/compliance-intel/internal/store"
)

// GET /api/risk/landlord/{id}
func (h *Handlers) GetLandlordRisk(w http.ResponseWriter, r *http.Request) {
	started := time.Now()
	id := chi.URLParam(r, "id")
	score, err := h.landlords.Score(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respondError(w, started, http.StatusNotFound, "landlord not found")
			return
		}
		respondError(w, started, http.StatusInternalServerError, err.Error())
		return
	}
	respond(w, started, score)
}

// GET /api/risk/landlords?riskLevel=&limit=
func (h *Handlers) ListLandlordRisks(w http.ResponseWriter, r *http.Request) {
	started := time.Now()
	level := domain.RiskLevel(r.URL.Query().Get("riskLevel"))
	limit := queryInt(r, "limit", 50)
	scores, err := h.store.ListLandlordRiskScores(r.Context(), level, limit)
	if err != nil {
		respondError(w, started, http.StatusInternalServerError, err.Error())
		return
	}
	respond(w, started, map[string]any{"landlords": scores, "count": len(scores)})
}

// GET /api/risk/listing/{id}
func (h *Handlers) GetListingRisk(w http.ResponseWriter, r *http.Request) {
	started := time.Now()
	id := chi.URLParam(r, "id")
	score, err := h.listings.Score(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respondError(w, started, http.StatusNotFound, "listing not found")
			return
		}
		respondError(w, started, http.StatusInternalServerError, err.Error())
		return
	}
	respond(w, started, score)
}

// GET /api/risk/listings/prioritized?limit=
func (h *Handlers) ListPrioritizedListings(w http.ResponseWriter, r *http.Request) {
	started := time.Now()
	limit := queryInt(r, "limit", 50)
	scores, err := h.store.ListPrioritizedListings(r.Context(), limit)
	if err != nil {
		respondError(w, started, http.StatusInternalServerError, err.Error())
		return
	}
	respond(w, started, map[string]any{"listings": scores, "count": len(scores)})
}

// GET /api/risk/area/{city}?neighborhood=
func (h *Handlers) GetAreaRisk(w http.ResponseWriter, r *http.Request) {
	started := time.Now()
	city := chi.URLParam(r, "city")
	assessment, err := h.areas.Assess(r.Context(), city, r.URL.Query().Get("neighborhood"))
	if err != nil {
		respondError(w, started, http.StatusInternalServerError, err.Error())
		return
	}
	respond(w, started, assessment)
}

// GET /api/risk/areas/ranked?limit=
func (h *Handlers) ListRankedAreas(w http.ResponseWriter, r *http.Request) {
	started := time.Now()
	limit := queryInt(r, "limit", 20)
	areas, err := h.store.ListAreaRankings(r.Context(), limit)
	if err != nil {
		respondError(w, started, http.StatusInternalServerError, err.Error())
		return
	}
	respond(w, started, map[string]any{"areas": areas, "count": len(areas)})
}

// POST /api/risk/refresh/landlords
func (h *Handlers) RefreshLandlordRisks(w http.ResponseWriter, r *http.Request) {
	started := time.Now()
	respond(w, started, h.refresher.RefreshLandlords(r.Context()))
}

// POST /api/risk/refresh/listings
func (h *Handlers) RefreshListingRisks(w http.ResponseWriter, r *http.Request) {
	started := time.Now()
	respond(w, started, h.refresher.RefreshListings(r.Context()))
}
