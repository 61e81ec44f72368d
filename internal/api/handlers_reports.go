package api

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/setal/compliance-intel/internal/domain"
	"github.com/setal/compliance-intel/internal/store"
)

func wantsGenerate(r *http.Request) bool {
	return r.URL.Query().Get("generate") == "true"
}

// GET /api/reports/weekly?generate=bool
func (h *Handlers) GetWeeklyReport(w http.ResponseWriter, r *http.Request) {
	started := time.Now()
	var (
		report *domain.WeeklyReport
		err    error
	)
	if wantsGenerate(r) {
		report, err = h.weekly.Generate(r.Context())
	} else {
		report, err = h.store.GetLatestWeeklyReport(r.Context())
	}
	h.respondReport(w, started, report, err, "no weekly report available yet")
}

// GET /api/reports/weekly/{id}
func (h *Handlers) GetWeeklyReportByID(w http.ResponseWriter, r *http.Request) {
	started := time.Now()
	report, err := h.store.GetWeeklyReport(r.Context(), chi.URLParam(r, "id"))
	h.respondReport(w, started, report, err, "weekly report not found")
}

// GET /api/reports/monthly?generate=bool&month=&year=
func (h *Handlers) GetMonthlyReport(w http.ResponseWriter, r *http.Request) {
	started := time.Now()
	year := queryInt(r, "year", 0)
	month := queryInt(r, "month", 0)
	if (year == 0) != (month == 0) {
		respondError(w, started, http.StatusBadRequest, "month and year must be provided together")
		return
	}
	if month < 0 || month > 12 {
		respondError(w, started, http.StatusBadRequest, "month must be between 1 and 12")
		return
	}

	var (
		report *domain.MonthlyReport
		err    error
	)
	switch {
	case wantsGenerate(r):
		report, err = h.monthly.Generate(r.Context(), year, time.Month(month))
	case year != 0:
		id := fmt.Sprintf("monthly-%04d-%02d", year, month)
		report, err = h.store.GetMonthlyReport(r.Context(), id)
	default:
		report, err = h.store.GetLatestMonthlyReport(r.Context())
	}
	h.respondReport(w, started, report, err, "no monthly report available yet")
}

// GET /api/reports/enforcement?generate=bool
func (h *Handlers) GetEnforcementReport(w http.ResponseWriter, r *http.Request) {
	started := time.Now()
	var (
		report *domain.EnforcementReport
		err    error
	)
	if wantsGenerate(r) {
		report, err = h.enforcement.Generate(r.Context())
	} else {
		report, err = h.store.GetLatestEnforcementReport(r.Context())
	}
	h.respondReport(w, started, report, err, "no enforcement report available yet")
}

// GET /api/reports/enforcement/targets?limit=&city=
func (h *Handlers) GetEnforcementTargets(w http.ResponseWriter, r *http.Request) {
	started := time.Now()
	report, err := h.store.GetLatestEnforcementReport(r.Context())
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respondError(w, started, http.StatusNotFound, "no enforcement report available yet")
			return
		}
		respondError(w, started, http.StatusInternalServerError, err.Error())
		return
	}

	targets := report.Targets
	if city := r.URL.Query().Get("city"); city != "" {
		filtered := make([]domain.EnforcementTarget, 0, len(targets))
		for _, t := range targets {
			if t.City == city {
				filtered = append(filtered, t)
			}
		}
		targets = filtered
	}
	if limit := queryInt(r, "limit", 0); limit > 0 && limit < len(targets) {
		targets = targets[:limit]
	}
	respond(w, started, map[string]any{
		"targets":      targets,
		"count":        len(targets),
		"generated_at": report.GeneratedAt,
	})
}

// GET /api/reports/history?type=&limit=
func (h *Handlers) GetReportHistory(w http.ResponseWriter, r *http.Request) {
	started := time.Now()
	reportType := r.URL.Query().Get("type")
	if reportType == "" {
		respondError(w, started, http.StatusBadRequest, "type query parameter is required")
		return
	}
	limit := queryInt(r, "limit", 10)
	history, err := h.store.ListReportHistory(r.Context(), reportType, limit)
	if err != nil {
		respondError(w, started, http.StatusBadRequest, err.Error())
		return
	}
	respond(w, started, map[string]any{"history": history, "count": len(history)})
}

// respondReport writes a report payload with uniform not-found and
// store-error handling.
func (h *Handlers) respondReport(w http.ResponseWriter, started time.Time, report any, err error, notFound string) {
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respondError(w, started, http.StatusNotFound, notFound)
			return
		}
		respondError(w, started, http.StatusInternalServerError, err.Error())
		return
	}
	respond(w, started, report)
}
