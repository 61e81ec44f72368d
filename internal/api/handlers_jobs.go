package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
)

// GET /jobs
func (h *Handlers) ListJobs(w http.ResponseWriter, r *http.Request) {
	started := time.Now()
	jobs := h.jobs.List()
	respond(w, started, map[string]any{"jobs": jobs, "count": len(jobs)})
}

// POST /jobs/{name}/trigger
func (h *Handlers) TriggerJob(w http.ResponseWriter, r *http.Request) {
	started := time.Now()
	name := chi.URLParam(r, "name")
	result, err := h.jobs.Trigger(r.Context(), name)
	if err != nil {
		status := http.StatusBadRequest
		if strings.Contains(err.Error(), "skipped") {
			status = http.StatusConflict
		}
		respondError(w, started, status, err.Error())
		return
	}
	respond(w, started, result)
}

// POST /jobs/{name}/start
func (h *Handlers) StartJob(w http.ResponseWriter, r *http.Request) {
	started := time.Now()
	name := chi.URLParam(r, "name")
	if err := h.jobs.StartJob(name); err != nil {
		respondError(w, started, http.StatusBadRequest, err.Error())
		return
	}
	respond(w, started, map[string]any{"job": name, "running": true})
}

// POST /jobs/{name}/stop
func (h *Handlers) StopJob(w http.ResponseWriter, r *http.Request) {
	started := time.Now()
	name := chi.URLParam(r, "name")
	if err := h.jobs.StopJob(name); err != nil {
		respondError(w, started, http.StatusBadRequest, err.Error())
		return
	}
	respond(w, started, map[string]any{"job": name, "running": false})
}
