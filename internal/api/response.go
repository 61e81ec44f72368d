package api

import (
	"encoding/json"
	"log"
	"net/http"
	"time"
)

// Meta is attached to every JSON response.
type Meta struct {
	Timestamp        time.Time `json:"timestamp"`
	ProcessingTimeMs int64     `json:"processing_time_ms"`
}

// Envelope is the uniform response body: success flag, payload or
// error, and timing metadata.
type Envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Meta    Meta   `json:"meta"`
}

func writeJSON(w http.ResponseWriter, status int, env Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(env); err != nil {
		log.Printf("[API] response encode failed: %v", err)
	}
}

func respond(w http.ResponseWriter, started time.Time, data any) {
	writeJSON(w, http.StatusOK, Envelope{
		Success: true,
		Data:    data,
		Meta:    metaSince(started),
	})
}

func respondError(w http.ResponseWriter, started time.Time, status int, message string) {
	writeJSON(w, status, Envelope{
		Success: false,
		Error:   message,
		Meta:    metaSince(started),
	})
}

func metaSince(started time.Time) Meta {
	return Meta{
		Timestamp:        time.Now().UTC(),
		ProcessingTimeMs: time.Since(started).Milliseconds(),
	}
}
