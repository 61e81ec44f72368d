package domain

import "time"

// EnrichmentLog is the audit row written after every enrichment request.
// Query fields are stored redacted; raw PII never lands in the store.
type EnrichmentLog struct {
	ID               string    `json:"id"`
	QueryPhone       string    `json:"query_phone,omitempty"`
	QueryEmail       string    `json:"query_email,omitempty"`
	QueryName        string    `json:"query_name,omitempty"`
	SourcesQueried   int       `json:"sources_queried"`
	SourcesSucceeded int       `json:"sources_succeeded"`
	SourcesFailed    int       `json:"sources_failed"`
	RiskScore        int       `json:"risk_score"`
	RiskLevel        string    `json:"risk_level"`
	DurationMs       int64     `json:"duration_ms"`
	CreatedAt        time.Time `json:"created_at"`
}

// VerificationLog is the audit row written after every verification request.
type VerificationLog struct {
	ID          string    `json:"id"`
	SubjectName string    `json:"subject_name"`
	Status      string    `json:"status"`
	RiskScore   int       `json:"risk_score"`
	ChecksRun   []string  `json:"checks_run"`
	DurationMs  int64     `json:"duration_ms"`
	CreatedAt   time.Time `json:"created_at"`
}
