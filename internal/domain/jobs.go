package domain

import "time"

// JobStatus enumerates terminal states of a scheduled job run.
type JobStatus string

const (
	JobSuccess JobStatus = "success"
	JobPartial JobStatus = "partial"
	JobFailed  JobStatus = "failed"
)

// JobError is one per-record failure inside a job run.
type JobError struct {
	Timestamp time.Time `json:"timestamp"`
	Message   string    `json:"message"`
	Context   string    `json:"context,omitempty"`
}

// JobResult aggregates the outcome of a single job run.
type JobResult struct {
	JobID            string     `json:"job_id"`
	JobName          string     `json:"job_name"`
	Status           JobStatus  `json:"status"`
	StartTime        time.Time  `json:"start_time"`
	EndTime          time.Time  `json:"end_time"`
	DurationMs       int64      `json:"duration_ms"`
	RecordsProcessed int        `json:"records_processed"`
	Errors           []JobError `json:"errors,omitempty"`
}

// Resolve sets Status from the processed/error counts. A run with no
// errors is success; with some progress and some errors, partial.
func (r *JobResult) Resolve() {
	switch {
	case len(r.Errors) == 0:
		r.Status = JobSuccess
	case r.RecordsProcessed > 0:
		r.Status = JobPartial
	default:
		r.Status = JobFailed
	}
}

// JobHistory is the append-only persisted form of a JobResult.
type JobHistory struct {
	JobID            string     `json:"job_id"`
	JobName          string     `json:"job_name"`
	Status           JobStatus  `json:"status"`
	StartTime        time.Time  `json:"start_time"`
	EndTime          time.Time  `json:"end_time"`
	DurationMs       int64      `json:"duration_ms"`
	RecordsProcessed int        `json:"records_processed"`
	Errors           []JobError `json:"errors,omitempty"`
}
