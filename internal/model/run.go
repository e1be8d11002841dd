package model

import "time"

// RunKind identifies what a batch run enriched.
type RunKind string

const (
	RunCompanies RunKind = "companies"
	RunContacts  RunKind = "contacts"
	RunAPI       RunKind = "api"
)

// Run is one batch invocation. Rows are stored against it as they complete,
// so an interrupted run still has every finished row.
type Run struct {
	ID          string     `db:"id" json:"id"`
	Kind        RunKind    `db:"kind" json:"kind"`
	InputPath   string     `db:"input_path" json:"input_path"`
	Total       int        `db:"total" json:"total"`
	Completed   int        `db:"completed" json:"completed"`
	Interrupted bool       `db:"interrupted" json:"interrupted"`
	StartedAt   time.Time  `db:"started_at" json:"started_at"`
	FinishedAt  *time.Time `db:"finished_at" json:"finished_at,omitempty"`
}

// ModelCall tracks each call to a model provider for cost monitoring.
type ModelCall struct {
	ID         int64     `db:"id" json:"id"`
	Subject    string    `db:"subject" json:"subject"`
	Purpose    string    `db:"purpose" json:"purpose"`
	Provider   string    `db:"provider" json:"provider"`
	Model      string    `db:"model" json:"model"`
	Success    bool      `db:"success" json:"success"`
	ErrorKind  *string   `db:"error_kind" json:"error_kind,omitempty"`
	DurationMs *int64    `db:"duration_ms" json:"duration_ms,omitempty"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}
