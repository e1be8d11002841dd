package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Sentinel strings used when a Field is rendered to a spreadsheet cell.
const (
	SentinelNotFound = "NOT_FOUND"
	SentinelError    = "ERROR"
)

// FieldState distinguishes "we looked and found nothing" from "the lookup failed".
type FieldState int

const (
	FieldNotFound FieldState = iota
	FieldFound
	FieldFailed
)

// Field is an optional contact attribute with three distinct outcomes:
// Found(value), NotFound, or Failed(reason).
//
// The zero value is NotFound.
type Field struct {
	State  FieldState
	Text   string
	Reason string
}

// Found wraps a located value. An empty value is treated as NotFound.
func Found(v string) Field {
	if v == "" {
		return NotFound()
	}
	return Field{State: FieldFound, Text: v}
}

// NotFound is a completed lookup that produced nothing.
func NotFound() Field { return Field{State: FieldNotFound} }

// Failed is a lookup whose call itself failed.
func Failed(reason string) Field { return Field{State: FieldFailed, Reason: reason} }

func (f Field) IsFound() bool  { return f.State == FieldFound }
func (f Field) IsFailed() bool { return f.State == FieldFailed }

// String renders the field the way output files expect it.
func (f Field) String() string {
	switch f.State {
	case FieldFound:
		return f.Text
	case FieldFailed:
		return SentinelError
	default:
		return SentinelNotFound
	}
}

// ParseField is the inverse of String. Failure reasons are not recoverable
// from the rendered form.
func ParseField(s string) Field {
	switch s {
	case "", SentinelNotFound:
		return NotFound()
	case SentinelError:
		return Failed("")
	default:
		return Found(s)
	}
}

func (f Field) MarshalJSON() ([]byte, error) {
	return json.Marshal(f.String())
}

func (f *Field) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*f = ParseField(s)
	return nil
}

// Value implements driver.Valuer so sqlx can store a Field as TEXT.
func (f Field) Value() (driver.Value, error) {
	return f.String(), nil
}

// Scan implements sql.Scanner.
func (f *Field) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*f = NotFound()
	case string:
		*f = ParseField(v)
	case []byte:
		*f = ParseField(string(v))
	default:
		return fmt.Errorf("cannot scan %T into Field", src)
	}
	return nil
}

// ContactInput is one input row for contact enrichment.
type ContactInput struct {
	ContactName   string `json:"contact_name" validate:"required"`
	CompanyName   string `json:"company_name" validate:"required"`
	CompanyDomain string `json:"company_domain"`
}

// ContactInfo is the enriched output for one contact.
type ContactInfo struct {
	ID              int64     `db:"id" json:"-"`
	RunID           string    `db:"run_id" json:"-"`
	ContactName     string    `db:"contact_name" json:"contact_name"`
	CompanyName     string    `db:"company_name" json:"company_name"`
	LinkedInURL     Field     `db:"linkedin_url" json:"linkedin_url"`
	CurrentJobTitle Field     `db:"current_job_title" json:"current_job_title"`
	WorkEmail       Field     `db:"work_email" json:"work_email"`
	CitationSource  Field     `db:"citation_source" json:"citation_source"`
	CreatedAt       time.Time `db:"created_at" json:"enriched_at"`
}

// FailedContact builds the row recorded when enrichment of a contact fails outright.
func FailedContact(in ContactInput, reason string) *ContactInfo {
	return &ContactInfo{
		ContactName:     in.ContactName,
		CompanyName:     in.CompanyName,
		LinkedInURL:     Failed(reason),
		CurrentJobTitle: Failed(reason),
		WorkEmail:       Failed(reason),
		CitationSource:  Failed(reason),
		CreatedAt:       time.Now().UTC(),
	}
}
