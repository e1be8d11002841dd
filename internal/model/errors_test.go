package model

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestKindForStatus(t *testing.T) {
	tests := []struct {
		code      int
		want      ErrorKind
		transient bool
	}{
		{401, KindUnauthorized, false},
		{403, KindBadStatus, false},
		{404, KindBadStatus, false},
		{429, KindRateLimited, true},
		{500, KindServerError, true},
		{503, KindServerError, true},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.code), func(t *testing.T) {
			err := NewStatusError("brave", tt.code, "")
			if err.Kind != tt.want {
				t.Errorf("kind = %s, want %s", err.Kind, tt.want)
			}
			if err.Transient() != tt.transient {
				t.Errorf("transient = %v, want %v", err.Transient(), tt.transient)
			}
		})
	}
}

func TestNewTransportError(t *testing.T) {
	timeout := NewTransportError("openrouter", fmt.Errorf("calling: %w", context.DeadlineExceeded))
	if timeout.Kind != KindTimeout {
		t.Errorf("expected timeout, got %s", timeout.Kind)
	}
	if !errors.Is(timeout, context.DeadlineExceeded) {
		t.Error("expected the cause to stay reachable through Unwrap")
	}

	refused := NewTransportError("openrouter", errors.New("connection refused"))
	if refused.Kind != KindConnectionFailed || !refused.Transient() {
		t.Errorf("unexpected classification %+v", refused)
	}
}

func TestMalformedIsNotTransient(t *testing.T) {
	err := NewMalformedError("anthropic", "empty content", nil)
	if err.Transient() || !err.DataProcessing() {
		t.Errorf("unexpected classification %+v", err)
	}
}

func TestIsTransient_Wrapped(t *testing.T) {
	wrapped := fmt.Errorf("row 3: %w", NewStatusError("brave", 502, "bad gateway"))
	if !IsTransient(wrapped) {
		t.Error("expected wrapped 502 to be transient")
	}
	if IsTransient(errors.New("plain")) {
		t.Error("plain errors are not transient")
	}
}

func TestErrorMessages(t *testing.T) {
	err := NewStatusError("brave", 429, "slow down")
	if got := err.Error(); got != "brave: rate_limited (HTTP 429): slow down" {
		t.Errorf("unexpected message %q", got)
	}

	v := &ValidationError{Field: "company_name", Message: "must be a non-empty string"}
	if !IsValidation(fmt.Errorf("wrap: %w", v)) {
		t.Error("expected IsValidation through wrapping")
	}
	if got := v.Error(); got != "validation error: company_name: must be a non-empty string" {
		t.Errorf("unexpected message %q", got)
	}
}
