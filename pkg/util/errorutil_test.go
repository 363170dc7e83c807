package util

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestToDomainErrorPassthrough(t *testing.T) {
	orig := NewForbidden("Only Admins can reject tickets")
	de := ToDomainError(orig)
	if de.Code != "FORBIDDEN" || de.HTTPStatus != http.StatusForbidden {
		t.Fatalf("unexpected mapping: %+v", de)
	}
	if de.Message != "Only Admins can reject tickets" {
		t.Fatalf("message lost: %q", de.Message)
	}
}

func TestToDomainErrorWrapsUnknown(t *testing.T) {
	de := ToDomainError(errors.New("boom"))
	if de.Code != "INTERNAL_ERROR" || de.HTTPStatus != http.StatusInternalServerError {
		t.Fatalf("unexpected fallback: %+v", de)
	}
}

func TestToDomainErrorUnwrapsWrappedErrors(t *testing.T) {
	wrapped := fmt.Errorf("while transitioning: %w", NewPersistenceError(errors.New("db down")))
	if !HasCode(wrapped, "PERSISTENCE_FAILED") {
		t.Fatalf("wrapped DomainError not found: %v", wrapped)
	}
}

func TestToDomainErrorNil(t *testing.T) {
	if ToDomainError(nil) != nil {
		t.Fatal("nil must stay nil")
	}
}

func TestValidationDetailsSurvive(t *testing.T) {
	err := NewValidationError("missing required fields", map[string]any{"title": "required"})
	de := ToDomainError(err)
	if de.Details["title"] != "required" {
		t.Fatalf("details lost: %+v", de.Details)
	}
	if de.HTTPStatus != http.StatusBadRequest {
		t.Fatalf("unexpected status %d", de.HTTPStatus)
	}
}
