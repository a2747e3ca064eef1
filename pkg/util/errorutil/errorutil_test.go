package errorutil

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestToDomainErrorPassesThroughWrapped(t *testing.T) {
	base := NewNotFound("ticket", map[string]any{"id": "abc"})
	wrapped := fmt.Errorf("load: %w", base)

	got := ToDomainError(wrapped)
	if got.Code != CodeNotFound {
		t.Fatalf("expected %s, got %s", CodeNotFound, got.Code)
	}
	if got.HTTPStatus != http.StatusNotFound {
		t.Errorf("expected 404, got %d", got.HTTPStatus)
	}
	if got.Details["id"] != "abc" {
		t.Errorf("details lost: %v", got.Details)
	}
}

func TestToDomainErrorWrapsUnknown(t *testing.T) {
	got := ToDomainError(errors.New("boom"))
	if got.Code != CodeInternal || got.HTTPStatus != http.StatusInternalServerError {
		t.Fatalf("unexpected mapping: %+v", got)
	}
	if ToDomainError(nil) != nil {
		t.Error("expected nil for nil error")
	}
}

func TestStoreErrorKeepsCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewStoreError(cause)

	if !IsStore(err) {
		t.Fatal("expected store error")
	}
	if IsValidation(err) || IsNotFound(err) {
		t.Error("store error must not match other kinds")
	}
	if !errors.Is(err, cause) {
		t.Error("expected cause to be unwrappable")
	}
}

func TestFieldValidationErrorListsFields(t *testing.T) {
	err := NewFieldValidationError(map[string]string{
		"description": "must be at least 10 characters",
		"location":    "required",
	})
	if !IsValidation(err) {
		t.Fatal("expected validation error")
	}
	fields, ok := ToDomainError(err).Details["fields"].(map[string]any)
	if !ok {
		t.Fatalf("expected fields map, got %T", ToDomainError(err).Details["fields"])
	}
	if len(fields) != 2 {
		t.Errorf("expected 2 fields, got %d", len(fields))
	}
}
