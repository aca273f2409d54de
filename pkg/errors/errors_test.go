package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
	"testing"
)

func TestNewAndAccessors(t *testing.T) {
	err := New(CodeNotFound, "ingredient not found").WithDetails(map[string]string{"id": "abc"})

	if err.Code() != CodeNotFound {
		t.Fatalf("expected code %s, got %s", CodeNotFound, err.Code())
	}
	if err.Message() != "ingredient not found" {
		t.Fatalf("unexpected message %q", err.Message())
	}
	if err.Details() == nil {
		t.Fatal("expected details to be set")
	}
	if err.Error() != "NOT_FOUND: ingredient not found" {
		t.Fatalf("unexpected Error() %q", err.Error())
	}
}

func TestWrapPreservesCause(t *testing.T) {
	cause := stdErrors.New("connection refused")
	err := Wrap(CodeDependency, cause, "query shopping list")

	if !stdErrors.Is(err, cause) {
		t.Fatal("expected wrapped cause to be discoverable with errors.Is")
	}
	if err.Unwrap() != cause {
		t.Fatal("expected Unwrap to return the cause")
	}
}

func TestAsFindsNestedCodedError(t *testing.T) {
	inner := New(CodeConflict, "duplicate list row")
	outer := fmt.Errorf("completing purchase: %w", inner)

	typed := As(outer)
	if typed == nil {
		t.Fatal("expected As to find the coded error")
	}
	if typed.Code() != CodeConflict {
		t.Fatalf("expected conflict code, got %s", typed.Code())
	}

	if As(stdErrors.New("plain")) != nil {
		t.Fatal("expected As to return nil for non-coded errors")
	}
}

func TestMetadataForUnknownCode(t *testing.T) {
	meta := MetadataFor(Code("SOMETHING_ELSE"))
	if meta.HTTPStatus != http.StatusInternalServerError {
		t.Fatalf("unknown codes should map to internal metadata, got %d", meta.HTTPStatus)
	}
	if MetadataFor(CodeValidation).HTTPStatus != http.StatusBadRequest {
		t.Fatal("validation metadata mismatch")
	}
}

func TestDumpCollectsChain(t *testing.T) {
	cause := stdErrors.New("broken pipe")
	err := Wrap(CodeDependency, cause, "upsert price")

	dump := Dump(err)
	if dump.Code != CodeDependency {
		t.Fatalf("expected dependency code in dump, got %s", dump.Code)
	}
	if len(dump.Chain) < 2 {
		t.Fatalf("expected at least two chain entries, got %v", dump.Chain)
	}
}
