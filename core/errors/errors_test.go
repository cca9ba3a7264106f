package errors

import (
	stderrors "errors"
	"testing"
)

func TestWrapNil(t *testing.T) {
	if err := Wrap(nil, CategoryIOFailure, "io", "retry"); err != nil {
		t.Fatalf("expected nil for nil cause, got %v", err)
	}
}

func TestWrapCarriesClassification(t *testing.T) {
	cause := stderrors.New("registry entry missing")
	err := Wrap(cause, CategoryNotFound, "verifier_not_found", "add the verifier first")
	if err.Error() != "registry entry missing" {
		t.Fatalf("unexpected message: %s", err.Error())
	}
	if CategoryOf(err) != CategoryNotFound {
		t.Fatalf("unexpected category: %s", CategoryOf(err))
	}
	if CodeOf(err) != "verifier_not_found" {
		t.Fatalf("unexpected code: %s", CodeOf(err))
	}
	if HintOf(err) != "add the verifier first" {
		t.Fatalf("unexpected hint: %s", HintOf(err))
	}
	if !stderrors.Is(err, cause) {
		t.Fatalf("expected wrapped cause to unwrap")
	}
}

func TestWrapPreservesInnerClassification(t *testing.T) {
	inner := New("duplicate verifier", CategoryConflict, "verifier_exists", "use --overwrite")
	outer := Wrap(inner, CategoryIOFailure, "save_failed", "")
	// errors.As stops at the outermost classified error.
	if CategoryOf(outer) != CategoryIOFailure {
		t.Fatalf("unexpected outer category: %s", CategoryOf(outer))
	}
	if !IsConflict(inner) {
		t.Fatalf("expected inner conflict")
	}
}

func TestCategoryOfUnclassified(t *testing.T) {
	if got := CategoryOf(stderrors.New("plain")); got != "" {
		t.Fatalf("expected empty category, got %q", got)
	}
	if IsNotFound(nil) || IsConflict(nil) || IsInvalidInput(nil) {
		t.Fatalf("nil error must not classify")
	}
}
