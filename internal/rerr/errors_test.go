package rerr

import (
	"errors"
	"fmt"
	"testing"
)

func TestVideoUnavailableError_UnwrapsLastCause(t *testing.T) {
	cause := &PersonaRejectedError{Persona: "ios"}
	err := &VideoUnavailableError{LastCause: cause}

	var rejected *PersonaRejectedError
	if !errors.As(err, &rejected) {
		t.Fatalf("errors.As should see through VideoUnavailableError to its LastCause")
	}
	if rejected.Persona != "ios" {
		t.Fatalf("Persona = %q, want %q", rejected.Persona, "ios")
	}
}

func TestVideoUnavailableError_MessageWithoutCause(t *testing.T) {
	err := &VideoUnavailableError{}
	if err.Error() != "video unavailable" {
		t.Fatalf("Error() = %q, want %q", err.Error(), "video unavailable")
	}
}

func TestTransientFailure_Unwrap(t *testing.T) {
	cause := fmt.Errorf("connection reset")
	err := &TransientFailure{Cause: cause}
	if !errors.Is(err, cause) {
		t.Fatalf("errors.Is should find the wrapped cause")
	}
}

func TestVideoRequiresPurchaseError_MessageIncludesPreviewWhenSet(t *testing.T) {
	withPreview := &VideoRequiresPurchaseError{Persona: "android", Preview: "abc12345678"}
	if withPreview.Error() == (&VideoRequiresPurchaseError{Persona: "android"}).Error() {
		t.Fatalf("expected preview id to change the error message")
	}
}
