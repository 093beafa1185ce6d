package pipeline

import (
	"errors"
	"testing"

	"go.uber.org/multierr"
)

func TestExitCodeNil(t *testing.T) {
	if ExitCode(nil) != CodeOK {
		t.Fatal("expected CodeOK for nil error")
	}
}

func TestExitCodeClassified(t *testing.T) {
	err := newErr(CodeEncrypted, 3, "document is encrypted", nil)
	if ExitCode(err) != CodeEncrypted {
		t.Fatalf("got %v", ExitCode(err))
	}
}

func TestExitCodeUnclassifiedDefaultsToOther(t *testing.T) {
	if ExitCode(errors.New("boom")) != CodeOther {
		t.Fatal("expected CodeOther for an unclassified error")
	}
}

func TestExitCodeFromCombined(t *testing.T) {
	combined := multierr.Combine(errors.New("noise"), newErr(CodeInvalidOutputPdf, 0, "bad output", nil))
	if ExitCode(combined) != CodeInvalidOutputPdf {
		t.Fatalf("got %v", ExitCode(combined))
	}
}

func TestErrorMessageIncludesPage(t *testing.T) {
	err := newErr(CodeChildProcess, 5, "ocr failed", nil)
	if got := err.Error(); got != "ocr failed (page 5)" {
		t.Fatalf("Error() = %q", got)
	}
}

func TestIsFatalUnclassifiedIsFatal(t *testing.T) {
	if !IsFatal(errors.New("boom")) {
		t.Fatal("an unclassified error should be treated as fatal")
	}
}
