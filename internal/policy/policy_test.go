package policy

import (
	"testing"

	"github.com/inkmethod/ocrsandwich/internal/analyzer"
	"github.com/inkmethod/ocrsandwich/internal/config"
)

func TestDecideEncryptedAlwaysRejected(t *testing.T) {
	opts := config.Default()
	opts.Policy = config.PolicyForceOCR
	a := Decide(analyzer.PageSurvey{}, DocumentFlags{EncryptedOrSigned: true}, opts)
	if a.Kind != ActionReject || a.Reason != RejectEncryptedOrSigned {
		t.Fatalf("got %+v", a)
	}
}

func TestDecideXFADynamicRejected(t *testing.T) {
	opts := config.Default()
	a := Decide(analyzer.PageSurvey{}, DocumentFlags{XFADynamic: true}, opts)
	if a.Kind != ActionReject || a.Reason != RejectXFADynamic {
		t.Fatalf("got %+v", a)
	}
}

func TestDecideUnmappableTextIsCopyOnly(t *testing.T) {
	opts := config.Default()
	a := Decide(analyzer.PageSurvey{HasUnmappableText: true}, DocumentFlags{}, opts)
	if a.Kind != ActionCopyOnly {
		t.Fatalf("got %+v", a)
	}
}

func TestDecideAlreadyHasTextRejected(t *testing.T) {
	opts := config.Default()
	a := Decide(analyzer.PageSurvey{HasTextNonVector: true}, DocumentFlags{}, opts)
	if a.Kind != ActionReject || a.Reason != RejectAlreadyHasText {
		t.Fatalf("got %+v", a)
	}
}

func TestDecideSkipTextWithExistingTextIsCopyOnly(t *testing.T) {
	opts := config.Default()
	opts.Policy = config.PolicySkipText
	a := Decide(analyzer.PageSurvey{HasTextNonVector: true}, DocumentFlags{}, opts)
	if a.Kind != ActionCopyOnly {
		t.Fatalf("got %+v", a)
	}
}

func TestDecideForceOCRBeatsAlreadyHasText(t *testing.T) {
	opts := config.Default()
	opts.Policy = config.PolicyForceOCR
	a := Decide(analyzer.PageSurvey{HasTextNonVector: true}, DocumentFlags{}, opts)
	if a.Kind != ActionRasterizeAndOCR {
		t.Fatalf("force_ocr must override already-has-text rejection, got %+v", a)
	}
}

func TestDecideRedoOCR(t *testing.T) {
	opts := config.Default()
	opts.Policy = config.PolicyRedoOCR
	a := Decide(analyzer.PageSurvey{HasTextNonVector: true}, DocumentFlags{}, opts)
	if a.Kind != ActionRedoOCR {
		t.Fatalf("got %+v", a)
	}
}

func TestDecidePlainPageRasterizes(t *testing.T) {
	opts := config.Default()
	a := Decide(analyzer.PageSurvey{EffectiveDPI: 250}, DocumentFlags{}, opts)
	if a.Kind != ActionRasterizeAndOCR || a.DPI != 250 {
		t.Fatalf("got %+v", a)
	}
}

func TestEffectiveDPIOverrideWins(t *testing.T) {
	opts := config.Default()
	opts.OversampleDPI = 600
	a := Decide(analyzer.PageSurvey{EffectiveDPI: 250}, DocumentFlags{}, opts)
	if a.DPI != 600 {
		t.Fatalf("DPI = %v, want override 600", a.DPI)
	}
}
