// Package policy implements Policy (§4.2): a pure decision-table function
// mapping one page's PageAnalysis and the resolved Options into a
// PageAction, in the same switch-on-discriminant style as the kept
// Configuration.ApplyReducedFeatureSet.
package policy

import (
	"github.com/inkmethod/ocrsandwich/internal/analyzer"
	"github.com/inkmethod/ocrsandwich/internal/config"
)

// ActionKind discriminates the PageAction variants of §4.2.
type ActionKind int

const (
	ActionRasterizeAndOCR ActionKind = iota
	ActionCopyOnly
	ActionReject
	ActionRedoOCR
)

// RejectReason names why a page was rejected, carried through to the
// exit-code mapping in §7.
type RejectReason string

const (
	RejectNone            RejectReason = ""
	RejectXFADynamic       RejectReason = "xfa_dynamic"
	RejectAlreadyHasText   RejectReason = "already_has_text"
	RejectEncryptedOrSigned RejectReason = "encrypted_or_signed"
)

// PageAction is Policy's verdict for one page.
type PageAction struct {
	Kind   ActionKind
	Reason RejectReason

	// Preprocess and DPI are only meaningful for ActionRasterizeAndOCR
	// and ActionRedoOCR.
	Preprocess config.PreprocessPlan
	DPI        float64

	Warning string
}

// DocumentFlags carries document-level facts PageAnalysis doesn't, since
// they apply once per document rather than per page (§4.2).
type DocumentFlags struct {
	EncryptedOrSigned bool
	XFADynamic        bool
}

// Decide implements the §4.2 decision table, in priority order, with the
// documented tie-break: force_ocr beats redo_ocr beats skip_text. The text
// classification it consults (hasUnmappableText/hasTextNonVector/xfaDynamic)
// comes straight off pa and doc, PageAnalyzer's own survey of the page and
// document (§4.1), never a caller-supplied override.
func Decide(pa analyzer.PageSurvey, doc DocumentFlags, opts config.Options) PageAction {
	if doc.EncryptedOrSigned {
		return PageAction{Kind: ActionReject, Reason: RejectEncryptedOrSigned}
	}

	if doc.XFADynamic {
		return PageAction{Kind: ActionReject, Reason: RejectXFADynamic}
	}

	forceOCR := opts.Policy == config.PolicyForceOCR
	redoOCR := opts.Policy == config.PolicyRedoOCR
	skipText := opts.Policy == config.PolicySkipText

	hasUnmappableText := pa.HasUnmappableText
	hasTextNonVector := pa.HasTextNonVector

	if hasUnmappableText && !forceOCR && !redoOCR {
		return PageAction{
			Kind:    ActionCopyOnly,
			Warning: "page has unmappable text; OCR would be redundant",
		}
	}

	if hasTextNonVector && !forceOCR && !redoOCR && !skipText {
		return PageAction{Kind: ActionReject, Reason: RejectAlreadyHasText}
	}

	if skipText && hasTextNonVector {
		return PageAction{Kind: ActionCopyOnly}
	}

	if opts.SkipBigMegapix > 0 && pa.LargestImageMegapixels > opts.SkipBigMegapix && !forceOCR && !redoOCR {
		return PageAction{
			Kind:    ActionCopyOnly,
			Warning: "page's largest image exceeds --skip-big; left as-is",
		}
	}

	dpi := effectiveDPI(pa, opts)

	if forceOCR {
		return PageAction{Kind: ActionRasterizeAndOCR, Preprocess: opts.Preprocess, DPI: dpi}
	}

	if redoOCR {
		return PageAction{Kind: ActionRedoOCR, Preprocess: opts.Preprocess, DPI: dpi}
	}

	return PageAction{Kind: ActionRasterizeAndOCR, Preprocess: opts.Preprocess, DPI: dpi}
}

// effectiveDPI folds the user's --oversample-dpi override over the
// analyzer's per-page estimate; a positive override always wins.
func effectiveDPI(pa analyzer.PageSurvey, opts config.Options) float64 {
	if opts.OversampleDPI > 0 {
		return opts.OversampleDPI
	}
	if pa.EffectiveDPI > 0 {
		return pa.EffectiveDPI
	}
	return 300
}
