// Package pipeline implements the PipelineEngine (§4.6/§5): it enumerates
// pages, fans PageAnalyzer/rasterize/OCR work out over a worker pool
// (golang.org/x/sync/errgroup), serializes grafting across those workers
// with a mutex, and aggregates per-page errors with go.uber.org/multierr —
// the concurrency story the single-threaded teacher never needed, built
// here from the same cancellation-propagates-to-stop-the-whole-run idiom
// its CLI commands use for a single synchronous pass.
package pipeline

import "go.uber.org/multierr"

// Code is the stable exit code taxonomy of §7.
type Code int

const (
	CodeOK                   Code = 0
	CodeBadArguments         Code = 1
	CodeInputNotPdf          Code = 2
	CodeMissingDependency    Code = 3
	CodeInvalidOutputPdf     Code = 4
	CodeFileAccess           Code = 5
	CodeAlreadyHasOCR        Code = 6
	CodeChildProcess         Code = 7
	CodeEncrypted            Code = 8
	CodeInvalidConfig        Code = 9
	CodePdfaConversionFailed Code = 10
	CodeOther                Code = 15
	CodeCancelled            Code = 130
)

// Error is a classified pipeline failure; its Code determines the
// process exit status and whether the partial output is retained (§7).
type Error struct {
	Code    Code
	PageNr  int // 0 when document-level
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.PageNr > 0 {
		return e.Message + " (page " + itoa(e.PageNr) + ")"
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Cause }

func itoa(i int) string {
	if i == 0 {
		return "0"
	}
	neg := i < 0
	if neg {
		i = -i
	}
	var buf [20]byte
	pos := len(buf)
	for i > 0 {
		pos--
		buf[pos] = byte('0' + i%10)
		i /= 10
	}
	if neg {
		pos--
		buf[pos] = '-'
	}
	return string(buf[pos:])
}

func newErr(code Code, pageNr int, msg string, cause error) *Error {
	return &Error{Code: code, PageNr: pageNr, Message: msg, Cause: cause}
}

// ExitCode walks err looking for the first *Error and returns its Code,
// defaulting to CodeOther for an unclassified error and CodeOK for nil —
// mirroring how main() maps any returned error to a process exit status.
func ExitCode(err error) Code {
	if err == nil {
		return CodeOK
	}
	for _, e := range multierr.Errors(err) {
		var pe *Error
		if asError(e, &pe) {
			return pe.Code
		}
	}
	return CodeOther
}

func asError(err error, target **Error) bool {
	for err != nil {
		if pe, ok := err.(*Error); ok {
			*target = pe
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}

// IsFatal reports whether err's class stops the whole run rather than
// downgrading just the page it occurred on (§7 Propagation).
func IsFatal(err error) bool {
	var pe *Error
	if !asError(err, &pe) {
		return true
	}
	switch pe.Code {
	case CodeOK:
		return false
	default:
		return true
	}
}
