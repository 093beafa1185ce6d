package pipeline

import (
	"context"
	"errors"
	"os"
	"sync"
	"time"

	"github.com/inkmethod/ocrsandwich/internal/analyzer"
	"github.com/inkmethod/ocrsandwich/internal/collab"
	"github.com/inkmethod/ocrsandwich/internal/config"
	"github.com/inkmethod/ocrsandwich/internal/graft"
	"github.com/inkmethod/ocrsandwich/internal/imageopt"
	"github.com/inkmethod/ocrsandwich/internal/ocrmodel"
	"github.com/inkmethod/ocrsandwich/internal/policy"
	"github.com/inkmethod/ocrsandwich/internal/textlayer"
	"github.com/inkmethod/ocrsandwich/pkg/pdfcpu/model"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"
)

// PageResult is a PageHandle's terminal state after the pipeline runs.
type PageResult struct {
	PageNr int
	Action policy.ActionKind
	Text   string // the page's sidecar text, empty when no OCR ran
	Err    error  // non-nil only for a recoverable per-page downgrade
}

// Run is one invocation's inputs: the already-opened document, the pages
// to process (1-based, in order) and the resolved collaborators/options.
type Run struct {
	Ctx       *model.Context
	InputPath string // source file path, for collaborators that shell out to a file-based tool (e.g. pdftoppm)
	PageNrs   []int
	Options   config.Options
	Registry  *collab.Registry
	WorkDir   *WorkDir

	// OnPageDone, if set, is called once per page after it finishes
	// (successfully or not), for a caller-driven progress display
	// (cmd/ocrsandwich wires this to a progressbar/v3 bar).
	OnPageDone func(pageNr int)
}

// Execute runs the full per-page pipeline: analyze, decide, rasterize +
// OCR (when required), render the text layer, graft it onto the page —
// with up to Options.Jobs pages in flight concurrently — and finally a
// single ImageOptimizer pass over the whole document. Grafting runs on the
// worker goroutines but is serialized by a shared mutex, since the kept
// pdfcpu object graph is not safe for concurrent mutation from multiple
// goroutines.
func Execute(ctx context.Context, run Run) ([]PageResult, imageopt.Report, error) {
	docSurvey, err := analyzer.AnalyzeDocument(run.Ctx)
	if err != nil {
		return nil, imageopt.Report{}, newErr(CodeOther, 0, "document analysis failed", err)
	}
	docFlags := policy.DocumentFlags{
		EncryptedOrSigned: docSurvey.Encrypted && !run.Options.InvalidateDigitalSignatures,
		XFADynamic:        docSurvey.IsXFADynamic,
	}

	surveys, err := analyzer.Analyze(run.Ctx, run.PageNrs)
	if err != nil {
		return nil, imageopt.Report{}, newErr(CodeOther, 0, "page analysis failed", err)
	}
	surveyByPage := make(map[int]analyzer.PageSurvey, len(surveys))
	for _, s := range surveys {
		surveyByPage[s.PageNr] = s
	}

	// Built once per document and shared read-only by every page: the
	// Type0/CIDFontType2/Identity-H font graft.Graft attaches to whichever
	// page gets an invisible text layer (§4.3/§4.4), instead of each page
	// minting its own redundant font objects.
	font, err := graft.BuildIdentityFont(run.Ctx.XRefTable)
	if err != nil {
		return nil, imageopt.Report{}, newErr(CodeOther, 0, "failed to build text layer font", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, run.Options.Jobs))

	results := make([]PageResult, len(run.PageNrs))
	var graftMu sync.Mutex

	for i, pageNr := range run.PageNrs {
		i, pageNr := i, pageNr
		g.Go(func() error {
			res, err := processPage(gctx, run, surveyByPage[pageNr], docFlags, pageNr, &graftMu, font)
			results[i] = res
			if run.OnPageDone != nil {
				run.OnPageDone(pageNr)
			}
			if err != nil && IsFatal(err) {
				return err
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return results, imageopt.Report{}, err
	}

	report, err := imageopt.Optimize(ctx, run.Ctx, run.PageNrs, imageopt.Options{
		Level:    imageopt.Level(run.Options.OptimizeLevel),
		Registry: run.Registry,
	})
	if err != nil {
		return results, report, newErr(CodeOther, 0, "image optimization failed", err)
	}

	return results, report, nil
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// processPage drives one page through analysis → policy → (rasterize +
// OCR) → render → graft. It returns a non-fatal *Error on the page's
// Err field for downgrades (OcrTimeout, soft render errors under
// --continue-on-soft-render-error) instead of failing the whole run.
func processPage(ctx context.Context, run Run, survey analyzer.PageSurvey, docFlags policy.DocumentFlags, pageNr int, graftMu *sync.Mutex, font *graft.IdentityFont) (PageResult, error) {
	action := policy.Decide(survey, docFlags, run.Options)

	res := PageResult{PageNr: pageNr, Action: action.Kind}

	switch action.Kind {
	case policy.ActionReject:
		return res, rejectError(action, pageNr)

	case policy.ActionCopyOnly:
		if action.Warning != "" {
			res.Err = newErr(CodeOther, pageNr, action.Warning, nil)
		}
		return res, nil

	case policy.ActionRasterizeAndOCR, policy.ActionRedoOCR:
		if action.Kind == policy.ActionRedoOCR {
			// redo_ocr replaces rather than stacks: strip whatever invisible
			// OCR layer a previous run grafted before rasterizing and
			// re-OCRing, so the page never accumulates more than one.
			graftMu.Lock()
			err := graft.StripInvisibleText(run.Ctx, pageNr)
			graftMu.Unlock()
			if err != nil {
				return res, newErr(CodeOther, pageNr, "failed to strip previous OCR text layer", err)
			}
		}

		page, repl, err := rasterizeAndOCR(ctx, run, pageNr, action)
		if err != nil {
			if ctx.Err() != nil {
				return res, newErr(CodeCancelled, pageNr, "cancelled", ctx.Err())
			}
			if errors.Is(err, collab.ErrMissing) {
				return res, newErr(CodeMissingDependency, pageNr, "required external program not found", err)
			}
			var classified *Error
			if errors.As(err, &classified) {
				// Already classified (e.g. a non_ocr_timeout expiry or a
				// missing-dependency failure): always fatal, never the
				// OCR-timeout downgrade below.
				return res, classified
			}
			if errors.Is(err, context.DeadlineExceeded) {
				// §4.6/§7 OcrTimeout: always non-fatal, the page is
				// downgraded to CopyOnly (nothing was grafted yet, so
				// leaving the original content stream untouched IS the
				// downgrade) regardless of --continue-on-soft-render-error.
				res.Action = policy.ActionCopyOnly
				res.Err = newErr(CodeOther, pageNr, "OCR timed out, page left as-is", err)
				return res, nil
			}
			if run.Options.ContinueOnSoftRenderError {
				res.Action = policy.ActionCopyOnly
				res.Err = newErr(CodeChildProcess, pageNr, "OCR failed, page left as-is", err)
				return res, nil
			}
			return res, newErr(CodeChildProcess, pageNr, "OCR failed", err)
		}

		target := textlayer.Target{WidthPt: survey.WidthPt, HeightPt: survey.HeightPt}
		rendered, err := textlayer.Render(*page, target, model.FontMap{})
		if err != nil {
			return res, newErr(CodeOther, pageNr, "text layer render failed", err)
		}
		res.Text = page.PlainText()

		graftMu.Lock()
		err = graft.Graft(run.Ctx, graft.Plan{PageNr: pageNr, TextLayer: rendered, Replacement: repl, Font: font})
		graftMu.Unlock()
		if err != nil {
			return res, newErr(CodeOther, pageNr, "graft failed", err)
		}
		return res, nil
	}

	return res, nil
}

func rejectError(action policy.PageAction, pageNr int) error {
	switch action.Reason {
	case policy.RejectXFADynamic:
		return newErr(CodeOther, pageNr, "page uses an XFA dynamic form", nil)
	case policy.RejectAlreadyHasText:
		return newErr(CodeAlreadyHasOCR, pageNr, "page already has text", nil)
	case policy.RejectEncryptedOrSigned:
		return newErr(CodeEncrypted, pageNr, "document is encrypted or signed", nil)
	default:
		return newErr(CodeOther, pageNr, "page rejected", nil)
	}
}

// rasterizeAndOCR drives the Rasterizer and OCREngine collaborators under a
// per-page timeout, per §6's contract that OCR must honor the passed
// deadline. When the preprocess plan asks for Clean/Deskew/RemoveBackground
// and an ImageCleaner is registered, OCR reads from the cleaned raster
// instead of the raw one; when it asks for CleanFinal, the cleaned raster
// is also embedded as a new image XObject and returned as a
// graft.ReplacementImage so the grafted page shows the cleaned version
// rather than the original scan. Absent a registered ImageCleaner, these
// flags are accepted but have no effect (the same graceful-degradation
// posture ImageOptimizer takes for a missing JBIG2/PNGQuantizer).
func rasterizeAndOCR(ctx context.Context, run Run, pageNr int, action policy.PageAction) (*ocrmodel.Page, *graft.ReplacementImage, error) {
	nonOCRTimeout := run.Options.NonOCRTimeout
	if nonOCRTimeout <= 0 {
		nonOCRTimeout = 180 * time.Second
	}
	nctx, ncancel := context.WithTimeout(ctx, nonOCRTimeout)
	defer ncancel()

	if run.WorkDir == nil {
		return nil, nil, newErr(CodeMissingDependency, pageNr, "no working directory configured", nil)
	}
	rasterPath := run.WorkDir.Path(pageNr, "rasterize", "png")

	// Rasterizing and any ImageCleaner pass are preprocessing (§4.6): bound
	// by non_ocr_timeout, fatal on expiry, never downgraded to CopyOnly.
	if err := run.Registry.Rasterizer.Rasterize(nctx, run.InputPath, pageNr, int(action.DPI), rasterPath); err != nil {
		return nil, nil, wrapNonOCRDeadline(err, pageNr, "rasterize")
	}

	ocrInputPath := rasterPath
	wantsClean := action.Preprocess.Clean || action.Preprocess.Deskew || action.Preprocess.RemoveBackground
	if wantsClean && run.Registry.HasCleaner() {
		cleanedPath := run.WorkDir.Path(pageNr, "clean-ocr", "png")
		if err := run.Registry.Cleaner.Clean(nctx, rasterPath, cleanedPath); err != nil {
			return nil, nil, wrapNonOCRDeadline(err, pageNr, "clean")
		}
		ocrInputPath = cleanedPath
	}

	timeout := run.Options.OCRTimeout
	if timeout <= 0 {
		timeout = 180 * time.Second
	}
	pctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	page, err := run.Registry.OCR.OCR(pctx, ocrInputPath, run.Options.Languages, collab.OCROptions{
		DPI:               action.DPI,
		DetectOrientation: action.Preprocess.RotatePages,
	})
	if err != nil {
		return nil, nil, err
	}
	page.Normalize()

	var repl *graft.ReplacementImage
	if action.Preprocess.CleanFinal && run.Registry.HasCleaner() {
		finalPath := run.WorkDir.Path(pageNr, "clean-final", "png")
		if err := run.Registry.Cleaner.Clean(nctx, rasterPath, finalPath); err != nil {
			return nil, nil, wrapNonOCRDeadline(err, pageNr, "clean-final")
		}
		repl, err = embedReplacementImage(run.Ctx, finalPath)
		if err != nil {
			return nil, nil, err
		}
	}

	return page, repl, nil
}

// wrapNonOCRDeadline turns a non-OCR-stage context.DeadlineExceeded into a
// classified, fatal *Error (§4.6: exceeding non_ocr_timeout is always
// fatal, unlike ocr_timeout's CopyOnly downgrade) so processPage's
// errors.Is(err, context.DeadlineExceeded) check — which exists only to
// catch the OCR stage's timeout — never mistakes this one for it.
func wrapNonOCRDeadline(err error, pageNr int, stage string) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return newErr(CodeOther, pageNr, stage+" exceeded --non-ocr-timeout", err)
	}
	return err
}

// embedReplacementImage reads a cleaned PNG off disk and registers it as a
// new indirect image object in ctx via the kept model.CreateImageResource,
// the same helper pkg/pdfcpu/image.go uses for any freshly-decoded image.
func embedReplacementImage(ctx *model.Context, pngPath string) (*graft.ReplacementImage, error) {
	f, err := os.Open(pngPath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	indRef, w, h, err := model.CreateImageResource(ctx.XRefTable, f)
	if err != nil {
		return nil, err
	}
	return &graft.ReplacementImage{IndRef: *indRef, PixelW: w, PixelH: h}, nil
}

// Warnings combines every page's non-fatal downgrade into one error for
// logging, or nil if none occurred.
func Warnings(results []PageResult) error {
	var errs []error
	for _, r := range results {
		if r.Err != nil {
			errs = append(errs, r.Err)
		}
	}
	return multierr.Combine(errs...)
}
