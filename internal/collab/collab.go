// Package collab declares the external collaborator interfaces (§6, §9):
// narrow capability contracts the core consumes but never implements
// itself. Implementations are composed once, at process startup, into a
// Registry — compile-time or load-time composition, never runtime
// monkey-patching.
package collab

import (
	"context"

	"github.com/inkmethod/ocrsandwich/internal/ocrmodel"
	"github.com/pkg/errors"
)

// ErrTransient marks a collaborator failure the caller may retry; wrap
// with errors.Wrap(ErrTransient, ...) or use errors.Is.
var ErrTransient = errors.New("collab: transient failure")

// ErrMissing marks an optional collaborator that was never registered.
var ErrMissing = errors.New("collab: collaborator not registered")

// Rasterizer renders one PDF page to a PNG file at the given DPI.
type Rasterizer interface {
	Rasterize(ctx context.Context, inputPath string, pageIndex int, dpi int, outputPNGPath string) error
}

// OCREngine recognizes text in a raster image and returns it as an
// OcrModel page. It must honor ctx's deadline and must never write to
// stdout (stdout is reserved for the output PDF, §6).
type OCREngine interface {
	OCR(ctx context.Context, imagePath string, languages []string, opts OCROptions) (*ocrmodel.Page, error)
}

// OCROptions carries engine-agnostic recognition knobs.
type OCROptions struct {
	DPI           float64
	DetectOrientation bool
}

// ImageCleaner consumes one PNG and produces one cleaned PNG (deskew,
// background removal, etc. are driven by the pipeline; the cleaner itself
// is a pure one-in-one-out transform).
type ImageCleaner interface {
	Clean(ctx context.Context, inputPNGPath, outputPNGPath string) error
}

// PDFAEngine converts a regular PDF plus an ICC profile into a PDF/A of
// the requested part/conformance, or fails with a classified error.
type PDFAEngine interface {
	GeneratePDFA(ctx context.Context, inputPath, outputPath string, part int, iccProfilePath string) error
}

// Bilevel encoder capability flags (§4.5): JBIG2 and a PNG quantizer are
// optional; ImageOptimizer degrades gracefully when either is absent.
type JBIG2Encoder interface {
	EncodeJBIG2(ctx context.Context, bitmap []byte, width, height int) ([]byte, error)
}

type PNGQuantizer interface {
	Quantize(ctx context.Context, pngBytes []byte, maxColors int, lossiness int) ([]byte, error)
}

// Registry is the set of collaborators wired in for one pipeline run.
// Rasterizer, OCREngine and PDFLibrary (the kept pdfcpu substrate itself)
// are required; ImageCleaner, PDFAEngine, JBIG2Encoder and PNGQuantizer
// are optional; the Has* accessors report whether each one is set.
type Registry struct {
	Rasterizer   Rasterizer
	OCR          OCREngine
	Cleaner      ImageCleaner
	PDFA         PDFAEngine
	JBIG2        JBIG2Encoder
	PNGQuantizer PNGQuantizer
}

// NewRegistry validates that the required collaborators are present.
func NewRegistry(rasterizer Rasterizer, ocr OCREngine) (*Registry, error) {
	if rasterizer == nil {
		return nil, errors.New("collab: a Rasterizer is required")
	}
	if ocr == nil {
		return nil, errors.New("collab: an OCREngine is required")
	}
	return &Registry{Rasterizer: rasterizer, OCR: ocr}, nil
}

// HasJBIG2 reports whether a JBIG2 encoder is available to ImageOptimizer.
func (r *Registry) HasJBIG2() bool { return r != nil && r.JBIG2 != nil }

// HasPNGQuantizer reports whether a pngquant-style encoder is available.
func (r *Registry) HasPNGQuantizer() bool { return r != nil && r.PNGQuantizer != nil }

// HasPDFA reports whether a PDF/A conformance engine is registered.
func (r *Registry) HasPDFA() bool { return r != nil && r.PDFA != nil }

// HasCleaner reports whether an image-cleaning collaborator is registered.
func (r *Registry) HasCleaner() bool { return r != nil && r.Cleaner != nil }
