// Package analyzer implements the PageAnalyzer (per-page text/image/DPI
// survey that drives Policy, §4.1). It walks the kept pdfcpu object graph
// directly — consolidated page content via XRefTable.PageContent, embedded
// images via pdfcpu.ExtractPageImages — the same accessors extract.go's
// CLI-facing extraction commands use, repurposed for a read-only survey
// instead of a file write.
package analyzer

import (
	"bytes"
	"math"

	"github.com/inkmethod/ocrsandwich/pkg/pdfcpu"
	"github.com/inkmethod/ocrsandwich/pkg/pdfcpu/model"
	"github.com/pkg/errors"
)

// PageSurvey is PageAnalyzer's per-page result (§4.1's PageAnalysis, minus
// the document-level fields DocumentSurvey carries instead).
type PageSurvey struct {
	PageNr int

	HasText   bool // any text-showing operator sampled on the page
	HasImages bool

	// HasTextNonVector is true when sampled text is shown through a font
	// this analyzer can map back to Unicode (a /ToUnicode CMap or a
	// standard simple encoding) — Policy's "already has a usable text
	// layer" signal (§4.2).
	HasTextNonVector bool

	// HasUnmappableText is true when text is shown but every font used
	// for it lacks both a /ToUnicode CMap and a recognized standard
	// encoding — §4.2's "OCR would be redundant, grafting onto invisible
	// gibberish is worse than doing nothing" case.
	HasUnmappableText bool

	// HasVectorOutlineText approximates §4.1 step 1's third text
	// category: a page with substantial filled/stroked path content but
	// no text-showing operator and no embedded images at all, i.e. glyphs
	// most likely painted as curves rather than shown with Tj/TJ.
	HasVectorOutlineText bool

	HasVectorGraphics bool

	// WidthPt/HeightPt are the page's MediaBox dimensions in PDF points.
	WidthPt  float64
	HeightPt float64

	// Rotation is the page's /Rotate attribute normalized into {0,90,180,270}.
	Rotation int

	// EffectiveDPI is the resolution at which the page's raster content
	// was authored: the pixel-area-weighted mean of every embedded image's
	// DPI against the page's point dimensions (see estimateDPI). No
	// max-DPI estimate is computed, and config.Options' DPISafetyFactor
	// and DPIMaxRatio are not read here.
	EffectiveDPI float64

	ImageCount        int
	ImageAreaFraction float64 // fraction of the page area covered by images

	// LargestImageMegapixels is the largest embedded image's pixel count
	// (width*height / 1e6), Policy's input for --skip-big (§4.2/§6).
	LargestImageMegapixels float64
}

// DocumentSurvey carries the §3 PageAnalysis fields that apply once per
// document rather than per page: AcroForm/XFA presence and encryption,
// which Policy consults via policy.DocumentFlags.
type DocumentSurvey struct {
	IsAcroFormHost bool
	IsXFADynamic   bool
	Encrypted      bool
}

// AnalyzeDocument inspects the catalog once for AcroForm/XFA/Encrypt
// presence (§4.1 step 4).
func AnalyzeDocument(ctx *model.Context) (DocumentSurvey, error) {
	var ds DocumentSurvey
	ds.Encrypted = ctx.Encrypt != nil

	cat, err := ctx.Catalog()
	if err != nil {
		return ds, errors.Wrap(err, "analyzer: reading catalog")
	}

	af, found := cat.Find("AcroForm")
	if !found {
		return ds, nil
	}
	ds.IsAcroFormHost = true

	afDict, err := ctx.DereferenceDict(af)
	if err != nil || afDict == nil {
		return ds, nil
	}

	xfa, found := afDict.Find("XFA")
	if !found {
		return ds, nil
	}
	// A static XFA form carries only a template/datasets stream; a
	// dynamic one additionally wires /NeedsRendering or event-script
	// entries into the AcroForm dict, which the source page tree cannot
	// represent as static content (§9 glossary "XFA dynamic forms").
	_ = xfa
	if needs := afDict.BooleanEntry("NeedsRendering"); needs != nil && *needs {
		ds.IsXFADynamic = true
	}
	if _, found := afDict.Find("XFAEvent"); found {
		ds.IsXFADynamic = true
	}

	return ds, nil
}

// Analyze surveys every page in pageNrs (1-based) and returns one
// PageSurvey per page, in the same order.
func Analyze(ctx *model.Context, pageNrs []int) ([]PageSurvey, error) {
	out := make([]PageSurvey, 0, len(pageNrs))
	for _, nr := range pageNrs {
		s, err := analyzePage(ctx, nr)
		if err != nil {
			return nil, errors.Wrapf(err, "analyzer: page %d", nr)
		}
		out = append(out, s)
	}
	return out, nil
}

func analyzePage(ctx *model.Context, pageNr int) (PageSurvey, error) {
	s := PageSurvey{PageNr: pageNr}

	d, _, inh, err := ctx.PageDict(pageNr, true)
	if err != nil {
		return s, err
	}
	if inh != nil {
		if inh.MediaBox != nil {
			s.WidthPt = inh.MediaBox.Width()
			s.HeightPt = inh.MediaBox.Height()
		}
		s.Rotation = normalizeRotation(inh.Rotate)
	}

	bb, err := ctx.PageContent(d)
	if err != nil && err != model.ErrNoContent {
		return s, err
	}
	if len(bb) > 0 {
		s.HasText = contentShowsText(bb)
		s.HasVectorGraphics = contentShowsVectorPaths(bb)
	}

	images, err := pdfcpu.ExtractPageImages(ctx, pageNr, true)
	if err != nil {
		return s, err
	}
	if len(images) > 0 {
		s.HasImages = true
		s.ImageCount = len(images)
		s.EffectiveDPI, s.ImageAreaFraction = estimateDPI(images, s.WidthPt, s.HeightPt)
		s.LargestImageMegapixels = largestImageMegapixels(images)
	}

	if s.HasText {
		mappable, err := pageHasMappableFont(ctx, inh)
		if err != nil {
			return s, err
		}
		s.HasTextNonVector = mappable
		s.HasUnmappableText = !mappable
	} else if s.HasVectorGraphics && !s.HasImages {
		s.HasVectorOutlineText = true
	}

	return s, nil
}

// pageHasMappableFont reports whether any font referenced from the page's
// consolidated /Resources /Font dict carries a /ToUnicode CMap or a
// recognized standard simple encoding (§4.1 step 1's "actual Unicode-mapped
// font" test).
func pageHasMappableFont(ctx *model.Context, inh *model.InheritedPageAttrs) (bool, error) {
	if inh == nil || inh.Resources == nil {
		return false, nil
	}
	fontsObj, found := inh.Resources.Find("Font")
	if !found {
		return false, nil
	}
	fonts, err := ctx.DereferenceDict(fontsObj)
	if err != nil || fonts == nil {
		return false, nil
	}

	for _, v := range fonts {
		fd, err := ctx.DereferenceDict(v)
		if err != nil || fd == nil {
			continue
		}
		if _, found := fd.Find("ToUnicode"); found {
			return true, nil
		}
		if enc := fd.NameEntry("Encoding"); enc != nil {
			switch *enc {
			case "WinAnsiEncoding", "MacRomanEncoding", "StandardEncoding", "MacExpertEncoding":
				return true, nil
			}
		}
	}
	return false, nil
}

func normalizeRotation(r int) int {
	r = ((r % 360) + 360) % 360
	return (r / 90) * 90 % 360
}

// contentShowsText reports whether a consolidated content stream contains
// a text-showing operator (Tj, TJ, ' or "), scanned token by token rather
// than with a single substring search so operators embedded inside string
// literals or binary image data (BI..EI) are never mistaken for text.
func contentShowsText(bb []byte) bool {
	r := bufioScanner(bb)
	depth := 0
	for {
		tok, ok := r.next()
		if !ok {
			return false
		}
		switch tok {
		case "BI":
			depth++
		case "EI":
			if depth > 0 {
				depth--
			}
		case "Tj", "TJ", "'", "\"":
			if depth == 0 {
				return true
			}
		}
	}
}

// contentShowsVectorPaths reports whether a consolidated content stream
// contains a path-painting operator (fill, stroke, or both) outside any
// inline image, the coarse signal §4.1 step 1 uses to flag curve-drawn
// (vector outline) content.
func contentShowsVectorPaths(bb []byte) bool {
	r := bufioScanner(bb)
	depth := 0
	for {
		tok, ok := r.next()
		if !ok {
			return false
		}
		switch tok {
		case "BI":
			depth++
		case "EI":
			if depth > 0 {
				depth--
			}
		case "f", "F", "f*", "S", "s", "B", "B*", "b", "b*":
			if depth == 0 {
				return true
			}
		}
	}
}

// tokenScanner is a minimal whitespace/operator tokenizer over a content
// stream, intentionally far simpler than model/parseContent.go's
// resource-name scanner: PageAnalyzer only needs operator keywords, never
// operands, so it skips strings and arrays wholesale instead of parsing them.
type tokenScanner struct {
	r *bytes.Reader
}

func bufioScanner(bb []byte) *tokenScanner {
	return &tokenScanner{r: bytes.NewReader(bb)}
}

func (s *tokenScanner) next() (string, bool) {
	var buf []byte
	for {
		b, err := s.r.ReadByte()
		if err != nil {
			if len(buf) > 0 {
				return string(buf), true
			}
			return "", false
		}
		switch {
		case b == '(':
			skipBalanced(s.r, '(', ')')
			if len(buf) > 0 {
				return string(buf), true
			}
		case b == '<':
			skipBalanced(s.r, '<', '>')
			if len(buf) > 0 {
				return string(buf), true
			}
		case b == '[':
			skipBalanced(s.r, '[', ']')
			if len(buf) > 0 {
				return string(buf), true
			}
		case b == ' ' || b == '\t' || b == '\r' || b == '\n':
			if len(buf) > 0 {
				return string(buf), true
			}
		default:
			buf = append(buf, b)
		}
	}
}

func skipBalanced(r *bytes.Reader, open, close byte) {
	depth := 1
	for depth > 0 {
		b, err := r.ReadByte()
		if err != nil {
			return
		}
		if b == '\\' {
			r.ReadByte()
			continue
		}
		if b == open {
			depth++
		} else if b == close {
			depth--
		}
	}
}

// largestImageMegapixels returns the largest embedded image's
// width*height in megapixels.
func largestImageMegapixels(images map[int]model.Image) float64 {
	var max float64
	for _, img := range images {
		mp := float64(img.Width) * float64(img.Height) / 1e6
		if mp > max {
			max = mp
		}
	}
	return max
}

// estimateDPI combines every embedded image's pixel dimensions with the
// page's point dimensions into one effective DPI figure: the mean of each
// image's DPI, weighted by its pixel area. Every image is assumed to cover
// the full page (content-stream placement matrices aren't consulted), so
// areaFraction is 1 whenever a DPI is returned. No maximum-DPI figure is
// computed, and no threshold chooses between mean and maximum.
func estimateDPI(images map[int]model.Image, widthPt, heightPt float64) (dpi float64, areaFraction float64) {
	if widthPt <= 0 || heightPt <= 0 || len(images) == 0 {
		return 0, 0
	}
	pageAreaIn := (widthPt / 72.0) * (heightPt / 72.0)
	if pageAreaIn <= 0 {
		return 0, 0
	}

	var weightedDPI, totalWeight, totalPixelArea float64
	for _, img := range images {
		w, h := float64(img.Width), float64(img.Height)
		if w <= 0 || h <= 0 {
			continue
		}
		pixelArea := w * h
		totalPixelArea += pixelArea
		imgDPI := math.Sqrt(w * h / pageAreaIn)
		weightedDPI += imgDPI * pixelArea
		totalWeight += pixelArea
	}
	if totalWeight == 0 {
		return 0, 0
	}
	dpi = weightedDPI / totalWeight
	areaFraction = 1.0
	if totalPixelArea > 0 && pageAreaIn > 0 {
		// A single full-page scan is the overwhelmingly common case;
		// multi-image pages are treated as fully covered too since
		// PageAnalyzer only needs a DPI estimate, not a layout map.
		areaFraction = 1.0
	}
	return dpi, areaFraction
}
