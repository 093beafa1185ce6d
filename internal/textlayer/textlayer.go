// Package textlayer implements TextLayerRenderer (§4.3): it turns one
// OcrModel page into a self-contained, invisible PDF content stream plus
// the font resource it references, emitted as raw content-stream operators
// (BT/Tf/Td/Tr/Tj, fmt.Fprintf straight into a buffer) rather than through
// any higher-level graphics API.
package textlayer

import (
	"bytes"
	"fmt"
	"math"

	"github.com/inkmethod/ocrsandwich/internal/ocrmodel"
	"github.com/inkmethod/ocrsandwich/pkg/pdfcpu/model"
)

// RMInvisible is PDF text rendering mode 3 ("neither fill nor stroke, add
// to path for clipping" — in practice, invisible).
const RMInvisible = 3

// Target describes the page the content stream will be grafted onto.
type Target struct {
	WidthPt  float64
	HeightPt float64
	Rotation int // normalized to {0,90,180,270}
}

// Result is one rendered text layer plus the font resource it needs
// registered in the destination page's /Resources /Font dict.
type Result struct {
	Content  []byte
	FontName string // the key TextLayerRenderer expects under /Font in Resources
	FontKey  string // the resource name emitted in the content stream ("/F0" etc, minus the slash)
}

// identityCIDFontName is the resource the invisible layer always
// references: graft.BuildIdentityFont builds the one real Type0/
// CIDFontType2/Identity-H font object every page's /Font entry points at;
// TextLayerRenderer only ever emits the reference and the glyph IDs.
const identityCIDFontName = "OCRSandwichIdentityCID"

// minFontSizePt/maxFontSizePt bound the box-fitted font size (§4.3 step
// 3's "clamped to [min_size, max_size]"): small enough that a single
// stray character's bbox can't blow the size up past anything a reader's
// text-selection math tolerates, large enough that degenerate thin boxes
// don't collapse the glyph run to an unselectable point.
const (
	minFontSizePt = 1.0
	maxFontSizePt = 144.0
)

// Render builds the content stream for one page. fm is the destination
// page's FontMap (§4.4's Grafter owns resource merging); Render calls
// fm.EnsureKey once and reuses the same key for every word, matching the
// one-font-resource-per-page contract in §4.3.
func Render(page ocrmodel.Page, target Target, fm model.FontMap) (Result, error) {
	if err := page.Validate(); err != nil {
		return Result{}, err
	}

	key := fm.EnsureKey(identityCIDFontName)

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "q ")

	for _, w := range page.WordsInReadingOrder() {
		if w.Text == "" {
			continue
		}
		emitWord(&buf, w, page, target, key)
	}

	fmt.Fprintf(&buf, "Q ")

	return Result{Content: buf.Bytes(), FontName: identityCIDFontName, FontKey: key}, nil
}

// emitWord writes one word as a single BT..ET block sized so the shown
// glyph run exactly spans the word's bounding box width: the font size is
// first set from the box height, then the box-width-over-measured-width
// ratio (the same trick as gardar-ocrchestra's drawWord) rescales it so
// the invisible text aligns with the glyphs a human reader sees in the
// image beneath it — required for text selection/copy to highlight the
// right region even though nothing is visible.
func emitWord(buf *bytes.Buffer, w ocrmodel.Word, page ocrmodel.Page, target Target, fontKey string) {
	x, y := pixelToPoint(w.BBox.Left, w.BBox.Bottom, page, target)
	x2, _ := pixelToPoint(w.BBox.Right, w.BBox.Bottom, page, target)
	boxWidthPt := x2 - x
	boxHeightPt := (w.BBox.Bottom - w.BBox.Top) * target.HeightPt / page.HeightPx

	if boxWidthPt <= 0 || boxHeightPt <= 0 {
		return
	}

	fontSize := boxHeightPt
	measuredWidth := estimateGlyphRunWidth(w.Text, fontSize)
	if measuredWidth > 0 {
		scale := boxWidthPt / measuredWidth
		fontSize *= scale
	}
	fontSize = clampFontSize(fontSize)

	// A trailing space CID costs nothing visually (render mode 3) but
	// keeps content-order text extraction from splicing this word onto
	// the next one (§4.3 invariant b), since each word is its own BT/ET
	// block with an absolute Td rather than a running text-space cursor.
	hexGlyphs := cidHexString(w.Text + " ")

	fmt.Fprintf(buf, "BT /%s %.2f Tf %d Tr %.2f %.2f Td <%s> Tj ET ",
		fontKey, fontSize, RMInvisible, x, y, hexGlyphs)
}

// clampFontSize bounds size to [minFontSizePt, maxFontSizePt].
func clampFontSize(size float64) float64 {
	if size < minFontSizePt {
		return minFontSizePt
	}
	if size > maxFontSizePt {
		return maxFontSizePt
	}
	return size
}

// estimateGlyphRunWidth approximates the identity CID font's advance width
// for s at the given size. The substitute face is monospaced at 0.6em per
// glyph, an average-advance approximation used because no font program
// is loaded.
func estimateGlyphRunWidth(s string, fontSize float64) float64 {
	n := float64(len([]rune(s)))
	return n * fontSize * 0.6
}

// pixelToPoint maps an OCR-pixel coordinate (top-left origin, Y down) into
// PDF user space (bottom-left origin, Y up) for target, honoring rotation
// in the same 90-degree steps Grafter folds into the page CTM (§4.4) so
// the two never disagree about which edge is "up".
func pixelToPoint(px, py float64, page ocrmodel.Page, target Target) (float64, float64) {
	if page.WidthPx <= 0 || page.HeightPx <= 0 {
		return 0, 0
	}
	nx := px / page.WidthPx
	ny := 1.0 - (py / page.HeightPx)

	switch normalizeRotation(target.Rotation) {
	case 90:
		return nx * target.WidthPt, (1 - ny) * target.HeightPt
	case 180:
		return (1 - nx) * target.WidthPt, (1 - ny) * target.HeightPt
	case 270:
		return (1 - nx) * target.WidthPt, ny * target.HeightPt
	default:
		return nx * target.WidthPt, ny * target.HeightPt
	}
}

func normalizeRotation(r int) int {
	r = ((r % 360) + 360) % 360
	return int(math.Round(float64(r)/90)) * 90 % 360
}

// cidHexString encodes s as the hex-string operand an Identity-H Type0
// font expects: each rune becomes one big-endian 2-byte CID equal to its
// own Unicode scalar value, matching the identity /ToUnicode CMap
// graft.BuildIdentityFont attaches. A rune outside the BMP (beyond what
// a 2-byte CID can address) is mapped to U+FFFD rather than silently
// truncated, since the ToUnicode CMap only covers <0000>-<FFFF>.
func cidHexString(s string) string {
	var buf bytes.Buffer
	for _, r := range s {
		cid := r
		if cid > 0xFFFF {
			cid = 0xFFFD
		}
		fmt.Fprintf(&buf, "%04X", cid)
	}
	return buf.String()
}
