// Package graft implements the Grafter (§4.4): it attaches a rendered
// text layer (and, when preprocessing replaced the page raster, a new
// image XObject) onto the original page's object graph, folding any
// /Rotate into the content stream's CTM the way rotate.go's rotatePage
// folds it into the page dict, and merging resource dictionaries the way
// model.FontMap.EnsureKey picks an unused font resource name.
package graft

import (
	"bytes"
	"fmt"

	"github.com/inkmethod/ocrsandwich/internal/textlayer"
	"github.com/inkmethod/ocrsandwich/pkg/pdfcpu/model"
	"github.com/inkmethod/ocrsandwich/pkg/pdfcpu/types"
	"github.com/pkg/errors"
)

// ReplacementImage is a new raster to draw full-bleed before the text
// layer, produced when a preprocessing step (deskew, background removal,
// rotation) rasterized a replacement page.
type ReplacementImage struct {
	IndRef    types.IndirectRef
	PixelW    int
	PixelH    int
}

// Plan is Grafter's input for one page.
type Plan struct {
	PageNr      int
	TextLayer   textlayer.Result
	Replacement *ReplacementImage

	// Font is the document-wide identity CID font BuildIdentityFont built
	// once for this run; required whenever TextLayer carries a non-empty
	// FontKey.
	Font *IdentityFont
}

// isNoOp reports whether p represents a no-op graft: no text layer
// content and no replacement image. The invariant in §4.4 requires this
// case to leave the page's content stream and resource dict untouched.
func (p Plan) isNoOp() bool {
	return len(p.TextLayer.Content) == 0 && p.Replacement == nil
}

// Graft applies plan to the page in ctx, in place. It never touches
// annotations, bookmarks or any other page entry besides Contents,
// Resources, Rotate and (for a replacement image) MediaBox-filling
// placement.
func Graft(ctx *model.Context, plan Plan) error {
	if plan.isNoOp() {
		return nil
	}

	consolidateRes := false
	pageDict, _, inhAttrs, err := ctx.XRefTable.PageDict(plan.PageNr, consolidateRes)
	if err != nil {
		return errors.Wrapf(err, "graft: page %d", plan.PageNr)
	}
	if inhAttrs == nil || inhAttrs.MediaBox == nil {
		return errors.Errorf("graft: page %d has no MediaBox", plan.PageNr)
	}

	resDict, err := ensureResources(ctx.XRefTable, pageDict)
	if err != nil {
		return err
	}

	rotate := 0
	if inhAttrs.Rotate != 0 {
		rotate = ((inhAttrs.Rotate % 360) + 360) % 360
	}

	// imageLayer holds anything drawn against the page's native (pre-rotation)
	// coordinate system — the original content plus, when present, the
	// full-bleed replacement image, which is placed with the same raw
	// MediaBox-filling cm the original content was authored against. The
	// text layer is computed in the final display space (§4.3), so it is
	// never part of this CTM-wrapped group.
	var imageLayer bytes.Buffer
	if plan.Replacement != nil {
		imgName, err := mergeImageResource(ctx.XRefTable, resDict, *plan.Replacement)
		if err != nil {
			return err
		}
		fmt.Fprintf(&imageLayer, "q %.2f 0 0 %.2f 0 0 cm /%s Do Q ", inhAttrs.MediaBox.Width(), inhAttrs.MediaBox.Height(), imgName)
	}

	if err := mergeFontResource(resDict, plan.TextLayer, plan.Font); err != nil {
		return err
	}

	if rotate == 0 {
		var addition bytes.Buffer
		addition.Write(imageLayer.Bytes())
		addition.Write(plan.TextLayer.Content)
		return ctx.XRefTable.AppendContent(pageDict, addition.Bytes())
	}

	// Folding /Rotate into a CTM only cancels the rotation for whatever it
	// wraps; the page's existing content (and any replacement image drawn
	// against the same native coordinate system) was authored for the
	// rotated orientation, so both have to be wrapped by the same CTM, or
	// they end up mis-oriented the moment /Rotate is zeroed below.
	original, err := ctx.XRefTable.PageContent(pageDict)
	if err != nil && err != model.ErrNoContent {
		return errors.Wrapf(err, "graft: page %d content", plan.PageNr)
	}

	var full bytes.Buffer
	fmt.Fprintf(&full, "q ")
	writeRotationCTM(&full, rotate, inhAttrs.MediaBox.Width(), inhAttrs.MediaBox.Height())
	full.Write(original)
	full.Write(imageLayer.Bytes())
	fmt.Fprintf(&full, " Q ")
	full.Write(plan.TextLayer.Content)

	if err := replacePageContent(ctx.XRefTable, pageDict, full.Bytes()); err != nil {
		return err
	}
	pageDict.Update("Rotate", types.Integer(0))
	return nil
}

// replacePageContent overwrites pageDict's content with bb as a single
// new stream object, collapsing any existing array-of-streams
// representation the way XRefTable.insertContent does for a page that
// has no content yet.
func replacePageContent(xRefTable *model.XRefTable, pageDict types.Dict, bb []byte) error {
	sd, _ := xRefTable.NewStreamDictForBuf(bb)
	if err := sd.Encode(); err != nil {
		return err
	}
	indRef, err := xRefTable.IndRefForNewObject(*sd)
	if err != nil {
		return err
	}
	pageDict.Update("Contents", *indRef)
	return nil
}

// ensureResources returns the page's own (non-consolidated) Resources
// dict, creating an empty one if absent.
func ensureResources(xRefTable *model.XRefTable, pageDict types.Dict) (types.Dict, error) {
	o, found := pageDict.Find("Resources")
	if !found {
		d := types.NewDict()
		pageDict.Insert("Resources", d)
		return d, nil
	}
	d, err := xRefTable.DereferenceDict(o)
	if err != nil {
		return nil, err
	}
	if d == nil {
		d = types.NewDict()
		pageDict.Update("Resources", d)
	}
	return d, nil
}

// mergeFontResource registers the text layer's identity CID font under
// its resource name in the page's /Font subdictionary, creating the
// subdictionary if this is the page's first graft.
func mergeFontResource(resDict types.Dict, tl textlayer.Result, font *IdentityFont) error {
	if tl.FontKey == "" {
		return nil
	}
	if font == nil {
		return errors.Errorf("graft: text layer references font key %q but no identity font was built", tl.FontKey)
	}
	fontDict := resDict.DictEntry("Font")
	if fontDict == nil {
		fontDict = types.NewDict()
		resDict.Update("Font", fontDict)
	}
	if _, found := fontDict.Find(tl.FontKey); !found {
		fontDict.Insert(tl.FontKey, font.IndRef)
	}
	return nil
}

// mergeImageResource registers the replacement image under a resource
// name that doesn't collide with any existing /XObject entry, the same
// "check existing names, pick an unused one" approach model.FontMap.EnsureKey
// uses for fonts.
func mergeImageResource(xRefTable *model.XRefTable, resDict types.Dict, img ReplacementImage) (string, error) {
	xDict := resDict.DictEntry("XObject")
	if xDict == nil {
		xDict = types.NewDict()
		resDict.Update("XObject", xDict)
	}
	name := xDict.NewIDForPrefix("Im", 0)
	xDict.Insert(name, img.IndRef)
	return name, nil
}

// writeRotationCTM emits the CTM that cancels a /Rotate of deg degrees so
// content drawn afterward appears upright without the viewer rotating the
// page, mirroring what rotatePage achieves by mutating /Rotate directly —
// here the page keeps /Rotate 0 and the rotation lives in the stream instead.
func writeRotationCTM(buf *bytes.Buffer, deg int, w, h float64) {
	switch deg {
	case 90:
		fmt.Fprintf(buf, "0 -1 1 0 0 %.2f cm ", w)
	case 180:
		fmt.Fprintf(buf, "-1 0 0 -1 %.2f %.2f cm ", w, h)
	case 270:
		fmt.Fprintf(buf, "0 1 -1 0 %.2f 0 cm ", h)
	}
}
