package graft

import (
	"bytes"
	"fmt"

	"github.com/inkmethod/ocrsandwich/pkg/pdfcpu/model"
	"github.com/inkmethod/ocrsandwich/pkg/pdfcpu/types"
)

// identityCIDBaseFont names the one font every invisible OCR text layer
// in a run draws through.
const identityCIDBaseFont = "OCRSandwichIdentityCID"

// IdentityFont is the Type0/CIDFontType2/Identity-H font BuildIdentityFont
// constructs once per document; every page's Plan references the same
// IndRef instead of each page minting its own font objects.
type IdentityFont struct {
	IndRef types.IndirectRef
}

// BuildIdentityFont builds a CID-keyed font whose CIDs are raw Unicode
// code points, so one static /ToUnicode CMap (a single beginbfrange
// spanning the whole BMP) round-trips any word textlayer.Render emits.
// No /FontFile2 is embedded: render mode 3 (invisible) means a reader
// never asks this font for a glyph outline, only for Tf/Td placement and
// ToUnicode-driven extraction, so a missing glyph program never shows up
// as visible corruption.
func BuildIdentityFont(xRefTable *model.XRefTable) (*IdentityFont, error) {
	toUnicodeIndRef, err := buildToUnicodeCMap(xRefTable)
	if err != nil {
		return nil, err
	}

	descriptor := types.Dict(
		map[string]types.Object{
			"Type":        types.Name("FontDescriptor"),
			"FontName":    types.Name(identityCIDBaseFont),
			"Flags":       types.Integer(4),
			"FontBBox":    types.NewNumberArray(0, 0, 1000, 1000),
			"ItalicAngle": types.Float(0),
			"Ascent":      types.Integer(1000),
			"Descent":     types.Integer(0),
			"CapHeight":   types.Integer(1000),
			"StemV":       types.Integer(80),
		},
	)
	descriptorIndRef, err := xRefTable.IndRefForNewObject(descriptor)
	if err != nil {
		return nil, err
	}

	cidSystemInfo := types.Dict(
		map[string]types.Object{
			"Registry":   types.StringLiteral("Adobe"),
			"Ordering":   types.StringLiteral("Identity"),
			"Supplement": types.Integer(0),
		},
	)

	descendant := types.Dict(
		map[string]types.Object{
			"Type":           types.Name("Font"),
			"Subtype":        types.Name("CIDFontType2"),
			"BaseFont":       types.Name(identityCIDBaseFont),
			"CIDSystemInfo":  cidSystemInfo,
			"FontDescriptor": *descriptorIndRef,
			"DW":             types.Integer(1000),
			"CIDToGIDMap":    types.Name("Identity"),
		},
	)
	descendantIndRef, err := xRefTable.IndRefForNewObject(descendant)
	if err != nil {
		return nil, err
	}

	type0 := types.Dict(
		map[string]types.Object{
			"Type":            types.Name("Font"),
			"Subtype":         types.Name("Type0"),
			"BaseFont":        types.Name(identityCIDBaseFont),
			"Encoding":        types.Name("Identity-H"),
			"DescendantFonts": types.Array{*descendantIndRef},
			"ToUnicode":       *toUnicodeIndRef,
		},
	)
	type0IndRef, err := xRefTable.IndRefForNewObject(type0)
	if err != nil {
		return nil, err
	}

	return &IdentityFont{IndRef: *type0IndRef}, nil
}

// buildToUnicodeCMap writes the minimal identity CMap: one beginbfrange
// entry mapping every 2-byte CID to the Unicode code point of the same
// value, the auto-incrementing 3-argument bfrange form from Adobe's CMap
// spec. It's valid for any CID textlayer's hex-string emission produces,
// since a word's CIDs are its runes' code points directly.
func buildToUnicodeCMap(xRefTable *model.XRefTable) (*types.IndirectRef, error) {
	var buf bytes.Buffer
	fmt.Fprint(&buf, "/CIDInit /ProcSet findresource begin\n"+
		"12 dict begin\n"+
		"begincmap\n"+
		"/CIDSystemInfo << /Registry (Adobe) /Ordering (UCS) /Supplement 0 >> def\n"+
		"/CMapName /Adobe-Identity-UCS def\n"+
		"/CMapType 2 def\n"+
		"1 begincodespacerange\n"+
		"<0000> <FFFF>\n"+
		"endcodespacerange\n"+
		"1 beginbfrange\n"+
		"<0000> <FFFF> <0000>\n"+
		"endbfrange\n"+
		"endcmap\n"+
		"CMapName currentdict /CMap defineresource pop\n"+
		"end\n"+
		"end\n")

	sd, _ := xRefTable.NewStreamDictForBuf(buf.Bytes())
	if err := sd.Encode(); err != nil {
		return nil, err
	}
	return xRefTable.IndRefForNewObject(*sd)
}
