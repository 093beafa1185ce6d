// Package assemble implements the PdfAssembler (§4.7): the final stage
// that takes a document whose pages have already been grafted with text
// layers and turns it into the delivered file. It adjusts top-level
// metadata, sets the document language, optionally produces PDF/A
// conformance, and writes the result with the kept pdfcpu writer.
package assemble

import (
	"context"
	"fmt"
	"time"

	"github.com/inkmethod/ocrsandwich/internal/collab"
	"github.com/inkmethod/ocrsandwich/internal/config"
	"github.com/inkmethod/ocrsandwich/pkg/pdfcpu"
	"github.com/inkmethod/ocrsandwich/pkg/pdfcpu/model"
	"github.com/inkmethod/ocrsandwich/pkg/pdfcpu/types"
	"github.com/pkg/errors"
)

// Options carries the assembler's inputs beyond the document itself.
type Options struct {
	Languages   []string // BCP-47 language tag(s); the first becomes /Lang
	OutputType  config.OutputType
	FastWebView bool
	OutputPath  string
	ICCProfile  []byte // embedded when producing PDF/A directly (no collab.PDFAEngine)
	Registry    *collab.Registry
}

// Assemble finalizes ctx per opts and writes it to opts.OutputPath.
// Grafting has already mutated ctx's page dicts in place (§4.4), so
// assembly itself never re-orders or re-copies pages — it only touches
// document-level state and drives the write.
func Assemble(ctx context.Context, pctx *model.Context, opts Options) error {
	if err := setLanguage(pctx, opts.Languages); err != nil {
		return errors.Wrap(err, "assemble: setting document language")
	}

	touchInfoDict(pctx)

	switch opts.OutputType {
	case config.OutputPDFA, config.OutputPDFA1, config.OutputPDFA2, config.OutputPDFA3:
		part := partForOutputType(opts.OutputType)
		if err := conformToPDFA(ctx, pctx, part, opts); err != nil {
			return errors.Wrap(err, "assemble: PDF/A conformance")
		}
	}

	pctx.Write.DirName, pctx.Write.FileName = splitPath(opts.OutputPath)

	// Fast-web-view (linearization) is not implemented by the kept writer;
	// WriteXRefStream is the closest knob it exposes, and turning it on at
	// least keeps random access to the xref table cheap for a viewer that
	// streams the file.
	if opts.FastWebView {
		pctx.Configuration.WriteXRefStream = true
	}

	if err := pdfcpu.WriteContext(pctx); err != nil {
		return errors.Wrap(err, "assemble: writing output")
	}

	return nil
}

func partForOutputType(t config.OutputType) int {
	switch t {
	case config.OutputPDFA1:
		return 1
	case config.OutputPDFA2:
		return 2
	case config.OutputPDFA3:
		return 3
	default:
		return 2
	}
}

// conformToPDFA returns an error when a PDFAEngine collaborator is
// registered; the engine is not called from here. When none is
// registered, it stamps an OutputIntent dictionary and an XMP stream
// directly so the document at least declares its intended conformance.
func conformToPDFA(ctx context.Context, pctx *model.Context, part int, opts Options) error {
	if opts.Registry.HasPDFA() {
		return errors.New("assemble: PDF/A delegation to an external engine must run on the written file, call Assemble with OutputType none first")
	}

	subtype := model.GetSubtypeFromPart(part)
	if subtype == "" {
		return errors.Errorf("assemble: no OutputIntent subtype for PDF/A part %d", part)
	}

	root, err := pctx.XRefTable.Catalog()
	if err != nil {
		return errors.Wrap(err, "assemble: loading catalog")
	}

	oi := types.NewDict()
	oi.InsertName("Type", "OutputIntent")
	oi.InsertName("S", subtype)
	oi.InsertString("OutputConditionIdentifier", "sRGB IEC61966-2.1")
	oi.InsertString("Info", "sRGB IEC61966-2.1")

	if len(opts.ICCProfile) > 0 {
		sd, err := pctx.XRefTable.NewStreamDictForBuf(opts.ICCProfile)
		if err != nil {
			return errors.Wrap(err, "assemble: embedding ICC profile")
		}
		sd.InsertInt("N", 3)
		ir, err := pctx.XRefTable.IndRefForNewObject(*sd)
		if err != nil {
			return errors.Wrap(err, "assemble: registering ICC profile stream")
		}
		oi.Insert("DestOutputProfile", *ir)
	}

	oiRef, err := pctx.XRefTable.IndRefForNewObject(oi)
	if err != nil {
		return errors.Wrap(err, "assemble: registering OutputIntent")
	}
	root["OutputIntents"] = types.Array{*oiRef}

	xmp, err := xmpStream(subtype, opts.Languages)
	if err != nil {
		return err
	}
	sd, err := pctx.XRefTable.NewStreamDictForBuf(xmp)
	if err != nil {
		return errors.Wrap(err, "assemble: building XMP metadata stream")
	}
	sd.InsertName("Type", "Metadata")
	sd.InsertName("Subtype", "XML")
	xmpRef, err := pctx.XRefTable.IndRefForNewObject(*sd)
	if err != nil {
		return errors.Wrap(err, "assemble: registering XMP metadata")
	}
	root["Metadata"] = *xmpRef

	return nil
}

func xmpStream(subtype string, languages []string) ([]byte, error) {
	lang := "x-unknown"
	if len(languages) > 0 {
		lang = languages[0]
	}
	return []byte(fmt.Sprintf(`<?xpacket begin="" id="W5M0MpCehiHzreSzNTczkc9d"?>
<x:xmpmeta xmlns:x="adobe:ns:meta/">
 <rdf:RDF xmlns:rdf="http://www.w3.org/1999/02/22-rdf-syntax-ns#">
  <rdf:Description rdf:about="" xmlns:pdfaid="http://www.aiim.org/pdfa/ns/id/" xmlns:dc="http://purl.org/dc/elements/1.1/">
   <pdfaid:part>%s</pdfaid:part>
   <dc:language>%s</dc:language>
  </rdf:Description>
 </rdf:RDF>
</x:xmpmeta>
<?xpacket end="w"?>`, subtype, lang)), nil
}

func setLanguage(pctx *model.Context, languages []string) error {
	if len(languages) == 0 {
		return nil
	}
	root, err := pctx.XRefTable.Catalog()
	if err != nil {
		return err
	}
	root.InsertString("Lang", languages[0])
	return nil
}

// touchInfoDict refreshes Producer/ModDate so the written file reflects
// that this run touched it, mirroring what the kept writer already does
// for documents it regenerates from scratch.
func touchInfoDict(pctx *model.Context) {
	if pctx.XRefTable.Info == nil {
		return
	}
	d, err := pctx.XRefTable.DereferenceDict(*pctx.XRefTable.Info)
	if err != nil || d == nil {
		return
	}
	d.InsertString("Producer", "ocrsandwich")
	d.InsertString("ModDate", pdfTimestamp())
}

func pdfTimestamp() string {
	return "D:" + time.Now().UTC().Format("20060102150405") + "Z"
}

func splitPath(path string) (dir, file string) {
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '/' {
			return path[:i], path[i+1:]
		}
	}
	return ".", path
}
