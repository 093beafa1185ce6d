package graft

import (
	"bytes"

	"github.com/inkmethod/ocrsandwich/pkg/pdfcpu/model"
	"github.com/pkg/errors"
)

// StripInvisibleText removes every "BT ... ET" text object rendered in
// mode 3 (invisible) from the page's content stream: the layer a prior
// Graft call left behind. redo_ocr calls this before rasterizing and
// re-OCRing a page so the fresh invisible text layer replaces the old one
// instead of stacking a second copy underneath it.
func StripInvisibleText(ctx *model.Context, pageNr int) error {
	consolidateRes := false
	pageDict, _, _, err := ctx.XRefTable.PageDict(pageNr, consolidateRes)
	if err != nil {
		return errors.Wrapf(err, "graft: page %d", pageNr)
	}

	content, err := ctx.XRefTable.PageContent(pageDict)
	if err != nil {
		if err == model.ErrNoContent {
			return nil
		}
		return errors.Wrapf(err, "graft: page %d content", pageNr)
	}

	stripped := stripInvisibleTextObjects(content)
	if bytes.Equal(stripped, content) {
		return nil
	}
	return replacePageContent(ctx.XRefTable, pageDict, stripped)
}

// stripInvisibleTextObjects drops every BT..ET span whose render-mode
// operator is "3 Tr", leaving everything outside those spans untouched.
func stripInvisibleTextObjects(content []byte) []byte {
	var out bytes.Buffer
	i := 0
	for i < len(content) {
		start := bytes.Index(content[i:], []byte("BT"))
		if start < 0 {
			out.Write(content[i:])
			break
		}
		start += i

		end := bytes.Index(content[start:], []byte("ET"))
		if end < 0 {
			out.Write(content[i:])
			break
		}
		end = start + end + len("ET")

		out.Write(content[i:start])
		block := content[start:end]
		if !bytes.Contains(block, []byte("3 Tr")) {
			out.Write(block)
		}
		i = end
	}
	return out.Bytes()
}
