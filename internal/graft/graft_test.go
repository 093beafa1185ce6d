package graft

import (
	"bytes"
	"testing"

	"github.com/inkmethod/ocrsandwich/internal/textlayer"
	"github.com/inkmethod/ocrsandwich/pkg/pdfcpu/types"
)

func TestPlanIsNoOpWhenEmpty(t *testing.T) {
	p := Plan{}
	if !p.isNoOp() {
		t.Fatal("empty plan should be a no-op")
	}
}

func TestPlanNotNoOpWithTextLayer(t *testing.T) {
	p := Plan{TextLayer: textlayer.Result{Content: []byte("BT ET")}}
	if p.isNoOp() {
		t.Fatal("plan with text layer content must not be a no-op")
	}
}

func TestMergeFontResourceCreatesFontDict(t *testing.T) {
	resDict := types.NewDict()
	font := &IdentityFont{IndRef: *types.NewIndirectRef(7, 0)}
	if err := mergeFontResource(resDict, textlayer.Result{FontKey: "F0"}, font); err != nil {
		t.Fatalf("mergeFontResource: %v", err)
	}
	fontDict := resDict.DictEntry("Font")
	if fontDict == nil {
		t.Fatal("expected /Font dict to be created")
	}
	entry, found := fontDict.Find("F0")
	if !found {
		t.Fatal("expected F0 entry in font dict")
	}
	if entry != font.IndRef {
		t.Fatalf("expected F0 to reference the identity font, got %v", entry)
	}
}

func TestMergeFontResourceRequiresFontWhenKeyUsed(t *testing.T) {
	resDict := types.NewDict()
	if err := mergeFontResource(resDict, textlayer.Result{FontKey: "F0"}, nil); err == nil {
		t.Fatal("expected an error when a font key is used but no identity font was built")
	}
}

func TestMergeFontResourceNoopWithoutFontKey(t *testing.T) {
	resDict := types.NewDict()
	if err := mergeFontResource(resDict, textlayer.Result{}, nil); err != nil {
		t.Fatalf("mergeFontResource: %v", err)
	}
	if resDict.DictEntry("Font") != nil {
		t.Fatal("expected no /Font dict when the text layer has no font key")
	}
}

func TestWriteRotationCTM90(t *testing.T) {
	var buf bytes.Buffer
	writeRotationCTM(&buf, 90, 612, 792)
	if buf.Len() == 0 {
		t.Fatal("expected CTM to be written for 90 degree rotation")
	}
}

func TestWriteRotationCTMZeroIsNoop(t *testing.T) {
	var buf bytes.Buffer
	writeRotationCTM(&buf, 0, 612, 792)
	if buf.Len() != 0 {
		t.Fatal("expected no CTM written for 0 degree rotation")
	}
}

func TestStripInvisibleTextObjectsRemovesRenderMode3(t *testing.T) {
	content := []byte("1 0 0 1 0 0 cm BT /F0 12 Tf 3 Tr 10 10 Td <0048> Tj ET q 1 0 0 rg f Q")
	got := stripInvisibleTextObjects(content)
	if bytes.Contains(got, []byte("3 Tr")) {
		t.Fatalf("expected invisible text object to be removed, got %q", got)
	}
	if !bytes.Contains(got, []byte("1 0 0 rg f")) {
		t.Fatalf("expected non-text content to survive, got %q", got)
	}
}

func TestStripInvisibleTextObjectsKeepsVisibleText(t *testing.T) {
	content := []byte("BT /F0 12 Tf 0 Tr 10 10 Td (visible) Tj ET")
	got := stripInvisibleTextObjects(content)
	if !bytes.Equal(got, content) {
		t.Fatalf("expected visible text object to be left untouched, got %q", got)
	}
}
