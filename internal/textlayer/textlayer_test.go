package textlayer

import (
	"strings"
	"testing"

	"github.com/inkmethod/ocrsandwich/internal/ocrmodel"
	"github.com/inkmethod/ocrsandwich/pkg/pdfcpu/model"
)

func samplePage() ocrmodel.Page {
	word := ocrmodel.Word{Text: "Hello", BBox: ocrmodel.NewBoundingBox(0, 0, 100, 20)}
	line := ocrmodel.Line{BBox: word.BBox, Words: []ocrmodel.Word{word}}
	para := ocrmodel.Paragraph{BBox: line.BBox, Lines: []ocrmodel.Line{line}}
	return ocrmodel.Page{
		WidthPx:    850,
		HeightPx:   1100,
		BBox:       ocrmodel.NewBoundingBox(0, 0, 850, 1100),
		Paragraphs: []ocrmodel.Paragraph{para},
	}
}

func TestRenderProducesInvisibleOperator(t *testing.T) {
	fm := model.FontMap{}
	res, err := Render(samplePage(), Target{WidthPt: 612, HeightPt: 792}, fm)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	s := string(res.Content)
	if !strings.Contains(s, "3 Tr") {
		t.Fatalf("expected render mode 3 (invisible) operator, got %q", s)
	}
	if !strings.Contains(s, "<"+cidHexString("Hello")) {
		t.Fatalf("expected word's CID hex string in stream, got %q", s)
	}
}

func TestRenderReusesSingleFontKey(t *testing.T) {
	fm := model.FontMap{}
	page := samplePage()
	page.Paragraphs = append(page.Paragraphs, page.Paragraphs[0])
	res, err := Render(page, Target{WidthPt: 612, HeightPt: 792}, fm)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if len(fm) != 1 {
		t.Fatalf("expected exactly one font resource registered, got %d", len(fm))
	}
	if strings.Count(string(res.Content), "/"+res.FontKey) < 2 {
		t.Fatal("expected the font key referenced for every word")
	}
}

func TestRenderRejectsInvalidTree(t *testing.T) {
	page := samplePage()
	page.Paragraphs[0].Lines[0].Words[0].BBox = ocrmodel.NewBoundingBox(0, 0, 99999, 20)
	if _, err := Render(page, Target{WidthPt: 612, HeightPt: 792}, model.FontMap{}); err == nil {
		t.Fatal("expected Validate error to propagate")
	}
}

func TestCIDHexStringEncodesCodePoints(t *testing.T) {
	got := cidHexString("AB")
	want := "00410042"
	if got != want {
		t.Fatalf("cidHexString = %q, want %q", got, want)
	}
}

func TestCIDHexStringReplacesNonBMPRunes(t *testing.T) {
	got := cidHexString("\U0001F600")
	want := "FFFD"
	if got != want {
		t.Fatalf("cidHexString = %q, want %q", got, want)
	}
}

func TestClampFontSize(t *testing.T) {
	if got := clampFontSize(0); got != minFontSizePt {
		t.Fatalf("clampFontSize(0) = %v, want %v", got, minFontSizePt)
	}
	if got := clampFontSize(10000); got != maxFontSizePt {
		t.Fatalf("clampFontSize(10000) = %v, want %v", got, maxFontSizePt)
	}
	if got := clampFontSize(20); got != 20 {
		t.Fatalf("clampFontSize(20) = %v, want 20", got)
	}
}
