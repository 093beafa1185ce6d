package analyzer

import (
	"testing"

	"github.com/inkmethod/ocrsandwich/pkg/pdfcpu/model"
)

func TestContentShowsTextSimpleTj(t *testing.T) {
	bb := []byte("BT /F1 12 Tf (Hello) Tj ET")
	if !contentShowsText(bb) {
		t.Fatal("expected Tj to be detected")
	}
}

func TestContentShowsTextIgnoresOperatorInsideString(t *testing.T) {
	bb := []byte("BT /F1 12 Tf (This looks like Tj but isn't an operator) ET")
	if contentShowsText(bb) {
		t.Fatal("operator-looking text inside a string literal must not count")
	}
}

func TestContentShowsTextIgnoresInlineImageData(t *testing.T) {
	bb := []byte("q BI /W 1 /H 1 /BPC 8 /CS /G ID \x00 EI Q")
	if contentShowsText(bb) {
		t.Fatal("inline image payload must not be scanned for text operators")
	}
}

func TestContentShowsTextFalseForImageOnlyPage(t *testing.T) {
	bb := []byte("q 100 0 0 100 0 0 cm /Im0 Do Q")
	if contentShowsText(bb) {
		t.Fatal("a Do-only content stream has no text")
	}
}

func TestEstimateDPIKnownImage(t *testing.T) {
	// 8.5x11in page, one full-bleed 2550x3300px image: 300dpi exactly.
	images := map[int]model.Image{
		1: {Width: 2550, Height: 3300},
	}
	dpi, frac := estimateDPI(images, 8.5*72, 11*72)
	if diff := dpi - 300; diff > 0.5 || diff < -0.5 {
		t.Fatalf("estimateDPI = %v, want ~300", dpi)
	}
	if frac != 1.0 {
		t.Fatalf("areaFraction = %v, want 1.0", frac)
	}
}

func TestEstimateDPINoImages(t *testing.T) {
	dpi, frac := estimateDPI(map[int]model.Image{}, 612, 792)
	if dpi != 0 || frac != 0 {
		t.Fatalf("expected zero values for no images, got dpi=%v frac=%v", dpi, frac)
	}
}
