package imageopt

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"testing"

	"github.com/inkmethod/ocrsandwich/pkg/pdfcpu/model"
)

func TestExcludedImageMask(t *testing.T) {
	if !excluded(model.Image{IsImgMask: true}) {
		t.Fatal("image masks must be excluded")
	}
	if !excluded(model.Image{HasSMask: true}) {
		t.Fatal("images with a soft mask must be excluded")
	}
	if excluded(model.Image{}) {
		t.Fatal("a plain image must not be excluded")
	}
}

func TestReencodeLevelNoneIsNoop(t *testing.T) {
	data, rewritten, err := reencode(nil, model.Image{Bpc: 1}, []byte{1, 2, 3}, Options{Level: LevelNone})
	if err != nil {
		t.Fatalf("reencode: %v", err)
	}
	if rewritten || data != nil {
		t.Fatal("LevelNone must never rewrite")
	}
}

func TestReencodeDCTLosslessIsNoop(t *testing.T) {
	img := model.Image{FileType: "jpg"}
	_, rewritten, err := reencodeDCT(img, []byte{1, 2, 3}, Options{Level: LevelLossless})
	if err != nil {
		t.Fatalf("reencodeDCT: %v", err)
	}
	if rewritten {
		t.Fatal("lossless level must never touch a DCT source")
	}
}

func TestReencodeDCTLossyShrinksRealJPEG(t *testing.T) {
	data := encodeSampleJPEG(t, 64, 64, 100)
	img := model.Image{FileType: "jpg", Width: 64, Height: 64}
	out, rewritten, err := reencodeDCT(img, data, Options{Level: LevelLossy})
	if err != nil {
		t.Fatalf("reencodeDCT: %v", err)
	}
	if !rewritten {
		t.Fatal("expected a lower-quality re-encode of a quality-100 source to be smaller")
	}
	if len(out) >= len(data) {
		t.Fatalf("expected re-encoded size %d < source size %d", len(out), len(data))
	}
}

func TestDownsampleLeavesSmallImageUntouched(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 10, 10))
	if got := downsample(src, 100); got != image.Image(src) {
		t.Fatal("expected downsample to return the source unchanged when it already fits")
	}
}

func TestDownsampleShrinksLargeImage(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 4000, 2000))
	got := downsample(src, 2000)
	b := got.Bounds()
	if b.Dx() > 2000 || b.Dy() > 2000 {
		t.Fatalf("expected both dimensions <= 2000, got %dx%d", b.Dx(), b.Dy())
	}
}

func encodeSampleJPEG(t *testing.T, w, h, quality int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 4), G: uint8(y * 4), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		t.Fatalf("jpeg.Encode: %v", err)
	}
	return buf.Bytes()
}

func TestReportSummaryNoImages(t *testing.T) {
	r := Report{}
	if got := r.Summary(); got != "imageopt: no images processed" {
		t.Fatalf("Summary() = %q", got)
	}
}

func TestReportSummaryWithSavings(t *testing.T) {
	r := Report{BytesBefore: 1000, BytesAfter: 500}
	got := r.Summary()
	if got == "" {
		t.Fatal("expected non-empty summary")
	}
}
