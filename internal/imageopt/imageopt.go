// Package imageopt implements the ImageOptimizer (§4.5): it walks every
// image XObject exactly once and re-encodes it per the level 0..3 table,
// reusing the kept pkg/filter codecs (CCITTFax, DCT, Flate) the same way
// pkg/pdfcpu/image.go's UpdateImagesByObjNr already rewrites one image's
// stream in place, and reporting before/after sizes with
// github.com/dustin/go-humanize the way a CLI progress line would.
package imageopt

import (
	"bytes"
	"context"
	"image"
	"image/jpeg"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/inkmethod/ocrsandwich/internal/collab"
	"github.com/inkmethod/ocrsandwich/pkg/filter"
	"github.com/inkmethod/ocrsandwich/pkg/pdfcpu"
	"github.com/inkmethod/ocrsandwich/pkg/pdfcpu/model"
	"github.com/pkg/errors"
	"golang.org/x/image/draw"
)

// Level selects the optimizer's lossy/lossless posture (§4.5).
type Level int

const (
	LevelNone Level = iota
	LevelLossless
	LevelLossy
	LevelAggressive
)

// Report summarizes one document's optimization pass.
type Report struct {
	ImagesSeen      int
	ImagesRewritten int
	BytesBefore     int64
	BytesAfter      int64
}

// Summary renders Report using the same human-readable byte formatting a
// progress line would.
func (r Report) Summary() string {
	if r.BytesBefore == 0 {
		return "imageopt: no images processed"
	}
	saved := r.BytesBefore - r.BytesAfter
	pct := 100 * float64(saved) / float64(r.BytesBefore)
	return humanize.Bytes(uint64(r.BytesBefore)) + " -> " + humanize.Bytes(uint64(maxInt64(r.BytesAfter, 0))) +
		" (" + humanize.Comma(int64(pct)) + "% smaller)"
}

func maxInt64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}

// MaxDecodedSize excludes images whose decoded size exceeds the limit
// (§4.5 Exclusions), in bytes. Zero means unbounded.
type Options struct {
	Level          Level
	MaxDecodedSize int64
	Registry       *collab.Registry
}

// Optimize walks pageNrs' images and rewrites eligible ones in place.
func Optimize(runCtx context.Context, ctx *model.Context, pageNrs []int, opts Options) (Report, error) {
	var report Report
	seen := map[int]bool{}

	for _, pageNr := range pageNrs {
		images, err := pdfcpu.ExtractPageImages(ctx, pageNr, false)
		if err != nil {
			return report, errors.Wrapf(err, "imageopt: page %d", pageNr)
		}
		for objNr, img := range images {
			if seen[objNr] {
				continue
			}
			seen[objNr] = true
			report.ImagesSeen++

			if excluded(img) {
				continue
			}

			data, err := io.ReadAll(img)
			if err != nil {
				return report, errors.Wrapf(err, "imageopt: reading obj#%d", objNr)
			}

			before := int64(len(data))
			if opts.MaxDecodedSize > 0 && before > opts.MaxDecodedSize {
				continue
			}
			report.BytesBefore += before

			newData, rewritten, err := reencode(runCtx, img, data, opts)
			if err != nil {
				return report, errors.Wrapf(err, "imageopt: obj#%d", objNr)
			}
			if !rewritten {
				report.BytesAfter += before
				continue
			}

			if err := pdfcpu.UpdateImagesByObjNr(ctx, bytes.NewReader(newData), objNr); err != nil {
				return report, errors.Wrapf(err, "imageopt: rewriting obj#%d", objNr)
			}
			report.ImagesRewritten++
			report.BytesAfter += int64(len(newData))
		}
	}

	return report, nil
}

func excluded(img model.Image) bool {
	return img.IsImgMask || img.HasImgMask || img.HasSMask
}

// reencode picks a candidate encoding per the §4.5 table. It returns a
// nil slice with rewritten=false whenever no candidate
// beats the source encoding, so a document with no improvable images
// leaves ImageOptimizer a no-op.
func reencode(ctx context.Context, img model.Image, data []byte, opts Options) (out []byte, rewritten bool, err error) {
	if opts.Level == LevelNone {
		return nil, false, nil
	}

	switch {
	case img.Bpc == 1:
		return reencodeBilevel(ctx, img, data, opts)
	case img.FileType == "jpg" || img.FileType == "jpeg":
		return reencodeDCT(img, data, opts)
	default:
		return reencodeFlate(ctx, img, data, opts)
	}
}

// reencodeBilevel prefers a JBIG2 collaborator when the registry has one
// registered, then tries the kept CCITTFax filter's encoder. That encoder
// returns no data, so without a JBIG2 collaborator a mono 1bpc image is
// left as it is.
func reencodeBilevel(ctx context.Context, img model.Image, data []byte, opts Options) ([]byte, bool, error) {
	if opts.Registry.HasJBIG2() {
		enc, err := opts.Registry.JBIG2.EncodeJBIG2(ctx, data, img.Width, img.Height)
		if err != nil {
			return nil, false, err
		}
		if len(enc) > 0 && len(enc) < len(data) {
			return enc, true, nil
		}
	}

	f, err := filter.NewFilter(filter.CCITTFax, map[string]int{
		"Columns": img.Width,
		"Rows":    img.Height,
		"K":       -1,
	})
	if err != nil {
		return nil, false, err
	}
	buf, err := f.Encode(bytes.NewReader(data))
	if err != nil {
		return nil, false, err
	}
	if buf != nil && buf.Len() > 0 && buf.Len() < len(data) {
		return buf.Bytes(), true, nil
	}
	return nil, false, nil
}

// dctLossyQuality/dctAggressiveQuality are the re-encode quality targets
// for the §4.5 table's level 2/3 "gray/rgb DCT" rows; dctAggressiveMaxDim
// additionally downsamples a level-3 source wider or taller than this
// many pixels, since aggressive is the one level allowed to shed
// resolution as well as quality.
const (
	dctLossyQuality      = 75
	dctAggressiveQuality = 50
	dctAggressiveMaxDim  = 2000
)

// reencodeDCT re-encodes a JPEG-sourced image at a lower quality (and,
// at LevelAggressive, a capped resolution) when the requested level
// allows lossy re-encoding, keeping the result only if it actually comes
// out smaller than the source stream; at level 1 (lossless only) the DCT
// source is always kept as-is.
func reencodeDCT(img model.Image, data []byte, opts Options) ([]byte, bool, error) {
	if opts.Level == LevelLossless {
		return nil, false, nil
	}

	decoded, err := jpeg.Decode(bytes.NewReader(data))
	if err != nil {
		// A source this decoder can't parse is left untouched rather than
		// failing the whole document's optimization pass.
		return nil, false, nil
	}

	quality := dctLossyQuality
	if opts.Level == LevelAggressive {
		quality = dctAggressiveQuality
		decoded = downsample(decoded, dctAggressiveMaxDim)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, decoded, &jpeg.Options{Quality: quality}); err != nil {
		return nil, false, err
	}
	if buf.Len() > 0 && buf.Len() < len(data) {
		return buf.Bytes(), true, nil
	}
	return nil, false, nil
}

// downsample scales src down (preserving aspect ratio) so neither
// dimension exceeds maxDim, or returns src unchanged if it already fits.
func downsample(src image.Image, maxDim int) image.Image {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= maxDim && h <= maxDim {
		return src
	}

	scale := float64(maxDim) / float64(w)
	if h > w {
		scale = float64(maxDim) / float64(h)
	}
	nw, nh := maxInt(int(float64(w)*scale), 1), maxInt(int(float64(h)*scale), 1)

	dst := image.NewRGBA(image.Rect(0, 0, nw, nh))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Over, nil)
	return dst
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// reencodeFlate tries the registered pngquant-style PNGQuantizer at level
// >= 2 and keeps its output only when it is smaller. At level 1, or when
// no quantizer is registered, the flate stream is left untouched; no DCT
// re-encode is tried for flate sources.
func reencodeFlate(ctx context.Context, img model.Image, data []byte, opts Options) ([]byte, bool, error) {
	if opts.Level == LevelLossless {
		return nil, false, nil
	}
	if opts.Registry.HasPNGQuantizer() {
		q, err := opts.Registry.PNGQuantizer.Quantize(ctx, data, 256, int(opts.Level))
		if err != nil {
			return nil, false, err
		}
		if len(q) > 0 && len(q) < len(data) {
			return q, true, nil
		}
	}
	return nil, false, nil
}
