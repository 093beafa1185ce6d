package collab

import (
	"bytes"
	"context"
	"os/exec"
	"strconv"
	"strings"

	"github.com/inkmethod/ocrsandwich/internal/hocr"
	"github.com/inkmethod/ocrsandwich/internal/ocrmodel"
	"github.com/pkg/errors"
)

// TesseractOCREngine implements OCREngine by shelling out to tesseract
// with its "hocr" output config, the same exec.CommandContext-plus-
// captured-stderr idiom cpcloud-micasa's ocrImageFile uses for its "tsv"
// config (internal/extract/ocr.go) — hocr instead of tsv because it
// carries word/line/paragraph geometry and baselines, not just text and
// a flat confidence column.
type TesseractOCREngine struct {
	// BinaryPath overrides the "tesseract" lookup on PATH, for test fakes.
	BinaryPath string
}

func (e TesseractOCREngine) binary() string {
	if e.BinaryPath != "" {
		return e.BinaryPath
	}
	return "tesseract"
}

// OCR runs "tesseract imagePath stdout -l lang1+lang2 --dpi N [--psm 1] hocr"
// and parses the resulting hOCR document into an ocrmodel.Page.
func (e TesseractOCREngine) OCR(ctx context.Context, imagePath string, languages []string, opts OCROptions) (*ocrmodel.Page, error) {
	args := []string{imagePath, "stdout"}

	if len(languages) > 0 {
		args = append(args, "-l", strings.Join(languages, "+"))
	}
	if opts.DPI > 0 {
		args = append(args, "--dpi", strconv.Itoa(int(opts.DPI)))
	}
	if opts.DetectOrientation {
		// psm 1 ("automatic page segmentation with OSD") is the only psm
		// value that both detects orientation and still emits recognizable
		// hocr text; psm 0 is OSD-only and produces no hocr output at all.
		args = append(args, "--psm", "1")
	}
	args = append(args, "hocr")

	cmd := exec.CommandContext(ctx, e.binary(), args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, classifyExecErr(err, "tesseract", stderr.String())
	}

	page, err := hocr.Parse(stdout.Bytes(), opts.DPI)
	if err != nil {
		return nil, errors.Wrap(err, "collab: parsing tesseract hocr output")
	}
	return &page, nil
}
