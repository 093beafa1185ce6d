package collab

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// PDFToPPMRasterizer implements Rasterizer by shelling out to poppler's
// pdftoppm, the same external tool gardar-ocrchestra and cpcloud-micasa
// both wrap for page rasterization — ported here in the latter's
// exec.CommandContext-with-captured-stderr idiom (internal/extract/ocr.go
// ocrPDF).
type PDFToPPMRasterizer struct {
	// BinaryPath overrides the "pdftoppm" lookup on PATH, for test fakes.
	BinaryPath string
}

func (r PDFToPPMRasterizer) binary() string {
	if r.BinaryPath != "" {
		return r.BinaryPath
	}
	return "pdftoppm"
}

// Rasterize renders one 1-based page of inputPath to outputPNGPath at dpi,
// via "pdftoppm -png -r DPI -f N -l N -singlefile input prefix".
// -singlefile suppresses pdftoppm's page-number suffix so outputPNGPath's
// basename (minus ".png") can be passed directly as its -prefix argument.
func (r PDFToPPMRasterizer) Rasterize(ctx context.Context, inputPath string, pageIndex int, dpi int, outputPNGPath string) error {
	if pageIndex < 1 {
		return errors.Errorf("collab: pdftoppm: page index %d must be 1-based", pageIndex)
	}

	prefix := strings.TrimSuffix(outputPNGPath, filepath.Ext(outputPNGPath))

	args := []string{
		"-png",
		"-r", strconv.Itoa(dpi),
		"-f", strconv.Itoa(pageIndex),
		"-l", strconv.Itoa(pageIndex),
		"-singlefile",
		inputPath,
		prefix,
	}

	cmd := exec.CommandContext(ctx, r.binary(), args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return classifyExecErr(err, "pdftoppm", stderr.String())
	}

	if _, err := os.Stat(outputPNGPath); err != nil {
		return errors.Wrapf(err, "collab: pdftoppm: expected output %s was not produced", outputPNGPath)
	}
	return nil
}

// classifyExecErr wraps err with the command's stderr, distinguishing a
// missing binary (ErrMissing, §7 CodeMissingDependency) from a run-time
// failure of the binary itself, which is returned as a plain wrapped error
// carrying the stderr text (§7 CodeChildProcess).
func classifyExecErr(err error, name, stderrText string) error {
	if errors.Is(err, exec.ErrNotFound) {
		return errors.Wrapf(ErrMissing, "%s: not found on PATH", name)
	}
	msg := strings.TrimSpace(stderrText)
	if msg == "" {
		msg = err.Error()
	}
	return errors.Wrap(fmt.Errorf("%s: %s", name, msg), "collab")
}
