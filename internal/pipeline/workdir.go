package pipeline

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// WorkDir is the per-run scratch directory laid out per §6: one unique
// directory under the system temp root, holding per-page files named
// "<NNNN>_<stage>.<ext>".
type WorkDir struct {
	root    string
	padding int
	keep    bool
}

// NewWorkDir creates a fresh unique working directory for pageCount pages
// (padding scales with the page count so indices always sort lexically).
func NewWorkDir(pageCount int, keep bool) (*WorkDir, error) {
	name := uuid.NewString()
	root := filepath.Join(os.TempDir(), "ocrsandwich-"+name)
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, errors.Wrapf(err, "pipeline: creating working directory %s", root)
	}
	padding := 4
	for n := pageCount; n >= 10000; n /= 10 {
		padding++
	}
	return &WorkDir{root: root, padding: padding, keep: keep}, nil
}

// Path returns the path for pageNr's stage file, e.g. "0007_rasterize.png".
func (w *WorkDir) Path(pageNr int, stage, ext string) string {
	return filepath.Join(w.root, fmt.Sprintf("%0*d_%s.%s", w.padding, pageNr, stage, ext))
}

// Close removes the working directory unless KeepTemporaryFiles was set.
func (w *WorkDir) Close() error {
	if w.keep {
		return nil
	}
	return os.RemoveAll(w.root)
}
