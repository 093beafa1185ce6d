package pipeline

import (
	"os"
	"strings"
	"testing"
)

func TestWorkDirPathFormat(t *testing.T) {
	wd, err := NewWorkDir(5, false)
	if err != nil {
		t.Fatalf("NewWorkDir: %v", err)
	}
	defer wd.Close()

	p := wd.Path(7, "rasterize", "png")
	if !strings.HasSuffix(p, "0007_rasterize.png") {
		t.Fatalf("Path = %q, want suffix 0007_rasterize.png", p)
	}
}

func TestWorkDirPaddingScalesWithPageCount(t *testing.T) {
	wd, err := NewWorkDir(20000, false)
	if err != nil {
		t.Fatalf("NewWorkDir: %v", err)
	}
	defer wd.Close()

	p := wd.Path(7, "ocr", "txt")
	if !strings.HasSuffix(p, "00007_ocr.txt") {
		t.Fatalf("Path = %q, want 5-digit padding", p)
	}
}

func TestWorkDirCloseRemovesDirUnlessKept(t *testing.T) {
	wd, err := NewWorkDir(1, false)
	if err != nil {
		t.Fatalf("NewWorkDir: %v", err)
	}
	root := wd.root
	if err := wd.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if _, err := os.Stat(root); !os.IsNotExist(err) {
		t.Fatal("expected working directory to be removed")
	}
}

func TestWorkDirCloseKeepsDirWhenRequested(t *testing.T) {
	wd, err := NewWorkDir(1, true)
	if err != nil {
		t.Fatalf("NewWorkDir: %v", err)
	}
	root := wd.root
	defer os.RemoveAll(root)
	if err := wd.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if _, err := os.Stat(root); err != nil {
		t.Fatal("expected working directory to be kept")
	}
}
