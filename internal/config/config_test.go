package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultIsValid(t *testing.T) {
	o := Default()
	if err := o.Validate(); err != nil {
		t.Fatalf("default options must validate, got %v", err)
	}
}

func TestValidateRejectsBadJobs(t *testing.T) {
	o := Default()
	o.Jobs = 0
	if err := o.Validate(); err == nil {
		t.Fatal("expected error for Jobs=0")
	}
}

func TestValidateRejectsBadOutputType(t *testing.T) {
	o := Default()
	o.OutputType = "docx"
	if err := o.Validate(); err == nil {
		t.Fatal("expected error for unknown output type")
	}
}

func TestApplyYAMLOverridesOnlyPresentFields(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ocrsandwich.yml")
	content := "jobs: 4\noptimize: 2\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	o := Default()
	if err := o.ApplyYAML(path); err != nil {
		t.Fatalf("ApplyYAML: %v", err)
	}
	if o.Jobs != 4 {
		t.Errorf("Jobs = %d, want 4", o.Jobs)
	}
	if o.OptimizeLevel != 2 {
		t.Errorf("OptimizeLevel = %d, want 2", o.OptimizeLevel)
	}
	if o.Languages[0] != "eng" {
		t.Errorf("Languages should be untouched, got %v", o.Languages)
	}
}

func TestApplyYAMLMissingFile(t *testing.T) {
	o := Default()
	if err := o.ApplyYAML(filepath.Join(t.TempDir(), "missing.yml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
