// Package config holds the engine's Options (the resolved form of the
// §6 flag table) and an optional YAML override file, the direct
// descendant of the teacher's retired config.yml bootstrap (see
// DESIGN.md) minus the go:embed default resource directory.
package config

import (
	"os"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

// PolicyMode selects the mutually-exclusive Policy behavior (§4.2).
type PolicyMode int

const (
	PolicyDefault PolicyMode = iota
	PolicySkipText
	PolicyForceOCR
	PolicyRedoOCR
)

// OutputType selects the assembler's conformance target (§6).
type OutputType string

const (
	OutputPDF    OutputType = "pdf"
	OutputPDFA   OutputType = "pdfa"
	OutputPDFA1  OutputType = "pdfa-1"
	OutputPDFA2  OutputType = "pdfa-2"
	OutputPDFA3  OutputType = "pdfa-3"
	OutputNone   OutputType = "none"
)

// PreprocessPlan mirrors spec §3; order is fixed by the renderer/grafter,
// these booleans only toggle presence.
type PreprocessPlan struct {
	RotatePages          bool
	RotatePagesThreshold float64
	Deskew               bool
	RemoveBackground     bool
	Clean                bool
	CleanFinal           bool
}

// Options is the fully-resolved set of user-facing knobs (§6), built by
// merging, in increasing priority: compiled-in defaults, an optional YAML
// file, then command-line flags.
type Options struct {
	Jobs      int
	Languages []string

	Policy PolicyMode

	Preprocess PreprocessPlan

	OversampleDPI   float64
	SkipBigMegapix  float64

	OCRTimeout    time.Duration
	NonOCRTimeout time.Duration

	OutputType    OutputType
	OptimizeLevel int
	FastWebView   int64 // bytes; 0 disables

	Pages string // range expression, empty means "all"

	SidecarPath string

	KeepTemporaryFiles         bool
	InvalidateDigitalSignatures bool
	ContinueOnSoftRenderError  bool

	Progress bool

	// DPISafetyFactor and DPIMaxRatio are carried here and can be set from
	// the YAML file, but the page analyzer does not read them: it always
	// reports the pixel-area-weighted mean DPI. See DESIGN.md
	// "Open-question decisions" #1.
	DPISafetyFactor float64
	DPIMaxRatio     float64
}

// Default returns the engine's compiled-in defaults.
func Default() Options {
	return Options{
		Jobs:            1,
		Languages:       []string{"eng"},
		Policy:          PolicyDefault,
		OversampleDPI:   0,
		SkipBigMegapix:  0,
		OCRTimeout:      180 * time.Second,
		NonOCRTimeout:   180 * time.Second,
		OutputType:      OutputPDF,
		OptimizeLevel:   1,
		FastWebView:     0,
		Progress:        true,
		DPISafetyFactor: 1.5,
		DPIMaxRatio:     4.0,
	}
}

// override is the subset of Options a YAML file may set; zero-valued
// fields are left untouched by ApplyYAML rather than zeroing an explicit
// default, matching the teacher's "override only what's present" config.yml
// semantics.
type override struct {
	Jobs            *int      `yaml:"jobs"`
	Languages       []string  `yaml:"languages"`
	OptimizeLevel   *int      `yaml:"optimize"`
	OCRTimeoutSecs  *int      `yaml:"ocrTimeoutSeconds"`
	DPISafetyFactor *float64  `yaml:"dpiSafetyFactor"`
	DPIMaxRatio     *float64  `yaml:"dpiMaxRatio"`
	Progress        *bool     `yaml:"progress"`
}

// ApplyYAML reads path and overrides the matching fields of o in place.
// A missing or unreadable file is an error; callers only pass a path when
// the user supplied --config.
func (o *Options) ApplyYAML(path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, "config: reading %s", path)
	}

	var ov override
	if err := yaml.Unmarshal(b, &ov); err != nil {
		return errors.Wrapf(err, "config: parsing %s", path)
	}

	if ov.Jobs != nil {
		o.Jobs = *ov.Jobs
	}
	if len(ov.Languages) > 0 {
		o.Languages = ov.Languages
	}
	if ov.OptimizeLevel != nil {
		o.OptimizeLevel = *ov.OptimizeLevel
	}
	if ov.OCRTimeoutSecs != nil {
		o.OCRTimeout = time.Duration(*ov.OCRTimeoutSecs) * time.Second
	}
	if ov.DPISafetyFactor != nil {
		o.DPISafetyFactor = *ov.DPISafetyFactor
	}
	if ov.DPIMaxRatio != nil {
		o.DPIMaxRatio = *ov.DPIMaxRatio
	}
	if ov.Progress != nil {
		o.Progress = *ov.Progress
	}

	return nil
}

// Validate checks Options for the BadArguments class of error (§7).
func (o Options) Validate() error {
	if o.Jobs < 1 {
		return errors.New("config: --jobs must be >= 1")
	}
	if o.OptimizeLevel < 0 || o.OptimizeLevel > 3 {
		return errors.New("config: --optimize must be in 0..3")
	}
	modes := 0
	switch o.Policy {
	case PolicySkipText, PolicyForceOCR, PolicyRedoOCR:
		modes++
	}
	_ = modes // PolicyDefault + any one override is valid; mutual exclusion enforced at flag-parse time (cmd/ocrsandwich).
	switch o.OutputType {
	case OutputPDF, OutputPDFA, OutputPDFA1, OutputPDFA2, OutputPDFA3, OutputNone:
	default:
		return errors.Errorf("config: unknown --output-type %q", o.OutputType)
	}
	return nil
}
