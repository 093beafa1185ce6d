// ocrsandwich adds an invisible, searchable text layer to scanned PDF
// pages, driven by a flat flag set in the teacher's stdlib-flag style
// (cmd/pdfcpu/main.go's parseFlagsAndGetCommand/setupLogging split) rather
// than a subcommand tree, since this binary has exactly one job.
package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/inkmethod/ocrsandwich/internal/assemble"
	"github.com/inkmethod/ocrsandwich/internal/collab"
	"github.com/inkmethod/ocrsandwich/internal/config"
	"github.com/inkmethod/ocrsandwich/internal/pagerange"
	"github.com/inkmethod/ocrsandwich/internal/pipeline"
	"github.com/inkmethod/ocrsandwich/internal/telemetry"
	"github.com/inkmethod/ocrsandwich/pkg/pdfcpu"
	"github.com/inkmethod/ocrsandwich/pkg/pdfcpu/model"
	"github.com/pkg/errors"
	"github.com/schollz/progressbar/v3"
)

var (
	jobs      int
	languages string

	skipText, forceOCR, redoOCR bool

	rotatePages          bool
	rotatePagesThreshold float64

	deskew, removeBackground, clean, cleanFinal bool

	oversampleDPI  float64
	skipBigMegapix float64

	ocrTimeoutSecs    int
	nonOCRTimeoutSecs int

	outputType      string
	optimizeLevel   int
	fastWebViewSize int64

	pagesFlag   string
	sidecarPath string

	keepTemporaryFiles        bool
	invalidateSignatures      bool
	continueOnSoftRenderError bool

	configFile string
	progress   bool

	verbose, veryVerbose bool
)

func init() {
	flag.IntVar(&jobs, "jobs", 1, "concurrency cap")
	flag.StringVar(&languages, "language", "eng", "OCR language list, LANG[+LANG...]")

	flag.BoolVar(&skipText, "skip-text", false, "Policy mode: skip pages that already have text")
	flag.BoolVar(&forceOCR, "force-ocr", false, "Policy mode: rasterize and OCR every page")
	flag.BoolVar(&redoOCR, "redo-ocr", false, "Policy mode: replace any existing OCR text layer")

	flag.BoolVar(&rotatePages, "rotate-pages", false, "enable page rotation")
	flag.Float64Var(&rotatePagesThreshold, "rotate-pages-threshold", 0, "confidence threshold for --rotate-pages")

	flag.BoolVar(&deskew, "deskew", false, "enable deskew preprocessing")
	flag.BoolVar(&removeBackground, "remove-background", false, "enable background removal preprocessing")
	flag.BoolVar(&clean, "clean", false, "enable cleanup preprocessing before OCR")
	flag.BoolVar(&cleanFinal, "clean-final", false, "keep cleaned image in the final output")

	flag.Float64Var(&oversampleDPI, "oversample", 0, "minimum rasterization DPI")
	flag.Float64Var(&skipBigMegapix, "skip-big", 0, "skip OCR on pages whose largest image exceeds this many megapixels")

	flag.IntVar(&ocrTimeoutSecs, "ocr-timeout", 180, "per-page OCR timeout in seconds")
	flag.IntVar(&nonOCRTimeoutSecs, "non-ocr-timeout", 180, "per-page non-OCR stage timeout in seconds")

	flag.StringVar(&outputType, "output-type", "pdf", "assembler mode: pdf|pdfa|pdfa-1|pdfa-2|pdfa-3|none")
	flag.IntVar(&optimizeLevel, "optimize", 1, "image optimizer level 0-3")
	flag.Int64Var(&fastWebViewSize, "fast-web-view", 0, "when > 0, write the output with a cross-reference stream (the output is not linearized and its size is not compared)")

	flag.StringVar(&pagesFlag, "pages", "", "act only on the listed pages")
	flag.StringVar(&sidecarPath, "sidecar", "", "write plain-text OCR to this file")

	flag.BoolVar(&keepTemporaryFiles, "keep-temporary-files", false, "retain the working directory")
	flag.BoolVar(&invalidateSignatures, "invalidate-digital-signatures", false, "permit modifying signed PDFs")
	flag.BoolVar(&continueOnSoftRenderError, "continue-on-soft-render-error", false, "downgrade a page to copy-only instead of failing the run")

	flag.StringVar(&configFile, "config", "", "YAML defaults override file")

	flag.BoolVar(&progress, "progress", true, "show a progress bar")
	flag.BoolVar(&veryVerbose, "vv", false, "very verbose logging")
	flag.BoolVar(&verbose, "verbose", false, "verbose logging")
}

func main() {
	os.Exit(run())
}

// run implements the full CLI contract of SPEC_FULL.md §6/§7 and returns
// the process exit code, mirroring the teacher's main() which also
// resolves to an os.Exit(code) rather than panicking on failure.
func run() int {
	flag.Usage = usage
	flag.Parse()

	level := telemetry.LevelQuiet
	if verbose {
		level = telemetry.LevelVerbose
	}
	if veryVerbose {
		level = telemetry.LevelVeryVerbose
	}
	zl, err := telemetry.Configure(level)
	if err != nil {
		telemetry.Fallback()
	} else {
		defer telemetry.Sync(zl)
	}

	args := flag.Args()
	if len(args) != 2 {
		fmt.Fprintln(os.Stderr, "ocrsandwich: expected exactly two positional arguments: input output")
		flag.Usage()
		return int(pipeline.CodeBadArguments)
	}
	inputPath, outputPath := args[0], args[1]

	opts, err := resolveOptions()
	if err != nil {
		fmt.Fprintln(os.Stderr, "ocrsandwich:", err)
		return int(pipeline.CodeBadArguments)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	notify := make(chan os.Signal, 1)
	signal.Notify(notify, os.Interrupt, syscall.SIGTERM)
	go func() {
		select {
		case <-notify:
			cancel()
		case <-ctx.Done():
		}
	}()

	err = execute(ctx, inputPath, outputPath, opts)
	if err == nil {
		return int(pipeline.CodeOK)
	}
	if ctx.Err() != nil {
		fmt.Fprintln(os.Stderr, "ocrsandwich: cancelled")
		return int(pipeline.CodeCancelled)
	}
	fmt.Fprintf(os.Stderr, "ocrsandwich: %+v\n", err)
	return int(pipeline.ExitCode(err))
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: ocrsandwich [flags] input output")
	flag.PrintDefaults()
}

// resolveOptions merges compiled-in defaults, an optional --config YAML
// file, then the command-line flags, per §6's documented priority order.
func resolveOptions() (config.Options, error) {
	opts := config.Default()

	if configFile != "" {
		if err := opts.ApplyYAML(configFile); err != nil {
			return opts, err
		}
	}

	modes := 0
	if skipText {
		opts.Policy = config.PolicySkipText
		modes++
	}
	if forceOCR {
		opts.Policy = config.PolicyForceOCR
		modes++
	}
	if redoOCR {
		opts.Policy = config.PolicyRedoOCR
		modes++
	}
	if modes > 1 {
		return opts, errors.New("--skip-text, --force-ocr and --redo-ocr are mutually exclusive")
	}

	// Only flags given on the command line override the YAML file.
	set := map[string]bool{}
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })

	if set["jobs"] {
		opts.Jobs = jobs
	}
	if set["language"] {
		opts.Languages = splitLanguages(languages)
	}
	opts.Preprocess = config.PreprocessPlan{
		RotatePages:          rotatePages,
		RotatePagesThreshold: rotatePagesThreshold,
		Deskew:               deskew,
		RemoveBackground:     removeBackground,
		Clean:                clean,
		CleanFinal:           cleanFinal,
	}
	opts.OversampleDPI = oversampleDPI
	opts.SkipBigMegapix = skipBigMegapix
	if set["ocr-timeout"] {
		opts.OCRTimeout = time.Duration(ocrTimeoutSecs) * time.Second
	}
	opts.NonOCRTimeout = time.Duration(nonOCRTimeoutSecs) * time.Second
	opts.OutputType = config.OutputType(outputType)
	if set["optimize"] {
		opts.OptimizeLevel = optimizeLevel
	}
	opts.FastWebView = fastWebViewSize
	opts.Pages = pagesFlag
	opts.SidecarPath = sidecarPath
	opts.KeepTemporaryFiles = keepTemporaryFiles
	opts.InvalidateDigitalSignatures = invalidateSignatures
	opts.ContinueOnSoftRenderError = continueOnSoftRenderError
	if set["progress"] {
		opts.Progress = progress
	}

	if err := opts.Validate(); err != nil {
		return opts, err
	}
	if _, err := pagerange.Parse(opts.Pages); err != nil {
		return opts, err
	}
	return opts, nil
}

func splitLanguages(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, "+")
}

// execute opens the input, runs the pipeline over the selected pages and
// assembles the output, per §6's working-directory and standard-streams
// contract ("-" denotes stdin/stdout).
func execute(ctx context.Context, inputPath, outputPath string, opts config.Options) error {
	pctx, stdinBuf, err := openInput(inputPath)
	if err != nil {
		return err
	}

	selection, err := pagerange.Parse(opts.Pages)
	if err != nil {
		return &pipeline.Error{Code: pipeline.CodeBadArguments, Message: "parsing --pages", Cause: err}
	}
	pageNrs, err := pagerange.Pages(pctx.XRefTable.PageCount, selection)
	if err != nil {
		return &pipeline.Error{Code: pipeline.CodeBadArguments, Message: "resolving --pages", Cause: err}
	}

	registry, err := collab.NewRegistry(collab.PDFToPPMRasterizer{}, collab.TesseractOCREngine{})
	if err != nil {
		return err
	}

	wd, err := pipeline.NewWorkDir(pctx.XRefTable.PageCount, opts.KeepTemporaryFiles)
	if err != nil {
		return err
	}
	defer wd.Close()

	sourcePath := inputPath
	if inputPath == "-" {
		// The rasterizer shells out to a file-based tool, so stdin input
		// needs a file on disk too; reuse the working directory for it.
		sourcePath = wd.Path(0, "source", "pdf")
		if err := os.WriteFile(sourcePath, stdinBuf, 0o644); err != nil {
			return &pipeline.Error{Code: pipeline.CodeFileAccess, Message: "writing buffered stdin input", Cause: err}
		}
	}

	var bar *progressbar.ProgressBar
	var onPageDone func(int)
	if opts.Progress {
		bar = progressbar.Default(int64(len(pageNrs)), "ocr")
		onPageDone = func(int) { _ = bar.Add(1) }
	}

	results, _, err := pipeline.Execute(ctx, pipeline.Run{
		Ctx:        pctx,
		InputPath:  sourcePath,
		PageNrs:    pageNrs,
		Options:    opts,
		Registry:   registry,
		WorkDir:    wd,
		OnPageDone: onPageDone,
	})
	if bar != nil {
		_ = bar.Finish()
	}
	if err != nil {
		return err
	}
	if warn := pipeline.Warnings(results); warn != nil {
		fmt.Fprintln(os.Stderr, "ocrsandwich: warnings:", warn)
	}

	if opts.SidecarPath != "" {
		if err := writeSidecar(opts.SidecarPath, results); err != nil {
			return err
		}
	}

	return writeOutput(ctx, pctx, outputPath, opts, registry)
}

// openInput reads inputPath ("-" meaning stdin) into a *model.Context. For
// stdin it also returns the raw bytes read, since a later collaborator
// (the file-based Rasterizer) needs them written back out to a real path.
func openInput(inputPath string) (*model.Context, []byte, error) {
	conf := model.NewDefaultConfiguration()

	if inputPath == "-" {
		buf, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, nil, &pipeline.Error{Code: pipeline.CodeFileAccess, Message: "reading stdin", Cause: err}
		}
		pctx, err := pdfcpu.Read(bytes.NewReader(buf), "stdin", int64(len(buf)), conf)
		if err != nil {
			return nil, nil, &pipeline.Error{Code: pipeline.CodeInputNotPdf, Message: "stdin is not a valid PDF", Cause: err}
		}
		return pctx, buf, nil
	}

	pctx, err := pdfcpu.ReadFile(inputPath, conf)
	if err != nil {
		if os.IsNotExist(errors.Cause(err)) {
			return nil, nil, &pipeline.Error{Code: pipeline.CodeFileAccess, Message: "opening " + inputPath, Cause: err}
		}
		return nil, nil, &pipeline.Error{Code: pipeline.CodeInputNotPdf, Message: inputPath + " is not a valid PDF", Cause: err}
	}
	return pctx, nil, nil
}

func writeOutput(ctx context.Context, pctx *model.Context, outputPath string, opts config.Options, registry *collab.Registry) error {
	if outputPath != "-" {
		return assemble.Assemble(ctx, pctx, assemble.Options{
			Languages:   opts.Languages,
			OutputType:  opts.OutputType,
			FastWebView: opts.FastWebView > 0,
			OutputPath:  outputPath,
			Registry:    registry,
		})
	}

	tmp, err := os.CreateTemp("", "ocrsandwich-out-*.pdf")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	tmp.Close()
	defer os.Remove(tmpPath)

	if err := assemble.Assemble(ctx, pctx, assemble.Options{
		Languages:   opts.Languages,
		OutputType:  opts.OutputType,
		FastWebView: opts.FastWebView > 0,
		OutputPath:  tmpPath,
		Registry:    registry,
	}); err != nil {
		return err
	}

	f, err := os.Open(tmpPath)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = io.Copy(os.Stdout, f)
	return err
}

// writeSidecar writes each page's plain text, form-feed separated, per
// §6: "pages that were skipped produce no content for that page (the
// form-feed still appears)".
func writeSidecar(path string, results []pipeline.PageResult) error {
	var buf bytes.Buffer
	for _, r := range results {
		buf.WriteString(r.Text)
		buf.WriteString("\n\f")
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}
