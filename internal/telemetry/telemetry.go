// Package telemetry wires the engine's structured logging onto the kept
// pkg/log.Logger seam (§9 "ambient stack"). The teacher already carried
// go.uber.org/zap in its go.mod for internal/zap4echo's request logging
// middleware, but never implemented pkg/log.Logger with it; this package
// is that missing adapter, in the same "*zap.SugaredLogger wrapped behind
// a narrow interface" shape zap4echo.Logger uses for echo's middleware
// hook, applied instead to pdfcpu's four-level Debug/Info/Stats/Trace seam.
package telemetry

import (
	"github.com/inkmethod/ocrsandwich/pkg/log"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Level selects zap's output verbosity, driven by the CLI's
// --verbose/--vv flags (cmd/ocrsandwich), mirroring the teacher's
// setupLogging(verbose, veryVerbose bool) in cmd/pdfcpu/main.go.
type Level int

const (
	LevelQuiet Level = iota
	LevelVerbose
	LevelVeryVerbose
)

// sugarLogger adapts a *zap.SugaredLogger's single named level to
// pkg/log.Logger's Printf/Println/Fatalf/Fatalln quartet.
type sugarLogger struct {
	s *zap.SugaredLogger
}

func (l sugarLogger) Printf(format string, args ...interface{}) { l.s.Infof(format, args...) }
func (l sugarLogger) Println(args ...interface{})               { l.s.Info(args...) }
func (l sugarLogger) Fatalf(format string, args ...interface{}) { l.s.Fatalf(format, args...) }
func (l sugarLogger) Fatalln(args ...interface{})                { l.s.Fatal(args...) }

// Configure builds a zap logger at the requested level and registers it as
// pkg/log's Debug/Info/Stats/Trace loggers, replacing
// log.SetDefaultLoggers()'s bare stdlib `log` backing with zap's
// structured, leveled one. All output goes to stderr, per §6 "Standard
// streams": stdout is reserved for the output PDF.
func Configure(level Level) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.Encoding = "console"
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder

	switch level {
	case LevelQuiet:
		cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	case LevelVerbose:
		cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	case LevelVeryVerbose:
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}

	zl, err := cfg.Build()
	if err != nil {
		return nil, err
	}

	sugar := zl.Sugar().WithOptions(zap.AddCallerSkip(1))
	log.SetCLILogger(sugarLogger{s: sugar.Named("cli")})
	log.SetInfoLogger(sugarLogger{s: sugar.Named("info")})
	log.SetStatsLogger(sugarLogger{s: sugar.Named("stats")})

	if level >= LevelVerbose {
		log.SetDebugLogger(sugarLogger{s: sugar.Named("debug")})
		log.SetReadLogger(sugarLogger{s: sugar.Named("read")})
		log.SetWriteLogger(sugarLogger{s: sugar.Named("write")})
		log.SetOptimizeLogger(sugarLogger{s: sugar.Named("optimize")})
		log.SetValidateLogger(sugarLogger{s: sugar.Named("validate")})
	}
	if level >= LevelVeryVerbose {
		log.SetTraceLogger(sugarLogger{s: sugar.Named("trace")})
		log.SetParseLogger(sugarLogger{s: sugar.Named("parse")})
	}

	return zl, nil
}

// Fallback installs the plain stdlib-backed loggers pkg/log ships with,
// for callers (tests, library consumers) that never call Configure.
func Fallback() {
	log.SetDefaultLoggers()
}

// Sync flushes any buffered log entries; call it in a deferred main()
// before process exit, same as every zap.NewProduction() caller must.
func Sync(zl *zap.Logger) {
	if zl == nil {
		return
	}
	_ = zl.Sync()
}
