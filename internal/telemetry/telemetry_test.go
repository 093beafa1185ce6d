package telemetry

import (
	"testing"

	"github.com/inkmethod/ocrsandwich/pkg/log"
)

func TestConfigureRegistersInfoLogger(t *testing.T) {
	zl, err := Configure(LevelVerbose)
	if err != nil {
		t.Fatalf("Configure: %v", err)
	}
	defer Sync(zl)

	if log.Info == nil {
		t.Fatal("expected log.Info to be non-nil after Configure")
	}
	// Should not panic even though nothing asserts on output content.
	log.Info.Printf("telemetry smoke test %d", 1)
}

func TestConfigureQuietOmitsDebugLogger(t *testing.T) {
	log.DisableLoggers()
	zl, err := Configure(LevelQuiet)
	if err != nil {
		t.Fatalf("Configure: %v", err)
	}
	defer Sync(zl)

	// At LevelQuiet, Debug/Trace are left unset by Configure.
	log.Debug.Printf("should be a no-op, no debug logger registered")
}

func TestFallbackInstallsStdlibLoggers(t *testing.T) {
	Fallback()
	if log.Info == nil {
		t.Fatal("expected log.Info to be non-nil after Fallback")
	}
}
