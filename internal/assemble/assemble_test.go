package assemble

import (
	"strings"
	"testing"

	"github.com/inkmethod/ocrsandwich/internal/config"
)

func TestPartForOutputType(t *testing.T) {
	cases := map[config.OutputType]int{
		config.OutputPDFA1: 1,
		config.OutputPDFA2: 2,
		config.OutputPDFA3: 3,
		config.OutputPDFA:  2,
	}
	for in, want := range cases {
		if got := partForOutputType(in); got != want {
			t.Fatalf("partForOutputType(%v) = %d, want %d", in, got, want)
		}
	}
}

func TestXMPStreamIncludesSubtypeAndLanguage(t *testing.T) {
	buf, err := xmpStream("GTS_PDFA2", []string{"eng"})
	if err != nil {
		t.Fatalf("xmpStream: %v", err)
	}
	s := string(buf)
	if !strings.Contains(s, "GTS_PDFA2") {
		t.Fatal("expected subtype in XMP payload")
	}
	if !strings.Contains(s, "<dc:language>eng</dc:language>") {
		t.Fatal("expected language tag in XMP payload")
	}
}

func TestXMPStreamDefaultsLanguage(t *testing.T) {
	buf, err := xmpStream("GTS_PDFA2", nil)
	if err != nil {
		t.Fatalf("xmpStream: %v", err)
	}
	if !strings.Contains(string(buf), "x-unknown") {
		t.Fatal("expected fallback language when none given")
	}
}

func TestSplitPath(t *testing.T) {
	dir, file := splitPath("/tmp/out/result.pdf")
	if dir != "/tmp/out" || file != "result.pdf" {
		t.Fatalf("splitPath = (%q, %q)", dir, file)
	}
}

func TestSplitPathNoDirectory(t *testing.T) {
	dir, file := splitPath("result.pdf")
	if dir != "." || file != "result.pdf" {
		t.Fatalf("splitPath = (%q, %q)", dir, file)
	}
}

func TestPDFTimestampFormat(t *testing.T) {
	ts := pdfTimestamp()
	if !strings.HasPrefix(ts, "D:") || !strings.HasSuffix(ts, "Z") {
		t.Fatalf("pdfTimestamp = %q, want D:...Z", ts)
	}
}
