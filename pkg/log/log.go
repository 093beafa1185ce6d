/*
Copyright 2018 The pdfcpu Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package log provides a logging abstraction.
package log

import (
	"io/ioutil"
	"log"
	"os"
)

// Logger defines an interface for logging messages.
type Logger interface {

	// Printf logs a formatted string.
	Printf(format string, args ...interface{})

	// Println logs a line.
	Println(args ...interface{})

	// Fatalf is equivalent to Printf() followed by a program abort.
	Fatalf(format string, args ...interface{})

	// Fatalln is equivalent to Println() followed by a progam abort.
	Fatalln(args ...interface{})
}

type logger struct {
	log Logger
}

// pdfcpu's defined loggers. CLI/Parse/Read/Validate/Write are per-phase
// loggers the flat pkg/pdfcpu and pkg/pdfcpu/model traversal code calls
// into directly (e.g. log.Read.Println in read.go); Optimize exists
// because cmd/pdfcpu/main.go's setupLogging wires it even though no kept
// traversal file logs through it directly. All of them were missing from
// this file despite being load-bearing call sites throughout the kept
// substrate, the same class of retrieval gap as types.Dict (see DESIGN.md).
var (
	CLI      = &logger{}
	Debug    = &logger{}
	Info     = &logger{}
	Optimize = &logger{}
	Parse    = &logger{}
	Read     = &logger{}
	Stats    = &logger{}
	Trace    = &logger{}
	Validate = &logger{}
	Write    = &logger{}
)

// SetCLILogger sets the CLI logger.
func SetCLILogger(log Logger) {
	CLI.log = log
}

// SetDebugLogger sets the debug logger.
func SetDebugLogger(log Logger) {
	Debug.log = log
}

// SetInfoLogger sets the info logger.
func SetInfoLogger(log Logger) {
	Info.log = log
}

// SetOptimizeLogger sets the optimize logger.
func SetOptimizeLogger(log Logger) {
	Optimize.log = log
}

// SetParseLogger sets the parse logger.
func SetParseLogger(log Logger) {
	Parse.log = log
}

// SetReadLogger sets the read logger.
func SetReadLogger(log Logger) {
	Read.log = log
}

// SetStatsLogger sets the stats logger.
func SetStatsLogger(log Logger) {
	Stats.log = log
}

// SetTraceLogger sets the trace logger.
func SetTraceLogger(log Logger) {
	Trace.log = log
}

// SetValidateLogger sets the validate logger.
func SetValidateLogger(log Logger) {
	Validate.log = log
}

// SetWriteLogger sets the write logger.
func SetWriteLogger(log Logger) {
	Write.log = log
}

// SetDefaultCLILogger sets the default CLI logger.
func SetDefaultCLILogger() {
	SetCLILogger(log.New(os.Stderr, "CLI: ", log.Ldate|log.Ltime))
}

// SetDefaultDebugLogger sets the default debug logger.
func SetDefaultDebugLogger() {
	SetDebugLogger(log.New(os.Stderr, "DEBUG: ", log.Ldate|log.Ltime))
}

// SetDefaultInfoLogger sets the default info logger.
func SetDefaultInfoLogger() {
	SetInfoLogger(log.New(os.Stderr, "INFO: ", log.Ldate|log.Ltime))
}

// SetDefaultOptimizeLogger sets the default optimize logger.
func SetDefaultOptimizeLogger() {
	SetOptimizeLogger(log.New(os.Stderr, "OPTIMIZE: ", log.Ldate|log.Ltime))
}

// SetDefaultParseLogger sets the default parse logger.
func SetDefaultParseLogger() {
	SetParseLogger(log.New(ioutil.Discard, "PARSE: ", log.Ldate|log.Ltime))
}

// SetDefaultReadLogger sets the default read logger.
func SetDefaultReadLogger() {
	SetReadLogger(log.New(os.Stderr, "READ: ", log.Ldate|log.Ltime))
}

// SetDefaultStatsLogger sets the default stats logger.
func SetDefaultStatsLogger() {
	SetStatsLogger(log.New(os.Stderr, "STATS: ", log.Ldate|log.Ltime))
}

// SetDefaultTraceLogger sets the default trace logger.
func SetDefaultTraceLogger() {
	SetTraceLogger(log.New(ioutil.Discard, "TRACE: ", log.Ldate|log.Ltime))
}

// SetDefaultValidateLogger sets the default validate logger.
func SetDefaultValidateLogger() {
	SetValidateLogger(log.New(os.Stderr, "VALIDATE: ", log.Ldate|log.Ltime))
}

// SetDefaultWriteLogger sets the default write logger.
func SetDefaultWriteLogger() {
	SetWriteLogger(log.New(os.Stderr, "WRITE: ", log.Ldate|log.Ltime))
}

// SetDefaultLoggers sets all loggers to their default logger.
func SetDefaultLoggers() {
	SetDefaultCLILogger()
	SetDefaultDebugLogger()
	SetDefaultInfoLogger()
	SetDefaultOptimizeLogger()
	SetDefaultParseLogger()
	SetDefaultReadLogger()
	SetDefaultStatsLogger()
	SetDefaultTraceLogger()
	SetDefaultValidateLogger()
	SetDefaultWriteLogger()
}

// DisableLoggers turns off all logging.
func DisableLoggers() {
	SetCLILogger(nil)
	SetDebugLogger(nil)
	SetInfoLogger(nil)
	SetOptimizeLogger(nil)
	SetParseLogger(nil)
	SetReadLogger(nil)
	SetStatsLogger(nil)
	SetTraceLogger(nil)
	SetValidateLogger(nil)
	SetWriteLogger(nil)
}

// CLIEnabled reports whether the CLI logger is active.
func CLIEnabled() bool { return CLI.log != nil }

// DebugEnabled reports whether the debug logger is active.
func DebugEnabled() bool { return Debug.log != nil }

// InfoEnabled reports whether the info logger is active.
func InfoEnabled() bool { return Info.log != nil }

// OptimizeEnabled reports whether the optimize logger is active.
func OptimizeEnabled() bool { return Optimize.log != nil }

// ParseEnabled reports whether the parse logger is active.
func ParseEnabled() bool { return Parse.log != nil }

// ReadEnabled reports whether the read logger is active.
func ReadEnabled() bool { return Read.log != nil }

// StatsEnabled reports whether the stats logger is active.
func StatsEnabled() bool { return Stats.log != nil }

// TraceEnabled reports whether the trace logger is active.
func TraceEnabled() bool { return Trace.log != nil }

// IsTraceLoggerEnabled is an alias of TraceEnabled kept for the call sites
// that use this name instead.
func IsTraceLoggerEnabled() bool { return TraceEnabled() }

// ValidateEnabled reports whether the validate logger is active.
func ValidateEnabled() bool { return Validate.log != nil }

// WriteEnabled reports whether the write logger is active.
func WriteEnabled() bool { return Write.log != nil }

// Printf writes a formatted message to the log.
func (l *logger) Printf(format string, args ...interface{}) {

	if l.log == nil {
		return
	}

	l.log.Printf(format, args...)
}

// Println writes a line to the log.
func (l *logger) Println(args ...interface{}) {

	if l.log == nil {
		return
	}

	l.log.Println(args...)
}

func (l *logger) Fatalf(format string, args ...interface{}) {

	if l.log == nil {
		return
	}

	l.log.Fatalf(format, args)
}

func (l *logger) Fatalln(args ...interface{}) {

	if l.log == nil {
		return
	}

	l.log.Fatalln(args)
}
