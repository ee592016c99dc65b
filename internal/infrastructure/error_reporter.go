package infrastructure

import (
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/quarklang/quarkc/internal/domain"
)

// ANSI escapes for the TTY diagnostic renderer (spec §4.B). Kept as raw
// codes rather than a color library — see DESIGN.md.
const (
	ansiReset  = "\x1b[0m"
	ansiBold   = "\x1b[1m"
	ansiRed    = "\x1b[31m"
	ansiYellow = "\x1b[33m"
	ansiCyan   = "\x1b[36m"
	ansiGreen  = "\x1b[32m"
)

// ConsoleErrorReporter renders diagnostics to a stream in the exact format
// spec §4.B describes, sourced from the shared DefaultSourceManager for
// context extraction. Grounded on the teacher's
// internal/infrastructure/error_reporter.go ConsoleErrorReporter, extended
// with Suggestions/Notes rendering, error codes, and caret alignment.
type ConsoleErrorReporter struct {
	errors      []domain.CompilerError
	warnings    []domain.CompilerError
	output      io.Writer
	sourceMgr   *DefaultSourceManager
	maxErrors   int
	maxWarnings int
	colorize    bool
}

// NewConsoleErrorReporter creates a reporter writing to output (stderr if
// nil), reading source context from sourceMgr.
func NewConsoleErrorReporter(output io.Writer, sourceMgr *DefaultSourceManager, colorize bool) *ConsoleErrorReporter {
	if output == nil {
		output = os.Stderr
	}
	return &ConsoleErrorReporter{
		output:      output,
		sourceMgr:   sourceMgr,
		maxErrors:   100,
		maxWarnings: 50,
		colorize:    colorize,
	}
}

func (er *ConsoleErrorReporter) SetMaxErrors(max int)   { er.maxErrors = max }
func (er *ConsoleErrorReporter) SetMaxWarnings(max int) { er.maxWarnings = max }

func (er *ConsoleErrorReporter) ReportError(err domain.CompilerError) {
	if len(er.errors) < er.maxErrors {
		er.errors = append(er.errors, err)
		er.render(err)
	}
}

func (er *ConsoleErrorReporter) ReportWarning(warning domain.CompilerError) {
	warning.IsWarning = true
	if len(er.warnings) < er.maxWarnings {
		er.warnings = append(er.warnings, warning)
		er.render(warning)
	}
}

func (er *ConsoleErrorReporter) HasErrors() bool   { return len(er.errors) > 0 }
func (er *ConsoleErrorReporter) HasWarnings() bool { return len(er.warnings) > 0 }

func (er *ConsoleErrorReporter) GetErrors() []domain.CompilerError {
	out := make([]domain.CompilerError, len(er.errors))
	copy(out, er.errors)
	return out
}

func (er *ConsoleErrorReporter) GetWarnings() []domain.CompilerError {
	out := make([]domain.CompilerError, len(er.warnings))
	copy(out, er.warnings)
	return out
}

func (er *ConsoleErrorReporter) Clear() {
	er.errors = er.errors[:0]
	er.warnings = er.warnings[:0]
}

// PrintSummary prints the `error: aborting due to N previous error(s)` line
// spec §4.B mandates.
func (er *ConsoleErrorReporter) PrintSummary() {
	if !er.HasErrors() && !er.HasWarnings() {
		return
	}
	fmt.Fprintln(er.output)
	if er.HasWarnings() {
		noun := "warning"
		if len(er.warnings) != 1 {
			noun = "warnings"
		}
		fmt.Fprintf(er.output, "%d %s generated\n", len(er.warnings), noun)
	}
	if er.HasErrors() {
		noun := "error"
		if len(er.errors) != 1 {
			noun = "errors"
		}
		fmt.Fprintf(er.output, "%serror%s: aborting due to %d previous %s\n", er.color(ansiBold, ansiRed), er.color(ansiReset), len(er.errors), noun)
	}
}

func (er *ConsoleErrorReporter) color(codes ...string) string {
	if !er.colorize {
		return ""
	}
	out := ""
	for _, c := range codes {
		out += c
	}
	return out
}

// render prints one diagnostic in spec §4.B's layout:
//
//	error[E0003]: undefined variable `x`
//	  --> file.qk:3:10
//	   |
//	 3 | var y = x + 1;
//	   |         ^ not found in this scope
//	   |
//	   = note: ...
//	   = help: did you mean `xx`?
func (er *ConsoleErrorReporter) render(err domain.CompilerError) {
	sev := "error"
	sevColor := er.color(ansiBold, ansiRed)
	if err.IsWarning {
		sev = "warning"
		sevColor = er.color(ansiBold, ansiYellow)
	}
	reset := er.color(ansiReset)

	header := fmt.Sprintf("%s%s%s", sevColor, sev, reset)
	if err.Code != "" {
		header = fmt.Sprintf("%s[%s]", header, err.Code)
	}
	fmt.Fprintf(er.output, "%s: %s%s%s\n", header, er.color(ansiBold), err.Message, reset)
	fmt.Fprintf(er.output, "  %s-->%s %s\n", er.color(ansiCyan), reset, err.Location.String())

	if er.sourceMgr != nil {
		if ctx, ok := er.sourceMgr.GetErrorContext(err.Location.Filename, err.Location.Line, err.Location.Column, err.Length, 1); ok {
			gutter := fmt.Sprintf("%d", err.Location.Line)
			pad := ""
			for i := 0; i < len(gutter); i++ {
				pad += " "
			}
			fmt.Fprintf(er.output, "%s %s|%s\n", pad, er.color(ansiCyan), reset)
			for i, ln := range ctx.ContextLineNums {
				fmt.Fprintf(er.output, "%*d %s|%s %s\n", len(gutter), ln, er.color(ansiCyan), reset, ctx.ContextLines[i])
				if ln == err.Location.Line {
					fmt.Fprintf(er.output, "%s %s|%s %s%s%s\n", pad, er.color(ansiCyan), reset, sevColor, ctx.CaretIndicator, reset)
				}
			}
			fmt.Fprintf(er.output, "%s %s|%s\n", pad, er.color(ansiCyan), reset)
		}
	}

	if err.Context != "" {
		fmt.Fprintf(er.output, "  = %snote%s: %s\n", er.color(ansiGreen), reset, err.Context)
	}
	for _, note := range err.Notes {
		fmt.Fprintf(er.output, "  = %snote%s: %s\n", er.color(ansiGreen), reset, note)
	}
	for _, suggestion := range err.Suggestions {
		fmt.Fprintf(er.output, "  = %shelp%s: %s\n", er.color(ansiGreen), reset, suggestion)
	}
	fmt.Fprintln(er.output)
}

// SortedErrorReporter buffers diagnostics and flushes them ordered by
// location, matching multi-file compiles where errors arrive out of
// source order. Grounded on the teacher's SortedErrorReporter.
type SortedErrorReporter struct {
	underlying domain.ErrorReporter
	errors     []domain.CompilerError
	warnings   []domain.CompilerError
}

func NewSortedErrorReporter(underlying domain.ErrorReporter) *SortedErrorReporter {
	return &SortedErrorReporter{underlying: underlying}
}

func (ser *SortedErrorReporter) ReportError(err domain.CompilerError) {
	ser.errors = append(ser.errors, err)
}

func (ser *SortedErrorReporter) ReportWarning(warning domain.CompilerError) {
	ser.warnings = append(ser.warnings, warning)
}

func (ser *SortedErrorReporter) HasErrors() bool   { return len(ser.errors) > 0 }
func (ser *SortedErrorReporter) HasWarnings() bool { return len(ser.warnings) > 0 }

func (ser *SortedErrorReporter) GetErrors() []domain.CompilerError {
	out := make([]domain.CompilerError, len(ser.errors))
	copy(out, ser.errors)
	return out
}

func (ser *SortedErrorReporter) GetWarnings() []domain.CompilerError {
	out := make([]domain.CompilerError, len(ser.warnings))
	copy(out, ser.warnings)
	return out
}

func (ser *SortedErrorReporter) Clear() {
	ser.errors = ser.errors[:0]
	ser.warnings = ser.warnings[:0]
}

func (ser *SortedErrorReporter) PrintSummary() {
	ser.underlying.PrintSummary()
}

// Flush sorts collected diagnostics by location and replays them into the
// underlying reporter, then clears this buffer.
func (ser *SortedErrorReporter) Flush() {
	sort.Slice(ser.errors, func(i, j int) bool {
		return compareLocations(ser.errors[i].Location, ser.errors[j].Location)
	})
	sort.Slice(ser.warnings, func(i, j int) bool {
		return compareLocations(ser.warnings[i].Location, ser.warnings[j].Location)
	})
	for _, err := range ser.errors {
		ser.underlying.ReportError(err)
	}
	for _, warning := range ser.warnings {
		ser.underlying.ReportWarning(warning)
	}
	ser.Clear()
}

func compareLocations(a, b domain.SourceLocation) bool {
	if a.Filename != b.Filename {
		return a.Filename < b.Filename
	}
	if a.Line != b.Line {
		return a.Line < b.Line
	}
	return a.Column < b.Column
}
