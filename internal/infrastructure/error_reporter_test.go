package infrastructure

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quarklang/quarkc/internal/domain"
)

func TestConsoleErrorReporter_BasicLifecycle(t *testing.T) {
	var out strings.Builder
	reporter := NewConsoleErrorReporter(&out, nil, false)
	require.NotNil(t, reporter)

	assert.False(t, reporter.HasErrors())
	assert.False(t, reporter.HasWarnings())

	reporter.ReportError(domain.CompilerError{
		Type:     domain.SyntaxError,
		Message:  "unexpected token",
		Location: domain.SourceLocation{Filename: "test.qk", Line: 1, Column: 1},
		Code:     domain.E0001UnexpectedToken,
	})

	assert.True(t, reporter.HasErrors())
	errs := reporter.GetErrors()
	require.Len(t, errs, 1)
	assert.Equal(t, "unexpected token", errs[0].Message)

	reporter.ReportWarning(domain.CompilerError{
		Type:     domain.SemanticError,
		Message:  "unused variable",
		Location: domain.SourceLocation{Filename: "test.qk", Line: 2, Column: 1},
	})

	assert.True(t, reporter.HasWarnings())
	warnings := reporter.GetWarnings()
	require.Len(t, warnings, 1)
	assert.True(t, warnings[0].IsWarning)

	reporter.Clear()
	assert.False(t, reporter.HasErrors())
	assert.False(t, reporter.HasWarnings())
}

func TestConsoleErrorReporter_RenderIncludesCodeAndLocation(t *testing.T) {
	var out strings.Builder
	reporter := NewConsoleErrorReporter(&out, nil, false)

	reporter.ReportError(domain.CompilerError{
		Type:     domain.SemanticError,
		Message:  "undefined variable `x`",
		Location: domain.SourceLocation{Filename: "main.qk", Line: 3, Column: 10},
		Code:     domain.E0003UndefinedVariable,
	})

	rendered := out.String()
	assert.Contains(t, rendered, "error[E0003]")
	assert.Contains(t, rendered, "undefined variable `x`")
	assert.Contains(t, rendered, "main.qk:3:10")
}

func TestConsoleErrorReporter_RenderUsesSourceContextForCaret(t *testing.T) {
	var out strings.Builder
	mgr := NewSourceManager()
	mgr.AddFile("main.qk", "func main() {\n    var x = y;\n}\n")

	reporter := NewConsoleErrorReporter(&out, mgr, false)
	reporter.ReportError(domain.CompilerError{
		Type:     domain.SemanticError,
		Message:  "undefined variable `y`",
		Location: domain.SourceLocation{Filename: "main.qk", Line: 2, Column: 13},
		Length:   1,
		Code:     domain.E0003UndefinedVariable,
		Notes:    []string{"declared nowhere in this scope"},
	})

	rendered := out.String()
	assert.Contains(t, rendered, "var x = y;")
	assert.Contains(t, rendered, "^")
	assert.Contains(t, rendered, "note: declared nowhere in this scope")
}

func TestConsoleErrorReporter_SuggestionsRenderAsHelp(t *testing.T) {
	var out strings.Builder
	reporter := NewConsoleErrorReporter(&out, nil, false)

	reporter.ReportError(domain.CompilerError{
		Message:     "undefined variable `coutn`",
		Location:    domain.SourceLocation{Filename: "main.qk", Line: 1, Column: 1},
		Suggestions: []string{"did you mean `count`?"},
	})

	assert.Contains(t, out.String(), "help: did you mean `count`?")
}

func TestConsoleErrorReporter_RespectsMaxLimits(t *testing.T) {
	var out strings.Builder
	reporter := NewConsoleErrorReporter(&out, nil, false)
	reporter.SetMaxErrors(2)
	reporter.SetMaxWarnings(1)

	for i := 0; i < 5; i++ {
		reporter.ReportError(domain.CompilerError{Message: "e", Location: domain.SourceLocation{Filename: "f", Line: i + 1}})
	}
	for i := 0; i < 3; i++ {
		reporter.ReportWarning(domain.CompilerError{Message: "w", Location: domain.SourceLocation{Filename: "f", Line: i + 1}})
	}

	assert.Len(t, reporter.GetErrors(), 2)
	assert.Len(t, reporter.GetWarnings(), 1)
}

func TestConsoleErrorReporter_PrintSummaryReportsCounts(t *testing.T) {
	var out strings.Builder
	reporter := NewConsoleErrorReporter(&out, nil, false)

	reporter.ReportError(domain.CompilerError{Message: "bad", Location: domain.SourceLocation{Filename: "f", Line: 1}})
	reporter.ReportWarning(domain.CompilerError{Message: "meh", Location: domain.SourceLocation{Filename: "f", Line: 1}})
	out.Reset()

	reporter.PrintSummary()

	summary := out.String()
	assert.Contains(t, summary, "1 warning generated")
	assert.Contains(t, summary, "aborting due to 1 previous error")
}

func TestSortedErrorReporter_FlushOrdersByLocation(t *testing.T) {
	var out strings.Builder
	base := NewConsoleErrorReporter(&out, nil, false)
	sorted := NewSortedErrorReporter(base)
	require.NotNil(t, sorted)

	assert.False(t, sorted.HasErrors())

	sorted.ReportError(domain.CompilerError{Message: "third", Location: domain.SourceLocation{Filename: "f", Line: 3}})
	sorted.ReportError(domain.CompilerError{Message: "first", Location: domain.SourceLocation{Filename: "f", Line: 1}})
	sorted.ReportError(domain.CompilerError{Message: "second", Location: domain.SourceLocation{Filename: "f", Line: 2}})

	assert.True(t, sorted.HasErrors())
	require.Len(t, sorted.GetErrors(), 3)

	sorted.Flush()

	underlying := base.GetErrors()
	require.Len(t, underlying, 3)
	assert.Equal(t, "first", underlying[0].Message)
	assert.Equal(t, "second", underlying[1].Message)
	assert.Equal(t, "third", underlying[2].Message)

	assert.False(t, sorted.HasErrors(), "Flush should drain the buffer")
}

func TestSortedErrorReporter_FlushOrdersWarningsSeparatelyFromErrors(t *testing.T) {
	var out strings.Builder
	base := NewConsoleErrorReporter(&out, nil, false)
	sorted := NewSortedErrorReporter(base)

	sorted.ReportWarning(domain.CompilerError{Message: "later", Location: domain.SourceLocation{Filename: "f", Line: 5}})
	sorted.ReportWarning(domain.CompilerError{Message: "earlier", Location: domain.SourceLocation{Filename: "f", Line: 1}})

	sorted.Flush()

	underlyingWarnings := base.GetWarnings()
	require.Len(t, underlyingWarnings, 2)
	assert.Equal(t, "earlier", underlyingWarnings[0].Message)
	assert.Equal(t, "later", underlyingWarnings[1].Message)
}

func TestCompareLocations_OrdersByFilenameThenLineThenColumn(t *testing.T) {
	a := domain.SourceLocation{Filename: "a.qk", Line: 1, Column: 5}
	b := domain.SourceLocation{Filename: "b.qk", Line: 1, Column: 1}
	assert.True(t, compareLocations(a, b), "different filenames compare lexically")

	c := domain.SourceLocation{Filename: "f", Line: 1, Column: 10}
	d := domain.SourceLocation{Filename: "f", Line: 2, Column: 1}
	assert.True(t, compareLocations(c, d), "earlier line sorts first regardless of column")

	e := domain.SourceLocation{Filename: "f", Line: 1, Column: 1}
	g := domain.SourceLocation{Filename: "f", Line: 1, Column: 5}
	assert.True(t, compareLocations(e, g))
	assert.False(t, compareLocations(e, e))
}
