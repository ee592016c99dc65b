// Package domain contains the core domain types and interfaces for the
// Quark compiler: source locations, diagnostics, and the compilation
// context type.
package domain

import "fmt"

// SourceLocation identifies a point in a registered source file. Lines and
// columns are 1-based; columns count logical characters (a tab counts as
// one column — display-only expansion happens in the source manager).
type SourceLocation struct {
	Filename string
	Line     int
	Column   int
	Offset   int
}

func (pos SourceLocation) String() string {
	return fmt.Sprintf("%s:%d:%d", pos.Filename, pos.Line, pos.Column)
}

// SourcePosition is kept as an alias of SourceLocation for compatibility
// with earlier component names; new code should use SourceLocation.
type SourcePosition = SourceLocation

// Span is a SourceLocation plus a byte length (invariant I1: every span
// resolves inside exactly one registered file). Every AST node and Symbol
// carries one.
type Span struct {
	Start  SourceLocation
	Length int
}

func (s Span) String() string {
	if s.Length <= 1 {
		return s.Start.String()
	}
	return fmt.Sprintf("%s+%d", s.Start.String(), s.Length)
}

// SourceRange is kept for compatibility with code that still wants a
// start/end pair; it derives from a Span.
type SourceRange struct {
	Start SourceLocation
	End   SourceLocation
}

func (r SourceRange) String() string {
	if r.Start.Filename == r.End.Filename {
		if r.Start.Line == r.End.Line {
			return fmt.Sprintf("%s:%d:%d-%d", r.Start.Filename, r.Start.Line, r.Start.Column, r.End.Column)
		}
		return fmt.Sprintf("%s:%d:%d-%d:%d", r.Start.Filename, r.Start.Line, r.Start.Column, r.End.Line, r.End.Column)
	}
	return fmt.Sprintf("%s-%s", r.Start.String(), r.End.String())
}

// ErrorType classifies a CompilerError for rendering and for the taxonomy
// in spec §7.
type ErrorType int

const (
	LexicalError ErrorType = iota
	SyntaxError
	SemanticError
	TypeCheckError
	CodeGenError
	LinkerError
	InternalError
)

func (et ErrorType) String() string {
	switch et {
	case LexicalError:
		return "lexical error"
	case SyntaxError:
		return "syntax error"
	case SemanticError:
		return "semantic error"
	case TypeCheckError:
		return "type error"
	case CodeGenError:
		return "codegen error"
	case LinkerError:
		return "linker error"
	case InternalError:
		return "internal error"
	default:
		return "error"
	}
}

// Error code constants, namespaced per spec §6/§7 and grounded verbatim on
// original_source/include/error_reporter.h's ErrorCodes namespace.
const (
	E0001UnexpectedToken   = "E0001"
	E0002MissingSemicolon  = "E0002"
	E0003UndefinedVariable = "E0003"
	E0004TypeMismatch      = "E0004"
	E0005FunctionNotFound  = "E0005"
	E0006InvalidSyntax     = "E0006"
	E0007MissingBrace      = "E0007"
	E0008DuplicateDef      = "E0008"
	E0009InvalidAssignment = "E0009"
	E0010MissingReturn     = "E0010"

	E102MissingParent       = "E102"
	E109IncompatibleGeneric = "E109"
	E112AssignMismatch      = "E112"
	E115ReturnMismatch      = "E115"
	E118ParamMismatch       = "E118"
	E124FieldMismatch       = "E124"

	W001PossiblyNoReturn  = "W001"
	W002FloatMatchPattern = "W002"

	C0001CodegenFailed    = "C0001"
	C0002InvalidType      = "C0002"
	C0003LLVMError        = "C0003"
	C0004SymbolNotFound   = "C0004"
	C0005InvalidOperation = "C0005"
)

// CompilerError is the structured diagnostic every phase raises or
// accumulates (spec §4.B "error context").
type CompilerError struct {
	Type        ErrorType
	Message     string
	Location    SourceLocation
	Length      int
	Context     string
	Code        string
	Suggestions []string
	Notes       []string
	Hints       []string // kept for compatibility; mirrors Suggestions
	IsWarning   bool
}

func (e CompilerError) Error() string {
	return fmt.Sprintf("%s: %s at %s", e.Type, e.Message, e.Location)
}

// ErrorReporter accumulates diagnostics during a compilation (spec §4.B;
// §7 "Semantic analyzer never throws — it accumulates").
type ErrorReporter interface {
	ReportError(err CompilerError)
	ReportWarning(warning CompilerError)
	HasErrors() bool
	HasWarnings() bool
	GetErrors() []CompilerError
	GetWarnings() []CompilerError
	Clear()
	PrintSummary()
}

// CompilationOptions configures a single compilation. Extended from the
// teacher's struct with the fields the Driver needs (SPEC_FULL.md "AMBIENT
// STACK / Configuration"): linker path, library search paths, temp
// directory, verbosity and a mock-components switch for testing.
type CompilationOptions struct {
	OptimizationLevel int
	DebugInfo         bool
	TargetTriple      string
	OutputPath        string
	WarningsAsErrors  bool
	LinkerPath        string
	LibraryPaths      []string
	Libraries         []string
	TempDir           string
	Verbose           bool
	UseMockComponents bool
}

// CompilationContext groups one compilation's source texts, error
// reporter, options and set of included files. It holds no source manager
// or symbol table, and the internal/application pipelines do not construct
// one: they receive their components through setters, and the source
// manager is a field of application.CompilerConfig.
type CompilationContext struct {
	SourceFiles   map[string][]byte
	ErrorReporter ErrorReporter
	Options       CompilationOptions
	Included      map[string]bool
}

// NewCompilationContext creates an empty context ready for one compilation.
func NewCompilationContext(reporter ErrorReporter, opts CompilationOptions) *CompilationContext {
	return &CompilationContext{
		SourceFiles:   make(map[string][]byte),
		ErrorReporter: reporter,
		Options:       opts,
		Included:      make(map[string]bool),
	}
}
