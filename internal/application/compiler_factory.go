// Package application contains factory patterns for compiler components.
package application

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/quarklang/quarkc/codegen"
	"github.com/quarklang/quarkc/grammar"
	"github.com/quarklang/quarkc/internal/domain"
	"github.com/quarklang/quarkc/internal/infrastructure"
	"github.com/quarklang/quarkc/internal/interfaces"
	"github.com/quarklang/quarkc/lexer"
	"github.com/quarklang/quarkc/semantic"
)

// MemoryManagerType selects which interfaces.MemoryManager implementation
// CreateMemoryManager builds.
type MemoryManagerType int

const (
	CompactMemoryManagerType MemoryManagerType = iota
	TrackingMemoryManagerType
)

// ErrorReporterType selects which domain.ErrorReporter implementation
// CreateErrorReporter builds.
type ErrorReporterType int

const (
	ConsoleErrorReporterType ErrorReporterType = iota
	SortedErrorReporterType
)

// CompilerConfig holds configuration for the compiler's component graph.
type CompilerConfig struct {
	UseMockComponents bool
	MemoryManagerType MemoryManagerType
	ErrorReporterType ErrorReporterType

	CompilationOptions domain.CompilationOptions

	ErrorOutput io.Writer
	SourceMgr   *infrastructure.DefaultSourceManager
	Log         *logrus.Logger
	Verbose     bool
}

// DefaultCompilerConfig returns the configuration `quarkc build` uses when
// no flags override it.
func DefaultCompilerConfig() CompilerConfig {
	return CompilerConfig{
		UseMockComponents: false,
		MemoryManagerType: CompactMemoryManagerType,
		ErrorReporterType: ConsoleErrorReporterType,
		CompilationOptions: domain.CompilationOptions{
			OptimizationLevel: 0,
			DebugInfo:         false,
			TargetTriple:      "",
			OutputPath:        "a.out",
			WarningsAsErrors:  false,
		},
		ErrorOutput: os.Stderr,
		SourceMgr:   infrastructure.NewSourceManager(),
		Log:         logrus.StandardLogger(),
	}
}

// CompilerFactory creates configured compiler components, keeping the
// Driver (DefaultCompilerPipeline) ignorant of which concrete Lexer,
// Parser, etc. it runs — grounded on the teacher's
// internal/application/compiler_factory.go factory-method split, adapted
// to the current quarkc component set.
type CompilerFactory struct {
	config CompilerConfig
}

func NewCompilerFactory(config CompilerConfig) *CompilerFactory {
	if config.Log == nil {
		config.Log = logrus.StandardLogger()
	}
	if config.ErrorOutput == nil {
		config.ErrorOutput = os.Stderr
	}
	if config.SourceMgr == nil {
		config.SourceMgr = infrastructure.NewSourceManager()
	}
	return &CompilerFactory{config: config}
}

// CreateCompilerPipeline creates a fully configured single-file pipeline.
func (factory *CompilerFactory) CreateCompilerPipeline() interfaces.CompilerPipeline {
	pipeline := NewDefaultCompilerPipeline(factory.config.Log)
	factory.wire(pipeline)
	return pipeline
}

// CreateMultiFileCompilerPipeline creates a pipeline that folds several
// source files into one combined Program before analysis.
func (factory *CompilerFactory) CreateMultiFileCompilerPipeline() *MultiFileCompilerPipeline {
	pipeline := NewMultiFileCompilerPipeline(factory.config.Log, factory.CreateLexer)
	factory.wire(pipeline.DefaultCompilerPipeline)
	return pipeline
}

func (factory *CompilerFactory) wire(pipeline *DefaultCompilerPipeline) {
	typeRegistry := factory.CreateTypeRegistry()
	symbolTable := factory.CreateSymbolTable()
	errorReporter := factory.CreateErrorReporter()

	pipeline.SetLexer(factory.CreateLexer())
	pipeline.SetParser(factory.CreateParser(errorReporter))
	pipeline.SetSemanticAnalyzer(factory.CreateSemanticAnalyzer(errorReporter, typeRegistry, symbolTable))
	pipeline.SetCodeGenerator(factory.CreateCodeGenerator(errorReporter, typeRegistry, symbolTable))
	pipeline.SetErrorReporter(errorReporter)
	pipeline.SetTypeRegistry(typeRegistry)
	pipeline.SetSymbolTable(symbolTable)
	pipeline.SetMemoryManager(factory.CreateMemoryManager())
	pipeline.SetOptions(factory.config.CompilationOptions)
}

func (factory *CompilerFactory) CreateLexer() interfaces.Lexer {
	if factory.config.UseMockComponents {
		return NewMockLexer()
	}
	return lexer.NewLexer()
}

func (factory *CompilerFactory) CreateParser(reporter domain.ErrorReporter) interfaces.Parser {
	if factory.config.UseMockComponents {
		return NewMockParser()
	}
	parser := grammar.NewParser()
	parser.SetErrorReporter(reporter)
	return parser
}

func (factory *CompilerFactory) CreateSemanticAnalyzer(reporter domain.ErrorReporter, types domain.TypeRegistry, symbols interfaces.SymbolTable) interfaces.SemanticAnalyzer {
	if factory.config.UseMockComponents {
		return NewMockSemanticAnalyzer()
	}
	analyzer := semantic.NewAnalyzer()
	analyzer.SetErrorReporter(reporter)
	analyzer.SetTypeRegistry(types)
	analyzer.SetSymbolTable(symbols)
	return analyzer
}

func (factory *CompilerFactory) CreateCodeGenerator(reporter domain.ErrorReporter, types domain.TypeRegistry, symbols interfaces.SymbolTable) interfaces.CodeGenerator {
	if factory.config.UseMockComponents {
		return NewMockCodeGenerator()
	}
	generator := codegen.NewGenerator()
	generator.SetLLVMBackend(factory.CreateLLVMBackend())
	generator.SetErrorReporter(reporter)
	generator.SetTypeRegistry(types)
	generator.SetSymbolTable(symbols)
	return generator
}

// CreateErrorReporter builds the reporter that renders to
// config.ErrorOutput, wrapped in the sorting decorator when requested so
// that diagnostics across forward-declared functions still print in
// source order (spec §4.B "errors sorted by location").
func (factory *CompilerFactory) CreateErrorReporter() domain.ErrorReporter {
	base := infrastructure.NewConsoleErrorReporter(factory.config.ErrorOutput, factory.config.SourceMgr, false)
	switch factory.config.ErrorReporterType {
	case SortedErrorReporterType:
		return infrastructure.NewSortedErrorReporter(base)
	default:
		return base
	}
}

func (factory *CompilerFactory) CreateTypeRegistry() domain.TypeRegistry {
	return domain.NewDefaultTypeRegistry()
}

func (factory *CompilerFactory) CreateSymbolTable() interfaces.SymbolTable {
	return infrastructure.NewDefaultSymbolTable()
}

func (factory *CompilerFactory) CreateMemoryManager() interfaces.MemoryManager {
	switch factory.config.MemoryManagerType {
	case TrackingMemoryManagerType:
		return infrastructure.NewTrackingMemoryManager(infrastructure.NewCompactMemoryManager(), factory.config.Log)
	default:
		return infrastructure.NewCompactMemoryManager()
	}
}

// CreateLLVMBackend creates the LLVM backend component. quarkc has no cgo
// LLVM binding vendored (see DESIGN.md); TextLLVMBackend renders real LLVM
// IR syntax so the rest of the compiler is written exactly as it would be
// against genuine bindings, with `--mock` substituting a no-op backend for
// environments without llc/clang installed (spec §6 "toolchain discovery").
func (factory *CompilerFactory) CreateLLVMBackend() interfaces.LLVMBackend {
	if factory.config.UseMockComponents {
		return NewMockLLVMBackend()
	}
	return infrastructure.NewTextLLVMBackend()
}

// --- Mock implementations, used only when --mock is passed (spec §9
// "testing without a toolchain") ---

type MockLexer struct {
	tokens   []interfaces.Token
	position int
}

func NewMockLexer() *MockLexer { return &MockLexer{} }

func (l *MockLexer) SetInput(filename string, input io.Reader) error {
	l.tokens = []interfaces.Token{
		{Type: interfaces.TokenVoidType, Value: "void", Location: domain.SourceLocation{Filename: filename, Line: 1, Column: 1}},
		{Type: interfaces.TokenIdentifier, Value: "main", Location: domain.SourceLocation{Filename: filename, Line: 1, Column: 6}},
		{Type: interfaces.TokenLParen, Value: "(", Location: domain.SourceLocation{Filename: filename, Line: 1, Column: 10}},
		{Type: interfaces.TokenRParen, Value: ")", Location: domain.SourceLocation{Filename: filename, Line: 1, Column: 11}},
		{Type: interfaces.TokenLBrace, Value: "{", Location: domain.SourceLocation{Filename: filename, Line: 1, Column: 13}},
		{Type: interfaces.TokenRBrace, Value: "}", Location: domain.SourceLocation{Filename: filename, Line: 1, Column: 14}},
		{Type: interfaces.TokenEOF, Value: "", Location: domain.SourceLocation{Filename: filename, Line: 1, Column: 15}},
	}
	l.position = 0
	return nil
}

func (l *MockLexer) NextToken() (interfaces.Token, error) {
	if l.position >= len(l.tokens) {
		return interfaces.Token{Type: interfaces.TokenEOF}, nil
	}
	tok := l.tokens[l.position]
	l.position++
	return tok, nil
}

func (l *MockLexer) Peek() (interfaces.Token, error) {
	if l.position >= len(l.tokens) {
		return interfaces.Token{Type: interfaces.TokenEOF}, nil
	}
	return l.tokens[l.position], nil
}

// MockParser always returns a fixed `func main() {}` program, useful for
// exercising the pipeline's plumbing without a real source file.
type MockParser struct {
	errorReporter domain.ErrorReporter
}

func NewMockParser() *MockParser { return &MockParser{} }

func (p *MockParser) Parse(lexer interfaces.Lexer) (*domain.Program, error) {
	return &domain.Program{
		Statements: []domain.Statement{
			&domain.FunctionDecl{
				Name:       "main",
				Parameters: nil,
				ReturnType: domain.NewVoidType(),
				Body:       &domain.BlockStmt{},
			},
		},
	}, nil
}

func (p *MockParser) SetErrorReporter(reporter domain.ErrorReporter)       { p.errorReporter = reporter }
func (p *MockParser) SetImportResolver(resolver interfaces.ImportResolver) {}

type MockSemanticAnalyzer struct {
	typeRegistry  domain.TypeRegistry
	symbolTable   interfaces.SymbolTable
	errorReporter domain.ErrorReporter
}

func NewMockSemanticAnalyzer() *MockSemanticAnalyzer { return &MockSemanticAnalyzer{} }

func (sa *MockSemanticAnalyzer) Analyze(program *domain.Program) error {
	if program == nil {
		return fmt.Errorf("program is nil")
	}
	return nil
}

func (sa *MockSemanticAnalyzer) SetTypeRegistry(registry domain.TypeRegistry) {
	sa.typeRegistry = registry
}
func (sa *MockSemanticAnalyzer) SetSymbolTable(table interfaces.SymbolTable) { sa.symbolTable = table }
func (sa *MockSemanticAnalyzer) SetErrorReporter(reporter domain.ErrorReporter) {
	sa.errorReporter = reporter
}

type MockCodeGenerator struct {
	output        io.Writer
	options       interfaces.CodeGenOptions
	errorReporter domain.ErrorReporter
}

func NewMockCodeGenerator() *MockCodeGenerator { return &MockCodeGenerator{} }

func (cg *MockCodeGenerator) Generate(program *domain.Program) error {
	if cg.output == nil {
		return nil
	}
	_, err := cg.output.Write([]byte("; mock generated module\n"))
	return err
}

func (cg *MockCodeGenerator) SetOutput(output io.Writer)                   { cg.output = output }
func (cg *MockCodeGenerator) SetOptions(options interfaces.CodeGenOptions) { cg.options = options }
func (cg *MockCodeGenerator) SetErrorReporter(reporter domain.ErrorReporter) {
	cg.errorReporter = reporter
}

// MockLLVMBackend renders nothing; it exists purely so --mock runs can
// exercise the Driver without llc/clang on PATH.
type MockLLVMBackend struct{}

func NewMockLLVMBackend() *MockLLVMBackend { return &MockLLVMBackend{} }

func (m *MockLLVMBackend) Initialize(targetTriple string) error { return nil }
func (m *MockLLVMBackend) CreateModule(name string) (interfaces.LLVMModule, error) {
	return &mockModule{}, nil
}
func (m *MockLLVMBackend) Optimize(module interfaces.LLVMModule, level int) error { return nil }
func (m *MockLLVMBackend) EmitObject(module interfaces.LLVMModule, output io.Writer) error {
	return nil
}
func (m *MockLLVMBackend) EmitAssembly(module interfaces.LLVMModule, output io.Writer) error {
	_, err := output.Write([]byte("; mock module\n"))
	return err
}
func (m *MockLLVMBackend) Dispose() {}

type mockModule struct{}

func (m *mockModule) CreateFunction(name string, funcType domain.Type) (interfaces.LLVMFunction, error) {
	return &mockFunction{}, nil
}
func (m *mockModule) CreateGlobalVariable(name string, varType domain.Type) (interfaces.LLVMValue, error) {
	return &mockValue{}, nil
}
func (m *mockModule) CreateStruct(name string, structType *domain.StructType) (interfaces.LLVMType, error) {
	return &mockType{}, nil
}
func (m *mockModule) GetFunction(name string) (interfaces.LLVMFunction, bool) { return nil, false }
func (m *mockModule) Verify() error                                          { return nil }
func (m *mockModule) Print() string                                          { return "; mock module\n" }
func (m *mockModule) Dispose()                                               {}

type mockFunction struct{}

func (f *mockFunction) CreateBasicBlock(name string) interfaces.LLVMBasicBlock { return &mockBlock{} }
func (f *mockFunction) GetParameter(index int) interfaces.LLVMValue            { return &mockValue{} }
func (f *mockFunction) GetParameterCount() int                                { return 0 }
func (f *mockFunction) SetName(name string)                                   {}

type mockBlock struct{}

func (b *mockBlock) GetName() string    { return "mock" }
func (b *mockBlock) IsTerminated() bool { return true }

type mockValue struct{}

func (v *mockValue) GetType() interfaces.LLVMType { return &mockType{} }
func (v *mockValue) SetName(name string)          {}
func (v *mockValue) GetName() string              { return "" }

type mockType struct{}

func (t *mockType) IsInteger() bool { return false }
func (t *mockType) IsFloat() bool   { return false }
func (t *mockType) IsPointer() bool { return false }
func (t *mockType) IsStruct() bool  { return false }
func (t *mockType) String() string  { return "mock" }
