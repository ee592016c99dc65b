// Package application wires the Driver component (spec §4.J): it owns no
// compiler logic of its own, only the order in which Lexer, Parser,
// SemanticAnalyzer and CodeGenerator run, sharing the injected error
// reporter, type registry and symbol table.
package application

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/quarklang/quarkc/internal/domain"
	"github.com/quarklang/quarkc/internal/infrastructure"
	"github.com/quarklang/quarkc/internal/interfaces"
)

// DefaultCompilerPipeline runs the single-file compilation pipeline:
// lex -> parse -> analyze -> generate, writing textual LLVM IR to the
// output (object emission and linking happen in cmd/quarkc). Grounded on
// the teacher's driver.go phase sequencing, generalized from a fixed
// component set to injected interfaces.Lexer/Parser/SemanticAnalyzer/
// CodeGenerator so tests can substitute mocks (compiler_factory.go).
type DefaultCompilerPipeline struct {
	lexer         interfaces.Lexer
	parser        interfaces.Parser
	analyzer      interfaces.SemanticAnalyzer
	generator     interfaces.CodeGenerator
	errorReporter domain.ErrorReporter
	options       domain.CompilationOptions
	typeRegistry  domain.TypeRegistry
	symbolTable   interfaces.SymbolTable
	memoryManager interfaces.MemoryManager

	log      *logrus.Logger
	progress *infrastructure.ProgressTracker
}

func NewDefaultCompilerPipeline(log *logrus.Logger) *DefaultCompilerPipeline {
	if log == nil {
		log = logrus.New()
	}
	return &DefaultCompilerPipeline{log: log, progress: infrastructure.NewProgressTracker(log, log.IsLevelEnabled(logrus.DebugLevel))}
}

func (p *DefaultCompilerPipeline) SetLexer(lexer interfaces.Lexer)                     { p.lexer = lexer }
func (p *DefaultCompilerPipeline) SetParser(parser interfaces.Parser)                  { p.parser = parser }
func (p *DefaultCompilerPipeline) SetSemanticAnalyzer(a interfaces.SemanticAnalyzer)   { p.analyzer = a }
func (p *DefaultCompilerPipeline) SetCodeGenerator(g interfaces.CodeGenerator)         { p.generator = g }
func (p *DefaultCompilerPipeline) SetErrorReporter(reporter domain.ErrorReporter)      { p.errorReporter = reporter }
func (p *DefaultCompilerPipeline) SetOptions(options domain.CompilationOptions)        { p.options = options }
func (p *DefaultCompilerPipeline) SetTypeRegistry(registry domain.TypeRegistry)        { p.typeRegistry = registry }
func (p *DefaultCompilerPipeline) SetSymbolTable(table interfaces.SymbolTable)         { p.symbolTable = table }
func (p *DefaultCompilerPipeline) SetMemoryManager(manager interfaces.MemoryManager)   { p.memoryManager = manager }

// Compile runs every phase against a single source file. Per-phase errors
// are reported through errorReporter and also returned so cmd/quarkc can
// decide the process exit code; the returned error's text names only the
// failing phase and file, so diagnostics already printed are not repeated
// when the CLI prints it.
func (p *DefaultCompilerPipeline) Compile(filename string, input io.Reader, output io.Writer) error {
	p.progress.Start(filename)
	defer p.progress.Stop()

	p.progress.SetStage(infrastructure.StageLexing)
	if err := p.lexer.SetInput(filename, input); err != nil {
		p.progress.SetError(err.Error())
		return fmt.Errorf("pipeline: reading %s: %w", filename, err)
	}
	p.progress.CompleteStage(infrastructure.StageLexing)

	p.progress.SetStage(infrastructure.StageParsing)
	program, err := p.parser.Parse(p.lexer)
	if err != nil {
		p.progress.SetError(err.Error())
		return fmt.Errorf("pipeline: parsing %s: %w", filename, err)
	}
	if p.errorReporter != nil && p.errorReporter.HasErrors() {
		return fmt.Errorf("pipeline: %s failed to parse", filename)
	}
	p.progress.CompleteStage(infrastructure.StageParsing)

	p.progress.SetStage(infrastructure.StageSemanticAnalysis)
	if err := p.analyzer.Analyze(program); err != nil {
		p.progress.SetError(err.Error())
		return fmt.Errorf("pipeline: analyzing %s: %w", filename, err)
	}
	if p.errorReporter != nil && p.errorReporter.HasErrors() {
		return fmt.Errorf("pipeline: %s failed semantic analysis", filename)
	}
	if p.options.WarningsAsErrors && p.errorReporter != nil && p.errorReporter.HasWarnings() {
		return fmt.Errorf("pipeline: %s produced warnings and -Werror is set", filename)
	}
	p.progress.CompleteStage(infrastructure.StageSemanticAnalysis)

	p.progress.SetStage(infrastructure.StageCodeGeneration)
	var asm bytes.Buffer
	p.generator.SetOutput(&asm)
	p.generator.SetOptions(interfaces.CodeGenOptions{
		OptimizationLevel: p.options.OptimizationLevel,
		DebugInfo:         p.options.DebugInfo,
		TargetTriple:      p.options.TargetTriple,
	})
	if err := p.generator.Generate(program); err != nil {
		p.progress.SetError(err.Error())
		return fmt.Errorf("pipeline: generating code for %s: %w", filename, err)
	}
	p.progress.CompleteStage(infrastructure.StageCodeGeneration)
	p.progress.SetStage(infrastructure.StageComplete)

	if p.memoryManager != nil {
		stats := p.memoryManager.GetStats()
		p.log.WithFields(logrus.Fields{
			"nodes": stats.NodesAllocated, "strings": stats.StringsAllocated,
		}).Debug("memory stats")
	}

	_, err = output.Write(asm.Bytes())
	return err
}

// MultiFileCompilerPipeline compiles several files into one module by
// appending each file's top-level statements to one Program, so every file
// shares one symbol table/type registry (spec §4.J "driver" multi-file note).
type MultiFileCompilerPipeline struct {
	*DefaultCompilerPipeline
	newLexer func() interfaces.Lexer
}

func NewMultiFileCompilerPipeline(log *logrus.Logger, newLexer func() interfaces.Lexer) *MultiFileCompilerPipeline {
	return &MultiFileCompilerPipeline{DefaultCompilerPipeline: NewDefaultCompilerPipeline(log), newLexer: newLexer}
}

// CompileFiles lexes+parses every file independently, then threads all of
// their statements through one analyzer/generator pass as a synthetic
// Program so cross-file references (structs, functions) resolve.
func (p *MultiFileCompilerPipeline) CompileFiles(filenames []string, inputs []io.Reader, output io.Writer) error {
	if len(filenames) != len(inputs) {
		return fmt.Errorf("pipeline: filenames/inputs length mismatch")
	}

	p.progress.Start(strings.Join(filenames, ","))
	defer p.progress.Stop()

	combined := &domain.Program{}
	for i, filename := range filenames {
		lexer := p.lexer
		if p.newLexer != nil {
			lexer = p.newLexer()
		}
		p.progress.SetStage(infrastructure.StageLexing)
		if err := lexer.SetInput(filename, inputs[i]); err != nil {
			p.progress.SetError(err.Error())
			return fmt.Errorf("pipeline: reading %s: %w", filename, err)
		}
		p.progress.SetStage(infrastructure.StageParsing)
		program, err := p.parser.Parse(lexer)
		if err != nil {
			p.progress.SetError(err.Error())
			return fmt.Errorf("pipeline: parsing %s: %w", filename, err)
		}
		combined.Statements = append(combined.Statements, program.Statements...)
	}
	p.progress.CompleteStage(infrastructure.StageParsing)

	p.progress.SetStage(infrastructure.StageSemanticAnalysis)
	if err := p.analyzer.Analyze(combined); err != nil {
		p.progress.SetError(err.Error())
		return fmt.Errorf("pipeline: analyzing combined program: %w", err)
	}
	if p.errorReporter != nil && p.errorReporter.HasErrors() {
		return fmt.Errorf("pipeline: combined program failed semantic analysis")
	}

	p.progress.SetStage(infrastructure.StageCodeGeneration)
	p.generator.SetOutput(output)
	p.generator.SetOptions(interfaces.CodeGenOptions{
		OptimizationLevel: p.options.OptimizationLevel,
		DebugInfo:         p.options.DebugInfo,
		TargetTriple:      p.options.TargetTriple,
	})
	if err := p.generator.Generate(combined); err != nil {
		p.progress.SetError(err.Error())
		return err
	}
	p.progress.CompleteStage(infrastructure.StageCodeGeneration)
	p.progress.SetStage(infrastructure.StageComplete)
	return nil
}
