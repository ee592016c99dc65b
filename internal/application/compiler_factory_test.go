package application

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quarklang/quarkc/internal/domain"
	"github.com/quarklang/quarkc/internal/infrastructure"
)

func TestDefaultCompilerConfig_HasSaneDefaults(t *testing.T) {
	cfg := DefaultCompilerConfig()
	assert.False(t, cfg.UseMockComponents)
	assert.Equal(t, CompactMemoryManagerType, cfg.MemoryManagerType)
	assert.Equal(t, ConsoleErrorReporterType, cfg.ErrorReporterType)
	assert.Equal(t, "a.out", cfg.CompilationOptions.OutputPath)
	require.NotNil(t, cfg.SourceMgr)
}

func TestCompilerFactory_CreateRealComponents(t *testing.T) {
	cfg := DefaultCompilerConfig()
	var out strings.Builder
	cfg.ErrorOutput = &out
	factory := NewCompilerFactory(cfg)

	assert.IsType(t, &infrastructure.DefaultSymbolTable{}, factory.CreateSymbolTable())
	assert.IsType(t, &domain.DefaultTypeRegistry{}, factory.CreateTypeRegistry())
	assert.IsType(t, &infrastructure.CompactMemoryManager{}, factory.CreateMemoryManager())
	assert.IsType(t, &infrastructure.TextLLVMBackend{}, factory.CreateLLVMBackend())

	reporter := factory.CreateErrorReporter()
	_, isConsole := reporter.(*infrastructure.ConsoleErrorReporter)
	assert.True(t, isConsole)
}

func TestCompilerFactory_SortedErrorReporterWraps(t *testing.T) {
	cfg := DefaultCompilerConfig()
	cfg.ErrorReporterType = SortedErrorReporterType
	factory := NewCompilerFactory(cfg)

	reporter := factory.CreateErrorReporter()
	_, isSorted := reporter.(*infrastructure.SortedErrorReporter)
	assert.True(t, isSorted)
}

func TestCompilerFactory_TrackingMemoryManagerWraps(t *testing.T) {
	cfg := DefaultCompilerConfig()
	cfg.MemoryManagerType = TrackingMemoryManagerType
	factory := NewCompilerFactory(cfg)

	_, isTracking := factory.CreateMemoryManager().(*infrastructure.TrackingMemoryManager)
	assert.True(t, isTracking)
}

func TestCompilerFactory_MockComponentsSwapInEveryStage(t *testing.T) {
	cfg := DefaultCompilerConfig()
	cfg.UseMockComponents = true
	factory := NewCompilerFactory(cfg)

	assert.IsType(t, &MockLexer{}, factory.CreateLexer())
	assert.IsType(t, &MockParser{}, factory.CreateParser(factory.CreateErrorReporter()))
	assert.IsType(t, &MockSemanticAnalyzer{}, factory.CreateSemanticAnalyzer(nil, nil, nil))
	assert.IsType(t, &MockLLVMBackend{}, factory.CreateLLVMBackend())

	gen := factory.CreateCodeGenerator(nil, nil, nil)
	assert.IsType(t, &MockCodeGenerator{}, gen)
}

func TestCompilerFactory_CreateCompilerPipelineWiresAllComponents(t *testing.T) {
	cfg := DefaultCompilerConfig()
	cfg.UseMockComponents = true
	factory := NewCompilerFactory(cfg)

	pipeline := factory.CreateCompilerPipeline()
	require.NotNil(t, pipeline)

	var out strings.Builder
	err := pipeline.Compile("mock.qk", strings.NewReader(""), &out)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "mock generated module")
}

func TestMockParser_ProducesAMainFunction(t *testing.T) {
	parser := NewMockParser()
	program, err := parser.Parse(NewMockLexer())
	require.NoError(t, err)
	require.Len(t, program.Statements, 1)

	fn, ok := program.Statements[0].(*domain.FunctionDecl)
	require.True(t, ok)
	assert.Equal(t, "main", fn.Name)
}

func TestMockSemanticAnalyzer_RejectsNilProgram(t *testing.T) {
	analyzer := NewMockSemanticAnalyzer()
	assert.Error(t, analyzer.Analyze(nil))
	assert.NoError(t, analyzer.Analyze(&domain.Program{}))
}

func TestMockLLVMBackend_EmitAssemblyWritesPlaceholder(t *testing.T) {
	backend := NewMockLLVMBackend()
	require.NoError(t, backend.Initialize(""))
	module, err := backend.CreateModule("m")
	require.NoError(t, err)

	var out strings.Builder
	require.NoError(t, backend.EmitAssembly(module, &out))
	assert.Contains(t, out.String(), "mock module")
}
