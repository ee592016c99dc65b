package application

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockPipeline(t *testing.T) (*DefaultCompilerPipeline, *CompilerFactory) {
	t.Helper()
	cfg := DefaultCompilerConfig()
	cfg.UseMockComponents = true
	factory := NewCompilerFactory(cfg)
	pipeline := NewDefaultCompilerPipeline(nil)
	factory.wire(pipeline)
	return pipeline, factory
}

func TestDefaultCompilerPipeline_CompileRunsEveryPhase(t *testing.T) {
	pipeline, _ := newMockPipeline(t)

	var out strings.Builder
	err := pipeline.Compile("main.qk", strings.NewReader(""), &out)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "mock generated module")
}

func TestDefaultCompilerPipeline_SettersOverrideComponents(t *testing.T) {
	pipeline := NewDefaultCompilerPipeline(nil)
	pipeline.SetLexer(NewMockLexer())
	pipeline.SetParser(NewMockParser())
	pipeline.SetSemanticAnalyzer(NewMockSemanticAnalyzer())
	pipeline.SetCodeGenerator(NewMockCodeGenerator())

	var out strings.Builder
	err := pipeline.Compile("main.qk", strings.NewReader(""), &out)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "mock generated module")
}

func TestMultiFileCompilerPipeline_CombinesStatementsFromEveryFile(t *testing.T) {
	cfg := DefaultCompilerConfig()
	cfg.UseMockComponents = true
	factory := NewCompilerFactory(cfg)
	pipeline := factory.CreateMultiFileCompilerPipeline()

	var out strings.Builder
	err := pipeline.CompileFiles(
		[]string{"a.qk", "b.qk"},
		[]io.Reader{strings.NewReader(""), strings.NewReader("")},
		&out,
	)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "mock generated module")
}

func TestMultiFileCompilerPipeline_RejectsMismatchedFileAndInputCounts(t *testing.T) {
	cfg := DefaultCompilerConfig()
	cfg.UseMockComponents = true
	factory := NewCompilerFactory(cfg)
	pipeline := factory.CreateMultiFileCompilerPipeline()

	err := pipeline.CompileFiles([]string{"a.qk", "b.qk"}, []io.Reader{strings.NewReader("")}, &strings.Builder{})
	assert.Error(t, err)
}
