package infrastructure

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quarklang/quarkc/internal/domain"
	"github.com/quarklang/quarkc/internal/interfaces"
)

func TestTextLLVMBackend_EmitsModuleHeaderAndTriple(t *testing.T) {
	backend := NewTextLLVMBackend()
	require.NoError(t, backend.Initialize("x86_64-unknown-linux-gnu"))

	module, err := backend.CreateModule("main")
	require.NoError(t, err)

	var out strings.Builder
	require.NoError(t, backend.EmitAssembly(module, &out))
	assert.Contains(t, out.String(), "ModuleID = 'main'")
	assert.Contains(t, out.String(), `target triple = "x86_64-unknown-linux-gnu"`)
}

func TestTextLLVMBackend_FunctionWithReturnRendersAndVerifies(t *testing.T) {
	backend := NewTextLLVMBackend()
	require.NoError(t, backend.Initialize(""))
	module, err := backend.CreateModule("m")
	require.NoError(t, err)

	funcType := &domain.FunctionType{ParameterTypes: []domain.Type{domain.NewIntType()}, ReturnType: domain.NewIntType()}
	fn, err := module.CreateFunction("add_one", funcType)
	require.NoError(t, err)

	entry := fn.CreateBasicBlock("entry")
	builder := NewTextBuilder()
	builder.PositionAtEnd(entry)

	one := builder.CreateConstInt(1, 32)
	sum := builder.CreateAdd(fn.GetParameter(0), one, "sum")
	builder.CreateRet(sum)

	assert.True(t, entry.IsTerminated())
	require.NoError(t, module.Verify())

	var out strings.Builder
	require.NoError(t, backend.EmitAssembly(module, &out))
	rendered := out.String()
	assert.Contains(t, rendered, "define i32 @add_one(i32 %arg0)")
	assert.Contains(t, rendered, "= add i32")
	assert.Contains(t, rendered, "ret i32")
}

func TestTextLLVMBackend_VerifyFailsOnUnterminatedBlock(t *testing.T) {
	backend := NewTextLLVMBackend()
	require.NoError(t, backend.Initialize(""))
	module, err := backend.CreateModule("m")
	require.NoError(t, err)

	funcType := &domain.FunctionType{ReturnType: domain.NewVoidType()}
	fn, err := module.CreateFunction("noop", funcType)
	require.NoError(t, err)
	fn.CreateBasicBlock("entry") // no terminator emitted

	err = module.Verify()
	assert.Error(t, err)
}

func TestTextLLVMBackend_DeclareOnlyFunctionHasNoBody(t *testing.T) {
	backend := NewTextLLVMBackend()
	require.NoError(t, backend.Initialize(""))
	module, err := backend.CreateModule("m")
	require.NoError(t, err)

	funcType := &domain.FunctionType{ParameterTypes: []domain.Type{domain.NewStringType()}, ReturnType: domain.NewVoidType(), IsVariadic: true}
	_, err = module.CreateFunction("println", funcType)
	require.NoError(t, err)

	var out strings.Builder
	require.NoError(t, backend.EmitAssembly(module, &out))
	assert.Contains(t, out.String(), "declare void @println(i8* %arg0, ...)")
}

func TestTextLLVMBackend_CreateStructFlattensInheritedFields(t *testing.T) {
	backend := NewTextLLVMBackend()
	require.NoError(t, backend.Initialize(""))
	module, err := backend.CreateModule("m")
	require.NoError(t, err)

	reg := domain.NewDefaultTypeRegistry()
	base, err := reg.CreateStructType("Animal", nil, []domain.StructField{{Name: "name", Type: domain.NewStringType()}})
	require.NoError(t, err)
	derived, err := reg.CreateStructType("Dog", base, []domain.StructField{{Name: "breed", Type: domain.NewStringType()}})
	require.NoError(t, err)

	structType, err := module.CreateStruct("Dog", derived)
	require.NoError(t, err)
	assert.True(t, structType.IsStruct())

	var out strings.Builder
	require.NoError(t, backend.EmitAssembly(module, &out))
	assert.Contains(t, out.String(), "%struct.Dog = type { i8*, i8* }")
}

func TestTextLLVMBackend_LoadAndIcmpRenderExpectedIR(t *testing.T) {
	backend := NewTextLLVMBackend()
	require.NoError(t, backend.Initialize(""))
	module, err := backend.CreateModule("m")
	require.NoError(t, err)

	funcType := &domain.FunctionType{ReturnType: domain.NewBoolType()}
	fn, err := module.CreateFunction("check", funcType)
	require.NoError(t, err)
	block := fn.CreateBasicBlock("entry")
	builder := NewTextBuilder()
	builder.PositionAtEnd(block)

	i32 := &textType{ir: "i32"}
	ptr := builder.CreateAlloca(i32, "x")
	builder.CreateStore(builder.CreateConstInt(5, 32), ptr)
	loaded := builder.CreateLoad(ptr, i32, "x")
	cmp := builder.CreateICmp(interfaces.IntSGT, loaded, builder.CreateConstInt(0, 32), "gt")
	builder.CreateRet(cmp)

	var out strings.Builder
	require.NoError(t, backend.EmitAssembly(module, &out))
	rendered := out.String()
	assert.Contains(t, rendered, "alloca i32")
	assert.Contains(t, rendered, "load i32")
	assert.Contains(t, rendered, "icmp sgt i32")
}
