// Package codegen lowers a type-checked AST (domain.Program) to LLVM IR
// through the interfaces.LLVMBackend abstraction (spec §4.H/§4.I).
package codegen

import (
	"fmt"
	"io"

	"github.com/quarklang/quarkc/internal/domain"
	"github.com/quarklang/quarkc/internal/infrastructure"
	"github.com/quarklang/quarkc/internal/interfaces"
)

// loopFrame holds the blocks `break`/`continue` jump to inside the
// innermost enclosing loop.
type loopFrame struct {
	continueBlock interfaces.LLVMBasicBlock
	breakBlock    interfaces.LLVMBasicBlock
}

// Generator implements interfaces.CodeGenerator, walking the AST with the
// domain.Visitor double-dispatch the semantic analyzer also uses. Grounded
// on the teacher's codegen/generator.go structure (single Generator type,
// SetX component injection, an accumulated "current value" field), adapted
// to emit through interfaces.LLVMBuilder instead of building a string
// buffer by hand.
type Generator struct {
	backend       interfaces.LLVMBackend
	module        interfaces.LLVMModule
	builder       interfaces.LLVMBuilder
	symbolTable   interfaces.SymbolTable
	typeRegistry  domain.TypeRegistry
	errorReporter domain.ErrorReporter
	output        io.Writer
	options       interfaces.CodeGenOptions

	functions map[string]interfaces.LLVMFunction

	vars      []map[string]interfaces.LLVMValue
	varTypes  []map[string]domain.Type
	loopStack []loopFrame

	currentFunc    interfaces.LLVMFunction
	currentFnType  *domain.FunctionType
	currentStruct  string // non-empty while generating a method body
	currentDynName interfaces.LLVMValue // this method's own hidden dyn-type-name param, non-nil in a method body
	currentBlock   interfaces.LLVMBasicBlock

	// structParent/methodOwners record the inheritance shape seen during the
	// forward-declare pass, so instance calls through `this` can build the
	// strcmp dispatch chain over every struct known to override a method
	// (spec §4.H "Method dispatch", invariant I6).
	structParent map[string]string
	methodOwners map[string]map[string]bool

	value     interfaces.LLVMValue
	valueType domain.Type

	blockCounter int
	failed       bool
}

// NewGenerator creates a code generator targeting a fresh TextLLVMBackend.
// Use SetLLVMBackend to substitute a mock backend for tests.
func NewGenerator() *Generator {
	return &Generator{
		backend:      infrastructure.NewTextLLVMBackend(),
		functions:    make(map[string]interfaces.LLVMFunction),
		structParent: make(map[string]string),
		methodOwners: make(map[string]map[string]bool),
	}
}

func (g *Generator) SetLLVMBackend(backend interfaces.LLVMBackend) { g.backend = backend }
func (g *Generator) SetSymbolTable(table interfaces.SymbolTable)   { g.symbolTable = table }
func (g *Generator) SetTypeRegistry(registry domain.TypeRegistry)  { g.typeRegistry = registry }
func (g *Generator) SetErrorReporter(reporter domain.ErrorReporter) {
	g.errorReporter = reporter
}
func (g *Generator) SetOutput(output io.Writer)                   { g.output = output }
func (g *Generator) SetOptions(options interfaces.CodeGenOptions) { g.options = options }

// Generate lowers program to LLVM IR and, if an output was set, renders the
// module's textual assembly to it (used by --emit-llvm and by tests; object
// emission happens in cmd/quarkc, whose assemble.go runs llc on this text).
func (g *Generator) Generate(program *domain.Program) error {
	g.failed = false
	if err := g.backend.Initialize(g.options.TargetTriple); err != nil {
		return fmt.Errorf("codegen: initializing backend: %w", err)
	}
	module, err := g.backend.CreateModule("quark_module")
	if err != nil {
		return fmt.Errorf("codegen: creating module: %w", err)
	}
	g.module = module
	g.builder = infrastructure.NewTextBuilder()

	g.declareRuntime()

	if err := program.Accept(g); err != nil {
		return err
	}
	if g.failed {
		return fmt.Errorf("codegen: one or more functions failed to generate")
	}
	if err := module.Verify(); err != nil {
		g.reportCodegenError(domain.C0001CodegenFailed, err.Error(), domain.Span{})
		return fmt.Errorf("codegen: module verification failed: %w", err)
	}
	if g.output != nil {
		if err := g.backend.EmitAssembly(module, g.output); err != nil {
			return fmt.Errorf("codegen: emitting assembly: %w", err)
		}
	}
	return nil
}

// Module exposes the module built by the last Generate call.
func (g *Generator) Module() interfaces.LLVMModule { return g.module }

func (g *Generator) reportCodegenError(code, message string, loc domain.Span) {
	if g.errorReporter == nil {
		return
	}
	g.errorReporter.ReportError(domain.CompilerError{
		Type:     domain.CodeGenError,
		Message:  message,
		Location: loc.Start,
		Length:   loc.Length,
		Code:     code,
	})
}

// --- variable environment ---

func (g *Generator) pushScope() {
	g.vars = append(g.vars, make(map[string]interfaces.LLVMValue))
	g.varTypes = append(g.varTypes, make(map[string]domain.Type))
}

func (g *Generator) popScope() {
	g.vars = g.vars[:len(g.vars)-1]
	g.varTypes = g.varTypes[:len(g.varTypes)-1]
}

func (g *Generator) declareVar(name string, ptr interfaces.LLVMValue, t domain.Type) {
	g.vars[len(g.vars)-1][name] = ptr
	g.varTypes[len(g.varTypes)-1][name] = t
}

func (g *Generator) lookupVar(name string) (interfaces.LLVMValue, domain.Type, bool) {
	for i := len(g.vars) - 1; i >= 0; i-- {
		if ptr, ok := g.vars[i][name]; ok {
			return ptr, g.varTypes[i][name], true
		}
	}
	return nil, nil, false
}

func (g *Generator) newBlock(prefix string) string {
	g.blockCounter++
	return fmt.Sprintf("%s%d", prefix, g.blockCounter)
}

// position moves the builder's insertion cursor and records it, so control
// flow generation can later ask "is the block execution would fall through
// to here already terminated" without the LLVMBuilder abstraction needing
// to expose that itself.
func (g *Generator) position(block interfaces.LLVMBasicBlock) {
	g.builder.PositionAtEnd(block)
	g.currentBlock = block
}

// branchToIfOpen emits a branch from the current (still-open) block to
// target, a no-op if the current block already ends in a terminator
// (e.g. a nested if/match/return already closed it).
func (g *Generator) branchToIfOpen(target interfaces.LLVMBasicBlock) {
	if g.currentBlock != nil && !g.currentBlock.IsTerminated() {
		g.builder.CreateBr(target)
	}
}

// --- runtime extern surface ---
//
// quarkc never inlines array/map/string behavior; it only ever calls into
// the opaque quark_*/str_*/array_* runtime (see DESIGN.md, grounded on
// original_source/lib/runtime/quark_runtime.cpp and
// src/expression_codegen.cpp's quark_map_new/get/set call sites).
func (g *Generator) declareRuntime() {
	str := domain.NewStringType()
	i := domain.NewIntType()
	anyHandle := domain.NewStringType() // opaque i8* handle, same IR shape as str

	runtimeFns := map[string]*domain.FunctionType{
		"quark_array_new":  {ParameterTypes: []domain.Type{i}, ReturnType: anyHandle},
		"quark_array_get":  {ParameterTypes: []domain.Type{anyHandle, i}, ReturnType: anyHandle},
		"quark_array_set":  {ParameterTypes: []domain.Type{anyHandle, i, anyHandle}, ReturnType: domain.NewVoidType()},
		"quark_array_len":  {ParameterTypes: []domain.Type{anyHandle}, ReturnType: i},
		"quark_map_new":    {ParameterTypes: []domain.Type{}, ReturnType: anyHandle},
		"quark_map_get":    {ParameterTypes: []domain.Type{anyHandle, anyHandle}, ReturnType: anyHandle},
		"quark_map_set":    {ParameterTypes: []domain.Type{anyHandle, anyHandle, anyHandle}, ReturnType: domain.NewVoidType()},
		"quark_struct_new": {ParameterTypes: []domain.Type{i}, ReturnType: anyHandle},
		"str_len":          {ParameterTypes: []domain.Type{str}, ReturnType: i},
		"str_concat":       {ParameterTypes: []domain.Type{str, str}, ReturnType: str},
		"str_sub":          {ParameterTypes: []domain.Type{str, i, i}, ReturnType: str},
		"strcmp":           {ParameterTypes: []domain.Type{str, str}, ReturnType: i},
		"to_string_int":    {ParameterTypes: []domain.Type{i}, ReturnType: str},
		"to_string_float":  {ParameterTypes: []domain.Type{domain.NewFloatType()}, ReturnType: str},
		"to_string_double": {ParameterTypes: []domain.Type{domain.NewDoubleType()}, ReturnType: str},
		"to_string_bool":   {ParameterTypes: []domain.Type{domain.NewBoolType()}, ReturnType: str},
		"to_int_str":       {ParameterTypes: []domain.Type{str}, ReturnType: i},
		"to_int_double":    {ParameterTypes: []domain.Type{domain.NewDoubleType()}, ReturnType: i},
		"sqrt":             {ParameterTypes: []domain.Type{domain.NewDoubleType()}, ReturnType: domain.NewDoubleType()},
		"pow":              {ParameterTypes: []domain.Type{domain.NewDoubleType(), domain.NewDoubleType()}, ReturnType: domain.NewDoubleType()},
		"sleep":            {ParameterTypes: []domain.Type{i}, ReturnType: domain.NewVoidType()},
		"readline":         {ParameterTypes: []domain.Type{}, ReturnType: str},
		"println":          {ParameterTypes: []domain.Type{str}, ReturnType: domain.NewVoidType(), IsVariadic: true},
		"print":            {ParameterTypes: []domain.Type{str}, ReturnType: domain.NewVoidType(), IsVariadic: true},
		"format":           {ParameterTypes: []domain.Type{str}, ReturnType: str, IsVariadic: true},
	}
	for name, ft := range runtimeFns {
		fn, err := g.module.CreateFunction(name, ft)
		if err == nil {
			g.functions[name] = fn
		}
	}
}
