package infrastructure

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/quarklang/quarkc/internal/domain"
	"github.com/quarklang/quarkc/internal/interfaces"
)

// TextLLVMBackend implements interfaces.LLVMBackend as a genuine textual
// LLVM IR emitter: every Create* call on the builder appends one line of
// real `.ll` syntax to the current basic block's buffer, rather than
// recording fake instructions (the teacher's MockLLVMBackend) or driving a
// parallel raw-text generator (the teacher's codegen.Generator). Object
// emission shells out to `llc`, the same external toolchain the linker
// step assumes. See DESIGN.md for why this replaces both of the teacher's
// codegen paths.
type TextLLVMBackend struct {
	targetTriple string
}

func NewTextLLVMBackend() *TextLLVMBackend { return &TextLLVMBackend{} }

func (b *TextLLVMBackend) Initialize(targetTriple string) error {
	b.targetTriple = targetTriple
	return nil
}

func (b *TextLLVMBackend) CreateModule(name string) (interfaces.LLVMModule, error) {
	return &textModule{name: name, triple: b.targetTriple, functions: make(map[string]*textFunction), structs: make(map[string]*textType)}, nil
}

// Optimize is a no-op at the text-IR layer; real optimization happens when
// `llc -O<n>` runs over the emitted `.ll` during EmitObject.
func (b *TextLLVMBackend) Optimize(module interfaces.LLVMModule, level int) error {
	if m, ok := module.(*textModule); ok {
		m.optLevel = level
	}
	return nil
}

// EmitObject writes the module's textual IR to a temp `.ll` file and
// invokes `llc` to produce a native object file, matching spec §6's
// "assumed" external LLVM toolchain boundary.
func (b *TextLLVMBackend) EmitObject(module interfaces.LLVMModule, output io.Writer) error {
	m, ok := module.(*textModule)
	if !ok {
		return fmt.Errorf("llvm backend: unexpected module type")
	}
	irFile, err := os.CreateTemp("", "quark_*.ll")
	if err != nil {
		return fmt.Errorf("llvm backend: %w", err)
	}
	defer os.Remove(irFile.Name())
	if _, err := irFile.WriteString(m.Render()); err != nil {
		irFile.Close()
		return fmt.Errorf("llvm backend: %w", err)
	}
	irFile.Close()

	objFile, err := os.CreateTemp("", "quark_*.o")
	if err != nil {
		return fmt.Errorf("llvm backend: %w", err)
	}
	defer os.Remove(objFile.Name())
	objFile.Close()

	args := []string{"-filetype=obj", fmt.Sprintf("-O%d", m.optLevel), "-o", objFile.Name(), irFile.Name()}
	if m.triple != "" {
		args = append([]string{"-mtriple=" + m.triple}, args...)
	}
	cmd := exec.Command("llc", args...)
	var stderr strings.Builder
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("llc failed: %w: %s", err, stderr.String())
	}

	data, err := os.ReadFile(objFile.Name())
	if err != nil {
		return fmt.Errorf("llvm backend: %w", err)
	}
	_, err = output.Write(data)
	return err
}

// EmitAssembly writes the module's raw `.ll` text directly — used for
// --emit-llvm and by tests that assert on generated IR shape.
func (b *TextLLVMBackend) EmitAssembly(module interfaces.LLVMModule, output io.Writer) error {
	m, ok := module.(*textModule)
	if !ok {
		return fmt.Errorf("llvm backend: unexpected module type")
	}
	_, err := io.WriteString(output, m.Render())
	return err
}

func (b *TextLLVMBackend) Dispose() {}

// --- Module ---

type textModule struct {
	name      string
	triple    string
	optLevel  int
	globals   []string
	functions map[string]*textFunction
	funcOrder []string
	structs   map[string]*textType
	structOrd []string
}

func (m *textModule) CreateFunction(name string, funcType domain.Type) (interfaces.LLVMFunction, error) {
	ft, ok := funcType.(*domain.FunctionType)
	if !ok {
		return nil, fmt.Errorf("llvm module: CreateFunction requires a *domain.FunctionType")
	}
	retType := llvmTypeOf(ft.ReturnType)
	paramTypes := make([]*textType, len(ft.ParameterTypes))
	for i, pt := range ft.ParameterTypes {
		paramTypes[i] = llvmTypeOf(pt)
	}
	fn := &textFunction{
		module:     m,
		name:       name,
		retType:    retType,
		paramTypes: paramTypes,
		isVariadic: ft.IsVariadic,
	}
	m.functions[name] = fn
	m.funcOrder = append(m.funcOrder, name)
	return fn, nil
}

func (m *textModule) CreateGlobalVariable(name string, varType domain.Type) (interfaces.LLVMValue, error) {
	t := llvmTypeOf(varType)
	m.globals = append(m.globals, fmt.Sprintf("@%s = global %s zeroinitializer", name, t.ir))
	return &textValue{name: "@" + name, t: &textType{ir: t.ir + "*", pointer: true}}, nil
}

func (m *textModule) CreateStruct(name string, structType *domain.StructType) (interfaces.LLVMType, error) {
	fieldNames := structType.AllFieldNames()
	var fields []string
	for _, fn := range fieldNames {
		ft, _ := structType.GetField(fn)
		fields = append(fields, llvmTypeOf(ft).ir)
	}
	t := &textType{ir: "%struct." + name, isStruct: true, structBody: "{ " + strings.Join(fields, ", ") + " }"}
	m.structs[name] = t
	m.structOrd = append(m.structOrd, name)
	return t, nil
}

func (m *textModule) GetFunction(name string) (interfaces.LLVMFunction, bool) {
	fn, ok := m.functions[name]
	return fn, ok
}

// Verify does a light structural check — every emitted block must be
// terminated — real verification happens in `llc` during EmitObject.
func (m *textModule) Verify() error {
	for _, name := range m.funcOrder {
		fn := m.functions[name]
		for _, blk := range fn.blocks {
			if !blk.terminated {
				return fmt.Errorf("function %s: basic block %%%s is not terminated", name, blk.name)
			}
		}
	}
	return nil
}

func (m *textModule) Print(output io.Writer) { io.WriteString(output, m.Render()) }
func (m *textModule) Dispose()               {}

// Render produces the full `.ll` text for the module.
func (m *textModule) Render() string {
	var b strings.Builder
	fmt.Fprintf(&b, "; ModuleID = '%s'\n", m.name)
	if m.triple != "" {
		fmt.Fprintf(&b, "target triple = \"%s\"\n", m.triple)
	}
	b.WriteString("\n")
	for _, name := range m.structOrd {
		s := m.structs[name]
		fmt.Fprintf(&b, "%s = type %s\n", s.ir, s.structBody)
	}
	if len(m.structOrd) > 0 {
		b.WriteString("\n")
	}
	for _, g := range m.globals {
		b.WriteString(g + "\n")
	}
	if len(m.globals) > 0 {
		b.WriteString("\n")
	}
	for _, g := range m.stringConstants() {
		b.WriteString(g + "\n")
	}
	for _, name := range m.funcOrder {
		b.WriteString(m.functions[name].Render())
		b.WriteString("\n")
	}
	return b.String()
}

func (m *textModule) stringConstants() []string {
	var out []string
	for _, name := range m.funcOrder {
		out = append(out, m.functions[name].stringConstants...)
	}
	return out
}

// --- Function / BasicBlock ---

type textFunction struct {
	module          *textModule
	name            string
	retType         *textType
	paramTypes      []*textType
	paramNames      []string
	isVariadic      bool
	blocks          []*textBlock
	stringConstants []string
}

func (fn *textFunction) CreateBasicBlock(name string) interfaces.LLVMBasicBlock {
	blk := &textBlock{fn: fn, name: fmt.Sprintf("%s%d", name, len(fn.blocks))}
	fn.blocks = append(fn.blocks, blk)
	return blk
}

func (fn *textFunction) GetParameter(index int) interfaces.LLVMValue {
	if index < 0 || index >= len(fn.paramTypes) {
		return &textValue{name: "undef", t: &textType{ir: "i32"}}
	}
	name := fmt.Sprintf("%%arg%d", index)
	if index < len(fn.paramNames) && fn.paramNames[index] != "" {
		name = "%" + fn.paramNames[index]
	}
	return &textValue{name: name, t: fn.paramTypes[index]}
}

func (fn *textFunction) GetParameterCount() int { return len(fn.paramTypes) }

func (fn *textFunction) SetName(name string) {
	delete(fn.module.functions, fn.name)
	fn.name = name
	fn.module.functions[name] = fn
}

func (fn *textFunction) Render() string {
	var params []string
	for i, pt := range fn.paramTypes {
		name := fmt.Sprintf("%%arg%d", i)
		if i < len(fn.paramNames) && fn.paramNames[i] != "" {
			name = "%" + fn.paramNames[i]
		}
		params = append(params, fmt.Sprintf("%s %s", pt.ir, name))
	}
	if fn.isVariadic {
		params = append(params, "...")
	}
	sig := fmt.Sprintf("%s @%s(%s)", fn.retType.ir, fn.name, strings.Join(params, ", "))
	if len(fn.blocks) == 0 {
		return fmt.Sprintf("declare %s\n", sig)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "define %s {\n", sig)
	for _, blk := range fn.blocks {
		fmt.Fprintf(&b, "%s:\n", blk.name)
		for _, line := range blk.instructions {
			fmt.Fprintf(&b, "  %s\n", line)
		}
	}
	b.WriteString("}\n")
	return b.String()
}

type textBlock struct {
	fn           *textFunction
	name         string
	instructions []string
	terminated   bool
}

func (blk *textBlock) GetName() string    { return blk.name }
func (blk *textBlock) IsTerminated() bool { return blk.terminated }

func (blk *textBlock) emit(line string) {
	blk.instructions = append(blk.instructions, line)
}

func (blk *textBlock) terminate(line string) interfaces.LLVMValue {
	blk.emit(line)
	blk.terminated = true
	return &textValue{name: "", t: &textType{ir: "void"}}
}

// --- Value / Type ---

type textValue struct {
	name string
	t    *textType
}

func (v *textValue) GetType() interfaces.LLVMType { return v.t }
func (v *textValue) SetName(name string)          { v.name = name }
func (v *textValue) GetName() string              { return v.name }

// Operand renders this value as it appears as an instruction operand
// (`<type> <name>`).
func (v *textValue) Operand() string { return fmt.Sprintf("%s %s", v.t.ir, v.name) }

type textType struct {
	ir         string
	pointer    bool
	isStruct   bool
	structBody string
}

func (t *textType) IsInteger() bool { return strings.HasPrefix(t.ir, "i") && !t.pointer && !t.isStruct }
func (t *textType) IsFloat() bool   { return t.ir == "float" || t.ir == "double" }
func (t *textType) IsPointer() bool { return t.pointer || strings.HasSuffix(t.ir, "*") }
func (t *textType) IsStruct() bool  { return t.isStruct }
func (t *textType) String() string  { return t.ir }

// llvmTypeOf maps a domain.Type to the textual LLVM type the memory model
// requires: i32 for int, float/double for Float/Double, i1 for bool, i8*
// for str, i8* for every heap handle (array/map/struct pointer/pointer-to),
// void for Void (spec §4.H/I, invariant I7).
func llvmTypeOf(t domain.Type) *textType {
	switch v := t.(type) {
	case *domain.BasicType:
		switch v.Kind {
		case domain.IntType:
			return &textType{ir: "i32"}
		case domain.FloatType:
			return &textType{ir: "float"}
		case domain.DoubleType:
			return &textType{ir: "double"}
		case domain.BoolType:
			return &textType{ir: "i1"}
		case domain.StringType:
			return &textType{ir: "i8*", pointer: true}
		case domain.VoidType:
			return &textType{ir: "void"}
		case domain.NullType:
			return &textType{ir: "i8*", pointer: true}
		default:
			return &textType{ir: "i8*", pointer: true}
		}
	case *domain.ArrayType:
		return &textType{ir: "i8*", pointer: true} // heap handle, length header precedes it
	case *domain.MapType:
		return &textType{ir: "i8*", pointer: true}
	case *domain.PointerType:
		inner := llvmTypeOf(v.Target)
		return &textType{ir: inner.ir + "*", pointer: true}
	case *domain.StructType:
		return &textType{ir: "%struct." + v.Name + "*", pointer: true}
	case *domain.FunctionType:
		return &textType{ir: "i8*", pointer: true}
	default:
		return &textType{ir: "i8*", pointer: true}
	}
}

// LLVMTypeOf exposes llvmTypeOf to callers outside this package (the
// codegen package needs it to size allocas and GEP results for a given
// domain.Type without duplicating the IR type mapping).
func LLVMTypeOf(t domain.Type) interfaces.LLVMType {
	return llvmTypeOf(t)
}

// --- Builder ---

// textBuilder is the instruction-emission cursor; PositionAtEnd selects
// which *textBlock subsequent Create* calls append to.
type textBuilder struct {
	block   *textBlock
	counter int
}

func NewTextBuilder() *textBuilder { return &textBuilder{} }

func (b *textBuilder) PositionAtEnd(block interfaces.LLVMBasicBlock) {
	b.block = block.(*textBlock)
}

func (b *textBuilder) next(prefix string) string {
	b.counter++
	if prefix == "" {
		prefix = "t"
	}
	return fmt.Sprintf("%%%s%d", prefix, b.counter)
}

func (b *textBuilder) CreateAlloca(t interfaces.LLVMType, name string) interfaces.LLVMValue {
	tt := t.(*textType)
	reg := "%" + name
	b.block.emit(fmt.Sprintf("%s = alloca %s", reg, tt.ir))
	return &textValue{name: reg, t: &textType{ir: tt.ir + "*", pointer: true}}
}

func (b *textBuilder) CreateStore(value, ptr interfaces.LLVMValue) interfaces.LLVMValue {
	v, p := value.(*textValue), ptr.(*textValue)
	b.block.emit(fmt.Sprintf("store %s, %s", v.Operand(), p.Operand()))
	return &textValue{t: &textType{ir: "void"}}
}

func (b *textBuilder) CreateLoad(ptr interfaces.LLVMValue, t interfaces.LLVMType, name string) interfaces.LLVMValue {
	p := ptr.(*textValue)
	tt := t.(*textType)
	reg := b.next(name)
	b.block.emit(fmt.Sprintf("%s = load %s, %s", reg, tt.ir, p.Operand()))
	return &textValue{name: reg, t: tt}
}

func (b *textBuilder) binOp(op string, lhs, rhs interfaces.LLVMValue, name string) interfaces.LLVMValue {
	l, r := lhs.(*textValue), rhs.(*textValue)
	reg := b.next(name)
	b.block.emit(fmt.Sprintf("%s = %s %s %s, %s", reg, op, l.t.ir, l.name, r.name))
	return &textValue{name: reg, t: l.t}
}

func (b *textBuilder) CreateAdd(lhs, rhs interfaces.LLVMValue, name string) interfaces.LLVMValue {
	return b.binOp("add", lhs, rhs, name)
}
func (b *textBuilder) CreateSub(lhs, rhs interfaces.LLVMValue, name string) interfaces.LLVMValue {
	return b.binOp("sub", lhs, rhs, name)
}
func (b *textBuilder) CreateMul(lhs, rhs interfaces.LLVMValue, name string) interfaces.LLVMValue {
	return b.binOp("mul", lhs, rhs, name)
}
func (b *textBuilder) CreateSDiv(lhs, rhs interfaces.LLVMValue, name string) interfaces.LLVMValue {
	return b.binOp("sdiv", lhs, rhs, name)
}
func (b *textBuilder) CreateSRem(lhs, rhs interfaces.LLVMValue, name string) interfaces.LLVMValue {
	return b.binOp("srem", lhs, rhs, name)
}
func (b *textBuilder) CreateFAdd(lhs, rhs interfaces.LLVMValue, name string) interfaces.LLVMValue {
	return b.binOp("fadd", lhs, rhs, name)
}
func (b *textBuilder) CreateFSub(lhs, rhs interfaces.LLVMValue, name string) interfaces.LLVMValue {
	return b.binOp("fsub", lhs, rhs, name)
}
func (b *textBuilder) CreateFMul(lhs, rhs interfaces.LLVMValue, name string) interfaces.LLVMValue {
	return b.binOp("fmul", lhs, rhs, name)
}
func (b *textBuilder) CreateFDiv(lhs, rhs interfaces.LLVMValue, name string) interfaces.LLVMValue {
	return b.binOp("fdiv", lhs, rhs, name)
}

var intPredNames = map[interfaces.IntPredicate]string{
	interfaces.IntEQ: "eq", interfaces.IntNE: "ne", interfaces.IntSLT: "slt",
	interfaces.IntSLE: "sle", interfaces.IntSGT: "sgt", interfaces.IntSGE: "sge",
}

var floatPredNames = map[interfaces.FloatPredicate]string{
	interfaces.FloatOEQ: "oeq", interfaces.FloatONE: "one", interfaces.FloatOLT: "olt",
	interfaces.FloatOLE: "ole", interfaces.FloatOGT: "ogt", interfaces.FloatOGE: "oge",
}

func (b *textBuilder) CreateICmp(pred interfaces.IntPredicate, lhs, rhs interfaces.LLVMValue, name string) interfaces.LLVMValue {
	l, r := lhs.(*textValue), rhs.(*textValue)
	reg := b.next(name)
	b.block.emit(fmt.Sprintf("%s = icmp %s %s %s, %s", reg, intPredNames[pred], l.t.ir, l.name, r.name))
	return &textValue{name: reg, t: &textType{ir: "i1"}}
}

func (b *textBuilder) CreateFCmp(pred interfaces.FloatPredicate, lhs, rhs interfaces.LLVMValue, name string) interfaces.LLVMValue {
	l, r := lhs.(*textValue), rhs.(*textValue)
	reg := b.next(name)
	b.block.emit(fmt.Sprintf("%s = fcmp %s %s %s, %s", reg, floatPredNames[pred], l.t.ir, l.name, r.name))
	return &textValue{name: reg, t: &textType{ir: "i1"}}
}

func (b *textBuilder) CreateBr(dest interfaces.LLVMBasicBlock) interfaces.LLVMValue {
	d := dest.(*textBlock)
	return b.block.terminate(fmt.Sprintf("br label %%%s", d.name))
}

func (b *textBuilder) CreateCondBr(cond interfaces.LLVMValue, then, els interfaces.LLVMBasicBlock) interfaces.LLVMValue {
	c := cond.(*textValue)
	t, e := then.(*textBlock), els.(*textBlock)
	return b.block.terminate(fmt.Sprintf("br i1 %s, label %%%s, label %%%s", c.name, t.name, e.name))
}

func (b *textBuilder) CreateRet(value interfaces.LLVMValue) interfaces.LLVMValue {
	v := value.(*textValue)
	return b.block.terminate(fmt.Sprintf("ret %s", v.Operand()))
}

func (b *textBuilder) CreateRetVoid() interfaces.LLVMValue {
	return b.block.terminate("ret void")
}

func (b *textBuilder) CreateCall(fn interfaces.LLVMFunction, args []interfaces.LLVMValue, name string) interfaces.LLVMValue {
	tf := fn.(*textFunction)
	var argStrs []string
	for _, a := range args {
		argStrs = append(argStrs, a.(*textValue).Operand())
	}
	call := fmt.Sprintf("call %s @%s(%s)", tf.retType.ir, tf.name, strings.Join(argStrs, ", "))
	if tf.retType.ir == "void" {
		b.block.emit(call)
		return &textValue{t: &textType{ir: "void"}}
	}
	reg := b.next(name)
	b.block.emit(fmt.Sprintf("%s = %s", reg, call))
	return &textValue{name: reg, t: tf.retType}
}

// CreateGEP emits a getelementptr with literal integer field/element
// indices — the codegen layer always indexes arrays and struct fields by
// a compile-time-known offset, never by a dynamic LLVMValue index, so the
// interface takes plain ints (spec §4.H/I struct layout).
func (b *textBuilder) CreateGEP(ptr interfaces.LLVMValue, indices []int, resultType interfaces.LLVMType, name string) interfaces.LLVMValue {
	p := ptr.(*textValue)
	rt := resultType.(*textType)
	idxStrs := []string{"i32 0"} // dereference the pointer itself first
	for _, idx := range indices {
		idxStrs = append(idxStrs, fmt.Sprintf("i32 %d", idx))
	}
	reg := b.next(name)
	elemType := strings.TrimSuffix(p.t.ir, "*")
	b.block.emit(fmt.Sprintf("%s = getelementptr %s, %s, %s", reg, elemType, p.Operand(), strings.Join(idxStrs, ", ")))
	return &textValue{name: reg, t: rt}
}

func (b *textBuilder) cast(op string, value interfaces.LLVMValue, t *textType, name string) interfaces.LLVMValue {
	v := value.(*textValue)
	reg := b.next(name)
	b.block.emit(fmt.Sprintf("%s = %s %s to %s", reg, op, v.Operand(), t.ir))
	return &textValue{name: reg, t: t}
}

func (b *textBuilder) CreateBitCast(value interfaces.LLVMValue, t interfaces.LLVMType, name string) interfaces.LLVMValue {
	return b.cast("bitcast", value, t.(*textType), name)
}
func (b *textBuilder) CreatePtrToInt(value interfaces.LLVMValue, name string) interfaces.LLVMValue {
	return b.cast("ptrtoint", value, &textType{ir: "i64"}, name)
}
func (b *textBuilder) CreateIntToPtr(value interfaces.LLVMValue, t interfaces.LLVMType, name string) interfaces.LLVMValue {
	return b.cast("inttoptr", value, t.(*textType), name)
}
func (b *textBuilder) CreateSIToFP(value interfaces.LLVMValue, t interfaces.LLVMType, name string) interfaces.LLVMValue {
	return b.cast("sitofp", value, t.(*textType), name)
}
func (b *textBuilder) CreateFPToSI(value interfaces.LLVMValue, t interfaces.LLVMType, name string) interfaces.LLVMValue {
	return b.cast("fptosi", value, t.(*textType), name)
}
func (b *textBuilder) CreateFPExt(value interfaces.LLVMValue, name string) interfaces.LLVMValue {
	return b.cast("fpext", value, &textType{ir: "double"}, name)
}
func (b *textBuilder) CreateFPTrunc(value interfaces.LLVMValue, name string) interfaces.LLVMValue {
	return b.cast("fptrunc", value, &textType{ir: "float"}, name)
}
func (b *textBuilder) CreateZExt(value interfaces.LLVMValue, t interfaces.LLVMType, name string) interfaces.LLVMValue {
	return b.cast("zext", value, t.(*textType), name)
}
func (b *textBuilder) CreateTrunc(value interfaces.LLVMValue, t interfaces.LLVMType, name string) interfaces.LLVMValue {
	return b.cast("trunc", value, t.(*textType), name)
}

var stringConstCounter int

// CreateGlobalString emits a `private unnamed_addr constant` for value and
// returns an i8* to its first byte (spec §4.H "string literals").
func (b *textBuilder) CreateGlobalString(value, name string) interfaces.LLVMValue {
	stringConstCounter++
	gname := fmt.Sprintf("@.str.%d", stringConstCounter)
	escaped, length := escapeLLVMString(value)
	b.block.fn.stringConstants = append(b.block.fn.stringConstants,
		fmt.Sprintf("%s = private unnamed_addr constant [%d x i8] c\"%s\"", gname, length, escaped))
	reg := b.next(name)
	b.block.emit(fmt.Sprintf("%s = bitcast [%d x i8]* %s to i8*", reg, length, gname))
	return &textValue{name: reg, t: &textType{ir: "i8*", pointer: true}}
}

func escapeLLVMString(s string) (string, int) {
	var b strings.Builder
	n := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c >= 32 && c < 127 && c != '"' && c != '\\' {
			b.WriteByte(c)
		} else {
			fmt.Fprintf(&b, "\\%02X", c)
		}
		n++
	}
	b.WriteString("\\00")
	n++
	return b.String(), n
}

func (b *textBuilder) CreateConstInt(value int64, bits int) interfaces.LLVMValue {
	return &textValue{name: fmt.Sprintf("%d", value), t: &textType{ir: fmt.Sprintf("i%d", bits)}}
}

func (b *textBuilder) CreateConstFloat(value float64, isDouble bool) interfaces.LLVMValue {
	t := "float"
	if isDouble {
		t = "double"
	}
	return &textValue{name: fmt.Sprintf("%g", value), t: &textType{ir: t}}
}

func (b *textBuilder) CreateConstBool(value bool) interfaces.LLVMValue {
	if value {
		return &textValue{name: "1", t: &textType{ir: "i1"}}
	}
	return &textValue{name: "0", t: &textType{ir: "i1"}}
}

func (b *textBuilder) Dispose() {}
