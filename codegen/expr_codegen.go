package codegen

import (
	"fmt"

	"github.com/quarklang/quarkc/internal/domain"
	"github.com/quarklang/quarkc/internal/infrastructure"
	"github.com/quarklang/quarkc/internal/interfaces"
)

// llvmTypeFor maps a resolved domain.Type to its LLVM IR representation,
// delegating to the backend's own mapping so codegen and the backend never
// disagree about a type's shape.
func llvmTypeFor(t domain.Type) interfaces.LLVMType {
	return infrastructure.LLVMTypeOf(t)
}

func isVoidType(t domain.Type) bool {
	bt, ok := t.(*domain.BasicType)
	return ok && bt.Kind == domain.VoidType
}

func isFloatingType(t domain.Type) bool {
	bt, ok := t.(*domain.BasicType)
	return ok && (bt.Kind == domain.FloatType || bt.Kind == domain.DoubleType)
}

func isBoolType(t domain.Type) bool {
	bt, ok := t.(*domain.BasicType)
	return ok && bt.Kind == domain.BoolType
}

func isStringType(t domain.Type) bool {
	bt, ok := t.(*domain.BasicType)
	return ok && bt.Kind == domain.StringType
}

// callRuntime invokes a declared runtime extern by name and returns the
// call's result (callers store it in g.value). Missing externs indicate a gap
// in declareRuntime rather than a user program error, so they fail loudly.
func (g *Generator) callRuntime(name string, args []interfaces.LLVMValue) interfaces.LLVMValue {
	fn, ok := g.functions[name]
	if !ok {
		g.failed = true
		g.reportCodegenError(domain.C0004SymbolNotFound, fmt.Sprintf("runtime function %s not declared", name), domain.Span{})
		return nil
	}
	return g.builder.CreateCall(fn, args, "")
}

// compareStrings lowers a string comparison to `strcmp(lhs, rhs)` compared
// to 0 with the predicate the source operator calls for (spec §4.H
// "Comparisons": "Strings compare via strcmp and compare to 0 with the
// chosen predicate"), matching original_source/src/expression_codegen.cpp's
// strcmp call rather than comparing the two i8* pointers directly.
func (g *Generator) compareStrings(lhs, rhs interfaces.LLVMValue, op domain.BinaryOperator) interfaces.LLVMValue {
	cmp := g.callRuntime("strcmp", []interfaces.LLVMValue{lhs, rhs})
	zero := g.builder.CreateConstInt(0, 32)
	return g.builder.CreateICmp(intPredicateFor(op), cmp, zero, "")
}

// fieldPointer emits a GEP to the address of object.member, used by both
// member reads (VisitMemberExpr) and member-assignment.
func (g *Generator) fieldPointer(object domain.Expression, member string) (interfaces.LLVMValue, error) {
	if err := object.Accept(g); err != nil {
		return nil, err
	}
	objPtr := g.value
	structType, err := g.structTypeOf(g.valueType)
	if err != nil {
		return nil, err
	}
	idx, ok := fieldIndex(structType, member)
	if !ok {
		g.failed = true
		g.reportCodegenError(domain.C0004SymbolNotFound, fmt.Sprintf("%s has no field %s", structType.Name, member), object.GetLocation())
		return nil, nil
	}
	fieldType, _ := structType.GetField(member)
	resultType := &domain.PointerType{Target: fieldType}
	return g.builder.CreateGEP(objPtr, []int{idx}, llvmTypeFor(resultType), member+".ptr"), nil
}

func (g *Generator) structTypeOf(t domain.Type) (*domain.StructType, error) {
	if pt, ok := t.(*domain.PointerType); ok {
		t = pt.Target
	}
	st, ok := t.(*domain.StructType)
	if !ok {
		return nil, fmt.Errorf("codegen: %s is not a struct type", t.String())
	}
	return st, nil
}

func fieldIndex(st *domain.StructType, name string) (int, bool) {
	for i, n := range st.AllFieldNames() {
		if n == name {
			return i, true
		}
	}
	return 0, false
}

func (g *Generator) VisitLiteralExpr(expr *domain.LiteralExpr) error {
	switch expr.Kind {
	case domain.IntType:
		g.value = g.builder.CreateConstInt(toInt64(expr.Value), 32)
	case domain.FloatType:
		g.value = g.builder.CreateConstFloat(toFloat64(expr.Value), false)
	case domain.DoubleType:
		g.value = g.builder.CreateConstFloat(toFloat64(expr.Value), true)
	case domain.BoolType:
		b, _ := expr.Value.(bool)
		g.value = g.builder.CreateConstBool(b)
	case domain.StringType:
		s, _ := expr.Value.(string)
		g.value = g.builder.CreateGlobalString(s, "str")
	case domain.NullType:
		g.value = g.builder.CreateIntToPtr(g.builder.CreateConstInt(0, 64), llvmTypeFor(domain.NewNullType()), "null")
	default:
		g.value = g.builder.CreateConstInt(0, 32)
	}
	g.valueType = resolveLiteralType(expr)
	return nil
}

func resolveLiteralType(expr *domain.LiteralExpr) domain.Type {
	if expr.Type_ != nil {
		return expr.Type_
	}
	switch expr.Kind {
	case domain.FloatType:
		return domain.NewFloatType()
	case domain.DoubleType:
		return domain.NewDoubleType()
	case domain.BoolType:
		return domain.NewBoolType()
	case domain.StringType:
		return domain.NewStringType()
	case domain.NullType:
		return domain.NewNullType()
	default:
		return domain.NewIntType()
	}
}

func toInt64(v interface{}) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case int:
		return int64(n)
	case float64:
		return int64(n)
	default:
		return 0
	}
}

func toFloat64(v interface{}) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int64:
		return float64(n)
	case int:
		return float64(n)
	default:
		return 0
	}
}

func (g *Generator) VisitIdentifierExpr(expr *domain.IdentifierExpr) error {
	ptr, t, ok := g.lookupVar(expr.Name)
	if !ok {
		g.failed = true
		g.reportCodegenError(domain.C0004SymbolNotFound, fmt.Sprintf("undefined variable %s", expr.Name), expr.GetLocation())
		return nil
	}
	g.value = g.builder.CreateLoad(ptr, llvmTypeFor(t), expr.Name)
	g.valueType = t
	return nil
}

func (g *Generator) VisitBinaryExpr(expr *domain.BinaryExpr) error {
	// Short-circuit And/Or evaluate the right operand only when necessary,
	// so they branch instead of eagerly computing both sides.
	if expr.Operator == domain.And || expr.Operator == domain.Or {
		return g.genShortCircuit(expr)
	}

	if err := expr.Left.Accept(g); err != nil {
		return err
	}
	lhs, lhsType := g.value, g.valueType
	if err := expr.Right.Accept(g); err != nil {
		return err
	}
	rhs := g.value
	floating := isFloatingType(lhsType)

	switch expr.Operator {
	case domain.Add:
		if floating {
			g.value = g.builder.CreateFAdd(lhs, rhs, "")
		} else if _, ok := lhsType.(*domain.BasicType); ok && lhsType.(*domain.BasicType).Kind == domain.StringType {
			g.value = g.callRuntime("str_concat", []interfaces.LLVMValue{lhs, rhs})
		} else {
			g.value = g.builder.CreateAdd(lhs, rhs, "")
		}
	case domain.Sub:
		if floating {
			g.value = g.builder.CreateFSub(lhs, rhs, "")
		} else {
			g.value = g.builder.CreateSub(lhs, rhs, "")
		}
	case domain.Mul:
		if floating {
			g.value = g.builder.CreateFMul(lhs, rhs, "")
		} else {
			g.value = g.builder.CreateMul(lhs, rhs, "")
		}
	case domain.Div:
		if floating {
			g.value = g.builder.CreateFDiv(lhs, rhs, "")
		} else {
			g.value = g.builder.CreateSDiv(lhs, rhs, "")
		}
	case domain.Mod:
		g.value = g.builder.CreateSRem(lhs, rhs, "")
	case domain.Eq, domain.Ne, domain.Lt, domain.Le, domain.Gt, domain.Ge:
		if floating {
			g.value = g.builder.CreateFCmp(floatPredicateFor(expr.Operator), lhs, rhs, "")
		} else if isStringType(lhsType) {
			g.value = g.compareStrings(lhs, rhs, expr.Operator)
		} else {
			g.value = g.builder.CreateICmp(intPredicateFor(expr.Operator), lhs, rhs, "")
		}
		g.valueType = domain.NewBoolType()
		return nil
	}
	g.valueType = expr.Type_
	if g.valueType == nil {
		g.valueType = lhsType
	}
	return nil
}

// genShortCircuit lowers `a && b` / `a || b` to a branch: the right operand
// is only evaluated on the path where its value could still change the
// result, then the two paths merge through a phi-equivalent stack slot
// (the backend has no SSA phi, so a stack slot stands in for it).
func (g *Generator) genShortCircuit(expr *domain.BinaryExpr) error {
	if err := expr.Left.Accept(g); err != nil {
		return err
	}
	lhs := g.value

	resultSlot := g.builder.CreateAlloca(llvmTypeFor(domain.NewBoolType()), "sc")
	g.builder.CreateStore(lhs, resultSlot)

	rhsBlock := g.currentFunc.CreateBasicBlock(g.newBlock("sc.rhs"))
	endBlock := g.currentFunc.CreateBasicBlock(g.newBlock("sc.end"))

	if expr.Operator == domain.And {
		g.builder.CreateCondBr(lhs, rhsBlock, endBlock)
	} else {
		g.builder.CreateCondBr(lhs, endBlock, rhsBlock)
	}

	g.position(rhsBlock)
	if err := expr.Right.Accept(g); err != nil {
		return err
	}
	g.builder.CreateStore(g.value, resultSlot)
	g.branchToIfOpen(endBlock)

	g.position(endBlock)
	g.value = g.builder.CreateLoad(resultSlot, llvmTypeFor(domain.NewBoolType()), "sc.result")
	g.valueType = domain.NewBoolType()
	return nil
}

func intPredicateFor(op domain.BinaryOperator) interfaces.IntPredicate {
	switch op {
	case domain.Eq:
		return interfaces.IntEQ
	case domain.Ne:
		return interfaces.IntNE
	case domain.Lt:
		return interfaces.IntSLT
	case domain.Le:
		return interfaces.IntSLE
	case domain.Gt:
		return interfaces.IntSGT
	default:
		return interfaces.IntSGE
	}
}

func floatPredicateFor(op domain.BinaryOperator) interfaces.FloatPredicate {
	switch op {
	case domain.Eq:
		return interfaces.FloatOEQ
	case domain.Ne:
		return interfaces.FloatONE
	case domain.Lt:
		return interfaces.FloatOLT
	case domain.Le:
		return interfaces.FloatOLE
	case domain.Gt:
		return interfaces.FloatOGT
	default:
		return interfaces.FloatOGE
	}
}

func (g *Generator) VisitUnaryExpr(expr *domain.UnaryExpr) error {
	switch expr.Operator {
	case domain.AddrOf:
		if ident, ok := expr.Operand.(*domain.IdentifierExpr); ok {
			ptr, t, found := g.lookupVar(ident.Name)
			if !found {
				g.failed = true
				g.reportCodegenError(domain.C0004SymbolNotFound, fmt.Sprintf("undefined variable %s", ident.Name), ident.GetLocation())
				return nil
			}
			g.value = ptr
			g.valueType = &domain.PointerType{Target: t}
			return nil
		}
		return fmt.Errorf("codegen: & can only be applied to a named variable")
	case domain.Deref:
		if err := expr.Operand.Accept(g); err != nil {
			return err
		}
		ptr, ptrType := g.value, g.valueType
		target := ptrType
		if pt, ok := ptrType.(*domain.PointerType); ok {
			target = pt.Target
		}
		g.value = g.builder.CreateLoad(ptr, llvmTypeFor(target), "deref")
		g.valueType = target
		return nil
	}

	if err := expr.Operand.Accept(g); err != nil {
		return err
	}
	operand, operandType := g.value, g.valueType
	switch expr.Operator {
	case domain.Neg:
		if isFloatingType(operandType) {
			g.value = g.builder.CreateFSub(g.builder.CreateConstFloat(0, operandType.String() == "double"), operand, "neg")
		} else {
			g.value = g.builder.CreateSub(g.builder.CreateConstInt(0, 32), operand, "neg")
		}
		g.valueType = operandType
	case domain.Not:
		g.value = g.builder.CreateICmp(interfaces.IntEQ, operand, g.builder.CreateConstBool(false), "not")
		g.valueType = domain.NewBoolType()
	}
	return nil
}

func (g *Generator) VisitCallExpr(expr *domain.CallExpr) error {
	args, err := g.genArgs(expr.Args)
	if err != nil {
		return err
	}
	fn, ok := g.functions[expr.FunctionName]
	if !ok {
		g.failed = true
		g.reportCodegenError(domain.C0004SymbolNotFound, fmt.Sprintf("function %s not declared", expr.FunctionName), expr.GetLocation())
		return nil
	}
	g.value = g.builder.CreateCall(fn, args, "")
	g.valueType = expr.Type_
	return nil
}

// VisitMethodCallExpr lowers obj.method(args). Every instance method carries
// a hidden dynamic-type-name argument after the receiver (invariant I6,
// testable property P5): a call through `this` reloads that name from the
// current frame and dispatches through genDynamicDispatch's strcmp chain;
// any other receiver's dynamic name is just its static type's literal
// string and the call resolves directly (spec §4.H "Method dispatch",
// grounded on original_source/src/expression_codegen.cpp's genMethodCall).
func (g *Generator) VisitMethodCallExpr(expr *domain.MethodCallExpr) error {
	if err := expr.Object.Accept(g); err != nil {
		return err
	}
	receiver, receiverType := g.value, g.valueType
	structType, err := g.structTypeOf(receiverType)
	if err != nil {
		return err
	}
	args, err := g.genArgs(expr.Args)
	if err != nil {
		return err
	}

	if ident, ok := expr.Object.(*domain.IdentifierExpr); ok && ident.Name == "this" && g.currentDynName != nil {
		return g.genDynamicDispatch(expr, receiver, structType, args)
	}

	dynName := g.builder.CreateGlobalString(structType.Name, "dyn.name")
	targetStruct := structType
	name := mangledName(targetStruct.Name, expr.Method)
	fn, ok := g.functions[name]
	for !ok && targetStruct.Parent != nil {
		// Methods declared on an ancestor are invoked through the
		// ancestor's mangled name (no virtual dispatch table, S1's
		// override resolution already picked the concrete target).
		targetStruct = targetStruct.Parent
		name = mangledName(targetStruct.Name, expr.Method)
		fn, ok = g.functions[name]
	}
	if !ok {
		g.failed = true
		g.reportCodegenError(domain.C0004SymbolNotFound, fmt.Sprintf("method %s::%s not declared", structType.Name, expr.Method), expr.GetLocation())
		return nil
	}
	recv := receiver
	if targetStruct != structType {
		recv = g.builder.CreateBitCast(receiver, llvmTypeFor(&domain.PointerType{Target: targetStruct}), "recv.base")
	}
	callArgs := append([]interfaces.LLVMValue{recv, dynName}, args...)
	g.value = g.builder.CreateCall(fn, callArgs, "")
	g.valueType = expr.Type_
	return nil
}

// genDynamicDispatch emits the strcmp chain spec §4.H describes for
// `this.m(args)`: compare the frame's hidden dynamic-type-name against
// every struct known at compile time to override m, calling the
// most-derived match and falling through to the statically resolved
// implementation when the receiver is (or was never overridden into)
// structType itself. Non-void results converge through an alloca-phi, the
// same stack-slot pattern genShortCircuit and VisitMatchStmt use since this
// backend has no native SSA phi.
func (g *Generator) genDynamicDispatch(expr *domain.MethodCallExpr, receiver interfaces.LLVMValue, structType *domain.StructType, args []interfaces.LLVMValue) error {
	dynName := g.currentDynName

	baseStruct := structType
	baseName := mangledName(baseStruct.Name, expr.Method)
	baseFn, ok := g.functions[baseName]
	for !ok && baseStruct.Parent != nil {
		baseStruct = baseStruct.Parent
		baseName = mangledName(baseStruct.Name, expr.Method)
		baseFn, ok = g.functions[baseName]
	}
	if !ok {
		g.failed = true
		g.reportCodegenError(domain.C0004SymbolNotFound, fmt.Sprintf("method %s::%s not declared", structType.Name, expr.Method), expr.GetLocation())
		return nil
	}

	overrides := g.overridesOf(structType.Name, expr.Method)

	resultType := expr.Type_
	hasResult := resultType != nil && !isVoidType(resultType)
	var resultSlot interfaces.LLVMValue
	if hasResult {
		resultSlot = g.builder.CreateAlloca(llvmTypeFor(resultType), "dyndispatch.result")
	}

	endName := g.newBlock("dyndispatch.end")
	var mergeBlock interfaces.LLVMBasicBlock

	for _, derived := range overrides {
		candidateFn, ok := g.functions[mangledName(derived, expr.Method)]
		if !ok {
			continue
		}
		candidateName := g.builder.CreateGlobalString(derived, "dyndispatch.cand")
		cmp := g.callRuntime("strcmp", []interfaces.LLVMValue{dynName, candidateName})
		eq := g.builder.CreateICmp(interfaces.IntEQ, cmp, g.builder.CreateConstInt(0, 32), "")

		matchBlock := g.currentFunc.CreateBasicBlock(g.newBlock("dyndispatch.match"))
		missBlock := g.currentFunc.CreateBasicBlock(g.newBlock("dyndispatch.miss"))
		g.builder.CreateCondBr(eq, matchBlock, missBlock)

		g.position(matchBlock)
		recv := g.builder.CreateBitCast(receiver, llvmTypeFor(&domain.PointerType{Target: mustLookupStructType(g.typeRegistry, derived)}), "recv."+derived)
		result := g.builder.CreateCall(candidateFn, append([]interfaces.LLVMValue{recv, dynName}, args...), "")
		if hasResult {
			g.builder.CreateStore(result, resultSlot)
		}
		mergeBlock = g.ensureMerge(mergeBlock, endName)
		g.builder.CreateBr(mergeBlock)

		g.position(missBlock)
	}

	recv := receiver
	if baseStruct != structType {
		recv = g.builder.CreateBitCast(receiver, llvmTypeFor(&domain.PointerType{Target: baseStruct}), "recv.base")
	}
	result := g.builder.CreateCall(baseFn, append([]interfaces.LLVMValue{recv, dynName}, args...), "")
	if hasResult {
		g.builder.CreateStore(result, resultSlot)
	}
	mergeBlock = g.ensureMerge(mergeBlock, endName)
	g.branchToIfOpen(mergeBlock)

	g.position(mergeBlock)
	if hasResult {
		g.value = g.builder.CreateLoad(resultSlot, llvmTypeFor(resultType), "dyndispatch.value")
	} else {
		g.value = nil
	}
	g.valueType = resultType
	return nil
}

// VisitStaticCallExpr lowers T::m(args). Every callee here is still an
// ordinary instance method (IsMethod is set for every struct/impl-block
// method regardless of call syntax), so it still wants the hidden
// `(this, __dyn_type_name)` pair invariant I6 requires — `T::m(args)` just
// supplies them itself instead of threading them through a receiver
// expression, forcing static dispatch the way a `Base::m()` super-call
// does from inside an override (spec §4.H "Static calls ... pass the
// explicit receiver (T alloca) as the first argument, then the hidden
// dynamic type name \"T\" as a string literal, then user args").
func (g *Generator) VisitStaticCallExpr(expr *domain.StaticCallExpr) error {
	args, err := g.genArgs(expr.Args)
	if err != nil {
		return err
	}
	name := mangledName(expr.TypeName, expr.Method)
	fn, ok := g.functions[name]
	if !ok {
		g.failed = true
		g.reportCodegenError(domain.C0004SymbolNotFound, fmt.Sprintf("static method %s::%s not declared", expr.TypeName, expr.Method), expr.GetLocation())
		return nil
	}

	var receiver interfaces.LLVMValue
	if thisPtr, thisType, ok := g.lookupVar("this"); ok && g.structNameOf(thisType) == expr.TypeName {
		// Called from inside a method on the same struct (or, via the
		// ancestor walk below, an override): reuse the live `this`.
		receiver = thisPtr
	} else if thisPtr, thisType, ok := g.lookupVar("this"); ok && g.isDescendantOf(g.structNameOf(thisType), expr.TypeName) {
		receiver = g.builder.CreateBitCast(thisPtr, llvmTypeFor(&domain.PointerType{Target: mustLookupStructType(g.typeRegistry, expr.TypeName)}), "recv.base")
	} else {
		// No compatible `this` in scope: T::m(args) on its own provides a
		// fresh stack-allocated T to act as self; its fields are not
		// initialised.
		receiver = g.builder.CreateAlloca(llvmTypeFor(mustLookupStructType(g.typeRegistry, expr.TypeName)), "static.recv")
	}
	dynName := g.builder.CreateGlobalString(expr.TypeName, "dyn.name")

	callArgs := append([]interfaces.LLVMValue{receiver, dynName}, args...)
	g.value = g.builder.CreateCall(fn, callArgs, "")
	g.valueType = expr.Type_
	return nil
}

func (g *Generator) structNameOf(t domain.Type) string {
	if pt, ok := t.(*domain.PointerType); ok {
		t = pt.Target
	}
	if st, ok := t.(*domain.StructType); ok {
		return st.Name
	}
	return ""
}

// isDescendantOf reports whether child inherits from ancestor, directly or
// transitively, using the parent map forwardDeclare built for
// genDynamicDispatch.
func (g *Generator) isDescendantOf(child, ancestor string) bool {
	for name := child; name != ""; name = g.structParent[name] {
		if name == ancestor {
			return true
		}
	}
	return false
}

func (g *Generator) genArgs(exprs []domain.Expression) ([]interfaces.LLVMValue, error) {
	args := make([]interfaces.LLVMValue, len(exprs))
	for i, a := range exprs {
		if err := a.Accept(g); err != nil {
			return nil, err
		}
		args[i] = g.value
	}
	return args, nil
}

func (g *Generator) VisitIndexExpr(expr *domain.IndexExpr) error {
	if err := expr.Object.Accept(g); err != nil {
		return err
	}
	obj, objType := g.value, g.valueType
	if err := expr.Index.Accept(g); err != nil {
		return err
	}
	idx := g.value

	switch objType.(type) {
	case *domain.MapType:
		g.value = g.callRuntime("quark_map_get", []interfaces.LLVMValue{obj, idx})
	default:
		g.value = g.callRuntime("quark_array_get", []interfaces.LLVMValue{obj, idx})
	}
	g.valueType = expr.Type_
	return nil
}

func (g *Generator) VisitMemberExpr(expr *domain.MemberExpr) error {
	ptr, err := g.fieldPointer(expr.Object, expr.Member)
	if err != nil || ptr == nil {
		return err
	}
	g.value = g.builder.CreateLoad(ptr, llvmTypeFor(expr.Type_), expr.Member)
	g.valueType = expr.Type_
	return nil
}

func (g *Generator) VisitArrayLiteralExpr(expr *domain.ArrayLiteralExpr) error {
	arr := g.callRuntime("quark_array_new", []interfaces.LLVMValue{g.builder.CreateConstInt(int64(len(expr.Elements)), 32)})
	for i, elem := range expr.Elements {
		if err := elem.Accept(g); err != nil {
			return err
		}
		g.callRuntime("quark_array_set", []interfaces.LLVMValue{arr, g.builder.CreateConstInt(int64(i), 32), g.value})
	}
	g.value = arr
	g.valueType = expr.Type_
	return nil
}

func (g *Generator) VisitMapLiteralExpr(expr *domain.MapLiteralExpr) error {
	m := g.callRuntime("quark_map_new", nil)
	for i := range expr.Keys {
		if err := expr.Keys[i].Accept(g); err != nil {
			return err
		}
		key := g.value
		if err := expr.Values[i].Accept(g); err != nil {
			return err
		}
		g.callRuntime("quark_map_set", []interfaces.LLVMValue{m, key, g.value})
	}
	g.value = m
	g.valueType = expr.Type_
	return nil
}

func (g *Generator) VisitRangeExpr(expr *domain.RangeExpr) error {
	// Ranges only ever appear as a `for`-like match/while driver in
	// practice; Start's value stands in for the range's own runtime value
	// since the language's range use is iteration-only (no range objects).
	return expr.Start.Accept(g)
}

func (g *Generator) VisitStructLiteralExpr(expr *domain.StructLiteralExpr) error {
	structType, ok := g.typeRegistry.GetType(expr.StructName)
	if !ok {
		g.failed = true
		g.reportCodegenError(domain.C0002InvalidType, fmt.Sprintf("unknown struct %s", expr.StructName), expr.GetLocation())
		return nil
	}
	st := structType.(*domain.StructType)
	handle := g.callRuntime("quark_struct_new", []interfaces.LLVMValue{g.builder.CreateConstInt(int64(len(st.AllFieldNames())), 32)})
	instancePtr := g.builder.CreateBitCast(handle, llvmTypeFor(st), expr.StructName)

	for _, fieldName := range expr.FieldOrder {
		valueExpr := expr.Fields[fieldName]
		if err := valueExpr.Accept(g); err != nil {
			return err
		}
		idx, _ := fieldIndex(st, fieldName)
		fieldType, _ := st.GetField(fieldName)
		fieldPtr := g.builder.CreateGEP(instancePtr, []int{idx}, llvmTypeFor(&domain.PointerType{Target: fieldType}), fieldName+".ptr")
		g.builder.CreateStore(g.value, fieldPtr)
	}
	g.value = instancePtr
	g.valueType = st
	return nil
}

func (g *Generator) VisitCastExpr(expr *domain.CastExpr) error {
	if err := expr.Operand.Accept(g); err != nil {
		return err
	}
	from, to := g.valueType, expr.Type_
	target := llvmTypeFor(to)

	switch {
	case isFloatingType(from) && !isFloatingType(to):
		g.value = g.builder.CreateFPToSI(g.value, target, "cast")
	case !isFloatingType(from) && isFloatingType(to) && !isBoolType(from):
		g.value = g.builder.CreateSIToFP(g.value, target, "cast")
	case from.String() == "float" && to.String() == "double":
		g.value = g.builder.CreateFPExt(g.value, "cast")
	case from.String() == "double" && to.String() == "float":
		g.value = g.builder.CreateFPTrunc(g.value, "cast")
	case isBoolType(from) && !isFloatingType(to):
		g.value = g.builder.CreateZExt(g.value, target, "cast")
	default:
		g.value = g.builder.CreateBitCast(g.value, target, "cast")
	}
	g.valueType = to
	return nil
}

func (g *Generator) VisitAddrOfExpr(expr *domain.AddrOfExpr) error {
	if ident, ok := expr.Operand.(*domain.IdentifierExpr); ok {
		ptr, t, found := g.lookupVar(ident.Name)
		if !found {
			g.failed = true
			g.reportCodegenError(domain.C0004SymbolNotFound, fmt.Sprintf("undefined variable %s", ident.Name), ident.GetLocation())
			return nil
		}
		g.value = ptr
		g.valueType = &domain.PointerType{Target: t}
		return nil
	}
	return fmt.Errorf("codegen: & can only be applied to a named variable")
}

func (g *Generator) VisitDerefExpr(expr *domain.DerefExpr) error {
	if err := expr.Operand.Accept(g); err != nil {
		return err
	}
	ptr, ptrType := g.value, g.valueType
	target := ptrType
	if pt, ok := ptrType.(*domain.PointerType); ok {
		target = pt.Target
	}
	g.value = g.builder.CreateLoad(ptr, llvmTypeFor(target), "deref")
	g.valueType = target
	return nil
}
