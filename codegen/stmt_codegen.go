package codegen

import (
	"fmt"
	"sort"

	"github.com/quarklang/quarkc/internal/domain"
	"github.com/quarklang/quarkc/internal/interfaces"
)

func mangledName(structName, method string) string {
	if structName == "" {
		return method
	}
	return structName + "::" + method
}

func (g *Generator) VisitProgram(prog *domain.Program) error {
	g.pushScope()
	defer g.popScope()

	// Pass 1: forward-declare every function/method signature so call
	// sites generated before a definition still resolve (spec §4.I
	// "forward reference" note).
	for _, stmt := range prog.Statements {
		if err := g.forwardDeclare(stmt); err != nil {
			return err
		}
	}
	// Pass 2: generate bodies.
	for _, stmt := range prog.Statements {
		if err := stmt.Accept(g); err != nil {
			return err
		}
	}
	return nil
}

func (g *Generator) forwardDeclare(stmt domain.Statement) error {
	switch s := stmt.(type) {
	case *domain.IncludeStmt:
		for _, inner := range s.Statements {
			if err := g.forwardDeclare(inner); err != nil {
				return err
			}
		}
	case *domain.FunctionDecl:
		return g.declareFunctionSignature(s)
	case *domain.StructDecl:
		if err := g.declareStructType(s.Name); err != nil {
			return err
		}
		if s.ParentName != "" {
			g.structParent[s.Name] = s.ParentName
		}
		for _, m := range s.Methods {
			g.registerMethodOwner(s.Name, m.Name)
			if err := g.declareFunctionSignature(m); err != nil {
				return err
			}
		}
	case *domain.ImplBlockDecl:
		for _, m := range s.Methods {
			g.registerMethodOwner(s.StructName, m.Name)
			if err := g.declareFunctionSignature(m); err != nil {
				return err
			}
		}
	case *domain.ExternFunctionDecl:
		return g.declareExternFunction(s)
	}
	return nil
}

func (g *Generator) declareStructType(name string) error {
	t, ok := g.typeRegistry.GetType(name)
	if !ok {
		return fmt.Errorf("codegen: struct %s not found in type registry", name)
	}
	structType, ok := t.(*domain.StructType)
	if !ok {
		return fmt.Errorf("codegen: %s is not a struct type", name)
	}
	_, err := g.module.CreateStruct(name, structType)
	return err
}

func (g *Generator) functionTypeOf(params []domain.Parameter, returnType domain.Type, variadic bool) *domain.FunctionType {
	paramTypes := make([]domain.Type, len(params))
	for i, p := range params {
		paramTypes[i] = p.Type_
	}
	return &domain.FunctionType{ParameterTypes: paramTypes, ReturnType: returnType, IsVariadic: variadic}
}

// registerMethodOwner records that structName directly declares method (as
// opposed to inheriting it), the data genDynamicDispatch's strcmp chain
// walks to find every derived override of a given method.
func (g *Generator) registerMethodOwner(structName, method string) {
	if g.methodOwners[structName] == nil {
		g.methodOwners[structName] = make(map[string]bool)
	}
	g.methodOwners[structName][method] = true
}

func (g *Generator) structChildren(parent string) []string {
	var children []string
	for child, p := range g.structParent {
		if p == parent {
			children = append(children, child)
		}
	}
	sort.Strings(children)
	return children
}

// overridesOf returns every struct, anywhere in structName's descendant
// tree, that directly declares its own override of method. Traversal order
// is deterministic (sorted at each level) so the generated strcmp chain is
// stable across runs.
func (g *Generator) overridesOf(structName, method string) []string {
	var result []string
	var visit func(name string)
	visit = func(name string) {
		for _, child := range g.structChildren(name) {
			if g.methodOwners[child][method] {
				result = append(result, child)
			}
			visit(child)
		}
	}
	visit(structName)
	return result
}

func (g *Generator) declareFunctionSignature(decl *domain.FunctionDecl) error {
	name := decl.GetName()
	if _, exists := g.functions[name]; exists {
		return nil
	}
	params := decl.Parameters
	if decl.IsMethod {
		this := domain.Parameter{Name: "this", Type_: &domain.PointerType{Target: mustLookupStructType(g.typeRegistry, decl.ReceiverStruct)}}
		dynType := domain.Parameter{Name: "__dyn_type_name", Type_: domain.NewStringType()}
		params = append([]domain.Parameter{this, dynType}, params...)
	}
	ft := g.functionTypeOf(params, decl.ReturnType, decl.IsVariadic)
	fn, err := g.module.CreateFunction(name, ft)
	if err != nil {
		return fmt.Errorf("codegen: declaring function %s: %w", name, err)
	}
	g.functions[name] = fn
	return nil
}

func (g *Generator) declareExternFunction(decl *domain.ExternFunctionDecl) error {
	if _, exists := g.functions[decl.Name]; exists {
		return nil
	}
	returnType := g.resolveReturnType(decl.ReturnTypeName)
	ft := g.functionTypeOf(decl.Parameters, returnType, decl.IsVariadic)
	fn, err := g.module.CreateFunction(decl.Name, ft)
	if err != nil {
		return fmt.Errorf("codegen: declaring extern %s: %w", decl.Name, err)
	}
	g.functions[decl.Name] = fn
	return nil
}

func (g *Generator) resolveReturnType(name string) domain.Type {
	if name == "" || name == "void" {
		return domain.NewVoidType()
	}
	if t, ok := g.typeRegistry.GetType(name); ok {
		return t
	}
	return domain.NewVoidType()
}

func mustLookupStructType(reg domain.TypeRegistry, name string) domain.Type {
	if t, ok := reg.GetType(name); ok {
		return t
	}
	return domain.NewUnknownType()
}

func (g *Generator) VisitIncludeStmt(stmt *domain.IncludeStmt) error {
	for _, inner := range stmt.Statements {
		if err := inner.Accept(g); err != nil {
			return err
		}
	}
	return nil
}

func (g *Generator) VisitExternFunctionDecl(decl *domain.ExternFunctionDecl) error { return nil }
func (g *Generator) VisitExternStructDecl(decl *domain.ExternStructDecl) error     { return nil }

func (g *Generator) VisitStructDecl(decl *domain.StructDecl) error {
	for _, m := range decl.Methods {
		m.IsMethod = true
		m.ReceiverStruct = decl.Name
		if err := m.Accept(g); err != nil {
			return err
		}
	}
	return nil
}

func (g *Generator) VisitImplBlockDecl(decl *domain.ImplBlockDecl) error {
	for _, m := range decl.Methods {
		m.IsMethod = true
		m.ReceiverStruct = decl.StructName
		if err := m.Accept(g); err != nil {
			return err
		}
	}
	return nil
}

func (g *Generator) VisitFunctionDecl(decl *domain.FunctionDecl) error {
	fn, ok := g.functions[decl.GetName()]
	if !ok {
		g.failed = true
		g.reportCodegenError(domain.C0004SymbolNotFound, fmt.Sprintf("function %s has no forward declaration", decl.GetName()), decl.GetLocation())
		return nil
	}

	prevFunc, prevFnType, prevStruct, prevDynName := g.currentFunc, g.currentFnType, g.currentStruct, g.currentDynName
	g.currentFunc = fn
	g.currentFnType = g.functionTypeOf(decl.Parameters, decl.ReturnType, decl.IsVariadic)
	if decl.IsMethod {
		g.currentStruct = decl.ReceiverStruct
	} else {
		g.currentStruct = ""
	}
	defer func() {
		g.currentFunc, g.currentFnType, g.currentStruct, g.currentDynName = prevFunc, prevFnType, prevStruct, prevDynName
	}()

	entry := fn.CreateBasicBlock("entry")
	g.position(entry)

	g.pushScope()
	defer g.popScope()

	paramOffset := 0
	if decl.IsMethod {
		thisPtr := fn.GetParameter(0)
		g.declareVar("this", thisPtr, &domain.PointerType{Target: mustLookupStructType(g.typeRegistry, decl.ReceiverStruct)})
		g.currentDynName = fn.GetParameter(1)
		paramOffset = 2
	} else {
		g.currentDynName = nil
	}
	for i, p := range decl.Parameters {
		argVal := fn.GetParameter(i + paramOffset)
		slot := g.builder.CreateAlloca(llvmTypeFor(p.Type_), p.Name)
		g.builder.CreateStore(argVal, slot)
		g.declareVar(p.Name, slot, p.Type_)
	}

	if decl.Body != nil {
		if err := decl.Body.Accept(g); err != nil {
			return err
		}
	}

	// Every path must already end in a terminator per the semantic
	// analyzer's "possibly no return" warning; a void function that falls
	// off the end still needs an explicit ret to keep the block valid.
	if isVoidType(decl.ReturnType) {
		g.builder.CreateRetVoid()
	}
	return nil
}

func (g *Generator) VisitBlockStmt(stmt *domain.BlockStmt) error {
	g.pushScope()
	defer g.popScope()
	for _, s := range stmt.Statements {
		if err := s.Accept(g); err != nil {
			return err
		}
	}
	return nil
}

func (g *Generator) VisitExprStmt(stmt *domain.ExprStmt) error {
	return stmt.Expression.Accept(g)
}

func (g *Generator) VisitVarDeclStmt(stmt *domain.VarDeclStmt) error {
	if err := stmt.Initializer.Accept(g); err != nil {
		return err
	}
	t := stmt.Type_
	if t == nil {
		t = g.valueType
	}
	slot := g.builder.CreateAlloca(llvmTypeFor(t), stmt.Name)
	g.builder.CreateStore(g.value, slot)
	g.declareVar(stmt.Name, slot, t)
	return nil
}

func (g *Generator) VisitAssignStmt(stmt *domain.AssignStmt) error {
	if err := stmt.Value.Accept(g); err != nil {
		return err
	}
	ptr, _, ok := g.lookupVar(stmt.Name)
	if !ok {
		g.failed = true
		g.reportCodegenError(domain.C0004SymbolNotFound, fmt.Sprintf("assignment to unknown variable %s", stmt.Name), stmt.GetLocation())
		return nil
	}
	g.builder.CreateStore(g.value, ptr)
	return nil
}

func (g *Generator) VisitMemberAssignStmt(stmt *domain.MemberAssignStmt) error {
	fieldPtr, err := g.fieldPointer(stmt.Object, stmt.Member)
	if err != nil {
		return err
	}
	if err := stmt.Value.Accept(g); err != nil {
		return err
	}
	g.builder.CreateStore(g.value, fieldPtr)
	return nil
}

func (g *Generator) VisitArrayAssignStmt(stmt *domain.ArrayAssignStmt) error {
	if err := stmt.Object.Accept(g); err != nil {
		return err
	}
	arr := g.value
	if err := stmt.Index.Accept(g); err != nil {
		return err
	}
	idx := g.value
	if err := stmt.Value.Accept(g); err != nil {
		return err
	}
	g.callRuntime("quark_array_set", []interfaces.LLVMValue{arr, idx, g.value})
	return nil
}

func (g *Generator) VisitDerefAssignStmt(stmt *domain.DerefAssignStmt) error {
	if err := stmt.Pointer.Accept(g); err != nil {
		return err
	}
	ptr := g.value
	if err := stmt.Value.Accept(g); err != nil {
		return err
	}
	g.builder.CreateStore(g.value, ptr)
	return nil
}

func (g *Generator) VisitIfStmt(stmt *domain.IfStmt) error {
	mergeName := g.newBlock("if.end")
	var mergeBlock interfaces.LLVMBasicBlock
	return g.genIfChain(stmt, mergeName, &mergeBlock)
}

// genIfChain generates condition/then for stmt, recursing into elif arms,
// and always terminates every branch by jumping to (or falling through to)
// a shared merge block. mergeBlock is allocated lazily and threaded by
// pointer so every arm of the chain branches to the same block.
func (g *Generator) genIfChain(stmt *domain.IfStmt, mergeName string, mergeBlock *interfaces.LLVMBasicBlock) error {
	if err := stmt.Condition.Accept(g); err != nil {
		return err
	}
	cond := g.value

	thenBlock := g.currentFunc.CreateBasicBlock(g.newBlock("if.then"))
	elseBlock := g.currentFunc.CreateBasicBlock(g.newBlock("if.else"))
	g.builder.CreateCondBr(cond, thenBlock, elseBlock)

	g.position(thenBlock)
	if err := stmt.Then.Accept(g); err != nil {
		return err
	}
	if g.currentBlock != nil && !g.currentBlock.IsTerminated() {
		*mergeBlock = g.ensureMerge(*mergeBlock, mergeName)
		g.builder.CreateBr(*mergeBlock)
	}

	g.position(elseBlock)
	if len(stmt.Elifs) > 0 {
		elif := stmt.Elifs[0]
		rest := &domain.IfStmt{Condition: elif.Condition, Then: elif.Body, Elifs: stmt.Elifs[1:], Else: stmt.Else}
		if err := g.genIfChain(rest, mergeName, mergeBlock); err != nil {
			return err
		}
	} else {
		if stmt.Else != nil {
			if err := stmt.Else.Accept(g); err != nil {
				return err
			}
		}
		if g.currentBlock != nil && !g.currentBlock.IsTerminated() {
			*mergeBlock = g.ensureMerge(*mergeBlock, mergeName)
			g.builder.CreateBr(*mergeBlock)
		}
	}

	if *mergeBlock != nil {
		g.position(*mergeBlock)
	}
	return nil
}

func (g *Generator) ensureMerge(existing interfaces.LLVMBasicBlock, name string) interfaces.LLVMBasicBlock {
	if existing != nil {
		return existing
	}
	return g.currentFunc.CreateBasicBlock(name)
}

func (g *Generator) VisitWhileStmt(stmt *domain.WhileStmt) error {
	condBlock := g.currentFunc.CreateBasicBlock(g.newBlock("while.cond"))
	bodyBlock := g.currentFunc.CreateBasicBlock(g.newBlock("while.body"))
	endBlock := g.currentFunc.CreateBasicBlock(g.newBlock("while.end"))

	// A `for` desugar's Increment gets its own block between body and cond, so
	// `continue` runs it instead of jumping straight to cond and skipping it.
	var incrBlock interfaces.LLVMBasicBlock
	continueTarget := condBlock
	if stmt.Increment != nil {
		incrBlock = g.currentFunc.CreateBasicBlock(g.newBlock("while.incr"))
		continueTarget = incrBlock
	}

	g.builder.CreateBr(condBlock)

	g.position(condBlock)
	if err := stmt.Condition.Accept(g); err != nil {
		return err
	}
	g.builder.CreateCondBr(g.value, bodyBlock, endBlock)

	g.loopStack = append(g.loopStack, loopFrame{continueBlock: continueTarget, breakBlock: endBlock})
	g.position(bodyBlock)
	if err := stmt.Body.Accept(g); err != nil {
		return err
	}
	if stmt.Increment != nil {
		g.branchToIfOpen(incrBlock)
		g.position(incrBlock)
		if err := stmt.Increment.Accept(g); err != nil {
			return err
		}
		g.builder.CreateBr(condBlock)
	} else {
		g.branchToIfOpen(condBlock)
	}
	g.loopStack = g.loopStack[:len(g.loopStack)-1]

	g.position(endBlock)
	return nil
}

func (g *Generator) VisitMatchStmt(stmt *domain.MatchStmt) error {
	if err := stmt.Subject.Accept(g); err != nil {
		return err
	}
	subject := g.value
	subjectType := g.valueType

	endName := g.newBlock("match.end")
	var mergeBlock interfaces.LLVMBasicBlock

	for _, arm := range stmt.Arms {
		if arm.IsWildcard {
			if err := arm.Body.Accept(g); err != nil {
				return err
			}
			if g.currentBlock != nil && !g.currentBlock.IsTerminated() {
				mergeBlock = g.ensureMerge(mergeBlock, endName)
				g.builder.CreateBr(mergeBlock)
			}
			break
		}

		if err := arm.Pattern.Accept(g); err != nil {
			return err
		}
		pattern := g.value

		var eq interfaces.LLVMValue
		if isFloatingType(subjectType) {
			eq = g.builder.CreateFCmp(interfaces.FloatOEQ, subject, pattern, "")
		} else if isStringType(subjectType) {
			// Strings compare via strcmp==0, not pointer identity (spec
			// §4.I "Match"): two equal string literals are distinct
			// globals, so ICmp on the raw i8* pointers would never match.
			eq = g.compareStrings(subject, pattern, domain.Eq)
		} else {
			eq = g.builder.CreateICmp(interfaces.IntEQ, subject, pattern, "")
		}

		matchBlock := g.currentFunc.CreateBasicBlock(g.newBlock("match.arm"))
		nextBlock := g.currentFunc.CreateBasicBlock(g.newBlock("match.next"))
		g.builder.CreateCondBr(eq, matchBlock, nextBlock)

		g.position(matchBlock)
		if err := arm.Body.Accept(g); err != nil {
			return err
		}
		if g.currentBlock != nil && !g.currentBlock.IsTerminated() {
			mergeBlock = g.ensureMerge(mergeBlock, endName)
			g.builder.CreateBr(mergeBlock)
		}

		g.position(nextBlock)
	}

	// Fell through every typed arm with no wildcard: close the last
	// `nextBlock` into the merge too.
	mergeBlock = g.ensureMerge(mergeBlock, endName)
	g.branchToIfOpen(mergeBlock)
	g.position(mergeBlock)
	return nil
}

func (g *Generator) VisitReturnStmt(stmt *domain.ReturnStmt) error {
	if stmt.Value == nil {
		g.builder.CreateRetVoid()
		return nil
	}
	if err := stmt.Value.Accept(g); err != nil {
		return err
	}
	g.builder.CreateRet(g.value)
	return nil
}

func (g *Generator) VisitBreakStmt(stmt *domain.BreakStmt) error {
	if len(g.loopStack) == 0 {
		return nil
	}
	g.builder.CreateBr(g.loopStack[len(g.loopStack)-1].breakBlock)
	return nil
}

func (g *Generator) VisitContinueStmt(stmt *domain.ContinueStmt) error {
	if len(g.loopStack) == 0 {
		return nil
	}
	g.builder.CreateBr(g.loopStack[len(g.loopStack)-1].continueBlock)
	return nil
}
