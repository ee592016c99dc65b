// Package semantic implements Quark's two-pass semantic analysis (spec
// §4.G): declaration collection, name resolution, type inference/checking,
// inheritance and flow-sensitive diagnostics.
package semantic

import (
	"fmt"
	"strings"

	"github.com/quarklang/quarkc/internal/domain"
	"github.com/quarklang/quarkc/internal/interfaces"
)

// Analyzer implements interfaces.SemanticAnalyzer.
type Analyzer struct {
	typeRegistry  domain.TypeRegistry
	symbolTable   interfaces.SymbolTable
	errorReporter domain.ErrorReporter

	currentFunction *domain.FunctionDecl
	currentStruct   *domain.StructType
	loopDepth       int
	hasReturn       bool

	structDecls  map[string]*domain.StructDecl
	structOrder  []string
	buildingSet  map[string]bool
	knownNames   map[string]bool // every declared/builtin name, for "did you mean?"
}

// NewAnalyzer creates an analyzer with a default type registry; callers
// still need to SetSymbolTable/SetErrorReporter before Analyze.
func NewAnalyzer() *Analyzer {
	return &Analyzer{
		typeRegistry: domain.NewDefaultTypeRegistry(),
		structDecls:  make(map[string]*domain.StructDecl),
		buildingSet:  make(map[string]bool),
		knownNames:   make(map[string]bool),
	}
}

func (a *Analyzer) SetTypeRegistry(registry domain.TypeRegistry) { a.typeRegistry = registry }
func (a *Analyzer) SetSymbolTable(table interfaces.SymbolTable)  { a.symbolTable = table }
func (a *Analyzer) SetErrorReporter(reporter domain.ErrorReporter) {
	a.errorReporter = reporter
}

// Analyze runs the two passes described in spec §4.G over program and
// returns an error iff at least one non-warning diagnostic was recorded.
func (a *Analyzer) Analyze(program *domain.Program) error {
	a.registerBuiltins()

	stmts := a.flatten(program.Statements)
	a.collectStructNames(stmts)
	for _, name := range a.structOrder {
		structType, err := a.resolveStructType(name)
		if err != nil {
			a.report(domain.SemanticError, domain.E102MissingParent, err.Error(), a.structDecls[name].GetLocation(), nil)
			continue
		}
		parentName := ""
		if structType.Parent != nil {
			parentName = structType.Parent.Name
		}
		a.symbolTable.DeclareSymbol(&interfaces.Symbol{
			Kind: interfaces.StructSymbol, Name: name, ResolvedType: structType,
			ParentStruct: parentName, DeclLocation: a.structDecls[name].GetLocation().Start,
		})
	}
	for _, stmt := range stmts {
		a.declareTopLevel(stmt)
	}

	for _, stmt := range stmts {
		if err := stmt.Accept(a); err != nil {
			return err
		}
	}

	if a.errorReporter != nil && a.errorReporter.HasErrors() {
		return fmt.Errorf("semantic analysis failed")
	}
	return nil
}

// flatten walks IncludeStmt nodes so declaration collection (and the
// second pass) sees the imported translation unit's statements inline
// (spec §4.G "including those inside Include nodes").
func (a *Analyzer) flatten(stmts []domain.Statement) []domain.Statement {
	var out []domain.Statement
	for _, s := range stmts {
		if inc, ok := s.(*domain.IncludeStmt); ok {
			out = append(out, a.flatten(inc.Statements)...)
			continue
		}
		out = append(out, s)
	}
	return out
}

func (a *Analyzer) report(errType domain.ErrorType, code, message string, loc domain.Span, suggestions []string) {
	if a.errorReporter == nil {
		return
	}
	a.errorReporter.ReportError(domain.CompilerError{
		Type:        errType,
		Message:     message,
		Location:    loc.Start,
		Length:      loc.Length,
		Code:        code,
		Suggestions: suggestions,
		Hints:       suggestions,
	})
}

func (a *Analyzer) warn(code, message string, loc domain.Span) {
	if a.errorReporter == nil {
		return
	}
	a.errorReporter.ReportWarning(domain.CompilerError{
		Type:      domain.SemanticError,
		Message:   message,
		Location:  loc.Start,
		Length:    loc.Length,
		Code:      code,
		IsWarning: true,
	})
}

// --- Declaration collection (pass 1) ---

var builtinSignatures = map[string]*domain.FunctionType{
	"println":   {ParameterTypes: nil, ReturnType: domain.NewVoidType(), IsVariadic: true},
	"print":     {ParameterTypes: nil, ReturnType: domain.NewVoidType(), IsVariadic: true},
	"readline":  {ParameterTypes: []domain.Type{}, ReturnType: domain.NewStringType()},
	"format":    {ParameterTypes: []domain.Type{domain.NewStringType()}, ReturnType: domain.NewStringType(), IsVariadic: true},
	"str_len":   {ParameterTypes: []domain.Type{domain.NewStringType()}, ReturnType: domain.NewIntType()},
	"str_concat": {ParameterTypes: []domain.Type{domain.NewStringType(), domain.NewStringType()}, ReturnType: domain.NewStringType()},
	"str_sub":   {ParameterTypes: []domain.Type{domain.NewStringType(), domain.NewIntType(), domain.NewIntType()}, ReturnType: domain.NewStringType()},
	"sqrt":      {ParameterTypes: []domain.Type{domain.NewDoubleType()}, ReturnType: domain.NewDoubleType()},
	"pow":       {ParameterTypes: []domain.Type{domain.NewDoubleType(), domain.NewDoubleType()}, ReturnType: domain.NewDoubleType()},
	"sleep":     {ParameterTypes: []domain.Type{domain.NewIntType()}, ReturnType: domain.NewVoidType()},
	"min":       {ParameterTypes: []domain.Type{domain.NewIntType(), domain.NewIntType()}, ReturnType: domain.NewIntType()},
	"max":       {ParameterTypes: []domain.Type{domain.NewIntType(), domain.NewIntType()}, ReturnType: domain.NewIntType()},
	"clamp":     {ParameterTypes: []domain.Type{domain.NewIntType(), domain.NewIntType(), domain.NewIntType()}, ReturnType: domain.NewIntType()},
	"abs":       {ParameterTypes: []domain.Type{domain.NewIntType()}, ReturnType: domain.NewIntType()},
}

// to_string/to_int are overload-resolved by argument type at the call site
// (SPEC_FULL.md Q2), so they are deliberately absent from builtinSignatures
// and handled directly in VisitCallExpr.
var overloadedBuiltins = map[string]bool{"to_string": true, "to_int": true}

func (a *Analyzer) registerBuiltins() {
	for name, sig := range builtinSignatures {
		a.knownNames[name] = true
		a.symbolTable.DeclareSymbol(&interfaces.Symbol{
			Kind: interfaces.FunctionSymbol, Name: name, ResolvedType: sig,
			ReturnType: sig.ReturnType, IsVariadic: sig.IsVariadic, IsExtern: true,
		})
	}
	for name := range overloadedBuiltins {
		a.knownNames[name] = true
	}
}

func (a *Analyzer) collectStructNames(stmts []domain.Statement) {
	for _, s := range stmts {
		if d, ok := s.(*domain.StructDecl); ok {
			a.structDecls[d.Name] = d
			a.structOrder = append(a.structOrder, d.Name)
			a.knownNames[d.Name] = true
		}
	}
}

// resolveStructType lazily builds a *domain.StructType for name, recursing
// into its parent and any struct-typed fields so field order (invariant I5)
// is available regardless of declaration order in the source file.
func (a *Analyzer) resolveStructType(name string) (*domain.StructType, error) {
	if t, ok := a.typeRegistry.GetType(name); ok {
		if st, ok := t.(*domain.StructType); ok {
			return st, nil
		}
	}
	decl, known := a.structDecls[name]
	if !known {
		return nil, fmt.Errorf("unknown struct %q", name)
	}
	if a.buildingSet[name] {
		return nil, fmt.Errorf("cyclic struct definition involving %q", name)
	}
	a.buildingSet[name] = true
	defer delete(a.buildingSet, name)

	var parent *domain.StructType
	if decl.ParentName != "" {
		p, err := a.resolveStructType(decl.ParentName)
		if err != nil {
			return nil, fmt.Errorf("struct %q: parent %q not found", name, decl.ParentName)
		}
		parent = p
	}

	fields := make([]domain.StructField, 0, len(decl.Fields))
	for _, f := range decl.Fields {
		fields = append(fields, domain.StructField{Name: f.Name, Type: a.resolveTypeName(f.TypeName)})
	}
	return a.typeRegistry.CreateStructType(name, parent, fields)
}

// resolveTypeName parses a type name as produced by the parser's
// parseTypeName (suffix-appended pointers/arrays) into a domain.Type.
func (a *Analyzer) resolveTypeName(name string) domain.Type {
	switch {
	case strings.HasSuffix(name, "*"):
		base := a.resolveTypeName(strings.TrimSuffix(name, "*"))
		return &domain.PointerType{Target: base, TargetName: strings.TrimSuffix(name, "*")}
	case strings.HasSuffix(name, "[]"):
		base := a.resolveTypeName(strings.TrimSuffix(name, "[]"))
		return &domain.ArrayType{ElementType: base, Size: -1}
	}
	switch name {
	case "int":
		return domain.NewIntType()
	case "float":
		return domain.NewFloatType()
	case "double":
		return domain.NewDoubleType()
	case "bool":
		return domain.NewBoolType()
	case "str":
		return domain.NewStringType()
	case "void":
		return domain.NewVoidType()
	case "":
		return domain.NewUnknownType()
	}
	if st, err := a.resolveStructType(name); err == nil {
		return st
	}
	return domain.NewUnknownType()
}

// declareTopLevel registers functions, externs, struct methods and
// impl-block methods into the global scope (spec §4.G pass 1).
func (a *Analyzer) declareTopLevel(stmt domain.Statement) {
	switch d := stmt.(type) {
	case *domain.FunctionDecl:
		a.declareFunctionSymbol(d)
	case *domain.StructDecl:
		for _, m := range d.Methods {
			m.ReceiverStruct = d.Name
			m.IsMethod = true
			a.declareFunctionSymbol(m)
		}
	case *domain.ImplBlockDecl:
		for _, m := range d.Methods {
			m.ReceiverStruct = d.StructName
			m.IsMethod = true
			a.declareFunctionSymbol(m)
		}
	case *domain.ExternFunctionDecl:
		paramTypes := make([]domain.Type, len(d.Parameters))
		for i, p := range d.Parameters {
			p.Type_ = a.resolveTypeName(p.TypeName)
			paramTypes[i] = p.Type_
			d.Parameters[i] = p
		}
		sig := &domain.FunctionType{ParameterTypes: paramTypes, ReturnType: a.resolveTypeName(d.ReturnTypeName), IsVariadic: d.IsVariadic}
		a.knownNames[d.Name] = true
		a.symbolTable.DeclareSymbol(&interfaces.Symbol{
			Kind: interfaces.FunctionSymbol, Name: d.Name, ResolvedType: sig,
			ReturnType: sig.ReturnType, IsVariadic: d.IsVariadic, IsExtern: true,
			DeclLocation: d.GetLocation().Start,
		})
	case *domain.ExternStructDecl:
		a.knownNames[d.Name] = true
		a.symbolTable.DeclareSymbol(&interfaces.Symbol{
			Kind: interfaces.StructSymbol, Name: d.Name, IsExtern: true,
			DeclLocation: d.GetLocation().Start,
		})
	}
}

func (a *Analyzer) declareFunctionSymbol(d *domain.FunctionDecl) {
	paramTypes := make([]domain.Type, len(d.Parameters))
	params := make([]interfaces.Parameter, len(d.Parameters))
	for i, p := range d.Parameters {
		p.Type_ = a.resolveTypeName(p.TypeName)
		d.Parameters[i] = p
		paramTypes[i] = p.Type_
		params[i] = interfaces.Parameter{Name: p.Name, TypeName: p.TypeName, Type: p.Type_}
	}
	d.ReturnType = a.resolveTypeName(d.ReturnTypeName)
	sig := &domain.FunctionType{ParameterTypes: paramTypes, ReturnType: d.ReturnType, IsVariadic: d.IsVariadic}

	mangled := d.GetName()
	a.knownNames[mangled] = true
	if !d.IsMethod {
		a.knownNames[d.Name] = true
	}
	if err := a.symbolTable.DeclareSymbol(&interfaces.Symbol{
		Kind: interfaces.FunctionSymbol, Name: mangled, ResolvedType: sig,
		FunctionParams: params, ReturnType: d.ReturnType, IsVariadic: d.IsVariadic,
		IsMethod: d.IsMethod, StructName: d.ReceiverStruct, DeclLocation: d.GetLocation().Start,
	}); err != nil {
		a.report(domain.SemanticError, domain.E0008DuplicateDef,
			fmt.Sprintf("'%s' is already declared", mangled), d.GetLocation(), nil)
	}

	if d.IsMethod {
		if sym, ok := a.symbolTable.LookupSymbolInScope(d.ReceiverStruct); ok {
			sym.MethodNames = append(sym.MethodNames, d.Name)
		}
	}
}

// findMethod walks the parent-struct chain looking for `structName::method`
// (spec §4.G "Method lookup").
func (a *Analyzer) findMethod(structName, method string) (*interfaces.Symbol, bool) {
	st, ok := a.typeRegistry.GetType(structName)
	if !ok {
		return nil, false
	}
	structType, ok := st.(*domain.StructType)
	if !ok {
		return nil, false
	}
	for s := structType; s != nil; s = s.Parent {
		if sym, found := a.symbolTable.LookupSymbol(s.Name + "::" + method); found {
			return sym, true
		}
	}
	return nil, false
}

func (a *Analyzer) suggestionsFor(name string) []string {
	var candidates []string
	for known := range a.knownNames {
		if levenshtein(name, known) <= 3 && known != name {
			candidates = append(candidates, known)
		}
	}
	return candidates
}

func levenshtein(a, b string) int {
	if a == b {
		return 0
	}
	la, lb := len(a), len(b)
	prev := make([]int, lb+1)
	curr := make([]int, lb+1)
	for j := 0; j <= lb; j++ {
		prev[j] = j
	}
	for i := 1; i <= la; i++ {
		curr[0] = i
		for j := 1; j <= lb; j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min3(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[lb]
}

func min3(a, b, c int) int {
	m := a
	if b < m {
		m = b
	}
	if c < m {
		m = c
	}
	return m
}

// --- Visitor (pass 2: statement analysis) ---

func (a *Analyzer) VisitProgram(prog *domain.Program) error {
	for _, s := range prog.Statements {
		if err := s.Accept(a); err != nil {
			return err
		}
	}
	return nil
}

func (a *Analyzer) VisitIncludeStmt(stmt *domain.IncludeStmt) error {
	for _, s := range stmt.Statements {
		if err := s.Accept(a); err != nil {
			return err
		}
	}
	return nil
}

func (a *Analyzer) VisitFunctionDecl(decl *domain.FunctionDecl) error {
	prevFunc, prevStruct := a.currentFunction, a.currentStruct
	a.currentFunction = decl
	a.hasReturn = false
	if decl.IsMethod {
		if st, ok := a.typeRegistry.GetType(decl.ReceiverStruct); ok {
			a.currentStruct, _ = st.(*domain.StructType)
		}
	}
	defer func() { a.currentFunction, a.currentStruct = prevFunc, prevStruct }()

	a.symbolTable.EnterScope()
	defer a.symbolTable.ExitScope()

	for _, p := range decl.Parameters {
		if err := a.symbolTable.DeclareSymbol(&interfaces.Symbol{
			Kind: interfaces.ParameterSymbol, Name: p.Name, ResolvedType: p.Type_,
			DeclLocation: decl.GetLocation().Start, IsInitialized: true,
		}); err != nil {
			a.report(domain.SemanticError, domain.E0008DuplicateDef,
				fmt.Sprintf("duplicate parameter '%s'", p.Name), decl.GetLocation(), nil)
		}
	}

	if decl.Body != nil {
		if err := decl.Body.Accept(a); err != nil {
			return err
		}
	}

	if decl.ReturnType != nil && decl.ReturnType.String() != "void" && !a.hasReturn {
		a.warn(domain.W001PossiblyNoReturn,
			fmt.Sprintf("function '%s' may not return a value on every path", decl.Name), decl.GetLocation())
	}
	return nil
}

func (a *Analyzer) VisitStructDecl(decl *domain.StructDecl) error {
	for _, m := range decl.Methods {
		if err := m.Accept(a); err != nil {
			return err
		}
	}
	return nil
}

func (a *Analyzer) VisitImplBlockDecl(decl *domain.ImplBlockDecl) error {
	if _, ok := a.typeRegistry.GetType(decl.StructName); !ok {
		a.report(domain.SemanticError, domain.E0005FunctionNotFound,
			fmt.Sprintf("impl block for undeclared struct '%s'", decl.StructName), decl.GetLocation(), a.suggestionsFor(decl.StructName))
	}
	for _, m := range decl.Methods {
		if err := m.Accept(a); err != nil {
			return err
		}
	}
	return nil
}

func (a *Analyzer) VisitExternFunctionDecl(decl *domain.ExternFunctionDecl) error { return nil }
func (a *Analyzer) VisitExternStructDecl(decl *domain.ExternStructDecl) error     { return nil }

func (a *Analyzer) VisitBlockStmt(stmt *domain.BlockStmt) error {
	a.symbolTable.EnterScope()
	defer a.symbolTable.ExitScope()
	for _, s := range stmt.Statements {
		if err := s.Accept(a); err != nil {
			return err
		}
	}
	return nil
}

// inferLiteralDefaultType implements spec §4.G's numeric-literal defaulting
// ("Int if it equals its integer floor and fits 32 bits, else Double").
func inferLiteralDefaultType(v interface{}) domain.Type {
	switch x := v.(type) {
	case int64:
		return domain.NewIntType()
	case float64:
		if x == float64(int32(x)) {
			return domain.NewIntType()
		}
		return domain.NewDoubleType()
	case string:
		return domain.NewStringType()
	case bool:
		return domain.NewBoolType()
	}
	return domain.NewUnknownType()
}

func (a *Analyzer) VisitVarDeclStmt(stmt *domain.VarDeclStmt) error {
	var initType domain.Type
	if stmt.Initializer != nil {
		if err := stmt.Initializer.Accept(a); err != nil {
			return err
		}
		initType = stmt.Initializer.GetType()
	}

	if stmt.TypeName != "" {
		stmt.Type_ = a.resolveTypeName(stmt.TypeName)
		if initType != nil && !domain.IsCompatible(stmt.Type_, initType) {
			a.report(domain.TypeCheckError, domain.E112AssignMismatch,
				fmt.Sprintf("cannot initialize '%s' of type %s with %s", stmt.Name, stmt.Type_.String(), initType.String()),
				stmt.GetLocation(), nil)
		}
	} else if initType != nil {
		stmt.Type_ = initType
	} else {
		stmt.Type_ = domain.NewUnknownType()
	}

	a.knownNames[stmt.Name] = true
	if err := a.symbolTable.DeclareSymbol(&interfaces.Symbol{
		Kind: interfaces.VariableSymbol, Name: stmt.Name, ResolvedType: stmt.Type_,
		DeclaredTypeName: stmt.TypeName, DeclLocation: stmt.GetLocation().Start,
		IsMutable: true, IsInitialized: stmt.Initializer != nil,
	}); err != nil {
		a.report(domain.SemanticError, domain.E0008DuplicateDef,
			fmt.Sprintf("variable '%s' is already declared in this scope", stmt.Name), stmt.GetLocation(), nil)
	}
	return nil
}

func (a *Analyzer) lookupVar(name string, loc domain.Span) (*interfaces.Symbol, bool) {
	sym, ok := a.symbolTable.LookupSymbol(name)
	if !ok {
		a.report(domain.SemanticError, domain.E0003UndefinedVariable,
			fmt.Sprintf("undefined identifier '%s'", name), loc, a.suggestionsFor(name))
	}
	return sym, ok
}

func (a *Analyzer) VisitAssignStmt(stmt *domain.AssignStmt) error {
	if err := stmt.Value.Accept(a); err != nil {
		return err
	}
	sym, ok := a.lookupVar(stmt.Name, stmt.GetLocation())
	if !ok {
		return nil
	}
	if !domain.IsCompatible(sym.ResolvedType, stmt.Value.GetType()) {
		a.report(domain.TypeCheckError, domain.E112AssignMismatch,
			fmt.Sprintf("cannot assign %s to '%s' of type %s", stmt.Value.GetType().String(), stmt.Name, sym.ResolvedType.String()),
			stmt.GetLocation(), nil)
	}
	sym.IsInitialized = true
	return nil
}

func (a *Analyzer) VisitMemberAssignStmt(stmt *domain.MemberAssignStmt) error {
	if err := stmt.Object.Accept(a); err != nil {
		return err
	}
	if err := stmt.Value.Accept(a); err != nil {
		return err
	}
	fieldType := a.resolveMemberType(stmt.Object.GetType(), stmt.Member, stmt.GetLocation())
	if fieldType != nil && !domain.IsCompatible(fieldType, stmt.Value.GetType()) {
		a.report(domain.TypeCheckError, domain.E124FieldMismatch,
			fmt.Sprintf("cannot assign %s to field '%s' of type %s", stmt.Value.GetType().String(), stmt.Member, fieldType.String()),
			stmt.GetLocation(), nil)
	}
	return nil
}

func (a *Analyzer) VisitArrayAssignStmt(stmt *domain.ArrayAssignStmt) error {
	if err := stmt.Object.Accept(a); err != nil {
		return err
	}
	if err := stmt.Index.Accept(a); err != nil {
		return err
	}
	if err := stmt.Value.Accept(a); err != nil {
		return err
	}
	if arr, ok := stmt.Object.GetType().(*domain.ArrayType); ok {
		if !domain.IsCompatible(arr.ElementType, stmt.Value.GetType()) {
			a.report(domain.TypeCheckError, domain.E112AssignMismatch,
				fmt.Sprintf("cannot assign %s to element of %s", stmt.Value.GetType().String(), arr.String()),
				stmt.GetLocation(), nil)
		}
	}
	return nil
}

func (a *Analyzer) VisitDerefAssignStmt(stmt *domain.DerefAssignStmt) error {
	if err := stmt.Pointer.Accept(a); err != nil {
		return err
	}
	return stmt.Value.Accept(a)
}

func (a *Analyzer) checkBoolCondition(cond domain.Expression, context string) {
	t := cond.GetType()
	if t == nil || t.String() == "bool" || t.String() == "unknown" {
		return
	}
	a.report(domain.TypeCheckError, domain.E109IncompatibleGeneric,
		fmt.Sprintf("%s condition must be bool, got %s", context, t.String()), cond.GetLocation(), nil)
}

func (a *Analyzer) VisitIfStmt(stmt *domain.IfStmt) error {
	if err := stmt.Condition.Accept(a); err != nil {
		return err
	}
	a.checkBoolCondition(stmt.Condition, "if")
	if err := stmt.Then.Accept(a); err != nil {
		return err
	}
	for _, elif := range stmt.Elifs {
		if err := elif.Condition.Accept(a); err != nil {
			return err
		}
		a.checkBoolCondition(elif.Condition, "elif")
		if err := elif.Body.Accept(a); err != nil {
			return err
		}
	}
	if stmt.Else != nil {
		return stmt.Else.Accept(a)
	}
	return nil
}

func (a *Analyzer) VisitWhileStmt(stmt *domain.WhileStmt) error {
	if err := stmt.Condition.Accept(a); err != nil {
		return err
	}
	a.checkBoolCondition(stmt.Condition, "while")
	a.loopDepth++
	defer func() { a.loopDepth-- }()
	return stmt.Body.Accept(a)
}

func (a *Analyzer) VisitMatchStmt(stmt *domain.MatchStmt) error {
	if err := stmt.Subject.Accept(a); err != nil {
		return err
	}
	sawWildcard := false
	for _, arm := range stmt.Arms {
		if arm.IsWildcard {
			sawWildcard = true
			if err := arm.Body.Accept(a); err != nil {
				return err
			}
			continue
		}
		if sawWildcard {
			a.report(domain.SyntaxError, domain.E0006InvalidSyntax,
				"wildcard arm '_' must be the last arm in a match", stmt.GetLocation(), nil)
		}
		if err := arm.Pattern.Accept(a); err != nil {
			return err
		}
		if lit, ok := arm.Pattern.(*domain.LiteralExpr); ok {
			if _, isFloat := lit.Value.(float64); isFloat {
				a.warn(domain.W002FloatMatchPattern,
					"floating point equality in match is exact; consider a range check", lit.GetLocation())
			}
		}
		if err := arm.Body.Accept(a); err != nil {
			return err
		}
	}
	return nil
}

func (a *Analyzer) VisitReturnStmt(stmt *domain.ReturnStmt) error {
	a.hasReturn = true
	if a.currentFunction == nil {
		a.report(domain.SemanticError, domain.E0006InvalidSyntax,
			"return statement outside function", stmt.GetLocation(), nil)
		return nil
	}
	expected := a.currentFunction.ReturnType
	if stmt.Value == nil {
		if expected != nil && expected.String() != "void" {
			a.report(domain.TypeCheckError, domain.E115ReturnMismatch,
				fmt.Sprintf("function '%s' expects a return value of type %s", a.currentFunction.Name, expected.String()),
				stmt.GetLocation(), nil)
		}
		return nil
	}
	if err := stmt.Value.Accept(a); err != nil {
		return err
	}
	if expected != nil && !domain.IsCompatible(expected, stmt.Value.GetType()) {
		a.report(domain.TypeCheckError, domain.E115ReturnMismatch,
			fmt.Sprintf("cannot return %s from function expecting %s", stmt.Value.GetType().String(), expected.String()),
			stmt.GetLocation(), nil)
	}
	return nil
}

func (a *Analyzer) VisitBreakStmt(stmt *domain.BreakStmt) error {
	if a.loopDepth == 0 {
		a.report(domain.SemanticError, domain.E0006InvalidSyntax, "'break' outside a loop", stmt.GetLocation(), nil)
	}
	return nil
}

func (a *Analyzer) VisitContinueStmt(stmt *domain.ContinueStmt) error {
	if a.loopDepth == 0 {
		a.report(domain.SemanticError, domain.E0006InvalidSyntax, "'continue' outside a loop", stmt.GetLocation(), nil)
	}
	return nil
}

func (a *Analyzer) VisitExprStmt(stmt *domain.ExprStmt) error {
	return stmt.Expression.Accept(a)
}

// --- Expressions ---

func (a *Analyzer) VisitLiteralExpr(expr *domain.LiteralExpr) error {
	expr.SetType(inferLiteralDefaultType(expr.Value))
	return nil
}

func (a *Analyzer) VisitIdentifierExpr(expr *domain.IdentifierExpr) error {
	if expr.Name == "this" {
		if a.currentStruct == nil {
			a.report(domain.SemanticError, domain.E0006InvalidSyntax, "'this' used outside a method", expr.GetLocation(), nil)
			expr.SetType(domain.NewUnknownType())
			return nil
		}
		expr.SetType(&domain.PointerType{Target: a.currentStruct, TargetName: a.currentStruct.Name})
		return nil
	}
	sym, ok := a.lookupVar(expr.Name, expr.GetLocation())
	if !ok {
		expr.SetType(domain.NewUnknownType())
		return nil
	}
	if sym.Kind == interfaces.VariableSymbol && !sym.IsInitialized {
		a.warn(domain.W001PossiblyNoReturn, fmt.Sprintf("'%s' used before being initialized", expr.Name), expr.GetLocation())
	}
	expr.SetType(sym.ResolvedType)
	return nil
}

func (a *Analyzer) VisitBinaryExpr(expr *domain.BinaryExpr) error {
	if err := expr.Left.Accept(a); err != nil {
		return err
	}
	if err := expr.Right.Accept(a); err != nil {
		return err
	}
	left, right := expr.Left.GetType(), expr.Right.GetType()
	if !domain.CanApplyBinaryOperator(expr.Operator, left, right) {
		a.report(domain.TypeCheckError, domain.E109IncompatibleGeneric,
			fmt.Sprintf("cannot apply operator '%s' to %s and %s", expr.Operator.String(), left.String(), right.String()),
			expr.GetLocation(), nil)
		expr.SetType(domain.NewUnknownType())
		return nil
	}
	expr.SetType(domain.ResultTypeOfBinary(expr.Operator, left, right))
	return nil
}

func (a *Analyzer) VisitUnaryExpr(expr *domain.UnaryExpr) error {
	if err := expr.Operand.Accept(a); err != nil {
		return err
	}
	operandType := expr.Operand.GetType()
	switch expr.Operator {
	case domain.AddrOf:
		expr.SetType(&domain.PointerType{Target: operandType})
		return nil
	case domain.Deref:
		if pt, ok := operandType.(*domain.PointerType); ok {
			expr.SetType(pt.Target)
		} else {
			a.report(domain.TypeCheckError, domain.E109IncompatibleGeneric,
				fmt.Sprintf("cannot dereference non-pointer type %s", operandType.String()), expr.GetLocation(), nil)
			expr.SetType(domain.NewUnknownType())
		}
		return nil
	}
	if !domain.CanApplyUnaryOperator(expr.Operator, operandType) {
		a.report(domain.TypeCheckError, domain.E109IncompatibleGeneric,
			fmt.Sprintf("cannot apply operator '%s' to %s", expr.Operator.String(), operandType.String()), expr.GetLocation(), nil)
		expr.SetType(domain.NewUnknownType())
		return nil
	}
	expr.SetType(operandType)
	return nil
}

func (a *Analyzer) VisitCallExpr(expr *domain.CallExpr) error {
	for _, arg := range expr.Args {
		if err := arg.Accept(a); err != nil {
			return err
		}
	}

	if expr.FunctionName == "print" || expr.FunctionName == "println" || expr.FunctionName == "format" {
		if len(expr.Args) == 0 {
			a.report(domain.SemanticError, domain.E0006InvalidSyntax,
				fmt.Sprintf("'%s' requires at least one argument", expr.FunctionName), expr.GetLocation(), nil)
		}
		expr.SetType(domain.NewVoidType())
		if expr.FunctionName == "format" {
			expr.SetType(domain.NewStringType())
		}
		return nil
	}
	if overloadedBuiltins[expr.FunctionName] {
		return a.resolveOverloadedBuiltin(expr)
	}

	sym, ok := a.symbolTable.LookupSymbol(expr.FunctionName)
	if !ok {
		a.report(domain.SemanticError, domain.E0005FunctionNotFound,
			fmt.Sprintf("undefined function '%s'", expr.FunctionName), expr.GetLocation(), a.suggestionsFor(expr.FunctionName))
		expr.SetType(domain.NewUnknownType())
		return nil
	}
	funcType, ok := sym.ResolvedType.(*domain.FunctionType)
	if !ok {
		a.report(domain.TypeCheckError, domain.E109IncompatibleGeneric,
			fmt.Sprintf("'%s' is not callable", expr.FunctionName), expr.GetLocation(), nil)
		expr.SetType(domain.NewUnknownType())
		return nil
	}
	a.checkArgs(expr.FunctionName, funcType, expr.Args, expr.GetLocation())
	expr.SetType(funcType.ReturnType)
	return nil
}

// resolveOverloadedBuiltin implements SPEC_FULL.md's Q2 resolution:
// to_string/to_int resolve to an internal per-type signature chosen by the
// argument's inferred type, never true C-variadic.
func (a *Analyzer) resolveOverloadedBuiltin(expr *domain.CallExpr) error {
	if len(expr.Args) != 1 {
		a.report(domain.SemanticError, domain.E0006InvalidSyntax,
			fmt.Sprintf("'%s' takes exactly one argument", expr.FunctionName), expr.GetLocation(), nil)
		expr.SetType(domain.NewUnknownType())
		return nil
	}
	argType := expr.Args[0].GetType()
	switch expr.FunctionName {
	case "to_string":
		switch argType.String() {
		case "int", "float", "double", "bool", "str":
			expr.SetType(domain.NewStringType())
		default:
			a.report(domain.TypeCheckError, domain.E0005FunctionNotFound,
				fmt.Sprintf("no 'to_string' overload for %s", argType.String()), expr.GetLocation(), nil)
			expr.SetType(domain.NewUnknownType())
		}
	case "to_int":
		switch argType.String() {
		case "int", "float", "double", "bool", "str":
			expr.SetType(domain.NewIntType())
		default:
			a.report(domain.TypeCheckError, domain.E0005FunctionNotFound,
				fmt.Sprintf("no 'to_int' overload for %s", argType.String()), expr.GetLocation(), nil)
			expr.SetType(domain.NewUnknownType())
		}
	}
	return nil
}

func (a *Analyzer) checkArgs(name string, funcType *domain.FunctionType, args []domain.Expression, loc domain.Span) {
	if !funcType.IsVariadic && len(args) != len(funcType.ParameterTypes) {
		a.report(domain.TypeCheckError, domain.E118ParamMismatch,
			fmt.Sprintf("'%s' expects %d argument(s), got %d", name, len(funcType.ParameterTypes), len(args)), loc, nil)
	}
	for i, arg := range args {
		if i >= len(funcType.ParameterTypes) {
			break
		}
		if !domain.IsCompatible(funcType.ParameterTypes[i], arg.GetType()) {
			a.report(domain.TypeCheckError, domain.E118ParamMismatch,
				fmt.Sprintf("argument %d to '%s': cannot pass %s for parameter of type %s",
					i+1, name, arg.GetType().String(), funcType.ParameterTypes[i].String()), arg.GetLocation(), nil)
		}
	}
}

func (a *Analyzer) VisitMethodCallExpr(expr *domain.MethodCallExpr) error {
	if err := expr.Object.Accept(a); err != nil {
		return err
	}
	for _, arg := range expr.Args {
		if err := arg.Accept(a); err != nil {
			return err
		}
	}
	structType := a.structTypeOf(expr.Object.GetType())
	if structType == nil {
		a.report(domain.TypeCheckError, domain.E109IncompatibleGeneric,
			fmt.Sprintf("cannot call method '%s' on non-struct type %s", expr.Method, expr.Object.GetType().String()),
			expr.GetLocation(), nil)
		expr.SetType(domain.NewUnknownType())
		return nil
	}
	sym, ok := a.findMethod(structType.Name, expr.Method)
	if !ok {
		a.report(domain.SemanticError, domain.E0005FunctionNotFound,
			fmt.Sprintf("struct '%s' has no method '%s'", structType.Name, expr.Method), expr.GetLocation(),
			a.suggestionsFor(expr.Method))
		expr.SetType(domain.NewUnknownType())
		return nil
	}
	funcType := sym.ResolvedType.(*domain.FunctionType)
	a.checkArgs(expr.Method, funcType, expr.Args, expr.GetLocation())
	expr.SetType(funcType.ReturnType)
	return nil
}

func (a *Analyzer) VisitStaticCallExpr(expr *domain.StaticCallExpr) error {
	for _, arg := range expr.Args {
		if err := arg.Accept(a); err != nil {
			return err
		}
	}
	sym, ok := a.findMethod(expr.TypeName, expr.Method)
	if !ok {
		a.report(domain.SemanticError, domain.E0005FunctionNotFound,
			fmt.Sprintf("struct '%s' has no method '%s'", expr.TypeName, expr.Method), expr.GetLocation(),
			a.suggestionsFor(expr.Method))
		expr.SetType(domain.NewUnknownType())
		return nil
	}
	funcType := sym.ResolvedType.(*domain.FunctionType)
	a.checkArgs(expr.Method, funcType, expr.Args, expr.GetLocation())
	expr.SetType(funcType.ReturnType)
	return nil
}

func (a *Analyzer) structTypeOf(t domain.Type) *domain.StructType {
	switch tt := t.(type) {
	case *domain.StructType:
		return tt
	case *domain.PointerType:
		return a.structTypeOf(tt.Target)
	}
	return nil
}

func (a *Analyzer) resolveMemberType(objectType domain.Type, member string, loc domain.Span) domain.Type {
	structType := a.structTypeOf(objectType)
	if structType == nil {
		a.report(domain.TypeCheckError, domain.E109IncompatibleGeneric,
			fmt.Sprintf("cannot access member '%s' of non-struct type %s", member, objectType.String()), loc, nil)
		return nil
	}
	fieldType, ok := structType.GetField(member)
	if !ok {
		a.report(domain.SemanticError, domain.E124FieldMismatch,
			fmt.Sprintf("struct '%s' has no field '%s'", structType.Name, member), loc,
			suggestFrom(member, structType.AllFieldNames()))
		return nil
	}
	return fieldType
}

func suggestFrom(name string, candidates []string) []string {
	var out []string
	for _, c := range candidates {
		if levenshtein(name, c) <= 3 {
			out = append(out, c)
		}
	}
	return out
}

func (a *Analyzer) VisitIndexExpr(expr *domain.IndexExpr) error {
	if err := expr.Object.Accept(a); err != nil {
		return err
	}
	if err := expr.Index.Accept(a); err != nil {
		return err
	}
	switch objType := expr.Object.GetType().(type) {
	case *domain.ArrayType:
		if objType.ElementType != nil {
			expr.SetType(objType.ElementType)
		} else {
			expr.SetType(domain.NewUnknownType())
		}
	case *domain.MapType:
		expr.SetType(objType.ValueType)
	default:
		a.report(domain.TypeCheckError, domain.E109IncompatibleGeneric,
			fmt.Sprintf("cannot index non-array/map type %s", expr.Object.GetType().String()), expr.GetLocation(), nil)
		expr.SetType(domain.NewUnknownType())
		return nil
	}
	if !domain.IsNumericType(expr.Index.GetType()) {
		if _, isMap := expr.Object.GetType().(*domain.MapType); !isMap {
			a.report(domain.TypeCheckError, domain.E109IncompatibleGeneric,
				fmt.Sprintf("array index must be int, got %s", expr.Index.GetType().String()), expr.Index.GetLocation(), nil)
		}
	}
	return nil
}

func (a *Analyzer) VisitMemberExpr(expr *domain.MemberExpr) error {
	if err := expr.Object.Accept(a); err != nil {
		return err
	}
	if fieldType := a.resolveMemberType(expr.Object.GetType(), expr.Member, expr.GetLocation()); fieldType != nil {
		expr.SetType(fieldType)
	} else {
		expr.SetType(domain.NewUnknownType())
	}
	return nil
}

func (a *Analyzer) VisitArrayLiteralExpr(expr *domain.ArrayLiteralExpr) error {
	var elemType domain.Type
	for i, el := range expr.Elements {
		if err := el.Accept(a); err != nil {
			return err
		}
		if i == 0 {
			elemType = el.GetType()
			continue
		}
		if !elemType.Equals(el.GetType()) && !domain.IsCompatible(elemType, el.GetType()) {
			a.report(domain.TypeCheckError, domain.E109IncompatibleGeneric,
				fmt.Sprintf("array literal requires homogeneous element types, found %s and %s", elemType.String(), el.GetType().String()),
				el.GetLocation(), nil)
		}
	}
	if elemType == nil {
		elemType = domain.NewUnknownType()
	}
	expr.SetType(&domain.ArrayType{ElementType: elemType, Size: len(expr.Elements)})
	return nil
}

func (a *Analyzer) VisitMapLiteralExpr(expr *domain.MapLiteralExpr) error {
	var keyType, valType domain.Type
	for i := range expr.Keys {
		if err := expr.Keys[i].Accept(a); err != nil {
			return err
		}
		if err := expr.Values[i].Accept(a); err != nil {
			return err
		}
		if i == 0 {
			keyType, valType = expr.Keys[i].GetType(), expr.Values[i].GetType()
		}
	}
	if keyType == nil {
		keyType, valType = domain.NewUnknownType(), domain.NewUnknownType()
	}
	expr.SetType(&domain.MapType{KeyType: keyType, ValueType: valType})
	return nil
}

func (a *Analyzer) VisitRangeExpr(expr *domain.RangeExpr) error {
	if err := expr.Start.Accept(a); err != nil {
		return err
	}
	if err := expr.End.Accept(a); err != nil {
		return err
	}
	if !domain.IsNumericType(expr.Start.GetType()) || !domain.IsNumericType(expr.End.GetType()) {
		a.report(domain.TypeCheckError, domain.E109IncompatibleGeneric,
			"range bounds must be numeric", expr.GetLocation(), nil)
	}
	expr.SetType(domain.NewIntType())
	return nil
}

func (a *Analyzer) VisitStructLiteralExpr(expr *domain.StructLiteralExpr) error {
	structType, err := a.resolveStructType(expr.StructName)
	if err != nil {
		a.report(domain.SemanticError, domain.E0005FunctionNotFound,
			fmt.Sprintf("undefined struct '%s'", expr.StructName), expr.GetLocation(), a.suggestionsFor(expr.StructName))
		expr.SetType(domain.NewUnknownType())
		return nil
	}
	for _, name := range expr.FieldOrder {
		val := expr.Fields[name]
		if err := val.Accept(a); err != nil {
			return err
		}
		fieldType, ok := structType.GetField(name)
		if !ok {
			a.report(domain.SemanticError, domain.E124FieldMismatch,
				fmt.Sprintf("struct '%s' has no field '%s'", expr.StructName, name), val.GetLocation(),
				suggestFrom(name, structType.AllFieldNames()))
			continue
		}
		if !domain.IsCompatible(fieldType, val.GetType()) {
			a.report(domain.TypeCheckError, domain.E124FieldMismatch,
				fmt.Sprintf("field '%s' expects %s, got %s", name, fieldType.String(), val.GetType().String()),
				val.GetLocation(), nil)
		}
	}
	for _, name := range structType.AllFieldNames() {
		if _, provided := expr.Fields[name]; !provided {
			a.warn(domain.W001PossiblyNoReturn, fmt.Sprintf("struct literal for '%s' is missing field '%s'", expr.StructName, name), expr.GetLocation())
		}
	}
	expr.SetType(structType)
	return nil
}

func (a *Analyzer) VisitCastExpr(expr *domain.CastExpr) error {
	if err := expr.Operand.Accept(a); err != nil {
		return err
	}
	expr.SetType(a.resolveTypeName(expr.TargetTypeName))
	return nil
}

func (a *Analyzer) VisitAddrOfExpr(expr *domain.AddrOfExpr) error {
	if err := expr.Operand.Accept(a); err != nil {
		return err
	}
	expr.SetType(&domain.PointerType{Target: expr.Operand.GetType()})
	return nil
}

func (a *Analyzer) VisitDerefExpr(expr *domain.DerefExpr) error {
	if err := expr.Operand.Accept(a); err != nil {
		return err
	}
	if pt, ok := expr.Operand.GetType().(*domain.PointerType); ok {
		expr.SetType(pt.Target)
	} else {
		a.report(domain.TypeCheckError, domain.E109IncompatibleGeneric,
			fmt.Sprintf("cannot dereference non-pointer type %s", expr.Operand.GetType().String()), expr.GetLocation(), nil)
		expr.SetType(domain.NewUnknownType())
	}
	return nil
}
