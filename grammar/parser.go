// Package grammar implements Quark's hand-written recursive-descent,
// Pratt-precedence parser (spec §4.D). The teacher's yacc-generated
// parser is not reused here — see DESIGN.md for why.
package grammar

import (
	"fmt"
	"strings"

	"github.com/quarklang/quarkc/internal/domain"
	"github.com/quarklang/quarkc/internal/interfaces"
)

// precedence levels, spec §4.D's table.
const (
	precLowest = 0
	precOr     = 5
	precAnd    = 10
	precRange  = 12
	precEq     = 15
	precRel    = 17
	precAdd    = 20
	precMul    = 30
)

var binaryPrecedence = map[interfaces.TokenType]int{
	interfaces.TokenOrOr:   precOr,
	interfaces.TokenAndAnd: precAnd,
	interfaces.TokenDotDot: precRange,
	interfaces.TokenEqEq:   precEq,
	interfaces.TokenNotEq:  precEq,
	interfaces.TokenLt:     precRel,
	interfaces.TokenGt:     precRel,
	interfaces.TokenLe:     precRel,
	interfaces.TokenGe:     precRel,
	interfaces.TokenPlus:   precAdd,
	interfaces.TokenMinus:  precAdd,
	interfaces.TokenStar:   precMul,
	interfaces.TokenSlash:  precMul,
	interfaces.TokenPercent: precMul,
}

var binaryOps = map[interfaces.TokenType]domain.BinaryOperator{
	interfaces.TokenOrOr:    domain.Or,
	interfaces.TokenAndAnd:  domain.And,
	interfaces.TokenDotDot:  domain.Range,
	interfaces.TokenEqEq:    domain.Eq,
	interfaces.TokenNotEq:   domain.Ne,
	interfaces.TokenLt:      domain.Lt,
	interfaces.TokenGt:      domain.Gt,
	interfaces.TokenLe:      domain.Le,
	interfaces.TokenGe:      domain.Ge,
	interfaces.TokenPlus:    domain.Add,
	interfaces.TokenMinus:   domain.Sub,
	interfaces.TokenStar:    domain.Mul,
	interfaces.TokenSlash:   domain.Div,
	interfaces.TokenPercent: domain.Mod,
}

var typeTokens = map[interfaces.TokenType]string{
	interfaces.TokenIntType:    "int",
	interfaces.TokenStrType:    "str",
	interfaces.TokenBoolType:   "bool",
	interfaces.TokenFloatType:  "float",
	interfaces.TokenDoubleType: "double",
	interfaces.TokenVoidType:   "void",
}

// parseError is a sentinel carrying the error code heuristic spec §4.D
// describes; Parser.Parse translates it into a domain.CompilerError.
type parseError struct {
	code    string
	message string
	loc     domain.SourceLocation
	length  int
}

func (e *parseError) Error() string { return e.message }

// QuarkParser implements interfaces.Parser.
type QuarkParser struct {
	lexer    interfaces.Lexer
	current  interfaces.Token
	reporter domain.ErrorReporter
	resolver interfaces.ImportResolver
	included map[string]bool
	filename string
}

func NewParser() *QuarkParser {
	return &QuarkParser{included: make(map[string]bool)}
}

func (p *QuarkParser) SetErrorReporter(reporter domain.ErrorReporter) { p.reporter = reporter }
func (p *QuarkParser) SetImportResolver(resolver interfaces.ImportResolver) {
	p.resolver = resolver
}

// Parse consumes lexer's full token stream and returns the top-level
// Program node. Parse errors are reported through the ErrorReporter and
// also returned so the driver can short-circuit later phases.
func (p *QuarkParser) Parse(lexer interfaces.Lexer) (program *domain.Program, err error) {
	p.lexer = lexer
	defer func() {
		if r := recover(); r != nil {
			pe, ok := r.(*parseError)
			if !ok {
				panic(r)
			}
			p.report(pe)
			err = pe
		}
	}()

	if err := p.advance(); err != nil {
		return nil, err
	}

	var statements []domain.Statement
	for p.current.Type != interfaces.TokenEOF {
		statements = append(statements, p.parseTopLevelStatement())
	}
	return &domain.Program{Statements: statements}, nil
}

func (p *QuarkParser) report(pe *parseError) {
	if p.reporter == nil {
		return
	}
	p.reporter.ReportError(domain.CompilerError{
		Type:     domain.SyntaxError,
		Message:  pe.message,
		Location: pe.loc,
		Length:   pe.length,
		Code:     pe.code,
	})
}

func (p *QuarkParser) advance() error {
	tok, err := p.lexer.NextToken()
	if err != nil {
		return err
	}
	p.current = tok
	return nil
}

func (p *QuarkParser) fail(code, message string) {
	panic(&parseError{code: code, message: message, loc: p.current.Location, length: max1(p.current.Length)})
}

func max1(n int) int {
	if n < 1 {
		return 1
	}
	return n
}

func (p *QuarkParser) expect(t interfaces.TokenType, tokenName string) interfaces.Token {
	if p.current.Type != t {
		code := domain.E0001UnexpectedToken
		switch t {
		case interfaces.TokenSemicolon:
			code = domain.E0002MissingSemicolon
		case interfaces.TokenLBrace, interfaces.TokenRBrace:
			code = domain.E0007MissingBrace
		}
		p.fail(code, fmt.Sprintf("expected %s, found %q", tokenName, p.current.Value))
	}
	tok := p.current
	if err := p.advance(); err != nil {
		p.fail(domain.E0001UnexpectedToken, err.Error())
	}
	return tok
}

func (p *QuarkParser) at(t interfaces.TokenType) bool { return p.current.Type == t }

func (p *QuarkParser) accept(t interfaces.TokenType) bool {
	if p.at(t) {
		p.advance()
		return true
	}
	return false
}

// --- Top-level statements ---

func (p *QuarkParser) parseTopLevelStatement() domain.Statement {
	switch p.current.Type {
	case interfaces.TokenImport:
		return p.parseImport()
	case interfaces.TokenStruct, interfaces.TokenData:
		return p.parseStructDecl()
	case interfaces.TokenImpl:
		return p.parseImplBlock()
	case interfaces.TokenExtern:
		return p.parseExtern()
	default:
		return p.parseStatement()
	}
}

func (p *QuarkParser) parseImport() domain.Statement {
	loc := p.current.Location
	p.advance() // 'import'

	var paths []string
	if p.accept(interfaces.TokenLBrace) {
		for !p.at(interfaces.TokenRBrace) {
			tok := p.expect(interfaces.TokenStringLiteral, "string literal")
			paths = append(paths, tok.Value)
			if !p.accept(interfaces.TokenComma) {
				break
			}
		}
		p.expect(interfaces.TokenRBrace, "'}'")
	} else {
		tok := p.expect(interfaces.TokenStringLiteral, "string literal")
		paths = append(paths, tok.Value)
	}
	p.accept(interfaces.TokenSemicolon)

	block := &domain.BlockStmt{BaseNode: domain.BaseNode{Location: domain.Span{Start: loc}}}
	for _, path := range paths {
		if p.included[path] {
			continue
		}
		p.included[path] = true
		block.Statements = append(block.Statements, p.parseImportedFile(path, loc)...)
	}
	return &domain.IncludeStmt{BaseNode: domain.BaseNode{Location: domain.Span{Start: loc}}, Filename: strings.Join(paths, ","), Statements: block.Statements}
}

// parseImportedFile resolves path through the ImportResolver and feeds it
// through a fresh lexer+parser pair sharing this parser's error reporter
// and included-set, per spec §4.D "Imports".
func (p *QuarkParser) parseImportedFile(path string, loc domain.SourceLocation) []domain.Statement {
	if p.resolver == nil {
		p.fail(domain.E0001UnexpectedToken, "imports are not supported in this context")
	}
	content, err := p.resolver.Resolve(path)
	if err != nil {
		p.fail(domain.E0001UnexpectedToken, fmt.Sprintf("cannot resolve import %q: %v", path, err))
	}
	childLexer := p.newLexerFn()
	if err := childLexer.SetInput(path, strings.NewReader(content)); err != nil {
		p.fail(domain.E0001UnexpectedToken, fmt.Sprintf("cannot lex import %q: %v", path, err))
	}
	child := &QuarkParser{reporter: p.reporter, resolver: p.resolver, included: p.included}
	prog, perr := child.Parse(childLexer)
	if perr != nil {
		p.fail(domain.E0001UnexpectedToken, fmt.Sprintf("errors in import %q", path))
	}
	return prog.Statements
}

// defaultNewLexer is set through SetLexerFactory; the application factory
// does not set it, so until something does, newLexerFn panics when an
// import is parsed.
var defaultNewLexer func() interfaces.Lexer

func (p *QuarkParser) newLexerFn() interfaces.Lexer {
	if defaultNewLexer == nil {
		panic(&parseError{code: domain.E0001UnexpectedToken, message: "no lexer factory registered for imports"})
	}
	return defaultNewLexer()
}

// SetLexerFactory lets the application wiring supply the lexer
// constructor used to recurse into imports without creating an import
// cycle between grammar and lexer.
func SetLexerFactory(factory func() interfaces.Lexer) { defaultNewLexer = factory }

// --- Statements ---

func (p *QuarkParser) parseStatement() domain.Statement {
	switch p.current.Type {
	case interfaces.TokenIf:
		return p.parseIf()
	case interfaces.TokenWhile:
		return p.parseWhile()
	case interfaces.TokenFor:
		return p.parseFor()
	case interfaces.TokenMatch:
		return p.parseMatch()
	case interfaces.TokenRet:
		return p.parseReturn()
	case interfaces.TokenBreak:
		loc := p.current.Location
		p.advance()
		p.accept(interfaces.TokenSemicolon)
		return &domain.BreakStmt{BaseNode: domain.BaseNode{Location: domain.Span{Start: loc}}}
	case interfaces.TokenContinue:
		loc := p.current.Location
		p.advance()
		p.accept(interfaces.TokenSemicolon)
		return &domain.ContinueStmt{BaseNode: domain.BaseNode{Location: domain.Span{Start: loc}}}
	case interfaces.TokenLBrace:
		return p.parseBlock()
	case interfaces.TokenVar:
		return p.parseVarDecl()
	default:
		return p.parseExprOrAssignOrFuncDecl()
	}
}

func (p *QuarkParser) parseBlock() *domain.BlockStmt {
	loc := p.current.Location
	p.expect(interfaces.TokenLBrace, "'{'")
	var stmts []domain.Statement
	for !p.at(interfaces.TokenRBrace) && !p.at(interfaces.TokenEOF) {
		stmts = append(stmts, p.parseStatement())
	}
	p.expect(interfaces.TokenRBrace, "'}'")
	return &domain.BlockStmt{BaseNode: domain.BaseNode{Location: domain.Span{Start: loc}}, Statements: stmts}
}

// parseBlockOrSingle handles match-arm bodies, which may be a single
// statement or a brace block (spec §4.D "Match").
func (p *QuarkParser) parseBlockOrSingle() domain.Statement {
	if p.at(interfaces.TokenLBrace) {
		return p.parseBlock()
	}
	return p.parseStatement()
}

func (p *QuarkParser) parseVarDecl() domain.Statement {
	loc := p.current.Location
	p.advance() // 'var'
	name := p.expect(interfaces.TokenIdentifier, "identifier").Value
	typeName := ""
	if p.accept(interfaces.TokenColon) {
		typeName = p.parseTypeName()
	}
	p.expect(interfaces.TokenAssign, "'='")
	init := p.parseExpression(precLowest)
	p.expect(interfaces.TokenSemicolon, "';'")
	return &domain.VarDeclStmt{BaseNode: domain.BaseNode{Location: domain.Span{Start: loc}}, Name: name, TypeName: typeName, Initializer: init}
}

func (p *QuarkParser) parseTypeName() string {
	if name, ok := typeTokens[p.current.Type]; ok {
		p.advance()
		return p.parseTypeSuffix(name)
	}
	if p.at(interfaces.TokenIdentifier) {
		name := p.current.Value
		p.advance()
		return p.parseTypeSuffix(name)
	}
	if p.accept(interfaces.TokenAmp) || p.accept(interfaces.TokenStar) {
		return "*" + p.parseTypeName()
	}
	p.fail(domain.E0001UnexpectedToken, "expected a type name")
	return ""
}

// parseTypeSuffix consumes any `[]` or `*` depth markers following a base
// type name, preserving them textually (spec §3 TypeInfo "pointerTypeName").
func (p *QuarkParser) parseTypeSuffix(base string) string {
	for {
		if p.accept(interfaces.TokenLBracket) {
			p.expect(interfaces.TokenRBracket, "']'")
			base += "[]"
			continue
		}
		if p.accept(interfaces.TokenStar) {
			base += "*"
			continue
		}
		break
	}
	return base
}

// parseExprOrAssignOrFuncDecl handles the ambiguous leading-identifier
// cases spec §4.D describes: a typed declaration, a function definition,
// a plain assignment, or a bare expression statement. A type keyword
// always starts a declaration; a bare identifier only does when the
// single token of lookahead shows a second identifier following it
// (`Type name`), which is the only shape a typed declaration or function
// definition can take — otherwise it is the start of an expression.
func (p *QuarkParser) parseExprOrAssignOrFuncDecl() domain.Statement {
	if _, isType := typeTokens[p.current.Type]; isType {
		return p.parseFunctionOrTypedDecl()
	}
	if p.at(interfaces.TokenIdentifier) {
		if next, err := p.lexer.Peek(); err == nil && next.Type == interfaces.TokenIdentifier {
			return p.parseFunctionOrTypedDecl()
		}
	}
	return p.parseAssignOrExprStmt()
}

// parseFunctionOrTypedDecl parses `Type name (` as a function definition
// and `Type name = expr;` / `Type name;` as a typed variable declaration.
func (p *QuarkParser) parseFunctionOrTypedDecl() domain.Statement {
	loc := p.current.Location
	typeName := p.parseTypeName()
	name := p.expect(interfaces.TokenIdentifier, "identifier").Value

	if p.at(interfaces.TokenLParen) {
		return p.finishFunctionDecl(loc, typeName, name, false, "")
	}

	var init domain.Expression
	if p.accept(interfaces.TokenAssign) {
		init = p.parseExpression(precLowest)
	}
	p.expect(interfaces.TokenSemicolon, "';'")
	return &domain.VarDeclStmt{BaseNode: domain.BaseNode{Location: domain.Span{Start: loc}}, Name: name, TypeName: typeName, Initializer: init}
}

func (p *QuarkParser) finishFunctionDecl(loc domain.SourceLocation, returnType, name string, isMethod bool, receiver string) *domain.FunctionDecl {
	params, variadic := p.parseParamList()
	body := p.parseBlock()
	return &domain.FunctionDecl{
		BaseNode:       domain.BaseNode{Location: domain.Span{Start: loc}},
		Name:           name,
		Parameters:     params,
		ReturnTypeName: returnType,
		Body:           body,
		IsVariadic:     variadic,
		IsMethod:       isMethod,
		ReceiverStruct: receiver,
	}
}

// parseParamList parses `(name: Type, ...)`, the parameter convention
// shared by function definitions, methods, and impl-block methods
// (grounded on original_source/src/parser.cpp's parseStructDef/parseImpl).
func (p *QuarkParser) parseParamList() ([]domain.Parameter, bool) {
	p.expect(interfaces.TokenLParen, "'('")
	var params []domain.Parameter
	variadic := false
	for !p.at(interfaces.TokenRParen) {
		if p.accept(interfaces.TokenEllipsis) {
			variadic = true
			break
		}
		paramName := p.expect(interfaces.TokenIdentifier, "identifier").Value
		p.expect(interfaces.TokenColon, "':'")
		paramType := p.parseTypeName()
		params = append(params, domain.Parameter{Name: paramName, TypeName: paramType})
		if !p.accept(interfaces.TokenComma) {
			break
		}
	}
	p.expect(interfaces.TokenRParen, "')'")
	return params, variadic
}

func (p *QuarkParser) parseAssignOrExprStmt() domain.Statement {
	expr := p.parseExpression(precLowest)
	return p.finishAssignOrExprStmt(expr)
}

var compoundAssignOps = map[interfaces.TokenType]domain.BinaryOperator{
	interfaces.TokenPlusEq:    domain.Add,
	interfaces.TokenMinusEq:   domain.Sub,
	interfaces.TokenStarEq:    domain.Mul,
	interfaces.TokenSlashEq:   domain.Div,
	interfaces.TokenPercentEq: domain.Mod,
}

func (p *QuarkParser) finishAssignOrExprStmt(expr domain.Expression) domain.Statement {
	loc := expr.GetLocation().Start

	if op, isCompound := compoundAssignOps[p.current.Type]; isCompound {
		p.advance()
		rhs := p.parseExpression(precLowest)
		p.expect(interfaces.TokenSemicolon, "';'")
		combined := &domain.BinaryExpr{BaseNode: domain.BaseNode{Location: domain.Span{Start: loc}}, Left: expr, Operator: op, Right: rhs}
		return p.buildAssignFromTarget(loc, expr, combined)
	}

	if p.accept(interfaces.TokenAssign) {
		rhs := p.parseExpression(precLowest)
		p.expect(interfaces.TokenSemicolon, "';'")
		return p.buildAssignFromTarget(loc, expr, rhs)
	}

	p.expect(interfaces.TokenSemicolon, "';'")
	return &domain.ExprStmt{BaseNode: domain.BaseNode{Location: domain.Span{Start: loc}}, Expression: expr}
}

func (p *QuarkParser) buildAssignFromTarget(loc domain.SourceLocation, target domain.Expression, value domain.Expression) domain.Statement {
	switch t := target.(type) {
	case *domain.IdentifierExpr:
		return &domain.AssignStmt{BaseNode: domain.BaseNode{Location: domain.Span{Start: loc}}, Name: t.Name, Value: value}
	case *domain.MemberExpr:
		return &domain.MemberAssignStmt{BaseNode: domain.BaseNode{Location: domain.Span{Start: loc}}, Object: t.Object, Member: t.Member, Value: value}
	case *domain.IndexExpr:
		return &domain.ArrayAssignStmt{BaseNode: domain.BaseNode{Location: domain.Span{Start: loc}}, Object: t.Object, Index: t.Index, Value: value}
	case *domain.DerefExpr:
		return &domain.DerefAssignStmt{BaseNode: domain.BaseNode{Location: domain.Span{Start: loc}}, Pointer: t.Operand, Value: value}
	default:
		p.fail(domain.E0009InvalidAssignment, "invalid assignment target")
		return nil
	}
}

func (p *QuarkParser) parseIf() domain.Statement {
	loc := p.current.Location
	p.advance() // 'if'
	p.expect(interfaces.TokenLParen, "'('")
	cond := p.parseExpression(precLowest)
	p.expect(interfaces.TokenRParen, "')'")
	then := p.parseBlock()

	stmt := &domain.IfStmt{BaseNode: domain.BaseNode{Location: domain.Span{Start: loc}}, Condition: cond, Then: then}
	for p.at(interfaces.TokenElif) {
		p.advance()
		p.expect(interfaces.TokenLParen, "'('")
		elifCond := p.parseExpression(precLowest)
		p.expect(interfaces.TokenRParen, "')'")
		elifBody := p.parseBlock()
		stmt.Elifs = append(stmt.Elifs, domain.ElifClause{Condition: elifCond, Body: elifBody})
	}
	if p.accept(interfaces.TokenElse) {
		stmt.Else = p.parseBlock()
	}
	return stmt
}

func (p *QuarkParser) parseWhile() domain.Statement {
	loc := p.current.Location
	p.advance() // 'while'
	p.expect(interfaces.TokenLParen, "'('")
	cond := p.parseExpression(precLowest)
	p.expect(interfaces.TokenRParen, "')'")
	body := p.parseBlock()
	return &domain.WhileStmt{BaseNode: domain.BaseNode{Location: domain.Span{Start: loc}}, Condition: cond, Body: body}
}

// parseFor handles both `for (var i in range) {}` and the C-like
// `for (init; cond; incr) {}`, desugaring each into a BlockStmt wrapping a
// VarDeclStmt and a WhileStmt, per spec §4.D "For-loops".
func (p *QuarkParser) parseFor() domain.Statement {
	loc := p.current.Location
	p.advance() // 'for'
	p.expect(interfaces.TokenLParen, "'('")

	if p.at(interfaces.TokenVar) {
		p.advance()
		if p.at(interfaces.TokenIdentifier) {
			name := p.current.Value
			p.advance()
			if p.accept(interfaces.TokenIn) {
				return p.finishForIn(loc, name)
			}
			// not a for-in after all: re-synthesize the `var name ...` tail
			return p.finishForCStyleFromVarName(loc, name)
		}
	}
	return p.finishForCStyle(loc)
}

func (p *QuarkParser) finishForIn(loc domain.SourceLocation, varName string) domain.Statement {
	rangeExpr := p.parseExpression(precLowest)
	p.expect(interfaces.TokenRParen, "')'")
	body := p.parseBlock()

	rng, ok := rangeExpr.(*domain.RangeExpr)
	var start, end domain.Expression
	if ok {
		start, end = rng.Start, rng.End
	} else {
		start = &domain.LiteralExpr{Value: int64(0), Kind: domain.IntType}
		end = rangeExpr
	}

	loopVarDecl := &domain.VarDeclStmt{BaseNode: domain.BaseNode{Location: domain.Span{Start: loc}}, Name: varName, TypeName: "int", Initializer: start}
	cond := &domain.BinaryExpr{Left: &domain.IdentifierExpr{Name: varName}, Operator: domain.Lt, Right: end}
	incr := &domain.AssignStmt{
		Name: varName,
		Value: &domain.BinaryExpr{
			Left:     &domain.IdentifierExpr{Name: varName},
			Operator: domain.Add,
			Right:    &domain.LiteralExpr{Value: int64(1), Kind: domain.IntType},
		},
	}
	whileStmt := &domain.WhileStmt{BaseNode: domain.BaseNode{Location: domain.Span{Start: loc}}, Condition: cond, Body: body, Increment: incr}
	return &domain.BlockStmt{BaseNode: domain.BaseNode{Location: domain.Span{Start: loc}}, Statements: []domain.Statement{loopVarDecl, whileStmt}}
}

func (p *QuarkParser) finishForCStyleFromVarName(loc domain.SourceLocation, varName string) domain.Statement {
	var init domain.Expression
	if p.accept(interfaces.TokenAssign) {
		init = p.parseExpression(precLowest)
	}
	p.expect(interfaces.TokenSemicolon, "';'")
	initDecl := domain.Statement(&domain.VarDeclStmt{BaseNode: domain.BaseNode{Location: domain.Span{Start: loc}}, Name: varName, Initializer: init})
	return p.finishForCStyleRest(loc, initDecl)
}

func (p *QuarkParser) finishForCStyle(loc domain.SourceLocation) domain.Statement {
	var initStmt domain.Statement
	if !p.at(interfaces.TokenSemicolon) {
		initStmt = p.parseStatement() // consumes trailing ';'
	} else {
		p.advance()
	}
	return p.finishForCStyleRest(loc, initStmt)
}

func (p *QuarkParser) finishForCStyleRest(loc domain.SourceLocation, initStmt domain.Statement) domain.Statement {
	var cond domain.Expression
	if !p.at(interfaces.TokenSemicolon) {
		cond = p.parseExpression(precLowest)
	} else {
		cond = &domain.LiteralExpr{Value: true, Kind: domain.BoolType}
	}
	p.expect(interfaces.TokenSemicolon, "';'")

	var incr domain.Statement
	if !p.at(interfaces.TokenRParen) {
		incr = p.parseAssignOrExprStmtNoSemi()
	}
	p.expect(interfaces.TokenRParen, "')'")
	body := p.parseBlock()
	whileStmt := &domain.WhileStmt{BaseNode: domain.BaseNode{Location: domain.Span{Start: loc}}, Condition: cond, Body: body, Increment: incr}

	var stmts []domain.Statement
	if initStmt != nil {
		stmts = append(stmts, initStmt)
	}
	stmts = append(stmts, whileStmt)
	return &domain.BlockStmt{BaseNode: domain.BaseNode{Location: domain.Span{Start: loc}}, Statements: stmts}
}

// parseAssignOrExprStmtNoSemi parses a for-loop increment clause, which
// has no trailing semicolon.
func (p *QuarkParser) parseAssignOrExprStmtNoSemi() domain.Statement {
	expr := p.parseExpression(precLowest)
	loc := expr.GetLocation().Start
	if op, isCompound := compoundAssignOps[p.current.Type]; isCompound {
		p.advance()
		rhs := p.parseExpression(precLowest)
		combined := &domain.BinaryExpr{Left: expr, Operator: op, Right: rhs}
		return p.buildAssignFromTarget(loc, expr, combined)
	}
	if p.accept(interfaces.TokenAssign) {
		rhs := p.parseExpression(precLowest)
		return p.buildAssignFromTarget(loc, expr, rhs)
	}
	return &domain.ExprStmt{BaseNode: domain.BaseNode{Location: domain.Span{Start: loc}}, Expression: expr}
}

func (p *QuarkParser) parseMatch() domain.Statement {
	loc := p.current.Location
	p.advance() // 'match'
	subject := p.parseExpression(precLowest)
	p.expect(interfaces.TokenLBrace, "'{'")

	var arms []domain.MatchArm
	for !p.at(interfaces.TokenRBrace) {
		if p.accept(interfaces.TokenWildcard) {
			p.expect(interfaces.TokenFatArrow, "'=>'")
			body := p.parseBlockOrSingle()
			arms = append(arms, domain.MatchArm{IsWildcard: true, Body: body})
		} else {
			pattern := p.parseExpression(precLowest)
			p.expect(interfaces.TokenFatArrow, "'=>'")
			body := p.parseBlockOrSingle()
			arms = append(arms, domain.MatchArm{Pattern: pattern, Body: body})
		}
		p.accept(interfaces.TokenComma)
	}
	p.expect(interfaces.TokenRBrace, "'}'")
	return &domain.MatchStmt{BaseNode: domain.BaseNode{Location: domain.Span{Start: loc}}, Subject: subject, Arms: arms}
}

func (p *QuarkParser) parseReturn() domain.Statement {
	loc := p.current.Location
	p.advance() // 'ret'
	var value domain.Expression
	if !p.at(interfaces.TokenSemicolon) {
		value = p.parseExpression(precLowest)
	}
	p.expect(interfaces.TokenSemicolon, "';'")
	return &domain.ReturnStmt{BaseNode: domain.BaseNode{Location: domain.Span{Start: loc}}, Value: value}
}

// --- struct / impl / extern ---

// parseStructDecl parses `struct Name [: Parent] { [data { field: Type; ... }] method* }`,
// grounded on original_source/src/parser.cpp's parseStructDef: fields live
// in a nested `data { ... }` block, methods are declared directly in the
// struct body (an optional `extend`/`impl` keyword before the return type
// is tolerated for methods that override a parent's method).
func (p *QuarkParser) parseStructDecl() domain.Statement {
	loc := p.current.Location
	p.advance() // 'struct'
	name := p.expect(interfaces.TokenIdentifier, "identifier").Value
	parent := ""
	if p.accept(interfaces.TokenColon) {
		parent = p.expect(interfaces.TokenIdentifier, "identifier").Value
	}
	p.expect(interfaces.TokenLBrace, "'{'")

	decl := &domain.StructDecl{BaseNode: domain.BaseNode{Location: domain.Span{Start: loc}}, Name: name, ParentName: parent}
	for !p.at(interfaces.TokenRBrace) {
		if p.accept(interfaces.TokenData) {
			p.expect(interfaces.TokenLBrace, "'{'")
			for !p.at(interfaces.TokenRBrace) {
				fieldName := p.expect(interfaces.TokenIdentifier, "identifier").Value
				p.expect(interfaces.TokenColon, "':'")
				fieldType := p.parseTypeName()
				decl.Fields = append(decl.Fields, domain.FieldDecl{Name: fieldName, TypeName: fieldType})
				if !p.accept(interfaces.TokenComma) {
					p.accept(interfaces.TokenSemicolon)
				}
			}
			p.expect(interfaces.TokenRBrace, "'}'")
			continue
		}
		p.accept(interfaces.TokenExtend)
		p.accept(interfaces.TokenImpl)
		methodType := p.parseTypeName()
		methodName := p.expect(interfaces.TokenIdentifier, "identifier").Value
		method := p.finishFunctionDecl(loc, methodType, methodName, true, name)
		decl.Methods = append(decl.Methods, method)
	}
	p.expect(interfaces.TokenRBrace, "'}'")
	return decl
}

// parseImplBlock parses `impl Name { ReturnType method(name: Type, ...) { body } ... }`,
// grounded on original_source/src/parser.cpp's parseImpl.
func (p *QuarkParser) parseImplBlock() domain.Statement {
	loc := p.current.Location
	p.advance() // 'impl'
	structName := p.expect(interfaces.TokenIdentifier, "identifier").Value
	p.expect(interfaces.TokenLBrace, "'{'")

	decl := &domain.ImplBlockDecl{BaseNode: domain.BaseNode{Location: domain.Span{Start: loc}}, StructName: structName}
	for !p.at(interfaces.TokenRBrace) {
		retType := p.parseTypeName()
		methodName := p.expect(interfaces.TokenIdentifier, "identifier").Value
		method := p.finishFunctionDecl(loc, retType, methodName, true, structName)
		decl.Methods = append(decl.Methods, method)
	}
	p.expect(interfaces.TokenRBrace, "'}'")
	return decl
}

// parseExtern handles `extern "C" { <decls> }` blocks (spec §6), with
// `name: Type` parameters matching the rest of the grammar.
func (p *QuarkParser) parseExtern() domain.Statement {
	loc := p.current.Location
	p.advance() // 'extern'
	if p.at(interfaces.TokenStringLiteral) {
		p.advance() // the "C" tag; Quark only supports the C ABI
	}
	p.expect(interfaces.TokenLBrace, "'{'")

	block := &domain.BlockStmt{BaseNode: domain.BaseNode{Location: domain.Span{Start: loc}}}
	for !p.at(interfaces.TokenRBrace) {
		if p.accept(interfaces.TokenStruct) {
			name := p.expect(interfaces.TokenIdentifier, "identifier").Value
			p.expect(interfaces.TokenSemicolon, "';'")
			block.Statements = append(block.Statements, &domain.ExternStructDecl{BaseNode: domain.BaseNode{Location: domain.Span{Start: loc}}, Name: name})
			continue
		}
		retType := p.parseTypeName()
		name := p.expect(interfaces.TokenIdentifier, "identifier").Value
		params, variadic := p.parseParamList()
		p.expect(interfaces.TokenSemicolon, "';'")
		block.Statements = append(block.Statements, &domain.ExternFunctionDecl{
			BaseNode: domain.BaseNode{Location: domain.Span{Start: loc}}, Name: name,
			Parameters: params, ReturnTypeName: retType, IsVariadic: variadic,
		})
	}
	p.expect(interfaces.TokenRBrace, "'}'")
	return block
}

// --- Expressions (Pratt precedence climbing) ---

func (p *QuarkParser) parseExpression(minPrec int) domain.Expression {
	left := p.parseUnary()
	return p.continueExpression(left, minPrec)
}

func (p *QuarkParser) continueExpression(left domain.Expression, minPrec int) domain.Expression {
	for {
		prec, isBinary := binaryPrecedence[p.current.Type]
		if !isBinary || prec < minPrec {
			return left
		}
		op := binaryOps[p.current.Type]
		opLoc := p.current.Location
		isRange := p.current.Type == interfaces.TokenDotDot
		p.advance()
		right := p.parseUnary()
		right = p.continueExpression(right, prec+1)
		if isRange {
			left = &domain.RangeExpr{BaseNode: domain.BaseNode{Location: domain.Span{Start: opLoc}}, Start: left, End: right}
		} else {
			left = &domain.BinaryExpr{BaseNode: domain.BaseNode{Location: domain.Span{Start: opLoc}}, Left: left, Operator: op, Right: right}
		}
	}
}

func (p *QuarkParser) parseUnary() domain.Expression {
	loc := p.current.Location
	switch p.current.Type {
	case interfaces.TokenMinus:
		p.advance()
		return &domain.UnaryExpr{BaseNode: domain.BaseNode{Location: domain.Span{Start: loc}}, Operator: domain.Neg, Operand: p.parseUnary()}
	case interfaces.TokenNot:
		p.advance()
		return &domain.UnaryExpr{BaseNode: domain.BaseNode{Location: domain.Span{Start: loc}}, Operator: domain.Not, Operand: p.parseUnary()}
	case interfaces.TokenAmp:
		p.advance()
		return &domain.AddrOfExpr{BaseNode: domain.BaseNode{Location: domain.Span{Start: loc}}, Operand: p.parseUnary()}
	case interfaces.TokenStar:
		p.advance()
		return &domain.DerefExpr{BaseNode: domain.BaseNode{Location: domain.Span{Start: loc}}, Operand: p.parseUnary()}
	case interfaces.TokenLParen:
		if cast, ok := p.tryParseCast(); ok {
			return cast
		}
	}
	return p.parsePostfix(p.parsePrimary())
}

// tryParseCast recognizes `(TypeName) primary` (spec §4.D "Parenthesised
// type name followed by a primary is parsed as a C-style cast").
func (p *QuarkParser) tryParseCast() (domain.Expression, bool) {
	loc := p.current.Location
	if _, isType := typeTokens[p.peekAfterLParen()]; !isType {
		return nil, false
	}
	p.advance() // '('
	typeName := p.parseTypeName()
	if !p.at(interfaces.TokenRParen) {
		return nil, false
	}
	p.advance() // ')'
	operand := p.parseUnary()
	return &domain.CastExpr{BaseNode: domain.BaseNode{Location: domain.Span{Start: loc}}, TargetTypeName: typeName, Operand: operand}, true
}

// peekAfterLParen returns the type of the token that follows the current
// '(' using the lexer's one-token Peek(), so a cast `(type)` can be told
// apart from a parenthesised expression. Since the grammar reserves type
// keywords from being used as plain identifiers, a peeked type keyword is
// decisive.
func (p *QuarkParser) peekAfterLParen() interfaces.TokenType {
	tok, err := p.lexer.Peek()
	if err != nil {
		return interfaces.TokenEOF
	}
	return tok.Type
}

func (p *QuarkParser) parsePrimary() domain.Expression {
	loc := p.current.Location
	switch p.current.Type {
	case interfaces.TokenIntLiteral:
		n := int64(p.current.NumberValue)
		p.advance()
		return &domain.LiteralExpr{BaseNode: domain.BaseNode{Location: domain.Span{Start: loc}}, Value: n, Kind: domain.IntType}
	case interfaces.TokenFloatLiteral:
		n := p.current.NumberValue
		p.advance()
		return &domain.LiteralExpr{BaseNode: domain.BaseNode{Location: domain.Span{Start: loc}}, Value: n, Kind: domain.DoubleType}
	case interfaces.TokenStringLiteral:
		s := p.current.Value
		p.advance()
		return &domain.LiteralExpr{BaseNode: domain.BaseNode{Location: domain.Span{Start: loc}}, Value: s, Kind: domain.StringType}
	case interfaces.TokenTrue:
		p.advance()
		return &domain.LiteralExpr{BaseNode: domain.BaseNode{Location: domain.Span{Start: loc}}, Value: true, Kind: domain.BoolType}
	case interfaces.TokenFalse:
		p.advance()
		return &domain.LiteralExpr{BaseNode: domain.BaseNode{Location: domain.Span{Start: loc}}, Value: false, Kind: domain.BoolType}
	case interfaces.TokenNull:
		p.advance()
		return &domain.LiteralExpr{BaseNode: domain.BaseNode{Location: domain.Span{Start: loc}}, Value: nil, Kind: domain.NullType}
	case interfaces.TokenThis:
		p.advance()
		return &domain.IdentifierExpr{BaseNode: domain.BaseNode{Location: domain.Span{Start: loc}}, Name: "this"}
	case interfaces.TokenLParen:
		p.advance()
		expr := p.parseExpression(precLowest)
		p.expect(interfaces.TokenRParen, "')'")
		return expr
	case interfaces.TokenLBracket:
		return p.parseArrayLiteral(loc)
	case interfaces.TokenLBrace:
		return p.parseMapLiteral(loc)
	case interfaces.TokenIdentifier:
		return p.parseIdentifierLead(loc)
	}
	p.fail(domain.E0006InvalidSyntax, fmt.Sprintf("unexpected token %q in expression", p.current.Value))
	return nil
}

func (p *QuarkParser) parseArrayLiteral(loc domain.SourceLocation) domain.Expression {
	p.advance() // '['
	var elems []domain.Expression
	for !p.at(interfaces.TokenRBracket) {
		elems = append(elems, p.parseExpression(precLowest))
		if !p.accept(interfaces.TokenComma) {
			break
		}
	}
	p.expect(interfaces.TokenRBracket, "']'")
	return &domain.ArrayLiteralExpr{BaseNode: domain.BaseNode{Location: domain.Span{Start: loc}}, Elements: elems}
}

func (p *QuarkParser) parseMapLiteral(loc domain.SourceLocation) domain.Expression {
	p.advance() // '{'
	var keys, values []domain.Expression
	for !p.at(interfaces.TokenRBrace) {
		k := p.parseExpression(precLowest)
		p.expect(interfaces.TokenFatArrow, "'=>'")
		v := p.parseExpression(precLowest)
		keys = append(keys, k)
		values = append(values, v)
		if !p.accept(interfaces.TokenComma) {
			break
		}
	}
	p.expect(interfaces.TokenRBrace, "'}'")
	return &domain.MapLiteralExpr{BaseNode: domain.BaseNode{Location: domain.Span{Start: loc}}, Keys: keys, Values: values}
}

// parseIdentifierLead disambiguates plain identifier, call, static call
// (`T::m(...)`), and struct-literal (`T{ field: val, ... }`) forms.
func (p *QuarkParser) parseIdentifierLead(loc domain.SourceLocation) domain.Expression {
	name := p.current.Value
	p.advance()

	if p.accept(interfaces.TokenColonColon) {
		method := p.expect(interfaces.TokenIdentifier, "identifier").Value
		args := p.parseArgList()
		return &domain.StaticCallExpr{BaseNode: domain.BaseNode{Location: domain.Span{Start: loc}}, TypeName: name, Method: method, Args: args}
	}

	if p.at(interfaces.TokenLParen) {
		args := p.parseArgList()
		return &domain.CallExpr{BaseNode: domain.BaseNode{Location: domain.Span{Start: loc}}, FunctionName: name, Args: args}
	}

	if p.at(interfaces.TokenLBrace) && looksLikeStructLiteralHead(name) {
		return p.parseStructLiteral(loc, name)
	}

	return &domain.IdentifierExpr{BaseNode: domain.BaseNode{Location: domain.Span{Start: loc}}, Name: name}
}

// looksLikeStructLiteralHead uses Quark's PascalCase struct-naming
// convention to disambiguate `Name { ... }` (struct literal) from a bare
// identifier immediately followed by an unrelated block in statement
// position; the semantic analyzer re-validates against the registered
// struct table regardless.
func looksLikeStructLiteralHead(name string) bool {
	if name == "" {
		return false
	}
	c := name[0]
	return c >= 'A' && c <= 'Z'
}

func (p *QuarkParser) parseStructLiteral(loc domain.SourceLocation, name string) domain.Expression {
	p.advance() // '{'
	lit := &domain.StructLiteralExpr{BaseNode: domain.BaseNode{Location: domain.Span{Start: loc}}, StructName: name, Fields: make(map[string]domain.Expression)}
	for !p.at(interfaces.TokenRBrace) {
		fieldName := p.expect(interfaces.TokenIdentifier, "identifier").Value
		p.expect(interfaces.TokenColon, "':'")
		value := p.parseExpression(precLowest)
		lit.FieldOrder = append(lit.FieldOrder, fieldName)
		lit.Fields[fieldName] = value
		if !p.accept(interfaces.TokenComma) {
			break
		}
	}
	p.expect(interfaces.TokenRBrace, "'}'")
	return lit
}

func (p *QuarkParser) parseArgList() []domain.Expression {
	p.expect(interfaces.TokenLParen, "'('")
	var args []domain.Expression
	for !p.at(interfaces.TokenRParen) {
		args = append(args, p.parseExpression(precLowest))
		if !p.accept(interfaces.TokenComma) {
			break
		}
	}
	p.expect(interfaces.TokenRParen, "')'")
	return args
}

// parsePostfix handles `.member`, `.method(args)`, and `[index]` at
// precedence 40/50 — tighter than any binary operator, so it runs once
// per primary before precedence climbing resumes.
func (p *QuarkParser) parsePostfix(expr domain.Expression) domain.Expression {
	for {
		loc := p.current.Location
		switch p.current.Type {
		case interfaces.TokenDot:
			p.advance()
			name := p.expect(interfaces.TokenIdentifier, "identifier").Value
			if p.at(interfaces.TokenLParen) {
				args := p.parseArgList()
				expr = &domain.MethodCallExpr{BaseNode: domain.BaseNode{Location: domain.Span{Start: loc}}, Object: expr, Method: name, Args: args}
			} else {
				expr = &domain.MemberExpr{BaseNode: domain.BaseNode{Location: domain.Span{Start: loc}}, Object: expr, Member: name}
			}
		case interfaces.TokenLBracket:
			p.advance()
			idx := p.parseExpression(precLowest)
			p.expect(interfaces.TokenRBracket, "']'")
			expr = &domain.IndexExpr{BaseNode: domain.BaseNode{Location: domain.Span{Start: loc}}, Object: expr, Index: idx}
		default:
			return expr
		}
	}
}
