package codegen

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quarklang/quarkc/internal/domain"
	"github.com/quarklang/quarkc/internal/infrastructure"
	"github.com/quarklang/quarkc/internal/interfaces"
)

func newTestGenerator() (*Generator, domain.TypeRegistry) {
	g := NewGenerator()
	g.SetTypeRegistry(domain.NewDefaultTypeRegistry())
	g.SetSymbolTable(infrastructure.NewDefaultSymbolTable())
	return g, g.typeRegistry
}

func param(name, typeName string, t domain.Type) domain.Parameter {
	return domain.Parameter{Name: name, TypeName: typeName, Type_: t}
}

func TestGenerator_SimpleFunction(t *testing.T) {
	g, reg := newTestGenerator()
	intType, _ := reg.GetType("int")

	fn := &domain.FunctionDecl{
		Name:           "add",
		ReturnTypeName: "int",
		ReturnType:     intType,
		Parameters:     []domain.Parameter{param("a", "int", intType), param("b", "int", intType)},
		Body: &domain.BlockStmt{Statements: []domain.Statement{
			&domain.ReturnStmt{Value: &domain.BinaryExpr{
				Left:     &domain.IdentifierExpr{Name: "a", Type_: intType},
				Operator: domain.Add,
				Right:    &domain.IdentifierExpr{Name: "b", Type_: intType},
				Type_:    intType,
			}},
		}},
	}
	program := &domain.Program{Statements: []domain.Statement{fn}}

	var out bytes.Buffer
	g.SetOutput(&out)
	require.NoError(t, g.Generate(program))

	ir := out.String()
	assert.Contains(t, ir, "@add")
	assert.Contains(t, ir, "add")
}

func TestGenerator_MissingForwardDeclarationFails(t *testing.T) {
	g, _ := newTestGenerator()

	// A bare VisitFunctionDecl call with no prior forwardDeclare pass: the
	// function was never registered in g.functions, so codegen must fail
	// loudly instead of panicking on a nil map lookup.
	fn := &domain.FunctionDecl{Name: "orphan", Body: &domain.BlockStmt{}}
	err := g.VisitFunctionDecl(fn)
	assert.NoError(t, err) // errors are reported, not returned, per reportCodegenError
	assert.True(t, g.failed)
}

func TestGenerator_VoidFunctionWithImplicitReturn(t *testing.T) {
	g, reg := newTestGenerator()
	voidType, _ := reg.GetType("void")

	fn := &domain.FunctionDecl{
		Name:       "noop",
		ReturnType: voidType,
		Body:       &domain.BlockStmt{},
	}
	program := &domain.Program{Statements: []domain.Statement{fn}}

	var out bytes.Buffer
	g.SetOutput(&out)
	require.NoError(t, g.Generate(program))
	assert.Contains(t, out.String(), "@noop")
	assert.Contains(t, out.String(), "ret void")
}

func TestGenerator_IfElseBranches(t *testing.T) {
	g, reg := newTestGenerator()
	intType, _ := reg.GetType("int")
	boolType, _ := reg.GetType("bool")

	fn := &domain.FunctionDecl{
		Name:       "choose",
		ReturnType: intType,
		Parameters: []domain.Parameter{param("flag", "bool", boolType)},
		Body: &domain.BlockStmt{Statements: []domain.Statement{
			&domain.IfStmt{
				Condition: &domain.IdentifierExpr{Name: "flag", Type_: boolType},
				Then: &domain.BlockStmt{Statements: []domain.Statement{
					&domain.ReturnStmt{Value: &domain.LiteralExpr{Value: int64(1), Kind: domain.IntType, Type_: intType}},
				}},
				Else: &domain.BlockStmt{Statements: []domain.Statement{
					&domain.ReturnStmt{Value: &domain.LiteralExpr{Value: int64(0), Kind: domain.IntType, Type_: intType}},
				}},
			},
		}},
	}
	program := &domain.Program{Statements: []domain.Statement{fn}}

	var out bytes.Buffer
	g.SetOutput(&out)
	require.NoError(t, g.Generate(program))
	assert.Contains(t, out.String(), "br i1")
}

func TestMangledName(t *testing.T) {
	assert.Equal(t, "speak", mangledName("", "speak"))
	assert.Equal(t, "Animal::speak", mangledName("Animal", "speak"))
}

func TestIsFloatingType(t *testing.T) {
	assert.True(t, isFloatingType(&domain.BasicType{Kind: domain.FloatType}))
	assert.True(t, isFloatingType(&domain.BasicType{Kind: domain.DoubleType}))
	assert.False(t, isFloatingType(&domain.BasicType{Kind: domain.IntType}))
	assert.False(t, isFloatingType(&domain.PointerType{Target: &domain.BasicType{Kind: domain.IntType}}))
}

func TestIsBoolAndVoidType(t *testing.T) {
	assert.True(t, isBoolType(&domain.BasicType{Kind: domain.BoolType}))
	assert.False(t, isBoolType(&domain.BasicType{Kind: domain.IntType}))
	assert.True(t, isVoidType(&domain.BasicType{Kind: domain.VoidType}))
	assert.False(t, isVoidType(&domain.BasicType{Kind: domain.BoolType}))
}

func TestIntPredicateFor(t *testing.T) {
	cases := map[domain.BinaryOperator]interfaces.IntPredicate{
		domain.Eq: interfaces.IntEQ,
		domain.Ne: interfaces.IntNE,
		domain.Lt: interfaces.IntSLT,
		domain.Le: interfaces.IntSLE,
		domain.Gt: interfaces.IntSGT,
		domain.Ge: interfaces.IntSGE,
	}
	for op, want := range cases {
		assert.Equal(t, want, intPredicateFor(op))
	}
}

func TestFloatPredicateFor(t *testing.T) {
	cases := map[domain.BinaryOperator]interfaces.FloatPredicate{
		domain.Eq: interfaces.FloatOEQ,
		domain.Ne: interfaces.FloatONE,
		domain.Lt: interfaces.FloatOLT,
		domain.Le: interfaces.FloatOLE,
		domain.Gt: interfaces.FloatOGT,
		domain.Ge: interfaces.FloatOGE,
	}
	for op, want := range cases {
		assert.Equal(t, want, floatPredicateFor(op))
	}
}

func TestGenerator_WhileContinueTargetsIncrementBlock(t *testing.T) {
	g, reg := newTestGenerator()
	intType, _ := reg.GetType("int")
	voidType, _ := reg.GetType("void")

	// `for (var i in 0..10) { continue; }` desugared by hand: continue must
	// still reach the increment, not jump straight back to the condition.
	incr := &domain.AssignStmt{
		Name: "i",
		Value: &domain.BinaryExpr{
			Left:     &domain.IdentifierExpr{Name: "i", Type_: intType},
			Operator: domain.Add,
			Right:    &domain.LiteralExpr{Value: int64(1), Kind: domain.IntType, Type_: intType},
		},
	}
	fn := &domain.FunctionDecl{
		Name:       "loop",
		ReturnType: voidType,
		Body: &domain.BlockStmt{Statements: []domain.Statement{
			&domain.VarDeclStmt{Name: "i", TypeName: "int", Type_: intType, Initializer: &domain.LiteralExpr{Value: int64(0), Kind: domain.IntType, Type_: intType}},
			&domain.WhileStmt{
				Condition: &domain.BinaryExpr{
					Left:     &domain.IdentifierExpr{Name: "i", Type_: intType},
					Operator: domain.Lt,
					Right:    &domain.LiteralExpr{Value: int64(10), Kind: domain.IntType, Type_: intType},
				},
				Body:      &domain.BlockStmt{Statements: []domain.Statement{&domain.ContinueStmt{}}},
				Increment: incr,
			},
		}},
	}
	program := &domain.Program{Statements: []domain.Statement{fn}}

	var out bytes.Buffer
	g.SetOutput(&out)
	require.NoError(t, g.Generate(program))

	ir := out.String()
	assert.Contains(t, ir, "while.incr")
	// `continue` is the body's only statement, so its emitted branch is the
	// one instruction in the body block: it must target while.incr, not
	// jump straight back to while.cond and skip the increment.
	assert.Contains(t, ir, "br label %while.incr")
}

func TestGenerator_WhileWithoutIncrementUnchanged(t *testing.T) {
	g, reg := newTestGenerator()
	boolType, _ := reg.GetType("bool")
	voidType, _ := reg.GetType("void")

	fn := &domain.FunctionDecl{
		Name:       "plain",
		ReturnType: voidType,
		Parameters: []domain.Parameter{param("flag", "bool", boolType)},
		Body: &domain.BlockStmt{Statements: []domain.Statement{
			&domain.WhileStmt{
				Condition: &domain.IdentifierExpr{Name: "flag", Type_: boolType},
				Body: &domain.BlockStmt{Statements: []domain.Statement{
					&domain.ReturnStmt{},
				}},
			},
		}},
	}
	program := &domain.Program{Statements: []domain.Statement{fn}}

	var out bytes.Buffer
	g.SetOutput(&out)
	require.NoError(t, g.Generate(program))
	assert.NotContains(t, out.String(), "while.incr")
}

func TestGenerator_ModuleAccessorReturnsGeneratedModule(t *testing.T) {
	g, reg := newTestGenerator()
	voidType, _ := reg.GetType("void")
	fn := &domain.FunctionDecl{Name: "main", ReturnType: voidType, Body: &domain.BlockStmt{}}
	program := &domain.Program{Statements: []domain.Statement{fn}}

	var out bytes.Buffer
	g.SetOutput(&out)
	require.NoError(t, g.Generate(program))
	require.NotNil(t, g.Module())
	assert.True(t, strings.Contains(g.Module().Print(), "@main"))
}
