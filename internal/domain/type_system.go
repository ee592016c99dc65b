// Package domain contains the type system definitions for Quark's
// TypeInfo model (spec §3): Int, Float, Double, Bool, String, Void,
// Struct, Array, Map, Pointer, Null, Unknown.
package domain

import (
	"fmt"
	"strings"
)

// Type represents a type in the Quark type system.
type Type interface {
	String() string
	Equals(other Type) bool
	IsAssignableFrom(other Type) bool
	GetSize() int // size in bytes
}

// BasicTypeKind enumerates the primitive TypeInfo kinds named in spec §3.
type BasicTypeKind int

const (
	IntType BasicTypeKind = iota
	FloatType
	DoubleType
	BoolType
	StringType
	VoidType
	NullType
	UnknownType
)

// BasicType represents a primitive type.
type BasicType struct {
	Kind BasicTypeKind
}

func (bt *BasicType) String() string {
	switch bt.Kind {
	case IntType:
		return "int"
	case FloatType:
		return "float"
	case DoubleType:
		return "double"
	case BoolType:
		return "bool"
	case StringType:
		return "str"
	case VoidType:
		return "void"
	case NullType:
		return "null"
	case UnknownType:
		return "unknown"
	default:
		return "unknown"
	}
}

func (bt *BasicType) Equals(other Type) bool {
	if otherBasic, ok := other.(*BasicType); ok {
		return bt.Kind == otherBasic.Kind
	}
	return false
}

func (bt *BasicType) IsAssignableFrom(other Type) bool {
	return IsCompatible(bt, other)
}

func (bt *BasicType) GetSize() int {
	switch bt.Kind {
	case IntType:
		return 4 // i32
	case FloatType:
		return 4 // f32
	case DoubleType:
		return 8 // f64
	case BoolType:
		return 1
	case StringType:
		return 8 // i8* pointer
	case VoidType:
		return 0
	default:
		return 0
	}
}

// ArrayType represents `T[]` / `T[n]` array types (spec §3 "Array").
type ArrayType struct {
	ElementType Type
	Size        int // -1 for dynamic arrays
}

func (at *ArrayType) String() string {
	if at.Size == -1 {
		return fmt.Sprintf("%s[]", at.ElementType.String())
	}
	return fmt.Sprintf("%s[%d]", at.ElementType.String(), at.Size)
}

func (at *ArrayType) Equals(other Type) bool {
	if otherArray, ok := other.(*ArrayType); ok {
		return at.ElementType.Equals(otherArray.ElementType)
	}
	return false
}

func (at *ArrayType) IsAssignableFrom(other Type) bool {
	if otherArray, ok := other.(*ArrayType); ok {
		return at.ElementType.Equals(otherArray.ElementType)
	}
	return false
}

func (at *ArrayType) GetSize() int {
	return 8 // heap payload pointer; length lives in the 4-byte header (I7)
}

// MapType represents Quark's `map<K,V>` literal/indexing surface.
type MapType struct {
	KeyType   Type
	ValueType Type
}

func (mt *MapType) String() string {
	return fmt.Sprintf("map<%s,%s>", mt.KeyType.String(), mt.ValueType.String())
}

func (mt *MapType) Equals(other Type) bool {
	if om, ok := other.(*MapType); ok {
		return mt.KeyType.Equals(om.KeyType) && mt.ValueType.Equals(om.ValueType)
	}
	return false
}

func (mt *MapType) IsAssignableFrom(other Type) bool { return mt.Equals(other) }
func (mt *MapType) GetSize() int                     { return 8 } // opaque quark_map_t* handle

// PointerType represents `T*` at any depth. TargetName preserves the
// original textual base name so codegen can recover the pointee IR type
// without re-parsing (spec §3 "pointerTypeName").
type PointerType struct {
	Target     Type
	TargetName string
}

func (pt *PointerType) String() string {
	if pt.Target != nil {
		return pt.Target.String() + "*"
	}
	return pt.TargetName + "*"
}

func (pt *PointerType) Equals(other Type) bool {
	if op, ok := other.(*PointerType); ok {
		if pt.Target != nil && op.Target != nil {
			return pt.Target.Equals(op.Target)
		}
		return pt.TargetName == op.TargetName
	}
	return false
}

func (pt *PointerType) IsAssignableFrom(other Type) bool {
	if _, ok := other.(*BasicType); ok {
		if bt := other.(*BasicType); bt.Kind == NullType {
			return true
		}
	}
	return pt.Equals(other)
}

func (pt *PointerType) GetSize() int { return 8 }

// StructType represents a struct declaration, including an optional parent
// for inheritance (invariant I5: field layout is transitive-parent fields
// followed by own fields, in declaration order).
type StructType struct {
	Name   string
	Fields map[string]Type
	Order  []string // the struct's own fields, in declaration order
	Parent *StructType
}

func (st *StructType) String() string {
	if st.Name != "" {
		return st.Name
	}
	if len(st.Fields) == 0 {
		return "struct{}"
	}
	fieldNames := st.Order
	fields := make([]string, len(fieldNames))
	for i, fieldName := range fieldNames {
		fields[i] = fieldName + " " + st.Fields[fieldName].String()
	}
	return "struct{" + strings.Join(fields, ", ") + "}"
}

func (st *StructType) Equals(other Type) bool {
	if otherStruct, ok := other.(*StructType); ok {
		return st.Name == otherStruct.Name
	}
	return false
}

// IsAssignableFrom allows assigning a derived struct where a base struct is
// expected (Quark structs carry their declared static type; this permits
// `var a: A = B{...}` style upcasts used by dynamic dispatch, S1).
func (st *StructType) IsAssignableFrom(other Type) bool {
	otherStruct, ok := other.(*StructType)
	if !ok {
		return false
	}
	for s := otherStruct; s != nil; s = s.Parent {
		if s.Name == st.Name {
			return true
		}
	}
	return false
}

func (st *StructType) GetSize() int {
	size := 0
	for _, name := range st.AllFieldNames() {
		size += st.fieldTypeByName(name).GetSize()
	}
	return size
}

func (st *StructType) GetField(name string) (Type, bool) {
	if t, ok := st.Fields[name]; ok {
		return t, true
	}
	if st.Parent != nil {
		return st.Parent.GetField(name)
	}
	return nil, false
}

// AllFieldNames returns the transitive-parent fields followed by this
// struct's own fields, in declaration order (invariant I5, testable
// property P3).
func (st *StructType) AllFieldNames() []string {
	var names []string
	if st.Parent != nil {
		names = append(names, st.Parent.AllFieldNames()...)
	}
	names = append(names, st.Order...)
	return names
}

func (st *StructType) fieldTypeByName(name string) Type {
	if t, ok := st.Fields[name]; ok {
		return t
	}
	if st.Parent != nil {
		return st.Parent.fieldTypeByName(name)
	}
	return &BasicType{Kind: UnknownType}
}

// IsSubtypeOf walks the parent chain (used by method lookup and dynamic
// dispatch override discovery).
func (st *StructType) IsSubtypeOf(ancestorName string) bool {
	for s := st; s != nil; s = s.Parent {
		if s.Name == ancestorName {
			return true
		}
	}
	return false
}

// FunctionType represents a function's signature.
type FunctionType struct {
	ParameterTypes []Type
	ReturnType     Type
	IsVariadic     bool
}

func (ft *FunctionType) String() string {
	params := make([]string, len(ft.ParameterTypes))
	for i, param := range ft.ParameterTypes {
		params[i] = param.String()
	}
	variadic := ""
	if ft.IsVariadic {
		variadic = ", ..."
	}
	return fmt.Sprintf("func(%s%s) %s", strings.Join(params, ", "), variadic, ft.ReturnType.String())
}

func (ft *FunctionType) Equals(other Type) bool {
	if otherFunc, ok := other.(*FunctionType); ok {
		if len(ft.ParameterTypes) != len(otherFunc.ParameterTypes) {
			return false
		}
		for i, param := range ft.ParameterTypes {
			if !param.Equals(otherFunc.ParameterTypes[i]) {
				return false
			}
		}
		return ft.ReturnType.Equals(otherFunc.ReturnType)
	}
	return false
}

func (ft *FunctionType) IsAssignableFrom(other Type) bool { return ft.Equals(other) }
func (ft *FunctionType) GetSize() int                     { return 8 }

// TypeError represents a type-checking failure sentinel, compatible with
// anything so that one bad expression doesn't cascade into spurious
// diagnostics downstream.
type TypeError struct {
	Message string
}

func (et *TypeError) String() string                   { return fmt.Sprintf("<error: %s>", et.Message) }
func (et *TypeError) Equals(other Type) bool            { _, ok := other.(*TypeError); return ok }
func (et *TypeError) IsAssignableFrom(other Type) bool   { return true }
func (et *TypeError) GetSize() int                       { return 0 }

// StructField is a single field declaration fed to CreateStructType.
type StructField struct {
	Name string
	Type Type
}

// TypeRegistry manages type definitions and provides type operations
// (spec §3 "structDefs"/"structTypes", shared by the semantic analyzer and
// codegen's module symbol tables).
type TypeRegistry interface {
	RegisterType(name string, t Type) error
	GetType(name string) (Type, bool)
	CreateStructType(name string, parent *StructType, fields []StructField) (*StructType, error)
	GetBuiltinType(kind BasicTypeKind) Type
}

// DefaultTypeRegistry is the default TypeRegistry implementation.
type DefaultTypeRegistry struct {
	types    map[string]Type
	builtins map[BasicTypeKind]Type
}

func NewDefaultTypeRegistry() *DefaultTypeRegistry {
	reg := &DefaultTypeRegistry{
		types:    make(map[string]Type),
		builtins: make(map[BasicTypeKind]Type),
	}

	for _, kind := range []BasicTypeKind{IntType, FloatType, DoubleType, BoolType, StringType, VoidType, NullType, UnknownType} {
		reg.builtins[kind] = &BasicType{Kind: kind}
	}

	reg.types["int"] = reg.builtins[IntType]
	reg.types["float"] = reg.builtins[FloatType]
	reg.types["double"] = reg.builtins[DoubleType]
	reg.types["bool"] = reg.builtins[BoolType]
	reg.types["str"] = reg.builtins[StringType]
	reg.types["void"] = reg.builtins[VoidType]

	return reg
}

// NewTypeRegistry creates a new type registry.
func NewTypeRegistry() TypeRegistry {
	return NewDefaultTypeRegistry()
}

func (reg *DefaultTypeRegistry) RegisterType(name string, t Type) error {
	if _, exists := reg.types[name]; exists {
		return fmt.Errorf("type '%s' already registered", name)
	}
	reg.types[name] = t
	return nil
}

func (reg *DefaultTypeRegistry) GetType(name string) (Type, bool) {
	t, exists := reg.types[name]
	return t, exists
}

// CreateStructType registers a struct type, flattening parent fields per
// invariant I5 (RegisterType / GetStructFields naming grounded on
// staticlang's DefaultTypeRegistry plus spec §4.G's getStructFields).
func (reg *DefaultTypeRegistry) CreateStructType(name string, parent *StructType, fields []StructField) (*StructType, error) {
	if _, exists := reg.types[name]; exists {
		return nil, fmt.Errorf("type '%s' already exists", name)
	}

	structType := &StructType{
		Name:   name,
		Fields: make(map[string]Type),
		Order:  make([]string, 0, len(fields)),
		Parent: parent,
	}

	for _, field := range fields {
		if _, exists := structType.Fields[field.Name]; exists {
			return nil, fmt.Errorf("duplicate field '%s' in struct '%s'", field.Name, name)
		}
		structType.Fields[field.Name] = field.Type
		structType.Order = append(structType.Order, field.Name)
	}

	reg.types[name] = structType
	return structType, nil
}

func (reg *DefaultTypeRegistry) GetBuiltinType(kind BasicTypeKind) Type {
	return reg.builtins[kind]
}

// --- Type-checking utilities (spec §4.G "Compatibility") ---

func IsNumericType(t Type) bool {
	if basic, ok := t.(*BasicType); ok {
		return basic.Kind == IntType || basic.Kind == FloatType || basic.Kind == DoubleType
	}
	return false
}

func IsComparableType(t Type) bool {
	if basic, ok := t.(*BasicType); ok {
		return basic.Kind == IntType || basic.Kind == FloatType || basic.Kind == DoubleType ||
			basic.Kind == BoolType || basic.Kind == StringType
	}
	if _, ok := t.(*PointerType); ok {
		return true
	}
	return false
}

// IsCompatible implements spec §4.G's compatibility rules: direct kind
// match (structs also match structName, arrays match elementType),
// Int→Double/Float, Float↔Double, Int↔Bool implicitly, and Unknown
// compatible with anything.
func IsCompatible(target, source Type) bool {
	if target == nil || source == nil {
		return false
	}
	if isUnknown(target) || isUnknown(source) {
		return true
	}
	if target.Equals(source) {
		return true
	}
	if sa, ok := target.(*StructType); ok {
		if sb, ok2 := source.(*StructType); ok2 {
			return sb.IsSubtypeOf(sa.Name)
		}
	}
	if pt, ok := target.(*PointerType); ok {
		return pt.IsAssignableFrom(source)
	}
	tb, tOk := target.(*BasicType)
	sb, sOk := source.(*BasicType)
	if !tOk || !sOk {
		return false
	}
	switch {
	case tb.Kind == DoubleType && (sb.Kind == IntType || sb.Kind == FloatType):
		return true
	case tb.Kind == FloatType && sb.Kind == IntType:
		return true
	case tb.Kind == FloatType && sb.Kind == DoubleType:
		return true
	case tb.Kind == IntType && sb.Kind == BoolType:
		return true
	case tb.Kind == BoolType && sb.Kind == IntType:
		return true
	default:
		return false
	}
}

func isUnknown(t Type) bool {
	bt, ok := t.(*BasicType)
	return ok && bt.Kind == UnknownType
}

// MismatchErrorCode chooses the spec §4.G error code for an incompatible
// pair depending on context (assignment/return/param/field/generic).
func MismatchErrorCode(context string) string {
	switch context {
	case "assign":
		return E112AssignMismatch
	case "return":
		return E115ReturnMismatch
	case "param":
		return E118ParamMismatch
	case "field":
		return E124FieldMismatch
	default:
		return E109IncompatibleGeneric
	}
}

func CanApplyBinaryOperator(op BinaryOperator, left, right Type) bool {
	switch op {
	case Add:
		if left.String() == "str" && right.String() == "str" {
			return true
		}
		return IsNumericType(left) && IsNumericType(right)
	case Sub, Mul, Div, Mod:
		return IsNumericType(left) && IsNumericType(right)
	case Eq, Ne:
		return IsComparableType(left) || IsComparableType(right) || isUnknown(left) || isUnknown(right)
	case Lt, Le, Gt, Ge:
		return (IsNumericType(left) && IsNumericType(right)) || (left.String() == "str" && right.String() == "str")
	case And, Or:
		return left.String() == "bool" && right.String() == "bool"
	case Range:
		return IsNumericType(left) && IsNumericType(right)
	default:
		return false
	}
}

func CanApplyUnaryOperator(op UnaryOperator, operand Type) bool {
	switch op {
	case Neg:
		return IsNumericType(operand)
	case Not:
		return operand.String() == "bool"
	case AddrOf, Deref:
		return true
	default:
		return false
	}
}

// ResultTypeOfBinary computes the result TypeInfo of a binary expression
// per spec §4.H's numeric coercion rules (promote to double > float > i32).
func ResultTypeOfBinary(op BinaryOperator, left, right Type) Type {
	switch op {
	case Eq, Ne, Lt, Le, Gt, Ge, And, Or:
		return &BasicType{Kind: BoolType}
	case Range:
		return &BasicType{Kind: IntType}
	}
	if left.String() == "str" || right.String() == "str" {
		return &BasicType{Kind: StringType}
	}
	lb, lok := left.(*BasicType)
	rb, rok := right.(*BasicType)
	if lok && rok {
		if lb.Kind == DoubleType || rb.Kind == DoubleType {
			return &BasicType{Kind: DoubleType}
		}
		if lb.Kind == FloatType || rb.Kind == FloatType {
			return &BasicType{Kind: FloatType}
		}
	}
	return &BasicType{Kind: IntType}
}

// --- Helper constructors ---

func NewIntType() Type    { return &BasicType{Kind: IntType} }
func NewFloatType() Type  { return &BasicType{Kind: FloatType} }
func NewDoubleType() Type { return &BasicType{Kind: DoubleType} }
func NewBoolType() Type   { return &BasicType{Kind: BoolType} }
func NewStringType() Type { return &BasicType{Kind: StringType} }
func NewVoidType() Type   { return &BasicType{Kind: VoidType} }
func NewNullType() Type   { return &BasicType{Kind: NullType} }
func NewUnknownType() Type {
	return &BasicType{Kind: UnknownType}
}
