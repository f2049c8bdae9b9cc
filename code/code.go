// Package code is a small, host-neutral model of the matching code that
// coregen generates.
//
// A Unit is a set of functions built from a handful of statement and
// expression forms: exactly what the emitters need, nothing more. The
// model is data, so it can be inspected, evaluated directly (Eval) and
// rendered to source by a backend (package code/golang).
package code

// TypeKind identifies a value type in the model.
type TypeKind uint8

const (
	// Void is the result type of functions that return nothing.
	Void TypeKind = iota
	// Bool is a boolean.
	Bool
	// Int is a machine integer (positions, lengths, state numbers).
	Int
	// Byte is a single byte of the input.
	Byte
	// Rune is a decoded Unicode scalar value.
	Rune
	// String is an immutable byte string (the input).
	String
	// Set is a pointer to a fixed-size array of Len booleans.
	Set
)

// Type is a value type. Len is only meaningful for Set.
type Type struct {
	Kind TypeKind
	Len  int
}

// Common types.
var (
	TypeVoid   = Type{Kind: Void}
	TypeBool   = Type{Kind: Bool}
	TypeInt    = Type{Kind: Int}
	TypeByte   = Type{Kind: Byte}
	TypeRune   = Type{Kind: Rune}
	TypeString = Type{Kind: String}
)

// SetOf returns the type of a pointer to an n-element boolean array.
func SetOf(n int) Type {
	return Type{Kind: Set, Len: n}
}

// Unit is a complete generated matcher.
type Unit struct {
	// Name is the unit's name.
	Name string

	// Doc holds documentation lines attached to the unit. They never
	// affect behavior.
	Doc []string

	// Entry is the predicate: func(input string) bool.
	Entry *Func

	// Funcs are the helper functions Entry calls, in emission order.
	Funcs []*Func
}

// Func looks up a helper function by name. It returns nil if none exists.
func (u *Unit) Func(name string) *Func {
	for _, f := range u.Funcs {
		if f.Name == name {
			return f
		}
	}
	return nil
}

// Param is a function parameter.
type Param struct {
	Name string
	Type Type
}

// Func is a function of the unit.
type Func struct {
	Name   string
	Doc    string
	Params []Param
	Result Type
	Body   []Stmt
}

// Stmt is a statement. The set of statements is closed.
type Stmt interface {
	stmt()
}

// Return returns Value, or nothing when Value is nil.
type Return struct {
	Value Expr
}

// If runs Then when Cond holds and Else otherwise.
type If struct {
	Cond Expr
	Then []Stmt
	Else []Stmt
}

// For is a three-clause loop. Init and Post may be nil; a nil Cond loops
// until a Return leaves it.
type For struct {
	Init Stmt
	Cond Expr
	Post Stmt
	Body []Stmt
}

// RangeString iterates over the runes of a string: Index receives the
// byte offset and Value the decoded rune. Either name may be empty.
type RangeString struct {
	Index string
	Value string
	Over  Expr
	Body  []Stmt
}

// Define declares and initializes a new variable.
type Define struct {
	Name  string
	Value Expr
}

// Assign stores Value into Target (a Var or an Index of a Set). A
// non-empty Op makes it a compound assignment such as +=.
type Assign struct {
	Target Expr
	Op     string
	Value  Expr
}

// Inc increments an integer variable.
type Inc struct {
	Name string
}

// DecodeRune decodes the first rune of Input into two new variables
// holding the rune and its width in bytes. Invalid UTF-8 decodes as
// U+FFFD with width 1.
type DecodeRune struct {
	Rune  string
	Width string
	Input Expr
}

// DeclSets declares two zeroed state sets of Len elements and binds the
// names A and B to pointers to them.
type DeclSets struct {
	A, B string
	Len  int
}

// ClearSet resets every element of a set to false.
type ClearSet struct {
	Name string
}

// Swap exchanges the values of two variables.
type Swap struct {
	A, B string
}

// Switch runs the body of the first case whose value equals Tag.
type Switch struct {
	Tag   Expr
	Cases []Case
}

// Case is a switch arm.
type Case struct {
	Values []Expr
	Body   []Stmt
}

// ExprStmt evaluates a call for its effect.
type ExprStmt struct {
	X *Call
}

func (*Return) stmt()      {}
func (*If) stmt()          {}
func (*For) stmt()         {}
func (*RangeString) stmt() {}
func (*Define) stmt()      {}
func (*Assign) stmt()      {}
func (*Inc) stmt()         {}
func (*DecodeRune) stmt()  {}
func (*DeclSets) stmt()    {}
func (*ClearSet) stmt()    {}
func (*Swap) stmt()        {}
func (*Switch) stmt()      {}
func (*ExprStmt) stmt()    {}

// Expr is an expression. The set of expressions is closed.
type Expr interface {
	expr()
}

// BoolLit is a boolean constant.
type BoolLit struct{ V bool }

// IntLit is an integer constant.
type IntLit struct{ V int }

// ByteLit is a byte constant.
type ByteLit struct{ V byte }

// RuneLit is a rune constant.
type RuneLit struct{ V rune }

// StrLit is a string constant.
type StrLit struct{ V string }

// Var refers to a parameter or variable.
type Var struct{ Name string }

// Len is the length of a string.
type Len struct{ X Expr }

// Index is X[I]: a byte of a string or an element of a Set.
type Index struct{ X, I Expr }

// SliceFrom is X[Lo:].
type SliceFrom struct{ X, Lo Expr }

// SliceRange is X[Lo:Hi].
type SliceRange struct{ X, Lo, Hi Expr }

// Binary applies Op to X and Y. Op is one of
// || && == != < <= > >= + -.
type Binary struct {
	Op   string
	X, Y Expr
}

// Not is boolean negation.
type Not struct{ X Expr }

// Call calls a helper function of the unit, or, when Pkg is set, a
// function of that standard package. Supported package functions are
// strings.Contains and strings.IndexByte.
type Call struct {
	Pkg  string
	Func string
	Args []Expr
}

func (*BoolLit) expr()    {}
func (*IntLit) expr()     {}
func (*ByteLit) expr()    {}
func (*RuneLit) expr()    {}
func (*StrLit) expr()     {}
func (*Var) expr()        {}
func (*Len) expr()        {}
func (*Index) expr()      {}
func (*SliceFrom) expr()  {}
func (*SliceRange) expr() {}
func (*Binary) expr()     {}
func (*Not) expr()        {}
func (*Call) expr()       {}

// Convenience constructors used by the emitters.

// True and False are the boolean constants.
var (
	True  Expr = &BoolLit{V: true}
	False Expr = &BoolLit{V: false}
)

// V returns a variable reference.
func V(name string) *Var { return &Var{Name: name} }

// I returns an integer constant.
func I(v int) *IntLit { return &IntLit{V: v} }

// Op returns a binary expression.
func Op(x Expr, op string, y Expr) *Binary { return &Binary{Op: op, X: x, Y: y} }

// And folds exprs with &&. It returns True for no operands.
func And(exprs ...Expr) Expr { return fold("&&", True, exprs) }

// Or folds exprs with ||. It returns False for no operands.
func Or(exprs ...Expr) Expr { return fold("||", False, exprs) }

func fold(op string, zero Expr, exprs []Expr) Expr {
	if len(exprs) == 0 {
		return zero
	}
	out := exprs[0]
	for _, e := range exprs[1:] {
		out = Op(out, op, e)
	}
	return out
}

// Ret returns a Return statement.
func Ret(value Expr) *Return { return &Return{Value: value} }
