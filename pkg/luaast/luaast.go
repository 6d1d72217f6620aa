package luaast

// This package holds the small Lua statement/expression tree the linkage
// layer emits. Code is built as a tree and rendered once at the end, so
// tests can compare structures instead of strings and escaping lives in
// exactly one place.

// Expr is a Lua value expression.
type Expr interface {
	exprNode()
}

// Stmt is a Lua statement.
type Stmt interface {
	stmtNode()
}

// --- Expressions ---

// Ident is a raw identifier reference, e.g. `script` or `_0`.
type Ident struct {
	Name string
}

// String is a string literal. Value is the unescaped text.
type String struct {
	Value string
}

// Nil is the literal `nil`.
type Nil struct{}

// Field is dotted access: `Object.Name`. Name must be a valid identifier;
// use Index for anything else.
type Field struct {
	Object Expr
	Name   string
}

// Index is bracket access: `Object[Key]`.
type Index struct {
	Object Expr
	Key    Expr
}

// Call is a plain function call: `Fn(Args...)`.
type Call struct {
	Fn   Expr
	Args []Expr
}

// MethodCall is colon-call syntax: `Object:Method(Args...)`.
type MethodCall struct {
	Object Expr
	Method string
	Args   []Expr
}

func (*Ident) exprNode()      {}
func (*String) exprNode()     {}
func (*Nil) exprNode()        {}
func (*Field) exprNode()      {}
func (*Index) exprNode()      {}
func (*Call) exprNode()       {}
func (*MethodCall) exprNode() {}

// --- Statements ---

// Local declares one or more locals in a single statement:
// `local a, b = x, y`. Values may be shorter than Names (trailing
// names are left nil) but never longer.
type Local struct {
	Names  []string
	Values []Expr
}

// Assign is a single-target assignment: `Target = Value`.
type Assign struct {
	Target Expr
	Value  Expr
}

// ExprStmt evaluates an expression for its side effects.
type ExprStmt struct {
	X Expr
}

func (*Local) stmtNode()    {}
func (*Assign) stmtNode()   {}
func (*ExprStmt) stmtNode() {}

// Access builds the right accessor for a field name: dotted access when the
// name is a valid Lua identifier, bracket/string access otherwise.
func Access(object Expr, name string) Expr {
	if ValidIdent(name) {
		return &Field{Object: object, Name: name}
	}
	return &Index{Object: object, Key: &String{Value: name}}
}
