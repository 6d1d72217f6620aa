package luaast

import (
	"bytes"
	"fmt"
	"strings"
)

// Renderer turns statement trees into Lua source text.
type Renderer struct {
	indentLevel int
	buffer      bytes.Buffer
}

// NewRenderer creates a renderer starting at the given indentation level.
func NewRenderer(indentLevel int) *Renderer {
	return &Renderer{indentLevel: indentLevel}
}

// Render renders a statement list, one newline-terminated statement per
// line, indented to the renderer's current level.
func (r *Renderer) Render(stmts []Stmt) string {
	r.buffer.Reset()
	for _, stmt := range stmts {
		r.renderStatement(stmt)
	}
	return r.buffer.String()
}

// RenderStmts is a convenience wrapper for one-shot rendering.
func RenderStmts(stmts []Stmt, indentLevel int) string {
	return NewRenderer(indentLevel).Render(stmts)
}

// RenderExpr renders a single expression with no indentation or terminator.
func RenderExpr(expr Expr) string {
	var r Renderer
	r.renderExpression(expr)
	return r.buffer.String()
}

func (r *Renderer) writeIndent() {
	for i := 0; i < r.indentLevel; i++ {
		r.buffer.WriteString("\t")
	}
}

func (r *Renderer) write(format string, args ...interface{}) {
	fmt.Fprintf(&r.buffer, format, args...)
}

func (r *Renderer) renderStatement(stmt Stmt) {
	r.writeIndent()
	switch s := stmt.(type) {
	case *Local:
		r.write("local %s", strings.Join(s.Names, ", "))
		if len(s.Values) > 0 {
			r.write(" = ")
			r.renderExpressionList(s.Values)
		}
	case *Assign:
		r.renderExpression(s.Target)
		r.write(" = ")
		r.renderExpression(s.Value)
	case *ExprStmt:
		r.renderExpression(s.X)
	default:
		r.write("-- unsupported statement type: %T", s)
	}
	r.buffer.WriteString("\n")
}

func (r *Renderer) renderExpression(expr Expr) {
	switch e := expr.(type) {
	case *Ident:
		r.write("%s", e.Name)
	case *String:
		r.write("%s", quoteString(e.Value))
	case *Nil:
		r.write("nil")
	case *Field:
		r.renderExpression(e.Object)
		r.write(".%s", e.Name)
	case *Index:
		r.renderExpression(e.Object)
		r.write("[")
		r.renderExpression(e.Key)
		r.write("]")
	case *Call:
		r.renderExpression(e.Fn)
		r.write("(")
		r.renderExpressionList(e.Args)
		r.write(")")
	case *MethodCall:
		r.renderExpression(e.Object)
		r.write(":%s(", e.Method)
		r.renderExpressionList(e.Args)
		r.write(")")
	default:
		r.write("--[[ unsupported expression type: %T ]]", e)
	}
}

func (r *Renderer) renderExpressionList(exprs []Expr) {
	for i, e := range exprs {
		if i > 0 {
			r.write(", ")
		}
		r.renderExpression(e)
	}
}

// quoteString renders a double-quoted Lua string literal, escaping the
// characters Lua cannot carry raw inside double quotes.
func quoteString(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch c {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			if c < 0x20 {
				fmt.Fprintf(&b, `\%d`, c)
			} else {
				b.WriteByte(c)
			}
		}
	}
	b.WriteByte('"')
	return b.String()
}
