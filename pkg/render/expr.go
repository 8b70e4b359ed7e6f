package render

import (
	"strconv"
	"strings"
)

// Expr is a PHP expression.
type Expr interface {
	php(depth int) string
}

type stringLit string

// String is a single-quoted PHP string literal.
func String(s string) Expr { return stringLit(s) }

func (s stringLit) php(int) string {
	return quote(string(s))
}

var quoter = strings.NewReplacer(`\`, `\\`, `'`, `\'`)

// quote escapes backslashes and single quotes for a single-quoted literal.
func quote(s string) string {
	return "'" + quoter.Replace(s) + "'"
}

type intLit int

// Int is an integer literal.
func Int(i int) Expr { return intLit(i) }

func (i intLit) php(int) string { return strconv.Itoa(int(i)) }

type rawExpr string

// Raw is PHP code emitted verbatim. Use it only for fixed code.
func Raw(code string) Expr { return rawExpr(code) }

func (r rawExpr) php(int) string { return string(r) }

// Variable is a PHP variable with optional array indexes.
type Variable struct {
	name   string
	index  []Expr
	append bool
}

// Var references a variable. The leading "$" is added when missing.
func Var(name string) *Variable {
	if !strings.HasPrefix(name, "$") {
		name = "$" + name
	}
	return &Variable{name: name}
}

// Index returns the variable indexed by string keys, e.g. $a['b']['c'].
func (v *Variable) Index(keys ...string) *Variable {
	next := &Variable{name: v.name, index: append([]Expr(nil), v.index...)}
	for _, k := range keys {
		next.index = append(next.index, String(k))
	}
	return next
}

// Append returns the append form $a[].
func (v *Variable) Append() *Variable {
	next := v.Index()
	next.append = true
	return next
}

func (v *Variable) php(depth int) string {
	var b strings.Builder
	b.WriteString(v.name)
	for _, idx := range v.index {
		b.WriteString("[")
		b.WriteString(idx.php(depth))
		b.WriteString("]")
	}
	if v.append {
		b.WriteString("[]")
	}
	return b.String()
}

// Entry is one element of an Array. A nil Key makes a list element.
type Entry struct {
	Key   Expr
	Value Expr
}

// Array is a PHP short array. Keyed arrays render one entry per line,
// lists render inline.
type Array []Entry

// List builds an unkeyed array of string literals.
func List(values ...string) Array {
	a := make(Array, 0, len(values))
	for _, v := range values {
		a = append(a, Entry{Value: String(v)})
	}
	return a
}

// Map builds a keyed array from ordered key/value string pairs.
func Map(pairs ...[2]string) Array {
	a := make(Array, 0, len(pairs))
	for _, p := range pairs {
		a = append(a, Entry{Key: String(p[0]), Value: String(p[1])})
	}
	return a
}

func (a Array) keyed() bool {
	for _, e := range a {
		if e.Key != nil {
			return true
		}
	}
	return false
}

func (a Array) php(depth int) string {
	if len(a) == 0 {
		return "[]"
	}
	if !a.keyed() {
		parts := make([]string, len(a))
		for i, e := range a {
			parts[i] = e.Value.php(depth)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	}
	var b strings.Builder
	b.WriteString("[\n")
	for _, e := range a {
		b.WriteString(indent(depth + 1))
		if e.Key != nil {
			b.WriteString(e.Key.php(depth + 1))
			b.WriteString(" => ")
		}
		b.WriteString(e.Value.php(depth + 1))
		b.WriteString(",\n")
	}
	b.WriteString(indent(depth))
	b.WriteString("]")
	return b.String()
}

type call struct {
	callee string
	args   []Expr
}

// Call is a function or method call; callee is emitted verbatim.
func Call(callee string, args ...Expr) Expr {
	return call{callee: callee, args: args}
}

func (c call) php(depth int) string {
	parts := make([]string, len(c.args))
	for i, a := range c.args {
		parts[i] = a.php(depth)
	}
	return c.callee + "(" + strings.Join(parts, ", ") + ")"
}

type not struct{ e Expr }

// Not negates an expression.
func Not(e Expr) Expr { return not{e} }

func (n not) php(depth int) string { return "!" + n.e.php(depth) }

type binary struct {
	op   string
	l, r Expr
}

// Identical is the strict comparison l === r.
func Identical(l, r Expr) Expr { return binary{"===", l, r} }

// Concat is the string concatenation l . r.
func Concat(l, r Expr) Expr { return binary{".", l, r} }

func (b binary) php(depth int) string {
	return b.l.php(depth) + " " + b.op + " " + b.r.php(depth)
}
