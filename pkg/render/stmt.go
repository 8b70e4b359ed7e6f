package render

import "strings"

// Statement is one PHP statement, possibly spanning several lines.
type Statement interface {
	write(b *strings.Builder, depth int)
}

func indent(depth int) string {
	return strings.Repeat("  ", depth)
}

func line(b *strings.Builder, depth int, s string) {
	if s == "" {
		b.WriteString("\n")
		return
	}
	b.WriteString(indent(depth))
	b.WriteString(s)
	b.WriteString("\n")
}

type comment string

var commentQuoter = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ", "?>", "? >")

// Comment is a single-line // comment. Newlines are folded into spaces and
// "?>" is broken up so that it cannot end PHP mode.
func Comment(text string) Statement {
	return comment(commentQuoter.Replace(text))
}

func (c comment) write(b *strings.Builder, depth int) {
	line(b, depth, "// "+string(c))
}

type blank struct{}

// Blank is an empty line.
func Blank() Statement { return blank{} }

func (blank) write(b *strings.Builder, depth int) { line(b, depth, "") }

type rawStmt string

// RawStatement is a fixed line of PHP emitted verbatim.
func RawStatement(code string) Statement { return rawStmt(code) }

func (r rawStmt) write(b *strings.Builder, depth int) {
	for _, l := range strings.Split(string(r), "\n") {
		line(b, depth, l)
	}
}

type assign struct {
	target Expr
	value  Expr
}

// Assign is "target = value;".
func Assign(target, value Expr) Statement {
	return assign{target: target, value: value}
}

func (a assign) write(b *strings.Builder, depth int) {
	line(b, depth, a.target.php(depth)+" = "+a.value.php(depth)+";")
}

type exprStmt struct{ e Expr }

// Do evaluates an expression for its side effects.
func Do(e Expr) Statement { return exprStmt{e} }

func (s exprStmt) write(b *strings.Builder, depth int) {
	line(b, depth, s.e.php(depth)+";")
}

type ret struct{}

// Return is a bare "return;".
func Return() Statement { return ret{} }

func (ret) write(b *strings.Builder, depth int) { line(b, depth, "return;") }

type use string

// Use imports a class name.
func Use(class string) Statement { return use(class) }

func (u use) write(b *strings.Builder, depth int) { line(b, depth, "use "+string(u)+";") }

type include struct {
	keyword string
	path    Expr
}

// Require is "require path;".
func Require(path Expr) Statement { return include{"require", path} }

// RequireOnce is "require_once path;".
func RequireOnce(path Expr) Statement { return include{"require_once", path} }

// Include is "include path;".
func Include(path Expr) Statement { return include{"include", path} }

func (i include) write(b *strings.Builder, depth int) {
	line(b, depth, i.keyword+" "+i.path.php(depth)+";")
}

// IfBlock is "if (cond) { ... }".
type IfBlock struct {
	Cond Expr
	Body Block
}

// If opens a conditional block.
func If(cond Expr, body ...Statement) *IfBlock {
	return &IfBlock{Cond: cond, Body: body}
}

// Add appends statements to the body.
func (i *IfBlock) Add(stmts ...Statement) *IfBlock {
	i.Body = append(i.Body, stmts...)
	return i
}

func (i *IfBlock) write(b *strings.Builder, depth int) {
	line(b, depth, "if ("+i.Cond.php(depth)+") {")
	i.Body.write(b, depth+1)
	line(b, depth, "}")
}

// Block is a sequence of statements.
type Block []Statement

func (bl Block) write(b *strings.Builder, depth int) {
	for _, s := range bl {
		s.write(b, depth)
	}
}
