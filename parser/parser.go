// Package parser implements the recursive-descent parser and semantic
// analyzer: it walks the token stream the lexer produced, builds the
// typed-where-knowable AST of package ast, binds every identifier to a
// declaration in scope, assigns frame offsets, and desugars compound
// assignment, pre/post increment, array indexing, and pointer arithmetic
// into the small core of AST shapes package ast defines.
//
// The "current token" and "current function scope" globals of a
// hand-rolled C parser are replaced here by fields of Parser, threaded
// explicitly through every production instead of living as package-level
// state.
package parser

import (
	"github.com/skx/jcc/ast"
	"github.com/skx/jcc/config"
	"github.com/skx/jcc/diag"
	"github.com/skx/jcc/lexer"
	"github.com/skx/jcc/scope"
	"github.com/skx/jcc/token"
	"github.com/skx/jcc/types"
)

// Parser holds the parser's state: the token cursor, the scopes it is
// binding identifiers into, and the function table calls resolve
// against.
type Parser struct {
	source string

	// tok is the token currently under consideration; the parser has
	// exactly one token of lookahead beyond it, available for free via
	// tok.Next since the lexer already produced a linked stream.
	tok *token.Token

	globals *scope.Global

	// funcs is the ordered function table, bounded by cfg.MaxFunctions.
	// A function is appended to it before its body is parsed, which is
	// what lets a call resolve to the function currently being
	// defined (i.e. permits recursion).
	funcs []*ast.FuncDef

	// current is the function definition being parsed, or nil at the
	// top level.
	current *ast.FuncDef

	// local is current's scope, or nil at the top level.
	local *scope.Local

	tmpSeq int

	cfg *config.Constants

	program *ast.Program
}

// New builds a Parser over source, tokenizing it up front.
func New(source string, cfg *config.Constants) (*Parser, error) {
	head, err := lexer.Tokenize(source)
	if err != nil {
		return nil, err
	}
	return &Parser{
		source:  source,
		tok:     head,
		globals: scope.NewGlobal(),
		cfg:     cfg,
	}, nil
}

// Parse consumes the whole token stream and returns the resulting
// Program: an ordered list of function definitions and an ordered list
// of global variables.
func (p *Parser) Parse() (*ast.Program, error) {
	p.program = &ast.Program{}
	for !p.atEOF() {
		if err := p.topLevelDecl(); err != nil {
			return nil, err
		}
	}
	return p.program, nil
}

// --- token cursor -----------------------------------------------------

func (p *Parser) isKind(k token.Kind) bool {
	return p.tok.Kind == k
}

func (p *Parser) isReserved(text string) bool {
	return p.tok.Kind == token.RESERVED && p.tok.Text == text
}

func (p *Parser) atEOF() bool {
	return p.tok.Kind == token.EOF
}

func (p *Parser) advance() {
	if p.tok.Kind != token.EOF {
		p.tok = p.tok.Next
	}
}

func (p *Parser) consumeKind(k token.Kind) bool {
	if p.isKind(k) {
		p.advance()
		return true
	}
	return false
}

func (p *Parser) consumeReserved(text string) bool {
	if p.isReserved(text) {
		p.advance()
		return true
	}
	return false
}

func (p *Parser) expect(text string) error {
	if !p.consumeReserved(text) {
		return diag.New(p.source, p.tok.Pos, "Expected `%s`.", text)
	}
	return nil
}

func (p *Parser) expectIdent() (*token.Token, error) {
	if !p.isKind(token.IDENT) {
		return nil, diag.New(p.source, p.tok.Pos, "Expected an identifier.")
	}
	tok := p.tok
	p.advance()
	return tok, nil
}

func (p *Parser) expectNumber() (int, error) {
	if !p.isKind(token.NUMBER) {
		return 0, diag.New(p.source, p.tok.Pos, "Expected a number.")
	}
	v := p.tok.Value
	p.advance()
	return v, nil
}

// --- types --------------------------------------------------------------

// parseType parses `"int" "*"*`.
func (p *Parser) parseType() (*types.Type, error) {
	if !p.consumeKind(token.INT) {
		return nil, diag.New(p.source, p.tok.Pos, "Expected `int`.")
	}
	typ := types.IntType
	for p.consumeReserved("*") {
		typ = types.PointerTo(typ)
	}
	return typ, nil
}

// --- top level ------------------------------------------------------------

// topLevelDecl parses one top-level unit: `Type Ident "(" ... ")" "{" ... "}"`
// (a function definition) or `Type Ident ("[" Number "]")? ";"` (a global).
func (p *Parser) topLevelDecl() error {
	typ, err := p.parseType()
	if err != nil {
		return err
	}
	nameTok, err := p.expectIdent()
	if err != nil {
		return err
	}

	if p.isReserved("(") {
		return p.funcDef(typ, nameTok)
	}
	return p.globalVarDecl(typ, nameTok)
}

func (p *Parser) globalVarDecl(typ *types.Type, nameTok *token.Token) error {
	if p.consumeReserved("[") {
		n, err := p.expectNumber()
		if err != nil {
			return err
		}
		if err := p.expect("]"); err != nil {
			return err
		}
		typ = types.ArrayOf(typ, n)
	}
	if err := p.expect(";"); err != nil {
		return err
	}

	v, err := p.globals.Declare(nameTok.Text, typ)
	if err != nil {
		return diag.New(p.source, nameTok.Pos, "Redeclaration of %q.", nameTok.Text)
	}
	p.program.Globals = append(p.program.Globals, v)
	return nil
}

func (p *Parser) funcDef(retType *types.Type, nameTok *token.Token) error {
	if len(p.funcs) >= p.cfg.MaxFunctions {
		return diag.New(p.source, nameTok.Pos, "Too many function definitions.")
	}

	fn := &ast.FuncDef{Name: nameTok.Text, RetType: retType}
	// Appending before the body is parsed is what permits recursive
	// calls to resolve: a call to fn found while parsing fn's own body
	// finds fn already in the table.
	p.funcs = append(p.funcs, fn)
	p.program.Funcs = append(p.program.Funcs, fn)

	savedCurrent, savedLocal := p.current, p.local
	p.current = fn
	p.local = scope.NewLocal()
	defer func() {
		p.current, p.local = savedCurrent, savedLocal
	}()

	if err := p.expect("("); err != nil {
		return err
	}
	index := 0
	if !p.isReserved(")") {
		for {
			index++
			ptyp, err := p.parseType()
			if err != nil {
				return err
			}
			pname, err := p.expectIdent()
			if err != nil {
				return err
			}

			var v *ast.Variable
			if index <= 6 {
				v, err = p.local.Declare(pname.Text, ptyp)
			} else {
				v, err = p.local.DeclareCallerSlot(pname.Text, ptyp, index)
			}
			if err != nil {
				return diag.New(p.source, pname.Pos, "Redeclaration of %q.", pname.Text)
			}
			fn.Params = append(fn.Params, v)

			if !p.consumeReserved(",") {
				break
			}
		}
	}
	if err := p.expect(")"); err != nil {
		return err
	}
	if err := p.expect("{"); err != nil {
		return err
	}

	var body []*ast.Node
	for !p.consumeReserved("}") {
		stmt, err := p.statement()
		if err != nil {
			return err
		}
		body = append(body, stmt)
	}

	fn.Body = body
	fn.Locals = p.local.Vars()
	fn.FrameSize = p.local.FrameSize()
	return nil
}

// --- statements -----------------------------------------------------------

func (p *Parser) statement() (*ast.Node, error) {
	switch {
	case p.consumeKind(token.RETURN):
		e, err := p.expression()
		if err != nil {
			return nil, err
		}
		if err := p.expect(";"); err != nil {
			return nil, err
		}
		return &ast.Node{Kind: ast.Return, Lhs: e}, nil

	case p.consumeKind(token.IF):
		if err := p.expect("("); err != nil {
			return nil, err
		}
		cond, err := p.expression()
		if err != nil {
			return nil, err
		}
		if err := p.expect(")"); err != nil {
			return nil, err
		}
		then, err := p.statement()
		if err != nil {
			return nil, err
		}
		node := &ast.Node{Kind: ast.If, Cond: cond, Then: then}
		if p.consumeKind(token.ELSE) {
			els, err := p.statement()
			if err != nil {
				return nil, err
			}
			node.Else = els
		}
		return node, nil

	case p.consumeKind(token.WHILE):
		if err := p.expect("("); err != nil {
			return nil, err
		}
		cond, err := p.expression()
		if err != nil {
			return nil, err
		}
		if err := p.expect(")"); err != nil {
			return nil, err
		}
		body, err := p.statement()
		if err != nil {
			return nil, err
		}
		return &ast.Node{Kind: ast.While, Cond: cond, Body: []*ast.Node{body}}, nil

	case p.consumeKind(token.FOR):
		if err := p.expect("("); err != nil {
			return nil, err
		}
		node := &ast.Node{Kind: ast.For}
		if !p.isReserved(";") {
			init, err := p.expression()
			if err != nil {
				return nil, err
			}
			node.Init = init
		}
		if err := p.expect(";"); err != nil {
			return nil, err
		}
		if !p.isReserved(";") {
			cond, err := p.expression()
			if err != nil {
				return nil, err
			}
			node.Cond = cond
		}
		if err := p.expect(";"); err != nil {
			return nil, err
		}
		if !p.isReserved(")") {
			post, err := p.expression()
			if err != nil {
				return nil, err
			}
			node.Post = post
		}
		if err := p.expect(")"); err != nil {
			return nil, err
		}
		body, err := p.statement()
		if err != nil {
			return nil, err
		}
		node.Body = []*ast.Node{body}
		return node, nil

	case p.isReserved("{"):
		return p.block()

	case p.isKind(token.INT):
		return p.localVarDecl()

	default:
		e, err := p.expression()
		if err != nil {
			return nil, err
		}
		if err := p.expect(";"); err != nil {
			return nil, err
		}
		return e, nil
	}
}

func (p *Parser) block() (*ast.Node, error) {
	if err := p.expect("{"); err != nil {
		return nil, err
	}
	var stmts []*ast.Node
	for !p.consumeReserved("}") {
		s, err := p.statement()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, s)
	}
	return &ast.Node{Kind: ast.Block, Body: stmts}, nil
}

func (p *Parser) localVarDecl() (*ast.Node, error) {
	typ, err := p.parseType()
	if err != nil {
		return nil, err
	}
	nameTok, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	if p.consumeReserved("[") {
		n, err := p.expectNumber()
		if err != nil {
			return nil, err
		}
		if err := p.expect("]"); err != nil {
			return nil, err
		}
		typ = types.ArrayOf(typ, n)
	}
	if err := p.expect(";"); err != nil {
		return nil, err
	}

	if _, err := p.local.Declare(nameTok.Text, typ); err != nil {
		return nil, diag.New(p.source, nameTok.Pos, "Redeclaration of %q.", nameTok.Text)
	}
	return &ast.Node{Kind: ast.VarDecl}, nil
}

// --- expressions ------------------------------------------------------

func (p *Parser) expression() (*ast.Node, error) {
	return p.assignment()
}

// assignment implements both plain "=" and the compound forms
// "+= -= *= /= %=", desugaring the compound forms so a complex lvalue is
// only ever evaluated once (see desugarCompoundAssign).
func (p *Parser) assignment() (*ast.Node, error) {
	lhsPos := p.tok.Pos
	node, err := p.equality()
	if err != nil {
		return nil, err
	}

	switch {
	case p.consumeReserved("="):
		if !isAddressable(node) {
			return nil, diag.New(p.source, lhsPos, "Left-hand side of assignment is not addressable.")
		}
		rhs, err := p.assignment()
		if err != nil {
			return nil, err
		}
		return &ast.Node{Kind: ast.Assign, Lhs: node, Rhs: rhs}, nil

	case p.consumeReserved("+="):
		return p.compoundAssign(node, "+", lhsPos)
	case p.consumeReserved("-="):
		return p.compoundAssign(node, "-", lhsPos)
	case p.consumeReserved("*="):
		return p.compoundAssign(node, "*", lhsPos)
	case p.consumeReserved("/="):
		return p.compoundAssign(node, "/", lhsPos)
	case p.consumeReserved("%="):
		return p.compoundAssign(node, "%", lhsPos)
	}
	return node, nil
}

func (p *Parser) compoundAssign(lhs *ast.Node, op string, lhsPos int) (*ast.Node, error) {
	rhs, err := p.assignment()
	if err != nil {
		return nil, err
	}
	return p.desugarCompoundAssign(lhs, op, rhs, lhsPos)
}

// desugarCompoundAssign implements `lhs OP= rhs` as:
//
//	Comma(Assign(tmp, AddrOf(lhs)), Assign(Deref(tmp), OP(Deref(tmp), rhs)))
//
// where tmp is a freshly allocated unnamed local of type pointer-to-
// typeof(lhs).  This is also how `++x`/`--x`/`x++`/`x--` are built, via
// OP "+"/"-" against the literal 1.
func (p *Parser) desugarCompoundAssign(lhs *ast.Node, op string, rhs *ast.Node, lhsPos int) (*ast.Node, error) {
	if !isAddressable(lhs) {
		return nil, diag.New(p.source, lhsPos, "Left-hand side of assignment is not addressable.")
	}

	lhsType := p.typeOf(lhs)
	tmpVar := p.local.DeclareTemp(p.nextTemp(), types.PointerTo(lhsType))
	tmp := &ast.Node{Kind: ast.LocalVar, Name: tmpVar.Name, Offset: tmpVar.Offset, Type: tmpVar.Type}

	assignTmp := &ast.Node{
		Kind: ast.Assign,
		Lhs:  tmp,
		Rhs:  &ast.Node{Kind: ast.AddrOf, Lhs: lhs},
	}

	derefTmp := &ast.Node{Kind: ast.Deref, Lhs: tmp}

	opNode, err := p.buildArith(op, derefTmp, rhs, lhsPos)
	if err != nil {
		return nil, err
	}

	assignResult := &ast.Node{
		Kind: ast.Assign,
		Lhs:  &ast.Node{Kind: ast.Deref, Lhs: tmp},
		Rhs:  opNode,
	}

	return &ast.Node{Kind: ast.Comma, Lhs: assignTmp, Rhs: assignResult}, nil
}

func (p *Parser) nextTemp() int {
	p.tmpSeq++
	return p.tmpSeq - 1
}

// buildArith applies a compound-assignment operator, going through the
// pointer-aware Add/Sub construction for "+"/"-" so `p += 1` for a
// pointer p scales correctly.
func (p *Parser) buildArith(op string, lhs, rhs *ast.Node, pos int) (*ast.Node, error) {
	switch op {
	case "+":
		return p.combineAdd(lhs, rhs, pos)
	case "-":
		return p.combineSub(lhs, rhs, pos)
	case "*":
		return &ast.Node{Kind: ast.Mul, Lhs: lhs, Rhs: rhs}, nil
	case "/":
		return &ast.Node{Kind: ast.Div, Lhs: lhs, Rhs: rhs}, nil
	case "%":
		return &ast.Node{Kind: ast.Mod, Lhs: lhs, Rhs: rhs}, nil
	default:
		return nil, diag.New(p.source, pos, "Internal error: unknown compound operator %q.", op)
	}
}

func isAddressable(n *ast.Node) bool {
	switch n.Kind {
	case ast.LocalVar, ast.GlobalVar, ast.Deref:
		return true
	default:
		return false
	}
}

func (p *Parser) equality() (*ast.Node, error) {
	node, err := p.relational()
	if err != nil {
		return nil, err
	}
	for {
		switch {
		case p.consumeReserved("=="):
			rhs, err := p.relational()
			if err != nil {
				return nil, err
			}
			node = &ast.Node{Kind: ast.Eq, Lhs: node, Rhs: rhs}
		case p.consumeReserved("!="):
			rhs, err := p.relational()
			if err != nil {
				return nil, err
			}
			node = &ast.Node{Kind: ast.Neq, Lhs: node, Rhs: rhs}
		default:
			return node, nil
		}
	}
}

func (p *Parser) relational() (*ast.Node, error) {
	node, err := p.add()
	if err != nil {
		return nil, err
	}
	for {
		switch {
		case p.consumeReserved("<"):
			rhs, err := p.add()
			if err != nil {
				return nil, err
			}
			node = &ast.Node{Kind: ast.Lt, Lhs: node, Rhs: rhs}
		case p.consumeReserved(">"):
			// a > b  ==  b < a
			rhs, err := p.add()
			if err != nil {
				return nil, err
			}
			node = &ast.Node{Kind: ast.Lt, Lhs: rhs, Rhs: node}
		case p.consumeReserved("<="):
			rhs, err := p.add()
			if err != nil {
				return nil, err
			}
			node = &ast.Node{Kind: ast.Ngt, Lhs: node, Rhs: rhs}
		case p.consumeReserved(">="):
			// a >= b  ==  b <= a
			rhs, err := p.add()
			if err != nil {
				return nil, err
			}
			node = &ast.Node{Kind: ast.Ngt, Lhs: rhs, Rhs: node}
		default:
			return node, nil
		}
	}
}

func (p *Parser) add() (*ast.Node, error) {
	node, err := p.mulDiv()
	if err != nil {
		return nil, err
	}
	for {
		if p.isReserved("+") {
			pos := p.tok.Pos
			p.advance()
			rhs, err := p.mulDiv()
			if err != nil {
				return nil, err
			}
			node, err = p.combineAdd(node, rhs, pos)
			if err != nil {
				return nil, err
			}
			continue
		}
		if p.isReserved("-") {
			pos := p.tok.Pos
			p.advance()
			rhs, err := p.mulDiv()
			if err != nil {
				return nil, err
			}
			node, err = p.combineSub(node, rhs, pos)
			if err != nil {
				return nil, err
			}
			continue
		}
		return node, nil
	}
}

// combineAdd applies the pointer-aware addition rules: int+int is plain
// Add; ptr-like+int (in either order) scales the int operand by the
// configured pointer scale; ptr+ptr is a semantic error.
func (p *Parser) combineAdd(lhs, rhs *ast.Node, pos int) (*ast.Node, error) {
	lt, rt := p.typeOf(lhs), p.typeOf(rhs)
	switch {
	case !lt.IsPointerLike() && !rt.IsPointerLike():
		return &ast.Node{Kind: ast.Add, Lhs: lhs, Rhs: rhs}, nil
	case lt.IsPointerLike() && !rt.IsPointerLike():
		return &ast.Node{Kind: ast.Add, Lhs: lhs, Rhs: p.scale(rhs)}, nil
	case !lt.IsPointerLike() && rt.IsPointerLike():
		return &ast.Node{Kind: ast.Add, Lhs: rhs, Rhs: p.scale(lhs)}, nil
	default:
		return nil, diag.New(p.source, pos, "Cannot add two pointers.")
	}
}

// combineSub applies the pointer-aware subtraction rules: int-int is
// plain Sub; ptr-int scales the int and stays a pointer; ptr-ptr divides
// the byte difference by the configured pointer scale and yields an int;
// int-ptr is a semantic error.
func (p *Parser) combineSub(lhs, rhs *ast.Node, pos int) (*ast.Node, error) {
	lt, rt := p.typeOf(lhs), p.typeOf(rhs)
	switch {
	case !lt.IsPointerLike() && !rt.IsPointerLike():
		return &ast.Node{Kind: ast.Sub, Lhs: lhs, Rhs: rhs}, nil
	case lt.IsPointerLike() && !rt.IsPointerLike():
		return &ast.Node{Kind: ast.Sub, Lhs: lhs, Rhs: p.scale(rhs)}, nil
	case lt.IsPointerLike() && rt.IsPointerLike():
		diff := &ast.Node{Kind: ast.Sub, Lhs: lhs, Rhs: rhs}
		return &ast.Node{Kind: ast.Div, Lhs: diff, Rhs: p.newNum(int64(p.cfg.PointerScale))}, nil
	default:
		return nil, diag.New(p.source, pos, "Cannot subtract a pointer from an int.")
	}
}

// scale multiplies n by the pointer-arithmetic scale factor.  The scale
// is always cfg.PointerScale (8 by default) regardless of the pointee's
// actual sizeof, matching the behavior this compiler was modeled on; see
// the design notes.
func (p *Parser) scale(n *ast.Node) *ast.Node {
	return &ast.Node{Kind: ast.Mul, Lhs: n, Rhs: p.newNum(int64(p.cfg.PointerScale))}
}

func (p *Parser) mulDiv() (*ast.Node, error) {
	node, err := p.unary()
	if err != nil {
		return nil, err
	}
	for {
		switch {
		case p.consumeReserved("*"):
			rhs, err := p.unary()
			if err != nil {
				return nil, err
			}
			node = &ast.Node{Kind: ast.Mul, Lhs: node, Rhs: rhs}
		case p.consumeReserved("/"):
			rhs, err := p.unary()
			if err != nil {
				return nil, err
			}
			node = &ast.Node{Kind: ast.Div, Lhs: node, Rhs: rhs}
		case p.consumeReserved("%"):
			rhs, err := p.unary()
			if err != nil {
				return nil, err
			}
			node = &ast.Node{Kind: ast.Mod, Lhs: node, Rhs: rhs}
		default:
			return node, nil
		}
	}
}

func (p *Parser) unary() (*ast.Node, error) {
	switch {
	case p.consumeKind(token.SIZEOF):
		operand, err := p.unary()
		if err != nil {
			return nil, err
		}
		return p.newNum(int64(p.typeOf(operand).Size())), nil

	case p.isReserved("+"):
		p.advance()
		return p.primary()

	case p.isReserved("-"):
		p.advance()
		rhs, err := p.primary()
		if err != nil {
			return nil, err
		}
		return &ast.Node{Kind: ast.Sub, Lhs: p.newNum(0), Rhs: rhs}, nil

	case p.isReserved("++"):
		pos := p.tok.Pos
		p.advance()
		lv, err := p.lval()
		if err != nil {
			return nil, err
		}
		return p.desugarCompoundAssign(lv, "+", p.newNum(1), pos)

	case p.isReserved("--"):
		pos := p.tok.Pos
		p.advance()
		lv, err := p.lval()
		if err != nil {
			return nil, err
		}
		return p.desugarCompoundAssign(lv, "-", p.newNum(1), pos)

	case p.isReserved("*"):
		p.advance()
		inner, err := p.deref()
		if err != nil {
			return nil, err
		}
		return &ast.Node{Kind: ast.Deref, Lhs: inner}, nil

	case p.isReserved("&"):
		p.advance()
		inner, err := p.lval()
		if err != nil {
			return nil, err
		}
		return &ast.Node{Kind: ast.AddrOf, Lhs: inner}, nil

	case p.looksLikeLVal():
		pos := p.tok.Pos
		lv, err := p.lval()
		if err != nil {
			return nil, err
		}
		switch {
		case p.isReserved("++"):
			p.advance()
			sum, err := p.desugarCompoundAssign(lv, "+", p.newNum(1), pos)
			if err != nil {
				return nil, err
			}
			return &ast.Node{Kind: ast.Sub, Lhs: sum, Rhs: p.newNum(1)}, nil
		case p.isReserved("--"):
			p.advance()
			diffNode, err := p.desugarCompoundAssign(lv, "-", p.newNum(1), pos)
			if err != nil {
				return nil, err
			}
			return &ast.Node{Kind: ast.Add, Lhs: diffNode, Rhs: p.newNum(1)}, nil
		default:
			return lv, nil
		}

	default:
		return p.primary()
	}
}

// looksLikeLVal reports whether the upcoming tokens start an LVal (a
// plain identifier, possibly array-indexed) rather than a function call,
// number, or parenthesized expression.  The lexer already links the full
// token stream, so the one token of lookahead this needs is free.
func (p *Parser) looksLikeLVal() bool {
	if !p.isKind(token.IDENT) {
		return false
	}
	next := p.tok.Next
	return !(next != nil && next.Kind == token.RESERVED && next.Text == "(")
}

// deref implements the Deref production, used as the operand of unary
// "*": a further "*" (pointer chain), "&" LVal, a parenthesized
// expression, or a plain LVal.
func (p *Parser) deref() (*ast.Node, error) {
	switch {
	case p.isReserved("*"):
		p.advance()
		inner, err := p.deref()
		if err != nil {
			return nil, err
		}
		return &ast.Node{Kind: ast.Deref, Lhs: inner}, nil
	case p.isReserved("&"):
		p.advance()
		inner, err := p.lval()
		if err != nil {
			return nil, err
		}
		return &ast.Node{Kind: ast.AddrOf, Lhs: inner}, nil
	case p.isReserved("("):
		p.advance()
		e, err := p.expression()
		if err != nil {
			return nil, err
		}
		if err := p.expect(")"); err != nil {
			return nil, err
		}
		return e, nil
	default:
		return p.lval()
	}
}

// lval implements the LVal production: either a further dereference, or
// an identifier with an optional array index, desugared per
// `a[b] => Deref(Add(a, b))`.
func (p *Parser) lval() (*ast.Node, error) {
	if p.isReserved("*") {
		p.advance()
		inner, err := p.deref()
		if err != nil {
			return nil, err
		}
		return &ast.Node{Kind: ast.Deref, Lhs: inner}, nil
	}

	nameTok, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	node, err := p.resolveIdent(nameTok)
	if err != nil {
		return nil, err
	}

	if p.consumeReserved("[") {
		idx, err := p.expression()
		if err != nil {
			return nil, err
		}
		if err := p.expect("]"); err != nil {
			return nil, err
		}
		sum, err := p.combineAdd(node, idx, nameTok.Pos)
		if err != nil {
			return nil, err
		}
		return &ast.Node{Kind: ast.Deref, Lhs: sum}, nil
	}
	return node, nil
}

// resolveIdent binds an identifier token to a declared variable, trying
// the current function's scope before falling back to the global scope.
func (p *Parser) resolveIdent(tok *token.Token) (*ast.Node, error) {
	if p.local != nil {
		if v, ok := p.local.Lookup(tok.Text); ok {
			return &ast.Node{Kind: ast.LocalVar, Name: v.Name, Offset: v.Offset, Type: v.Type}, nil
		}
	}
	if v, ok := p.globals.Lookup(tok.Text); ok {
		return &ast.Node{Kind: ast.GlobalVar, Name: v.Name, Type: v.Type}, nil
	}
	return nil, diag.New(p.source, tok.Pos, "Undeclared identifier: %s.", tok.Text)
}

func (p *Parser) primary() (*ast.Node, error) {
	if p.isReserved("(") {
		p.advance()
		e, err := p.expression()
		if err != nil {
			return nil, err
		}
		if err := p.expect(")"); err != nil {
			return nil, err
		}
		return e, nil
	}

	if p.isKind(token.IDENT) {
		next := p.tok.Next
		if next != nil && next.Kind == token.RESERVED && next.Text == "(" {
			return p.call()
		}
		return p.lval()
	}

	if p.isKind(token.NUMBER) {
		v := p.tok.Value
		p.advance()
		return p.newNum(int64(v)), nil
	}

	return nil, diag.New(p.source, p.tok.Pos, "Expected an expression.")
}

func (p *Parser) call() (*ast.Node, error) {
	nameTok, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	if err := p.expect("("); err != nil {
		return nil, err
	}

	var args []*ast.Node
	if !p.isReserved(")") {
		for {
			a, err := p.expression()
			if err != nil {
				return nil, err
			}
			args = append(args, a)
			if !p.consumeReserved(",") {
				break
			}
		}
	}
	if err := p.expect(")"); err != nil {
		return nil, err
	}

	callee := p.lookupFunc(nameTok.Text)
	if callee == nil {
		return nil, diag.New(p.source, nameTok.Pos, "Call to undeclared function: %s.", nameTok.Text)
	}
	return &ast.Node{Kind: ast.Call, Name: nameTok.Text, Args: args, Callee: callee}, nil
}

func (p *Parser) lookupFunc(name string) *ast.FuncDef {
	for _, f := range p.funcs {
		if f.Name == name {
			return f
		}
	}
	return nil
}

func (p *Parser) newNum(v int64) *ast.Node {
	return &ast.Node{Kind: ast.Num, Value: v, Type: types.IntType}
}

// typeOf computes the type of an already-built node without waiting for
// the formal type-annotation pass (package ast's Annotate): the parser
// needs this immediately, while still parsing, to decide how pointer
// arithmetic should scale and what type a compound-assignment temporary
// should hold.  It mirrors Annotate's switch exactly; running both is
// redundant but harmless, since they always agree.
func (p *Parser) typeOf(n *ast.Node) *types.Type {
	switch n.Kind {
	case ast.Num, ast.LocalVar, ast.GlobalVar:
		return n.Type
	case ast.AddrOf:
		return types.PointerTo(p.typeOf(n.Lhs))
	case ast.Deref:
		t := p.typeOf(n.Lhs)
		if t.Kind == types.Pointer {
			return t.Base
		}
		return types.IntType
	case ast.Add, ast.Sub, ast.Mul, ast.Div, ast.Mod, ast.Assign:
		return p.typeOf(n.Lhs)
	case ast.Eq, ast.Neq, ast.Lt, ast.Ngt:
		return types.IntType
	case ast.Comma:
		return p.typeOf(n.Rhs)
	case ast.Call:
		return n.Callee.RetType
	default:
		return types.IntType
	}
}
