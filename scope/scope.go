// Package scope implements the compiler's two-tier symbol table: one
// flat global scope shared by the whole program, and one local scope per
// function definition that also assigns frame offsets as declarations
// are made.
//
// This replaces the source's intrusive linked list of LVar records
// (threaded through a single global "locals_linked_list_head") with an
// ordered slice owned by the scope itself, per the specification's
// design note on replacing linked-list-everywhere state with explicit,
// owned structures.
package scope

import (
	"fmt"

	"github.com/skx/jcc/ast"
	"github.com/skx/jcc/types"
)

// Global is the single, flat, program-wide scope that top-level variable
// declarations are bound into.
type Global struct {
	vars []*ast.Variable
}

// NewGlobal returns an empty global scope.
func NewGlobal() *Global {
	return &Global{}
}

// Declare binds name to typ as a new global.  It is an error to declare
// the same name twice.
func (g *Global) Declare(name string, typ *types.Type) (*ast.Variable, error) {
	if _, ok := g.Lookup(name); ok {
		return nil, fmt.Errorf("redeclaration of %q", name)
	}
	v := &ast.Variable{Name: name, Type: typ, Global: true}
	g.vars = append(g.vars, v)
	return v, nil
}

// Lookup returns the global named name, if any.
func (g *Global) Lookup(name string) (*ast.Variable, bool) {
	for _, v := range g.vars {
		if v.Name == name {
			return v, true
		}
	}
	return nil, false
}

// Vars returns every declared global, in declaration order.
func (g *Global) Vars() []*ast.Variable {
	return g.vars
}

// frameBase is the offset of the first local/parameter slot in a
// function's frame (invariant 4 of the specification: the contiguous
// region starts at offset 8).
const frameBase = 8

// Local is the single, flat scope of one function definition: its
// parameters and locals all share it, since the grammar does not nest
// scopes at block boundaries.
type Local struct {
	vars []*ast.Variable
	next int // next offset to hand out for a contiguous declaration
}

// NewLocal returns an empty local scope, ready to assign offsets starting
// at frameBase.
func NewLocal() *Local {
	return &Local{next: frameBase}
}

// slots returns how many 8-byte frame slots a variable of typ occupies:
// one for a scalar or pointer, or 1+length for an array (one slot for
// the variable itself, plus one per element - see the specification's
// data model note on array allocation).
func slots(typ *types.Type) int {
	if typ.Kind == types.Array {
		return 1 + typ.Length
	}
	return 1
}

// Declare allocates a new, contiguous frame slot for name and binds it.
// Used for ordinary locals and for the first six parameters, which are
// indistinguishable from locals as far as frame layout is concerned.
func (l *Local) Declare(name string, typ *types.Type) (*ast.Variable, error) {
	if _, ok := l.Lookup(name); ok {
		return nil, fmt.Errorf("redeclaration of %q", name)
	}
	v := &ast.Variable{Name: name, Type: typ, Offset: l.next}
	l.vars = append(l.vars, v)
	l.next += slots(typ) * 8
	return v, nil
}

// DeclareTemp allocates an unnamed, compiler-generated local (used by
// compound-assignment desugaring to hold the address of a complex lvalue
// exactly once).  Unlike Declare, the generated name is never visible to
// Lookup from user source, since the lexer's identifier grammar cannot
// produce a "$"-prefixed token.
func (l *Local) DeclareTemp(seq int, typ *types.Type) *ast.Variable {
	name := fmt.Sprintf("$tmp%d", seq)
	v := &ast.Variable{Name: name, Type: typ, Offset: l.next}
	l.vars = append(l.vars, v)
	l.next += slots(typ) * 8
	return v
}

// DeclareCallerSlot binds parameter name to the fixed, caller-supplied
// offset for the index-th parameter (1-indexed), where index >= 7.  These
// parameters consume no frame space of their own - the caller already
// placed them above the saved base pointer - so they bypass the
// contiguous allocation counter entirely.
func (l *Local) DeclareCallerSlot(name string, typ *types.Type, index int) (*ast.Variable, error) {
	if _, ok := l.Lookup(name); ok {
		return nil, fmt.Errorf("redeclaration of %q", name)
	}
	offset := -(8*(index-7) + 16)
	v := &ast.Variable{Name: name, Type: typ, Offset: offset}
	l.vars = append(l.vars, v)
	return v, nil
}

// Lookup returns the local or parameter named name, if any.
func (l *Local) Lookup(name string) (*ast.Variable, bool) {
	for _, v := range l.vars {
		if v.Name == name {
			return v, true
		}
	}
	return nil, false
}

// Vars returns every declaration made in this scope, in declaration
// order (parameters first, by construction).
func (l *Local) Vars() []*ast.Variable {
	return l.vars
}

// FrameSize returns the number of bytes consumed by the contiguous
// region of this frame: every declaration made through Declare or
// DeclareTemp, not counting parameters bound via DeclareCallerSlot.
func (l *Local) FrameSize() int {
	return l.next - frameBase
}
