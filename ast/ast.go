// Package ast defines the abstract syntax tree produced by the parser.
//
// Rather than the one-struct-many-optional-fields shape of a hand-rolled
// C AST, every node here carries a Kind tag plus the handful of fields
// its shape actually uses; block statements, call arguments, parameters,
// and locals are ordered slices rather than intrusive linked lists.
package ast

import "github.com/skx/jcc/types"

// Kind tags a Node with the grammar form it represents.
type Kind int

const (
	// Num is an integer literal.
	Num Kind = iota
	// LocalVar references a variable living in the current function's
	// frame, at Offset bytes from the base pointer.
	LocalVar
	// GlobalVar references a variable living at a fixed data label.
	GlobalVar

	// AddrOf computes the address of Lhs ("&x").
	AddrOf
	// Deref loads through the address yielded by Lhs ("*x").
	Deref
	// Return evaluates Lhs and returns it from the enclosing function.
	Return

	// Add, Sub, Mul, Div, Mod are signed binary arithmetic; Lhs and
	// Rhs are evaluated left-to-right.
	Add
	Sub
	Mul
	Div
	Mod

	// Eq, Neq, Lt, Ngt are comparisons; all yield 0 or 1.  Ngt reads
	// "not greater than", i.e. less-or-equal.
	Eq
	Neq
	Lt
	Ngt

	// Assign stores the value of Rhs through the address of Lhs, and
	// yields the stored value.
	Assign

	// Comma evaluates Lhs for side effects, discards its value, then
	// evaluates and yields Rhs.
	Comma

	// If is `if (Cond) Then [else Else]`.
	If
	// While is `while (Cond) Body[0]`.
	While
	// For is `for (Init; Cond; Post) Body[0]`; Init, Cond, and Post
	// may each be nil.
	For
	// Block is a brace-delimited sequence of statements.
	Block

	// Call invokes Callee with Args; the code generator evaluates and
	// pushes them in reverse source order (see the code generator).
	Call

	// VarDecl is a bare declaration; it emits no code of its own.
	VarDecl
)

// Node is one AST form.  Which fields are meaningful is determined by
// Kind; see the Kind constants above for the mapping.
type Node struct {
	Kind Kind

	// Type is filled in by Annotate; nil for purely-statement nodes
	// (If, While, For, Block, VarDecl, Return) which never themselves
	// produce a value.
	Type *types.Type

	// Value holds the literal value of a Num node.
	Value int64

	// Name is the source name of a LocalVar/GlobalVar, kept for
	// diagnostics and for emitting the .data label of a GlobalVar.
	Name string

	// Offset is the frame offset of a LocalVar, in bytes from the
	// base pointer (may be negative for parameters beyond the sixth).
	Offset int

	// Lhs and Rhs are the operands of every unary/binary/assignment
	// form, and the condition expressions shared by control-flow
	// nodes reuse Cond instead (see below) to keep statement shapes
	// distinct from expression shapes.
	Lhs, Rhs *Node

	// Cond, Then, Else back the If node; Cond and Body[0] back While;
	// Init, Cond, Post, and Body[0] back For.
	Cond, Then, Else *Node
	Init, Post        *Node

	// Body holds the statements of a Block, or the single controlled
	// statement of While/For (as Body[0], for uniform iteration by
	// the code generator).
	Body []*Node

	// Args holds the call arguments of a Call, in source (not
	// evaluation) order.
	Args []*Node

	// Callee is the resolved target of a Call, bound by the parser at
	// parse time (recursion is the only forward reference the grammar
	// allows, and the parser tracks the function currently being
	// defined to permit it).
	Callee *FuncDef
}

// Variable is a declared name: a parameter or local (Offset meaningful,
// Global false) or a global (Offset unused, Global true, accessed by
// Name as a data label).
type Variable struct {
	Name   string
	Type   *types.Type
	Offset int
	Global bool
}

// FuncDef is a top-level function definition: its signature, its locals
// (including its parameters, which occupy the front of the same frame),
// and its body.
type FuncDef struct {
	Name    string
	RetType *types.Type

	// Params are this function's parameters, in declaration order;
	// each also appears in Locals, since parameters and locals share
	// one contiguous frame region (invariant 4 of the specification).
	Params []*Variable

	// Locals holds every declaration in the function's single,
	// unnested scope: parameters first, then ordinary locals and any
	// compiler-generated temporaries produced by desugaring, interleaved
	// in the order they were declared.
	Locals []*Variable

	// Body is the function's statement list.
	Body []*Node

	// FrameSize is the number of bytes of contiguous frame space
	// consumed by Locals, computed by package scope as declarations
	// are made. The code generator still reserves a fixed amount
	// regardless of this value (see the design notes on the 208-byte
	// reservation); FrameSize is retained so that decision is a single
	// constant away from being size-accurate.
	FrameSize int
}

// Program is the top-level aggregate: the ordered function definitions
// and the ordered list of global variables that make up one translation
// unit.
type Program struct {
	Funcs   []*FuncDef
	Globals []*Variable
}
