package ast

import "github.com/skx/jcc/types"

// Annotate is the type-annotation pass: a post-order walk that fills in
// the Type field of every expression node that does not already carry
// one.  Num, LocalVar, and GlobalVar nodes already carry their type by
// the time the parser builds them; everything else is derived here from
// its children, bottom-up.
//
// Comparison nodes (Eq, Neq, Lt, Ngt) always canonicalize to types.IntType,
// even if that were to differ from some earlier assignment - this is the
// one REDESIGN FLAG applied relative to the source this was modeled on,
// which sometimes let a comparison inherit its left operand's type.
func Annotate(n *Node) {
	if n == nil {
		return
	}

	Annotate(n.Lhs)
	Annotate(n.Rhs)
	Annotate(n.Cond)
	Annotate(n.Then)
	Annotate(n.Else)
	Annotate(n.Init)
	Annotate(n.Post)
	for _, stmt := range n.Body {
		Annotate(stmt)
	}
	for _, arg := range n.Args {
		Annotate(arg)
	}

	switch n.Kind {
	case Num, LocalVar, GlobalVar:
		// Already typed by the parser.

	case Add, Sub, Mul, Div, Mod, Assign:
		n.Type = n.Lhs.Type

	case Eq, Neq, Lt, Ngt:
		n.Type = types.IntType

	case AddrOf:
		n.Type = types.PointerTo(n.Lhs.Type)

	case Deref:
		if n.Lhs.Type != nil && n.Lhs.Type.Kind == types.Pointer {
			n.Type = n.Lhs.Type.Base
		} else {
			// Permits the idiom *(&a + k) for scalar a: masks a genuine
			// type error in exchange for that idiom working, matching
			// the behavior this was modeled on.
			n.Type = types.IntType
		}

	case Comma:
		n.Type = n.Rhs.Type

	case Call:
		n.Type = n.Callee.RetType

	default:
		// Statement forms (Return, If, While, For, Block, VarDecl) never
		// produce a value; Type stays nil.
	}
}

// AnnotateProgram runs Annotate over every statement of every function in
// prog.
func AnnotateProgram(prog *Program) {
	for _, fn := range prog.Funcs {
		for _, stmt := range fn.Body {
			Annotate(stmt)
		}
	}
}
