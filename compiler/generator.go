// generator.go walks a typed *ast.Program and emits Intel-syntax x86-64
// assembly, simulating a stack machine on top of the physical stack: the
// code for any value-producing node leaves exactly one 8-byte value on
// top of the stack, and the code for any statement leaves none.

package compiler

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/skx/jcc/ast"
	"github.com/skx/jcc/config"
	"github.com/skx/jcc/stack"
	"github.com/skx/jcc/types"
)

// argRegisters are the System V AMD64 integer argument registers, in
// order.
var argRegisters = []string{"rdi", "rsi", "rdx", "rcx", "r8", "r9"}

// Generator holds the code generator's state.
type Generator struct {
	out      strings.Builder
	cfg      *config.Constants
	debug    bool
	log      *logrus.Logger
	labelSeq int
	nesting  *stack.Stack
}

// NewGenerator returns a Generator that will emit assembly against cfg's
// constants. debug adds a per-function comment banner to the output;
// trace lines go to log at Debug level.
func NewGenerator(cfg *config.Constants, debug bool, log *logrus.Logger) *Generator {
	return &Generator{
		cfg:     cfg,
		debug:   debug,
		log:     log,
		nesting: stack.New(log),
	}
}

// Generate emits the complete assembly file for prog: every function
// definition in source order, followed by a .data section for any
// globals.
func (g *Generator) Generate(prog *ast.Program) (string, error) {
	g.out.WriteString(".intel_syntax noprefix\n")
	g.out.WriteString(".globl main\n")

	for _, fn := range prog.Funcs {
		if err := g.genFunc(fn); err != nil {
			return "", err
		}
	}

	if len(prog.Globals) > 0 {
		g.out.WriteString("\n.data\n")
		for _, v := range prog.Globals {
			fmt.Fprintf(&g.out, "%s: .zero %d\n", v.Name, globalBytes(v.Type))
		}
	}

	return g.out.String(), nil
}

// globalBytes is the byte count a .data label reserves for v: 8 for a
// scalar or pointer, 8*length for an array.
func globalBytes(t *types.Type) int {
	if t.Kind == types.Array {
		return 8 * t.Length
	}
	return 8
}

func (g *Generator) genFunc(fn *ast.FuncDef) error {
	g.log.WithFields(logrus.Fields{
		"function":   fn.Name,
		"frame_size": fn.FrameSize,
		"params":     len(fn.Params),
	}).Debug("emitting function")

	fmt.Fprintf(&g.out, "\n%s:\n", fn.Name)
	g.emit("push rbp")
	g.emit("mov rbp, rsp")
	// The frame reservation is always cfg.FrameBytes regardless of
	// fn.FrameSize; see the design notes on why this stays fixed.
	g.emit(fmt.Sprintf("sub rsp, %d", g.cfg.FrameBytes))

	if g.debug {
		g.out.WriteString(fmt.Sprintf("        # [debug] entering %s\n", fn.Name))
	}

	n := len(fn.Params)
	if n > 6 {
		n = 6
	}
	for i := 0; i < n; i++ {
		p := fn.Params[i]
		g.emit(fmt.Sprintf("mov %s, %s", frameOperand(p.Offset), argRegisters[i]))
	}

	for _, stmt := range fn.Body {
		if _, err := g.gen(stmt); err != nil {
			return err
		}
	}

	// A function whose body does not end in an explicit return falls
	// through to here with whatever is left in rax - matching the
	// undefined-but-not-crashing behavior of the source this was
	// modeled on.
	g.emitEpilogue()
	return nil
}

func (g *Generator) emitEpilogue() {
	g.emit("mov rsp, rbp")
	g.emit("pop rbp")
	g.emit("ret")
}

// frameOperand renders the memory operand for a frame offset: "rbp -
// offset" for the common positive case, "rbp + N" for the caller-supplied
// negative offsets of parameters beyond the sixth.
func frameOperand(offset int) string {
	if offset >= 0 {
		return fmt.Sprintf("[rbp-%d]", offset)
	}
	return fmt.Sprintf("[rbp+%d]", -offset)
}

func (g *Generator) newLabel() string {
	label := fmt.Sprintf(".L%05d", g.labelSeq)
	g.labelSeq++
	return label
}

func (g *Generator) emitLabel(label string) {
	fmt.Fprintf(&g.out, "%s:\n", label)
}

func (g *Generator) emit(instr string) {
	fmt.Fprintf(&g.out, "        %s\n", instr)
}

func (g *Generator) enterConstruct(name string) {
	g.nesting.Push(name)
}

func (g *Generator) leaveConstruct() {
	_, _ = g.nesting.Pop()
}

// gen emits code for n and reports whether it left a value on the stack.
func (g *Generator) gen(n *ast.Node) (bool, error) {
	if n == nil {
		return false, nil
	}

	switch n.Kind {
	case ast.Num:
		g.emit(fmt.Sprintf("push %d", n.Value))
		return true, nil

	case ast.LocalVar, ast.GlobalVar:
		if err := g.genAddr(n); err != nil {
			return false, err
		}
		if n.Type != nil && n.Type.Kind == types.Array {
			// The address is the value; an array never decays
			// to a loaded scalar.
			return true, nil
		}
		g.emit("pop rax")
		g.emit("mov rax, [rax]")
		g.emit("push rax")
		return true, nil

	case ast.AddrOf:
		if err := g.genAddr(n.Lhs); err != nil {
			return false, err
		}
		return true, nil

	case ast.Deref:
		if _, err := g.gen(n.Lhs); err != nil {
			return false, err
		}
		g.emit("pop rax")
		g.emit("mov rax, [rax]")
		g.emit("push rax")
		return true, nil

	case ast.Assign:
		if err := g.genAddr(n.Lhs); err != nil {
			return false, err
		}
		if _, err := g.gen(n.Rhs); err != nil {
			return false, err
		}
		g.emit("pop rdi") // value
		g.emit("pop rax") // address
		g.emit("mov [rax], rdi")
		g.emit("push rdi")
		return true, nil

	case ast.Comma:
		pushed, err := g.gen(n.Lhs)
		if err != nil {
			return false, err
		}
		if pushed {
			g.emit("pop rax")
		}
		return g.gen(n.Rhs)

	case ast.Add, ast.Sub, ast.Mul, ast.Div, ast.Mod:
		return g.genArith(n)

	case ast.Eq, ast.Neq, ast.Lt, ast.Ngt:
		return g.genCompare(n)

	case ast.Return:
		if _, err := g.gen(n.Lhs); err != nil {
			return false, err
		}
		g.emit("pop rax")
		g.emitEpilogue()
		return false, nil

	case ast.If:
		return false, g.genIf(n)

	case ast.While:
		return false, g.genWhile(n)

	case ast.For:
		return false, g.genFor(n)

	case ast.Block:
		for _, stmt := range n.Body {
			pushed, err := g.gen(stmt)
			if err != nil {
				return false, err
			}
			if pushed {
				g.emit("pop rax")
			}
		}
		return false, nil

	case ast.Call:
		return g.genCall(n)

	case ast.VarDecl:
		return false, nil

	default:
		return false, fmt.Errorf("internal error: unhandled AST node kind %d reached the emitter", n.Kind)
	}
}

// genAddr emits code that pushes the address of n, for the handful of
// node kinds that are addressable.
func (g *Generator) genAddr(n *ast.Node) error {
	switch n.Kind {
	case ast.LocalVar:
		offset := n.Offset
		if n.Type != nil && n.Type.Kind == types.Array {
			// An array's slots run from Offset to Offset+8*Length;
			// elements are indexed upward from the far end so that
			// every element lands inside that region.
			offset += 8 * n.Type.Length
		}
		g.emit(fmt.Sprintf("lea rax, %s", frameOperand(offset)))
		g.emit("push rax")
		return nil
	case ast.GlobalVar:
		g.emit(fmt.Sprintf("lea rax, [rip+%s]", n.Name))
		g.emit("push rax")
		return nil
	case ast.Deref:
		// n.Lhs's value already *is* the address we want.
		_, err := g.gen(n.Lhs)
		return err
	default:
		return fmt.Errorf("internal error: node kind %d is not addressable", n.Kind)
	}
}

func (g *Generator) genArith(n *ast.Node) (bool, error) {
	if _, err := g.gen(n.Lhs); err != nil {
		return false, err
	}
	if _, err := g.gen(n.Rhs); err != nil {
		return false, err
	}
	g.emit("pop rdi")
	g.emit("pop rax")

	switch n.Kind {
	case ast.Add:
		g.emit("add rax, rdi")
	case ast.Sub:
		g.emit("sub rax, rdi")
	case ast.Mul:
		g.emit("imul rax, rdi")
	case ast.Div:
		g.emit("cqo")
		g.emit("idiv rdi")
	case ast.Mod:
		g.emit("cqo")
		g.emit("idiv rdi")
		g.emit("mov rax, rdx")
	}
	g.emit("push rax")
	return true, nil
}

func (g *Generator) genCompare(n *ast.Node) (bool, error) {
	if _, err := g.gen(n.Lhs); err != nil {
		return false, err
	}
	if _, err := g.gen(n.Rhs); err != nil {
		return false, err
	}
	g.emit("pop rdi")
	g.emit("pop rax")
	g.emit("cmp rax, rdi")

	switch n.Kind {
	case ast.Eq:
		g.emit("sete al")
	case ast.Neq:
		g.emit("setne al")
	case ast.Lt:
		g.emit("setl al")
	case ast.Ngt:
		g.emit("setle al")
	}
	g.emit("movzx rax, al")
	g.emit("push rax")
	return true, nil
}

func (g *Generator) genIf(n *ast.Node) error {
	g.enterConstruct("if")
	defer g.leaveConstruct()

	elseLabel := g.newLabel()
	endLabel := g.newLabel()

	if _, err := g.gen(n.Cond); err != nil {
		return err
	}
	g.emit("pop rax")
	g.emit("cmp rax, 0")
	g.emit(fmt.Sprintf("je %s", elseLabel))

	if pushed, err := g.gen(n.Then); err != nil {
		return err
	} else if pushed {
		g.emit("pop rax")
	}
	g.emit(fmt.Sprintf("jmp %s", endLabel))

	g.emitLabel(elseLabel)
	if n.Else != nil {
		if pushed, err := g.gen(n.Else); err != nil {
			return err
		} else if pushed {
			g.emit("pop rax")
		}
	}
	g.emitLabel(endLabel)
	return nil
}

func (g *Generator) genWhile(n *ast.Node) error {
	g.enterConstruct("while")
	defer g.leaveConstruct()

	top := g.newLabel()
	bot := g.newLabel()

	g.emitLabel(top)
	if _, err := g.gen(n.Cond); err != nil {
		return err
	}
	g.emit("pop rax")
	g.emit("cmp rax, 0")
	g.emit(fmt.Sprintf("je %s", bot))

	if pushed, err := g.gen(n.Body[0]); err != nil {
		return err
	} else if pushed {
		g.emit("pop rax")
	}
	g.emit(fmt.Sprintf("jmp %s", top))
	g.emitLabel(bot)
	return nil
}

func (g *Generator) genFor(n *ast.Node) error {
	g.enterConstruct("for")
	defer g.leaveConstruct()

	top := g.newLabel()
	bot := g.newLabel()

	if n.Init != nil {
		if pushed, err := g.gen(n.Init); err != nil {
			return err
		} else if pushed {
			g.emit("pop rax")
		}
	}

	g.emitLabel(top)
	if n.Cond != nil {
		if _, err := g.gen(n.Cond); err != nil {
			return err
		}
	} else {
		g.emit("push 1")
	}
	g.emit("pop rax")
	g.emit("cmp rax, 0")
	g.emit(fmt.Sprintf("je %s", bot))

	if pushed, err := g.gen(n.Body[0]); err != nil {
		return err
	} else if pushed {
		g.emit("pop rax")
	}

	if n.Post != nil {
		if pushed, err := g.gen(n.Post); err != nil {
			return err
		} else if pushed {
			g.emit("pop rax")
		}
	}
	g.emit(fmt.Sprintf("jmp %s", top))
	g.emitLabel(bot)
	return nil
}

// genCall materializes arguments in reverse source order so that, once
// all are on the stack, a forward run of pops assigns them to the ABI
// registers in left-to-right order; any arguments beyond the sixth are
// left on the stack for the callee to read at its negative frame offsets.
//
// 16-byte stack alignment at the call site is not enforced, matching the
// source this was modeled on - a real limitation when calling into libc.
func (g *Generator) genCall(n *ast.Node) (bool, error) {
	regCount := len(n.Args)
	if regCount > 6 {
		regCount = 6
	}

	for i := len(n.Args) - 1; i >= 0; i-- {
		if _, err := g.gen(n.Args[i]); err != nil {
			return false, err
		}
	}
	for i := 0; i < regCount; i++ {
		g.emit(fmt.Sprintf("pop %s", argRegisters[i]))
	}

	g.emit(fmt.Sprintf("call %s", n.Name))
	g.emit("push rax")
	return true, nil
}
