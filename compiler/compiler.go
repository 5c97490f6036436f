// Package compiler drives the four-stage pipeline end to end: lex,
// parse (which also binds scopes, assigns frame offsets, and desugars),
// annotate types, and emit assembly.
//
// This plays the same role as the teacher's Compiler.Compile() (string,
// error): a single entry point that turns source text into assembly
// text, returning an error instead of terminating the process - only
// cmd/jcc calls os.Exit.
package compiler

import (
	"github.com/sirupsen/logrus"

	"github.com/skx/jcc/ast"
	"github.com/skx/jcc/config"
	"github.com/skx/jcc/parser"
)

// Compiler holds our object-state.
type Compiler struct {
	// source holds the program text we're compiling.
	source string

	// debug enables the generator's per-function assembly comment
	// banner and raises the trace logger's level.
	debug bool

	// cfg holds the tunable implementation constants; defaults to
	// config.DefaultConstants() until SetConfig overrides it.
	cfg *config.Constants

	log *logrus.Logger
}

// New creates a new compiler for the given source text.
func New(source string) *Compiler {
	log := logrus.New()
	log.SetLevel(logrus.InfoLevel)

	return &Compiler{
		source: source,
		cfg:    config.DefaultConstants(),
		log:    log,
	}
}

// SetDebug changes the debug-flag for our output: the generated assembly
// gets a per-function comment banner, and the trace logger starts
// emitting Debug-level lines.
func (c *Compiler) SetDebug(val bool) {
	c.debug = val
	if val {
		c.log.SetLevel(logrus.DebugLevel)
	} else {
		c.log.SetLevel(logrus.InfoLevel)
	}
}

// SetConfig overrides the implementation constants the parser and
// generator use (frame size, pointer scale, function-table capacity).
func (c *Compiler) SetConfig(cfg *config.Constants) {
	c.cfg = cfg
}

// Compile converts the source program into AMD64 assembly language.
func (c *Compiler) Compile() (string, error) {
	c.log.WithField("bytes", len(c.source)).Debug("starting compile")

	p, err := parser.New(c.source, c.cfg)
	if err != nil {
		return "", err
	}

	prog, err := p.Parse()
	if err != nil {
		return "", err
	}
	c.log.WithFields(logrus.Fields{
		"functions": len(prog.Funcs),
		"globals":   len(prog.Globals),
	}).Debug("parsed program")

	annotate(prog)

	gen := NewGenerator(c.cfg, c.debug, c.log)
	out, err := gen.Generate(prog)
	if err != nil {
		return "", err
	}

	c.log.Debug("compile finished")
	return out, nil
}

// annotate runs the type-annotation pass over every function body in
// prog, a thin wrapper kept so Compile reads as one stage per pipeline
// step.
func annotate(prog *ast.Program) {
	ast.AnnotateProgram(prog)
}
