package compiler

import (
	"regexp"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skx/jcc/ast"
	"github.com/skx/jcc/config"
	"github.com/skx/jcc/types"
)

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.ErrorLevel)
	return log
}

// returnConst builds `int main() { return N; }` directly as an AST,
// bypassing the parser, to test the generator in isolation.
func returnConst(n int64) *ast.Program {
	fn := &ast.FuncDef{
		Name:    "main",
		RetType: types.IntType,
		Body: []*ast.Node{
			{Kind: ast.Return, Lhs: &ast.Node{Kind: ast.Num, Value: n, Type: types.IntType}},
		},
	}
	return &ast.Program{Funcs: []*ast.FuncDef{fn}}
}

func TestGenerateEmitsHeaderAndLabel(t *testing.T) {
	g := NewGenerator(config.DefaultConstants(), false, testLogger())
	out, err := g.Generate(returnConst(42))
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(out, ".intel_syntax noprefix\n.globl main\n"))
	assert.Contains(t, out, "main:")
	assert.Contains(t, out, "push 42")
	assert.Contains(t, out, "pop rax")
	assert.Contains(t, out, "ret")
}

func TestGenerateReservesConfiguredFrameSize(t *testing.T) {
	cfg := config.DefaultConstants()
	cfg.FrameBytes = 96
	g := NewGenerator(cfg, false, testLogger())

	out, err := g.Generate(returnConst(0))
	require.NoError(t, err)
	assert.Contains(t, out, "sub rsp, 96")
}

func TestGenerateGlobalsProduceZeroInitializedLabels(t *testing.T) {
	g := NewGenerator(config.DefaultConstants(), false, testLogger())
	prog := &ast.Program{
		Globals: []*ast.Variable{
			{Name: "counter", Type: types.IntType, Global: true},
			{Name: "buf", Type: types.ArrayOf(types.IntType, 4), Global: true},
		},
	}

	out, err := g.Generate(prog)
	require.NoError(t, err)
	assert.Contains(t, out, ".data")
	assert.Contains(t, out, "counter: .zero 8")
	assert.Contains(t, out, "buf: .zero 32")
}

// Every if/while/for construct allocates exactly two labels (property 3
// of the specification's testable properties).
func TestLabelCountMatchesConstructCount(t *testing.T) {
	fn := &ast.FuncDef{
		Name: "main",
		Body: []*ast.Node{
			{
				Kind: ast.If,
				Cond: &ast.Node{Kind: ast.Num, Value: 1, Type: types.IntType},
				Then: &ast.Node{Kind: ast.Return, Lhs: &ast.Node{Kind: ast.Num, Value: 1, Type: types.IntType}},
			},
			{
				Kind: ast.While,
				Cond: &ast.Node{Kind: ast.Num, Value: 0, Type: types.IntType},
				Body: []*ast.Node{{Kind: ast.Block}},
			},
			{Kind: ast.Return, Lhs: &ast.Node{Kind: ast.Num, Value: 0, Type: types.IntType}},
		},
	}
	prog := &ast.Program{Funcs: []*ast.FuncDef{fn}}

	g := NewGenerator(config.DefaultConstants(), false, testLogger())
	out, err := g.Generate(prog)
	require.NoError(t, err)

	labelDefs := regexp.MustCompile(`\.L\d{5}:`)
	assert.Len(t, labelDefs.FindAllString(out, -1), 4)
}

func TestFrameOperandSignsOffsetsCorrectly(t *testing.T) {
	assert.Equal(t, "[rbp-8]", frameOperand(8))
	assert.Equal(t, "[rbp+16]", frameOperand(-16))
}

func TestUnhandledNodeKindIsAnInternalError(t *testing.T) {
	g := NewGenerator(config.DefaultConstants(), false, testLogger())
	_, err := g.gen(&ast.Node{Kind: ast.Kind(999)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "internal error")
}
