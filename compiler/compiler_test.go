package compiler

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skx/jcc/config"
)

// We try to compile several bogus programs.
func TestBogusInput(t *testing.T) {
	tests := []string{
		// program with invalid token
		"int main() { return 3 @ 5; }",

		// undeclared identifier
		"int main() { return missing; }",

		// call to an undeclared function
		"int main() { return missing(1); }",

		// redeclaration in the same scope
		"int main() { int a; int a; return 0; }",

		// unterminated statement
		"int main() { return 1",
	}

	for _, test := range tests {
		c := New(test)
		_, err := c.Compile()
		if err == nil {
			t.Errorf("We expected an error handling %q, but got none!", test)
		}
	}
}

// Test some valid programs compile without error and look like assembly.
func TestValidPrograms(t *testing.T) {
	tests := []string{
		"int main() { return 0; }",
		"int main() { return 1+2*3; }",
		"int main() { int a; a=3; return a+4; }",
		"int main() { int a; int b; a=1; b=2; return a<b; }",
		"int fib(int n) { if (n<2) return n; return fib(n-1)+fib(n-2); } int main() { return fib(10); }",
		"int main() { int a; int *p; a=5; p=&a; *p=9; return a; }",
	}

	for _, test := range tests {
		c := New(test)
		out, err := c.Compile()
		require.NoErrorf(t, err, "unexpected error compiling %q", test)
		assert.Contains(t, out, "main:")
		assert.True(t, strings.HasPrefix(out, ".intel_syntax noprefix\n"))
	}
}

// An empty program is valid: zero functions, zero globals, no .data
// section, no "main:" label.
func TestEmptyProgramCompiles(t *testing.T) {
	c := New("")
	out, err := c.Compile()
	require.NoError(t, err)
	assert.NotContains(t, out, ".data")
}

func TestGlobalsProduceADataSection(t *testing.T) {
	c := New("int counter; int main() { counter = 1; return counter; }")
	out, err := c.Compile()
	require.NoError(t, err)
	assert.Contains(t, out, ".data")
	assert.Contains(t, out, "counter: .zero 8")
}

func TestDebugFlagAddsACommentBanner(t *testing.T) {
	c := New("int main() { return 0; }")
	c.SetDebug(true)
	out, err := c.Compile()
	require.NoError(t, err)
	assert.Contains(t, out, "[debug] entering main")
}

func TestSetConfigChangesFrameReservation(t *testing.T) {
	cfg := config.DefaultConstants()
	cfg.FrameBytes = 64

	c := New("int main() { return 0; }")
	c.SetConfig(cfg)
	out, err := c.Compile()
	require.NoError(t, err)
	assert.Contains(t, out, "sub rsp, 64")
}
