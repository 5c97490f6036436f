package scope

import (
	"testing"

	"github.com/skx/jcc/types"
)

func TestGlobalDeclareAndLookup(t *testing.T) {
	g := NewGlobal()

	v, err := g.Declare("counter", types.IntType)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !v.Global {
		t.Errorf("expected a global variable to be marked Global")
	}

	got, ok := g.Lookup("counter")
	if !ok || got != v {
		t.Errorf("lookup did not return the declared variable")
	}

	if _, ok := g.Lookup("missing"); ok {
		t.Errorf("lookup found a variable that was never declared")
	}
}

func TestGlobalRedeclarationIsAnError(t *testing.T) {
	g := NewGlobal()
	if _, err := g.Declare("a", types.IntType); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := g.Declare("a", types.IntType); err == nil {
		t.Errorf("expected an error redeclaring 'a'")
	}
}

func TestLocalContiguousOffsets(t *testing.T) {
	l := NewLocal()

	a, _ := l.Declare("a", types.IntType)
	b, _ := l.Declare("b", types.IntType)

	if a.Offset != 8 {
		t.Errorf("expected first local at offset 8, got %d", a.Offset)
	}
	if b.Offset != 16 {
		t.Errorf("expected second local at offset 16, got %d", b.Offset)
	}
	if l.FrameSize() != 16 {
		t.Errorf("expected frame size 16, got %d", l.FrameSize())
	}
}

// An array of length N occupies 1+N slots: one for the variable, one
// per element.
func TestLocalArrayOccupiesLengthPlusOneSlots(t *testing.T) {
	l := NewLocal()

	arr, _ := l.Declare("arr", types.ArrayOf(types.IntType, 3))
	next, _ := l.Declare("next", types.IntType)

	if arr.Offset != 8 {
		t.Errorf("expected array at offset 8, got %d", arr.Offset)
	}
	if next.Offset != 8+4*8 {
		t.Errorf("expected next local at offset %d, got %d", 8+4*8, next.Offset)
	}
}

func TestLocalRedeclarationIsAnError(t *testing.T) {
	l := NewLocal()
	if _, err := l.Declare("a", types.IntType); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := l.Declare("a", types.IntType); err == nil {
		t.Errorf("expected an error redeclaring 'a'")
	}
}

func TestDeclareTempNameIsUnreachableFromUserSource(t *testing.T) {
	l := NewLocal()
	tmp := l.DeclareTemp(0, types.PointerTo(types.IntType))

	if tmp.Name != "$tmp0" {
		t.Errorf("expected name '$tmp0', got %q", tmp.Name)
	}
	// The lexer's identifier grammar cannot produce a token containing
	// "$", so user source can never collide with this name.
	if _, ok := l.Lookup("tmp0"); ok {
		t.Errorf("temp should not be reachable under its un-prefixed name")
	}
}

// Parameters beyond the sixth bypass the contiguous allocation counter
// entirely and land at fixed negative offsets.
func TestDeclareCallerSlotOffsets(t *testing.T) {
	l := NewLocal()
	l.Declare("a", types.IntType) // occupies offset 8, advancing next

	seventh, err := l.DeclareCallerSlot("g", types.IntType, 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if seventh.Offset != -16 {
		t.Errorf("expected offset -16 for the 7th parameter, got %d", seventh.Offset)
	}

	eighth, _ := l.DeclareCallerSlot("h", types.IntType, 8)
	if eighth.Offset != -24 {
		t.Errorf("expected offset -24 for the 8th parameter, got %d", eighth.Offset)
	}

	// DeclareCallerSlot must not have touched the contiguous counter.
	b, _ := l.Declare("b", types.IntType)
	if b.Offset != 16 {
		t.Errorf("expected contiguous local after one Declare at offset 16, got %d", b.Offset)
	}
}
