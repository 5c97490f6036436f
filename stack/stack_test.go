// stack_test.go - Simple test-cases for our stack

package stack

import "testing"

// TestEmpty: Test that the Empty() function works as expected.
func TestEmpty(t *testing.T) {
	s := New(nil)

	if !s.Empty() {
		t.Errorf("New stack is not empty!")
	}

	s.Push("if")

	if s.Empty() {
		t.Errorf("Despite storing a value the stack is still empty!")
	}
}

// TestEmptyPop: Test that pop'ing from an empty stack fails.
func TestEmptyPop(t *testing.T) {
	s := New(nil)

	_, err := s.Pop()
	if err == nil {
		t.Errorf("Expected an error popping from an empty stack!")
	}
}

// TestPushPop: Test that we can store/retrieve as we expect.
func TestPushPop(t *testing.T) {
	s := New(nil)

	s.Push("while")

	out, err := s.Pop()
	if err != nil {
		t.Errorf("We shouldn't get an error popping from our stack")
	}
	if out != "while" {
		t.Errorf("We retrieved a value from our stack, but it was wrong")
	}
}

// TestDepth: Depth tracks nesting as constructs enter and leave.
func TestDepth(t *testing.T) {
	s := New(nil)

	if s.Depth() != 0 {
		t.Errorf("expected depth 0, got %d", s.Depth())
	}

	s.Push("for")
	s.Push("if")

	if s.Depth() != 2 {
		t.Errorf("expected depth 2, got %d", s.Depth())
	}

	if _, err := s.Pop(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if s.Depth() != 1 {
		t.Errorf("expected depth 1, got %d", s.Depth())
	}
}
