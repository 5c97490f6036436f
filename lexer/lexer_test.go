package lexer

import (
	"testing"

	"github.com/skx/jcc/token"
)

func collect(t *testing.T, src string) []*token.Token {
	t.Helper()
	head, err := Tokenize(src)
	if err != nil {
		t.Fatalf("unexpected lex error: %v", err)
	}
	var out []*token.Token
	for tok := head; tok != nil; tok = tok.Next {
		out = append(out, tok)
		if tok.Kind == token.EOF {
			break
		}
	}
	return out
}

func TestSimpleExpression(t *testing.T) {
	toks := collect(t, "1 + 2 * 3;")

	expected := []struct {
		kind token.Kind
		text string
	}{
		{token.NUMBER, "1"},
		{token.RESERVED, "+"},
		{token.NUMBER, "2"},
		{token.RESERVED, "*"},
		{token.NUMBER, "3"},
		{token.RESERVED, ";"},
		{token.EOF, ""},
	}

	if len(toks) != len(expected) {
		t.Fatalf("got %d tokens, expected %d", len(toks), len(expected))
	}
	for i, want := range expected {
		if toks[i].Kind != want.kind {
			t.Errorf("token %d: kind %v != %v", i, toks[i].Kind, want.kind)
		}
		if toks[i].Text != want.text {
			t.Errorf("token %d: text %q != %q", i, toks[i].Text, want.text)
		}
	}
}

func TestKeywords(t *testing.T) {
	toks := collect(t, "return if else while for int sizeof foo")
	kinds := []token.Kind{
		token.RETURN, token.IF, token.ELSE, token.WHILE, token.FOR,
		token.INT, token.SIZEOF, token.IDENT, token.EOF,
	}
	if len(toks) != len(kinds) {
		t.Fatalf("got %d tokens, expected %d", len(toks), len(kinds))
	}
	for i, k := range kinds {
		if toks[i].Kind != k {
			t.Errorf("token %d: kind %v != %v", i, toks[i].Kind, k)
		}
	}
}

func TestKeywordPrefixIsIdentifier(t *testing.T) {
	toks := collect(t, "intern returned")
	if toks[0].Kind != token.IDENT || toks[0].Text != "intern" {
		t.Errorf("expected 'intern' to lex as an identifier, got %v %q", toks[0].Kind, toks[0].Text)
	}
	if toks[1].Kind != token.IDENT || toks[1].Text != "returned" {
		t.Errorf("expected 'returned' to lex as an identifier, got %v %q", toks[1].Kind, toks[1].Text)
	}
}

func TestTwoCharOperators(t *testing.T) {
	toks := collect(t, "== != <= >= ++ -- += -= *= /= %=")
	for i, tok := range toks {
		if tok.Kind == token.EOF {
			break
		}
		if tok.Kind != token.RESERVED {
			t.Errorf("token %d: expected RESERVED, got %v", i, tok.Kind)
		}
	}
}

func TestNumberLiteral(t *testing.T) {
	toks := collect(t, "1234")
	if toks[0].Kind != token.NUMBER || toks[0].Value != 1234 {
		t.Errorf("expected NUMBER 1234, got %v %d", toks[0].Kind, toks[0].Value)
	}
}

func TestInvalidToken(t *testing.T) {
	_, err := Tokenize("1 @ 2")
	if err == nil {
		t.Fatalf("expected an error for an invalid token")
	}
}

func TestNegativeNumberIsTwoTokens(t *testing.T) {
	// Unlike an RPN calculator's lexer, this grammar has no unary-minus
	// literal folding at the lexer level: "-3" is MINUS then NUMBER,
	// and it is the parser's job to build Sub(0, 3).
	toks := collect(t, "-3")
	if toks[0].Kind != token.RESERVED || toks[0].Text != "-" {
		t.Errorf("expected '-' token, got %v %q", toks[0].Kind, toks[0].Text)
	}
	if toks[1].Kind != token.NUMBER || toks[1].Value != 3 {
		t.Errorf("expected NUMBER 3, got %v %d", toks[1].Kind, toks[1].Value)
	}
}
