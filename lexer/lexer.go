// Package lexer turns a source string into a linked stream of tokens.
package lexer

import (
	"strconv"

	"github.com/skx/jcc/diag"
	"github.com/skx/jcc/token"
)

// Lexer holds our object-state.
type Lexer struct {
	source       string // the complete program text, kept for diagnostics
	position     int    // current byte position
	readPosition int    // next byte position
	ch           byte   // current byte, 0 at end of input
}

// New creates a Lexer over the given source string.
func New(source string) *Lexer {
	l := &Lexer{source: source}
	l.readChar()
	return l
}

// Tokenize scans the whole source and returns the head of the resulting
// token stream, terminated by an EOF token.  It stops at the first
// lexical error.
func Tokenize(source string) (*token.Token, error) {
	l := New(source)

	var head token.Token
	cur := &head

	for {
		tok, err := l.nextToken()
		if err != nil {
			return nil, err
		}
		cur.Next = tok
		cur = tok
		if tok.Kind == token.EOF {
			break
		}
	}
	return head.Next, nil
}

// read one byte forward
func (l *Lexer) readChar() {
	if l.readPosition >= len(l.source) {
		l.ch = 0
	} else {
		l.ch = l.source[l.readPosition]
	}
	l.position = l.readPosition
	l.readPosition++
}

func (l *Lexer) skipWhitespace() {
	for isWhitespace(l.ch) {
		l.readChar()
	}
}

// twoCharOps lists every two-character operator the grammar recognizes.
var twoCharOps = []string{
	"==", "!=", "<=", ">=", "++", "--", "+=", "-=", "*=", "/=", "%=",
}

// singleCharPunct is the set of single-character punctuation/operators.
const singleCharPunct = ";=+-*/()<>{},%&[]"

// nextToken scans and returns the next token, skipping leading
// whitespace.  Recognition order (longest match wins within a rule):
// whitespace, keyword-or-identifier, decimal integer literal,
// two-character operators, single-character punctuation.
func (l *Lexer) nextToken() (*token.Token, error) {
	l.skipWhitespace()

	pos := l.position

	switch {
	case l.ch == 0:
		return &token.Token{Kind: token.EOF, Pos: pos}, nil

	case isIdentStart(l.ch):
		text := l.readIdentifier()
		return &token.Token{Kind: token.LookupIdentifier(text), Text: text, Pos: pos}, nil

	case isDigit(l.ch):
		text := l.readNumber()
		val, err := strconv.Atoi(text)
		if err != nil {
			return nil, diag.New(l.source, pos, "Invalid token.")
		}
		return &token.Token{Kind: token.NUMBER, Text: text, Value: val, Pos: pos}, nil
	}

	for _, op := range twoCharOps {
		if l.startsWith(op) {
			l.readChar()
			l.readChar()
			return &token.Token{Kind: token.RESERVED, Text: op, Pos: pos}, nil
		}
	}

	if indexByte(singleCharPunct, l.ch) {
		text := string(l.ch)
		l.readChar()
		return &token.Token{Kind: token.RESERVED, Text: text, Pos: pos}, nil
	}

	return nil, diag.New(l.source, pos, "Invalid token.")
}

func (l *Lexer) startsWith(s string) bool {
	if l.position+len(s) > len(l.source) {
		return false
	}
	return l.source[l.position:l.position+len(s)] == s
}

func (l *Lexer) readIdentifier() string {
	start := l.position
	for isIdentPart(l.ch) {
		l.readChar()
	}
	return l.source[start:l.position]
}

func (l *Lexer) readNumber() string {
	start := l.position
	for isDigit(l.ch) {
		l.readChar()
	}
	return l.source[start:l.position]
}

func isWhitespace(ch byte) bool {
	return ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r'
}

func isDigit(ch byte) bool {
	return '0' <= ch && ch <= '9'
}

func isIdentStart(ch byte) bool {
	return ('a' <= ch && ch <= 'z') || ('A' <= ch && ch <= 'Z')
}

func isIdentPart(ch byte) bool {
	return isIdentStart(ch) || isDigit(ch) || ch == '_'
}

func indexByte(set string, ch byte) bool {
	for i := 0; i < len(set); i++ {
		if set[i] == ch {
			return true
		}
	}
	return false
}
