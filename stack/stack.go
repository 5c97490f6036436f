// Package stack implements a simple mutex-protected string stack.
//
// The math-compiler teacher used this to model an RPN calculator's
// runtime value stack. This compiler's runtime values never touch a Go
// data structure - they live on the generated program's own physical
// stack - so this package is repurposed as the code generator's
// control-flow construct nesting tracker: Push/Pop record entry and exit
// from an if/while/for construct and, when given a logger, emit a debug
// trace line naming the construct and the resulting nesting depth.
package stack

import (
	"errors"
	"sync"

	"github.com/sirupsen/logrus"
)

// Stack holds the stack-data, protected by a mutex.
type Stack struct {
	lock sync.Mutex
	s    []string
	log  *logrus.Logger
}

// New returns a new, empty stack. log may be nil, in which case Push and
// Pop do not trace.
func New(log *logrus.Logger) *Stack {
	return &Stack{log: log}
}

// Push enters a construct (e.g. "if", "while", "for").
func (s *Stack) Push(v string) {
	s.lock.Lock()
	defer s.lock.Unlock()

	s.s = append(s.s, v)
	if s.log != nil {
		s.log.WithField("depth", len(s.s)).Debugf("entering %s", v)
	}
}

// Pop leaves the most recently entered construct.
func (s *Stack) Pop() (string, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	l := len(s.s)
	if l == 0 {
		return "", errors.New("empty stack")
	}

	res := s.s[l-1]
	s.s = s.s[:l-1]
	if s.log != nil {
		s.log.WithField("depth", len(s.s)).Debugf("leaving %s", res)
	}
	return res, nil
}

// Empty reports whether the stack holds no open constructs.
func (s *Stack) Empty() bool {
	s.lock.Lock()
	defer s.lock.Unlock()

	return len(s.s) == 0
}

// Depth returns the current nesting depth.
func (s *Stack) Depth() int {
	s.lock.Lock()
	defer s.lock.Unlock()

	return len(s.s)
}
