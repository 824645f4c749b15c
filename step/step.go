package step

import (
	"errors"
	"fmt"
	"math"
)

// Operator is one of the four arithmetic operations a step may apply.
type Operator byte

const (
	OpAdd Operator = '+'
	OpSub Operator = '-'
	OpMul Operator = '*'
	OpDiv Operator = '/'
)

var (
	ErrNullArgument   = errors.New("required argument is nil")
	ErrInvalidStep    = errors.New("invalid step")
	ErrStackOverflow  = errors.New("step stack is full")
	ErrStackUnderflow = errors.New("step stack is empty")
)

func (o Operator) Valid() bool {
	switch o {
	case OpAdd, OpSub, OpMul, OpDiv:
		return true
	}
	return false
}

func (o Operator) String() string {
	return string(o)
}

func (o Operator) MarshalText() ([]byte, error) {
	if !o.Valid() {
		return nil, fmt.Errorf("%w: unknown operator %q", ErrInvalidStep, byte(o))
	}
	return []byte{byte(o)}, nil
}

func (o *Operator) UnmarshalText(text []byte) error {
	if len(text) != 1 || !Operator(text[0]).Valid() {
		return fmt.Errorf("%w: unknown operator %q", ErrInvalidStep, text)
	}
	*o = Operator(text[0])
	return nil
}

// Step is a single operation between two available numbers. For
// subtraction and division A is always the larger operand, so Result stays
// positive and integral.
type Step struct {
	Op     Operator `json:"op" yaml:"op"`
	A      int64    `json:"a" yaml:"a"`
	B      int64    `json:"b" yaml:"b"`
	Result int64    `json:"result" yaml:"result"`
}

// Validate checks the field invariants of a step.
func (s Step) Validate() error {
	if !s.Op.Valid() {
		return fmt.Errorf("%w: unknown operator %q", ErrInvalidStep, byte(s.Op))
	}
	if s.A <= 0 || s.B <= 0 || s.Result <= 0 {
		return fmt.Errorf("%w: non-positive value in %v", ErrInvalidStep, s)
	}
	var expected int64
	switch s.Op {
	case OpAdd:
		if s.A > math.MaxInt64-s.B {
			return fmt.Errorf("%w: sum overflows in %v", ErrInvalidStep, s)
		}
		expected = s.A + s.B
	case OpSub:
		if s.A <= s.B {
			return fmt.Errorf("%w: subtraction operands out of order in %v", ErrInvalidStep, s)
		}
		expected = s.A - s.B
	case OpMul:
		if s.A > math.MaxInt64/s.B {
			return fmt.Errorf("%w: product overflows in %v", ErrInvalidStep, s)
		}
		expected = s.A * s.B
	case OpDiv:
		if s.A < s.B || s.A%s.B != 0 {
			return fmt.Errorf("%w: inexact division in %v", ErrInvalidStep, s)
		}
		expected = s.A / s.B
	}
	if expected != s.Result {
		return fmt.Errorf("%w: %v does not compute", ErrInvalidStep, s)
	}
	return nil
}

func (s Step) String() string {
	return fmt.Sprintf("%d %c %d = %d", s.A, s.Op, s.B, s.Result)
}
