package movegen

import (
	"errors"
	"fmt"
	"math"

	"github.com/domino14/cifras/step"
)

// MaxCandidates is the most steps a single pair of numbers can produce.
const MaxCandidates = 4

var ErrInvalidOperand = errors.New("invalid operand")

// Candidates returns every legal step between a and b, in the order
// addition, subtraction, multiplication, division.
func Candidates(a, b int64) ([]step.Step, error) {
	return AppendCandidates(make([]step.Step, 0, MaxCandidates), a, b)
}

// AppendCandidates appends the legal steps between a and b to dst and
// returns the extended slice. Subtraction is omitted for equal operands and
// division unless the smaller operand divides the larger one exactly.
func AppendCandidates(dst []step.Step, a, b int64) ([]step.Step, error) {
	if a <= 0 || b <= 0 {
		return dst, fmt.Errorf("%w: %d, %d", ErrInvalidOperand, a, b)
	}
	if a > math.MaxInt64/b || a > math.MaxInt64-b {
		return dst, fmt.Errorf("%w: %d and %d overflow", ErrInvalidOperand, a, b)
	}
	hi, lo := a, b
	if lo > hi {
		hi, lo = lo, hi
	}

	dst = append(dst, step.Step{Op: step.OpAdd, A: a, B: b, Result: a + b})
	if hi != lo {
		dst = append(dst, step.Step{Op: step.OpSub, A: hi, B: lo, Result: hi - lo})
	}
	dst = append(dst, step.Step{Op: step.OpMul, A: a, B: b, Result: a * b})
	if hi%lo == 0 {
		dst = append(dst, step.Step{Op: step.OpDiv, A: hi, B: lo, Result: hi / lo})
	}
	return dst, nil
}
