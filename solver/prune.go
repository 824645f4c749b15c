package solver

import (
	"math/bits"

	"github.com/domino14/cifras/step"
)

// prunableLength is true when best already hits the target exactly and the
// current path is at least as long: anything below it can at most tie.
func prunableLength(current, best *step.Stack, target int64) bool {
	if current.IsEmpty() || best.IsEmpty() {
		return false
	}
	if r, _ := best.Result(); r != target {
		return false
	}
	return current.Len() >= best.Len()
}

// UpperBound folds the numbers into an optimistic ceiling of the values
// they can produce: the product of the numbers, where a 1 counts as 2.
// Folding stops as soon as the product reaches limit; the second return
// value reports whether that happened. Overflow counts as reaching limit.
func UpperBound(numbers []int64, limit uint64) (uint64, bool) {
	var upper uint64 = 1
	for _, n := range numbers {
		f := uint64(n)
		if n == 1 {
			f = 2
		}
		hi, lo := bits.Mul64(upper, f)
		if hi != 0 || lo >= limit {
			return lo, true
		}
		upper = lo
	}
	return upper, false
}

// prunableUpperValue is true when even the upper bound of the remaining
// numbers falls short of the target by more than best misses it. A bound
// exactly as far as best does not prune; a shorter path could still tie on
// distance and win on length.
func prunableUpperValue(numbers []int64, target int64, best *step.Stack) bool {
	if best.IsEmpty() {
		return false
	}
	upper, reached := UpperBound(numbers, uint64(target))
	if reached {
		return false
	}
	r, _ := best.Result()
	return uint64(target)-upper > uint64(step.Distance(r, target))
}
