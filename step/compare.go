package step

// Distance returns |v - target|.
func Distance(v, target int64) int64 {
	if v < target {
		return target - v
	}
	return v - target
}

// Compare decides which of two step histories is the better solution for
// target. It returns -1 if x is strictly better, 1 if y is strictly better
// and 0 if neither is preferred. A result nearer the target wins; on equal
// distance the history with fewer steps wins. Any solution beats none.
func Compare(x, y *Stack, target int64) int {
	switch {
	case x.IsEmpty() && y.IsEmpty():
		return 0
	case x.IsEmpty():
		return 1
	case y.IsEmpty():
		return -1
	}

	dx := Distance(x.steps[len(x.steps)-1].Result, target)
	dy := Distance(y.steps[len(y.steps)-1].Result, target)
	switch {
	case dx < dy:
		return -1
	case dy < dx:
		return 1
	case x.Len() < y.Len():
		return -1
	case y.Len() < x.Len():
		return 1
	}
	return 0
}
