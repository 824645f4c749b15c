package solver

import "fmt"

// buildNextNumbers fills dst with the number set that results from
// combining former[pos1] and former[pos2] into result: result goes first,
// followed by the untouched numbers in their input order.
func buildNextNumbers(dst, former []int64, pos1, pos2 int, result int64) ([]int64, error) {
	if pos1 < 0 || pos2 < 0 || pos1 >= len(former) || pos2 >= len(former) || pos1 == pos2 {
		return nil, fmt.Errorf("%w: (%d, %d) in a set of %d", ErrInvalidIndex, pos1, pos2, len(former))
	}
	if len(dst) != len(former)-1 {
		return nil, fmt.Errorf("%w: buffer of %d for a set of %d", ErrInvalidIndex, len(dst), len(former))
	}
	if result <= 0 {
		return nil, fmt.Errorf("%w: non-positive result %d", ErrInvalidArgument, result)
	}
	dst[0] = result
	j := 1
	for i, n := range former {
		if i != pos1 && i != pos2 {
			dst[j] = n
			j++
		}
	}
	return dst, nil
}
