package solver

import (
	"errors"
	"os"
	"testing"

	"github.com/matryer/is"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/domino14/cifras/step"
)

func TestMain(m *testing.M) {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	os.Exit(m.Run())
}

// optimum is the best (distance, steps) pair reachable from a number set.
type optimum struct {
	distance int64
	steps    int
}

// bruteForce enumerates every operation sequence over nums without any
// pruning, independently of the solver and the candidate generator.
func bruteForce(nums []int64, target int64) optimum {
	best := optimum{distance: -1}
	var rec func(nums []int64, steps int)
	rec = func(nums []int64, steps int) {
		for i := 0; i < len(nums); i++ {
			for j := i + 1; j < len(nums); j++ {
				a, b := nums[i], nums[j]
				if a < b {
					a, b = b, a
				}
				results := []int64{a + b, a * b}
				if a != b {
					results = append(results, a-b)
				}
				if a%b == 0 {
					results = append(results, a/b)
				}
				rest := make([]int64, 0, len(nums)-1)
				for k, n := range nums {
					if k != i && k != j {
						rest = append(rest, n)
					}
				}
				for _, r := range results {
					d := step.Distance(r, target)
					if best.distance < 0 || d < best.distance ||
						(d == best.distance && steps+1 < best.steps) {
						best = optimum{d, steps + 1}
					}
					rec(append([]int64{r}, rest...), steps+1)
				}
			}
		}
	}
	rec(nums, 0)
	return best
}

// replay checks that the steps only consume numbers that are available,
// each at most once, and returns the last result.
func replay(t *testing.T, numbers []int64, steps []step.Step) int64 {
	t.Helper()
	avail := map[int64]int{}
	for _, n := range numbers {
		avail[n]++
	}
	var last int64
	for _, st := range steps {
		if err := st.Validate(); err != nil {
			t.Fatalf("invalid step %v: %v", st, err)
		}
		for _, operand := range []int64{st.A, st.B} {
			if avail[operand] == 0 {
				t.Fatalf("step %v uses unavailable number %d", st, operand)
			}
			avail[operand]--
		}
		avail[st.Result]++
		last = st.Result
	}
	return last
}

func checkOptimal(t *testing.T, numbers []int64, target int64) *step.Stack {
	t.Helper()
	is := is.NewRelaxed(t)
	best, err := Resolve(numbers, target)
	is.NoErr(err)
	is.True(!best.IsEmpty())

	result, err := best.Result()
	is.NoErr(err)
	is.Equal(replay(t, numbers, best.Steps()), result)

	opt := bruteForce(numbers, target)
	is.Equal(step.Distance(result, target), opt.distance)
	is.Equal(best.Len(), opt.steps)
	return best
}

func TestExactMatchSixNumbers(t *testing.T) {
	is := is.New(t)
	best := checkOptimal(t, []int64{50, 25, 10, 6, 3, 2}, 765)
	r, _ := best.Result()
	is.Equal(r, int64(765))
}

func TestUnreachableTarget(t *testing.T) {
	is := is.New(t)
	numbers := []int64{1, 1, 1, 1, 1, 1}
	best := checkOptimal(t, numbers, 999)
	// (1+1+1)*(1+1+1) is as high as six ones go.
	r, _ := best.Result()
	is.Equal(r, int64(9))
	is.Equal(best.Len(), 5)

	pruned := new(Solver)
	pruned.Init()
	_, err := pruned.Solve(numbers, 999)
	is.NoErr(err)

	full := new(Solver)
	full.Init()
	full.SetLengthPruning(false)
	full.SetUpperBoundPruning(false)
	_, err = full.Solve(numbers, 999)
	is.NoErr(err)
	is.True(pruned.Nodes() < full.Nodes())
}

func TestEqualOperands(t *testing.T) {
	is := is.New(t)
	s := new(Solver)
	s.Init()
	best, err := s.Solve([]int64{4, 4}, 100)
	is.NoErr(err)
	assert.Equal(t, []step.Step{{Op: step.OpMul, A: 4, B: 4, Result: 16}}, best.Steps())
	// root, then 4+4, 4*4 and 4/4; no 4-4.
	is.Equal(s.Nodes(), uint64(4))
}

func TestPruningKeepsBest(t *testing.T) {
	is := is.New(t)
	cases := []struct {
		numbers []int64
		target  int64
	}{
		{[]int64{50, 25, 10, 6, 3, 2}, 75},
		{[]int64{100, 75, 3, 2, 8, 1}, 300},
		{[]int64{25, 50, 75, 100, 3, 6}, 952},
	}
	for _, c := range cases {
		pruned := new(Solver)
		pruned.Init()
		pbest, err := pruned.Solve(c.numbers, c.target)
		is.NoErr(err)

		full := new(Solver)
		full.Init()
		full.SetLengthPruning(false)
		full.SetUpperBoundPruning(false)
		fbest, err := full.Solve(c.numbers, c.target)
		is.NoErr(err)

		assert.Equal(t, fbest.Steps(), pbest.Steps())
		is.True(pruned.Nodes() < full.Nodes())
	}
}

func TestFirstDiscoveredWins(t *testing.T) {
	is := is.New(t)
	// 103 and 97 are both 3 away; 100+3 is generated before 100-3.
	// The untouched 100 is never a candidate on its own.
	best, err := Resolve([]int64{100, 3}, 100)
	is.NoErr(err)
	assert.Equal(t, []step.Step{{Op: step.OpAdd, A: 100, B: 3, Result: 103}}, best.Steps())
}

func TestDeterministic(t *testing.T) {
	is := is.New(t)
	numbers := []int64{75, 50, 2, 3, 8, 7}
	first, err := Resolve(numbers, 812)
	is.NoErr(err)
	for i := 0; i < 3; i++ {
		again, err := Resolve(numbers, 812)
		is.NoErr(err)
		assert.Equal(t, first.Steps(), again.Steps())
	}
	// The input is left untouched.
	assert.Equal(t, []int64{75, 50, 2, 3, 8, 7}, numbers)
}

func TestOptimalSmallSets(t *testing.T) {
	cases := []struct {
		numbers []int64
		target  int64
	}{
		{[]int64{1, 2, 3, 4}, 24},
		{[]int64{1, 2, 3, 4}, 0},
		{[]int64{7, 7, 7, 7}, 100},
		{[]int64{100, 100, 100, 100}, 1},
		{[]int64{9, 8, 1}, 71},
		{[]int64{25, 5, 2, 1, 3}, 137},
		{[]int64{2, 3}, 7},
		{[]int64{10, 25, 50, 100, 1}, 999},
	}
	for _, c := range cases {
		checkOptimal(t, c.numbers, c.target)
	}
}

func TestLargeNumbersDoNotOverflow(t *testing.T) {
	is := is.New(t)
	// 100*100*100*25*10*9 does not fit in 32 bits.
	best := checkOptimal(t, []int64{100, 100, 100, 25, 10, 9}, 999)
	r, _ := best.Result()
	is.Equal(r, int64(999))
}

func TestInvalidArguments(t *testing.T) {
	is := is.New(t)
	s := new(Solver)
	s.Init()

	cases := []struct {
		numbers []int64
		target  int64
	}{
		{nil, 10},
		{[]int64{5}, 10},
		{[]int64{5, 0}, 10},
		{[]int64{5, -3}, 10},
		{[]int64{5, 101}, 10},
		{[]int64{5, 6}, -1},
	}
	for _, c := range cases {
		best, err := s.Solve(c.numbers, c.target)
		is.True(errors.Is(err, ErrInvalidArgument))
		is.True(best == nil)
	}

	is.True(errors.Is(s.SetBounds(0, 10), ErrInvalidArgument))
	is.True(errors.Is(s.SetBounds(10, 5), ErrInvalidArgument))

	// Wider bounds accept bigger numbers, as long as results fit in int64.
	is.NoErr(s.SetBounds(1, 1000000))
	_, err := s.Solve([]int64{1000000, 999999}, 5)
	is.NoErr(err)
	// 10^18 still fits, 10^24 does not.
	_, err = s.Solve([]int64{1000000, 1000000, 1000000}, 5)
	is.NoErr(err)
	_, err = s.Solve([]int64{1000000, 1000000, 1000000, 1000000}, 5)
	is.True(errors.Is(err, ErrInvalidArgument))
}

func TestDescendRestoresPathOnError(t *testing.T) {
	is := is.New(t)
	s := new(Solver)
	s.Init()
	s.target = 10
	s.current = step.NewStack(4)
	s.best = step.NewStack(4)
	s.numberBufs = [][]int64{make([]int64, 2)}
	s.candidateBufs = [][]step.Step{nil}

	err := s.descend([]int64{3, 4, 5}, 0, 7, step.Step{Op: step.OpAdd, A: 3, B: 4, Result: 7}, 0)
	is.True(errors.Is(err, ErrInvalidIndex))
	is.True(s.current.IsEmpty())

	// An invalid candidate never makes it onto the path.
	err = s.descend([]int64{3, 4, 5}, 0, 1, step.Step{Op: step.OpAdd, A: 3, B: 4, Result: 8}, 0)
	is.True(errors.Is(err, step.ErrInvalidStep))
	is.True(s.current.IsEmpty())
}
