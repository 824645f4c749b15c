package solver

import (
	"errors"
	"fmt"
	"math"
	"math/bits"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/domino14/cifras/movegen"
	"github.com/domino14/cifras/step"
)

const (
	DefaultMinNumber = 1
	DefaultMaxNumber = 100
)

var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrInvalidIndex    = errors.New("invalid number index")
)

// Solver runs an exhaustive depth-first search with branch-and-bound
// pruning over the operations that can combine a set of numbers. A Solver
// is not safe for concurrent use.
type Solver struct {
	minNumber int64
	maxNumber int64

	lengthPruneOptim     bool
	upperBoundPruneOptim bool

	target int64
	// current is the path of the branch being explored; best is the best
	// path seen so far. They never share storage.
	current *step.Stack
	best    *step.Stack

	// per-depth buffers, allocated once per Solve.
	numberBufs    [][]int64
	candidateBufs [][]step.Step

	nodes uint64
}

// Init initializes the solver with the default number bounds and all
// pruning enabled.
func (s *Solver) Init() {
	s.minNumber = DefaultMinNumber
	s.maxNumber = DefaultMaxNumber
	s.lengthPruneOptim = true
	s.upperBoundPruneOptim = true
}

// SetBounds sets the range every input number must fall in.
func (s *Solver) SetBounds(minNumber, maxNumber int64) error {
	if minNumber < 1 || maxNumber < minNumber {
		return fmt.Errorf("%w: bad number bounds [%d, %d]", ErrInvalidArgument, minNumber, maxNumber)
	}
	s.minNumber = minNumber
	s.maxNumber = maxNumber
	return nil
}

func (s *Solver) SetLengthPruning(p bool) {
	s.lengthPruneOptim = p
}

func (s *Solver) SetUpperBoundPruning(p bool) {
	s.upperBoundPruneOptim = p
}

// Nodes returns the number of search nodes visited by the last Solve.
func (s *Solver) Nodes() uint64 {
	return s.nodes
}

func (s *Solver) validate(numbers []int64, target int64) error {
	if len(numbers) < 2 {
		return fmt.Errorf("%w: need at least two numbers, got %d", ErrInvalidArgument, len(numbers))
	}
	if target < 0 {
		return fmt.Errorf("%w: negative target %d", ErrInvalidArgument, target)
	}
	// Every value reachable from the numbers is bounded by the product of
	// max(n, 2) over them; it has to fit in an int64.
	var bound uint64 = 1
	for _, n := range numbers {
		if n < s.minNumber || n > s.maxNumber {
			return fmt.Errorf("%w: number %d is not between %d and %d",
				ErrInvalidArgument, n, s.minNumber, s.maxNumber)
		}
		hi, lo := bits.Mul64(bound, uint64(max(n, 2)))
		if hi != 0 || lo > math.MaxInt64 {
			return fmt.Errorf("%w: numbers %v can overflow a 64-bit result", ErrInvalidArgument, numbers)
		}
		bound = lo
	}
	return nil
}

// Solve finds the sequence of steps whose result is nearest to target,
// using fewer steps to break ties. The numbers slice is not modified. The
// returned stack is owned by the caller. On error the returned stack is
// nil and no partial result should be trusted.
//
// At least two numbers are required: a lone number admits no step, and an
// empty stack is never reported as an answer. Fewer numbers, numbers outside
// the configured bounds, or a negative target give ErrInvalidArgument.
func (s *Solver) Solve(numbers []int64, target int64) (*step.Stack, error) {
	if err := s.validate(numbers, target); err != nil {
		return nil, err
	}
	log.Debug().Ints64("numbers", numbers).Int64("target", target).
		Bool("length-prune", s.lengthPruneOptim).
		Bool("upper-bound-prune", s.upperBoundPruneOptim).
		Msg("solve-config")

	tstart := time.Now()
	capacity := step.CapacityFor(len(numbers))
	s.target = target
	s.current = step.NewStack(capacity)
	s.best = step.NewStack(capacity)
	s.nodes = 0

	s.numberBufs = make([][]int64, len(numbers)-1)
	s.candidateBufs = make([][]step.Step, len(numbers)-1)
	for d := range s.numberBufs {
		s.numberBufs[d] = make([]int64, len(numbers)-1-d)
		s.candidateBufs[d] = make([]step.Step, 0, movegen.MaxCandidates)
	}

	err := s.search(numbers, 0)
	if err != nil {
		log.Err(err).Ints64("numbers", numbers).Int64("target", target).Msg("solve-failed")
		return nil, err
	}
	if s.current.Len() != 0 {
		return nil, fmt.Errorf("search left %d outstanding steps", s.current.Len())
	}

	best := s.best
	s.best, s.current = nil, nil
	result, _ := best.Result()
	log.Debug().
		Int64("result", result).
		Int("steps", best.Len()).
		Uint64("nodes", s.nodes).
		Float64("time-elapsed-sec", time.Since(tstart).Seconds()).
		Str("best", best.NLBString()).
		Msg("solve-returning")
	return best, nil
}

func (s *Solver) search(numbers []int64, depth int) error {
	s.nodes++

	// Any node can be the answer, even if some numbers were left unused.
	if step.Compare(s.current, s.best, s.target) == -1 {
		if err := s.best.CopyFrom(s.current); err != nil {
			return err
		}
	}

	if len(numbers) == 1 {
		return nil
	}
	if s.lengthPruneOptim && prunableLength(s.current, s.best, s.target) {
		return nil
	}
	if s.upperBoundPruneOptim && prunableUpperValue(numbers, s.target, s.best) {
		return nil
	}

	for i := 0; i < len(numbers); i++ {
		for j := i + 1; j < len(numbers); j++ {
			candidates, err := movegen.AppendCandidates(s.candidateBufs[depth][:0], numbers[i], numbers[j])
			if err != nil {
				return err
			}
			s.candidateBufs[depth] = candidates
			for _, c := range candidates {
				if err := s.descend(numbers, i, j, c, depth); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// descend plays candidate c, combining numbers[i] and numbers[j], searches
// the resulting node and takes c back off the current path, whatever the
// outcome of the search.
func (s *Solver) descend(numbers []int64, i, j int, c step.Step, depth int) (err error) {
	if err = s.current.Push(c); err != nil {
		return err
	}
	defer func() {
		if _, perr := s.current.Pop(); perr != nil && err == nil {
			err = perr
		}
	}()

	next, err := buildNextNumbers(s.numberBufs[depth], numbers, i, j, c.Result)
	if err != nil {
		return err
	}
	return s.search(next, depth+1)
}

// Resolve solves a puzzle with a fresh solver using the default bounds.
func Resolve(numbers []int64, target int64) (*step.Stack, error) {
	s := new(Solver)
	s.Init()
	return s.Solve(numbers, target)
}
