package step

import (
	"fmt"
	"strings"
)

// MinCapacity is the smallest capacity a search allocates for its stacks.
const MinCapacity = 4

// Stack is the ordered history of steps performed along a search path.
// The most recently pushed step holds the value reached so far.
type Stack struct {
	steps []Step
}

// CapacityFor returns the stack capacity needed to solve a puzzle with
// the given amount of numbers.
func CapacityFor(numbers int) int {
	return max(MinCapacity, numbers-1)
}

func NewStack(capacity int) *Stack {
	return &Stack{steps: make([]Step, 0, max(capacity, 0))}
}

// Push validates the step and places it on top of the stack.
func (s *Stack) Push(st Step) error {
	if s == nil {
		return ErrNullArgument
	}
	if len(s.steps) == cap(s.steps) {
		return ErrStackOverflow
	}
	if err := st.Validate(); err != nil {
		return err
	}
	s.steps = append(s.steps, st)
	return nil
}

// Pop removes the top step and returns it. Callers that only need to
// restore the stack can ignore the returned step.
func (s *Stack) Pop() (Step, error) {
	if s.Len() == 0 {
		return Step{}, ErrStackUnderflow
	}
	last := len(s.steps) - 1
	st := s.steps[last]
	s.steps = s.steps[:last]
	return st, nil
}

// Top returns the most recently pushed step.
func (s *Stack) Top() (Step, error) {
	if s.Len() == 0 {
		return Step{}, ErrStackUnderflow
	}
	return s.steps[len(s.steps)-1], nil
}

// Result returns the value achieved by the path so far.
func (s *Stack) Result() (int64, error) {
	top, err := s.Top()
	if err != nil {
		return 0, err
	}
	return top.Result, nil
}

func (s *Stack) Len() int {
	if s == nil {
		return 0
	}
	return len(s.steps)
}

func (s *Stack) Cap() int {
	if s == nil {
		return 0
	}
	return cap(s.steps)
}

func (s *Stack) IsEmpty() bool {
	return s.Len() == 0
}

// Clear empties the stack, keeping its capacity.
func (s *Stack) Clear() {
	if s == nil {
		return
	}
	s.steps = s.steps[:0]
}

// CopyFrom overwrites s with a value copy of src. The two stacks never
// share storage afterwards.
func (s *Stack) CopyFrom(src *Stack) error {
	if s == nil || src == nil {
		return ErrNullArgument
	}
	if src.IsEmpty() {
		s.Clear()
		return nil
	}
	if src.Len() > cap(s.steps) {
		return ErrStackOverflow
	}
	s.steps = s.steps[:src.Len()]
	copy(s.steps, src.steps)
	return nil
}

// Steps returns a copy of the steps in the order they were performed.
func (s *Stack) Steps() []Step {
	if s == nil {
		return nil
	}
	out := make([]Step, len(s.steps))
	copy(out, s.steps)
	return out
}

// String renders one step per line, in the order they were performed.
func (s *Stack) String() string {
	var sb strings.Builder
	for _, st := range s.Steps() {
		sb.WriteString(st.String())
		sb.WriteString("\n")
	}
	return sb.String()
}

// NLBString renders the steps without line breaks, for logging.
func (s *Stack) NLBString() string {
	var sb strings.Builder
	for i, st := range s.Steps() {
		fmt.Fprintf(&sb, "%d: %s; ", i+1, st.String())
	}
	return strings.TrimSpace(sb.String())
}
