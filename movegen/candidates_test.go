package movegen

import (
	"errors"
	"math"
	"testing"

	"github.com/matryer/is"
	"github.com/stretchr/testify/assert"

	"github.com/domino14/cifras/step"
)

func TestCandidates(t *testing.T) {
	type tc struct {
		a, b     int64
		expected []step.Step
	}
	cases := []tc{
		{6, 3, []step.Step{
			{Op: step.OpAdd, A: 6, B: 3, Result: 9},
			{Op: step.OpSub, A: 6, B: 3, Result: 3},
			{Op: step.OpMul, A: 6, B: 3, Result: 18},
			{Op: step.OpDiv, A: 6, B: 3, Result: 2},
		}},
		{3, 6, []step.Step{
			{Op: step.OpAdd, A: 3, B: 6, Result: 9},
			{Op: step.OpSub, A: 6, B: 3, Result: 3},
			{Op: step.OpMul, A: 3, B: 6, Result: 18},
			{Op: step.OpDiv, A: 6, B: 3, Result: 2},
		}},
		{7, 5, []step.Step{
			{Op: step.OpAdd, A: 7, B: 5, Result: 12},
			{Op: step.OpSub, A: 7, B: 5, Result: 2},
			{Op: step.OpMul, A: 7, B: 5, Result: 35},
		}},
		{4, 4, []step.Step{
			{Op: step.OpAdd, A: 4, B: 4, Result: 8},
			{Op: step.OpMul, A: 4, B: 4, Result: 16},
			{Op: step.OpDiv, A: 4, B: 4, Result: 1},
		}},
		{1, 1, []step.Step{
			{Op: step.OpAdd, A: 1, B: 1, Result: 2},
			{Op: step.OpMul, A: 1, B: 1, Result: 1},
			{Op: step.OpDiv, A: 1, B: 1, Result: 1},
		}},
	}
	for _, c := range cases {
		got, err := Candidates(c.a, c.b)
		assert.NoError(t, err)
		assert.Equal(t, c.expected, got)
	}
}

func TestCandidateProperties(t *testing.T) {
	is := is.New(t)
	for a := int64(1); a <= 30; a++ {
		for b := int64(1); b <= 30; b++ {
			cands, err := Candidates(a, b)
			is.NoErr(err)
			is.True(len(cands) >= 2 && len(cands) <= MaxCandidates)

			var hasAdd, hasSub, hasMul, hasDiv bool
			for _, c := range cands {
				is.NoErr(c.Validate())
				switch c.Op {
				case step.OpAdd:
					hasAdd = c.Result == a+b
				case step.OpSub:
					hasSub = true
				case step.OpMul:
					hasMul = c.Result == a*b
				case step.OpDiv:
					hasDiv = true
				}
			}
			is.True(hasAdd)
			is.True(hasMul)
			is.Equal(hasSub, a != b)
			is.Equal(hasDiv, a%b == 0 || b%a == 0)
		}
	}
}

func TestAppendCandidatesReusesBuffer(t *testing.T) {
	is := is.New(t)
	buf := make([]step.Step, 0, MaxCandidates)
	out, err := AppendCandidates(buf, 10, 5)
	is.NoErr(err)
	is.Equal(len(out), 4)
	is.Equal(&out[0], &buf[:1][0])
}

func TestCandidatesInvalidOperand(t *testing.T) {
	is := is.New(t)
	_, err := Candidates(0, 5)
	is.True(errors.Is(err, ErrInvalidOperand))
	_, err = Candidates(5, -2)
	is.True(errors.Is(err, ErrInvalidOperand))
	_, err = Candidates(math.MaxInt64/2, 3)
	is.True(errors.Is(err, ErrInvalidOperand))
}
