package automatic

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/matryer/is"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/domino14/cifras/config"
	"github.com/domino14/cifras/puzzles"
	"github.com/domino14/cifras/solver"
)

var DefaultConfig = config.DefaultConfig()

func TestMain(m *testing.M) {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	os.Exit(m.Run())
}

func seededPuzzles(t *testing.T, n int) []puzzles.Puzzle {
	t.Helper()
	g, err := puzzles.NewSeededGenerator(DefaultConfig.GeneratorSettings(), 1234)
	if err != nil {
		t.Fatal(err)
	}
	return g.GenerateN(n)
}

func TestRunKeepsInputOrder(t *testing.T) {
	is := is.New(t)
	ps := seededPuzzles(t, 12)
	r := NewRunner(DefaultConfig)
	r.SetThreads(4)

	results, err := r.Run(context.Background(), ps)
	is.NoErr(err)
	is.Equal(len(results), len(ps))
	is.Equal(r.Solved.Load(), int64(len(ps)))
	for i, res := range results {
		is.Equal(res.Puzzle, ps[i])
		best, err := solver.Resolve(ps[i].Numbers, ps[i].Target)
		is.NoErr(err)
		assert.Equal(t, best.Steps(), res.Best.Steps())
		is.True(res.Nodes > 0)
	}
}

func TestRunFailureStopsBatch(t *testing.T) {
	is := is.New(t)
	ps := seededPuzzles(t, 3)
	ps = append(ps, puzzles.Puzzle{Numbers: []int64{5}, Target: 10})
	r := NewRunner(DefaultConfig)
	r.SetThreads(2)

	_, err := r.Run(context.Background(), ps)
	is.True(errors.Is(err, solver.ErrInvalidArgument))
	is.Equal(IsRunning.Load(), int32(0))
}

func TestRunUsesCurrentBounds(t *testing.T) {
	is := is.New(t)
	cfg := config.DefaultConfig()
	r := NewRunner(cfg)
	ps := []puzzles.Puzzle{{Numbers: []int64{150, 2, 3, 4, 5, 6}, Target: 300}}

	_, err := r.Run(context.Background(), ps)
	is.True(errors.Is(err, solver.ErrInvalidArgument))

	cfg.Set(config.ConfigMaxNumber, 200)
	results, err := r.Run(context.Background(), ps)
	is.NoErr(err)
	is.Equal(results[0].Achieved(), int64(300))
}

func TestRunRefusesConcurrentBatch(t *testing.T) {
	is := is.New(t)
	is.True(IsRunning.CompareAndSwap(0, 1))
	_, err := NewRunner(DefaultConfig).Run(context.Background(), seededPuzzles(t, 1))
	is.Equal(err, ErrAlreadyRunning)
	IsRunning.Store(0)

	_, err = NewRunner(DefaultConfig).Run(context.Background(), seededPuzzles(t, 1))
	is.NoErr(err)
	is.Equal(IsRunning.Load(), int32(0))
}

func TestRunCanceled(t *testing.T) {
	is := is.New(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r := NewRunner(DefaultConfig)
	_, err := r.Run(ctx, seededPuzzles(t, 5))
	is.True(errors.Is(err, context.Canceled))
}

func TestSummarize(t *testing.T) {
	is := is.New(t)
	ps := []puzzles.Puzzle{
		{Numbers: []int64{50, 25, 10, 6, 3, 2}, Target: 765},
		{Numbers: []int64{1, 1, 1, 1, 1, 1}, Target: 999},
	}
	results, err := NewRunner(DefaultConfig).Run(context.Background(), ps)
	is.NoErr(err)

	s := Summarize(results)
	is.Equal(s.Puzzles, 2)
	is.Equal(s.Exact, 1)
	is.Equal(s.Distance.Max(), 990.0)
}

func TestLogRoundTrip(t *testing.T) {
	is := is.New(t)
	ps := seededPuzzles(t, 4)
	results, err := NewRunner(DefaultConfig).Run(context.Background(), ps)
	is.NoErr(err)

	var buf bytes.Buffer
	is.NoErr(WriteLog(&buf, results))
	entries, err := ReadLog(bytes.NewReader(buf.Bytes()))
	is.NoErr(err)
	is.Equal(len(entries), 4)
	for i, e := range entries {
		is.Equal(e.Numbers, ps[i].Numbers)
		is.Equal(e.Target, ps[i].Target)
		is.Equal(e.Result, results[i].Achieved())
		assert.Equal(t, results[i].Best.Steps(), e.Steps)
	}

	path := filepath.Join(t.TempDir(), "batch.yaml")
	is.NoErr(os.WriteFile(path, buf.Bytes(), 0o644))
	s, err := AnalyzeLogFile(path)
	is.NoErr(err)
	is.Equal(s.Puzzles, 4)
	is.Equal(s.Exact, Summarize(results).Exact)
}
