// Package automatic solves batches of puzzles in parallel.
package automatic

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/domino14/cifras/config"
	"github.com/domino14/cifras/puzzles"
	"github.com/domino14/cifras/solver"
	"github.com/domino14/cifras/stats"
	"github.com/domino14/cifras/step"
)

// IsRunning is 1 while a batch is running and 0 otherwise.
var IsRunning atomic.Int32

var ErrAlreadyRunning = errors.New("a batch is already running, please wait till it completes")

// Result is the outcome of one puzzle of a batch.
type Result struct {
	Puzzle  puzzles.Puzzle
	Best    *step.Stack
	Nodes   uint64
	Elapsed time.Duration
}

func (r Result) Achieved() int64 {
	v, _ := r.Best.Result()
	return v
}

type Runner struct {
	cfg     *config.Config
	threads int
	// Solved counts puzzles finished by the current batch.
	Solved atomic.Int64
}

func NewRunner(cfg *config.Config) *Runner {
	return &Runner{
		cfg:     cfg,
		threads: cfg.GetInt(config.ConfigBatchThreads),
	}
}

func (r *Runner) SetThreads(t int) {
	r.threads = t
}

func (r *Runner) solveOne(p puzzles.Puzzle, numbers config.Bounds) (Result, error) {
	s := new(solver.Solver)
	s.Init()
	if err := s.SetBounds(numbers.Min, numbers.Max); err != nil {
		return Result{}, err
	}
	start := time.Now()
	best, err := s.Solve(p.Numbers, p.Target)
	if err != nil {
		return Result{}, err
	}
	return Result{Puzzle: p, Best: best, Nodes: s.Nodes(), Elapsed: time.Since(start)}, nil
}

// Run solves every puzzle, at most threads at a time, and returns the
// results in input order. The first failure, or ctx being canceled, stops
// the batch.
func (r *Runner) Run(ctx context.Context, ps []puzzles.Puzzle) ([]Result, error) {
	if !IsRunning.CompareAndSwap(0, 1) {
		return nil, ErrAlreadyRunning
	}
	defer IsRunning.Store(0)
	r.Solved.Store(0)

	// Bounds follow the config as it is now, not as it was at NewRunner.
	numbers := r.cfg.NumberBounds()
	threads := max(r.threads, 1)
	log.Debug().Int("puzzles", len(ps)).Int("threads", threads).Msg("batch-starting")
	start := time.Now()

	results := make([]Result, len(ps))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(threads)
	for idx, p := range ps {
		if gctx.Err() != nil {
			break
		}
		idx, p := idx, p
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := r.solveOne(p, numbers)
			if err != nil {
				return fmt.Errorf("puzzle %d (%s): %w", idx+1, p.Key(), err)
			}
			results[idx] = res
			if n := r.Solved.Add(1); n%1000 == 0 {
				log.Info().Int64("solved", n).Msg("batch-progress")
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		log.Err(err).Msg("batch-failed")
		return nil, err
	}
	// errgroup only reports errors from its goroutines.
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	log.Info().Int("puzzles", len(ps)).
		Float64("time-elapsed-sec", time.Since(start).Seconds()).Msg("batch-finished")
	return results, nil
}

// Summarize aggregates batch results.
func Summarize(results []Result) *stats.Summary {
	s := &stats.Summary{}
	for _, r := range results {
		s.Add(step.Distance(r.Achieved(), r.Puzzle.Target), r.Best.Len(), r.Nodes, r.Elapsed)
	}
	return s
}

// LogEntry is what the batch log records per puzzle.
type LogEntry struct {
	Numbers []int64     `yaml:"numbers"`
	Target  int64       `yaml:"target"`
	Result  int64       `yaml:"result"`
	Exact   bool        `yaml:"exact"`
	Steps   []step.Step `yaml:"steps,flow"`
	Nodes   uint64      `yaml:"nodes"`
	Seconds float64     `yaml:"seconds"`
}

func logEntry(r Result) LogEntry {
	achieved := r.Achieved()
	return LogEntry{
		Numbers: r.Puzzle.Numbers,
		Target:  r.Puzzle.Target,
		Result:  achieved,
		Exact:   achieved == r.Puzzle.Target,
		Steps:   r.Best.Steps(),
		Nodes:   r.Nodes,
		Seconds: r.Elapsed.Seconds(),
	}
}

// WriteLog writes one YAML document per result.
func WriteLog(w io.Writer, results []Result) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	for _, r := range results {
		if err := enc.Encode(logEntry(r)); err != nil {
			return err
		}
	}
	return enc.Close()
}

// ReadLog reads back what WriteLog wrote.
func ReadLog(rd io.Reader) ([]LogEntry, error) {
	dec := yaml.NewDecoder(rd)
	var entries []LogEntry
	for {
		var e LogEntry
		err := dec.Decode(&e)
		if errors.Is(err, io.EOF) {
			return entries, nil
		}
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
}

// AnalyzeLogFile summarizes a batch log written earlier.
func AnalyzeLogFile(path string) (*stats.Summary, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	entries, err := ReadLog(f)
	if err != nil {
		return nil, err
	}
	s := &stats.Summary{}
	for _, e := range entries {
		s.Add(step.Distance(e.Result, e.Target), len(e.Steps), e.Nodes,
			time.Duration(e.Seconds*float64(time.Second)))
	}
	return s, nil
}
