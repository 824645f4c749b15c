package shell

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/samber/lo"

	"github.com/domino14/cifras/automatic"
	"github.com/domino14/cifras/config"
	"github.com/domino14/cifras/puzzles"
	"github.com/domino14/cifras/solver"
	"github.com/domino14/cifras/step"
	"github.com/domino14/cifras/store"
)

const (
	defaultHistoryCount = 10
	defaultBatchCount   = 100
	defaultConfidence   = 95
)

var errSolverFailure = errors.New("solver failure")

type Response struct {
	message string
}

func msg(message string) *Response {
	return &Response{message: message}
}

// settable maps the keys the set command accepts to a parser for their
// values.
var settable = map[string]func(string) (any, error){
	config.ConfigNumbersCount:         intValue,
	config.ConfigMinNumber:            intValue,
	config.ConfigMaxNumber:            intValue,
	config.ConfigMinTarget:            intValue,
	config.ConfigMaxTarget:            intValue,
	config.ConfigBigNumberProbability: intValue,
	config.ConfigSmallMin:             intValue,
	config.ConfigSmallMax:             intValue,
	config.ConfigBatchThreads:         intValue,
	config.ConfigBigNumbers: func(v string) (any, error) {
		parts := strings.FieldsFunc(v, func(r rune) bool { return r == ',' || r == ' ' })
		ints := make([]int, 0, len(parts))
		for _, p := range parts {
			n, err := strconv.Atoi(p)
			if err != nil {
				return nil, err
			}
			ints = append(ints, n)
		}
		return ints, nil
	},
}

func intValue(v string) (any, error) {
	n, err := strconv.Atoi(v)
	if err != nil {
		return nil, err
	}
	return n, nil
}

func settableKeys() []string {
	keys := lo.Keys(settable)
	sort.Strings(keys)
	return keys
}

// solvePuzzle runs the solver (through the cache) and records the result.
func (sc *ShellController) solvePuzzle(p puzzles.Puzzle) (string, error) {
	bounds := sc.config.NumberBounds()
	var nodes uint64
	start := time.Now()
	best, err := sc.cache.Get(p, func(p puzzles.Puzzle) (*step.Stack, error) {
		s := new(solver.Solver)
		s.Init()
		if err := s.SetBounds(bounds.Min, bounds.Max); err != nil {
			return nil, err
		}
		best, err := s.Solve(p.Numbers, p.Target)
		nodes = s.Nodes()
		return best, err
	})
	if err != nil {
		log.Err(err).Str("puzzle", p.Key()).Msg("solve-failed")
		return "", errSolverFailure
	}
	elapsed := time.Since(start)
	if sc.history != nil {
		rec, err := store.NewRecord(p, best, nodes, elapsed)
		if err == nil {
			_, err = sc.history.Save(context.Background(), rec)
		}
		if err != nil {
			log.Err(err).Msg("history-save-failed")
		}
	}
	return RenderSolution(p, best, nodes)
}

func (sc *ShellController) solve(cmd *shellcmd) (*Response, error) {
	if len(cmd.args) == 0 {
		return nil, errors.New("usage: solve <n1 n2 ...> -target <target>")
	}
	tgt, ok := cmd.options["target"]
	if !ok {
		return nil, errors.New("need a -target")
	}
	numbers, err := puzzles.ParseNumbers(strings.Join(cmd.args, " "),
		sc.config.GetInt(config.ConfigNumbersCount), sc.config.NumberBounds())
	if err != nil {
		return nil, err
	}
	target, err := puzzles.ParseTarget(tgt, sc.config.TargetBounds())
	if err != nil {
		return nil, err
	}
	out, err := sc.solvePuzzle(puzzles.Puzzle{Numbers: numbers, Target: target})
	if err != nil {
		return nil, err
	}
	return msg(out), nil
}

func (sc *ShellController) random(cmd *shellcmd) (*Response, error) {
	out, err := sc.solvePuzzle(sc.gen.Generate())
	if err != nil {
		return nil, err
	}
	return msg(out), nil
}

func (sc *ShellController) set(cmd *shellcmd) (*Response, error) {
	if len(cmd.args) == 0 {
		var sb strings.Builder
		sb.WriteString("Settings:\n")
		for _, k := range settableKeys() {
			fmt.Fprintf(&sb, "  %s: %v\n", k, sc.config.Get(k))
		}
		return msg(strings.TrimRight(sb.String(), "\n")), nil
	}
	key := cmd.args[0]
	parse, ok := settable[key]
	if !ok {
		return nil, fmt.Errorf("no such setting: %s", key)
	}
	if len(cmd.args) == 1 {
		return msg(fmt.Sprintf("%s: %v", key, sc.config.Get(key))), nil
	}
	val, err := parse(strings.Join(cmd.args[1:], " "))
	if err != nil {
		return nil, fmt.Errorf("bad value for %s: %w", key, err)
	}
	old := sc.config.Get(key)
	sc.config.Set(key, val)
	if err := sc.resetGenerator(); err != nil {
		sc.config.Set(key, old)
		return nil, err
	}
	if key == config.ConfigBatchThreads {
		sc.runner.SetThreads(sc.config.GetInt(key))
	}
	return msg(fmt.Sprintf("set %s to %v", key, sc.config.Get(key))), nil
}

func (sc *ShellController) showHistory(cmd *shellcmd) (*Response, error) {
	if sc.history == nil {
		return nil, errors.New("no history database configured; set " + config.ConfigHistoryDB)
	}
	n := defaultHistoryCount
	if len(cmd.args) > 0 {
		var err error
		if n, err = strconv.Atoi(cmd.args[0]); err != nil {
			return nil, err
		}
	}
	records, err := sc.history.Recent(context.Background(), n)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return msg("No puzzles solved yet."), nil
	}
	var sb strings.Builder
	for _, r := range records {
		exact := ""
		if r.Exact {
			exact = " (EXACT!)"
		}
		fmt.Fprintf(&sb, "%4d  %s  %s -> %d%s\n", r.ID, r.CreatedAt.Format(time.DateTime),
			r.Puzzle.Key(), r.Result, exact)
	}
	return msg(strings.TrimRight(sb.String(), "\n")), nil
}

func optionInt(cmd *shellcmd, key string, dflt int) (int, error) {
	v, ok := cmd.options[key]
	if !ok {
		return dflt, nil
	}
	return strconv.Atoi(v)
}

func (sc *ShellController) batch(cmd *shellcmd) (*Response, error) {
	var ps []puzzles.Puzzle
	if file, ok := cmd.options["file"]; ok {
		var err error
		if ps, err = puzzles.LoadFile(file, sc.config.NumberBounds()); err != nil {
			return nil, err
		}
	} else {
		n, err := optionInt(cmd, "n", defaultBatchCount)
		if err != nil {
			return nil, err
		}
		gen := sc.gen
		if seed, ok := cmd.options["seed"]; ok {
			s, err := strconv.ParseUint(seed, 10, 64)
			if err != nil {
				return nil, err
			}
			if gen, err = puzzles.NewSeededGenerator(sc.config.GeneratorSettings(), s); err != nil {
				return nil, err
			}
		}
		ps = gen.GenerateN(n)
		if out, ok := cmd.options["out"]; ok {
			if err := writePuzzles(out, ps); err != nil {
				return nil, err
			}
		}
	}
	threads, err := optionInt(cmd, "threads", sc.config.GetInt(config.ConfigBatchThreads))
	if err != nil {
		return nil, err
	}
	sc.runner.SetThreads(threads)
	results, err := sc.runner.Run(context.Background(), ps)
	if err != nil {
		return nil, err
	}
	if logfile, ok := cmd.options["log"]; ok {
		f, err := os.Create(logfile)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		if err := automatic.WriteLog(f, results); err != nil {
			return nil, err
		}
	}
	var sb strings.Builder
	if err := automatic.Summarize(results).Fprint(&sb, defaultConfidence); err != nil {
		return nil, err
	}
	return msg(strings.TrimRight(sb.String(), "\n")), nil
}

// writePuzzles saves generated puzzles so a batch can be rerun with -file.
func writePuzzles(path string, ps []puzzles.Puzzle) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := puzzles.Encode(f, ps); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func (sc *ShellController) analyze(cmd *shellcmd) (*Response, error) {
	if len(cmd.args) == 0 {
		return nil, errors.New("usage: analyze <batch-log.yaml>")
	}
	s, err := automatic.AnalyzeLogFile(cmd.args[0])
	if err != nil {
		return nil, err
	}
	var sb strings.Builder
	if err := s.Fprint(&sb, defaultConfidence); err != nil {
		return nil, err
	}
	return msg(strings.TrimRight(sb.String(), "\n")), nil
}
