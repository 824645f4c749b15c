package puzzles

import (
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/samber/lo"
	"gopkg.in/yaml.v3"

	"github.com/domino14/cifras/config"
)

var (
	ErrBadNumbersFormat = errors.New("numbers must be positive integers separated by spaces or commas")
	ErrWrongCount       = errors.New("wrong amount of numbers")
	ErrNumberOutOfRange = errors.New("number out of range")
	ErrBadTargetFormat  = errors.New("target must be a single positive integer")
	ErrTargetOutOfRange = errors.New("target out of range")
)

var targetRe = regexp.MustCompile(`^\s*0*[1-9][0-9]*\s*$`)

// Puzzle is a set of numbers and the target to reach with them.
type Puzzle struct {
	Numbers []int64 `json:"numbers" yaml:"numbers"`
	Target  int64   `json:"target" yaml:"target"`
}

func (p Puzzle) String() string {
	return fmt.Sprintf("Numbers: %s\nTarget: %d", joinNumbers(p.Numbers, ", "), p.Target)
}

// Key is a canonical representation of the puzzle, numbers in the order
// given.
func (p Puzzle) Key() string {
	return joinNumbers(p.Numbers, ",") + ":" + strconv.FormatInt(p.Target, 10)
}

// Validate checks that the puzzle can be handed to the solver.
func (p Puzzle) Validate(numbers config.Bounds) error {
	if len(p.Numbers) < 2 {
		return fmt.Errorf("%w: need at least 2, got %d", ErrWrongCount, len(p.Numbers))
	}
	for _, n := range p.Numbers {
		if !numbers.Contains(n) {
			return fmt.Errorf("%w: %d is not between %d and %d", ErrNumberOutOfRange, n, numbers.Min, numbers.Max)
		}
	}
	if p.Target < 0 {
		return fmt.Errorf("%w: %d", ErrTargetOutOfRange, p.Target)
	}
	return nil
}

func joinNumbers(ns []int64, sep string) string {
	return strings.Join(lo.Map(ns, func(n int64, _ int) string {
		return strconv.FormatInt(n, 10)
	}), sep)
}

func numbersRe(count int) (*regexp.Regexp, error) {
	if count < 1 {
		return nil, fmt.Errorf("%w: cannot parse %d numbers", ErrWrongCount, count)
	}
	return regexp.Compile(fmt.Sprintf(
		`^\s*(0*[1-9][0-9]*(\s+|\s*,\s*)){%d}0*[1-9][0-9]*\s*$`, count-1))
}

// ParseNumbers reads exactly count numbers, separated by whitespace or by a
// comma with optional whitespace around it.
func ParseNumbers(line string, count int, bounds config.Bounds) ([]int64, error) {
	re, err := numbersRe(count)
	if err != nil {
		return nil, err
	}
	if !re.MatchString(line) {
		fields := strings.FieldsFunc(line, isSeparator)
		if len(fields) > 0 && len(fields) != count && lo.EveryBy(fields, isDigits) {
			return nil, fmt.Errorf("%w: got %d, expected %d", ErrWrongCount, len(fields), count)
		}
		return nil, fmt.Errorf("%w (expected %d)", ErrBadNumbersFormat, count)
	}
	numbers := make([]int64, 0, count)
	for _, f := range strings.FieldsFunc(line, isSeparator) {
		n, err := strconv.ParseInt(f, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrNumberOutOfRange, err)
		}
		if !bounds.Contains(n) {
			return nil, fmt.Errorf("%w: %d is not between %d and %d", ErrNumberOutOfRange, n, bounds.Min, bounds.Max)
		}
		numbers = append(numbers, n)
	}
	return numbers, nil
}

// ParseTarget reads a single positive target within bounds.
func ParseTarget(line string, bounds config.Bounds) (int64, error) {
	if !targetRe.MatchString(line) {
		return 0, ErrBadTargetFormat
	}
	t, err := strconv.ParseInt(strings.TrimSpace(line), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrTargetOutOfRange, err)
	}
	if !bounds.Contains(t) {
		return 0, fmt.Errorf("%w: %d is not between %d and %d", ErrTargetOutOfRange, t, bounds.Min, bounds.Max)
	}
	return t, nil
}

func isSeparator(r rune) bool {
	return r == ',' || r == ' ' || r == '\t' || r == '\n' || r == '\r'
}

func isDigits(s string) bool {
	return s != "" && strings.Trim(s, "0123456789") == ""
}

type puzzleSet struct {
	Puzzles []Puzzle `yaml:"puzzles"`
}

// Decode reads a YAML puzzle set:
//
//	puzzles:
//	  - numbers: [50, 25, 10, 6, 3, 2]
//	    target: 765
func Decode(r io.Reader, bounds config.Bounds) ([]Puzzle, error) {
	set := puzzleSet{}
	if err := yaml.NewDecoder(r).Decode(&set); err != nil {
		return nil, err
	}
	for idx, p := range set.Puzzles {
		if err := p.Validate(bounds); err != nil {
			return nil, fmt.Errorf("puzzle %d: %w", idx+1, err)
		}
	}
	return set.Puzzles, nil
}

// Encode writes puzzles in the format Decode reads.
func Encode(w io.Writer, ps []Puzzle) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(puzzleSet{Puzzles: ps}); err != nil {
		return err
	}
	return enc.Close()
}

func LoadFile(path string, bounds config.Bounds) ([]Puzzle, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Decode(f, bounds)
}
