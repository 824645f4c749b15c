package puzzles

import (
	"encoding/binary"
	"errors"
	"fmt"

	"lukechampine.com/frand"

	"github.com/domino14/cifras/config"
)

var ErrBadGeneratorSettings = errors.New("bad generator settings")

// Generator draws random puzzles. It is not safe for concurrent use.
type Generator struct {
	settings config.GeneratorSettings
	rng      *frand.RNG
}

func checkSettings(s config.GeneratorSettings) error {
	switch {
	case s.Count < 2:
		return fmt.Errorf("%w: need at least 2 numbers, got %d", ErrBadGeneratorSettings, s.Count)
	case s.BigNumberProbability < 0 || s.BigNumberProbability > 100:
		return fmt.Errorf("%w: big number probability %d is not a percentage", ErrBadGeneratorSettings, s.BigNumberProbability)
	case s.BigNumberProbability > 0 && len(s.BigNumbers) == 0:
		return fmt.Errorf("%w: no big numbers to draw from", ErrBadGeneratorSettings)
	case s.Small.Min > s.Small.Max:
		return fmt.Errorf("%w: small numbers %d..%d", ErrBadGeneratorSettings, s.Small.Min, s.Small.Max)
	case s.Target.Min < 0 || s.Target.Min > s.Target.Max:
		return fmt.Errorf("%w: targets %d..%d", ErrBadGeneratorSettings, s.Target.Min, s.Target.Max)
	}
	if !s.Numbers.Contains(s.Small.Min) || !s.Numbers.Contains(s.Small.Max) {
		return fmt.Errorf("%w: small numbers %d..%d fall outside %d..%d", ErrBadGeneratorSettings,
			s.Small.Min, s.Small.Max, s.Numbers.Min, s.Numbers.Max)
	}
	for _, b := range s.BigNumbers {
		if !s.Numbers.Contains(b) {
			return fmt.Errorf("%w: big number %d falls outside %d..%d", ErrBadGeneratorSettings,
				b, s.Numbers.Min, s.Numbers.Max)
		}
	}
	return nil
}

// NewGenerator returns a generator seeded from system entropy.
func NewGenerator(s config.GeneratorSettings) (*Generator, error) {
	if err := checkSettings(s); err != nil {
		return nil, err
	}
	return &Generator{settings: s, rng: frand.New()}, nil
}

// NewSeededGenerator returns a generator that always draws the same
// sequence of puzzles for the same seed.
func NewSeededGenerator(s config.GeneratorSettings, seed uint64) (*Generator, error) {
	if err := checkSettings(s); err != nil {
		return nil, err
	}
	key := make([]byte, 32)
	binary.LittleEndian.PutUint64(key, seed)
	return &Generator{settings: s, rng: frand.NewCustom(key, 1024, 12)}, nil
}

func (g *Generator) intBetween(min, max int64) int64 {
	return min + int64(g.rng.Uint64n(uint64(max-min)+1))
}

func (g *Generator) number() int64 {
	s := g.settings
	if s.BigNumberProbability > 0 && g.rng.Intn(100) < s.BigNumberProbability {
		return s.BigNumbers[g.rng.Intn(len(s.BigNumbers))]
	}
	return g.intBetween(s.Small.Min, s.Small.Max)
}

// Generate draws Count numbers and a target.
func (g *Generator) Generate() Puzzle {
	p := Puzzle{Numbers: make([]int64, g.settings.Count)}
	for i := range p.Numbers {
		p.Numbers[i] = g.number()
	}
	p.Target = g.intBetween(g.settings.Target.Min, g.settings.Target.Max)
	return p
}

// GenerateN draws n puzzles.
func (g *Generator) GenerateN(n int) []Puzzle {
	ps := make([]Puzzle, n)
	for i := range ps {
		ps[i] = g.Generate()
	}
	return ps
}
