package cache

import (
	"sync"

	"github.com/cespare/xxhash"
	"github.com/rs/zerolog/log"

	"github.com/domino14/cifras/puzzles"
	"github.com/domino14/cifras/step"
)

// The cache keeps best solutions for puzzles that were already solved, so
// that a long running service or a batch with repeated puzzles does not run
// the search twice. Entries are evicted oldest first once the cache is full.

type entry struct {
	key  string
	best *step.Stack
}

type SolveFunc func(p puzzles.Puzzle) (*step.Stack, error)

// SolutionCache is safe for concurrent use. The lock is held while a
// missing puzzle is solved.
type SolutionCache struct {
	sync.Mutex
	size    int
	objects map[uint64]entry
	order   []uint64
	hits    uint64
	misses  uint64
}

func New(size int) *SolutionCache {
	if size < 1 {
		size = 1
	}
	return &SolutionCache{
		size:    size,
		objects: make(map[uint64]entry, size),
	}
}

func hashKey(key string) uint64 {
	return xxhash.Sum64([]byte(key))
}

func clone(s *step.Stack) (*step.Stack, error) {
	c := step.NewStack(s.Cap())
	if err := c.CopyFrom(s); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *SolutionCache) load(p puzzles.Puzzle, h uint64, key string, solve SolveFunc) (*step.Stack, error) {
	log.Debug().Str("key", key).Msg("solving-into-cache")
	best, err := solve(p)
	if err != nil {
		return nil, err
	}
	stored, err := clone(best)
	if err != nil {
		return nil, err
	}
	if _, ok := c.objects[h]; !ok {
		if len(c.order) >= c.size {
			oldest := c.order[0]
			c.order = c.order[1:]
			delete(c.objects, oldest)
		}
		c.order = append(c.order, h)
	}
	c.objects[h] = entry{key: key, best: stored}
	return best, nil
}

// Get returns the best solution for p, calling solve only when the puzzle
// is not cached. The caller owns the returned stack.
func (c *SolutionCache) Get(p puzzles.Puzzle, solve SolveFunc) (*step.Stack, error) {
	key := p.Key()
	h := hashKey(key)
	c.Lock()
	defer c.Unlock()
	e, ok := c.objects[h]
	if !ok || e.key != key {
		c.misses++
		return c.load(p, h, key, solve)
	}
	c.hits++
	log.Debug().Str("key", key).Msg("solution-from-cache")
	return clone(e.best)
}

func (c *SolutionCache) Len() int {
	c.Lock()
	defer c.Unlock()
	return len(c.objects)
}

// Stats returns the number of hits and misses so far.
func (c *SolutionCache) Stats() (hits, misses uint64) {
	c.Lock()
	defer c.Unlock()
	return c.hits, c.misses
}
