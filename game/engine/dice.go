package engine

import (
	"math/rand/v2"
	"sync"
)

// Source supplies every random decision the rules need
type Source interface {
	// Roll returns a die face in [1, 6]
	Roll() int
	// Intn returns a value in [0, n)
	Intn(n int) int
}

// RandomSource draws from math/rand/v2
type RandomSource struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewRandomSource returns an unseeded source backed by the runtime generator
func NewRandomSource() *RandomSource {
	return &RandomSource{}
}

// NewSeededSource returns a reproducible source, used by simulations
func NewSeededSource(seed uint64) *RandomSource {
	return &RandomSource{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func (r *RandomSource) Roll() int {
	return r.Intn(DieFaces) + 1
}

func (r *RandomSource) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	if r.rng == nil {
		return rand.IntN(n)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rng.IntN(n)
}

// ScriptedSource replays fixed dice and picks. When a queue runs dry it
// returns the lowest value (a roll of 1, a pick of 0).
type ScriptedSource struct {
	Rolls []int
	Picks []int
}

func (s *ScriptedSource) Roll() int {
	if len(s.Rolls) == 0 {
		return 1
	}
	v := s.Rolls[0]
	s.Rolls = s.Rolls[1:]
	return v
}

func (s *ScriptedSource) Intn(n int) int {
	if len(s.Picks) == 0 || n <= 0 {
		return 0
	}
	v := s.Picks[0]
	s.Picks = s.Picks[1:]
	if v < 0 || v >= n {
		return ((v % n) + n) % n
	}
	return v
}
