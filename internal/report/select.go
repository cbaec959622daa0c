package report

import (
	"math/rand/v2"
	"sync"
)

// Selector picks the microbe identity for a frame from the registered keys.
// It never looks at the frame itself.
type Selector interface {
	Select(keys []string) string
}

// SelectorFunc adapts a plain function to Selector.
type SelectorFunc func(keys []string) string

func (f SelectorFunc) Select(keys []string) string { return f(keys) }

// RandomSelector draws uniformly from keys on every call.
type RandomSelector struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewRandomSelector returns a selector seeded with seed. A zero seed uses the
// runtime's random source, so runs are not reproducible.
func NewRandomSelector(seed uint64) *RandomSelector {
	if seed == 0 {
		return &RandomSelector{}
	}
	return &RandomSelector{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func (s *RandomSelector) Select(keys []string) string {
	if len(keys) == 0 {
		return ""
	}
	if s.rng == nil {
		return keys[rand.IntN(len(keys))]
	}
	s.mu.Lock()
	i := s.rng.IntN(len(keys))
	s.mu.Unlock()
	return keys[i]
}

// FixedSelector always returns the same name, registered or not.
type FixedSelector string

func (f FixedSelector) Select([]string) string { return string(f) }

// SequenceSelector cycles through a scripted list of names.
type SequenceSelector struct {
	mu    sync.Mutex
	names []string
	next  int
}

func NewSequenceSelector(names ...string) *SequenceSelector {
	return &SequenceSelector{names: append([]string(nil), names...)}
}

func (s *SequenceSelector) Select([]string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.names) == 0 {
		return ""
	}
	n := s.names[s.next%len(s.names)]
	s.next++
	return n
}
