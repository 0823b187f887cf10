// Package enumerate draws candidates lazily and in random order from layered
// relation spaces, so a caller can stop after a budget without materialising
// the whole space.
package enumerate

import (
	"iter"
	"math/rand/v2"
)

// Shuffler yields items in random order, paying for the Fisher-Yates swaps
// only as items are drawn.
type Shuffler[V any] struct {
	items []V
	rng   *rand.Rand
	i     int
	swaps map[int]int
}

func NewShuffler[V any](items []V, rng *rand.Rand) *Shuffler[V] {
	return &Shuffler[V]{items: items, rng: rng, swaps: make(map[int]int)}
}

func (s *Shuffler[V]) slot(i int) int {
	if v, ok := s.swaps[i]; ok {
		return v
	}
	return i
}

// Next returns the next item, or false once every item has been drawn.
func (s *Shuffler[V]) Next() (V, bool) {
	n := len(s.items)
	if s.i >= n {
		var zero V
		return zero, false
	}
	i := s.i
	j := i + s.rng.IntN(n-i)
	a, b := s.slot(i), s.slot(j)
	s.swaps[i] = b
	s.swaps[j] = a
	s.i++
	return s.items[s.slot(i)], true
}

// All drains the shuffler.
func (s *Shuffler[V]) All() iter.Seq[V] {
	return func(yield func(V) bool) {
		for {
			v, ok := s.Next()
			if !ok || !yield(v) {
				return
			}
		}
	}
}
