package enumerate

import (
	"iter"
	"math/rand/v2"
)

// DefaultWindow is how many prefixes are interleaved at once.
const DefaultWindow = 16

// RelationSpec describes a layered space. Layer values are heterogeneous, so
// prefixes are carried as []any and Assemble builds the typed result.
type RelationSpec[T any] struct {
	Depth     int
	Roots     func() []any
	Children  func(prefix []any) []any
	Forbidden func(prefix []any, v any) bool
	Assemble  func(values []any) T
}

// PrefixEnumerator samples leaves of a RelationSpec. It walks prefixes
// depth-first in shuffled order and interleaves draws from a window of open
// prefixes so that early output is spread over the space.
type PrefixEnumerator[T any] struct {
	spec   RelationSpec[T]
	rng    *rand.Rand
	window int
}

func NewPrefixEnumerator[T any](spec RelationSpec[T], rng *rand.Rand, window int) *PrefixEnumerator[T] {
	if window < 1 {
		window = 1
	}
	return &PrefixEnumerator[T]{spec: spec, rng: rng, window: window}
}

type layer struct {
	sh      *Shuffler[any]
	head    any
	hasHead bool
}

func (l *layer) next() (any, bool) {
	if l.hasHead {
		l.hasHead = false
		return l.head, true
	}
	return l.sh.Next()
}

func clonePrefix(p []any) []any { return append([]any(nil), p...) }

func (e *PrefixEnumerator[T]) open(prefix []any, items []any) *layer {
	filtered := make([]any, 0, len(items))
	for _, v := range items {
		if e.spec.Forbidden == nil || !e.spec.Forbidden(prefix, v) {
			filtered = append(filtered, v)
		}
	}
	return &layer{sh: NewShuffler(filtered, e.rng)}
}

// primed opens a layer and draws its first value; nil when the layer is empty.
func (e *PrefixEnumerator[T]) primed(prefix []any, items []any) *layer {
	l := e.open(prefix, items)
	v, ok := l.sh.Next()
	if !ok {
		return nil
	}
	l.head, l.hasHead = v, true
	return l
}

type prefixWalker[T any] struct {
	e      *PrefixEnumerator[T]
	depth  int
	prefix []any
	stack  []*layer
}

func (w *prefixWalker[T]) next() ([]any, bool) {
	for len(w.stack) > 0 {
		top := w.stack[len(w.stack)-1]
		v, ok := top.next()
		if !ok {
			w.stack = w.stack[:len(w.stack)-1]
			if len(w.prefix) > 0 {
				w.prefix = w.prefix[:len(w.prefix)-1]
			}
			continue
		}
		w.prefix = append(w.prefix, v)
		if len(w.prefix) == w.depth {
			out := clonePrefix(w.prefix)
			w.prefix = w.prefix[:len(w.prefix)-1]
			return out, true
		}
		p := clonePrefix(w.prefix)
		child := w.e.primed(p, w.e.spec.Children(p))
		if child == nil {
			w.prefix = w.prefix[:len(w.prefix)-1]
			continue
		}
		w.stack = append(w.stack, child)
	}
	return nil, false
}

type prefixState struct {
	prefix []any
	leaves *layer
}

// Propose yields at most limit assembled leaves. Forbidden values never
// appear, and for a fixed rng state the sequence is deterministic.
func (e *PrefixEnumerator[T]) Propose(limit int) iter.Seq[T] {
	return func(yield func(T) bool) {
		depth := e.spec.Depth
		if limit <= 0 || depth <= 0 {
			return
		}

		if depth == 1 {
			roots := e.open(nil, e.spec.Roots())
			for produced := 0; produced < limit; produced++ {
				v, ok := roots.next()
				if !ok || !yield(e.spec.Assemble([]any{v})) {
					return
				}
			}
			return
		}

		walker := &prefixWalker[T]{e: e, depth: depth - 1}
		walker.stack = []*layer{e.open(nil, e.spec.Roots())}
		exhausted := false
		var active []*prefixState

		topUp := func() {
			for !exhausted && len(active) < e.window {
				p, ok := walker.next()
				if !ok {
					exhausted = true
					return
				}
				if leaves := e.primed(p, e.spec.Children(p)); leaves != nil {
					active = append(active, &prefixState{prefix: p, leaves: leaves})
				}
			}
		}

		lastIdx := -1
		for produced := 0; produced < limit; {
			topUp()
			if len(active) == 0 {
				return
			}

			idx := 0
			if len(active) > 1 {
				idx = e.rng.IntN(len(active))
				if idx == lastIdx {
					idx = (idx + 1 + e.rng.IntN(len(active)-1)) % len(active)
				}
			}

			st := active[idx]
			leaf, ok := st.leaves.next()
			if !ok {
				active[idx] = active[len(active)-1]
				active = active[:len(active)-1]
				if lastIdx == idx {
					lastIdx = -1
				}
				continue
			}

			full := append(clonePrefix(st.prefix), leaf)
			if !yield(e.spec.Assemble(full)) {
				return
			}
			produced++
			lastIdx = idx
		}
	}
}
