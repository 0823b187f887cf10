// Package goals schedules hard end-of-progression goals and answers whether
// a goal is still reachable from a partial progression.
package goals

import (
	"sort"
	"strconv"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/Conceptual-Machines/harmony-api/internal/theory"
)

// CadenceSDT requires the last three absolute roots to be
// Subdominant, Dominant, Tonic.
type CadenceSDT struct {
	S theory.DegreeSet
	D theory.Degree
	T theory.Degree
}

// DefaultCadence is S in {II, IV}, D = V, T = I.
func DefaultCadence() *CadenceSDT {
	return &CadenceSDT{S: theory.NewDegreeSet(theory.II, theory.IV), D: theory.V, T: theory.I}
}

// AllowedRootsAt returns the roots permitted at index, or false when the
// index is unconstrained.
func (c *CadenceSDT) AllowedRootsAt(index, length int) (theory.DegreeSet, bool) {
	switch index {
	case length - 3:
		return c.S, true
	case length - 2:
		return theory.NewDegreeSet(c.D), true
	case length - 1:
		return theory.NewDegreeSet(c.T), true
	}
	return 0, false
}

func (c *CadenceSDT) ID() string {
	var names []string
	for _, d := range c.S.Degrees() {
		names = append(names, d.String())
	}
	sort.Strings(names)
	return "cadence_sdt:S=" + strings.Join(names, ",") + ";D=" + c.D.String() + ";T=" + c.T.String()
}

// Schedule binds goals to a progression length.
type Schedule struct {
	Length  int
	Cadence *CadenceSDT
}

func (s *Schedule) ID() string {
	parts := []string{"len=" + strconv.Itoa(s.Length)}
	if s.Cadence != nil {
		parts = append(parts, s.Cadence.ID())
	}
	return strings.Join(parts, "|")
}

// AllowedRootsAt delegates to the cadence goal; without one every index is free.
func (s *Schedule) AllowedRootsAt(index int) (theory.DegreeSet, bool) {
	if s == nil || s.Cadence == nil {
		return 0, false
	}
	return s.Cadence.AllowedRootsAt(index, s.Length)
}

const defaultMemoSize = 1 << 16

type memoKey struct {
	goalset string
	next    int
	prev    theory.Degree
	last    theory.Degree
}

// Memo caches reachability answers. It is safe to share between goroutines;
// an evicted entry is simply recomputed.
type Memo struct {
	cache *lru.Cache[memoKey, bool]
}

func NewMemo() *Memo { return NewMemoSize(defaultMemoSize) }

func NewMemoSize(size int) *Memo {
	c, err := lru.New[memoKey, bool](size)
	if err != nil {
		panic(err)
	}
	return &Memo{cache: c}
}

func (m *Memo) Len() int { return m.cache.Len() }

// CanReach reports whether the remaining indices next..Length-1 can still
// satisfy the cadence, given the previous two absolute roots (NoDegree when
// absent). Only the no-adjacent-repeat rule is enforced along the way, so a
// false answer is never a false negative for the full rule set.
func CanReach(s *Schedule, next int, prev, last theory.Degree, memo *Memo) bool {
	if s == nil || s.Cadence == nil || next >= s.Length {
		return true
	}
	key := memoKey{goalset: s.ID(), next: next, prev: prev, last: last}
	if hit, ok := memo.cache.Get(key); ok {
		return hit
	}

	candidates := theory.AllDegrees[:]
	if allowed, ok := s.AllowedRootsAt(next); ok {
		candidates = allowed.Degrees()
	}
	for _, root := range candidates {
		if last != theory.NoDegree && root == last {
			continue
		}
		if CanReach(s, next+1, last, root, memo) {
			memo.cache.Add(key, true)
			return true
		}
	}
	memo.cache.Add(key, false)
	return false
}
