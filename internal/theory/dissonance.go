package theory

import (
	"fmt"
	"sort"
)

// Resolution is the expected motion of a note inside a dissonance.
type Resolution uint8

const (
	ResolveNone Resolution = iota
	ResolveStepUp
	ResolveStepDown
	ResolveStepEither
)

var resolutionNames = [...]string{"NONE", "STEP_UP", "STEP_DOWN", "STEP_EITHER"}

func (r Resolution) String() string { return resolutionNames[r] }

// DissonanceMember is one note of a dissonance and how it should move.
type DissonanceMember struct {
	Interval   Interval
	Resolution Resolution
}

// DissonanceRelation is a set of chord notes that clash, with a priority and
// the minimum number of members that must move.
type DissonanceRelation struct {
	Kind     string
	Priority int
	MinMoves int
	Members  []DissonanceMember
}

func (r DissonanceRelation) Notes() IntervalSet {
	var s IntervalSet
	for _, m := range r.Members {
		s = s.With(m.Interval)
	}
	return s
}

// ResolutionOf returns the expected motion for a member note.
func (r DissonanceRelation) ResolutionOf(iv Interval) (Resolution, bool) {
	for _, m := range r.Members {
		if m.Interval == iv {
			return m.Resolution, true
		}
	}
	return ResolveNone, false
}

func (r DissonanceRelation) Validate() error {
	if r.MinMoves < 0 {
		return fmt.Errorf("%w: %s min_moves %d < 0", ErrInvalidDissonance, r.Kind, r.MinMoves)
	}
	movable := 0
	for _, m := range r.Members {
		if m.Resolution != ResolveNone {
			movable++
		}
	}
	if r.MinMoves > movable {
		return fmt.Errorf("%w: %s min_moves %d > movable %d", ErrInvalidDissonance, r.Kind, r.MinMoves, movable)
	}
	return nil
}

type edgeRule struct {
	kind     string
	priority int
	earlier  Resolution
	later    Resolution
}

var edgeRules = map[int]edgeRule{
	1:  {"m2", 60, ResolveNone, ResolveStepDown},
	2:  {"M2", 55, ResolveNone, ResolveStepDown},
	5:  {"P4", 70, ResolveNone, ResolveStepDown},
	6:  {"tritone", 100, ResolveStepEither, ResolveStepEither},
	10: {"m7", 65, ResolveNone, ResolveStepDown},
	11: {"M7", 75, ResolveNone, ResolveStepDown},
}

// tertianRank orders degrees as stacked thirds: I III V VII II IV VI.
var tertianRank = map[Degree]int{I: 0, III: 1, V: 2, VII: 3, II: 4, IV: 5, VI: 6}

func intervalRank(iv Interval) int { return tertianRank[iv.Degree()] }

func byResponsibility(a, b Interval) bool {
	ra, rb := intervalRank(a), intervalRank(b)
	if ra != rb {
		return ra < rb
	}
	return a.Semitones() <= b.Semitones()
}

// orderByResponsibility returns (earlier, later); the later note carries
// the resolution.
func orderByResponsibility(a, b Interval) (Interval, Interval) {
	if byResponsibility(a, b) {
		return a, b
	}
	return b, a
}

func isAugmentedSet(a, b, c Interval) bool {
	semis := []int{a.Semitones(), b.Semitones(), c.Semitones()}
	lo := semis[0]
	for _, s := range semis[1:] {
		if s < lo {
			lo = s
		}
	}
	var norm PitchClassSet
	for _, s := range semis {
		norm = norm.With(s - lo)
	}
	return norm == PitchClassSet(0).With(0).With(4).With(8)
}

// Dissonances lists the clashing note groups of the quality: interval pairs
// by semitone distance, then augmented-triad sets. Each note group appears once.
func (q Quality) Dissonances() ([]DissonanceRelation, error) {
	notes := q.Present().Intervals()
	sort.SliceStable(notes, func(i, j int) bool {
		ri, rj := intervalRank(notes[i]), intervalRank(notes[j])
		if ri != rj {
			return ri < rj
		}
		return notes[i].Semitones() < notes[j].Semitones()
	})

	seen := make(map[IntervalSet]bool)
	var out []DissonanceRelation
	add := func(r DissonanceRelation) error {
		k := r.Notes()
		if seen[k] {
			return nil
		}
		if err := r.Validate(); err != nil {
			return err
		}
		seen[k] = true
		out = append(out, r)
		return nil
	}

	for i := 0; i < len(notes); i++ {
		for j := i + 1; j < len(notes); j++ {
			earlier, later := orderByResponsibility(notes[i], notes[j])
			rule, ok := edgeRules[mod12(later.Semitones()-earlier.Semitones())]
			if !ok {
				continue
			}
			err := add(DissonanceRelation{
				Kind:     rule.kind,
				Priority: rule.priority,
				MinMoves: 1,
				Members: []DissonanceMember{
					{earlier, rule.earlier},
					{later, rule.later},
				},
			})
			if err != nil {
				return nil, err
			}
		}
	}

	for i := 0; i < len(notes); i++ {
		for j := i + 1; j < len(notes); j++ {
			for k := j + 1; k < len(notes); k++ {
				a, b, c := notes[i], notes[j], notes[k]
				if !isAugmentedSet(a, b, c) {
					continue
				}
				// notes is already in rank order
				err := add(DissonanceRelation{
					Kind:     "aug_set",
					Priority: 90,
					MinMoves: 1,
					Members: []DissonanceMember{
						{a, ResolveStepEither},
						{b, ResolveStepEither},
						{c, ResolveStepEither},
					},
				})
				if err != nil {
					return nil, err
				}
			}
		}
	}
	return out, nil
}
