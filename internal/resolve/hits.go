package resolve

import (
	"fmt"
	"sort"

	"github.com/Conceptual-Machines/harmony-api/internal/relations"
	"github.com/Conceptual-Machines/harmony-api/internal/theory"
)

// Kind identifies which relation a hit describes.
type Kind uint8

const (
	KindChordInMode Kind = iota
	KindModeInKey
	KindChordInKey
)

func (k Kind) String() string {
	switch k {
	case KindChordInMode:
		return "chord_in_mode"
	case KindModeInKey:
		return "mode_in_key"
	case KindChordInKey:
		return "chord_in_key"
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// Hit is one way an object sits inside another.
type Hit interface {
	Kind() Kind
	String() string
}

// ChordInModeHit places a chord on a degree and variant of a mode.
type ChordInModeHit struct {
	Mode  *theory.Mode
	Chord *theory.Chord
	ID    relations.ChordID
}

func (h ChordInModeHit) Kind() Kind { return KindChordInMode }

// DegreesInMode are the chord members as degrees of the mode.
func (h ChordInModeHit) DegreesInMode() theory.DegreeSet {
	return h.ID.EffectiveComposition().Shift(h.ID.Degree)
}

// TurningPoints lists the altered sixth or seventh degrees a non-base chord
// touches.
func (h ChordInModeHit) TurningPoints() []TurningPoint {
	if h.ID.Variant == theory.Base {
		return nil
	}
	var out []TurningPoint
	for _, d := range h.DegreesInMode().Intersect(theory.NewDegreeSet(theory.VI, theory.VII)).Degrees() {
		if tp, ok := TurningPointOf(d, h.ID.Variant); ok {
			out = append(out, tp)
		}
	}
	return out
}

func (h ChordInModeHit) HasCharacteristicDegree() bool {
	return h.DegreesInMode().Has(h.Mode.CharacteristicDegree())
}

func (h ChordInModeHit) String() string {
	return fmt.Sprintf("[chord in mode] %s -> root=%s degrees=%s in %s[%s]",
		h.Chord.Name(), h.ID.Degree, h.ID.EffectiveComposition(), h.Mode, h.ID.Variant)
}

// ModeInKeyHit places a mode inside a key.
type ModeInKeyHit struct {
	Key  *theory.Key
	Mode *theory.Mode
	ID   relations.ModeID
}

func (h ModeInKeyHit) Kind() Kind { return KindModeInKey }

// SkeletonChord is the base tonic triad of the mode.
func (h ModeInKeyHit) SkeletonChord() (*theory.Chord, error) {
	return h.Mode.Chord(theory.I, theory.Base, theory.Triad)
}

// SkeletonIntervals are the skeleton chord notes measured from the key tonic.
func (h ModeInKeyHit) SkeletonIntervals() (theory.IntervalSet, error) {
	c, err := h.SkeletonChord()
	if err != nil {
		return 0, err
	}
	return intervalsFromTonic(h.Key, c.Notes()), nil
}

// TonicInterval is the semitone distance from the key tonic to the mode tonic.
func (h ModeInKeyHit) TonicInterval() int {
	return mod12(h.Mode.Tonic().Offset() - h.Key.Tonic().Offset())
}

func (h ModeInKeyHit) AlteredDegrees() theory.DegreeSet {
	return alteredDegrees(h.Key, h.Mode, h.ID)
}

func (h ModeInKeyHit) String() string {
	return fmt.Sprintf("[mode in key] %s -> access=%s role=%s in %s", h.Mode, h.ID.Access, h.ID.Role(), h.Key)
}

// ChordInKeyHit places a chord on a mode reachable from a key.
type ChordInKeyHit struct {
	Key     *theory.Key
	Mode    *theory.Mode
	Chord   *theory.Chord
	ModeID  relations.ModeID
	ChordID relations.ChordID
}

func (h ChordInKeyHit) Kind() Kind { return KindChordInKey }

func (h ChordInKeyHit) DegreesInMode() theory.DegreeSet {
	return h.ChordID.EffectiveComposition().Shift(h.ChordID.Degree)
}

// DegreesInKey are the chord members mapped into key coordinates.
func (h ChordInKeyHit) DegreesInKey() theory.DegreeSet {
	var out theory.DegreeSet
	for _, d := range h.DegreesInMode().Degrees() {
		out = out.With(relations.ToKeyRoot(h.ModeID, d))
	}
	return out
}

// AbsoluteRoot is the chord root in key coordinates.
func (h ChordInKeyHit) AbsoluteRoot() theory.Degree {
	return relations.ToKeyRoot(h.ModeID, h.ChordID.Degree)
}

// IntervalsInMainBase are the chord notes measured from the key tonic.
func (h ChordInKeyHit) IntervalsInMainBase() theory.IntervalSet {
	return intervalsFromTonic(h.Key, h.Chord.Notes())
}

func (h ChordInKeyHit) AlteredDegrees() theory.DegreeSet {
	return alteredDegrees(h.Key, h.Mode, h.ModeID)
}

// SemitoneTendencies maps each chromatic chord tone, keyed by its degree
// above the chord root, to the adjacent diatonic pitch classes it leans toward.
func (h ChordInKeyHit) SemitoneTendencies() map[theory.Degree][]int {
	diatonic := h.Key.MainBase().PitchClasses()
	root := h.Chord.Root()
	out := make(map[theory.Degree][]int)
	for _, pc := range h.Chord.PitchClasses().Classes() {
		if diatonic.Has(pc) {
			continue
		}
		src, ok := DegreeAbove(root, pc)
		if !ok {
			continue
		}
		targets := []int{}
		for _, t := range []int{mod12(pc + 1), mod12(pc - 1)} {
			if diatonic.Has(t) && !containsInt(targets, t) {
				targets = append(targets, t)
			}
		}
		out[src] = targets
	}
	return out
}

func (h ChordInKeyHit) String() string {
	return fmt.Sprintf("[chord in key] %s -> %s[%s] (access=%s, role=%s) in %s; root=%s degrees=%s",
		h.Chord.Name(), h.Mode, h.ChordID.Variant, h.ModeID.Access, h.ModeID.Role(), h.Key,
		h.ChordID.Degree, h.ChordID.EffectiveComposition())
}

// DegreeAbove spells pc on each letter above root and keeps the degree with
// the smallest accidental, preferring the lower degree on ties.
func DegreeAbove(root theory.BaseNote, pc int) (theory.Degree, bool) {
	best, bestShift := theory.NoDegree, 0
	for _, d := range theory.AllDegrees {
		n, err := theory.FromNameAndOffset(root.Letter.Add(d), pc)
		if err != nil {
			continue
		}
		shift := int(n.Shift)
		if shift < 0 {
			shift = -shift
		}
		if best == theory.NoDegree || shift < bestShift {
			best, bestShift = d, shift
		}
	}
	return best, best != theory.NoDegree
}

func alteredDegrees(key *theory.Key, mode *theory.Mode, id relations.ModeID) theory.DegreeSet {
	base, err := mode.Scale(theory.Base)
	if err != nil {
		return 0
	}
	mainBase := key.MainBase()
	role := id.RoleDegree()
	var out theory.DegreeSet
	for _, d := range theory.AllDegrees {
		if base.Note(d.Sub(role)).Offset() != mainBase.Note(d).Offset() {
			out = out.With(d)
		}
	}
	return out
}

func intervalsFromTonic(key *theory.Key, notes []theory.BaseNote) theory.IntervalSet {
	tonic := key.Tonic()
	var out theory.IntervalSet
	for _, n := range notes {
		if iv, ok := tonic.IntervalTo(n); ok {
			out = out.With(iv)
		}
	}
	return out
}

func containsInt(xs []int, x int) bool {
	for _, v := range xs {
		if v == x {
			return true
		}
	}
	return false
}

func mod12(n int) int {
	n %= 12
	if n < 0 {
		n += 12
	}
	return n
}

var variantPreference = map[theory.Variant]int{theory.Base: 0, theory.Ascending: 1, theory.Descending: 2}

// PickChordInMode chooses the canonical hit: Base before Ascending before
// Descending, then the lowest degree, then the smallest composition.
func PickChordInMode(hits []ChordInModeHit) (ChordInModeHit, bool) {
	if len(hits) == 0 {
		return ChordInModeHit{}, false
	}
	sorted := append([]ChordInModeHit(nil), hits...)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i].ID, sorted[j].ID
		if variantPreference[a.Variant] != variantPreference[b.Variant] {
			return variantPreference[a.Variant] < variantPreference[b.Variant]
		}
		if a.Degree != b.Degree {
			return a.Degree < b.Degree
		}
		return a.EffectiveComposition() < b.EffectiveComposition()
	})
	return sorted[0], true
}

var accessPreference = map[relations.Access]int{relations.Substitute: 0, relations.Relative: 1, relations.SubV: 2}

func roleOrder(id relations.ModeID) int {
	if id.HasDegreeRole() {
		return int(id.Degree)
	}
	return int(id.Type)
}

// PickModeInKey chooses the canonical hit: Substitute before Relative before
// SubV, then the role order, then the mode tonic.
func PickModeInKey(hits []ModeInKeyHit) (ModeInKeyHit, bool) {
	if len(hits) == 0 {
		return ModeInKeyHit{}, false
	}
	sorted := append([]ModeInKeyHit(nil), hits...)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if accessPreference[a.ID.Access] != accessPreference[b.ID.Access] {
			return accessPreference[a.ID.Access] < accessPreference[b.ID.Access]
		}
		if roleOrder(a.ID) != roleOrder(b.ID) {
			return roleOrder(a.ID) < roleOrder(b.ID)
		}
		return a.Mode.Tonic().Offset() < b.Mode.Tonic().Offset()
	})
	return sorted[0], true
}
