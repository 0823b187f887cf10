package theory

import (
	"fmt"
	"strings"
)

// Chord is a subset of scale degrees over a scale whose tonic is the chord
// root. Obtain chords through NewChord or Mode.Chord.
type Chord struct {
	scale       Scale
	composition DegreeSet
	intervals   IntervalSet
	quality     Quality
	notes       []BaseNote
	pitches     PitchClassSet
}

type chordKey struct {
	scale       Scale
	composition DegreeSet
}

func NewChord(s Scale, comp DegreeSet) (*Chord, error) {
	if !comp.Has(I) {
		return nil, fmt.Errorf("%w: %s", ErrChordMissingRoot, comp)
	}
	if comp.Len() < 2 {
		return nil, fmt.Errorf("%w: %s", ErrChordTooSmall, comp)
	}
	k := chordKey{s, comp}
	if c, ok := chordCache.Get(k); ok {
		return c, nil
	}
	c := &Chord{scale: s, composition: comp}
	root := s.Tonic()
	for _, d := range comp.Degrees() {
		n := s.Note(d)
		c.notes = append(c.notes, n)
		c.pitches = c.pitches.With(n.Offset())
		if d == I {
			continue
		}
		iv, ok := LookupInterval(d, n.Offset()-root.Offset())
		if !ok {
			return nil, fmt.Errorf("%w: degree %s of %s", ErrNoInterval, d, s)
		}
		c.intervals = c.intervals.With(iv)
	}
	q, err := QualityFromIntervals(c.intervals)
	if err != nil {
		return nil, fmt.Errorf("chord %s%s: %w", root, comp, err)
	}
	c.quality = q
	chordCache.Add(k, c)
	return c, nil
}

func (c *Chord) Scale() Scale { return c.scale }
func (c *Chord) Root() BaseNote { return c.scale.Tonic() }
func (c *Chord) Composition() DegreeSet { return c.composition }
func (c *Chord) Intervals() IntervalSet { return c.intervals }
func (c *Chord) Quality() Quality { return c.quality }
func (c *Chord) PitchClasses() PitchClassSet { return c.pitches }

// Notes returns the chord notes ordered by degree.
func (c *Chord) Notes() []BaseNote {
	out := make([]BaseNote, len(c.notes))
	copy(out, c.notes)
	return out
}

// NoteAt is the scale note on degree d regardless of composition.
func (c *Chord) NoteAt(d Degree) BaseNote { return c.scale.Note(d) }

func (c *Chord) Contains(n BaseNote) bool {
	for _, m := range c.notes {
		if m == n {
			return true
		}
	}
	return false
}

func (c *Chord) Dissonances() ([]DissonanceRelation, error) { return c.quality.Dissonances() }

func (c *Chord) Equal(o *Chord) bool {
	if c == nil || o == nil {
		return c == o
	}
	return c.scale == o.scale && c.composition == o.composition
}

// Name is the root spelling plus the quality name, e.g. "Dmin7".
func (c *Chord) Name() string { return c.Root().String() + c.quality.Name() }

func (c *Chord) String() string {
	names := make([]string, len(c.notes))
	for i, n := range c.notes {
		names[i] = n.String()
	}
	return fmt.Sprintf("%s [%s]", c.Name(), strings.Join(names, " "))
}
