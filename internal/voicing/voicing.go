// Package voicing turns resolved chords into MIDI note numbers.
package voicing

import (
	"fmt"
	"slices"

	"github.com/Conceptual-Machines/harmony-api/internal/relations"
	"github.com/Conceptual-Machines/harmony-api/internal/theory"
)

// Spread controls how far the chord tones are spaced.
type Spread string

const (
	SpreadTight  Spread = "tight"  // close position above the root
	SpreadMedium Spread = "medium" // root doubled an octave below
	SpreadWide   Spread = "wide"   // medium plus every other upper tone raised an octave
)

// ParseSpread accepts "", tight, medium or wide. Empty means tight.
func ParseSpread(s string) (Spread, error) {
	switch Spread(s) {
	case "", SpreadTight:
		return SpreadTight, nil
	case SpreadMedium, SpreadWide:
		return Spread(s), nil
	}
	return "", fmt.Errorf("unknown spread %q", s)
}

// Options for voicing. Octave 4 puts the root at or above middle C (60).
type Options struct {
	Octave int
	Spread Spread
}

func DefaultOptions() Options { return Options{Octave: 4, Spread: SpreadTight} }

// Octave bounds that keep every root inside 0..127, B#8 included.
const (
	MinOctave = 0
	MaxOctave = 8
)

// Validate rejects an unknown spread or an octave whose roots can leave the
// MIDI range.
func (o Options) Validate() error {
	if _, err := ParseSpread(string(o.Spread)); err != nil {
		return err
	}
	if o.Octave < MinOctave || o.Octave > MaxOctave {
		return fmt.Errorf("octave %d outside %d..%d", o.Octave, MinOctave, MaxOctave)
	}
	return nil
}

// noteToMIDI places a spelled note in an octave: C-1 = 0, C4 = 60. The
// octave follows the letter, so B#4 is 72 and Cb4 is 59.
func noteToMIDI(n theory.BaseNote, octave int) int {
	return (octave+1)*12 + n.Letter.Pitch() + int(n.Shift)
}

var extensions = theory.NewDegreeSet(theory.II, theory.IV, theory.VI)

// ChordToMIDI voices chord with the root in opts.Octave. Seconds, fourths
// and sixths sit an octave up as ninths, elevenths and thirteenths unless
// the chord has no third. Notes outside 0..127 are dropped and a
// chord with no playable note is an error.
func ChordToMIDI(chord *theory.Chord, opts Options) ([]int, error) {
	root := noteToMIDI(chord.Root(), opts.Octave)
	intervals := chord.Intervals().Intervals()
	hasThird := false
	for _, iv := range intervals {
		if iv.Degree() == theory.III {
			hasThird = true
		}
	}

	upper := make([]int, 0, len(intervals))
	for _, iv := range intervals {
		note := root + iv.Semitones()
		if hasThird && extensions.Has(iv.Degree()) {
			note += 12
		}
		upper = append(upper, note)
	}

	var notes []int
	switch opts.Spread {
	case SpreadMedium, SpreadWide:
		notes = append(notes, root-12)
	}
	notes = append(notes, root)
	for i, n := range upper {
		if opts.Spread == SpreadWide && i%2 == 1 {
			n += 12
		}
		notes = append(notes, n)
	}

	out := notes[:0]
	for _, n := range notes {
		if n >= 0 && n <= 127 {
			out = append(out, n)
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no valid MIDI notes generated for chord: %s", chord.Name())
	}
	slices.Sort(out)
	return out, nil
}

// Progression voices every step of a progression.
func Progression(steps []relations.Triple, opts Options) ([][]int, error) {
	out := make([][]int, len(steps))
	for i, step := range steps {
		r, err := step.Resolve()
		if err != nil {
			return nil, fmt.Errorf("step %d: %w", i, err)
		}
		notes, err := ChordToMIDI(r.Chord, opts)
		if err != nil {
			return nil, fmt.Errorf("step %d: %w", i, err)
		}
		out[i] = notes
	}
	return out, nil
}
