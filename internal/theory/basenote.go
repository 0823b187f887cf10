package theory

import (
	"fmt"
	"strings"
)

// BaseNote is a spelled pitch class: a letter plus at most two accidentals.
// It is a comparable value, so equal spellings are equal notes.
type BaseNote struct {
	Letter NoteName
	Shift  int8
}

func NewBaseNote(letter NoteName, shift int) (BaseNote, error) {
	if shift < -2 || shift > 2 {
		return BaseNote{}, fmt.Errorf("%w: %s with shift %d", ErrShiftOutOfRange, letter, shift)
	}
	return BaseNote{Letter: letter, Shift: int8(shift)}, nil
}

// MustBaseNote panics on an invalid spelling. Intended for tables and tests.
func MustBaseNote(letter NoteName, shift int) BaseNote {
	n, err := NewBaseNote(letter, shift)
	if err != nil {
		panic(err)
	}
	return n
}

// FromNameAndOffset spells a pitch class on the given letter using the
// smallest accidental.
func FromNameAndOffset(letter NoteName, offset int) (BaseNote, error) {
	delta := mod12(offset - letter.Pitch())
	if delta > 6 {
		delta -= 12
	}
	if delta < -2 || delta > 2 {
		return BaseNote{}, fmt.Errorf("%w: cannot spell pitch class %d on %s", ErrShiftOutOfRange, mod12(offset), letter)
	}
	return BaseNote{Letter: letter, Shift: int8(delta)}, nil
}

// Offset is the pitch class 0..11.
func (n BaseNote) Offset() int { return mod12(n.Letter.Pitch() + int(n.Shift)) }

func (n BaseNote) Add(iv Interval) (BaseNote, error) {
	return FromNameAndOffset(n.Letter.Add(iv.Degree()), n.Offset()+iv.Semitones())
}

func (n BaseNote) Sub(iv Interval) (BaseNote, error) {
	return FromNameAndOffset(n.Letter.Sub(iv.Degree()), n.Offset()-iv.Semitones())
}

// IntervalTo returns the spelled interval from n up to o.
func (n BaseNote) IntervalTo(o BaseNote) (Interval, bool) {
	return LookupInterval(o.Letter.DegreeFrom(n.Letter), o.Offset()-n.Offset())
}

func (n BaseNote) String() string {
	switch {
	case n.Shift > 0:
		return n.Letter.String() + strings.Repeat("#", int(n.Shift))
	case n.Shift < 0:
		return n.Letter.String() + strings.Repeat("b", int(-n.Shift))
	}
	return n.Letter.String()
}

// ParseBaseNote accepts spellings like "C", "F#", "Bb", "Ebb" and "C##".
func ParseBaseNote(s string) (BaseNote, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return BaseNote{}, fmt.Errorf("%w: empty note", ErrUnknownName)
	}
	letter, err := ParseNoteName(s[:1])
	if err != nil {
		return BaseNote{}, err
	}
	shift := 0
	for _, r := range s[1:] {
		switch r {
		case '#':
			shift++
		case 'b':
			shift--
		default:
			return BaseNote{}, fmt.Errorf("%w: note %q", ErrUnknownName, s)
		}
	}
	return NewBaseNote(letter, shift)
}

// PitchClassSet is a set of pitch classes 0..11.
type PitchClassSet uint16

func (p PitchClassSet) Has(pc int) bool { return p&(1<<mod12(pc)) != 0 }
func (p PitchClassSet) With(pc int) PitchClassSet { return p | 1<<mod12(pc) }

// Classes returns the members in ascending order.
func (p PitchClassSet) Classes() []int {
	var out []int
	for pc := 0; pc < 12; pc++ {
		if p.Has(pc) {
			out = append(out, pc)
		}
	}
	return out
}

// MultiHot encodes the set as a 12-element 0/1 vector.
func (p PitchClassSet) MultiHot() []float64 {
	v := make([]float64, 12)
	for pc := 0; pc < 12; pc++ {
		if p.Has(pc) {
			v[pc] = 1
		}
	}
	return v
}
