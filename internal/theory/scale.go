package theory

import (
	"fmt"
	"strings"
)

// Scale is a tonic plus seven spelled intervals with precomputed notes.
// Scales are comparable values.
type Scale struct {
	tonic     BaseNote
	intervals [7]Interval
	notes     [7]BaseNote
}

func NewScale(tonic BaseNote, intervals []Interval) (Scale, error) {
	if len(intervals) != 7 {
		return Scale{}, fmt.Errorf("%w: got %d", ErrScaleSize, len(intervals))
	}
	if intervals[0] != Perf1 {
		return Scale{}, fmt.Errorf("%w: got %s", ErrScaleNotUnison, intervals[0])
	}
	s := Scale{tonic: tonic}
	copy(s.intervals[:], intervals)
	for i, iv := range s.intervals {
		n, err := tonic.Add(iv)
		if err != nil {
			return Scale{}, fmt.Errorf("scale on %s: %w", tonic, err)
		}
		s.notes[i] = n
	}
	return s, nil
}

func (s Scale) Tonic() BaseNote { return s.tonic }
func (s Scale) Intervals() [7]Interval { return s.intervals }
func (s Scale) Notes() [7]BaseNote { return s.notes }
func (s Scale) Note(d Degree) BaseNote { return s.notes[d.index()] }
func (s Scale) Interval(d Degree) Interval { return s.intervals[d.index()] }

// DegreeOf reports which degree holds the note, if any.
func (s Scale) DegreeOf(n BaseNote) (Degree, bool) {
	for i, m := range s.notes {
		if m == n {
			return Degree(i + 1), true
		}
	}
	return NoDegree, false
}

func (s Scale) Contains(n BaseNote) bool {
	_, ok := s.DegreeOf(n)
	return ok
}

func (s Scale) PitchClasses() PitchClassSet {
	var p PitchClassSet
	for _, n := range s.notes {
		p = p.With(n.Offset())
	}
	return p
}

// ColorShiftTo describes how to turn s into o.
func (s Scale) ColorShiftTo(o Scale) ColorShift {
	return ColorShift{
		Src:  s.intervals,
		Diff: mod12(o.tonic.Offset() - s.tonic.Offset()),
		Dst:  o.intervals,
	}
}

// ApplyColorShift moves the tonic by the shift's semitone difference, keeping
// the tonic letter, and swaps in the destination profile.
func (s Scale) ApplyColorShift(cs ColorShift) (Scale, error) {
	if cs.Src != s.intervals {
		return Scale{}, ErrColorShiftMismatch
	}
	tonic, err := FromNameAndOffset(s.tonic.Letter, s.tonic.Offset()+cs.Diff)
	if err != nil {
		return Scale{}, err
	}
	return NewScale(tonic, cs.Dst[:])
}

func (s Scale) String() string {
	names := make([]string, len(s.notes))
	for i, n := range s.notes {
		names[i] = n.String()
	}
	return strings.Join(names, " ")
}
