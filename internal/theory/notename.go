package theory

import (
	"fmt"
	"strings"
)

// NoteName is a natural letter C..B.
type NoteName uint8

const (
	C NoteName = iota
	D
	E
	F
	G
	A
	B
)

// AllNoteNames lists the letters in scale order starting from C.
var AllNoteNames = [7]NoteName{C, D, E, F, G, A, B}

var (
	noteLetters = [7]string{"C", "D", "E", "F", "G", "A", "B"}
	notePitches = [7]int{0, 2, 4, 5, 7, 9, 11}
)

func (n NoteName) String() string {
	if int(n) >= len(noteLetters) {
		return fmt.Sprintf("NoteName(%d)", uint8(n))
	}
	return noteLetters[n]
}

// Pitch is the semitone offset of the natural letter above C.
func (n NoteName) Pitch() int { return notePitches[n] }

// Degree is the position of the letter counted from C as I.
func (n NoteName) Degree() Degree { return Degree(n) + 1 }

func noteAt(idx int) NoteName {
	idx %= 7
	if idx < 0 {
		idx += 7
	}
	return NoteName(idx)
}

// Add moves the letter up by a degree step: C.Add(III) == E.
func (n NoteName) Add(d Degree) NoteName { return noteAt(int(n) + d.index()) }

// Sub moves the letter down by a degree step.
func (n NoteName) Sub(d Degree) NoteName { return noteAt(int(n) - d.index()) }

// DegreeFrom is the letter distance from o to n: E.DegreeFrom(C) == III.
func (n NoteName) DegreeFrom(o NoteName) Degree { return n.Degree().Sub(o.Degree()) }

func ParseNoteName(s string) (NoteName, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	for i, l := range noteLetters {
		if l == s {
			return NoteName(i), nil
		}
	}
	return 0, fmt.Errorf("%w: note name %q", ErrUnknownName, s)
}
