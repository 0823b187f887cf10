package theory

import (
	"fmt"
	"math/bits"
	"strings"
)

// Degree is a scale degree I..VII. The zero value means no degree.
type Degree uint8

const (
	NoDegree Degree = iota
	I
	II
	III
	IV
	V
	VI
	VII
)

// AllDegrees lists I..VII in order.
var AllDegrees = [7]Degree{I, II, III, IV, V, VI, VII}

var degreeNames = [...]string{"", "I", "II", "III", "IV", "V", "VI", "VII"}

func (d Degree) String() string {
	if d > VII {
		return fmt.Sprintf("Degree(%d)", uint8(d))
	}
	return degreeNames[d]
}

func (d Degree) Valid() bool { return d >= I && d <= VII }

func (d Degree) index() int { return int(d) - 1 }

func degreeAt(idx int) Degree {
	idx %= 7
	if idx < 0 {
		idx += 7
	}
	return Degree(idx + 1)
}

// Add composes two degrees as steps: III.Add(III) == V.
func (d Degree) Add(o Degree) Degree { return degreeAt(d.index() + o.index()) }

// Sub is the inverse of Add: V.Sub(III) == III.
func (d Degree) Sub(o Degree) Degree { return degreeAt(d.index() - o.index()) }

// ParseDegree parses a roman numeral I..VII.
func ParseDegree(s string) (Degree, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	for _, d := range AllDegrees {
		if degreeNames[d] == s {
			return d, nil
		}
	}
	return NoDegree, fmt.Errorf("%w: degree %q", ErrUnknownName, s)
}

// DegreeSet is a set of degrees with ascending iteration order.
type DegreeSet uint8

// Triad is the default {I, III, V} composition.
const Triad = DegreeSet(1<<0 | 1<<2 | 1<<4)

func NewDegreeSet(ds ...Degree) DegreeSet {
	var s DegreeSet
	for _, d := range ds {
		s = s.With(d)
	}
	return s
}

func (s DegreeSet) Has(d Degree) bool {
	return d.Valid() && s&(1<<d.index()) != 0
}

func (s DegreeSet) With(d Degree) DegreeSet {
	if !d.Valid() {
		return s
	}
	return s | 1<<d.index()
}

func (s DegreeSet) Without(d Degree) DegreeSet {
	if !d.Valid() {
		return s
	}
	return s &^ (1 << d.index())
}

func (s DegreeSet) Union(o DegreeSet) DegreeSet { return s | o }
func (s DegreeSet) Intersect(o DegreeSet) DegreeSet { return s & o }
func (s DegreeSet) Minus(o DegreeSet) DegreeSet { return s &^ o }
func (s DegreeSet) Len() int { return bits.OnesCount8(uint8(s)) }
func (s DegreeSet) Empty() bool { return s == 0 }

// Degrees returns the members in ascending order.
func (s DegreeSet) Degrees() []Degree {
	out := make([]Degree, 0, s.Len())
	for _, d := range AllDegrees {
		if s.Has(d) {
			out = append(out, d)
		}
	}
	return out
}

// Shift adds d to every member.
func (s DegreeSet) Shift(d Degree) DegreeSet {
	var out DegreeSet
	for _, m := range s.Degrees() {
		out = out.With(m.Add(d))
	}
	return out
}

// Unshift subtracts d from every member.
func (s DegreeSet) Unshift(d Degree) DegreeSet {
	var out DegreeSet
	for _, m := range s.Degrees() {
		out = out.With(m.Sub(d))
	}
	return out
}

func (s DegreeSet) String() string {
	names := make([]string, 0, s.Len())
	for _, d := range s.Degrees() {
		names = append(names, d.String())
	}
	return "{" + strings.Join(names, ",") + "}"
}
