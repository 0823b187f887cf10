package theory

import (
	"fmt"
	"strings"
)

// ModeType is one of the seven diatonic modes.
type ModeType uint8

const (
	Ionian ModeType = iota
	Dorian
	Phrygian
	Lydian
	Mixolydian
	Aeolian
	Locrian
)

// AllModeTypes lists the modes in rotation order.
var AllModeTypes = [7]ModeType{Ionian, Dorian, Phrygian, Lydian, Mixolydian, Aeolian, Locrian}

var modeTypeNames = [7]string{"Ionian", "Dorian", "Phrygian", "Lydian", "Mixolydian", "Aeolian", "Locrian"}

func (m ModeType) String() string {
	if int(m) >= len(modeTypeNames) {
		return fmt.Sprintf("ModeType(%d)", uint8(m))
	}
	return modeTypeNames[m]
}

func ParseModeType(s string) (ModeType, error) {
	s = strings.TrimSpace(s)
	for i, n := range modeTypeNames {
		if strings.EqualFold(n, s) {
			return ModeType(i), nil
		}
	}
	return 0, fmt.Errorf("%w: mode type %q", ErrUnknownName, s)
}

// DegreeMode is the mode built on degree d of parent: DegreeMode(Ionian, VI) == Aeolian.
func DegreeMode(parent ModeType, d Degree) ModeType {
	return AllModeTypes[(int(parent)+d.index())%7]
}

// Variant selects a collection form of a mode.
type Variant uint8

const (
	Base Variant = iota
	Ascending
	Descending
)

// AllVariants lists the forms in preference order.
var AllVariants = [3]Variant{Base, Ascending, Descending}

var variantNames = [3]string{"Base", "Ascending", "Descending"}

func (v Variant) String() string {
	if int(v) >= len(variantNames) {
		return fmt.Sprintf("Variant(%d)", uint8(v))
	}
	return variantNames[v]
}

func ParseVariant(s string) (Variant, error) {
	s = strings.TrimSpace(s)
	for i, n := range variantNames {
		if strings.EqualFold(n, s) {
			return Variant(i), nil
		}
	}
	return 0, fmt.Errorf("%w: variant %q", ErrUnknownName, s)
}

// Tonality is the major/minor color of a mode's third.
type Tonality uint8

const (
	Major Tonality = iota
	Minor
)

func (t Tonality) String() string {
	if t == Major {
		return "maj"
	}
	return "min"
}

type change struct {
	degree   Degree
	interval Interval
}

// ModeSpec holds a mode's interval profiles and characteristic degree.
type ModeSpec struct {
	Type           ModeType
	Characteristic Degree
	profiles       [3][7]Interval
	supported      [3]bool
}

// Profile returns the interval profile for a variant.
func (s ModeSpec) Profile(v Variant) ([7]Interval, bool) {
	if int(v) >= len(s.supported) || !s.supported[v] {
		return [7]Interval{}, false
	}
	return s.profiles[v], true
}

// Variants returns the supported variants in preference order.
func (s ModeSpec) Variants() []Variant {
	out := make([]Variant, 0, 3)
	for _, v := range AllVariants {
		if s.supported[v] {
			out = append(out, v)
		}
	}
	return out
}

func makeSpec(mt ModeType, base [7]Interval, char Degree, asc, desc []change) ModeSpec {
	s := ModeSpec{Type: mt, Characteristic: char}
	s.profiles[Base] = base
	s.supported[Base] = true
	patch := func(v Variant, changes []change) {
		if len(changes) == 0 {
			return
		}
		p := base
		for _, c := range changes {
			p[c.degree.index()] = c.interval
		}
		s.profiles[v] = p
		s.supported[v] = true
	}
	patch(Ascending, asc)
	patch(Descending, desc)
	return s
}

var modeSpecs = [7]ModeSpec{
	Ionian: makeSpec(Ionian,
		[7]Interval{Perf1, Maj2, Maj3, Perf4, Perf5, Maj6, Maj7}, VII, nil, nil),
	Dorian: makeSpec(Dorian,
		[7]Interval{Perf1, Maj2, Min3, Perf4, Perf5, Maj6, Min7}, VI,
		[]change{{VII, Maj7}},
		[]change{{VI, Min6}}),
	Phrygian: makeSpec(Phrygian,
		[7]Interval{Perf1, Min2, Min3, Perf4, Perf5, Min6, Min7}, II,
		[]change{{II, Maj2}, {VI, Maj6}, {VII, Maj7}}, nil),
	Lydian: makeSpec(Lydian,
		[7]Interval{Perf1, Maj2, Maj3, Aug4, Perf5, Maj6, Maj7}, IV, nil, nil),
	Mixolydian: makeSpec(Mixolydian,
		[7]Interval{Perf1, Maj2, Maj3, Perf4, Perf5, Maj6, Min7}, VII,
		[]change{{VII, Maj7}}, nil),
	Aeolian: makeSpec(Aeolian,
		[7]Interval{Perf1, Maj2, Min3, Perf4, Perf5, Min6, Min7}, IV,
		[]change{{VI, Maj6}, {VII, Maj7}}, nil),
	Locrian: makeSpec(Locrian,
		[7]Interval{Perf1, Min2, Min3, Perf4, Dim5, Min6, Min7}, V, nil, nil),
}

// SpecOf returns the spec for a mode type.
func SpecOf(mt ModeType) ModeSpec { return modeSpecs[mt] }
