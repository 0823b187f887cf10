package theory

import "fmt"

// Mode is a tonic plus a mode type, with one scale per supported variant.
// Obtain modes through NewMode; they are shared and immutable.
type Mode struct {
	tonic    BaseNote
	modeType ModeType
	spec     ModeSpec
	scales   [3]Scale
}

type modeKey struct {
	tonic    BaseNote
	modeType ModeType
}

func NewMode(tonic BaseNote, mt ModeType) (*Mode, error) {
	if int(mt) >= len(modeSpecs) {
		return nil, fmt.Errorf("%w: mode type %d", ErrUnknownName, mt)
	}
	k := modeKey{tonic, mt}
	if m, ok := modeCache.Get(k); ok {
		return m, nil
	}
	m := &Mode{tonic: tonic, modeType: mt, spec: modeSpecs[mt]}
	for _, v := range m.spec.Variants() {
		profile, _ := m.spec.Profile(v)
		s, err := NewScale(tonic, profile[:])
		if err != nil {
			return nil, fmt.Errorf("mode %s %s: %w", tonic, mt, err)
		}
		m.scales[v] = s
	}
	modeCache.Add(k, m)
	return m, nil
}

func (m *Mode) Tonic() BaseNote { return m.tonic }
func (m *Mode) Type() ModeType { return m.modeType }
func (m *Mode) Spec() ModeSpec { return m.spec }
func (m *Mode) Variants() []Variant { return m.spec.Variants() }
func (m *Mode) CharacteristicDegree() Degree { return m.spec.Characteristic }

func (m *Mode) Supports(v Variant) bool {
	_, ok := m.spec.Profile(v)
	return ok
}

func (m *Mode) Equal(o *Mode) bool {
	if m == nil || o == nil {
		return m == o
	}
	return m.tonic == o.tonic && m.modeType == o.modeType
}

func (m *Mode) String() string { return m.tonic.String() + "-" + m.modeType.String() }

// Tonality is Major when the base third is a major third.
func (m *Mode) Tonality() Tonality {
	if m.spec.profiles[Base][2] == Maj3 {
		return Major
	}
	return Minor
}

// Scale returns the variant collection rooted on the mode tonic.
func (m *Mode) Scale(v Variant) (Scale, error) { return m.ScaleOf(I, v) }

// ScaleOf rotates the variant collection so that degree d becomes the tonic.
func (m *Mode) ScaleOf(d Degree, v Variant) (Scale, error) {
	if !m.Supports(v) {
		return Scale{}, fmt.Errorf("%w: %s %s", ErrVariantUnsupported, m.modeType, v)
	}
	if !d.Valid() {
		return Scale{}, fmt.Errorf("%w: degree %d", ErrUnknownName, d)
	}
	parent := m.scales[v]
	if d == I {
		return parent, nil
	}
	tonic := parent.Note(d)
	intervals := make([]Interval, 7)
	for i, target := range AllDegrees {
		iv, ok := tonic.IntervalTo(parent.Note(d.Add(target)))
		if !ok {
			return Scale{}, fmt.Errorf("%w: %s degree %s of %s", ErrNoInterval, m, target, tonic)
		}
		intervals[i] = iv
	}
	if intervals[0] != Perf1 {
		return Scale{}, ErrScaleNotUnison
	}
	return NewScale(tonic, intervals)
}

// Chord builds the chord on degree d of variant v. An empty composition
// means the default triad.
func (m *Mode) Chord(d Degree, v Variant, comp DegreeSet) (*Chord, error) {
	s, err := m.ScaleOf(d, v)
	if err != nil {
		return nil, err
	}
	if comp.Empty() {
		comp = Triad
	}
	return NewChord(s, comp)
}
