// Package relations holds the compact identifiers used to name keys, modes
// within a key, and chords within a mode.
package relations

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Conceptual-Machines/harmony-api/internal/theory"
)

var ErrInvalidID = errors.New("invalid relation id")

// Access is how a mode is reached from a key.
type Access uint8

const (
	Relative Access = iota
	Substitute
	SubV
)

// AllAccess lists access kinds in enumeration order.
var AllAccess = [3]Access{Relative, Substitute, SubV}

var accessNames = [3]string{"Relative", "Substitute", "SubV"}

func (a Access) String() string {
	if int(a) >= len(accessNames) {
		return fmt.Sprintf("Access(%d)", uint8(a))
	}
	return accessNames[a]
}

func ParseAccess(s string) (Access, error) {
	s = strings.TrimSpace(s)
	for i, n := range accessNames {
		if strings.EqualFold(n, s) {
			return Access(i), nil
		}
	}
	return 0, fmt.Errorf("%w: access %q", ErrInvalidID, s)
}

// KeyID names a key by tonic letter and main mode type.
type KeyID struct {
	Tonic theory.NoteName
	Main  theory.ModeType
}

func (k KeyID) Resolve() (*theory.Key, error) {
	return theory.NewKey(theory.BaseNote{Letter: k.Tonic}, k.Main)
}

func (k KeyID) String() string { return k.Tonic.String() + "-" + k.Main.String() }

// ModeID names a mode relative to a key. Relative and SubV modes are
// addressed by Degree, Substitute modes by Type.
type ModeID struct {
	Access Access
	Degree theory.Degree
	Type   theory.ModeType
}

func RelativeMode(d theory.Degree) ModeID { return ModeID{Access: Relative, Degree: d} }
func SubstituteMode(mt theory.ModeType) ModeID { return ModeID{Access: Substitute, Type: mt} }
func SubVMode(d theory.Degree) ModeID { return ModeID{Access: SubV, Degree: d} }

// HasDegreeRole reports whether the role is a degree rather than a mode type.
func (m ModeID) HasDegreeRole() bool { return m.Access != Substitute }

// RoleDegree is the degree role, or I for substitute modes.
func (m ModeID) RoleDegree() theory.Degree {
	if m.HasDegreeRole() {
		return m.Degree
	}
	return theory.I
}

func (m ModeID) Role() string {
	if m.HasDegreeRole() {
		return m.Degree.String()
	}
	return m.Type.String()
}

func (m ModeID) Validate() error {
	switch m.Access {
	case Relative, SubV:
		if !m.Degree.Valid() {
			return fmt.Errorf("%w: %s mode needs a degree role", ErrInvalidID, m.Access)
		}
	case Substitute:
		if int(m.Type) >= len(theory.AllModeTypes) {
			return fmt.Errorf("%w: substitute mode needs a mode type role", ErrInvalidID)
		}
	default:
		return fmt.Errorf("%w: access %d", ErrInvalidID, m.Access)
	}
	return nil
}

func (m ModeID) Resolve(key *theory.Key) (*theory.Mode, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	switch m.Access {
	case Relative:
		return key.Relative(m.Degree), nil
	case Substitute:
		return key.Substitute(m.Type), nil
	default:
		return key.SubV(m.Degree)
	}
}

func (m ModeID) String() string { return m.Access.String() + "_" + m.Role() }

// ChordID names a chord within a mode. An empty Composition means the
// default triad.
type ChordID struct {
	Degree      theory.Degree
	Variant     theory.Variant
	Composition theory.DegreeSet
}

// EffectiveComposition substitutes the default triad for an empty composition.
func (c ChordID) EffectiveComposition() theory.DegreeSet {
	if c.Composition.Empty() {
		return theory.Triad
	}
	return c.Composition
}

func (c ChordID) Resolve(mode *theory.Mode) (*theory.Chord, error) {
	if !c.Degree.Valid() {
		return nil, fmt.Errorf("%w: chord degree %d", ErrInvalidID, c.Degree)
	}
	if !c.Composition.Empty() && !c.Composition.Has(theory.I) {
		return nil, fmt.Errorf("%w: composition %s lacks I", ErrInvalidID, c.Composition)
	}
	return mode.Chord(c.Degree, c.Variant, c.Composition)
}

func (c ChordID) String() string {
	return fmt.Sprintf("%s_%s%s", c.Degree, c.Variant, c.EffectiveComposition())
}

// Triple is one generated step.
type Triple struct {
	Key   KeyID
	Mode  ModeID
	Chord ChordID
}

func (t Triple) String() string {
	return t.Key.String() + " / " + t.Mode.String() + " / " + t.Chord.String()
}

// ResolvedTriple carries the domain objects behind a Triple.
type ResolvedTriple struct {
	Key   *theory.Key
	Mode  *theory.Mode
	Chord *theory.Chord
}

func (t Triple) Resolve() (ResolvedTriple, error) {
	key, err := t.Key.Resolve()
	if err != nil {
		return ResolvedTriple{}, err
	}
	mode, err := t.Mode.Resolve(key)
	if err != nil {
		return ResolvedTriple{}, err
	}
	chord, err := t.Chord.Resolve(mode)
	if err != nil {
		return ResolvedTriple{}, err
	}
	return ResolvedTriple{Key: key, Mode: mode, Chord: chord}, nil
}

// ToKeyRoot maps a chord degree inside a mode to the root degree in the key
// coordinate system.
func ToKeyRoot(m ModeID, chordDegree theory.Degree) theory.Degree {
	if m.HasDegreeRole() {
		return chordDegree.Add(m.Degree)
	}
	return chordDegree
}

// ToModeDegree is the inverse of ToKeyRoot.
func ToModeDegree(m ModeID, keyRoot theory.Degree) theory.Degree {
	if m.HasDegreeRole() {
		return keyRoot.Sub(m.Degree)
	}
	return keyRoot
}

// AbsoluteRoot is the key-coordinate root of a triple.
func (t Triple) AbsoluteRoot() theory.Degree { return ToKeyRoot(t.Mode, t.Chord.Degree) }

// ParseRole builds a ModeID from an access and a role name: a roman numeral
// for Relative and SubV, a mode type name for Substitute.
func ParseRole(access Access, role string) (ModeID, error) {
	if access == Substitute {
		mt, err := theory.ParseModeType(role)
		if err != nil {
			return ModeID{}, err
		}
		return SubstituteMode(mt), nil
	}
	d, err := theory.ParseDegree(role)
	if err != nil {
		return ModeID{}, err
	}
	return ModeID{Access: access, Degree: d}, nil
}

// ParseComposition parses roman numerals such as ["I", "III", "V", "VII"].
// An empty list yields the empty (default triad) composition.
func ParseComposition(names []string) (theory.DegreeSet, error) {
	var s theory.DegreeSet
	for _, n := range names {
		d, err := theory.ParseDegree(n)
		if err != nil {
			return 0, err
		}
		s = s.With(d)
	}
	if !s.Empty() && !s.Has(theory.I) {
		return 0, fmt.Errorf("%w: composition must contain I", ErrInvalidID)
	}
	return s, nil
}
