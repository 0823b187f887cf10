package resolve

import (
	"fmt"

	"github.com/Conceptual-Machines/harmony-api/internal/theory"
)

// TurningPoint marks an altered sixth or seventh degree that pulls toward a
// specific next note.
type TurningPoint uint8

const (
	DescendingVI TurningPoint = iota
	AscendingVI
	DescendingVII
	AscendingVII
)

func (tp TurningPoint) String() string {
	switch tp {
	case DescendingVI:
		return "Descending_VI"
	case AscendingVI:
		return "Ascending_VI"
	case DescendingVII:
		return "Descending_VII"
	case AscendingVII:
		return "Ascending_VII"
	}
	return fmt.Sprintf("TurningPoint(%d)", uint8(tp))
}

// TurningPointOf maps a degree and variant to its turning point.
func TurningPointOf(d theory.Degree, v theory.Variant) (TurningPoint, bool) {
	switch {
	case d == theory.VI && v == theory.Descending:
		return DescendingVI, true
	case d == theory.VI && v == theory.Ascending:
		return AscendingVI, true
	case d == theory.VII && v == theory.Descending:
		return DescendingVII, true
	case d == theory.VII && v == theory.Ascending:
		return AscendingVII, true
	}
	return 0, false
}

// Target is where a turning point resolves. Without a variant the target
// note is read from the same variant collection as the source.
type Target struct {
	Degree     theory.Degree
	Variant    theory.Variant
	HasVariant bool
}

func (tp TurningPoint) Next() Target {
	switch tp {
	case DescendingVII:
		return Target{Degree: theory.VI, Variant: theory.Descending, HasVariant: true}
	case AscendingVI:
		return Target{Degree: theory.VII, Variant: theory.Ascending, HasVariant: true}
	case DescendingVI:
		return Target{Degree: theory.I}
	default:
		return Target{Degree: theory.V}
	}
}
