// Package scoring turns resolved steps into fixed-width feature vectors and
// provides the soft scorers used by the chord stage.
package scoring

import (
	"strconv"

	"github.com/Conceptual-Machines/harmony-api/internal/relations"
	"github.com/Conceptual-Machines/harmony-api/internal/resolve"
	"github.com/Conceptual-Machines/harmony-api/internal/theory"
)

// Vector widths. A part that depends on a resolver hit is zero when no hit
// exists, so every step vector has StepDim entries.
const (
	KeyDim   = 12 + 7 + 12
	ModeDim  = 12 + 7 + 3 + 7 + 7
	ChordDim = 12 + 3 + 7 + 7
	StepDim  = KeyDim + ModeDim + ChordDim
)

var featureNames = buildFeatureNames()

func buildFeatureNames() []string {
	names := make([]string, 0, StepDim)
	semis := func(prefix string) {
		for i := 0; i < 12; i++ {
			names = append(names, prefix+strconv.Itoa(i))
		}
	}
	modes := func(prefix string) {
		for _, mt := range theory.AllModeTypes {
			names = append(names, prefix+mt.String())
		}
	}
	degrees := func(prefix string) {
		for _, d := range theory.AllDegrees {
			names = append(names, prefix+d.String())
		}
	}

	semis("key.profile.")
	modes("key.mode.")
	semis("key.tonic.")

	semis("mode.profile.")
	modes("mode.type.")
	for _, a := range relations.AllAccess {
		names = append(names, "mode.access."+a.String())
	}
	modes("mode.role_type.")
	degrees("mode.role_degree.")

	semis("chord.semitone.")
	for _, v := range theory.AllVariants {
		names = append(names, "chord.variant."+v.String())
	}
	degrees("chord.degree.")
	degrees("chord.comp.")
	return names
}

// FeatureNames labels each position of a step vector.
func FeatureNames() []string { return append([]string(nil), featureNames...) }

func profile(dst []float64, ivs [7]theory.Interval) {
	for _, iv := range ivs {
		dst[iv.Semitones()] = 1
	}
}

// KeyVector encodes the main mode profile, main mode type and tonic.
func KeyVector(key *theory.Key) []float64 {
	v := make([]float64, KeyDim)
	profile(v[0:12], key.MainBase().Intervals())
	v[12+int(key.MainType())] = 1
	v[19+key.Tonic().Offset()] = 1
	return v
}

// ModeVector encodes the mode profile and type, plus how the mode sits in
// key when key is non-nil and the mode is found there.
func ModeVector(mode *theory.Mode, key *theory.Key) []float64 {
	v := make([]float64, ModeDim)
	if s, err := mode.Scale(theory.Base); err == nil {
		profile(v[0:12], s.Intervals())
	}
	v[12+int(mode.Type())] = 1
	if key == nil {
		return v
	}
	hit, ok := resolve.PickModeInKey(resolve.ModeInKey(mode, key))
	if !ok {
		return v
	}
	v[19+int(hit.ID.Access)] = 1
	if hit.ID.HasDegreeRole() {
		v[29+int(hit.ID.Degree)-1] = 1
	} else {
		v[22+int(hit.ID.Type)] = 1
	}
	return v
}

// ChordVector encodes the chord's semitones above its root, plus its
// placement in mode when mode is non-nil and the chord fits it.
func ChordVector(chord *theory.Chord, mode *theory.Mode) []float64 {
	v := make([]float64, ChordDim)
	v[0] = 1
	for _, iv := range chord.Intervals().Intervals() {
		v[iv.Semitones()] = 1
	}
	if mode == nil {
		return v
	}
	hit, ok := resolve.PickChordInMode(resolve.ChordInMode(chord, mode))
	if !ok {
		return v
	}
	v[12+int(hit.ID.Variant)] = 1
	v[15+int(hit.ID.Degree)-1] = 1
	for _, d := range hit.ID.EffectiveComposition().Degrees() {
		v[22+int(d)-1] = 1
	}
	return v
}

// StepVector concatenates key, mode and chord vectors for one step.
func StepVector(key *theory.Key, mode *theory.Mode, chord *theory.Chord) []float64 {
	v := make([]float64, 0, StepDim)
	v = append(v, KeyVector(key)...)
	v = append(v, ModeVector(mode, key)...)
	v = append(v, ChordVector(chord, mode)...)
	return v
}

// TripleVector resolves a triple and vectorizes it.
func TripleVector(t relations.Triple) ([]float64, error) {
	r, err := t.Resolve()
	if err != nil {
		return nil, err
	}
	return StepVector(r.Key, r.Mode, r.Chord), nil
}

// PadWindow keeps the last window vectors and zero-pads at the front so the
// result always has window rows.
func PadWindow(vectors [][]float64, window int) [][]float64 {
	if window <= 0 {
		return nil
	}
	dim := 0
	if len(vectors) > 0 {
		dim = len(vectors[0])
	}
	if len(vectors) > window {
		vectors = vectors[len(vectors)-window:]
	}
	out := make([][]float64, 0, window)
	for i := len(vectors); i < window; i++ {
		out = append(out, make([]float64, dim))
	}
	return append(out, vectors...)
}
