package resolve

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Conceptual-Machines/harmony-api/internal/relations"
	"github.com/Conceptual-Machines/harmony-api/internal/theory"
)

func mustKey(t *testing.T, tonic theory.NoteName, main theory.ModeType) *theory.Key {
	t.Helper()
	k, err := relations.KeyID{Tonic: tonic, Main: main}.Resolve()
	require.NoError(t, err)
	return k
}

func mustMode(t *testing.T, tonic string, mt theory.ModeType) *theory.Mode {
	t.Helper()
	n, err := theory.ParseBaseNote(tonic)
	require.NoError(t, err)
	m, err := theory.NewMode(n, mt)
	require.NoError(t, err)
	return m
}

func mustChord(t *testing.T, m *theory.Mode, d theory.Degree, v theory.Variant) *theory.Chord {
	t.Helper()
	c, err := m.Chord(d, v, theory.Triad)
	require.NoError(t, err)
	return c
}

func TestChordInMode(t *testing.T) {
	aAeolian := mustMode(t, "A", theory.Aeolian)
	aMelodic := mustChord(t, aAeolian, theory.V, theory.Ascending)

	tests := []struct {
		name  string
		chord *theory.Chord
		mode  *theory.Mode
		want  []relations.ChordID
	}{
		{
			name:  "tonic triad in major",
			chord: mustChord(t, mustMode(t, "C", theory.Ionian), theory.I, theory.Base),
			mode:  mustMode(t, "C", theory.Ionian),
			want:  []relations.ChordID{{Degree: theory.I, Variant: theory.Base, Composition: theory.Triad}},
		},
		{
			name:  "subtonic major in natural minor only",
			chord: mustChord(t, mustMode(t, "G", theory.Ionian), theory.I, theory.Base),
			mode:  aAeolian,
			want:  []relations.ChordID{{Degree: theory.VII, Variant: theory.Base, Composition: theory.Triad}},
		},
		{
			name:  "major dominant in ascending minor",
			chord: aMelodic,
			mode:  aAeolian,
			want:  []relations.ChordID{{Degree: theory.V, Variant: theory.Ascending, Composition: theory.Triad}},
		},
		{
			name:  "foreign chord",
			chord: mustChord(t, mustMode(t, "F#", theory.Ionian), theory.I, theory.Base),
			mode:  mustMode(t, "C", theory.Ionian),
			want:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hits := ChordInMode(tt.chord, tt.mode)
			var got []relations.ChordID
			for _, h := range hits {
				got = append(got, h.ID)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestChordInModeFacts(t *testing.T) {
	aAeolian := mustMode(t, "A", theory.Aeolian)
	hits := ChordInMode(mustChord(t, aAeolian, theory.V, theory.Ascending), aAeolian)
	require.Len(t, hits, 1)

	h := hits[0]
	assert.Equal(t, theory.NewDegreeSet(theory.V, theory.VII, theory.II), h.DegreesInMode())
	assert.Equal(t, []TurningPoint{AscendingVII}, h.TurningPoints())
	assert.Equal(t, Target{Degree: theory.V}, h.TurningPoints()[0].Next())
	assert.False(t, h.HasCharacteristicDegree())

	iv := ChordInMode(mustChord(t, aAeolian, theory.IV, theory.Base), aAeolian)
	require.NotEmpty(t, iv)
	assert.True(t, iv[0].HasCharacteristicDegree())
	assert.Empty(t, iv[0].TurningPoints())
}

func TestModeInKey(t *testing.T) {
	key := mustKey(t, theory.C, theory.Ionian)

	tests := []struct {
		name string
		mode *theory.Mode
		want []relations.ModeID
	}{
		{"relative minor", mustMode(t, "A", theory.Aeolian), []relations.ModeID{relations.RelativeMode(theory.VI)}},
		{"parallel dorian", mustMode(t, "C", theory.Dorian), []relations.ModeID{relations.SubstituteMode(theory.Dorian)}},
		{"tritone substitute", mustMode(t, "Ab", theory.Mixolydian), []relations.ModeID{relations.SubVMode(theory.V)}},
		{
			name: "main mode twice",
			mode: mustMode(t, "C", theory.Ionian),
			want: []relations.ModeID{relations.SubstituteMode(theory.Ionian), relations.RelativeMode(theory.I)},
		},
		{"unrelated", mustMode(t, "F#", theory.Locrian), nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []relations.ModeID
			for _, h := range ModeInKey(tt.mode, key) {
				got = append(got, h.ID)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestModeInKeyFacts(t *testing.T) {
	key := mustKey(t, theory.C, theory.Ionian)

	aHits := ModeInKey(mustMode(t, "A", theory.Aeolian), key)
	require.Len(t, aHits, 1)
	assert.Equal(t, 9, aHits[0].TonicInterval())
	assert.True(t, aHits[0].AlteredDegrees().Empty())
	skeleton, err := aHits[0].SkeletonIntervals()
	require.NoError(t, err)
	assert.Equal(t, theory.NewIntervalSet(theory.Perf1, theory.Maj3, theory.Maj6), skeleton)

	dHits := ModeInKey(mustMode(t, "C", theory.Dorian), key)
	require.Len(t, dHits, 1)
	assert.Equal(t, theory.NewDegreeSet(theory.III, theory.VII), dHits[0].AlteredDegrees())

	picked, ok := PickModeInKey(ModeInKey(mustMode(t, "C", theory.Ionian), key))
	require.True(t, ok)
	assert.Equal(t, relations.SubstituteMode(theory.Ionian), picked.ID)
}

func TestRelativeSixthChordInKey(t *testing.T) {
	key := mustKey(t, theory.C, theory.Ionian)
	chord := mustChord(t, key.Relative(theory.VI), theory.I, theory.Base)

	var found *ChordInKeyHit
	for _, h := range ChordInKey(chord, key) {
		if h.ModeID == relations.RelativeMode(theory.VI) {
			h := h
			found = &h
			break
		}
	}
	require.NotNil(t, found, "expected a Relative VI hit")
	assert.Equal(t, theory.I, found.ChordID.Degree)
	assert.Equal(t, theory.VI, found.AbsoluteRoot())
	assert.Equal(t, theory.NewDegreeSet(theory.VI, theory.I, theory.III), found.DegreesInKey())
	assert.Equal(t, theory.NewIntervalSet(theory.Maj6, theory.Perf1, theory.Maj3), found.IntervalsInMainBase())
}

func TestSemitoneTendencies(t *testing.T) {
	key := mustKey(t, theory.A, theory.Aeolian)
	chord := mustChord(t, key.Main(), theory.V, theory.Ascending)

	hits := ChordInKey(chord, key)
	require.NotEmpty(t, hits)
	assert.Equal(t, map[theory.Degree][]int{theory.III: {9, 7}}, hits[0].SemitoneTendencies())
}

func TestResolveSwapsArguments(t *testing.T) {
	key := mustKey(t, theory.C, theory.Ionian)
	chord := mustChord(t, key.Main(), theory.II, theory.Base)

	forward := Resolve(chord, key)
	backward := Resolve(key, chord)
	require.NotEmpty(t, forward)
	assert.Equal(t, forward, backward)
	for _, h := range forward {
		assert.Equal(t, KindChordInKey, h.Kind())
	}

	assert.Empty(t, Resolve(key, key))
	assert.Empty(t, Resolve("C", 7))
	assert.Len(t, Resolve(key.Relative(theory.VI), key), 1)
}

func TestPickChordInMode(t *testing.T) {
	dDorian := mustMode(t, "D", theory.Dorian)
	hits := ChordInMode(mustChord(t, dDorian, theory.I, theory.Base), dDorian)
	require.Len(t, hits, 3)

	picked, ok := PickChordInMode(hits)
	require.True(t, ok)
	assert.Equal(t, theory.Base, picked.ID.Variant)

	_, ok = PickChordInMode(nil)
	assert.False(t, ok)
}
