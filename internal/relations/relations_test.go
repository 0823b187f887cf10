package relations

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Conceptual-Machines/harmony-api/internal/theory"
)

func TestDegreeCoordinateMapping(t *testing.T) {
	modes := []ModeID{
		RelativeMode(theory.VI),
		RelativeMode(theory.I),
		SubVMode(theory.V),
		SubstituteMode(theory.Dorian),
	}
	for _, m := range modes {
		for _, d := range theory.AllDegrees {
			root := ToKeyRoot(m, d)
			assert.Equal(t, d, ToModeDegree(m, root), "%s degree %s", m, d)
		}
	}

	assert.Equal(t, theory.IV, ToKeyRoot(RelativeMode(theory.VI), theory.VI))
	assert.Equal(t, theory.VI, ToKeyRoot(SubstituteMode(theory.Aeolian), theory.VI))
}

func TestTripleResolve(t *testing.T) {
	tests := []struct {
		name    string
		triple  Triple
		want    string
		wantErr bool
	}{
		{
			name: "relative sixth tonic",
			triple: Triple{
				Key:   KeyID{Tonic: theory.C, Main: theory.Ionian},
				Mode:  RelativeMode(theory.VI),
				Chord: ChordID{Degree: theory.I, Variant: theory.Base},
			},
			want: "Amin",
		},
		{
			name: "substitute dorian seventh chord",
			triple: Triple{
				Key:   KeyID{Tonic: theory.C, Main: theory.Ionian},
				Mode:  SubstituteMode(theory.Dorian),
				Chord: ChordID{Degree: theory.IV, Variant: theory.Base, Composition: theory.NewDegreeSet(theory.I, theory.III, theory.V, theory.VII)},
			},
			want: "F7",
		},
		{
			name: "subV dominant",
			triple: Triple{
				Key:   KeyID{Tonic: theory.C, Main: theory.Ionian},
				Mode:  SubVMode(theory.V),
				Chord: ChordID{Degree: theory.I, Variant: theory.Base},
			},
			want: "Abmaj",
		},
		{
			name: "unsupported variant",
			triple: Triple{
				Key:   KeyID{Tonic: theory.C, Main: theory.Ionian},
				Mode:  RelativeMode(theory.I),
				Chord: ChordID{Degree: theory.I, Variant: theory.Ascending},
			},
			wantErr: true,
		},
		{
			name: "missing degree role",
			triple: Triple{
				Key:   KeyID{Tonic: theory.C, Main: theory.Ionian},
				Mode:  ModeID{Access: Relative},
				Chord: ChordID{Degree: theory.I},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rt, err := tt.triple.Resolve()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, rt.Chord.Name())
		})
	}
}

func TestParseRole(t *testing.T) {
	m, err := ParseRole(Substitute, "lydian")
	require.NoError(t, err)
	assert.Equal(t, SubstituteMode(theory.Lydian), m)

	m, err = ParseRole(SubV, "V")
	require.NoError(t, err)
	assert.Equal(t, SubVMode(theory.V), m)
	assert.Equal(t, "SubV_V", m.String())

	_, err = ParseRole(Relative, "Dorian")
	assert.Error(t, err)
}

func TestParseComposition(t *testing.T) {
	s, err := ParseComposition([]string{"I", "III", "V", "VII"})
	require.NoError(t, err)
	assert.Equal(t, theory.NewDegreeSet(theory.I, theory.III, theory.V, theory.VII), s)

	s, err = ParseComposition(nil)
	require.NoError(t, err)
	assert.True(t, s.Empty())

	_, err = ParseComposition([]string{"III", "V"})
	assert.ErrorIs(t, err, ErrInvalidID)
}

func TestChordIDString(t *testing.T) {
	assert.Equal(t, "II_Base{I,III,V}", ChordID{Degree: theory.II}.String())
	assert.Equal(t, "Relative_VI", RelativeMode(theory.VI).String())
	assert.Equal(t, "C-Ionian", KeyID{Tonic: theory.C, Main: theory.Ionian}.String())
}
