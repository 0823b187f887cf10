package theory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDegreeArithmetic(t *testing.T) {
	tests := []struct {
		name    string
		a, b    Degree
		wantAdd Degree
		wantSub Degree
	}{
		{"I and I", I, I, I, I},
		{"III and III", III, III, V, I},
		{"V and IV", V, IV, I, II},
		{"VII and II", VII, II, I, VI},
		{"II and VII", II, VII, I, III},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantAdd, tt.a.Add(tt.b))
			assert.Equal(t, tt.wantSub, tt.a.Sub(tt.b))
		})
	}
}

func TestDegreeGroupLaws(t *testing.T) {
	for _, a := range AllDegrees {
		for _, b := range AllDegrees {
			assert.Equal(t, a, a.Sub(b).Add(b), "%s - %s + %s", a, b, b)
			assert.Equal(t, a, a.Add(b).Sub(b), "%s + %s - %s", a, b, b)
		}
	}
}

func TestParseDegree(t *testing.T) {
	d, err := ParseDegree("vi")
	require.NoError(t, err)
	assert.Equal(t, VI, d)

	_, err = ParseDegree("VIII")
	assert.ErrorIs(t, err, ErrUnknownName)
}

func TestDegreeSet(t *testing.T) {
	s := NewDegreeSet(V, I, III)
	assert.Equal(t, Triad, s)
	assert.Equal(t, []Degree{I, III, V}, s.Degrees())
	assert.Equal(t, 3, s.Len())
	assert.True(t, s.Has(III))
	assert.False(t, s.Has(II))
	assert.Equal(t, "{I,III,V}", s.String())
	assert.Equal(t, NewDegreeSet(V, VII, II), s.Shift(V))
	assert.Equal(t, s, s.Shift(V).Unshift(V))
	assert.Equal(t, NewDegreeSet(I, V), s.Without(III))
}

func TestNoteNameSteps(t *testing.T) {
	tests := []struct {
		name string
		n    NoteName
		d    Degree
		want NoteName
	}{
		{"C up a third", C, III, E},
		{"A up a third", A, III, C},
		{"B up a second", B, II, C},
		{"G up a fifth", G, V, D},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.n.Add(tt.d)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.n, got.Sub(tt.d))
			assert.Equal(t, tt.d, got.DegreeFrom(tt.n))
		})
	}
}
