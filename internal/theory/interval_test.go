package theory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntervalAdd(t *testing.T) {
	tests := []struct {
		name    string
		a, b    Interval
		want    Interval
		wantErr bool
	}{
		{"major plus minor third", Maj3, Min3, Perf5, false},
		{"two major thirds", Maj3, Maj3, Aug5, false},
		{"fifth plus fourth", Perf5, Perf4, Perf1, false},
		{"major seventh plus minor second", Maj7, Min2, Perf1, false},
		{"two augmented fourths", Aug4, Aug4, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.a.Add(tt.b)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrNoInterval)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestIntervalSub(t *testing.T) {
	got, err := Perf5.Sub(Maj3)
	require.NoError(t, err)
	assert.Equal(t, Min3, got)

	got, err = Perf1.Sub(Min2)
	require.NoError(t, err)
	assert.Equal(t, Maj7, got)
}

func TestLookupInterval(t *testing.T) {
	iv, ok := LookupInterval(IV, 6)
	assert.True(t, ok)
	assert.Equal(t, Aug4, iv)

	iv, ok = LookupInterval(I, 11)
	assert.True(t, ok)
	assert.Equal(t, Dim1, iv)

	_, ok = LookupInterval(III, 7)
	assert.False(t, ok)
}

func TestIntervalSetOrder(t *testing.T) {
	s := NewIntervalSet(Maj6, Maj2, Dim1, Perf1)
	assert.Equal(t, []Interval{Perf1, Dim1, Maj2, Maj6}, s.Intervals())
	assert.Equal(t, "{P1,d1,M2,M6}", s.String())
}

func TestParseInterval(t *testing.T) {
	iv, err := ParseInterval("m7")
	require.NoError(t, err)
	assert.Equal(t, Min7, iv)

	_, err = ParseInterval("x9")
	assert.ErrorIs(t, err, ErrUnknownName)
}
