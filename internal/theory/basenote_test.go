package theory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBaseNoteRoundTrip(t *testing.T) {
	for _, letter := range AllNoteNames {
		for shift := -2; shift <= 2; shift++ {
			n, err := NewBaseNote(letter, shift)
			require.NoError(t, err)
			back, err := FromNameAndOffset(letter, n.Offset())
			require.NoError(t, err)
			assert.Equal(t, n, back, "round trip of %s", n)
		}
	}
}

func TestNewBaseNoteShiftRange(t *testing.T) {
	_, err := NewBaseNote(C, 3)
	assert.ErrorIs(t, err, ErrShiftOutOfRange)
	_, err = NewBaseNote(C, -3)
	assert.ErrorIs(t, err, ErrShiftOutOfRange)
}

func TestFromNameAndOffset(t *testing.T) {
	tests := []struct {
		name    string
		letter  NoteName
		offset  int
		want    string
		wantErr bool
	}{
		{"natural", D, 2, "D", false},
		{"sharp across octave", B, 0, "B#", false},
		{"flat across octave", C, 11, "Cb", false},
		{"double flat", E, 2, "Ebb", false},
		{"negative offset", D, -10, "D", false},
		{"too far", C, 3, "", true},
		{"tritone away", C, 6, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, err := FromNameAndOffset(tt.letter, tt.offset)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrShiftOutOfRange)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, n.String())
		})
	}
}

func TestBaseNoteIntervals(t *testing.T) {
	tests := []struct {
		name string
		from string
		iv   Interval
		to   string
	}{
		{"C up a major third", "C", Maj3, "E"},
		{"F up an augmented fourth", "F", Aug4, "B"},
		{"Bb up a major third", "Bb", Maj3, "D"},
		{"G up a minor second", "G", Min2, "Ab"},
		{"E up a minor seventh", "E", Min7, "D"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			from, err := ParseBaseNote(tt.from)
			require.NoError(t, err)
			to, err := from.Add(tt.iv)
			require.NoError(t, err)
			assert.Equal(t, tt.to, to.String())

			back, err := to.Sub(tt.iv)
			require.NoError(t, err)
			assert.Equal(t, from, back)

			iv, ok := from.IntervalTo(to)
			require.True(t, ok)
			assert.Equal(t, tt.iv, iv)
		})
	}
}

func TestParseBaseNote(t *testing.T) {
	n, err := ParseBaseNote("F#")
	require.NoError(t, err)
	assert.Equal(t, BaseNote{Letter: F, Shift: 1}, n)
	assert.Equal(t, 6, n.Offset())

	_, err = ParseBaseNote("H")
	assert.ErrorIs(t, err, ErrUnknownName)
	_, err = ParseBaseNote("C###")
	assert.ErrorIs(t, err, ErrShiftOutOfRange)
	_, err = ParseBaseNote("")
	assert.ErrorIs(t, err, ErrUnknownName)
}
