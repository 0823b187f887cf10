package voicing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Conceptual-Machines/harmony-api/internal/relations"
	"github.com/Conceptual-Machines/harmony-api/internal/theory"
)

var cIonian = relations.KeyID{Tonic: theory.C, Main: theory.Ionian}

func chordAt(t *testing.T, d theory.Degree, comp ...theory.Degree) *theory.Chord {
	t.Helper()
	r, err := relations.Triple{
		Key:   cIonian,
		Mode:  relations.RelativeMode(theory.I),
		Chord: relations.ChordID{Degree: d, Composition: theory.NewDegreeSet(comp...)},
	}.Resolve()
	require.NoError(t, err)
	return r.Chord
}

func TestChordToMIDI(t *testing.T) {
	tests := []struct {
		name          string
		chord         *theory.Chord
		opts          Options
		expectedNotes []int
	}{
		{"C major", chordAt(t, theory.I), DefaultOptions(), []int{60, 64, 67}},
		{"A minor", chordAt(t, theory.VI), DefaultOptions(), []int{69, 72, 76}},
		{"G dominant seventh", chordAt(t, theory.V, theory.I, theory.III, theory.V, theory.VII), DefaultOptions(), []int{67, 71, 74, 77}},
		{"octave 3", chordAt(t, theory.I), Options{Octave: 3}, []int{48, 52, 55}},
		{"added ninth sits above the octave", chordAt(t, theory.I, theory.I, theory.III, theory.V, theory.II), DefaultOptions(), []int{60, 64, 67, 74}},
		{"medium doubles the root", chordAt(t, theory.I), Options{Octave: 4, Spread: SpreadMedium}, []int{48, 60, 64, 67}},
		{"wide opens the voicing", chordAt(t, theory.I), Options{Octave: 4, Spread: SpreadWide}, []int{48, 60, 64, 79}},
		{"top octave", chordAt(t, theory.I), Options{Octave: 9}, []int{120, 124, 127}},
		{"out of range notes are dropped", chordAt(t, theory.IV), Options{Octave: 9}, []int{125}},
		{"sus2 keeps the second close", chordAt(t, theory.II, theory.I, theory.II, theory.V), DefaultOptions(), []int{62, 64, 69}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			notes, err := ChordToMIDI(tt.chord, tt.opts)
			require.NoError(t, err)
			assert.Equal(t, tt.expectedNotes, notes)
		})
	}
}

func TestChordToMIDIOutOfRange(t *testing.T) {
	_, err := ChordToMIDI(chordAt(t, theory.I), Options{Octave: 12})
	assert.Error(t, err)
}

func TestNoteToMIDIFollowsSpelling(t *testing.T) {
	tests := []struct {
		name   string
		note   theory.BaseNote
		octave int
		want   int
	}{
		{"middle C", theory.MustBaseNote(theory.C, 0), 4, 60},
		{"B sharp sits above B", theory.MustBaseNote(theory.B, 1), 4, 72},
		{"C flat sits below C", theory.MustBaseNote(theory.C, -1), 4, 59},
		{"C double flat", theory.MustBaseNote(theory.C, -2), 4, 58},
		{"B double sharp", theory.MustBaseNote(theory.B, 2), 4, 73},
		{"A flat", theory.MustBaseNote(theory.A, -1), 3, 56},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, noteToMIDI(tt.note, tt.octave))
		})
	}
}

func TestOptionsValidate(t *testing.T) {
	tests := []struct {
		name    string
		opts    Options
		wantErr bool
	}{
		{"defaults", DefaultOptions(), false},
		{"lowest octave", Options{Octave: MinOctave}, false},
		{"highest octave", Options{Octave: MaxOctave, Spread: SpreadWide}, false},
		{"negative octave", Options{Octave: -1}, true},
		{"octave too high", Options{Octave: 20}, true},
		{"unknown spread", Options{Octave: 4, Spread: "huge"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.Validate()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestHighestOctaveKeepsRoot(t *testing.T) {
	for _, d := range theory.AllDegrees {
		notes, err := ChordToMIDI(chordAt(t, d), Options{Octave: MaxOctave})
		require.NoError(t, err, "degree %s", d)
		assert.NotEmpty(t, notes)
	}
}

func TestProgression(t *testing.T) {
	steps := []relations.Triple{
		{Key: cIonian, Mode: relations.RelativeMode(theory.I), Chord: relations.ChordID{Degree: theory.IV}},
		{Key: cIonian, Mode: relations.RelativeMode(theory.II), Chord: relations.ChordID{Degree: theory.IV}},
	}
	voiced, err := Progression(steps, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, [][]int{{65, 69, 72}, {67, 71, 74}}, voiced)

	bad := []relations.Triple{{Key: cIonian, Mode: relations.RelativeMode(theory.I), Chord: relations.ChordID{Degree: theory.I, Composition: theory.NewDegreeSet(theory.III, theory.V)}}}
	_, err = Progression(bad, DefaultOptions())
	assert.Error(t, err)
}

func TestParseSpread(t *testing.T) {
	tests := []struct {
		in      string
		want    Spread
		wantErr bool
	}{
		{"", SpreadTight, false},
		{"tight", SpreadTight, false},
		{"wide", SpreadWide, false},
		{"huge", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseSpread(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
