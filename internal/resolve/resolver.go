// Package resolve finds where chords sit in modes, modes in keys and chords
// in keys.
package resolve

import (
	"github.com/Conceptual-Machines/harmony-api/internal/relations"
	"github.com/Conceptual-Machines/harmony-api/internal/theory"
)

// Resolve accepts the pairs (chord, mode), (mode, key) and (chord, key) in
// either order. Unsupported pairs produce no hits.
func Resolve(a, b any) []Hit {
	if !supported(a, b) && supported(b, a) {
		a, b = b, a
	}
	var hits []Hit
	switch x := a.(type) {
	case *theory.Chord:
		switch y := b.(type) {
		case *theory.Mode:
			for _, h := range ChordInMode(x, y) {
				hits = append(hits, h)
			}
		case *theory.Key:
			for _, h := range ChordInKey(x, y) {
				hits = append(hits, h)
			}
		}
	case *theory.Mode:
		if y, ok := b.(*theory.Key); ok {
			for _, h := range ModeInKey(x, y) {
				hits = append(hits, h)
			}
		}
	}
	return hits
}

func supported(a, b any) bool {
	switch a.(type) {
	case *theory.Chord:
		switch b.(type) {
		case *theory.Mode, *theory.Key:
			return true
		}
	case *theory.Mode:
		_, ok := b.(*theory.Key)
		return ok
	}
	return false
}

// ChordInMode lists every variant of mode whose collection holds the chord
// root and all chord notes.
func ChordInMode(chord *theory.Chord, mode *theory.Mode) []ChordInModeHit {
	var hits []ChordInModeHit
	notes := chord.Notes()
	for _, v := range mode.Variants() {
		base, err := mode.Scale(v)
		if err != nil {
			continue
		}
		root, ok := base.DegreeOf(chord.Root())
		if !ok {
			continue
		}
		if !containsAll(base, notes) {
			continue
		}
		hits = append(hits, ChordInModeHit{
			Mode:  mode,
			Chord: chord,
			ID: relations.ChordID{
				Degree:      root,
				Variant:     v,
				Composition: chord.Composition(),
			},
		})
	}
	return hits
}

func containsAll(s theory.Scale, notes []theory.BaseNote) bool {
	for _, n := range notes {
		if !s.Contains(n) {
			return false
		}
	}
	return true
}

// ModeInKey matches the mode against substitute, relative and SubV modes.
func ModeInKey(mode *theory.Mode, key *theory.Key) []ModeInKeyHit {
	var hits []ModeInKeyHit
	rel, sub := key.Locate(mode)
	if sub {
		hits = append(hits, ModeInKeyHit{Key: key, Mode: mode, ID: relations.SubstituteMode(mode.Type())})
	}
	if rel != theory.NoDegree {
		hits = append(hits, ModeInKeyHit{Key: key, Mode: mode, ID: relations.RelativeMode(rel)})
	}
	for _, d := range theory.AllDegrees {
		subv, err := key.SubV(d)
		if err != nil {
			continue
		}
		if subv.Equal(mode) {
			hits = append(hits, ModeInKeyHit{Key: key, Mode: mode, ID: relations.SubVMode(d)})
		}
	}
	return hits
}

// ChordInKey runs ChordInMode over every substitute, relative and SubV mode.
func ChordInKey(chord *theory.Chord, key *theory.Key) []ChordInKeyHit {
	var hits []ChordInKeyHit
	extend := func(mode *theory.Mode, id relations.ModeID) {
		for _, h := range ChordInMode(chord, mode) {
			hits = append(hits, ChordInKeyHit{
				Key:     key,
				Mode:    mode,
				Chord:   chord,
				ModeID:  id,
				ChordID: h.ID,
			})
		}
	}
	for _, mt := range theory.AllModeTypes {
		extend(key.Substitute(mt), relations.SubstituteMode(mt))
	}
	for _, d := range theory.AllDegrees {
		extend(key.Relative(d), relations.RelativeMode(d))
	}
	for _, d := range theory.AllDegrees {
		subv, err := key.SubV(d)
		if err != nil {
			continue
		}
		extend(subv, relations.SubVMode(d))
	}
	return hits
}
