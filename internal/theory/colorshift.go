package theory

import (
	"fmt"
	"strings"
	"sync"
)

// ColorShift records how one scale turns into another: source profile,
// tonic movement in semitones and destination profile.
type ColorShift struct {
	Src  [7]Interval
	Diff int
	Dst  [7]Interval
}

func (cs ColorShift) String() string {
	return fmt.Sprintf("ColorShift(src=%s, diff=%d, dst=%s)", profileString(cs.Src), cs.Diff, profileString(cs.Dst))
}

func profileString(p [7]Interval) string {
	names := make([]string, len(p))
	for i, iv := range p {
		names[i] = iv.String()
	}
	return "[" + strings.Join(names, " ") + "]"
}

var (
	colorShiftsOnce sync.Once
	colorShifts     map[ColorShift]struct{}
)

// ColorShiftAllowed reports whether cs is one of the shifts found between
// modes reachable from a single key.
func ColorShiftAllowed(cs ColorShift) bool {
	colorShiftsOnce.Do(buildColorShifts)
	_, ok := colorShifts[cs]
	return ok
}

// AllowedColorShiftCount is the size of the allowed shift library.
func AllowedColorShiftCount() int {
	colorShiftsOnce.Do(buildColorShifts)
	return len(colorShifts)
}

func buildColorShifts() {
	key, err := NewKey(BaseNote{Letter: C}, Ionian)
	if err != nil {
		panic(fmt.Sprintf("color shift library: %v", err))
	}
	modes := make([]*Mode, 0, 14)
	for _, d := range AllDegrees {
		modes = append(modes, key.Relative(d))
	}
	for _, mt := range AllModeTypes {
		modes = append(modes, key.Substitute(mt))
	}
	shifts := make(map[ColorShift]struct{})
	for i, src := range modes {
		for j, dst := range modes {
			if i == j {
				continue
			}
			shifts[baseShift(src, dst)] = struct{}{}
		}
	}
	for _, d := range AllDegrees {
		subv, err := key.SubV(d)
		if err != nil {
			continue
		}
		rel := key.Relative(d)
		shifts[baseShift(subv, rel)] = struct{}{}
		shifts[baseShift(rel, subv)] = struct{}{}
	}
	colorShifts = shifts
}

// BaseColorShift is the shift between the base collections of two modes.
func BaseColorShift(src, dst *Mode) ColorShift { return baseShift(src, dst) }

func baseShift(src, dst *Mode) ColorShift {
	return src.scales[Base].ColorShiftTo(dst.scales[Base])
}
