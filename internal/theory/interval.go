package theory

import (
	"fmt"
	"math/bits"
	"sort"
	"strings"
)

// Interval is a spelled interval: a degree distance plus a semitone distance.
// The zero value is not a valid interval.
type Interval uint8

const (
	Dim1 Interval = iota + 1
	Perf1
	Aug1
	Min2
	Maj2
	Aug2
	Min3
	Maj3
	Dim4
	Perf4
	Aug4
	Dim5
	Perf5
	Aug5
	Dim6
	Min6
	Maj6
	Aug6
	Dim7
	Min7
	Maj7
)

type intervalInfo struct {
	name   string
	degree Degree
	semis  int
}

var intervalTable = [...]intervalInfo{
	Dim1:  {"d1", I, 11},
	Perf1: {"P1", I, 0},
	Aug1:  {"A1", I, 1},
	Min2:  {"m2", II, 1},
	Maj2:  {"M2", II, 2},
	Aug2:  {"A2", II, 3},
	Min3:  {"m3", III, 3},
	Maj3:  {"M3", III, 4},
	Dim4:  {"d4", IV, 4},
	Perf4: {"P4", IV, 5},
	Aug4:  {"A4", IV, 6},
	Dim5:  {"d5", V, 6},
	Perf5: {"P5", V, 7},
	Aug5:  {"A5", V, 8},
	Dim6:  {"d6", VI, 7},
	Min6:  {"m6", VI, 8},
	Maj6:  {"M6", VI, 9},
	Aug6:  {"A6", VI, 10},
	Dim7:  {"d7", VII, 9},
	Min7:  {"m7", VII, 10},
	Maj7:  {"M7", VII, 11},
}

// AllIntervals lists every interval in declaration order.
var AllIntervals []Interval

var intervalLookup [8][12]Interval

func init() {
	for iv := Dim1; iv <= Maj7; iv++ {
		AllIntervals = append(AllIntervals, iv)
		info := intervalTable[iv]
		intervalLookup[info.degree][info.semis] = iv
	}
}

func (iv Interval) Valid() bool { return iv >= Dim1 && iv <= Maj7 }

func (iv Interval) String() string {
	if !iv.Valid() {
		return fmt.Sprintf("Interval(%d)", uint8(iv))
	}
	return intervalTable[iv].name
}

func (iv Interval) Degree() Degree { return intervalTable[iv].degree }
func (iv Interval) Semitones() int { return intervalTable[iv].semis }

// Less orders intervals by (degree, semitones).
func (iv Interval) Less(o Interval) bool {
	if iv.Degree() != o.Degree() {
		return iv.Degree() < o.Degree()
	}
	return iv.Semitones() < o.Semitones()
}

func mod12(n int) int {
	n %= 12
	if n < 0 {
		n += 12
	}
	return n
}

// LookupInterval returns the canonical interval for a degree and semitone count.
func LookupInterval(d Degree, semis int) (Interval, bool) {
	if !d.Valid() {
		return 0, false
	}
	iv := intervalLookup[d][mod12(semis)]
	return iv, iv != 0
}

func (iv Interval) Add(o Interval) (Interval, error) {
	d := iv.Degree().Add(o.Degree())
	s := iv.Semitones() + o.Semitones()
	res, ok := LookupInterval(d, s)
	if !ok {
		return 0, fmt.Errorf("%w: %s + %s", ErrNoInterval, iv, o)
	}
	return res, nil
}

func (iv Interval) Sub(o Interval) (Interval, error) {
	d := iv.Degree().Sub(o.Degree())
	s := iv.Semitones() - o.Semitones()
	res, ok := LookupInterval(d, s)
	if !ok {
		return 0, fmt.Errorf("%w: %s - %s", ErrNoInterval, iv, o)
	}
	return res, nil
}

func ParseInterval(s string) (Interval, error) {
	s = strings.TrimSpace(s)
	for _, iv := range AllIntervals {
		if intervalTable[iv].name == s {
			return iv, nil
		}
	}
	return 0, fmt.Errorf("%w: interval %q", ErrUnknownName, s)
}

// IntervalSet is a set of intervals.
type IntervalSet uint32

func NewIntervalSet(ivs ...Interval) IntervalSet {
	var s IntervalSet
	for _, iv := range ivs {
		s = s.With(iv)
	}
	return s
}

func (s IntervalSet) Has(iv Interval) bool { return iv.Valid() && s&(1<<iv) != 0 }
func (s IntervalSet) With(iv Interval) IntervalSet { return s | 1<<iv }
func (s IntervalSet) Union(o IntervalSet) IntervalSet { return s | o }
func (s IntervalSet) Minus(o IntervalSet) IntervalSet { return s &^ o }
func (s IntervalSet) Len() int { return bits.OnesCount32(uint32(s)) }
func (s IntervalSet) Empty() bool { return s == 0 }

// Intervals returns the members sorted by (degree, semitones).
func (s IntervalSet) Intervals() []Interval {
	out := make([]Interval, 0, s.Len())
	for _, iv := range AllIntervals {
		if s.Has(iv) {
			out = append(out, iv)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Less(out[j]) })
	return out
}

func (s IntervalSet) String() string {
	ivs := s.Intervals()
	names := make([]string, len(ivs))
	for i, iv := range ivs {
		names[i] = iv.String()
	}
	return "{" + strings.Join(names, ",") + "}"
}
