package theory

import (
	"fmt"
	"sort"
	"strings"
)

// QualityKind is a named chord quality. Declaration order breaks ties when
// inferring a quality from intervals.
type QualityKind uint8

const (
	QualMaj QualityKind = iota
	QualMin
	QualSus2
	QualSus4
	QualMaj7Sus2
	QualMin7Sus2
	QualMaj7Sus4
	QualMin7Sus4
	QualDim
	QualAug
	QualPower
	QualMaj7
	QualDom7
	QualMin7
	QualMinMaj7
	QualDim7
	QualHalfDim7
	QualAugMaj7
	QualAug7
	QualMaj9
	QualMaj11
	QualMaj13
	QualMin9
	QualMin11
	QualMin13
	QualDom9
	QualDom11
	QualDom13
	qualityKindCount
)

type qualityDef struct {
	name      string
	intervals IntervalSet
}

var (
	maj7Set = NewIntervalSet(Maj3, Perf5, Maj7)
	dom7Set = NewIntervalSet(Maj3, Perf5, Min7)
	min7Set = NewIntervalSet(Min3, Perf5, Min7)
)

var qualityDefs = [qualityKindCount]qualityDef{
	QualMaj:      {"maj", NewIntervalSet(Maj3, Perf5)},
	QualMin:      {"min", NewIntervalSet(Min3, Perf5)},
	QualSus2:     {"sus2", NewIntervalSet(Maj2, Perf5)},
	QualSus4:     {"sus4", NewIntervalSet(Perf4, Perf5)},
	QualMaj7Sus2: {"maj7sus2", NewIntervalSet(Maj2, Perf5, Maj7)},
	QualMin7Sus2: {"min7sus2", NewIntervalSet(Maj2, Perf5, Min7)},
	QualMaj7Sus4: {"maj7sus4", NewIntervalSet(Perf4, Perf5, Maj7)},
	QualMin7Sus4: {"min7sus4", NewIntervalSet(Perf4, Perf5, Min7)},
	QualDim:      {"dim", NewIntervalSet(Min3, Dim5)},
	QualAug:      {"aug", NewIntervalSet(Maj3, Aug5)},
	QualPower:    {"5", NewIntervalSet(Perf5)},
	QualMaj7:     {"maj7", maj7Set},
	QualDom7:     {"7", dom7Set},
	QualMin7:     {"min7", min7Set},
	QualMinMaj7:  {"mM7", NewIntervalSet(Min3, Perf5, Maj7)},
	QualDim7:     {"dim7", NewIntervalSet(Min3, Dim5, Dim7)},
	QualHalfDim7: {"min7b5", NewIntervalSet(Min3, Dim5, Min7)},
	QualAugMaj7:  {"aug7", NewIntervalSet(Maj3, Aug5, Maj7)},
	QualAug7:     {"7p", NewIntervalSet(Maj3, Aug5, Min7)},
	QualMaj9:     {"maj9", maj7Set.With(Maj2)},
	QualMaj11:    {"maj11", maj7Set.With(Maj2).With(Perf4)},
	QualMaj13:    {"maj13", maj7Set.With(Maj2).With(Perf4).With(Maj6)},
	QualMin9:     {"min9", min7Set.With(Maj2)},
	QualMin11:    {"min11", min7Set.With(Maj2).With(Perf4)},
	QualMin13:    {"min13", min7Set.With(Maj2).With(Perf4).With(Maj6)},
	QualDom9:     {"9", dom7Set.With(Maj2)},
	QualDom11:    {"11", dom7Set.With(Maj2).With(Perf4)},
	QualDom13:    {"13", dom7Set.With(Maj2).With(Perf4).With(Maj6)},
}

func (k QualityKind) String() string {
	if k >= qualityKindCount {
		return fmt.Sprintf("QualityKind(%d)", uint8(k))
	}
	return qualityDefs[k].name
}

// Intervals is the defining interval set of the kind, excluding P1.
func (k QualityKind) Intervals() IntervalSet { return qualityDefs[k].intervals }

// Quality is a base kind plus added tensions and at most one omitted interval.
type Quality struct {
	Kind     QualityKind
	Tensions IntervalSet
	Omits    IntervalSet
}

func omittable(iv Interval) bool {
	switch iv.Degree() {
	case III, V, VII:
		return true
	}
	return false
}

func tensionEligible(iv Interval) bool {
	switch iv.Degree() {
	case II, IV, VI:
		return true
	}
	return false
}

type qualityCandidate struct {
	rank    [3]int
	kind    QualityKind
	missing IntervalSet
	extra   IntervalSet
}

// QualityFromIntervals infers the best matching quality for a set of
// intervals above the root.
func QualityFromIntervals(s IntervalSet) (Quality, error) {
	if s.Empty() {
		return Quality{}, fmt.Errorf("%w: empty interval set", ErrUnknownQuality)
	}
	var candidates []qualityCandidate
	for k := QualityKind(0); k < qualityKindCount; k++ {
		base := k.Intervals()
		missing := base.Minus(s)
		extra := s.Minus(base)
		if missing.Len() > 1 {
			continue
		}
		if !allIntervals(missing, omittable) || !allIntervals(extra, tensionEligible) {
			continue
		}
		var rank [3]int
		switch {
		case missing.Empty() && extra.Empty():
			rank = [3]int{0, 0, 0}
		case extra.Empty():
			rank = [3]int{1, 0, 0}
		case missing.Empty():
			rank = [3]int{2, 0, extra.Len()}
		default:
			rank = [3]int{3, 0, extra.Len()}
		}
		candidates = append(candidates, qualityCandidate{rank, k, missing, extra})
	}
	if len(candidates) == 0 {
		return Quality{}, fmt.Errorf("%w: %s", ErrUnknownQuality, s)
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i].rank, candidates[j].rank
		for n := range a {
			if a[n] != b[n] {
				return a[n] < b[n]
			}
		}
		return false
	})
	best := candidates[0]
	return Quality{Kind: best.kind, Tensions: best.extra, Omits: best.missing}, nil
}

func allIntervals(s IntervalSet, pred func(Interval) bool) bool {
	for _, iv := range s.Intervals() {
		if !pred(iv) {
			return false
		}
	}
	return true
}

var omitTokens = map[Degree]string{III: "no3", V: "no5", VII: "no7", II: "no9", IV: "no11"}

// Name renders e.g. "maj7", "min(M2)" or "maj9/no7".
func (q Quality) Name() string {
	var b strings.Builder
	b.WriteString(q.Kind.String())
	if !q.Tensions.Empty() {
		ivs := q.Tensions.Intervals()
		names := make([]string, len(ivs))
		for i, iv := range ivs {
			names[i] = iv.String()
		}
		b.WriteString("(" + strings.Join(names, ",") + ")")
	}
	if !q.Omits.Empty() {
		var tokens []string
		for _, iv := range q.Omits.Intervals() {
			if t := omitTokens[iv.Degree()]; t != "" {
				tokens = append(tokens, t)
			}
		}
		if len(tokens) > 0 {
			b.WriteString("/" + strings.Join(tokens, ","))
		}
	}
	return b.String()
}

func (q Quality) String() string { return q.Name() }

// Present is the sounding interval set: P1, the base minus omissions, and tensions.
func (q Quality) Present() IntervalSet {
	return q.Kind.Intervals().Minus(q.Omits).Union(q.Tensions).With(Perf1)
}
