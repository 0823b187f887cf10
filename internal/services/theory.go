package services

import (
	"errors"
	"fmt"

	"github.com/Conceptual-Machines/harmony-api/internal/models"
	"github.com/Conceptual-Machines/harmony-api/internal/relations"
	"github.com/Conceptual-Machines/harmony-api/internal/resolve"
	"github.com/Conceptual-Machines/harmony-api/internal/theory"
)

var (
	ErrInvalidQuery = errors.New("invalid theory query")
	ErrNoHits       = errors.New("no resolve hits")
)

const (
	tensionFullScale       = 150.0
	priorityToTendencyUnit = 50.0
	maxTension             = 10.0
)

// Harmonic functions scored from interval evidence
const (
	FunctionTonic          = "Tonic"
	FunctionSubdominant    = "Subdominant"
	FunctionDominant       = "Dominant"
	FunctionCharacteristic = "Characteristic"
)

var allFunctions = []string{FunctionTonic, FunctionSubdominant, FunctionDominant, FunctionCharacteristic}

// functionFlow is how strongly each function leans toward the next
var functionFlow = map[string]map[string]float64{
	FunctionTonic:          {FunctionSubdominant: 0.50},
	FunctionSubdominant:    {FunctionDominant: 0.60},
	FunctionDominant:       {FunctionTonic: 0.70},
	FunctionCharacteristic: {FunctionTonic: 0.80},
}

// TheoryService answers analysis queries about chords, modes and keys
type TheoryService struct{}

func NewTheoryService() *TheoryService {
	return &TheoryService{}
}

type query struct {
	key     *theory.Key
	modeID  relations.ModeID
	mode    *theory.Mode
	chordID relations.ChordID
	chord   *theory.Chord
}

func invalid(err error) error {
	return fmt.Errorf("%w: %v", ErrInvalidQuery, err)
}

// parse resolves the request into domain objects. The chord is only built
// when withChord is set.
func (s *TheoryService) parse(req models.TheoryRequest, withChord bool) (*query, error) {
	keyID, err := parseKey(req.Key)
	if err != nil {
		return nil, invalid(err)
	}
	key, err := keyID.Resolve()
	if err != nil {
		return nil, invalid(err)
	}
	access, err := relations.ParseAccess(req.Mode.Access)
	if err != nil {
		return nil, invalid(err)
	}
	modeID, err := relations.ParseRole(access, req.Mode.Role)
	if err != nil {
		return nil, invalid(err)
	}
	mode, err := modeID.Resolve(key)
	if err != nil {
		return nil, invalid(err)
	}
	q := &query{key: key, modeID: modeID, mode: mode}
	if !withChord {
		return q, nil
	}

	if req.Chord == nil {
		return nil, invalid(errors.New("chord is required"))
	}
	q.chordID, err = parseChord(*req.Chord)
	if err != nil {
		return nil, invalid(err)
	}
	q.chord, err = q.chordID.Resolve(mode)
	if err != nil {
		return nil, invalid(err)
	}
	return q, nil
}

func parseKey(k models.KeySpec) (relations.KeyID, error) {
	tonic, err := theory.ParseNoteName(k.Tonic)
	if err != nil {
		return relations.KeyID{}, err
	}
	main, err := theory.ParseModeType(k.Main)
	if err != nil {
		return relations.KeyID{}, err
	}
	return relations.KeyID{Tonic: tonic, Main: main}, nil
}

func parseChord(c models.ChordSpec) (relations.ChordID, error) {
	degree, err := theory.ParseDegree(c.Degree)
	if err != nil {
		return relations.ChordID{}, err
	}
	variant := theory.Base
	if c.Variant != "" {
		if variant, err = theory.ParseVariant(c.Variant); err != nil {
			return relations.ChordID{}, err
		}
	}
	comp, err := relations.ParseComposition(c.Composition)
	if err != nil {
		return relations.ChordID{}, err
	}
	return relations.ChordID{Degree: degree, Variant: variant, Composition: comp}, nil
}

// Chord analyzes the chord on its own: quality, dissonances and tension.
func (s *TheoryService) Chord(req models.TheoryRequest) (*models.Analysis, error) {
	q, err := s.parse(req, true)
	if err != nil {
		return nil, err
	}
	rels, err := q.chord.Dissonances()
	if err != nil {
		return nil, fmt.Errorf("failed to analyze dissonances: %w", err)
	}

	a := models.NewAnalysis("chord")
	a.Entity["chord"] = q.chord.Name()
	a.Entity["root"] = q.chord.Root().String()
	a.Entity["notes"] = noteNames(q.chord.Notes())
	a.Entity["quality"] = q.chord.Quality().Name()
	a.Entity["intervals"] = intervalNames(q.chord.Intervals())

	dissonances := make([]map[string]any, 0, len(rels))
	prioritySum := 0.0
	tendencies := map[string]float64{}
	root := q.chord.Root()
	for _, rel := range rels {
		members := make([]map[string]string, 0, len(rel.Members))
		for _, m := range rel.Members {
			members = append(members, map[string]string{
				"interval":   m.Interval.String(),
				"resolution": m.Resolution.String(),
			})
		}
		dissonances = append(dissonances, map[string]any{
			"kind":      rel.Kind,
			"priority":  rel.Priority,
			"min_moves": rel.MinMoves,
			"members":   members,
		})
		prioritySum += float64(rel.Priority)

		w := float64(rel.Priority) / priorityToTendencyUnit
		for _, m := range rel.Members {
			src := mod12(root.Offset() + m.Interval.Semitones())
			for _, target := range stepTargets(src, m.Resolution) {
				if d, ok := resolve.DegreeAbove(root, target); ok {
					tendencies[d.String()] += w
				}
			}
		}
	}
	a.Evidence["dissonances"] = dissonances
	a.Analysis["tension_score"] = clip(maxTension*prioritySum/tensionFullScale, 0, maxTension)
	a.Analysis["target_note_tendencies"] = tendencies
	return a, nil
}

// ChordInMode places the chord in its mode: turning points, functions and
// chromatic color.
func (s *TheoryService) ChordInMode(req models.TheoryRequest) (*models.Analysis, error) {
	q, err := s.parse(req, true)
	if err != nil {
		return nil, err
	}
	hits := resolve.ChordInMode(q.chord, q.mode)
	hit, ok := pickChordHit(hits, q.chordID)
	if !ok {
		return nil, ErrNoHits
	}

	a := models.NewAnalysis("chord_in_mode")
	a.Meta["hits"] = len(hits)
	a.Entity["mode"] = hit.Mode.String()
	a.Entity["chord"] = hit.Chord.Name()
	a.Entity["chord_id"] = hit.ID.String()
	a.Entity["degrees_in_mode"] = degreeNames(hit.DegreesInMode())

	tps := make([]string, 0)
	for _, tp := range hit.TurningPoints() {
		tps = append(tps, tp.String())
	}
	a.Evidence["turning_points"] = tps
	a.Evidence["has_characteristic_degree"] = hit.HasCharacteristicDegree()

	base, err := hit.Mode.Scale(theory.Base)
	if err != nil {
		return nil, err
	}
	var present theory.IntervalSet
	for _, n := range hit.Chord.Notes() {
		if iv, ok := hit.Mode.Tonic().IntervalTo(n); ok {
			present = present.With(iv)
		}
	}
	scores := functionScores(present, base.Interval(theory.I), base.Interval(theory.III))
	a.Analysis["function_scores"] = scores
	a.Analysis["function_tendencies"] = functionTendencies(scores)

	chromatic, err := chromaticScore(hit)
	if err != nil {
		return nil, err
	}
	a.Analysis["chromatic_score"] = chromatic
	return a, nil
}

// ModeInKey places the mode in the key and scores its skeleton triad.
func (s *TheoryService) ModeInKey(req models.TheoryRequest) (*models.Analysis, error) {
	q, err := s.parse(req, false)
	if err != nil {
		return nil, err
	}
	hits := resolve.ModeInKey(q.mode, q.key)
	hit, ok := pickModeHit(hits, q.modeID)
	if !ok {
		return nil, ErrNoHits
	}

	a := models.NewAnalysis("mode_in_key")
	a.Meta["hits"] = len(hits)
	a.Entity["key"] = hit.Key.String()
	a.Entity["mode"] = hit.Mode.String()
	a.Entity["access"] = hit.ID.Access.String()
	a.Entity["role"] = hit.ID.Role()

	skeleton, err := hit.SkeletonChord()
	if err != nil {
		return nil, err
	}
	present, err := hit.SkeletonIntervals()
	if err != nil {
		return nil, err
	}
	a.Evidence["tonic_interval"] = hit.TonicInterval()
	a.Evidence["altered_degrees"] = degreeNames(hit.AlteredDegrees())
	a.Evidence["skeleton_chord"] = skeleton.Name()

	main := hit.Key.MainBase()
	scores := functionScores(present, main.Interval(theory.I), main.Interval(theory.III))
	a.Analysis["skeleton_function_scores"] = scores
	a.Analysis["skeleton_function_tendencies"] = functionTendencies(scores)
	return a, nil
}

// ChordInKey places the chord in the key through its mode: functions
// against the main mode and chromatic tendencies.
func (s *TheoryService) ChordInKey(req models.TheoryRequest) (*models.Analysis, error) {
	q, err := s.parse(req, true)
	if err != nil {
		return nil, err
	}
	hits := resolve.ChordInKey(q.chord, q.key)
	if len(hits) == 0 {
		return nil, ErrNoHits
	}
	hit := hits[0]
	for _, h := range hits {
		if h.ModeID == q.modeID && sameChord(h.ChordID, q.chordID) {
			hit = h
			break
		}
	}

	a := models.NewAnalysis("chord_in_key")
	a.Meta["hits"] = len(hits)
	a.Entity["key"] = hit.Key.String()
	a.Entity["mode"] = hit.Mode.String()
	a.Entity["chord"] = hit.Chord.Name()
	a.Entity["access"] = hit.ModeID.Access.String()
	a.Entity["role"] = hit.ModeID.Role()
	a.Entity["absolute_root"] = hit.AbsoluteRoot().String()

	semitone := map[string][]int{}
	for d, targets := range hit.SemitoneTendencies() {
		semitone[d.String()] = targets
	}
	a.Evidence["altered_degrees"] = degreeNames(hit.AlteredDegrees())
	a.Evidence["degrees_in_key"] = degreeNames(hit.DegreesInKey())
	a.Evidence["tonal_semitone_tendencies"] = semitone

	main := hit.Key.MainBase()
	scores := functionScores(hit.IntervalsInMainBase(), main.Interval(theory.I), main.Interval(theory.III))
	a.Analysis["function_scores"] = scores
	a.Analysis["function_tendencies"] = functionTendencies(scores)
	a.Analysis["chromatic_score"] = float64(len(semitone))
	return a, nil
}

func pickChordHit(hits []resolve.ChordInModeHit, want relations.ChordID) (resolve.ChordInModeHit, bool) {
	for _, h := range hits {
		if sameChord(h.ID, want) {
			return h, true
		}
	}
	return resolve.PickChordInMode(hits)
}

func sameChord(a, b relations.ChordID) bool {
	return a.Degree == b.Degree && a.Variant == b.Variant &&
		a.EffectiveComposition() == b.EffectiveComposition()
}

func pickModeHit(hits []resolve.ModeInKeyHit, want relations.ModeID) (resolve.ModeInKeyHit, bool) {
	for _, h := range hits {
		if h.ID == want {
			return h, true
		}
	}
	return resolve.PickModeInKey(hits)
}

// functionScores weighs interval evidence for each function. The dominant
// counts only the major seventh as a leading tone.
func functionScores(present theory.IntervalSet, tonic, third theory.Interval) map[string]float64 {
	evidence := []struct {
		function string
		weights  map[theory.Interval]float64
	}{
		{FunctionTonic, map[theory.Interval]float64{tonic: 1, third: 3}},
		{FunctionDominant, map[theory.Interval]float64{theory.Perf5: 1, theory.Maj7: 3}},
		{FunctionSubdominant, map[theory.Interval]float64{theory.Perf4: 3, theory.Aug4: 3, theory.Min6: 2, theory.Maj6: 1}},
	}
	out := make(map[string]float64, len(allFunctions))
	for _, f := range allFunctions {
		out[f] = 0
	}
	for _, e := range evidence {
		for iv, w := range e.weights {
			if present.Has(iv) {
				out[e.function] += w
			}
		}
	}
	return out
}

func functionTendencies(scores map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(allFunctions))
	for _, f := range allFunctions {
		out[f] = 0
	}
	for _, src := range allFunctions {
		score := scores[src]
		if score == 0 {
			continue
		}
		for dst, ratio := range functionFlow[src] {
			out[dst] += score * ratio
		}
	}
	return out
}

// chromaticScore counts chord degrees whose variant note differs from the
// base scale.
func chromaticScore(hit resolve.ChordInModeHit) (float64, error) {
	if hit.ID.Variant == theory.Base {
		return 0, nil
	}
	base, err := hit.Mode.Scale(theory.Base)
	if err != nil {
		return 0, err
	}
	cur, err := hit.Mode.Scale(hit.ID.Variant)
	if err != nil {
		return 0, err
	}
	score := 0.0
	for _, d := range hit.DegreesInMode().Degrees() {
		if cur.Note(d).Offset() != base.Note(d).Offset() {
			score++
		}
	}
	return score, nil
}

func stepTargets(pc int, r theory.Resolution) []int {
	switch r {
	case theory.ResolveStepUp:
		return []int{mod12(pc + 1), mod12(pc + 2)}
	case theory.ResolveStepDown:
		return []int{mod12(pc - 1), mod12(pc - 2)}
	case theory.ResolveStepEither:
		return []int{mod12(pc + 1), mod12(pc + 2), mod12(pc - 1), mod12(pc - 2)}
	}
	return nil
}

func noteNames(notes []theory.BaseNote) []string {
	out := make([]string, len(notes))
	for i, n := range notes {
		out[i] = n.String()
	}
	return out
}

func intervalNames(s theory.IntervalSet) []string {
	ivs := s.Intervals()
	out := make([]string, len(ivs))
	for i, iv := range ivs {
		out[i] = iv.String()
	}
	return out
}

func degreeNames(s theory.DegreeSet) []string {
	out := make([]string, 0, s.Len())
	for _, d := range s.Degrees() {
		out = append(out, d.String())
	}
	return out
}

func clip(v, lo, hi float64) float64 {
	switch {
	case v < lo:
		return lo
	case v > hi:
		return hi
	}
	return v
}

func mod12(n int) int {
	n %= 12
	if n < 0 {
		n += 12
	}
	return n
}
