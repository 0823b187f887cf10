package enumerate

import (
	"iter"
	"math/rand/v2"
	"slices"

	"github.com/Conceptual-Machines/harmony-api/internal/relations"
	"github.com/Conceptual-Machines/harmony-api/internal/theory"
)

// Candidate pool sizes per stage.
const (
	DefaultKeyPool   = 5
	DefaultModePool  = 20
	DefaultChordPool = 300
)

// KeyDomain narrows the key space.
type KeyDomain struct {
	AvoidTonics []theory.NoteName
	AvoidModes  []theory.ModeType
}

// ModeDomain narrows the mode space. Roles are degrees for Relative and
// SubV modes; Substitute roles are filtered by AvoidModes and AllowModes.
type ModeDomain struct {
	AvoidRoles  theory.DegreeSet
	AvoidModes  []theory.ModeType
	AvoidAccess []relations.Access
	AllowRoles  theory.DegreeSet
	AllowModes  []theory.ModeType
	IncludeSubV bool
}

// ChordDomain narrows the chord space. MustInclude and ForbidInclude are
// degrees of the mode, not of the chord.
type ChordDomain struct {
	AvoidRoots    theory.DegreeSet
	AvoidVariants []theory.Variant
	MustInclude   theory.DegreeSet
	ForbidInclude theory.DegreeSet
}

// KeySpec builds the (tonic, main mode) space. With neither candidates nor a
// domain the space is C Ionian only. Candidates keep their given order.
func KeySpec(candidates []relations.KeyID, domain *KeyDomain) RelationSpec[relations.KeyID] {
	assemble := func(v []any) relations.KeyID {
		return relations.KeyID{Tonic: v[0].(theory.NoteName), Main: v[1].(theory.ModeType)}
	}
	if candidates == nil && domain == nil {
		return RelationSpec[relations.KeyID]{
			Depth:     2,
			Roots:     func() []any { return []any{theory.C} },
			Children:  func([]any) []any { return []any{theory.Ionian} },
			Forbidden: func([]any, any) bool { return false },
			Assemble:  assemble,
		}
	}
	if domain == nil {
		domain = &KeyDomain{}
	}

	var tonics []theory.NoteName
	byTonic := make(map[theory.NoteName][]theory.ModeType)
	if candidates != nil {
		for _, k := range candidates {
			if slices.Contains(domain.AvoidTonics, k.Tonic) || slices.Contains(domain.AvoidModes, k.Main) {
				continue
			}
			if _, seen := byTonic[k.Tonic]; !seen {
				tonics = append(tonics, k.Tonic)
			}
			byTonic[k.Tonic] = append(byTonic[k.Tonic], k.Main)
		}
	}

	return RelationSpec[relations.KeyID]{
		Depth: 2,
		Roots: func() []any {
			var out []any
			if candidates != nil {
				for _, t := range tonics {
					out = append(out, t)
				}
				return out
			}
			for _, t := range theory.AllNoteNames {
				if !slices.Contains(domain.AvoidTonics, t) {
					out = append(out, t)
				}
			}
			return out
		},
		Children: func(prefix []any) []any {
			tonic := prefix[0].(theory.NoteName)
			var out []any
			if candidates != nil {
				for _, m := range byTonic[tonic] {
					out = append(out, m)
				}
				return out
			}
			for _, m := range theory.AllModeTypes {
				if !slices.Contains(domain.AvoidModes, m) {
					out = append(out, m)
				}
			}
			return out
		},
		Forbidden: func(prefix []any, v any) bool {
			if len(prefix) == 0 {
				t, ok := v.(theory.NoteName)
				return ok && slices.Contains(domain.AvoidTonics, t)
			}
			m, ok := v.(theory.ModeType)
			return ok && slices.Contains(domain.AvoidModes, m)
		},
		Assemble: assemble,
	}
}

// ModeSpec builds the (access, role) space of modes inside key. When prev is
// set, a candidate whose base collection is not reachable from prev's by an
// allowed color shift is forbidden.
func ModeSpec(key *theory.Key, domain *ModeDomain, includeSubV bool, prev *theory.Mode) RelationSpec[relations.ModeID] {
	if domain == nil {
		domain = &ModeDomain{}
	}
	includeSubV = includeSubV || domain.IncludeSubV

	var relDegs, subvDegs []any
	var subModes []any
	for _, d := range theory.AllDegrees {
		if domain.AvoidRoles.Has(d) || (!domain.AllowRoles.Empty() && !domain.AllowRoles.Has(d)) {
			continue
		}
		relDegs = append(relDegs, d)
		if includeSubV {
			subvDegs = append(subvDegs, d)
		}
	}
	for _, m := range theory.AllModeTypes {
		if slices.Contains(domain.AvoidModes, m) {
			continue
		}
		if len(domain.AllowModes) > 0 && !slices.Contains(domain.AllowModes, m) {
			continue
		}
		subModes = append(subModes, m)
	}

	modeFor := func(access relations.Access, role any) (*theory.Mode, bool) {
		switch access {
		case relations.Relative:
			return key.Relative(role.(theory.Degree)), true
		case relations.Substitute:
			return key.Substitute(role.(theory.ModeType)), true
		case relations.SubV:
			m, err := key.SubV(role.(theory.Degree))
			return m, err == nil
		}
		return nil, false
	}

	return RelationSpec[relations.ModeID]{
		Depth: 2,
		Roots: func() []any {
			var out []any
			if !slices.Contains(domain.AvoidAccess, relations.Relative) && len(relDegs) > 0 {
				out = append(out, relations.Relative)
			}
			if !slices.Contains(domain.AvoidAccess, relations.Substitute) && len(subModes) > 0 {
				out = append(out, relations.Substitute)
			}
			if includeSubV && !slices.Contains(domain.AvoidAccess, relations.SubV) && len(subvDegs) > 0 {
				out = append(out, relations.SubV)
			}
			return out
		},
		Children: func(prefix []any) []any {
			switch prefix[0].(relations.Access) {
			case relations.Relative:
				return relDegs
			case relations.Substitute:
				return subModes
			case relations.SubV:
				return subvDegs
			}
			return nil
		},
		Forbidden: func(prefix []any, v any) bool {
			if len(prefix) == 0 {
				a, ok := v.(relations.Access)
				return ok && slices.Contains(domain.AvoidAccess, a)
			}
			access := prefix[0].(relations.Access)
			switch role := v.(type) {
			case theory.Degree:
				if domain.AvoidRoles.Has(role) {
					return true
				}
			case theory.ModeType:
				if slices.Contains(domain.AvoidModes, role) {
					return true
				}
			}
			if prev == nil {
				return false
			}
			m, ok := modeFor(access, v)
			if !ok {
				return true
			}
			return !theory.ColorShiftAllowed(theory.BaseColorShift(prev, m))
		},
		Assemble: func(v []any) relations.ModeID {
			access := v[0].(relations.Access)
			if access == relations.Substitute {
				return relations.SubstituteMode(v[1].(theory.ModeType))
			}
			return relations.ModeID{Access: access, Degree: v[1].(theory.Degree)}
		},
	}
}

// ChordSpec builds the (root, variant, composition) space of chords in mode.
// Compositions are listed by increasing size and only those that form a
// known quality on the rotated scale are kept.
func ChordSpec(mode *theory.Mode, domain *ChordDomain) RelationSpec[relations.ChordID] {
	if domain == nil {
		domain = &ChordDomain{}
	}
	var variants []any
	for _, v := range mode.Variants() {
		if !slices.Contains(domain.AvoidVariants, v) {
			variants = append(variants, v)
		}
	}
	var roots []any
	for _, d := range theory.AllDegrees {
		if domain.AvoidRoots.Has(d) {
			continue
		}
		if _, ok := compositionBounds(d, domain.MustInclude, domain.ForbidInclude); ok {
			roots = append(roots, d)
		}
	}

	return RelationSpec[relations.ChordID]{
		Depth: 3,
		Roots: func() []any { return roots },
		Children: func(prefix []any) []any {
			root := prefix[0].(theory.Degree)
			if len(prefix) == 1 {
				return variants
			}
			scale, err := mode.ScaleOf(root, prefix[1].(theory.Variant))
			if err != nil {
				return nil
			}
			var out []any
			for _, comp := range Compositions(root, domain.MustInclude, domain.ForbidInclude) {
				if _, err := theory.NewChord(scale, comp); err != nil {
					continue
				}
				out = append(out, comp)
			}
			return out
		},
		Forbidden: func(prefix []any, v any) bool {
			switch len(prefix) {
			case 0:
				d, ok := v.(theory.Degree)
				return ok && domain.AvoidRoots.Has(d)
			case 1:
				variant, ok := v.(theory.Variant)
				return ok && slices.Contains(domain.AvoidVariants, variant)
			}
			return false
		},
		Assemble: func(v []any) relations.ChordID {
			return relations.ChordID{
				Degree:      v[0].(theory.Degree),
				Variant:     v[1].(theory.Variant),
				Composition: v[2].(theory.DegreeSet),
			}
		},
	}
}

type bounds struct {
	fixed theory.DegreeSet
	pool  []theory.Degree
}

func compositionBounds(root theory.Degree, must, forbid theory.DegreeSet) (bounds, bool) {
	if !must.Intersect(forbid).Empty() {
		return bounds{}, false
	}
	mustRel := must.Unshift(root)
	forbidRel := forbid.Unshift(root)
	if forbidRel.Has(theory.I) || !mustRel.Intersect(forbidRel).Empty() {
		return bounds{}, false
	}
	b := bounds{fixed: mustRel.With(theory.I)}
	for _, d := range theory.AllDegrees {
		if d != theory.I && !forbidRel.Has(d) && !b.fixed.Has(d) {
			b.pool = append(b.pool, d)
		}
	}
	need := 0
	if b.fixed.Len() < 2 {
		need = 2 - b.fixed.Len()
	}
	return b, need <= len(b.pool)
}

// Compositions lists chord-relative compositions for a root: the fixed
// degrees plus every combination of the remaining pool, smallest first.
func Compositions(root theory.Degree, must, forbid theory.DegreeSet) []theory.DegreeSet {
	b, ok := compositionBounds(root, must, forbid)
	if !ok {
		return nil
	}
	var out []theory.DegreeSet
	for size := 0; size <= len(b.pool); size++ {
		if b.fixed.Len()+size < 2 {
			continue
		}
		for combo := range combinations(b.pool, size) {
			out = append(out, b.fixed.Union(theory.NewDegreeSet(combo...)))
		}
	}
	return out
}

// combinations yields k-subsets of items in lexicographic index order.
func combinations[T any](items []T, k int) iter.Seq[[]T] {
	return func(yield func([]T) bool) {
		n := len(items)
		if k > n {
			return
		}
		idx := make([]int, k)
		for i := range idx {
			idx[i] = i
		}
		for {
			combo := make([]T, k)
			for i, j := range idx {
				combo[i] = items[j]
			}
			if !yield(combo) {
				return
			}
			i := k - 1
			for i >= 0 && idx[i] == n-k+i {
				i--
			}
			if i < 0 {
				return
			}
			idx[i]++
			for j := i + 1; j < k; j++ {
				idx[j] = idx[j-1] + 1
			}
		}
	}
}

// KeyGenerator proposes keys.
type KeyGenerator struct {
	Candidates []relations.KeyID
	PoolSize   int
	rng        *rand.Rand
}

func NewKeyGenerator(candidates []relations.KeyID, rng *rand.Rand) *KeyGenerator {
	return &KeyGenerator{Candidates: candidates, PoolSize: DefaultKeyPool, rng: rng}
}

func (g *KeyGenerator) Propose(domain *KeyDomain) iter.Seq[relations.KeyID] {
	spec := KeySpec(g.Candidates, domain)
	return NewPrefixEnumerator(spec, g.rng, DefaultWindow).Propose(g.PoolSize)
}

// ModeGenerator proposes modes inside a key.
type ModeGenerator struct {
	IncludeSubV bool
	PoolSize    int
	rng         *rand.Rand
}

func NewModeGenerator(includeSubV bool, rng *rand.Rand) *ModeGenerator {
	return &ModeGenerator{IncludeSubV: includeSubV, PoolSize: DefaultModePool, rng: rng}
}

func (g *ModeGenerator) Propose(key *theory.Key, domain *ModeDomain, prev *theory.Mode) iter.Seq[relations.ModeID] {
	spec := ModeSpec(key, domain, g.IncludeSubV, prev)
	return NewPrefixEnumerator(spec, g.rng, DefaultWindow).Propose(g.PoolSize)
}

// ChordGenerator proposes chords inside a mode.
type ChordGenerator struct {
	PoolSize int
	rng      *rand.Rand
}

func NewChordGenerator(rng *rand.Rand) *ChordGenerator {
	return &ChordGenerator{PoolSize: DefaultChordPool, rng: rng}
}

func (g *ChordGenerator) Propose(mode *theory.Mode, domain *ChordDomain) iter.Seq[relations.ChordID] {
	spec := ChordSpec(mode, domain)
	return NewPrefixEnumerator(spec, g.rng, DefaultWindow).Propose(g.PoolSize)
}
