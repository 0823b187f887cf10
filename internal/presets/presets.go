// Package presets loads named generation presets from YAML.
package presets

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/Conceptual-Machines/harmony-api/internal/composer"
	"github.com/Conceptual-Machines/harmony-api/internal/enumerate"
	"github.com/Conceptual-Machines/harmony-api/internal/goals"
	"github.com/Conceptual-Machines/harmony-api/internal/relations"
	"github.com/Conceptual-Machines/harmony-api/internal/theory"
	"github.com/Conceptual-Machines/harmony-api/internal/voicing"
	"github.com/Conceptual-Machines/harmony-api/pkg/embedded"
)

var ErrNotFound = errors.New("preset not found")

// KeyRef names a key as written in YAML, e.g. {tonic: A, main: Aeolian}.
type KeyRef struct {
	Tonic string `yaml:"tonic" json:"tonic"`
	Main  string `yaml:"main" json:"main"`
}

func (k KeyRef) ID() (relations.KeyID, error) {
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

type ModeDomain struct {
	AvoidRoles  []string `yaml:"avoid_roles" json:"avoid_roles,omitempty"`
	AvoidModes  []string `yaml:"avoid_modes" json:"avoid_modes,omitempty"`
	AvoidAccess []string `yaml:"avoid_access" json:"avoid_access,omitempty"`
	AllowRoles  []string `yaml:"allow_roles" json:"allow_roles,omitempty"`
	AllowModes  []string `yaml:"allow_modes" json:"allow_modes,omitempty"`
}

type ChordDomain struct {
	AvoidRoots    []string `yaml:"avoid_roots" json:"avoid_roots,omitempty"`
	AvoidVariants []string `yaml:"avoid_variants" json:"avoid_variants,omitempty"`
	MustInclude   []string `yaml:"must_include" json:"must_include,omitempty"`
	ForbidInclude []string `yaml:"forbid_include" json:"forbid_include,omitempty"`
}

type Voicing struct {
	Spread string `yaml:"spread" json:"spread,omitempty"`
	Octave int    `yaml:"octave" json:"octave,omitempty"`
}

// Options layers the preset voicing over the defaults and validates it
func (v Voicing) Options() (voicing.Options, error) {
	opts := voicing.DefaultOptions()
	if v.Spread != "" {
		opts.Spread = voicing.Spread(v.Spread)
	}
	if v.Octave != 0 {
		opts.Octave = v.Octave
	}
	if err := opts.Validate(); err != nil {
		return voicing.Options{}, err
	}
	return opts, nil
}

// Preset is a named bundle of generation settings. Zero numeric fields keep
// the caller's defaults.
type Preset struct {
	Name         string       `yaml:"name" json:"name"`
	Description  string       `yaml:"description" json:"description"`
	Length       int          `yaml:"length" json:"length,omitempty"`
	BeamWidth    int          `yaml:"beam_width" json:"beam_width,omitempty"`
	StageBudget  int          `yaml:"stage_budget" json:"stage_budget,omitempty"`
	MaxAttempts  int          `yaml:"max_attempts" json:"max_attempts,omitempty"`
	BudgetGrowth int          `yaml:"budget_growth" json:"budget_growth,omitempty"`
	Cadence      bool         `yaml:"cadence" json:"cadence"`
	PerStepKey   bool         `yaml:"per_step_key" json:"per_step_key"`
	IncludeSubV  bool         `yaml:"include_subv" json:"include_subv"`
	Keys         []KeyRef     `yaml:"keys" json:"keys,omitempty"`
	Scorers      []string     `yaml:"scorers" json:"scorers,omitempty"`
	ModeDomain   *ModeDomain  `yaml:"mode_domain" json:"mode_domain,omitempty"`
	ChordDomain  *ChordDomain `yaml:"chord_domain" json:"chord_domain,omitempty"`
	Voicing      Voicing      `yaml:"voicing" json:"voicing"`
}

// Apply overlays the preset on opts. Scorers and voicing are left to the
// caller since they need models and output settings.
func (p Preset) Apply(opts *composer.Options) error {
	setInt := func(dst *int, v int) {
		if v != 0 {
			*dst = v
		}
	}
	setInt(&opts.Length, p.Length)
	setInt(&opts.BeamWidth, p.BeamWidth)
	setInt(&opts.StageBudget, p.StageBudget)
	setInt(&opts.MaxAttempts, p.MaxAttempts)
	setInt(&opts.BudgetGrowth, p.BudgetGrowth)
	if p.Cadence {
		opts.Cadence = goals.DefaultCadence()
	}
	opts.PerStepKey = opts.PerStepKey || p.PerStepKey
	opts.IncludeSubV = opts.IncludeSubV || p.IncludeSubV

	for _, k := range p.Keys {
		id, err := k.ID()
		if err != nil {
			return fmt.Errorf("preset %s: %w", p.Name, err)
		}
		opts.KeyCandidates = append(opts.KeyCandidates, id)
	}
	if p.ModeDomain != nil {
		d, err := p.ModeDomain.build(p.IncludeSubV)
		if err != nil {
			return fmt.Errorf("preset %s: %w", p.Name, err)
		}
		opts.ModeDomain = d
	}
	if p.ChordDomain != nil {
		d, err := p.ChordDomain.build()
		if err != nil {
			return fmt.Errorf("preset %s: %w", p.Name, err)
		}
		opts.ChordDomain = d
	}
	return nil
}

func degreeSet(names []string) (theory.DegreeSet, error) {
	var s theory.DegreeSet
	for _, n := range names {
		d, err := theory.ParseDegree(n)
		if err != nil {
			return 0, err
		}
		s = s.With(d)
	}
	return s, nil
}

func parseAll[T any](names []string, parse func(string) (T, error)) ([]T, error) {
	out := make([]T, 0, len(names))
	for _, n := range names {
		v, err := parse(n)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func (m *ModeDomain) build(includeSubV bool) (*enumerate.ModeDomain, error) {
	var (
		d   = &enumerate.ModeDomain{IncludeSubV: includeSubV}
		err error
	)
	if d.AvoidRoles, err = degreeSet(m.AvoidRoles); err != nil {
		return nil, err
	}
	if d.AllowRoles, err = degreeSet(m.AllowRoles); err != nil {
		return nil, err
	}
	if d.AvoidModes, err = parseAll(m.AvoidModes, theory.ParseModeType); err != nil {
		return nil, err
	}
	if d.AllowModes, err = parseAll(m.AllowModes, theory.ParseModeType); err != nil {
		return nil, err
	}
	if d.AvoidAccess, err = parseAll(m.AvoidAccess, relations.ParseAccess); err != nil {
		return nil, err
	}
	return d, nil
}

func (c *ChordDomain) build() (*enumerate.ChordDomain, error) {
	var (
		d   = &enumerate.ChordDomain{}
		err error
	)
	if d.AvoidRoots, err = degreeSet(c.AvoidRoots); err != nil {
		return nil, err
	}
	if d.MustInclude, err = degreeSet(c.MustInclude); err != nil {
		return nil, err
	}
	if d.ForbidInclude, err = degreeSet(c.ForbidInclude); err != nil {
		return nil, err
	}
	if d.AvoidVariants, err = parseAll(c.AvoidVariants, theory.ParseVariant); err != nil {
		return nil, err
	}
	return d, nil
}

// Catalog is an immutable set of presets addressed by name.
type Catalog struct {
	byName map[string]Preset
}

type document struct {
	Presets []Preset `yaml:"presets"`
}

// Load decodes a presets document. Names must be unique and every preset
// must apply cleanly to default options.
func Load(r io.Reader) (*Catalog, error) {
	var doc document
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to decode presets: %w", err)
	}
	c := &Catalog{byName: make(map[string]Preset, len(doc.Presets))}
	for _, p := range doc.Presets {
		if p.Name == "" {
			return nil, errors.New("preset without a name")
		}
		if _, dup := c.byName[p.Name]; dup {
			return nil, fmt.Errorf("duplicate preset %q", p.Name)
		}
		opts := composer.DefaultOptions(0)
		if err := p.Apply(&opts); err != nil {
			return nil, err
		}
		if _, err := p.Voicing.Options(); err != nil {
			return nil, fmt.Errorf("preset %q voicing: %w", p.Name, err)
		}
		c.byName[p.Name] = p
	}
	return c, nil
}

// Default returns the embedded presets.
func Default() (*Catalog, error) { return Load(bytes.NewReader(embedded.PresetsYAML)) }

// LoadWithOverrides reads the embedded presets and, when path is non-empty,
// layers the presets in path over them by name.
func LoadWithOverrides(path string) (*Catalog, error) {
	base, err := Default()
	if err != nil {
		return nil, err
	}
	if path == "" {
		return base, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open presets file: %w", err)
	}
	defer f.Close()
	extra, err := Load(f)
	if err != nil {
		return nil, err
	}
	for name, p := range extra.byName {
		base.byName[name] = p
	}
	return base, nil
}

func (c *Catalog) Get(name string) (Preset, error) {
	p, ok := c.byName[name]
	if !ok {
		return Preset{}, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return p, nil
}

// List returns presets sorted by name.
func (c *Catalog) List() []Preset {
	out := make([]Preset, 0, len(c.byName))
	for _, p := range c.byName {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
