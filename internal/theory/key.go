package theory

import "fmt"

// Key is a tonic plus a main mode type. It exposes the seven substitute
// modes (same tonic, every mode type), the seven relative modes (the main
// collection rotated onto each degree) and the SubV modes.
type Key struct {
	tonic       BaseNote
	main        ModeType
	substitutes [7]*Mode
	relatives   [7]*Mode
	subv        [7]*Mode
	subvErr     [7]error
}

type keyKey struct {
	tonic BaseNote
	main  ModeType
}

func NewKey(tonic BaseNote, main ModeType) (*Key, error) {
	k := keyKey{tonic, main}
	if cached, ok := keyCache.Get(k); ok {
		return cached, nil
	}
	key := &Key{tonic: tonic, main: main}
	for _, mt := range AllModeTypes {
		m, err := NewMode(tonic, mt)
		if err != nil {
			return nil, fmt.Errorf("key %s %s: %w", tonic, main, err)
		}
		key.substitutes[mt] = m
	}
	mainBase := key.MainBase()
	for _, d := range AllDegrees {
		m, err := NewMode(mainBase.Note(d), DegreeMode(main, d))
		if err != nil {
			return nil, fmt.Errorf("key %s %s relative %s: %w", tonic, main, d, err)
		}
		key.relatives[d.index()] = m
	}
	for _, d := range AllDegrees {
		root, err := mainBase.Note(d).Add(Min2)
		if err == nil {
			key.subv[d.index()], err = NewMode(root, Mixolydian)
		}
		key.subvErr[d.index()] = err
	}
	keyCache.Add(k, key)
	return key, nil
}

func (k *Key) Tonic() BaseNote { return k.tonic }
func (k *Key) MainType() ModeType { return k.main }

// Main is the mode named by the key.
func (k *Key) Main() *Mode { return k.substitutes[k.main] }

// MainBase is the base collection of the main mode.
func (k *Key) MainBase() Scale { return k.substitutes[k.main].scales[Base] }

func (k *Key) Substitute(mt ModeType) *Mode { return k.substitutes[mt] }

func (k *Key) Relative(d Degree) *Mode { return k.relatives[d.index()] }

// SubV is the Mixolydian mode a minor second above degree d of the main
// collection. It fails when that root cannot be spelled.
func (k *Key) SubV(d Degree) (*Mode, error) {
	if err := k.subvErr[d.index()]; err != nil {
		return nil, fmt.Errorf("subV of %s in %s: %w", d, k, err)
	}
	return k.subv[d.index()], nil
}

// Locate reports where m sits in the key: the relative degree holding it
// (NoDegree if none) and whether it is one of the substitute modes.
func (k *Key) Locate(m *Mode) (relative Degree, substitute bool) {
	if m == nil {
		return NoDegree, false
	}
	substitute = k.substitutes[m.Type()].Equal(m)
	if d, ok := k.MainBase().DegreeOf(m.Tonic()); ok && k.relatives[d.index()].Equal(m) {
		relative = d
	}
	return relative, substitute
}

func (k *Key) Equal(o *Key) bool {
	if k == nil || o == nil {
		return k == o
	}
	return k.tonic == o.tonic && k.main == o.main
}

func (k *Key) String() string { return k.tonic.String() + "-" + k.main.String() }
