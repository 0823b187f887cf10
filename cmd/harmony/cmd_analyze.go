package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/Conceptual-Machines/harmony-api/internal/models"
	"github.com/Conceptual-Machines/harmony-api/internal/services"
)

type analyzeOptions struct {
	tonic       string
	mainMode    string
	access      string
	role        string
	degree      string
	variant     string
	composition []string
}

func (o *analyzeOptions) request(withChord bool) models.TheoryRequest {
	req := models.TheoryRequest{
		Key:  models.KeySpec{Tonic: o.tonic, Main: o.mainMode},
		Mode: models.ModeSpec{Access: o.access, Role: o.role},
	}
	if withChord {
		req.Chord = &models.ChordSpec{Degree: o.degree, Variant: o.variant, Composition: o.composition}
	}
	return req
}

func newAnalyzeCmd() *cobra.Command {
	o := &analyzeOptions{}
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Explain a chord, a mode or a chord in context",
		Example: `  harmony analyze chord-in-key --tonic C --main Ionian --access Relative --role V --degree I --composition I,III,V,VII
  harmony analyze mode-in-key --tonic C --main Ionian --access Substitute --role Dorian`,
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&o.tonic, "tonic", "C", "key tonic (natural letter)")
	pf.StringVar(&o.mainMode, "main", "Ionian", "key main mode type")
	pf.StringVar(&o.access, "access", "Relative", "mode access: Relative, Substitute or SubV")
	pf.StringVar(&o.role, "role", "I", "mode role: a degree, or a mode type for Substitute")
	pf.StringVar(&o.degree, "degree", "I", "chord root degree within the mode")
	pf.StringVar(&o.variant, "variant", "", "scale variant (default Base)")
	pf.StringSliceVar(&o.composition, "composition", nil, "chord tones as degrees from the root (default triad)")

	theory := services.NewTheoryService()
	sub := []struct {
		use, short string
		withChord  bool
		fn         func(models.TheoryRequest) (*models.Analysis, error)
	}{
		{"chord", "Chord facts and resolution tendencies", true, theory.Chord},
		{"chord-in-mode", "A chord's function inside its mode", true, theory.ChordInMode},
		{"mode-in-key", "A mode's relation to its key", false, theory.ModeInKey},
		{"chord-in-key", "A chord's function inside the key", true, theory.ChordInKey},
	}
	for _, s := range sub {
		cmd.AddCommand(&cobra.Command{
			Use:   s.use,
			Short: s.short,
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				a, err := s.fn(o.request(s.withChord))
				if errors.Is(err, services.ErrNoHits) {
					return writeJSON(cmd.OutOrStdout(), models.TheoryResponse{Error: err.Error()})
				}
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), models.TheoryResponse{OK: true, Grouped: a})
			},
		})
	}
	return cmd
}
