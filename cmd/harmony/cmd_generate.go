package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Conceptual-Machines/harmony-api/internal/models"
)

type generateOptions struct {
	req     models.GenerationRequest
	seed    int64
	keys    []string
	asJSON  bool
	verbose bool
}

func newGenerateCmd() *cobra.Command {
	o := &generateOptions{}
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Search for one progression and print its steps",
		Example: `  harmony generate --length 8 --seed 42
  harmony generate --preset classic_cadence --json
  harmony generate --length 4 --key C-Ionian --key A-Aeolian --cadence`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Flags().Changed("seed") {
				o.req.Seed = &o.seed
			}
			keys, err := parseKeySpecs(o.keys)
			if err != nil {
				return err
			}
			o.req.Keys = keys
			o.req.IncludeAudit = o.verbose

			svc, err := newGenerationService()
			if err != nil {
				return err
			}
			resp, err := svc.Generate(cmd.Context(), o.req)
			if err != nil {
				return err
			}
			if o.asJSON {
				return writeJSON(cmd.OutOrStdout(), resp)
			}
			return printSteps(cmd.OutOrStdout(), resp)
		},
	}

	f := cmd.Flags()
	f.StringVar(&o.req.Preset, "preset", "", "named preset to start from")
	f.IntVarP(&o.req.Length, "length", "n", 0, "number of steps")
	f.Int64Var(&o.seed, "seed", 0, "random seed; omit for a fresh draw")
	f.IntVar(&o.req.BeamWidth, "beam", 0, "beam width")
	f.IntVar(&o.req.StageBudget, "budget", 0, "candidates kept per stage on the first attempt")
	f.IntVar(&o.req.MaxAttempts, "attempts", 0, "budgeted attempts before the full scan")
	f.IntVar(&o.req.BudgetGrowth, "growth", 0, "budget multiplier between attempts")
	f.BoolVar(&o.req.PerStepKey, "per-step-key", false, "choose a key at every step")
	f.BoolVar(&o.req.NoFallback, "no-fallback", false, "fail instead of running the unbounded scan")
	f.BoolVar(&o.req.Cadence, "cadence", false, "end on subdominant, dominant, tonic")
	f.BoolVar(&o.req.IncludeSubV, "subv", false, "allow tritone-substitute modes")
	f.StringSliceVar(&o.keys, "key", nil, "candidate key as Tonic-Main, repeatable (e.g. C-Ionian)")
	f.StringSliceVar(&o.req.Scorers, "scorer", nil, "scorer name, repeatable")
	f.StringVar(&o.req.Spread, "spread", "", "voicing spread: tight, medium or wide")
	f.IntVar(&o.req.Octave, "octave", 0, "voicing octave")
	f.BoolVar(&o.asJSON, "json", false, "print the full response as JSON")
	f.BoolVarP(&o.verbose, "verbose", "v", false, "include rejection counts")
	return cmd
}

func parseKeySpecs(raw []string) ([]models.KeySpec, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	out := make([]models.KeySpec, 0, len(raw))
	for _, s := range raw {
		tonic, main, ok := strings.Cut(s, "-")
		if !ok || tonic == "" || main == "" {
			return nil, fmt.Errorf("key %q must look like C-Ionian", s)
		}
		out = append(out, models.KeySpec{Tonic: tonic, Main: main})
	}
	return out, nil
}

func printSteps(w io.Writer, resp *models.GenerationResponse) error {
	fmt.Fprintf(w, "seed %d, attempts %d, budget %d", resp.Seed, resp.Attempts, resp.Budget)
	if resp.Fallback {
		fmt.Fprint(w, " (full scan)")
	}
	fmt.Fprintf(w, ", %dms\n\n", resp.DurationMS)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tKEY\tMODE\tCHORD\tROOT\tNOTES")
	for _, s := range resp.Steps {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n",
			s.Index+1, s.Key, s.ModeName, s.ChordName, s.AbsoluteRoot, strings.Join(s.Notes, " "))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if len(resp.Rejections) > 0 {
		fmt.Fprintln(w, "\nrejections:")
		for _, code := range sortedKeys(resp.Rejections) {
			fmt.Fprintf(w, "  %-28s %d\n", code, resp.Rejections[code])
		}
	}
	return nil
}
