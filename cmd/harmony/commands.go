package main

import (
	"encoding/json"
	"io"
	"maps"
	"slices"

	"github.com/spf13/cobra"

	"github.com/Conceptual-Machines/harmony-api/internal/config"
	"github.com/Conceptual-Machines/harmony-api/internal/presets"
	"github.com/Conceptual-Machines/harmony-api/internal/services"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "harmony",
		Short: "Generate and analyze key, mode and chord progressions",
		Long: `harmony runs the progression search locally, with the same presets
and limits as the HTTP API, and answers theory queries about single chords.`,
		SilenceUsage: true,
	}
	root.AddCommand(newGenerateCmd(), newAnalyzeCmd(), newPresetsCmd())
	return root
}

// newGenerationService builds the service from the environment config.
// The CLI never writes to the run log.
func newGenerationService() (*services.GenerationService, error) {
	cfg := config.Load()
	catalog, err := presets.LoadWithOverrides(cfg.PresetsFile)
	if err != nil {
		return nil, err
	}
	return services.NewGenerationService(services.GenerationConfigFrom(cfg), services.GenerationDeps{Presets: catalog})
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func sortedKeys[V any](m map[string]V) []string {
	return slices.Sorted(maps.Keys(m))
}
