package embedded

import (
	_ "embed"
)

// Default generation presets
//
//go:embed data/presets.yaml
var PresetsYAML []byte

// Linear window model weights used by the linear_window scorer
//
//go:embed data/window_model.yaml
var WindowModelYAML []byte
