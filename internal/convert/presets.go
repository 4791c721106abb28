package convert

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Preset is a named bundle of conversion constraints the frontend can offer
// as a one-click choice.
type Preset struct {
	Name           string  `yaml:"name" json:"name"`
	Description    string  `yaml:"description,omitempty" json:"description,omitempty"`
	SizeLimitMB    float64 `yaml:"sizeLimitMB" json:"sizeLimitMB"`
	MaxDimensionPx int     `yaml:"maxDimensionPx" json:"maxDimensionPx"`
}

type presetFile struct {
	Presets []Preset `yaml:"presets"`
}

// DefaultPresets returns the built-in presets used when no preset file
// exists next to the executable.
func DefaultPresets() []Preset {
	return []Preset{
		{Name: "web", Description: "Web delivery", SizeLimitMB: 1, MaxDimensionPx: 1920},
		{Name: "thumbnail", Description: "Small preview", SizeLimitMB: 0.2, MaxDimensionPx: 480},
		{Name: "archive", Description: "High quality", SizeLimitMB: 5, MaxDimensionPx: 4096},
	}
}

// LoadPresets reads presets from a YAML file. A missing file yields the
// defaults; a malformed or empty file is an error so a typo doesn't silently
// drop all presets.
func LoadPresets(path string) ([]Preset, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return DefaultPresets(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading presets file: %w", err)
	}

	var pf presetFile
	if err := yaml.Unmarshal(data, &pf); err != nil {
		return nil, fmt.Errorf("parsing presets file: %w", err)
	}
	if len(pf.Presets) == 0 {
		return nil, fmt.Errorf("presets file %s defines no presets", path)
	}

	for i, p := range pf.Presets {
		if p.Name == "" {
			return nil, fmt.Errorf("preset %d has no name", i)
		}
	}
	return pf.Presets, nil
}
