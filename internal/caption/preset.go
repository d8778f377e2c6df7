package caption

import (
	"fmt"

	"github.com/ilyakaznacheev/cleanenv"
)

// PresetTable holds the style presets loaded from static configuration.
// It is read-only after LoadPresets and safe for concurrent use.
type PresetTable struct {
	presets map[string]*StylePreset
	order   []string
}

type presetFile struct {
	Presets []StylePreset `yaml:"presets"`
}

// LoadPresets reads the preset table from a YAML file. Every preset needs an
// id and both style ids; duplicates are rejected.
func LoadPresets(path string) (*PresetTable, error) {
	var file presetFile
	if err := cleanenv.ReadConfig(path, &file); err != nil {
		return nil, fmt.Errorf("read presets %s: %w", path, err)
	}
	if len(file.Presets) == 0 {
		return nil, fmt.Errorf("%w: preset file %s contains no presets", ErrConfigurationInvalid, path)
	}

	table := &PresetTable{presets: make(map[string]*StylePreset, len(file.Presets))}
	for i := range file.Presets {
		p := file.Presets[i]
		if p.ID == "" || p.ActiveStyleID == "" || p.InactiveStyleID == "" {
			return nil, fmt.Errorf("%w: preset %d is missing id or style ids", ErrConfigurationInvalid, i)
		}
		if _, exists := table.presets[p.ID]; exists {
			return nil, fmt.Errorf("%w: duplicate preset id %q", ErrConfigurationInvalid, p.ID)
		}
		table.presets[p.ID] = &file.Presets[i]
		table.order = append(table.order, p.ID)
	}
	return table, nil
}

// Get returns the preset for id. Unknown ids are a configuration error.
func (t *PresetTable) Get(id string) (*StylePreset, error) {
	preset, ok := t.presets[id]
	if !ok {
		return nil, fmt.Errorf("%w: unknown preset id %q", ErrConfigurationInvalid, id)
	}
	return preset, nil
}

// IDs returns the preset ids in file order.
func (t *PresetTable) IDs() []string {
	return t.order
}

// WithFontSize returns a copy of the preset with the job's font size applied.
// The preset table itself is never mutated mid-pipeline.
func (p *StylePreset) WithFontSize(sizePx int) *StylePreset {
	out := *p
	if sizePx > 0 {
		out.FontSizePx = sizePx
	}
	return &out
}
