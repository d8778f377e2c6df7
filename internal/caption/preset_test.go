package caption

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePresetFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "presets.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const validPresetYAML = `presets:
  - id: highlight-bold
    name: Highlight Bold
    fontFamily: Inter
    fontSizePx: 48
    fillColor: "&H00FFFFFF"
    accentColor: "&H0000D7FF"
    hasOutline: true
    activeStyleId: Active
    inactiveStyleId: Inactive
  - id: clean-minimal
    name: Clean Minimal
    fontFamily: Helvetica
    fontSizePx: 42
    fillColor: "&H00FFFFFF"
    accentColor: "&H00FFFFFF"
    hasOutline: false
    activeStyleId: CleanActive
    inactiveStyleId: CleanInactive
`

func TestLoadPresets(t *testing.T) {
	path := writePresetFile(t, validPresetYAML)

	table, err := LoadPresets(path)

	require.NoError(t, err)
	assert.Equal(t, []string{"highlight-bold", "clean-minimal"}, table.IDs())

	preset, err := table.Get("highlight-bold")
	require.NoError(t, err)
	assert.Equal(t, "Inter", preset.FontFamily)
	assert.Equal(t, 48, preset.FontSizePx)
	assert.True(t, preset.HasOutline)
	assert.Equal(t, "Active", preset.ActiveStyleID)
}

func TestLoadPresets_UnknownID(t *testing.T) {
	table, err := LoadPresets(writePresetFile(t, validPresetYAML))
	require.NoError(t, err)

	_, err = table.Get("nope")

	assert.ErrorIs(t, err, ErrConfigurationInvalid)
}

func TestLoadPresets_Empty(t *testing.T) {
	_, err := LoadPresets(writePresetFile(t, "presets: []\n"))

	assert.ErrorIs(t, err, ErrConfigurationInvalid)
}

func TestLoadPresets_DuplicateID(t *testing.T) {
	content := `presets:
  - id: dup
    activeStyleId: A
    inactiveStyleId: B
  - id: dup
    activeStyleId: A
    inactiveStyleId: B
`
	_, err := LoadPresets(writePresetFile(t, content))

	assert.ErrorIs(t, err, ErrConfigurationInvalid)
}

func TestLoadPresets_MissingStyleIDs(t *testing.T) {
	content := `presets:
  - id: broken
    activeStyleId: A
`
	_, err := LoadPresets(writePresetFile(t, content))

	assert.ErrorIs(t, err, ErrConfigurationInvalid)
}

func TestWithFontSize(t *testing.T) {
	table, err := LoadPresets(writePresetFile(t, validPresetYAML))
	require.NoError(t, err)

	preset, err := table.Get("highlight-bold")
	require.NoError(t, err)

	sized := preset.WithFontSize(64)
	assert.Equal(t, 64, sized.FontSizePx)
	assert.Equal(t, 48, preset.FontSizePx)

	unchanged := preset.WithFontSize(0)
	assert.Equal(t, 48, unchanged.FontSizePx)
}
