package caption

// VerticalSlot is the caption's vertical placement. Placement alternates
// between the two slots as an anti-burn-in measure on fixed displays.
type VerticalSlot string

const (
	SlotPrimary   VerticalSlot = "primary"
	SlotAlternate VerticalSlot = "alternate"
)

// slotFlipEvery is the number of consecutive emitted events sharing one
// vertical slot before placement flips.
const slotFlipEvery = 8

// StylePreset is the typed render style, loaded once per job and shared by
// reference across all of the job's events.
type StylePreset struct {
	ID              string `yaml:"id" json:"id"`
	Name            string `yaml:"name" json:"name"`
	FontFamily      string `yaml:"fontFamily" json:"fontFamily"`
	FontSizePx      int    `yaml:"fontSizePx" json:"fontSizePx"`
	FillColor       string `yaml:"fillColor" json:"fillColor"`
	AccentColor     string `yaml:"accentColor" json:"accentColor"`
	HasOutline      bool   `yaml:"hasOutline" json:"hasOutline"`
	Gradient        string `yaml:"gradient" json:"gradient"`
	ActiveStyleID   string `yaml:"activeStyleId" json:"activeStyleId"`
	InactiveStyleID string `yaml:"inactiveStyleId" json:"inactiveStyleId"`
}

// ResolveStyle maps a token's filter state onto concrete render attributes.
// In sentence mode every event takes the preset's active style without
// emphasis; in word mode active tokens are emphasized with the active style
// and de-emphasized tokens take the inactive style.
func ResolveStyle(preset *StylePreset, token WordToken, mode CaptionMode) (styleID string, emphasized bool) {
	if mode == ModeSentences {
		return preset.ActiveStyleID, false
	}
	if token.Active {
		return preset.ActiveStyleID, true
	}
	return preset.InactiveStyleID, false
}

// slotTracker assigns vertical slots to emitted events. The counter runs
// across the whole caption track, not per sentence.
type slotTracker struct {
	emitted int
}

func (s *slotTracker) next() VerticalSlot {
	slot := SlotPrimary
	if (s.emitted/slotFlipEvery)%2 == 1 {
		slot = SlotAlternate
	}
	s.emitted++
	return slot
}
