package caption

import (
	"fmt"
	"strings"
)

// sentencePauseSec is the inter-token pause that splits sentences when the
// transcript carries no sentence-final punctuation, which is common for
// lowercase-only ASR output.
const sentencePauseSec = 0.6

// CaptionEvent is one renderable caption unit: a full sentence in sentence
// mode, or a single word with karaoke timing in word mode. Events are
// immutable once emitted; the active highlight window of a word event equals
// the event's own span.
type CaptionEvent struct {
	StartSec     float64      `json:"startSec"`
	EndSec       float64      `json:"endSec"`
	DisplayText  string       `json:"displayText"`
	StyleID      string       `json:"styleId"`
	IsEmphasized bool         `json:"isEmphasized"`
	VerticalSlot VerticalSlot `json:"verticalSlot"`
}

// BuildTrack assembles styled caption events from filtered, smoothed tokens.
// It never mutates its input; the output is strictly time-ordered and
// non-overlapping within each vertical slot, or an invariant error is
// returned and no partial track is exposed.
func BuildTrack(tokens []WordToken, opts JobOptions, preset *StylePreset) ([]CaptionEvent, error) {
	if preset == nil {
		return nil, fmt.Errorf("%w: nil style preset", ErrConfigurationInvalid)
	}

	var events []CaptionEvent
	if opts.CaptionMode == ModeSentences {
		events = buildSentenceEvents(tokens, preset)
	} else {
		events = buildWordEvents(tokens, opts.ShowFillerWords, preset)
	}

	if err := validateTrack(events); err != nil {
		return nil, err
	}
	return events, nil
}

func buildSentenceEvents(tokens []WordToken, preset *StylePreset) []CaptionEvent {
	var events []CaptionEvent
	slots := &slotTracker{}

	for _, group := range groupSentences(tokens) {
		words := make([]string, len(group))
		for i, tok := range group {
			words[i] = tok.Text
		}
		styleID, emphasized := ResolveStyle(preset, group[0], ModeSentences)
		events = append(events, CaptionEvent{
			StartSec:     group[0].StartSec,
			EndSec:       group[len(group)-1].EndSec,
			DisplayText:  strings.Join(words, " "),
			StyleID:      styleID,
			IsEmphasized: emphasized,
			VerticalSlot: slots.next(),
		})
	}
	return events
}

func buildWordEvents(tokens []WordToken, showFiller bool, preset *StylePreset) []CaptionEvent {
	var events []CaptionEvent
	slots := &slotTracker{}

	for _, tok := range tokens {
		if !tok.Active && !showFiller {
			// Suppressed filler still occupied its time slot during
			// smoothing; it just produces no event.
			continue
		}
		styleID, emphasized := ResolveStyle(preset, tok, ModeWords)
		events = append(events, CaptionEvent{
			StartSec:     tok.StartSec,
			EndSec:       tok.EndSec,
			DisplayText:  tok.Text,
			StyleID:      styleID,
			IsEmphasized: emphasized,
			VerticalSlot: slots.next(),
		})
	}
	return events
}

// groupSentences splits tokens at sentence-final punctuation, or at pauses of
// at least sentencePauseSec when punctuation is absent.
func groupSentences(tokens []WordToken) [][]WordToken {
	var groups [][]WordToken
	start := 0
	for i := range tokens {
		endOfSentence := endsSentence(tokens[i].Text) ||
			i+1 == len(tokens) ||
			tokens[i+1].StartSec-tokens[i].EndSec >= sentencePauseSec
		if !endOfSentence {
			continue
		}
		groups = append(groups, tokens[start:i+1])
		start = i + 1
	}
	return groups
}

func endsSentence(text string) bool {
	trimmed := strings.TrimRight(text, "\"')")
	return strings.HasSuffix(trimmed, ".") ||
		strings.HasSuffix(trimmed, "!") ||
		strings.HasSuffix(trimmed, "?")
}

// validateTrack enforces the output ordering invariant: strictly time-ordered
// events with positive durations, non-overlapping within the same vertical
// slot. Overlap across alternating slots is permitted. A violation here is a
// defect in the upstream stages, not a user error.
func validateTrack(events []CaptionEvent) error {
	lastEnd := map[VerticalSlot]float64{}
	prevStart := -1.0
	for i, ev := range events {
		if ev.EndSec <= ev.StartSec {
			return fmt.Errorf("%w: event %d %q has non-positive duration", ErrInternalInvariant, i, ev.DisplayText)
		}
		if ev.StartSec < prevStart {
			return fmt.Errorf("%w: event %d %q breaks time ordering", ErrInternalInvariant, i, ev.DisplayText)
		}
		if end, ok := lastEnd[ev.VerticalSlot]; ok && ev.StartSec < end {
			return fmt.Errorf("%w: event %d %q overlaps predecessor in %s slot", ErrInternalInvariant, i, ev.DisplayText, ev.VerticalSlot)
		}
		prevStart = ev.StartSec
		lastEnd[ev.VerticalSlot] = ev.EndSec
	}
	return nil
}

// GenerateCaptionTrack is the pure function boundary over the in-core
// stages: filter, smooth, build. Input and options are validated at entry;
// the input slice is never mutated.
func GenerateCaptionTrack(tokens []WordToken, opts JobOptions, preset *StylePreset, clipDurationSec float64) ([]CaptionEvent, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if err := ValidateTokens(tokens); err != nil {
		return nil, err
	}

	working := make([]WordToken, len(tokens))
	copy(working, tokens)

	// Sentence grouping uses every token verbatim; filtering only applies
	// to word mode.
	if opts.CaptionMode == ModeWords {
		working = FilterTokens(working, opts.ShowFillerWords)
	} else {
		for i := range working {
			working[i].Active = true
		}
	}

	working = SmoothTimings(working, clipDurationSec)

	return BuildTrack(working, opts, preset)
}
