package caption

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func testPreset() *StylePreset {
	return &StylePreset{
		ID:              "highlight-bold",
		Name:            "Highlight Bold",
		FontFamily:      "Inter",
		FontSizePx:      48,
		FillColor:       "&H00FFFFFF",
		AccentColor:     "&H0000D7FF",
		HasOutline:      true,
		ActiveStyleID:   "Active",
		InactiveStyleID: "Inactive",
	}
}

func wordOpts(showFiller bool) JobOptions {
	return JobOptions{
		CaptionMode:     ModeWords,
		ShowFillerWords: showFiller,
		PresetID:        "highlight-bold",
	}
}

func TestGenerateCaptionTrack_WordsHidesFiller(t *testing.T) {
	tokens := []WordToken{
		tok("the", 0.0, 0.05),
		tok("cat", 0.06, 0.40),
		tok("sat", 0.42, 0.80),
	}

	events, err := GenerateCaptionTrack(tokens, wordOpts(false), testPreset(), 5.0)

	assert.NoError(t, err)
	assert.Len(t, events, 2)
	assert.Equal(t, "cat", events[0].DisplayText)
	assert.Equal(t, "sat", events[1].DisplayText)

	for i, ev := range events {
		assert.GreaterOrEqual(t, ev.EndSec-ev.StartSec, MinTokenDurationSec-timeEps, "event %d", i)
	}
	assert.GreaterOrEqual(t, events[1].StartSec, events[0].EndSec-timeEps)
}

func TestGenerateCaptionTrack_WordsShowsFiller(t *testing.T) {
	tokens := []WordToken{
		tok("the", 0.0, 0.05),
		tok("cat", 0.06, 0.40),
		tok("sat", 0.42, 0.80),
	}

	events, err := GenerateCaptionTrack(tokens, wordOpts(true), testPreset(), 5.0)

	assert.NoError(t, err)
	assert.Len(t, events, 3)

	assert.Equal(t, "the", events[0].DisplayText)
	assert.Equal(t, "Inactive", events[0].StyleID)
	assert.False(t, events[0].IsEmphasized)

	assert.Equal(t, "Active", events[1].StyleID)
	assert.True(t, events[1].IsEmphasized)
	assert.Equal(t, "Active", events[2].StyleID)
	assert.True(t, events[2].IsEmphasized)
}

func TestGenerateCaptionTrack_SentencesSplitOnPause(t *testing.T) {
	tokens := []WordToken{
		tok("hello", 0.0, 0.5),
		tok("world", 0.5, 1.0),
		tok("again", 1.7, 2.3),
		tok("friend", 2.3, 2.9),
	}
	opts := JobOptions{CaptionMode: ModeSentences, PresetID: "highlight-bold"}

	events, err := GenerateCaptionTrack(tokens, opts, testPreset(), 5.0)

	assert.NoError(t, err)
	assert.Len(t, events, 2)
	assert.Equal(t, "hello world", events[0].DisplayText)
	assert.Equal(t, "again friend", events[1].DisplayText)
	assert.Equal(t, "Active", events[0].StyleID)
	assert.False(t, events[0].IsEmphasized)
}

func TestGenerateCaptionTrack_SentencesSplitOnPunctuation(t *testing.T) {
	tokens := []WordToken{
		tok("Nice", 0.0, 0.5),
		tok("day.", 0.5, 1.0),
		tok("Lets", 1.0, 1.5),
		tok("go!", 1.5, 2.0),
	}
	opts := JobOptions{CaptionMode: ModeSentences, PresetID: "highlight-bold"}

	events, err := GenerateCaptionTrack(tokens, opts, testPreset(), 5.0)

	assert.NoError(t, err)
	assert.Len(t, events, 2)
	assert.Equal(t, "Nice day.", events[0].DisplayText)
	assert.Equal(t, "Lets go!", events[1].DisplayText)
}

func TestBuildTrack_SlotFlipsAfterEightEvents(t *testing.T) {
	var tokens []WordToken
	for i := 0; i < 9; i++ {
		start := float64(i) * 0.5
		token := tok("word", start, start+0.5)
		token.Active = true
		tokens = append(tokens, token)
	}

	events, err := BuildTrack(tokens, wordOpts(false), testPreset())

	assert.NoError(t, err)
	assert.Len(t, events, 9)
	for i := 0; i < 8; i++ {
		assert.Equal(t, SlotPrimary, events[i].VerticalSlot, "event %d", i)
	}
	assert.Equal(t, SlotAlternate, events[8].VerticalSlot)
}

func TestGenerateCaptionTrack_RoundTripText(t *testing.T) {
	tokens := []WordToken{
		tok("we", 0.0, 0.5),
		tok("should", 0.5, 1.0),
		tok("ship", 1.0, 1.5),
		tok("it", 1.5, 2.0),
	}

	events, err := GenerateCaptionTrack(tokens, wordOpts(true), testPreset(), 5.0)

	assert.NoError(t, err)
	assert.Len(t, events, len(tokens))
	for i, ev := range events {
		assert.Equal(t, tokens[i].Text, ev.DisplayText)
	}
}

func TestGenerateCaptionTrack_DoesNotMutateInput(t *testing.T) {
	tokens := []WordToken{
		tok("the", 0.0, 0.05),
		tok("cat", 0.06, 0.40),
	}
	original := make([]WordToken, len(tokens))
	copy(original, tokens)

	_, err := GenerateCaptionTrack(tokens, wordOpts(false), testPreset(), 5.0)

	assert.NoError(t, err)
	assert.Equal(t, original, tokens)
}

func TestGenerateCaptionTrack_EmptyTranscript(t *testing.T) {
	_, err := GenerateCaptionTrack(nil, wordOpts(false), testPreset(), 5.0)

	assert.ErrorIs(t, err, ErrInputMalformed)
}

func TestGenerateCaptionTrack_UnorderedTokens(t *testing.T) {
	tokens := []WordToken{
		tok("second", 1.0, 1.5),
		tok("first", 0.0, 0.5),
	}

	_, err := GenerateCaptionTrack(tokens, wordOpts(false), testPreset(), 5.0)

	assert.ErrorIs(t, err, ErrInputMalformed)
}

func TestGenerateCaptionTrack_NonPositiveDuration(t *testing.T) {
	tokens := []WordToken{tok("stuck", 1.0, 1.0)}

	_, err := GenerateCaptionTrack(tokens, wordOpts(false), testPreset(), 5.0)

	assert.ErrorIs(t, err, ErrInputMalformed)
}

func TestGenerateCaptionTrack_UnsupportedMode(t *testing.T) {
	opts := JobOptions{CaptionMode: "paragraphs", PresetID: "highlight-bold"}

	_, err := GenerateCaptionTrack([]WordToken{tok("hi", 0, 0.5)}, opts, testPreset(), 5.0)

	assert.ErrorIs(t, err, ErrConfigurationInvalid)
}

func TestGenerateCaptionTrack_MissingPresetID(t *testing.T) {
	opts := JobOptions{CaptionMode: ModeWords}

	_, err := GenerateCaptionTrack([]WordToken{tok("hi", 0, 0.5)}, opts, testPreset(), 5.0)

	assert.ErrorIs(t, err, ErrConfigurationInvalid)
}

func TestBuildTrack_NilPreset(t *testing.T) {
	_, err := BuildTrack([]WordToken{tok("hi", 0, 0.5)}, wordOpts(false), nil)

	assert.ErrorIs(t, err, ErrConfigurationInvalid)
}

func TestResolveStyle(t *testing.T) {
	preset := testPreset()

	active := WordToken{Text: "cat", Active: true}
	inactive := WordToken{Text: "the", Active: false}

	styleID, emphasized := ResolveStyle(preset, active, ModeWords)
	assert.Equal(t, "Active", styleID)
	assert.True(t, emphasized)

	styleID, emphasized = ResolveStyle(preset, inactive, ModeWords)
	assert.Equal(t, "Inactive", styleID)
	assert.False(t, emphasized)

	styleID, emphasized = ResolveStyle(preset, inactive, ModeSentences)
	assert.Equal(t, "Active", styleID)
	assert.False(t, emphasized)
}
