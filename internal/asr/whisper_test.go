package asr

import (
	"testing"

	"clipcap/internal/caption"

	"github.com/stretchr/testify/assert"
)

func TestParseTranscript_WhisperCppFormat(t *testing.T) {
	data := []byte(`{
		"transcription": [
			{"text": " hello world", "offsets": {"from": 0, "to": 1000}},
			{"text": " again", "offsets": {"from": 1200, "to": 1700}}
		]
	}`)

	tokens, err := ParseTranscript(data)

	assert.NoError(t, err)
	assert.Len(t, tokens, 3)

	assert.Equal(t, "hello", tokens[0].Text)
	assert.InDelta(t, 0.0, tokens[0].StartSec, 1e-9)
	assert.InDelta(t, 0.5, tokens[0].EndSec, 1e-9)

	assert.Equal(t, "world", tokens[1].Text)
	assert.InDelta(t, 0.5, tokens[1].StartSec, 1e-9)
	assert.InDelta(t, 1.0, tokens[1].EndSec, 1e-9)

	assert.Equal(t, "again", tokens[2].Text)
	assert.InDelta(t, 1.2, tokens[2].StartSec, 1e-9)
	assert.InDelta(t, 1.7, tokens[2].EndSec, 1e-9)
}

func TestParseTranscript_OpenAIFormat(t *testing.T) {
	data := []byte(`{
		"segments": [
			{
				"text": "hello world",
				"start": 0.0,
				"end": 1.0,
				"words": [
					{"word": " hello", "start": 0.0, "end": 0.4, "probability": 0.98},
					{"word": " world", "start": 0.45, "end": 1.0, "probability": 0.91}
				]
			}
		]
	}`)

	tokens, err := ParseTranscript(data)

	assert.NoError(t, err)
	assert.Len(t, tokens, 2)
	assert.Equal(t, "hello", tokens[0].Text)
	assert.InDelta(t, 0.98, tokens[0].Confidence, 1e-9)
	assert.InDelta(t, 0.45, tokens[1].StartSec, 1e-9)
}

func TestParseTranscript_SkipsEmptySegments(t *testing.T) {
	data := []byte(`{
		"transcription": [
			{"text": "   ", "offsets": {"from": 0, "to": 500}},
			{"text": " ok", "offsets": {"from": 500, "to": 1000}}
		]
	}`)

	tokens, err := ParseTranscript(data)

	assert.NoError(t, err)
	assert.Len(t, tokens, 1)
	assert.Equal(t, "ok", tokens[0].Text)
}

func TestParseTranscript_UnknownFormat(t *testing.T) {
	_, err := ParseTranscript([]byte(`{"nothing": true}`))

	assert.ErrorIs(t, err, caption.ErrExternalStageFailed)
}

func TestParseTranscript_InvalidJSON(t *testing.T) {
	_, err := ParseTranscript([]byte(`not json`))

	assert.ErrorIs(t, err, caption.ErrExternalStageFailed)
}
