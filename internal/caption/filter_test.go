package caption

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func tok(text string, start, end float64) WordToken {
	return WordToken{Text: text, StartSec: start, EndSec: end, Confidence: 1.0}
}

func texts(tokens []WordToken) []string {
	out := make([]string, len(tokens))
	for i, t := range tokens {
		out[i] = t.Text
	}
	return out
}

func TestFilterTokens_PreservesLengthAndOrder(t *testing.T) {
	input := []WordToken{
		tok("um", 0.0, 0.2),
		tok("the", 0.2, 0.3),
		tok("cat", 0.3, 0.7),
		tok("sat", 0.7, 1.1),
		tok("quickly", 1.1, 1.6),
	}

	out := FilterTokens(input, false)

	assert.Len(t, out, len(input))
	assert.Equal(t, texts(input), texts(out))
}

func TestFilterTokens_DoesNotMutateInput(t *testing.T) {
	input := []WordToken{
		tok("the", 0.0, 0.1),
		tok("cat", 0.1, 0.5),
		tok("sat", 0.5, 0.9),
	}
	original := make([]WordToken, len(input))
	copy(original, input)

	FilterTokens(input, false)

	assert.Equal(t, original, input)
}

func TestFilterTokens_FlagsFillerCandidates(t *testing.T) {
	out := FilterTokens([]WordToken{
		tok("the", 0.0, 0.05),
		tok("cat", 0.06, 0.40),
		tok("sat", 0.42, 0.80),
	}, false)

	assert.True(t, out[0].IsFillerCandidate)
	assert.False(t, out[0].Active)
	assert.Equal(t, POSArticle, out[0].PartOfSpeech)

	assert.False(t, out[1].IsFillerCandidate)
	assert.True(t, out[1].Active)
	assert.False(t, out[2].IsFillerCandidate)
	assert.True(t, out[2].Active)
}

func TestFilterTokens_ShortPhraseKeepsFunctionWords(t *testing.T) {
	// Two-word phrase: "the" carries the meaning and stays active.
	out := FilterTokens([]WordToken{
		tok("the", 0.0, 0.3),
		tok("end", 0.3, 0.8),
	}, false)

	assert.False(t, out[0].IsFillerCandidate)
	assert.True(t, out[0].Active)
}

func TestFilterTokens_PauseSplitsPhrases(t *testing.T) {
	// "the one" sits alone after a long pause and forms its own short phrase.
	out := FilterTokens([]WordToken{
		tok("she", 0.0, 0.4),
		tok("was", 0.4, 0.8),
		tok("there", 0.8, 1.2),
		tok("the", 2.0, 2.3),
		tok("one", 2.3, 2.8),
	}, false)

	// "was" is auxiliary inside a three-word phrase.
	assert.True(t, out[1].IsFillerCandidate)
	// "the" after the pause belongs to a two-word phrase.
	assert.False(t, out[3].IsFillerCandidate)
	assert.True(t, out[3].Active)
}

func TestFilterTokens_IdiomNeighborhoodStaysActive(t *testing.T) {
	out := FilterTokens([]WordToken{
		tok("thats", 0.0, 0.4),
		tok("a", 0.4, 0.5),
		tok("lot", 0.5, 0.9),
		tok("better", 0.9, 1.4),
	}, false)

	for i, token := range out {
		assert.False(t, token.IsFillerCandidate, "token %d %q", i, token.Text)
		assert.True(t, token.Active, "token %d %q", i, token.Text)
	}
}

func TestFilterTokens_InterjectionInLongPhraseIsFiller(t *testing.T) {
	out := FilterTokens([]WordToken{
		tok("um", 0.0, 0.2),
		tok("lets", 0.2, 0.6),
		tok("start", 0.6, 1.1),
		tok("today", 1.1, 1.6),
	}, true)

	assert.True(t, out[0].IsFillerCandidate)
	assert.False(t, out[0].Active)
	assert.True(t, out[1].Active)
}

func TestFilterTokens_Empty(t *testing.T) {
	assert.Empty(t, FilterTokens(nil, false))
}
