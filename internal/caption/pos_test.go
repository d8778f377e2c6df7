package caption

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyPartOfSpeech(t *testing.T) {
	cases := []struct {
		word     string
		expected PartOfSpeech
	}{
		{"the", POSArticle},
		{"a", POSArticle},
		{"is", POSAuxiliary},
		{"would", POSAuxiliary},
		{"um", POSInterjection},
		{"yeah", POSInterjection},
		{"and", POSConjunction},
		{"they", POSPronoun},
		{"good", POSAdjective},
		{"quickly", POSAdverb},
		{"running", POSVerb},
		{"jumped", POSVerb},
		{"cat", POSOther},
		{"", POSOther},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.expected, ClassifyPartOfSpeech(tc.word), "word %q", tc.word)
	}
}

func TestClassifyPartOfSpeech_IgnoresCaseAndPunctuation(t *testing.T) {
	assert.Equal(t, POSArticle, ClassifyPartOfSpeech("The"))
	assert.Equal(t, POSArticle, ClassifyPartOfSpeech("the,"))
	assert.Equal(t, POSInterjection, ClassifyPartOfSpeech("Um..."))
}

func TestIsPreserved(t *testing.T) {
	assert.True(t, isPreserved("not"))
	assert.True(t, isPreserved("Why?"))
	assert.True(t, isPreserved("really"))
	assert.False(t, isPreserved("the"))
	assert.False(t, isPreserved("um"))
}
