package caption

import (
	"clipcap/pkg/logger"

	"go.uber.org/zap"
)

// phrasePauseSec delimits phrases for the short-phrase exception: a run of
// tokens with no pause of at least this length between them counts as one
// phrase. Matches the sentence-split pause used by the builder.
const phrasePauseSec = 0.6

// FilterTokens classifies each token's part of speech and flags filler
// candidates. It returns a sequence of the same length and order as the
// input; no token is ever dropped here. Filler candidates are marked
// Active=false, everything else Active=true. Whether inactive tokens are
// emitted at all is decided by the builder based on showFiller.
//
// A token is a filler candidate iff its part of speech is article,
// auxiliary, or interjection, and it is not rescued by the short-phrase
// or idiom exceptions.
func FilterTokens(tokens []WordToken, showFiller bool) []WordToken {
	if len(tokens) == 0 {
		return tokens
	}

	out := make([]WordToken, len(tokens))
	copy(out, tokens)

	idiomGuard := markIdiomNeighborhoods(out)
	phraseLen := phraseLengths(out)

	fillerCount := 0
	for i := range out {
		out[i].PartOfSpeech = ClassifyPartOfSpeech(out[i].Text)

		filler := isFillerPOS(out[i].PartOfSpeech) &&
			!isPreserved(out[i].Text) &&
			phraseLen[i] > 2 &&
			!idiomGuard[i]

		out[i].IsFillerCandidate = filler
		out[i].Active = !filler
		if filler {
			fillerCount++
		}
	}

	logger.Debug("Word filtering completed",
		zap.Int("tokens", len(out)),
		zap.Int("filler_candidates", fillerCount),
		zap.Bool("show_filler", showFiller))

	return out
}

func isFillerPOS(pos PartOfSpeech) bool {
	return pos == POSArticle || pos == POSAuxiliary || pos == POSInterjection
}

// phraseLengths returns, for each token, the length of the pause-delimited
// phrase it belongs to. Tokens inside a phrase of at most two words are
// never filler ("the one" keeps "the" active).
func phraseLengths(tokens []WordToken) []int {
	lengths := make([]int, len(tokens))
	start := 0
	for i := 1; i <= len(tokens); i++ {
		atBoundary := i == len(tokens) ||
			tokens[i].StartSec-tokens[i-1].EndSec >= phrasePauseSec
		if !atBoundary {
			continue
		}
		for j := start; j < i; j++ {
			lengths[j] = i - start
		}
		start = i
	}
	return lengths
}

// markIdiomNeighborhoods flags every token that is part of a known idiom
// occurrence, plus the tokens directly adjacent to it.
func markIdiomNeighborhoods(tokens []WordToken) []bool {
	guarded := make([]bool, len(tokens))
	for i := 0; i+1 < len(tokens); i++ {
		second, ok := idiomBigrams[normalizeWord(tokens[i].Text)]
		if !ok || normalizeWord(tokens[i+1].Text) != second {
			continue
		}
		for j := i - 1; j <= i+2; j++ {
			if j >= 0 && j < len(tokens) {
				guarded[j] = true
			}
		}
	}
	return guarded
}
