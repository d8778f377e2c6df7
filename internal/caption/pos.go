package caption

import "strings"

// Closed-class lexicons for part-of-speech classification. ASR output is
// lowercase-only more often than not, so lookups are case-insensitive.
var (
	articleWords = wordSet("a", "an", "the")

	auxiliaryWords = wordSet(
		"is", "are", "was", "were", "be", "been", "being",
		"have", "has", "had", "do", "does", "did",
		"will", "would", "could", "should", "may", "might", "can", "must", "shall",
	)

	interjectionWords = wordSet(
		"uh", "um", "hmm", "mhm", "oh", "ah", "hey", "wow",
		"yeah", "yes", "yep", "ok", "okay", "huh", "whoa",
	)

	conjunctionWords = wordSet("and", "or", "but", "so", "yet", "nor")

	pronounWords = wordSet(
		"i", "me", "my", "mine", "you", "your", "yours",
		"he", "him", "his", "she", "her", "hers", "it", "its",
		"we", "us", "our", "ours", "they", "them", "their", "theirs",
		"this", "that", "these", "those",
	)

	adjectiveWords = wordSet(
		"good", "bad", "big", "small", "new", "old", "great", "little",
		"best", "worst", "hard", "easy", "fast", "slow",
	)

	// Negations and question words carry too much meaning to ever treat as
	// filler, whatever the tagger says.
	preservedWords = wordSet(
		"not", "no", "never", "nothing", "nobody", "none",
		"what", "when", "where", "why", "how", "who", "which",
		"really", "very", "super", "totally", "absolutely", "definitely",
	)
)

// Short fixed expressions whose function words stay active. A match also
// protects the immediately neighbouring tokens so an idiom is never split
// across an active/inactive boundary.
var idiomBigrams = map[string]string{
	"the":  "one",
	"a":    "lot",
	"kind": "of",
	"sort": "of",
	"no":   "way",
	"at":   "all",
	"of":   "course",
}

func wordSet(words ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

func normalizeWord(text string) string {
	return strings.ToLower(strings.Trim(text, ".,!?;:'\"()-"))
}

// ClassifyPartOfSpeech maps a token's text onto the fixed tag set.
// Unknown or ambiguous words default to POSOther, which downstream stages
// treat as non-filler content.
func ClassifyPartOfSpeech(text string) PartOfSpeech {
	word := normalizeWord(text)
	if word == "" {
		return POSOther
	}

	switch {
	case contains(articleWords, word):
		return POSArticle
	case contains(auxiliaryWords, word):
		return POSAuxiliary
	case contains(interjectionWords, word):
		return POSInterjection
	case contains(conjunctionWords, word):
		return POSConjunction
	case contains(pronounWords, word):
		return POSPronoun
	case contains(adjectiveWords, word):
		return POSAdjective
	}

	// Light suffix heuristics for open classes.
	switch {
	case strings.HasSuffix(word, "ly") && len(word) > 3:
		return POSAdverb
	case strings.HasSuffix(word, "ing") && len(word) > 4:
		return POSVerb
	case strings.HasSuffix(word, "ed") && len(word) > 3:
		return POSVerb
	}

	return POSOther
}

func contains(set map[string]struct{}, word string) bool {
	_, ok := set[word]
	return ok
}

func isPreserved(text string) bool {
	return contains(preservedWords, normalizeWord(text))
}
