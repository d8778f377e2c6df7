package caption

import (
	"fmt"
	"strings"
)

// PartOfSpeech is the fixed tag set used by the linguistic filter.
type PartOfSpeech string

const (
	POSArticle      PartOfSpeech = "article"
	POSAuxiliary    PartOfSpeech = "auxiliary"
	POSInterjection PartOfSpeech = "interjection"
	POSConjunction  PartOfSpeech = "conjunction"
	POSPronoun      PartOfSpeech = "pronoun"
	POSNoun         PartOfSpeech = "noun"
	POSVerb         PartOfSpeech = "verb"
	POSAdjective    PartOfSpeech = "adjective"
	POSAdverb       PartOfSpeech = "adverb"
	POSOther        PartOfSpeech = "other"
)

// CaptionMode selects between sentence-level and word-level (karaoke) captions.
type CaptionMode string

const (
	ModeSentences CaptionMode = "sentences"
	ModeWords     CaptionMode = "words"
)

// Precision selects the timing source for word-level captions.
type Precision string

const (
	PrecisionMVP        Precision = "mvp"
	PrecisionEnterprise Precision = "enterprise"
)

// WordToken is the shared data unit flowing through every pipeline stage.
// Text, Confidence and PartOfSpeech are fixed at creation. IsFillerCandidate
// and Active are set once by the filter. StartSec/EndSec are adjusted in
// place by the smoother and never touched by the builder.
type WordToken struct {
	Text              string       `json:"text"`
	StartSec          float64      `json:"startSec"`
	EndSec            float64      `json:"endSec"`
	Confidence        float64      `json:"confidence"`
	PartOfSpeech      PartOfSpeech `json:"partOfSpeech"`
	IsFillerCandidate bool         `json:"isFillerCandidate"`
	Active            bool         `json:"active"`
}

// Duration returns the token's display duration in seconds.
func (t WordToken) Duration() float64 {
	return t.EndSec - t.StartSec
}

// JobOptions carries the per-job caption settings across the pure boundary.
type JobOptions struct {
	CaptionMode     CaptionMode `json:"captionMode"`
	ShowFillerWords bool        `json:"showFillerWords"`
	PresetID        string      `json:"presetId"`
	FontSizePx      int         `json:"fontSizePx"`
}

// Validate checks the option values that the pure pipeline depends on.
// Font size bounds are a deployment concern and are enforced at the API edge.
func (o JobOptions) Validate() error {
	switch o.CaptionMode {
	case ModeSentences, ModeWords:
	default:
		return fmt.Errorf("%w: unsupported caption mode %q", ErrConfigurationInvalid, o.CaptionMode)
	}
	if strings.TrimSpace(o.PresetID) == "" {
		return fmt.Errorf("%w: preset id is required", ErrConfigurationInvalid)
	}
	return nil
}

// ValidateTokens checks the input invariants: a non-empty transcript with
// positive durations and non-decreasing start times.
func ValidateTokens(tokens []WordToken) error {
	if len(tokens) == 0 {
		return fmt.Errorf("%w: empty transcript", ErrInputMalformed)
	}
	for i, tok := range tokens {
		if tok.StartSec >= tok.EndSec {
			return fmt.Errorf("%w: token %d %q has non-positive duration (%.3f-%.3f)",
				ErrInputMalformed, i, tok.Text, tok.StartSec, tok.EndSec)
		}
		if i > 0 && tok.StartSec < tokens[i-1].StartSec {
			return fmt.Errorf("%w: token %d %q starts before its predecessor (%.3f < %.3f)",
				ErrInputMalformed, i, tok.Text, tok.StartSec, tokens[i-1].StartSec)
		}
	}
	return nil
}
