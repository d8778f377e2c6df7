package caption

import (
	"clipcap/pkg/logger"

	"go.uber.org/zap"
)

const (
	// MinTokenDurationSec is the shortest display time a word is readable at.
	MinTokenDurationSec = 0.45

	// GapMergeThresholdSec is the largest inter-word gap that still reads as
	// flicker; shorter gaps are closed at their midpoint.
	GapMergeThresholdSec = 0.10
)

// SmoothTimings repairs timing artifacts in place of the timing fields only:
// text and flags are untouched. Rules apply in order: minimum duration,
// gap merging, clip-length clamp. The clamp can squeeze a token back under
// the minimum, which the next round re-balances, so the rules run until they
// agree; applying SmoothTimings to an already smoothed sequence changes
// nothing.
//
// When the clip is too short to honour the minimum duration, the affected
// tokens keep sub-minimum durations and the incidents are logged; ordering
// and positive durations are never violated.
func SmoothTimings(tokens []WordToken, clipDurationSec float64) []WordToken {
	if len(tokens) == 0 {
		return tokens
	}

	before := make([]WordToken, len(tokens))
	for round := 0; round <= len(tokens); round++ {
		copy(before, tokens)

		applyMinimumDurations(tokens)
		mergeShortGaps(tokens)
		clampToClip(tokens, clipDurationSec)

		if timingsEqual(before, tokens) {
			break
		}
	}

	for i := range tokens {
		if tokens[i].Duration() < MinTokenDurationSec {
			logger.Warn("Token kept below minimum duration",
				zap.String("word", tokens[i].Text),
				zap.Float64("start", tokens[i].StartSec),
				zap.Float64("end", tokens[i].EndSec),
				zap.Float64("clip_duration", clipDurationSec))
		}
	}

	return tokens
}

func timingsEqual(a, b []WordToken) bool {
	for i := range a {
		if a[i].StartSec != b[i].StartSec || a[i].EndSec != b[i].EndSec {
			return false
		}
	}
	return true
}

// applyMinimumDurations extends too-short tokens and resolves any overlap
// with the following token by pushing its start forward. The earlier token
// always wins a contested region.
func applyMinimumDurations(tokens []WordToken) {
	for i := range tokens {
		if tokens[i].Duration() < MinTokenDurationSec {
			tokens[i].EndSec = tokens[i].StartSec + MinTokenDurationSec
		}
		if i+1 < len(tokens) && tokens[i+1].StartSec < tokens[i].EndSec {
			tokens[i+1].StartSec = tokens[i].EndSec
		}
	}
}

// mergeShortGaps closes sub-threshold gaps by extending both neighbouring
// boundaries halfway into the gap.
func mergeShortGaps(tokens []WordToken) {
	for i := 0; i+1 < len(tokens); i++ {
		gap := tokens[i+1].StartSec - tokens[i].EndSec
		if gap <= 0 || gap >= GapMergeThresholdSec {
			continue
		}
		mid := tokens[i].EndSec + gap/2
		tokens[i].EndSec = mid
		tokens[i+1].StartSec = mid
	}
}

// clampToClip truncates any overrun past the clip end, walking backwards so
// a token squeezed out entirely reclaims room from its predecessor. A token
// whose start landed at or past its clamped end is pulled back to a positive
// span; the last token additionally recovers the minimum duration by
// shifting its start earlier, stopping at the previous token's end.
func clampToClip(tokens []WordToken, clipDurationSec float64) {
	if clipDurationSec <= 0 {
		return
	}

	limit := clipDurationSec
	for i := len(tokens) - 1; i >= 0; i-- {
		if tokens[i].EndSec > limit {
			tokens[i].EndSec = limit
		}

		switch {
		case tokens[i].StartSec >= tokens[i].EndSec:
			shifted := tokens[i].EndSec - MinTokenDurationSec
			if shifted < 0 {
				// No room for the minimum; keep a positive sliver.
				shifted = tokens[i].EndSec / 2
			}
			tokens[i].StartSec = shifted
		case i == len(tokens)-1 && tokens[i].Duration() < MinTokenDurationSec:
			shifted := tokens[i].EndSec - MinTokenDurationSec
			if i > 0 && shifted < tokens[i-1].EndSec {
				shifted = tokens[i-1].EndSec
			}
			if shifted < 0 {
				shifted = 0
			}
			if shifted < tokens[i].StartSec {
				tokens[i].StartSec = shifted
			}
		}

		limit = tokens[i].StartSec
	}
}
