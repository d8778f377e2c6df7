package subtitle

import (
	"fmt"
	"math"
	"strings"

	"clipcap/internal/caption"
)

// WriteSRT serializes a caption track as plain SRT, kept alongside the
// rendered video as the transcript artifact.
func WriteSRT(events []caption.CaptionEvent) string {
	if len(events) == 0 {
		return ""
	}

	var sb strings.Builder
	for i, ev := range events {
		fmt.Fprintf(&sb, "%d\n%s --> %s\n%s\n",
			i+1,
			FormatSRTTime(ev.StartSec),
			FormatSRTTime(ev.EndSec),
			ev.DisplayText)
		if i < len(events)-1 {
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

// FormatSRTTime converts seconds to the SRT time format HH:MM:SS,mmm.
func FormatSRTTime(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	hours := int(seconds / 3600)
	minutes := int(math.Mod(seconds, 3600) / 60)
	secs := math.Mod(seconds, 60)
	millis := int(math.Round(math.Mod(secs, 1) * 1000))
	if millis >= 1000 {
		millis = 999
	}
	return fmt.Sprintf("%02d:%02d:%02d,%03d", hours, minutes, int(secs), millis)
}
