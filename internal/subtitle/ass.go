package subtitle

import (
	"fmt"
	"math"
	"strings"

	"clipcap/internal/caption"
)

// Default play resolution for vertical short-form video.
const (
	DefaultVideoWidth  = 1080
	DefaultVideoHeight = 1920
)

// ASSWriter serializes a caption track into an ASS subtitle script for
// ffmpeg burn-in. The primary and alternate vertical slots map to two Y
// positions near the bottom of the frame.
type ASSWriter struct {
	videoWidth  int
	videoHeight int
}

func NewASSWriter(videoWidth, videoHeight int) *ASSWriter {
	if videoWidth <= 0 || videoHeight <= 0 {
		videoWidth = DefaultVideoWidth
		videoHeight = DefaultVideoHeight
	}
	return &ASSWriter{
		videoWidth:  videoWidth,
		videoHeight: videoHeight,
	}
}

// Write renders the full ASS script: header, style table, and one Dialogue
// line per caption event.
func (w *ASSWriter) Write(events []caption.CaptionEvent, preset *caption.StylePreset) string {
	var sb strings.Builder

	sb.WriteString(w.header())
	sb.WriteString(w.styles(preset))
	sb.WriteString(w.events(events))

	return sb.String()
}

func (w *ASSWriter) header() string {
	return fmt.Sprintf(`[Script Info]
Title: clipcap captions
ScriptType: v4.00+
WrapStyle: 0
ScaledBorderAndShadow: yes
YCbCr Matrix: TV.709
PlayResX: %d
PlayResY: %d

`, w.videoWidth, w.videoHeight)
}

func (w *ASSWriter) styles(preset *caption.StylePreset) string {
	outline := 0
	if preset.HasOutline {
		outline = 1
	}

	// The inactive style reuses the fill colour at half opacity so
	// de-emphasized words read as muted rather than styled differently.
	active := styleLine(preset.ActiveStyleID, preset.FontFamily, preset.FontSizePx,
		preset.FillColor, preset.AccentColor, outline)
	inactive := styleLine(preset.InactiveStyleID, preset.FontFamily, preset.FontSizePx,
		withHalfAlpha(preset.FillColor), withHalfAlpha(preset.AccentColor), outline)

	return fmt.Sprintf(`[V4+ Styles]
Format: Name, Fontname, Fontsize, PrimaryColour, SecondaryColour, OutlineColour, BackColour, Bold, Italic, Underline, StrikeOut, ScaleX, ScaleY, Spacing, Angle, BorderStyle, Outline, Shadow, Alignment, MarginL, MarginR, MarginV, Encoding
%s
%s

`, active, inactive)
}

func styleLine(name, font string, size int, primary, secondary string, outline int) string {
	return fmt.Sprintf(
		"Style: %s,%s,%d,%s,%s,&H00000000,&H00000000,1,0,0,0,100,100,0,0,1,%d,0,2,10,10,10,1",
		name, font, size, primary, secondary, outline,
	)
}

func (w *ASSWriter) events(events []caption.CaptionEvent) string {
	var sb strings.Builder
	sb.WriteString("[Events]\n")
	sb.WriteString("Format: Layer, Start, End, Style, Name, MarginL, MarginR, MarginV, Effect, Text\n")

	centerX := w.videoWidth / 2
	primaryY := int(float64(w.videoHeight) * 0.85)
	alternateY := int(float64(w.videoHeight) * 0.88)

	for _, ev := range events {
		posY := primaryY
		if ev.VerticalSlot == caption.SlotAlternate {
			posY = alternateY
		}

		var text strings.Builder
		fmt.Fprintf(&text, `{\pos(%d,%d)`, centerX, posY)
		if ev.IsEmphasized {
			// The karaoke tag scopes the highlight to the event's own
			// active window.
			durationCS := int(math.Round((ev.EndSec - ev.StartSec) * 100))
			fmt.Fprintf(&text, `\fad(100,100)\k%d`, durationCS)
		}
		text.WriteString("}")
		text.WriteString(EscapeASS(ev.DisplayText))

		fmt.Fprintf(&sb, "Dialogue: 0,%s,%s,%s,,0,0,0,,%s\n",
			FormatASSTime(ev.StartSec),
			FormatASSTime(ev.EndSec),
			ev.StyleID,
			text.String())
	}

	return sb.String()
}

// withHalfAlpha sets an ASS colour's alpha channel to 50% transparency.
// ASS colours are &HAABBGGRR with AA=00 fully opaque.
func withHalfAlpha(color string) string {
	if !strings.HasPrefix(color, "&H") {
		return color
	}
	hex := color[2:]
	if len(hex) == 8 {
		hex = hex[2:]
	}
	if len(hex) != 6 {
		return color
	}
	return "&H7F" + hex
}

// EscapeASS escapes the characters ASS treats as markup.
func EscapeASS(text string) string {
	text = strings.ReplaceAll(text, `\`, `\\`)
	text = strings.ReplaceAll(text, "{", `\{`)
	text = strings.ReplaceAll(text, "}", `\}`)
	return text
}

// FormatASSTime converts seconds to the ASS time format H:MM:SS.CC
// (centisecond precision).
func FormatASSTime(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	hours := int(seconds / 3600)
	minutes := int(math.Mod(seconds, 3600) / 60)
	secs := math.Mod(seconds, 60)
	return fmt.Sprintf("%d:%02d:%05.2f", hours, minutes, secs)
}
