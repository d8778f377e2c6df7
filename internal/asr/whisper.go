package asr

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"clipcap/internal/caption"
	"clipcap/pkg/logger"

	"go.uber.org/zap"
)

// Client invokes the whisper-cli binary as a scoped external process and
// parses its JSON output into word tokens.
type Client struct {
	binary    string
	modelPath string
}

func NewClient(binary, modelPath string) *Client {
	return &Client{
		binary:    binary,
		modelPath: modelPath,
	}
}

// Transcribe runs speech recognition on a mono 16kHz WAV file and returns
// the raw word tokens, ordered by start time. In enterprise precision the
// rough segment timing is good enough, since forced alignment tightens it
// afterwards; in mvp precision whisper's own word splitting is requested.
func (c *Client) Transcribe(ctx context.Context, wavPath, outputDir string, precision caption.Precision) ([]caption.WordToken, error) {
	outputBase := filepath.Join(outputDir, "transcription")

	args := []string{"-m", c.modelPath, "-f", wavPath, "-oj", "-of", outputBase}
	if precision != caption.PrecisionEnterprise {
		args = append(args, "--split-on-word", "--word-thold", "0.01")
	}

	cmd := exec.CommandContext(ctx, c.binary, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	logger.Info("Starting transcription",
		zap.String("wav", wavPath),
		zap.String("precision", string(precision)))

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("%w: whisper: %v (stderr: %s)",
			caption.ErrExternalStageFailed, err, strings.TrimSpace(stderr.String()))
	}

	jsonPath := outputBase + ".json"
	data, err := os.ReadFile(jsonPath)
	if err != nil {
		return nil, fmt.Errorf("%w: whisper output missing at %s: %v",
			caption.ErrExternalStageFailed, jsonPath, err)
	}

	tokens, err := ParseTranscript(data)
	if err != nil {
		return nil, err
	}

	logger.Info("Transcription completed", zap.Int("words", len(tokens)))
	return tokens, nil
}

// ParseTranscript decodes whisper JSON in either the whisper-cpp or the
// OpenAI format. Segment-only output is split into words with the segment
// span spread evenly across them.
func ParseTranscript(data []byte) ([]caption.WordToken, error) {
	var cpp whisperCppResult
	if err := json.Unmarshal(data, &cpp); err == nil && len(cpp.Transcription) > 0 {
		return tokensFromCppSegments(cpp.Transcription), nil
	}

	var oai openAIResult
	if err := json.Unmarshal(data, &oai); err == nil && len(oai.Segments) > 0 {
		return tokensFromOpenAISegments(oai.Segments), nil
	}

	return nil, fmt.Errorf("%w: unrecognized whisper output format", caption.ErrExternalStageFailed)
}

func tokensFromCppSegments(segments []whisperCppSegment) []caption.WordToken {
	var tokens []caption.WordToken
	for _, seg := range segments {
		words := strings.Fields(strings.TrimSpace(seg.Text))
		if len(words) == 0 {
			continue
		}

		start := float64(seg.Offsets.From) / 1000.0
		end := float64(seg.Offsets.To) / 1000.0
		perWord := (end - start) / float64(len(words))

		for i, word := range words {
			tokens = append(tokens, caption.WordToken{
				Text:       word,
				StartSec:   start + float64(i)*perWord,
				EndSec:     start + float64(i+1)*perWord,
				Confidence: 1.0,
			})
		}
	}
	return tokens
}

func tokensFromOpenAISegments(segments []openAISegment) []caption.WordToken {
	var tokens []caption.WordToken
	for _, seg := range segments {
		if len(seg.Words) == 0 {
			continue
		}
		for _, w := range seg.Words {
			text := strings.TrimSpace(w.Word)
			if text == "" {
				continue
			}
			tokens = append(tokens, caption.WordToken{
				Text:       text,
				StartSec:   w.Start,
				EndSec:     w.End,
				Confidence: w.Probability,
			})
		}
	}
	return tokens
}
