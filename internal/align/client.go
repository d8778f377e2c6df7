package align

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"strings"
	"time"

	"clipcap/internal/caption"
	"clipcap/pkg/logger"
	"clipcap/pkg/resilience"

	"go.uber.org/zap"
)

const alignTimeout = 2 * time.Minute

// Client talks to a Gentle-style forced alignment service. Alignment is a
// refinement: callers are expected to fall back to ASR timing when it is
// unavailable, so the circuit breaker fails fast once the service is down.
type Client struct {
	baseURL string
	client  *http.Client
	breaker *resilience.CircuitBreaker
	retry   *resilience.RetryConfig
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client: &http.Client{
			Timeout: alignTimeout,
		},
		breaker: resilience.NewCircuitBreaker(3, 30*time.Second),
		retry:   resilience.DefaultRetryConfig(),
	}
}

// Healthy reports whether the alignment service is reachable.
func (c *Client) Healthy(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/", nil)
	if err != nil {
		return false
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()

	return resp.StatusCode == http.StatusOK
}

// Align refines the tokens' timestamps against the audio signal. Token
// identities are preserved: the result has the same words in the same order,
// with tightened timing where alignment succeeded and the original ASR
// timing where it did not.
func (c *Client) Align(ctx context.Context, audioPath string, tokens []caption.WordToken) ([]caption.WordToken, error) {
	transcript := transcriptText(tokens)

	var aligned gentleResponse
	call := func() error {
		return c.breaker.Execute(func() error {
			return c.postAlignment(ctx, audioPath, transcript, &aligned)
		})
	}

	if err := resilience.RetryWithExponentialBackoff(ctx, c.retry, call); err != nil {
		return nil, fmt.Errorf("%w: alignment: %v", caption.ErrExternalStageFailed, err)
	}

	merged, alignedCount := mergeAligned(tokens, aligned.Words)

	logger.Info("Forced alignment completed",
		zap.Int("total_words", len(tokens)),
		zap.Int("aligned_words", alignedCount))

	return merged, nil
}

func (c *Client) postAlignment(ctx context.Context, audioPath, transcript string, out *gentleResponse) error {
	audio, err := os.Open(audioPath)
	if err != nil {
		return fmt.Errorf("failed to open audio: %w", err)
	}
	defer audio.Close()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	audioPart, err := writer.CreateFormFile("audio", "audio.wav")
	if err != nil {
		return fmt.Errorf("failed to create audio part: %w", err)
	}
	if _, err := io.Copy(audioPart, audio); err != nil {
		return fmt.Errorf("failed to copy audio: %w", err)
	}

	transcriptPart, err := writer.CreateFormFile("transcript", "transcript.txt")
	if err != nil {
		return fmt.Errorf("failed to create transcript part: %w", err)
	}
	if _, err := io.WriteString(transcriptPart, transcript); err != nil {
		return fmt.Errorf("failed to write transcript: %w", err)
	}

	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize multipart body: %w", err)
	}

	url := c.baseURL + "/transcriptions?async=false"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("alignment request failed: status=%d, body=%s", resp.StatusCode, string(respBody))
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to unmarshal response: %w", err)
	}

	return nil
}

func transcriptText(tokens []caption.WordToken) string {
	words := make([]string, len(tokens))
	for i, tok := range tokens {
		words[i] = tok.Text
	}
	return strings.Join(words, " ")
}

// mergeAligned walks both word lists in order, taking the service's timing
// for successfully aligned words and keeping the ASR timing otherwise. The
// input tokens are never mutated.
func mergeAligned(tokens []caption.WordToken, alignedWords []gentleWord) ([]caption.WordToken, int) {
	out := make([]caption.WordToken, len(tokens))
	copy(out, tokens)

	alignedCount := 0
	limit := len(alignedWords)
	if len(out) < limit {
		limit = len(out)
	}

	for i := 0; i < limit; i++ {
		w := alignedWords[i]
		if w.Case != caseSuccess || w.End <= w.Start {
			continue
		}
		out[i].StartSec = w.Start
		out[i].EndSec = w.End
		alignedCount++
	}

	return out, alignedCount
}
