package asr

// whisper-cpp JSON output (-oj).
type whisperCppResult struct {
	Transcription []whisperCppSegment `json:"transcription"`
}

type whisperCppSegment struct {
	Text    string `json:"text"`
	Offsets struct {
		From int64 `json:"from"` // milliseconds
		To   int64 `json:"to"`
	} `json:"offsets"`
}

// OpenAI-style whisper JSON with per-word timing.
type openAIResult struct {
	Segments []openAISegment `json:"segments"`
}

type openAISegment struct {
	Text  string       `json:"text"`
	Start float64      `json:"start"`
	End   float64      `json:"end"`
	Words []openAIWord `json:"words"`
}

type openAIWord struct {
	Word        string  `json:"word"`
	Start       float64 `json:"start"`
	End         float64 `json:"end"`
	Probability float64 `json:"probability"`
}
