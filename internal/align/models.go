package align

// gentleResponse is the alignment service's JSON output. Words carry a
// per-word case marker; only "success" entries have usable timing.
type gentleResponse struct {
	Transcript string       `json:"transcript"`
	Words      []gentleWord `json:"words"`
}

type gentleWord struct {
	Case        string  `json:"case"`
	Word        string  `json:"word"`
	Start       float64 `json:"start"`
	End         float64 `json:"end"`
	AlignedWord string  `json:"alignedWord"`
}

const caseSuccess = "success"
