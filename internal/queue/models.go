package queue

import "time"

// CaptionJob is the message published by the API server and consumed by the
// caption worker.
type CaptionJob struct {
	JobID           string    `json:"job_id"`
	VideoKey        string    `json:"video_key"`
	CaptionMode     string    `json:"caption_mode"`
	ShowFillerWords bool      `json:"show_filler_words"`
	PresetID        string    `json:"preset_id"`
	FontSizePx      int       `json:"font_size_px"`
	Precision       string    `json:"precision"`
	CreatedAt       time.Time `json:"created_at"`
}
