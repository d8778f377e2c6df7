package model

import (
	"database/sql/driver"
	"encoding/json"
	"time"
)

// JobStatus follows the pipeline state machine. The first eight states are
// traversed in order; failed and cancelled are reachable from any of them.
type JobStatus string

const (
	JobStatusPending      JobStatus = "pending"
	JobStatusExtracting   JobStatus = "extracting"
	JobStatusTranscribing JobStatus = "transcribing"
	JobStatusAligning     JobStatus = "aligning"
	JobStatusFiltering    JobStatus = "filtering"
	JobStatusSmoothing    JobStatus = "smoothing"
	JobStatusBuilding     JobStatus = "building"
	JobStatusRendering    JobStatus = "rendering"
	JobStatusCompleted    JobStatus = "completed"
	JobStatusFailed       JobStatus = "failed"
	JobStatusCancelled    JobStatus = "cancelled"
)

// JSONB represents a JSONB field for PostgreSQL
type JSONB map[string]interface{}

// Value implements the driver.Valuer interface
func (j JSONB) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

// Scan implements the sql.Scanner interface
func (j *JSONB) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return nil
	}

	return json.Unmarshal(bytes, j)
}

// Job represents one caption rendering job. Status and Progress are mutated
// only by the worker that owns the job; terminal states are final.
type Job struct {
	ID              string    `json:"id" db:"id"`
	VideoKey        string    `json:"video_key" db:"video_key"`
	Status          JobStatus `json:"status" db:"status"`
	Progress        int       `json:"progress" db:"progress"`
	CaptionMode     string    `json:"caption_mode" db:"caption_mode"`
	ShowFillerWords bool      `json:"show_filler_words" db:"show_filler_words"`
	PresetID        string    `json:"preset_id" db:"preset_id"`
	FontSizePx      int       `json:"font_size_px" db:"font_size_px"`
	Precision       string    `json:"precision" db:"precision"`
	OutputKey       *string   `json:"output_key,omitempty" db:"output_key"`
	ErrorText       *string   `json:"error_text,omitempty" db:"error_text"`
	Meta            JSONB     `json:"meta" db:"meta"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time `json:"updated_at" db:"updated_at"`
}

// CaptionTrack is the serialized caption event list produced by the builder,
// stored alongside the job for re-rendering and inspection.
type CaptionTrack struct {
	ID         string          `json:"id" db:"id"`
	JobID      string          `json:"job_id" db:"job_id"`
	Events     json.RawMessage `json:"events" db:"events"`
	EventCount int             `json:"event_count" db:"event_count"`
	CreatedAt  time.Time       `json:"created_at" db:"created_at"`
}

// IsTerminal returns true if the job is in a final state
func (j *Job) IsTerminal() bool {
	return j.Status == JobStatusCompleted || j.Status == JobStatusFailed || j.Status == JobStatusCancelled
}

// AdvanceTo moves the job to the given pipeline stage. Progress never
// decreases and terminal jobs never move again.
func (j *Job) AdvanceTo(status JobStatus, progress int) {
	if j.IsTerminal() {
		return
	}
	j.Status = status
	if progress > j.Progress {
		j.Progress = progress
	}
	j.UpdatedAt = time.Now()
}

// SetError sets the job status to failed with error message
func (j *Job) SetError(errorText string) {
	if j.IsTerminal() {
		return
	}
	j.Status = JobStatusFailed
	j.ErrorText = &errorText
	j.UpdatedAt = time.Now()
}

// SetCancelled marks the job cancelled.
func (j *Job) SetCancelled() {
	if j.IsTerminal() {
		return
	}
	j.Status = JobStatusCancelled
	j.UpdatedAt = time.Now()
}

// SetCompleted sets the job status to completed with the rendered output key.
func (j *Job) SetCompleted(outputKey string) {
	if j.IsTerminal() {
		return
	}
	j.Status = JobStatusCompleted
	j.Progress = 100
	j.OutputKey = &outputKey
	j.UpdatedAt = time.Now()
}
