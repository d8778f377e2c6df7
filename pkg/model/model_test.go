package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestJob_AdvanceTo(t *testing.T) {
	job := &Job{ID: "job-1", Status: JobStatusPending, Progress: 0}

	job.AdvanceTo(JobStatusExtracting, 10)
	assert.Equal(t, JobStatusExtracting, job.Status)
	assert.Equal(t, 10, job.Progress)

	job.AdvanceTo(JobStatusTranscribing, 25)
	assert.Equal(t, 25, job.Progress)
}

func TestJob_ProgressNeverDecreases(t *testing.T) {
	job := &Job{ID: "job-1", Status: JobStatusSmoothing, Progress: 65}

	job.AdvanceTo(JobStatusBuilding, 40)

	assert.Equal(t, JobStatusBuilding, job.Status)
	assert.Equal(t, 65, job.Progress)
}

func TestJob_TerminalStatesAreFinal(t *testing.T) {
	job := &Job{ID: "job-1", Status: JobStatusCompleted, Progress: 100}

	job.AdvanceTo(JobStatusRendering, 80)
	assert.Equal(t, JobStatusCompleted, job.Status)

	job.SetError("late failure")
	assert.Equal(t, JobStatusCompleted, job.Status)
	assert.Nil(t, job.ErrorText)

	job.SetCancelled()
	assert.Equal(t, JobStatusCompleted, job.Status)
}

func TestJob_SetCompleted(t *testing.T) {
	job := &Job{ID: "job-1", Status: JobStatusRendering, Progress: 80}

	job.SetCompleted("output/2026/08/31/job-1_captioned.mp4")

	assert.Equal(t, JobStatusCompleted, job.Status)
	assert.Equal(t, 100, job.Progress)
	assert.NotNil(t, job.OutputKey)
	assert.True(t, job.IsTerminal())
}

func TestJob_SetError(t *testing.T) {
	job := &Job{ID: "job-1", Status: JobStatusTranscribing, Progress: 25}

	job.SetError("external stage failed: whisper exited 1")

	assert.Equal(t, JobStatusFailed, job.Status)
	assert.Equal(t, "external stage failed: whisper exited 1", *job.ErrorText)
	assert.True(t, job.IsTerminal())
}

func TestJob_SetCancelled(t *testing.T) {
	job := &Job{ID: "job-1", Status: JobStatusAligning, Progress: 40}

	job.SetCancelled()

	assert.Equal(t, JobStatusCancelled, job.Status)
	assert.True(t, job.IsTerminal())
}

func TestJob_IsTerminal(t *testing.T) {
	for _, status := range []JobStatus{JobStatusCompleted, JobStatusFailed, JobStatusCancelled} {
		job := &Job{Status: status}
		assert.True(t, job.IsTerminal(), "status %s", status)
	}
	for _, status := range []JobStatus{JobStatusPending, JobStatusExtracting, JobStatusRendering} {
		job := &Job{Status: status}
		assert.False(t, job.IsTerminal(), "status %s", status)
	}
}

func TestJSONB_RoundTrip(t *testing.T) {
	meta := JSONB{"clip_duration": 12.5, "source": "upload"}

	value, err := meta.Value()
	assert.NoError(t, err)

	var decoded JSONB
	assert.NoError(t, decoded.Scan(value))
	assert.Equal(t, "upload", decoded["source"])
}

func TestJSONB_ScanNil(t *testing.T) {
	var decoded JSONB
	assert.NoError(t, decoded.Scan(nil))
	assert.Nil(t, decoded)
}
