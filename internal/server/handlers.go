package server

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"clipcap/internal/caption"
	"clipcap/internal/queue"
	"clipcap/pkg/cache"
	"clipcap/pkg/logger"
	"clipcap/pkg/model"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// cancelFlagTTL bounds how long a cancellation request is honored. Longer
// than any realistic pipeline run.
const cancelFlagTTL = 24 * time.Hour

type createJobRequest struct {
	VideoKey        string `json:"video_key"`
	CaptionMode     string `json:"caption_mode"`
	ShowFillerWords bool   `json:"show_filler_words"`
	PresetID        string `json:"preset_id"`
	FontSizePx      int    `json:"font_size_px"`
	Precision       string `json:"precision"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleCreateJob(w http.ResponseWriter, r *http.Request) {
	if !s.limiter.Allow() {
		writeError(w, http.StatusTooManyRequests, "too many requests")
		return
	}

	var req createJobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if strings.TrimSpace(req.VideoKey) == "" {
		writeError(w, http.StatusBadRequest, "video_key is required")
		return
	}
	if req.Precision == "" {
		req.Precision = string(caption.PrecisionMVP)
	}
	if req.Precision != string(caption.PrecisionMVP) && req.Precision != string(caption.PrecisionEnterprise) {
		writeError(w, http.StatusBadRequest, "precision must be mvp or enterprise")
		return
	}

	opts := caption.JobOptions{
		CaptionMode:     caption.CaptionMode(req.CaptionMode),
		ShowFillerWords: req.ShowFillerWords,
		PresetID:        req.PresetID,
		FontSizePx:      req.FontSizePx,
	}
	if err := opts.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if _, err := s.presets.Get(req.PresetID); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.FontSizePx != 0 &&
		(req.FontSizePx < s.fontBounds.MinPx || req.FontSizePx > s.fontBounds.MaxPx) {
		writeError(w, http.StatusBadRequest, "font_size_px out of bounds")
		return
	}

	now := time.Now()
	job := &model.Job{
		ID:              uuid.NewString(),
		VideoKey:        req.VideoKey,
		Status:          model.JobStatusPending,
		Progress:        0,
		CaptionMode:     req.CaptionMode,
		ShowFillerWords: req.ShowFillerWords,
		PresetID:        req.PresetID,
		FontSizePx:      req.FontSizePx,
		Precision:       req.Precision,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.store.CreateJob(r.Context(), job); err != nil {
		logger.Error("Failed to create job", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to create job")
		return
	}

	msg := &queue.CaptionJob{
		JobID:           job.ID,
		VideoKey:        job.VideoKey,
		CaptionMode:     job.CaptionMode,
		ShowFillerWords: job.ShowFillerWords,
		PresetID:        job.PresetID,
		FontSizePx:      job.FontSizePx,
		Precision:       job.Precision,
		CreatedAt:       now,
	}
	if err := s.publisher.PublishJob(msg); err != nil {
		logger.Error("Failed to publish job", zap.String("job_id", job.ID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to enqueue job")
		return
	}

	logger.Info("Job accepted",
		zap.String("job_id", job.ID),
		zap.String("video_key", job.VideoKey),
		zap.String("caption_mode", job.CaptionMode))

	writeJSON(w, http.StatusAccepted, job)
}

func (s *Server) handleGetJob(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var cached model.Job
	if err := s.cache.Get(r.Context(), cache.JobStatusCacheKey(id), &cached); err == nil {
		writeJSON(w, http.StatusOK, &cached)
		return
	}

	job, err := s.store.GetJobByID(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusNotFound, "job not found")
		return
	}

	if err := s.cache.SetWithTTL(r.Context(), cache.JobStatusCacheKey(id), job, 5*time.Second); err != nil {
		logger.Debug("Failed to cache job status", zap.Error(err))
	}

	writeJSON(w, http.StatusOK, job)
}

func (s *Server) handleGetTrack(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	track, err := s.store.GetCaptionTrackByJobID(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusNotFound, "caption track not found")
		return
	}

	writeJSON(w, http.StatusOK, track)
}

func (s *Server) handleCancelJob(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	job, err := s.store.GetJobByID(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusNotFound, "job not found")
		return
	}
	if job.IsTerminal() {
		writeError(w, http.StatusConflict, "job is already in a terminal state")
		return
	}

	// The worker checks this flag at stage boundaries and stops the job at
	// the next one it reaches.
	if err := s.cache.SetWithTTL(r.Context(), cache.JobCancelCacheKey(id), true, cancelFlagTTL); err != nil {
		logger.Error("Failed to set cancel flag", zap.String("job_id", id), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to request cancellation")
		return
	}

	logger.Info("Cancellation requested", zap.String("job_id", id))

	writeJSON(w, http.StatusAccepted, map[string]string{
		"id":     id,
		"status": "cancellation_requested",
	})
}

func (s *Server) handleListPresets(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]string{"presets": s.presets.IDs()})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("Failed to encode response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
