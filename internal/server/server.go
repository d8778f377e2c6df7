package server

import (
	"context"
	"net/http"
	"time"

	"clipcap/internal/caption"
	"clipcap/internal/queue"
	"clipcap/pkg/cache"
	"clipcap/pkg/logger"
	"clipcap/pkg/model"
	"clipcap/pkg/resilience"

	"go.uber.org/zap"
)

// JobStore is the persistence surface the API needs.
type JobStore interface {
	CreateJob(ctx context.Context, job *model.Job) error
	GetJobByID(ctx context.Context, id string) (*model.Job, error)
	GetCaptionTrackByJobID(ctx context.Context, jobID string) (*model.CaptionTrack, error)
}

// JobPublisher hands accepted jobs to the worker queue.
type JobPublisher interface {
	PublishJob(job *queue.CaptionJob) error
}

// FontBounds are the deployment-level limits on requested caption font sizes.
type FontBounds struct {
	MinPx int
	MaxPx int
}

// Server is the HTTP job API: submit, poll, cancel.
type Server struct {
	httpServer *http.Server
	store      JobStore
	publisher  JobPublisher
	cache      cache.Cache
	presets    *caption.PresetTable
	limiter    *resilience.RateLimiter
	fontBounds FontBounds
}

func NewServer(addr string, store JobStore, publisher JobPublisher, c cache.Cache, presets *caption.PresetTable, fontBounds FontBounds) *Server {
	s := &Server{
		store:      store,
		publisher:  publisher,
		cache:      c,
		presets:    presets,
		limiter:    resilience.NewRateLimiter(10, time.Second),
		fontBounds: fontBounds,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/jobs", s.handleCreateJob)
	mux.HandleFunc("GET /api/jobs/{id}", s.handleGetJob)
	mux.HandleFunc("GET /api/jobs/{id}/track", s.handleGetTrack)
	mux.HandleFunc("POST /api/jobs/{id}/cancel", s.handleCancelJob)
	mux.HandleFunc("GET /api/presets", s.handleListPresets)
	mux.HandleFunc("GET /healthz", s.handleHealthz)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	return s
}

// Start blocks serving HTTP until Shutdown or a listener error.
func (s *Server) Start() error {
	logger.Info("HTTP server starting", zap.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}
