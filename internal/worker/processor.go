package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"clipcap/internal/caption"
	"clipcap/internal/queue"
	"clipcap/internal/subtitle"
	"clipcap/pkg/cache"
	"clipcap/pkg/logger"
	"clipcap/pkg/model"
	"clipcap/pkg/resilience"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// cancelPollInterval is how often the watcher re-reads the cancel flag while
// a stage is in flight.
const cancelPollInterval = 2 * time.Second

// Storage is the job persistence surface the processor needs.
type Storage interface {
	GetJobByID(ctx context.Context, id string) (*model.Job, error)
	UpdateJob(ctx context.Context, job *model.Job) error
	CreateCaptionTrack(ctx context.Context, track *model.CaptionTrack) error
}

// FileStore moves media in and out of object storage.
type FileStore interface {
	DownloadToFile(ctx context.Context, key, destPath string) error
	UploadFile(ctx context.Context, key string, body io.Reader, contentType string) error
	GenerateOutputKey(jobID string) string
}

// MediaTools is the external ffmpeg/ffprobe stage surface.
type MediaTools interface {
	ExtractAudio(ctx context.Context, videoPath, wavPath string) error
	ProbeDuration(ctx context.Context, path string) (float64, error)
	BurnSubtitles(ctx context.Context, videoPath, assPath, outputPath string) error
}

// Transcriber runs speech recognition on extracted audio.
type Transcriber interface {
	Transcribe(ctx context.Context, wavPath, outputDir string, precision caption.Precision) ([]caption.WordToken, error)
}

// Aligner refines ASR timing against the audio signal.
type Aligner interface {
	Healthy(ctx context.Context) bool
	Align(ctx context.Context, audioPath string, tokens []caption.WordToken) ([]caption.WordToken, error)
}

// Notifier reports job outcomes to an ops channel. Nil-safe.
type Notifier interface {
	JobCompleted(job *model.Job)
	JobFailed(job *model.Job)
}

// Processor owns one job at a time end to end: media stages, caption stages,
// render, upload. Stage boundaries are the cancellation points.
type Processor struct {
	storage      Storage
	files        FileStore
	cache        cache.Cache
	media        MediaTools
	asr          Transcriber
	aligner      Aligner
	notifier     Notifier
	presets      *caption.PresetTable
	assWriter    *subtitle.ASSWriter
	retry        *resilience.RetryConfig
	workDir      string
	alignEnabled bool
}

func NewProcessor(
	storage Storage,
	files FileStore,
	c cache.Cache,
	media MediaTools,
	asr Transcriber,
	aligner Aligner,
	notifier Notifier,
	presets *caption.PresetTable,
	workDir string,
	alignEnabled bool,
) *Processor {
	return &Processor{
		storage:      storage,
		files:        files,
		cache:        c,
		media:        media,
		asr:          asr,
		aligner:      aligner,
		notifier:     notifier,
		presets:      presets,
		assWriter:    subtitle.NewASSWriter(subtitle.DefaultVideoWidth, subtitle.DefaultVideoHeight),
		retry:        resilience.DefaultRetryConfig(),
		workDir:      workDir,
		alignEnabled: alignEnabled,
	}
}

// HandleMessage is the queue consumer entry point. A non-nil return requeues
// the message, so only undeliverable states return errors; job failures are
// recorded on the job itself and acked.
func (p *Processor) HandleMessage(body []byte) error {
	var msg queue.CaptionJob
	if err := json.Unmarshal(body, &msg); err != nil {
		logger.Error("Failed to unmarshal caption job", zap.Error(err))
		// Poison message, do not requeue a loop.
		return nil
	}

	return p.ProcessJob(context.Background(), &msg)
}

// ProcessJob runs the full pipeline for one job.
func (p *Processor) ProcessJob(ctx context.Context, msg *queue.CaptionJob) error {
	job, err := p.storage.GetJobByID(ctx, msg.JobID)
	if err != nil {
		return fmt.Errorf("failed to load job %s: %w", msg.JobID, err)
	}
	if job.IsTerminal() {
		logger.Info("Skipping job in terminal state",
			zap.String("job_id", job.ID),
			zap.String("status", string(job.Status)))
		return nil
	}

	// The watcher cancels jobCtx when the cancel flag appears, which also
	// kills any external process started under it.
	jobCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go p.watchCancellation(jobCtx, job.ID, cancel)

	logger.Info("Processing caption job",
		zap.String("job_id", job.ID),
		zap.String("video_key", job.VideoKey),
		zap.String("caption_mode", job.CaptionMode),
		zap.String("precision", job.Precision))

	start := time.Now()
	if err := p.runPipeline(jobCtx, job); err != nil {
		p.handleJobError(ctx, job, err)
		return nil
	}

	logger.Info("Caption job completed",
		zap.String("job_id", job.ID),
		zap.Duration("elapsed", time.Since(start)))
	return nil
}

func (p *Processor) runPipeline(ctx context.Context, job *model.Job) error {
	jobDir := filepath.Join(p.workDir, job.ID)
	if err := os.MkdirAll(jobDir, 0o755); err != nil {
		return fmt.Errorf("failed to create work dir: %w", err)
	}
	defer os.RemoveAll(jobDir)

	// Extract.
	if err := p.advance(ctx, job, model.JobStatusExtracting, 10); err != nil {
		return err
	}
	videoPath := filepath.Join(jobDir, "input.mp4")
	wavPath := filepath.Join(jobDir, "audio.wav")
	if err := p.files.DownloadToFile(ctx, job.VideoKey, videoPath); err != nil {
		return fmt.Errorf("%w: video download: %v", caption.ErrExternalStageFailed, err)
	}
	if err := p.media.ExtractAudio(ctx, videoPath, wavPath); err != nil {
		return err
	}
	clipDuration, err := p.media.ProbeDuration(ctx, videoPath)
	if err != nil {
		return err
	}

	// Transcribe.
	if err := p.advance(ctx, job, model.JobStatusTranscribing, 25); err != nil {
		return err
	}
	tokens, err := p.asr.Transcribe(ctx, wavPath, jobDir, caption.Precision(job.Precision))
	if err != nil {
		return err
	}

	// Align. Alignment failures degrade to ASR timing rather than failing
	// the job.
	if err := p.advance(ctx, job, model.JobStatusAligning, 40); err != nil {
		return err
	}
	if caption.Precision(job.Precision) == caption.PrecisionEnterprise && p.alignEnabled {
		if p.aligner.Healthy(ctx) {
			if aligned, alignErr := p.aligner.Align(ctx, wavPath, tokens); alignErr == nil {
				tokens = aligned
			} else {
				logger.Warn("Alignment failed, keeping ASR timing",
					zap.String("job_id", job.ID), zap.Error(alignErr))
			}
		} else {
			logger.Warn("Alignment service unavailable, keeping ASR timing",
				zap.String("job_id", job.ID))
		}
	}

	opts := caption.JobOptions{
		CaptionMode:     caption.CaptionMode(job.CaptionMode),
		ShowFillerWords: job.ShowFillerWords,
		PresetID:        job.PresetID,
		FontSizePx:      job.FontSizePx,
	}
	if err := opts.Validate(); err != nil {
		return err
	}
	if err := caption.ValidateTokens(tokens); err != nil {
		return err
	}
	preset, err := p.presets.Get(job.PresetID)
	if err != nil {
		return err
	}
	preset = preset.WithFontSize(job.FontSizePx)

	// Filter.
	if err := p.advance(ctx, job, model.JobStatusFiltering, 55); err != nil {
		return err
	}
	if opts.CaptionMode == caption.ModeWords {
		tokens = caption.FilterTokens(tokens, opts.ShowFillerWords)
	} else {
		for i := range tokens {
			tokens[i].Active = true
		}
	}

	// Smooth.
	if err := p.advance(ctx, job, model.JobStatusSmoothing, 65); err != nil {
		return err
	}
	tokens = caption.SmoothTimings(tokens, clipDuration)

	// Build.
	if err := p.advance(ctx, job, model.JobStatusBuilding, 75); err != nil {
		return err
	}
	events, err := caption.BuildTrack(tokens, opts, preset)
	if err != nil {
		return err
	}
	if err := p.persistTrack(ctx, job.ID, events); err != nil {
		return err
	}

	// Render.
	if err := p.advance(ctx, job, model.JobStatusRendering, 80); err != nil {
		return err
	}
	assPath := filepath.Join(jobDir, "captions.ass")
	if err := os.WriteFile(assPath, []byte(p.assWriter.Write(events, preset)), 0o644); err != nil {
		return fmt.Errorf("failed to write subtitle file: %w", err)
	}
	srtPath := filepath.Join(jobDir, "captions.srt")
	if err := os.WriteFile(srtPath, []byte(subtitle.WriteSRT(events)), 0o644); err != nil {
		return fmt.Errorf("failed to write transcript file: %w", err)
	}

	outputPath := filepath.Join(jobDir, "output.mp4")
	if err := p.media.BurnSubtitles(ctx, videoPath, assPath, outputPath); err != nil {
		return err
	}

	outputKey := p.files.GenerateOutputKey(job.ID)
	if err := p.uploadWithRetry(ctx, outputKey, outputPath, "video/mp4"); err != nil {
		return fmt.Errorf("%w: output upload: %v", caption.ErrExternalStageFailed, err)
	}
	srtKey := outputKey[:len(outputKey)-len(".mp4")] + ".srt"
	if err := p.uploadWithRetry(ctx, srtKey, srtPath, "application/x-subrip"); err != nil {
		logger.Warn("Failed to upload transcript", zap.String("job_id", job.ID), zap.Error(err))
	}

	// Complete.
	if cancelled, err := p.checkCancelled(ctx, job); cancelled || err != nil {
		if cancelled {
			return errJobCancelled
		}
		return err
	}
	job.SetCompleted(outputKey)
	if err := p.storage.UpdateJob(ctx, job); err != nil {
		return fmt.Errorf("failed to mark job completed: %w", err)
	}
	p.cacheStatus(ctx, job)
	if p.notifier != nil {
		p.notifier.JobCompleted(job)
	}
	return nil
}

// advance is the stage boundary: it honors a pending cancellation first, then
// records the new stage in Postgres and the status cache.
func (p *Processor) advance(ctx context.Context, job *model.Job, status model.JobStatus, progress int) error {
	if cancelled, err := p.checkCancelled(ctx, job); cancelled || err != nil {
		if cancelled {
			return errJobCancelled
		}
		return err
	}

	job.AdvanceTo(status, progress)
	if err := p.storage.UpdateJob(ctx, job); err != nil {
		return fmt.Errorf("failed to advance job to %s: %w", status, err)
	}
	p.cacheStatus(ctx, job)

	logger.Info("Stage started",
		zap.String("job_id", job.ID),
		zap.String("stage", string(status)),
		zap.Int("progress", progress))
	return nil
}

var errJobCancelled = errors.New("job cancelled")

// checkCancelled reports whether the job was cancelled, either via the cancel
// flag or the job context, and records the terminal state if so.
func (p *Processor) checkCancelled(ctx context.Context, job *model.Job) (bool, error) {
	flagged, err := p.cache.Exists(ctx, cache.JobCancelCacheKey(job.ID))
	if err != nil {
		logger.Warn("Failed to check cancel flag", zap.String("job_id", job.ID), zap.Error(err))
	}
	if !flagged && ctx.Err() == nil {
		return false, nil
	}

	job.SetCancelled()
	// Terminal updates must land even when the job context is gone.
	updateCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := p.storage.UpdateJob(updateCtx, job); err != nil {
		return true, fmt.Errorf("failed to mark job cancelled: %w", err)
	}
	p.cacheStatus(updateCtx, job)

	logger.Info("Job cancelled", zap.String("job_id", job.ID))
	return true, nil
}

func (p *Processor) watchCancellation(ctx context.Context, jobID string, cancel context.CancelFunc) {
	ticker := time.NewTicker(cancelPollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			flagged, err := p.cache.Exists(ctx, cache.JobCancelCacheKey(jobID))
			if err == nil && flagged {
				cancel()
				return
			}
		}
	}
}

func (p *Processor) persistTrack(ctx context.Context, jobID string, events []caption.CaptionEvent) error {
	raw, err := json.Marshal(events)
	if err != nil {
		return fmt.Errorf("failed to marshal caption track: %w", err)
	}

	track := &model.CaptionTrack{
		ID:         uuid.NewString(),
		JobID:      jobID,
		Events:     raw,
		EventCount: len(events),
		CreatedAt:  time.Now(),
	}
	if err := p.storage.CreateCaptionTrack(ctx, track); err != nil {
		return fmt.Errorf("failed to persist caption track: %w", err)
	}

	if err := p.cache.Set(ctx, cache.TrackCacheKey(jobID), track); err != nil {
		logger.Debug("Failed to cache caption track", zap.Error(err))
	}
	return nil
}

func (p *Processor) uploadWithRetry(ctx context.Context, key, path, contentType string) error {
	return resilience.RetryWithExponentialBackoff(ctx, p.retry, func() error {
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()
		return p.files.UploadFile(ctx, key, f, contentType)
	})
}

func (p *Processor) cacheStatus(ctx context.Context, job *model.Job) {
	if err := p.cache.SetWithTTL(ctx, cache.JobStatusCacheKey(job.ID), job, 5*time.Second); err != nil {
		logger.Debug("Failed to cache job status", zap.Error(err))
	}
}

// handleJobError records the failure on the job. Cancellation is not a
// failure; malformed input, bad configuration and exhausted external stages
// all fail the job with the cause preserved for the status endpoint.
func (p *Processor) handleJobError(ctx context.Context, job *model.Job, err error) {
	if errors.Is(err, errJobCancelled) || job.Status == model.JobStatusCancelled {
		return
	}

	// A stage killed mid-flight by the cancellation watcher surfaces as a
	// process error; it still counts as a cancellation, not a failure.
	flagCtx, flagCancel := context.WithTimeout(context.Background(), 5*time.Second)
	flagged, flagErr := p.cache.Exists(flagCtx, cache.JobCancelCacheKey(job.ID))
	flagCancel()
	if flagErr == nil && flagged {
		job.SetCancelled()
		updateCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if updateErr := p.storage.UpdateJob(updateCtx, job); updateErr != nil {
			logger.Error("Failed to mark job cancelled",
				zap.String("job_id", job.ID), zap.Error(updateErr))
		}
		p.cacheStatus(updateCtx, job)
		logger.Info("Job cancelled", zap.String("job_id", job.ID))
		return
	}

	switch {
	case errors.Is(err, caption.ErrInternalInvariant):
		logger.Error("Pipeline invariant violated",
			zap.String("job_id", job.ID), zap.Error(err))
	case caption.IsUserError(err):
		logger.Warn("Job failed on bad input",
			zap.String("job_id", job.ID), zap.Error(err))
	default:
		logger.Error("Job failed",
			zap.String("job_id", job.ID), zap.Error(err))
	}

	job.SetError(err.Error())
	updateCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if updateErr := p.storage.UpdateJob(updateCtx, job); updateErr != nil {
		logger.Error("Failed to record job failure",
			zap.String("job_id", job.ID), zap.Error(updateErr))
	}
	p.cacheStatus(updateCtx, job)

	if p.notifier != nil {
		p.notifier.JobFailed(job)
	}
}
