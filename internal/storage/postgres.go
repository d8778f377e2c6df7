package storage

import (
	"context"
	"fmt"
	"net/url"
	"path/filepath"
	"runtime"
	"time"

	"clipcap/pkg/logger"
	"clipcap/pkg/model"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"go.uber.org/zap"
)

type PostgresStorage struct {
	pool *pgxpool.Pool
}

// New PostgreSQL storage instance
func NewPostgresStorage(databaseURL string) (*PostgresStorage, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(context.Background(), config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Info("Database connection established")

	if err := runMigrations(databaseURL); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	logger.Info("Database migrations completed successfully")

	return &PostgresStorage{pool: pool}, nil
}

// Executing database migrations
func runMigrations(databaseURL string) error {
	migrationsPath, err := filepath.Abs("migrations")
	if err != nil {
		return fmt.Errorf("failed to get migrations path: %w", err)
	}

	// Create file URL from path (works on both Windows and Unix)
	var migrationsURL string
	if runtime.GOOS == "windows" {
		u := &url.URL{
			Scheme: "file",
			Path:   filepath.ToSlash(migrationsPath),
		}
		migrationsURL = u.String()
	} else {
		migrationsURL = fmt.Sprintf("file://%s", migrationsPath)
	}

	logger.Info("Running migrations", zap.String("path", migrationsURL))

	db := stdlib.OpenDB(*parseConfig(databaseURL))
	defer db.Close()

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("failed to create postgres driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		migrationsURL,
		"postgres",
		driver,
	)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}
	defer m.Close()

	err = m.Up()
	if err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	if err == migrate.ErrNoChange {
		logger.Info("No new migrations to apply")
	} else {
		logger.Info("Migrations applied successfully")
	}

	return nil
}

// Parses database URL into pgx config
func parseConfig(databaseURL string) *pgx.ConnConfig {
	config, err := pgx.ParseConfig(databaseURL)
	if err != nil {
		logger.Fatal("Failed to parse database URL", zap.Error(err))
	}
	return config
}

// Closes the database connection pool
func (s *PostgresStorage) Close() {
	s.pool.Close()
}

// CreateJob inserts a new caption job into the database
func (s *PostgresStorage) CreateJob(ctx context.Context, job *model.Job) error {
	query := `
		INSERT INTO jobs (
			id, video_key, status, progress, caption_mode, show_filler_words,
			preset_id, font_size_px, precision, output_key, error_text, meta,
			created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14
		)`

	_, err := s.pool.Exec(ctx, query,
		job.ID,
		job.VideoKey,
		job.Status,
		job.Progress,
		job.CaptionMode,
		job.ShowFillerWords,
		job.PresetID,
		job.FontSizePx,
		job.Precision,
		job.OutputKey,
		job.ErrorText,
		job.Meta,
		job.CreatedAt,
		job.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create job: %w", err)
	}

	return nil
}

// GetJobByID retrieves a job by its ID
func (s *PostgresStorage) GetJobByID(ctx context.Context, id string) (*model.Job, error) {
	query := `
		SELECT id, video_key, status, progress, caption_mode, show_filler_words,
		       preset_id, font_size_px, precision, output_key, error_text, meta,
		       created_at, updated_at
		FROM jobs
		WHERE id = $1`

	var job model.Job
	row := s.pool.QueryRow(ctx, query, id)

	err := row.Scan(
		&job.ID,
		&job.VideoKey,
		&job.Status,
		&job.Progress,
		&job.CaptionMode,
		&job.ShowFillerWords,
		&job.PresetID,
		&job.FontSizePx,
		&job.Precision,
		&job.OutputKey,
		&job.ErrorText,
		&job.Meta,
		&job.CreatedAt,
		&job.UpdatedAt,
	)

	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, fmt.Errorf("job not found")
		}
		return nil, fmt.Errorf("failed to get job: %w", err)
	}

	return &job, nil
}

// UpdateJob updates a full job record
func (s *PostgresStorage) UpdateJob(ctx context.Context, job *model.Job) error {
	query := `
		UPDATE jobs
		SET status = $2, progress = $3, output_key = $4, error_text = $5,
		    meta = $6, updated_at = $7
		WHERE id = $1`

	result, err := s.pool.Exec(ctx, query,
		job.ID,
		job.Status,
		job.Progress,
		job.OutputKey,
		job.ErrorText,
		job.Meta,
		job.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to update job: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("job not found")
	}

	return nil
}

// DeleteTerminalJobsBefore removes completed, failed and cancelled jobs last
// updated before cutoff, along with their caption tracks. This is the
// retention sweep that keeps the job store bounded.
func (s *PostgresStorage) DeleteTerminalJobsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	query := `
		DELETE FROM jobs
		WHERE status IN ('completed', 'failed', 'cancelled')
		  AND updated_at < $1`

	result, err := s.pool.Exec(ctx, query, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired jobs: %w", err)
	}

	return result.RowsAffected(), nil
}

// CreateCaptionTrack inserts the serialized caption track for a job
func (s *PostgresStorage) CreateCaptionTrack(ctx context.Context, track *model.CaptionTrack) error {
	query := `
		INSERT INTO caption_tracks (id, job_id, events, event_count, created_at)
		VALUES ($1, $2, $3, $4, $5)`

	_, err := s.pool.Exec(ctx, query,
		track.ID,
		track.JobID,
		track.Events,
		track.EventCount,
		track.CreatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create caption track: %w", err)
	}

	return nil
}

// GetCaptionTrackByJobID retrieves a caption track by job ID
func (s *PostgresStorage) GetCaptionTrackByJobID(ctx context.Context, jobID string) (*model.CaptionTrack, error) {
	query := `
		SELECT id, job_id, events, event_count, created_at
		FROM caption_tracks
		WHERE job_id = $1`

	var track model.CaptionTrack
	row := s.pool.QueryRow(ctx, query, jobID)

	err := row.Scan(
		&track.ID,
		&track.JobID,
		&track.Events,
		&track.EventCount,
		&track.CreatedAt,
	)

	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, fmt.Errorf("caption track not found")
		}
		return nil, fmt.Errorf("failed to get caption track: %w", err)
	}

	return &track, nil
}
