package jobs

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	JobSessionPurge     = "session_purge"
	JobIdempotencyPrune = "idempotency_prune"
	JobEstimateSweep    = "estimate_session_sweep"
)

// Retention horizons for housekeeping. Expired sessions linger briefly for
// troubleshooting; idempotency keys must outlive any realistic client retry;
// estimation coordinators are cheap and only need to survive an active
// editing session.
const (
	sessionRetention     = 72 * time.Hour
	idempotencyRetention = 7 * 24 * time.Hour
	estimateIdleWindow   = 24 * time.Hour
)

// SessionEvictor trims idle per-worker estimation state.
type SessionEvictor interface {
	EvictIdleSessions(olderThan time.Duration) int
}

// Service runs background maintenance on a single worker goroutine. Each run
// is recorded in job_runs so operators can see when housekeeping last
// happened and what it removed.
type Service struct {
	DB        *pgxpool.Pool
	Estimates SessionEvictor
	queue     chan job
}

type job struct {
	Type string
	Run  func(context.Context) (any, error)
}

func New(db *pgxpool.Pool, estimates SessionEvictor) *Service {
	return &Service{
		DB:        db,
		Estimates: estimates,
		queue:     make(chan job, 16),
	}
}

// Start launches the worker and the periodic scheduler. A non-positive
// interval disables scheduling; Enqueue still works.
func (s *Service) Start(ctx context.Context, interval time.Duration) {
	go s.worker(ctx)
	if interval > 0 {
		go s.schedule(ctx, interval)
	}
}

func (s *Service) Enqueue(jobType string, run func(context.Context) (any, error)) {
	select {
	case s.queue <- job{Type: jobType, Run: run}:
	default:
		slog.Warn("job queue full", "jobType", jobType)
	}
}

func (s *Service) worker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case j := <-s.queue:
			if _, err := s.runJob(ctx, j); err != nil {
				slog.Warn("job run failed", "jobType", j.Type, "err", err)
			}
		}
	}
}

func (s *Service) runJob(ctx context.Context, j job) (any, error) {
	runID := ""
	if err := s.DB.QueryRow(ctx, `
    INSERT INTO job_runs (job_type, status)
    VALUES ($1,$2)
    RETURNING id
  `, j.Type, "running").Scan(&runID); err != nil {
		slog.Warn("job run insert failed", "err", err)
	}

	details, err := j.Run(ctx)
	status := "completed"
	if err != nil {
		status = "failed"
	}
	detailsJSON, marshalErr := json.Marshal(details)
	if marshalErr != nil {
		slog.Warn("job details marshal failed", "err", marshalErr)
		detailsJSON = []byte("{}")
	}
	if runID != "" {
		if _, updErr := s.DB.Exec(ctx, `
      UPDATE job_runs
      SET status = $1, details_json = $2, completed_at = now()
      WHERE id = $3
    `, status, detailsJSON, runID); updErr != nil {
			slog.Warn("job run update failed", "err", updErr)
		}
	}
	return details, err
}

func (s *Service) schedule(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Enqueue(JobSessionPurge, s.purgeSessions)
			s.Enqueue(JobIdempotencyPrune, s.pruneIdempotencyKeys)
			if s.Estimates != nil {
				s.Enqueue(JobEstimateSweep, s.sweepEstimateSessions)
			}
		}
	}
}

func (s *Service) purgeSessions(ctx context.Context) (any, error) {
	cutoff := time.Now().Add(-sessionRetention)
	tag, err := s.DB.Exec(ctx, `
    DELETE FROM sessions
    WHERE expires_at < $1 OR (revoked_at IS NOT NULL AND revoked_at < $1)
  `, cutoff)
	if err != nil {
		return nil, err
	}
	return map[string]any{"deleted": tag.RowsAffected()}, nil
}

func (s *Service) pruneIdempotencyKeys(ctx context.Context) (any, error) {
	cutoff := time.Now().Add(-idempotencyRetention)
	tag, err := s.DB.Exec(ctx, `
    DELETE FROM idempotency_keys
    WHERE created_at < $1
  `, cutoff)
	if err != nil {
		return nil, err
	}
	return map[string]any{"deleted": tag.RowsAffected()}, nil
}

func (s *Service) sweepEstimateSessions(ctx context.Context) (any, error) {
	return map[string]any{"evicted": s.Estimates.EvictIdleSessions(estimateIdleWindow)}, nil
}
