package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/passbi/railcore/internal/models"
)

// ImportLogStore records the lifecycle of a GTFS import run, used by
// cmd/importer to mark each attempt started/succeeded/failed.
type ImportLogStore struct {
	db *pgxpool.Pool
}

// NewImportLogStore wraps an existing pool.
func NewImportLogStore(db *pgxpool.Pool) *ImportLogStore {
	return &ImportLogStore{db: db}
}

// Start records a new import run as in-progress and returns its id.
func (s *ImportLogStore) Start(ctx context.Context) (int64, error) {
	var id int64
	err := s.db.QueryRow(ctx,
		`INSERT INTO import_log (started_at, status) VALUES ($1, 'running') RETURNING id`,
		time.Now().UTC(),
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("store: start import log: %w", err)
	}
	return id, nil
}

// Succeed marks an import run complete with station/train counts.
func (s *ImportLogStore) Succeed(ctx context.Context, id int64, stationCount, trainCount int) error {
	_, err := s.db.Exec(ctx,
		`UPDATE import_log SET completed_at = $1, status = 'succeeded', station_count = $2, train_count = $3 WHERE id = $4`,
		time.Now().UTC(), stationCount, trainCount, id,
	)
	if err != nil {
		return fmt.Errorf("store: complete import log: %w", err)
	}
	return nil
}

// Fail marks an import run failed with the triggering error.
func (s *ImportLogStore) Fail(ctx context.Context, id int64, cause error) error {
	_, err := s.db.Exec(ctx,
		`UPDATE import_log SET completed_at = $1, status = 'failed', error_msg = $2 WHERE id = $3`,
		time.Now().UTC(), cause.Error(), id,
	)
	if err != nil {
		return fmt.Errorf("store: fail import log: %w", err)
	}
	return nil
}

// Latest returns the most recent import run, or ok=false if none exist.
func (s *ImportLogStore) Latest(ctx context.Context) (models.ImportLog, bool, error) {
	var log models.ImportLog
	var completedAt *time.Time
	err := s.db.QueryRow(ctx,
		`SELECT id, started_at, completed_at, status, station_count, train_count, error_msg
		 FROM import_log ORDER BY id DESC LIMIT 1`,
	).Scan(&log.ID, &log.StartedAt, &completedAt, &log.Status, &log.StationCount, &log.TrainCount, &log.ErrorMsg)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.ImportLog{}, false, nil
		}
		return models.ImportLog{}, false, fmt.Errorf("store: latest import log: %w", err)
	}
	log.CompletedAt = completedAt
	return log, true, nil
}
