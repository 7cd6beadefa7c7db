package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jmartinez/canje/modules/sourceruns/model"
)

// SourceRunRepository implements ports.SourceRunRepository against Postgres.
type SourceRunRepository struct {
	pool *pgxpool.Pool
}

func NewSourceRunRepository(pool *pgxpool.Pool) *SourceRunRepository {
	return &SourceRunRepository{pool: pool}
}

func (r *SourceRunRepository) Create(ctx context.Context, run *model.SourceRun) error {
	run.ID = uuid.New().String()
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now().UTC()
	}
	if run.Status == "" {
		run.Status = model.StatusRunning
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO source_runs (
			id, source_id, status, started_at, finished_at, jobs_found, jobs_new,
			checkpoint, structure_hash, consecutive_zero_runs, error_message
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
		run.ID, run.SourceID, string(run.Status), run.StartedAt, run.FinishedAt, run.JobsFound, run.JobsNew,
		run.Checkpoint, run.StructureHash, run.ConsecutiveZeroRuns, run.ErrorMessage,
	)
	return err
}

// Finalize writes the terminal status for a run and recomputes
// consecutive_zero_runs per the §3 invariant, seeded from the prior run (if
// any) other than this one.
func (r *SourceRunRepository) Finalize(ctx context.Context, id string, status model.Status, jobsFound, jobsNew int, structureHash string, checkpoint []byte, errMsg string) (*model.SourceRun, error) {
	run, err := r.getByID(ctx, id)
	if err != nil {
		return nil, err
	}

	prior, err := r.priorRun(ctx, run.SourceID, id)
	if err != nil {
		return nil, err
	}
	previousCount := 0
	if prior != nil {
		previousCount = prior.ConsecutiveZeroRuns
	}

	now := time.Now().UTC()
	run.Status = status
	run.FinishedAt = &now
	run.JobsFound = jobsFound
	run.JobsNew = jobsNew
	run.StructureHash = structureHash
	run.Checkpoint = checkpoint
	run.ErrorMessage = errMsg
	run.ConsecutiveZeroRuns = model.NextConsecutiveZeroRuns(previousCount, status, jobsFound)

	_, err = r.pool.Exec(ctx, `
		UPDATE source_runs SET status=$2, finished_at=$3, jobs_found=$4, jobs_new=$5,
			structure_hash=$6, checkpoint=$7, consecutive_zero_runs=$8, error_message=$9
		WHERE id=$1`,
		run.ID, string(run.Status), run.FinishedAt, run.JobsFound, run.JobsNew,
		run.StructureHash, run.Checkpoint, run.ConsecutiveZeroRuns, run.ErrorMessage,
	)
	if err != nil {
		return nil, err
	}
	return run, nil
}

func (r *SourceRunRepository) priorRun(ctx context.Context, sourceID, excludeID string) (*model.SourceRun, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, source_id, status, started_at, finished_at, jobs_found, jobs_new,
			checkpoint, structure_hash, consecutive_zero_runs, error_message
		FROM source_runs WHERE source_id = $1 AND id != $2
		ORDER BY started_at DESC LIMIT 1`, sourceID, excludeID)
	return scanRow(row)
}

func (r *SourceRunRepository) getByID(ctx context.Context, id string) (*model.SourceRun, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, source_id, status, started_at, finished_at, jobs_found, jobs_new,
			checkpoint, structure_hash, consecutive_zero_runs, error_message
		FROM source_runs WHERE id = $1`, id)
	run, err := scanRow(row)
	if err != nil {
		return nil, err
	}
	if run == nil {
		return nil, model.ErrSourceRunNotFound
	}
	return run, nil
}

func (r *SourceRunRepository) Latest(ctx context.Context, sourceID string) (*model.SourceRun, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, source_id, status, started_at, finished_at, jobs_found, jobs_new,
			checkpoint, structure_hash, consecutive_zero_runs, error_message
		FROM source_runs WHERE source_id = $1
		ORDER BY started_at DESC LIMIT 1`, sourceID)
	return scanRow(row)
}

func (r *SourceRunRepository) ListBySource(ctx context.Context, sourceID string, limit int) ([]*model.SourceRun, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, source_id, status, started_at, finished_at, jobs_found, jobs_new,
			checkpoint, structure_hash, consecutive_zero_runs, error_message
		FROM source_runs WHERE source_id = $1
		ORDER BY started_at DESC LIMIT $2`, sourceID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.SourceRun
	for rows.Next() {
		run := &model.SourceRun{}
		var status string
		if err := rows.Scan(
			&run.ID, &run.SourceID, &status, &run.StartedAt, &run.FinishedAt, &run.JobsFound, &run.JobsNew,
			&run.Checkpoint, &run.StructureHash, &run.ConsecutiveZeroRuns, &run.ErrorMessage,
		); err != nil {
			return nil, err
		}
		run.Status = model.Status(status)
		out = append(out, run)
	}
	return out, rows.Err()
}

func scanRow(row pgx.Row) (*model.SourceRun, error) {
	run := &model.SourceRun{}
	var status string
	err := row.Scan(
		&run.ID, &run.SourceID, &status, &run.StartedAt, &run.FinishedAt, &run.JobsFound, &run.JobsNew,
		&run.Checkpoint, &run.StructureHash, &run.ConsecutiveZeroRuns, &run.ErrorMessage,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	run.Status = model.Status(status)
	return run, nil
}
