package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"mindweb/internal/domain"
)

const jobColumns = `id, url, summary_length, mindmap_type, status, progress, stage, result, error, created_at, updated_at, completed_at`

const uniqueViolation = "23505"

type rowScanner interface {
	Scan(dest ...any) error
}

func scanJob(row rowScanner) (domain.Job, error) {
	var (
		job     domain.Job
		mapType string
		status  string
		result  []byte
	)
	err := row.Scan(&job.ID, &job.URL, &job.SummaryLength, &mapType, &status, &job.Progress,
		&job.Stage, &result, &job.Error, &job.CreatedAt, &job.UpdatedAt, &job.CompletedAt)
	if err != nil {
		return domain.Job{}, err
	}
	job.MindMapType = domain.MindMapType(mapType)
	job.Status = domain.JobStatus(status)
	if len(result) > 0 {
		var r domain.Result
		if err := json.Unmarshal(result, &r); err != nil {
			return domain.Job{}, fmt.Errorf("decode result of job %s: %w", job.ID, err)
		}
		job.Result = &r
	}
	return job, nil
}

func encodeResult(r *domain.Result) ([]byte, error) {
	if r == nil {
		return nil, nil
	}
	return json.Marshal(r)
}

func (db *DB) Create(ctx context.Context, job domain.Job) error {
	result, err := encodeResult(job.Result)
	if err != nil {
		return err
	}
	_, err = db.Pool.Exec(ctx, `
        INSERT INTO jobs (`+jobColumns+`)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
    `, job.ID, job.URL, job.SummaryLength, string(job.MindMapType), string(job.Status), job.Progress,
		job.Stage, result, job.Error, job.CreatedAt, job.UpdatedAt, job.CompletedAt)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return domain.ConflictError("job %s already exists", job.ID)
	}
	return err
}

func (db *DB) Get(ctx context.Context, id string) (domain.Job, error) {
	job, err := scanJob(db.Pool.QueryRow(ctx, `SELECT `+jobColumns+` FROM jobs WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Job{}, domain.NotFoundError("job %s not found", id)
	}
	return job, err
}

// List returns every job, newest first.
func (db *DB) List(ctx context.Context) ([]domain.Job, error) {
	rows, err := db.Pool.Query(ctx, `SELECT `+jobColumns+` FROM jobs ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []domain.Job{}
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, job)
	}
	return out, rows.Err()
}

func (db *DB) Delete(ctx context.Context, id string) error {
	tag, err := db.Pool.Exec(ctx, `DELETE FROM jobs WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.NotFoundError("job %s not found", id)
	}
	return nil
}

// Queued returns the ids of queued jobs, oldest first.
func (db *DB) Queued(ctx context.Context) ([]string, error) {
	return db.idsWithStatus(ctx, domain.StatusQueued)
}

// Running returns the ids of jobs marked running, oldest first.
func (db *DB) Running(ctx context.Context) ([]string, error) {
	return db.idsWithStatus(ctx, domain.StatusRunning)
}

func (db *DB) idsWithStatus(ctx context.Context, status domain.JobStatus) ([]string, error) {
	rows, err := db.Pool.Query(ctx, `SELECT id FROM jobs WHERE status = $1 ORDER BY created_at, id`, string(status))
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[string])
}
