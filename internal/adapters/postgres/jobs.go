package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"mindweb/internal/domain"
	"mindweb/internal/ports"
)

const txTimeout = 5 * time.Second

// Update locks the job row, applies mutate and writes the result back in a
// single transaction.
func (db *DB) Update(ctx context.Context, id string, mutate ports.Mutator) (out domain.Job, err error) {
	ctx, cancel := context.WithTimeout(ctx, txTimeout)
	defer cancel()
	tx, err := db.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return out, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		} else {
			err = tx.Commit(ctx)
		}
	}()

	cur, err := scanJob(tx.QueryRow(ctx, `SELECT `+jobColumns+` FROM jobs WHERE id = $1 FOR UPDATE`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return out, domain.NotFoundError("job %s not found", id)
	}
	if err != nil {
		return out, err
	}

	next, err := ports.Apply(cur, mutate, time.Now().UTC())
	if err != nil {
		return cur, err
	}
	result, err := encodeResult(next.Result)
	if err != nil {
		return cur, err
	}
	_, err = tx.Exec(ctx, `
        UPDATE jobs
        SET status = $2, progress = $3, stage = $4, result = $5, error = $6,
            updated_at = $7, completed_at = $8
        WHERE id = $1
    `, id, string(next.Status), next.Progress, next.Stage, result, next.Error, next.UpdatedAt, next.CompletedAt)
	if err != nil {
		return cur, err
	}
	return next, nil
}

var (
	_ ports.JobStore      = (*DB)(nil)
	_ ports.PendingLister = (*DB)(nil)
)
