package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mmutuku/campushub/internal/jobs"
	"github.com/mmutuku/campushub/internal/observability"
)

const mailJobColumns = `id, kind, recipient, payload, status, attempts, max_tries, run_at, locked_by, locked_at, last_error, created_at, updated_at`

type MailJobsRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewMailJobsRepo(pool *pgxpool.Pool, prom *observability.Prom) *MailJobsRepo {
	return &MailJobsRepo{pool: pool, prom: prom}
}

func (r *MailJobsRepo) observe(op string, fn func() error) error {
	if r.prom != nil {
		return r.prom.ObserveDB(op, fn)
	}
	return fn()
}

func (r *MailJobsRepo) Create(ctx context.Context, j jobs.Job) error {
	return r.observe("mail_jobs.create", func() error {
		_, err := r.pool.Exec(ctx,
			`INSERT INTO mail_jobs (id, kind, recipient, payload, status, attempts, max_tries, run_at, locked_by, locked_at, last_error, created_at, updated_at)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)`,
			j.ID, j.Kind, j.Recipient, j.Payload, string(j.Status), j.Attempts, j.MaxTries, j.RunAt, j.LockedBy, j.LockedAt, j.LastError, j.CreatedAt, j.UpdatedAt,
		)
		return err
	})
}

// ClaimNext atomically takes the oldest runnable job. SKIP LOCKED keeps
// concurrent workers from contending on the same row.
func (r *MailJobsRepo) ClaimNext(ctx context.Context, workerID string) (jobs.Job, error) {
	var j jobs.Job

	err := r.observe("mail_jobs.claim_next", func() error {
		return r.pool.QueryRow(ctx,
			`UPDATE mail_jobs
			SET status = 'processing',
			    attempts = attempts + 1,
			    locked_by = $1,
			    locked_at = NOW(),
			    updated_at = NOW()
			WHERE id = (
				SELECT id FROM mail_jobs
				WHERE status = 'pending' AND run_at <= NOW()
				ORDER BY run_at ASC, created_at ASC
				FOR UPDATE SKIP LOCKED
				LIMIT 1
			)
			RETURNING `+mailJobColumns,
			workerID,
		).Scan(
			&j.ID, &j.Kind, &j.Recipient, &j.Payload, &j.Status, &j.Attempts,
			&j.MaxTries, &j.RunAt, &j.LockedBy, &j.LockedAt, &j.LastError,
			&j.CreatedAt, &j.UpdatedAt,
		)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return jobs.Job{}, jobs.ErrJobNotFound
		}

		return jobs.Job{}, err
	}

	return j, nil
}

func (r *MailJobsRepo) MarkDone(ctx context.Context, id string) error {
	return r.markTerminal(ctx, "mail_jobs.mark_done", id, jobs.StatusSucceeded, nil)
}

func (r *MailJobsRepo) MarkSkipped(ctx context.Context, id, reason string) error {
	return r.markTerminal(ctx, "mail_jobs.mark_skipped", id, jobs.StatusSkipped, &reason)
}

func (r *MailJobsRepo) MarkFailed(ctx context.Context, id, errMsg string) error {
	return r.markTerminal(ctx, "mail_jobs.mark_failed", id, jobs.StatusFailed, &errMsg)
}

func (r *MailJobsRepo) markTerminal(ctx context.Context, op, id string, status jobs.Status, lastError *string) error {
	return r.observe(op, func() error {
		tag, err := r.pool.Exec(ctx,
			`UPDATE mail_jobs
			SET status = $2,
			    locked_by = NULL,
			    locked_at = NULL,
			    last_error = $3,
			    updated_at = NOW()
			WHERE id = $1`,
			id, string(status), lastError,
		)

		if err != nil {
			return err
		}

		if tag.RowsAffected() == 0 {
			return jobs.ErrJobNotFound
		}

		return nil
	})
}

// Reschedule puts a failed attempt back in the queue at runAt.
func (r *MailJobsRepo) Reschedule(ctx context.Context, id string, runAt time.Time, errMsg string) error {
	return r.observe("mail_jobs.reschedule", func() error {
		tag, err := r.pool.Exec(ctx,
			`UPDATE mail_jobs
			SET status = 'pending',
			    run_at = $2,
			    locked_by = NULL,
			    locked_at = NULL,
			    last_error = $3,
			    updated_at = NOW()
			WHERE id = $1`,
			id, runAt, errMsg,
		)

		if err != nil {
			return err
		}

		if tag.RowsAffected() == 0 {
			return jobs.ErrJobNotFound
		}

		return nil
	})
}
