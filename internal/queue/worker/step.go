package worker

import (
	"context"
	"errors"
	"time"

	"github.com/mmutuku/campushub/internal/jobs"
	"github.com/mmutuku/campushub/internal/mail"
)

// ProcessOne claims and executes a single job. Returns whether a job was
// claimed at all; an empty queue is not an error.
func (w *Worker) ProcessOne(ctx context.Context) (bool, error) {
	claimCtx, cancel := context.WithTimeout(ctx, 2*time.Second)

	j, err := w.repo.ClaimNext(claimCtx, w.cfg.WorkerID)
	cancel()

	if err != nil {
		if errors.Is(err, jobs.ErrJobNotFound) {
			return false, nil
		}

		return false, err
	}

	if w.prom != nil {
		w.prom.MailJobsInFlight.Inc()
		defer w.prom.MailJobsInFlight.Dec()
	}

	started := time.Now()
	result := w.execute(ctx, j)

	if w.prom != nil {
		w.prom.ObserveMailJob(string(j.Kind), result, started)
	}

	return true, nil
}

func (w *Worker) execute(ctx context.Context, j jobs.Job) (result string) {
	msg, err := buildMessage(j)

	if err != nil {
		// a malformed payload never gets better with retries
		w.log.ErrorContext(ctx, "mail job payload rejected", "job_id", j.ID, "kind", j.Kind, "err", err)
		w.markFailed(ctx, j, "bad_payload: "+err.Error())
		return "failed"
	}

	err = w.sender.Send(ctx, msg)

	switch {
	case err == nil:
		w.log.InfoContext(ctx, "mail job sent", "job_id", j.ID, "kind", j.Kind, "to", j.Recipient, "attempt", j.Attempts)

		if err := w.repo.MarkDone(ctx, j.ID); err != nil {
			w.log.ErrorContext(ctx, "mark mail job done", "job_id", j.ID, "err", err)
		}

		return "done"

	case errors.Is(err, mail.ErrNotConfigured):
		// no transport is a deliberate deployment choice, not a failure
		w.log.InfoContext(ctx, "mail job skipped, transport not configured", "job_id", j.ID, "kind", j.Kind)

		if err := w.repo.MarkSkipped(ctx, j.ID, "mail transport not configured"); err != nil {
			w.log.ErrorContext(ctx, "mark mail job skipped", "job_id", j.ID, "err", err)
		}

		return "skipped"

	default:
		if j.Attempts >= j.MaxTries {
			w.log.ErrorContext(ctx, "mail job exhausted retries", "job_id", j.ID, "kind", j.Kind, "attempts", j.Attempts, "err", err)
			w.markFailed(ctx, j, err.Error())
			return "failed"
		}

		delay := ExponentialBackoff(j.Attempts)
		runAt := time.Now().UTC().Add(delay)

		w.log.WarnContext(ctx, "mail job send failed, rescheduling",
			"job_id", j.ID, "kind", j.Kind, "attempt", j.Attempts, "retry_in", delay.String(), "err", err)

		if err := w.repo.Reschedule(ctx, j.ID, runAt, err.Error()); err != nil {
			w.log.ErrorContext(ctx, "reschedule mail job", "job_id", j.ID, "err", err)
		}

		return "retry"
	}
}

func (w *Worker) markFailed(ctx context.Context, j jobs.Job, reason string) {
	if err := w.repo.MarkFailed(ctx, j.ID, reason); err != nil {
		w.log.ErrorContext(ctx, "mark mail job failed", "job_id", j.ID, "err", err)
	}
}

// buildMessage turns a job row into the concrete outbound message. Secret
// material (reset tokens, initial passwords) goes into the message body only;
// it is never logged.
func buildMessage(j jobs.Job) (mail.Message, error) {
	decoded, err := jobs.DecodePayload(j)

	if err != nil {
		return mail.Message{}, err
	}

	switch p := decoded.(type) {
	case jobs.PasswordResetPayload:
		return mail.ResetMessage(j.Recipient, p.Name, p.ResetURL, p.Token, p.ExpiresAt), nil

	case jobs.AdminCredentialsPayload:
		return mail.AdminCredentialsMessage(j.Recipient, p.Name, p.Role, p.Password, p.LoginURL), nil

	default:
		return mail.Message{}, jobs.ErrInvalidKind
	}
}
