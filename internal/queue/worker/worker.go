package worker

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/mmutuku/campushub/internal/jobs"
	"github.com/mmutuku/campushub/internal/mail"
	"github.com/mmutuku/campushub/internal/observability"
)

type JobsRepository interface {
	ClaimNext(ctx context.Context, workerID string) (jobs.Job, error)
	MarkDone(ctx context.Context, id string) error
	MarkSkipped(ctx context.Context, id, reason string) error
	MarkFailed(ctx context.Context, id, errMsg string) error
	Reschedule(ctx context.Context, id string, runAt time.Time, errMsg string) error
}

// NudgeWaiter blocks until the API signals that new mail is queued, or the
// timeout elapses. Optional: without one the worker just polls.
type NudgeWaiter interface {
	WaitNudge(ctx context.Context, timeout time.Duration) (bool, error)
}

type Config struct {
	WorkerID     string
	PollInterval time.Duration
}

type Worker struct {
	cfg    Config
	repo   JobsRepository
	sender mail.Sender
	nudger NudgeWaiter
	prom   *observability.Prom
	log    *slog.Logger

	readyMu sync.RWMutex
	ready   bool
}

func New(cfg Config, repo JobsRepository, sender mail.Sender, nudger NudgeWaiter, prom *observability.Prom, log *slog.Logger) *Worker {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 5 * time.Second
	}

	return &Worker{
		cfg:    cfg,
		repo:   repo,
		sender: sender,
		nudger: nudger,
		prom:   prom,
		log:    log,
	}
}

func (w *Worker) setReady(ready bool) {
	w.readyMu.Lock()
	w.ready = ready
	w.readyMu.Unlock()
}

// Run drains the queue, then sleeps until a nudge or the next poll tick.
func (w *Worker) Run(ctx context.Context) error {
	w.setReady(true)
	defer w.setReady(false)

	w.log.InfoContext(ctx, "mail worker started", "worker_id", w.cfg.WorkerID, "poll_interval", w.cfg.PollInterval.String())

	for {
		if ctx.Err() != nil {
			w.log.InfoContext(ctx, "mail worker shutting down")
			return nil
		}

		processed, err := w.ProcessOne(ctx)

		if err != nil {
			w.log.ErrorContext(ctx, "process mail job", "err", err)
		}

		if processed {
			// drain before sleeping
			continue
		}

		w.wait(ctx)
	}
}

func (w *Worker) wait(ctx context.Context) {
	if w.nudger != nil {
		_, err := w.nudger.WaitNudge(ctx, w.cfg.PollInterval)

		if err != nil && ctx.Err() == nil {
			w.log.WarnContext(ctx, "wait for nudge", "err", err)

			// redis is down; fall back to a plain sleep so we do not spin
			select {
			case <-ctx.Done():
			case <-time.After(w.cfg.PollInterval):
			}
		}

		return
	}

	select {
	case <-ctx.Done():
	case <-time.After(w.cfg.PollInterval):
	}
}
