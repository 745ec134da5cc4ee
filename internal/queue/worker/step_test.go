package worker

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/mmutuku/campushub/internal/jobs"
	"github.com/mmutuku/campushub/internal/mail"
)

type fakeRepo struct {
	job      jobs.Job
	claimErr error

	done        []string
	skipped     []string
	failed      []string
	rescheduled []string
	lastRunAt   time.Time
}

func (f *fakeRepo) ClaimNext(ctx context.Context, workerID string) (jobs.Job, error) {
	if f.claimErr != nil {
		return jobs.Job{}, f.claimErr
	}
	return f.job, nil
}

func (f *fakeRepo) MarkDone(ctx context.Context, id string) error {
	f.done = append(f.done, id)
	return nil
}

func (f *fakeRepo) MarkSkipped(ctx context.Context, id, reason string) error {
	f.skipped = append(f.skipped, id)
	return nil
}

func (f *fakeRepo) MarkFailed(ctx context.Context, id, errMsg string) error {
	f.failed = append(f.failed, id)
	return nil
}

func (f *fakeRepo) Reschedule(ctx context.Context, id string, runAt time.Time, errMsg string) error {
	f.rescheduled = append(f.rescheduled, id)
	f.lastRunAt = runAt
	return nil
}

type fakeSender struct {
	err   error
	sent  []mail.Message
	calls int
}

func (f *fakeSender) Send(ctx context.Context, msg mail.Message) error {
	f.calls++
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, msg)
	return nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func resetJob(t *testing.T) jobs.Job {
	t.Helper()

	payload, err := jobs.EncodePayload(jobs.KindPasswordReset, jobs.PasswordResetPayload{
		Name:      "Alice",
		Token:     "deadbeefdeadbeefdeadbeefdeadbeef",
		ResetURL:  "http://localhost:8080/reset-password?email=alice@mail.example.edu",
		ExpiresAt: time.Now().Add(15 * time.Minute),
	})

	if err != nil {
		t.Fatalf("encode payload: %v", err)
	}

	j, err := jobs.New(jobs.KindPasswordReset, "alice@mail.example.edu", payload)

	if err != nil {
		t.Fatalf("new job: %v", err)
	}

	j.Attempts = 1
	return j
}

func newTestWorker(repo *fakeRepo, sender mail.Sender) *Worker {
	return New(Config{WorkerID: "test-1", PollInterval: time.Second}, repo, sender, nil, nil, discardLogger())
}

func TestProcessOneEmptyQueue(t *testing.T) {
	repo := &fakeRepo{claimErr: jobs.ErrJobNotFound}
	w := newTestWorker(repo, &fakeSender{})

	processed, err := w.ProcessOne(context.Background())

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if processed {
		t.Error("empty queue should report processed=false")
	}
}

func TestProcessOneSuccess(t *testing.T) {
	repo := &fakeRepo{job: resetJob(t)}
	sender := &fakeSender{}
	w := newTestWorker(repo, sender)

	processed, err := w.ProcessOne(context.Background())

	if err != nil || !processed {
		t.Fatalf("processed=%v err=%v", processed, err)
	}

	if len(repo.done) != 1 {
		t.Errorf("done=%v, want one entry", repo.done)
	}

	if len(sender.sent) != 1 {
		t.Fatalf("sent=%d, want 1", len(sender.sent))
	}

	if sender.sent[0].To != "alice@mail.example.edu" {
		t.Errorf("to=%q", sender.sent[0].To)
	}
}

func TestProcessOneUnconfiguredTransportSkips(t *testing.T) {
	repo := &fakeRepo{job: resetJob(t)}
	w := newTestWorker(repo, &fakeSender{err: mail.ErrNotConfigured})

	if _, err := w.ProcessOne(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(repo.skipped) != 1 {
		t.Errorf("skipped=%v, want one entry", repo.skipped)
	}

	if len(repo.failed) != 0 || len(repo.rescheduled) != 0 {
		t.Error("a missing transport must neither fail nor retry the job")
	}
}

func TestProcessOneTransientFailureReschedules(t *testing.T) {
	repo := &fakeRepo{job: resetJob(t)}
	w := newTestWorker(repo, &fakeSender{err: errors.New("smtp: connection refused")})

	if _, err := w.ProcessOne(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(repo.rescheduled) != 1 {
		t.Fatalf("rescheduled=%v, want one entry", repo.rescheduled)
	}

	if !repo.lastRunAt.After(time.Now()) {
		t.Error("reschedule time should be in the future")
	}
}

func TestProcessOneExhaustedRetriesFails(t *testing.T) {
	j := resetJob(t)
	j.Attempts = j.MaxTries

	repo := &fakeRepo{job: j}
	w := newTestWorker(repo, &fakeSender{err: errors.New("smtp: 550 rejected")})

	if _, err := w.ProcessOne(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(repo.failed) != 1 {
		t.Errorf("failed=%v, want one entry", repo.failed)
	}

	if len(repo.rescheduled) != 0 {
		t.Error("exhausted job must not be rescheduled")
	}
}

func TestProcessOneBadPayloadFailsWithoutSending(t *testing.T) {
	j := resetJob(t)
	j.Payload = []byte("{not json")

	repo := &fakeRepo{job: j}
	sender := &fakeSender{}
	w := newTestWorker(repo, sender)

	if _, err := w.ProcessOne(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(repo.failed) != 1 {
		t.Errorf("failed=%v, want one entry", repo.failed)
	}

	if sender.calls != 0 {
		t.Error("malformed payload must not reach the transport")
	}
}
