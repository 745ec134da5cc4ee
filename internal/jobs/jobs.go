package jobs

import (
	"time"

	"github.com/google/uuid"
)

// a Job is one queued piece of outbound mail. Rows live in the mail_jobs
// table and are claimed by the worker.

type Job struct {
	ID        string     `json:"id"`
	Kind      Kind       `json:"kind"`
	Recipient string     `json:"recipient"`
	Payload   []byte     `json:"payload"` // raw json
	Status    Status     `json:"status"`
	Attempts  int        `json:"attempts"`
	MaxTries  int        `json:"maxTries"`
	RunAt     time.Time  `json:"runAt"`
	LockedBy  *string    `json:"lockedBy,omitempty"`
	LockedAt  *time.Time `json:"lockedAt,omitempty"`
	LastError *string    `json:"lastError,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// creation of a new pending job with defaults.

func New(k Kind, recipient string, payloadJSON []byte) (Job, error) {
	if !k.IsValid() {
		return Job{}, ErrInvalidKind
	}

	now := time.Now().UTC()

	j := Job{
		ID:        uuid.NewString(),
		Kind:      k,
		Recipient: recipient,
		Payload:   payloadJSON,
		Status:    StatusPending,
		Attempts:  0,
		MaxTries:  5,
		RunAt:     now,
		CreatedAt: now,
		UpdatedAt: now,
	}

	return j, nil
}
