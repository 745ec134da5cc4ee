package jobs

import "errors"

var (
	ErrInvalidKind         = errors.New("invalid mail job kind")
	ErrInvalidStatus       = errors.New("invalid mail job status")
	ErrInvalidPayload      = errors.New("invalid mail job payload")
	ErrPayloadKindMismatch = errors.New("payload type mismatch for mail job kind")
	ErrJobNotFound         = errors.New("mail job not found")
)
