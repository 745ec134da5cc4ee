package jobs

type Kind string

const (
	KindPasswordReset    Kind = "password_reset"
	KindAdminCredentials Kind = "admin_credentials"
)

// check to see if the kind is a known constant

func (k Kind) IsValid() bool {
	switch k {
	case KindPasswordReset, KindAdminCredentials:
		return true
	default:
		return false
	}
}

type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusSucceeded  Status = "succeeded"
	StatusSkipped    Status = "skipped"
	StatusFailed     Status = "failed"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusSucceeded, StatusSkipped, StatusFailed:
		return true
	default:
		return false
	}
}
