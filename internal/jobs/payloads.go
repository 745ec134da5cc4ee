package jobs

import "time"

// PasswordResetPayload carries what the reset email needs. The token is the
// raw reset token; it lives only in this row and the recipient's inbox.
type PasswordResetPayload struct {
	Name      string    `json:"name"`
	Token     string    `json:"token"`
	ResetURL  string    `json:"resetUrl"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// AdminCredentialsPayload delivers the generated initial password for an
// admin-created account.
type AdminCredentialsPayload struct {
	Name     string `json:"name"`
	Role     string `json:"role"`
	Password string `json:"password"`
	LoginURL string `json:"loginUrl"`
}
