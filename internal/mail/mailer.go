package mail

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrNotConfigured is returned when the transport has no credentials. Callers
// treat it as a skip, not a failure: the primary operation always proceeds.
var ErrNotConfigured = errors.New("mail transport not configured")

type Message struct {
	To      string
	Subject string
	HTML    string
	Text    string
}

type Sender interface {
	Send(ctx context.Context, msg Message) error
}

func ResetMessage(to, name, resetURL, token string, expiresAt time.Time) Message {
	mins := int(time.Until(expiresAt).Minutes())
	if mins < 1 {
		mins = 1
	}

	return Message{
		To:      to,
		Subject: "Reset your password",
		HTML: fmt.Sprintf(
			"<p>Hi %s,</p><p>Use this code to reset your password: <strong>%s</strong></p><p>Or follow <a href=%q>this link</a>. It expires in %d minutes.</p>",
			name, token, resetURL, mins,
		),
		Text: fmt.Sprintf(
			"Hi %s,\n\nUse this code to reset your password: %s\nOr open: %s\nIt expires in %d minutes.\n",
			name, token, resetURL, mins,
		),
	}
}

func AdminCredentialsMessage(to, name, role, password, loginURL string) Message {
	return Message{
		To:      to,
		Subject: "Your administrator account",
		HTML: fmt.Sprintf(
			"<p>Hi %s,</p><p>An account with the %s role was created for you.</p><p>Temporary password: <strong>%s</strong></p><p>Sign in at <a href=%q>%s</a> and change it right away.</p>",
			name, role, password, loginURL, loginURL,
		),
		Text: fmt.Sprintf(
			"Hi %s,\n\nAn account with the %s role was created for you.\nTemporary password: %s\nSign in at %s and change it right away.\n",
			name, role, password, loginURL,
		),
	}
}
