package notification

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// A notification is addressed either to a single user or to every holder of a
// role; exactly one of the recipient fields is set.
type Notification struct {
	ID              string     `json:"id"`
	RecipientUserID *string    `json:"recipientUserId,omitempty"`
	RecipientRole   *string    `json:"recipientRole,omitempty"`
	Title           string     `json:"title"`
	Body            string     `json:"body,omitempty"`
	ReadAt          *time.Time `json:"readAt,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
}

var ErrNotFound = errors.New("notification not found")

func ForRole(role, title, body string) Notification {
	return Notification{
		ID:            uuid.NewString(),
		RecipientRole: &role,
		Title:         title,
		Body:          body,
		CreatedAt:     time.Now().UTC(),
	}
}

func ForUser(userID, title, body string) Notification {
	return Notification{
		ID:              uuid.NewString(),
		RecipientUserID: &userID,
		Title:           title,
		Body:            body,
		CreatedAt:       time.Now().UTC(),
	}
}
