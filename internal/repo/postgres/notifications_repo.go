package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mmutuku/campushub/internal/domain/notification"
)

const notificationColumns = `id, recipient_user_id, recipient_role, title, body, read_at, created_at`

type NotificationsRepo struct {
	pool *pgxpool.Pool
}

func NewNotificationsRepo(pool *pgxpool.Pool) *NotificationsRepo {
	return &NotificationsRepo{
		pool: pool,
	}
}

func (r *NotificationsRepo) Create(ctx context.Context, n notification.Notification) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO notifications (id, recipient_user_id, recipient_role, title, body, read_at, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		n.ID, n.RecipientUserID, n.RecipientRole, n.Title, n.Body, n.ReadAt, n.CreatedAt,
	)

	return err
}

// ListForRecipient returns notifications addressed to the user directly or to
// their role, newest first.
func (r *NotificationsRepo) ListForRecipient(ctx context.Context, userID, role string, limit int) ([]notification.Notification, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	rows, err := r.pool.Query(ctx,
		`SELECT `+notificationColumns+`
		FROM notifications
		WHERE recipient_user_id = $1 OR recipient_role = $2
		ORDER BY created_at DESC
		LIMIT $3`,
		userID, role, limit,
	)

	if err != nil {
		return nil, err
	}

	defer rows.Close()

	out := make([]notification.Notification, 0, limit)

	for rows.Next() {
		var n notification.Notification

		err = rows.Scan(&n.ID, &n.RecipientUserID, &n.RecipientRole, &n.Title, &n.Body, &n.ReadAt, &n.CreatedAt)

		if err != nil {
			return nil, err
		}

		out = append(out, n)
	}

	return out, rows.Err()
}

// MarkRead flips read_at, but only for a notification the caller may see.
func (r *NotificationsRepo) MarkRead(ctx context.Context, id, userID, role string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE notifications
		SET read_at = NOW()
		WHERE id = $1
		  AND read_at IS NULL
		  AND (recipient_user_id = $2 OR recipient_role = $3)`,
		id, userID, role,
	)

	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return notification.ErrNotFound
	}

	return nil
}
