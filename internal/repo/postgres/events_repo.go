package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mmutuku/campushub/internal/domain/event"
)

const eventColumns = `id, title, description, location, category_id, start_at, end_at, capacity, image_url, is_cancelled, created_at, updated_at`

type EventsRepo struct {
	pool *pgxpool.Pool
}

func NewEventsRepo(pool *pgxpool.Pool) *EventsRepo {
	return &EventsRepo{
		pool: pool,
	}
}

func scanEvent(row pgx.Row) (event.Event, error) {
	var e event.Event

	err := row.Scan(
		&e.ID, &e.Title, &e.Description, &e.Location, &e.CategoryID,
		&e.StartAt, &e.EndAt, &e.Capacity, &e.ImageURL, &e.IsCancelled,
		&e.CreatedAt, &e.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return event.Event{}, event.ErrNotFound
		}
		return event.Event{}, err
	}

	return e, nil
}

func (r *EventsRepo) Create(ctx context.Context, req event.CreateEventRequest) (event.Event, error) {
	e := event.NewFromCreateRequest(req)

	_, err := r.pool.Exec(ctx,
		`INSERT INTO events (id, title, description, location, category_id, start_at, end_at, capacity, image_url, is_cancelled, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`,
		e.ID, e.Title, e.Description, e.Location, e.CategoryID, e.StartAt, e.EndAt, e.Capacity, e.ImageURL, e.IsCancelled, e.CreatedAt, e.UpdatedAt)

	if err != nil {
		return event.Event{}, err
	}

	return e, nil
}

func (r *EventsRepo) List(ctx context.Context, filter event.ListEventsFilter) ([]event.Event, int, error) {
	baseQuery := `SELECT ` + eventColumns + `, COUNT(*) OVER() AS total FROM events`

	var conds []string
	var args []interface{}

	argsPosition := 1

	if filter.CategoryID != nil {
		conds = append(conds, fmt.Sprintf("category_id = $%d", argsPosition))
		args = append(args, *filter.CategoryID)
		argsPosition++
	}

	if filter.From != nil {
		conds = append(conds, fmt.Sprintf("start_at >= $%d", argsPosition))
		args = append(args, *filter.From)
		argsPosition++
	}

	if filter.To != nil {
		conds = append(conds, fmt.Sprintf("start_at <= $%d", argsPosition))
		args = append(args, *filter.To)
		argsPosition++
	}

	query := baseQuery

	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}

	// stable ordering for pagination
	query += fmt.Sprintf(" ORDER BY start_at ASC, id ASC LIMIT $%d OFFSET $%d", argsPosition, argsPosition+1)

	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.pool.Query(ctx, query, args...)

	if err != nil {
		return nil, 0, err
	}

	defer rows.Close()

	output := make([]event.Event, 0, filter.Limit)
	total := 0

	for rows.Next() {
		var e event.Event
		var t int

		err = rows.Scan(
			&e.ID, &e.Title, &e.Description, &e.Location, &e.CategoryID,
			&e.StartAt, &e.EndAt, &e.Capacity, &e.ImageURL, &e.IsCancelled,
			&e.CreatedAt, &e.UpdatedAt, &t,
		)

		if err != nil {
			return nil, 0, err
		}

		total = t
		output = append(output, e)
	}

	err = rows.Err()

	if err != nil {
		return nil, 0, err
	}

	return output, total, nil
}

func (r *EventsRepo) GetByID(ctx context.Context, id string) (event.Event, error) {
	return scanEvent(r.pool.QueryRow(ctx,
		`SELECT `+eventColumns+` FROM events WHERE id = $1`, id))
}

func (r *EventsRepo) Update(ctx context.Context, id string, req event.UpdateEventRequest) (event.Event, error) {
	return scanEvent(r.pool.QueryRow(
		ctx,
		`UPDATE events
			SET title = $2,
			    description = $3,
			    location = $4,
			    category_id = $5,
			    start_at = $6,
			    end_at = $7,
			    capacity = $8,
			    image_url = $9,
			    updated_at = NOW()
		WHERE id = $1
		RETURNING `+eventColumns,
		id, req.Title, req.Description, req.Location, req.CategoryID, req.StartAt, req.EndAt, req.Capacity, req.ImageURL,
	))
}

func (r *EventsRepo) Cancel(ctx context.Context, id string) (event.Event, error) {
	return scanEvent(r.pool.QueryRow(
		ctx,
		`UPDATE events
			SET is_cancelled = TRUE, updated_at = NOW()
		WHERE id = $1
		RETURNING `+eventColumns,
		id,
	))
}

func (r *EventsRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM events WHERE id = $1`, id)

	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return event.ErrNotFound
	}

	return nil
}
