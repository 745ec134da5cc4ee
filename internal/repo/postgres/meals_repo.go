package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mmutuku/campushub/internal/domain/meal"
)

const mealColumns = `id, day, meal_type, title, items, category_id, is_cancelled, created_at, updated_at`

type MealsRepo struct {
	pool *pgxpool.Pool
}

func NewMealsRepo(pool *pgxpool.Pool) *MealsRepo {
	return &MealsRepo{
		pool: pool,
	}
}

func scanMeal(row pgx.Row) (meal.Meal, error) {
	var m meal.Meal

	err := row.Scan(
		&m.ID, &m.Day, &m.MealType, &m.Title, &m.Items,
		&m.CategoryID, &m.IsCancelled, &m.CreatedAt, &m.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return meal.Meal{}, meal.ErrNotFound
		}
		return meal.Meal{}, err
	}

	return m, nil
}

func (r *MealsRepo) Create(ctx context.Context, req meal.CreateMealRequest) (meal.Meal, error) {
	m := meal.NewFromCreateRequest(req)

	_, err := r.pool.Exec(ctx,
		`INSERT INTO meals (id, day, meal_type, title, items, category_id, is_cancelled, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		m.ID, m.Day, m.MealType, m.Title, m.Items, m.CategoryID, m.IsCancelled, m.CreatedAt, m.UpdatedAt)

	if err != nil {
		return meal.Meal{}, err
	}

	return m, nil
}

func (r *MealsRepo) List(ctx context.Context, filter meal.ListMealsFilter) ([]meal.Meal, int, error) {
	baseQuery := `SELECT ` + mealColumns + `, COUNT(*) OVER() AS total FROM meals`

	var conds []string
	var args []interface{}

	argsPosition := 1

	if filter.From != nil {
		conds = append(conds, fmt.Sprintf("day >= $%d", argsPosition))
		args = append(args, *filter.From)
		argsPosition++
	}

	if filter.To != nil {
		conds = append(conds, fmt.Sprintf("day <= $%d", argsPosition))
		args = append(args, *filter.To)
		argsPosition++
	}

	query := baseQuery

	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}

	// breakfast before lunch before dinner within a day
	query += fmt.Sprintf(` ORDER BY day ASC,
		CASE meal_type WHEN 'breakfast' THEN 0 WHEN 'lunch' THEN 1 ELSE 2 END,
		id ASC LIMIT $%d OFFSET $%d`, argsPosition, argsPosition+1)

	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.pool.Query(ctx, query, args...)

	if err != nil {
		return nil, 0, err
	}

	defer rows.Close()

	output := make([]meal.Meal, 0, filter.Limit)
	total := 0

	for rows.Next() {
		var m meal.Meal
		var t int

		err = rows.Scan(
			&m.ID, &m.Day, &m.MealType, &m.Title, &m.Items,
			&m.CategoryID, &m.IsCancelled, &m.CreatedAt, &m.UpdatedAt, &t,
		)

		if err != nil {
			return nil, 0, err
		}

		total = t
		output = append(output, m)
	}

	err = rows.Err()

	if err != nil {
		return nil, 0, err
	}

	return output, total, nil
}

func (r *MealsRepo) GetByID(ctx context.Context, id string) (meal.Meal, error) {
	return scanMeal(r.pool.QueryRow(ctx,
		`SELECT `+mealColumns+` FROM meals WHERE id = $1`, id))
}

func (r *MealsRepo) Update(ctx context.Context, id string, req meal.UpdateMealRequest) (meal.Meal, error) {
	return scanMeal(r.pool.QueryRow(
		ctx,
		`UPDATE meals
			SET day = $2,
			    meal_type = $3,
			    title = $4,
			    items = $5,
			    category_id = $6,
			    updated_at = NOW()
		WHERE id = $1
		RETURNING `+mealColumns,
		id, req.Day, req.MealType, req.Title, req.Items, req.CategoryID,
	))
}

func (r *MealsRepo) Cancel(ctx context.Context, id string) (meal.Meal, error) {
	return scanMeal(r.pool.QueryRow(
		ctx,
		`UPDATE meals
			SET is_cancelled = TRUE, updated_at = NOW()
		WHERE id = $1
		RETURNING `+mealColumns,
		id,
	))
}

func (r *MealsRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM meals WHERE id = $1`, id)

	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return meal.ErrNotFound
	}

	return nil
}
