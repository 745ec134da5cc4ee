package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mmutuku/campushub/internal/domain/category"
)

const categoryColumns = `id, name, kind, created_at, updated_at`

type CategoriesRepo struct {
	pool *pgxpool.Pool
}

func NewCategoriesRepo(pool *pgxpool.Pool) *CategoriesRepo {
	return &CategoriesRepo{
		pool: pool,
	}
}

func scanCategory(row pgx.Row) (category.Category, error) {
	var c category.Category

	err := row.Scan(&c.ID, &c.Name, &c.Kind, &c.CreatedAt, &c.UpdatedAt)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return category.Category{}, category.ErrNotFound
		}
		return category.Category{}, err
	}

	return c, nil
}

func (r *CategoriesRepo) Create(ctx context.Context, req category.CreateCategoryRequest) (category.Category, error) {
	c := category.NewFromCreateRequest(req)

	_, err := r.pool.Exec(ctx,
		`INSERT INTO categories (id, name, kind, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5)`,
		c.ID, c.Name, c.Kind, c.CreatedAt, c.UpdatedAt)

	if err != nil {
		if IsUniqueViolation(err) {
			return category.Category{}, category.ErrNameTaken
		}

		return category.Category{}, err
	}

	return c, nil
}

func (r *CategoriesRepo) List(ctx context.Context, kind *category.Kind) ([]category.Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM categories`
	var args []interface{}

	if kind != nil {
		query += ` WHERE kind = $1`
		args = append(args, *kind)
	}

	query += ` ORDER BY name ASC`

	rows, err := r.pool.Query(ctx, query, args...)

	if err != nil {
		return nil, err
	}

	defer rows.Close()

	out := make([]category.Category, 0)

	for rows.Next() {
		var c category.Category

		err = rows.Scan(&c.ID, &c.Name, &c.Kind, &c.CreatedAt, &c.UpdatedAt)

		if err != nil {
			return nil, err
		}

		out = append(out, c)
	}

	return out, rows.Err()
}

func (r *CategoriesRepo) GetByID(ctx context.Context, id string) (category.Category, error) {
	return scanCategory(r.pool.QueryRow(ctx,
		`SELECT `+categoryColumns+` FROM categories WHERE id = $1`, id))
}

func (r *CategoriesRepo) Update(ctx context.Context, id string, req category.UpdateCategoryRequest) (category.Category, error) {
	c, err := scanCategory(r.pool.QueryRow(
		ctx,
		`UPDATE categories
			SET name = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING `+categoryColumns,
		id, req.Name,
	))

	if err != nil && IsUniqueViolation(err) {
		return category.Category{}, category.ErrNameTaken
	}

	return c, err
}

func (r *CategoriesRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM categories WHERE id = $1`, id)

	if err != nil {
		// events and meals hold FK references
		if IsForeignKeyViolation(err) {
			return category.ErrInUse
		}

		return err
	}

	if tag.RowsAffected() == 0 {
		return category.ErrNotFound
	}

	return nil
}
