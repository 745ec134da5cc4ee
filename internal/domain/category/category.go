package category

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

type Kind string

const (
	KindEvent Kind = "event"
	KindMeal  Kind = "meal"
)

type Category struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Kind      Kind      `json:"kind"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

var (
	ErrNotFound = errors.New("category not found")
	ErrInUse    = errors.New("category is referenced by existing entries")
	ErrNameTaken = errors.New("category name already exists for this kind")
)

type CreateCategoryRequest struct {
	Name string `json:"name" binding:"required,min=2,max=60"`
	Kind Kind   `json:"kind" binding:"required,oneof=event meal"`
}

type UpdateCategoryRequest struct {
	Name string `json:"name" binding:"required,min=2,max=60"`
}

func NewFromCreateRequest(req CreateCategoryRequest) Category {
	now := time.Now().UTC()

	return Category{
		ID:        uuid.NewString(),
		Name:      req.Name,
		Kind:      req.Kind,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
