package meal

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

type MealType string

const (
	Breakfast MealType = "breakfast"
	Lunch     MealType = "lunch"
	Dinner    MealType = "dinner"
)

type Meal struct {
	ID          string    `json:"id"`
	Day         time.Time `json:"day"`
	MealType    MealType  `json:"mealType"`
	Title       string    `json:"title"`
	Items       []string  `json:"items"`
	CategoryID  *string   `json:"categoryId,omitempty"`
	IsCancelled bool      `json:"isCancelled"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type ListMealsFilter struct {
	From   *time.Time
	To     *time.Time
	Limit  int
	Offset int
}

var ErrNotFound = errors.New("meal not found")

type CreateMealRequest struct {
	Day        time.Time `json:"day" binding:"required"`
	MealType   MealType  `json:"mealType" binding:"required,oneof=breakfast lunch dinner"`
	Title      string    `json:"title" binding:"required,min=2,max=120"`
	Items      []string  `json:"items" binding:"required,min=1,max=30,dive,min=1,max=120"`
	CategoryID *string   `json:"categoryId" binding:"omitempty,uuid"`
}

type UpdateMealRequest struct {
	Day        time.Time `json:"day" binding:"required"`
	MealType   MealType  `json:"mealType" binding:"required,oneof=breakfast lunch dinner"`
	Title      string    `json:"title" binding:"required,min=2,max=120"`
	Items      []string  `json:"items" binding:"required,min=1,max=30,dive,min=1,max=120"`
	CategoryID *string   `json:"categoryId" binding:"omitempty,uuid"`
}

func NewFromCreateRequest(req CreateMealRequest) Meal {
	now := time.Now().UTC()

	return Meal{
		ID:         uuid.NewString(),
		Day:        req.Day,
		MealType:   req.MealType,
		Title:      req.Title,
		Items:      req.Items,
		CategoryID: req.CategoryID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}
