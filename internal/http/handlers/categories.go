package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mmutuku/campushub/internal/config"
	"github.com/mmutuku/campushub/internal/domain/category"
)

type CategoryStore interface {
	Create(ctx context.Context, req category.CreateCategoryRequest) (category.Category, error)
	List(ctx context.Context, kind *category.Kind) ([]category.Category, error)
	GetByID(ctx context.Context, id string) (category.Category, error)
	Update(ctx context.Context, id string, req category.UpdateCategoryRequest) (category.Category, error)
	Delete(ctx context.Context, id string) error
}

type CategoriesHandler struct {
	repo CategoryStore
}

func NewCategoriesHandler(repo CategoryStore) *CategoriesHandler {
	return &CategoriesHandler{repo: repo}
}

func (h *CategoriesHandler) List(ctx *gin.Context) {
	var kind *category.Kind

	if v := ctx.Query("kind"); v != "" {
		k := category.Kind(v)

		if k != category.KindEvent && k != category.KindMeal {
			RespondBadRequest(ctx, "invalid_query", "kind must be 'event' or 'meal'", nil)
			return
		}

		kind = &k
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)

	defer cancel()

	cats, err := h.repo.List(cctx, kind)

	if err != nil {
		RespondInternal(ctx, "Could not list categories")
		return
	}

	if cats == nil {
		cats = []category.Category{}
	}

	ctx.JSON(http.StatusOK, gin.H{"items": cats})
}

func (h *CategoriesHandler) Create(ctx *gin.Context) {
	var req category.CreateCategoryRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)

	defer cancel()

	c, err := h.repo.Create(cctx, req)

	if err != nil {
		if errors.Is(err, category.ErrNameTaken) {
			RespondConflict(ctx, "name_taken", "A category with that name already exists.")
			return
		}

		RespondInternal(ctx, "Could not create category")
		return
	}

	ctx.JSON(http.StatusCreated, c)
}

func (h *CategoriesHandler) Update(ctx *gin.Context) {
	var req category.UpdateCategoryRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)

	defer cancel()

	c, err := h.repo.Update(cctx, ctx.Param("id"), req)

	if err != nil {
		switch {
		case errors.Is(err, category.ErrNotFound):
			RespondNotFound(ctx, "category_not_found", "No such category.")
		case errors.Is(err, category.ErrNameTaken):
			RespondConflict(ctx, "name_taken", "A category with that name already exists.")
		default:
			RespondInternal(ctx, "Could not update category")
		}
		return
	}

	ctx.JSON(http.StatusOK, c)
}

func (h *CategoriesHandler) Delete(ctx *gin.Context) {
	cctx, cancel := config.WithTimeout(3 * time.Second)

	defer cancel()

	err := h.repo.Delete(cctx, ctx.Param("id"))

	if err != nil {
		switch {
		case errors.Is(err, category.ErrNotFound):
			RespondNotFound(ctx, "category_not_found", "No such category.")
		case errors.Is(err, category.ErrInUse):
			RespondConflict(ctx, "category_in_use", "Category is still referenced by events or meals.")
		default:
			RespondInternal(ctx, "Could not delete category")
		}
		return
	}

	ctx.Status(http.StatusNoContent)
}
