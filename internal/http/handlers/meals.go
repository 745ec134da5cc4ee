package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mmutuku/campushub/internal/cache"
	"github.com/mmutuku/campushub/internal/config"
	"github.com/mmutuku/campushub/internal/domain/meal"
	"github.com/mmutuku/campushub/internal/domain/notification"
	"github.com/mmutuku/campushub/internal/domain/user"
)

type MealStore interface {
	Create(ctx context.Context, req meal.CreateMealRequest) (meal.Meal, error)
	List(ctx context.Context, filter meal.ListMealsFilter) ([]meal.Meal, int, error)
	GetByID(ctx context.Context, id string) (meal.Meal, error)
	Update(ctx context.Context, id string, req meal.UpdateMealRequest) (meal.Meal, error)
	Cancel(ctx context.Context, id string) (meal.Meal, error)
	Delete(ctx context.Context, id string) error
}

type MealsHandler struct {
	repo          MealStore
	notifications NotificationCreator
	cache         *cache.Cache
	log           *slog.Logger
}

func NewMealsHandler(repo MealStore, notifications NotificationCreator, c *cache.Cache, log *slog.Logger) *MealsHandler {
	return &MealsHandler{
		repo:          repo,
		notifications: notifications,
		cache:         c,
		log:           log,
	}
}

func (h *MealsHandler) List(ctx *gin.Context) {
	filter := meal.ListMealsFilter{}
	filter.Limit, filter.Offset = parsePagination(ctx)

	from, ok := parseTimeParam(ctx, "from")
	if !ok {
		return
	}
	filter.From = from

	to, ok := parseTimeParam(ctx, "to")
	if !ok {
		return
	}
	filter.To = to

	key := "meals:" + ctx.Request.URL.RawQuery

	if h.cache != nil {
		if v, ok := h.cache.Get(key); ok {
			ctx.JSON(http.StatusOK, v)
			return
		}
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)

	defer cancel()

	items, total, err := h.repo.List(cctx, filter)

	if err != nil {
		RespondInternal(ctx, "Could not list meals")
		return
	}

	resp := listResponse{Items: items, Total: total}

	if h.cache != nil {
		h.cache.Set(key, resp)
	}

	ctx.JSON(http.StatusOK, resp)
}

func (h *MealsHandler) Get(ctx *gin.Context) {
	cctx, cancel := config.WithTimeout(3 * time.Second)

	defer cancel()

	m, err := h.repo.GetByID(cctx, ctx.Param("id"))

	if err != nil {
		if errors.Is(err, meal.ErrNotFound) {
			RespondNotFound(ctx, "meal_not_found", "No such meal.")
			return
		}

		RespondInternal(ctx, "Could not fetch meal")
		return
	}

	ctx.JSON(http.StatusOK, m)
}

func (h *MealsHandler) Create(ctx *gin.Context) {
	var req meal.CreateMealRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)

	defer cancel()

	m, err := h.repo.Create(cctx, req)

	if err != nil {
		RespondInternal(ctx, "Could not create meal")
		return
	}

	if h.cache != nil {
		h.cache.Clear()
	}

	ctx.JSON(http.StatusCreated, m)
}

func (h *MealsHandler) Update(ctx *gin.Context) {
	var req meal.UpdateMealRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)

	defer cancel()

	m, err := h.repo.Update(cctx, ctx.Param("id"), req)

	if err != nil {
		if errors.Is(err, meal.ErrNotFound) {
			RespondNotFound(ctx, "meal_not_found", "No such meal.")
			return
		}

		RespondInternal(ctx, "Could not update meal")
		return
	}

	if h.cache != nil {
		h.cache.Clear()
	}

	ctx.JSON(http.StatusOK, m)
}

func (h *MealsHandler) Cancel(ctx *gin.Context) {
	cctx, cancel := config.WithTimeout(3 * time.Second)

	defer cancel()

	m, err := h.repo.Cancel(cctx, ctx.Param("id"))

	if err != nil {
		if errors.Is(err, meal.ErrNotFound) {
			RespondNotFound(ctx, "meal_not_found", "No such meal.")
			return
		}

		RespondInternal(ctx, "Could not cancel meal")
		return
	}

	if h.notifications != nil {
		n := notification.ForRole(string(user.RoleAdmin),
			"Meal cancelled: "+m.Title,
			m.Title+" on "+m.Day.Format("Mon, 2 Jan 2006")+" has been cancelled.")

		if err := h.notifications.Create(cctx, n); err != nil {
			h.log.ErrorContext(cctx, "create meal notification", "err", err)
		}
	}

	if h.cache != nil {
		h.cache.Clear()
	}

	ctx.JSON(http.StatusOK, m)
}

func (h *MealsHandler) Delete(ctx *gin.Context) {
	cctx, cancel := config.WithTimeout(3 * time.Second)

	defer cancel()

	err := h.repo.Delete(cctx, ctx.Param("id"))

	if err != nil {
		if errors.Is(err, meal.ErrNotFound) {
			RespondNotFound(ctx, "meal_not_found", "No such meal.")
			return
		}

		RespondInternal(ctx, "Could not delete meal")
		return
	}

	if h.cache != nil {
		h.cache.Clear()
	}

	ctx.Status(http.StatusNoContent)
}
