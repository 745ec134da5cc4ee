package handlers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mmutuku/campushub/internal/cache"
	"github.com/mmutuku/campushub/internal/config"
	"github.com/mmutuku/campushub/internal/domain/event"
	"github.com/mmutuku/campushub/internal/domain/notification"
	"github.com/mmutuku/campushub/internal/domain/user"
)

type EventStore interface {
	Create(ctx context.Context, req event.CreateEventRequest) (event.Event, error)
	List(ctx context.Context, filter event.ListEventsFilter) ([]event.Event, int, error)
	GetByID(ctx context.Context, id string) (event.Event, error)
	Update(ctx context.Context, id string, req event.UpdateEventRequest) (event.Event, error)
	Cancel(ctx context.Context, id string) (event.Event, error)
	Delete(ctx context.Context, id string) error
}

type NotificationCreator interface {
	Create(ctx context.Context, n notification.Notification) error
}

type EventsHandler struct {
	repo          EventStore
	notifications NotificationCreator
	cache         *cache.Cache
	log           *slog.Logger
}

func NewEventsHandler(repo EventStore, notifications NotificationCreator, c *cache.Cache, log *slog.Logger) *EventsHandler {
	return &EventsHandler{
		repo:          repo,
		notifications: notifications,
		cache:         c,
		log:           log,
	}
}

type listResponse struct {
	Items any `json:"items"`
	Total int `json:"total"`
}

func parsePagination(ctx *gin.Context) (limit, offset int) {
	limit = 20

	if v := ctx.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil && n > 0 && n <= 100 {
			limit = n
		}
	}

	if v := ctx.Query("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil && n >= 0 {
			offset = n
		}
	}

	return limit, offset
}

func parseTimeParam(ctx *gin.Context, name string) (*time.Time, bool) {
	v := ctx.Query(name)

	if v == "" {
		return nil, true
	}

	t, err := time.Parse(time.RFC3339, v)

	if err != nil {
		RespondBadRequest(ctx, "invalid_query", name+" must be an RFC 3339 timestamp", nil)
		return nil, false
	}

	return &t, true
}

func (h *EventsHandler) List(ctx *gin.Context) {
	filter := event.ListEventsFilter{}
	filter.Limit, filter.Offset = parsePagination(ctx)

	if v := ctx.Query("category"); v != "" {
		filter.CategoryID = &v
	}

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

	key := "events:" + ctx.Request.URL.RawQuery

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
		RespondInternal(ctx, "Could not list events")
		return
	}

	resp := listResponse{Items: items, Total: total}

	if h.cache != nil {
		h.cache.Set(key, resp)
	}

	ctx.JSON(http.StatusOK, resp)
}

func (h *EventsHandler) Get(ctx *gin.Context) {
	cctx, cancel := config.WithTimeout(3 * time.Second)

	defer cancel()

	e, err := h.repo.GetByID(cctx, ctx.Param("id"))

	if err != nil {
		if errors.Is(err, event.ErrNotFound) {
			RespondNotFound(ctx, "event_not_found", "No such event.")
			return
		}

		RespondInternal(ctx, "Could not fetch event")
		return
	}

	ctx.JSON(http.StatusOK, e)
}

func (h *EventsHandler) Create(ctx *gin.Context) {
	var req event.CreateEventRequest

	if !BindJSON(ctx, &req) {
		return
	}

	if req.EndAt != nil && req.EndAt.Before(req.StartAt) {
		RespondBadRequest(ctx, "invalid_range", "endAt must not be before startAt", nil)
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)

	defer cancel()

	e, err := h.repo.Create(cctx, req)

	if err != nil {
		RespondInternal(ctx, "Could not create event")
		return
	}

	h.notify(cctx, "New event: "+e.Title,
		fmt.Sprintf("%s starts %s.", e.Title, e.StartAt.Format("Mon, 2 Jan 2006 15:04 MST")))

	if h.cache != nil {
		h.cache.Clear()
	}

	ctx.JSON(http.StatusCreated, e)
}

func (h *EventsHandler) Update(ctx *gin.Context) {
	var req event.UpdateEventRequest

	if !BindJSON(ctx, &req) {
		return
	}

	if req.EndAt != nil && req.EndAt.Before(req.StartAt) {
		RespondBadRequest(ctx, "invalid_range", "endAt must not be before startAt", nil)
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)

	defer cancel()

	e, err := h.repo.Update(cctx, ctx.Param("id"), req)

	if err != nil {
		if errors.Is(err, event.ErrNotFound) {
			RespondNotFound(ctx, "event_not_found", "No such event.")
			return
		}

		RespondInternal(ctx, "Could not update event")
		return
	}

	if h.cache != nil {
		h.cache.Clear()
	}

	ctx.JSON(http.StatusOK, e)
}

func (h *EventsHandler) Cancel(ctx *gin.Context) {
	cctx, cancel := config.WithTimeout(3 * time.Second)

	defer cancel()

	e, err := h.repo.Cancel(cctx, ctx.Param("id"))

	if err != nil {
		if errors.Is(err, event.ErrNotFound) {
			RespondNotFound(ctx, "event_not_found", "No such event.")
			return
		}

		RespondInternal(ctx, "Could not cancel event")
		return
	}

	h.notify(cctx, "Event cancelled: "+e.Title,
		fmt.Sprintf("%s scheduled for %s has been cancelled.", e.Title, e.StartAt.Format("Mon, 2 Jan 2006 15:04 MST")))

	if h.cache != nil {
		h.cache.Clear()
	}

	ctx.JSON(http.StatusOK, e)
}

func (h *EventsHandler) Delete(ctx *gin.Context) {
	cctx, cancel := config.WithTimeout(3 * time.Second)

	defer cancel()

	err := h.repo.Delete(cctx, ctx.Param("id"))

	if err != nil {
		if errors.Is(err, event.ErrNotFound) {
			RespondNotFound(ctx, "event_not_found", "No such event.")
			return
		}

		RespondInternal(ctx, "Could not delete event")
		return
	}

	if h.cache != nil {
		h.cache.Clear()
	}

	ctx.Status(http.StatusNoContent)
}

// notify fans out an in-app notification to the admin side of the app.
// Failures are logged and swallowed: the event write already happened.
func (h *EventsHandler) notify(ctx context.Context, title, body string) {
	if h.notifications == nil {
		return
	}

	n := notification.ForRole(string(user.RoleAdmin), title, body)

	if err := h.notifications.Create(ctx, n); err != nil {
		h.log.ErrorContext(ctx, "create event notification", "err", err)
	}
}
