package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mmutuku/campushub/internal/config"
	"github.com/mmutuku/campushub/internal/domain/notification"
	"github.com/mmutuku/campushub/internal/http/middlewares"
)

type NotificationStore interface {
	ListForRecipient(ctx context.Context, userID, role string, limit int) ([]notification.Notification, error)
	MarkRead(ctx context.Context, id, userID, role string) error
}

type NotificationsHandler struct {
	repo NotificationStore
}

func NewNotificationsHandler(repo NotificationStore) *NotificationsHandler {
	return &NotificationsHandler{repo: repo}
}

func (h *NotificationsHandler) List(ctx *gin.Context) {
	u, ok := middlewares.UserFromContext(ctx)

	if !ok {
		RespondUnAuthorized(ctx, "unauthenticated", "Authentication required.")
		return
	}

	limit := 50

	if v := ctx.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil && n > 0 && n <= 100 {
			limit = n
		}
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)

	defer cancel()

	items, err := h.repo.ListForRecipient(cctx, u.ID, string(u.Role), limit)

	if err != nil {
		RespondInternal(ctx, "Could not list notifications")
		return
	}

	if items == nil {
		items = []notification.Notification{}
	}

	ctx.JSON(http.StatusOK, gin.H{"items": items})
}

func (h *NotificationsHandler) MarkRead(ctx *gin.Context) {
	u, ok := middlewares.UserFromContext(ctx)

	if !ok {
		RespondUnAuthorized(ctx, "unauthenticated", "Authentication required.")
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)

	defer cancel()

	err := h.repo.MarkRead(cctx, ctx.Param("id"), u.ID, string(u.Role))

	if err != nil {
		if errors.Is(err, notification.ErrNotFound) {
			// also covers a notification addressed to someone else
			RespondNotFound(ctx, "notification_not_found", "No such unread notification.")
			return
		}

		RespondInternal(ctx, "Could not mark notification read")
		return
	}

	ctx.Status(http.StatusNoContent)
}
