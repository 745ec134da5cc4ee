package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mmutuku/campushub/internal/config"
	"github.com/mmutuku/campushub/internal/domain/user"
	"github.com/mmutuku/campushub/internal/http/middlewares"
	"github.com/mmutuku/campushub/internal/jobs"
	"github.com/mmutuku/campushub/internal/security"
)

type AdminStore interface {
	Create(ctx context.Context, email, passwordHash, name string, role user.Role) (user.User, error)
	ListStaff(ctx context.Context) ([]user.User, error)
	SetActive(ctx context.Context, id string, active bool) error
	Delete(ctx context.Context, id string) error
}

type AdminsHandler struct {
	users    AdminStore
	mailJobs MailEnqueuer
	nudger   Nudger
	cfg      config.Config
	log      *slog.Logger
}

func NewAdminsHandler(users AdminStore, mailJobs MailEnqueuer, nudger Nudger, cfg config.Config, log *slog.Logger) *AdminsHandler {
	return &AdminsHandler{
		users:    users,
		mailJobs: mailJobs,
		nudger:   nudger,
		cfg:      cfg,
		log:      log,
	}
}

// Create provisions a staff account with a generated password. The plaintext
// exists in memory, the mail job payload, and the recipient's inbox; the users
// table only ever sees the hash.
func (h *AdminsHandler) Create(ctx *gin.Context) {
	var req user.CreateAdminRequest

	if !BindJSON(ctx, &req) {
		return
	}

	initialPassword, err := security.NewInitialPassword(12)

	if err != nil {
		RespondInternal(ctx, "Could not create account")
		return
	}

	hash, err := security.HashPassword(initialPassword)

	if err != nil {
		RespondInternal(ctx, "Could not create account")
		return
	}

	cctx, cancel := config.WithTimeout(5 * time.Second)

	defer cancel()

	u, err := h.users.Create(cctx, req.Email, hash, req.Name, req.Role)

	if err != nil {
		if errors.Is(err, user.ErrEmailTaken) {
			RespondBadRequest(ctx, "email_taken", "Email is already in use.", nil)
			return
		}

		RespondInternal(ctx, "Could not create account")
		return
	}

	h.enqueueCredentialsMail(cctx, u, initialPassword)

	ctx.JSON(http.StatusCreated, gin.H{"user": u})
}

func (h *AdminsHandler) enqueueCredentialsMail(ctx context.Context, u user.User, password string) {
	payload, err := jobs.EncodePayload(jobs.KindAdminCredentials, jobs.AdminCredentialsPayload{
		Name:     u.Name,
		Role:     string(u.Role),
		Password: password,
		LoginURL: h.cfg.AppBaseURL + "/login",
	})

	if err != nil {
		h.log.ErrorContext(ctx, "encode credentials mail payload", "err", err)
		return
	}

	j, err := jobs.New(jobs.KindAdminCredentials, u.Email, payload)

	if err != nil {
		h.log.ErrorContext(ctx, "build credentials mail job", "err", err)
		return
	}

	if err := h.mailJobs.Create(ctx, j); err != nil {
		h.log.ErrorContext(ctx, "enqueue credentials mail", "err", err, "job_id", j.ID)
		return
	}

	if h.nudger != nil {
		if err := h.nudger.Nudge(ctx); err != nil {
			h.log.WarnContext(ctx, "nudge mail worker", "err", err)
		}
	}
}

func (h *AdminsHandler) List(ctx *gin.Context) {
	cctx, cancel := config.WithTimeout(3 * time.Second)

	defer cancel()

	staff, err := h.users.ListStaff(cctx)

	if err != nil {
		RespondInternal(ctx, "Could not list administrators")
		return
	}

	if staff == nil {
		staff = []user.User{}
	}

	ctx.JSON(http.StatusOK, gin.H{"admins": staff})
}

func (h *AdminsHandler) Deactivate(ctx *gin.Context) {
	h.setActive(ctx, false)
}

func (h *AdminsHandler) Activate(ctx *gin.Context) {
	h.setActive(ctx, true)
}

func (h *AdminsHandler) setActive(ctx *gin.Context, active bool) {
	id := ctx.Param("id")

	if actorID, ok := middlewares.UserIDFromContext(ctx); ok && actorID == id && !active {
		RespondBadRequest(ctx, "self_deactivation", "You cannot deactivate your own account.", nil)
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)

	defer cancel()

	err := h.users.SetActive(cctx, id, active)

	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			RespondNotFound(ctx, "user_not_found", "No such account.")
			return
		}

		RespondInternal(ctx, "Could not update account")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"id": id, "isActive": active})
}

func (h *AdminsHandler) Delete(ctx *gin.Context) {
	id := ctx.Param("id")

	// deleting yourself would orphan the session mid-request
	if actorID, ok := middlewares.UserIDFromContext(ctx); ok && actorID == id {
		RespondBadRequest(ctx, "self_deletion", "You cannot delete your own account.", nil)
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)

	defer cancel()

	err := h.users.Delete(cctx, id)

	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			RespondNotFound(ctx, "user_not_found", "No such account.")
			return
		}

		RespondInternal(ctx, "Could not delete account")
		return
	}

	ctx.Status(http.StatusNoContent)
}
