package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mmutuku/campushub/internal/auth"
	"github.com/mmutuku/campushub/internal/config"
	"github.com/mmutuku/campushub/internal/domain/user"
	"github.com/mmutuku/campushub/internal/http/middlewares"
	"github.com/mmutuku/campushub/internal/jobs"
	"github.com/mmutuku/campushub/internal/security"
)

// tokens are short-lived on purpose: the window is the whole defense once the
// email has left the building
const resetTokenTTL = 15 * time.Minute

type UserStore interface {
	Create(ctx context.Context, email, passwordHash, name string, role user.Role) (user.User, error)
	GetByEmail(ctx context.Context, email string) (user.User, error)
	GetByID(ctx context.Context, id string) (user.User, error)
	UpdateProfile(ctx context.Context, id string, p user.UpdateProfileParams) (user.User, error)
	SetResetToken(ctx context.Context, id, token string, expires time.Time) error
	ConsumeResetToken(ctx context.Context, email, token, newHash string) error
}

// MailEnqueuer persists an outbound mail job for the worker to pick up.
type MailEnqueuer interface {
	Create(ctx context.Context, j jobs.Job) error
}

// Nudger pokes the worker so it does not wait out its poll interval.
type Nudger interface {
	Nudge(ctx context.Context) error
}

type AuthHandler struct {
	users    UserStore
	mailJobs MailEnqueuer
	nudger   Nudger
	jwt      *auth.Manager
	cfg      config.Config
	log      *slog.Logger
}

func NewAuthHandler(users UserStore, mailJobs MailEnqueuer, nudger Nudger, jwtManager *auth.Manager, cfg config.Config, log *slog.Logger) *AuthHandler {
	return &AuthHandler{
		users:    users,
		mailJobs: mailJobs,
		nudger:   nudger,
		jwt:      jwtManager,
		cfg:      cfg,
		log:      log,
	}
}

func (h *AuthHandler) emailDomainAllowed(email string) bool {
	if h.cfg.AllowedEmailDomain == "" {
		return true
	}

	return strings.HasSuffix(user.NormalizeEmail(email), "@"+h.cfg.AllowedEmailDomain)
}

func (h *AuthHandler) Register(ctx *gin.Context) {
	var req user.RegisterRequest

	if !BindJSON(ctx, &req) {
		return
	}

	if !h.emailDomainAllowed(req.Email) {
		RespondBadRequest(ctx, "invalid_email_domain",
			"Registration is restricted to the "+h.cfg.AllowedEmailDomain+" email domain.", nil)
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)

	defer cancel()

	hash, err := security.HashPassword(req.Password)

	if err != nil {
		RespondInternal(ctx, "Could not create account")
		return
	}

	// every self-registered account starts as a plain user

	u, err := h.users.Create(cctx, req.Email, hash, req.Name, user.RoleUser)

	if err != nil {
		if errors.Is(err, user.ErrEmailTaken) {
			RespondBadRequest(ctx, "email_taken", "Email is already in use.", nil)
			return
		}

		RespondInternal(ctx, "Could not create account")
		return
	}

	token, err := h.jwt.Issue(u.ID, u.Email, string(u.Role))

	if err != nil {
		RespondInternal(ctx, "Could not generate token")
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{
		"user":  u,
		"token": token,
	})
}

func (h *AuthHandler) Login(ctx *gin.Context) {
	var req user.LoginRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)

	defer cancel()

	u, err := h.users.GetByEmail(cctx, req.Email)

	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			// same envelope as a bad password so the response does not
			// confirm which half was wrong
			RespondUnAuthorized(ctx, "invalid_credentials", "Invalid email or password.")
			return
		}

		RespondInternal(ctx, "Could not log in")
		return
	}

	if err := security.CheckPassword(u.PasswordHash, req.Password); err != nil {
		RespondUnAuthorized(ctx, "invalid_credentials", "Invalid email or password.")
		return
	}

	if !u.IsActive {
		// same status as bad credentials; a disabled account is not a
		// working login
		RespondUnAuthorized(ctx, "account_deactivated", "This account has been deactivated.")
		return
	}

	token, err := h.jwt.Issue(u.ID, u.Email, string(u.Role))

	if err != nil {
		RespondInternal(ctx, "Could not generate token")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"user":  u,
		"token": token,
	})
}

func (h *AuthHandler) Me(ctx *gin.Context) {
	u, ok := middlewares.UserFromContext(ctx)

	if !ok {
		RespondUnAuthorized(ctx, "unauthenticated", "Authentication required.")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"user": u})
}

// Logout is stateless: tokens stay valid until expiry and the client simply
// drops its copy. The endpoint exists so clients have a uniform call to make.
func (h *AuthHandler) Logout(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{"message": "Logged out."})
}

func (h *AuthHandler) UpdateProfile(ctx *gin.Context) {
	u, ok := middlewares.UserFromContext(ctx)

	if !ok {
		RespondUnAuthorized(ctx, "unauthenticated", "Authentication required.")
		return
	}

	var req user.UpdateProfileRequest

	if !BindJSON(ctx, &req) {
		return
	}

	if req.Name == nil && req.Email == nil && req.Password == nil {
		RespondBadRequest(ctx, "empty_update", "Provide at least one field to update.", nil)
		return
	}

	if req.Email != nil && !h.emailDomainAllowed(*req.Email) {
		RespondBadRequest(ctx, "invalid_email_domain",
			"Email must be on the "+h.cfg.AllowedEmailDomain+" domain.", nil)
		return
	}

	params := user.UpdateProfileParams{
		Name:  req.Name,
		Email: req.Email,
	}

	// a password change is hashed right here; the raw value never reaches
	// the store layer
	if req.Password != nil {
		hash, err := security.HashPassword(*req.Password)

		if err != nil {
			RespondInternal(ctx, "Could not update profile")
			return
		}

		params.PasswordHash = &hash
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)

	defer cancel()

	updated, err := h.users.UpdateProfile(cctx, u.ID, params)

	if err != nil {
		switch {
		case errors.Is(err, user.ErrEmailTaken):
			RespondBadRequest(ctx, "email_taken", "Email is already in use.", nil)
		case errors.Is(err, user.ErrNotFound):
			RespondNotFound(ctx, "user_not_found", "Account no longer exists.")
		default:
			RespondInternal(ctx, "Could not update profile")
		}
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"user": updated})
}

func (h *AuthHandler) ForgotPassword(ctx *gin.Context) {
	var req user.ForgotPasswordRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(5 * time.Second)

	defer cancel()

	u, err := h.users.GetByEmail(cctx, req.Email)

	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			RespondNotFound(ctx, "account_not_found", "No account exists for that email.")
			return
		}

		RespondInternal(ctx, "Could not start password reset")
		return
	}

	token, err := security.NewResetToken()

	if err != nil {
		RespondInternal(ctx, "Could not start password reset")
		return
	}

	expiresAt := time.Now().UTC().Add(resetTokenTTL)

	if err := h.users.SetResetToken(cctx, u.ID, token, expiresAt); err != nil {
		RespondInternal(ctx, "Could not start password reset")
		return
	}

	h.enqueueResetMail(cctx, u, token, expiresAt)

	resp := gin.H{
		"message": "If mail delivery is configured, a reset email is on its way.",
	}

	// test profiles can ask for the token in the response; config refuses to
	// honor the flag in prod
	if h.cfg.ExposeResetTokens {
		resp["resetToken"] = token
	}

	ctx.JSON(http.StatusOK, resp)
}

// enqueueResetMail is best effort: a full queue outage must not fail the
// operation that triggered the mail.
func (h *AuthHandler) enqueueResetMail(ctx context.Context, u user.User, token string, expiresAt time.Time) {
	payload, err := jobs.EncodePayload(jobs.KindPasswordReset, jobs.PasswordResetPayload{
		Name:      u.Name,
		Token:     token,
		ResetURL:  h.cfg.AppBaseURL + "/reset-password?email=" + u.Email,
		ExpiresAt: expiresAt,
	})

	if err != nil {
		h.log.ErrorContext(ctx, "encode reset mail payload", "err", err)
		return
	}

	j, err := jobs.New(jobs.KindPasswordReset, u.Email, payload)

	if err != nil {
		h.log.ErrorContext(ctx, "build reset mail job", "err", err)
		return
	}

	if err := h.mailJobs.Create(ctx, j); err != nil {
		h.log.ErrorContext(ctx, "enqueue reset mail", "err", err, "job_id", j.ID)
		return
	}

	if h.nudger != nil {
		if err := h.nudger.Nudge(ctx); err != nil {
			h.log.WarnContext(ctx, "nudge mail worker", "err", err)
		}
	}
}

func (h *AuthHandler) ResetPassword(ctx *gin.Context) {
	var req user.ResetPasswordRequest

	if !BindJSON(ctx, &req) {
		return
	}

	hash, err := security.HashPassword(req.NewPassword)

	if err != nil {
		RespondInternal(ctx, "Could not reset password")
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)

	defer cancel()

	err = h.users.ConsumeResetToken(cctx, req.Email, req.Token, hash)

	if err != nil {
		if errors.Is(err, user.ErrResetInvalid) {
			// wrong token, expired token, and already-used token all land
			// here; the caller cannot tell them apart
			RespondBadRequest(ctx, "invalid_or_expired_token", "Reset token is invalid or has expired.", nil)
			return
		}

		RespondInternal(ctx, "Could not reset password")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Password has been reset. You can now log in."})
}
