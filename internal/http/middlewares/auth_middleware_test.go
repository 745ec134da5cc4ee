package middlewares_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mmutuku/campushub/internal/auth"
	"github.com/mmutuku/campushub/internal/domain/user"
	"github.com/mmutuku/campushub/internal/http/middlewares"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeLoader struct {
	getFn func(ctx context.Context, id string) (user.User, error)
}

func (f *fakeLoader) GetByID(ctx context.Context, id string) (user.User, error) {
	if f.getFn != nil {
		return f.getFn(ctx, id)
	}
	return user.User{}, user.ErrNotFound
}

func activeUser(id string, role user.Role) user.User {
	return user.User{
		ID:       id,
		Email:    "alice@mail.example.edu",
		Name:     "Alice",
		Role:     role,
		IsActive: true,
	}
}

func newRouterWithAuth(m *middlewares.AuthMiddleware, extra ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()

	chain := append([]gin.HandlerFunc{m.RequireAuth()}, extra...)
	chain = append(chain, func(c *gin.Context) {
		u, _ := middlewares.UserFromContext(c)
		c.JSON(http.StatusOK, gin.H{"id": u.ID})
	})

	r.GET("/protected", chain...)

	return r
}

func TestRequireAuth(t *testing.T) {
	mgr := auth.NewManager("test-secret", time.Hour)

	validToken, err := mgr.Issue("u-1", "alice@mail.example.edu", "user")

	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	expiredMgr := auth.NewManager("test-secret", -time.Minute)
	expiredToken, _ := expiredMgr.Issue("u-1", "alice@mail.example.edu", "user")

	tests := []struct {
		name       string
		header     string
		loader     *fakeLoader
		wantStatus int
	}{
		{
			name:       "missing header",
			header:     "",
			loader:     &fakeLoader{},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "not a bearer header",
			header:     "Basic abc123",
			loader:     &fakeLoader{},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "garbage token",
			header:     "Bearer not-a-token",
			loader:     &fakeLoader{},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "expired token",
			header:     "Bearer " + expiredToken,
			loader:     &fakeLoader{},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:   "valid token but user deleted",
			header: "Bearer " + validToken,
			loader: &fakeLoader{getFn: func(ctx context.Context, id string) (user.User, error) {
				return user.User{}, user.ErrNotFound
			}},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:   "valid token but user deactivated",
			header: "Bearer " + validToken,
			loader: &fakeLoader{getFn: func(ctx context.Context, id string) (user.User, error) {
				u := activeUser(id, user.RoleUser)
				u.IsActive = false
				return u, nil
			}},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:   "valid token, active user",
			header: "Bearer " + validToken,
			loader: &fakeLoader{getFn: func(ctx context.Context, id string) (user.User, error) {
				return activeUser(id, user.RoleUser), nil
			}},
			wantStatus: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := middlewares.NewAuthMiddleware(mgr, tt.loader)
			r := newRouterWithAuth(m)

			req := httptest.NewRequest(http.MethodGet, "/protected", nil)

			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}

			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d, body=%s", w.Code, tt.wantStatus, w.Body.String())
			}
		})
	}
}

func TestRequireRole(t *testing.T) {
	mgr := auth.NewManager("test-secret", time.Hour)

	tests := []struct {
		name       string
		role       user.Role
		allowed    []user.Role
		wantStatus int
	}{
		{
			name:       "plain user on an admin route",
			role:       user.RoleUser,
			allowed:    []user.Role{user.RoleAdmin, user.RoleSuperAdmin},
			wantStatus: http.StatusForbidden,
		},
		{
			name:       "super admin on an admin route",
			role:       user.RoleSuperAdmin,
			allowed:    []user.Role{user.RoleAdmin, user.RoleSuperAdmin},
			wantStatus: http.StatusOK,
		},
		{
			name:       "event manager on a meals route",
			role:       user.RoleEventManager,
			allowed:    []user.Role{user.RoleAdmin, user.RoleSuperAdmin, user.RoleMealCoordinator},
			wantStatus: http.StatusForbidden,
		},
		{
			name:       "meal coordinator on a meals route",
			role:       user.RoleMealCoordinator,
			allowed:    []user.Role{user.RoleAdmin, user.RoleSuperAdmin, user.RoleMealCoordinator},
			wantStatus: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loader := &fakeLoader{getFn: func(ctx context.Context, id string) (user.User, error) {
				return activeUser(id, tt.role), nil
			}}

			m := middlewares.NewAuthMiddleware(mgr, loader)
			r := newRouterWithAuth(m, m.RequireRole(tt.allowed...))

			token, err := mgr.Issue("u-1", "alice@mail.example.edu", string(tt.role))

			if err != nil {
				t.Fatalf("issue token: %v", err)
			}

			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			req.Header.Set("Authorization", "Bearer "+token)

			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d, body=%s", w.Code, tt.wantStatus, w.Body.String())
			}
		})
	}
}

type failVerifier struct{}

func (failVerifier) Verify(token string) (*auth.Claims, error) {
	return nil, errors.New("boom")
}

func TestRequireAuthNeverCallsLoaderOnBadToken(t *testing.T) {
	called := false

	loader := &fakeLoader{getFn: func(ctx context.Context, id string) (user.User, error) {
		called = true
		return user.User{}, user.ErrNotFound
	}}

	m := middlewares.NewAuthMiddleware(failVerifier{}, loader)
	r := newRouterWithAuth(m)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer whatever")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}

	if called {
		t.Error("loader must not be consulted when token verification fails")
	}
}
