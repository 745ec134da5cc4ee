package integration_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/mmutuku/campushub/internal/config"
	apphttp "github.com/mmutuku/campushub/internal/http"
	"github.com/mmutuku/campushub/internal/observability"
)

func testConfig() config.Config {
	return config.Config{
		Env:               "test",
		JWTSecret:         "test-secret-key",
		JWTTTL:            time.Hour,
		ExposeResetTokens: true,
		AppBaseURL:        "http://localhost:8080",
	}
}

// setupRouter connects to the database named by TEST_DB_DSN. Without one the
// whole package is skipped; these tests need real SQL semantics.
func setupRouter(t *testing.T) (*gin.Engine, *pgxpool.Pool) {
	t.Helper()

	gin.SetMode(gin.TestMode)

	dsn := os.Getenv("TEST_DB_DSN")

	if dsn == "" {
		t.Skip("TEST_DB_DSN not set; skipping integration tests")
	}

	pool, err := pgxpool.New(context.Background(), dsn)

	if err != nil {
		t.Fatalf("create pgx pool: %v", err)
	}

	t.Cleanup(pool.Close)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	reg := prometheus.NewRegistry()
	prom := observability.NewProm(reg)

	router := apphttp.NewRouter(testConfig(), logger, pool, nil, prom, reg)

	return router, pool
}

func resetDB(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	_, err := pool.Exec(context.Background(), `
		TRUNCATE notifications, mail_jobs, events, meals, categories, users
		RESTART IDENTITY CASCADE
	`)

	if err != nil {
		t.Fatalf("truncate tables: %v", err)
	}
}

func postJSON(t *testing.T, router *gin.Engine, path, token string, payload any) *httptest.ResponseRecorder {
	t.Helper()

	b, err := json.Marshal(payload)

	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")

	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	return w
}

func jsonBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var out map[string]any

	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}

	return out
}

func TestPasswordResetLifecycleAgainstPostgres(t *testing.T) {
	router, pool := setupRouter(t)
	resetDB(t, pool)

	w := postJSON(t, router, "/auth/register", "", gin.H{
		"name":     "Alice",
		"email":    "alice@mail.example.edu",
		"password": "original-pass",
	})

	if w.Code != http.StatusCreated {
		t.Fatalf("register status = %d, body=%s", w.Code, w.Body.String())
	}

	w = postJSON(t, router, "/auth/forgot", "", gin.H{"email": "alice@mail.example.edu"})

	if w.Code != http.StatusOK {
		t.Fatalf("forgot status = %d, body=%s", w.Code, w.Body.String())
	}

	token, _ := jsonBody(t, w)["resetToken"].(string)

	if token == "" {
		t.Fatal("test profile should echo the reset token")
	}

	// the mail job landed in the queue table
	var jobCount int

	err := pool.QueryRow(context.Background(),
		`SELECT COUNT(*) FROM mail_jobs WHERE kind = 'password_reset' AND status = 'pending'`,
	).Scan(&jobCount)

	if err != nil {
		t.Fatalf("count mail jobs: %v", err)
	}

	if jobCount != 1 {
		t.Errorf("pending password_reset jobs = %d, want 1", jobCount)
	}

	w = postJSON(t, router, "/auth/reset", "", gin.H{
		"email":       "alice@mail.example.edu",
		"token":       token,
		"newPassword": "rotated-pass-1",
	})

	if w.Code != http.StatusOK {
		t.Fatalf("reset status = %d, body=%s", w.Code, w.Body.String())
	}

	// replay must fail at the SQL layer too
	w = postJSON(t, router, "/auth/reset", "", gin.H{
		"email":       "alice@mail.example.edu",
		"token":       token,
		"newPassword": "attacker-pass-1",
	})

	if w.Code != http.StatusBadRequest {
		t.Errorf("replay status = %d, want 400", w.Code)
	}

	w = postJSON(t, router, "/auth/login", "", gin.H{
		"email":    "alice@mail.example.edu",
		"password": "rotated-pass-1",
	})

	if w.Code != http.StatusOK {
		t.Errorf("login with rotated password status = %d, body=%s", w.Code, w.Body.String())
	}

	// the consumed token is cleared from the row
	var resetToken *string

	err = pool.QueryRow(context.Background(),
		`SELECT reset_token FROM users WHERE email = 'alice@mail.example.edu'`,
	).Scan(&resetToken)

	if err != nil {
		t.Fatalf("read reset_token: %v", err)
	}

	if resetToken != nil {
		t.Error("reset_token column should be NULL after consumption")
	}
}

func TestRoleGateAgainstPostgres(t *testing.T) {
	router, pool := setupRouter(t)
	resetDB(t, pool)

	w := postJSON(t, router, "/auth/register", "", gin.H{
		"name":     "Student",
		"email":    "student@mail.example.edu",
		"password": "student-pass",
	})

	if w.Code != http.StatusCreated {
		t.Fatalf("register status = %d", w.Code)
	}

	token, _ := jsonBody(t, w)["token"].(string)

	w = postJSON(t, router, "/events", token, gin.H{
		"title":    "Unauthorized Event",
		"startAt":  time.Now().Add(24 * time.Hour).UTC().Format(time.RFC3339),
		"capacity": 10,
	})

	if w.Code != http.StatusForbidden {
		t.Errorf("plain user creating event status = %d, want 403", w.Code)
	}
}
