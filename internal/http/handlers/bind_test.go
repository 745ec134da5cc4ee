package handlers_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/mmutuku/campushub/internal/http/handlers"
)

type samplePayload struct {
	Email string `json:"email" binding:"required,email"`
	Count int    `json:"count" binding:"omitempty,min=1"`
}

func bindRouter() *gin.Engine {
	r := gin.New()

	r.POST("/sample", func(c *gin.Context) {
		var p samplePayload

		if !handlers.BindJSON(c, &p) {
			return
		}

		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	return r
}

func TestBindJSON(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantInBody string
	}{
		{
			name:       "valid payload",
			body:       `{"email":"a@b.edu","count":3}`,
			wantStatus: http.StatusOK,
		},
		{
			name:       "missing required field uses json name",
			body:       `{"count":3}`,
			wantStatus: http.StatusBadRequest,
			wantInBody: `"email"`,
		},
		{
			name:       "validation rule reported",
			body:       `{"email":"not-an-email"}`,
			wantStatus: http.StatusBadRequest,
			wantInBody: `"email"`,
		},
		{
			name:       "broken json syntax",
			body:       `{"email":`,
			wantStatus: http.StatusBadRequest,
			wantInBody: "invalid_json_syntax",
		},
		{
			name:       "type mismatch names the field",
			body:       `{"email":"a@b.edu","count":"three"}`,
			wantStatus: http.StatusBadRequest,
			wantInBody: "invalid_json_type",
		},
	}

	r := bindRouter()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, _ := http.NewRequest(http.MethodPost, "/sample", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")

			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d, body=%s", w.Code, tt.wantStatus, w.Body.String())
			}

			if tt.wantInBody != "" && !strings.Contains(w.Body.String(), tt.wantInBody) {
				t.Errorf("body %q does not mention %q", w.Body.String(), tt.wantInBody)
			}
		})
	}
}
