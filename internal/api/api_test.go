package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/hawaesanda/BotFTM-master/internal/models"
	"github.com/hawaesanda/BotFTM-master/internal/registry"
)

func newTestRouter(reg *registry.Registry) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewHandler(nil, reg)
	r := gin.New()
	r.GET("/health", h.Health)
	admin := r.Group("/api/v1/admin")
	admin.Use(AuthMiddleware(), AdminMiddleware())
	admin.GET("/users", h.ListUsers)
	return r
}

func signToken(t *testing.T, secret, role string) string {
	t.Helper()
	claims := jwt.MapClaims{
		"role": role,
		"exp":  time.Now().Add(time.Hour).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

func TestHealthWithoutDatabase(t *testing.T) {
	router := newTestRouter(registry.New(registry.NewMemStore()))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/health", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503 without a database, got %d", w.Code)
	}
}

func TestAdminUsersAuth(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	reg := registry.New(registry.NewMemStore())
	if err := reg.Register("Budi", "9001", "111", models.RoleAdmin); err != nil {
		t.Fatalf("seed registry: %v", err)
	}
	router := newTestRouter(reg)

	cases := []struct {
		name   string
		header string
		want   int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"malformed header", "Token abc", http.StatusUnauthorized},
		{"garbage token", "Bearer not-a-jwt", http.StatusUnauthorized},
		{"wrong secret", "Bearer " + signToken(t, "other-secret", "admin"), http.StatusUnauthorized},
		{"non-admin role", "Bearer " + signToken(t, "test-secret", "user"), http.StatusForbidden},
		{"admin token", "Bearer " + signToken(t, "test-secret", "admin"), http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req, _ := http.NewRequest("GET", "/api/v1/admin/users", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			router.ServeHTTP(w, req)
			if w.Code != tc.want {
				t.Errorf("status = %d, want %d", w.Code, tc.want)
			}
		})
	}
}

func TestAdminUsersBody(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	reg := registry.New(registry.NewMemStore())
	if err := reg.Register("Budi", "9001", "111", models.RoleAdmin); err != nil {
		t.Fatalf("seed registry: %v", err)
	}
	if err := reg.Register("Sari", "9002", "222", models.RoleUser); err != nil {
		t.Fatalf("seed registry: %v", err)
	}
	router := newTestRouter(reg)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/v1/admin/users", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, "test-secret", "admin"))
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var body struct {
		Users []models.AllowedUser `json:"users"`
		Count int                  `json:"count"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Count != 2 || len(body.Users) != 2 {
		t.Fatalf("expected 2 users, got count=%d len=%d", body.Count, len(body.Users))
	}
	if body.Users[0].TelegramID != "111" || body.Users[0].Role != models.RoleAdmin {
		t.Errorf("unexpected first user: %+v", body.Users[0])
	}
}

func TestCORSHeaders(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("allow-all by default", func(t *testing.T) {
		t.Setenv("DASHBOARD_ORIGIN", "")
		r := gin.New()
		r.Use(CORSMiddleware())
		r.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/health", nil)
		req.Header.Set("Origin", "https://dash.example.com")
		r.ServeHTTP(w, req)

		if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
			t.Errorf("Access-Control-Allow-Origin = %q, want *", got)
		}
	})

	t.Run("restricted origin", func(t *testing.T) {
		t.Setenv("DASHBOARD_ORIGIN", "https://dash.example.com")
		r := gin.New()
		r.Use(CORSMiddleware())
		r.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/health", nil)
		req.Header.Set("Origin", "https://dash.example.com")
		r.ServeHTTP(w, req)
		if got := w.Header().Get("Access-Control-Allow-Origin"); got != "https://dash.example.com" {
			t.Errorf("Access-Control-Allow-Origin = %q, want the dashboard origin", got)
		}

		w = httptest.NewRecorder()
		req, _ = http.NewRequest("GET", "/health", nil)
		req.Header.Set("Origin", "https://evil.example.com")
		r.ServeHTTP(w, req)
		if got := w.Header().Get("Access-Control-Allow-Origin"); got != "" {
			t.Errorf("foreign origin must not be allowed, got %q", got)
		}
	})

	t.Run("preflight", func(t *testing.T) {
		t.Setenv("DASHBOARD_ORIGIN", "")
		r := gin.New()
		r.Use(CORSMiddleware())
		r.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("OPTIONS", "/health", nil)
		req.Header.Set("Origin", "https://dash.example.com")
		req.Header.Set("Access-Control-Request-Method", "GET")
		r.ServeHTTP(w, req)

		if w.Code != http.StatusNoContent {
			t.Errorf("preflight status = %d, want 204", w.Code)
		}
	})
}

func TestMissingSecretIsServerError(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	router := newTestRouter(registry.New(registry.NewMemStore()))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/v1/admin/users", nil)
	req.Header.Set("Authorization", "Bearer whatever")
	router.ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("expected 500 when JWT_SECRET is unset, got %d", w.Code)
	}
}
