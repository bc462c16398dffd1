package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/JDamianDelgado/ValleDePaz/internal/models"
	"github.com/JDamianDelgado/ValleDePaz/internal/utils"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "middleware-test-secret"

func signedToken(t *testing.T, id uuid.UUID, role models.Role) string {
	t.Helper()
	token, err := utils.GenerateToken(&models.User{ID: id, Email: "x@example.com", Username: "x", Role: role}, testSecret, time.Hour)
	require.NoError(t, err)
	return token
}

func guardedRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	ok := func(c *gin.Context) { c.Status(http.StatusOK) }
	auth := router.Group("/", AuthMiddleware(testSecret))
	auth.GET("/me", ok)
	auth.GET("/admin", AdminMiddleware(), ok)
	auth.GET("/users/:id", SelfOrAdminMiddleware("id"), ok)
	return router
}

func TestAuthMiddleware(t *testing.T) {
	router := guardedRouter()
	userID := uuid.New()
	token := signedToken(t, userID, models.RoleUser)

	testCases := []struct {
		name   string
		setup  func(r *http.Request)
		status int
	}{
		{"no credentials", func(r *http.Request) {}, http.StatusUnauthorized},
		{"malformed header", func(r *http.Request) { r.Header.Set("Authorization", token) }, http.StatusUnauthorized},
		{"garbage token", func(r *http.Request) { r.Header.Set("Authorization", "Bearer nope") }, http.StatusUnauthorized},
		{"bearer token", func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+token) }, http.StatusOK},
		{"session cookie", func(r *http.Request) { r.AddCookie(&http.Cookie{Name: TokenCookie, Value: token}) }, http.StatusOK},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			tc.setup(req)
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			assert.Equal(t, tc.status, w.Code)
		})
	}
}

func TestAdminMiddleware(t *testing.T) {
	router := guardedRouter()

	for role, status := range map[models.Role]int{
		models.RoleUser:  http.StatusForbidden,
		models.RoleAdmin: http.StatusOK,
	} {
		req := httptest.NewRequest(http.MethodGet, "/admin", nil)
		req.Header.Set("Authorization", "Bearer "+signedToken(t, uuid.New(), role))
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		assert.Equal(t, status, w.Code, "role %s", role)
	}
}

func TestSelfOrAdminMiddleware(t *testing.T) {
	router := guardedRouter()
	self := uuid.New()

	testCases := []struct {
		name   string
		token  string
		target string
		status int
	}{
		{"own account", signedToken(t, self, models.RoleUser), self.String(), http.StatusOK},
		{"other account", signedToken(t, self, models.RoleUser), uuid.NewString(), http.StatusForbidden},
		{"admin on any account", signedToken(t, uuid.New(), models.RoleAdmin), self.String(), http.StatusOK},
		{"invalid id", signedToken(t, self, models.RoleUser), "not-a-uuid", http.StatusBadRequest},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/users/"+tc.target, nil)
			req.Header.Set("Authorization", "Bearer "+tc.token)
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			assert.Equal(t, tc.status, w.Code)
		})
	}
}

func TestSecurityHeaders(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(SecurityHeadersMiddleware(), HSTSMiddleware(true))
	router.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
	assert.Contains(t, w.Header().Get("Content-Security-Policy"), "frame-ancestors 'none'")
	assert.NotEmpty(t, w.Header().Get("Strict-Transport-Security"))
}
