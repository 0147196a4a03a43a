package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nobridge/nobridge-backend/internal/domain/valueobject"
	"github.com/nobridge/nobridge-backend/internal/pkg/apperror"
)

type fakeTokens struct {
	userID uuid.UUID
	role   valueobject.Role
	err    error
}

func (f fakeTokens) ParseAccess(string) (uuid.UUID, valueobject.Role, error) {
	return f.userID, f.role, f.err
}

func startMiniRedis(t *testing.T) *miniredis.Miniredis {
	t.Helper()
	srv, err := miniredis.Run()
	if err != nil {
		t.Skipf("skip: miniredis unavailable in this environment: %v", err)
	}
	t.Cleanup(srv.Close)
	return srv
}

func newEngine() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.New()
}

func do(r http.Handler, method, path string, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware(t *testing.T) {
	userID := uuid.New()
	r := newEngine()
	r.Use(AuthMiddleware(fakeTokens{userID: userID, role: valueobject.RoleSeller}))
	r.GET("/me", func(c *gin.Context) {
		id, _ := c.Get(ContextUserIDKey)
		role, _ := c.Get(ContextRoleKey)
		c.JSON(http.StatusOK, gin.H{"id": id.(uuid.UUID).String(), "role": string(role.(valueobject.Role))})
	})

	w := do(r, http.MethodGet, "/me", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(r, http.MethodGet, "/me", map[string]string{"Authorization": "Token abc"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(r, http.MethodGet, "/me", map[string]string{"Authorization": "Bearer abc"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), userID.String())
	assert.Contains(t, w.Body.String(), `"role":"seller"`)
}

func TestAuthMiddleware_InvalidToken(t *testing.T) {
	r := newEngine()
	r.Use(AuthMiddleware(fakeTokens{err: errors.New("bad signature")}))
	r.GET("/me", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := do(r, http.MethodGet, "/me", map[string]string{"Authorization": "Bearer abc"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestOptionalAuthMiddleware_AllowsAnonymous(t *testing.T) {
	r := newEngine()
	r.Use(OptionalAuthMiddleware(fakeTokens{err: errors.New("expired")}))
	r.GET("/listings", func(c *gin.Context) {
		_, ok := c.Get(ContextUserIDKey)
		c.JSON(http.StatusOK, gin.H{"authenticated": ok})
	})

	w := do(r, http.MethodGet, "/listings", map[string]string{"Authorization": "Bearer expired"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"authenticated":false}`, w.Body.String())
}

func TestRequireRole(t *testing.T) {
	r := newEngine()
	r.Use(AuthMiddleware(fakeTokens{userID: uuid.New(), role: valueobject.RoleBuyer}))
	r.GET("/admin", RequireRole(valueobject.RoleAdmin), func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/any", RequireRole(valueobject.RoleBuyer, valueobject.RoleSeller), func(c *gin.Context) { c.Status(http.StatusOK) })

	auth := map[string]string{"Authorization": "Bearer t"}
	assert.Equal(t, http.StatusForbidden, do(r, http.MethodGet, "/admin", auth).Code)
	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/any", auth).Code)
}

func TestRequestIDMiddleware(t *testing.T) {
	r := newEngine()
	r.Use(RequestIDMiddleware())
	r.GET("/x", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(RequestIDKey)) })

	w := do(r, http.MethodGet, "/x", map[string]string{RequestIDHeader: "req-1"})
	assert.Equal(t, "req-1", w.Header().Get(RequestIDHeader))
	assert.Equal(t, "req-1", w.Body.String())

	w = do(r, http.MethodGet, "/x", nil)
	_, err := uuid.Parse(w.Header().Get(RequestIDHeader))
	assert.NoError(t, err)
}

func TestErrorHandler(t *testing.T) {
	r := newEngine()
	r.Use(ErrorHandler())
	r.GET("/conflict", func(c *gin.Context) {
		_ = c.Error(apperror.ErrPendingRequestExists)
	})
	r.GET("/boom", func(c *gin.Context) {
		_ = c.Error(errors.New("pq: connection refused"))
	})

	w := do(r, http.MethodGet, "/conflict", nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "CONFLICT")

	w = do(r, http.MethodGet, "/boom", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "connection refused")
}

func TestUUIDValidator(t *testing.T) {
	r := newEngine()
	r.GET("/inquiries/:id", UUIDValidator("id"), func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodGet, "/inquiries/not-a-uuid", nil).Code)
	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/inquiries/"+uuid.NewString(), nil).Code)
}

func TestCORSMiddleware(t *testing.T) {
	r := newEngine()
	r.Use(CORSMiddleware([]string{"https://app.example"}))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := do(r, http.MethodOptions, "/x", map[string]string{"Origin": "https://app.example"})
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://app.example", w.Header().Get("Access-Control-Allow-Origin"))

	w = do(r, http.MethodGet, "/x", map[string]string{"Origin": "https://evil.example"})
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func rateLimitedEngine(t *testing.T, client *redis.Client) *gin.Engine {
	t.Helper()
	store, err := NewLimiterStore(client, "test:ratelimit")
	require.NoError(t, err)

	r := newEngine()
	r.Use(RateLimitMiddleware(store, 2, time.Minute))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })
	return r
}

func assertLimitedAfterTwo(t *testing.T, r *gin.Engine) {
	t.Helper()
	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/x", nil).Code)
	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/x", nil).Code)

	w := do(r, http.MethodGet, "/x", nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	retry, err := strconv.Atoi(w.Header().Get("Retry-After"))
	require.NoError(t, err)
	assert.Greater(t, retry, 0)
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))
}

func TestRateLimitMiddleware_MemoryStore(t *testing.T) {
	assertLimitedAfterTwo(t, rateLimitedEngine(t, nil))
}

func TestRateLimitMiddleware_RedisStore(t *testing.T) {
	srv := startMiniRedis(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	assertLimitedAfterTwo(t, rateLimitedEngine(t, client))
	assert.NotEmpty(t, srv.Keys())
}

func TestRateLimitMiddleware_KeyedByUser(t *testing.T) {
	store, err := NewLimiterStore(nil, "test:user")
	require.NoError(t, err)

	r := newEngine()
	r.Use(func(c *gin.Context) {
		if id := c.GetHeader("X-User"); id != "" {
			c.Set(ContextUserIDKey, uuid.MustParse(id))
		}
		c.Next()
	})
	r.Use(RateLimitMiddleware(store, 1, time.Minute))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	alice, bob := uuid.NewString(), uuid.NewString()
	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/x", map[string]string{"X-User": alice}).Code)
	assert.Equal(t, http.StatusTooManyRequests, do(r, http.MethodGet, "/x", map[string]string{"X-User": alice}).Code)
	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/x", map[string]string{"X-User": bob}).Code)
}
