package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/watch-rotation-scheduler/internal/config"
	"github.com/iliyamo/watch-rotation-scheduler/internal/utils"
)

const secret = "test-secret"

func serve(t *testing.T, mw echo.MiddlewareFunc, header string) (*httptest.ResponseRecorder, interface{}) {
	t.Helper()
	e := echo.New()
	var seen interface{}
	e.GET("/v1/ping", func(c echo.Context) error {
		seen = c.Get("user_id")
		return c.NoContent(http.StatusNoContent)
	}, mw)
	req := httptest.NewRequest(http.MethodGet, "/v1/ping", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec, seen
}

func TestJWTAuth_AcceptsIssuedToken(t *testing.T) {
	tok, err := utils.NewAccessToken(secret, 42, time.Minute)
	require.NoError(t, err)

	rec, seen := serve(t, JWTAuth(secret), "Bearer "+tok.Token)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, uint64(42), seen)
}

func TestJWTAuth_NumericSubject(t *testing.T) {
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": 7,
		"exp": time.Now().Add(time.Minute).Unix(),
	}).SignedString([]byte(secret))
	require.NoError(t, err)

	rec, seen := serve(t, JWTAuth(secret), "Bearer "+raw)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, uint64(7), seen)
}

func TestJWTAuth_Rejects(t *testing.T) {
	expired, _ := utils.NewAccessToken(secret, 42, -time.Minute)
	foreign, _ := utils.NewAccessToken("other-secret", 42, time.Minute)
	noSub, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"exp": time.Now().Add(time.Minute).Unix(),
	}).SignedString([]byte(secret))
	noExp, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "42"}).SignedString([]byte(secret))

	for name, header := range map[string]string{
		"missing header": "",
		"not bearer":     "Basic abc",
		"garbage":        "Bearer not-a-jwt",
		"expired":        "Bearer " + expired.Token,
		"wrong secret":   "Bearer " + foreign.Token,
		"no subject":     "Bearer " + noSub,
		"no expiry":      "Bearer " + noExp,
	} {
		t.Run(name, func(t *testing.T) {
			rec, seen := serve(t, JWTAuth(secret), header)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Nil(t, seen)
		})
	}
}

func newLimiter(t *testing.T, capacity int) (echo.MiddlewareFunc, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	cfg := config.RateLimitConfig{
		Enabled:        true,
		Capacity:       capacity,
		RefillTokens:   1,
		RefillInterval: time.Hour,
		TTL:            2 * time.Hour,
		KeyStrategy:    "user_route",
		Prefix:         "rl",
	}
	return NewTokenBucket(cfg, rdb, zerolog.Nop()), mr
}

func asUser(id uint64) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set("user_id", id)
			return next(c)
		}
	}
}

func hit(e *echo.Echo) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/schedules/generate", nil))
	return rec
}

func TestTokenBucket_BlocksAfterCapacity(t *testing.T) {
	limit, mr := newLimiter(t, 2)
	e := echo.New()
	e.POST("/v1/schedules/generate", func(c echo.Context) error { return c.NoContent(http.StatusOK) }, asUser(9), limit)

	first := hit(e)
	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, "2", first.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "1", first.Header().Get("X-RateLimit-Remaining"))
	assert.Equal(t, http.StatusOK, hit(e).Code)

	blocked := hit(e)
	assert.Equal(t, http.StatusTooManyRequests, blocked.Code)
	assert.NotEmpty(t, blocked.Header().Get("Retry-After"))
	assert.True(t, mr.Exists("rl:user:9:route:POST /v1/schedules/generate"))
}

func TestTokenBucket_KeysAreIndependentPerUser(t *testing.T) {
	limit, _ := newLimiter(t, 1)
	e := echo.New()
	e.POST("/v1/schedules/generate", func(c echo.Context) error { return c.NoContent(http.StatusOK) }, asUser(1), limit)
	other := echo.New()
	other.POST("/v1/schedules/generate", func(c echo.Context) error { return c.NoContent(http.StatusOK) }, asUser(2), limit)

	assert.Equal(t, http.StatusOK, hit(e).Code)
	assert.Equal(t, http.StatusTooManyRequests, hit(e).Code)
	assert.Equal(t, http.StatusOK, hit(other).Code)
}

func TestTokenBucket_FailsOpenWhenRedisIsDown(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", DialTimeout: 100 * time.Millisecond, MaxRetries: -1})
	t.Cleanup(func() { _ = rdb.Close() })
	limit := NewTokenBucket(config.RateLimitConfig{
		Enabled: true, Capacity: 1, RefillTokens: 1, RefillInterval: time.Hour, TTL: time.Hour, Prefix: "rl",
	}, rdb, zerolog.Nop())
	e := echo.New()
	e.POST("/v1/schedules/generate", func(c echo.Context) error { return c.NoContent(http.StatusOK) }, limit)

	assert.Equal(t, http.StatusOK, hit(e).Code)
	assert.Equal(t, http.StatusOK, hit(e).Code)
}

func TestTokenBucket_DisabledIsNoop(t *testing.T) {
	limit := NewTokenBucket(config.RateLimitConfig{Enabled: false}, nil, zerolog.Nop())
	e := echo.New()
	e.POST("/v1/schedules/generate", func(c echo.Context) error { return c.NoContent(http.StatusOK) }, limit)
	for i := 0; i < 5; i++ {
		assert.Equal(t, http.StatusOK, hit(e).Code)
	}
}
