package middleware

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/secondhand-bookstore/internal/config"
)

func newRedis(t *testing.T) *redis.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return rdb
}

func cacheConfig() config.CacheConfig {
	return config.CacheConfig{
		Enabled:     true,
		Methods:     map[string]bool{http.MethodGet: true},
		TTL:         time.Minute,
		KeyStrategy: "route_query",
		Prefix:      "test:cache",
	}
}

func do(e *echo.Echo, method, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(method, target, nil))
	return rec
}

func TestRedisCache_HitIsByteIdentical(t *testing.T) {
	rdb := newRedis(t)
	e := echo.New()
	calls := 0
	e.GET("/posting/:id", func(c echo.Context) error {
		calls++
		return c.JSON(http.StatusOK, []map[string]string{{"post_id": c.Param("id"), "price": "12.50"}})
	}, NewRedisCache(cacheConfig(), rdb))

	first := do(e, http.MethodGet, "/posting/1")
	require.Equal(t, http.StatusOK, first.Code)
	require.Equal(t, "MISS", first.Header().Get("X-Cache"))

	second := do(e, http.MethodGet, "/posting/1")
	require.Equal(t, http.StatusOK, second.Code)
	require.Equal(t, "HIT", second.Header().Get("X-Cache"))
	require.Equal(t, first.Body.String(), second.Body.String())
	require.Equal(t, first.Header().Get(echo.HeaderContentType), second.Header().Get(echo.HeaderContentType))
	require.Equal(t, 1, calls)

	other := do(e, http.MethodGet, "/posting/2")
	require.Equal(t, "MISS", other.Header().Get("X-Cache"))
	require.Contains(t, other.Body.String(), `"post_id":"2"`)
	require.Equal(t, 2, calls)
}

func TestRedisCache_NotFoundIsNotCached(t *testing.T) {
	rdb := newRedis(t)
	e := echo.New()
	calls := 0
	e.GET("/posting/:id", func(c echo.Context) error {
		calls++
		return c.String(http.StatusNotFound, "No results found.")
	}, NewRedisCache(cacheConfig(), rdb))

	for i := 0; i < 2; i++ {
		rec := do(e, http.MethodGet, "/posting/9")
		require.Equal(t, http.StatusNotFound, rec.Code)
		require.Equal(t, "MISS", rec.Header().Get("X-Cache"))
	}
	require.Equal(t, 2, calls)
}

func TestPurgeCache_OnlyAfterSuccessfulWrite(t *testing.T) {
	rdb := newRedis(t)
	cfg := cacheConfig()
	e := echo.New()
	e.GET("/posting/all", func(c echo.Context) error {
		return c.JSON(http.StatusOK, []string{})
	}, NewRedisCache(cfg, rdb))

	status := http.StatusInternalServerError
	e.POST("/purchase", func(c echo.Context) error {
		return c.String(status, "done")
	}, PurgeCache(cfg, rdb))

	do(e, http.MethodGet, "/posting/all")
	require.Equal(t, "HIT", do(e, http.MethodGet, "/posting/all").Header().Get("X-Cache"))

	require.Equal(t, http.StatusInternalServerError, do(e, http.MethodPost, "/purchase").Code)
	require.Equal(t, "HIT", do(e, http.MethodGet, "/posting/all").Header().Get("X-Cache"))

	status = http.StatusOK
	require.Equal(t, http.StatusOK, do(e, http.MethodPost, "/purchase").Code)
	require.Equal(t, "MISS", do(e, http.MethodGet, "/posting/all").Header().Get("X-Cache"))
	require.Equal(t, "HIT", do(e, http.MethodGet, "/posting/all").Header().Get("X-Cache"))
}

func TestRedisCache_BodyReadBeforePurgeIsNotServed(t *testing.T) {
	rdb := newRedis(t)
	cfg := cacheConfig()
	e := echo.New()

	body := "before"
	e.GET("/posting/1", func(c echo.Context) error {
		out := body
		if body == "before" {
			// a write commits and purges while this request is in flight
			require.NoError(t, purge(c.Request().Context(), rdb, cfg.Prefix))
			body = "after"
		}
		return c.String(http.StatusOK, out)
	}, NewRedisCache(cfg, rdb))

	require.Equal(t, "before", do(e, http.MethodGet, "/posting/1").Body.String())

	rec := do(e, http.MethodGet, "/posting/1")
	require.Equal(t, "MISS", rec.Header().Get("X-Cache"))
	require.Equal(t, "after", rec.Body.String())
}

func TestTokenBucket_ThrottlesOnceCapacityIsSpent(t *testing.T) {
	rdb := newRedis(t)
	cfg := config.RateLimitConfig{
		Enabled:        true,
		Capacity:       2,
		RefillTokens:   1,
		RefillInterval: time.Hour,
		TTL:            time.Hour,
		KeyStrategy:    "ip_route",
		Prefix:         "test:rl",
	}
	e := echo.New()
	e.POST("/purchase", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	}, NewTokenBucket(cfg, rdb))
	e.POST("/del", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	}, NewTokenBucket(cfg, rdb))

	for want := 1; want >= 0; want-- {
		rec := do(e, http.MethodPost, "/purchase")
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, "2", rec.Header().Get("X-RateLimit-Limit"))
		require.Equal(t, strconv.Itoa(want), rec.Header().Get("X-RateLimit-Remaining"))
	}

	rec := do(e, http.MethodPost, "/purchase")
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	require.Equal(t, TooManyRequests, rec.Body.String())
	retry, err := strconv.Atoi(rec.Header().Get("Retry-After"))
	require.NoError(t, err)
	require.Greater(t, retry, 0)

	// a different route has its own bucket
	require.Equal(t, http.StatusOK, do(e, http.MethodPost, "/del").Code)
}
