package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/secondhand-bookstore/internal/config"
	"github.com/iliyamo/secondhand-bookstore/internal/handler"
	"github.com/iliyamo/secondhand-bookstore/internal/repository"
)

func TestNew_RegistersEveryRoute(t *testing.T) {
	e := New(handler.New(nil, 0), Deps{})

	want := map[string]bool{
		"GET /healthz":            false,
		"GET /metrics":            false,
		"GET /posting/all":        false,
		"GET /posting/:id":        false,
		"GET /book/filter":        false,
		"GET /book/filter/:genre": false,
		"GET /submissions":        false,
		"POST /purchase":          false,
		"POST /checkout":          false,
		"POST /submission":        false,
		"POST /add":               false,
		"POST /del":               false,
	}
	for _, r := range e.Routes() {
		key := r.Method + " " + r.Path
		if _, ok := want[key]; ok {
			want[key] = true
		}
	}
	for route, found := range want {
		require.True(t, found, route)
	}
}

func TestStaticAndHealth(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("<h1>shop</h1>"), 0o644))
	e := New(handler.New(nil, 0), Deps{PublicDir: dir})

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/index.html", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "shop")

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, "ok", rec.Body.String())

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "bookstore_http_request_duration_seconds")
}

type genreMarketplace struct {
	handler.Marketplace
	genres *repository.GenreRepo
}

func (m genreMarketplace) Genres(ctx context.Context) ([]string, error) {
	return m.genres.List(ctx)
}

func TestGenres_FileEditsVisibleWithCacheOn(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	path := filepath.Join(t.TempDir(), "genres.txt")
	require.NoError(t, os.WriteFile(path, []byte("Fiction\n"), 0o644))

	svc := genreMarketplace{genres: repository.NewGenreRepo(path)}
	e := New(handler.New(svc, 0), Deps{
		Redis: rdb,
		Cache: config.CacheConfig{
			Enabled: true,
			Methods: map[string]bool{http.MethodGet: true},
			TTL:     time.Minute,
			Prefix:  "test:cache",
		},
	})

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/book/filter", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `["Fiction"]`, rec.Body.String())

	require.NoError(t, os.WriteFile(path, []byte("Fiction\nPoetry\n"), 0o644))

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/book/filter", nil))
	require.JSONEq(t, `["Fiction","Poetry"]`, rec.Body.String())
	require.Empty(t, rec.Header().Get("X-Cache"))
}
