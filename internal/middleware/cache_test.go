package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/task-manager-api/internal/config"
)

func TestEncodeDecodePayload_RoundTrip(t *testing.T) {
	hdr := http.Header{"Content-Type": {"application/json"}, "X-Custom": {"a", "b"}}
	body := []byte(`[{"id":1,"name":"Work"}]`)

	bs, err := encodePayload(http.StatusOK, hdr, body)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	status, gotHdr, gotBody, ok := decodePayload(bs)
	if !ok {
		t.Fatalf("decode failed")
	}
	if status != http.StatusOK {
		t.Fatalf("expected status 200, got %d", status)
	}
	if got := gotHdr.Get("Content-Type"); got != "application/json" {
		t.Fatalf("expected content type preserved, got %q", got)
	}
	if len(gotHdr["X-Custom"]) != 2 {
		t.Fatalf("expected both header values, got %v", gotHdr["X-Custom"])
	}
	if string(gotBody) != string(body) {
		t.Fatalf("body mismatch: %q", gotBody)
	}
}

func TestDecodePayload_RejectsTruncated(t *testing.T) {
	for _, bs := range [][]byte{nil, {1, 2, 3}, {0, 0, 0, 200, 0, 0, 0, 99}} {
		if _, _, _, ok := decodePayload(bs); ok {
			t.Fatalf("expected decode failure for %v", bs)
		}
	}
}

func TestCaptureWriter_RespectsLimit(t *testing.T) {
	rec := httptest.NewRecorder()
	cw := &captureWriter{ResponseWriter: rec, status: http.StatusOK, limit: 4}
	if _, err := cw.Write([]byte("abcdef")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cw.buf.String() != "abcd" {
		t.Fatalf("expected buffer capped at 4 bytes, got %q", cw.buf.String())
	}
	// The client still receives the full body.
	if rec.Body.String() != "abcdef" {
		t.Fatalf("client body truncated: %q", rec.Body.String())
	}
	if cw.size != 6 {
		t.Fatalf("size must count all written bytes, got %d", cw.size)
	}
}

func TestCacheKey_StablePerRouteAndQuery(t *testing.T) {
	e := echo.New()
	ctxFor := func(target string) echo.Context {
		req := httptest.NewRequest(http.MethodGet, target, nil)
		c := e.NewContext(req, httptest.NewRecorder())
		c.SetPath("/v1/categories")
		return c
	}
	k1 := cacheKey("cache", ctxFor("/v1/categories?skip=0"))
	k2 := cacheKey("cache", ctxFor("/v1/categories?skip=0"))
	k3 := cacheKey("cache", ctxFor("/v1/categories?skip=10"))
	if k1 != k2 {
		t.Fatalf("identical requests must share a key: %q vs %q", k1, k2)
	}
	if k1 == k3 {
		t.Fatalf("different queries must not share a key")
	}
}

// Parameterized routes share one route pattern, so the key must come from
// the concrete request path or every id would collide on one entry.
func TestCacheKey_DistinctPerPathParam(t *testing.T) {
	e := echo.New()
	ctxFor := func(target, id string) echo.Context {
		req := httptest.NewRequest(http.MethodGet, target, nil)
		c := e.NewContext(req, httptest.NewRecorder())
		c.SetPath("/v1/categories/:id")
		c.SetParamNames("id")
		c.SetParamValues(id)
		return c
	}
	k1 := cacheKey("cache", ctxFor("/v1/categories/1", "1"))
	k2 := cacheKey("cache", ctxFor("/v1/categories/2", "2"))
	if k1 == k2 {
		t.Fatalf("different ids must not share a cache key: %q", k1)
	}
}

func testCacheConfig() config.CacheConfig {
	return config.CacheConfig{
		Enabled:      true,
		Methods:      map[string]bool{"GET": true},
		TTL:          time.Minute,
		Prefix:       "cache",
		MaxBodyBytes: 1 << 20,
	}
}

func TestRedisCache_ServesEachIDItsOwnEntry(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	cfg := testCacheConfig()

	e := echo.New()
	e.GET("/v1/categories/:id", func(c echo.Context) error {
		return c.String(http.StatusOK, "category-"+c.Param("id"))
	}, NewRedisCache(cfg, rdb))

	get := func(path string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		return rec
	}

	if rec := get("/v1/categories/1"); rec.Header().Get("X-Cache") != "MISS" || rec.Body.String() != "category-1" {
		t.Fatalf("first read: X-Cache=%q body=%q", rec.Header().Get("X-Cache"), rec.Body.String())
	}
	if rec := get("/v1/categories/1"); rec.Header().Get("X-Cache") != "HIT" || rec.Body.String() != "category-1" {
		t.Fatalf("repeat read: X-Cache=%q body=%q", rec.Header().Get("X-Cache"), rec.Body.String())
	}
	// Another id right after id 1 was cached must get its own body.
	if rec := get("/v1/categories/2"); rec.Body.String() != "category-2" {
		t.Fatalf("id 2 answered with %q", rec.Body.String())
	}
}

func TestRedisCacheInvalidate_FlushesOnMutation(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	cfg := testCacheConfig()

	body := "before"
	e := echo.New()
	e.GET("/v1/categories/:id", func(c echo.Context) error {
		return c.String(http.StatusOK, body)
	}, NewRedisCache(cfg, rdb))
	e.PUT("/v1/categories/:id", func(c echo.Context) error {
		return c.String(http.StatusOK, "updated")
	}, NewRedisCacheInvalidate(cfg, rdb))

	do := func(method, path string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, nil)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		return rec
	}

	do(http.MethodGet, "/v1/categories/1") // populate the cache
	body = "after"
	if rec := do(http.MethodGet, "/v1/categories/1"); rec.Body.String() != "before" {
		t.Fatalf("expected cached body before the mutation, got %q", rec.Body.String())
	}
	do(http.MethodPut, "/v1/categories/1")
	rec := do(http.MethodGet, "/v1/categories/1")
	if rec.Header().Get("X-Cache") != "MISS" {
		t.Fatalf("expected a fresh read after the mutation, got %q", rec.Header().Get("X-Cache"))
	}
	if rec.Body.String() != "after" {
		t.Fatalf("stale body served after the mutation: %q", rec.Body.String())
	}
}
