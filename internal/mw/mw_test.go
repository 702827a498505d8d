package mw

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"golang.org/x/time/rate"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestCache(t *testing.T) {
	calls := 0
	r := gin.New()
	r.GET("/thumb", Cache(cache.New(time.Minute, 0), time.Minute), func(c *gin.Context) {
		calls++
		c.SetCookie("session", "abc", 0, "/", "", false, true)
		c.Data(http.StatusOK, "image/jpeg", []byte("jpeg"))
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/thumb", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "MISS", w.Header().Get(CacheHeader))
	assert.NotEmpty(t, w.Header().Get("Set-Cookie"))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/thumb", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "HIT", w.Header().Get(CacheHeader))
	assert.Equal(t, "image/jpeg", w.Header().Get("Content-Type"))
	assert.Empty(t, w.Header().Get("Set-Cookie"))
	assert.Equal(t, "jpeg", w.Body.String())
	assert.Equal(t, 1, calls)
}

func TestCache_SkipsFailures(t *testing.T) {
	calls := 0
	r := gin.New()
	r.GET("/thumb", Cache(cache.New(time.Minute, 0), time.Minute), func(c *gin.Context) {
		calls++
		c.AbortWithStatus(http.StatusNotFound)
	})

	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/thumb", nil))
		assert.Equal(t, http.StatusNotFound, w.Code)
	}
	assert.Equal(t, 2, calls)
}

func TestRateLimiter(t *testing.T) {
	limiter := NewKeyedRateLimiter(rate.Limit(1), 2, time.Minute)
	r := gin.New()
	r.POST("/act", RateLimiter(limiter, CookieOrIP("session")), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	post := func(cookie string) int {
		req := httptest.NewRequest(http.MethodPost, "/act", nil)
		if cookie != "" {
			req.AddCookie(&http.Cookie{Name: "session", Value: cookie})
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusNoContent, post("a"))
	assert.Equal(t, http.StatusNoContent, post("a"))
	assert.Equal(t, http.StatusTooManyRequests, post("a"))

	// Other sessions and cookieless clients have their own buckets.
	assert.Equal(t, http.StatusNoContent, post("b"))
	assert.Equal(t, http.StatusNoContent, post(""))
}

func TestKeyedRateLimiter_ReusesLimiter(t *testing.T) {
	limiter := NewKeyedRateLimiter(rate.Limit(1), 1, time.Minute)
	assert.Same(t, limiter.GetLimiter("k"), limiter.GetLimiter("k"))
	assert.NotSame(t, limiter.GetLimiter("k"), limiter.GetLimiter("other"))
}

func TestLogger(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	r := gin.New()
	r.Use(Logger(zap.New(core)))
	r.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/boom", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/ok", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/boom", nil))

	entries := logs.All()
	if assert.Len(t, entries, 2) {
		assert.Equal(t, zapcore.DebugLevel, entries[0].Level)
		assert.Equal(t, zapcore.ErrorLevel, entries[1].Level)
		assert.Equal(t, "/boom", entries[1].ContextMap()["path"])
		assert.EqualValues(t, 500, entries[1].ContextMap()["status"])
	}
}
