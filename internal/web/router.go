package web

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"photobooth-admin/internal/mw"
)

// RouterOptions configures middleware.
type RouterOptions struct {
	RateLimit         rate.Limit
	RateBurst         int
	ThumbnailCacheTTL time.Duration
}

// NewRouter creates and configures a new Gin router.
func NewRouter(h *Handler, log *zap.Logger, opts RouterOptions) *gin.Engine {
	r := gin.New()
	r.Use(mw.Logger(log), gin.Recovery())

	if opts.RateLimit <= 0 {
		opts.RateLimit = rate.Limit(10)
	}
	if opts.RateBurst <= 0 {
		opts.RateBurst = 5
	}
	if opts.ThumbnailCacheTTL <= 0 {
		opts.ThumbnailCacheTTL = 10 * time.Minute
	}

	// Page loads, sockets and mutations are limited per session, falling
	// back to the client IP for requests without a cookie.
	limiter := mw.NewKeyedRateLimiter(opts.RateLimit, opts.RateBurst, 10*time.Minute)
	rateLimiter := mw.RateLimiter(limiter, mw.CookieOrIP(SessionCookie))

	thumbnails := cache.New(opts.ThumbnailCacheTTL, 2*opts.ThumbnailCacheTTL)
	caching := mw.Cache(thumbnails, opts.ThumbnailCacheTTL)

	r.GET("/", rateLimiter, h.Index)
	r.GET("/healthz", h.Health)
	r.GET("/ws", rateLimiter, h.Socket)

	photos := r.Group("/photos")
	{
		photos.GET("", h.ListPhotos)
		photos.GET("/:id/print", h.PrintSurface)
		photos.GET("/:id/thumbnail", h.RequireSession, caching, h.Thumbnail)

		photos.POST("/refresh", rateLimiter, h.RefreshPhotos)
		photos.POST("/:id/print", rateLimiter, h.PrintPhoto)
		photos.DELETE("/:id", rateLimiter, h.DeletePhoto)
	}

	api := r.Group("/api")
	{
		api.GET("/photos", h.APIPhotos)
	}

	return r
}
