// Package web serves the admin page. Every browser session owns a
// controller; HTMX requests turn into controller actions and the resulting
// renders come back as HTML fragments or over the session's websocket.
package web

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/a-h/templ"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"photobooth-admin/internal/web/templates"
)

// PrintEvent is the HX-Trigger event carrying print URLs that could not be
// pushed over a websocket.
const PrintEvent = "photobooth:print"

// Options configures page rendering.
type Options struct {
	Location      *time.Location
	BoothURL      string
	ThumbnailSize uint
}

// Handler holds shared dependencies for the page handlers.
type Handler struct {
	sessions *Sessions
	hub      *Hub
	log      *zap.Logger
	opts     Options
	upgrader websocket.Upgrader
}

// NewHandler creates a new page handler.
func NewHandler(sessions *Sessions, hub *Hub, log *zap.Logger, opts Options) *Handler {
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.ThumbnailSize == 0 {
		opts.ThumbnailSize = 400
	}
	return &Handler{
		sessions: sessions,
		hub:      hub,
		log:      log,
		opts:     opts,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// newSession starts a session for the caller when the cookie is missing or
// its session has expired. created reports the latter. Only the page load
// starts sessions; other routes use current.
func (h *Handler) newSession(c *gin.Context) (sess *Session, created bool) {
	if id, err := c.Cookie(SessionCookie); err == nil {
		if sess, ok := h.sessions.Get(id); ok {
			return sess, false
		}
	}
	sess = h.sessions.Create(c.Request.Context())
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookie, sess.ID, 0, "/", "", false, true)
	return sess, true
}

// current returns the caller's live session. Without one the request is
// answered with 401, and HTMX requests are sent back to the page.
func (h *Handler) current(c *gin.Context) (*Session, bool) {
	if id, err := c.Cookie(SessionCookie); err == nil {
		if sess, ok := h.sessions.Get(id); ok {
			return sess, true
		}
	}
	sessionExpired(c)
	return nil, false
}

// RequireSession rejects requests without a live session before later
// middleware, such as the response cache, can answer them.
func (h *Handler) RequireSession(c *gin.Context) {
	if _, ok := h.current(c); !ok {
		return
	}
	c.Next()
}

func sessionExpired(c *gin.Context) {
	if isHTMX(c) {
		c.Header("HX-Redirect", "/")
	}
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Session expired"})
}

// html writes a component as the response body.
func (h *Handler) html(c *gin.Context, status int, component templ.Component) {
	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Status(status)
	if err := component.Render(c.Request.Context(), c.Writer); err != nil {
		h.log.Error("failed to render page", zap.String("path", c.Request.URL.Path), zap.Error(err))
		c.Error(err)
	}
}

// fragment answers an HTMX request with the session's current photo list.
func (h *Handler) fragment(c *gin.Context, sess *Session) {
	h.printTrigger(c, sess)
	h.html(c, http.StatusOK, templates.PhotoList(sess.Controller.View(), h.opts.Location))
}

// printTrigger moves queued print URLs into an HX-Trigger header.
func (h *Handler) printTrigger(c *gin.Context, sess *Session) {
	urls := sess.presenter.takePending()
	if len(urls) == 0 {
		return
	}
	payload, err := json.Marshal(map[string]any{
		PrintEvent: map[string][]string{"urls": urls},
	})
	if err != nil {
		h.log.Error("failed to encode print trigger", zap.Error(err))
		return
	}
	c.Header("HX-Trigger", string(payload))
}

// confirmed reports whether the request carries an accepted confirmation.
func confirmed(c *gin.Context) bool {
	v := c.Query("confirmed")
	if v == "" {
		v = c.PostForm("confirmed")
	}
	ok, err := strconv.ParseBool(v)
	return err == nil && ok
}

func isHTMX(c *gin.Context) bool {
	return c.GetHeader("HX-Request") == "true"
}
