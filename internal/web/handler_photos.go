package web

import (
	"bytes"
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"photobooth-admin/internal/controller"
	"photobooth-admin/internal/imaging"
	"photobooth-admin/internal/model"
	"photobooth-admin/internal/web/templates"
)

// Index handles GET /. A page load starts from the All filter and a fresh
// working set, like opening the page anew.
func (h *Handler) Index(c *gin.Context) {
	sess, created := h.newSession(c)
	if !created {
		sess.Controller.SetFilter(model.FilterAll)
		_ = sess.Controller.Refresh(c.Request.Context())
	}

	if isHTMX(c) {
		h.fragment(c, sess)
		return
	}
	h.printTrigger(c, sess)
	h.html(c, http.StatusOK, templates.Page(templates.PageData{
		View:     sess.Controller.View(),
		Location: h.opts.Location,
		BoothURL: h.opts.BoothURL,
	}))
}

// ListPhotos handles GET /photos?filter=.
func (h *Handler) ListPhotos(c *gin.Context) {
	sess, ok := h.current(c)
	if !ok {
		return
	}

	if raw, ok := c.GetQuery("filter"); ok {
		filter, err := model.ParseFilter(raw)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid filter"})
			return
		}
		h.dispatch(c, sess, controller.FilterSelected{Filter: filter})
	}
	h.fragment(c, sess)
}

// RefreshPhotos handles POST /photos/refresh.
func (h *Handler) RefreshPhotos(c *gin.Context) {
	sess, ok := h.current(c)
	if !ok {
		return
	}
	h.dispatch(c, sess, controller.RefreshRequested{})
	h.fragment(c, sess)
}

// PrintPhoto handles POST /photos/:id/print.
func (h *Handler) PrintPhoto(c *gin.Context) {
	sess, ok := h.current(c)
	if !ok {
		return
	}
	h.dispatch(c, sess, controller.PrintRequested{ID: c.Param("id")})
	h.fragment(c, sess)
}

// DeletePhoto handles DELETE /photos/:id. The browser asks the operator
// before sending; only requests carrying confirmed=true delete anything.
func (h *Handler) DeletePhoto(c *gin.Context) {
	sess, ok := h.current(c)
	if !ok {
		return
	}
	accepted := confirmed(c)
	h.dispatch(c, sess, controller.DeleteRequested{
		ID: c.Param("id"),
		Confirmer: controller.ConfirmFunc(func(context.Context, string) bool {
			return accepted
		}),
	})
	h.fragment(c, sess)
}

// PrintSurface handles GET /photos/:id/print, the document the browser
// prints.
func (h *Handler) PrintSurface(c *gin.Context) {
	sess, ok := h.current(c)
	if !ok {
		return
	}
	photo, ok := sess.Controller.Photo(c.Param("id"))
	if !ok {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "Photo not found"})
		return
	}
	if !imaging.IsImageSource(photo.ImageData) {
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{"error": "Photo has no printable image"})
		return
	}
	h.html(c, http.StatusOK, templates.PrintSurface(photo.ImageData))
}

// Thumbnail handles GET /photos/:id/thumbnail for inline image payloads.
func (h *Handler) Thumbnail(c *gin.Context) {
	sess, ok := h.current(c)
	if !ok {
		return
	}
	photo, ok := sess.Controller.Photo(c.Param("id"))
	if !ok {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "Photo not found"})
		return
	}
	if !imaging.IsDataURL(photo.ImageData) {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "Photo has no inline image"})
		return
	}

	thumb, err := imaging.Thumbnail(photo.ImageData, h.opts.ThumbnailSize)
	if err != nil {
		h.log.Warn("failed to build thumbnail", zap.String("photo_id", photo.ID), zap.Error(err))
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{"error": "Failed to decode image"})
		return
	}
	c.Header("Cache-Control", "private, max-age=600")
	c.Data(http.StatusOK, "image/jpeg", thumb)
}

// Socket handles GET /ws. The connection immediately receives the current
// photo list and any print requests queued while no socket was open. The
// session polls the store while it has a socket attached.
func (h *Handler) Socket(c *gin.Context) {
	sess, ok := h.current(c)
	if !ok {
		return
	}
	if !h.sessions.attach(sess) {
		sessionExpired(c)
		return
	}
	defer h.sessions.detach(sess)

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Debug("websocket upgrade failed", zap.Error(err))
		return
	}

	var buf bytes.Buffer
	if err := templates.PhotoList(sess.Controller.View(), h.opts.Location).Render(c.Request.Context(), &buf); err != nil {
		h.log.Error("failed to render photo list", zap.Error(err))
	}
	initial := []Message{{Type: MsgRender, HTML: buf.String()}}
	for _, url := range sess.presenter.takePending() {
		initial = append(initial, Message{Type: MsgPrint, URL: url})
	}

	h.hub.Attach(conn, sess.ID, initial...)
}

// photoSummary is the JSON shape of a photo without its image payload.
type photoSummary struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Printed   bool      `json:"printed"`
}

// APIPhotos handles GET /api/photos?filter=. The filter applies to this
// response only; the session's active filter is used when none is given.
func (h *Handler) APIPhotos(c *gin.Context) {
	sess, ok := h.current(c)
	if !ok {
		return
	}

	filter := sess.Controller.Filter()
	if raw, ok := c.GetQuery("filter"); ok {
		f, err := model.ParseFilter(raw)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid filter"})
			return
		}
		filter = f
	}

	records := sess.Controller.Records()
	photos := controller.DeriveView(records, filter)
	response := make([]photoSummary, 0, len(photos))
	for _, p := range photos {
		response = append(response, photoSummary{ID: p.ID, CreatedAt: p.CreatedAt, Printed: p.Printed})
	}
	c.JSON(http.StatusOK, gin.H{
		"filter": filter,
		"total":  len(records),
		"photos": response,
	})
}

// Health handles GET /healthz.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "sessions": h.sessions.Count()})
}

// dispatch runs an action against the session controller. Failures are
// already logged by the controller; the response still carries the current
// list so the page stays usable.
func (h *Handler) dispatch(c *gin.Context, sess *Session, action controller.Action) {
	if err := sess.Controller.Handle(c.Request.Context(), action); err != nil {
		c.Error(err)
	}
}
