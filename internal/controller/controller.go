// Package controller holds the photo list state of one admin session: the
// working set fetched from the store, the active filter, and the mutations
// an operator can trigger.
package controller

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"photobooth-admin/internal/model"
	"photobooth-admin/internal/store"
)

// DefaultPollInterval is how often the working set is re-fetched.
const DefaultPollInterval = 5 * time.Second

// DeletePrompt is the question put to the operator before a delete.
const DeletePrompt = "Are you sure you want to delete this photo?"

// Presenter is the presentation layer a controller renders into.
type Presenter interface {
	// Render receives the filtered view every time it may have changed.
	Render(view View)
	// Print hands a photo to the print surface.
	Print(photo model.Photo)
}

// Confirmer obtains an explicit yes/no from the operator.
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) bool
}

// ConfirmFunc adapts a function to the Confirmer interface.
type ConfirmFunc func(ctx context.Context, prompt string) bool

func (f ConfirmFunc) Confirm(ctx context.Context, prompt string) bool {
	return f(ctx, prompt)
}

// View is the derived, filtered state handed to the presenter.
type View struct {
	Filter model.Filter
	Photos []model.Photo
	// Total is the size of the unfiltered working set.
	Total int
}

// Empty reports whether the presenter should show the empty state.
func (v View) Empty() bool {
	return len(v.Photos) == 0
}

// DeriveView filters records for display. It is pure and keeps order.
func DeriveView(records []model.Photo, filter model.Filter) []model.Photo {
	return filter.Apply(records)
}

// Controller owns the working set of one admin session.
type Controller struct {
	store     store.Store
	presenter Presenter
	log       *zap.Logger
	interval  time.Duration

	mu       sync.RWMutex
	records  []model.Photo
	filter   model.Filter
	version  uint64
	renderMu sync.Mutex
	rendered uint64

	pollMu  sync.Mutex
	cancel  context.CancelFunc
	pollGen uint64
	wg      sync.WaitGroup
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the logger used to report store failures.
func WithLogger(log *zap.Logger) Option {
	return func(c *Controller) {
		if log != nil {
			c.log = log
		}
	}
}

// WithPollInterval overrides DefaultPollInterval.
func WithPollInterval(d time.Duration) Option {
	return func(c *Controller) {
		if d > 0 {
			c.interval = d
		}
	}
}

// WithFilter sets the initial filter.
func WithFilter(f model.Filter) Option {
	return func(c *Controller) {
		c.filter = f
	}
}

// New creates a controller with an empty working set and, unless
// WithFilter says otherwise, the All filter.
func New(s store.Store, p Presenter, opts ...Option) *Controller {
	c := &Controller{
		store:     s,
		presenter: p,
		log:       zap.NewNop(),
		interval:  DefaultPollInterval,
		filter:    model.FilterAll,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Refresh replaces the working set with the store's current contents and
// re-renders. On failure the working set is left as it was. Overlapping
// calls are allowed and the last one to complete wins.
func (c *Controller) Refresh(ctx context.Context) error {
	photos, err := c.store.List(ctx)
	if err != nil {
		c.report(ctx, "failed to load photos", err)
		return err
	}

	c.mu.Lock()
	c.records = photos
	c.version++
	view, version := c.viewLocked(), c.version
	c.mu.Unlock()

	c.render(view, version)
	return nil
}

// SetFilter changes the active filter and re-renders.
func (c *Controller) SetFilter(f model.Filter) {
	c.mu.Lock()
	c.filter = f
	c.version++
	view, version := c.viewLocked(), c.version
	c.mu.Unlock()

	c.render(view, version)
}

// Filter returns the active filter.
func (c *Controller) Filter() model.Filter {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.filter
}

// Records returns a copy of the working set.
func (c *Controller) Records() []model.Photo {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]model.Photo, len(c.records))
	copy(out, c.records)
	return out
}

// View returns the current filtered view.
func (c *Controller) View() View {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.viewLocked()
}

// Photo looks up a record in the working set.
func (c *Controller) Photo(id string) (model.Photo, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, p := range c.records {
		if p.ID == id {
			return p, true
		}
	}
	return model.Photo{}, false
}

// MarkPrinted sends the photo to the print surface and then flags it as
// printed in the store. Ids outside the working set are ignored. A failed
// update is reported and skips the refresh; the print is not undone.
func (c *Controller) MarkPrinted(ctx context.Context, id string) error {
	photo, ok := c.Photo(id)
	if !ok {
		c.log.Debug("ignoring print of unknown photo", zap.String("photo_id", id))
		return nil
	}

	c.presenter.Print(photo)

	if err := c.store.MarkPrinted(ctx, id); err != nil {
		c.report(ctx, "failed to update print status", err, zap.String("photo_id", id))
		return err
	}
	return c.Refresh(ctx)
}

// DeletePhoto removes a photo after the operator confirms. Ids outside the
// working set and declined confirmations are no-ops.
func (c *Controller) DeletePhoto(ctx context.Context, id string, confirm Confirmer) error {
	if _, ok := c.Photo(id); !ok {
		c.log.Debug("ignoring delete of unknown photo", zap.String("photo_id", id))
		return nil
	}
	if confirm == nil || !confirm.Confirm(ctx, DeletePrompt) {
		c.log.Debug("delete not confirmed", zap.String("photo_id", id))
		return nil
	}

	if err := c.store.Delete(ctx, id); err != nil {
		c.report(ctx, "failed to delete photo", err, zap.String("photo_id", id))
		return err
	}
	return c.Refresh(ctx)
}

func (c *Controller) viewLocked() View {
	return View{
		Filter: c.filter,
		Photos: DeriveView(c.records, c.filter),
		Total:  len(c.records),
	}
}

// render forwards a view unless a newer state has already been rendered.
func (c *Controller) render(view View, version uint64) {
	c.renderMu.Lock()
	defer c.renderMu.Unlock()
	if version < c.rendered {
		return
	}
	c.rendered = version
	c.presenter.Render(view)
}

func (c *Controller) report(ctx context.Context, msg string, err error, fields ...zap.Field) {
	fields = append(fields, zap.Error(err))
	if ctx.Err() != nil && errors.Is(err, ctx.Err()) {
		c.log.Debug(msg, fields...)
		return
	}
	c.log.Error(msg, fields...)
}
