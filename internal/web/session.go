package web

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"photobooth-admin/internal/controller"
	"photobooth-admin/internal/store"
)

// SessionCookie names the cookie that binds a browser to its session.
const SessionCookie = "boothadmin_session"

// Session is one admin page's controller and presenter. Its poller runs only
// while at least one websocket is attached.
type Session struct {
	ID         string
	Controller *controller.Controller
	presenter  *sessionPresenter

	mu      sync.Mutex
	sockets int
	ended   bool
}

// SessionOptions configures a Sessions registry.
type SessionOptions struct {
	TTL             time.Duration
	CleanupInterval time.Duration
	PollInterval    time.Duration
	Location        *time.Location
}

// Sessions keeps live sessions in a go-cache with a sliding expiry. An
// evicted session stops polling and its sockets are closed.
type Sessions struct {
	ctx   context.Context
	items *cache.Cache
	store store.Store
	hub   *Hub
	log   *zap.Logger
	opts  SessionOptions
}

// NewSessions creates the registry. Pollers of all sessions run under ctx.
// A zero CleanupInterval disables the background janitor; DeleteExpired
// then has to be called explicitly.
func NewSessions(ctx context.Context, s store.Store, hub *Hub, log *zap.Logger, opts SessionOptions) *Sessions {
	if opts.TTL <= 0 {
		opts.TTL = 30 * time.Minute
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	cleanup := opts.CleanupInterval
	if cleanup <= 0 {
		cleanup = -1
	}

	sessions := &Sessions{
		ctx:   ctx,
		items: cache.New(opts.TTL, cleanup),
		store: s,
		hub:   hub,
		log:   log,
		opts:  opts,
	}
	sessions.items.OnEvicted(sessions.evicted)
	return sessions
}

// Create starts a new session and loads its working set. A failed initial
// load is logged by the controller and leaves the session with an empty
// working set. Polling waits for the first attached socket.
func (s *Sessions) Create(ctx context.Context) *Session {
	id := uuid.NewString()
	presenter := newSessionPresenter(id, s.hub, s.opts.Location, s.log)
	ctrl := controller.New(s.store, presenter,
		controller.WithLogger(s.log.With(zap.String("session", id))),
		controller.WithPollInterval(s.opts.PollInterval),
	)

	_ = ctrl.Refresh(ctx)

	sess := &Session{ID: id, Controller: ctrl, presenter: presenter}
	s.items.SetDefault(id, sess)
	s.log.Debug("session created", zap.String("session", id))
	return sess
}

// Get returns a live session and extends its expiry.
func (s *Sessions) Get(id string) (*Session, bool) {
	if id == "" {
		return nil, false
	}
	v, found := s.items.Get(id)
	if !found {
		return nil, false
	}
	sess := v.(*Session)
	s.items.SetDefault(id, sess)
	return sess, true
}

// Remove ends a session.
func (s *Sessions) Remove(id string) {
	s.items.Delete(id)
}

// DeleteExpired ends every session past its expiry.
func (s *Sessions) DeleteExpired() {
	s.items.DeleteExpired()
}

// Count returns the number of live sessions, expired ones included until
// they are cleaned up.
func (s *Sessions) Count() int {
	return s.items.ItemCount()
}

// Close ends every session.
func (s *Sessions) Close() {
	for id := range s.items.Items() {
		s.items.Delete(id)
	}
}

// attach counts a socket on sess and starts polling with the first one. It
// fails once the session has ended.
func (s *Sessions) attach(sess *Session) bool {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.ended {
		return false
	}
	sess.sockets++
	if sess.sockets == 1 {
		sess.Controller.Start(s.ctx)
	}
	return true
}

// detach undoes attach and stops polling when the last socket leaves.
func (s *Sessions) detach(sess *Session) {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.sockets == 0 {
		return
	}
	sess.sockets--
	if sess.sockets == 0 {
		sess.Controller.Stop()
	}
}

func (s *Sessions) evicted(id string, v interface{}) {
	sess, ok := v.(*Session)
	if !ok {
		return
	}
	sess.mu.Lock()
	sess.ended = true
	sess.mu.Unlock()

	sess.Controller.Stop()
	s.hub.CloseSession(id)
	s.log.Debug("session ended", zap.String("session", id))
}
