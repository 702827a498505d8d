package web

import (
	"bytes"
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"photobooth-admin/internal/controller"
	"photobooth-admin/internal/model"
	"photobooth-admin/internal/web/templates"
)

// sessionPresenter renders a session's controller into its websocket
// clients. Print requests made while no socket is open are kept until the
// next HTTP response can carry them.
type sessionPresenter struct {
	sessionID string
	hub       *Hub
	loc       *time.Location
	log       *zap.Logger

	mu      sync.Mutex
	pending []string
}

func newSessionPresenter(sessionID string, hub *Hub, loc *time.Location, log *zap.Logger) *sessionPresenter {
	return &sessionPresenter{
		sessionID: sessionID,
		hub:       hub,
		loc:       loc,
		log:       log,
	}
}

func (p *sessionPresenter) Render(view controller.View) {
	if p.hub.Connected(p.sessionID) == 0 {
		return
	}
	var buf bytes.Buffer
	if err := templates.PhotoList(view, p.loc).Render(context.Background(), &buf); err != nil {
		p.log.Error("failed to render photo list", zap.Error(err))
		return
	}
	p.hub.Send(p.sessionID, Message{Type: MsgRender, HTML: buf.String()})
}

func (p *sessionPresenter) Print(photo model.Photo) {
	url := templates.PhotoPath(photo.ID, "print")
	if p.hub.Connected(p.sessionID) > 0 {
		p.hub.Send(p.sessionID, Message{Type: MsgPrint, URL: url})
		return
	}
	p.mu.Lock()
	p.pending = append(p.pending, url)
	p.mu.Unlock()
}

// takePending returns and clears the queued print URLs.
func (p *sessionPresenter) takePending() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	urls := p.pending
	p.pending = nil
	return urls
}
