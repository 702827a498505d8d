package controller

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Start launches the refresh timer. Every tick starts a refresh without
// waiting for earlier ones to finish. Calling Start on a running controller
// does nothing. The timer also stops when ctx is cancelled, after which
// Start may launch it again.
func (c *Controller) Start(ctx context.Context) {
	c.pollMu.Lock()
	defer c.pollMu.Unlock()
	if c.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.pollGen++
	c.wg.Add(1)
	go c.poll(ctx, c.pollGen)
}

// Stop cancels the refresh timer and waits for the loop and any refresh it
// started to return. It is safe to call more than once.
func (c *Controller) Stop() {
	c.pollMu.Lock()
	cancel := c.cancel
	c.cancel = nil
	c.pollMu.Unlock()

	if cancel != nil {
		cancel()
	}
	c.wg.Wait()
}

// Polling reports whether the refresh timer is running.
func (c *Controller) Polling() bool {
	c.pollMu.Lock()
	defer c.pollMu.Unlock()
	return c.cancel != nil
}

func (c *Controller) poll(ctx context.Context, gen uint64) {
	defer c.wg.Done()
	defer c.release(gen)
	c.log.Debug("photo polling started", zap.Duration("interval", c.interval))

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			c.log.Debug("photo polling stopped")
			return
		case <-ticker.C:
			c.wg.Add(1)
			go func() {
				defer c.wg.Done()
				_ = c.Refresh(ctx)
			}()
		}
	}
}

// release forgets the cancel func of loop gen unless Stop or a later Start
// already replaced it.
func (c *Controller) release(gen uint64) {
	c.pollMu.Lock()
	defer c.pollMu.Unlock()
	if c.pollGen != gen || c.cancel == nil {
		return
	}
	c.cancel()
	c.cancel = nil
}
