package controller

import (
	"context"
	"fmt"

	"photobooth-admin/internal/model"
)

// Action is a user intent emitted by a presentation layer.
type Action interface {
	action()
}

// PrintRequested asks for a photo to be printed and flagged as printed.
type PrintRequested struct {
	ID string
}

// DeleteRequested asks for a photo to be deleted. Confirmer is consulted
// before anything is sent to the store.
type DeleteRequested struct {
	ID        string
	Confirmer Confirmer
}

// FilterSelected switches the active filter.
type FilterSelected struct {
	Filter model.Filter
}

// RefreshRequested re-fetches the working set.
type RefreshRequested struct{}

func (PrintRequested) action()   {}
func (DeleteRequested) action()  {}
func (FilterSelected) action()   {}
func (RefreshRequested) action() {}

// Handle dispatches an action to the matching operation.
func (c *Controller) Handle(ctx context.Context, a Action) error {
	switch a := a.(type) {
	case PrintRequested:
		return c.MarkPrinted(ctx, a.ID)
	case DeleteRequested:
		return c.DeletePhoto(ctx, a.ID, a.Confirmer)
	case FilterSelected:
		c.SetFilter(a.Filter)
		return nil
	case RefreshRequested:
		return c.Refresh(ctx)
	default:
		return fmt.Errorf("unsupported action %T", a)
	}
}
