package store

import (
	"context"
	"errors"
	"fmt"

	"photobooth-admin/internal/model"
)

// Operation names carried by StoreError.
const (
	OpList        = "list"
	OpMarkPrinted = "mark printed"
	OpDelete      = "delete"
)

// ErrNotConfigured is the cause of a StoreError raised before any request is
// made because the connection parameters are missing or unusable.
var ErrNotConfigured = errors.New("store connection is not configured")

// Store defines the operations the admin page needs from the photo table.
type Store interface {
	// List returns every photo ordered by creation time, newest first.
	List(ctx context.Context) ([]model.Photo, error)
	// MarkPrinted sets printed=true on the photo with the given id.
	MarkPrinted(ctx context.Context, id string) error
	// Delete removes the photo with the given id.
	Delete(ctx context.Context, id string) error
}

// StoreError is the single error kind for every store failure: network,
// auth, not-found and conflict are not told apart.
type StoreError struct {
	Op  string
	ID  string
	Err error
}

func (e *StoreError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("store %s %s: %v", e.Op, e.ID, e.Err)
	}
	return fmt.Sprintf("store %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// IsStoreError reports whether err wraps a *StoreError.
func IsStoreError(err error) bool {
	var se *StoreError
	return errors.As(err, &se)
}

func wrap(op, id string, err error) error {
	if err == nil {
		return nil
	}
	if IsStoreError(err) {
		return err
	}
	return &StoreError{Op: op, ID: id, Err: err}
}
