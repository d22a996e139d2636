package store

import (
	"errors"
	"fmt"

	"github.com/anicoll/homedash/internal/pkg/model"
)

var (
	// ErrStale is returned when a newer fetch of the same resource already completed.
	ErrStale = errors.New("stale fetch result")
	// ErrClosed is returned for results arriving after Close.
	ErrClosed = errors.New("store closed")
)

// ShapeError reports a payload that does not carry the expected collection.
type ShapeError struct {
	Resource model.ResourceKind
	Reason   string
	Err      error
}

func (e *ShapeError) Error() string {
	msg := fmt.Sprintf("unexpected %s response shape: %s", e.Resource, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ShapeError) Unwrap() error {
	return e.Err
}
