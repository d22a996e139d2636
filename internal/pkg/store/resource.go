package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"

	"github.com/samber/lo"

	"github.com/anicoll/homedash/internal/pkg/model"
)

// tracked is the kind-independent part of a resource.
type tracked interface {
	begin() uint64
	fail(seq uint64) error
	fetchStatus() model.FetchStatus
}

// resource is one polled collection and the bookkeeping that orders its
// fetches. Every fetch gets a sequence number when issued, and a completion
// only lands if no later-issued fetch has completed before it.
type resource[T any] struct {
	kind     model.ResourceKind
	items    []T
	status   model.FetchStatus
	issued   uint64
	applied  uint64
	inflight int
	fallback func() []T
	remember func([]T)
}

func newResource[T any](kind model.ResourceKind, fallback func() []T) *resource[T] {
	items := fallback()
	if items == nil {
		items = []T{}
	}
	return &resource[T]{
		kind:     kind,
		items:    items,
		fallback: fallback,
	}
}

func (r *resource[T]) begin() uint64 {
	r.issued++
	r.inflight++
	r.status.Loading = true
	return r.issued
}

// complete ends the fetch seq and reports whether its outcome may be applied.
func (r *resource[T]) complete(seq uint64) error {
	if r.inflight > 0 {
		r.inflight--
	}
	r.status.Loading = r.inflight > 0
	if seq <= r.applied {
		return ErrStale
	}
	r.applied = seq
	return nil
}

func (r *resource[T]) apply(seq uint64, items []T, decodeErr error) error {
	if err := r.complete(seq); err != nil {
		return err
	}
	if decodeErr != nil {
		r.status.LastError = lo.ToPtr(fmt.Sprintf("Unexpected %s response from backend, keeping previous %s.", r.kind, r.kind))
		return decodeErr
	}
	r.items = items
	r.status.LastError = nil
	if r.remember != nil {
		r.remember(items)
	}
	return nil
}

func (r *resource[T]) fail(seq uint64) error {
	if err := r.complete(seq); err != nil {
		return err
	}
	items := r.fallback()
	if items == nil {
		items = []T{}
	}
	r.items = items
	r.status.LastError = lo.ToPtr(fmt.Sprintf("Could not reach backend, showing fallback %s.", r.kind))
	return nil
}

func (r *resource[T]) fetchStatus() model.FetchStatus {
	return r.status
}

func (r *resource[T]) snapshot() []T {
	return slices.Clone(r.items)
}

// decode extracts the collection wrapped in the kind's field. Only a payload
// without that field, or with something other than an array in it, is a
// ShapeError. Elements that are not objects are skipped.
func decode[T any](kind model.ResourceKind, payload []byte) ([]T, error) {
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(payload, &envelope); err != nil {
		return nil, &ShapeError{Resource: kind, Reason: "payload is not a JSON object", Err: err}
	}
	raw, ok := envelope[kind.String()]
	if !ok {
		return nil, &ShapeError{Resource: kind, Reason: fmt.Sprintf("missing %q field", kind)}
	}
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '[' {
		return nil, &ShapeError{Resource: kind, Reason: fmt.Sprintf("%q is not an array", kind)}
	}
	var elems []json.RawMessage
	if err := json.Unmarshal(raw, &elems); err != nil {
		return nil, &ShapeError{Resource: kind, Reason: fmt.Sprintf("%q is not an array", kind), Err: err}
	}
	items := make([]T, 0, len(elems))
	for _, elem := range elems {
		var item T
		if err := json.Unmarshal(elem, &item); err != nil {
			// only objects describe a device or an event.
			continue
		}
		items = append(items, item)
	}
	return items, nil
}
