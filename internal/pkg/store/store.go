package store

import (
	"fmt"
	"sync"

	"github.com/anicoll/homedash/internal/pkg/fallback"
	"github.com/anicoll/homedash/internal/pkg/model"
)

// recorder is implemented by fallback policies that want to see every
// successfully applied collection.
type recorder interface {
	RememberDevices(model.Devices)
	RememberEvents(model.Events)
}

type Option func(*Store)

// WithOnChange registers fn to run after every mutation, outside the lock.
func WithOnChange(fn func()) Option {
	return func(s *Store) {
		s.onChange = fn
	}
}

// Store is the single source of truth the presentation layer reads.
type Store struct {
	mu       sync.RWMutex
	devices  *resource[model.Device]
	events   *resource[model.Event]
	closed   bool
	onChange func()
}

// New seeds both collections from policy.
func New(policy fallback.Policy, opts ...Option) *Store {
	s := &Store{
		devices: newResource(model.ResourceDevices, func() []model.Device { return policy.Devices() }),
		events:  newResource(model.ResourceEvents, func() []model.Event { return policy.Events() }),
	}
	if rec, ok := policy.(recorder); ok {
		s.devices.remember = func(d []model.Device) { rec.RememberDevices(d) }
		s.events.remember = func(e []model.Event) { rec.RememberEvents(e) }
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *Store) resource(kind model.ResourceKind) (tracked, error) {
	switch kind {
	case model.ResourceDevices:
		return s.devices, nil
	case model.ResourceEvents:
		return s.events, nil
	}
	return nil, fmt.Errorf("unknown resource kind %q", kind)
}

// Begin issues the sequence number for a new fetch of kind and marks it loading.
func (s *Store) Begin(kind model.ResourceKind) (uint64, error) {
	var seq uint64
	err := s.mutate(func() error {
		r, err := s.resource(kind)
		if err != nil {
			return err
		}
		seq = r.begin()
		return nil
	})
	return seq, err
}

// ApplyDevices replaces the device collection with the one in payload.
// A payload of the wrong shape leaves the collection untouched.
func (s *Store) ApplyDevices(seq uint64, payload []byte) error {
	items, decodeErr := decode[model.Device](model.ResourceDevices, payload)
	return s.mutate(func() error {
		return s.devices.apply(seq, items, decodeErr)
	})
}

// ApplyEvents replaces the event collection with the one in payload.
func (s *Store) ApplyEvents(seq uint64, payload []byte) error {
	items, decodeErr := decode[model.Event](model.ResourceEvents, payload)
	return s.mutate(func() error {
		return s.events.apply(seq, items, decodeErr)
	})
}

func (s *Store) Apply(kind model.ResourceKind, seq uint64, payload []byte) error {
	switch kind {
	case model.ResourceDevices:
		return s.ApplyDevices(seq, payload)
	case model.ResourceEvents:
		return s.ApplyEvents(seq, payload)
	}
	return fmt.Errorf("unknown resource kind %q", kind)
}

// Fail records that fetch seq of kind could not reach the backend and
// substitutes the fallback collection.
func (s *Store) Fail(kind model.ResourceKind, seq uint64) error {
	return s.mutate(func() error {
		r, err := s.resource(kind)
		if err != nil {
			return err
		}
		return r.fail(seq)
	})
}

// Close makes every later mutation a no-op returning ErrClosed.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
}

func (s *Store) mutate(fn func() error) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	err := fn()
	s.mu.Unlock()

	if s.onChange != nil {
		s.onChange()
	}
	return err
}

func (s *Store) Snapshot() model.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return model.Snapshot{
		Devices: s.devices.snapshot(),
		Events:  s.events.snapshot(),
		Status: model.Status{
			Devices: s.devices.fetchStatus(),
			Events:  s.events.fetchStatus(),
		},
	}
}

func (s *Store) Devices() model.Devices {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.devices.snapshot()
}

func (s *Store) Events() model.Events {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.events.snapshot()
}

func (s *Store) Device(id string) (model.Device, bool) {
	return s.Devices().Find(id)
}

func (s *Store) Status(kind model.ResourceKind) model.FetchStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, err := s.resource(kind)
	if err != nil {
		return model.FetchStatus{}
	}
	return r.fetchStatus()
}
