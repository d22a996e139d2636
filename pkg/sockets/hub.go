package sockets

import (
	"context"
	"encoding/json"
	"sync"
)

// Hub broadcasts JSON encoded values of T to every connection it holds.
// New connections receive the latest value straight away.
type Hub[T any] struct {
	// sendMu orders the latest-value send of Add against broadcasts so a
	// new connection never ends on an older value than the others.
	sendMu sync.Mutex
	mu     sync.Mutex
	conns  map[Connection]struct{}
	last   []byte
}

func NewHub[T any]() *Hub[T] {
	return &Hub[T]{conns: make(map[Connection]struct{})}
}

func (h *Hub[T]) Add(c Connection) {
	h.sendMu.Lock()
	defer h.sendMu.Unlock()

	h.mu.Lock()
	h.conns[c] = struct{}{}
	last := h.last
	h.mu.Unlock()

	go func() {
		<-c.Done()
		h.remove(c)
	}()
	if last != nil {
		_ = c.Send(Msg{Body: last})
	}
}

func (h *Hub[T]) remove(c Connection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.conns, c)
}

// Write broadcasts v. Connections that fail the write are closed and dropped.
func (h *Hub[T]) Write(_ context.Context, v T) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	h.sendMu.Lock()
	defer h.sendMu.Unlock()

	h.mu.Lock()
	h.last = data
	conns := make([]Connection, 0, len(h.conns))
	for c := range h.conns {
		conns = append(conns, c)
	}
	h.mu.Unlock()

	for _, c := range conns {
		if err := c.Send(Msg{Body: data}); err != nil {
			_ = c.Close()
			h.remove(c)
		}
	}
	return nil
}

func (h *Hub[T]) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.conns)
}

// Close closes every connection.
func (h *Hub[T]) Close() error {
	h.mu.Lock()
	conns := h.conns
	h.conns = make(map[Connection]struct{})
	h.mu.Unlock()
	for c := range conns {
		_ = c.Close()
	}
	return nil
}
