package publisher

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/anicoll/homedash/internal/pkg/model"
)

var ErrAlreadyRegistered = errors.New("publisher already registered")

type publisher interface {
	// Write delivers the current view to the adapter.
	Write(ctx context.Context, view model.View) error
}

// Registry fans views out to every registered adapter.
type Registry struct {
	mu         sync.RWMutex
	publishers map[string]publisher
	logger     *zap.Logger
}

type Option func(*Registry)

func WithLogger(l *zap.Logger) Option {
	return func(r *Registry) {
		r.logger = l
	}
}

func New(opts ...Option) *Registry {
	r := &Registry{
		publishers: make(map[string]publisher),
		logger:     zap.L(),
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

func (r *Registry) Register(name string, p publisher) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.publishers[name]; ok {
		return ErrAlreadyRegistered
	}
	r.publishers[name] = p
	return nil
}

// Publish writes view to every adapter. A failing adapter is logged and
// does not hold back the others.
func (r *Registry) Publish(ctx context.Context, view model.View) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for name, p := range r.publishers {
		if err := p.Write(ctx, view); err != nil {
			r.logger.Error("failed to publish view", zap.Error(err), zap.String("publisher", name))
			continue
		}
		r.logger.Debug("published view", zap.Int("devices", len(view.Devices)), zap.String("publisher", name))
	}
}
