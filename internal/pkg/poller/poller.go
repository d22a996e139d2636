package poller

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/anicoll/homedash/internal/pkg/config"
	"github.com/anicoll/homedash/internal/pkg/contxt"
	"github.com/anicoll/homedash/internal/pkg/model"
	"github.com/anicoll/homedash/internal/pkg/store"
)

type gateway interface {
	List(ctx context.Context, kind model.ResourceKind) ([]byte, error)
}

type stateStore interface {
	Begin(kind model.ResourceKind) (uint64, error)
	Apply(kind model.ResourceKind, seq uint64, payload []byte) error
	Fail(kind model.ResourceKind, seq uint64) error
}

type Option func(*Poller)

func WithLogger(l *zap.Logger) Option {
	return func(p *Poller) {
		p.logger = l
	}
}

// Poller refreshes every resource kind on its own interval. Ticks do not
// wait for the previous fetch; the store decides which completion wins.
type Poller struct {
	gw        gateway
	store     stateStore
	intervals map[model.ResourceKind]time.Duration
	timeout   time.Duration
	logger    *zap.Logger

	mu      sync.Mutex
	cron    *cron.Cron
	ctx     context.Context
	stopped atomic.Bool
}

func New(gw gateway, st stateStore, cfg config.PollConfig, opts ...Option) *Poller {
	p := &Poller{
		gw:    gw,
		store: st,
		intervals: map[model.ResourceKind]time.Duration{
			model.ResourceDevices: cfg.DevicesInterval,
			model.ResourceEvents:  cfg.EventsInterval,
		},
		timeout: cfg.FetchTimeout,
		logger:  zap.L(),
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Start fetches every kind once right away and then on its interval.
func (p *Poller) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cron != nil {
		return errors.New("poller already started")
	}

	for _, kind := range model.ResourceKinds {
		if p.intervals[kind] <= 0 {
			return errors.New("poll interval for " + kind.String() + " must be positive")
		}
	}

	logger := cronLogger{logger: p.logger.Sugar()}
	chain := cron.NewChain(cron.Recover(logger))
	c := cron.New(cron.WithLogger(logger))
	p.ctx = ctx
	for _, kind := range model.ResourceKinds {
		job := chain.Then(cron.FuncJob(func() { p.Poll(kind) }))
		c.Schedule(every(p.intervals[kind]), job)
		go job.Run()
	}
	p.cron = c
	c.Start()
	p.logger.Info("polling started",
		zap.Duration("devices_interval", p.intervals[model.ResourceDevices]),
		zap.Duration("events_interval", p.intervals[model.ResourceEvents]),
	)
	return nil
}

// Stop disarms the schedules. Fetches already in flight are left to finish
// and their results are dropped.
func (p *Poller) Stop() {
	p.stopped.Store(true)
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cron == nil {
		return
	}
	p.cron.Stop()
	p.logger.Info("polling stopped")
}

// Run polls until ctx is done.
func (p *Poller) Run(ctx context.Context) error {
	if err := p.Start(ctx); err != nil {
		return err
	}
	<-ctx.Done()
	p.Stop()
	return nil
}

// Poll runs one fetch cycle for kind.
func (p *Poller) Poll(kind model.ResourceKind) {
	if p.stopped.Load() {
		return
	}
	logger := p.logger.With(zap.String("resource", kind.String()))
	seq, err := p.store.Begin(kind)
	if err != nil {
		logger.Debug("fetch not started", zap.Error(err))
		return
	}
	logger = logger.With(zap.Uint64("seq", seq))

	ctx, cancel := contxt.Detached(p.baseContext(), p.timeout)
	defer cancel()
	payload, fetchErr := p.fetch(ctx, kind)

	if p.stopped.Load() {
		logger.Debug("discarding result after shutdown")
		return
	}
	if fetchErr != nil {
		err = p.store.Fail(kind, seq)
	} else {
		err = p.store.Apply(kind, seq, payload)
	}

	var shapeErr *store.ShapeError
	switch {
	case errors.Is(err, store.ErrStale), errors.Is(err, store.ErrClosed):
		logger.Debug("discarding fetch result", zap.Error(err), zap.NamedError("fetch_error", fetchErr))
	case fetchErr != nil:
		logger.Warn("backend unreachable, serving fallback", zap.Error(fetchErr))
	case errors.As(err, &shapeErr):
		logger.Warn("unexpected response shape, keeping previous data", zap.Error(err))
	case err != nil:
		logger.Error("failed to apply fetch result", zap.Error(err))
	default:
		logger.Debug("fetch applied")
	}
}

// fetch turns a panicking gateway into a failed fetch so the sequence
// number it holds is still completed.
func (p *Poller) fetch(ctx context.Context, kind model.ResourceKind) (payload []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("fetching %s panicked: %v", kind, r)
		}
	}()
	return p.gw.List(ctx, kind)
}

func (p *Poller) baseContext() context.Context {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ctx == nil {
		return context.Background()
	}
	return p.ctx
}
