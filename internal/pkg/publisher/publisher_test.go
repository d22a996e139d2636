package publisher

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/anicoll/homedash/internal/pkg/model"
)

type MockPublisher struct {
	WriteFunc func(ctx context.Context, view model.View) error
	views     []model.View
}

func (m *MockPublisher) Write(ctx context.Context, view model.View) error {
	m.views = append(m.views, view)
	if m.WriteFunc != nil {
		return m.WriteFunc(ctx, view)
	}
	return nil
}

func TestRegistry_Register(t *testing.T) {
	r := New()
	require.NoError(t, r.Register("ws", &MockPublisher{}))
	assert.ErrorIs(t, r.Register("ws", &MockPublisher{}), ErrAlreadyRegistered)
}

func TestRegistry_Publish(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	r := New(WithLogger(zap.New(core)))

	failing := &MockPublisher{WriteFunc: func(ctx context.Context, view model.View) error {
		return errors.New("broker gone")
	}}
	healthy := &MockPublisher{}
	require.NoError(t, r.Register("mqtt", failing))
	require.NoError(t, r.Register("ws", healthy))

	view := model.View{Snapshot: model.Snapshot{Devices: model.Devices{{ID: "light_1"}}}}
	r.Publish(context.Background(), view)

	assert.Equal(t, []model.View{view}, healthy.views)
	assert.Len(t, failing.views, 1)
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "mqtt", logs.All()[0].ContextMap()["publisher"])
}
