package contxt

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type ctxKey struct{}

func TestDetached(t *testing.T) {
	parent, cancelParent := context.WithCancel(context.WithValue(context.Background(), ctxKey{}, "v"))
	ctx, cancel := Detached(parent, 50*time.Millisecond)
	defer cancel()

	cancelParent()
	assert.NoError(t, ctx.Err(), "detached context must outlive its parent")
	assert.Equal(t, "v", ctx.Value(ctxKey{}))

	select {
	case <-ctx.Done():
		assert.ErrorIs(t, ctx.Err(), context.DeadlineExceeded)
	case <-time.After(time.Second):
		t.Fatal("detached context ignored its timeout")
	}
}
