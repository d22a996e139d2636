package contxt

import (
	"context"
	"time"
)

// Detached returns a context that carries parent's values but is not
// cancelled with it, bounded by timeout. Work started on it survives a
// shutdown of parent and still ends once the timeout elapses.
func Detached(parent context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(parent), timeout)
}
