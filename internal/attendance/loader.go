package attendance

import (
	"context"
	"sync"
)

// Loader runs scoped fetches where only the latest one may land. Starting a load
// cancels the one in flight, and a result whose generation is stale is dropped.
type Loader[T any] struct {
	mu      sync.Mutex
	gen     uint64
	cancel  context.CancelFunc
	key     string
	value   T
	err     error
	loading bool
}

// Load fetches for key and applies the result unless a newer Load started meanwhile.
// It reports whether the result was applied.
func (l *Loader[T]) Load(ctx context.Context, key string, fetch func(ctx context.Context) (T, error)) bool {
	l.mu.Lock()
	if l.cancel != nil {
		l.cancel()
	}
	l.gen++
	gen := l.gen
	ctx, cancel := context.WithCancel(ctx)
	l.cancel = cancel
	l.loading = true
	l.key = key
	l.mu.Unlock()

	value, err := fetch(ctx)

	l.mu.Lock()
	defer l.mu.Unlock()
	if gen != l.gen {
		cancel()
		return false
	}
	cancel()
	l.cancel = nil
	l.loading = false
	l.value, l.err = value, err
	return true
}

// Snapshot returns the key of the latest load and its applied result.
func (l *Loader[T]) Snapshot() (key string, value T, err error, loading bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.key, l.value, l.err, l.loading
}

// Reset cancels any load in flight and forgets the last result.
func (l *Loader[T]) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.cancel != nil {
		l.cancel()
		l.cancel = nil
	}
	var zero T
	l.gen++
	l.key, l.value, l.err, l.loading = "", zero, nil, false
}
