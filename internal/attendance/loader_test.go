package attendance

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoader_staleDropped(t *testing.T) {
	var l Loader[string]
	release := make(chan struct{})
	started := make(chan struct{})

	var wg sync.WaitGroup
	var firstApplied bool
	var firstCtxErr error
	wg.Add(1)
	go func() {
		defer wg.Done()
		firstApplied = l.Load(context.Background(), "2026-10-01", func(ctx context.Context) (string, error) {
			close(started)
			<-release
			firstCtxErr = ctx.Err()
			return "old", nil
		})
	}()
	<-started

	applied := l.Load(context.Background(), "2026-10-02", func(context.Context) (string, error) {
		return "new", nil
	})
	close(release)
	wg.Wait()

	assert.True(t, applied)
	assert.False(t, firstApplied)
	assert.ErrorIs(t, firstCtxErr, context.Canceled)

	key, value, err, loading := l.Snapshot()
	assert.Equal(t, "2026-10-02", key)
	assert.Equal(t, "new", value)
	assert.NoError(t, err)
	assert.False(t, loading)
}

func TestLoader_Reset(t *testing.T) {
	var l Loader[int]
	l.Load(context.Background(), "k", func(context.Context) (int, error) { return 7, nil })
	l.Reset()
	key, value, _, _ := l.Snapshot()
	assert.Empty(t, key)
	assert.Zero(t, value)
}
