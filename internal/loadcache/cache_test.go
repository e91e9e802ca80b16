package loadcache

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/skyparse/internal/model"
)

func TestGetOrLoad_ComputesOnce(t *testing.T) {
	c := New[string, int]()
	var calls atomic.Int32

	load := func(ctx context.Context, key string) (int, error) {
		calls.Add(1)
		return len(key), nil
	}

	for i := 0; i < 3; i++ {
		v, err := c.GetOrLoad(context.Background(), "abc", load)
		require.NoError(t, err)
		assert.Equal(t, 3, v)
	}
	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, 1, c.Size())
}

func TestGetOrLoad_ConcurrentCallersShareOneComputation(t *testing.T) {
	c := New[string, int]()
	var calls atomic.Int32
	release := make(chan struct{})

	load := func(ctx context.Context, key string) (int, error) {
		calls.Add(1)
		<-release
		return 42, nil
	}

	const callers = 16
	var wg sync.WaitGroup
	results := make([]int, callers)
	errs := make([]error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = c.GetOrLoad(context.Background(), "key", load)
		}(i)
	}

	// Let every caller reach the cache before the computation finishes.
	time.Sleep(10 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
	for i := 0; i < callers; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, 42, results[i])
	}
}

func TestGetOrLoad_TypedErrorSurfacesUnchanged(t *testing.T) {
	c := New[string, int]()
	want := model.NewMissingFile("/repo/lib/defs.hcl", "@main//pkg:BUILD.hcl")

	load := func(ctx context.Context, key string) (int, error) {
		return 0, want
	}

	_, err := c.GetOrLoad(context.Background(), "key", load)
	require.Error(t, err)
	assert.Same(t, want, err)
	assert.Equal(t, model.KindMissingFile, model.KindOf(err))

	// The failure is cached: the second call observes the same error
	// without recomputing.
	_, err = c.GetOrLoad(context.Background(), "key", func(ctx context.Context, key string) (int, error) {
		t.Fatal("load ran again for a cached failure")
		return 0, nil
	})
	assert.Same(t, want, err)
}

func TestGetOrLoad_CancelledComputationIsRetried(t *testing.T) {
	c := New[string, int]()
	var calls atomic.Int32

	ctx, cancel := context.WithCancel(context.Background())
	blockingLoad := func(ctx context.Context, key string) (int, error) {
		calls.Add(1)
		<-ctx.Done()
		return 0, model.NewCancelled(ctx.Err())
	}

	done := make(chan error, 1)
	go func() {
		_, err := c.GetOrLoad(ctx, "key", blockingLoad)
		done <- err
	}()

	time.Sleep(10 * time.Millisecond)
	cancel()
	err := <-done
	require.Error(t, err)
	assert.Equal(t, model.KindCancelled, model.KindOf(err))

	// The cancelled entry must not be served as a cached failure.
	v, err := c.GetOrLoad(context.Background(), "key", func(ctx context.Context, key string) (int, error) {
		calls.Add(1)
		return 7, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 7, v)
	assert.Equal(t, int32(2), calls.Load())
}

func TestGetOrLoad_WaiterObservesOwnCancellation(t *testing.T) {
	c := New[string, int]()
	release := make(chan struct{})
	defer close(release)

	go func() {
		_, _ = c.GetOrLoad(context.Background(), "key", func(ctx context.Context, key string) (int, error) {
			<-release
			return 1, nil
		})
	}()
	time.Sleep(10 * time.Millisecond)

	waiterCtx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.GetOrLoad(waiterCtx, "key", func(ctx context.Context, key string) (int, error) {
		t.Fatal("waiter must not start a second computation")
		return 0, nil
	})
	require.Error(t, err)
	assert.Equal(t, model.KindCancelled, model.KindOf(err))
}
