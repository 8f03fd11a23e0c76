package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"postfeed/app/repositories"
)

const testKey = "merged_posts"

func countingLoader(calls *int32, value []int) Loader[[]int] {
	return func(ctx context.Context) ([]int, error) {
		atomic.AddInt32(calls, 1)
		return value, nil
	}
}

func TestGetOrLoadCachesResult(t *testing.T) {
	c := New[[]int](repositories.NewMemoryStore(), 0, nil)
	ctx := context.Background()
	var calls int32

	v, err := c.GetOrLoad(ctx, testKey, countingLoader(&calls, []int{1, 2}))
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, v)

	v, err = c.GetOrLoad(ctx, testKey, countingLoader(&calls, []int{9}))
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, v)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestGetOrLoadSingleFlight(t *testing.T) {
	c := New[[]int](repositories.NewMemoryStore(), 0, nil)
	release := make(chan struct{})
	started := make(chan struct{}, 1)
	var calls int32

	load := func(ctx context.Context) ([]int, error) {
		atomic.AddInt32(&calls, 1)
		started <- struct{}{}
		<-release
		return []int{7}, nil
	}

	const callers = 20
	var wg sync.WaitGroup
	results := make([][]int, callers)
	errs := make([]error, callers)

	wg.Add(1)
	go func() {
		defer wg.Done()
		results[0], errs[0] = c.GetOrLoad(context.Background(), testKey, load)
	}()
	<-started

	for i := 1; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = c.GetOrLoad(context.Background(), testKey, load)
		}(i)
	}

	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	for i := 0; i < callers; i++ {
		assert.NoError(t, errs[i])
		assert.Equal(t, []int{7}, results[i])
	}
}

func TestGetOrLoadDoesNotCacheErrors(t *testing.T) {
	c := New[[]int](repositories.NewMemoryStore(), 0, nil)
	ctx := context.Background()
	boom := errors.New("remote down")

	_, err := c.GetOrLoad(ctx, testKey, func(ctx context.Context) ([]int, error) {
		return nil, boom
	})
	assert.ErrorIs(t, err, boom)

	var calls int32
	v, err := c.GetOrLoad(ctx, testKey, countingLoader(&calls, []int{3}))
	require.NoError(t, err)
	assert.Equal(t, []int{3}, v)
	assert.Equal(t, int32(1), calls)
}

func TestInvalidateForcesReload(t *testing.T) {
	c := New[[]int](repositories.NewMemoryStore(), 0, nil)
	ctx := context.Background()
	var calls int32

	_, err := c.GetOrLoad(ctx, testKey, countingLoader(&calls, []int{1}))
	require.NoError(t, err)
	require.NoError(t, c.Invalidate(ctx, testKey))

	v, err := c.GetOrLoad(ctx, testKey, countingLoader(&calls, []int{2}))
	require.NoError(t, err)
	assert.Equal(t, []int{2}, v)
	assert.Equal(t, int32(2), calls)
}

func TestInvalidateDuringLoadSkipsStore(t *testing.T) {
	store := repositories.NewMemoryStore()
	c := New[[]int](store, 0, nil)
	ctx := context.Background()
	started := make(chan struct{})
	release := make(chan struct{})

	done := make(chan []int)
	go func() {
		v, _ := c.GetOrLoad(ctx, testKey, func(ctx context.Context) ([]int, error) {
			close(started)
			<-release
			return []int{1}, nil
		})
		done <- v
	}()

	<-started
	require.NoError(t, c.Invalidate(ctx, testKey))
	close(release)
	assert.Equal(t, []int{1}, <-done)

	_, err := store.Get(ctx, testKey)
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}

func TestWaiterContextCancelled(t *testing.T) {
	store := repositories.NewMemoryStore()
	c := New[[]int](store, 0, nil)
	release := make(chan struct{})

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		_, err := c.GetOrLoad(ctx, testKey, func(loadCtx context.Context) ([]int, error) {
			<-release
			assert.NoError(t, loadCtx.Err())
			return []int{5}, nil
		})
		errCh <- err
	}()

	time.Sleep(10 * time.Millisecond)
	cancel()
	assert.ErrorIs(t, <-errCh, context.Canceled)

	close(release)
	assert.Eventually(t, func() bool {
		_, err := store.Get(context.Background(), testKey)
		return err == nil
	}, time.Second, 5*time.Millisecond)
}

func TestUndecodableEntryIsReloaded(t *testing.T) {
	store := repositories.NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, store.Set(ctx, testKey, []byte("{not json"), 0))

	c := New[[]int](store, 0, nil)
	var calls int32
	v, err := c.GetOrLoad(ctx, testKey, countingLoader(&calls, []int{4}))
	require.NoError(t, err)
	assert.Equal(t, []int{4}, v)
	assert.Equal(t, int32(1), calls)
}

func TestBadgerBackedCache(t *testing.T) {
	store, err := repositories.NewBadgerStore("")
	require.NoError(t, err)
	defer store.Close()

	c := New[[]int](store, time.Hour, nil)
	ctx := context.Background()
	var calls int32

	for i := 0; i < 3; i++ {
		v, err := c.GetOrLoad(ctx, testKey, countingLoader(&calls, []int{8}))
		require.NoError(t, err)
		assert.Equal(t, []int{8}, v)
	}
	assert.Equal(t, int32(1), calls)
}
