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
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.t
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.t = f.t.Add(d)
}

type countingObserver struct {
	hits, misses int
}

func (o *countingObserver) CacheLookup(hit bool) {
	if hit {
		o.hits++
	} else {
		o.misses++
	}
}

func newTestCache(size int, ttl time.Duration) (*LRUCache[Image], *fakeClock) {
	clock := &fakeClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	c := NewLRUCache[Image](size, ttl)
	c.now = clock.Now
	return c, clock
}

func TestLRUCache_EvictsLeastRecentlyUsed(t *testing.T) {
	c, _ := newTestCache(2, time.Minute)

	c.Set("trend", Image{Data: []byte("a")})
	c.Set("growth", Image{Data: []byte("b")})
	_, ok := c.Get("trend")
	require.True(t, ok)

	c.Set("composition", Image{Data: []byte("c")})

	_, ok = c.Get("growth")
	assert.False(t, ok, "growth was least recently used")
	_, ok = c.Get("trend")
	assert.True(t, ok)
	assert.Equal(t, 2, c.Size())
}

func TestLRUCache_Expiry(t *testing.T) {
	c, clock := newTestCache(4, time.Minute)

	c.Set("trend", Image{Data: []byte("a")})
	c.Set("pie", Image{Data: []byte("b")})
	clock.Advance(30 * time.Second)
	c.Set("growth", Image{Data: []byte("c")})
	clock.Advance(45 * time.Second)

	_, ok := c.Get("trend")
	assert.False(t, ok)
	assert.Equal(t, 1, c.CleanExpired(), "pie expired, trend already dropped by Get")
	assert.Equal(t, 1, c.Size())
}

func TestLRUCache_ZeroSizeStoresNothing(t *testing.T) {
	c, _ := newTestCache(0, time.Minute)
	c.Set("trend", Image{Data: []byte("a")})
	assert.Equal(t, 0, c.Size())
}

func TestLRUCache_GetOrCreate(t *testing.T) {
	c, _ := newTestCache(4, time.Minute)
	obs := &countingObserver{}
	c.Observe(obs)

	calls := 0
	create := func() (Image, error) {
		calls++
		return Image{Data: []byte("png"), ContentType: "image/png"}, nil
	}

	img, hit, err := c.GetOrCreate("trend", create)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, "image/png", img.ContentType)

	_, hit, err = c.GetOrCreate("trend", create)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, 1, calls)
	assert.Equal(t, 1, obs.hits)
	assert.Equal(t, 1, obs.misses)

	boom := errors.New("boom")
	_, _, err = c.GetOrCreate("growth", func() (Image, error) { return Image{}, boom })
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, c.Size())
}

func TestLRUCache_GetOrCreateSharesConcurrentMisses(t *testing.T) {
	c, _ := newTestCache(4, time.Minute)

	var calls atomic.Int32
	release := make(chan struct{})
	create := func() (Image, error) {
		calls.Add(1)
		<-release
		return Image{Data: []byte("png")}, nil
	}

	const workers = 8
	var started, done sync.WaitGroup
	started.Add(workers)
	done.Add(workers)
	results := make([]Image, workers)
	for i := 0; i < workers; i++ {
		go func(i int) {
			defer done.Done()
			started.Done()
			img, _, err := c.GetOrCreate("trend", create)
			assert.NoError(t, err)
			results[i] = img
		}(i)
	}
	started.Wait()
	time.Sleep(20 * time.Millisecond)
	close(release)
	done.Wait()

	assert.Equal(t, int32(1), calls.Load())
	for _, img := range results {
		assert.Equal(t, []byte("png"), img.Data)
	}
}

func TestImageKey(t *testing.T) {
	assert.Equal(t, "trend.png@1024x512", ImageKey("trend", "png", 1024, 512))
}

func TestManager_CleanAllAndRun(t *testing.T) {
	c, clock := newTestCache(4, time.Second)
	c.Set("a", Image{})
	c.Set("b", Image{})
	clock.Advance(2 * time.Second)

	m := NewManager(nil)
	m.Register(c)
	assert.Equal(t, 2, m.CleanAll())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- m.Run(ctx, time.Millisecond) }()
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Run did not stop after cancel")
	}
}
