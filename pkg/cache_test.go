package cache_test

// cache_test.go exercises the public Cache API end to end: dispatch,
// writeback-on-evict, dirty tracking, and the Busy/Locked concurrency
// scenarios from spec §8, using only exported surface.

import (
	"context"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/Voskan/linecache/pkg"
)

// --- scenario 1 fixtures: U evicts to install I, triggering writeback ---

type recorder struct {
	mu    sync.Mutex
	stores []int
}

func (r *recorder) record(n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stores = append(r.stores, n)
}

var uStores = &recorder{}

type valU struct{ Inner int }

func (valU) Load(context.Context) (valU, error) { return valU{}, nil }
func (v valU) Store(context.Context) error       { uStores.record(v.Inner); return nil }
func (valU) Default() valU                       { return valU{} }

type valI struct{ Inner int }

func (valI) Load(context.Context) (valI, error) { return valI{}, nil }
func (valI) Store(context.Context) error         { return nil }
func (valI) Default() valI                       { return valI{} }

// Scenario 1: Cache<1,1>; get_mut<U>(); u.inner += 1; drop; get<I>().
// Expect U.Store was called with Inner=1 (eviction to install I
// triggers writeback) before I is observed at its default, zero value.
func TestCache_Scenario1_EvictionTriggersWriteback(t *testing.T) {
	ctx := context.Background()
	c, err := cache.New(1, 1)
	require.NoError(t, err)

	mu, err := cache.GetMut[valU](ctx, c)
	require.NoError(t, err)
	v := mu.Value()
	v.Inner++
	require.NoError(t, mu.Close())

	ref, err := cache.Get[valI](ctx, c)
	require.NoError(t, err)
	defer ref.Close()

	uStores.mu.Lock()
	stores := append([]int(nil), uStores.stores...)
	uStores.mu.Unlock()

	require.Len(t, stores, 1)
	assert.Equal(t, 1, stores[0])
	assert.Equal(t, 0, ref.Value().Inner)
}

// --- scenario 6 fixtures: dirty line survives until Close flushes it ---

var sStores = &recorder{}

type valS struct{ Text string }

func (valS) Load(context.Context) (valS, error) { return valS{}, nil }
func (v valS) Store(context.Context) error {
	if v.Text == "hello" {
		sStores.record(1)
	}
	return nil
}
func (valS) Default() valS { return valS{} }

// Scenario 6: Cache<2,2>; get_mut<S>(); *s = "hello"; drop; get<S>().
// Expect the returned value equals "hello" with no intervening store;
// Close (cache destruction) flushes the dirty line.
func TestCache_Scenario6_DirtyLineSurvivesUntilClose(t *testing.T) {
	ctx := context.Background()
	c, err := cache.New(2, 2)
	require.NoError(t, err)

	mu, err := cache.GetMut[valS](ctx, c)
	require.NoError(t, err)
	mu.Value().Text = "hello"
	require.NoError(t, mu.Close())

	ref, err := cache.Get[valS](ctx, c)
	require.NoError(t, err)
	assert.Equal(t, "hello", ref.Value().Text)
	require.NoError(t, ref.Close())

	sStores.mu.Lock()
	storedBeforeClose := len(sStores.stores)
	sStores.mu.Unlock()
	assert.Zero(t, storedBeforeClose, "store must not run before Close")

	c.Close()

	sStores.mu.Lock()
	defer sStores.mu.Unlock()
	require.Len(t, sStores.stores, 1)
}

// --- scenario 4/5 fixtures: plain counters, no store side effects ---

type valBusy struct{ n int }

func (valBusy) Load(context.Context) (valBusy, error) { return valBusy{}, nil }
func (valBusy) Store(context.Context) error            { return nil }
func (valBusy) Default() valBusy                       { return valBusy{} }

// Scenario 4: Cache<1,1>; hold a CacheRef<A>, then call get<B>() (which
// must evict A's line) from another goroutine. Expect Busy while the
// ref is held, success once it is released.
func TestCache_Scenario4_EvictingBusyLineIsRefused(t *testing.T) {
	ctx := context.Background()
	c, err := cache.New(1, 1)
	require.NoError(t, err)

	ref, err := cache.Get[valBusy](ctx, c)
	require.NoError(t, err)

	var other errgroup.Group
	other.Go(func() error {
		_, err := cache.Get[valI](ctx, c)
		return err
	})
	assert.ErrorIs(t, other.Wait(), cache.ErrBusy)

	require.NoError(t, ref.Close())

	ref2, err := cache.Get[valI](ctx, c)
	require.NoError(t, err)
	require.NoError(t, ref2.Close())
}

type valRace struct{ n int }

func (valRace) Load(context.Context) (valRace, error) { return valRace{}, nil }
func (valRace) Store(context.Context) error             { return nil }
func (valRace) Default() valRace                        { return valRace{} }

// Scenario 5: two goroutines both call get_mut<T>() on the same cache.
// Exactly one succeeds; the other observes Locked. The winner holds
// its CacheMut open on a barrier until the loser has attempted its own
// GetMut, so the outcome is guaranteed rather than scheduler-dependent
// (without the barrier, the winner might Close before the loser even
// starts, letting both admissions succeed).
func TestCache_Scenario5_ConcurrentGetMutContendsOnOneWinner(t *testing.T) {
	ctx := context.Background()
	c, err := cache.New(1, 1)
	require.NoError(t, err)

	// Warm the line first so both goroutines race on Hit, not install.
	warm, err := cache.Get[valRace](ctx, c)
	require.NoError(t, err)
	require.NoError(t, warm.Close())

	holding := make(chan struct{})
	release := make(chan struct{})

	var g errgroup.Group
	g.Go(func() error {
		m, err := cache.GetMut[valRace](ctx, c)
		if err != nil {
			close(holding)
			return err
		}
		close(holding)
		<-release
		return m.Close()
	})

	var loserErr error
	g.Go(func() error {
		<-holding
		_, loserErr = cache.GetMut[valRace](ctx, c)
		close(release)
		return nil
	})

	require.NoError(t, g.Wait())
	assert.ErrorIs(t, loserErr, cache.ErrLocked)

	// Once the winner has released, the line admits a fresh writer.
	retry, err := cache.GetMut[valRace](ctx, c)
	require.NoError(t, err)
	require.NoError(t, retry.Close())
}

func TestCache_New_RejectsInvalidDimensions(t *testing.T) {
	_, err := cache.New(0, 1)
	assert.Error(t, err)

	_, err = cache.New(1, 0)
	assert.Error(t, err)
}

func TestCache_Stats_ReportsOccupancyPerGroup(t *testing.T) {
	ctx := context.Background()
	c, err := cache.New(2, 2)
	require.NoError(t, err)

	ref, err := cache.Get[valBusy](ctx, c)
	require.NoError(t, err)
	require.NoError(t, ref.Close())

	stats := c.Stats()
	require.Len(t, stats, 2)

	total := 0
	for _, s := range stats {
		total += s.Occupied
		assert.Equal(t, 2, s.Lines)
	}
	assert.Equal(t, 1, total)
}

// Stats must be a pure snapshot: calling it twice with no intervening
// Get/GetMut returns identical data.
func TestCache_Stats_IsStableAcrossCalls(t *testing.T) {
	ctx := context.Background()
	c, err := cache.New(3, 3)
	require.NoError(t, err)

	ref, err := cache.Get[valRace](ctx, c)
	require.NoError(t, err)
	require.NoError(t, ref.Close())

	first := c.Stats()
	second := c.Stats()

	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("Stats() not stable across calls (-first +second):\n%s", diff)
	}
}
