package cache

// group.go implements CacheGroup from spec §4.2-§4.4: an array of L
// lines plus a mutex that serialises slot decisions, LRU updates, and
// installation. Groups are independent of one another — a Cache with G
// groups offers G-way parallelism.
//
// Go's sync.Mutex, unlike Rust's std::sync::Mutex, does not poison
// itself when a panic unwinds through a held lock. group reproduces
// that behaviour explicitly: a panic while mu is held flips poisoned
// before re-panicking, so every later caller on this group observes
// ErrPoisoned instead of silently running against undefined state.
//
// © 2025 linecache authors. MIT License.

import (
	"context"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
)

type slotKind int

const (
	slotHit slotKind = iota
	slotEmpty
	slotEvict
)

type decision struct {
	kind slotKind
	idx  int
}

type group struct {
	mu       sync.Mutex
	poisoned atomic.Bool
	lines    []line

	index   int // this group's position in Cache.groups, for metric labels
	metrics metricsSink
	logger  *zap.Logger
}

func newGroup(lines int, index int, metrics metricsSink, logger *zap.Logger) *group {
	return &group{
		lines:   make([]line, lines),
		index:   index,
		metrics: metrics,
		logger:  logger,
	}
}

// slot implements spec §4.2: a single linear scan. Hit and Empty
// short-circuit as soon as they're found; Evict requires completing
// the scan because a hit or empty line may still appear at a higher
// index. Ported from the slug-tuple scan in the original Rust
// CacheGroup::load.
func (g *group) slot(tag uint64) decision {
	evictIdx := -1
	last := len(g.lines) - 1
	for i := range g.lines {
		ln := &g.lines[i]
		if ln.tag == tag {
			return decision{slotHit, i}
		}
		if ln.empty() {
			return decision{slotEmpty, i}
		}
		if evictIdx == -1 && int(ln.lru) == last {
			evictIdx = i
		}
	}
	if evictIdx == -1 {
		// Invariant I2 guarantees exactly one line carries lru==L-1
		// whenever none are empty. Reaching here means the invariant
		// was violated elsewhere — an unrecoverable programmer error.
		panic("linecache: no eviction candidate found; group invariant violated")
	}
	return decision{slotEvict, evictIdx}
}

// touchHit applies the Hit LRU rule: every line strictly more recent
// than the hit line ages by one rank, then the hit line becomes rank 0.
func (g *group) touchHit(i int) {
	r := g.lines[i].lru
	for j := range g.lines {
		if g.lines[j].lru < r {
			g.lines[j].lru++
		}
	}
	g.lines[i].lru = 0
}

// touchInstall applies the Empty/Evict LRU rule: every line ages by
// one rank (including other empty lines), then the installed line
// becomes rank 0.
func (g *group) touchInstall(i int) {
	for j := range g.lines {
		g.lines[j].lru++
	}
	g.lines[i].lru = 0
}

// load implements spec §4.3 under the caller's held mutex: resolve the
// slot, update LRU, and on Empty/Evict install a fresh value via
// LoadOrDefault. Returns the index the type now resides at.
func load[T Cacheable[T]](ctx context.Context, g *group, tag uint64) (int, slotKind, error) {
	d := g.slot(tag)
	switch d.kind {
	case slotHit:
		g.touchHit(d.idx)
		return d.idx, slotHit, nil

	case slotEmpty:
		g.touchInstall(d.idx)
		ln := &g.lines[d.idx]
		ln.value = newTypedBox[T](LoadOrDefault[T](ctx))
		ln.tag = tag
		return d.idx, slotEmpty, nil

	case slotEvict:
		g.touchInstall(d.idx)
		ln := &g.lines[d.idx]
		if ln.flag.InUse() {
			return 0, slotEvict, ErrBusy
		}
		if ln.flag.IsDirty() {
			if err := ln.value.store(ctx); err != nil {
				return 0, slotEvict, IoError(err)
			}
			ln.flag.SetClean()
		}
		ln.value = newTypedBox[T](LoadOrDefault[T](ctx))
		ln.tag = tag
		return d.idx, slotEvict, nil

	default:
		panic("linecache: unreachable slot decision")
	}
}

// withLock runs fn while holding g.mu, implementing Go-side mutex
// poisoning: a panic during fn marks the group poisoned before
// propagating, matching Rust's unwind-through-lock-guard semantics.
func (g *group) withLock(fn func() error) (err error) {
	if g.poisoned.Load() {
		return ErrPoisoned
	}
	g.mu.Lock()
	defer func() {
		if r := recover(); r != nil {
			g.poisoned.Store(true)
			g.metrics.incPoisoned(g.index)
			if g.logger != nil {
				g.logger.Error("linecache: group poisoned by panic under lock",
					zap.Int("group", g.index))
			}
			g.mu.Unlock()
			panic(r)
		}
		g.mu.Unlock()
	}()
	err = fn()
	return err
}

// retrieve implements Cache.Get's control flow (spec §2): lock,
// install, attempt read admission, unlock, return.
func retrieve[T Cacheable[T]](ctx context.Context, g *group, tag uint64) (*CacheRef[T], error) {
	var idx int
	var admitted bool
	err := g.withLock(func() error {
		i, kind, err := load[T](ctx, g, tag)
		if err != nil {
			recordLoadMetrics(g, kind, err)
			return err
		}
		recordLoadMetrics(g, kind, nil)
		idx = i
		admitted = g.lines[i].flag.TryRead()
		return nil
	})
	if err != nil {
		return nil, err
	}
	if !admitted {
		g.metrics.incLocked(g.index)
		return nil, ErrLocked
	}
	return newCacheRef[T](&g.lines[idx]), nil
}

// retrieveMut is retrieve's exclusive-admission counterpart (spec
// §4.4's retrieve_mut).
func retrieveMut[T Cacheable[T]](ctx context.Context, g *group, tag uint64) (*CacheMut[T], error) {
	var idx int
	var admitted bool
	err := g.withLock(func() error {
		i, kind, err := load[T](ctx, g, tag)
		if err != nil {
			recordLoadMetrics(g, kind, err)
			return err
		}
		recordLoadMetrics(g, kind, nil)
		idx = i
		admitted = g.lines[i].flag.TryWrite()
		return nil
	})
	if err != nil {
		return nil, err
	}
	if !admitted {
		g.metrics.incLocked(g.index)
		return nil, ErrLocked
	}
	return newCacheMut[T](&g.lines[idx]), nil
}

func recordLoadMetrics(g *group, kind slotKind, err error) {
	switch {
	case err != nil:
		if ce, ok := err.(*CacheError); ok && ce.Kind == KindBusy {
			g.metrics.incBusy(g.index)
		}
	case kind == slotHit:
		g.metrics.incHit(g.index)
	default:
		g.metrics.incMiss(g.index)
		if kind == slotEvict {
			g.metrics.incEvict(g.index)
		}
	}
}

// occupied counts non-empty lines, for Cache.Stats and the occupied
// gauge. Caller must hold g.mu (or tolerate a racy read for
// diagnostics-only use).
func (g *group) occupied() int {
	n := 0
	for i := range g.lines {
		if !g.lines[i].empty() {
			n++
		}
	}
	return n
}

// close flushes every dirty line (best-effort) and clears the group.
// Errors are logged, never returned: there is no caller left to
// propagate them to, matching spec's "errors during this final flush
// are swallowed".
func (g *group) close() {
	g.mu.Lock()
	defer g.mu.Unlock()
	for i := range g.lines {
		ln := &g.lines[i]
		if ln.value != nil && ln.flag.IsDirty() {
			if err := ln.value.store(context.Background()); err != nil && g.logger != nil {
				g.logger.Warn("linecache: writeback failed during close",
					zap.Int("group", g.index),
					zap.Uint64("tag", ln.tag),
					zap.Error(err))
			}
		}
		ln.value = nil
		ln.tag = 0
	}
}
