package cache

// line.go implements CacheLine from spec §3/§4.1: one slot holding at
// most one boxed value, its type tag, its LRU rank, and the admission
// Flag that governs concurrent access to it.
//
// A line is not generic — it cannot be, since a single CacheGroup must
// hold lines for many distinct T simultaneously. Generic access is
// recovered at the call site via unbox[T] (box.go).
//
// © 2025 linecache authors. MIT License.

import "github.com/Voskan/linecache/internal/admission"

// line is one cache slot. tag == 0 iff value == nil (invariant I1).
// lru is only ever mutated under the owning group's mutex; flag is the
// lock-free admission word that outlives the mutex.
type line struct {
	tag   uint64
	lru   uint32
	value box
	flag  admission.Flag
}

// empty reports whether the line currently holds no value.
func (l *line) empty() bool { return l.tag == 0 }
