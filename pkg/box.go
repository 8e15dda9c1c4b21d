package cache

// box.go implements the "abstract cacheable object" from spec §4.6/§9:
// a minimal polymorphic interface that lets a CacheLine hold any
// Cacheable[T] without the line itself being generic over T. This is
// the Go rendering of Rust's Box<dyn Any> + downcast_ref: a small
// interface (box) wraps an owned *T, typedBox[T] implements it, and
// unbox recovers the concrete pointer via a type assertion instead of
// a TypeId-gated downcast.
//
// © 2025 linecache authors. MIT License.

import "context"

// box is the only thing a CacheLine knows about the value it holds: it
// can be asked to persist itself. Nil box means an empty line (tag==0,
// matching invariant I1).
type box interface {
	store(ctx context.Context) error
}

// typedBox is the sole implementation of box. It owns a *T allocated
// once at install time; CacheRef/CacheMut recover that pointer via
// unbox for typed access.
type typedBox[T Cacheable[T]] struct {
	ptr *T
}

func (b typedBox[T]) store(ctx context.Context) error {
	return b.ptr.Store(ctx)
}

// newTypedBox allocates and boxes v.
func newTypedBox[T Cacheable[T]](v T) typedBox[T] {
	p := new(T)
	*p = v
	return typedBox[T]{ptr: p}
}

// unbox recovers the *T stored in b. ok is false only on a type-tag
// collision between distinct types — spec treats that as a fatal
// programmer error, so callers of unbox panic rather than propagate.
func unbox[T Cacheable[T]](b box) (*T, bool) {
	tb, ok := b.(typedBox[T])
	if !ok {
		return nil, false
	}
	return tb.ptr, true
}
