// Package typeid derives a stable, non-zero uint64 identity token for a
// Go type, analogous to Rust's TypeId but cheaper: reflect.Type values
// are canonical (one *rtype per distinct type for the life of the
// process), so the token is the avalanched identity of that pointer
// rather than a hash of the type's name.
//
// This centralises the one unsafe.Pointer conversion this module needs,
// in the spirit of the teacher's internal/unsafehelpers: every other
// package works with plain uint64 tags and never touches unsafe itself.
//
// ⚠️ This package is internal and must not be imported by user code.
//
// © 2025 linecache authors. MIT License.
package typeid

import (
	"reflect"
	"sync"

	"github.com/cespare/xxhash/v2"

	"github.com/Voskan/linecache/internal/unsafehelpers"
)

var (
	mu    sync.Mutex
	cache = map[reflect.Type]uint64{}
)

// For returns the stable tag for type T, computing and memoizing it on
// first use. The result is never 0; 0 is reserved by the engine to mean
// "empty line".
func For[T any]() uint64 {
	rt := reflect.TypeOf((*T)(nil)).Elem()

	mu.Lock()
	if tag, ok := cache[rt]; ok {
		mu.Unlock()
		return tag
	}
	mu.Unlock()

	tag := avalanche(rt)

	mu.Lock()
	cache[rt] = tag
	mu.Unlock()
	return tag
}

// avalanche mixes the *rtype pointer through xxhash so that nearby
// allocator addresses (common among small, similarly-sized type
// descriptors) spread evenly across a cache's G groups instead of
// clustering in low-order bits.
func avalanche(rt reflect.Type) uint64 {
	ptr := unsafehelpers.InterfaceData(rt)

	var buf [8]byte
	addr := uint64(uintptr(ptr))
	for i := range buf {
		buf[i] = byte(addr >> (8 * i))
	}

	h := xxhash.Sum64(buf[:])
	if h == 0 {
		// Astronomically unlikely, but the sentinel must never leak.
		h = 1
	}
	return h
}
