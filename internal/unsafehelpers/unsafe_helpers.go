// Package unsafehelpers centralises **all** unavoidable usage of the
// `unsafe` standard‑library package so that the rest of linecache stays clean
// and easier to audit.  Every helper is documented with clear pre‑/post‑
// conditions.
//
// ⚠️  **DISCLAIMER**   These helpers deliberately break the Go memory‑safety
// model for the sake of zero‑allocation conversions.  Use ONLY inside this
// repository; they are not part of the public API and may change without
// notice.  Misuse will lead to subtle data‑races or garbage‑collector
// corruption.
//
// All functions are `go:linkname`‑free, cgo‑free and pure Go.
//
// This module carries only the one helper internal/typeid needs
// (recovering a type's canonical descriptor pointer for a stable
// identity token). The teacher's byte/string and alignment helpers
// served a key-hashing and arena-allocation design this engine doesn't
// have — there is no K type here to hash, and no arena to align into —
// so they were dropped rather than kept unexercised.
//
// © 2025 linecache authors. MIT License.

package unsafehelpers

import "unsafe"

type ifaceHeader struct {
	typ  unsafe.Pointer
	data unsafe.Pointer
}

// InterfaceData returns the data word of the non-empty interface value
// i — the second word of its two-word representation. For interface
// values whose underlying concrete type is itself pointer-shaped
// (which includes reflect.Type's internal *rtype), this recovers that
// pointer directly, with no allocation.
func InterfaceData(i any) unsafe.Pointer {
	return (*ifaceHeader)(unsafe.Pointer(&i)).data
}
