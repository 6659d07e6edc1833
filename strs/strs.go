// Package strs implements String: an immutable UTF-8 sequence with
// small-buffer optimization at 24 bytes and shared, reference-counted
// ownership above that. The small-buffer case needs no refcounting at
// all — it is an ordinary Go value, and copying it already has the cheap,
// safe-to-alias semantics the original small-buffer union exists to
// provide. Only the above-24-byte case needs explicit bookkeeping, via
// an atomic reference count on the shared backing slice.
package strs

import (
	"sync/atomic"
	"unicode/utf8"
)

const smallCap = 24

// shared is the heap-allocated backing store for a dynamic (>24 byte)
// String. Clone increments refs; Release decrements and frees at zero.
type shared struct {
	bytes []byte
	refs  atomic.Int32
	// onFree, when set, is invoked exactly once when refs reaches zero.
	// Production code leaves it nil; tests use it to observe the
	// at-most-once free invariant without relying on GC timing.
	onFree func()
}

// String is an immutable, value-comparable, hashable byte sequence.
type String struct {
	small    [smallCap]byte
	smallLen uint8
	dyn      *shared
	length   int // UTF-8 rune count, fixed at construction
}

// New constructs a String from b, copying its bytes.
func New(b []byte) String {
	s := String{length: utf8.RuneCount(b)}
	if len(b) <= smallCap {
		copy(s.small[:], b)
		s.smallLen = uint8(len(b))
		return s
	}
	cp := make([]byte, len(b))
	copy(cp, b)
	sh := &shared{bytes: cp}
	sh.refs.Store(1)
	s.dyn = sh
	return s
}

// FromString constructs a String from a Go string.
func FromString(s string) String { return New([]byte(s)) }

// Bytes returns the String's bytes. The caller must not mutate the
// returned slice.
func (s String) Bytes() []byte {
	if s.dyn != nil {
		return s.dyn.bytes
	}
	return s.small[:s.smallLen]
}

// String returns the Go string view of s.
func (s String) String() string { return string(s.Bytes()) }

// Len returns the character (rune) count.
func (s String) Len() int { return s.length }

// Size returns the byte count.
func (s String) Size() int {
	if s.dyn != nil {
		return len(s.dyn.bytes)
	}
	return int(s.smallLen)
}

// Clone returns a copy of s. For a dynamic String this increments the
// shared refcount; the small-buffer case is an ordinary value copy.
func (s String) Clone() String {
	if s.dyn != nil {
		s.dyn.refs.Add(1)
	}
	return s
}

// Release decrements the shared refcount, freeing the backing slice
// exactly when it reaches zero. It is a no-op for small-buffer Strings.
func (s String) Release() {
	if s.dyn == nil {
		return
	}
	if s.dyn.refs.Add(-1) == 0 {
		s.dyn.bytes = nil
		if s.dyn.onFree != nil {
			s.dyn.onFree()
		}
	}
}

// Equal reports whether s and t hold identical bytes.
func (s String) Equal(t String) bool {
	a, b := s.Bytes(), t.Bytes()
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Hash computes a djb2-style hash over s's bytes.
func (s String) Hash() uint64 {
	var h uint64 = 5381
	for _, b := range s.Bytes() {
		h = ((h << 5) + h) + uint64(b)
	}
	return h
}
