// Package alloc defines the allocator contract that every Image in this
// module is created from and freed back to, per the "Allocator
// ownership" rules in the specification; strs.String and
// channel.Channel do not use an Allocator. Go is garbage
// collected, so the default allocator does not manage real memory pools;
// it exists so that module code written against the Allocator contract
// behaves identically regardless of what a future allocator does.
package alloc

// Allocator is the contract an owning value is created from and freed
// back to. Allocate returns a zeroed byte slice of the requested size;
// Free releases it. Implementations must be safe for concurrent use.
type Allocator interface {
	// Allocate returns a new zeroed buffer of the given size.
	Allocate(size int) []byte

	// Free returns buf to the allocator. Passing a buffer obtained from a
	// different Allocator is undefined behavior.
	Free(buf []byte)

	// Name identifies the allocator, for diagnostics.
	Name() string
}

// defaultAllocator wraps the Go runtime allocator: Allocate is a plain
// make([]byte, size), Free is a no-op left to the garbage collector.
type defaultAllocator struct{}

func (defaultAllocator) Allocate(size int) []byte { return make([]byte, size) }
func (defaultAllocator) Free([]byte)              {}
func (defaultAllocator) Name() string             { return "default" }

var shared Allocator = defaultAllocator{}

// Default returns the process-wide default allocator.
func Default() Allocator { return shared }
