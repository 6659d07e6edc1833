// Package img implements Image: an owning (allocator, dimensions,
// pixels) tuple of tightly-packed, row-major, top-to-bottom RGBA8 pixel
// data. The bitmap decoder itself is out of scope (spec.md §1): img
// declares only the Decoder function type, and nothing in this module
// supplies or calls one.
package img

import (
	"errors"

	"ona/alloc"
)

// Error is the ImageError taxonomy from the specification.
type Error int

const (
	// None means no error occurred.
	None Error = iota
	// UnsupportedFormat means the requested pixel layout cannot be
	// represented.
	UnsupportedFormat
	// OutOfMemory means the allocator could not satisfy the request.
	OutOfMemory
)

func (e Error) Error() string {
	switch e {
	case None:
		return "image: no error"
	case UnsupportedFormat:
		return "image: unsupported format"
	case OutOfMemory:
		return "image: out of memory"
	default:
		return "image: unknown error"
	}
}

// LoadError is the ImageLoadError taxonomy from the specification.
type LoadError int

const (
	// LoadNone means no error occurred.
	LoadNone LoadError = iota
	// LoadFileError means the underlying file could not be read.
	LoadFileError
	// LoadUnsupportedFormat means the decoded format is not supported.
	LoadUnsupportedFormat
	// LoadOutOfMemory means the allocator could not satisfy the request.
	LoadOutOfMemory
)

func (e LoadError) Error() string {
	switch e {
	case LoadNone:
		return "image: no error"
	case LoadFileError:
		return "image: file error"
	case LoadUnsupportedFormat:
		return "image: unsupported format"
	case LoadOutOfMemory:
		return "image: out of memory"
	default:
		return "image: unknown error"
	}
}

// Image is an owning RGBA8, row-major, top-to-bottom pixel buffer.
type Image struct {
	Allocator alloc.Allocator
	Width     int
	Height    int
	Pixels    []byte // len == Width*Height*4
}

var errInvalidDim = errors.New("image: width and height must be positive")

// NewSolid creates a width x height image filled with color, allocated
// from a.
func NewSolid(a alloc.Allocator, width, height int, color [4]byte) (*Image, error) {
	if width <= 0 || height <= 0 {
		return nil, errInvalidDim
	}
	pixels := a.Allocate(width * height * 4)
	for i := 0; i < len(pixels); i += 4 {
		copy(pixels[i:i+4], color[:])
	}
	return &Image{Allocator: a, Width: width, Height: height, Pixels: pixels}, nil
}

// NewFromBuffer creates a width x height image by copying src, which
// must contain exactly width*height*4 bytes of tightly-packed RGBA8
// pixel data.
func NewFromBuffer(a alloc.Allocator, width, height int, src []byte) (*Image, error) {
	if width <= 0 || height <= 0 {
		return nil, errInvalidDim
	}
	if len(src) != width*height*4 {
		return nil, UnsupportedFormat
	}
	pixels := a.Allocate(len(src))
	copy(pixels, src)
	return &Image{Allocator: a, Width: width, Height: height, Pixels: pixels}, nil
}

// Free returns the pixel memory to the Image's originating allocator.
// Calling Free on a zero Image is a no-op.
func (im *Image) Free() {
	if im == nil || im.Allocator == nil {
		return
	}
	im.Allocator.Free(im.Pixels)
	im.Pixels = nil
}

// Decoder decodes an encoded image (e.g. BMP) into pixel data. The core
// never implements a concrete Decoder, and the host's wiring does not
// supply one.
type Decoder func(a alloc.Allocator, encoded []byte) (*Image, error)
