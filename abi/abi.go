// Package abi defines the vtable a dynamically-loaded module sees: the
// Context a module's process callback is handed every frame, the
// per-frame Events snapshot, and the value types (points, vectors,
// colors, sprites) that cross the module boundary.
//
// It mirrors the generated C ABI surface the original host exposed to
// modules (original_source/api.h: OnaContext's function-pointer table,
// OnaEvents, Sprite, the ImageError/ImageLoadError enums) re-expressed
// with Go func fields in place of C function pointers and Go value
// types in place of the C structs, the same substitution the teacher
// makes at its own module boundary (gviegas-neo3/engine/id.go's typed,
// opaque dataID in place of a raw index).
package abi

import (
	"ona/alloc"
	"ona/graphics"
	"ona/img"
	"ona/linear"
	"ona/strs"
)

// Point2, Vector2, Vector3 and Color are the value types modules
// exchange with the host; they are the same types the host's own
// graphics and img packages use, so no conversion happens at the
// boundary.
type (
	Point2  = linear.Point2
	Vector2 = linear.Vector2
	Vector3 = linear.Vector3
	Color   = linear.Color
)

// Sprite is the per-draw description a module hands to Context's
// RenderSprite: where to draw (Origin, with Z reserved for draw-order
// sorting a module may use but the host does not interpret) and how to
// tint the material's texture.
type Sprite struct {
	Origin Vector3
	Tint   Color
}

// ImageError reports why Context.ImageSolid could not construct an
// image.
type ImageError int

const (
	ImageErrorNone ImageError = iota
	ImageErrorUnsupportedFormat
	ImageErrorOutOfMemory
)

func (e ImageError) Error() string {
	switch e {
	case ImageErrorNone:
		return "no error"
	case ImageErrorUnsupportedFormat:
		return "unsupported image format"
	case ImageErrorOutOfMemory:
		return "out of memory"
	default:
		return "unknown image error"
	}
}

// ImageLoadError reports why Context.ImageLoad could not construct an
// image from a file path.
type ImageLoadError int

const (
	ImageLoadErrorNone ImageLoadError = iota
	ImageLoadErrorFileError
	ImageLoadErrorUnsupportedFormat
	ImageLoadErrorOutOfMemory
)

func (e ImageLoadError) Error() string {
	switch e {
	case ImageLoadErrorNone:
		return "no error"
	case ImageLoadErrorFileError:
		return "file error"
	case ImageLoadErrorUnsupportedFormat:
		return "unsupported image format"
	case ImageLoadErrorOutOfMemory:
		return "out of memory"
	default:
		return "unknown image load error"
	}
}

// MaterialHandle is an opaque handle to a graphics material created on
// a module's behalf. It carries no exported fields, so a module can
// hold and pass it back but never construct or inspect one itself —
// the same opacity the teacher's dataID gives its own internal ids.
type MaterialHandle struct{ id graphics.ID }

// Valid reports whether h refers to a live material.
func (h MaterialHandle) Valid() bool { return h.id != 0 }

// NewMaterialHandle wraps a graphics resource id as a MaterialHandle.
// Only the host's own Context wiring calls this; modules never
// construct a handle themselves, only receive one from MaterialCreate.
func NewMaterialHandle(id graphics.ID) MaterialHandle { return MaterialHandle{id} }

// ID unwraps h back to the underlying graphics resource id, for use by
// the host's own RenderSprite/MaterialFree wiring.
func (h MaterialHandle) ID() graphics.ID { return h.id }

// ChannelHandle is an opaque handle to a host-owned byte-rendezvous
// channel (the module-facing counterpart of ona/channel.Channel[[]byte]),
// opened by Context.ChannelOpen. Like MaterialHandle, it carries no
// exported fields — a module holds and passes it back but never
// constructs or inspects one itself.
type ChannelHandle struct{ id uint32 }

// Valid reports whether h refers to a live channel.
func (h ChannelHandle) Valid() bool { return h.id != 0 }

// NewChannelHandle wraps a host-assigned id as a ChannelHandle. Only
// the host's own Context wiring calls this; modules never construct a
// handle themselves, only receive one from ChannelOpen.
func NewChannelHandle(id uint32) ChannelHandle { return ChannelHandle{id} }

// ID unwraps h back to the host-assigned id, for use by the host's own
// channel table.
func (h ChannelHandle) ID() uint32 { return h.id }

// Events is the per-frame input snapshot every system's process
// callback receives: the elapsed time since the previous frame, and
// which of the first 512 USB HID key codes are currently held down.
type Events struct {
	DeltaTime float32
	KeysHeld  [512]bool
}

// SystemInfo is what a module reports when spawning a system: the size
// of its private userdata block, plus the three lifecycle callbacks
// the host invokes against it. A nil Process is invalid; Init and
// Finalize may be nil if the system needs no setup or teardown.
type SystemInfo struct {
	Size     uintptr
	Init     func(userdata []byte, ona *Context)
	Process  func(userdata []byte, ona *Context, events *Events)
	Finalize func(userdata []byte, ona *Context)
}

// Context is the vtable the host hands to every system callback. Its
// fields are resolved at module load (except GraphicsQueueAcquire,
// which is rebound per Process call, see below) and are safe to call
// from any worker goroutine a system's Process runs on.
type Context struct {
	// SpawnSystem registers a new system, to be initialized before the
	// next frame and processed every frame thereafter. It reports
	// whether registration succeeded.
	SpawnSystem func(info SystemInfo) bool

	// DefaultAllocator returns the host's default byte allocator.
	DefaultAllocator func() alloc.Allocator

	// GraphicsQueueAcquire returns the calling worker's graphics queue,
	// creating it on first use for that worker slot. The host rebinds
	// this field per Process invocation to the scheduler slot actually
	// running the call, so two systems' Process callbacks running
	// concurrently always see distinct queues — GraphicsQueue itself is
	// not safe for concurrent use.
	GraphicsQueueAcquire func() *graphics.GraphicsQueue

	// ImageSolid returns a dimensions-sized image of a single solid
	// fillColor, allocated from a.
	ImageSolid func(a alloc.Allocator, dimensions Point2, fillColor Color) (img.Image, ImageError)

	// ImageFree releases an image's pixel storage back to its
	// allocator.
	ImageFree func(image *img.Image)

	// ImageLoad decodes the file at filePath and returns the image,
	// using a for pixel storage. host.Host leaves this field nil: it
	// wires no image decoder.
	ImageLoad func(a alloc.Allocator, filePath strs.String) (img.Image, ImageLoadError)

	// MaterialCreate uploads materialImage's pixels as a new material
	// and returns a handle to it, or the zero MaterialHandle on
	// failure.
	MaterialCreate func(materialImage *img.Image) MaterialHandle

	// MaterialFree tells the host a module is done with a material
	// created by MaterialCreate. Material ids are never recycled, and
	// the host frees nothing here: the material's texture is released
	// when the graphics server closes.
	MaterialFree func(material MaterialHandle)

	// RenderSprite enqueues sprite on graphicsQueue, to be drawn with
	// spriteMaterial's texture and tint at the end of the frame.
	RenderSprite func(graphicsQueue *graphics.GraphicsQueue, spriteMaterial MaterialHandle, sprite Sprite)

	// ChannelOpen creates a new, empty byte-rendezvous channel — the
	// cross-system hand-off primitive a module uses for anything it
	// doesn't want to route through a GraphicsQueue, grounded on the
	// original's openChannel/channelSend/channelReceive module vtable
	// entries (original_source/engine/modules.cpp).
	ChannelOpen func() ChannelHandle

	// ChannelClose releases a channel opened by ChannelOpen, waking any
	// peer still blocked in ChannelSend or ChannelReceive against it.
	ChannelClose func(ch ChannelHandle)

	// ChannelSend blocks while ch already holds a value, then stores a
	// copy of data and wakes one blocked ChannelReceive.
	ChannelSend func(ch ChannelHandle, data []byte)

	// ChannelReceive blocks until ch holds a value or is closed. ok is
	// false only when ch was closed with nothing pending, mirroring
	// Go's own v, ok := <-ch.
	ChannelReceive func(ch ChannelHandle) (data []byte, ok bool)
}
