// Package host ties the graphics server, the module runtime and the
// scheduler together into the frame loop the original's main (in
// original_source/engine/source/app.cpp) drives by hand: read events,
// clear, submit every system's process callback, wait, present.
package host

import (
	"context"
	"fmt"
	"reflect"
	"runtime"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"ona/abi"
	"ona/alloc"
	"ona/channel"
	"ona/graphics"
	"ona/img"
	"ona/linear"
	"ona/scheduler"
	"ona/sprite"
	"ona/system"
)

// Host owns the window, the sprite renderer, the scheduler and the
// module runtime, and drives one frame at a time until the window is
// closed or its Run context is canceled.
type Host struct {
	Logger zerolog.Logger

	server  *graphics.Server
	sprites *sprite.System
	sched   *scheduler.Scheduler
	runtime *system.Runtime

	keysHeld             [512]bool
	viewportW, viewportH float32

	channelsMu  sync.Mutex
	channels    map[uint32]*channel.Channel[[]byte]
	nextChannel uint32
}

// Options configures New.
type Options struct {
	Width, Height       int
	Title               string
	ConcurrencyFraction float64
	ModulesDir          string
	Logger              zerolog.Logger
}

// OptionsFromConfig fills in Width, Height and Title from cfg, falling
// back to DefaultWidth/DefaultHeight/DefaultTitle for any query that
// reports absent.
func OptionsFromConfig(cfg Config) Options {
	opts := Options{Width: DefaultWidth, Height: DefaultHeight, Title: DefaultTitle, ConcurrencyFraction: 0.5}
	if size, ok := cfg.Vector2("DisplaySize"); ok {
		opts.Width = int(size[0])
		opts.Height = int(size[1])
	}
	if title, ok := cfg.String("DisplayTitle"); ok {
		opts.Title = title
	}
	return opts
}

// New opens a window per opts, compiles the built-in sprite renderer
// against it, and constructs the scheduler and module runtime that
// will drive every frame. If opts.ModulesDir is set, every *.so module
// under it is loaded before New returns.
func New(opts Options) (*Host, error) {
	// The window and its GL context belong to one OS thread; pin the
	// calling goroutine, which goes on to drive Run, to it.
	runtime.LockOSThread()
	server, err := graphics.NewServer(opts.Width, opts.Height, opts.Title)
	if err != nil {
		return nil, fmt.Errorf("host: opening window: %w", err)
	}
	return newWithServer(server, opts)
}

// newWithServer builds a Host around an already-constructed Server,
// letting tests supply one backed by graphics.NewTestServer instead of
// a real window.
func newWithServer(server *graphics.Server, opts Options) (*Host, error) {
	sprites, err := sprite.NewSystem(server)
	if err != nil {
		server.Close()
		return nil, fmt.Errorf("host: building sprite renderer: %w", err)
	}
	sched := scheduler.New(opts.ConcurrencyFraction)

	logger := opts.Logger
	if reflect.DeepEqual(logger, zerolog.Logger{}) {
		// A caller that built Options by hand (or a test) without
		// setting Logger gets a silent logger rather than one that
		// panics the first time it writes to a nil writer.
		logger = zerolog.Nop()
	}

	h := &Host{
		Logger:    logger,
		server:    server,
		sprites:   sprites,
		sched:     sched,
		viewportW: float32(opts.Width),
		viewportH: float32(opts.Height),
		channels:  make(map[uint32]*channel.Channel[[]byte]),
	}

	base := abi.Context{
		DefaultAllocator: alloc.Default,
		ImageSolid:       h.imageSolid,
		ImageFree:        h.imageFree,
		MaterialCreate:   h.materialCreate,
		MaterialFree:     h.materialFree,
		RenderSprite:     h.renderSprite,
		ChannelOpen:      h.channelOpen,
		ChannelClose:     h.channelClose,
		ChannelSend:      h.channelSend,
		ChannelReceive:   h.channelReceive,
	}
	// GraphicsQueueAcquire is left unset here: system.Runtime rebinds it
	// per module (and, inside Frame, per task) through graphicsQueueForSlot
	// so it always resolves to the calling worker's own queue.
	// ImageLoad is left unset as well: the host wires no image decoder,
	// so that field is nil.
	h.runtime = system.NewRuntime(base, sched, h.graphicsQueueForSlot)

	if opts.ModulesDir != "" {
		if err := h.runtime.LoadDir(opts.ModulesDir); err != nil {
			h.Logger.Error().Err(err).Str("dir", opts.ModulesDir).Msg("loading modules")
		}
	}
	return h, nil
}

// Server exposes the underlying graphics server.
func (h *Host) Server() *graphics.Server { return h.server }

// graphicsQueueForSlot resolves a scheduler worker slot to that
// worker's own GraphicsQueue. Runtime calls this once per task
// invocation with the slot the scheduler actually ran the call on
// (see scheduler.Task), so concurrently-running systems never share a
// queue and so never need to lock it — the single-writer discipline
// GraphicsQueue itself requires.
func (h *Host) graphicsQueueForSlot(slot int) *graphics.GraphicsQueue {
	return h.server.AcquireQueue(slot)
}

func (h *Host) imageSolid(a alloc.Allocator, dimensions abi.Point2, fillColor abi.Color) (img.Image, abi.ImageError) {
	rgba := [4]byte{fillColor.R, fillColor.G, fillColor.B, fillColor.A}
	im, err := img.NewSolid(a, int(dimensions.X), int(dimensions.Y), rgba)
	if err != nil {
		return img.Image{}, abi.ImageErrorOutOfMemory
	}
	return *im, abi.ImageErrorNone
}

func (h *Host) imageFree(image *img.Image) { image.Free() }

func (h *Host) materialCreate(image *img.Image) abi.MaterialHandle {
	id := h.sprites.CreateMaterial(image.Width, image.Height, image.Pixels, linear.White)
	return abi.NewMaterialHandle(id)
}

func (h *Host) materialFree(abi.MaterialHandle) {
	// Material tables never recycle ids (see the graphics package's
	// dense-table contract), so there is nothing to release here
	// beyond what Close already tears down with the renderer.
}

// channelOpen creates a new byte-rendezvous channel and assigns it the
// next id, following the same dense, never-recycled id convention the
// graphics tables use (see graphics.Server.renderer).
func (h *Host) channelOpen() abi.ChannelHandle {
	h.channelsMu.Lock()
	defer h.channelsMu.Unlock()
	h.nextChannel++
	h.channels[h.nextChannel] = channel.Open[[]byte]()
	return abi.NewChannelHandle(h.nextChannel)
}

func (h *Host) channelClose(ch abi.ChannelHandle) {
	h.channelsMu.Lock()
	c, ok := h.channels[ch.ID()]
	delete(h.channels, ch.ID())
	h.channelsMu.Unlock()
	if ok {
		c.Close()
	}
}

func (h *Host) channelSend(ch abi.ChannelHandle, data []byte) {
	h.channelsMu.Lock()
	c, ok := h.channels[ch.ID()]
	h.channelsMu.Unlock()
	if !ok {
		return
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	c.Send(cp)
}

func (h *Host) channelReceive(ch abi.ChannelHandle) ([]byte, bool) {
	h.channelsMu.Lock()
	c, ok := h.channels[ch.ID()]
	h.channelsMu.Unlock()
	if !ok {
		return nil, false
	}
	return c.Receive()
}

func (h *Host) renderSprite(queue *graphics.GraphicsQueue, material abi.MaterialHandle, s abi.Sprite) {
	position := linear.Vector2{s.Origin[0], s.Origin[1]}
	h.sprites.DrawAt(queue, material.ID(), position, h.viewportW, h.viewportH)
}

// Run drives the frame loop until the window reports a close request
// or ctx is canceled. DeltaTime is the wall-clock duration of the
// previous frame; KeysHeld persists across frames, toggled by key
// transitions polled each iteration.
func (h *Host) Run(ctx context.Context) {
	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		quit, keys, width, height := h.server.ReadEvents()
		if quit {
			return
		}
		if width > 0 && height > 0 {
			h.viewportW, h.viewportH = float32(width), float32(height)
		}
		for _, k := range keys {
			if k.Code >= 0 && k.Code < len(h.keysHeld) {
				h.keysHeld[k.Code] = k.Pressed
			}
		}

		now := time.Now()
		events := abi.Events{DeltaTime: float32(now.Sub(last).Seconds())}
		events.KeysHeld = h.keysHeld
		last = now

		h.server.Clear()
		h.runtime.Frame(&events)
		h.server.Update()
	}
}

// Close finalizes every loaded module's systems and releases the
// window and GL context.
func (h *Host) Close() {
	h.runtime.Shutdown()
	h.sched.Close()
	h.server.Close()
}
