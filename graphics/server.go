package graphics

import "sync"

// Server owns the window, the GL context, the resource tables and the
// per-worker-slot graphics queues. All of its resource-mutating methods
// (CreateRenderer, CreatePoly, CreateMaterial, the Update*Userdata pair
// and RenderPolyInstanced) must run on the goroutine that owns the GL
// context; AcquireQueue and GraphicsQueue.Draw are the only calls meant
// to be reached from arbitrary worker goroutines during a frame.
type Server struct {
	backend glBackend

	renderers []renderer
	polygons  []polygon
	materials []material

	mu     sync.Mutex
	queues []*GraphicsQueue // indexed by worker slot
}

func newServer(backend glBackend) *Server {
	return &Server{backend: backend}
}

// AcquireQueue returns the GraphicsQueue owned by worker slot, creating
// it on first use. slot is a stable, dense index assigned once per
// long-lived worker goroutine by the scheduler — see the "Worker slot"
// entry in the glossary for why Go's lack of goroutine-local storage
// forces this registry where the original relied on thread-local
// queues.
func (s *Server) AcquireQueue(slot int) *GraphicsQueue {
	s.mu.Lock()
	defer s.mu.Unlock()
	for len(s.queues) <= slot {
		s.queues = append(s.queues, nil)
	}
	if s.queues[slot] == nil {
		s.queues[slot] = newGraphicsQueue()
	}
	return s.queues[slot]
}

// Clear clears the default framebuffer to opaque black.
func (s *Server) Clear() { s.backend.clear(0, 0, 0, 1) }

// ColoredClear clears the default framebuffer to the given color, whose
// channels are already normalized to [0, 1].
func (s *Server) ColoredClear(r, g, b, a float32) { s.backend.clear(r, g, b, a) }

// KeyEvent is one key-down/key-up transition reported by ReadEvents.
type KeyEvent struct {
	Code    int
	Pressed bool
}

// ReadEvents polls the window system once, returning whether the user
// requested the window to close, every key transition since the last
// call, and the current framebuffer dimensions.
func (s *Server) ReadEvents() (quit bool, keys []KeyEvent, width, height int) {
	q, raw, w, h := s.backend.pollEvents()
	keys = make([]KeyEvent, len(raw))
	for i, k := range raw {
		keys[i] = KeyEvent{Code: k.code, Pressed: k.pressed}
	}
	return q, keys, w, h
}

// Update flushes every worker slot's queued batches to the GPU in
// worker-slot order (each queue's keys in the order they were first
// drawn), submitting one instanced draw call per batch,
// then presents the frame and resets every queue for the next one.
// Update must be called after the frame's scheduler barrier (Wait) so
// no worker is still writing to a queue.
func (s *Server) Update() {
	s.mu.Lock()
	queues := s.queues
	s.mu.Unlock()

	for _, q := range queues {
		if q == nil {
			continue
		}
		for _, key := range q.order {
			for _, b := range q.stack[key] {
				if b.count == 0 {
					continue
				}
				r, ok := s.renderer(key.RendererID)
				if !ok {
					continue
				}
				s.UpdateRendererUserdata(key.RendererID, packBatchSoA(r.rendererLayout, b.data, b.count))
				s.RenderPolyInstanced(key.RendererID, key.PolyID, key.MaterialID, b.count)
			}
		}
		q.reset()
	}
	s.backend.swapBuffers()
}

// Close releases the GL context and window. The Server must not be used
// afterward.
func (s *Server) Close() {
	for i := range s.materials {
		if s.materials[i].texture != 0 {
			s.backend.deleteTexture(s.materials[i].texture)
		}
	}
	for i := range s.polygons {
		s.backend.deleteVertexArray(s.polygons[i].vertexArray)
		s.backend.deleteBuffer(s.polygons[i].vertexBuf)
	}
	for i := range s.renderers {
		s.backend.deleteProgram(s.renderers[i].program)
	}
	s.backend.destroy()
}
