package graphics

// NewTestServer returns a Server backed by an in-memory recording
// backend rather than a real GL context, so that other packages' tests
// (sprite, host) can exercise Server without a window.
func NewTestServer() (*Server, error) {
	return newServer(newFakeBackend()), nil
}

// FakeDraw is one recorded instanced draw call.
type FakeDraw struct {
	VertexCount   int
	InstanceCount int
}

// TestBackendView exposes a NewTestServer-constructed Server's recorded
// calls for assertions.
type TestBackendView struct {
	fb *fakeBackend
	s  *Server
}

// TestBackend returns a view onto the Server's recording backend. It
// panics if the Server was not constructed with NewTestServer.
func (s *Server) TestBackend() *TestBackendView {
	fb, ok := s.backend.(*fakeBackend)
	if !ok {
		panic("graphics: TestBackend called on a Server not built with NewTestServer")
	}
	return &TestBackendView{fb, s}
}

// RendererUniformData returns the current raw contents of rendererID's
// Renderer uniform buffer — the full, zero-padded SoA block
// packBatchSoA produces — or nil if rendererID is invalid.
func (v *TestBackendView) RendererUniformData(rendererID ID) []byte {
	r, ok := v.s.renderer(rendererID)
	if !ok {
		return nil
	}
	return v.fb.buffers[r.uniformBuffer]
}

// RendererViewportData returns the current raw contents of
// rendererID's separate Viewport uniform buffer, or nil if rendererID
// is invalid.
func (v *TestBackendView) RendererViewportData(rendererID ID) []byte {
	r, ok := v.s.renderer(rendererID)
	if !ok {
		return nil
	}
	return v.fb.buffers[r.viewportBuffer]
}

// Draws returns every instanced draw call recorded since construction.
func (v *TestBackendView) Draws() []FakeDraw {
	out := make([]FakeDraw, len(v.fb.draws))
	for i, d := range v.fb.draws {
		out[i] = FakeDraw{VertexCount: d.vertexCount, InstanceCount: d.instanceCount}
	}
	return out
}

// SwapCount returns how many times SwapBuffers has been called.
func (v *TestBackendView) SwapCount() int { return v.fb.swapCount }

// QueueQuit arranges for the next ReadEvents call to report a close
// request.
func (v *TestBackendView) QueueQuit() { v.fb.queuedQuit = true }

// QueueKey arranges for the next ReadEvents call to report a key
// transition.
func (v *TestBackendView) QueueKey(code int, pressed bool) {
	v.fb.queuedKeys = append(v.fb.queuedKeys, keyEvent{code: code, pressed: pressed})
}
