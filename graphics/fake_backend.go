package graphics

// fakeBackend is an in-memory glBackend used by tests that need to
// drive Server without a real GL context, in the spirit of the
// teacher's own swappable driver.GPU implementations. Every "GPU
// object" is just the next integer in a monotonically increasing
// counter; draws and uniform uploads are recorded for assertions.
type fakeBackend struct {
	nextHandle uint32

	programs  map[uint32]bool
	buffers   map[uint32][]byte
	vertexArr map[uint32]uint32 // vao -> vbo
	textures  map[uint32]bool

	draws        []fakeDraw
	uniformBinds []fakeUniformBind

	queuedKeys   []keyEvent
	queuedQuit   bool
	frameWidth   int
	frameHeight  int
	swapCount    int
	clearCalls   []fakeClear
	destroyCalls int
}

type fakeDraw struct {
	vertexCount   int
	instanceCount int
}

type fakeUniformBind struct {
	slot uint32
	buf  uint32
}

type fakeClear struct{ r, g, b, a float32 }

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		programs:    make(map[uint32]bool),
		buffers:     make(map[uint32][]byte),
		vertexArr:   make(map[uint32]uint32),
		textures:    make(map[uint32]bool),
		frameWidth:  640,
		frameHeight: 480,
	}
}

func (f *fakeBackend) alloc() uint32 {
	f.nextHandle++
	return f.nextHandle
}

func (f *fakeBackend) compileProgram(vertexSrc, fragmentSrc string) (uint32, bool) {
	if vertexSrc == "" || fragmentSrc == "" {
		return 0, false
	}
	p := f.alloc()
	f.programs[p] = true
	return p, true
}

func (f *fakeBackend) deleteProgram(program uint32) { delete(f.programs, program) }

func (f *fakeBackend) bindUniformBlock(program uint32, blockName string, slot uint32) bool {
	return f.programs[program] && blockName != ""
}

func (f *fakeBackend) newUniformBuffer(size int) uint32 {
	if size <= 0 {
		return 0
	}
	b := f.alloc()
	f.buffers[b] = make([]byte, size)
	return b
}

func (f *fakeBackend) newVertexBuffer(data []byte) uint32 {
	if len(data) == 0 {
		return 0
	}
	b := f.alloc()
	cp := make([]byte, len(data))
	copy(cp, data)
	f.buffers[b] = cp
	return b
}

func (f *fakeBackend) updateBuffer(buf uint32, data []byte) bool {
	cur, ok := f.buffers[buf]
	if !ok || len(data) != len(cur) {
		return false
	}
	copy(cur, data)
	return true
}

func (f *fakeBackend) deleteBuffer(buf uint32) { delete(f.buffers, buf) }

func (f *fakeBackend) newVertexArray(vbo uint32, attrs []Attr, stride int) uint32 {
	if vbo == 0 || len(attrs) == 0 {
		return 0
	}
	vao := f.alloc()
	f.vertexArr[vao] = vbo
	return vao
}

func (f *fakeBackend) deleteVertexArray(vao uint32) { delete(f.vertexArr, vao) }

func (f *fakeBackend) newTexture2D(width, height int, pixels []byte) uint32 {
	if width <= 0 || height <= 0 {
		return 0
	}
	t := f.alloc()
	f.textures[t] = true
	return t
}

func (f *fakeBackend) deleteTexture(tex uint32) { delete(f.textures, tex) }

func (f *fakeBackend) bindUniformBuffer(slot uint32, buf uint32) {
	f.uniformBinds = append(f.uniformBinds, fakeUniformBind{slot, buf})
}

func (f *fakeBackend) useProgram(program uint32) {}

func (f *fakeBackend) bindVertexArray(vao uint32) {}

func (f *fakeBackend) bindTexture(unit uint32, tex uint32) {}

func (f *fakeBackend) drawArraysInstanced(vertexCount, instanceCount int) {
	f.draws = append(f.draws, fakeDraw{vertexCount: vertexCount, instanceCount: instanceCount})
}

func (f *fakeBackend) clear(r, g, b, a float32) {
	f.clearCalls = append(f.clearCalls, fakeClear{r, g, b, a})
}

func (f *fakeBackend) swapBuffers() { f.swapCount++ }

func (f *fakeBackend) pollEvents() (quit bool, keys []keyEvent, width, height int) {
	keys = f.queuedKeys
	f.queuedKeys = nil
	return f.queuedQuit, keys, f.frameWidth, f.frameHeight
}

func (f *fakeBackend) destroy() { f.destroyCalls++ }
