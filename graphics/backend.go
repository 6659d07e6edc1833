package graphics

// ID is an opaque, non-zero, non-recycled resource handle into one of the
// Server's dense tables. Zero means invalid. Renderer, Material and
// Polygon ids are independent spaces sharing this representation.
type ID uint32

// glBackend is the seam between the Server's resource-table bookkeeping
// and the raw GL calls, mirroring the teacher's own Driver/GPU split
// (gviegas-neo3/driver.Driver wraps a concrete implementation behind an
// interface so call sites never change when the backend does). Tests
// substitute a recording fake; production wires glfwBackend.
type glBackend interface {
	compileProgram(vertexSrc, fragmentSrc string) (program uint32, ok bool)
	deleteProgram(program uint32)
	bindUniformBlock(program uint32, blockName string, slot uint32) bool

	newUniformBuffer(size int) uint32
	newVertexBuffer(data []byte) uint32
	updateBuffer(buf uint32, data []byte) bool
	deleteBuffer(buf uint32)

	newVertexArray(vbo uint32, attrs []Attr, stride int) uint32
	deleteVertexArray(vao uint32)

	newTexture2D(width, height int, pixels []byte) uint32
	deleteTexture(tex uint32)

	bindUniformBuffer(slot uint32, buf uint32)
	useProgram(program uint32)
	bindVertexArray(vao uint32)
	bindTexture(unit uint32, tex uint32)
	drawArraysInstanced(vertexCount, instanceCount int)

	clear(r, g, b, a float32)
	swapBuffers()
	pollEvents() (quit bool, keyEvents []keyEvent, width, height int)
	destroy()
}

// keyEvent is a single key-down/key-up transition reported by the window
// backend for one frame's worth of polling.
type keyEvent struct {
	code    int
	pressed bool
}
