package graphics

import (
	"sync"
	"unsafe"

	"github.com/go-gl/gl/v3.3-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"

	"ona/keycode"
)

// glfwBackend implements glBackend on top of go-gl/gl and go-gl/glfw.
// It must only ever be driven from the goroutine that created it, per
// glfw's own single-threaded contract — the Host pins that goroutine
// with runtime.LockOSThread, mirroring the OS-thread discipline the
// teacher's thread package applies to its render loop
// (gogpu-wgpu/internal/thread/renderloop.go).
type glfwBackend struct {
	window *glfw.Window

	mu     sync.Mutex
	keys   []keyEvent
	closed bool
}

// newGLFWBackend creates a window of the given dimensions and title and
// makes its GL 3.3 core-profile context current on the calling
// goroutine.
func newGLFWBackend(width, height int, title string) (*glfwBackend, error) {
	if err := glfw.Init(); err != nil {
		return nil, err
	}
	glfw.WindowHint(glfw.ContextVersionMajor, 3)
	glfw.WindowHint(glfw.ContextVersionMinor, 3)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	glfw.WindowHint(glfw.Resizable, glfw.True)

	win, err := glfw.CreateWindow(width, height, title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, err
	}
	win.MakeContextCurrent()

	if err := gl.Init(); err != nil {
		win.Destroy()
		glfw.Terminate()
		return nil, err
	}
	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)

	b := &glfwBackend{window: win}
	win.SetKeyCallback(b.onKey)
	win.SetCloseCallback(b.onClose)
	return b, nil
}

func (b *glfwBackend) onKey(_ *glfw.Window, key glfw.Key, _ int, action glfw.Action, _ glfw.ModifierKey) {
	if action == glfw.Repeat {
		return
	}
	code, ok := hidCodeForGLFWKey(key)
	if !ok {
		return
	}
	b.mu.Lock()
	b.keys = append(b.keys, keyEvent{code: int(code), pressed: action == glfw.Press})
	b.mu.Unlock()
}

// hidCodeForGLFWKey translates a glfw key token into the USB HID usage
// id keycode defines, so abi.Events.KeysHeld indexes the same way
// regardless of which backend produced the event. Keys the keycode
// package does not enumerate are reported as not ok and dropped.
func hidCodeForGLFWKey(key glfw.Key) (keycode.Code, bool) {
	switch key {
	case glfw.KeyA:
		return keycode.A, true
	case glfw.KeyB:
		return keycode.B, true
	case glfw.KeyC:
		return keycode.C, true
	case glfw.KeyD:
		return keycode.D, true
	case glfw.KeyE:
		return keycode.E, true
	case glfw.KeyF:
		return keycode.F, true
	case glfw.KeyG:
		return keycode.G, true
	case glfw.KeyH:
		return keycode.H, true
	case glfw.KeyI:
		return keycode.I, true
	case glfw.KeyJ:
		return keycode.J, true
	case glfw.KeyK:
		return keycode.K, true
	case glfw.KeyL:
		return keycode.L, true
	case glfw.KeyM:
		return keycode.M, true
	case glfw.KeyN:
		return keycode.N, true
	case glfw.KeyO:
		return keycode.O, true
	case glfw.KeyP:
		return keycode.P, true
	case glfw.KeyQ:
		return keycode.Q, true
	case glfw.KeyR:
		return keycode.R, true
	case glfw.KeyS:
		return keycode.S, true
	case glfw.KeyT:
		return keycode.T, true
	case glfw.KeyU:
		return keycode.U, true
	case glfw.KeyV:
		return keycode.V, true
	case glfw.KeyW:
		return keycode.W, true
	case glfw.KeyX:
		return keycode.X, true
	case glfw.KeyY:
		return keycode.Y, true
	case glfw.KeyZ:
		return keycode.Z, true
	case glfw.Key1:
		return keycode.Digit1, true
	case glfw.Key2:
		return keycode.Digit2, true
	case glfw.Key3:
		return keycode.Digit3, true
	case glfw.Key4:
		return keycode.Digit4, true
	case glfw.Key5:
		return keycode.Digit5, true
	case glfw.Key6:
		return keycode.Digit6, true
	case glfw.Key7:
		return keycode.Digit7, true
	case glfw.Key8:
		return keycode.Digit8, true
	case glfw.Key9:
		return keycode.Digit9, true
	case glfw.Key0:
		return keycode.Digit0, true
	case glfw.KeyEnter:
		return keycode.Return, true
	case glfw.KeyEscape:
		return keycode.Escape, true
	case glfw.KeyBackspace:
		return keycode.Backspace, true
	case glfw.KeyTab:
		return keycode.Tab, true
	case glfw.KeySpace:
		return keycode.Space, true
	case glfw.KeyRight:
		return keycode.ArrowRight, true
	case glfw.KeyLeft:
		return keycode.ArrowLeft, true
	case glfw.KeyDown:
		return keycode.ArrowDown, true
	case glfw.KeyUp:
		return keycode.ArrowUp, true
	default:
		return 0, false
	}
}

func (b *glfwBackend) onClose(_ *glfw.Window) {
	b.mu.Lock()
	b.closed = true
	b.mu.Unlock()
}

func (b *glfwBackend) compileProgram(vertexSrc, fragmentSrc string) (uint32, bool) {
	vs, ok := compileShader(vertexSrc, gl.VERTEX_SHADER)
	if !ok {
		return 0, false
	}
	fs, ok := compileShader(fragmentSrc, gl.FRAGMENT_SHADER)
	if !ok {
		gl.DeleteShader(vs)
		return 0, false
	}
	program := gl.CreateProgram()
	gl.AttachShader(program, vs)
	gl.AttachShader(program, fs)
	gl.LinkProgram(program)
	gl.DeleteShader(vs)
	gl.DeleteShader(fs)

	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		gl.DeleteProgram(program)
		return 0, false
	}
	return program, true
}

func compileShader(src string, kind uint32) (uint32, bool) {
	shader := gl.CreateShader(kind)
	csrc, free := gl.Strs(src + "\x00")
	gl.ShaderSource(shader, 1, csrc, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		gl.DeleteShader(shader)
		return 0, false
	}
	return shader, true
}

func (b *glfwBackend) deleteProgram(program uint32) { gl.DeleteProgram(program) }

func (b *glfwBackend) bindUniformBlock(program uint32, blockName string, slot uint32) bool {
	index := gl.GetUniformBlockIndex(program, gl.Str(blockName+"\x00"))
	if index == gl.INVALID_INDEX {
		return false
	}
	gl.UniformBlockBinding(program, index, slot)
	return true
}

func (b *glfwBackend) newUniformBuffer(size int) uint32 {
	if size <= 0 {
		return 0
	}
	var buf uint32
	gl.GenBuffers(1, &buf)
	gl.BindBuffer(gl.UNIFORM_BUFFER, buf)
	gl.BufferData(gl.UNIFORM_BUFFER, size, nil, gl.DYNAMIC_DRAW)
	return buf
}

func (b *glfwBackend) newVertexBuffer(data []byte) uint32 {
	if len(data) == 0 {
		return 0
	}
	var buf uint32
	gl.GenBuffers(1, &buf)
	gl.BindBuffer(gl.ARRAY_BUFFER, buf)
	gl.BufferData(gl.ARRAY_BUFFER, len(data), gl.Ptr(data), gl.STATIC_DRAW)
	return buf
}

func (b *glfwBackend) updateBuffer(buf uint32, data []byte) bool {
	if buf == 0 || len(data) == 0 {
		return false
	}
	gl.BindBuffer(gl.UNIFORM_BUFFER, buf)
	gl.BufferSubData(gl.UNIFORM_BUFFER, 0, len(data), gl.Ptr(data))
	return true
}

func (b *glfwBackend) deleteBuffer(buf uint32) {
	if buf != 0 {
		gl.DeleteBuffers(1, &buf)
	}
}

func (b *glfwBackend) newVertexArray(vbo uint32, attrs []Attr, stride int) uint32 {
	if vbo == 0 {
		return 0
	}
	var vao uint32
	gl.GenVertexArrays(1, &vao)
	gl.BindVertexArray(vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, vbo)

	offset := 0
	for i, a := range attrs {
		loc := uint32(i)
		gl.EnableVertexAttribArray(loc)
		switch a.Kind {
		case Int32:
			gl.VertexAttribIPointerWithOffset(loc, int32(a.Components), gl.INT, int32(stride), uintptr(offset))
		default:
			normalized := a.Kind == UInt8
			gl.VertexAttribPointerWithOffset(loc, int32(a.Components), attrGLType(a.Kind), normalized, int32(stride), uintptr(offset))
		}
		offset += a.size()
	}
	gl.BindVertexArray(0)
	return vao
}

func attrGLType(kind AttrKind) uint32 {
	switch kind {
	case Float32:
		return gl.FLOAT
	case Int32:
		return gl.INT
	case UInt8:
		return gl.UNSIGNED_BYTE
	default:
		return gl.FLOAT
	}
}

func (b *glfwBackend) deleteVertexArray(vao uint32) {
	if vao != 0 {
		gl.DeleteVertexArrays(1, &vao)
	}
}

func (b *glfwBackend) newTexture2D(width, height int, pixels []byte) uint32 {
	if width <= 0 || height <= 0 {
		return 0
	}
	var tex uint32
	gl.GenTextures(1, &tex)
	gl.BindTexture(gl.TEXTURE_2D, tex)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	var ptr unsafe.Pointer
	if len(pixels) > 0 {
		ptr = gl.Ptr(pixels)
	}
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8, int32(width), int32(height), 0, gl.RGBA, gl.UNSIGNED_BYTE, ptr)
	return tex
}

func (b *glfwBackend) deleteTexture(tex uint32) {
	if tex != 0 {
		gl.DeleteTextures(1, &tex)
	}
}

func (b *glfwBackend) bindUniformBuffer(slot uint32, buf uint32) {
	gl.BindBufferBase(gl.UNIFORM_BUFFER, slot, buf)
}

func (b *glfwBackend) useProgram(program uint32) { gl.UseProgram(program) }

func (b *glfwBackend) bindVertexArray(vao uint32) { gl.BindVertexArray(vao) }

func (b *glfwBackend) bindTexture(unit uint32, tex uint32) {
	gl.ActiveTexture(gl.TEXTURE0 + unit)
	gl.BindTexture(gl.TEXTURE_2D, tex)
}

func (b *glfwBackend) drawArraysInstanced(vertexCount, instanceCount int) {
	gl.DrawArraysInstanced(gl.TRIANGLES, 0, int32(vertexCount), int32(instanceCount))
}

func (b *glfwBackend) clear(r, g, b2, a float32) {
	gl.ClearColor(r, g, b2, a)
	gl.Clear(gl.COLOR_BUFFER_BIT)
}

func (b *glfwBackend) swapBuffers() { b.window.SwapBuffers() }

func (b *glfwBackend) pollEvents() (quit bool, keys []keyEvent, width, height int) {
	glfw.PollEvents()
	b.mu.Lock()
	keys = b.keys
	b.keys = nil
	quit = b.closed
	b.mu.Unlock()
	width, height = b.window.GetFramebufferSize()
	return quit, keys, width, height
}

func (b *glfwBackend) destroy() {
	b.window.Destroy()
	glfw.Terminate()
}

// NewServer opens a window of the given dimensions and title, creates
// its GL context and returns a Server ready to accept resource
// creation calls. It must be called from the goroutine that will drive
// the frame loop for the window's lifetime.
func NewServer(width, height int, title string) (*Server, error) {
	backend, err := newGLFWBackend(width, height, title)
	if err != nil {
		return nil, err
	}
	return newServer(backend), nil
}
