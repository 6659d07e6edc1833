package graphics

import "math"

// renderer is a compiled shader program plus the four property layouts
// it agreed to consume.
type renderer struct {
	program        uint32
	uniformBuffer  uint32
	viewportBuffer uint32
	vertexLayout   Layout
	rendererLayout Layout
	materialLayout Layout
	viewportLayout Layout
}

// polygon is an immutable vertex buffer bound to exactly one renderer.
type polygon struct {
	rendererID  ID
	vertexBuf   uint32
	vertexArray uint32
	vertexCount int
}

// material is a texture plus a material uniform buffer bound to exactly
// one renderer.
type material struct {
	rendererID    ID
	texture       uint32
	uniformBuffer uint32
}

// CreateRenderer compiles and links vertexSrc/fragmentSrc, allocates the
// renderer and viewport uniform buffers, and binds the shader's
// Renderer, Material and Viewport uniform blocks to slots 0, 1 and 2.
// It returns a new id on success, or 0 on any compile/link/allocation
// failure.
//
// rendererLayout describes the per-instance fields a single sprite
// contributes (e.g. one transform); the actual Renderer uniform block
// the shader declares is an array of MaxBatchInstances of each such
// field (std140 requires a fixed-size array, since gl_InstanceID must
// be able to index any slot in the batch), so the buffer is sized
// rendererLayout.UniformSize() * MaxBatchInstances.
//
// viewportLayout describes the single, non-instanced projection the
// whole batch shares (see sprite.ViewportLayout) — one value per draw
// call, not one per instance, so its buffer is sized
// viewportLayout.UniformSize() with no MaxBatchInstances factor.
func (s *Server) CreateRenderer(vertexSrc, fragmentSrc string, vertexLayout, rendererLayout, materialLayout, viewportLayout Layout) ID {
	program, ok := s.backend.compileProgram(vertexSrc, fragmentSrc)
	if !ok {
		return 0
	}
	if !s.backend.bindUniformBlock(program, "Renderer", 0) ||
		!s.backend.bindUniformBlock(program, "Material", 1) ||
		!s.backend.bindUniformBlock(program, "Viewport", 2) {
		s.backend.deleteProgram(program)
		return 0
	}
	buf := s.backend.newUniformBuffer(rendererLayout.UniformSize() * MaxBatchInstances)
	if buf == 0 {
		s.backend.deleteProgram(program)
		return 0
	}
	viewportBuf := s.backend.newUniformBuffer(viewportLayout.UniformSize())
	if viewportBuf == 0 {
		s.backend.deleteBuffer(buf)
		s.backend.deleteProgram(program)
		return 0
	}
	s.renderers = append(s.renderers, renderer{
		program:        program,
		uniformBuffer:  buf,
		viewportBuffer: viewportBuf,
		vertexLayout:   vertexLayout,
		rendererLayout: rendererLayout,
		materialLayout: materialLayout,
		viewportLayout: viewportLayout,
	})
	return ID(len(s.renderers))
}

// CreatePoly validates that vertexBytes.Len() is divisible by the
// renderer's vertex stride, allocates an immutable vertex buffer, and
// builds a vertex array binding the renderer's layout attributes at
// successive byte offsets.
func (s *Server) CreatePoly(rendererID ID, vertexBytes []byte) ID {
	r, ok := s.renderer(rendererID)
	if !ok {
		return 0
	}
	stride := r.vertexLayout.VertexStride()
	if stride == 0 || len(vertexBytes)%stride != 0 {
		return 0
	}
	vbo := s.backend.newVertexBuffer(vertexBytes)
	if vbo == 0 {
		return 0
	}
	vao := s.backend.newVertexArray(vbo, r.vertexLayout.Attrs, stride)
	if vao == 0 {
		s.backend.deleteBuffer(vbo)
		return 0
	}
	s.polygons = append(s.polygons, polygon{
		rendererID:  rendererID,
		vertexBuf:   vbo,
		vertexArray: vao,
		vertexCount: len(vertexBytes) / stride,
	})
	return ID(len(s.polygons))
}

// CreateMaterial allocates a material uniform buffer sized to the
// renderer's material layout, allocates an RGBA8 texture matching
// image's dimensions with linear filtering and clamp-to-edge wrap, and
// uploads its pixels.
func (s *Server) CreateMaterial(rendererID ID, width, height int, pixels []byte) ID {
	_, ok := s.renderer(rendererID)
	if !ok {
		return 0
	}
	r := s.renderers[rendererID-1]
	tex := s.backend.newTexture2D(width, height, pixels)
	if tex == 0 {
		return 0
	}
	buf := s.backend.newUniformBuffer(r.materialLayout.UniformSize())
	if buf == 0 {
		s.backend.deleteTexture(tex)
		return 0
	}
	s.materials = append(s.materials, material{
		rendererID:    rendererID,
		texture:       tex,
		uniformBuffer: buf,
	})
	return ID(len(s.materials))
}

// UpdateRendererUserdata maps the renderer's uniform buffer and copies
// bytes into it. bytes must have length equal to
// rendererLayout.UniformSize()*MaxBatchInstances — the full,
// zero-padded SoA buffer packBatchSoA produces — and be 4-byte
// aligned; otherwise the call is a no-op.
func (s *Server) UpdateRendererUserdata(id ID, bytes []byte) {
	r, ok := s.renderer(id)
	if !ok || len(bytes)%4 != 0 || len(bytes) != r.rendererLayout.UniformSize()*MaxBatchInstances {
		return
	}
	s.backend.updateBuffer(r.uniformBuffer, bytes)
}

// packBatchSoA reshapes aosData — count instances packed one after
// another per layout, as sprite.System.Draw builds them — into the
// std140 structure-of-arrays form the Renderer uniform block actually
// declares: every attribute's values for instances [0, count) packed
// contiguously, zero-padded out to MaxBatchInstances, before the next
// attribute's array begins. This is what lets the shader index
// transform[gl_InstanceID] and viewport[gl_InstanceID] independently
// rather than reading one interleaved per-instance struct.
func packBatchSoA(layout Layout, aosData []byte, count int) []byte {
	instanceStride := layout.VertexStride()
	out := make([]byte, layout.UniformSize()*MaxBatchInstances)

	srcOff := 0
	dstOff := 0
	for _, a := range layout.Attrs {
		sz := a.size()
		padSz := pad4(sz)
		for i := 0; i < count; i++ {
			copy(out[dstOff+i*padSz:], aosData[srcOff+i*instanceStride:srcOff+i*instanceStride+sz])
		}
		srcOff += sz
		dstOff += padSz * MaxBatchInstances
	}
	return out
}

// UpdateRendererViewport maps the renderer's Viewport uniform buffer
// and copies bytes into it. bytes must have length equal to
// viewportLayout.UniformSize() and be 4-byte aligned; otherwise the
// call is a no-op. Unlike the Renderer block, this is shared by every
// instance in a batch, so it is updated once per draw call rather than
// packed per-instance.
func (s *Server) UpdateRendererViewport(id ID, bytes []byte) {
	r, ok := s.renderer(id)
	if !ok || len(bytes)%4 != 0 || len(bytes) != r.viewportLayout.UniformSize() {
		return
	}
	s.backend.updateBuffer(r.viewportBuffer, bytes)
}

// UpdateMaterialUserdata maps the material's uniform buffer and copies
// bytes into it, under the same validation as UpdateRendererUserdata.
func (s *Server) UpdateMaterialUserdata(id ID, bytes []byte) {
	m, ok := s.material(id)
	if !ok {
		return
	}
	r := s.renderers[m.rendererID-1]
	if len(bytes)%4 != 0 || len(bytes) != r.materialLayout.UniformSize() {
		return
	}
	s.backend.updateBuffer(m.uniformBuffer, bytes)
}

// RenderPolyInstanced binds the renderer's, material's and viewport's
// uniform buffers to slots 0, 1 and 2, binds the polygon's vertex
// buffer/array, binds the material's texture to unit 0, and issues an
// instanced draw of count instances. A zero id for rendererID, polyId
// or materialId is a silent no-op, as is a count outside (0,
// MaxInt32] — gl_InstanceID and the instance count glDrawArraysInstanced
// takes are both signed 32-bit.
func (s *Server) RenderPolyInstanced(rendererID, polyID, materialID ID, count int) {
	r, ok := s.renderer(rendererID)
	if !ok || count <= 0 || count > math.MaxInt32 {
		return
	}
	p, ok := s.polygon(polyID)
	if !ok || p.rendererID != rendererID {
		return
	}
	m, ok := s.material(materialID)
	if !ok || m.rendererID != rendererID {
		return
	}
	s.backend.bindUniformBuffer(0, r.uniformBuffer)
	s.backend.bindUniformBuffer(1, m.uniformBuffer)
	s.backend.bindUniformBuffer(2, r.viewportBuffer)
	s.backend.useProgram(r.program)
	s.backend.bindVertexArray(p.vertexArray)
	s.backend.bindTexture(0, m.texture)
	s.backend.drawArraysInstanced(p.vertexCount, count)
}

func (s *Server) renderer(id ID) (renderer, bool) {
	if id == 0 || int(id) > len(s.renderers) {
		return renderer{}, false
	}
	return s.renderers[id-1], true
}

func (s *Server) polygon(id ID) (polygon, bool) {
	if id == 0 || int(id) > len(s.polygons) {
		return polygon{}, false
	}
	return s.polygons[id-1], true
}

func (s *Server) material(id ID) (material, bool) {
	if id == 0 || int(id) > len(s.materials) {
		return material{}, false
	}
	return s.materials[id-1], true
}
