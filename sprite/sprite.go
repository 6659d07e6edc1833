// Package sprite implements the one built-in drawable of the host: an
// axis-aligned, textured, tinted rectangle rendered through an
// instanced draw call per (polygon, material) batch.
//
// Grounded on the teacher's engine.Drawable/engine.Renderer split
// (gviegas-neo3/engine/drawable.go, renderer.go) generalized from
// arbitrary mesh geometry down to the single unit quad this host ever
// draws, and on the original implementation's sprite uniform layout
// (original_source/engine/source/gl4.c), which keeps one transform per
// instance, indexed by gl_InstanceID, separate from the single
// projection every instance in the batch shares.
package sprite

import (
	"encoding/binary"
	"math"
	"sync"

	"ona/graphics"
	"ona/linear"
)

// VertexLayout describes the unit quad's two vertex attributes:
// position and texture coordinate, each a 2-component float, for a
// 16-byte stride.
var VertexLayout = graphics.Layout{Attrs: []graphics.Attr{
	{Name: "position", Kind: graphics.Float32, Components: 2},
	{Name: "texCoord", Kind: graphics.Float32, Components: 2},
}}

// RendererLayout describes the per-instance data one sprite draw
// contributes: a row-major 4x4 transform plus a 4-component viewport —
// the sub-rectangle of the material's texture space this instance
// samples, (x, y, w, h) in [0, 1], defaulting to the whole texture
// (0, 0, 1, 1) until a caller needs atlas sub-selection. 80-byte
// stride. graphics.Server expands this by MaxBatchInstances into the
// actual Renderer uniform buffer (transform[128], viewport[128], SoA —
// see graphics.packBatchSoA), matching the std140 arrays
// vertexShaderSource declares below.
var RendererLayout = graphics.Layout{Attrs: []graphics.Attr{
	{Name: "transform", Kind: graphics.Float32, Components: 16},
	{Name: "viewport", Kind: graphics.Float32, Components: 4},
}}

// MaterialLayout describes the per-material uniform data: a single
// tint color multiplied against the sampled texel.
var MaterialLayout = graphics.Layout{Attrs: []graphics.Attr{
	{Name: "tintColor", Kind: graphics.Float32, Components: 4},
}}

// fullViewport is the default per-instance sub-rectangle: the entire
// texture, used by every Draw call until atlas sub-selection exists.
var fullViewport = [4]float32{0, 0, 1, 1}

// ViewportLayout describes the shader's separate Viewport uniform
// block: the single orthographic projection every instance in a batch
// shares, updated once per distinct window size rather than packed
// per-instance — unlike RendererLayout, graphics.Server does not
// expand this by MaxBatchInstances (see graphics.CreateRenderer). Not
// to be confused with RendererLayout's per-instance "viewport"
// sub-rectangle field above; the name collision is the original's own
// (original_source/engine/source/gl4.c), not ours.
var ViewportLayout = graphics.Layout{Attrs: []graphics.Attr{
	{Name: "projection", Kind: graphics.Float32, Components: 16},
}}

const vertexShaderSource = `#version 330 core
layout(std140) uniform Renderer {
	mat4 transform[128];
	vec4 viewport[128];
};
layout(std140) uniform Viewport {
	mat4 projection;
};
layout(location = 0) in vec2 position;
layout(location = 1) in vec2 texCoord;
out vec2 fragTexCoord;
void main() {
	gl_Position = projection * transform[gl_InstanceID] * vec4(position, 0.0, 1.0);
	vec4 vp = viewport[gl_InstanceID];
	fragTexCoord = vp.xy + texCoord * vp.zw;
}
`

const fragmentShaderSource = `#version 330 core
layout(std140) uniform Material {
	vec4 tintColor;
};
uniform sampler2D tex;
in vec2 fragTexCoord;
out vec4 outColor;
void main() {
	outColor = texture(tex, fragTexCoord) * tintColor;
}
`

// unitQuad is two triangles covering [0, 1] x [0, 1], the geometry
// every sprite shares; per-sprite size and position are folded into
// the instance transform rather than the vertex data.
var unitQuad = []float32{
	0, 0, 0, 0,
	1, 0, 1, 0,
	1, 1, 1, 1,

	0, 0, 0, 0,
	1, 1, 1, 1,
	0, 1, 0, 1,
}

// System owns the single shared renderer and polygon every sprite
// draws through; materials are created per distinct (texture, tint)
// pair.
type System struct {
	server     *graphics.Server
	rendererID graphics.ID
	polyID     graphics.ID

	mu   sync.RWMutex
	dims map[graphics.ID]linear.Vector2 // material id -> native pixel size

	viewportUploaded bool
	lastViewportW    float32
	lastViewportH    float32
}

// NewSystem compiles the sprite shader pair and uploads the shared
// unit quad against server. It is typically called once, during host
// startup, from the goroutine that owns server's GL context.
func NewSystem(server *graphics.Server) (*System, error) {
	rendererID := server.CreateRenderer(vertexShaderSource, fragmentShaderSource, VertexLayout, RendererLayout, MaterialLayout, ViewportLayout)
	if rendererID == 0 {
		return nil, errServer("failed to create sprite renderer")
	}
	vertexBytes := make([]byte, len(unitQuad)*4)
	for i, f := range unitQuad {
		binary.LittleEndian.PutUint32(vertexBytes[i*4:], math.Float32bits(f))
	}
	polyID := server.CreatePoly(rendererID, vertexBytes)
	if polyID == 0 {
		return nil, errServer("failed to upload sprite quad")
	}
	return &System{
		server:     server,
		rendererID: rendererID,
		polyID:     polyID,
		dims:       make(map[graphics.ID]linear.Vector2),
	}, nil
}

// CreateMaterial allocates a texture holding width x height RGBA8
// pixels and a material uniform buffer initialized to tint, and
// records width/height as the material's native draw size for
// DrawAt.
func (s *System) CreateMaterial(width, height int, pixels []byte, tint linear.Color) graphics.ID {
	id := s.server.CreateMaterial(s.rendererID, width, height, pixels)
	if id == 0 {
		return 0
	}
	s.server.UpdateMaterialUserdata(id, packVec4(tint.Vector4()))
	s.mu.Lock()
	s.dims[id] = linear.Vector2{float32(width), float32(height)}
	s.mu.Unlock()
	return id
}

// Dimensions returns the native pixel size recorded for materialID by
// CreateMaterial.
func (s *System) Dimensions(materialID graphics.ID) (linear.Vector2, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.dims[materialID]
	return d, ok
}

// DrawAt enqueues materialID at its native dimensions, with the
// quad's (0, 0) corner at position, clipped against a viewport of the given size — the shape
// of draw call the module ABI's RenderSprite exposes, where a sprite
// carries only an origin and a tint, not an explicit size.
func (s *System) DrawAt(queue *graphics.GraphicsQueue, materialID graphics.ID, position linear.Vector2, viewportWidth, viewportHeight float32) {
	dims, ok := s.Dimensions(materialID)
	if !ok {
		return
	}
	s.Draw(queue, materialID, dims, position, viewportWidth, viewportHeight)
}

// Draw enqueues one sprite instance onto queue: a rectangle dimensions
// wide and tall, positioned at position in pixel space, using
// materialID's full texture and tint, clipped against a viewport of
// the given dimensions. The instance's recorded transform is the raw
// scale·translate composition — the separate Viewport uniform block
// carries the orthographic projection, so it is never premultiplied
// into the per-instance data a caller (or a test) inspects.
func (s *System) Draw(queue *graphics.GraphicsQueue, materialID graphics.ID, dimensions, position linear.Vector2, viewportWidth, viewportHeight float32) {
	s.ensureViewport(viewportWidth, viewportHeight)

	transform := linear.SpriteTransform(dimensions, position)
	instance := make([]byte, 0, RendererLayout.UniformSize())
	instance = appendMatrix(instance, transform)
	instance = appendVec4(instance, fullViewport)

	key := graphics.BatchKey{RendererID: s.rendererID, PolyID: s.polyID, MaterialID: materialID}
	queue.Draw(key, instance)
}

// ensureViewport uploads the Viewport uniform's orthographic
// projection the first time it's needed, and again whenever the
// viewport dimensions change — it is the same projection for every
// instance in a frame, so there is no reason to re-upload it per draw
// call the way the per-instance Renderer block is.
func (s *System) ensureViewport(viewportWidth, viewportHeight float32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.viewportUploaded && s.lastViewportW == viewportWidth && s.lastViewportH == viewportHeight {
		return
	}
	projection := linear.Orthographic(viewportWidth, viewportHeight)
	s.server.UpdateRendererViewport(s.rendererID, appendMatrix(make([]byte, 0, ViewportLayout.UniformSize()), projection))
	s.viewportUploaded = true
	s.lastViewportW = viewportWidth
	s.lastViewportH = viewportHeight
}

func appendMatrix(dst []byte, m linear.Matrix) []byte {
	for row := 0; row < 4; row++ {
		for col := 0; col < 4; col++ {
			dst = appendFloat32(dst, m[row][col])
		}
	}
	return dst
}

func appendVec4(dst []byte, v [4]float32) []byte {
	for _, f := range v {
		dst = appendFloat32(dst, f)
	}
	return dst
}

func appendFloat32(dst []byte, f float32) []byte {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], math.Float32bits(f))
	return append(dst, b[:]...)
}

func packVec4(v linear.Vector4) []byte {
	return appendVec4(nil, [4]float32{v[0], v[1], v[2], v[3]})
}

type errServer string

func (e errServer) Error() string { return string(e) }
