package graphics

// AttrKind identifies the scalar type underlying a vertex or uniform
// attribute.
type AttrKind int

const (
	// Float32 is a 4-byte IEEE-754 float component.
	Float32 AttrKind = iota
	// Int32 is a 4-byte signed integer component.
	Int32
	// UInt8 is a 1-byte unsigned integer component.
	UInt8
)

func componentSize(kind AttrKind) int {
	switch kind {
	case Float32, Int32:
		return 4
	case UInt8:
		return 1
	default:
		return 0
	}
}

func pad4(size int) int { return (size + 3) &^ 3 }

// Attr is one named, typed attribute in a Layout.
type Attr struct {
	Name       string
	Kind       AttrKind
	Components int
}

func (a Attr) size() int { return componentSize(a.Kind) * a.Components }

// Layout is an ordered sequence of attribute descriptors shared by a
// vertex layout, a renderer uniform layout or a material uniform layout.
type Layout struct {
	Attrs []Attr
}

// VertexStride returns the sum of each attribute's raw component size, by
// which vertex data is validated for stride-divisibility.
func (l Layout) VertexStride() int {
	n := 0
	for _, a := range l.Attrs {
		n += a.size()
	}
	return n
}

// UniformSize returns the sum of each attribute's size padded up to a
// 4-byte boundary, by which uniform buffer data is validated for an
// exact-size match. UniformSize is always a multiple of 4.
func (l Layout) UniformSize() int {
	n := 0
	for _, a := range l.Attrs {
		n += pad4(a.size())
	}
	return n
}
