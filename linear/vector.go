// Copyright 2022 Gustavo C. Viegas. All rights reserved.

// Package linear implements the 2D math used by the graphics and sprite
// packages: vectors, colors and a row-major 4x4 matrix.
package linear

import "math"

// Point2 is a pair of integer coordinates.
type Point2 struct {
	X, Y int32
}

// Vector2 is a 2-component vector of float32.
type Vector2 [2]float32

// Add sets v to contain l + r.
func (v *Vector2) Add(l, r *Vector2) {
	for i := range v {
		v[i] = l[i] + r[i]
	}
}

// Sub sets v to contain l - r.
func (v *Vector2) Sub(l, r *Vector2) {
	for i := range v {
		v[i] = l[i] - r[i]
	}
}

// Scale sets v to contain s ⋅ w.
func (v *Vector2) Scale(s float32, w *Vector2) {
	for i := range v {
		v[i] = s * w[i]
	}
}

// Vector3 is a 3-component vector of float32.
type Vector3 [3]float32

// Add sets v to contain l + r.
func (v *Vector3) Add(l, r *Vector3) {
	for i := range v {
		v[i] = l[i] + r[i]
	}
}

// Sub sets v to contain l - r.
func (v *Vector3) Sub(l, r *Vector3) {
	for i := range v {
		v[i] = l[i] - r[i]
	}
}

// Scale sets v to contain s ⋅ w.
func (v *Vector3) Scale(s float32, w *Vector3) {
	for i := range v {
		v[i] = s * w[i]
	}
}

// Dot returns v ⋅ w.
func (v *Vector3) Dot(w *Vector3) (d float32) {
	for i := range v {
		d += v[i] * w[i]
	}
	return
}

// Len returns the length of v.
func (v *Vector3) Len() float32 { return float32(math.Sqrt(float64(v.Dot(v)))) }

// Vector4 is a 4-component vector of float32.
type Vector4 [4]float32

// Add sets v to contain l + r.
func (v *Vector4) Add(l, r *Vector4) {
	for i := range v {
		v[i] = l[i] + r[i]
	}
}

// Scale sets v to contain s ⋅ w.
func (v *Vector4) Scale(s float32, w *Vector4) {
	for i := range v {
		v[i] = s * w[i]
	}
}

// Color is four 8-bit channels, RGBA.
type Color struct {
	R, G, B, A uint8
}

// Vector4 returns c as a normalized float4 in [0,1].
func (c Color) Vector4() Vector4 {
	const s = 1.0 / 255.0
	return Vector4{
		float32(c.R) * s,
		float32(c.G) * s,
		float32(c.B) * s,
		float32(c.A) * s,
	}
}

// White is fully-opaque white, the default sprite tint.
var White = Color{255, 255, 255, 255}
