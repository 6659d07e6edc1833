// Copyright 2022 Gustavo C. Viegas. All rights reserved.

package linear

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVector3(t *testing.T) {
	v := Vector3{1, 2, 4}
	w := Vector3{0, -1, 2}

	var sum Vector3
	sum.Add(&v, &w)
	assert.Equal(t, Vector3{1, 1, 6}, sum)

	var diff Vector3
	diff.Sub(&v, &w)
	assert.Equal(t, Vector3{1, 3, 2}, diff)

	assert.Equal(t, float32(6), v.Dot(&w))
}

func TestColorVector4(t *testing.T) {
	c := Color{255, 0, 128, 255}
	v := c.Vector4()
	assert.Equal(t, float32(1), v[0])
	assert.Equal(t, float32(0), v[1])
	assert.Equal(t, float32(1), v[3])
}

func TestSpriteTransform(t *testing.T) {
	m := SpriteTransform(Vector2{32, 32}, Vector2{10, 20})
	// Scale then translate: row 0 scales x by 32, offsets by 10.
	assert.Equal(t, float32(32), m[0][0])
	assert.Equal(t, float32(10), m[0][3])
	assert.Equal(t, float32(32), m[1][1])
	assert.Equal(t, float32(20), m[1][3])
	assert.Equal(t, float32(1), m[3][3])
}

func TestMatrixMulIdentity(t *testing.T) {
	id := Identity()
	s := Scaling(2, 3, 1)
	var m Matrix
	m.Mul(&id, &s)
	assert.Equal(t, s, m)
}
