package trapeze

import (
	"encoding/binary"
	"math"
)

// VertexFloatCount is the number of float32 attributes per vertex:
// position (3), color (4) and texture coordinate (2). Backends derive
// their vertex layout from it.
const VertexFloatCount = 9

// VertexStride is the byte stride of one packed vertex.
const VertexStride = VertexFloatCount * 4

// Attribute byte offsets within a packed vertex.
const (
	VertexPositionOffset = 0
	VertexColorOffset    = 3 * 4
	VertexTexCoordOffset = 7 * 4
)

// Vertex is one corner of a triangle.
type Vertex struct {
	X, Y, Z    float32 // position
	R, G, B, A float32 // color
	S, T       float32 // texture coordinate
}

// Floats returns the vertex attributes in packing order.
func (v Vertex) Floats() [VertexFloatCount]float32 {
	return [VertexFloatCount]float32{v.X, v.Y, v.Z, v.R, v.G, v.B, v.A, v.S, v.T}
}

// PackVertices packs vertices, in input order, into one contiguous
// little-endian buffer of len(vertices)*VertexStride bytes.
func PackVertices(vertices []Vertex) []byte {
	buf := make([]byte, len(vertices)*VertexStride)
	off := 0
	for i := range vertices {
		for _, f := range vertices[i].Floats() {
			binary.LittleEndian.PutUint32(buf[off:], math.Float32bits(f))
			off += 4
		}
	}
	return buf
}
