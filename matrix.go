package trapeze

import (
	"encoding/binary"
	"math"

	"github.com/chewxy/math32"
)

// Matrix4Elements is the number of float32 values in a Matrix4.
const Matrix4Elements = 16

// Matrix4Size is the size in bytes of a packed Matrix4.
const Matrix4Size = Matrix4Elements * 4

// Matrix4 is a 4x4 float32 transformation matrix stored in column-major
// order, the layout WGSL and Metal expect for mat4x4<f32>:
//
//	| M[0]  M[4]  M[8]  M[12] |
//	| M[1]  M[5]  M[9]  M[13] |
//	| M[2]  M[6]  M[10] M[14] |
//	| M[3]  M[7]  M[11] M[15] |
//
// The zero value is the zero matrix, not the identity. Use Identity4.
type Matrix4 struct {
	M [Matrix4Elements]float32
}

// Vec3 is a 3-component float32 vector.
type Vec3 struct {
	X, Y, Z float32
}

// Identity4 returns the identity matrix.
func Identity4() Matrix4 {
	return Matrix4{M: [16]float32{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}}
}

// Translation4 creates a translation matrix.
func Translation4(x, y, z float32) Matrix4 {
	m := Identity4()
	m.M[12], m.M[13], m.M[14] = x, y, z
	return m
}

// Scaling4 creates a scaling matrix.
func Scaling4(x, y, z float32) Matrix4 {
	m := Identity4()
	m.M[0], m.M[5], m.M[10] = x, y, z
	return m
}

// RotationX4 creates a rotation about the X axis (angle in radians).
func RotationX4(angle float32) Matrix4 {
	s, c := math32.Sincos(angle)
	m := Identity4()
	m.M[5], m.M[6] = c, s
	m.M[9], m.M[10] = -s, c
	return m
}

// RotationY4 creates a rotation about the Y axis (angle in radians).
func RotationY4(angle float32) Matrix4 {
	s, c := math32.Sincos(angle)
	m := Identity4()
	m.M[0], m.M[2] = c, -s
	m.M[8], m.M[10] = s, c
	return m
}

// RotationZ4 creates a rotation about the Z axis (angle in radians).
func RotationZ4(angle float32) Matrix4 {
	s, c := math32.Sincos(angle)
	m := Identity4()
	m.M[0], m.M[1] = c, s
	m.M[4], m.M[5] = -s, c
	return m
}

// Perspective creates a right-handed perspective projection with a
// vertical field of view fovY (radians). Clip-space depth maps to [0, 1]
// as WebGPU requires.
func Perspective(fovY, aspect, near, far float32) Matrix4 {
	f := 1 / math32.Tan(fovY/2)
	rangeInv := 1 / (near - far)
	var m Matrix4
	m.M[0] = f / aspect
	m.M[5] = f
	m.M[10] = far * rangeInv
	m.M[11] = -1
	m.M[14] = near * far * rangeInv
	return m
}

// Radians converts degrees to radians.
func Radians(deg float32) float32 {
	return deg * math32.Pi / 180
}

// Multiply returns m * other. Applied to a point, other acts first.
func (m Matrix4) Multiply(other Matrix4) Matrix4 {
	var r Matrix4
	for col := 0; col < 4; col++ {
		for row := 0; row < 4; row++ {
			var sum float32
			for k := 0; k < 4; k++ {
				sum += m.M[k*4+row] * other.M[col*4+k]
			}
			r.M[col*4+row] = sum
		}
	}
	return r
}

// Translate returns m * Translation4(x, y, z).
func (m Matrix4) Translate(x, y, z float32) Matrix4 {
	return m.Multiply(Translation4(x, y, z))
}

// RotateXYZ returns m * Rx * Ry * Rz. The X rotation is outermost.
func (m Matrix4) RotateXYZ(x, y, z float32) Matrix4 {
	return m.Multiply(RotationX4(x)).Multiply(RotationY4(y)).Multiply(RotationZ4(z))
}

// Scale returns m * Scaling4(x, y, z).
func (m Matrix4) Scale(x, y, z float32) Matrix4 {
	return m.Multiply(Scaling4(x, y, z))
}

// TransformPoint applies m to the point p (w = 1) and performs the
// perspective divide when w differs from 1.
func (m Matrix4) TransformPoint(p Vec3) Vec3 {
	x := m.M[0]*p.X + m.M[4]*p.Y + m.M[8]*p.Z + m.M[12]
	y := m.M[1]*p.X + m.M[5]*p.Y + m.M[9]*p.Z + m.M[13]
	z := m.M[2]*p.X + m.M[6]*p.Y + m.M[10]*p.Z + m.M[14]
	w := m.M[3]*p.X + m.M[7]*p.Y + m.M[11]*p.Z + m.M[15]
	if w != 1 && w != 0 {
		x, y, z = x/w, y/w, z/w
	}
	return Vec3{X: x, Y: y, Z: z}
}

// Raw returns the 16 elements in memory order.
func (m *Matrix4) Raw() []float32 {
	return m.M[:]
}

// Bytes returns the little-endian packed matrix (Matrix4Size bytes).
func (m Matrix4) Bytes() []byte {
	buf := make([]byte, Matrix4Size)
	m.put(buf)
	return buf
}

// put writes the packed matrix into dst, which must hold Matrix4Size bytes.
func (m *Matrix4) put(dst []byte) {
	for i, v := range m.M {
		binary.LittleEndian.PutUint32(dst[i*4:], math.Float32bits(v))
	}
}

// Matrix4FromBytes decodes a matrix packed by Bytes.
func Matrix4FromBytes(b []byte) Matrix4 {
	var m Matrix4
	for i := range m.M {
		m.M[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return m
}
