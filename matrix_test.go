package trapeze

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"
)

const eps = 1e-5

func approxEqual(a, b float32) bool {
	return math.Abs(float64(a-b)) < eps
}

func approxVec(a, b Vec3) bool {
	return approxEqual(a.X, b.X) && approxEqual(a.Y, b.Y) && approxEqual(a.Z, b.Z)
}

// toDense converts a column-major Matrix4 into a row-major gonum matrix.
func toDense(m Matrix4) *mat.Dense {
	data := make([]float64, 16)
	for row := 0; row < 4; row++ {
		for col := 0; col < 4; col++ {
			data[row*4+col] = float64(m.M[col*4+row])
		}
	}
	return mat.NewDense(4, 4, data)
}

func TestIdentity4(t *testing.T) {
	id := Identity4()
	p := Vec3{X: 3, Y: -2, Z: 7}
	if got := id.TransformPoint(p); got != p {
		t.Errorf("Identity4().TransformPoint(%v) = %v", p, got)
	}
	if got := id.Multiply(id); got != id {
		t.Errorf("I*I = %v, want identity", got)
	}
}

func TestMultiplyMatchesGonum(t *testing.T) {
	a := Translation4(1, 2, 3).RotateXYZ(0.3, -1.1, 2.0).Scale(2, 3, 4)
	b := Perspective(Radians(85), 1.5, 0.01, 100).Multiply(RotationY4(0.7))

	got := toDense(a.Multiply(b))
	var want mat.Dense
	want.Mul(toDense(a), toDense(b))

	if !mat.EqualApprox(got, &want, 1e-4) {
		t.Errorf("Multiply mismatch:\ngot  %v\nwant %v", mat.Formatted(got), mat.Formatted(&want))
	}
}

func TestRotations(t *testing.T) {
	quarter := float32(math.Pi / 2)
	tests := []struct {
		name string
		m    Matrix4
		in   Vec3
		want Vec3
	}{
		{"X rotates Y to Z", RotationX4(quarter), Vec3{Y: 1}, Vec3{Z: 1}},
		{"Y rotates Z to X", RotationY4(quarter), Vec3{Z: 1}, Vec3{X: 1}},
		{"Y rotates X to -Z", RotationY4(quarter), Vec3{X: 1}, Vec3{Z: -1}},
		{"Z rotates X to Y", RotationZ4(quarter), Vec3{X: 1}, Vec3{Y: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.m.TransformPoint(tt.in); !approxVec(got, tt.want) {
				t.Errorf("TransformPoint(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestTranslateRotateScaleOrder(t *testing.T) {
	// Scale acts first, translation last.
	m := Identity4().Translate(1, 0, 0).RotateXYZ(0, float32(math.Pi/2), 0).Scale(2, 2, 2)
	got := m.TransformPoint(Vec3{X: 1})
	want := Vec3{X: 1, Z: -2}
	if !approxVec(got, want) {
		t.Errorf("TransformPoint = %v, want %v", got, want)
	}
}

func TestPerspectiveDepthRange(t *testing.T) {
	p := Perspective(Radians(85), 1, 0.01, 100)
	if near := p.TransformPoint(Vec3{Z: -0.01}); !approxEqual(near.Z, 0) {
		t.Errorf("near plane depth = %v, want 0", near.Z)
	}
	if far := p.TransformPoint(Vec3{Z: -100}); !approxEqual(far.Z, 1) {
		t.Errorf("far plane depth = %v, want 1", far.Z)
	}
}

func TestMatrix4Bytes(t *testing.T) {
	m := Translation4(1.5, -2.25, 3).RotateXYZ(0.1, 0.2, 0.3)
	b := m.Bytes()
	if len(b) != Matrix4Size {
		t.Fatalf("len(Bytes()) = %d, want %d", len(b), Matrix4Size)
	}
	if got := Matrix4FromBytes(b); got != m {
		t.Errorf("Matrix4FromBytes(Bytes()) = %v, want %v", got, m)
	}
	if len(m.Raw()) != Matrix4Elements {
		t.Errorf("len(Raw()) = %d, want %d", len(m.Raw()), Matrix4Elements)
	}
}

func TestRadians(t *testing.T) {
	if got := Radians(180); !approxEqual(got, math.Pi) {
		t.Errorf("Radians(180) = %v, want pi", got)
	}
}
