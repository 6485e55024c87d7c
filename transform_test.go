package trapeze

import (
	"math"
	"testing"
)

func TestDefaultTransform(t *testing.T) {
	tr := DefaultTransform()
	if tr.Scale != 1 || tr.Position != (Vec3{}) || tr.Rotation != (Vec3{}) {
		t.Errorf("DefaultTransform() = %+v", tr)
	}
	if got := tr.ModelMatrix(); got != Identity4() {
		t.Errorf("default ModelMatrix() = %v, want identity", got)
	}
}

func TestModelMatrixIdempotent(t *testing.T) {
	tr := Transform{
		Position: Vec3{X: 0.3, Y: -1, Z: 2},
		Rotation: Vec3{X: 0.4, Y: 1.2, Z: -0.7},
		Scale:    0.75,
	}
	a := tr.ModelMatrix()
	b := tr.ModelMatrix()
	for i := range a.M {
		if math.Float32bits(a.M[i]) != math.Float32bits(b.M[i]) {
			t.Fatalf("element %d differs: %v vs %v", i, a.M[i], b.M[i])
		}
	}
}

func TestModelMatrixCompositionOrder(t *testing.T) {
	tests := []struct {
		name string
		tr   Transform
		in   Vec3
		want Vec3
	}{
		{
			name: "translation moves origin",
			tr:   Transform{Position: Vec3{X: 1}, Scale: 1},
			in:   Vec3{},
			want: Vec3{X: 1},
		},
		{
			name: "rotation does not move the translated origin",
			tr:   Transform{Position: Vec3{X: 1}, Rotation: Vec3{Y: math.Pi / 2}, Scale: 1},
			in:   Vec3{},
			want: Vec3{X: 1},
		},
		{
			name: "scale before rotation before translation",
			tr:   Transform{Position: Vec3{X: 1}, Rotation: Vec3{Y: math.Pi / 2}, Scale: 2},
			in:   Vec3{X: 1},
			want: Vec3{X: 1, Z: -2},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.tr.ModelMatrix().TransformPoint(tt.in)
			if !approxVec(got, tt.want) {
				t.Errorf("ModelMatrix().TransformPoint(%v) = %v, want %v", tt.in, got, tt.want)
			}

			// Hand-composed translate * rotate * scale must agree.
			hand := Translation4(tt.tr.Position.X, tt.tr.Position.Y, tt.tr.Position.Z).
				Multiply(RotationX4(tt.tr.Rotation.X)).
				Multiply(RotationY4(tt.tr.Rotation.Y)).
				Multiply(RotationZ4(tt.tr.Rotation.Z)).
				Multiply(Scaling4(tt.tr.Scale, tt.tr.Scale, tt.tr.Scale))
			if h := hand.TransformPoint(tt.in); !approxVec(h, got) {
				t.Errorf("hand composition = %v, ModelMatrix = %v", h, got)
			}
		})
	}
}
