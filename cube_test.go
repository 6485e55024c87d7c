package trapeze

import "testing"

func TestCubeVertices(t *testing.T) {
	verts := CubeVertices()
	if len(verts) != 36 {
		t.Fatalf("len = %d, want 36", len(verts))
	}
	for i, v := range verts {
		for _, c := range []float32{v.X, v.Y, v.Z} {
			if c != 1 && c != -1 {
				t.Fatalf("vertex %d = %+v is not a cube corner", i, v)
			}
		}
		if v.S < 0 || v.S > 1 || v.T < 0 || v.T > 1 {
			t.Errorf("vertex %d texcoord (%v, %v) out of range", i, v.S, v.T)
		}
	}
}

func TestCubeFacesPointOutward(t *testing.T) {
	verts := CubeVertices()
	for tri := 0; tri < len(verts)/3; tri++ {
		a, b, c := verts[tri*3], verts[tri*3+1], verts[tri*3+2]
		e1 := Vec3{b.X - a.X, b.Y - a.Y, b.Z - a.Z}
		e2 := Vec3{c.X - a.X, c.Y - a.Y, c.Z - a.Z}
		n := Vec3{
			X: e1.Y*e2.Z - e1.Z*e2.Y,
			Y: e1.Z*e2.X - e1.X*e2.Z,
			Z: e1.X*e2.Y - e1.Y*e2.X,
		}
		center := Vec3{(a.X + b.X + c.X) / 3, (a.Y + b.Y + c.Y) / 3, (a.Z + b.Z + c.Z) / 3}
		if n.X*center.X+n.Y*center.Y+n.Z*center.Z <= 0 {
			t.Errorf("triangle %d winds inward", tri)
		}
	}
}

func TestNewCube(t *testing.T) {
	dev := newFakeDevice()
	cube, err := NewCube(dev, WithSingleInstance())
	if err != nil {
		t.Fatalf("NewCube() error = %v", err)
	}
	if cube.VertexCount() != 36 || cube.InstanceCount() != 1 {
		t.Errorf("VertexCount() = %d, InstanceCount() = %d", cube.VertexCount(), cube.InstanceCount())
	}
	if cube.Name != "cube" {
		t.Errorf("Name = %q", cube.Name)
	}
}
