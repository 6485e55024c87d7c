package trapeze

// cubeFace is one side of the unit cube, corners counter-clockwise from
// the top-left as seen from outside.
type cubeFace struct {
	corners [4]Vec3
	color   [4]float32
}

var cubeFaces = [6]cubeFace{
	{ // front
		corners: [4]Vec3{{-1, 1, 1}, {-1, -1, 1}, {1, -1, 1}, {1, 1, 1}},
		color:   [4]float32{1, 0, 0, 1},
	},
	{ // left
		corners: [4]Vec3{{-1, 1, -1}, {-1, -1, -1}, {-1, -1, 1}, {-1, 1, 1}},
		color:   [4]float32{0, 1, 0, 1},
	},
	{ // right
		corners: [4]Vec3{{1, 1, 1}, {1, -1, 1}, {1, -1, -1}, {1, 1, -1}},
		color:   [4]float32{0, 0, 1, 1},
	},
	{ // top
		corners: [4]Vec3{{-1, 1, -1}, {-1, 1, 1}, {1, 1, 1}, {1, 1, -1}},
		color:   [4]float32{0.1, 0.6, 0.4, 1},
	},
	{ // bottom
		corners: [4]Vec3{{-1, -1, 1}, {-1, -1, -1}, {1, -1, -1}, {1, -1, 1}},
		color:   [4]float32{1, 1, 0, 1},
	},
	{ // back
		corners: [4]Vec3{{1, 1, -1}, {1, -1, -1}, {-1, -1, -1}, {-1, 1, -1}},
		color:   [4]float32{0, 1, 1, 1},
	},
}

// cubeTexCoords are the texture coordinates of a face's corners.
var cubeTexCoords = [4][2]float32{{0, 0}, {0, 1}, {1, 1}, {1, 0}}

// cubeCornerOrder splits a face into two counter-clockwise triangles.
var cubeCornerOrder = [6]int{0, 1, 2, 0, 2, 3}

// CubeVertices returns a 2x2x2 cube centered at the origin as a triangle
// list of 36 vertices, each face with its own color and a full 0..1
// texture mapping.
func CubeVertices() []Vertex {
	verts := make([]Vertex, 0, len(cubeFaces)*len(cubeCornerOrder))
	for _, f := range cubeFaces {
		for _, c := range cubeCornerOrder {
			p, uv := f.corners[c], cubeTexCoords[c]
			verts = append(verts, Vertex{
				X: p.X, Y: p.Y, Z: p.Z,
				R: f.color[0], G: f.color[1], B: f.color[2], A: f.color[3],
				S: uv[0], T: uv[1],
			})
		}
	}
	return verts
}

// NewCube builds a cube node. Options are applied as for NewNode.
func NewCube(device Device, opts ...NodeOption) (*Node, error) {
	return NewNode("cube", CubeVertices(), device, opts...)
}
