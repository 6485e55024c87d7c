package trapeze

import (
	"context"
	"fmt"
	"time"
)

// Node is a renderable mesh: an immutable vertex buffer uploaded once at
// construction plus a mutable Transform. A Node does not own the Ring or
// the CommandTarget it renders with; both are passed per call.
//
// A Node is not safe for concurrent use. Transform may be changed freely
// between Render calls.
type Node struct {
	Name      string
	Transform Transform

	vertexBuffer Buffer
	vertexCount  int
	texture      Texture
	animator     Animator
	singleDraw   bool
}

// NodeOption configures a Node.
type NodeOption func(*Node)

// WithTexture attaches a texture sampled by the pipeline at TextureSlot.
// The node takes ownership and destroys it with the node, or in NewNode
// if construction fails.
func WithTexture(tex Texture) NodeOption {
	return func(n *Node) {
		n.texture = tex
	}
}

// WithAnimator sets the animator applied by UpdateWithDelta.
func WithAnimator(a Animator) NodeOption {
	return func(n *Node) {
		n.animator = a
	}
}

// WithTransform sets the initial transform.
func WithTransform(t Transform) NodeOption {
	return func(n *Node) {
		n.Transform = t
	}
}

// WithSingleInstance draws the mesh as one non-instanced draw instead of
// the default of one instance per triangle.
func WithSingleInstance() NodeOption {
	return func(n *Node) {
		n.singleDraw = true
	}
}

// NewNode packs vertices in input order and uploads them into one vertex
// buffer of len(vertices)*VertexStride bytes.
//
// The vertices must form a non-empty triangle list; anything else is
// rejected with ErrConfigurationMismatch before any allocation. If the
// vertex buffer cannot be created the error wraps ErrAllocation and a
// texture passed with WithTexture is destroyed.
func NewNode(name string, vertices []Vertex, device Device, opts ...NodeOption) (*Node, error) {
	if len(vertices) == 0 {
		return nil, fmt.Errorf("%w: node %q has no vertices", ErrConfigurationMismatch, name)
	}
	if len(vertices)%3 != 0 {
		return nil, fmt.Errorf("%w: node %q has %d vertices, not a whole number of triangles",
			ErrConfigurationMismatch, name, len(vertices))
	}

	n := &Node{
		Name:        name,
		Transform:   DefaultTransform(),
		vertexCount: len(vertices),
	}
	for _, opt := range opts {
		opt(n)
	}

	buf, err := device.NewBufferWithData(name+"_vertices", PackVertices(vertices), BufferUsageVertex|BufferUsageCopyDst)
	if err != nil {
		if n.texture != nil {
			n.texture.Destroy()
		}
		return nil, fmt.Errorf("%w: vertex buffer for node %q: %w", ErrAllocation, name, err)
	}
	n.vertexBuffer = buf
	return n, nil
}

// VertexCount returns the number of vertices in the mesh.
func (n *Node) VertexCount() int { return n.vertexCount }

// VertexBuffer returns the node's vertex buffer.
func (n *Node) VertexBuffer() Buffer { return n.vertexBuffer }

// Texture returns the attached texture, or nil.
func (n *Node) Texture() Texture { return n.texture }

// InstanceCount returns the instance count Render passes to Draw:
// one per triangle unless WithSingleInstance was given.
func (n *Node) InstanceCount() int {
	if n.singleDraw {
		return 1
	}
	return n.vertexCount / 3
}

// ModelMatrix returns the model matrix of the current Transform.
func (n *Node) ModelMatrix() Matrix4 {
	return n.Transform.ModelMatrix()
}

// UpdateWithDelta advances the node's animation by dt.
func (n *Node) UpdateWithDelta(dt time.Duration) {
	if n.animator != nil {
		n.animator.Animate(&n.Transform, dt)
	}
}

// RenderOption configures a single Render call.
type RenderOption func(*renderOptions)

type renderOptions struct {
	clear  Color
	parent *Matrix4
}

// WithClearColor clears the drawable to c instead of DefaultClearColor.
func WithClearColor(c Color) RenderOption {
	return func(o *renderOptions) {
		o.clear = c
	}
}

// WithParent premultiplies the model matrix by a parent model-view
// matrix, e.g. a camera or world transform.
func WithParent(m Matrix4) RenderOption {
	return func(o *renderOptions) {
		o.parent = &m
	}
}

// Render draws the node with one render pass on target:
//
//  1. compute the model matrix (times the parent, if any)
//  2. write it and projection into the next ring region
//  3. begin a pass cleared to the clear color
//  4. bind pipeline, vertex buffer (slot 0), uniforms (slot 1), texture (slot 2)
//  5. draw every vertex, InstanceCount instances
//  6. finish: end, submit and present
//
// The ring slot is released once the GPU reports the frame complete, or
// immediately if the frame fails. Failures wrap ErrSubmission and the
// frame is dropped; nothing is retried.
func (n *Node) Render(ctx context.Context, target CommandTarget, ring *Ring, projection Matrix4, opts ...RenderOption) error {
	o := renderOptions{clear: DefaultClearColor}
	for _, opt := range opts {
		opt(&o)
	}

	modelView := n.ModelMatrix()
	if o.parent != nil {
		modelView = o.parent.Multiply(modelView)
	}

	if err := ring.Acquire(ctx); err != nil {
		return fmt.Errorf("%w: %w", ErrSubmission, err)
	}
	region := ring.Next(modelView, projection)

	pass, err := target.BeginPass(o.clear)
	if err != nil {
		ring.Release()
		return fmt.Errorf("%w: begin pass for node %q: %w", ErrSubmission, n.Name, err)
	}

	pass.SetPipeline()
	pass.SetVertexBuffer(VertexBufferSlot, n.vertexBuffer)
	pass.SetUniforms(UniformSlot, region.Buffer())
	if n.texture != nil {
		pass.SetTexture(TextureSlot, n.texture)
	}

	//nolint:gosec // G115: vertex counts are bounded by buffer size
	vertexCount, instanceCount := uint32(n.vertexCount), uint32(n.InstanceCount())
	pass.Draw(vertexCount, instanceCount)

	Logger().Debug("trapeze: draw",
		"node", n.Name, "region", region.Index(),
		"vertices", vertexCount, "instances", instanceCount)

	if err := pass.Finish(ring.Release); err != nil {
		return fmt.Errorf("%w: finish frame for node %q: %w", ErrSubmission, n.Name, err)
	}
	return nil
}

// Destroy releases the vertex buffer and the attached texture.
func (n *Node) Destroy() {
	if n.vertexBuffer != nil {
		n.vertexBuffer.Destroy()
		n.vertexBuffer = nil
	}
	if n.texture != nil {
		n.texture.Destroy()
		n.texture = nil
	}
}
