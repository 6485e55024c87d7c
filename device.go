package trapeze

import "image"

// BufferUsage specifies how a buffer will be bound.
// These flags can be combined with bitwise OR.
type BufferUsage uint32

const (
	// BufferUsageVertex allows the buffer to be bound as a vertex buffer.
	BufferUsageVertex BufferUsage = 1 << iota

	// BufferUsageUniform allows the buffer to be bound as a uniform block.
	BufferUsageUniform

	// BufferUsageCopyDst allows the CPU to write into the buffer.
	BufferUsageCopyDst
)

// Device allocates GPU-visible memory. It is supplied by the host and is
// never owned by the render core. Every allocation may fail.
type Device interface {
	// NewBuffer creates an uninitialized buffer of size bytes.
	NewBuffer(label string, size uint64, usage BufferUsage) (Buffer, error)

	// NewBufferWithData creates a buffer holding a copy of data.
	NewBufferWithData(label string, data []byte, usage BufferUsage) (Buffer, error)

	// NewTexture creates a sampled 2D texture from img.
	NewTexture(label string, img *image.RGBA) (Texture, error)
}

// Buffer is a block of GPU-visible memory.
type Buffer interface {
	// Size returns the buffer size in bytes.
	Size() uint64

	// Write copies data into the buffer at offset. The caller guarantees
	// the GPU is not reading the written range.
	Write(offset uint64, data []byte)

	// Destroy releases the buffer. The buffer must not be used afterwards.
	Destroy()
}

// Texture is a sampled 2D image.
type Texture interface {
	Width() int
	Height() int
	Destroy()
}

// CommandTarget is a configured pipeline plus a queue and a drawable
// surface. The core only binds state and submits draws through it.
type CommandTarget interface {
	// BeginPass acquires the current drawable and begins a render pass
	// that clears it to clear. A failure means the frame cannot be drawn.
	BeginPass(clear Color) (Pass, error)
}

// Pass records the commands of one frame.
type Pass interface {
	// SetPipeline binds the target's pipeline state.
	SetPipeline()

	// SetVertexBuffer binds buf at the given vertex buffer slot.
	SetVertexBuffer(slot uint32, buf Buffer)

	// SetUniforms binds a uniform region at the given slot.
	SetUniforms(slot uint32, buf Buffer)

	// SetTexture binds a texture at the given slot.
	SetTexture(slot uint32, tex Texture)

	// Draw draws vertexCount vertices starting at 0, instanceCount times.
	Draw(vertexCount, instanceCount uint32)

	// Finish ends the pass, submits it and presents the drawable.
	// onComplete, if non-nil, runs once the GPU has finished the frame,
	// possibly on another goroutine. It also runs when Finish fails.
	Finish(onComplete func()) error
}

// Fixed bind slots shared by the core and every pipeline.
const (
	VertexBufferSlot uint32 = 0
	UniformSlot      uint32 = 1
	TextureSlot      uint32 = 2
)
