// Package trapeze is a small retained-mode 3D render core: meshes with a
// transform, drawn once per frame through a ring of uniform regions.
//
// # Overview
//
// A frame is a single render pass. The host supplies the GPU through three
// capability interfaces (Device, CommandTarget and Pass); the core never
// owns them. The backend/wgpu package implements them over the gogpu
// WebGPU HAL.
//
//	ring, err := trapeze.NewRing(device, trapeze.DefaultInflight, trapeze.UniformSize,
//		trapeze.WithCompletionGate())
//	cube, err := trapeze.NewCube(device,
//		trapeze.WithAnimator(trapeze.SpinAnimator{Rate: trapeze.Vec3{Y: 0.5}}))
//
//	driver := trapeze.NewDriver(trapeze.SceneFuncs{
//		OnUpdate: cube.UpdateWithDelta,
//		OnRender: func(ctx context.Context) error {
//			return cube.Render(ctx, target, ring, projection, trapeze.WithParent(world))
//		},
//	})
//	err = driver.Run(ctx, time.Second/60, 0)
//
// # Uniform ring
//
// Each Render writes the model-view and projection matrices (128 bytes,
// column-major float32) into the next region of a Ring and advances it
// round-robin. With N regions, a region is rewritten N frames later. By
// default the ring trusts the host not to run more than N frames ahead of
// the GPU; WithCompletionGate makes Render block until the region's last
// frame has completed.
//
// # Coordinates
//
// Model matrices compose translate, then rotate X, Y, Z, then scale, so a
// node's position is applied outermost. Perspective produces WebGPU clip
// space with depth in [0, 1].
//
// # Concurrency
//
// Ring, Node and Driver are meant for one render goroutine. Only Ring's
// Release may be called from another goroutine, which is what backends do
// when the GPU reports a frame complete.
package trapeze

// Version information
const (
	// Version is the current version of the library
	Version = "0.1.0"

	// VersionMajor is the major version
	VersionMajor = 0

	// VersionMinor is the minor version
	VersionMinor = 1

	// VersionPatch is the patch version
	VersionPatch = 0
)
