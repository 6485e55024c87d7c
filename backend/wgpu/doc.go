// Package wgpu implements the trapeze capability interfaces on top of the
// gogpu WebGPU HAL.
//
// A Device wraps a hal.Device and hal.Queue, either opened standalone with
// Open or borrowed from a host through NewFromProvider. A Target owns the
// built-in textured pipeline and records one render pass per frame into
// either an offscreen texture or a host surface view:
//
//	dev, err := wgpu.Open("vulkan")
//	if err != nil { ... }
//	defer dev.Close()
//
//	target, err := wgpu.NewOffscreenTarget(dev, 640, 480)
//	if err != nil { ... }
//	defer target.Close()
//
//	ring, _ := trapeze.NewRing(dev, trapeze.DefaultInflight, trapeze.UniformSize,
//		trapeze.WithCompletionGate())
//	node, _ := trapeze.NewCube(dev)
//	err = node.Render(ctx, target, ring, projection)
//
// Submitted frames are retired by a completion goroutine owned by the
// Target. It waits on each frame's fence in submission order and then runs
// the frame's completion callback, which is how gated rings learn that a
// uniform region may be reused.
//
// The noop HAL backend is always available and is what the tests run on.
// Other backends register themselves when their package is imported, e.g.
//
//	import _ "github.com/gogpu/wgpu/hal/vulkan"
package wgpu
