package wgpu

import (
	"errors"
	"fmt"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/trapeze"
	"github.com/gogpu/trapeze/internal/cache"
	"github.com/gogpu/wgpu/hal"
)

// DefaultWaitTimeout bounds how long the completion goroutine waits on a
// single frame's fence.
const DefaultWaitTimeout = 5 * time.Second

// defaultQueueDepth is the number of submitted frames that may await
// completion before Finish blocks.
const defaultQueueDepth = 8

// DefaultBindGroupLimit bounds the bind group cache. One group exists per
// (uniform region, texture) pair in use.
const DefaultBindGroupLimit = 64

// TargetOption configures a Target.
type TargetOption func(*Target)

// WithWaitTimeout sets the per-frame fence wait timeout.
func WithWaitTimeout(d time.Duration) TargetOption {
	return func(t *Target) {
		t.waitTimeout = d
	}
}

// WithBindGroupLimit sets the bind group cache size.
func WithBindGroupLimit(n int) TargetOption {
	return func(t *Target) {
		if n > 0 {
			t.bindGroupLimit = n
		}
	}
}

// WithQueueDepth sets how many submitted frames may await completion
// before Finish blocks.
func WithQueueDepth(n int) TargetOption {
	return func(t *Target) {
		if n > 0 {
			t.queueDepth = n
		}
	}
}

// submission is one frame handed to the completion goroutine.
type submission struct {
	cmdBuf     hal.CommandBuffer
	fence      hal.Fence
	onComplete func()
}

type bindKey struct {
	uniforms *Buffer
	texture  *Texture
}

// retiredGroup is an evicted bind group that may still be referenced by
// frames up to and including frame, the one being recorded at eviction.
type retiredGroup struct {
	group hal.BindGroup
	frame uint64
}

// Target implements trapeze.CommandTarget. It renders either into an
// owned offscreen texture or into a surface view supplied by the host each
// frame. Begin/Finish must be called from one goroutine.
type Target struct {
	dev      *Device
	pipeline *Pipeline

	width, height uint32

	// Offscreen color target; nil for surface targets.
	colorTex  hal.Texture
	colorView hal.TextureView

	// Surface view for the current frame; not owned.
	surfaceView hal.TextureView

	bindGroups     *cache.Cache[bindKey, hal.BindGroup]
	bindGroupLimit int
	retired        []retiredGroup

	waitTimeout time.Duration
	queueDepth  int
	pending     chan submission
	worker      sync.WaitGroup
	closed      bool
	frames      uint64
	completed   atomic.Uint64
}

// NewOffscreenTarget creates a target that renders into an owned
// BGRA8Unorm texture of the given size, readable with ReadPixels.
func NewOffscreenTarget(dev *Device, width, height uint32, opts ...TargetOption) (*Target, error) {
	if width == 0 || height == 0 {
		return nil, fmt.Errorf("%w: offscreen target %dx%d", trapeze.ErrConfigurationMismatch, width, height)
	}
	t, err := newTarget(dev, gputypes.TextureFormatBGRA8Unorm, opts)
	if err != nil {
		return nil, err
	}
	if err := t.createColorTexture(width, height); err != nil {
		t.Close()
		return nil, err
	}
	return t, nil
}

// NewSurfaceTarget creates a target that renders into host surface views
// in the device's surface format. SetSurfaceTarget must be called before
// each frame.
func NewSurfaceTarget(dev *Device, opts ...TargetOption) (*Target, error) {
	return newTarget(dev, dev.SurfaceFormat(), opts)
}

func newTarget(dev *Device, format gputypes.TextureFormat, opts []TargetOption) (*Target, error) {
	pipeline, err := NewPipeline(dev, format)
	if err != nil {
		return nil, err
	}
	t := &Target{
		dev:            dev,
		pipeline:       pipeline,
		bindGroupLimit: DefaultBindGroupLimit,
		waitTimeout:    DefaultWaitTimeout,
		queueDepth:     defaultQueueDepth,
	}
	for _, opt := range opts {
		opt(t)
	}
	t.bindGroups = cache.New[bindKey, hal.BindGroup](t.bindGroupLimit, func(_ bindKey, bg hal.BindGroup) {
		t.retired = append(t.retired, retiredGroup{group: bg, frame: t.frames + 1})
	})
	t.pending = make(chan submission, t.queueDepth)
	t.worker.Add(1)
	go t.complete()
	return t, nil
}

func (t *Target) createColorTexture(width, height uint32) error {
	tex, err := t.dev.device.CreateTexture(&hal.TextureDescriptor{
		Label:         "target_color",
		Size:          hal.Extent3D{Width: width, Height: height, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        gputypes.TextureFormatBGRA8Unorm,
		Usage:         gputypes.TextureUsageRenderAttachment | gputypes.TextureUsageCopySrc,
	})
	if err != nil {
		return fmt.Errorf("create target color texture: %w", err)
	}
	t.colorTex = tex

	view, err := t.dev.device.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label: "target_color_view",
	})
	if err != nil {
		return fmt.Errorf("create target color view: %w", err)
	}
	t.colorView = view
	t.width, t.height = width, height
	return nil
}

// SetSurfaceTarget sets the view the next frame renders into. The caller
// keeps ownership of view and presents it after Finish returns.
func (t *Target) SetSurfaceTarget(view hal.TextureView, width, height uint32) {
	t.surfaceView = view
	t.width, t.height = width, height
}

// Size returns the current target size.
func (t *Target) Size() (width, height uint32) { return t.width, t.height }

// Frames returns the number of frames submitted.
func (t *Target) Frames() uint64 { return t.frames }

// Pipeline returns the target's pipeline.
func (t *Target) Pipeline() *Pipeline { return t.pipeline }

// BeginPass implements trapeze.CommandTarget.
func (t *Target) BeginPass(clear trapeze.Color) (trapeze.Pass, error) {
	if t.closed {
		return nil, ErrClosed
	}
	view := t.colorView
	if view == nil {
		view = t.surfaceView
	}
	if view == nil {
		return nil, ErrNoSurface
	}
	t.sweepRetired(t.completed.Load())

	encoder, err := t.dev.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{
		Label: "frame_encoder",
	})
	if err != nil {
		return nil, fmt.Errorf("create command encoder: %w", err)
	}
	if err := beginEncoding(encoder, "frame"); err != nil {
		return nil, err
	}

	rp := encoder.BeginRenderPass(&hal.RenderPassDescriptor{
		Label: "frame_pass",
		ColorAttachments: []hal.RenderPassColorAttachment{{
			View:       view,
			LoadOp:     gputypes.LoadOpClear,
			StoreOp:    gputypes.StoreOpStore,
			ClearValue: gputypes.Color{R: clear.R, G: clear.G, B: clear.B, A: clear.A},
		}},
	})
	return &pass{target: t, encoder: encoder, rp: rp}, nil
}

// beginEncoding starts recording on encoder, discarding it on failure.
func beginEncoding(encoder hal.CommandEncoder, label string) error {
	if err := encoder.BeginEncoding(label); err != nil {
		encoder.DiscardEncoding()
		return fmt.Errorf("begin encoding: %w", err)
	}
	return nil
}

// bindGroup returns the cached bind group for a uniform region and
// texture, creating it on first use.
func (t *Target) bindGroup(uniforms *Buffer, tex *Texture) (hal.BindGroup, error) {
	if tex == nil {
		tex = t.pipeline.white
	}
	bg, err := t.bindGroups.GetOrCreate(bindKey{uniforms: uniforms, texture: tex}, func() (hal.BindGroup, error) {
		return t.pipeline.newBindGroup(uniforms, tex)
	})
	if err != nil {
		return nil, fmt.Errorf("create bind group: %w", err)
	}
	return bg, nil
}

// sweepRetired destroys evicted bind groups whose last possible frame has
// completed.
func (t *Target) sweepRetired(completed uint64) {
	kept := t.retired[:0]
	for _, r := range t.retired {
		if r.frame <= completed {
			t.dev.device.DestroyBindGroup(r.group)
			continue
		}
		kept = append(kept, r)
	}
	t.retired = kept
}

// submit hands a finished frame to the GPU and queues it for completion.
func (t *Target) submit(cmdBuf hal.CommandBuffer, onComplete func()) error {
	dev := t.dev
	dev.submitMu.Lock()
	fence, err := dev.device.CreateFence()
	if err != nil {
		dev.device.FreeCommandBuffer(cmdBuf)
		dev.submitMu.Unlock()
		return fmt.Errorf("create fence: %w", err)
	}
	if err := dev.queue.Submit([]hal.CommandBuffer{cmdBuf}, fence, 1); err != nil {
		dev.device.FreeCommandBuffer(cmdBuf)
		dev.device.DestroyFence(fence)
		dev.submitMu.Unlock()
		return fmt.Errorf("submit: %w", err)
	}
	dev.submitMu.Unlock()

	t.frames++
	t.pending <- submission{cmdBuf: cmdBuf, fence: fence, onComplete: onComplete}
	return nil
}

// complete retires submissions in order. A frame whose fence wait fails
// or times out is still retired so that ring slots are never leaked.
func (t *Target) complete() {
	defer t.worker.Done()
	dev := t.dev
	for s := range t.pending {
		ok, err := dev.device.Wait(s.fence, 1, t.waitTimeout)
		if err != nil || !ok {
			slogger().Warn("wgpu: frame wait failed", "ok", ok, "error", err)
		}
		dev.submitMu.Lock()
		dev.device.FreeCommandBuffer(s.cmdBuf)
		dev.device.DestroyFence(s.fence)
		dev.submitMu.Unlock()
		t.completed.Add(1)
		if s.onComplete != nil {
			s.onComplete()
		}
	}
}

// Close waits for every submitted frame to complete and releases the
// target's resources. Safe to call multiple times.
func (t *Target) Close() {
	if t.closed {
		return
	}
	t.closed = true
	close(t.pending)
	t.worker.Wait()

	device := t.dev.device
	t.bindGroups.Clear()
	t.sweepRetired(math.MaxUint64)
	if t.colorView != nil {
		device.DestroyTextureView(t.colorView)
		t.colorView = nil
	}
	if t.colorTex != nil {
		device.DestroyTexture(t.colorTex)
		t.colorTex = nil
	}
	t.pipeline.Destroy()
}

// ForgetBuffer drops cached bind groups that reference buf. Call it before
// destroying a uniform buffer the target has rendered with; the groups
// themselves are released once in-flight frames complete.
func (t *Target) ForgetBuffer(buf trapeze.Buffer) {
	b, ok := buf.(*Buffer)
	if !ok {
		return
	}
	t.bindGroups.DeleteFunc(func(key bindKey, _ hal.BindGroup) bool {
		return key.uniforms == b
	})
}

// pass records one frame. Binding errors are deferred to Finish so that
// the pass methods keep the trapeze.Pass signatures.
type pass struct {
	target  *Target
	encoder hal.CommandEncoder
	rp      hal.RenderPassEncoder

	uniforms *Buffer
	texture  *Texture
	err      error
	ended    bool
}

func (p *pass) fail(err error) {
	if p.err == nil {
		p.err = err
	}
}

func (p *pass) SetPipeline() {
	p.rp.SetPipeline(p.target.pipeline.raw)
}

func (p *pass) SetVertexBuffer(slot uint32, buf trapeze.Buffer) {
	b, ok := buf.(*Buffer)
	if !ok || b.raw == nil {
		p.fail(fmt.Errorf("%w: vertex buffer", ErrForeignResource))
		return
	}
	p.rp.SetVertexBuffer(slot, b.raw, 0)
}

func (p *pass) SetUniforms(slot uint32, buf trapeze.Buffer) {
	if slot != uniformBinding {
		p.fail(fmt.Errorf("%w: uniforms at slot %d, pipeline binds %d",
			trapeze.ErrConfigurationMismatch, slot, uniformBinding))
		return
	}
	b, ok := buf.(*Buffer)
	if !ok || b.raw == nil {
		p.fail(fmt.Errorf("%w: uniform buffer", ErrForeignResource))
		return
	}
	if b.size < trapeze.UniformSize {
		p.fail(fmt.Errorf("%w: uniform buffer is %d bytes", trapeze.ErrConfigurationMismatch, b.size))
		return
	}
	p.uniforms = b
}

func (p *pass) SetTexture(slot uint32, tex trapeze.Texture) {
	if slot != textureBinding {
		p.fail(fmt.Errorf("%w: texture at slot %d, pipeline binds %d",
			trapeze.ErrConfigurationMismatch, slot, textureBinding))
		return
	}
	tx, ok := tex.(*Texture)
	if !ok || tx.view == nil {
		p.fail(fmt.Errorf("%w: texture", ErrForeignResource))
		return
	}
	p.texture = tx
}

func (p *pass) Draw(vertexCount, instanceCount uint32) {
	if p.err != nil {
		return
	}
	if p.uniforms == nil {
		p.fail(errors.New("wgpu: draw without uniforms"))
		return
	}
	bg, err := p.target.bindGroup(p.uniforms, p.texture)
	if err != nil {
		p.fail(err)
		return
	}
	p.rp.SetBindGroup(0, bg, nil)
	p.rp.Draw(vertexCount, instanceCount, 0, 0)
}

// Finish ends the pass and submits it. onComplete runs on the target's
// completion goroutine once the frame's fence signals, or before Finish
// returns if the frame could not be submitted. A pass finished after the
// target was closed is discarded with ErrClosed.
func (p *pass) Finish(onComplete func()) error {
	if p.ended {
		return errors.New("wgpu: pass already finished")
	}
	p.ended = true
	p.rp.End()

	if p.err == nil && p.target.closed {
		p.err = ErrClosed
	}
	if p.err != nil {
		p.encoder.DiscardEncoding()
		runCallback(onComplete)
		return p.err
	}
	cmdBuf, err := p.encoder.EndEncoding()
	if err != nil {
		runCallback(onComplete)
		return fmt.Errorf("end encoding: %w", err)
	}
	if err := p.target.submit(cmdBuf, onComplete); err != nil {
		runCallback(onComplete)
		return err
	}
	return nil
}

func runCallback(f func()) {
	if f != nil {
		f()
	}
}

var (
	_ trapeze.CommandTarget = (*Target)(nil)
	_ trapeze.Pass          = (*pass)(nil)
)
