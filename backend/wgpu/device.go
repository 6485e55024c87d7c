package wgpu

import (
	"fmt"
	"image"
	"log/slog"
	"strings"
	"sync"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/trapeze"
	"github.com/gogpu/wgpu/hal"
	"github.com/gogpu/wgpu/hal/noop"
)

// Backend names accepted by Open.
const (
	BackendNoop   = "noop"
	BackendVulkan = "vulkan"
)

func slogger() *slog.Logger { return trapeze.Logger() }

// Device implements trapeze.Device over a HAL device and queue.
type Device struct {
	instance hal.Instance
	device   hal.Device
	queue    hal.Queue

	// surfaceFormat is the host surface format for provider devices and
	// the default target format otherwise.
	surfaceFormat gputypes.TextureFormat
	adapterName   string
	external      bool

	// submitMu serializes queue submission against the completion
	// goroutines freeing command buffers and fences.
	submitMu sync.Mutex

	closeOnce sync.Once
}

// Open creates a standalone device on the named backend ("noop" or
// "vulkan"). Discrete and integrated GPUs are preferred over software
// adapters. Backends other than noop must be linked in by importing their
// hal package.
func Open(backend string) (*Device, error) {
	var (
		instance hal.Instance
		err      error
	)
	switch strings.ToLower(backend) {
	case "", BackendNoop:
		instance, err = noop.API{}.CreateInstance(nil)
	case BackendVulkan:
		b, ok := hal.GetBackend(gputypes.BackendVulkan)
		if !ok {
			return nil, fmt.Errorf("%w: %s not linked in", ErrUnknownBackend, backend)
		}
		instance, err = b.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, backend)
	}
	if err != nil {
		return nil, fmt.Errorf("create %s instance: %w", backend, err)
	}

	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		instance.Destroy()
		return nil, ErrNoAdapter
	}
	selected := &adapters[0]
	for i := range adapters {
		if adapters[i].Info.DeviceType == gputypes.DeviceTypeDiscreteGPU ||
			adapters[i].Info.DeviceType == gputypes.DeviceTypeIntegratedGPU {
			selected = &adapters[i]
			break
		}
	}

	openDev, err := selected.Adapter.Open(gputypes.Features(0), gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		return nil, fmt.Errorf("open device: %w", err)
	}

	slogger().Info("wgpu: device opened", "backend", backend, "adapter", selected.Info.Name)
	return &Device{
		instance:      instance,
		device:        openDev.Device,
		queue:         openDev.Queue,
		surfaceFormat: gputypes.TextureFormatBGRA8Unorm,
		adapterName:   selected.Info.Name,
	}, nil
}

// NewFromProvider wraps a device owned by a host such as a gogpu window.
// The provider must also expose HalDevice() any and HalQueue() any
// returning hal.Device and hal.Queue. Close on the returned Device does not
// destroy the host's device.
func NewFromProvider(provider gpucontext.DeviceProvider) (*Device, error) {
	type halProvider interface {
		HalDevice() any
		HalQueue() any
	}
	hp, ok := provider.(halProvider)
	if !ok {
		return nil, ErrProviderNotHAL
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return nil, fmt.Errorf("%w: HalDevice is not hal.Device", ErrProviderNotHAL)
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return nil, fmt.Errorf("%w: HalQueue is not hal.Queue", ErrProviderNotHAL)
	}

	format := provider.SurfaceFormat()
	if format == gputypes.TextureFormatUndefined {
		format = gputypes.TextureFormatBGRA8Unorm
	}
	slogger().Debug("wgpu: using shared device", "format", format)
	return &Device{
		device:        device,
		queue:         queue,
		surfaceFormat: format,
		external:      true,
	}, nil
}

// HAL returns the underlying device and queue.
func (d *Device) HAL() (hal.Device, hal.Queue) { return d.device, d.queue }

// SurfaceFormat returns the color format surface targets render in.
func (d *Device) SurfaceFormat() gputypes.TextureFormat { return d.surfaceFormat }

// AdapterName returns the adapter name for standalone devices.
func (d *Device) AdapterName() string { return d.adapterName }

// Close destroys a standalone device and its instance. It is a no-op for
// provider devices and safe to call more than once.
func (d *Device) Close() {
	d.closeOnce.Do(func() {
		if d.external {
			return
		}
		d.device.Destroy()
		if d.instance != nil {
			d.instance.Destroy()
		}
	})
}

func toHALBufferUsage(u trapeze.BufferUsage) gputypes.BufferUsage {
	var out gputypes.BufferUsage
	if u&trapeze.BufferUsageVertex != 0 {
		out |= gputypes.BufferUsageVertex
	}
	if u&trapeze.BufferUsageUniform != 0 {
		out |= gputypes.BufferUsageUniform
	}
	if u&trapeze.BufferUsageCopyDst != 0 {
		out |= gputypes.BufferUsageCopyDst
	}
	return out
}

// NewBuffer implements trapeze.Device.
func (d *Device) NewBuffer(label string, size uint64, usage trapeze.BufferUsage) (trapeze.Buffer, error) {
	raw, err := d.device.CreateBuffer(&hal.BufferDescriptor{
		Label: label,
		Size:  size,
		Usage: toHALBufferUsage(usage) | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", label, err)
	}
	return &Buffer{dev: d, raw: raw, size: size, label: label}, nil
}

// NewBufferWithData implements trapeze.Device.
func (d *Device) NewBufferWithData(label string, data []byte, usage trapeze.BufferUsage) (trapeze.Buffer, error) {
	buf, err := d.NewBuffer(label, uint64(len(data)), usage)
	if err != nil {
		return nil, err
	}
	buf.Write(0, data)
	return buf, nil
}

// NewTexture implements trapeze.Device. The image is uploaded as
// RGBA8Unorm with a single mip level.
func (d *Device) NewTexture(label string, img *image.RGBA) (trapeze.Texture, error) {
	b := img.Bounds()
	if b.Empty() {
		return nil, fmt.Errorf("create %s: %w: empty image", label, trapeze.ErrConfigurationMismatch)
	}
	//nolint:gosec // G115: image dimensions are positive and bounded by device limits
	w, h := uint32(b.Dx()), uint32(b.Dy())

	tex, err := d.device.CreateTexture(&hal.TextureDescriptor{
		Label:         label,
		Size:          hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        gputypes.TextureFormatRGBA8Unorm,
		Usage:         gputypes.TextureUsageTextureBinding | gputypes.TextureUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", label, err)
	}
	view, err := d.device.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label:         label + "_view",
		Format:        gputypes.TextureFormatRGBA8Unorm,
		Dimension:     gputypes.TextureViewDimension2D,
		Aspect:        gputypes.TextureAspectAll,
		MipLevelCount: 1,
	})
	if err != nil {
		d.device.DestroyTexture(tex)
		return nil, fmt.Errorf("create %s view: %w", label, err)
	}

	d.queue.WriteTexture(
		&hal.ImageCopyTexture{Texture: tex, MipLevel: 0},
		tightPixels(img),
		&hal.ImageDataLayout{Offset: 0, BytesPerRow: w * 4, RowsPerImage: h},
		&hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
	)
	return &Texture{dev: d, raw: tex, view: view, width: int(w), height: int(h)}, nil
}

// tightPixels returns img's pixels without row padding.
func tightPixels(img *image.RGBA) []byte {
	b := img.Bounds()
	rowBytes := b.Dx() * 4
	if img.Stride == rowBytes && b.Min == (image.Point{}) {
		return img.Pix[:rowBytes*b.Dy()]
	}
	out := make([]byte, rowBytes*b.Dy())
	for y := 0; y < b.Dy(); y++ {
		start := img.PixOffset(b.Min.X, b.Min.Y+y)
		copy(out[y*rowBytes:(y+1)*rowBytes], img.Pix[start:start+rowBytes])
	}
	return out
}

// Buffer is a trapeze.Buffer backed by a hal.Buffer.
type Buffer struct {
	dev   *Device
	raw   hal.Buffer
	size  uint64
	label string
}

// Size implements trapeze.Buffer.
func (b *Buffer) Size() uint64 { return b.size }

// Write uploads data through the queue.
func (b *Buffer) Write(offset uint64, data []byte) {
	if b.raw == nil {
		return
	}
	b.dev.queue.WriteBuffer(b.raw, offset, data)
}

// Raw returns the hal buffer, or nil after Destroy.
func (b *Buffer) Raw() hal.Buffer { return b.raw }

// Destroy implements trapeze.Buffer. It is safe to call more than once.
func (b *Buffer) Destroy() {
	if b.raw == nil {
		return
	}
	b.dev.device.DestroyBuffer(b.raw)
	b.raw = nil
}

// Texture is a sampled RGBA texture and its default view.
type Texture struct {
	dev           *Device
	raw           hal.Texture
	view          hal.TextureView
	width, height int
}

// Width implements trapeze.Texture.
func (t *Texture) Width() int { return t.width }

// Height implements trapeze.Texture.
func (t *Texture) Height() int { return t.height }

// View returns the texture's default view, or nil after Destroy.
func (t *Texture) View() hal.TextureView { return t.view }

// Destroy implements trapeze.Texture. It is safe to call more than once.
func (t *Texture) Destroy() {
	if t.view != nil {
		t.dev.device.DestroyTextureView(t.view)
		t.view = nil
	}
	if t.raw != nil {
		t.dev.device.DestroyTexture(t.raw)
		t.raw = nil
	}
}

var (
	_ trapeze.Device  = (*Device)(nil)
	_ trapeze.Buffer  = (*Buffer)(nil)
	_ trapeze.Texture = (*Texture)(nil)
)
