package wgpu

import (
	"fmt"
	"image"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// copyPitchAlignment is the required BytesPerRow alignment for
// texture-to-buffer copies.
const copyPitchAlignment = 256

// alignedRowBytes returns the padded row pitch for a copy of width pixels.
func alignedRowBytes(width uint32) uint32 {
	return (width*4 + copyPitchAlignment - 1) &^ (copyPitchAlignment - 1)
}

// ReadPixels copies the offscreen color texture back to the CPU. The copy
// is queued after every frame already submitted, so the result reflects
// the last finished frame.
func (t *Target) ReadPixels() (*image.RGBA, error) {
	if t.closed {
		return nil, ErrClosed
	}
	if t.colorTex == nil {
		return nil, ErrNotOffscreen
	}
	dev := t.dev
	w, h := t.width, t.height
	pitch := alignedRowBytes(w)
	stagingSize := uint64(pitch) * uint64(h)

	staging, err := dev.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "readback_staging",
		Size:  stagingSize,
		Usage: gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("create staging buffer: %w", err)
	}
	defer dev.device.DestroyBuffer(staging)

	encoder, err := dev.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{
		Label: "readback_encoder",
	})
	if err != nil {
		return nil, fmt.Errorf("create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding("readback"); err != nil {
		return nil, fmt.Errorf("begin encoding: %w", err)
	}

	encoder.TransitionTextures([]hal.TextureBarrier{{
		Texture: t.colorTex,
		Usage: hal.TextureUsageTransition{
			OldUsage: gputypes.TextureUsageRenderAttachment,
			NewUsage: gputypes.TextureUsageCopySrc,
		},
	}})
	encoder.CopyTextureToBuffer(t.colorTex, staging, []hal.BufferTextureCopy{{
		BufferLayout: hal.ImageDataLayout{Offset: 0, BytesPerRow: pitch, RowsPerImage: h},
		TextureBase:  hal.ImageCopyTexture{Texture: t.colorTex, MipLevel: 0},
		Size:         hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
	}})
	encoder.TransitionTextures([]hal.TextureBarrier{{
		Texture: t.colorTex,
		Usage: hal.TextureUsageTransition{
			OldUsage: gputypes.TextureUsageCopySrc,
			NewUsage: gputypes.TextureUsageRenderAttachment,
		},
	}})

	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		return nil, fmt.Errorf("end encoding: %w", err)
	}

	dev.submitMu.Lock()
	fence, err := dev.device.CreateFence()
	if err != nil {
		dev.device.FreeCommandBuffer(cmdBuf)
		dev.submitMu.Unlock()
		return nil, fmt.Errorf("create fence: %w", err)
	}
	err = dev.queue.Submit([]hal.CommandBuffer{cmdBuf}, fence, 1)
	dev.submitMu.Unlock()
	defer func() {
		dev.submitMu.Lock()
		dev.device.FreeCommandBuffer(cmdBuf)
		dev.device.DestroyFence(fence)
		dev.submitMu.Unlock()
	}()
	if err != nil {
		return nil, fmt.Errorf("submit: %w", err)
	}

	ok, err := dev.device.Wait(fence, 1, t.waitTimeout)
	if err != nil || !ok {
		return nil, fmt.Errorf("wait for GPU: ok=%v err=%w", ok, err)
	}

	readback := make([]byte, stagingSize)
	if err := dev.queue.ReadBuffer(staging, 0, readback); err != nil {
		return nil, fmt.Errorf("readback: %w", err)
	}

	img := image.NewRGBA(image.Rect(0, 0, int(w), int(h)))
	unpackBGRA(img, readback, int(pitch))
	return img, nil
}

// unpackBGRA strips row padding from BGRA rows of the given pitch and
// stores them as RGBA into dst.
func unpackBGRA(dst *image.RGBA, src []byte, pitch int) {
	w, h := dst.Bounds().Dx(), dst.Bounds().Dy()
	for y := 0; y < h; y++ {
		row := src[y*pitch : y*pitch+w*4]
		out := dst.Pix[y*dst.Stride : y*dst.Stride+w*4]
		for i := 0; i < len(row); i += 4 {
			out[i+0] = row[i+2]
			out[i+1] = row[i+1]
			out[i+2] = row[i+0]
			out[i+3] = row[i+3]
		}
	}
}
