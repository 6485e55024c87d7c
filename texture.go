package trapeze

import (
	"fmt"
	"image"
	_ "image/gif" // register GIF decoder
	_ "image/jpeg" // register JPEG decoder
	_ "image/png" // register PNG decoder
	"io"
	"os"
	"path/filepath"

	_ "golang.org/x/image/bmp"  // register BMP decoder
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff" // register TIFF decoder
	_ "golang.org/x/image/webp" // register WebP decoder
)

// DefaultMaxTextureSize is the largest texture edge DecodeTexture keeps
// without downscaling.
const DefaultMaxTextureSize = 2048

// DecodeTexture decodes an image and converts it to RGBA with its origin
// at (0, 0). Images with an edge longer than maxSize are scaled down,
// preserving aspect ratio, with a Catmull-Rom filter. maxSize <= 0 means
// DefaultMaxTextureSize.
func DecodeTexture(r io.Reader, maxSize int) (*image.RGBA, error) {
	src, format, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("decode texture: %w", err)
	}
	if maxSize <= 0 {
		maxSize = DefaultMaxTextureSize
	}

	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return nil, fmt.Errorf("%w: %s texture is empty", ErrConfigurationMismatch, format)
	}

	if w <= maxSize && h <= maxSize {
		dst := image.NewRGBA(image.Rect(0, 0, w, h))
		draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)
		return dst, nil
	}

	if w >= h {
		h = max(1, h*maxSize/w)
		w = maxSize
	} else {
		w = max(1, w*maxSize/h)
		h = maxSize
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Src, nil)
	Logger().Debug("trapeze: texture downscaled",
		"format", format, "from", b.Size(), "to", dst.Bounds().Size())
	return dst, nil
}

// LoadTexture decodes the image at path and uploads it to device.
func LoadTexture(device Device, path string, maxSize int) (Texture, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open texture: %w", err)
	}
	defer f.Close()

	img, err := DecodeTexture(f, maxSize)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	tex, err := device.NewTexture(filepath.Base(path), img)
	if err != nil {
		return nil, fmt.Errorf("%w: texture %s: %w", ErrAllocation, path, err)
	}
	return tex, nil
}
