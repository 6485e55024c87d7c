package trapeze

import (
	"context"
	"fmt"

	"golang.org/x/sync/semaphore"
)

// UniformSize is the size in bytes of one uniform region: the model-view
// matrix followed by the projection matrix, with no padding.
const UniformSize = 2 * Matrix4Size

// DefaultInflight is the usual number of regions: one being written by
// the CPU and up to two still read by the GPU.
const DefaultInflight = 3

// Region is one slot of a Ring: a GPU buffer plus the CPU staging copy of
// what was last written into it.
type Region struct {
	index   int
	buf     Buffer
	staging []byte
}

// Index returns the slot index of the region within its ring.
func (r *Region) Index() int { return r.index }

// Buffer returns the GPU buffer backing the region.
func (r *Region) Buffer() Buffer { return r.buf }

// Bytes returns the bytes last written into the region.
// The slice is owned by the ring and is overwritten when the slot is
// reused.
func (r *Region) Bytes() []byte { return r.staging }

// ModelView decodes the model-view matrix stored in bytes [0, 64).
func (r *Region) ModelView() Matrix4 { return Matrix4FromBytes(r.staging[:Matrix4Size]) }

// Projection decodes the projection matrix stored in bytes [64, 128).
func (r *Region) Projection() Matrix4 {
	return Matrix4FromBytes(r.staging[Matrix4Size:UniformSize])
}

// Ring hands out uniform regions round-robin so the CPU never writes the
// region a previous frame's draw may still be reading.
//
// Without a completion gate the ring performs no fencing. Correctness
// then rests on the caller: the GPU must never lag more than Len()-1
// frames behind submission. WithCompletionGate turns that assumption into
// an enforced bound; Acquire then blocks until a region is released.
//
// A Ring is not safe for concurrent use. Next must be called from a
// single render goroutine in frame order. Release may be called from any
// goroutine.
type Ring struct {
	regions []*Region
	cursor  int
	gate    *semaphore.Weighted
}

// RingOption configures a Ring.
type RingOption func(*ringOptions)

type ringOptions struct {
	label string
	gated bool
}

// WithRingLabel sets the debug label prefix used for region buffers.
func WithRingLabel(label string) RingOption {
	return func(o *ringOptions) {
		o.label = label
	}
}

// WithCompletionGate bounds the number of regions in flight to the ring
// length. Every Acquire must be paired with a Release once the GPU has
// finished with the frame.
func WithCompletionGate() RingOption {
	return func(o *ringOptions) {
		o.gated = true
	}
}

// NewRing allocates count regions of regionSize bytes each.
//
// count must be at least 1; a smaller value is a programming error and
// panics. regionSize must hold two matrices (UniformSize). If any region
// cannot be allocated, the regions created so far are destroyed and an
// error wrapping ErrAllocation is returned.
func NewRing(device Device, count int, regionSize uint64, opts ...RingOption) (*Ring, error) {
	if count < 1 {
		panic(fmt.Sprintf("trapeze: ring region count must be >= 1, got %d", count))
	}
	if regionSize < UniformSize {
		return nil, fmt.Errorf("%w: region size %d is smaller than %d bytes",
			ErrConfigurationMismatch, regionSize, UniformSize)
	}

	o := ringOptions{label: "uniforms"}
	for _, opt := range opts {
		opt(&o)
	}

	r := &Ring{regions: make([]*Region, 0, count)}
	for i := 0; i < count; i++ {
		buf, err := device.NewBuffer(fmt.Sprintf("%s_%d", o.label, i), regionSize,
			BufferUsageUniform|BufferUsageCopyDst)
		if err != nil {
			r.Destroy()
			return nil, fmt.Errorf("%w: region %d of %d: %w", ErrAllocation, i, count, err)
		}
		r.regions = append(r.regions, &Region{
			index:   i,
			buf:     buf,
			staging: make([]byte, regionSize),
		})
	}
	if o.gated {
		r.gate = semaphore.NewWeighted(int64(count))
	}

	Logger().Info("trapeze: uniform ring allocated",
		"regions", count, "regionSize", regionSize, "gated", o.gated)
	return r, nil
}

// Len returns the number of regions.
func (r *Ring) Len() int { return len(r.regions) }

// Cursor returns the index of the region the next call to Next writes.
func (r *Ring) Cursor() int { return r.cursor }

// Region returns the region at index i.
func (r *Ring) Region(i int) *Region { return r.regions[i] }

// Gated reports whether the ring enforces its in-flight bound.
func (r *Ring) Gated() bool { return r.gate != nil }

// Next writes modelView into bytes [0, 64) and projection into bytes
// [64, 128) of the region at the cursor, advances the cursor and returns
// the written region. Whatever the region held before is overwritten.
// Calling Next after Destroy panics.
func (r *Ring) Next(modelView, projection Matrix4) *Region {
	region := r.regions[r.cursor]
	if region.buf == nil {
		panic("trapeze: Next called on a destroyed ring")
	}

	modelView.put(region.staging[:Matrix4Size])
	projection.put(region.staging[Matrix4Size:UniformSize])
	region.buf.Write(0, region.staging[:UniformSize])

	r.cursor++
	if r.cursor == len(r.regions) {
		r.cursor = 0
	}
	return region
}

// Acquire reserves an in-flight slot, blocking until the GPU has released
// one or ctx is done. Without a completion gate it returns immediately.
func (r *Ring) Acquire(ctx context.Context) error {
	if r.gate == nil {
		return nil
	}
	if err := r.gate.Acquire(ctx, 1); err != nil {
		return fmt.Errorf("acquire uniform region: %w", err)
	}
	return nil
}

// Release returns an in-flight slot reserved by Acquire. It is a no-op
// without a completion gate.
func (r *Ring) Release() {
	if r.gate == nil {
		return
	}
	r.gate.Release(1)
}

// Destroy releases all region buffers. The ring must not be used
// afterwards. Destroy is idempotent.
func (r *Ring) Destroy() {
	for _, region := range r.regions {
		if region.buf != nil {
			region.buf.Destroy()
			region.buf = nil
		}
	}
}
