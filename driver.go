package trapeze

import (
	"context"
	"time"
)

// Scene is driven once per frame: Update with the time since the previous
// frame, then Render.
type Scene interface {
	Update(dt time.Duration)
	Render(ctx context.Context) error
}

// SceneFuncs adapts a pair of functions to the Scene interface.
// Either function may be nil.
type SceneFuncs struct {
	OnUpdate func(dt time.Duration)
	OnRender func(ctx context.Context) error
}

// Update calls OnUpdate.
func (s SceneFuncs) Update(dt time.Duration) {
	if s.OnUpdate != nil {
		s.OnUpdate(dt)
	}
}

// Render calls OnRender.
func (s SceneFuncs) Render(ctx context.Context) error {
	if s.OnRender == nil {
		return nil
	}
	return s.OnRender(ctx)
}

// Driver paces a Scene from frame timestamps. It is not safe for
// concurrent use; ticks must arrive in order from one goroutine.
type Driver struct {
	scene   Scene
	last    time.Time
	frames  uint64
	dropped uint64
}

// NewDriver returns a driver for scene.
func NewDriver(scene Scene) *Driver {
	return &Driver{scene: scene}
}

// Tick runs one frame at timestamp now. The first tick reports an elapsed
// time of zero. A render error drops the frame: it is logged, counted and
// returned, and the next tick proceeds normally.
func (d *Driver) Tick(ctx context.Context, now time.Time) error {
	var elapsed time.Duration
	if !d.last.IsZero() {
		elapsed = now.Sub(d.last)
	}
	d.last = now

	d.scene.Update(elapsed)
	if err := d.scene.Render(ctx); err != nil {
		d.dropped++
		Logger().Warn("trapeze: frame dropped", "frame", d.frames+d.dropped, "error", err)
		return err
	}
	d.frames++
	return nil
}

// Run ticks the scene every interval until ctx is done or frames frames
// have been attempted (0 means no limit). A non-positive interval ticks as
// fast as frames render. Dropped frames do not stop the loop. Run returns
// ctx.Err() when cancelled, nil otherwise.
func (d *Driver) Run(ctx context.Context, interval time.Duration, frames uint64) error {
	var ticks <-chan time.Time
	if interval > 0 {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		ticks = ticker.C
	}

	for attempted := uint64(0); frames == 0 || attempted < frames; attempted++ {
		now, err := d.wait(ctx, ticks)
		if err != nil {
			return err
		}
		_ = d.Tick(ctx, now)
	}
	return nil
}

// wait blocks for the next tick, or only checks ctx when ticks is nil.
func (d *Driver) wait(ctx context.Context, ticks <-chan time.Time) (time.Time, error) {
	if ticks == nil {
		if err := ctx.Err(); err != nil {
			return time.Time{}, err
		}
		return time.Now(), nil
	}
	select {
	case <-ctx.Done():
		return time.Time{}, ctx.Err()
	case now := <-ticks:
		return now, nil
	}
}

// Frames returns the number of frames rendered successfully.
func (d *Driver) Frames() uint64 { return d.frames }

// Dropped returns the number of frames whose render failed.
func (d *Driver) Dropped() uint64 { return d.dropped }
