// Command trapeze renders the reference cube scene headlessly and writes
// the last frame as a PNG.
//
// Usage:
//
//	trapeze [-config scene.yaml] [-frames n] [-backend noop|vulkan] [-output frame.png] [-v]
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"image/png"
	"log/slog"
	"os"
	"os/signal"

	"github.com/schollz/progressbar/v3"

	"github.com/gogpu/trapeze"
	"github.com/gogpu/trapeze/backend/wgpu"
	"github.com/gogpu/trapeze/internal/config"

	_ "github.com/gogpu/wgpu/hal/vulkan" // register the Vulkan backend
)

func main() {
	var (
		configPath = flag.String("config", "", "scene config file (YAML)")
		frames     = flag.Uint64("frames", 0, "frames to render (overrides config when > 0)")
		backend    = flag.String("backend", "", "hal backend: noop or vulkan (overrides config)")
		output     = flag.String("output", "", "PNG output file (overrides config)")
		verbose    = flag.Bool("v", false, "debug logging")
	)
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	trapeze.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			fatal(err)
		}
		cfg = loaded
	}
	if *frames > 0 {
		cfg.Frames = *frames
	}
	if *backend != "" {
		cfg.Backend = *backend
	}
	if *output != "" {
		cfg.Output = *output
	}
	if err := cfg.Validate(); err != nil {
		fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		fatal(err)
	}
}

func fatal(err error) {
	trapeze.Logger().Error("trapeze failed", "error", err)
	os.Exit(1)
}

func run(ctx context.Context, cfg *config.Config) error {
	dev, err := wgpu.Open(cfg.Backend)
	if err != nil {
		return err
	}
	defer dev.Close()

	res := &frameResources{}
	defer res.release()

	opts := []trapeze.NodeOption{
		trapeze.WithAnimator(trapeze.SpinAnimator{Rate: cfg.SpinRate()}),
	}
	if cfg.Texture != "" {
		tex, err := trapeze.LoadTexture(dev, cfg.Texture, cfg.MaxTextureSize)
		if err != nil {
			return err
		}
		opts = append(opts, trapeze.WithTexture(tex))
	}
	if cfg.SingleInstance {
		opts = append(opts, trapeze.WithSingleInstance())
	}
	cube, err := trapeze.NewCube(dev, opts...)
	if err != nil {
		return err
	}
	res.node = cube

	var ringOpts []trapeze.RingOption
	if cfg.CompletionGate {
		ringOpts = append(ringOpts, trapeze.WithCompletionGate())
	}
	ring, err := trapeze.NewRing(dev, cfg.Inflight, trapeze.UniformSize, ringOpts...)
	if err != nil {
		return err
	}
	res.ring = ring

	target, err := wgpu.NewOffscreenTarget(dev, cfg.Width, cfg.Height)
	if err != nil {
		return err
	}
	res.target = target

	projection := cfg.Projection()
	renderOpts := []trapeze.RenderOption{
		trapeze.WithParent(cfg.WorldMatrix()),
		trapeze.WithClearColor(cfg.ClearColorValue()),
	}

	total := int64(cfg.Frames)
	if total == 0 {
		total = -1
	}
	bar := progressbar.Default(total, "rendering")
	defer bar.Close()

	driver := trapeze.NewDriver(trapeze.SceneFuncs{
		OnUpdate: cube.UpdateWithDelta,
		OnRender: func(ctx context.Context) error {
			defer func() { _ = bar.Add(1) }()
			return cube.Render(ctx, target, ring, projection, renderOpts...)
		},
	})

	runErr := driver.Run(ctx, cfg.Interval.Duration(), cfg.Frames)
	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		return runErr
	}
	_ = bar.Finish()
	trapeze.Logger().Info("trapeze: run finished",
		"frames", driver.Frames(), "dropped", driver.Dropped(), "adapter", dev.AdapterName())

	if cfg.Output == "" || driver.Frames() == 0 {
		return nil
	}
	return writePNG(target, cfg.Output)
}

// frameTarget is the part of the render target the teardown needs.
type frameTarget interface {
	Close()
	ForgetBuffer(buf trapeze.Buffer)
}

// frameResources holds what submitted frames reference. release drains
// the target before any buffer it may still read is destroyed.
type frameResources struct {
	target frameTarget
	ring   *trapeze.Ring
	node   *trapeze.Node
}

func (r *frameResources) release() {
	if r.target != nil {
		r.target.Close()
		if r.ring != nil {
			for i := 0; i < r.ring.Len(); i++ {
				r.target.ForgetBuffer(r.ring.Region(i).Buffer())
			}
		}
	}
	if r.ring != nil {
		r.ring.Destroy()
	}
	if r.node != nil {
		r.node.Destroy()
	}
}

func writePNG(target *wgpu.Target, path string) error {
	img, err := target.ReadPixels()
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	trapeze.Logger().Info("trapeze: frame written", "path", path)
	return nil
}
