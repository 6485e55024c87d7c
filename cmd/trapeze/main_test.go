package main

import (
	"context"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gogpu/trapeze"
	"github.com/gogpu/trapeze/internal/config"
)

func TestRunNoop(t *testing.T) {
	cfg := config.Default()
	cfg.Backend = "noop"
	cfg.Frames = 5
	cfg.Interval = 0
	cfg.Width, cfg.Height = 32, 24
	cfg.Output = filepath.Join(t.TempDir(), "frame.png")

	if err := run(context.Background(), cfg); err != nil {
		t.Fatalf("run() error = %v", err)
	}

	f, err := os.Open(cfg.Output)
	if err != nil {
		t.Fatalf("output not written: %v", err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("output is not a PNG: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 32 || b.Dy() != 24 {
		t.Errorf("output size = %v, want 32x24", b.Size())
	}
}

func TestRunMissingTexture(t *testing.T) {
	cfg := config.Default()
	cfg.Frames = 1
	cfg.Output = ""
	cfg.Texture = filepath.Join(t.TempDir(), "missing.png")
	if err := run(context.Background(), cfg); err == nil {
		t.Error("run() with a missing texture should fail")
	}
}

func TestRunWithoutOutput(t *testing.T) {
	cfg := config.Default()
	cfg.Frames = 4
	cfg.Interval = 0
	cfg.Width, cfg.Height = 16, 16
	cfg.Output = ""
	if err := run(context.Background(), cfg); err != nil {
		t.Fatalf("run() error = %v", err)
	}
}

// eventLog records teardown steps in order.
type eventLog []string

func (l *eventLog) add(ev string) { *l = append(*l, ev) }

type loggingDevice struct{ log *eventLog }

func (d loggingDevice) NewBuffer(label string, size uint64, _ trapeze.BufferUsage) (trapeze.Buffer, error) {
	return &loggingBuffer{label: label, size: size, log: d.log}, nil
}

func (d loggingDevice) NewBufferWithData(label string, data []byte, usage trapeze.BufferUsage) (trapeze.Buffer, error) {
	return d.NewBuffer(label, uint64(len(data)), usage)
}

func (d loggingDevice) NewTexture(string, *image.RGBA) (trapeze.Texture, error) {
	return nil, nil
}

type loggingBuffer struct {
	label string
	size  uint64
	log   *eventLog
}

func (b *loggingBuffer) Size() uint64         { return b.size }
func (b *loggingBuffer) Write(uint64, []byte) {}
func (b *loggingBuffer) Destroy()             { b.log.add("destroy " + b.label) }

type loggingTarget struct{ log *eventLog }

func (t loggingTarget) Close() { t.log.add("close") }

func (t loggingTarget) ForgetBuffer(buf trapeze.Buffer) {
	t.log.add("forget " + buf.(*loggingBuffer).label)
}

func TestFrameResourcesReleaseOrder(t *testing.T) {
	var log eventLog
	dev := loggingDevice{log: &log}
	ring, err := trapeze.NewRing(dev, 2, trapeze.UniformSize, trapeze.WithRingLabel("u"))
	if err != nil {
		t.Fatal(err)
	}
	cube, err := trapeze.NewCube(dev)
	if err != nil {
		t.Fatal(err)
	}

	res := &frameResources{target: loggingTarget{log: &log}, ring: ring, node: cube}
	res.release()

	want := []string{"close", "forget u_0", "forget u_1", "destroy u_0", "destroy u_1", "destroy cube_vertices"}
	if strings.Join(log, ",") != strings.Join(want, ",") {
		t.Errorf("release order = %v, want %v", log, want)
	}
}

func TestFrameResourcesReleasePartial(t *testing.T) {
	var log eventLog
	cube, err := trapeze.NewCube(loggingDevice{log: &log})
	if err != nil {
		t.Fatal(err)
	}
	res := &frameResources{node: cube}
	res.release()
	if len(log) != 1 || log[0] != "destroy cube_vertices" {
		t.Errorf("release order = %v", log)
	}
}
