// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gogpu/trapeze"
)

func TestDefaultIsValid(t *testing.T) {
	c := Default()
	if err := c.Validate(); err != nil {
		t.Fatalf("Default().Validate() = %v", err)
	}
	if c.ClearColorValue() != trapeze.DefaultClearColor {
		t.Errorf("default clear color = %v, want %v", c.ClearColorValue(), trapeze.DefaultClearColor)
	}
	if c.Inflight != trapeze.DefaultInflight {
		t.Errorf("Inflight = %d, want %d", c.Inflight, trapeze.DefaultInflight)
	}
}

func TestParse(t *testing.T) {
	data := []byte(`
backend: vulkan
inflight: 2
completion_gate: false
frames: 10
interval: 5ms
clear_color: [0.1, 0.2, 0.3]
camera:
  fov_degrees: 60
world:
  translate: {z: -6}
spin: {x: 1, y: 2}
single_instance: true
output: out.png
`)
	c, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if c.Backend != "vulkan" || c.Inflight != 2 || c.CompletionGate || c.Frames != 10 {
		t.Errorf("scalars = %q %d %v %d", c.Backend, c.Inflight, c.CompletionGate, c.Frames)
	}
	if c.Interval.Duration() != 5*time.Millisecond {
		t.Errorf("Interval = %v, want 5ms", c.Interval.Duration())
	}
	if got := c.ClearColorValue(); got != (trapeze.Color{R: 0.1, G: 0.2, B: 0.3, A: 1}) {
		t.Errorf("ClearColorValue() = %v", got)
	}
	// Unset camera fields keep their defaults.
	if c.Camera.FOVDegrees != 60 || c.Camera.Near != 0.01 || c.Camera.Far != 100 {
		t.Errorf("Camera = %+v", c.Camera)
	}
	if c.World.Translate != (Vec3{Z: -6}) || c.World.RotateXDegrees != 25 {
		t.Errorf("World = %+v", c.World)
	}
	if c.SpinRate() != (trapeze.Vec3{X: 1, Y: 2}) {
		t.Errorf("SpinRate() = %v", c.SpinRate())
	}
	if !c.SingleInstance || c.Output != "out.png" {
		t.Errorf("SingleInstance = %v, Output = %q", c.SingleInstance, c.Output)
	}
}

func TestParseInvalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"zero inflight", "inflight: 0", "inflight"},
		{"near after far", "camera: {near: 10, far: 1}", "near"},
		{"bad fov", "camera: {fov_degrees: 180}", "fov_degrees"},
		{"short color", "clear_color: [1, 0]", "clear_color"},
		{"color out of range", "clear_color: [2, 0, 0]", "clear_color[0]"},
		{"zero size", "width: 0", "size"},
		{"unknown backend", "backend: glide", "backend"},
		{"negative interval", "interval: -1s", "interval"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			if !errors.Is(err, ErrInvalid) {
				t.Fatalf("Parse() error = %v, want ErrInvalid", err)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestParseMalformed(t *testing.T) {
	for _, data := range []string{"interval: soon", "inflight: [1, 2]", "{"} {
		if _, err := Parse([]byte(data)); err == nil || errors.Is(err, ErrInvalid) {
			t.Errorf("Parse(%q) error = %v, want a decode error", data, err)
		}
	}
}

func TestValidateReportsAll(t *testing.T) {
	c := Default()
	c.Inflight = 0
	c.Width = 0
	err := c.Validate()
	if err == nil {
		t.Fatal("Validate() = nil")
	}
	for _, want := range []string{"inflight", "size"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q does not mention %q", err, want)
		}
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scene.yaml")
	if err := os.WriteFile(path, []byte("frames: 3\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if c.Frames != 3 {
		t.Errorf("Frames = %d, want 3", c.Frames)
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("Load() of a missing file should fail")
	}
}

func TestMatrices(t *testing.T) {
	c := Default()

	// The world matrix moves the origin to the configured translation.
	if got := c.WorldMatrix().TransformPoint(trapeze.Vec3{}); got != (trapeze.Vec3{Z: -4}) {
		t.Errorf("world origin = %v, want (0,0,-4)", got)
	}

	// A point on the near plane maps to depth 0.
	p := c.Projection().TransformPoint(trapeze.Vec3{Z: -c.Camera.Near})
	if p.Z < -1e-5 || p.Z > 1e-5 {
		t.Errorf("near plane depth = %v, want 0", p.Z)
	}

	c.Camera.Aspect = 2
	if c.Projection() == Default().Projection() {
		t.Error("explicit aspect had no effect")
	}
}
