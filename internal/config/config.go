// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package config loads the YAML scene description used by cmd/trapeze.
//
// Every field has a default, so an empty file (or no file) yields the
// reference scene: a cube four units in front of an 85 degree camera,
// tilted 25 degrees around X, drawn through a ring of three uniform
// regions.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/gogpu/trapeze"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("config: invalid")

// Config is a scene and run description. Spin is the cube's angular
// velocity in radians per second around each axis.
type Config struct {
	Backend        string    `yaml:"backend"`
	Inflight       int       `yaml:"inflight"`
	CompletionGate bool      `yaml:"completion_gate"`
	Frames         uint64    `yaml:"frames"`
	Interval       Duration  `yaml:"interval"`
	Width          uint32    `yaml:"width"`
	Height         uint32    `yaml:"height"`
	ClearColor     []float64 `yaml:"clear_color"`
	Camera         Camera    `yaml:"camera"`
	World          World     `yaml:"world"`
	Spin           Vec3      `yaml:"spin"`
	Texture        string    `yaml:"texture"`
	MaxTextureSize int       `yaml:"max_texture_size"`
	SingleInstance bool      `yaml:"single_instance"`
	Output         string    `yaml:"output"`
}

// Camera is a perspective projection.
type Camera struct {
	FOVDegrees float32 `yaml:"fov_degrees"`
	Near       float32 `yaml:"near"`
	Far        float32 `yaml:"far"`
	// Aspect of 0 means Width/Height.
	Aspect float32 `yaml:"aspect"`
}

// World is the parent transform applied to every node.
type World struct {
	Translate      Vec3    `yaml:"translate"`
	RotateXDegrees float32 `yaml:"rotate_x_degrees"`
}

// Vec3 is a YAML-friendly vector.
type Vec3 struct {
	X float32 `yaml:"x"`
	Y float32 `yaml:"y"`
	Z float32 `yaml:"z"`
}

// Duration wraps time.Duration for YAML unmarshaling.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler for Duration.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	if s == "" {
		return nil
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// Duration returns the time.Duration value.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// Default returns the reference scene.
func Default() *Config {
	c := trapeze.DefaultClearColor
	return &Config{
		Backend:        "noop",
		Inflight:       trapeze.DefaultInflight,
		CompletionGate: true,
		Frames:         120,
		Interval:       Duration(time.Second / 60),
		Width:          640,
		Height:         480,
		ClearColor:     []float64{c.R, c.G, c.B, c.A},
		Camera: Camera{
			FOVDegrees: 85,
			Near:       0.01,
			Far:        100,
		},
		World: World{
			Translate:      Vec3{Z: -4},
			RotateXDegrees: 25,
		},
		Spin:           Vec3{Y: 0.5},
		MaxTextureSize: trapeze.DefaultMaxTextureSize,
		Output:         "frame.png",
	}
}

// Load reads and parses the file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// Parse decodes YAML over Default and validates the result. Fields absent
// from data keep their defaults.
func Parse(data []byte) (*Config, error) {
	c := Default()
	if err := yaml.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate reports every problem with c in one error.
func (c *Config) Validate() error {
	var errs []error
	if c.Inflight < 1 {
		errs = append(errs, fmt.Errorf("inflight must be at least 1, got %d", c.Inflight))
	}
	if c.Interval < 0 {
		errs = append(errs, fmt.Errorf("interval must not be negative, got %v", c.Interval.Duration()))
	}
	if c.Width == 0 || c.Height == 0 {
		errs = append(errs, fmt.Errorf("size must be non-zero, got %dx%d", c.Width, c.Height))
	}
	if n := len(c.ClearColor); n != 3 && n != 4 {
		errs = append(errs, fmt.Errorf("clear_color needs 3 or 4 components, got %d", n))
	}
	for i, v := range c.ClearColor {
		if v < 0 || v > 1 {
			errs = append(errs, fmt.Errorf("clear_color[%d] = %g is outside [0, 1]", i, v))
		}
	}
	if c.Camera.FOVDegrees <= 0 || c.Camera.FOVDegrees >= 180 {
		errs = append(errs, fmt.Errorf("camera.fov_degrees must be in (0, 180), got %g", c.Camera.FOVDegrees))
	}
	if c.Camera.Near <= 0 || c.Camera.Near >= c.Camera.Far {
		errs = append(errs, fmt.Errorf("camera needs 0 < near < far, got near=%g far=%g", c.Camera.Near, c.Camera.Far))
	}
	if c.Camera.Aspect < 0 {
		errs = append(errs, fmt.Errorf("camera.aspect must not be negative, got %g", c.Camera.Aspect))
	}
	switch strings.ToLower(c.Backend) {
	case "", "noop", "vulkan":
	default:
		errs = append(errs, fmt.Errorf("unknown backend %q", c.Backend))
	}
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalid, errors.Join(errs...))
}

// ClearColorValue returns the clear color; a missing alpha is opaque.
func (c *Config) ClearColorValue() trapeze.Color {
	col := trapeze.Color{A: 1}
	if len(c.ClearColor) >= 3 {
		col.R, col.G, col.B = c.ClearColor[0], c.ClearColor[1], c.ClearColor[2]
	}
	if len(c.ClearColor) == 4 {
		col.A = c.ClearColor[3]
	}
	return col
}

// Projection returns the camera's projection matrix.
func (c *Config) Projection() trapeze.Matrix4 {
	aspect := c.Camera.Aspect
	if aspect == 0 {
		aspect = float32(c.Width) / float32(c.Height)
	}
	return trapeze.Perspective(trapeze.Radians(c.Camera.FOVDegrees), aspect, c.Camera.Near, c.Camera.Far)
}

// WorldMatrix returns the world transform: translate, then rotate around X.
func (c *Config) WorldMatrix() trapeze.Matrix4 {
	t := c.World.Translate
	return trapeze.Identity4().
		Translate(t.X, t.Y, t.Z).
		RotateXYZ(trapeze.Radians(c.World.RotateXDegrees), 0, 0)
}

// SpinRate returns Spin as a trapeze vector.
func (c *Config) SpinRate() trapeze.Vec3 {
	return trapeze.Vec3{X: c.Spin.X, Y: c.Spin.Y, Z: c.Spin.Z}
}
