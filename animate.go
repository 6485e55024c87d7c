package trapeze

import (
	"time"

	"github.com/chewxy/math32"
)

// Animator mutates a Transform once per frame.
type Animator interface {
	Animate(t *Transform, dt time.Duration)
}

// AnimatorFunc adapts a function to the Animator interface.
type AnimatorFunc func(t *Transform, dt time.Duration)

// Animate calls f(t, dt).
func (f AnimatorFunc) Animate(t *Transform, dt time.Duration) { f(t, dt) }

// SpinAnimator rotates a transform at a constant angular velocity.
// Rate is in radians per second for each axis. Angles are wrapped to
// [0, 2*pi) so long runs do not lose float32 precision.
type SpinAnimator struct {
	Rate Vec3
}

// Animate advances the rotation by Rate*dt.
func (s SpinAnimator) Animate(t *Transform, dt time.Duration) {
	secs := float32(dt.Seconds())
	t.Rotation.X = wrapAngle(t.Rotation.X + s.Rate.X*secs)
	t.Rotation.Y = wrapAngle(t.Rotation.Y + s.Rate.Y*secs)
	t.Rotation.Z = wrapAngle(t.Rotation.Z + s.Rate.Z*secs)
}

func wrapAngle(a float32) float32 {
	a = math32.Mod(a, 2*math32.Pi)
	if a < 0 {
		a += 2 * math32.Pi
	}
	return a
}

// DefaultPanSensitivity is the rotation in radians for a drag across the
// full width or height of the view.
const DefaultPanSensitivity = 5.0

// PanRotator turns pointer drags into rotation: horizontal movement spins
// around Y, vertical movement around X.
type PanRotator struct {
	Sensitivity float32

	lastX, lastY float32
	active       bool
}

// NewPanRotator returns a PanRotator with DefaultPanSensitivity.
func NewPanRotator() *PanRotator {
	return &PanRotator{Sensitivity: DefaultPanSensitivity}
}

// Begin starts a drag at (x, y) in view coordinates.
func (p *PanRotator) Begin(x, y float32) {
	p.lastX, p.lastY = x, y
	p.active = true
}

// Move continues a drag to (x, y) in a view of the given size and
// applies the rotation to t. Moves outside a drag are ignored.
func (p *PanRotator) Move(t *Transform, x, y, viewWidth, viewHeight float32) {
	if !p.active || viewWidth <= 0 || viewHeight <= 0 {
		return
	}
	dx := (p.lastX - x) / viewWidth * p.Sensitivity
	dy := (p.lastY - y) / viewHeight * p.Sensitivity
	t.Rotation.Y -= dx
	t.Rotation.X -= dy
	p.lastX, p.lastY = x, y
}

// End finishes the current drag.
func (p *PanRotator) End() {
	p.active = false
}
