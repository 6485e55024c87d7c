package trapeze

// Color is a linear RGBA clear color with components in [0, 1].
type Color struct {
	R, G, B, A float64
}

// DefaultClearColor is the dark green background used when a render call
// does not specify a clear color.
var DefaultClearColor = Color{R: 0, G: 104.0 / 255.0, B: 5.0 / 255.0, A: 1}
