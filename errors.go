package trapeze

import "errors"

// Errors returned by the render core. Backends wrap their own failures
// with one of these so callers can classify a failure with errors.Is.
var (
	// ErrAllocation is returned when GPU-visible memory (a uniform region,
	// vertex buffer or texture) could not be created.
	ErrAllocation = errors.New("trapeze: allocation failed")

	// ErrConfigurationMismatch is returned when inputs disagree with the
	// pipeline's expectations, e.g. a vertex count that is not a whole
	// number of triangles or a region too small for two matrices.
	ErrConfigurationMismatch = errors.New("trapeze: configuration mismatch")

	// ErrSubmission is returned when a frame could not be encoded,
	// submitted or presented. The frame is dropped.
	ErrSubmission = errors.New("trapeze: submission failed")
)
