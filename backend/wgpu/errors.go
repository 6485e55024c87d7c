package wgpu

import "errors"

var (
	// ErrUnknownBackend is returned by Open for a backend name it does not
	// recognize or that was not compiled in.
	ErrUnknownBackend = errors.New("wgpu: unknown backend")

	// ErrNoAdapter means the backend enumerated no adapters.
	ErrNoAdapter = errors.New("wgpu: no GPU adapter found")

	// ErrProviderNotHAL means a device provider does not expose hal types.
	ErrProviderNotHAL = errors.New("wgpu: provider does not expose HAL device and queue")

	// ErrShaderInvalid means the embedded WGSL failed validation.
	ErrShaderInvalid = errors.New("wgpu: shader failed validation")

	// ErrNoSurface is returned by BeginPass on a surface target before
	// SetSurfaceTarget has supplied a view.
	ErrNoSurface = errors.New("wgpu: no surface view set")

	// ErrNotOffscreen is returned by ReadPixels on a surface target.
	ErrNotOffscreen = errors.New("wgpu: target is not offscreen")

	// ErrForeignResource means a buffer or texture was not created by this
	// package's Device.
	ErrForeignResource = errors.New("wgpu: resource not created by this backend")

	// ErrClosed is returned after Close.
	ErrClosed = errors.New("wgpu: target closed")
)
