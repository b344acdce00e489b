package frameshare

import "errors"

// Package errors.
var (
	// ErrNilDevice is returned by NewServer when no device handle is given.
	ErrNilDevice = errors.New("frameshare: device handle is nil")

	// ErrEmptyName is returned by NewServer when the server name is empty.
	ErrEmptyName = errors.New("frameshare: server name is empty")

	// ErrRendererInit is returned by NewServer when the renderer factory
	// fails for the requested device and pixel format. This is the only
	// publish-side failure surfaced to callers; everything per-cycle is
	// absorbed and logged.
	ErrRendererInit = errors.New("frameshare: renderer initialization failed")
)
