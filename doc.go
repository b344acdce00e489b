// Package frameshare implements producer-side, zero-copy frame sharing
// between a rendering process and any number of same-host consumer
// processes.
//
// # Overview
//
// A frameshare Server owns one shared, cross-process-importable GPU
// surface. On every publish cycle the producer hands the server an
// arbitrary source texture; the server copies (or renders) the requested
// region into the shared surface and, once the GPU work has retired,
// announces the new frame to consumers. Consumers never receive pixel
// data through a CPU channel; they import the surface handle into their
// own graphics context.
//
// # Quick Start
//
//	srv, err := frameshare.NewServer("preview", deviceHandle,
//	    frameshare.WithAllocator(alloc),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer srv.Stop()
//
//	// Each frame:
//	srv.Publish(tex, tex.Bounds(), false)
//
// # Collaborators
//
// The platform-specific pieces are injected, not owned:
//
//   - SurfaceAllocator creates the cross-process backing store
//     (IOSurface, dma-buf, D3D shared handle) and binds a device texture
//     onto it.
//   - Renderer performs the crop/flip/format-convert draw used when a
//     direct blit cannot satisfy a publish request.
//   - Transport announces frames and delivers out-of-band frame metadata
//     to connected clients.
//
// The GPU device itself is received from the host through a
// gpucontext.DeviceProvider; frameshare never creates a device.
//
// # Fast path vs slow path
//
// A publish is satisfied by a direct texture-to-texture copy whenever the
// source is not flipped, matches the surface pixel format and sample
// count, and is not restricted to render-target-only use. Anything else
// routes through the Renderer collaborator.
//
// # Concurrency
//
// Publish is intended to be driven from a single rendering-control
// goroutine. Consumer-facing accessors (CurrentFrame, CurrentMetadata,
// Description) may be called from any goroutine at any time. Overlapping
// publish cycles are submitted in order, but announce order across
// overlapping cycles follows GPU completion; callers that need strict
// frame ordering must serialize their own submissions.
package frameshare
