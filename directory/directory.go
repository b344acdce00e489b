// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package directory provides an in-process directory of live frame
// servers for same-host discovery collaborators.
//
// The directory is intentionally not a wire protocol: cross-process
// announcement is the hosting transport's job. What lives here is the
// shared bookkeeping both sides need: which servers exist, their
// identity descriptions, how many consumers are attached, and a frame
// sequence that advances on every announce.
//
// Example consumer-side usage:
//
//	for _, e := range directory.Default().Servers() {
//	    fmt.Println(e.Name(), e.Description())
//	}
package directory

import (
	"sort"
	"sync"
	"sync/atomic"
)

// DescribeFunc returns a server's current identity description. It is
// called on every Description read so late mutation is always visible.
type DescribeFunc func() map[string]string

// Entry is one registered server. An Entry also serves as the default
// announce transport for the server that registered it: AnnounceFrame
// advances the frame sequence and SendMetadata records the last
// broadcast metadata.
type Entry struct {
	name     string
	id       string
	describe DescribeFunc

	frameSeq atomic.Uint64
	clients  atomic.Int64

	mu       sync.RWMutex
	lastMeta string
	hasMeta  bool
}

// Name returns the server's published name. Names are not unique;
// identity is carried by ID.
func (e *Entry) Name() string { return e.name }

// ID returns the server's unique identity token.
func (e *Entry) ID() string { return e.id }

// Description returns the server's current identity description, or nil
// if the server supplied no describe function.
func (e *Entry) Description() map[string]string {
	if e.describe == nil {
		return nil
	}
	return e.describe()
}

// FrameSequence returns how many frames have been announced. Consumers
// poll it to detect new frames without racing the producer.
func (e *Entry) FrameSequence() uint64 { return e.frameSeq.Load() }

// LastMetadata returns the most recently broadcast frame metadata.
func (e *Entry) LastMetadata() (string, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.lastMeta, e.hasMeta
}

// Attach records one attached consumer.
func (e *Entry) Attach() { e.clients.Add(1) }

// Detach records one departed consumer. Calls are clamped at zero so a
// stray Detach cannot drive the count negative.
func (e *Entry) Detach() {
	for {
		n := e.clients.Load()
		if n <= 0 {
			return
		}
		if e.clients.CompareAndSwap(n, n-1) {
			return
		}
	}
}

// HasClients reports whether any consumer is attached.
func (e *Entry) HasClients() bool { return e.clients.Load() > 0 }

// AnnounceFrame advances the frame sequence.
func (e *Entry) AnnounceFrame() { e.frameSeq.Add(1) }

// SendMetadata records the broadcast metadata for consumer polling.
func (e *Entry) SendMetadata(meta string) {
	e.mu.Lock()
	e.lastMeta = meta
	e.hasMeta = true
	e.mu.Unlock()
}

// defaultDirectory is the process-wide directory.
var defaultDirectory = New()

// Directory manages registered servers.
type Directory struct {
	mu      sync.RWMutex
	entries map[string]*Entry
}

// New creates an empty directory. Most code uses Default; separate
// directories exist for tests and for hosts that isolate server groups.
func New() *Directory {
	return &Directory{entries: make(map[string]*Entry)}
}

// Default returns the process-wide directory.
func Default() *Directory { return defaultDirectory }

// Register adds a server under its unique id and returns its entry.
// Registering an id that already exists replaces the previous entry.
func (d *Directory) Register(name, id string, describe DescribeFunc) *Entry {
	e := &Entry{name: name, id: id, describe: describe}
	d.mu.Lock()
	d.entries[id] = e
	d.mu.Unlock()
	return e
}

// Unregister removes the server with the given id. Unknown ids are
// ignored.
func (d *Directory) Unregister(id string) {
	d.mu.Lock()
	delete(d.entries, id)
	d.mu.Unlock()
}

// Lookup returns the entry registered under id.
func (d *Directory) Lookup(id string) (*Entry, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	e, ok := d.entries[id]
	return e, ok
}

// LookupName returns the first entry with the given name, in the stable
// order used by Servers.
func (d *Directory) LookupName(name string) (*Entry, bool) {
	for _, e := range d.Servers() {
		if e.name == name {
			return e, true
		}
	}
	return nil, false
}

// Servers returns all registered entries sorted by name, ties broken by
// id, so repeated listings are stable.
func (d *Directory) Servers() []*Entry {
	d.mu.RLock()
	out := make([]*Entry, 0, len(d.entries))
	for _, e := range d.entries {
		out = append(out, e)
	}
	d.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].name != out[j].name {
			return out[i].name < out[j].name
		}
		return out[i].id < out[j].id
	})
	return out
}
