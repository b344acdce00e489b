package frameshare

import "sync"

// Well-known description keys. Hosting collaborators may add arbitrary
// keys of their own; these are the ones frameshare itself populates.
const (
	// DescriptionName is the server's published name.
	DescriptionName = "frameshare.name"

	// DescriptionUUID is a stable, per-instance identity token.
	DescriptionUUID = "frameshare.uuid"

	// DescriptionSurfaceFormat is the shared surface format tag.
	DescriptionSurfaceFormat = "frameshare.surface-format"
)

// description merges an immutable base mapping, supplied by the hosting
// collaborator at construction, with a mutable extension mapping.
// Extension entries win on key collision. The merge is recomputed on
// every read so late extension changes are always reflected.
type description struct {
	mu   sync.RWMutex
	base map[string]string
	ext  map[string]string
}

// newDescription copies the base mapping so later caller mutation of the
// input cannot leak into the registry.
func newDescription(base map[string]string) *description {
	d := &description{
		base: make(map[string]string, len(base)),
		ext:  make(map[string]string),
	}
	for k, v := range base {
		d.base[k] = v
	}
	return d
}

// setBase writes a base entry. Used only during construction, before the
// description is shared; base entries are immutable afterwards.
func (d *description) setBase(key, value string) {
	d.base[key] = value
}

// set writes an extension entry, overriding any base entry with the same
// key on subsequent merges.
func (d *description) set(key, value string) {
	d.mu.Lock()
	d.ext[key] = value
	d.mu.Unlock()
}

// merged returns base with extension entries layered on top.
func (d *description) merged() map[string]string {
	d.mu.RLock()
	defer d.mu.RUnlock()

	out := make(map[string]string, len(d.base)+len(d.ext))
	for k, v := range d.base {
		out[k] = v
	}
	for k, v := range d.ext {
		out[k] = v
	}
	return out
}
