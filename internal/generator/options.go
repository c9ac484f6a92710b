package generator

// Options carries the per-run generation settings handed to a backend. The
// key space is flat strings; backends ignore keys they do not recognize.
type Options struct {
	// Preset names a backend-defined bundle of option values.
	Preset string
	// Overrides are explicit user-supplied values.
	Overrides map[string]string
}

// Presets is a backend's table of named option bundles.
type Presets map[string]map[string]string

// Resolve returns the value for key with uniform precedence: an explicit
// override wins, then the named preset, then the hard-coded fallback.
func (p Presets) Resolve(opts Options, key, fallback string) string {
	if v, ok := opts.Overrides[key]; ok && v != "" {
		return v
	}
	if preset, ok := p[opts.Preset]; ok {
		if v, ok := preset[key]; ok && v != "" {
			return v
		}
	}
	return fallback
}
