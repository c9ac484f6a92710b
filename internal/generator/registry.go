package generator

import (
	"sort"
	"strings"
	"sync"
)

type registryKey struct {
	language  string
	framework string
}

// Registry holds the registered project generators keyed by normalized
// (language, framework). Registration happens during process start; lookups
// may then run concurrently.
type Registry struct {
	mu         sync.RWMutex
	generators map[registryKey]ProjectGenerator
	// firstSeen records the first framework registered per language. It is
	// the default when no preferred framework is configured.
	firstSeen map[string]string
	preferred map[string]string
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithDefaults sets the preferred default framework per language. A
// preferred framework takes precedence over registration order when
// resolving a language's default generator.
func WithDefaults(preferred map[string]string) RegistryOption {
	return func(r *Registry) {
		for lang, fw := range preferred {
			r.preferred[normalize(lang)] = normalize(fw)
		}
	}
}

// NewRegistry returns an empty registry.
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		generators: make(map[registryKey]ProjectGenerator),
		firstSeen:  make(map[string]string),
		preferred:  make(map[string]string),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Register adds g under its normalized (language, framework) key.
// Re-registering the same pairing overwrites the previous generator; the
// language's default is unaffected by the overwrite.
func (r *Registry) Register(g ProjectGenerator) {
	lang := normalize(g.Language())
	fw := normalize(g.Framework())

	r.mu.Lock()
	defer r.mu.Unlock()
	r.generators[registryKey{lang, fw}] = g
	if _, ok := r.firstSeen[lang]; !ok {
		r.firstSeen[lang] = fw
	}
}

// Generator returns the generator for the given language and framework.
func (r *Registry) Generator(language, framework string) (ProjectGenerator, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	g, ok := r.generators[registryKey{normalize(language), normalize(framework)}]
	return g, ok
}

// DefaultGenerator returns the default generator for a language: the
// configured preferred framework when registered, otherwise the first
// framework registered for that language.
func (r *Registry) DefaultGenerator(language string) (ProjectGenerator, bool) {
	lang := normalize(language)

	r.mu.RLock()
	defer r.mu.RUnlock()
	if fw, ok := r.preferred[lang]; ok {
		if g, ok := r.generators[registryKey{lang, fw}]; ok {
			return g, true
		}
	}
	fw, ok := r.firstSeen[lang]
	if !ok {
		return nil, false
	}
	g, ok := r.generators[registryKey{lang, fw}]
	return g, ok
}

// GeneratorsByLanguage returns every generator registered for a language,
// ordered by framework name.
func (r *Registry) GeneratorsByLanguage(language string) []ProjectGenerator {
	lang := normalize(language)

	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []ProjectGenerator
	for key, g := range r.generators {
		if key.language == lang {
			out = append(out, g)
		}
	}
	sortGenerators(out)
	return out
}

// GeneratorsByFeature returns every generator advertising all flags in f,
// ordered by language then framework.
func (r *Registry) GeneratorsByFeature(f Feature) []ProjectGenerator {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []ProjectGenerator
	for _, g := range r.generators {
		if g.Supports(f) {
			out = append(out, g)
		}
	}
	sortGenerators(out)
	return out
}

// All returns every registered generator ordered by language then framework.
func (r *Registry) All() []ProjectGenerator {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]ProjectGenerator, 0, len(r.generators))
	for _, g := range r.generators {
		out = append(out, g)
	}
	sortGenerators(out)
	return out
}

func sortGenerators(gs []ProjectGenerator) {
	sort.Slice(gs, func(i, j int) bool {
		if gs[i].Language() != gs[j].Language() {
			return gs[i].Language() < gs[j].Language()
		}
		return gs[i].Framework() < gs[j].Framework()
	})
}
