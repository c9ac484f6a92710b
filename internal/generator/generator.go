// Package generator defines the contract between the engine and the
// per-backend project generators, the feature flags they advertise, and the
// registry the engine dispatches through.
package generator

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"schemaforge/internal/schema"
)

// Feature is a capability a project generator can advertise.
type Feature int

const (
	FeatureRepositories Feature = 1 << iota
	FeatureServices
	FeatureControllers
	FeatureMigrations
	FeatureTests
	FeatureRelationships
)

var featureNames = map[Feature]string{
	FeatureRepositories:  "repositories",
	FeatureServices:      "services",
	FeatureControllers:   "controllers",
	FeatureMigrations:    "migrations",
	FeatureTests:         "tests",
	FeatureRelationships: "relationships",
}

// Has reports whether f includes every flag in other.
func (f Feature) Has(other Feature) bool {
	return f&other == other
}

func (f Feature) String() string {
	var parts []string
	for flag, name := range featureNames {
		if f.Has(flag) {
			parts = append(parts, name)
		}
	}
	sort.Strings(parts)
	return strings.Join(parts, ",")
}

// Files maps relative output paths to file contents. Generators never touch
// the filesystem; writing is the caller's concern.
type Files map[string]string

// Paths returns the output paths in sorted order.
func (f Files) Paths() []string {
	paths := make([]string, 0, len(f))
	for p := range f {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// Merge copies every entry of other into f, overwriting on collision.
func (f Files) Merge(other Files) {
	for path, content := range other {
		f[path] = content
	}
}

// ProjectGenerator turns a resolved canonical schema into project files for
// one language and framework pairing. Implementations must treat the schema
// as read-only.
type ProjectGenerator interface {
	Language() string
	Framework() string
	Supports(f Feature) bool
	Generate(ctx context.Context, s *schema.Schema, entities []string, opts Options) (Files, error)
}

// SelectTables resolves the requested entity names against the schema's
// generatable tables. An empty request selects all of them; a name that
// matches no generatable table is an error.
func SelectTables(s *schema.Schema, entities []string) ([]schema.Table, error) {
	generatable := s.GeneratableTables()
	if len(entities) == 0 {
		return generatable, nil
	}

	byName := make(map[string]schema.Table, len(generatable))
	for _, t := range generatable {
		byName[t.Name] = t
	}

	selected := make([]schema.Table, 0, len(entities))
	for _, name := range entities {
		t, ok := byName[name]
		if !ok {
			return nil, fmt.Errorf("entity %q is not a generatable table", name)
		}
		selected = append(selected, t)
	}
	return selected, nil
}
