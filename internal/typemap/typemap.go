// Package typemap translates canonical scalar kinds into backend type
// spellings, import paths, and default-value literals. One Mapper exists per
// target backend; all of them share the same contract and all of them are
// pure: the same (kind, nullable) input always produces the same spelling
// and import set regardless of call order, because results from many columns
// are deduplicated into one file's import block.
package typemap

import (
	"sort"

	"schemaforge/internal/scalar"
	"schemaforge/internal/schema"
)

// Mapper converts canonical column types to one backend's spellings.
type Mapper interface {
	// KindType returns the backend spelling for a canonical kind and whether
	// the kind has an explicit mapping. Missing mappings fall back to the
	// backend's generic text type; callers use the boolean to surface a
	// mapping-gap warning, never an error.
	KindType(k scalar.Kind) (string, bool)

	// MapColumnType returns the full type spelling for a column, wrapped in
	// the backend's nullable convention when the column is nullable.
	MapColumnType(col schema.Column) string

	// RequiredImports returns the import paths the column's type needs,
	// possibly empty.
	RequiredImports(col schema.Column) []string

	// DefaultValue returns the literal used when no explicit default exists:
	// the nullable-absent literal for nullable columns, the canonical zero
	// value of the mapped type otherwise.
	DefaultValue(col schema.Column) string

	// PrimaryKeyType is the fixed wide-integer type used for every
	// synthesized primary key.
	PrimaryKeyType() string

	// PrimaryKeyImports returns imports needed by PrimaryKeyType.
	PrimaryKeyImports() []string

	// ListType wraps an element type in the backend's list constructor.
	// Wrapping an already-wrapped type is a no-op.
	ListType(elem string) string

	// NullableType wraps a type in the backend's nullable constructor.
	// Wrapping an already-wrapped type is a no-op.
	NullableType(t string) string
}

// Gap describes a canonical kind that resolved to a backend's generic
// fallback. It is reported as a caller-visible warning, never thrown.
type Gap struct {
	Table  string
	Column string
	Kind   scalar.Kind
}

// FindGaps scans the schema's generatable tables for columns whose kind has
// no explicit mapping on the given mapper.
func FindGaps(m Mapper, s *schema.Schema) []Gap {
	var gaps []Gap
	for _, t := range s.GeneratableTables() {
		for _, col := range t.Columns {
			if _, ok := m.KindType(col.Kind); !ok {
				gaps = append(gaps, Gap{Table: t.Name, Column: col.Name, Kind: col.Kind})
			}
		}
	}
	return gaps
}

// AggregateImports deduplicates and sorts the imports required by a set of
// columns into one file-level import block.
func AggregateImports(m Mapper, cols []schema.Column) []string {
	seen := make(map[string]struct{})
	for _, col := range cols {
		for _, imp := range m.RequiredImports(col) {
			seen[imp] = struct{}{}
		}
	}
	if len(seen) == 0 {
		return nil
	}
	out := make([]string, 0, len(seen))
	for imp := range seen {
		out = append(out, imp)
	}
	sort.Strings(out)
	return out
}
