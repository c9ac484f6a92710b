package typemap

import (
	"strings"

	"schemaforge/internal/scalar"
	"schemaforge/internal/schema"
)

// GraphQLMapper maps canonical kinds to GraphQL SDL type spellings. SDL
// inverts the usual convention: types are nullable by default and non-null
// columns carry a trailing "!", so NullableType strips the marker.
type GraphQLMapper struct{}

var graphqlKindTypes = map[scalar.Kind]string{
	scalar.KindText:     "String",
	scalar.KindInt:      "Int",
	scalar.KindBigInt:   "Int",
	scalar.KindFloat:    "Float",
	scalar.KindDecimal:  "Float",
	scalar.KindBool:     "Boolean",
	scalar.KindDate:     "String",
	scalar.KindTime:     "String",
	scalar.KindDateTime: "String",
	scalar.KindUUID:     "ID",
	scalar.KindBytes:    "String",
	scalar.KindJSON:     "String",
	scalar.KindEnum:     "String",
}

// KindType implements Mapper.
func (GraphQLMapper) KindType(k scalar.Kind) (string, bool) {
	t, ok := graphqlKindTypes[k]
	if !ok {
		return graphqlKindTypes[scalar.KindText], false
	}
	return t, true
}

// MapColumnType implements Mapper.
func (m GraphQLMapper) MapColumnType(col schema.Column) string {
	t, _ := m.KindType(col.Kind)
	if col.Nullable {
		return m.NullableType(t)
	}
	return t + "!"
}

// RequiredImports implements Mapper. SDL has no import mechanism.
func (GraphQLMapper) RequiredImports(col schema.Column) []string { return nil }

// DefaultValue implements Mapper.
func (m GraphQLMapper) DefaultValue(col schema.Column) string {
	if col.Nullable {
		return "null"
	}
	t, _ := m.KindType(col.Kind)
	switch t {
	case "Int", "Float":
		return "0"
	case "Boolean":
		return "false"
	default:
		return `""`
	}
}

// PrimaryKeyType implements Mapper.
func (GraphQLMapper) PrimaryKeyType() string { return "ID" }

// PrimaryKeyImports implements Mapper.
func (GraphQLMapper) PrimaryKeyImports() []string { return nil }

// ListType implements Mapper.
func (GraphQLMapper) ListType(elem string) string {
	if strings.HasPrefix(elem, "[") {
		return elem
	}
	return "[" + elem + "]"
}

// NullableType implements Mapper.
func (GraphQLMapper) NullableType(t string) string {
	return strings.TrimSuffix(t, "!")
}
