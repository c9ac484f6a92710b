package typemap

import (
	"strings"

	"schemaforge/internal/scalar"
	"schemaforge/internal/schema"
)

// GoMapper maps canonical kinds to Go type spellings. Nullable columns use
// pointer wrappers, except slice-backed types which are already nilable.
// Decimal maps to string: Go has no arbitrary-precision decimal in the
// standard library and silently converting to float64 would lose precision.
type GoMapper struct{}

var goKindTypes = map[scalar.Kind]string{
	scalar.KindText:     "string",
	scalar.KindInt:      "int32",
	scalar.KindBigInt:   "int64",
	scalar.KindFloat:    "float64",
	scalar.KindDecimal:  "string",
	scalar.KindBool:     "bool",
	scalar.KindDate:     "time.Time",
	scalar.KindTime:     "time.Time",
	scalar.KindDateTime: "time.Time",
	scalar.KindUUID:     "uuid.UUID",
	scalar.KindBytes:    "[]byte",
	scalar.KindJSON:     "json.RawMessage",
	scalar.KindEnum:     "string",
}

var goKindImports = map[scalar.Kind]string{
	scalar.KindDate:     "time",
	scalar.KindTime:     "time",
	scalar.KindDateTime: "time",
	scalar.KindUUID:     "github.com/google/uuid",
	scalar.KindJSON:     "encoding/json",
}

// KindType implements Mapper.
func (GoMapper) KindType(k scalar.Kind) (string, bool) {
	t, ok := goKindTypes[k]
	if !ok {
		return goKindTypes[scalar.KindText], false
	}
	return t, true
}

// MapColumnType implements Mapper.
func (m GoMapper) MapColumnType(col schema.Column) string {
	t, _ := m.KindType(col.Kind)
	if col.Nullable {
		return m.NullableType(t)
	}
	return t
}

// RequiredImports implements Mapper.
func (m GoMapper) RequiredImports(col schema.Column) []string {
	if imp, ok := goKindImports[col.Kind]; ok {
		return []string{imp}
	}
	return nil
}

// DefaultValue implements Mapper.
func (m GoMapper) DefaultValue(col schema.Column) string {
	if col.Nullable {
		return "nil"
	}
	t, _ := m.KindType(col.Kind)
	switch t {
	case "string":
		return `""`
	case "int32", "int64", "float64":
		return "0"
	case "bool":
		return "false"
	case "time.Time":
		return "time.Time{}"
	case "uuid.UUID":
		return "uuid.Nil"
	default:
		return "nil"
	}
}

// PrimaryKeyType implements Mapper.
func (GoMapper) PrimaryKeyType() string { return "int64" }

// PrimaryKeyImports implements Mapper.
func (GoMapper) PrimaryKeyImports() []string { return nil }

// ListType implements Mapper.
func (GoMapper) ListType(elem string) string {
	if strings.HasPrefix(elem, "[]") {
		return elem
	}
	return "[]" + elem
}

// NullableType implements Mapper.
func (GoMapper) NullableType(t string) string {
	if strings.HasPrefix(t, "*") || strings.HasPrefix(t, "[]") || t == "json.RawMessage" {
		return t
	}
	return "*" + t
}
