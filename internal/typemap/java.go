package typemap

import (
	"strings"

	"schemaforge/internal/scalar"
	"schemaforge/internal/schema"
)

// JavaMapper maps canonical kinds to Java type spellings. Boxed types are
// used throughout, so nullability needs no extra wrapper: the boxed form is
// the backend's nullable convention and NullableType is the identity.
type JavaMapper struct{}

var javaKindTypes = map[scalar.Kind]string{
	scalar.KindText:     "String",
	scalar.KindInt:      "Integer",
	scalar.KindBigInt:   "Long",
	scalar.KindFloat:    "Double",
	scalar.KindDecimal:  "BigDecimal",
	scalar.KindBool:     "Boolean",
	scalar.KindDate:     "LocalDate",
	scalar.KindTime:     "LocalTime",
	scalar.KindDateTime: "LocalDateTime",
	scalar.KindUUID:     "UUID",
	scalar.KindBytes:    "byte[]",
	scalar.KindJSON:     "String",
	scalar.KindEnum:     "String",
}

var javaKindImports = map[scalar.Kind]string{
	scalar.KindDecimal:  "java.math.BigDecimal",
	scalar.KindDate:     "java.time.LocalDate",
	scalar.KindTime:     "java.time.LocalTime",
	scalar.KindDateTime: "java.time.LocalDateTime",
	scalar.KindUUID:     "java.util.UUID",
}

// KindType implements Mapper.
func (JavaMapper) KindType(k scalar.Kind) (string, bool) {
	t, ok := javaKindTypes[k]
	if !ok {
		return javaKindTypes[scalar.KindText], false
	}
	return t, true
}

// MapColumnType implements Mapper.
func (m JavaMapper) MapColumnType(col schema.Column) string {
	t, _ := m.KindType(col.Kind)
	if col.Nullable {
		return m.NullableType(t)
	}
	return t
}

// RequiredImports implements Mapper.
func (m JavaMapper) RequiredImports(col schema.Column) []string {
	if imp, ok := javaKindImports[col.Kind]; ok {
		return []string{imp}
	}
	return nil
}

// DefaultValue implements Mapper.
func (m JavaMapper) DefaultValue(col schema.Column) string {
	if col.Nullable {
		return "null"
	}
	t, _ := m.KindType(col.Kind)
	switch t {
	case "String":
		return `""`
	case "Integer":
		return "0"
	case "Long":
		return "0L"
	case "Double":
		return "0.0"
	case "BigDecimal":
		return "BigDecimal.ZERO"
	case "Boolean":
		return "false"
	default:
		return "null"
	}
}

// PrimaryKeyType implements Mapper.
func (JavaMapper) PrimaryKeyType() string { return "Long" }

// PrimaryKeyImports implements Mapper.
func (JavaMapper) PrimaryKeyImports() []string { return nil }

// ListType implements Mapper.
func (JavaMapper) ListType(elem string) string {
	if strings.HasPrefix(elem, "List<") {
		return elem
	}
	return "List<" + elem + ">"
}

// NullableType implements Mapper.
func (JavaMapper) NullableType(t string) string { return t }
