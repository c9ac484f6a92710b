package typemap

import (
	"strings"

	"schemaforge/internal/scalar"
	"schemaforge/internal/schema"
)

// TypeScriptMapper maps canonical kinds to TypeScript type spellings.
// Nullable columns use "| null" unions. Decimal maps to string, the TypeORM
// convention for exact numerics.
type TypeScriptMapper struct{}

var tsKindTypes = map[scalar.Kind]string{
	scalar.KindText:     "string",
	scalar.KindInt:      "number",
	scalar.KindBigInt:   "number",
	scalar.KindFloat:    "number",
	scalar.KindDecimal:  "string",
	scalar.KindBool:     "boolean",
	scalar.KindDate:     "Date",
	scalar.KindTime:     "string",
	scalar.KindDateTime: "Date",
	scalar.KindUUID:     "string",
	scalar.KindBytes:    "Buffer",
	scalar.KindJSON:     "Record<string, unknown>",
	scalar.KindEnum:     "string",
}

// KindType implements Mapper.
func (TypeScriptMapper) KindType(k scalar.Kind) (string, bool) {
	t, ok := tsKindTypes[k]
	if !ok {
		return tsKindTypes[scalar.KindText], false
	}
	return t, true
}

// MapColumnType implements Mapper.
func (m TypeScriptMapper) MapColumnType(col schema.Column) string {
	t, _ := m.KindType(col.Kind)
	if col.Nullable {
		return m.NullableType(t)
	}
	return t
}

// RequiredImports implements Mapper. TypeScript entity types need no
// imports; Buffer and Date are ambient.
func (TypeScriptMapper) RequiredImports(col schema.Column) []string { return nil }

// DefaultValue implements Mapper.
func (m TypeScriptMapper) DefaultValue(col schema.Column) string {
	if col.Nullable {
		return "null"
	}
	t, _ := m.KindType(col.Kind)
	switch t {
	case "string":
		return "''"
	case "number":
		return "0"
	case "boolean":
		return "false"
	case "Date":
		return "new Date(0)"
	case "Record<string, unknown>":
		return "{}"
	default:
		return "null"
	}
}

// PrimaryKeyType implements Mapper.
func (TypeScriptMapper) PrimaryKeyType() string { return "number" }

// PrimaryKeyImports implements Mapper.
func (TypeScriptMapper) PrimaryKeyImports() []string { return nil }

// ListType implements Mapper.
func (TypeScriptMapper) ListType(elem string) string {
	if strings.HasSuffix(elem, "[]") || strings.HasPrefix(elem, "Array<") {
		return elem
	}
	if strings.Contains(elem, " | ") || strings.Contains(elem, "<") {
		return "Array<" + elem + ">"
	}
	return elem + "[]"
}

// NullableType implements Mapper.
func (TypeScriptMapper) NullableType(t string) string {
	if strings.HasSuffix(t, " | null") {
		return t
	}
	return t + " | null"
}
