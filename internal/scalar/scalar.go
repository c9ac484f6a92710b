// Package scalar defines the closed set of canonical scalar kinds used as the
// interchange vocabulary between schema ingestion and every backend type mapper.
// Raw SQL or API-schema type spellings are classified exactly once, here; no
// other component interprets type strings.
package scalar

import (
	"fmt"
	"strings"
)

// Kind is the canonical value category of a column.
type Kind int

const (
	// KindText is the fallback kind for character data and unrecognized spellings.
	KindText Kind = iota
	// KindInt represents integer types narrower than 64 bits.
	KindInt
	// KindBigInt represents wide (64-bit) integers. Synthesized primary keys
	// and foreign key columns always use this kind.
	KindBigInt
	// KindFloat represents binary floating-point types.
	KindFloat
	// KindDecimal represents arbitrary-precision fixed-point types.
	KindDecimal
	// KindBool represents boolean types.
	KindBool
	// KindDate represents calendar dates without a time component.
	KindDate
	// KindTime represents time-of-day values without a date component.
	KindTime
	// KindDateTime represents combined date and time values.
	KindDateTime
	// KindUUID represents 128-bit unique identifiers.
	KindUUID
	// KindBytes represents opaque binary blobs.
	KindBytes
	// KindJSON represents structured/JSON documents.
	KindJSON
	// KindEnum represents closed string enumerations. EnumValues on the
	// column carry the allowed literals in declaration order.
	KindEnum
)

var kindNames = map[Kind]string{
	KindText:     "text",
	KindInt:      "int",
	KindBigInt:   "bigint",
	KindFloat:    "float",
	KindDecimal:  "decimal",
	KindBool:     "bool",
	KindDate:     "date",
	KindTime:     "time",
	KindDateTime: "datetime",
	KindUUID:     "uuid",
	KindBytes:    "bytes",
	KindJSON:     "json",
	KindEnum:     "enum",
}

// String returns the canonical lowercase name of the kind. Out-of-range
// values render with their numeric value so a mapping-gap warning names
// the actual stray kind instead of masquerading as text.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("unknown(%d)", int(k))
}

// IsNumeric reports whether the kind is an integer or floating-point category.
func (k Kind) IsNumeric() bool {
	switch k {
	case KindInt, KindBigInt, KindFloat, KindDecimal:
		return true
	}
	return false
}

// IsTemporal reports whether the kind is one of the date/time variants.
func (k Kind) IsTemporal() bool {
	switch k {
	case KindDate, KindTime, KindDateTime:
		return true
	}
	return false
}

// ParseSQL classifies a SQL data type spelling into a canonical kind.
// The input is case-insensitive; size specifiers like (10,2) or (255) are
// stripped before matching. Unrecognized spellings fall back to KindText,
// and Known reports whether the spelling had an explicit mapping so callers
// can surface a mapping-gap warning.
func ParseSQL(sqlType string) (kind Kind, known bool) {
	if idx := strings.Index(sqlType, "("); idx != -1 {
		sqlType = sqlType[:idx]
	}
	switch strings.ToUpper(strings.TrimSpace(sqlType)) {
	case "TINYINT", "SMALLINT", "MEDIUMINT", "INT", "INTEGER", "SERIAL", "BIT", "SMALLSERIAL", "INT2", "INT4":
		return KindInt, true
	case "BIGINT", "BIGSERIAL", "INT8":
		return KindBigInt, true
	case "FLOAT", "DOUBLE", "REAL", "DOUBLE PRECISION", "FLOAT4", "FLOAT8":
		return KindFloat, true
	case "DECIMAL", "NUMERIC", "MONEY":
		return KindDecimal, true
	case "BOOL", "BOOLEAN":
		return KindBool, true
	case "DATE":
		return KindDate, true
	case "TIME":
		return KindTime, true
	case "DATETIME", "TIMESTAMP", "TIMESTAMPTZ":
		return KindDateTime, true
	case "UUID":
		return KindUUID, true
	case "BLOB", "TINYBLOB", "MEDIUMBLOB", "LONGBLOB", "BINARY", "VARBINARY", "BYTEA":
		return KindBytes, true
	case "JSON", "JSONB":
		return KindJSON, true
	case "ENUM", "SET":
		return KindEnum, true
	case "CHAR", "VARCHAR", "TINYTEXT", "TEXT", "MEDIUMTEXT", "LONGTEXT", "YEAR", "CHARACTER", "CHARACTER VARYING":
		return KindText, true
	default:
		return KindText, false
	}
}

// ParseJSONType classifies a JSON-schema (type, format) pair into a canonical
// kind. Unknown combinations fall back to KindText, with Known=false.
func ParseJSONType(jsonType, format string) (kind Kind, known bool) {
	switch strings.ToLower(strings.TrimSpace(jsonType)) {
	case "string":
		switch strings.ToLower(strings.TrimSpace(format)) {
		case "date":
			return KindDate, true
		case "time":
			return KindTime, true
		case "date-time":
			return KindDateTime, true
		case "uuid":
			return KindUUID, true
		case "byte", "binary":
			return KindBytes, true
		case "", "email", "uri", "hostname", "ipv4", "ipv6", "password":
			return KindText, true
		default:
			return KindText, false
		}
	case "integer":
		if strings.EqualFold(format, "int64") {
			return KindBigInt, true
		}
		return KindInt, true
	case "number":
		if strings.EqualFold(format, "decimal") {
			return KindDecimal, true
		}
		return KindFloat, true
	case "boolean":
		return KindBool, true
	case "object":
		return KindJSON, true
	default:
		return KindText, false
	}
}
