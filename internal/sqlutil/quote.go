// Package sqlutil quotes identifiers and literals for emitted DDL.
package sqlutil

import "strings"

// QuoteIdentifier wraps a table, column, or index name in backticks.
// Embedded backticks are doubled, so schema-sourced names can never break
// out of the identifier position.
func QuoteIdentifier(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}

// QuoteString wraps a value in single quotes for use as a SQL literal,
// doubling any quotes it contains. Column defaults, comments, and enum
// values all pass through here on their way into a migration.
func QuoteString(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
