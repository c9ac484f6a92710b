package generator

import (
	"fmt"
	"strings"

	"schemaforge/internal/scalar"
	"schemaforge/internal/schema"
	"schemaforge/internal/sqlutil"
)

// MigrationSQL renders the whole schema, junction tables included, as MySQL
// CREATE TABLE statements in declaration order. The Go, Java, and TypeScript
// backends all ship this as their initial migration artifact.
func MigrationSQL(s *schema.Schema) string {
	var b strings.Builder
	for i, table := range s.Tables {
		if i > 0 {
			b.WriteString("\n")
		}
		writeCreateTable(&b, table)
	}
	return b.String()
}

func writeCreateTable(b *strings.Builder, table schema.Table) {
	fmt.Fprintf(b, "CREATE TABLE %s (\n", sqlutil.QuoteIdentifier(table.Name))

	var lines []string
	for _, col := range table.Columns {
		lines = append(lines, "  "+columnDDL(col))
	}
	if pks := schema.PrimaryKeyColumns(table); len(pks) > 0 {
		names := make([]string, len(pks))
		for i, pk := range pks {
			names[i] = pk.Name
		}
		lines = append(lines, fmt.Sprintf("  PRIMARY KEY (%s)", backtickList(names)))
	}
	for _, idx := range table.Indexes {
		kind := "KEY"
		if idx.Unique {
			kind = "UNIQUE KEY"
		}
		lines = append(lines, fmt.Sprintf("  %s %s (%s)", kind, sqlutil.QuoteIdentifier(idx.Name), backtickList(idx.Columns)))
	}
	for _, fk := range table.ForeignKeys {
		name := fk.ConstraintName
		if name == "" {
			name = fmt.Sprintf("fk_%s_%s", table.Name, fk.ColumnName)
		}
		lines = append(lines, fmt.Sprintf(
			"  CONSTRAINT %s FOREIGN KEY (%s) REFERENCES %s (%s)",
			sqlutil.QuoteIdentifier(name),
			sqlutil.QuoteIdentifier(fk.ColumnName),
			sqlutil.QuoteIdentifier(fk.ReferencedTable),
			sqlutil.QuoteIdentifier(fk.ReferencedColumn),
		))
	}

	b.WriteString(strings.Join(lines, ",\n"))
	b.WriteString("\n);\n")
}

func columnDDL(col schema.Column) string {
	parts := []string{fmt.Sprintf("%s %s", sqlutil.QuoteIdentifier(col.Name), sqlType(col))}
	if !col.Nullable {
		parts = append(parts, "NOT NULL")
	}
	if col.AutoIncrement {
		parts = append(parts, "AUTO_INCREMENT")
	}
	if col.HasDefault {
		parts = append(parts, "DEFAULT "+quoteDefault(col))
	}
	if col.Comment != "" {
		parts = append(parts, "COMMENT "+sqlutil.QuoteString(col.Comment))
	}
	return strings.Join(parts, " ")
}

func sqlType(col schema.Column) string {
	switch col.Kind {
	case scalar.KindInt:
		return "INT"
	case scalar.KindBigInt:
		return "BIGINT"
	case scalar.KindFloat:
		return "DOUBLE"
	case scalar.KindDecimal:
		precision, scale := col.Precision, col.Scale
		if precision == 0 {
			precision, scale = 10, 2
		}
		return fmt.Sprintf("DECIMAL(%d,%d)", precision, scale)
	case scalar.KindBool:
		return "TINYINT(1)"
	case scalar.KindDate:
		return "DATE"
	case scalar.KindTime:
		return "TIME"
	case scalar.KindDateTime:
		return "DATETIME"
	case scalar.KindUUID:
		return "CHAR(36)"
	case scalar.KindBytes:
		return "BLOB"
	case scalar.KindJSON:
		return "JSON"
	case scalar.KindEnum:
		if len(col.EnumValues) > 0 {
			quoted := make([]string, len(col.EnumValues))
			for i, v := range col.EnumValues {
				quoted[i] = sqlutil.QuoteString(v)
			}
			return "ENUM(" + strings.Join(quoted, ",") + ")"
		}
		return "VARCHAR(255)"
	default:
		if col.Length > 0 {
			return fmt.Sprintf("VARCHAR(%d)", col.Length)
		}
		return "TEXT"
	}
}

func quoteDefault(col schema.Column) string {
	switch col.Kind {
	case scalar.KindInt, scalar.KindBigInt, scalar.KindFloat, scalar.KindDecimal, scalar.KindBool:
		return col.Default
	default:
		return sqlutil.QuoteString(col.Default)
	}
}

func backtickList(cols []string) string {
	quoted := make([]string, len(cols))
	for i, c := range cols {
		quoted[i] = sqlutil.QuoteIdentifier(c)
	}
	return strings.Join(quoted, ", ")
}
