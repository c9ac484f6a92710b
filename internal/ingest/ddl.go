package ingest

import (
	"context"
	"strconv"
	"strings"

	"schemaforge/internal/scalar"
	"schemaforge/internal/schema"
)

// ParseDDL parses relational DDL text (CREATE TABLE statements) into a
// canonical schema. Statements other than CREATE TABLE are skipped. An
// unterminated statement or a foreign key referencing an undeclared table
// aborts the whole parse.
func ParseDDL(ctx context.Context, src string) (*schema.Schema, error) {
	_, span := startSpan(ctx, "ingest.parse_ddl")
	defer span.End()

	statements, err := splitStatements(src)
	if err != nil {
		recordSpanError(span, err)
		return nil, err
	}

	s := &schema.Schema{}
	for _, stmt := range statements {
		if !isCreateTable(stmt) {
			continue
		}
		table, err := parseCreateTable(stmt)
		if err != nil {
			recordSpanError(span, err)
			return nil, err
		}
		ensurePrimaryKey(table)
		s.Tables = append(s.Tables, *table)
	}

	if len(s.Tables) == 0 {
		err := &schema.Error{Source: "ddl", Reason: "no CREATE TABLE statements found"}
		recordSpanError(span, err)
		return nil, err
	}
	if err := s.Validate(); err != nil {
		recordSpanError(span, err)
		return nil, err
	}
	return s, nil
}

// splitStatements splits DDL text on semicolons outside quotes and
// parentheses. Unbalanced quoting or nesting at end of input is a hard error.
func splitStatements(src string) ([]string, error) {
	var statements []string
	var b strings.Builder
	depth := 0
	var quote byte

	for i := 0; i < len(src); i++ {
		ch := src[i]
		if quote != 0 {
			b.WriteByte(ch)
			if ch == '\\' && i+1 < len(src) {
				b.WriteByte(src[i+1])
				i++
				continue
			}
			if ch == quote {
				quote = 0
			}
			continue
		}
		switch ch {
		case '\'', '"', '`':
			quote = ch
			b.WriteByte(ch)
		case '(':
			depth++
			b.WriteByte(ch)
		case ')':
			depth--
			if depth < 0 {
				return nil, &schema.Error{Source: "ddl", Reason: "unbalanced parenthesis"}
			}
			b.WriteByte(ch)
		case ';':
			if depth == 0 {
				statements = append(statements, strings.TrimSpace(b.String()))
				b.Reset()
			} else {
				b.WriteByte(ch)
			}
		default:
			b.WriteByte(ch)
		}
	}
	if quote != 0 {
		return nil, &schema.Error{Source: "ddl", Reason: "unterminated string literal"}
	}
	if depth != 0 {
		return nil, &schema.Error{Source: "ddl", Reason: "unterminated statement: unbalanced parentheses at end of input"}
	}
	if rest := strings.TrimSpace(b.String()); rest != "" {
		statements = append(statements, rest)
	}
	return statements, nil
}

func isCreateTable(stmt string) bool {
	fields := strings.Fields(strings.ToUpper(stmt))
	return len(fields) >= 2 && fields[0] == "CREATE" && fields[1] == "TABLE"
}

func parseCreateTable(stmt string) (*schema.Table, error) {
	open := strings.Index(stmt, "(")
	closing := strings.LastIndex(stmt, ")")
	if open == -1 || closing == -1 || closing < open {
		return nil, &schema.Error{Source: "ddl", Reason: "unterminated CREATE TABLE: missing column list"}
	}

	header := strings.Fields(stmt[:open])
	name := unquoteIdent(header[len(header)-1])
	if strings.EqualFold(name, "EXISTS") || name == "" {
		return nil, &schema.Error{Source: "ddl", Reason: "CREATE TABLE has no table name"}
	}

	table := &schema.Table{Name: name}
	for _, def := range splitDefinitions(stmt[open+1 : closing]) {
		if err := parseDefinition(table, def); err != nil {
			return nil, err
		}
	}
	if len(table.Columns) == 0 {
		return nil, &schema.Error{Source: "ddl", Table: name, Reason: "table declares no columns"}
	}
	return table, nil
}

// splitDefinitions splits the body of a CREATE TABLE on top-level commas.
func splitDefinitions(body string) []string {
	var defs []string
	var b strings.Builder
	depth := 0
	var quote byte
	for i := 0; i < len(body); i++ {
		ch := body[i]
		if quote != 0 {
			b.WriteByte(ch)
			if ch == quote {
				quote = 0
			}
			continue
		}
		switch ch {
		case '\'', '"', '`':
			quote = ch
			b.WriteByte(ch)
		case '(':
			depth++
			b.WriteByte(ch)
		case ')':
			depth--
			b.WriteByte(ch)
		case ',':
			if depth == 0 {
				defs = append(defs, strings.TrimSpace(b.String()))
				b.Reset()
			} else {
				b.WriteByte(ch)
			}
		default:
			b.WriteByte(ch)
		}
	}
	if rest := strings.TrimSpace(b.String()); rest != "" {
		defs = append(defs, rest)
	}
	return defs
}

// leadingKeyword reports whether def opens with the keyword as a whole word.
// A bare prefix check would mistake columns such as key_name or unique_code
// for index definitions.
func leadingKeyword(upper, keyword string) bool {
	if !strings.HasPrefix(upper, keyword) {
		return false
	}
	rest := upper[len(keyword):]
	return rest == "" || rest[0] == ' ' || rest[0] == '\t' || rest[0] == '('
}

func parseDefinition(table *schema.Table, def string) error {
	upper := strings.ToUpper(def)
	switch {
	case leadingKeyword(upper, "PRIMARY KEY"):
		for _, col := range parseColumnList(def) {
			if c := table.Column(col); c != nil {
				c.PrimaryKey = true
			}
		}
		return nil
	case leadingKeyword(upper, "CONSTRAINT") || leadingKeyword(upper, "FOREIGN KEY"):
		return parseForeignKeyDef(table, def)
	case leadingKeyword(upper, "UNIQUE"):
		cols := parseColumnList(def)
		idx := schema.Index{Name: indexName(def, "uq_"+table.Name), Unique: true, Columns: cols}
		table.Indexes = append(table.Indexes, idx)
		if len(cols) == 1 {
			if c := table.Column(cols[0]); c != nil {
				c.Unique = true
			}
		}
		return nil
	case leadingKeyword(upper, "KEY") || leadingKeyword(upper, "INDEX") ||
		leadingKeyword(upper, "FULLTEXT") || leadingKeyword(upper, "SPATIAL"):
		table.Indexes = append(table.Indexes, schema.Index{
			Name:    indexName(def, "idx_"+table.Name),
			Columns: parseColumnList(def),
		})
		return nil
	case leadingKeyword(upper, "CHECK"):
		return nil
	default:
		return parseColumnDef(table, def)
	}
}

// parseColumnList extracts identifiers from the first parenthesized group.
func parseColumnList(def string) []string {
	open := strings.Index(def, "(")
	if open == -1 {
		return nil
	}
	closing := strings.Index(def[open+1:], ")")
	if closing == -1 {
		return nil
	}
	parts := strings.Split(def[open+1:open+1+closing], ",")
	cols := make([]string, 0, len(parts))
	for _, p := range parts {
		if col := unquoteIdent(strings.TrimSpace(p)); col != "" {
			cols = append(cols, col)
		}
	}
	return cols
}

// indexName returns the declared index name, or the fallback when anonymous.
func indexName(def, fallback string) string {
	open := strings.Index(def, "(")
	if open == -1 {
		return fallback
	}
	fields := strings.Fields(def[:open])
	if len(fields) == 0 {
		return fallback
	}
	switch strings.ToUpper(fields[len(fields)-1]) {
	case "UNIQUE", "KEY", "INDEX", "FULLTEXT", "SPATIAL":
		return fallback
	}
	return unquoteIdent(fields[len(fields)-1])
}

func parseForeignKeyDef(table *schema.Table, def string) error {
	upper := strings.ToUpper(def)
	constraintName := ""
	if strings.HasPrefix(upper, "CONSTRAINT") {
		fields := strings.Fields(def)
		if len(fields) >= 2 {
			constraintName = unquoteIdent(fields[1])
		}
	}

	fkIdx := strings.Index(upper, "FOREIGN KEY")
	refIdx := strings.Index(upper, "REFERENCES")
	if fkIdx == -1 || refIdx == -1 || refIdx < fkIdx {
		return &schema.Error{Source: "ddl", Table: table.Name, Reason: "malformed foreign key definition: " + def}
	}

	localCols := parseColumnList(def[fkIdx:refIdx])
	refPart := strings.TrimSpace(def[refIdx+len("REFERENCES"):])
	open := strings.Index(refPart, "(")
	if open == -1 || len(localCols) == 0 {
		return &schema.Error{Source: "ddl", Table: table.Name, Reason: "malformed foreign key definition: " + def}
	}
	refTable := unquoteIdent(strings.TrimSpace(refPart[:open]))
	refCols := parseColumnList(refPart)
	if refTable == "" || len(refCols) != len(localCols) {
		return &schema.Error{Source: "ddl", Table: table.Name, Reason: "malformed foreign key definition: " + def}
	}

	for i := range localCols {
		table.ForeignKeys = append(table.ForeignKeys, schema.ForeignKey{
			ColumnName:       localCols[i],
			ReferencedTable:  refTable,
			ReferencedColumn: refCols[i],
			ConstraintName:   constraintName,
		})
	}
	return nil
}

func parseColumnDef(table *schema.Table, def string) error {
	tokens := strings.Fields(def)
	if len(tokens) < 2 {
		return &schema.Error{Source: "ddl", Table: table.Name, Reason: "malformed column definition: " + def}
	}

	col := schema.Column{
		Name:     unquoteIdent(tokens[0]),
		Nullable: true,
	}

	rawType := tokens[1]
	// Reattach a parenthesized argument list split off by whitespace,
	// e.g. "decimal (10,2)".
	if !strings.Contains(rawType, "(") && len(tokens) > 2 && strings.HasPrefix(tokens[2], "(") {
		rawType += tokens[2]
		tokens = append(tokens[:2], tokens[2+1:]...)
	}
	col.RawType = rawType
	col.Kind, _ = scalar.ParseSQL(rawType)
	parseTypeArgs(&col, rawType)

	upper := strings.ToUpper(def)
	if strings.Contains(upper, "NOT NULL") {
		col.Nullable = false
	}
	if strings.Contains(upper, "AUTO_INCREMENT") || strings.Contains(upper, "AUTOINCREMENT") ||
		strings.Contains(upper, "GENERATED ALWAYS AS IDENTITY") || strings.Contains(upper, "SERIAL") {
		col.AutoIncrement = true
		col.Nullable = false
	}
	if strings.Contains(upper, "PRIMARY KEY") {
		col.PrimaryKey = true
		col.Nullable = false
	}
	if strings.Contains(upper, "UNIQUE") {
		col.Unique = true
	}
	if v, ok := extractAfterKeyword(def, "DEFAULT"); ok {
		col.HasDefault = true
		col.Default = strings.Trim(v, "'")
	}
	if v, ok := extractAfterKeyword(def, "COMMENT"); ok {
		col.Comment = strings.Trim(v, "'")
	}

	table.Columns = append(table.Columns, col)

	// Inline REFERENCES clause.
	if refIdx := strings.Index(upper, "REFERENCES"); refIdx != -1 {
		refPart := strings.TrimSpace(def[refIdx+len("REFERENCES"):])
		open := strings.Index(refPart, "(")
		if open == -1 {
			return &schema.Error{Source: "ddl", Table: table.Name, Reason: "malformed inline REFERENCES: " + def}
		}
		refCols := parseColumnList(refPart)
		if len(refCols) != 1 {
			return &schema.Error{Source: "ddl", Table: table.Name, Reason: "malformed inline REFERENCES: " + def}
		}
		table.ForeignKeys = append(table.ForeignKeys, schema.ForeignKey{
			ColumnName:       col.Name,
			ReferencedTable:  unquoteIdent(strings.TrimSpace(refPart[:open])),
			ReferencedColumn: refCols[0],
		})
	}
	return nil
}

// parseTypeArgs extracts length or precision/scale from a type spelling like
// varchar(255) or decimal(10,2), and enum values from enum('a','b').
func parseTypeArgs(col *schema.Column, rawType string) {
	open := strings.Index(rawType, "(")
	closing := strings.LastIndex(rawType, ")")
	if open == -1 || closing <= open {
		return
	}
	if col.Kind == scalar.KindEnum {
		if values, err := scalar.ParseEnumValues(rawType); err == nil {
			col.EnumValues = values
		}
		return
	}
	args := strings.Split(rawType[open+1:closing], ",")
	first, err := strconv.Atoi(strings.TrimSpace(args[0]))
	if err != nil {
		return
	}
	if len(args) == 1 {
		col.Length = first
		return
	}
	col.Precision = first
	if second, err := strconv.Atoi(strings.TrimSpace(args[1])); err == nil {
		col.Scale = second
	}
}

// extractAfterKeyword returns the token following a keyword, honoring single
// quotes, e.g. DEFAULT 'new york' or COMMENT 'primary contact'.
func extractAfterKeyword(def, keyword string) (string, bool) {
	upper := strings.ToUpper(def)
	idx := strings.Index(upper, strings.ToUpper(keyword)+" ")
	if idx == -1 {
		return "", false
	}
	rest := strings.TrimSpace(def[idx+len(keyword):])
	if rest == "" {
		return "", false
	}
	if rest[0] == '\'' {
		end := strings.Index(rest[1:], "'")
		if end == -1 {
			return "", false
		}
		return rest[:end+2], true
	}
	fields := strings.Fields(rest)
	return fields[0], true
}

func unquoteIdent(s string) string {
	return strings.Trim(s, "`\"'")
}
