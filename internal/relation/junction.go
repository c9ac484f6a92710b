package relation

import (
	"strings"

	"schemaforge/internal/schema"
)

// JunctionInfo contains classification metadata for a junction table.
type JunctionInfo struct {
	// Table is the junction table name.
	Table string
	// LeftFK is the first foreign key, in declaration order.
	LeftFK schema.ForeignKey
	// RightFK is the second foreign key.
	RightFK schema.ForeignKey
}

// housekeepingColumn reports whether a column can be ignored for junction
// classification: a surrogate auto-increment key or an audit timestamp.
func housekeepingColumn(col schema.Column) bool {
	if col.AutoIncrement && col.PrimaryKey {
		return true
	}
	if col.Kind.IsTemporal() {
		name := strings.ToLower(col.Name)
		return name == "created_at" || name == "updated_at" || name == "deleted_at"
	}
	return false
}

// classifyJunctions analyzes schema tables and returns junction info for
// every table that qualifies as a pure many-to-many junction:
//   - exactly 2 foreign keys referencing two distinct tables
//   - both referenced tables exist in the schema
//   - every remaining column is either an FK column or housekeeping
//
// The map is keyed by junction table name.
func classifyJunctions(s *schema.Schema) map[string]JunctionInfo {
	result := make(map[string]JunctionInfo)
	for _, table := range s.Tables {
		if info, ok := classifyTable(s, table); ok {
			result[table.Name] = info
		}
	}
	return result
}

func classifyTable(s *schema.Schema, table schema.Table) (JunctionInfo, bool) {
	if len(table.ForeignKeys) != 2 {
		return JunctionInfo{}, false
	}

	fk1 := table.ForeignKeys[0]
	fk2 := table.ForeignKeys[1]

	// Self-referential pairs are ordinary FK relationships, not junctions.
	if fk1.ReferencedTable == fk2.ReferencedTable {
		return JunctionInfo{}, false
	}
	if s.Table(fk1.ReferencedTable) == nil || s.Table(fk2.ReferencedTable) == nil {
		return JunctionInfo{}, false
	}

	fkCols := map[string]bool{
		fk1.ColumnName: true,
		fk2.ColumnName: true,
	}
	for _, col := range table.Columns {
		if fkCols[col.Name] {
			continue
		}
		if !housekeepingColumn(col) {
			return JunctionInfo{}, false
		}
	}

	// Source/target order follows FK declaration order.
	return JunctionInfo{
		Table:   table.Name,
		LeftFK:  fk1,
		RightFK: fk2,
	}, true
}
