// Package schema holds the canonical in-memory schema model. Every ingestion
// front-end populates it, the relationship resolver enriches it, and every
// project generator reads it without mutation. A Schema is built once per
// generation request and is never persisted between requests.
package schema

import (
	"fmt"

	"schemaforge/internal/scalar"
)

// Column represents a table column.
type Column struct {
	Name          string
	Kind          scalar.Kind
	RawType       string // original spelling from the input document, kept for diagnostics
	Nullable      bool
	PrimaryKey    bool
	Unique        bool
	AutoIncrement bool
	Length        int
	Precision     int
	Scale         int
	EnumValues    []string
	HasDefault    bool
	Default       string
	Comment       string
}

// ForeignKey represents a foreign key constraint on a single column.
type ForeignKey struct {
	ColumnName       string
	ReferencedTable  string
	ReferencedColumn string
	ConstraintName   string
}

// Index represents a table index with ordered columns.
type Index struct {
	Name    string
	Unique  bool
	Columns []string
}

// RelKind is the association kind of a resolved relationship.
type RelKind int

const (
	// OneToOne links rows pairwise; emitted when the FK column is unique.
	OneToOne RelKind = iota
	// ManyToOne is the outgoing direction on the FK-owning table.
	ManyToOne
	// OneToMany is the mirrored incoming direction on the referenced table.
	OneToMany
	// ManyToMany is inferred from a pure junction table; it has no owning
	// foreign key column and carries the junction table name instead.
	ManyToMany
)

// String returns a human-readable representation of the relationship kind.
func (k RelKind) String() string {
	switch k {
	case OneToOne:
		return "one_to_one"
	case ManyToOne:
		return "many_to_one"
	case OneToMany:
		return "one_to_many"
	case ManyToMany:
		return "many_to_many"
	default:
		return "unknown"
	}
}

// Relationship is a typed association between two tables. For OneToOne,
// ManyToOne and OneToMany the direction is stated from the FK-owning side
// and ForeignKeyColumn names the owning column. For ManyToMany both key
// fields are empty and JunctionTable is set.
type Relationship struct {
	SourceTable      string
	TargetTable      string
	Kind             RelKind
	ForeignKeyColumn string
	ReferencedColumn string
	JunctionTable    string
	// FieldName is the collision-resolved accessor name generators use for
	// this association on the source side.
	FieldName string
}

// Table represents a table in the canonical model.
type Table struct {
	Name        string
	Comment     string
	Columns     []Column
	ForeignKeys []ForeignKey
	Indexes     []Index
	// IsJunction marks tables classified as pure many-to-many junctions.
	// Junctions stay in the schema for storage-layer artifacts (migrations)
	// but are excluded from the generatable-entity list.
	IsJunction bool
}

// Schema is the canonical model: ordered tables plus resolved relationships.
type Schema struct {
	Tables        []Table
	Relationships []Relationship
}

// Table returns the table with the given name, or nil.
func (s *Schema) Table(name string) *Table {
	for i := range s.Tables {
		if s.Tables[i].Name == name {
			return &s.Tables[i]
		}
	}
	return nil
}

// GeneratableTables returns tables eligible for entity/model artifacts, in
// declaration order. Pure junction tables are excluded.
func (s *Schema) GeneratableTables() []Table {
	tables := make([]Table, 0, len(s.Tables))
	for _, t := range s.Tables {
		if t.IsJunction {
			continue
		}
		tables = append(tables, t)
	}
	return tables
}

// RelationshipsFor returns the relationships whose source is the given table,
// in resolution order.
func (s *Schema) RelationshipsFor(table string) []Relationship {
	var rels []Relationship
	for _, r := range s.Relationships {
		if r.SourceTable == table {
			rels = append(rels, r)
		}
	}
	return rels
}

// Validate checks the structural invariants the downstream components rely
// on: every table has a non-empty primary key column set and every foreign
// key references a table declared in the same schema.
func (s *Schema) Validate() error {
	for _, t := range s.Tables {
		if len(PrimaryKeyColumns(t)) == 0 {
			return &Error{Table: t.Name, Reason: "table has no primary key"}
		}
		for _, fk := range t.ForeignKeys {
			if s.Table(fk.ReferencedTable) == nil {
				return &Error{
					Table:  t.Name,
					Reason: fmt.Sprintf("foreign key %s references undeclared table %s", fk.ColumnName, fk.ReferencedTable),
				}
			}
		}
	}
	return nil
}

// PrimaryKeyColumn returns the first primary key column for a table, if present.
// For tables with composite primary keys, use PrimaryKeyColumns instead.
func PrimaryKeyColumn(table Table) *Column {
	for i := range table.Columns {
		if table.Columns[i].PrimaryKey {
			return &table.Columns[i]
		}
	}
	return nil
}

// SurrogateKey reports whether col is the table's sole primary key and
// carries an integer value, the kind synthesized ids are. Generators widen
// such keys to their fixed key type; declared keys of other kinds, a UUID
// primary key for example, keep the type their column mapping produces.
func SurrogateKey(table Table, col Column) bool {
	if !col.PrimaryKey || len(PrimaryKeyColumns(table)) != 1 {
		return false
	}
	return col.Kind == scalar.KindInt || col.Kind == scalar.KindBigInt
}

// PrimaryKeyColumns returns all primary key columns for a table in column order.
func PrimaryKeyColumns(table Table) []Column {
	var cols []Column
	for _, col := range table.Columns {
		if col.PrimaryKey {
			cols = append(cols, col)
		}
	}
	return cols
}

// Column returns the named column on the table, or nil.
func (t *Table) Column(name string) *Column {
	for i := range t.Columns {
		if t.Columns[i].Name == name {
			return &t.Columns[i]
		}
	}
	return nil
}

// HasUniqueColumn reports whether the named column carries a uniqueness
// constraint, either on the column itself or through a single-column unique
// index.
func (t *Table) HasUniqueColumn(name string) bool {
	if col := t.Column(name); col != nil && col.Unique {
		return true
	}
	for _, idx := range t.Indexes {
		if idx.Unique && len(idx.Columns) == 1 && idx.Columns[0] == name {
			return true
		}
	}
	return false
}
