// Package relation resolves raw foreign keys into typed associations. It
// runs exactly one pass over a populated schema: outgoing relationships
// first, mirrored incoming relationships second, junction-inferred
// many-to-many relationships last. Resolved relationships are never
// revisited, so cyclic FK graphs cannot loop.
package relation

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"schemaforge/internal/naming"
	"schemaforge/internal/schema"
)

// Resolve enriches the schema with its relationship list and marks pure
// junction tables. A foreign key referencing an undeclared table aborts the
// resolution with a schema.Error.
func Resolve(ctx context.Context, s *schema.Schema, namer *naming.Namer) error {
	_, span := otel.Tracer("schemaforge/relation").Start(ctx, "relation.resolve")
	defer span.End()

	if namer == nil {
		namer = naming.Default()
	}

	for _, t := range s.Tables {
		for _, fk := range t.ForeignKeys {
			if s.Table(fk.ReferencedTable) == nil {
				err := &schema.Error{
					Source: "relation",
					Table:  t.Name,
					Reason: fmt.Sprintf("foreign key %s references undeclared table %s", fk.ColumnName, fk.ReferencedTable),
				}
				span.RecordError(err)
				return err
			}
		}
	}

	junctions := classifyJunctions(s)
	for i := range s.Tables {
		if _, ok := junctions[s.Tables[i].Name]; ok {
			s.Tables[i].IsJunction = true
		}
	}

	// Register entities and column fields first so relationship accessors
	// lose collisions against columns, never the other way around.
	for _, t := range s.Tables {
		if t.IsJunction {
			continue
		}
		entity := namer.RegisterEntity(t.Name)
		for _, col := range t.Columns {
			namer.RegisterField(entity, col.Name, "column:"+col.Name)
		}
	}

	// Count FKs per (source, target) pair to pick the one-to-many naming
	// strategy: a single FK uses the plain pluralized table name, multiple
	// FKs are prefixed with the FK column for disambiguation.
	fkCount := make(map[string]map[string]int)
	for _, t := range s.Tables {
		for _, fk := range t.ForeignKeys {
			if fkCount[t.Name] == nil {
				fkCount[t.Name] = make(map[string]int)
			}
			fkCount[t.Name][fk.ReferencedTable]++
		}
	}

	var rels []schema.Relationship

	// First pass: outgoing relationships from FK columns. A unique FK column
	// makes the association one-to-one. Pure junctions are skipped; their
	// FKs surface as the synthesized many-to-many below.
	for i := range s.Tables {
		table := &s.Tables[i]
		if table.IsJunction {
			continue
		}
		entity := namer.EntityName(table.Name)
		for _, fk := range table.ForeignKeys {
			kind := schema.ManyToOne
			if table.HasUniqueColumn(fk.ColumnName) {
				kind = schema.OneToOne
			}
			field := namer.RegisterField(entity, namer.RelationFieldName(fk.ColumnName), "relationship:"+fk.ColumnName)
			rels = append(rels, schema.Relationship{
				SourceTable:      table.Name,
				TargetTable:      fk.ReferencedTable,
				Kind:             kind,
				ForeignKeyColumn: fk.ColumnName,
				ReferencedColumn: fk.ReferencedColumn,
				FieldName:        field,
			})
		}
	}

	// Second pass: mirrored incoming relationships on the referenced table.
	for i := range s.Tables {
		table := &s.Tables[i]
		if table.IsJunction {
			continue
		}
		entity := namer.EntityName(table.Name)
		for j := range s.Tables {
			other := &s.Tables[j]
			if other.IsJunction {
				continue
			}
			for _, fk := range other.ForeignKeys {
				if fk.ReferencedTable != table.Name {
					continue
				}
				kind := schema.OneToMany
				field := ""
				if other.HasUniqueColumn(fk.ColumnName) {
					kind = schema.OneToOne
					field = namer.Singularize(other.Name)
				} else {
					isOnlyFK := fkCount[other.Name][table.Name] == 1
					field = namer.InverseFieldName(other.Name, fk.ColumnName, isOnlyFK)
				}
				field = namer.RegisterField(entity, field, "relationship:"+other.Name+"."+fk.ColumnName)
				rels = append(rels, schema.Relationship{
					SourceTable:      table.Name,
					TargetTable:      other.Name,
					Kind:             kind,
					ForeignKeyColumn: fk.ColumnName,
					ReferencedColumn: fk.ReferencedColumn,
					FieldName:        field,
				})
			}
		}
	}

	// Third pass: one many-to-many relationship per junction, endpoint order
	// following the junction's FK declaration order.
	for i := range s.Tables {
		jc, ok := junctions[s.Tables[i].Name]
		if !ok {
			continue
		}
		sourceEntity := namer.EntityName(jc.LeftFK.ReferencedTable)
		field := namer.RegisterField(sourceEntity, namer.ManyToManyFieldName(jc.RightFK.ReferencedTable), "m2m:"+jc.Table)
		rels = append(rels, schema.Relationship{
			SourceTable:   jc.LeftFK.ReferencedTable,
			TargetTable:   jc.RightFK.ReferencedTable,
			Kind:          schema.ManyToMany,
			JunctionTable: jc.Table,
			FieldName:     field,
		})
	}

	s.Relationships = rels
	span.SetAttributes(
		attribute.Int("schema.tables", len(s.Tables)),
		attribute.Int("schema.relationships", len(rels)),
	)
	return nil
}
