// Package gqlgen emits GraphQL SDL: one object type per generatable table
// with relationship fields, plus root Query fields for lookups and lists.
package gqlgen

import (
	"context"
	"fmt"
	"strings"

	"schemaforge/internal/generator"
	"schemaforge/internal/naming"
	"schemaforge/internal/schema"
	"schemaforge/internal/typemap"
)

var presets = generator.Presets{
	"standard": {"schemaFile": "schema.graphql"},
	"federated": {
		"schemaFile": "schema.graphql",
		"federation": "v2",
	},
}

// Generator is the graphql/sdl generator.
type Generator struct {
	namer  *naming.Namer
	mapper typemap.GraphQLMapper
}

// New returns a graphql/sdl generator using the given namer.
func New(namer *naming.Namer) *Generator {
	return &Generator{namer: namer}
}

func (g *Generator) Language() string  { return "graphql" }
func (g *Generator) Framework() string { return "sdl" }

func (g *Generator) Supports(f generator.Feature) bool {
	all := generator.FeatureRelationships
	return all.Has(f)
}

// Generate emits the SDL document. SDL has no repositories or migrations;
// the single artifact is the schema file.
func (g *Generator) Generate(ctx context.Context, s *schema.Schema, entities []string, opts generator.Options) (generator.Files, error) {
	tables, err := generator.SelectTables(s, entities)
	if err != nil {
		return nil, err
	}
	schemaFile := presets.Resolve(opts, "schemaFile", "schema.graphql")

	var b strings.Builder
	b.WriteString("# Code generated by schemaforge. DO NOT EDIT.\n")

	for _, table := range tables {
		b.WriteString("\n")
		g.writeType(&b, s, table)
	}

	b.WriteString("\ntype Query {\n")
	for _, table := range tables {
		entity := g.typeName(table.Name)
		single := naming.ToUnexported(g.namer.Singularize(table.Name))
		plural := naming.ToUnexported(table.Name)
		fmt.Fprintf(&b, "  %s(id: ID!): %s\n", single, entity)
		fmt.Fprintf(&b, "  %s(limit: Int, offset: Int): [%s!]!\n", plural, entity)
	}
	b.WriteString("}\n")

	return generator.Files{schemaFile: b.String()}, nil
}

func (g *Generator) writeType(b *strings.Builder, s *schema.Schema, table schema.Table) {
	entity := g.typeName(table.Name)
	if table.Comment != "" {
		fmt.Fprintf(b, "\"\"\"%s\"\"\"\n", table.Comment)
	}
	fmt.Fprintf(b, "type %s {\n", entity)

	for _, col := range table.Columns {
		field := naming.ToUnexported(col.Name)
		var typ string
		if schema.SurrogateKey(table, col) {
			typ = g.mapper.PrimaryKeyType() + "!"
		} else {
			typ = g.mapper.MapColumnType(col)
		}
		fmt.Fprintf(b, "  %s: %s\n", field, typ)
	}

	for _, rel := range s.RelationshipsFor(table.Name) {
		field := naming.ToUnexported(rel.FieldName)
		target := g.typeName(rel.TargetTable)
		switch rel.Kind {
		case schema.ManyToOne, schema.OneToOne:
			fmt.Fprintf(b, "  %s: %s\n", field, target)
		default:
			fmt.Fprintf(b, "  %s: %s\n", field, g.mapper.ListType(target+"!")+"!")
		}
	}

	b.WriteString("}\n")
}

// typeName is the SDL object type for a table, escaped so emitted types
// never collide with built-in scalars or SDL keywords. Field names need no
// escaping: SDL keywords are legal in field position.
func (g *Generator) typeName(table string) string {
	return naming.GraphQLReserved.Escape(g.namer.EntityName(table))
}
